// Package main provides the citemap CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "citemap",
	Short: "Infer a citation graph from a Zotero library export",
	Long: `citemap reads a Zotero CSV export, extracts the trailing pages of
each entry's PDF attachment, and infers citation edges by locating
other known titles inside the extracted text.

Output is a pair of delimited node and edge tables suitable for Gephi,
optionally plus a JSON graph for other visualization tools. Individual
documents that cannot be extracted are reported and never abort the
run.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Version = Version
}

// fatal prints a diagnostic to stderr and exits with code.
func fatal(code int, format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(code)
}
