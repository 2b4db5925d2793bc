package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/matsen/citemap/internal/gephi"
	"github.com/matsen/citemap/internal/pipeline"
	"github.com/matsen/citemap/internal/viz"
	"github.com/spf13/cobra"
)

var (
	exportJSON    string
	exportWorkers int
	exportNoCache bool
	exportVerbose bool
)

func init() {
	exportCmd.Flags().StringVar(&exportJSON, "json", "", "Output path for the graph JSON")
	exportCmd.Flags().IntVar(&exportWorkers, "workers", pipeline.DefaultWorkers, "Worker pool size")
	exportCmd.Flags().BoolVar(&exportNoCache, "no-cache", false, "Disable the extraction cache")
	exportCmd.Flags().BoolVar(&exportVerbose, "verbose", false, "Print per-document worker traces")
	exportCmd.MarkFlagRequired("json")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export <zotero.csv>",
	Short: "Write the citation graph as JSON, without the Gephi tables",
	Long: `Write the citation graph as JSON, without the Gephi tables.

Runs the same extraction and matching pipeline as analyze, then emits
a single nodes/edges JSON document for visualization tools.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	params := runParams{
		workers: exportWorkers,
		verbose: exportVerbose,
	}
	if !exportNoCache {
		params.cacheDir = filepath.Join(filepath.Dir(exportJSON), "cache")
	}

	_, outcome, elapsed := processBibliography(args[0], params)

	if err := viz.WriteJSON(exportJSON, viz.Build(outcome.Graph, gephi.NewNamer())); err != nil {
		fatal(ExitError, "%v", err)
	}

	fmt.Printf("Exported %d nodes and %d edges to %s in %s (%d failed documents)\n",
		len(outcome.Graph.Nodes), len(outcome.Graph.Edges), exportJSON,
		elapsed.Round(time.Millisecond), len(outcome.Failures))
	return nil
}
