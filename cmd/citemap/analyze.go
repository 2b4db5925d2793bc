package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/matsen/citemap/internal/bib"
	"github.com/matsen/citemap/internal/config"
	"github.com/matsen/citemap/internal/gephi"
	"github.com/matsen/citemap/internal/pdfx"
	"github.com/matsen/citemap/internal/pipeline"
	"github.com/matsen/citemap/internal/storage"
	"github.com/matsen/citemap/internal/viz"
	"github.com/spf13/cobra"
)

var (
	analyzeOutDir    string
	analyzeOutCSV    string
	analyzeDelimiter string
	analyzeWorkers   int
	analyzeChunkSize int
	analyzeTxtDir    string
	analyzeGraphJSON string
	analyzeNoCache   bool
	analyzeVerbose   bool
)

func init() {
	analyzeCmd.Flags().StringVar(&analyzeOutDir, "out-dir", "gephi", "Output dir for the Edges and Nodes tables")
	analyzeCmd.Flags().StringVar(&analyzeOutCSV, "out-csv", "titles.csv", "Output table filename suffix")
	analyzeCmd.Flags().StringVar(&analyzeDelimiter, "delimiter", "\t", "Output field delimiter")
	analyzeCmd.Flags().IntVar(&analyzeWorkers, "workers", pipeline.DefaultWorkers, "Worker pool size")
	analyzeCmd.Flags().IntVar(&analyzeChunkSize, "chunk-size", pipeline.DefaultChunkSize, "Entries dispatched to a worker at a time")
	analyzeCmd.Flags().StringVar(&analyzeTxtDir, "txt-dir", "", "Also write each paper's extracted text to this dir")
	analyzeCmd.Flags().StringVar(&analyzeGraphJSON, "graph-json", "", "Also write the graph as JSON to this path")
	analyzeCmd.Flags().BoolVar(&analyzeNoCache, "no-cache", false, "Disable the extraction cache")
	analyzeCmd.Flags().BoolVar(&analyzeVerbose, "verbose", false, "Print per-document worker traces")
	rootCmd.AddCommand(analyzeCmd)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <zotero.csv>",
	Short: "Build the citation graph from a Zotero CSV export",
	Long: `Build the citation graph from a Zotero CSV export.

Every entry's first PDF attachment is read, the trailing pages are
extracted, and other known titles are matched inside the text. The
run writes Edges_<name> and Nodes_<name> tables into the output dir.

Defaults can be set in ~/.config/citemap/config.yml or through
CITEMAP_* environment variables (a .env file is honored); flags win.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	applyDefaults(cmd)

	params := runParams{
		workers:   analyzeWorkers,
		chunkSize: analyzeChunkSize,
		verbose:   analyzeVerbose,
	}
	if !analyzeNoCache {
		params.cacheDir = filepath.Join(analyzeOutDir, "cache")
	}

	lib, outcome, elapsed := processBibliography(args[0], params)

	printSummary(lib, outcome, elapsed)

	writer := &gephi.Writer{
		Dir:       analyzeOutDir,
		Name:      analyzeOutCSV,
		Delimiter: delimiterRune(analyzeDelimiter),
	}
	if err := writer.WriteEdges(outcome.Graph.Edges); err != nil {
		fatal(ExitError, "%v", err)
	}
	if err := writer.WriteNodes(outcome.Graph.Nodes, gephi.NewNamer()); err != nil {
		fatal(ExitError, "%v", err)
	}

	if analyzeTxtDir != "" {
		if err := dumpTexts(analyzeTxtDir, outcome); err != nil {
			fatal(ExitError, "%v", err)
		}
	}

	if analyzeGraphJSON != "" {
		if err := viz.WriteJSON(analyzeGraphJSON, viz.Build(outcome.Graph, gephi.NewNamer())); err != nil {
			fatal(ExitError, "%v", err)
		}
	}

	return nil
}

// applyDefaults fills unset flags from the environment and the global
// config file. Precedence: flag > CITEMAP_* env (with .env honored) >
// config file > built-in default.
func applyDefaults(cmd *cobra.Command) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fatal(ExitConfigError, "%v", err)
	}

	resolveString(cmd, "out-dir", "CITEMAP_OUT_DIR", cfg.OutDir, &analyzeOutDir)
	resolveString(cmd, "out-csv", "CITEMAP_OUT_CSV", cfg.OutCSV, &analyzeOutCSV)
	resolveString(cmd, "delimiter", "CITEMAP_DELIMITER", cfg.Delimiter, &analyzeDelimiter)
	resolveString(cmd, "txt-dir", "CITEMAP_TXT_DIR", cfg.TxtDir, &analyzeTxtDir)
	resolveInt(cmd, "workers", "CITEMAP_WORKERS", cfg.Workers, &analyzeWorkers)
	resolveInt(cmd, "chunk-size", "CITEMAP_CHUNK_SIZE", cfg.ChunkSize, &analyzeChunkSize)
}

// runParams configures one pipeline invocation.
type runParams struct {
	workers   int
	chunkSize int
	cacheDir  string // "" disables the extraction cache
	verbose   bool
}

// processBibliography loads the library and runs the worker pool.
// Fatal input conditions exit here, before any processing begins.
func processBibliography(csvPath string, p runParams) (*bib.Library, *pipeline.Outcome, time.Duration) {
	lib, err := bib.Load(csvPath)
	if err != nil {
		fatal(ExitDataError, "%v", err)
	}
	if lib.Collisions > 0 {
		fmt.Fprintf(os.Stderr, "warning: %d entries share a normalized title with an earlier entry; only the last of each group is kept\n", lib.Collisions)
	}

	var source pdfx.PageSource = pdfx.Reader{}
	if p.cacheDir != "" {
		cache, err := storage.Open(filepath.Join(p.cacheDir, "extractions.db"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: extraction cache unavailable: %v\n", err)
		} else {
			defer cache.Close()
			source = &storage.CachedSource{Source: source, Cache: cache}
		}
	}

	opts := pipeline.Options{
		Extractor: &pdfx.Extractor{Source: source},
		Workers:   p.workers,
		ChunkSize: p.chunkSize,
	}
	if p.verbose {
		opts.Trace = func(r pipeline.Result) {
			fmt.Fprint(os.Stderr, r.Trace)
		}
	}

	start := time.Now()
	outcome := pipeline.Run(lib, opts)
	return lib, outcome, time.Since(start)
}

// printSummary reports counts, timing, and every failed document with
// its original metadata, in first-encounter order.
func printSummary(lib *bib.Library, outcome *pipeline.Outcome, elapsed time.Duration) {
	fmt.Printf("\n---- Finished ----\n")
	fmt.Printf("Processed %d papers in %s\n", len(lib.Keys), elapsed.Round(time.Millisecond))
	fmt.Printf("Found %d citation edges\n", len(outcome.Graph.Edges))
	fmt.Printf("%d documents were not extracted due to errors:\n", len(outcome.Failures))
	for i, f := range outcome.Failures {
		e := f.Entry
		fmt.Printf("%d. %s %s %s %s\n", i, e.Author, e.Year, e.Title, e.File)
		fmt.Printf("\t-- %s\n", f.Message)
	}
}

// dumpTexts writes each successfully extracted blob to its own file.
// Naming state is threaded through a fresh Namer owned by this single
// emission pass.
func dumpTexts(dir string, outcome *pipeline.Outcome) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating text dir: %w", err)
	}

	namer := gephi.NewNamer()
	for i, r := range outcome.Results {
		if !r.Success {
			continue
		}
		node := outcome.Graph.Nodes[i]
		entry := bib.Entry{Title: node.Title, Author: node.Author, Year: node.Year}
		path := filepath.Join(dir, namer.Name(entry)+".txt")
		if err := os.WriteFile(path, []byte(r.Text+"\n"), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return nil
}

// delimiterRune converts the delimiter flag to a rune, accepting the
// literal escape "\t" from shells that won't pass a tab.
func delimiterRune(s string) rune {
	if s == `\t` || s == "" {
		return '\t'
	}
	return []rune(s)[0]
}

func resolveString(cmd *cobra.Command, name, envVar, cfgValue string, target *string) {
	if cmd.Flags().Changed(name) {
		return
	}
	if v := os.Getenv(envVar); v != "" {
		*target = v
		return
	}
	if cfgValue != "" {
		*target = cfgValue
	}
}

func resolveInt(cmd *cobra.Command, name, envVar string, cfgValue int, target *int) {
	if cmd.Flags().Changed(name) {
		return
	}
	if v := os.Getenv(envVar); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*target = n
			return
		}
		fmt.Fprintf(os.Stderr, "warning: ignoring invalid %s=%q\n", envVar, v)
	}
	if cfgValue > 0 {
		*target = cfgValue
	}
}
