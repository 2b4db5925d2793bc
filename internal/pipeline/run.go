package pipeline

import (
	"sync"

	"github.com/matsen/citemap/internal/bib"
	"github.com/matsen/citemap/internal/pdfx"
)

// Options configures a pipeline run. Zero values fall back to the
// package defaults.
type Options struct {
	Extractor *pdfx.Extractor
	Workers   int
	ChunkSize int

	// Trace, when set, receives each result as it completes, from the
	// single collector goroutine. Completion order is arbitrary.
	Trace func(Result)
}

// Outcome is everything a run produced: the graph, the failure report
// in first-encounter order, and the raw per-document results (also in
// encounter order) for downstream consumers like the text dump.
type Outcome struct {
	Graph    Graph
	Failures []Failure
	Results  []Result
}

type task struct {
	key   string
	entry bib.Entry
}

// Run processes every entry in lib through a fixed-size worker pool
// and assembles the citation graph.
//
// Workers pull fixed-size chunks of entries rather than single items.
// They share no mutable state: the title-key set is read-only, and
// every output crosses the results channel to a single collector.
// Graph assembly afterwards is single-threaded and iterates keys in
// encounter order, so node, edge, and failure ordering is identical
// regardless of worker count.
func Run(lib *bib.Library, opts Options) *Outcome {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	worker := &Worker{Extractor: opts.Extractor, Keys: lib.Keys}

	tasks := make(chan []task)
	results := make(chan Result)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for chunk := range tasks {
				for _, t := range chunk {
					results <- worker.Process(t.key, t.entry)
				}
			}
		}()
	}

	// Dispatcher: chunked fan-out in encounter order.
	go func() {
		chunk := make([]task, 0, chunkSize)
		for _, key := range lib.Keys {
			chunk = append(chunk, task{key: key, entry: lib.Entries[key]})
			if len(chunk) == chunkSize {
				tasks <- chunk
				chunk = make([]task, 0, chunkSize)
			}
		}
		if len(chunk) > 0 {
			tasks <- chunk
		}
		close(tasks)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	// Collector: single-threaded fan-in, completion order.
	byKey := make(map[string]Result, len(lib.Keys))
	for r := range results {
		if opts.Trace != nil {
			opts.Trace(r)
		}
		byKey[r.Key] = r
	}

	return assemble(lib, byKey)
}

// assemble builds the final graph and reports from collected results,
// iterating keys in encounter order. Every key becomes a node; each
// successful result contributes one weight-1 edge per cited key, with
// no cross-document deduplication.
func assemble(lib *bib.Library, byKey map[string]Result) *Outcome {
	out := &Outcome{}

	for _, key := range lib.Keys {
		entry := lib.Entries[key]
		out.Graph.Nodes = append(out.Graph.Nodes, Node{
			Key:    key,
			Title:  entry.Title,
			Author: entry.Author,
			Year:   entry.Year,
		})

		r := byKey[key]
		out.Results = append(out.Results, r)

		if r.Success {
			for _, cited := range r.Cited {
				out.Graph.Edges = append(out.Graph.Edges, Edge{Source: key, Target: cited, Weight: 1})
			}
		} else {
			out.Failures = append(out.Failures, Failure{
				Key:     key,
				Reason:  r.Reason,
				Message: r.Message,
				Entry:   entry,
			})
		}
	}

	return out
}
