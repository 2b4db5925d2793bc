// Package pipeline fans bibliography entries across a worker pool,
// collects per-document results, and assembles the citation graph.
package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matsen/citemap/internal/bib"
	"github.com/matsen/citemap/internal/cite"
	"github.com/matsen/citemap/internal/pdfx"
)

const (
	DefaultWorkers   = 4
	DefaultChunkSize = 5
)

// Result is the outcome of processing one bibliography entry.
type Result struct {
	Key     string
	Success bool

	// Success fields
	Text      string
	PageCount int
	Cited     []string // cited keys, in title-set enumeration order

	// Failure fields
	Reason  pdfx.Reason
	Message string

	// Advisory diagnostics; not consumed by graph assembly.
	Trace   string
	Elapsed time.Duration
}

// Node is one graph node. Every bibliography entry becomes exactly one
// node, whether or not its PDF was readable.
type Node struct {
	Key    string
	Title  string
	Author string
	Year   string
}

// Edge is one inferred citation: the source document's text mentions
// the target document's title.
type Edge struct {
	Source string
	Target string
	Weight int
}

// Failure records a document that produced no text, for the final
// report.
type Failure struct {
	Key     string
	Reason  pdfx.Reason
	Message string
	Entry   bib.Entry
}

// Graph is the assembled citation graph.
type Graph struct {
	Nodes []Node
	Edges []Edge
}

// Worker processes single entries: extract, then match. It holds only
// read-only state and is safe to share across goroutines.
type Worker struct {
	Extractor *pdfx.Extractor
	Keys      []string // all title keys, enumeration order
}

// Process runs one entry to completion. It never panics or returns an
// error: every per-document failure is folded into the Result.
func (w *Worker) Process(key string, entry bib.Entry) Result {
	start := time.Now()

	var trace strings.Builder
	fmt.Fprintf(&trace, "%s %s %.40s %s\n", firstAuthors(entry.Author, 3), entry.Year, entry.Title, entry.File)

	ext, err := w.Extractor.Extract(entry.File)
	extractElapsed := time.Since(start)
	fmt.Fprintf(&trace, "\t-- extracted pdf in %v\n", extractElapsed)

	if err != nil {
		var xe *pdfx.ExtractError
		if !errors.As(err, &xe) {
			// Extractor contract violation; treat as a parse failure
			// rather than crashing the batch.
			xe = &pdfx.ExtractError{Reason: pdfx.ParseError, Message: err.Error()}
		}
		fmt.Fprintf(&trace, "\t-- failed: %s\n", xe.Message)
		return Result{
			Key:     key,
			Success: false,
			Reason:  xe.Reason,
			Message: xe.Message,
			Trace:   trace.String(),
			Elapsed: time.Since(start),
		}
	}

	fmt.Fprintf(&trace, "\t-- pages: %d\n", ext.PageCount)

	cited := cite.FindCitations(ext.Text, w.Keys, key)
	fmt.Fprintf(&trace, "\t-- matched citations in %v\n", time.Since(start)-extractElapsed)
	for _, c := range cited {
		fmt.Fprintf(&trace, "\t\t-- citation found: %s\n", c)
	}

	return Result{
		Key:       key,
		Success:   true,
		Text:      ext.Text,
		PageCount: ext.PageCount,
		Cited:     cited,
		Trace:     trace.String(),
		Elapsed:   time.Since(start),
	}
}

// firstAuthors returns up to n entries of a semicolon-separated author
// list, space-joined, for trace lines.
func firstAuthors(authorField string, n int) string {
	authors := strings.Split(authorField, ";")
	if len(authors) > n {
		authors = authors[:n]
	}
	for i := range authors {
		authors[i] = strings.TrimSpace(authors[i])
	}
	return strings.Join(authors, " ")
}
