package gephi

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/matsen/citemap/internal/bib"
	"github.com/matsen/citemap/internal/pipeline"
)

// DefaultDelimiter is the output field delimiter.
const DefaultDelimiter = '\t'

// Writer emits the Edges_ and Nodes_ tables for one run. Files are
// opened in append mode, so successive runs into the same directory
// accumulate rows (headers included), matching the historical output
// contract.
type Writer struct {
	Dir       string // output directory, created if missing
	Name      string // table filename suffix, e.g. "titles.csv"
	Delimiter rune   // zero means DefaultDelimiter
}

// EdgesPath returns the edges table path.
func (w *Writer) EdgesPath() string {
	return filepath.Join(w.Dir, "Edges_"+w.Name)
}

// NodesPath returns the nodes table path.
func (w *Writer) NodesPath() string {
	return filepath.Join(w.Dir, "Nodes_"+w.Name)
}

// WriteEdges appends the edge table: one row per citation edge, weight
// always 1, no aggregation of repeated pairs.
func (w *Writer) WriteEdges(edges []pipeline.Edge) error {
	return w.writeTable(w.EdgesPath(), func(cw *csv.Writer) error {
		if err := cw.Write([]string{"Source", "Target", "Weight"}); err != nil {
			return err
		}
		for _, e := range edges {
			if err := cw.Write([]string{e.Source, e.Target, strconv.Itoa(e.Weight)}); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteNodes appends the node table: one row per bibliography entry,
// in the order given. Display names come from namer, which must be
// fresh for the pass so disambiguation is deterministic.
func (w *Writer) WriteNodes(nodes []pipeline.Node, namer *Namer) error {
	return w.writeTable(w.NodesPath(), func(cw *csv.Writer) error {
		if err := cw.Write([]string{"Id", "Label", "Author", "PrettyName"}); err != nil {
			return err
		}
		for _, n := range nodes {
			entry := entryOf(n)
			if err := cw.Write([]string{n.Key, n.Title, n.Author, namer.Name(entry)}); err != nil {
				return err
			}
		}
		return nil
	})
}

func (w *Writer) writeTable(path string, fill func(*csv.Writer) error) error {
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	cw.Comma = w.Delimiter
	if cw.Comma == 0 {
		cw.Comma = DefaultDelimiter
	}

	if err := fill(cw); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return nil
}

func entryOf(n pipeline.Node) bib.Entry {
	return bib.Entry{Title: n.Title, Author: n.Author, Year: n.Year}
}
