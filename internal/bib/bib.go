// Package bib defines bibliography entries and loads them from a
// Zotero CSV export.
package bib

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/matsen/citemap/internal/textnorm"
)

// Entry is one bibliography row. Entries are created at load time and
// never mutated.
type Entry struct {
	Title  string // original title, used for node labels
	Author string // semicolon-separated author list
	Year   string
	File   string // semicolon-separated attachment paths
}

// Columns gives the zero-based CSV column index of each field.
type Columns struct {
	Year   int
	Author int
	Title  int
	File   int
}

// ZoteroColumns matches the column layout of a Zotero CSV export.
var ZoteroColumns = Columns{Year: 2, Author: 3, Title: 4, File: 37}

// Library holds all loaded entries keyed by normalized title.
type Library struct {
	// Entries maps normalized-title key to entry. When two distinct
	// titles normalize to the same key the later row wins, matching
	// the historical loader behavior; Collisions counts how many rows
	// were lost that way.
	Entries    map[string]Entry
	Keys       []string // keys in first-encounter order
	Collisions int
}

// Key derives the normalized-title key used for lookup and graph node
// identity.
func Key(title string) string {
	return textnorm.Normalize(title)
}

// Load reads a Zotero CSV export from disk.
func Load(path string) (*Library, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening bibliography: %w", err)
	}
	defer f.Close()

	lib, err := LoadCSV(f, ZoteroColumns)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return lib, nil
}

// LoadCSV parses bibliography rows from r using the given column
// layout. The first row is a header and is skipped. Rows shorter than
// the highest referenced column are an error: a truncated export is a
// malformed input, not a per-document condition.
func LoadCSV(r io.Reader, cols Columns) (*Library, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Zotero exports vary in trailing columns

	minFields := maxIndex(cols) + 1

	lib := &Library{Entries: make(map[string]Entry)}

	for row := 0; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row+1, err)
		}
		if row == 0 {
			continue // header
		}
		if len(record) < minFields {
			return nil, fmt.Errorf("row %d: expected at least %d columns, got %d", row+1, minFields, len(record))
		}

		entry := Entry{
			Title:  record[cols.Title],
			Author: record[cols.Author],
			Year:   record[cols.Year],
			File:   record[cols.File],
		}

		key := Key(entry.Title)
		if _, exists := lib.Entries[key]; exists {
			lib.Collisions++
		} else {
			lib.Keys = append(lib.Keys, key)
		}
		lib.Entries[key] = entry
	}

	return lib, nil
}

func maxIndex(cols Columns) int {
	max := cols.Year
	for _, i := range []int{cols.Author, cols.Title, cols.File} {
		if i > max {
			max = i
		}
	}
	return max
}
