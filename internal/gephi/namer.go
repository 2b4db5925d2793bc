// Package gephi writes the node and edge tables consumed by graph
// tools, and generates the per-paper display names used for node
// labels and text-dump filenames.
package gephi

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/matsen/citemap/internal/bib"
)

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]+`)

// Namer generates "Author et al. Year" style display names,
// disambiguating repeats with a title-derived suffix. State is held in
// the Namer, not at package level: each emission pass owns its own
// accumulator.
type Namer struct {
	used map[string]bool
}

func NewNamer() *Namer {
	return &Namer{used: make(map[string]bool)}
}

// Name returns the display name for an entry. Names repeat the
// historical format: first author's surname, an "et al." or
// "& Surname" marker depending on author count, then the year; a
// collision with an earlier name appends a squashed title fragment.
func (n *Namer) Name(e bib.Entry) string {
	squashedTitle := nonAlnum.ReplaceAllString(strings.Join(firstWords(e.Title, 10), "_"), "")

	authors := strings.Split(e.Author, ";")
	second := ""
	if len(authors) > 2 {
		second = "et al."
	} else if len(authors) == 2 {
		second = "& " + surname(authors[1])
	}
	first := surname(authors[0])

	name := fmt.Sprintf("%s %s %s", first, second, e.Year)
	if n.used[name] {
		name += titleSuffix(squashedTitle)
	}
	n.used[name] = true
	return name
}

// titleSuffix drops the last 20 characters of the squashed title,
// mirroring the historical disambiguation rule; short titles yield no
// suffix at all.
func titleSuffix(squashedTitle string) string {
	if len(squashedTitle) <= 20 {
		return ""
	}
	return squashedTitle[:len(squashedTitle)-20]
}

func firstWords(s string, n int) []string {
	words := strings.Split(s, " ")
	if len(words) > n {
		words = words[:n]
	}
	return words
}

// surname extracts the family name from a "Last, First" author field.
func surname(author string) string {
	return strings.TrimSpace(strings.Split(author, ",")[0])
}
