// Package viz exports the citation graph as JSON for visualization
// tooling.
package viz

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/matsen/citemap/internal/bib"
	"github.com/matsen/citemap/internal/gephi"
	"github.com/matsen/citemap/internal/pipeline"
)

// GraphData contains all data needed to render the visualization.
type GraphData struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node represents one paper in the graph.
type Node struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	Authors    string `json:"authors,omitempty"`
	Year       string `json:"year,omitempty"`
	PrettyName string `json:"prettyName,omitempty"`
}

// Edge represents one inferred citation.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Weight int    `json:"weight"`
}

// IsEmpty returns true if the graph has no nodes.
func (g *GraphData) IsEmpty() bool {
	return len(g.Nodes) == 0
}

// Build converts a pipeline graph into the JSON shapes. namer must be
// fresh for this pass so display names are disambiguated the same way
// every time.
func Build(g pipeline.Graph, namer *gephi.Namer) GraphData {
	data := GraphData{
		Nodes: make([]Node, 0, len(g.Nodes)),
		Edges: make([]Edge, 0, len(g.Edges)),
	}

	for _, n := range g.Nodes {
		entry := bib.Entry{Title: n.Title, Author: n.Author, Year: n.Year}
		data.Nodes = append(data.Nodes, Node{
			ID:         n.Key,
			Label:      n.Title,
			Authors:    n.Author,
			Year:       n.Year,
			PrettyName: namer.Name(entry),
		})
	}

	for _, e := range g.Edges {
		data.Edges = append(data.Edges, Edge{Source: e.Source, Target: e.Target, Weight: e.Weight})
	}

	return data
}

// WriteJSON writes the graph to path as indented JSON, creating parent
// directories as needed.
func WriteJSON(path string, data GraphData) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding graph: %w", err)
	}

	if err := os.WriteFile(path, append(encoded, '\n'), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
