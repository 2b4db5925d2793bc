package pipeline

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/matsen/citemap/internal/bib"
	"github.com/matsen/citemap/internal/pdfx"
)

// fakeSource serves canned page text per path.
type fakeSource struct {
	pages map[string][]string
}

func (f *fakeSource) Pages(path string) ([]string, error) {
	pages, ok := f.pages[path]
	if !ok {
		return nil, fmt.Errorf("no such file: %s", path)
	}
	return pages, nil
}

func library(entries ...bib.Entry) *bib.Library {
	lib := &bib.Library{Entries: make(map[string]bib.Entry)}
	for _, e := range entries {
		key := bib.Key(e.Title)
		if _, exists := lib.Entries[key]; !exists {
			lib.Keys = append(lib.Keys, key)
		}
		lib.Entries[key] = e
	}
	return lib
}

func extractor(source pdfx.PageSource) *pdfx.Extractor {
	return &pdfx.Extractor{Source: source}
}

func TestRunScenario(t *testing.T) {
	// A has no attachment; B's text mentions A's title with the
	// whitespace already fused by layout extraction.
	lib := library(
		bib.Entry{Title: "Rising Seas", Author: "Doe, Jane", Year: "2019"},
		bib.Entry{Title: "Coastal Adaptation", Author: "Roe, Richard", Year: "2021", File: "/papers/coastal.pdf"},
	)
	source := &fakeSource{pages: map[string][]string{
		"/papers/coastal.pdf": {"introduction text", "references: see risingseas (2019)"},
	}}

	out := Run(lib, Options{Extractor: extractor(source), Workers: 2})

	wantNodes := []Node{
		{Key: "rising seas", Title: "Rising Seas", Author: "Doe, Jane", Year: "2019"},
		{Key: "coastal adaptation", Title: "Coastal Adaptation", Author: "Roe, Richard", Year: "2021"},
	}
	if !reflect.DeepEqual(out.Graph.Nodes, wantNodes) {
		t.Errorf("Nodes = %+v, want %+v", out.Graph.Nodes, wantNodes)
	}

	wantEdges := []Edge{{Source: "coastal adaptation", Target: "rising seas", Weight: 1}}
	if !reflect.DeepEqual(out.Graph.Edges, wantEdges) {
		t.Errorf("Edges = %+v, want %+v", out.Graph.Edges, wantEdges)
	}

	if len(out.Failures) != 1 {
		t.Fatalf("got %d failures, want 1", len(out.Failures))
	}
	f := out.Failures[0]
	if f.Key != "rising seas" || f.Reason != pdfx.MissingAttachment {
		t.Errorf("failure = %+v, want rising seas / %s", f, pdfx.MissingAttachment)
	}
	if f.Entry.Title != "Rising Seas" {
		t.Errorf("failure entry = %+v, want original metadata attached", f.Entry)
	}
}

func TestRunWorkerCountInvariance(t *testing.T) {
	var entries []bib.Entry
	pages := make(map[string][]string)
	for i := 0; i < 23; i++ {
		title := fmt.Sprintf("paper number %c", 'a'+i)
		path := fmt.Sprintf("/papers/%d.pdf", i)
		entries = append(entries, bib.Entry{Title: title, File: path})
		// Every paper cites the previous one.
		body := "body text"
		if i > 0 {
			body = fmt.Sprintf("as argued in paper number %c earlier", 'a'+i-1)
		}
		pages[path] = []string{body}
	}
	// One broken document in the middle.
	entries[11].File = "/papers/missing.docx"

	makeRun := func(workers, chunkSize int) *Outcome {
		return Run(library(entries...), Options{
			Extractor: extractor(&fakeSource{pages: pages}),
			Workers:   workers,
			ChunkSize: chunkSize,
		})
	}

	base := makeRun(1, 1)
	for _, cfg := range []struct{ workers, chunk int }{{4, 5}, {8, 2}, {2, 50}} {
		got := makeRun(cfg.workers, cfg.chunk)
		if !reflect.DeepEqual(got.Graph, base.Graph) {
			t.Errorf("graph differs for workers=%d chunk=%d", cfg.workers, cfg.chunk)
		}
		if !reflect.DeepEqual(got.Failures, base.Failures) {
			t.Errorf("failures differ for workers=%d chunk=%d", cfg.workers, cfg.chunk)
		}
	}
}

func TestRunGraphCompleteness(t *testing.T) {
	lib := library(
		bib.Entry{Title: "Alpha Paper", File: ""},                       // missing attachment
		bib.Entry{Title: "Beta Paper", File: "/p/beta.docx"},            // no pdf
		bib.Entry{Title: "Gamma Paper", File: "/p/gone.pdf"},            // parse error
		bib.Entry{Title: "Delta Paper", File: "/p/delta.pdf"},           // ok
		bib.Entry{Title: "Epsilon Paper", File: "/p/empty.pdf"},         // empty text
	)
	source := &fakeSource{pages: map[string][]string{
		"/p/delta.pdf": {"mentions alphapaper in passing"},
		"/p/empty.pdf": {},
	}}

	out := Run(lib, Options{Extractor: extractor(source), Workers: 3})

	if len(out.Graph.Nodes) != 5 {
		t.Fatalf("got %d nodes, want every entry present regardless of outcome", len(out.Graph.Nodes))
	}
	seen := make(map[string]int)
	for _, n := range out.Graph.Nodes {
		seen[n.Key]++
	}
	for key, count := range seen {
		if count != 1 {
			t.Errorf("key %q appears %d times, want exactly once", key, count)
		}
	}

	wantReasons := map[string]pdfx.Reason{
		"alpha paper":   pdfx.MissingAttachment,
		"beta paper":    pdfx.NoPDFAttachment,
		"gamma paper":   pdfx.ParseError,
		"epsilon paper": pdfx.EmptyText,
	}
	if len(out.Failures) != len(wantReasons) {
		t.Fatalf("got %d failures, want %d", len(out.Failures), len(wantReasons))
	}
	for _, f := range out.Failures {
		if want := wantReasons[f.Key]; f.Reason != want {
			t.Errorf("failure %q reason = %s, want %s", f.Key, f.Reason, want)
		}
	}

	wantEdges := []Edge{{Source: "delta paper", Target: "alpha paper", Weight: 1}}
	if !reflect.DeepEqual(out.Graph.Edges, wantEdges) {
		t.Errorf("Edges = %+v, want %+v", out.Graph.Edges, wantEdges)
	}
}

func TestRunFailureEncounterOrder(t *testing.T) {
	lib := library(
		bib.Entry{Title: "First Broken"},
		bib.Entry{Title: "Fine Paper", File: "/p/fine.pdf"},
		bib.Entry{Title: "Second Broken"},
		bib.Entry{Title: "Third Broken"},
	)
	source := &fakeSource{pages: map[string][]string{"/p/fine.pdf": {"text"}}}

	out := Run(lib, Options{Extractor: extractor(source), Workers: 4})

	want := []string{"first broken", "second broken", "third broken"}
	var got []string
	for _, f := range out.Failures {
		got = append(got, f.Key)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("failure order = %v, want encounter order %v", got, want)
	}
}

func TestWorkerProcessTrace(t *testing.T) {
	source := &fakeSource{pages: map[string][]string{
		"/p/a.pdf": {"see paperb here"},
	}}
	w := &Worker{
		Extractor: extractor(source),
		Keys:      []string{"paper a", "paper b"},
	}

	r := w.Process("paper a", bib.Entry{Title: "Paper A", Author: "Doe, J.", Year: "2020", File: "/p/a.pdf"})
	if !r.Success {
		t.Fatalf("Process() failed: %s", r.Message)
	}
	if r.Trace == "" {
		t.Error("expected a non-empty trace")
	}
	if len(r.Cited) != 1 || r.Cited[0] != "paper b" {
		t.Errorf("Cited = %v, want [paper b]", r.Cited)
	}
	if r.PageCount != 1 {
		t.Errorf("PageCount = %d, want 1", r.PageCount)
	}
}

func TestRunEmptyLibrary(t *testing.T) {
	out := Run(&bib.Library{Entries: map[string]bib.Entry{}}, Options{
		Extractor: extractor(&fakeSource{}),
	})
	if len(out.Graph.Nodes) != 0 || len(out.Graph.Edges) != 0 || len(out.Failures) != 0 {
		t.Errorf("expected empty outcome, got %+v", out)
	}
}
