package pdfx

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// fakeSource serves canned pages per path.
type fakeSource struct {
	pages map[string][]string
	err   error
}

func (f *fakeSource) Pages(path string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	pages, ok := f.pages[path]
	if !ok {
		return nil, fmt.Errorf("no such file: %s", path)
	}
	return pages, nil
}

// panicSource simulates a PDF backend blowing up on a malformed file.
type panicSource struct{}

func (panicSource) Pages(string) ([]string, error) {
	panic("malformed xref table")
}

func reasonOf(t *testing.T, err error) Reason {
	t.Helper()
	var xe *ExtractError
	if !errors.As(err, &xe) {
		t.Fatalf("error %v is not an *ExtractError", err)
	}
	return xe.Reason
}

func TestSelectPDF(t *testing.T) {
	tests := []struct {
		name       string
		fileField  string
		want       string
		wantReason Reason
	}{
		{
			name:       "empty field",
			fileField:  "",
			wantReason: MissingAttachment,
		},
		{
			name:       "whitespace only",
			fileField:  "   ",
			wantReason: MissingAttachment,
		},
		{
			name:      "single pdf",
			fileField: "/papers/a.pdf",
			want:      "/papers/a.pdf",
		},
		{
			name:      "first pdf wins",
			fileField: "/papers/a.pdf;/papers/b.pdf",
			want:      "/papers/a.pdf",
		},
		{
			name:      "pdf after non-pdf",
			fileField: "/papers/notes.docx; /papers/b.PDF ;/papers/c.pdf",
			want:      "/papers/b.PDF",
		},
		{
			name:       "no pdf attachments",
			fileField:  "/papers/notes.docx;/papers/data.csv",
			wantReason: NoPDFAttachment,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectPDF(tt.fileField)
			if tt.wantReason != "" {
				if err == nil {
					t.Fatalf("SelectPDF(%q) = %q, want failure %s", tt.fileField, got, tt.wantReason)
				}
				if r := reasonOf(t, err); r != tt.wantReason {
					t.Errorf("reason = %s, want %s", r, tt.wantReason)
				}
				return
			}
			if err != nil {
				t.Fatalf("SelectPDF(%q) error: %v", tt.fileField, err)
			}
			if got != tt.want {
				t.Errorf("SelectPDF(%q) = %q, want %q", tt.fileField, got, tt.want)
			}
		})
	}
}

func TestExtractTrailingPages(t *testing.T) {
	pages := make([]string, 15)
	for i := range pages {
		pages[i] = fmt.Sprintf("page-%d", i+1)
	}
	x := &Extractor{Source: &fakeSource{pages: map[string][]string{"/p/long.pdf": pages}}}

	ext, err := x.Extract("/p/long.pdf")
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}

	if ext.PageCount != 15 {
		t.Errorf("PageCount = %d, want 15 (original total)", ext.PageCount)
	}
	if strings.Contains(ext.Text, "page-5\n") || strings.Contains(ext.Text, "page-1\n") {
		t.Errorf("text contains leading pages: %q", ext.Text)
	}
	for i := 6; i <= 15; i++ {
		if !strings.Contains(ext.Text, fmt.Sprintf("page-%d", i)) {
			t.Errorf("text missing trailing page %d", i)
		}
	}
	if got := len(strings.Split(ext.Text, "\n")); got != 10 {
		t.Errorf("joined %d pages, want 10", got)
	}
}

func TestExtractShortDocumentKeepsAllPages(t *testing.T) {
	x := &Extractor{Source: &fakeSource{pages: map[string][]string{
		"/p/short.pdf": {"alpha", "beta"},
	}}}

	ext, err := x.Extract("/p/short.pdf")
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if ext.PageCount != 2 {
		t.Errorf("PageCount = %d, want 2", ext.PageCount)
	}
	if ext.Text != "alpha\nbeta" {
		t.Errorf("Text = %q, want %q", ext.Text, "alpha\nbeta")
	}
}

func TestExtractFailures(t *testing.T) {
	tests := []struct {
		name       string
		source     PageSource
		fileField  string
		wantReason Reason
	}{
		{
			name:       "missing attachment",
			source:     &fakeSource{},
			fileField:  "",
			wantReason: MissingAttachment,
		},
		{
			name:       "no pdf attachment",
			source:     &fakeSource{},
			fileField:  "/p/a.epub",
			wantReason: NoPDFAttachment,
		},
		{
			name:       "backend error",
			source:     &fakeSource{err: errors.New("bad header")},
			fileField:  "/p/a.pdf",
			wantReason: ParseError,
		},
		{
			name:       "backend panic",
			source:     panicSource{},
			fileField:  "/p/a.pdf",
			wantReason: ParseError,
		},
		{
			name:       "no pages yields empty text",
			source:     &fakeSource{pages: map[string][]string{"/p/scan.pdf": {}}},
			fileField:  "/p/scan.pdf",
			wantReason: EmptyText,
		},
		{
			name:       "single textless page yields empty text",
			source:     &fakeSource{pages: map[string][]string{"/p/scan.pdf": {""}}},
			fileField:  "/p/scan.pdf",
			wantReason: EmptyText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := &Extractor{Source: tt.source}
			_, err := x.Extract(tt.fileField)
			if err == nil {
				t.Fatal("expected failure")
			}
			if r := reasonOf(t, err); r != tt.wantReason {
				t.Errorf("reason = %s, want %s", r, tt.wantReason)
			}
		})
	}
}
