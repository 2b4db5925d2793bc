package pdfx

import (
	"fmt"

	"github.com/ledongthuc/pdf"
)

// Reader is the real PageSource, backed by the ledongthuc/pdf text
// extractor. Images and figures are never rendered; only the text
// layer is read.
type Reader struct{}

// Pages returns one text string per page, in document order. Pages
// whose text layer is absent or unreadable yield empty strings so
// page ordinals stay aligned with the document.
func (Reader) Pages(path string) ([]string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	numPages := r.NumPage()
	pages := make([]string, 0, numPages)

	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}

	return pages, nil
}
