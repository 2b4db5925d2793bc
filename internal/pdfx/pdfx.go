// Package pdfx turns a bibliography entry's attachment list into the
// citation-bearing text of its PDF: it picks the first PDF attachment,
// pulls page text through a PageSource, and keeps only the trailing
// pages where reference sections live.
package pdfx

import (
	"fmt"
	"strings"
)

// TrailingPages is how many pages from the end of a document are
// scanned for citations. Reference sections are assumed to live near
// the end; a paper whose references start earlier will under-extract.
const TrailingPages = 10

// Reason classifies a per-document extraction failure.
type Reason string

const (
	MissingAttachment Reason = "missing_attachment"
	NoPDFAttachment   Reason = "no_pdf_attachment"
	ParseError        Reason = "parse_error"
	EmptyText         Reason = "empty_text"
)

// ExtractError is a typed per-document failure. It is data, not a
// crash: every malformed file, missing attachment, and empty-text
// outcome becomes one of these.
type ExtractError struct {
	Reason  Reason
	Message string
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

func failf(reason Reason, format string, args ...interface{}) error {
	return &ExtractError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// Extraction is a successful extraction result.
type Extraction struct {
	Path      string // attachment that was read
	PageCount int    // total pages in the document, before truncation
	Text      string // trailing pages joined with newlines
}

// PageSource provides ordered page-text strings for a document. It is
// the seam between the pipeline and any real PDF backend, so matching
// logic can be tested with synthetic pages.
type PageSource interface {
	Pages(path string) ([]string, error)
}

// SelectPDF scans a semicolon-separated attachment list for the first
// entry naming a PDF. Comparison is case-insensitive on the trimmed
// path suffix.
func SelectPDF(fileField string) (string, error) {
	if strings.TrimSpace(fileField) == "" {
		return "", failf(MissingAttachment, "entry has no file attachments")
	}
	for _, token := range strings.Split(fileField, ";") {
		token = strings.TrimSpace(token)
		if strings.HasSuffix(strings.ToLower(token), ".pdf") {
			return token, nil
		}
	}
	return "", failf(NoPDFAttachment, "no .pdf attachment in %q", fileField)
}

// Extractor extracts trailing-page text for bibliography entries.
type Extractor struct {
	Source PageSource
	Keep   int // trailing pages to keep; 0 means TrailingPages
}

// Extract selects the entry's PDF attachment and returns its trailing
// pages joined into one text blob. All failures, including panics from
// a misbehaving PageSource, come back as *ExtractError.
func (x *Extractor) Extract(fileField string) (*Extraction, error) {
	path, err := SelectPDF(fileField)
	if err != nil {
		return nil, err
	}

	pages, err := x.pages(path)
	if err != nil {
		return nil, failf(ParseError, "parsing %s: %v", path, err)
	}

	total := len(pages)
	keep := x.Keep
	if keep <= 0 {
		keep = TrailingPages
	}
	if total > keep {
		pages = pages[total-keep:]
	}

	text := strings.Join(pages, "\n")
	if len(text) == 0 {
		return nil, failf(EmptyText, "no text extracted from %s", path)
	}

	return &Extraction{Path: path, PageCount: total, Text: text}, nil
}

// pages calls the source with panic recovery. PDF libraries are fed
// arbitrary files from disk and some malformed inputs panic deep in
// the parser; a single bad document must not abort the batch.
func (x *Extractor) pages(path string) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page extraction panicked: %v", r)
		}
	}()
	return x.Source.Pages(path)
}
