package storage

import (
	"os"

	"github.com/matsen/citemap/internal/pdfx"
)

// CachedSource wraps a PageSource with the extraction cache. Files
// that cannot be stat'd bypass the cache entirely, and cache write
// failures are swallowed: the cache is an accelerator, never a reason
// to fail a document.
type CachedSource struct {
	Source pdfx.PageSource
	Cache  *Cache
}

// Pages serves from the cache when the file's (size, mtime) identity
// matches a previous extraction, otherwise extracts and stores.
func (s *CachedSource) Pages(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return s.Source.Pages(path)
	}
	size, mtime := info.Size(), info.ModTime().Unix()

	if pages, ok, err := s.Cache.Get(path, size, mtime); err == nil && ok {
		return pages, nil
	}

	pages, err := s.Source.Pages(path)
	if err != nil {
		return nil, err
	}

	_ = s.Cache.Put(path, size, mtime, pages)
	return pages, nil
}
