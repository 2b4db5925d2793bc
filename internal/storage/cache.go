// Package storage provides the SQLite extraction cache. The cache is
// ephemeral state: deleting it only costs re-extraction time.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Cache stores extracted page text keyed by the source file's path,
// size, and modification time, so unchanged PDFs are read once across
// runs.
type Cache struct {
	db *sql.DB
}

// Open opens or creates a cache database at path, creating parent
// directories as needed.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS extractions (
			path TEXT NOT NULL,
			size INTEGER NOT NULL,
			mtime INTEGER NOT NULL,
			pages_json TEXT NOT NULL,
			PRIMARY KEY (path, size, mtime)
		);
	`
	_, err := db.Exec(schema)
	return err
}

// Get returns the cached page list for (path, size, mtime). ok is
// false on a miss.
func (c *Cache) Get(path string, size, mtime int64) (pages []string, ok bool, err error) {
	var pagesJSON string
	row := c.db.QueryRow(
		"SELECT pages_json FROM extractions WHERE path = ? AND size = ? AND mtime = ?",
		path, size, mtime,
	)
	if err := row.Scan(&pagesJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("querying cache: %w", err)
	}

	if err := json.Unmarshal([]byte(pagesJSON), &pages); err != nil {
		return nil, false, fmt.Errorf("decoding cached pages: %w", err)
	}
	return pages, true, nil
}

// Put stores the page list for (path, size, mtime), replacing any
// previous entry for the same key.
func (c *Cache) Put(path string, size, mtime int64, pages []string) error {
	pagesJSON, err := json.Marshal(pages)
	if err != nil {
		return fmt.Errorf("encoding pages: %w", err)
	}

	_, err = c.db.Exec(
		"INSERT OR REPLACE INTO extractions (path, size, mtime, pages_json) VALUES (?, ?, ?, ?)",
		path, size, mtime, string(pagesJSON),
	)
	if err != nil {
		return fmt.Errorf("inserting cache entry: %w", err)
	}
	return nil
}
