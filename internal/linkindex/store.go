// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package linkindex keeps extracted links in a SQLite database so they can
// be queried across many documents. Indexing is incremental: a file whose
// modification time has not changed since it was last indexed is skipped.
package linkindex

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kaesluder/link-extractor/pkg/types"
)

const (
	// DefaultDBPath is used when IndexConfig.DBPath is empty.
	DefaultDBPath = ".link-extractor/links.db"

	defaultMaxResults = 20
)

// Extractor returns the links of one file.
type Extractor interface {
	ExtractFile(path string) ([]types.Link, error)
}

// Store manages the link index database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// NewStore opens or creates the database at cfg.DBPath, creating its
// directory and schema as needed.
func NewStore(cfg types.IndexConfig) (*Store, error) {
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = DefaultDBPath
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			source_file TEXT PRIMARY KEY,
			mod_time TEXT NOT NULL,
			link_count INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS links (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			source_file TEXT NOT NULL REFERENCES documents(source_file) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			description TEXT NOT NULL,
			url TEXT NOT NULL,
			UNIQUE(source_file, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_links_url ON links(url)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// IngestSummary holds counts from an indexing run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Removed int
	Failed  int
}

// Total returns the number of files processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Removed + s.Failed
}

// IndexFiles extracts and stores the links of each path, writing one status
// line per file to w. New files are indexed, changed files have their links
// replaced, and files unchanged since the last run are skipped. An indexed
// file that no longer exists is removed from the index. A failing file is
// counted and reported without stopping the run.
func (s *Store) IndexFiles(ctx context.Context, e Extractor, paths []string, w io.Writer) (IngestSummary, error) {
	var summary IngestSummary

	for _, path := range paths {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			if removed, rmErr := s.Remove(ctx, path); rmErr == nil && removed {
				fmt.Fprintf(w, "removed %s\n", path)
				summary.Removed++
				continue
			}
		}
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", path, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT mod_time FROM documents WHERE source_file = ?`, path,
		).Scan(&storedModTime)
		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", path)
			summary.Skipped++
			continue
		}
		isUpdate := err == nil

		links, err := e.ExtractFile(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", path, err)
			summary.Failed++
			continue
		}

		if err := s.ingestDocument(ctx, path, modTime, links); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", path, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d links)\n", path, len(links))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%d links)\n", path, len(links))
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, removed: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Removed, summary.Failed)

	return summary, nil
}

// ingestDocument replaces the stored links of sourceFile in one transaction.
func (s *Store) ingestDocument(ctx context.Context, sourceFile, modTime string, links []types.Link) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM links WHERE source_file = ?`, sourceFile); err != nil {
		return fmt.Errorf("deleting old links: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (source_file, mod_time, link_count) VALUES (?, ?, ?)
		 ON CONFLICT(source_file) DO UPDATE SET
			mod_time=excluded.mod_time, link_count=excluded.link_count`,
		sourceFile, modTime, len(links),
	)
	if err != nil {
		return fmt.Errorf("upserting document: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO links (source_file, position, description, url) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, l := range links {
		if _, err := stmt.ExecContext(ctx, sourceFile, i, l.Description, l.URL); err != nil {
			return fmt.Errorf("inserting link %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// Remove deletes a document and its links from the index. It reports
// whether the document was indexed.
func (s *Store) Remove(ctx context.Context, sourceFile string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE source_file = ?`, sourceFile)
	if err != nil {
		return false, fmt.Errorf("removing %s: %w", sourceFile, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("removing %s: %w", sourceFile, err)
	}
	return n > 0, nil
}
