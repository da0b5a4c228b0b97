// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package linkindex

import (
	"context"
	"fmt"
	"strings"

	"github.com/kaesluder/link-extractor/pkg/types"
)

// QueryOptions holds parameters for index queries. All set fields must match.
type QueryOptions struct {
	// Query holds whitespace-separated terms; every term must appear,
	// case-insensitively, in the description or the URL.
	Query string

	// URL matches links whose URL contains this substring.
	URL string

	// SourceFile restricts results to one document.
	SourceFile string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return strings.TrimSpace(q.Query) == "" && q.URL == "" && q.SourceFile == ""
}

// Retrieve returns links matching opts, ordered by source file and then by
// position within the file.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]types.Link, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}
	return s.query(ctx, opts, maxResults)
}

func (s *Store) query(ctx context.Context, opts QueryOptions, limit int) ([]types.Link, error) {
	var (
		qb   strings.Builder
		args []any
	)

	qb.WriteString(`SELECT source_file, description, url FROM links WHERE 1=1`)

	for _, term := range strings.Fields(opts.Query) {
		qb.WriteString(` AND (description LIKE ? ESCAPE '\' OR url LIKE ? ESCAPE '\')`)
		pattern := containsPattern(term)
		args = append(args, pattern, pattern)
	}

	if opts.URL != "" {
		qb.WriteString(` AND url LIKE ? ESCAPE '\'`)
		args = append(args, containsPattern(opts.URL))
	}

	if opts.SourceFile != "" {
		qb.WriteString(` AND source_file = ?`)
		args = append(args, opts.SourceFile)
	}

	qb.WriteString(` ORDER BY source_file, position`)

	if limit > 0 {
		qb.WriteString(` LIMIT ?`)
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying link index: %w", err)
	}
	defer rows.Close()

	links := make([]types.Link, 0)
	for rows.Next() {
		var l types.Link
		if err := rows.Scan(&l.SourceFile, &l.Description, &l.URL); err != nil {
			return nil, fmt.Errorf("scanning link: %w", err)
		}
		links = append(links, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating links: %w", err)
	}
	return links, nil
}

// containsPattern builds a LIKE pattern matching s anywhere, with LIKE
// wildcards in s taken literally.
func containsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
