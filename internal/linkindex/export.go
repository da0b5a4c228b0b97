// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package linkindex

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kaesluder/link-extractor/internal/output"
)

// Export writes every link matching opts to w. MaxResults is ignored.
func (s *Store) Export(ctx context.Context, w io.Writer, opts QueryOptions, out output.Options) error {
	links, err := s.query(ctx, opts, 0)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}
	return output.Write(w, links, out)
}

// ExportFile writes the export to path, creating its directory.
func (s *Store) ExportFile(ctx context.Context, path string, opts QueryOptions, out output.Options) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	if err := s.Export(ctx, f, opts, out); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
