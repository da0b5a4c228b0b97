// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package linkextract

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/kaesluder/link-extractor/pkg/types"
)

// FileExtractor extracts the links of a single file. *Extractor implements it.
type FileExtractor interface {
	ExtractFile(path string) ([]types.Link, error)
}

// FileResult is the outcome of extracting one file.
type FileResult struct {
	Path  string
	Links []types.Link
	Err   error
}

// BatchSummary counts the outcome of a batch extraction run.
type BatchSummary struct {
	Extracted int
	Failed    int
	Links     int
}

// Total returns the number of files processed.
func (s BatchSummary) Total() int {
	return s.Extracted + s.Failed
}

// HasFailures reports whether any file failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// ExtractFiles extracts every path with at most workers files in flight
// (one per CPU when workers <= 0). Results are returned in the order of
// paths. A failing file does not stop the others; once ctx is done the
// files not yet started are marked failed with ctx.Err().
func ExtractFiles(ctx context.Context, e FileExtractor, paths []string, workers int) ([]FileResult, BatchSummary) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]FileResult, len(paths))
	var g errgroup.Group
	g.SetLimit(workers)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = FileResult{Path: path, Err: err}
				return nil
			}
			links, err := e.ExtractFile(path)
			results[i] = FileResult{Path: path, Links: links, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	var summary BatchSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
			continue
		}
		summary.Extracted++
		summary.Links += len(r.Links)
	}
	return results, summary
}

// Flatten concatenates the links of the successful results, in order.
// The result is never nil.
func Flatten(results []FileResult) []types.Link {
	links := make([]types.Link, 0)
	for _, r := range results {
		if r.Err == nil {
			links = append(links, r.Links...)
		}
	}
	return links
}
