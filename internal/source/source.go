// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source loads markdown documents from disk and expands command-line
// arguments into the list of files to process.
package source

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"
)

// ErrNotUTF8 is returned when a file's contents are not valid UTF-8.
var ErrNotUTF8 = errors.New("not valid UTF-8")

// markdownExts lists the extensions picked up when expanding a directory.
var markdownExts = map[string]bool{
	".md":       true,
	".markdown": true,
}

// Load reads the file at path and returns its contents as text.
func Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("reading %s: %w", path, ErrNotUTF8)
	}
	return string(data), nil
}

// IsMarkdown reports whether path has a markdown file extension.
func IsMarkdown(path string) bool {
	return markdownExts[strings.ToLower(filepath.Ext(path))]
}

// Expand turns arguments into a list of files. File arguments are passed
// through as given, including ones that do not exist, so that a bad path is
// reported when it is loaded rather than silently dropped. Directory
// arguments are replaced by the markdown files they contain, sorted by path;
// subdirectories are only descended into when recursive is set.
func Expand(args []string, recursive bool) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		found, err := markdownFiles(arg, recursive)
		if err != nil {
			return nil, fmt.Errorf("expanding %s: %w", arg, err)
		}
		paths = append(paths, found...)
	}
	return paths, nil
}

func markdownFiles(root string, recursive bool) ([]string, error) {
	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && (!recursive || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if IsMarkdown(path) {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(found)
	return found, nil
}
