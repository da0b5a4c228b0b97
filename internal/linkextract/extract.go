// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package linkextract finds hyperlinks in markdown documents. The document is
// parsed into a goldmark tree; every link node found in a pre-order walk
// becomes a types.Link whose description is the text inside the link.
package linkextract

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/kaesluder/link-extractor/internal/source"
	"github.com/kaesluder/link-extractor/pkg/types"
)

// Extractor pulls links out of markdown according to its configuration.
// It holds no parse state and is safe for concurrent use.
type Extractor struct {
	cfg types.ExtractConfig
}

// New returns an Extractor for cfg.
func New(cfg types.ExtractConfig) *Extractor {
	return &Extractor{cfg: cfg}
}

// ExtractLinks returns the links in markdown using the default CommonMark
// parser. sourceFile is copied into every record unchanged.
func ExtractLinks(markdown, sourceFile string) []types.Link {
	// Without front matter handling Extract cannot fail.
	links, _ := New(types.ExtractConfig{}).Extract([]byte(markdown), sourceFile)
	return links
}

// Extract returns the links in src, in document order. The result is never
// nil. It fails only when front matter stripping is enabled and the front
// matter cannot be decoded.
func (e *Extractor) Extract(src []byte, sourceFile string) ([]types.Link, error) {
	if e.cfg.FrontMatter {
		body, err := stripFrontMatter(src)
		if err != nil {
			return nil, err
		}
		src = body
	}

	nodes := LinkNodes(e.Parse(src))
	links := make([]types.Link, 0, len(nodes))
	for _, n := range nodes {
		links = append(links, types.Link{
			Description: AccumulateText(n, src),
			URL:         linkURL(n, src),
			SourceFile:  sourceFile,
		})
	}
	return links, nil
}

// ExtractFile loads path and extracts its links, using path as the source
// identifier.
func (e *Extractor) ExtractFile(path string) ([]types.Link, error) {
	content, err := source.Load(path)
	if err != nil {
		return nil, err
	}
	links, err := e.Extract([]byte(content), path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return links, nil
}

// Parse builds the document tree for src.
func (e *Extractor) Parse(src []byte) ast.Node {
	var opts []goldmark.Option
	if e.cfg.GFM {
		opts = append(opts, goldmark.WithExtensions(extension.GFM))
	}
	// A fresh engine per document keeps Extract free of shared state.
	md := goldmark.New(opts...)
	return md.Parser().Parse(text.NewReader(src))
}

// LinkNodes returns every link node under root, pre-order. A link nested in
// another link's text is returned after its parent.
func LinkNodes(root ast.Node) []ast.Node {
	var nodes []ast.Node
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering && isLink(n) {
			nodes = append(nodes, n)
		}
		return ast.WalkContinue, nil
	})
	return nodes
}

func isLink(n ast.Node) bool {
	switch n.(type) {
	case *ast.Link, *ast.AutoLink:
		return true
	}
	return false
}

// linkURL returns the target of a link node. Backslash escapes and
// character references in a destination are resolved, as the parser would
// for rendering; nothing is percent-decoded. Email autolinks get the
// mailto: scheme the renderer would give them.
func linkURL(n ast.Node, src []byte) string {
	switch link := n.(type) {
	case *ast.Link:
		return string(resolve(link.Destination))
	case *ast.AutoLink:
		url := link.URL(src)
		if link.AutoLinkType == ast.AutoLinkEmail && !bytes.HasPrefix(bytes.ToLower(url), []byte("mailto:")) {
			return "mailto:" + string(url)
		}
		return string(url)
	}
	return ""
}

func stripFrontMatter(src []byte) ([]byte, error) {
	var meta map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(src), &meta)
	if err != nil {
		return nil, fmt.Errorf("parse front matter: %w", err)
	}
	return body, nil
}
