// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package linkextract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark/ast"

	"github.com/kaesluder/link-extractor/internal/source"
	"github.com/kaesluder/link-extractor/pkg/types"
)

func TestExtractLinks(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		want     []types.Link
	}{
		{
			name:     "inline link",
			markdown: "[example](https://www.example.com)",
			want: []types.Link{
				{Description: "example", URL: "https://www.example.com", SourceFile: "file.md"},
			},
		},
		{
			name:     "space before parenthesis is not a link",
			markdown: "[example] (https://www.example.com)",
			want:     []types.Link{},
		},
		{
			name:     "parenthesized url without label",
			markdown: "(https://www.example.com)",
			want:     []types.Link{},
		},
		{
			name:     "empty input",
			markdown: "",
			want:     []types.Link{},
		},
		{
			name:     "no links",
			markdown: "# Title\n\nJust *some* text and `code`.\n",
			want:     []types.Link{},
		},
		{
			name:     "two list items",
			markdown: "- [example](https://www.example.com)\n- [example](https://www.example.com)\n",
			want: []types.Link{
				{Description: "example", URL: "https://www.example.com", SourceFile: "file.md"},
				{Description: "example", URL: "https://www.example.com", SourceFile: "file.md"},
			},
		},
		{
			name:     "emphasis inside link text",
			markdown: "[an *emphasized* **strong** word](https://example.com/a)",
			want: []types.Link{
				{Description: "an emphasized strong word", URL: "https://example.com/a", SourceFile: "file.md"},
			},
		},
		{
			name:     "code span inside link text",
			markdown: "[`go test` docs](https://go.dev/cmd/go)",
			want: []types.Link{
				{Description: "go test docs", URL: "https://go.dev/cmd/go", SourceFile: "file.md"},
			},
		},
		{
			name:     "image inside link contributes alt text",
			markdown: "[![build status](badge.svg)](https://ci.example.com)",
			want: []types.Link{
				{Description: "build status", URL: "https://ci.example.com", SourceFile: "file.md"},
			},
		},
		{
			name:     "image alone is not a link",
			markdown: "![diagram](diagram.png)",
			want:     []types.Link{},
		},
		{
			name:     "character references are resolved",
			markdown: "[AT&amp;T](https://att.example)",
			want: []types.Link{
				{Description: "AT&T", URL: "https://att.example", SourceFile: "file.md"},
			},
		},
		{
			name:     "empty link text",
			markdown: "[](https://example.com/empty)",
			want: []types.Link{
				{Description: "", URL: "https://example.com/empty", SourceFile: "file.md"},
			},
		},
		{
			name:     "relative url kept as written",
			markdown: "See [API](../api.md#intro) for details.",
			want: []types.Link{
				{Description: "API", URL: "../api.md#intro", SourceFile: "file.md"},
			},
		},
		{
			name:     "reference-style link",
			markdown: "See [the API][ref].\n\n[ref]: api.md\n",
			want: []types.Link{
				{Description: "the API", URL: "api.md", SourceFile: "file.md"},
			},
		},
		{
			name:     "autolink",
			markdown: "Visit <https://example.com/path> now.",
			want: []types.Link{
				{Description: "https://example.com/path", URL: "https://example.com/path", SourceFile: "file.md"},
			},
		},
		{
			name:     "escaped reference in link text stays literal",
			markdown: "[\\&amp;](u)",
			want: []types.Link{
				{Description: "&amp;", URL: "u", SourceFile: "file.md"},
			},
		},
		{
			name:     "email autolink gets mailto scheme",
			markdown: "Write to <foo@bar.com>.",
			want: []types.Link{
				{Description: "foo@bar.com", URL: "mailto:foo@bar.com", SourceFile: "file.md"},
			},
		},
		{
			name:     "escapes in destination are resolved",
			markdown: "[a](foo\\_bar)",
			want: []types.Link{
				{Description: "a", URL: "foo_bar", SourceFile: "file.md"},
			},
		},
		{
			name:     "character references in destination are resolved",
			markdown: "[a](a&amp;b)",
			want: []types.Link{
				{Description: "a", URL: "a&b", SourceFile: "file.md"},
			},
		},
		{
			name:     "percent escapes in destination are kept",
			markdown: "[a](https://example.com/a%20b)",
			want: []types.Link{
				{Description: "a", URL: "https://example.com/a%20b", SourceFile: "file.md"},
			},
		},
		{
			name:     "links in code are not links",
			markdown: "`[a](b.md)`\n\n```\n[c](d.md)\n```\n",
			want:     []types.Link{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractLinks(tt.markdown, "file.md")
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractLinksDocumentOrder(t *testing.T) {
	md := "[a](1) and *[b](2)*\n\n- [c](3)\n  - nested [d](4)\n\n> quoted [e](5)\n"

	got := ExtractLinks(md, "order.md")

	urls := make([]string, len(got))
	for i, l := range got {
		urls[i] = l.URL
	}
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, urls)
}

func TestExtractLinksSourceFileVerbatim(t *testing.T) {
	for _, id := range []string{"", "docs/README.md", "not a path at all", "../../x.md"} {
		links := ExtractLinks("[a](b) [c](d)", id)
		require.Len(t, links, 2)
		for _, l := range links {
			assert.Equal(t, id, l.SourceFile)
		}
	}
}

func TestExtractLinksCountMatchesLinkNodes(t *testing.T) {
	inputs := []string{
		"",
		"plain text",
		"[a](b)",
		"<https://a.example> [b](c) ![i](j) [![k](l)](m)",
		"# [heading link](h)\n\n| not | a table |\n\n1. [x](y)\n2. [z][r]\n\n[r]: /r\n",
	}
	e := New(types.ExtractConfig{})
	for _, in := range inputs {
		root := e.Parse([]byte(in))
		count := 0
		_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
			if entering {
				switch n.(type) {
				case *ast.Link, *ast.AutoLink:
					count++
				}
			}
			return ast.WalkContinue, nil
		})
		assert.Len(t, ExtractLinks(in, "f"), count, "input %q", in)
	}
}

func TestExtractGFMLinkify(t *testing.T) {
	md := "see https://www.example.com today"

	assert.Empty(t, ExtractLinks(md, "f.md"))

	links, err := New(types.ExtractConfig{GFM: true}).Extract([]byte(md), "f.md")
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "https://www.example.com", links[0].URL)
	assert.Equal(t, "https://www.example.com", links[0].Description)
}

func TestExtractFrontMatter(t *testing.T) {
	md := "---\ntitle: Notes\nsee: \"[a](b)\"\n---\n[c](d)\n"

	assert.Len(t, ExtractLinks(md, "f.md"), 2)

	links, err := New(types.ExtractConfig{FrontMatter: true}).Extract([]byte(md), "f.md")
	require.NoError(t, err)
	assert.Equal(t, []types.Link{{Description: "c", URL: "d", SourceFile: "f.md"}}, links)
}

func TestExtractFrontMatterAbsent(t *testing.T) {
	links, err := New(types.ExtractConfig{FrontMatter: true}).Extract([]byte("[c](d)"), "f.md")
	require.NoError(t, err)
	assert.Len(t, links, 1)
}

func TestExtractFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "three_links.md")
	content := "[three links: a](https://example.com)\n\n" +
		"[three links: b](https://example.com)\n\n" +
		"[three links: c](https://example.com)\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	links, err := New(types.ExtractConfig{}).ExtractFile(path)
	require.NoError(t, err)
	require.Len(t, links, 3)
	assert.Equal(t, "https://example.com", links[0].URL)
	assert.Contains(t, links[0].Description, "three links: a")
	assert.Equal(t, path, links[0].SourceFile)
}

func TestExtractFileErrors(t *testing.T) {
	e := New(types.ExtractConfig{})

	_, err := e.ExtractFile("")
	assert.Error(t, err)

	_, err = e.ExtractFile(filepath.Join(t.TempDir(), "missing.md"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(t.TempDir(), "bad.md")
	require.NoError(t, os.WriteFile(bad, []byte{0xff, 0xfe, '[', 'a', ']'}, 0o644))
	_, err = e.ExtractFile(bad)
	assert.ErrorIs(t, err, source.ErrNotUTF8)
}
