// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package linkextract

import (
	"bytes"
	"strconv"
	"unicode/utf8"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/util"
)

// AccumulateText returns the text content of n and everything below it, in
// document order. Formatting nodes contribute nothing of their own; adjacent
// text leaves are joined with no separator.
func AccumulateText(n ast.Node, source []byte) string {
	return string(bytes.Join(textFragments(n, source), nil))
}

// textFragments returns the text leaves under n, pre-order.
func textFragments(n ast.Node, source []byte) [][]byte {
	var frags [][]byte
	_ = ast.Walk(n, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if frag, ok := leafText(n, source); ok {
			frags = append(frags, frag)
		}
		return ast.WalkContinue, nil
	})
	return frags
}

// leafText returns the literal text held by n, if n is a text leaf. Line
// breaks are flags on the leaf, not content, so they contribute nothing.
func leafText(n ast.Node, source []byte) ([]byte, bool) {
	switch leaf := n.(type) {
	case *ast.Text:
		v := leaf.Segment.Value(source)
		if leaf.IsRaw() {
			return v, true
		}
		return resolve(v), true
	case *ast.String:
		if leaf.IsRaw() || leaf.IsCode() {
			return leaf.Value, true
		}
		return resolve(leaf.Value), true
	case *ast.AutoLink:
		// Autolinks keep their label in the source rather than in a child.
		return leaf.Label(source), true
	}
	return nil, false
}

// resolve applies backslash unescaping and character reference resolution,
// which goldmark otherwise leaves to the renderer. It makes one pass, so the
// output of an escape is never read again as a reference.
func resolve(v []byte) []byte {
	if bytes.IndexByte(v, '\\') < 0 && bytes.IndexByte(v, '&') < 0 {
		return v
	}
	out := make([]byte, 0, len(v))
	for i := 0; i < len(v); {
		switch c := v[i]; {
		case c == '\\' && i+1 < len(v) && util.IsPunct(v[i+1]):
			out = append(out, v[i+1])
			i += 2
			continue
		case c == '&':
			if r, n := reference(v[i:]); n > 0 {
				out = append(out, r...)
				i += n
				continue
			}
		}
		out = append(out, v[i])
		i++
	}
	return out
}

// reference decodes the entity or numeric reference at the start of v and
// returns its characters and length. n is 0 when v does not start with one.
func reference(v []byte) (chars []byte, n int) {
	if len(v) < 3 || v[0] != '&' {
		return nil, 0
	}
	if v[1] != '#' {
		end := 1
		for end < len(v) && util.IsAlphaNumeric(v[end]) {
			end++
		}
		if end == 1 || end >= len(v) || v[end] != ';' {
			return nil, 0
		}
		entity, ok := util.LookUpHTML5EntityByName(string(v[1:end]))
		if !ok {
			return nil, 0
		}
		return entity.Characters, end + 1
	}

	start, base, maxDigits, isDigit := 2, 10, 7, util.IsNumeric
	if len(v) > 2 && (v[2] == 'x' || v[2] == 'X') {
		start, base, maxDigits, isDigit = 3, 16, 6, util.IsHexDecimal
	}
	end := start
	for end < len(v) && isDigit(v[end]) {
		end++
	}
	if end == start || end-start > maxDigits || end >= len(v) || v[end] != ';' {
		return nil, 0
	}
	code, err := strconv.ParseUint(string(v[start:end]), base, 32)
	if err != nil {
		return nil, 0
	}
	return utf8.AppendRune(nil, util.ToValidRune(rune(code))), end + 1
}
