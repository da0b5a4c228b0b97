// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package output serializes link records as JSON, YAML, or delimited text.
package output

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"go.yaml.in/yaml/v3"

	"github.com/kaesluder/link-extractor/pkg/types"
)

var (
	// ErrSeparator is returned for a separator that is not exactly one
	// usable character.
	ErrSeparator = errors.New("separator must be a single character other than a quote or newline")

	// ErrUnknownFormat is returned for an output format other than csv, json, or yaml.
	ErrUnknownFormat = errors.New("unknown output format")

	// ErrUnknownField is returned when a delimited column names no link field.
	ErrUnknownField = errors.New("unknown field")
)

// DefaultFields is the delimited column order used when none is configured.
var DefaultFields = []string{types.FieldSourceFile, types.FieldDescription, types.FieldURL}

// Options controls serialization.
type Options struct {
	Format    types.OutputFormat
	Separator rune
	Header    bool
	Fields    []string
}

// OptionsFrom validates cfg and converts it to Options. Empty values take
// their defaults: csv, a comma, and DefaultFields.
func OptionsFrom(cfg types.OutputConfig) (Options, error) {
	format, err := ParseFormat(string(cfg.Format))
	if err != nil {
		return Options{}, err
	}

	sep := ','
	if cfg.Separator != "" {
		if sep, err = ParseSeparator(cfg.Separator); err != nil {
			return Options{}, err
		}
	}

	fields := DefaultFields
	if len(cfg.Fields) > 0 {
		if err := validateFields(cfg.Fields); err != nil {
			return Options{}, err
		}
		fields = cfg.Fields
	}

	return Options{
		Format:    format,
		Separator: sep,
		Header:    cfg.Header,
		Fields:    fields,
	}, nil
}

// ParseFormat normalizes a format name. The empty string means csv.
func ParseFormat(s string) (types.OutputFormat, error) {
	switch f := types.OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "", types.OutputCSV:
		return types.OutputCSV, nil
	case types.OutputJSON, types.OutputYAML:
		return f, nil
	}
	return "", fmt.Errorf("%w %q: use csv, json, or yaml", ErrUnknownFormat, s)
}

// ParseSeparator returns the single character in s. The two-character
// escape `\t` is accepted for a tab, since a literal tab is awkward to pass
// on a command line.
func ParseSeparator(s string) (rune, error) {
	if s == `\t` {
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || size != len(s) || r == utf8.RuneError || r == '"' || r == '\r' || r == '\n' {
		return 0, fmt.Errorf("%w: %q", ErrSeparator, s)
	}
	return r, nil
}

// ParseFields splits a comma-separated column list and checks every name.
func ParseFields(s string) ([]string, error) {
	var fields []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	if len(fields) == 0 {
		return DefaultFields, nil
	}
	if err := validateFields(fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func validateFields(fields []string) error {
	for _, f := range fields {
		if _, ok := (types.Link{}).Field(f); !ok {
			return fmt.Errorf("%w %q: use %s", ErrUnknownField, f, strings.Join(DefaultFields, ", "))
		}
	}
	return nil
}

// Write serializes links to w.
func Write(w io.Writer, links []types.Link, opts Options) error {
	if links == nil {
		links = []types.Link{}
	}
	switch opts.Format {
	case types.OutputJSON:
		return writeJSON(w, links)
	case types.OutputYAML:
		return writeYAML(w, links)
	case "", types.OutputCSV:
		return writeDelimited(w, links, opts)
	}
	return fmt.Errorf("%w %q", ErrUnknownFormat, opts.Format)
}

func writeJSON(w io.Writer, links []types.Link) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(links); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, links []types.Link) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(links); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return enc.Close()
}

func writeDelimited(w io.Writer, links []types.Link, opts Options) error {
	fields := opts.Fields
	if len(fields) == 0 {
		fields = DefaultFields
	}
	sep := opts.Separator
	if sep == 0 {
		sep = ','
	}

	cw := csv.NewWriter(w)
	cw.Comma = sep

	if opts.Header {
		if err := cw.Write(fields); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	row := make([]string, len(fields))
	for _, l := range links {
		for i, f := range fields {
			v, ok := l.Field(f)
			if !ok {
				return fmt.Errorf("%w %q", ErrUnknownField, f)
			}
			row[i] = v
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
