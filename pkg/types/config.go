// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// OutputFormat selects how link records are serialized.
type OutputFormat string

const (
	OutputCSV  OutputFormat = "csv"
	OutputJSON OutputFormat = "json"
	OutputYAML OutputFormat = "yaml"
)

// OutputConfig holds settings for writing link records.
type OutputConfig struct {
	// Format selects the serializer: csv (delimited text), json, or yaml.
	Format OutputFormat `json:"format" yaml:"format"`

	// Separator is the field separator for delimited output (default ",").
	// It must be a single character; `\t` is accepted for tab.
	Separator string `json:"separator" yaml:"separator"`

	// Header controls whether delimited output starts with a header row.
	Header bool `json:"header" yaml:"header"`

	// Fields is the column order for delimited output
	// (default source_file, description, url).
	Fields []string `json:"fields" yaml:"fields"`
}

// ExtractConfig holds settings for the link extractor.
type ExtractConfig struct {
	// GFM enables GitHub-flavoured markdown extensions, including
	// linkification of bare URLs.
	GFM bool `json:"gfm" yaml:"gfm"`

	// FrontMatter strips a leading YAML/TOML front matter block before parsing.
	FrontMatter bool `json:"front_matter" yaml:"front_matter"`

	// Workers bounds how many files are extracted at once. Zero means one
	// per CPU.
	Workers int `json:"workers" yaml:"workers"`

	// Recursive expands directory arguments into all markdown files below them.
	Recursive bool `json:"recursive" yaml:"recursive"`
}

// IndexConfig holds settings for the SQLite link index.
type IndexConfig struct {
	// DBPath is the database file (default .link-extractor/links.db).
	DBPath string `json:"db_path" yaml:"db_path"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// WatchConfig holds settings for the watch command.
type WatchConfig struct {
	// Debounce is how long a file must be quiet before it is re-extracted
	// (default 300ms).
	Debounce time.Duration `json:"debounce" yaml:"debounce"`
}

// Config groups all settings.
type Config struct {
	Output  OutputConfig  `json:"output" yaml:"output"`
	Extract ExtractConfig `json:"extract" yaml:"extract"`
	Index   IndexConfig   `json:"index" yaml:"index"`
	Watch   WatchConfig   `json:"watch" yaml:"watch"`
}
