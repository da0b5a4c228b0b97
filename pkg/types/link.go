// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Link is a hyperlink found in a markdown document.
type Link struct {
	// Description is the plain text inside the link, formatting removed.
	Description string `json:"description" yaml:"description"`

	// URL is the link target exactly as the parser stored it.
	URL string `json:"url" yaml:"url"`

	// SourceFile identifies the document the link came from. It is whatever
	// the caller passed in, usually the path given on the command line.
	SourceFile string `json:"source_file" yaml:"source_file"`
}

// Link field names, used for delimited column selection.
const (
	FieldDescription = "description"
	FieldURL         = "url"
	FieldSourceFile  = "source_file"
)

// Field returns the value of the named field, and false for unknown names.
func (l Link) Field(name string) (string, bool) {
	switch name {
	case FieldDescription:
		return l.Description, true
	case FieldURL:
		return l.URL, true
	case FieldSourceFile:
		return l.SourceFile, true
	}
	return "", false
}
