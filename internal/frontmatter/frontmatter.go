// Package frontmatter extracts the metadata header of a Markdown document and
// maps it into a flat key/value form.
//
// The accepted header language is a small YAML subset: flat "key: value" lines
// and "key: |" / "key: >" block scalars whose continuation lines are indented.
// Sequences, nested mappings and flow collections are not supported; they never
// cause a failure but the resulting mapping is unspecified for them.
package frontmatter

import (
	"errors"
	"regexp"
	"strings"
)

const delim = "---"

// closingRe finds the closing delimiter line. Trailing whitespace after the
// dashes is allowed.
var closingRe = regexp.MustCompile(`\n---\s*\n`)

var (
	ErrMissingFrontmatter      = errors.New("frontmatter: missing opening delimiter")
	ErrMissingClosingDelimiter = errors.New("frontmatter: missing closing delimiter")
)

// Block is the raw header of a document.
type Block struct {
	// Text is everything between the delimiter lines.
	Text string
	// CloseOffset is the byte offset of the closing "---".
	CloseOffset int
	// BodyOffset is the byte offset just past the closing delimiter line.
	BodyOffset int
}

// Extract locates the frontmatter block of doc. The document must open with
// "---" in its first three bytes.
func Extract(doc string) (Block, error) {
	if !strings.HasPrefix(doc, delim) {
		return Block{}, ErrMissingFrontmatter
	}

	rest := doc[len(delim):]
	loc := closingRe.FindStringIndex(rest)
	if loc == nil {
		return Block{}, ErrMissingClosingDelimiter
	}

	text := rest[:loc[0]]
	// Drop the line break that ends the opening delimiter line.
	text = strings.TrimPrefix(text, "\r")
	text = strings.TrimPrefix(text, "\n")

	return Block{
		Text:        text,
		CloseOffset: len(delim) + loc[0] + 1,
		BodyOffset:  len(delim) + loc[1],
	}, nil
}

// Body returns the part of doc following the block's closing delimiter.
func Body(doc string, b Block) string {
	if b.BodyOffset >= len(doc) {
		return ""
	}
	return doc[b.BodyOffset:]
}

// Split extracts and maps the header of doc and returns the body after it.
func Split(doc string) (*Mapping, string, error) {
	b, err := Extract(doc)
	if err != nil {
		return nil, "", err
	}
	return Parse(b.Text), Body(doc, b), nil
}
