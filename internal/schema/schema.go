// Package schema validates agent artifacts (skills, agents, rules and commands)
// against their per-type shape rules.
//
// Every artifact type implements Validator; Run is the shared harness that
// reads the file, applies the type's exemption and collects findings.
package schema

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/starford/dotlint/internal/checksum"
	"github.com/starford/dotlint/internal/frontmatter"
	"github.com/starford/dotlint/internal/models"
)

// headingRe matches a top-level Markdown heading anywhere in the document.
var headingRe = regexp.MustCompile(`(?m)^#\s+\S`)

// Document is an artifact file held in memory for one validation pass.
type Document struct {
	Path    string
	Name    string
	Content string
}

// Validator checks one artifact type.
type Validator interface {
	Kind() models.ArtifactKind
	// Exempt reports whether a file with this base name skips validation.
	Exempt(name string) bool
	Validate(doc Document) []models.Finding
}

// Read loads path as a UTF-8 document and returns it with its checksum.
func Read(path string) (Document, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, "", err
	}
	if !utf8.Valid(data) {
		return Document{}, "", errors.New("invalid UTF-8 content")
	}
	return Document{
		Path:    path,
		Name:    filepath.Base(path),
		Content: strings.ReplaceAll(string(data), "\r\n", "\n"),
	}, checksum.Sum(data), nil
}

// Run reads path and validates it with v. Read failures become the result's
// ReadError; they never abort the caller.
func Run(v Validator, path string) models.Result {
	res := models.Result{Path: path, Kind: v.Kind()}

	doc, sum, err := Read(path)
	if err != nil {
		res.ReadError = fmt.Sprintf("Cannot read file: %v", err)
		return res
	}
	res.Checksum = sum

	if v.Exempt(doc.Name) {
		res.Skipped = true
		return res
	}
	res.Findings = v.Validate(doc)
	return res
}

// ForKind returns the validator for an artifact kind, or nil for kinds that
// are not schema-validated.
func ForKind(kind models.ArtifactKind) Validator {
	switch kind {
	case models.KindSkill:
		return Skill{}
	case models.KindAgent:
		return Agent{}
	case models.KindRule:
		return Rule{}
	case models.KindCommand:
		return Command{}
	}
	return nil
}

// frontmatterMessage renders an extraction failure as a finding message.
func frontmatterMessage(err error) string {
	switch {
	case errors.Is(err, frontmatter.ErrMissingFrontmatter):
		return "Missing YAML frontmatter (file should start with ---)"
	case errors.Is(err, frontmatter.ErrMissingClosingDelimiter):
		return "Missing closing --- for frontmatter"
	}
	return fmt.Sprintf("YAML parsing error: %v", err)
}

// hasHeading reports whether content contains a top-level heading.
func hasHeading(content string) bool {
	return headingRe.MatchString(content)
}

// runeLen counts characters rather than bytes.
func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// bodyShorterThan reports whether the trimmed text has fewer than n characters.
func bodyShorterThan(text string, n int) bool {
	return runeLen(strings.TrimSpace(text)) < n
}

func isReadme(name string) bool {
	return name == "README.md"
}
