// Package jsoncheck verifies that configuration files are syntactically valid JSON.
//
// Only syntax is checked. Object keys beginning with "//" are the comment
// convention used by the configs and are ordinary JSON strings, so no
// preprocessing happens before parsing.
package jsoncheck

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tailscale/hujson"
)

// SyntaxError describes where a document stopped being valid JSON.
type SyntaxError struct {
	Line   int
	Column int
	Offset int64
	Msg    string
}

func (e *SyntaxError) Error() string {
	if e.Line == 0 {
		return "JSON syntax error: " + e.Msg
	}
	if e.Offset < 0 {
		return fmt.Sprintf("JSON syntax error: %s: line %d column %d", e.Msg, e.Line, e.Column)
	}
	return fmt.Sprintf("JSON syntax error: %s: line %d column %d (char %d)", e.Msg, e.Line, e.Column, e.Offset)
}

// ReadError wraps a failure to read or decode the file.
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("Error reading file: %v", e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

var (
	errInvalidUTF8 = errors.New("invalid UTF-8 content")

	// hujsonPosRe matches the position prefix hujson puts on its errors.
	hujsonPosRe = regexp.MustCompile(`^hujson: line (\d+), column (\d+): `)
)

// Check parses data as strict JSON. It returns nil, a *SyntaxError, or a
// *ReadError for undecodable input.
func Check(data []byte) error {
	if !utf8.Valid(data) {
		return &ReadError{Err: errInvalidUTF8}
	}
	// RawMessage checks syntax only; numbers beyond float64 range stay valid.
	var v json.RawMessage
	if err := json.Unmarshal(data, &v); err != nil {
		var se *json.SyntaxError
		if errors.As(err, &se) {
			return newSyntaxError(data, se.Offset, se.Error())
		}
		return newSyntaxError(data, int64(len(data)), err.Error())
	}
	return nil
}

// CheckLenient parses data as JWCC: JSON with comments and trailing commas.
func CheckLenient(data []byte) error {
	if !utf8.Valid(data) {
		return &ReadError{Err: errInvalidUTF8}
	}
	if _, err := hujson.Parse(data); err != nil {
		se := &SyntaxError{Offset: -1, Msg: err.Error()}
		if m := hujsonPosRe.FindStringSubmatch(se.Msg); m != nil {
			se.Line, _ = strconv.Atoi(m[1])
			se.Column, _ = strconv.Atoi(m[2])
			se.Msg = strings.TrimPrefix(se.Msg, m[0])
		}
		return se
	}
	return nil
}

// CheckFile reads path and checks it, leniently if requested. The content is
// returned whenever the read succeeded, even if the check failed.
func CheckFile(path string, lenient bool) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ReadError{Err: err}
	}
	if lenient {
		return data, CheckLenient(data)
	}
	return data, Check(data)
}

// newSyntaxError converts a byte offset into a 1-based line and column.
func newSyntaxError(data []byte, offset int64, msg string) *SyntaxError {
	if offset < 0 {
		offset = 0
	}
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	prefix := string(data[:offset])
	line := strings.Count(prefix, "\n") + 1
	col := utf8.RuneCountInString(prefix[strings.LastIndex(prefix, "\n")+1:]) + 1
	return &SyntaxError{Line: line, Column: col, Offset: offset, Msg: msg}
}
