package links

import (
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

var md = goldmark.New(goldmark.WithParserOptions(parser.WithAutoHeadingID()))

// headingIDs returns the auto-generated heading IDs of a Markdown document.
func headingIDs(src []byte) map[string]struct{} {
	ids := make(map[string]struct{})
	doc := md.Parser().Parse(text.NewReader(src))
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		if v, ok := h.AttributeString("id"); ok {
			if id, ok := v.([]byte); ok {
				ids[string(id)] = struct{}{}
			}
		}
		return ast.WalkSkipChildren, nil
	})
	return ids
}

// hasAnchor reports whether the Markdown file at path has a heading whose
// ID equals anchor, compared case-insensitively.
func hasAnchor(path, anchor string) (bool, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	ids := headingIDs(src)
	if _, ok := ids[anchor]; ok {
		return true, nil
	}
	_, ok := ids[strings.ToLower(anchor)]
	return ok, nil
}
