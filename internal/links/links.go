// Package links finds Markdown links that point at files missing from disk.
//
// Broken links are reported as warnings; they never fail a validation run.
package links

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/starford/dotlint/internal/models"
)

var (
	fenceRe = regexp.MustCompile("```[\\s\\S]*?```")
	linkRe  = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
)

var placeholders = map[string]struct{}{
	"url":   {},
	"link":  {},
	"badge": {},
}

// Checker verifies internal links relative to a repository root.
type Checker struct {
	// Root resolves "/"-prefixed targets.
	Root string
	// CheckAnchors also verifies "#fragment" suffixes against the headings of
	// existing Markdown targets.
	CheckAnchors bool
	Logger       *slog.Logger
}

// NewChecker returns a Checker rooted at root.
func NewChecker(root string, checkAnchors bool, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{Root: root, CheckAnchors: checkAnchors, Logger: logger}
}

// Exempt reports whether a file's links are illustrative and skipped.
func Exempt(name string) bool {
	return strings.Contains(name, "TEMPLATE") || strings.Contains(name, "SPEC")
}

// Classify decides how a link target is treated.
func Classify(target string) models.LinkClass {
	switch {
	case strings.HasPrefix(target, "http://"),
		strings.HasPrefix(target, "https://"),
		strings.HasPrefix(target, "mailto:"):
		return models.LinkExternal
	case strings.HasPrefix(target, "#"):
		return models.LinkAnchor
	case strings.HasPrefix(target, "../../"):
		return models.LinkHostRelative
	}
	if _, ok := placeholders[target]; ok {
		return models.LinkPlaceholder
	}
	return models.LinkInternal
}

// Extract returns every [text](target) link outside fenced code blocks.
func Extract(content string) []models.Link {
	content = fenceRe.ReplaceAllString(content, "")
	matches := linkRe.FindAllStringSubmatch(content, -1)
	out := make([]models.Link, 0, len(matches))
	for _, m := range matches {
		out = append(out, models.Link{Text: m[1], Target: m[2], Class: Classify(m[2])})
	}
	return out
}

// Resolve maps an internal target, already stripped of its anchor, to a path
// on disk. "./x" and bare paths are relative to the linking file; "/x" is
// relative to the root. The result is not cleaned, so "gone/../a.md" only
// resolves when the directory "gone" exists.
func (c *Checker) Resolve(filePath, target string) string {
	dir := filepath.Dir(filePath)
	switch {
	case strings.HasPrefix(target, "./"):
		return joinRaw(dir, target[2:])
	case strings.HasPrefix(target, "/"):
		return joinRaw(c.Root, target[1:])
	}
	return joinRaw(dir, target)
}

func joinRaw(dir, rel string) string {
	return strings.TrimSuffix(dir, string(filepath.Separator)) + string(filepath.Separator) + filepath.FromSlash(rel)
}

// Check reads path and checks its links. Unreadable files yield no findings.
func (c *Checker) Check(path string) models.Result {
	res := models.Result{Path: path, Kind: models.KindLinks}
	if Exempt(filepath.Base(path)) {
		res.Skipped = true
		return res
	}
	data, err := os.ReadFile(path)
	if err != nil {
		c.Logger.Debug("links: read failed", slog.String("path", path), slog.String("error", err.Error()))
		return res
	}
	res.Findings = c.CheckContent(path, string(data))
	return res
}

// CheckContent checks the links of content as if it were stored at path.
func (c *Checker) CheckContent(path, content string) []models.Finding {
	if Exempt(filepath.Base(path)) {
		return nil
	}

	var out []models.Finding
	for _, l := range Extract(content) {
		if l.Class != models.LinkInternal {
			continue
		}
		target, anchor, _ := strings.Cut(l.Target, "#")
		if target == "" {
			continue
		}

		resolved := c.Resolve(path, target)
		if _, err := os.Stat(resolved); err != nil {
			out = append(out, models.WarningFinding(fmt.Sprintf("Broken link: [%s](%s)", l.Text, l.Target)))
			continue
		}

		if c.CheckAnchors && anchor != "" && strings.HasSuffix(resolved, ".md") {
			ok, err := hasAnchor(resolved, anchor)
			if err != nil {
				c.Logger.Debug("links: anchor check failed", slog.String("path", resolved), slog.String("error", err.Error()))
				continue
			}
			if !ok {
				out = append(out, models.WarningFinding(fmt.Sprintf("Broken anchor: [%s](%s)", l.Text, l.Target)))
			}
		}
	}
	return out
}
