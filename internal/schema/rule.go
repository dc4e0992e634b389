package schema

import "github.com/starford/dotlint/internal/models"

const ruleMin = 200

// Rule validates rule files. They carry no frontmatter.
type Rule struct{}

func (Rule) Kind() models.ArtifactKind { return models.KindRule }

func (Rule) Exempt(name string) bool { return isReadme(name) }

func (Rule) Validate(doc Document) []models.Finding {
	var out []models.Finding
	if !hasHeading(doc.Content) {
		out = append(out, models.ErrorFinding("Rule file should have a top-level heading (# Title)"))
	}
	if bodyShorterThan(doc.Content, ruleMin) {
		out = append(out, models.ErrorFinding("Rule file seems too short (< 200 chars)"))
	}
	return out
}
