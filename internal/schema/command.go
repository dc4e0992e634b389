package schema

import "github.com/starford/dotlint/internal/models"

const commandMin = 100

// Command validates slash-command files. README.md is not exempt here.
type Command struct{}

func (Command) Kind() models.ArtifactKind { return models.KindCommand }

func (Command) Exempt(string) bool { return false }

func (Command) Validate(doc Document) []models.Finding {
	var out []models.Finding
	if !hasHeading(doc.Content) {
		out = append(out, models.ErrorFinding("Command file should have a top-level heading"))
	}
	if bodyShorterThan(doc.Content, commandMin) {
		out = append(out, models.ErrorFinding("Command file seems too short (< 100 chars)"))
	}
	return out
}
