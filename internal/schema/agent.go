package schema

import (
	"strings"

	"github.com/starford/dotlint/internal/frontmatter"
	"github.com/starford/dotlint/internal/models"
)

const agentBodyMin = 100

// Agent validates agent persona files.
type Agent struct{}

func (Agent) Kind() models.ArtifactKind { return models.KindAgent }

func (Agent) Exempt(name string) bool { return isReadme(name) }

func (Agent) Validate(doc Document) []models.Finding {
	if !strings.HasPrefix(doc.Content, "---") {
		return []models.Finding{models.ErrorFinding("Agent file should have YAML frontmatter (---)")}
	}
	fm, body, err := frontmatter.Split(doc.Content)
	if err != nil {
		return []models.Finding{models.ErrorFinding(frontmatterMessage(err))}
	}

	var out []models.Finding
	out = append(out, requiredField(fm, "name")...)
	out = append(out, requiredField(fm, "description")...)
	if bodyShorterThan(body, agentBodyMin) {
		out = append(out, models.ErrorFinding("Agent body seems too short (< 100 chars)"))
	}
	return out
}
