package schema

import (
	"regexp"

	"github.com/starford/dotlint/internal/frontmatter"
	"github.com/starford/dotlint/internal/models"
)

const (
	SkillFileName       = "SKILL.md"
	skillNameMax        = 64
	skillDescriptionMax = 1024
	skillBodyMin        = 100
)

var skillNameRe = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// Skill validates SKILL.md files.
type Skill struct{}

func (Skill) Kind() models.ArtifactKind { return models.KindSkill }

func (Skill) Exempt(string) bool { return false }

func (Skill) Validate(doc Document) []models.Finding {
	fm, body, err := frontmatter.Split(doc.Content)
	if err != nil {
		return []models.Finding{models.ErrorFinding(frontmatterMessage(err))}
	}

	var out []models.Finding
	out = append(out, requiredField(fm, "name",
		maxChars("name", skillNameMax),
		matches("name", "lowercase with hyphens", skillNameRe),
	)...)
	out = append(out, requiredField(fm, "description",
		maxChars("description", skillDescriptionMax),
	)...)

	if bodyShorterThan(body, skillBodyMin) {
		out = append(out, models.ErrorFinding("SKILL.md body seems too short (< 100 chars)"))
	}
	return out
}
