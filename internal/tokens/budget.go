package tokens

import (
	"path"
	"strings"
)

// TemplateType selects the budget a file is measured against.
type TemplateType string

const (
	TemplateMinimal       TemplateType = "minimal"
	TemplateStandard      TemplateType = "standard"
	TemplatePowerUser     TemplateType = "power-user"
	TemplateSkill         TemplateType = "skill"
	TemplateDocumentation TemplateType = "documentation"
	TemplateDefault       TemplateType = "default"
)

// Budget holds the target and hard maximum for tokens and non-blank lines.
type Budget struct {
	TokenTarget int `json:"token_target"`
	TokenMax    int `json:"token_max"`
	LineTarget  int `json:"line_target"`
	LineMax     int `json:"line_max"`
}

// Budgets maps every template type to its limits.
var Budgets = map[TemplateType]Budget{
	TemplateMinimal:       {TokenTarget: 500, TokenMax: 1000, LineTarget: 30, LineMax: 50},
	TemplateStandard:      {TokenTarget: 1500, TokenMax: 2500, LineTarget: 80, LineMax: 100},
	TemplatePowerUser:     {TokenTarget: 2000, TokenMax: 3500, LineTarget: 100, LineMax: 150},
	TemplateSkill:         {TokenTarget: 1500, TokenMax: 3000, LineTarget: 200, LineMax: 350},
	TemplateDocumentation: {TokenTarget: 2000, TokenMax: 4000, LineTarget: 150, LineMax: 300},
	TemplateDefault:       {TokenTarget: 1500, TokenMax: 3000, LineTarget: 80, LineMax: 150},
}

// BudgetFor returns the budget of t, falling back to the default budget.
func BudgetFor(t TemplateType) Budget {
	if b, ok := Budgets[t]; ok {
		return b
	}
	return Budgets[TemplateDefault]
}

// TemplateFor classifies a file by its slash-separated path. The first
// matching rule wins: skills, documentation, then the size tiers.
func TemplateFor(p string) TemplateType {
	name := path.Base(p)
	lower := strings.ToLower(p)
	if !strings.HasPrefix(lower, "/") {
		lower = "/" + lower
	}
	switch {
	case name == "SKILL.md" || strings.Contains(lower, "/skills/"):
		return TemplateSkill
	case name == "README.md" || strings.Contains(lower, "/examples/"):
		return TemplateDocumentation
	case strings.Contains(lower, "minimal"):
		return TemplateMinimal
	case strings.Contains(lower, "power-user") || strings.Contains(lower, "power_user"):
		return TemplatePowerUser
	case strings.Contains(lower, "standard"):
		return TemplateStandard
	}
	return TemplateDefault
}
