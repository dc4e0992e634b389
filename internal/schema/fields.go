package schema

import (
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/dotlint/internal/frontmatter"
	"github.com/starford/dotlint/internal/models"
)

// fieldCheck validates one frontmatter value.
type fieldCheck func(value string) error

// requiredField reports a missing key, or runs checks against its value.
// Each failing check adds one finding.
func requiredField(m *frontmatter.Mapping, field string, checks ...fieldCheck) []models.Finding {
	v, ok := m.Get(field)
	if !ok {
		return []models.Finding{models.ErrorFinding("Missing required field: " + field)}
	}
	var out []models.Finding
	for _, check := range checks {
		if err := check(v); err != nil {
			out = append(out, models.ErrorFinding(err.Error()))
		}
	}
	return out
}

// maxChars limits a value to max characters.
func maxChars(field string, max int) fieldCheck {
	return func(v string) error {
		msg := fmt.Sprintf("%s exceeds %d characters: %d", field, max, runeLen(v))
		return validation.Validate(v, validation.RuneLength(0, max).Error(msg))
	}
}

// matches requires a non-empty value matching re.
func matches(field, what string, re *regexp.Regexp) fieldCheck {
	return func(v string) error {
		msg := fmt.Sprintf("%s must be %s: %s", field, what, v)
		return validation.Validate(v,
			validation.Required.Error(msg),
			validation.Match(re).Error(msg),
		)
	}
}
