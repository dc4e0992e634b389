package tokens

import (
	"path"
	"slices"
	"strings"

	"github.com/starford/dotlint/internal/storage"
)

// Find lists the instruction files under the store's root: every CLAUDE.md
// and SKILL.md plus all Markdown below claude-md/. Paths are root-relative
// and sorted.
func Find(store storage.Provider, excludeDirs []string) ([]string, error) {
	var out []string
	err := store.Walk(func(_, name string) bool {
		return slices.Contains(excludeDirs, name)
	}, func(rel, _ string) error {
		name := path.Base(rel)
		switch {
		case name == "CLAUDE.md", name == "SKILL.md":
			out = append(out, rel)
		case strings.HasPrefix(rel, "claude-md/") && strings.HasSuffix(name, ".md"):
			out = append(out, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(out)
	return out, nil
}
