// Package discovery enumerates the files each validator applies to.
package discovery

import (
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/starford/dotlint/internal/schema"
	"github.com/starford/dotlint/internal/storage"
)

// Options controls which parts of the tree are visited.
type Options struct {
	// ExcludeDirs prunes every directory whose name matches one entry.
	ExcludeDirs []string
	// Exclude holds doublestar globs matched against root-relative paths.
	Exclude []string
	// RuleDirs, AgentDirs and CommandDirs are root-relative directories whose
	// Markdown files (recursively) are rule, agent and command definitions.
	RuleDirs    []string
	AgentDirs   []string
	CommandDirs []string
}

// DefaultOptions mirrors the repository layout the validators were built for.
func DefaultOptions() Options {
	return Options{
		ExcludeDirs: []string{".git", "node_modules"},
		RuleDirs:    []string{"rules"},
		AgentDirs:   []string{"agents"},
		CommandDirs: []string{"commands"},
	}
}

// Set holds root-relative, slash-separated paths per category, each sorted
// and free of duplicates.
type Set struct {
	JSON     []string
	Skills   []string
	Rules    []string
	Agents   []string
	Commands []string
	Markdown []string
}

// Validate checks the glob syntax of the exclude patterns.
func (o Options) Validate() error {
	for _, p := range o.Exclude {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("discovery: invalid exclude pattern %q", p)
		}
	}
	return nil
}

func (o Options) excluded(rel string) bool {
	for _, p := range o.Exclude {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

func (o Options) skipDir(rel, name string) bool {
	return slices.Contains(o.ExcludeDirs, name) || o.excluded(rel)
}

// under reports whether rel lies below one of dirs.
func under(rel string, dirs []string) bool {
	for _, d := range dirs {
		d = strings.Trim(path.Clean(d), "/")
		if d == "." || d == "" {
			continue
		}
		if strings.HasPrefix(rel, d+"/") {
			return true
		}
	}
	return false
}

// Discover walks the tree under store's root once and classifies every file.
func Discover(store storage.Provider, opts Options) (*Set, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	s := &Set{}
	err := store.Walk(opts.skipDir, func(rel, _ string) error {
		if opts.excluded(rel) {
			return nil
		}
		name := path.Base(rel)
		switch {
		case strings.HasSuffix(name, ".json"):
			s.JSON = append(s.JSON, rel)
			return nil
		case !strings.HasSuffix(name, ".md"):
			return nil
		}

		s.Markdown = append(s.Markdown, rel)
		if name == schema.SkillFileName {
			s.Skills = append(s.Skills, rel)
		}
		if under(rel, opts.RuleDirs) && name != "README.md" {
			s.Rules = append(s.Rules, rel)
		}
		if under(rel, opts.AgentDirs) && name != "README.md" {
			s.Agents = append(s.Agents, rel)
		}
		if under(rel, opts.CommandDirs) {
			s.Commands = append(s.Commands, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discovery: %w", err)
	}

	for _, l := range []*[]string{&s.JSON, &s.Skills, &s.Rules, &s.Agents, &s.Commands, &s.Markdown} {
		slices.Sort(*l)
		*l = slices.Compact(*l)
	}
	return s, nil
}

// Total returns the number of files the schema and JSON phases will check.
func (s *Set) Total() int {
	return len(s.JSON) + len(s.Skills) + len(s.Rules) + len(s.Agents) + len(s.Commands)
}
