// Package protect decides whether a path names a credential, key or other
// file that agents must not read or modify.
package protect

import (
	"fmt"
	"path"
	"strings"

	"github.com/gobwas/glob"
)

// DefaultDirectories block every file below them.
var DefaultDirectories = []string{
	".git",
	"secrets",
	"credentials",
	".aws",
	".ssh",
	".gnupg",
}

// DefaultPatterns are matched against the base name, or against trailing
// path segments when they contain a slash. Earlier patterns win.
var DefaultPatterns = []string{
	// environment files
	".env",
	".env.*",
	".env.local",
	".env.production",
	".env.development",

	// credential stores
	"credentials.json",
	"credentials.yaml",
	"credentials.yml",
	"secrets.json",
	"secrets.yaml",
	"secrets.yml",
	".secrets",

	// keys and certificates
	"*.pem",
	"*.key",
	"*.p12",
	"*.pfx",
	"id_rsa",
	"id_ed25519",
	"id_ecdsa",

	// package manager auth
	".npmrc",
	".pypirc",
	".netrc",
	".docker/config.json",

	// cloud providers
	".aws/credentials",
	".aws/config",
	"gcloud/*.json",
	".azure/credentials",
}

type pattern struct {
	raw      string
	g        glob.Glob
	fullPath bool
}

// Filter holds compiled protection rules. It is safe for concurrent use.
type Filter struct {
	dirs     []string
	patterns []pattern
}

// New compiles a Filter from directory names and file patterns.
func New(dirs, patterns []string) (*Filter, error) {
	f := &Filter{dirs: append([]string(nil), dirs...)}
	for _, raw := range patterns {
		expr, fullPath := raw, strings.Contains(raw, "/")
		if fullPath {
			expr = "**/" + raw
		}
		g, err := glob.Compile(expr, '/')
		if err != nil {
			return nil, fmt.Errorf("protect: compile %q: %w", raw, err)
		}
		f.patterns = append(f.patterns, pattern{raw: raw, g: g, fullPath: fullPath})
	}
	return f, nil
}

var defaultFilter = mustDefault()

func mustDefault() *Filter {
	f, err := New(DefaultDirectories, DefaultPatterns)
	if err != nil {
		panic(err)
	}
	return f
}

// Default returns the filter built from DefaultDirectories and DefaultPatterns.
func Default() *Filter { return defaultFilter }

// IsProtected checks p against the default filter.
func IsProtected(p string) (bool, string) {
	return defaultFilter.IsProtected(p)
}

// IsProtected reports whether p is protected and, if so, why. Directory
// rules are checked before file patterns. An empty path is never protected.
func (f *Filter) IsProtected(p string) (bool, string) {
	if p == "" {
		return false, ""
	}
	normalized := path.Clean(strings.ReplaceAll(p, "\\", "/"))
	segments := strings.Split(strings.Trim(normalized, "/"), "/")

	for _, d := range f.dirs {
		for _, s := range segments {
			if s == d {
				return true, fmt.Sprintf("Directory '%s' is protected", d)
			}
		}
	}

	base := segments[len(segments)-1]
	rooted := "/" + strings.TrimPrefix(normalized, "/")
	for _, pt := range f.patterns {
		subject := base
		if pt.fullPath {
			subject = rooted
		}
		if pt.g.Match(subject) {
			return true, fmt.Sprintf("File matches protected pattern '%s'", pt.raw)
		}
	}
	return false, ""
}
