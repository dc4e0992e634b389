// Package storage defines root-confined access to the repository tree.
package storage

// WalkFunc is called for every regular file; rel is slash-separated and
// relative to the root.
type WalkFunc func(rel, abs string) error

// SkipFunc reports whether the directory at rel (slash-separated, relative to
// the root) must be pruned from a walk.
type SkipFunc func(rel, name string) bool

// Provider is the interface for repository file access.
type Provider interface {
	// Root returns the absolute root directory.
	Root() string
	// Resolve maps a root-relative or absolute path to an absolute path
	// inside the root.
	Resolve(path string) (string, error)
	// Rel returns the slash-separated path of abs relative to the root.
	Rel(abs string) string
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Walk visits every regular file below the root in lexical order.
	Walk(skip SkipFunc, fn WalkFunc) error
}
