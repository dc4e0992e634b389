// Package apperr holds sentinel errors shared across packages.
package apperr

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrPathNotFound    = errors.New("path not found")
	ErrOutsideRoot     = errors.New("path escapes root")
	ErrUnsupported     = errors.New("unsupported file type")
	ErrHistoryDisabled = errors.New("history disabled")
)
