package fsops

import "errors"

// Sentinel errors for the sandboxed filesystem layer. Handlers map these to
// the HTTP error taxonomy with errors.Is, so wrap rather than replace them.
var (
	ErrInvalidPath = errors.New("invalid path")
	ErrPathEscape  = errors.New("path escape detected")
	ErrNotFound    = errors.New("file not found")
	ErrNotAFile    = errors.New("not a regular file")
	ErrMissingPath = errors.New("path required")
)
