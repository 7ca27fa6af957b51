package fsops

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Sandbox confines all path resolution to a single root directory. The root
// is injected at construction; nothing in this package reads ambient process
// state, so callers can point it at any temporary directory in tests.
type Sandbox struct {
	root string
}

// NewSandbox returns a sandbox anchored at root. The root is made absolute
// once so later prefix checks compare canonical forms.
func NewSandbox(root string) (*Sandbox, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve sandbox root: %w", err)
	}
	return &Sandbox{root: abs}, nil
}

func (s *Sandbox) Root() string { return s.root }

// Resolve validates the untrusted relative path and returns the absolute
// location inside the sandbox. Rooted-looking input is treated as relative.
// A ".." segment surviving normalization fails with ErrInvalidPath before
// any joining happens; a joined result escaping the root fails with
// ErrPathEscape. No I/O is performed.
func (s *Sandbox) Resolve(target string) (string, error) {
	if strings.TrimSpace(target) == "" {
		return "", ErrMissingPath
	}
	norm := path.Clean(strings.TrimLeft(filepath.ToSlash(target), "/"))
	if norm == ".." || strings.HasPrefix(norm, "../") || strings.Contains(norm, "/../") || strings.HasSuffix(norm, "/..") {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, target)
	}
	abs := filepath.Join(s.root, filepath.FromSlash(norm))
	if abs != s.root && !strings.HasPrefix(abs, s.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %s", ErrPathEscape, target)
	}
	return abs, nil
}

// Sub returns a sandbox for a subdirectory of this one, e.g. the "src" base
// that file mutations are confined to.
func (s *Sandbox) Sub(dir string) *Sandbox {
	return &Sandbox{root: filepath.Join(s.root, dir)}
}
