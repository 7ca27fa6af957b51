package fsops

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveStaysInsideRoot(t *testing.T) {
	dir := t.TempDir()
	sb, err := NewSandbox(dir)
	require.NoError(t, err)

	cases := []struct {
		target string
		want   string
	}{
		{"a.txt", "a.txt"},
		{"sub/dir/file.ts", "sub/dir/file.ts"},
		{"/rooted/file.ts", "rooted/file.ts"},
		{"./a/./b.css", "a/b.css"},
		{"a//b.json", "a/b.json"},
	}
	for _, c := range cases {
		abs, err := sb.Resolve(c.target)
		require.NoError(t, err, c.target)
		assert.Equal(t, filepath.Join(dir, filepath.FromSlash(c.want)), abs, c.target)
	}
}

func TestResolveRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	sb, err := NewSandbox(dir)
	require.NoError(t, err)

	for _, target := range []string{
		"..",
		"../x",
		"a/../../b",
		"a/../..",
		"../../etc/passwd",
		"/../escape",
	} {
		_, err := sb.Resolve(target)
		assert.ErrorIs(t, err, ErrInvalidPath, target)
	}
}

func TestResolveEmptyPath(t *testing.T) {
	sb, err := NewSandbox(t.TempDir())
	require.NoError(t, err)
	_, err = sb.Resolve("  ")
	assert.ErrorIs(t, err, ErrMissingPath)
}

func TestSubSandbox(t *testing.T) {
	dir := t.TempDir()
	sb, err := NewSandbox(dir)
	require.NoError(t, err)
	src := sb.Sub("src")
	abs, err := src.Resolve("app/page.tsx")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "src", "app", "page.tsx"), abs)

	_, err = src.Resolve("../outside.txt")
	assert.ErrorIs(t, err, ErrInvalidPath)
}
