package fsops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Mutator applies file mutations against paths resolved by its sandbox.
// Every operation resolves first; nothing outside the sandbox is touched.
type Mutator struct {
	sb *Sandbox
}

func NewMutator(sb *Sandbox) *Mutator { return &Mutator{sb: sb} }

// Write creates or overwrites the file at rel with content, creating parent
// directories on demand. Create intentionally performs no existence check:
// writing an existing path silently replaces it.
func (m *Mutator) Write(rel, content string) error {
	abs, err := m.sb.Resolve(rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("mkdir for %s: %w", rel, err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	return nil
}

// Read returns the file content at rel. Absent or unreadable files map to
// ErrNotFound; directories map to ErrNotAFile.
func (m *Mutator) Read(rel string) (string, error) {
	abs, err := m.sb.Resolve(rel)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, rel)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotAFile, rel)
	}
	b, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", rel, err)
	}
	return string(b), nil
}

// FindReplace replaces the first occurrence of find with replace in the file
// at rel. The file must exist. A find string that does not occur leaves the
// content unchanged; the write still happens and no error is reported.
func (m *Mutator) FindReplace(rel, find, replace string) error {
	abs, err := m.sb.Resolve(rel)
	if err != nil {
		return err
	}
	b, err := os.ReadFile(abs)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, rel)
	}
	text := strings.Replace(string(b), find, replace, 1)
	if err := os.WriteFile(abs, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	return nil
}

// Delete removes the regular file at rel. A missing target is ErrNotFound;
// a directory is ErrNotAFile (directory deletion is not supported here).
func (m *Mutator) Delete(rel string) error {
	abs, err := m.sb.Resolve(rel)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, rel)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s", ErrNotAFile, rel)
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("delete %s: %w", rel, err)
	}
	return nil
}

// Scaffold returns default content for a newly created file, chosen by
// extension. Used when a create request carries no content.
func Scaffold(rel string) string {
	switch {
	case strings.HasSuffix(rel, ".tsx"):
		name := componentName(rel, ".tsx")
		return fmt.Sprintf("export const %s = () => {\n  return (<div className=\"p-4\">%s component</div>);\n};\n", name, name)
	case strings.HasSuffix(rel, ".ts"):
		return "export {}\n"
	case strings.HasSuffix(rel, ".js"):
		return "// new file\n"
	case strings.HasSuffix(rel, ".jsx"):
		return "export default function Component(){ return (<div>Component</div>) }\n"
	case strings.HasSuffix(rel, ".json"):
		return "{}\n"
	case strings.HasSuffix(rel, ".css"):
		return ":root{}\n"
	default:
		return "\n"
	}
}

// componentName derives a PascalCase identifier from a file name.
func componentName(rel, ext string) string {
	base := strings.TrimSuffix(filepath.Base(rel), ext)
	var b strings.Builder
	for _, r := range base {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if s == "" {
		return "Component"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
