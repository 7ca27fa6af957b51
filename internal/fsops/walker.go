package fsops

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ValorSage/ai-app-builder/internal/models"
)

// Directory names never worth listing or exporting: dependency trees, build
// output, framework caches and VCS metadata.
var defaultSkips = map[string]struct{}{
	"node_modules": {}, "dist": {}, "build": {}, ".next": {}, ".git": {}, ".cache": {}, "vendor": {},
}

// Walker enumerates a directory tree, filtering hidden entries, the default
// skip set and any extra doublestar globs matched against slash-separated
// relative paths.
type Walker struct {
	ignoreGlobs []string
}

func NewWalker(ignoreGlobs []string) *Walker {
	return &Walker{ignoreGlobs: ignoreGlobs}
}

func (w *Walker) skipDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	_, skip := defaultSkips[name]
	return skip
}

func (w *Walker) ignored(rel string) bool {
	for _, g := range w.ignoreGlobs {
		if ok, _ := doublestar.Match(g, rel); ok {
			return true
		}
	}
	return false
}

// Tree returns the recursive FileNode listing of root. Within each directory
// folders come first, then files, both in case-insensitive name order. A root
// that does not exist or is not a directory yields an empty tree, not an
// error, so optional directories degrade gracefully.
func (w *Walker) Tree(root string) ([]models.FileNode, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return []models.FileNode{}, nil
	}
	visited := map[string]struct{}{}
	return w.tree(root, "", visited)
}

func (w *Walker) tree(dir, relBase string, visited map[string]struct{}) ([]models.FileNode, error) {
	// Stop on symlink cycles: track canonical directory identities.
	if canon, err := filepath.EvalSymlinks(dir); err == nil {
		if _, seen := visited[canon]; seen {
			return nil, nil
		}
		visited[canon] = struct{}{}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	nodes := make([]models.FileNode, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		rel := name
		if relBase != "" {
			rel = relBase + "/" + name
		}
		if isDir(filepath.Join(dir, name), e) {
			if w.skipDir(name) || w.ignored(rel) {
				continue
			}
			children, err := w.tree(filepath.Join(dir, name), rel, visited)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, models.FileNode{Name: name, Path: rel, Type: models.KindFolder, Children: children})
			continue
		}
		if strings.HasPrefix(name, ".") || w.ignored(rel) {
			continue
		}
		nodes = append(nodes, models.FileNode{Name: name, Path: rel, Type: models.KindFile})
	}
	sortNodes(nodes)
	return nodes, nil
}

// isDir resolves directory symlinks too; ReadDir alone reports them as files.
func isDir(abs string, e os.DirEntry) bool {
	if e.IsDir() {
		return true
	}
	if e.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(abs)
	return err == nil && info.IsDir()
}

// sortNodes orders folders before files, ties broken case-insensitively.
func sortNodes(nodes []models.FileNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if (a.Type == models.KindFolder) != (b.Type == models.KindFolder) {
			return a.Type == models.KindFolder
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
}

// Flat returns all file paths under root relative to it, slash-separated
// regardless of platform. Same filtering as Tree; a missing root yields an
// empty list.
func (w *Walker) Flat(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return []string{}, nil
	}
	files := []string{}
	visited := map[string]struct{}{}
	var walk func(dir, relBase string) error
	walk = func(dir, relBase string) error {
		if canon, err := filepath.EvalSymlinks(dir); err == nil {
			if _, seen := visited[canon]; seen {
				return nil
			}
			visited[canon] = struct{}{}
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			return err
		}
		for _, e := range entries {
			name := e.Name()
			rel := name
			if relBase != "" {
				rel = relBase + "/" + name
			}
			if isDir(filepath.Join(dir, name), e) {
				if w.skipDir(name) || w.ignored(rel) {
					continue
				}
				if err := walk(filepath.Join(dir, name), rel); err != nil {
					return err
				}
				continue
			}
			if strings.HasPrefix(name, ".") || w.ignored(rel) {
				continue
			}
			files = append(files, rel)
		}
		return nil
	}
	if err := walk(root, ""); err != nil {
		return nil, err
	}
	return files, nil
}
