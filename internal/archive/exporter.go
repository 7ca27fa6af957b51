// Package archive streams project exports as zip files.
package archive

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/flate"

	"github.com/ValorSage/ai-app-builder/internal/fsops"
	"github.com/ValorSage/ai-app-builder/internal/models"
)

// Exporter zips the project's source tree plus synthesized metadata files.
// Entries land under "<name>/src/..." so the archive unpacks into a single
// project directory.
type Exporter struct {
	walker  *fsops.Walker
	srcRoot string
}

func NewExporter(walker *fsops.Walker, srcRoot string) *Exporter {
	return &Exporter{walker: walker, srcRoot: srcRoot}
}

// WriteTo streams the archive to w. The writer is wrapped in a zip encoder
// using the faster flate implementation at maximum compression.
func (e *Exporter) WriteTo(w io.Writer, name string) error {
	if name == "" {
		name = "project"
	}
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	files, err := e.walker.Flat(e.srcRoot)
	if err != nil {
		return fmt.Errorf("walk project: %w", err)
	}
	for _, rel := range files {
		if err := e.addFile(zw, name, rel); err != nil {
			return err
		}
	}
	for _, entry := range SynthesizedEntries(name) {
		f, err := zw.Create(entry.Name)
		if err != nil {
			return err
		}
		if _, err := f.Write(entry.Content); err != nil {
			return err
		}
	}
	return zw.Close()
}

func (e *Exporter) addFile(zw *zip.Writer, name, rel string) error {
	src, err := os.Open(filepath.Join(e.srcRoot, filepath.FromSlash(rel)))
	if err != nil {
		// files can vanish mid-walk; skip rather than abort the download
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer src.Close()
	f, err := zw.Create(name + "/src/" + rel)
	if err != nil {
		return err
	}
	_, err = io.Copy(f, src)
	return err
}

// WriteEntries streams a zip of in-memory entries, used for generated
// projects that never touch the filesystem.
func WriteEntries(w io.Writer, entries []models.ArchiveEntry) error {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})
	for _, entry := range entries {
		f, err := zw.Create(entry.Name)
		if err != nil {
			return err
		}
		if _, err := f.Write(entry.Content); err != nil {
			return err
		}
	}
	return zw.Close()
}

// SynthesizedEntries builds the package.json and README.md the export adds
// on top of the source tree.
func SynthesizedEntries(name string) []models.ArchiveEntry {
	pkg := map[string]any{
		"name":    strings.ReplaceAll(strings.ToLower(name), " ", "-"),
		"version": "0.1.0",
		"private": true,
		"scripts": map[string]string{
			"dev":   "next dev --turbopack",
			"build": "next build",
			"start": "next start",
			"lint":  "next lint",
		},
		"dependencies": map[string]string{
			"next":      "15.3.5",
			"react":     "^19.0.0",
			"react-dom": "^19.0.0",
		},
		"devDependencies": map[string]string{
			"@types/node":      "^20",
			"@types/react":     "^19",
			"@types/react-dom": "^19",
			"typescript":       "^5",
		},
	}
	pkgJSON, _ := json.MarshalIndent(pkg, "", "  ")

	readme := fmt.Sprintf(`# %s

Generated project export.

## Getting Started

1. Install dependencies:
`+"```bash\nnpm install\n```"+`

2. Run the development server:
`+"```bash\nnpm run dev\n```"+`

3. Open [http://localhost:3000](http://localhost:3000) in your browser.
`, name)

	return []models.ArchiveEntry{
		{Name: name + "/package.json", Content: pkgJSON},
		{Name: name + "/README.md", Content: []byte(readme)},
	}
}
