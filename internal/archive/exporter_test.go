package archive

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ValorSage/ai-app-builder/internal/fsops"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	}
}

func unzip(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	out := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		out[f.Name] = string(b)
	}
	return out
}

func TestWriteToCompleteness(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"app/page.tsx":            "export default function Page() { return null }\n",
		"lib/util.ts":             "export {}\n",
		"node_modules/x/index.js": "ignored",
		".next/cache":             "ignored",
	})

	var buf bytes.Buffer
	ex := NewExporter(fsops.NewWalker(nil), root)
	require.NoError(t, ex.WriteTo(&buf, "my-app"))

	entries := unzip(t, buf.Bytes())
	assert.Contains(t, entries, "my-app/src/app/page.tsx")
	assert.Contains(t, entries, "my-app/src/lib/util.ts")
	assert.Contains(t, entries, "my-app/package.json")
	assert.Contains(t, entries, "my-app/README.md")
	assert.NotContains(t, entries, "my-app/src/node_modules/x/index.js")

	assert.Equal(t, "export {}\n", entries["my-app/src/lib/util.ts"])
	assert.Contains(t, entries["my-app/package.json"], `"name": "my-app"`)
	assert.Contains(t, entries["my-app/README.md"], "# my-app")
}

func TestWriteToDefaultsName(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"index.ts": "x"})

	var buf bytes.Buffer
	require.NoError(t, NewExporter(fsops.NewWalker(nil), root).WriteTo(&buf, ""))

	entries := unzip(t, buf.Bytes())
	assert.Contains(t, entries, "project/src/index.ts")
	assert.Contains(t, entries, "project/package.json")
}

func TestSynthesizedEntriesNameSlug(t *testing.T) {
	entries := SynthesizedEntries("My Cool App")
	require.Len(t, entries, 2)
	assert.Equal(t, "My Cool App/package.json", entries[0].Name)
	assert.Contains(t, string(entries[0].Content), `"name": "my-cool-app"`)
}

func TestWriteToEmptyTree(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewExporter(fsops.NewWalker(nil), filepath.Join(t.TempDir(), "absent")).WriteTo(&buf, "empty"))

	entries := unzip(t, buf.Bytes())
	assert.Len(t, entries, 2)
	assert.Contains(t, entries, "empty/package.json")
	assert.Contains(t, entries, "empty/README.md")
}
