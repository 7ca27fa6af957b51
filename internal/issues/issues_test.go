package issues

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ValorSage/ai-app-builder/internal/models"
)

func issue(id, msg string) models.Issue {
	return models.Issue{ID: id, Type: models.SourceAI, Severity: models.SeverityWarning, File: "app/page.tsx", Line: 3, Message: msg}
}

func TestMergeDedupKeepsExisting(t *testing.T) {
	existing := []models.Issue{issue("x", "one"), issue("y", "existing-y")}
	incoming := []models.Issue{issue("y", "incoming-y"), issue("z", "three")}

	merged := Merge(existing, incoming)
	require.Len(t, merged, 3)
	assert.Equal(t, "x", merged[0].ID)
	assert.Equal(t, "y", merged[1].ID)
	assert.Equal(t, "z", merged[2].ID)
	assert.Equal(t, "existing-y", merged[1].Message, "existing entry must win on id collision")
}

func TestSynthesizeIDStable(t *testing.T) {
	a := models.Issue{Type: models.SourceAI, File: "a.ts", Line: 10, Message: "shadowed variable"}
	b := models.Issue{Type: models.SourceAI, File: "a.ts", Line: 10, Message: "shadowed variable"}
	c := models.Issue{Type: models.SourceAI, File: "a.ts", Line: 11, Message: "shadowed variable"}

	assert.Equal(t, SynthesizeID(a), SynthesizeID(b))
	assert.NotEqual(t, SynthesizeID(a), SynthesizeID(c))
	assert.Equal(t, "keep-me", SynthesizeID(models.Issue{ID: "keep-me"}))
}

func TestFromAnalysisSeverityMapping(t *testing.T) {
	found := []models.AnalysisIssue{
		{Type: "bug", Line: 1, Message: "syntax error"},
		{Type: "warning", Line: 2, Message: "no return type"},
		{Type: "suggestion", Line: 3, Message: "prefer const"},
	}
	out := FromAnalysis("app/page.tsx", found)
	require.Len(t, out, 3)
	assert.Equal(t, models.SeverityError, out[0].Severity)
	assert.Equal(t, models.SeverityWarning, out[1].Severity)
	assert.Equal(t, models.SeverityInfo, out[2].Severity)
	for _, is := range out {
		assert.NotEmpty(t, is.ID)
		assert.Equal(t, models.SourceAI, is.Type)
		assert.Equal(t, "app/page.tsx", is.File)
	}
}

func TestFileStorePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".ide", "ai-issues.json")
	st, err := NewFileStore(path)
	require.NoError(t, err)

	n, err := st.Merge([]models.Issue{issue("a", "first")})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// duplicate id is dropped, new id kept
	n, err = st.Merge([]models.Issue{issue("a", "dup"), issue("b", "second")})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// a fresh store over the same file sees the persisted set
	st2, err := NewFileStore(path)
	require.NoError(t, err)
	list, err := st2.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].Message)

	require.NoError(t, st2.Clear())
	list, err = st2.List()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestFileStoreMergeDoesNotMutateInput(t *testing.T) {
	st, err := NewFileStore(filepath.Join(t.TempDir(), "ai-issues.json"))
	require.NoError(t, err)

	incoming := []models.Issue{{Type: models.SourceAI, Severity: models.SeverityInfo, File: "a.ts", Line: 1, Message: "m"}}
	_, err = st.Merge(incoming)
	require.NoError(t, err)
	assert.Empty(t, incoming[0].ID, "caller's slice must not gain synthesized ids")

	list, err := st.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.NotEmpty(t, list[0].ID)
}

func TestFileStoreCorruptFileDegrades(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ai-issues.json")
	st, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	list, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, list)
}
