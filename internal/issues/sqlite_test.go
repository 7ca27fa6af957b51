package issues

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ValorSage/ai-app-builder/internal/models"
)

func TestSQLiteStoreMergeListClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "issues.db")
	st, err := NewSQLite(path)
	require.NoError(t, err)
	defer st.Close()

	n, err := st.Merge([]models.Issue{issue("x", "one"), issue("y", "existing-y")})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// id collision: stored row wins
	n, err = st.Merge([]models.Issue{issue("y", "incoming-y"), issue("z", "three")})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	list, err := st.List()
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"x", "y", "z"}, []string{list[0].ID, list[1].ID, list[2].ID})
	assert.Equal(t, "existing-y", list[1].Message)

	require.NoError(t, st.Clear())
	list, err = st.List()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSQLiteStoreSynthesizesIDs(t *testing.T) {
	st, err := NewSQLite(filepath.Join(t.TempDir(), "issues.db"))
	require.NoError(t, err)
	defer st.Close()

	in := models.Issue{Type: models.SourceAI, Severity: models.SeverityInfo, File: "a.ts", Line: 1, Message: "m"}
	_, err = st.Merge([]models.Issue{in})
	require.NoError(t, err)

	list, err := st.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.NotEmpty(t, list[0].ID)

	// the same finding merged again stays a single row
	n, err := st.Merge([]models.Issue{in})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSQLiteStoreConcurrentMerge(t *testing.T) {
	st, err := NewSQLite(filepath.Join(t.TempDir(), "issues.db"))
	require.NoError(t, err)
	defer st.Close()

	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := st.Merge([]models.Issue{issue(fmt.Sprintf("c-%d", i), fmt.Sprintf("writer %d", i))})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	list, err := st.List()
	require.NoError(t, err)
	require.Len(t, list, writers)
	ids := map[string]struct{}{}
	for _, is := range list {
		ids[is.ID] = struct{}{}
	}
	assert.Len(t, ids, writers, "every merged issue must keep a distinct row")
}

func TestSQLiteStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "issues.db")
	st, err := NewSQLite(path)
	require.NoError(t, err)
	_, err = st.Merge([]models.Issue{issue("a", "persisted")})
	require.NoError(t, err)
	require.NoError(t, st.Close())

	st2, err := NewSQLite(path)
	require.NoError(t, err)
	defer st2.Close()
	list, err := st2.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "persisted", list[0].Message)
}
