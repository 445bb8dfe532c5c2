package tallystore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/votary/canvass/internal/contract"
	"github.com/votary/canvass/schema"
)

// newSQLiteStore opens a fresh SQLite-backed tally store in a temp dir.
func newSQLiteStore(t *testing.T) contract.TallyStore {
	t.Helper()
	store, err := NewTallyStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "tally.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_ExternalTallies(t *testing.T) {
	store := newSQLiteStore(t)

	// Fresh store has no collection.
	payload, ok, err := store.GetExternalTallies()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, payload)

	require.NoError(t, store.ReplaceExternalTallies(`[{"source":"sems"}]`))
	payload, ok, err = store.GetExternalTallies()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"source":"sems"}]`, payload)

	// Replace is an upsert: the collection is always a single row.
	require.NoError(t, store.ReplaceExternalTallies(`[{"source":"manual"}]`))
	payload, ok, err = store.GetExternalTallies()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"source":"manual"}]`, payload)

	require.NoError(t, store.ClearExternalTallies())
	_, ok, err = store.GetExternalTallies()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteStore_TabulationRuns(t *testing.T) {
	store := newSQLiteStore(t)

	startedAt := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	runID, err := store.BeginTabulation(startedAt, "hash-abc", map[string]any{"cvr_paths": []string{"cvrs.txt"}})
	require.NoError(t, err)
	assert.Greater(t, runID, int64(0))

	// Run is visible, still unfinished.
	runs, err := store.ListTabulationRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].RunID)
	assert.Equal(t, "hash-abc", runs[0].ElectionHash)
	assert.Equal(t, startedAt.UnixMilli(), runs[0].StartedAt.UnixMilli())
	assert.Nil(t, runs[0].FinishedAt)
	assert.Contains(t, runs[0].ConfigParams, "cvr_paths")

	finishedAt := startedAt.Add(3 * time.Second)
	require.NoError(t, store.EndTabulation(runID, finishedAt, 1234))

	runs, err = store.ListTabulationRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.NotNil(t, runs[0].FinishedAt)
	assert.Equal(t, finishedAt.UnixMilli(), runs[0].FinishedAt.UnixMilli())
	assert.Equal(t, 1234, runs[0].BallotsCounted)
}

func TestSQLiteStore_ListNewestFirst(t *testing.T) {
	store := newSQLiteStore(t)

	first, err := store.BeginTabulation(time.Now(), "hash-1", nil)
	require.NoError(t, err)
	second, err := store.BeginTabulation(time.Now(), "hash-2", nil)
	require.NoError(t, err)

	runs, err := store.ListTabulationRuns()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second, runs[0].RunID)
	assert.Equal(t, first, runs[1].RunID)
}

func TestSQLiteStore_GetStatus(t *testing.T) {
	store := newSQLiteStore(t)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, schema.SQLiteBackend, status.Backend)
	assert.Equal(t, 0, status.TabulationRuns)
	assert.True(t, status.LastTabulation.IsZero() || status.LastTabulation.UnixMilli() == 0)
	assert.False(t, status.HasExternalTallies)

	startedAt := time.Date(2026, 8, 30, 11, 0, 0, 0, time.UTC)
	_, err = store.BeginTabulation(startedAt, "hash-abc", nil)
	require.NoError(t, err)
	require.NoError(t, store.ReplaceExternalTallies(`[]`))

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 1, status.TabulationRuns)
	assert.Equal(t, startedAt.UnixMilli(), status.LastTabulation.UnixMilli())
	assert.True(t, status.HasExternalTallies)
}

func TestSQLiteStore_Persistence(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "tally.db")

	store, err := NewTallyStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.ReplaceExternalTallies(`[]`))
	require.NoError(t, store.Close())

	// Reopening the same file sees the stored collection.
	store, err = NewTallyStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, ok, err := store.GetExternalTallies()
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNoneBackend_NoOps(t *testing.T) {
	store, err := NewTallyStore(schema.NoneBackend, "")
	require.NoError(t, err)

	assert.NoError(t, store.ReplaceExternalTallies(`[]`))
	_, ok, err := store.GetExternalTallies()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, store.ClearExternalTallies())

	runID, err := store.BeginTabulation(time.Now(), "hash", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), runID)
	assert.NoError(t, store.EndTabulation(runID, time.Now(), 0))

	runs, err := store.ListTabulationRuns()
	require.NoError(t, err)
	assert.Empty(t, runs)

	assert.NoError(t, store.Close())
}

func TestNewTallyStore_UnsupportedBackend(t *testing.T) {
	_, err := NewTallyStore(schema.DatabaseBackend("bogus"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store backend")
}
