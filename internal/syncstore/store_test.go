package syncstore

import (
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/colinmarsh/segtrack/internal/representation"
	"github.com/stretchr/testify/require"
)

func migrationsURL(t *testing.T) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok, "failed to get current file path")
	return "file://" + filepath.Join(filepath.Dir(filename), "migrations")
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:", migrationsURL(t))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_GetReference_MissingDiscontinuity_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, ok := store.GetReference(1, time.Now())
	require.False(t, ok)
}

func TestStore_AddReference_ThenGetReference_ExactWindow(t *testing.T) {
	store := newTestStore(t)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	store.AddReference(7, representation.Times{Start: start, Duration: 4 * time.Second})

	ref, ok := store.GetReference(7, start.Add(2*time.Second))
	require.True(t, ok)
	require.True(t, ref.Times.Start.Equal(start))
	require.Equal(t, 4*time.Second, ref.Times.Duration)
}

func TestStore_GetReference_PicksMostRecentAtOrBeforeTime(t *testing.T) {
	store := newTestStore(t)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	store.AddReference(3, representation.Times{Start: start, Duration: 4 * time.Second})
	store.AddReference(3, representation.Times{Start: start.Add(10 * time.Second), Duration: 4 * time.Second})

	ref, ok := store.GetReference(3, start.Add(30*time.Second))
	require.True(t, ok)
	require.True(t, ref.Times.Start.Equal(start.Add(10*time.Second)))
}

func TestStore_GetReference_KeyedByDiscontinuitySequence(t *testing.T) {
	store := newTestStore(t)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	store.AddReference(1, representation.Times{Start: start, Duration: 4 * time.Second})

	_, ok := store.GetReference(2, start)
	require.False(t, ok)
}
