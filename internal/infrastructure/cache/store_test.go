package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testValue struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "store.json")
	store := NewStore[testValue](path, nil)

	require.NoError(t, store.Set("a", testValue{Name: "first", Count: 1}))
	require.NoError(t, store.Set("b", testValue{Name: "second", Count: 2}))

	// A fresh store instance reads the same file back.
	reloaded := NewStore[testValue](path, nil)
	v, ok := reloaded.Get("a")
	require.True(t, ok)
	assert.Equal(t, "first", v.Name)
	assert.Equal(t, 2, reloaded.Len())
}

func TestStoreMissingFileStartsEmpty(t *testing.T) {
	t.Parallel()

	store := NewStore[testValue](filepath.Join(t.TempDir(), "absent.json"), nil)
	_, ok := store.Get("anything")
	assert.False(t, ok)
	assert.Zero(t, store.Len())
}

func TestStoreCorruptFileStartsEmpty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store := NewStore[testValue](path, nil)
	assert.Zero(t, store.Len())

	// The store remains writable after encountering the corrupt file.
	require.NoError(t, store.Set("a", testValue{Name: "recovered"}))
	v, ok := store.Get("a")
	require.True(t, ok)
	assert.Equal(t, "recovered", v.Name)
}

func TestStoreDelete(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "store.json")
	store := NewStore[testValue](path, nil)

	require.NoError(t, store.Set("a", testValue{Count: 1}))
	require.NoError(t, store.Delete("a"))
	require.NoError(t, store.Delete("never-existed"))

	_, ok := store.Get("a")
	assert.False(t, ok)
}

func TestStoreUpdateIsPersisted(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "store.json")
	store := NewStore[testValue](path, nil)

	require.NoError(t, store.Update(func(entries map[string]testValue) {
		entries["x"] = testValue{Count: 10}
		entries["y"] = testValue{Count: 20}
		delete(entries, "x")
	}))

	reloaded := NewStore[testValue](path, nil)
	_, ok := reloaded.Get("x")
	assert.False(t, ok)
	v, ok := reloaded.Get("y")
	require.True(t, ok)
	assert.Equal(t, 20, v.Count)
}

func TestStoreLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := NewStore[testValue](filepath.Join(dir, "store.json"), nil)
	require.NoError(t, store.Set("a", testValue{}))

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "store.json", files[0].Name())
}
