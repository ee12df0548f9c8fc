package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.json")
	return Open(path, nil), path
}

func TestStore_PutThenLookup(t *testing.T) {
	s, path := newTestStore(t)

	_, ok := s.Lookup("missing")
	assert.False(t, ok)

	require.NoError(t, s.Put("k1", `{"Title":"Titanic"}`))
	got, ok := s.Lookup("k1")
	assert.True(t, ok)
	assert.Equal(t, `{"Title":"Titanic"}`, got)

	// Data is on disk, not just in memory
	reopened := Open(path, nil)
	got, ok = reopened.Lookup("k1")
	assert.True(t, ok)
	assert.Equal(t, `{"Title":"Titanic"}`, got)
}

func TestStore_PutOverwrites(t *testing.T) {
	s, _ := newTestStore(t)

	require.NoError(t, s.Put("k", "old"))
	require.NoError(t, s.Put("k", "new"))

	got, ok := s.Lookup("k")
	assert.True(t, ok)
	assert.Equal(t, "new", got)
	assert.Equal(t, 1, s.Len())
}

func TestStore_FileIsFlatStringMap(t *testing.T) {
	s, path := newTestStore(t)
	require.NoError(t, s.Put("a", "<html></html>"))
	require.NoError(t, s.Put("b", `{"x":1}`))

	b, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, map[string]string{"a": "<html></html>", "b": `{"x":1}`}, decoded)
}

func TestStore_CorruptFileIsEmpty(t *testing.T) {
	s, path := newTestStore(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, ok := s.Lookup("anything")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())

	// Writing recovers the file
	require.NoError(t, s.Put("k", "v"))
	got, ok := s.Lookup("k")
	assert.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestStore_Clear(t *testing.T) {
	s, path := newTestStore(t)
	require.NoError(t, s.Put("k", "v"))

	require.NoError(t, s.Clear())
	assert.Equal(t, 0, s.Len())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Clearing an absent cache is fine
	assert.NoError(t, s.Clear())
}

func TestStore_NoTempFilesLeft(t *testing.T) {
	s, path := newTestStore(t)
	require.NoError(t, s.Put("k", "v"))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
