package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := NewSQLiteStore(filepath.Join(t.TempDir(), "veritas.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]Store{
		"file":   NewFileStore(filepath.Join(t.TempDir(), "store")),
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestStore_SetGetDelete(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, found, err := s.Get("missing")
			require.NoError(t, err)
			assert.False(t, found)

			require.NoError(t, s.Set(KeyTheme, []byte(`"light"`)))
			data, found, err := s.Get(KeyTheme)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, `"light"`, string(data))

			require.NoError(t, s.Set(KeyTheme, []byte(`"dark"`)))
			data, _, err = s.Get(KeyTheme)
			require.NoError(t, err)
			assert.Equal(t, `"dark"`, string(data))

			require.NoError(t, s.Delete(KeyTheme))
			_, found, err = s.Get(KeyTheme)
			require.NoError(t, err)
			assert.False(t, found)

			// Deleting twice is fine
			require.NoError(t, s.Delete(KeyTheme))
		})
	}
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, NewFileStore(dir).Set(KeyHistory, []byte(`[]`)))

	data, found, err := NewFileStore(dir).Get(KeyHistory)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[]`, string(data))
}

func TestFileStore_EscapesKeys(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)
	require.NoError(t, s.Set("../escape", []byte("x")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotContains(t, entries[0].Name(), "/")

	data, found, err := s.Get("../escape")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "x", string(data))
}

func TestFileStore_SetFailsOnUnwritableDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	err := NewFileStore(file).Set(KeyTheme, []byte(`"dark"`))
	require.Error(t, err)
	assert.True(t, IsStorageError(err))
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	s := NewMemoryStore()
	value := []byte("abc")
	require.NoError(t, s.Set("k", value))
	value[0] = 'z'

	data, _, err := s.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))

	data[0] = 'y'
	again, _, _ := s.Get("k")
	assert.Equal(t, "abc", string(again))
}

func TestOpen(t *testing.T) {
	s, err := Open("memory", "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open("", t.TempDir())
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	s, err = Open("sqlite", filepath.Join(t.TempDir(), "db", "veritas.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open("redis", "")
	require.Error(t, err)
}

func TestStorageError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := &StorageError{Op: "set", Key: KeyHistory, Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "queryHistory")
}
