package credentials

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Set, Get and Delete round-trip through the JSON file
func TestFileStore_SetGetDelete(t *testing.T) {
	baseDir := t.TempDir()
	store, err := NewFileStore(baseDir)
	require.NoError(t, err)

	_, ok, err := store.Get("docai.api_key")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set("docai.api_key", "secret-value"))

	value, ok, err := store.Get("docai.api_key")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "secret-value", value)

	require.NoError(t, store.Delete("docai.api_key"))

	_, ok, err = store.Get("docai.api_key")
	require.NoError(t, err)
	assert.False(t, ok)
}

// Values survive a process restart through a fresh store instance
func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	baseDir := t.TempDir()

	store, err := NewFileStore(baseDir)
	require.NoError(t, err)
	require.NoError(t, store.Set("docai.api_key", "persisted"))

	reopened, err := NewFileStore(baseDir)
	require.NoError(t, err)

	value, ok, err := reopened.Get("docai.api_key")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "persisted", value)
}

// The credential file is owner-only
func TestFileStore_Permissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Skipping permission check on Windows")
	}

	baseDir := t.TempDir()
	store, err := NewFileStore(baseDir)
	require.NoError(t, err)
	require.NoError(t, store.Set("docai.api_key", "secret"))

	info, err := os.Stat(filepath.Join(baseDir, ".docai", "credentials.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	dirInfo, err := os.Stat(filepath.Join(baseDir, ".docai"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), dirInfo.Mode().Perm())
}

// Independent keys do not clobber each other
func TestFileStore_MultipleKeys(t *testing.T) {
	baseDir := t.TempDir()
	store, err := NewFileStore(baseDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("first", "one"))
	require.NoError(t, store.Set("second", "two"))
	require.NoError(t, store.Delete("first"))

	_, ok, err := store.Get("first")
	require.NoError(t, err)
	assert.False(t, ok)

	value, ok, err := store.Get("second")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "two", value)
}

// A corrupted store file surfaces as an error instead of silent data loss
func TestFileStore_CorruptedFile(t *testing.T) {
	baseDir := t.TempDir()
	storePath := filepath.Join(baseDir, ".docai", "credentials.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(storePath), 0700))
	require.NoError(t, os.WriteFile(storePath, []byte("{not json"), 0600))

	store, err := NewFileStore(baseDir)
	require.NoError(t, err)

	_, _, err = store.Get("docai.api_key")
	assert.Error(t, err)

	err = store.Set("docai.api_key", "value")
	assert.Error(t, err)
}
