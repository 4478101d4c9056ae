package prefstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.json")

	s, err := OpenFileStore(path)
	require.NoError(t, err)

	_, ok := s.Get(KeyAuthToken)
	assert.False(t, ok)

	require.NoError(t, s.Set(KeyAuthToken, "tok"))
	require.NoError(t, s.Set(KeyTheme, "dark"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reopened, err := OpenFileStore(path)
	require.NoError(t, err)
	v, ok := reopened.Get(KeyTheme)
	assert.True(t, ok)
	assert.Equal(t, "dark", v)

	require.NoError(t, reopened.Delete(KeyAuthToken))
	again, err := OpenFileStore(path)
	require.NoError(t, err)
	_, ok = again.Get(KeyAuthToken)
	assert.False(t, ok)
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := OpenFileStore(path)
	assert.Error(t, err)
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Set(KeyTheme, "light"))
	v, ok := s.Get(KeyTheme)
	assert.True(t, ok)
	assert.Equal(t, "light", v)

	require.NoError(t, s.Delete(KeyTheme))
	_, ok = s.Get(KeyTheme)
	assert.False(t, ok)
}
