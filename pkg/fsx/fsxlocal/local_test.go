package fsxlocal

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Abraxas-365/talentdesk/pkg/errx"
	"github.com/Abraxas-365/talentdesk/pkg/fsx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFileSystemRoundTrip(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := NewLocalFileSystem(root)
	require.NoError(t, err)

	p := store.Join("resumes", "c1", "j1", "cv.pdf")
	require.NoError(t, store.WriteFile(ctx, p, []byte("%PDF-1.4")))

	ok, err := store.Exists(ctx, p)
	require.NoError(t, err)
	assert.True(t, ok)

	data, err := store.ReadFile(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), data)

	require.NoError(t, store.WriteFile(ctx, p, []byte("v2")))
	data, err = store.ReadFile(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), data)

	require.NoError(t, store.DeleteFile(ctx, p))
	require.NoError(t, store.DeleteFile(ctx, p))

	_, err = store.ReadFile(ctx, p)
	assert.True(t, errx.IsCode(err, fsx.CodeFileNotFound))
}

func TestLocalFileSystemStaysInsideRoot(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	root := filepath.Join(base, "store")
	store, err := NewLocalFileSystem(root)
	require.NoError(t, err)

	require.NoError(t, store.WriteFile(ctx, "../escaped.txt", []byte("x")))

	_, err = os.Stat(filepath.Join(base, "escaped.txt"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(root, "escaped.txt"))
	assert.NoError(t, err)
}
