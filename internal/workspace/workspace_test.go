package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDirectories(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "out")
	b := filepath.Join(root, "tmp", "nested")

	require.NoError(t, CreateDirectories(nil, a, b))
	assert.DirExists(t, a)
	assert.DirExists(t, b)

	// Idempotent.
	require.NoError(t, CreateDirectories(nil, a, b))
}

func TestDeleteDirectories(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "tmp")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "f.txt"), []byte("x"), 0644))

	require.NoError(t, DeleteDirectories(nil, dir, filepath.Join(root, "absent")))
	assert.NoDirExists(t, dir)
}

func TestLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", ".jdp.lock")

	unlock, err := Lock(path)
	require.NoError(t, err)

	_, err = Lock(path)
	assert.True(t, errors.Is(err, ErrLocked), "second lock should fail with ErrLocked, got %v", err)

	require.NoError(t, unlock())

	unlock, err = Lock(path)
	require.NoError(t, err)
	require.NoError(t, unlock())
}
