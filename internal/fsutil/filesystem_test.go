package fsutil

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exercise(t *testing.T, fsys FileSystem, dir string) {
	t.Helper()
	name := filepath.Join(dir, "scope.yaml")

	assert.False(t, fsys.Exists(name))
	_, err := fsys.ReadFile(name)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	_, err = fsys.Stat(name)
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	require.NoError(t, fsys.WriteFile(name, []byte("port: 7125\n"), 0o644))
	assert.True(t, fsys.Exists(name))

	data, err := fsys.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, "port: 7125\n", string(data))

	info, err := fsys.Stat(name)
	require.NoError(t, err)
	assert.Equal(t, "scope.yaml", info.Name())
	assert.EqualValues(t, 11, info.Size())
	assert.False(t, info.IsDir())
}

func TestOSFileSystem(t *testing.T) {
	exercise(t, OSFileSystem{}, t.TempDir())
}

func TestMemoryFileSystem(t *testing.T) {
	m := NewMemoryFileSystem()
	exercise(t, m, "/etc/beaconscope")

	data, err := m.ReadFile("/etc/beaconscope/../beaconscope/scope.yaml")
	require.NoError(t, err)
	data[0] = 'X'
	again, _ := m.ReadFile("/etc/beaconscope/scope.yaml")
	assert.Equal(t, byte('p'), again[0], "reads return copies")
}
