// pkg/testutil/memoryfs_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: The fake filesystem behaves like the os package for the
// operations the linker and mirror code depend on

package testutil_test

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/rigup/pkg/testutil"
)

func TestWriteRequiresParent(t *testing.T) {
	m := testutil.NewMemoryFS()

	err := m.WriteFile("/missing/file.txt", []byte("x"), 0644)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	require.NoError(t, m.MkdirAll("/missing", 0755))
	require.NoError(t, m.WriteFile("/missing/file.txt", []byte("x"), 0644))

	content, err := m.ReadFile("/missing/file.txt")
	require.NoError(t, err)
	assert.Equal(t, "x", string(content))
}

func TestSymlinkResolution(t *testing.T) {
	m := testutil.NewMemoryFS()
	require.NoError(t, m.MkdirAll("/src", 0755))
	require.NoError(t, m.WriteFile("/src/real.txt", []byte("payload"), 0644))
	require.NoError(t, m.Symlink("/src/real.txt", "/link"))

	// Stat follows the link, Lstat does not.
	info, err := m.Stat("/link")
	require.NoError(t, err)
	assert.Equal(t, int64(len("payload")), info.Size())

	info, err = m.Lstat("/link")
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&fs.ModeSymlink)

	content, err := m.ReadFile("/link")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(content))

	dest, err := m.Readlink("/link")
	require.NoError(t, err)
	assert.Equal(t, "/src/real.txt", dest)
}

func TestSymlinkOverExistingFails(t *testing.T) {
	m := testutil.NewMemoryFS()
	require.NoError(t, m.WriteFile("/occupied", []byte("x"), 0644))

	err := m.Symlink("/elsewhere", "/occupied")
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrExist))
}

func TestRenameMovesSubtree(t *testing.T) {
	m := testutil.NewMemoryFS()
	require.NoError(t, m.MkdirAll("/a/b", 0755))
	require.NoError(t, m.WriteFile("/a/b/deep.txt", []byte("d"), 0644))

	require.NoError(t, m.Rename("/a", "/z"))

	_, err := m.Stat("/a/b/deep.txt")
	require.Error(t, err)

	content, err := m.ReadFile("/z/b/deep.txt")
	require.NoError(t, err)
	assert.Equal(t, "d", string(content))
}

func TestRenameOverwritesFile(t *testing.T) {
	m := testutil.NewMemoryFS()
	require.NoError(t, m.MkdirAll("/dir", 0755))
	require.NoError(t, m.WriteFile("/dir/old", []byte("new content"), 0644))
	require.NoError(t, m.WriteFile("/dir/target", []byte("stale"), 0644))

	require.NoError(t, m.Rename("/dir/old", "/dir/target"))

	content, err := m.ReadFile("/dir/target")
	require.NoError(t, err)
	assert.Equal(t, "new content", string(content))
}

func TestRemoveAndRemoveAll(t *testing.T) {
	m := testutil.NewMemoryFS()
	require.NoError(t, m.MkdirAll("/dir/sub", 0755))
	require.NoError(t, m.WriteFile("/dir/sub/f", []byte("x"), 0644))

	// Remove refuses non-empty directories.
	require.Error(t, m.Remove("/dir"))

	require.NoError(t, m.RemoveAll("/dir"))
	_, err := m.Stat("/dir/sub/f")
	require.Error(t, err)
	_, err = m.Stat("/dir")
	require.Error(t, err)
}

func TestInjectError(t *testing.T) {
	m := testutil.NewMemoryFS()
	require.NoError(t, m.MkdirAll("/dir", 0755))

	boom := errors.New("disk on fire")
	m.InjectError("/dir/f", boom)

	err := m.WriteFile("/dir/f", []byte("x"), 0644)
	assert.ErrorIs(t, err, boom)
	_, err = m.Stat("/dir/f")
	assert.ErrorIs(t, err, boom)
}
