// pkg/shell/profile_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: testutil.MemoryFS
// PURPOSE: Idempotent profile-line appends

package shell_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/rigup/pkg/shell"
	"github.com/arthur-debert/rigup/pkg/testutil"
)

func TestEnsureLineCreatesFile(t *testing.T) {
	fsys := testutil.NewMemoryFS()
	require.NoError(t, fsys.MkdirAll("/home/user", 0755))

	added, err := shell.EnsureLine(fsys, "/home/user/.bashrc", `export PATH="/home/user/bin:$PATH"`)
	require.NoError(t, err)
	assert.True(t, added)

	content, err := fsys.ReadFile("/home/user/.bashrc")
	require.NoError(t, err)
	assert.Equal(t, "export PATH=\"/home/user/bin:$PATH\"\n", string(content))
}

func TestEnsureLineIdempotent(t *testing.T) {
	fsys := testutil.NewMemoryFS()
	require.NoError(t, fsys.MkdirAll("/home/user", 0755))
	line := `export PATH="/home/user/bin:$PATH"`

	added, err := shell.EnsureLine(fsys, "/home/user/.bashrc", line)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = shell.EnsureLine(fsys, "/home/user/.bashrc", line)
	require.NoError(t, err)
	assert.False(t, added)

	content, err := fsys.ReadFile("/home/user/.bashrc")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(content), "bin:$PATH"), "no duplicate PATH entries")
}

func TestEnsureLineAppendsToExistingContent(t *testing.T) {
	fsys := testutil.NewMemoryFS()
	require.NoError(t, fsys.MkdirAll("/home/user", 0755))
	require.NoError(t, fsys.WriteFile("/home/user/.zshrc", []byte("# user content"), 0644))

	added, err := shell.EnsureLine(fsys, "/home/user/.zshrc", "alias ll='ls -lah'")
	require.NoError(t, err)
	assert.True(t, added)

	content, err := fsys.ReadFile("/home/user/.zshrc")
	require.NoError(t, err)
	assert.Equal(t, "# user content\nalias ll='ls -lah'\n", string(content))
}

func TestEnsureLineEmptyIsNoop(t *testing.T) {
	fsys := testutil.NewMemoryFS()
	added, err := shell.EnsureLine(fsys, "/home/user/.bashrc", "")
	require.NoError(t, err)
	assert.False(t, added)
}

func TestLineBuilders(t *testing.T) {
	assert.Equal(t, `export PATH="/home/u/bin:$PATH"`, shell.PathLine("/home/u/bin"))
	assert.Equal(t, `[ -f "/data/init.sh" ] && . "/data/init.sh"`, shell.SourceLine("/data/init.sh"))
}
