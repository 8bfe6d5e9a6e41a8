// pkg/probe/probe_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: testutil.MemoryFS
// PURPOSE: Presence checks return booleans only, with no error path

package probe_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/rigup/pkg/probe"
	"github.com/arthur-debert/rigup/pkg/testutil"
)

func TestHasCommand(t *testing.T) {
	available := map[string]bool{"git": true, "pacman": true}
	p := probe.NewWithLookup(func(name string) (string, error) {
		if available[name] {
			return "/usr/bin/" + name, nil
		}
		return "", errors.New("executable file not found in $PATH")
	})

	tests := []struct {
		name string
		cmd  string
		want bool
	}{
		{"present_command", "git", true},
		{"absent_command", "zsh", false},
		{"empty_name", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.HasCommand(tt.cmd))
		})
	}
}

func TestHasPath(t *testing.T) {
	fsys := testutil.NewMemoryFS()
	require.NoError(t, fsys.MkdirAll("/home/user", 0755))
	require.NoError(t, fsys.WriteFile("/home/user/.zshrc", []byte("x"), 0644))
	require.NoError(t, fsys.Symlink("/nowhere", "/home/user/.dangling"))

	p := probe.New()

	assert.True(t, p.HasPath(fsys, "/home/user/.zshrc"))
	assert.True(t, p.HasPath(fsys, "/home/user"))
	assert.False(t, p.HasPath(fsys, "/home/user/.vimrc"))
	assert.False(t, p.HasPath(fsys, ""))

	// A dangling symlink still counts as present: the path is occupied.
	assert.True(t, p.HasPath(fsys, "/home/user/.dangling"))
}
