// pkg/config/config_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: t.TempDir, t.Setenv
// PURPOSE: Layer precedence: defaults < user file < environment

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/rigup/pkg/config"
	"github.com/arthur-debert/rigup/pkg/testutil"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "pacman", cfg.PkgMgr.Binary)
	assert.Equal(t, []string{"-S", "--needed"}, cfg.PkgMgr.InstallArgs)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, "/etc/pacman.d/mirrorlist", cfg.Mirror.File)

	require.Len(t, cfg.Mirror.Tiers, 3)
	assert.Equal(t, "optimized", cfg.Mirror.Tiers[0].Name)
	assert.Equal(t, "curated", cfg.Mirror.Tiers[1].Name)
	assert.Equal(t, "emergency", cfg.Mirror.Tiers[2].Name)

	assert.Contains(t, cfg.Packages.Core, "git")
	assert.Equal(t, "dotfiles", cfg.Dotfiles.DirName)
	assert.Equal(t, []string{".bashrc", ".zshrc"}, cfg.Shell.Profiles)
	assert.Equal(t, "bin", cfg.Workspace.Bin)
}

func TestLoadUserFileTOML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rigup.toml"), []byte(`
[retry]
max_attempts = 5

[pkgmgr]
binary = "apt"
`), 0644))

	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, "apt", cfg.PkgMgr.Binary)
	// Untouched keys keep their defaults.
	assert.Equal(t, 3, cfg.Retry.PauseSeconds)
}

func TestLoadUserFileYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rigup.yaml"), []byte(`
packages:
  extra: [htop]
`), 0644))

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"htop"}, cfg.Packages.Extra)
}

func TestEnvOverridesEverything(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rigup.toml"), []byte(`
[pkgmgr]
binary = "apt"
`), 0644))
	t.Setenv("RIGUP_PKGMGR_BINARY", "dnf")

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "dnf", cfg.PkgMgr.Binary)
}

func TestLoadBadUserFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rigup.toml"), []byte("not [valid toml"), 0644))

	_, err := config.Load(dir)
	require.Error(t, err)
}

func TestWriteDefaultFile(t *testing.T) {
	fsys := testutil.NewMemoryFS()

	written, err := config.WriteDefaultFile(fsys, "/home/user/.config/rigup/rigup.toml")
	require.NoError(t, err)
	assert.True(t, written)

	content, err := fsys.ReadFile("/home/user/.config/rigup/rigup.toml")
	require.NoError(t, err)
	assert.Contains(t, string(content), "binary = 'pacman'")

	// Existing files are never overwritten.
	require.NoError(t, fsys.WriteFile("/home/user/.config/rigup/rigup.toml", []byte("user edits"), 0644))
	written, err = config.WriteDefaultFile(fsys, "/home/user/.config/rigup/rigup.toml")
	require.NoError(t, err)
	assert.False(t, written)

	content, err = fsys.ReadFile("/home/user/.config/rigup/rigup.toml")
	require.NoError(t, err)
	assert.Equal(t, "user edits", string(content))
}
