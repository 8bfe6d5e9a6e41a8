// Package paths provides centralized path handling for rigup.
// It implements XDG Base Directory specification compliance for the
// app's own directories and the conventional home-area layout
// (binaries, configuration, documentation, workspace root) that the
// provisioning steps populate.
package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/rigup/pkg/errors"
)

// Environment variable names
const (
	// EnvDotfilesRoot is the primary environment variable for the
	// dotfiles location, overriding all detection.
	EnvDotfilesRoot = "RIGUP_DOTFILES_ROOT"

	// EnvDataDir overrides the XDG data directory for rigup
	EnvDataDir = "RIGUP_DATA_DIR"

	// EnvCacheDir overrides the XDG cache directory for rigup
	EnvCacheDir = "RIGUP_CACHE_DIR"

	// EnvStateDir overrides the XDG state directory for rigup
	EnvStateDir = "RIGUP_STATE_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Internal directory and file names. These are rigup's own layout, not
// user-configurable; user-facing layout names come from pkg/config.
const (
	// AppDirName is the directory name for rigup-specific files
	AppDirName = "rigup"

	// ScratchDirName holds transient download/extraction state and is
	// removed on interrupt and on normal completion.
	ScratchDirName = "scratch"

	// LogFileName is the name of the log file
	LogFileName = "rigup.log"

	// ReceiptFileName is the last-run summary written at completion
	ReceiptFileName = "last-run.yaml"
)

// Layout names the conventional home-area directories the workspace
// step guarantees. Values are relative to the home directory.
type Layout struct {
	Bin       string
	Config    string
	Docs      string
	Workspace string
}

// DefaultLayout mirrors the conventional home layout.
func DefaultLayout() Layout {
	return Layout{
		Bin:       "bin",
		Config:    ".config",
		Docs:      "docs",
		Workspace: "workspace",
	}
}

// Paths provides centralized path management for rigup
type Paths interface {
	HomeDir() string
	BinDir() string
	ConfigDir() string
	DocsDir() string
	WorkspaceDir() string

	DataDir() string
	CacheDir() string
	StateDir() string
	ScratchDir() string
	LogFilePath() string
	ReceiptPath() string
	UserConfigDir() string
}

type paths struct {
	home   string
	layout Layout

	xdgData  string
	xdgCache string
	xdgState string
}

// New creates a Paths instance for the given layout. An empty home
// resolves via $HOME / os.UserHomeDir.
func New(home string, layout Layout) (Paths, error) {
	p := &paths{home: home, layout: layout}

	if p.home == "" {
		if env := os.Getenv(EnvHome); env != "" {
			p.home = env
		} else {
			resolved, err := os.UserHomeDir()
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrPrecondition, "cannot determine home directory")
			}
			p.home = resolved
		}
	}
	p.home = filepath.Clean(p.home)
	if (p.layout == Layout{}) {
		p.layout = DefaultLayout()
	}

	p.xdgData = override(EnvDataDir, filepath.Join(xdg.DataHome, AppDirName))
	p.xdgCache = override(EnvCacheDir, filepath.Join(xdg.CacheHome, AppDirName))
	p.xdgState = override(EnvStateDir, filepath.Join(xdg.StateHome, AppDirName))

	return p, nil
}

func override(env, fallback string) string {
	if v := os.Getenv(env); v != "" {
		return expandHome(v)
	}
	return fallback
}

// expandHome expands a leading ~ to the user's home directory.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

func (p *paths) HomeDir() string      { return p.home }
func (p *paths) BinDir() string       { return filepath.Join(p.home, p.layout.Bin) }
func (p *paths) ConfigDir() string    { return filepath.Join(p.home, p.layout.Config) }
func (p *paths) DocsDir() string      { return filepath.Join(p.home, p.layout.Docs) }
func (p *paths) WorkspaceDir() string { return filepath.Join(p.home, p.layout.Workspace) }

func (p *paths) DataDir() string    { return p.xdgData }
func (p *paths) CacheDir() string   { return p.xdgCache }
func (p *paths) StateDir() string   { return p.xdgState }
func (p *paths) ScratchDir() string { return filepath.Join(p.xdgCache, ScratchDirName) }

func (p *paths) LogFilePath() string { return filepath.Join(p.xdgState, LogFileName) }
func (p *paths) ReceiptPath() string { return filepath.Join(p.xdgState, ReceiptFileName) }

// UserConfigDir is where the user-editable rigup config file lives.
func (p *paths) UserConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppDirName)
}
