package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/rigup/pkg/errors"
	"github.com/arthur-debert/rigup/pkg/logging"
	"github.com/arthur-debert/rigup/pkg/types"
)

// Mode describes where the dotfiles canonical directory lives.
type Mode int

const (
	// ModeUnified means the directory sits on a mount shared by more
	// than one host environment and must be git-version-controlled.
	ModeUnified Mode = iota
	// ModeIsolated means the directory is local to this host only.
	ModeIsolated
)

func (m Mode) String() string {
	switch m {
	case ModeUnified:
		return "unified"
	case ModeIsolated:
		return "isolated"
	default:
		return "unknown"
	}
}

// DotfilesLocation is the resolved canonical configuration source.
type DotfilesLocation struct {
	Root string
	Mode Mode
}

// Chooser is the prompt surface the resolver uses in attended mode.
// ui.Console satisfies it.
type Chooser interface {
	Select(title string, options []string, def int) int
}

// ResolverOptions configures dotfiles-location detection.
type ResolverOptions struct {
	FS   types.FS
	Home string

	// SharedRoots are candidate mount points reachable from more than
	// one host environment, checked in order.
	SharedRoots []string
	// DirName is the dotfiles directory name under a shared root or
	// the home directory, e.g. "dotfiles".
	DirName string

	// Attended selects prompting over defaulting; Chooser supplies the
	// prompt when attended.
	Attended bool
	Chooser  Chooser
}

// Resolver determines the DotfilesLocation once per run and memoizes it.
type Resolver struct {
	opts ResolverOptions
	loc  *DotfilesLocation
}

// NewResolver creates a Resolver. Resolution happens lazily on the
// first Resolve call.
func NewResolver(opts ResolverOptions) *Resolver {
	return &Resolver{opts: opts}
}

// Resolve returns the dotfiles location, determining it on first call:
// explicit env override, then a pre-existing directory at a shared or
// local conventional location, then a choice (prompted when attended,
// defaulted when not). The directory is created if absent; a directory
// that cannot be created or written is fatal.
func (r *Resolver) Resolve() (DotfilesLocation, error) {
	if r.loc != nil {
		return *r.loc, nil
	}

	loc, err := r.detect()
	if err != nil {
		return DotfilesLocation{}, err
	}
	if err := r.ensureUsable(loc.Root); err != nil {
		return DotfilesLocation{}, err
	}

	resolveLogger := logging.GetLogger("paths")
	resolveLogger.Info().
		Str("root", loc.Root).
		Str("mode", loc.Mode.String()).
		Msg("Resolved dotfiles location")
	r.loc = &loc
	return loc, nil
}

func (r *Resolver) detect() (DotfilesLocation, error) {
	fsys := r.opts.FS

	// Explicit override wins; mode is inferred from where it points.
	if env := os.Getenv(EnvDotfilesRoot); env != "" {
		root := filepath.Clean(expandHome(env))
		return DotfilesLocation{Root: root, Mode: r.modeFor(root)}, nil
	}

	// A directory already at a shared-root candidate.
	for _, shared := range r.opts.SharedRoots {
		candidate := filepath.Join(expandHome(shared), r.opts.DirName)
		if info, err := fsys.Stat(candidate); err == nil && info.IsDir() {
			return DotfilesLocation{Root: candidate, Mode: ModeUnified}, nil
		}
	}

	// A pre-existing local directory.
	local := filepath.Join(r.opts.Home, r.opts.DirName)
	if info, err := fsys.Stat(local); err == nil && info.IsDir() {
		return DotfilesLocation{Root: local, Mode: ModeIsolated}, nil
	}

	// Nothing exists yet: choose. A usable shared mount makes Unified
	// possible; without one the only option is a local directory.
	sharedMount := r.firstUsableSharedRoot()
	if sharedMount == "" {
		return DotfilesLocation{Root: local, Mode: ModeIsolated}, nil
	}

	sharedCandidate := filepath.Join(sharedMount, r.opts.DirName)
	if r.opts.Attended && r.opts.Chooser != nil {
		choice := r.opts.Chooser.Select("Where should dotfiles live?", []string{
			"shared across environments: " + sharedCandidate,
			"this host only: " + local,
		}, 0)
		if choice == 1 {
			return DotfilesLocation{Root: local, Mode: ModeIsolated}, nil
		}
		return DotfilesLocation{Root: sharedCandidate, Mode: ModeUnified}, nil
	}

	// Unattended default: prefer the shared mount when one exists.
	return DotfilesLocation{Root: sharedCandidate, Mode: ModeUnified}, nil
}

// firstUsableSharedRoot returns the first shared-root mount that
// exists as a directory, or "".
func (r *Resolver) firstUsableSharedRoot() string {
	for _, shared := range r.opts.SharedRoots {
		expanded := expandHome(shared)
		if info, err := r.opts.FS.Stat(expanded); err == nil && info.IsDir() {
			return expanded
		}
	}
	return ""
}

// modeFor infers the mode of an explicit root from the shared-root list.
func (r *Resolver) modeFor(root string) Mode {
	for _, shared := range r.opts.SharedRoots {
		expanded := filepath.Clean(expandHome(shared))
		if root == expanded || strings.HasPrefix(root, expanded+string(filepath.Separator)) {
			return ModeUnified
		}
	}
	return ModeIsolated
}

// ensureUsable creates the directory if needed and verifies it is
// writable by writing and removing a probe file.
func (r *Resolver) ensureUsable(root string) error {
	fsys := r.opts.FS

	if err := fsys.MkdirAll(root, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create dotfiles directory %s", root)
	}
	probe := filepath.Join(root, ".rigup-write-check")
	if err := fsys.WriteFile(probe, []byte("ok"), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrNotWritable, "dotfiles directory %s is not writable", root)
	}
	if err := fsys.Remove(probe); err != nil {
		removeLogger := logging.GetLogger("paths")
		removeLogger.Warn().Str("path", probe).Err(err).Msg("Could not remove write-check file")
	}
	return nil
}
