// Package linker enforces the managed-link discipline: every deployed
// config path is a symlink into the canonical dotfiles directory, and
// pre-existing real content is renamed aside, never deleted. The
// rename happens before the link is created, so an interrupt at any
// point leaves the original data either in place or under the backup
// name.
package linker

import (
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/rigup/pkg/errors"
	"github.com/arthur-debert/rigup/pkg/logging"
	"github.com/arthur-debert/rigup/pkg/types"
)

// BackupTimestampFormat names backups like ".zshrc.backup.20240101-153005".
const BackupTimestampFormat = "20060102-150405"

// Entry describes one managed link: TargetPath in the host's config
// area, SourceName relative to the dotfiles root, and the payload
// Content written to the source on first deployment.
type Entry struct {
	TargetPath string
	SourceName string
	Content    []byte
}

// Result reports what EnsureManaged actually did, for logging and for
// the idempotency tests.
type Result struct {
	Linked        bool
	BackedUp      bool
	SourceWritten bool
	BackupPath    string
}

// Manager creates and repairs managed links.
type Manager struct {
	fs     types.FS
	logger zerolog.Logger
	now    func() time.Time
}

// New creates a Manager over the given filesystem.
func New(fsys types.FS) *Manager {
	return &Manager{
		fs:     fsys,
		logger: logging.GetLogger("linker"),
		now:    time.Now,
	}
}

// NewWithClock creates a Manager with a fixed clock, for tests that
// need deterministic backup names.
func NewWithClock(fsys types.FS, now func() time.Time) *Manager {
	m := New(fsys)
	m.now = now
	return m
}

// EnsureManaged makes e.TargetPath a link to e.SourceName under root.
// Running it twice in a row produces the same end state with no new
// backups on the second run.
func (m *Manager) EnsureManaged(root string, e Entry) (Result, error) {
	var res Result
	source := filepath.Join(root, e.SourceName)

	// Materialize the canonical source first so the link never dangles.
	if _, err := m.fs.Lstat(source); err != nil {
		if !os.IsNotExist(err) {
			return res, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat source %s", source)
		}
		if err := m.fs.MkdirAll(filepath.Dir(source), 0755); err != nil {
			return res, errors.Wrapf(err, errors.ErrDirCreate, "cannot create source directory for %s", source)
		}
		if err := m.fs.WriteFile(source, e.Content, 0644); err != nil {
			return res, errors.Wrapf(err, errors.ErrFileWrite, "cannot write source %s", source)
		}
		res.SourceWritten = true
		m.logger.Debug().Str("source", source).Msg("Wrote canonical source file")
	}

	info, err := m.fs.Lstat(e.TargetPath)
	switch {
	case err == nil && info.Mode()&fs.ModeSymlink != 0:
		dest, err := m.fs.Readlink(e.TargetPath)
		if err != nil {
			return res, errors.Wrapf(err, errors.ErrFileAccess, "cannot read link %s", e.TargetPath)
		}
		if !filepath.IsAbs(dest) {
			dest = filepath.Join(filepath.Dir(e.TargetPath), dest)
		}
		if filepath.Clean(dest) == filepath.Clean(source) {
			// Already managed.
			return res, nil
		}
		// A link, but to the wrong place. Same discipline: aside, not gone.
		if err := m.backup(e.TargetPath, &res); err != nil {
			return res, err
		}
	case err == nil:
		// Real file or directory.
		if err := m.backup(e.TargetPath, &res); err != nil {
			return res, err
		}
	case os.IsNotExist(err):
		// Nothing at the target.
	default:
		return res, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat target %s", e.TargetPath)
	}

	if err := m.fs.MkdirAll(filepath.Dir(e.TargetPath), 0755); err != nil {
		return res, errors.Wrapf(err, errors.ErrDirCreate, "cannot create parent of %s", e.TargetPath)
	}
	if err := m.fs.Symlink(source, e.TargetPath); err != nil {
		return res, errors.Wrapf(err, errors.ErrSymlinkCreate, "cannot link %s -> %s", e.TargetPath, source)
	}
	res.Linked = true

	m.logger.Info().
		Str("target", e.TargetPath).
		Str("source", source).
		Bool("backedUp", res.BackedUp).
		Msg("Managed link ensured")
	return res, nil
}

func (m *Manager) backup(target string, res *Result) error {
	backupPath := target + ".backup." + m.now().UTC().Format(BackupTimestampFormat)
	if err := m.fs.Rename(target, backupPath); err != nil {
		return errors.Wrapf(err, errors.ErrBackupFailed, "cannot back up %s", target)
	}
	res.BackedUp = true
	res.BackupPath = backupPath
	m.logger.Info().Str("target", target).Str("backup", backupPath).Msg("Backed up pre-existing content")
	return nil
}
