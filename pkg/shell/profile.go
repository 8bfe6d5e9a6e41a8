// Package shell manages the lines rigup appends to shell startup
// files. Every append is guarded by an exact-line presence check, so
// re-runs never duplicate PATH entries or init hooks.
package shell

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/rigup/pkg/errors"
	"github.com/arthur-debert/rigup/pkg/logging"
	"github.com/arthur-debert/rigup/pkg/types"
)

// EnsureLine appends line to the profile file unless an identical line
// is already present. The file is created when missing. Returns
// whether the line was added.
func EnsureLine(fsys types.FS, profilePath, line string) (bool, error) {
	line = strings.TrimRight(line, "\n")
	if line == "" {
		return false, nil
	}

	content, err := fsys.ReadFile(profilePath)
	if err != nil && !os.IsNotExist(err) {
		return false, errors.Wrapf(err, errors.ErrFileAccess, "cannot read profile %s", profilePath)
	}

	for _, existing := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(existing) == strings.TrimSpace(line) {
			return false, nil
		}
	}

	updated := string(content)
	if updated != "" && !strings.HasSuffix(updated, "\n") {
		updated += "\n"
	}
	updated += line + "\n"

	if err := fsys.MkdirAll(filepath.Dir(profilePath), 0755); err != nil {
		return false, errors.Wrapf(err, errors.ErrDirCreate, "cannot create profile directory for %s", profilePath)
	}
	if err := fsys.WriteFile(profilePath, []byte(updated), 0644); err != nil {
		return false, errors.Wrapf(err, errors.ErrFileWrite, "cannot write profile %s", profilePath)
	}

	profileLogger := logging.GetLogger("shell")
	profileLogger.Info().Str("profile", profilePath).Str("line", line).Msg("Appended profile line")
	return true, nil
}

// PathLine builds the PATH-extension line for a directory.
func PathLine(dir string) string {
	return fmt.Sprintf(`export PATH="%s:$PATH"`, dir)
}

// SourceLine builds a guarded source line for an init script.
func SourceLine(script string) string {
	return fmt.Sprintf(`[ -f "%s" ] && . "%s"`, script, script)
}
