package config

import (
	"os"
	"path/filepath"

	gotoml "github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/rigup/pkg/errors"
	"github.com/arthur-debert/rigup/pkg/types"
)

// WriteDefaultFile writes a normalized TOML rendering of the effective
// defaults to path, for the user to edit. Existing files are left
// alone. Returns whether a file was written.
func WriteDefaultFile(fsys types.FS, path string) (bool, error) {
	if _, err := fsys.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat config file %s", path)
	}

	defaults, err := Load("")
	if err != nil {
		return false, err
	}
	data, err := gotoml.Marshal(defaults)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrInternal, "cannot render default config")
	}

	if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, errors.Wrapf(err, errors.ErrDirCreate, "cannot create config directory for %s", path)
	}
	if err := fsys.WriteFile(path, data, 0644); err != nil {
		return false, errors.Wrapf(err, errors.ErrFileWrite, "cannot write config file %s", path)
	}
	return true, nil
}
