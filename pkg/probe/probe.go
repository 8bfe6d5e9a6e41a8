// Package probe answers "is this already on the host?" questions.
// Absence is a normal answer, not an error, which is what lets every
// step use a probe as its idempotency guard.
package probe

import (
	"os/exec"

	"github.com/arthur-debert/rigup/pkg/types"
)

// LookupFunc resolves an executable name to a path, exec.LookPath style.
type LookupFunc func(name string) (string, error)

// Prober checks for the presence of executables and well-known paths.
type Prober struct {
	lookup LookupFunc
}

// New creates a Prober backed by the process PATH.
func New() *Prober {
	return &Prober{lookup: exec.LookPath}
}

// NewWithLookup creates a Prober with a custom executable lookup,
// used by tests to fake PATH contents.
func NewWithLookup(lookup LookupFunc) *Prober {
	return &Prober{lookup: lookup}
}

// HasCommand reports whether an executable with the given name is
// resolvable. No side effects, no error path.
func (p *Prober) HasCommand(name string) bool {
	if name == "" {
		return false
	}
	_, err := p.lookup(name)
	return err == nil
}

// HasPath reports whether the given path exists on the filesystem.
// Symlinks count as present even when dangling.
func (p *Prober) HasPath(fsys types.FS, path string) bool {
	if path == "" {
		return false
	}
	_, err := fsys.Lstat(path)
	return err == nil
}
