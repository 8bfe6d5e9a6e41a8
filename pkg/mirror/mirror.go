// Package mirror tracks the ordered package-source tiers and writes the
// active tier into the package manager's endpoint file. The registry is
// pure state; network failures are observed elsewhere (pkg/installer)
// and reported back here as Advance calls.
package mirror

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/rigup/pkg/errors"
	"github.com/arthur-debert/rigup/pkg/logging"
	"github.com/arthur-debert/rigup/pkg/types"
)

// Tier is one ordered set of alternative endpoints, tried together
// before falling back to the next tier.
type Tier struct {
	Name      string
	Endpoints []string
}

// Registry holds the ordered tiers and a cursor over them. The cursor
// only moves forward within one run: a tier that already failed is
// never retried.
type Registry struct {
	tiers  []Tier
	cursor int
	file   string
}

// NewRegistry creates a registry over the given tiers. Tier order is
// fixed at definition time; there is no adaptive reordering.
func NewRegistry(tiers []Tier, endpointFile string) (*Registry, error) {
	if len(tiers) == 0 {
		return nil, errors.New(errors.ErrInvalidInput, "mirror registry needs at least one tier")
	}
	for _, tier := range tiers {
		if len(tier.Endpoints) == 0 {
			return nil, errors.Newf(errors.ErrInvalidInput, "mirror tier %q has no endpoints", tier.Name)
		}
	}
	return &Registry{tiers: tiers, file: endpointFile}, nil
}

// Active returns the currently selected tier.
func (r *Registry) Active() Tier {
	return r.tiers[r.cursor]
}

// Advance moves the cursor to the next tier. It returns false when no
// further tier exists, signalling exhaustion to the caller.
func (r *Registry) Advance() bool {
	if r.cursor+1 >= len(r.tiers) {
		return false
	}
	r.cursor++
	advanceLogger := logging.GetLogger("mirror")
	advanceLogger.Info().
		Str("tier", r.tiers[r.cursor].Name).
		Int("cursor", r.cursor).
		Msg("Advanced to next mirror tier")
	return true
}

// Exhausted reports whether the cursor is on the last tier.
func (r *Registry) Exhausted() bool {
	return r.cursor+1 >= len(r.tiers)
}

// EndpointFile returns the path of the package manager endpoint file
// this registry writes to.
func (r *Registry) EndpointFile() string {
	return r.file
}

// Apply writes the active tier's endpoints to the endpoint file in the
// package manager's "Server = <url>" line format.
func (r *Registry) Apply(fsys types.FS) error {
	tier := r.Active()

	var b strings.Builder
	fmt.Fprintf(&b, "## rigup mirror tier: %s\n", tier.Name)
	for _, endpoint := range tier.Endpoints {
		fmt.Fprintf(&b, "Server = %s\n", endpoint)
	}

	if err := fsys.MkdirAll(filepath.Dir(r.file), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create mirror list directory")
	}
	if err := fsys.WriteFile(r.file, []byte(b.String()), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write mirror list %s", r.file)
	}

	currentLogger := logging.GetLogger("mirror")
	currentLogger.Debug().
		Str("tier", tier.Name).
		Int("endpoints", len(tier.Endpoints)).
		Str("file", r.file).
		Msg("Applied mirror tier")
	return nil
}
