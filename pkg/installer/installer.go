// Package installer wraps package-manager invocations with the bounded
// retry and mirror-failover loop. The installer never terminates the
// process; exhaustion comes back as an error for the step to escalate.
package installer

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/rigup/pkg/errors"
	"github.com/arthur-debert/rigup/pkg/logging"
	"github.com/arthur-debert/rigup/pkg/mirror"
	"github.com/arthur-debert/rigup/pkg/run"
	"github.com/arthur-debert/rigup/pkg/types"
)

// Options configures an Installer.
type Options struct {
	Runner   run.Runner
	Registry *mirror.Registry
	FS       types.FS

	// Attended leaves the package manager's own confirmation prompts
	// in place; unattended appends ConfirmArgs so nothing blocks on
	// stdin and provider choices resolve to the tool's first default.
	Attended bool

	// Binary is the package manager executable, e.g. "pacman".
	Binary string
	// InstallArgs always include the tool's "skip already installed"
	// flag so re-runs stay idempotent, e.g. ["-S", "--needed"].
	InstallArgs []string
	// ConfirmArgs are appended in unattended mode, e.g. ["--noconfirm"].
	ConfirmArgs []string
	// RefreshArgs force a package index refresh, e.g. ["-Syy"].
	RefreshArgs []string

	// MaxAttempts bounds the retry loop, including the first attempt.
	MaxAttempts int
	// Pause is the fixed delay between attempts. No jitter: re-runs
	// should be deterministic.
	Pause time.Duration

	// NoisePatterns are known-benign output lines to suppress.
	NoisePatterns []string

	// sleep is replaceable in tests.
	Sleep func(time.Duration)
}

// Installer installs packages with retry and mirror failover.
type Installer struct {
	opts   Options
	logger zerolog.Logger
}

// New creates an Installer. Zero-value options get sane defaults:
// 3 attempts, 3s pause.
func New(opts Options) *Installer {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.Pause <= 0 {
		opts.Pause = 3 * time.Second
	}
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}
	return &Installer{
		opts:   opts,
		logger: logging.GetLogger("installer"),
	}
}

// Install attempts to install the given packages, escalating through
// mirror tiers on failure. desc is the human-readable description used
// in logs and errors ("core packages", "assistant tools").
func (i *Installer) Install(desc string, pkgs []string) error {
	if len(pkgs) == 0 {
		return nil
	}

	args := append([]string{}, i.opts.InstallArgs...)
	if !i.opts.Attended {
		args = append(args, i.opts.ConfirmArgs...)
	}
	args = append(args, pkgs...)

	runOpts := run.Options{
		Interactive: i.opts.Attended,
		Noise:       run.CompileNoise(i.opts.NoisePatterns),
	}

	for attempt := 1; ; attempt++ {
		i.logger.Info().
			Str("desc", desc).
			Int("attempt", attempt).
			Str("tier", i.opts.Registry.Active().Name).
			Int("packages", len(pkgs)).
			Msg("Installing packages")

		result, err := i.opts.Runner.Run(i.opts.Binary, args, runOpts)
		if err != nil {
			// Spawn failure: the package manager itself is missing or
			// broken. A different mirror won't fix that.
			return errors.Wrapf(err, errors.ErrPrecondition, "cannot run package manager %q", i.opts.Binary)
		}
		if result.ExitCode == 0 {
			i.logger.Info().Str("desc", desc).Int("attempt", attempt).Msg("Install succeeded")
			return nil
		}

		i.logger.Warn().
			Str("desc", desc).
			Int("attempt", attempt).
			Int("exit", result.ExitCode).
			Str("tier", i.opts.Registry.Active().Name).
			Msg("Install attempt failed")

		if attempt >= i.opts.MaxAttempts {
			return errors.Newf(errors.ErrInstallFailed,
				"installing %s failed after %d attempts (exit %d)", desc, attempt, result.ExitCode)
		}
		if !i.opts.Registry.Advance() {
			return errors.Newf(errors.ErrMirrorsExhausted,
				"installing %s failed and all mirror tiers are exhausted", desc)
		}
		if err := i.opts.Registry.Apply(i.opts.FS); err != nil {
			return err
		}
		if err := i.Refresh(); err != nil {
			// A failed refresh still leaves the new tier active; let
			// the next install attempt be the judge.
			i.logger.Warn().Err(err).Msg("Index refresh failed, retrying install anyway")
		}
		i.opts.Sleep(i.opts.Pause)
	}
}

// Refresh forces the package manager to resync its local index against
// the active mirror tier.
func (i *Installer) Refresh() error {
	result, err := i.opts.Runner.Run(i.opts.Binary, append([]string{}, i.opts.RefreshArgs...), run.Options{
		Noise: run.CompileNoise(i.opts.NoisePatterns),
	})
	if err != nil {
		return errors.Wrapf(err, errors.ErrPrecondition, "cannot run package manager %q", i.opts.Binary)
	}
	if result.ExitCode != 0 {
		return errors.Newf(errors.ErrInstallFailed, "package index refresh failed (exit %d)", result.ExitCode)
	}
	return nil
}
