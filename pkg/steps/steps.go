// Package steps defines the fixed, ordered provisioning pipeline. Each
// step is idempotent: probes short-circuit installation work, links are
// repaired rather than recreated, and profile lines are appended once.
package steps

import (
	"embed"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/rigup/pkg/cleanup"
	"github.com/arthur-debert/rigup/pkg/config"
	"github.com/arthur-debert/rigup/pkg/errors"
	"github.com/arthur-debert/rigup/pkg/installer"
	"github.com/arthur-debert/rigup/pkg/linker"
	"github.com/arthur-debert/rigup/pkg/mirror"
	"github.com/arthur-debert/rigup/pkg/paths"
	"github.com/arthur-debert/rigup/pkg/pipeline"
	"github.com/arthur-debert/rigup/pkg/probe"
	"github.com/arthur-debert/rigup/pkg/run"
	"github.com/arthur-debert/rigup/pkg/shell"
	"github.com/arthur-debert/rigup/pkg/types"
)

//go:embed assets
var assets embed.FS

// Deps carries everything the steps need. Built once in cmd/rigup.
type Deps struct {
	FS        types.FS
	Probe     *probe.Prober
	Installer *installer.Installer
	Registry  *mirror.Registry
	Runner    run.Runner
	Paths     paths.Paths
	Resolver  *paths.Resolver
	Linker    *linker.Manager
	Config    *config.Config
	Cleanup   *cleanup.Handler
}

// Pipeline returns the full ordered step list. Order and policies are
// fixed at definition time: core toolchain steps are fatal, convenience
// steps warn and continue.
func Pipeline(d Deps) []pipeline.Step {
	return []pipeline.Step{
		{
			Name:   "preflight",
			Desc:   "verify host preconditions",
			Policy: pipeline.PolicyFatal,
			Run:    preflight(d),
		},
		{
			Name:   "workspace",
			Desc:   "create the conventional home-area layout",
			Policy: pipeline.PolicyFatal,
			Run:    workspace(d),
		},
		{
			Name:   "mirrors",
			Desc:   "write the active mirror tier and refresh the package index",
			Policy: pipeline.PolicyFatal,
			Run:    mirrors(d),
		},
		{
			Name:   "core-packages",
			Desc:   "install the core toolchain",
			Policy: pipeline.PolicyFatal,
			Run:    installPackages(d, "core packages", func(c *config.Config) []string { return c.Packages.Core }),
		},
		{
			Name:   "extra-packages",
			Desc:   "install convenience tools",
			Policy: pipeline.PolicyWarnAndContinue,
			Run:    installPackages(d, "extra packages", func(c *config.Config) []string { return c.Packages.Extra }),
		},
		{
			Name:   "dotfiles",
			Desc:   "resolve the dotfiles location and deploy managed links",
			Policy: pipeline.PolicyFatal,
			Run:    dotfiles(d),
		},
		{
			Name:   "dotfiles-sync",
			Desc:   "commit and push the unified dotfiles directory",
			Policy: pipeline.PolicyFatal,
			Run:    dotfilesSync(d),
		},
		{
			Name:   "shell-profile",
			Desc:   "extend PATH and hook shell startup files",
			Policy: pipeline.PolicyFatal,
			Run:    shellProfile(d),
		},
		{
			Name:   "theming",
			Desc:   "deploy the terminal color palette",
			Policy: pipeline.PolicyWarnAndContinue,
			Run:    theming(d),
		},
		{
			Name:   "assistant",
			Desc:   "install AI assistant helpers",
			Policy: pipeline.PolicyWarnAndContinue,
			Run:    installPackages(d, "assistant tools", func(c *config.Config) []string { return c.Packages.Assistant }),
		},
		{
			Name:   "docs",
			Desc:   "write the user guides",
			Policy: pipeline.PolicyWarnAndContinue,
			Run:    docs(d),
		},
	}
}

func preflight(d Deps) func(*pipeline.Context) error {
	return func(ctx *pipeline.Context) error {
		if d.Paths.HomeDir() == "" {
			return errors.New(errors.ErrPrecondition, "cannot determine home directory")
		}
		if !d.Probe.HasCommand(d.Config.PkgMgr.Binary) {
			return errors.Newf(errors.ErrPrecondition, "package manager %q not found on PATH", d.Config.PkgMgr.Binary)
		}
		return nil
	}
}

func workspace(d Deps) func(*pipeline.Context) error {
	return func(ctx *pipeline.Context) error {
		dirs := []string{
			d.Paths.BinDir(),
			d.Paths.ConfigDir(),
			d.Paths.DocsDir(),
			d.Paths.WorkspaceDir(),
			d.Paths.DataDir(),
			d.Paths.StateDir(),
			d.Paths.ScratchDir(),
		}
		for _, dir := range dirs {
			if err := d.FS.MkdirAll(dir, 0755); err != nil {
				return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", dir)
			}
		}

		cfgPath := filepath.Join(d.Paths.UserConfigDir(), "rigup.toml")
		written, err := config.WriteDefaultFile(d.FS, cfgPath)
		if err != nil {
			return err
		}
		if written {
			ctx.AddWarning(fmt.Sprintf("workspace: wrote default config to %s, edit it to taste", cfgPath))
		}
		return nil
	}
}

func mirrors(d Deps) func(*pipeline.Context) error {
	return func(ctx *pipeline.Context) error {
		if err := d.Registry.Apply(d.FS); err != nil {
			return err
		}
		return d.Installer.Refresh()
	}
}

// installPackages installs the listed packages, skipping entirely when
// every one of them already resolves on PATH.
func installPackages(d Deps, desc string, list func(*config.Config) []string) func(*pipeline.Context) error {
	return func(ctx *pipeline.Context) error {
		pkgs := list(d.Config)
		if len(pkgs) == 0 {
			return pipeline.Skip("nothing configured to install")
		}

		var missing []string
		for _, pkg := range pkgs {
			if !d.Probe.HasCommand(pkg) {
				missing = append(missing, pkg)
			}
		}
		if len(missing) == 0 {
			return pipeline.Skip(fmt.Sprintf("all %s already present", desc))
		}
		return d.Installer.Install(desc, missing)
	}
}

// managedEntries builds the link entries deployed by the dotfiles step.
func managedEntries(d Deps) ([]linker.Entry, error) {
	aliases, err := assets.ReadFile("assets/aliases.sh")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "missing embedded aliases payload")
	}
	gitconfig, err := assets.ReadFile("assets/gitconfig")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "missing embedded gitconfig payload")
	}
	home := d.Paths.HomeDir()
	return []linker.Entry{
		{TargetPath: filepath.Join(home, ".aliases"), SourceName: "aliases.sh", Content: aliases},
		{TargetPath: filepath.Join(home, ".gitconfig"), SourceName: "gitconfig", Content: gitconfig},
	}, nil
}

func dotfiles(d Deps) func(*pipeline.Context) error {
	return func(ctx *pipeline.Context) error {
		loc, err := d.Resolver.Resolve()
		if err != nil {
			return err
		}

		entries, err := managedEntries(d)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if _, err := d.Linker.EnsureManaged(loc.Root, entry); err != nil {
				return err
			}
		}

		if loc.Mode == paths.ModeUnified {
			return ensureGitRepo(d, loc.Root)
		}
		return nil
	}
}

// ensureGitRepo initializes a git repository at root when none exists.
// A unified dotfiles directory must be version-controlled.
func ensureGitRepo(d Deps, root string) error {
	result, err := d.Runner.Run("git", []string{"-C", root, "rev-parse", "--git-dir"}, run.Options{})
	if err != nil {
		return errors.Wrap(err, errors.ErrPrecondition, "cannot run git")
	}
	if result.ExitCode == 0 {
		return nil
	}
	result, err = d.Runner.Run("git", []string{"-C", root, "init"}, run.Options{})
	if err != nil {
		return errors.Wrap(err, errors.ErrPrecondition, "cannot run git")
	}
	if result.ExitCode != 0 {
		return errors.Newf(errors.ErrStepFailed, "git init failed in %s (exit %d)", root, result.ExitCode)
	}
	return nil
}

func dotfilesSync(d Deps) func(*pipeline.Context) error {
	return func(ctx *pipeline.Context) error {
		loc, err := d.Resolver.Resolve()
		if err != nil {
			return err
		}
		if loc.Mode != paths.ModeUnified {
			return pipeline.Skip("dotfiles are host-local, nothing to sync")
		}

		// A configured identity is a hard precondition for committing.
		for _, key := range []string{"user.name", "user.email"} {
			result, err := d.Runner.Run("git", []string{"config", "--get", key}, run.Options{})
			if err != nil {
				return errors.Wrap(err, errors.ErrPrecondition, "cannot run git")
			}
			if result.ExitCode != 0 || len(result.Lines) == 0 || strings.TrimSpace(result.Lines[0]) == "" {
				return errors.Newf(errors.ErrIdentityMissing,
					"git %s is not configured; run: git config --global %s <value>", key, key)
			}
		}

		status, err := d.Runner.Run("git", []string{"-C", loc.Root, "status", "--porcelain"}, run.Options{})
		if err != nil {
			return errors.Wrap(err, errors.ErrPrecondition, "cannot run git")
		}
		if status.ExitCode != 0 {
			return errors.Newf(errors.ErrStepFailed, "git status failed in %s (exit %d)", loc.Root, status.ExitCode)
		}

		if len(status.Lines) > 0 {
			for _, args := range [][]string{
				{"-C", loc.Root, "add", "-A"},
				{"-C", loc.Root, "commit", "-m", "rigup: sync dotfiles"},
			} {
				result, err := d.Runner.Run("git", args, run.Options{})
				if err != nil {
					return errors.Wrap(err, errors.ErrPrecondition, "cannot run git")
				}
				if result.ExitCode != 0 {
					return errors.Newf(errors.ErrStepFailed, "git %s failed (exit %d)", args[2], result.ExitCode)
				}
			}
		}

		// Push only when a remote is configured.
		remotes, err := d.Runner.Run("git", []string{"-C", loc.Root, "remote"}, run.Options{})
		if err != nil {
			return errors.Wrap(err, errors.ErrPrecondition, "cannot run git")
		}
		if remotes.ExitCode == 0 && len(remotes.Lines) > 0 {
			result, err := d.Runner.Run("git", []string{"-C", loc.Root, "push"}, run.Options{})
			if err != nil {
				return errors.Wrap(err, errors.ErrPrecondition, "cannot run git")
			}
			if result.ExitCode != 0 {
				// The commit is safe locally; a failed push should not
				// stop provisioning.
				return pipeline.Warning(errors.Newf(errors.ErrStepFailed,
					"git push failed (exit %d), dotfiles committed locally", result.ExitCode))
			}
		}
		return nil
	}
}

func shellProfile(d Deps) func(*pipeline.Context) error {
	return func(ctx *pipeline.Context) error {
		// Materialize the init hook script in the data dir.
		initScript, err := assets.ReadFile("assets/rigup-init.sh")
		if err != nil {
			return errors.Wrap(err, errors.ErrInternal, "missing embedded init script")
		}
		scriptPath := filepath.Join(d.Paths.DataDir(), "shell", "rigup-init.sh")
		if err := d.FS.MkdirAll(filepath.Dir(scriptPath), 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", filepath.Dir(scriptPath))
		}
		if err := d.FS.WriteFile(scriptPath, initScript, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", scriptPath)
		}

		lines := []string{
			shell.PathLine(d.Paths.BinDir()),
			shell.SourceLine(scriptPath),
		}
		for _, profile := range d.Config.Shell.Profiles {
			profilePath := filepath.Join(d.Paths.HomeDir(), profile)
			for _, line := range lines {
				if _, err := shell.EnsureLine(d.FS, profilePath, line); err != nil {
					return err
				}
			}
		}
		return nil
	}
}

func theming(d Deps) func(*pipeline.Context) error {
	return func(ctx *pipeline.Context) error {
		loc, err := d.Resolver.Resolve()
		if err != nil {
			return err
		}
		palette, err := assets.ReadFile("assets/palette.conf")
		if err != nil {
			return errors.Wrap(err, errors.ErrInternal, "missing embedded palette payload")
		}
		_, err = d.Linker.EnsureManaged(loc.Root, linker.Entry{
			TargetPath: filepath.Join(d.Paths.ConfigDir(), "terminal", "palette.conf"),
			SourceName: "palette.conf",
			Content:    palette,
		})
		return err
	}
}

// docs stages each guide in the scratch directory and renames it into
// place, so an interrupt never leaves a half-written guide in DocsDir.
func docs(d Deps) func(*pipeline.Context) error {
	return func(ctx *pipeline.Context) error {
		guides, err := assets.ReadDir("assets/guides")
		if err != nil {
			return errors.Wrap(err, errors.ErrInternal, "missing embedded guides")
		}

		staging := filepath.Join(d.Paths.ScratchDir(), "docs")
		if err := d.FS.MkdirAll(staging, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", staging)
		}
		if err := d.FS.MkdirAll(d.Paths.DocsDir(), 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", d.Paths.DocsDir())
		}

		for _, guide := range guides {
			if guide.IsDir() {
				continue
			}
			content, err := assets.ReadFile("assets/guides/" + guide.Name())
			if err != nil {
				return errors.Wrap(err, errors.ErrInternal, "missing embedded guide "+guide.Name())
			}
			staged := filepath.Join(staging, guide.Name())
			if err := d.FS.WriteFile(staged, content, 0644); err != nil {
				return errors.Wrapf(err, errors.ErrFileWrite, "cannot stage guide %s", guide.Name())
			}
			final := filepath.Join(d.Paths.DocsDir(), guide.Name())
			if err := d.FS.Rename(staged, final); err != nil {
				return errors.Wrapf(err, errors.ErrFileWrite, "cannot place guide %s", guide.Name())
			}
		}
		return nil
	}
}
