// pkg/installer/installer_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: testutil.ScriptedRunner, testutil.MemoryFS
// PURPOSE: Bounded retry, mirror failover ordering, mode-dependent argv

package installer_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rigerrors "github.com/arthur-debert/rigup/pkg/errors"
	"github.com/arthur-debert/rigup/pkg/installer"
	"github.com/arthur-debert/rigup/pkg/mirror"
	"github.com/arthur-debert/rigup/pkg/run"
	"github.com/arthur-debert/rigup/pkg/testutil"
)

func newRegistry(t *testing.T, tierCount int) *mirror.Registry {
	t.Helper()
	var tiers []mirror.Tier
	names := []string{"optimized", "curated", "emergency", "extra"}
	for i := 0; i < tierCount; i++ {
		tiers = append(tiers, mirror.Tier{Name: names[i], Endpoints: []string{"https://" + names[i] + ".example"}})
	}
	reg, err := mirror.NewRegistry(tiers, "/etc/pacman.d/mirrorlist")
	require.NoError(t, err)
	return reg
}

func newInstaller(reg *mirror.Registry, runner run.Runner, attended bool, maxAttempts int) *installer.Installer {
	return installer.New(installer.Options{
		Runner:      runner,
		Registry:    reg,
		FS:          testutil.NewMemoryFS(),
		Attended:    attended,
		Binary:      "pacman",
		InstallArgs: []string{"-S", "--needed"},
		ConfirmArgs: []string{"--noconfirm"},
		RefreshArgs: []string{"-Syy"},
		MaxAttempts: maxAttempts,
		Pause:       time.Nanosecond,
		Sleep:       func(time.Duration) {},
	})
}

func TestInstallSucceedsFirstTry(t *testing.T) {
	reg := newRegistry(t, 3)
	runner := testutil.NewScriptedRunner(run.Result{ExitCode: 0})
	inst := newInstaller(reg, runner, false, 3)

	require.NoError(t, inst.Install("core packages", []string{"git", "curl"}))

	calls := runner.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "pacman", calls[0].Name)
	assert.Equal(t, []string{"-S", "--needed", "--noconfirm", "git", "curl"}, calls[0].Args)
	// No failure, no failover.
	assert.Equal(t, "optimized", reg.Active().Name)
}

func TestInstallEmptyListIsNoop(t *testing.T) {
	reg := newRegistry(t, 3)
	runner := testutil.NewScriptedRunner()
	inst := newInstaller(reg, runner, false, 3)

	require.NoError(t, inst.Install("nothing", nil))
	assert.Empty(t, runner.Calls())
}

func TestInstallRetriesThroughTiers(t *testing.T) {
	reg := newRegistry(t, 3)
	// install fail, refresh ok, install fail, refresh ok, install ok
	runner := testutil.NewScriptedRunner(
		run.Result{ExitCode: 1},
		run.Result{ExitCode: 0},
		run.Result{ExitCode: 1},
		run.Result{ExitCode: 0},
		run.Result{ExitCode: 0},
	)
	inst := newInstaller(reg, runner, false, 3)

	require.NoError(t, inst.Install("core packages", []string{"git"}))

	assert.Equal(t, "emergency", reg.Active().Name)
	lines := runner.CommandLines()
	require.Len(t, lines, 5)
	assert.Contains(t, lines[1], "-Syy")
	assert.Contains(t, lines[3], "-Syy")
}

func TestInstallStopsAtMaxAttempts(t *testing.T) {
	reg := newRegistry(t, 4)
	runner := testutil.NewScriptedRunner(run.Result{ExitCode: 1})
	inst := newInstaller(reg, runner, false, 3)

	err := inst.Install("core packages", []string{"git"})
	require.Error(t, err)
	assert.True(t, rigerrors.IsErrorCode(err, rigerrors.ErrInstallFailed))

	// 3 install attempts + 2 refreshes between them.
	installCalls := 0
	for _, line := range runner.CommandLines() {
		if strings.Contains(line, "--needed") {
			installCalls++
		}
	}
	assert.Equal(t, 3, installCalls)
}

func TestMirrorExhaustionTerminates(t *testing.T) {
	// N tiers, everything fails: the installer must return after at
	// most N tier-advances, never loop.
	reg := newRegistry(t, 2)
	runner := testutil.NewScriptedRunner(run.Result{ExitCode: 1})
	inst := newInstaller(reg, runner, false, 10)

	err := inst.Install("core packages", []string{"git"})
	require.Error(t, err)
	assert.True(t, rigerrors.IsErrorCode(err, rigerrors.ErrMirrorsExhausted))
	assert.True(t, reg.Exhausted())
}

func TestAttendedModeOmitsConfirmArgs(t *testing.T) {
	reg := newRegistry(t, 3)
	runner := testutil.NewScriptedRunner(run.Result{ExitCode: 0})
	inst := newInstaller(reg, runner, true, 3)

	require.NoError(t, inst.Install("core packages", []string{"git"}))

	calls := runner.Calls()
	require.Len(t, calls, 1)
	assert.NotContains(t, calls[0].Args, "--noconfirm")
	assert.True(t, calls[0].Opts.Interactive, "attended installs leave stdin attached")
}

func TestSpawnFailureIsPrecondition(t *testing.T) {
	reg := newRegistry(t, 3)
	runner := testutil.NewFailingRunner(errors.New("exec: not found"))
	inst := newInstaller(reg, runner, false, 3)

	err := inst.Install("core packages", []string{"git"})
	require.Error(t, err)
	assert.True(t, rigerrors.IsErrorCode(err, rigerrors.ErrPrecondition))
	// A missing package manager is not a mirror problem.
	assert.Equal(t, "optimized", reg.Active().Name)
}

func TestRefresh(t *testing.T) {
	reg := newRegistry(t, 3)
	runner := testutil.NewScriptedRunner(run.Result{ExitCode: 0})
	inst := newInstaller(reg, runner, false, 3)

	require.NoError(t, inst.Refresh())
	lines := runner.CommandLines()
	require.Len(t, lines, 1)
	assert.Equal(t, "pacman -Syy", lines[0])
}
