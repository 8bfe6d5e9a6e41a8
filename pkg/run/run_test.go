// pkg/run/run_test.go
// TEST TYPE: Unit + Integration Test
// DEPENDENCIES: /bin/sh for the OSRunner cases
// PURPOSE: Exit codes survive output filtering; noise filtering only
// touches lines

package run_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/rigup/pkg/run"
)

func TestFilterLines(t *testing.T) {
	noise := []*regexp.Regexp{
		regexp.MustCompile(`^warning: .* is up to date`),
		regexp.MustCompile(`^::`),
	}

	tests := []struct {
		name  string
		lines []string
		want  []string
	}{
		{
			name:  "no_noise",
			lines: []string{"installing git", "done"},
			want:  []string{"installing git", "done"},
		},
		{
			name:  "noise_dropped",
			lines: []string{"warning: git is up to date -- skipping", "installing curl", ":: retrieving packages"},
			want:  []string{"installing curl"},
		},
		{
			name:  "empty_input",
			lines: nil,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := run.FilterLines(tt.lines, noise)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterLinesNoPatterns(t *testing.T) {
	lines := []string{"a", "b"}
	assert.Equal(t, lines, run.FilterLines(lines, nil))
}

func TestCompileNoiseSkipsBadPatterns(t *testing.T) {
	compiled := run.CompileNoise([]string{`^ok$`, `([`, "", `^also-ok`})
	assert.Len(t, compiled, 2)
}

func TestOSRunnerExitCode(t *testing.T) {
	runner := run.NewOSRunner()

	result, err := runner.Run("sh", []string{"-c", "echo out; echo err >&2; exit 3"}, run.Options{})
	require.NoError(t, err, "a non-zero exit is a normal result, not an error")
	assert.Equal(t, 3, result.ExitCode)
	assert.Contains(t, result.Lines, "out")
	assert.Contains(t, result.Lines, "err")
}

func TestOSRunnerFilteringNeverMasksExit(t *testing.T) {
	runner := run.NewOSRunner()

	// Every output line is noise; the failure must still be visible.
	result, err := runner.Run("sh", []string{"-c", "echo benign; exit 1"}, run.Options{
		Noise: run.CompileNoise([]string{`^benign$`}),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.ExitCode)
	assert.Empty(t, result.Lines)
}

func TestOSRunnerSpawnFailure(t *testing.T) {
	runner := run.NewOSRunner()

	_, err := runner.Run("rigup-definitely-not-a-binary", nil, run.Options{})
	require.Error(t, err)
}

func TestOSRunnerDir(t *testing.T) {
	runner := run.NewOSRunner()

	dir := t.TempDir()
	result, err := runner.Run("sh", []string{"-c", "pwd"}, run.Options{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
	require.NotEmpty(t, result.Lines)
	assert.Contains(t, result.Lines[0], dir)
}
