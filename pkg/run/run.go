// Package run is the single abstraction for invoking external tools.
// Every invocation produces an explicit Result{ExitCode, Lines} so
// output filtering can never accidentally swallow a failure: the exit
// code travels separately from the filtered lines.
package run

import (
	"bufio"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync"

	"github.com/arthur-debert/rigup/pkg/errors"
	"github.com/arthur-debert/rigup/pkg/logging"
)

// Result is the outcome of one external tool invocation. Lines holds
// combined stdout/stderr with known-benign noise already filtered out.
// A non-zero ExitCode is a normal Result, not a Go error.
type Result struct {
	ExitCode int
	Lines    []string
}

// Options controls a single invocation.
type Options struct {
	// Dir is the working directory; empty means inherit.
	Dir string

	// Env entries are appended to the inherited environment.
	Env []string

	// Interactive attaches the process stdin/stdout/stderr directly so
	// the tool can prompt (attended package-manager confirmations).
	// Output capture and noise filtering are skipped in this mode.
	Interactive bool

	// Noise lines matching any of these patterns are dropped from
	// Result.Lines. The exit code is never affected.
	Noise []*regexp.Regexp
}

// Runner executes external tools. The OS implementation is OSRunner;
// tests use testutil.ScriptedRunner.
type Runner interface {
	Run(name string, args []string, opts Options) (Result, error)
}

// OSRunner runs tools via os/exec. The error return covers spawn
// failures only (binary missing, permission denied); any exit status
// from a started process comes back as Result.ExitCode.
type OSRunner struct{}

// NewOSRunner creates a Runner backed by os/exec.
func NewOSRunner() *OSRunner {
	return &OSRunner{}
}

func (r *OSRunner) Run(name string, args []string, opts Options) (Result, error) {
	logger := logging.GetLogger("run")
	logger.Debug().Str("cmd", name).Strs("args", args).Msg("Running external tool")

	cmd := exec.Command(name, args...)
	cmd.Dir = opts.Dir
	cmd.Env = append(os.Environ(), opts.Env...)

	if opts.Interactive {
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			return exitResult(nil, err)
		}
		return Result{ExitCode: 0}, nil
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Result{ExitCode: -1}, errors.Wrapf(err, errors.ErrInternal, "failed to pipe stdout of %s", name)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Result{ExitCode: -1}, errors.Wrapf(err, errors.ErrInternal, "failed to pipe stderr of %s", name)
	}

	if err := cmd.Start(); err != nil {
		return Result{ExitCode: -1}, errors.Wrapf(err, errors.ErrNotFound, "failed to start %s", name)
	}

	var mu sync.Mutex
	var lines []string
	var wg sync.WaitGroup
	collect := func(pipe io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(pipe)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			logger.Trace().Str("cmd", name).Str("line", line).Msg("tool output")
			mu.Lock()
			lines = append(lines, line)
			mu.Unlock()
		}
	}
	wg.Add(2)
	go collect(stdout)
	go collect(stderr)
	wg.Wait()

	waitErr := cmd.Wait()
	result, err := exitResult(FilterLines(lines, opts.Noise), waitErr)
	if err != nil {
		return result, err
	}
	logger.Debug().Str("cmd", name).Int("exit", result.ExitCode).Int("lines", len(result.Lines)).Msg("Tool finished")
	return result, nil
}

// exitResult maps a cmd.Run/Wait error to a Result. Exit errors are
// normal results; anything else is a spawn/IO failure.
func exitResult(lines []string, err error) (Result, error) {
	if err == nil {
		return Result{ExitCode: 0, Lines: lines}, nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return Result{ExitCode: exitErr.ExitCode(), Lines: lines}, nil
	}
	return Result{ExitCode: -1, Lines: lines}, errors.Wrap(err, errors.ErrInternal, "external tool failed to run")
}

// FilterLines drops lines matching any noise pattern. Blank lines are
// kept; only explicitly listed noise is removed.
func FilterLines(lines []string, noise []*regexp.Regexp) []string {
	if len(noise) == 0 {
		return lines
	}
	filtered := make([]string, 0, len(lines))
	for _, line := range lines {
		drop := false
		for _, pattern := range noise {
			if pattern.MatchString(line) {
				drop = true
				break
			}
		}
		if !drop {
			filtered = append(filtered, line)
		}
	}
	return filtered
}

// CompileNoise compiles noise patterns, skipping any that fail to
// compile (a bad user-config pattern should not break installs).
func CompileNoise(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		if strings.TrimSpace(p) == "" {
			continue
		}
		re, err := regexp.Compile(p)
		if err != nil {
			patternLogger := logging.GetLogger("run")
			patternLogger.Warn().Str("pattern", p).Err(err).Msg("Ignoring bad noise pattern")
			continue
		}
		compiled = append(compiled, re)
	}
	return compiled
}
