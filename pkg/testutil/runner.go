package testutil

import (
	"fmt"
	"strings"
	"sync"

	"github.com/arthur-debert/rigup/pkg/run"
)

// Call records one invocation seen by a ScriptedRunner.
type Call struct {
	Name string
	Args []string
	Opts run.Options
}

// ScriptedRunner replays canned results in order, standing in for the
// package manager and git in tests. When the script runs out it keeps
// returning the last result.
type ScriptedRunner struct {
	mu      sync.Mutex
	results []run.Result
	err     error
	calls   []Call
}

// NewScriptedRunner creates a runner that returns the given results in
// sequence.
func NewScriptedRunner(results ...run.Result) *ScriptedRunner {
	return &ScriptedRunner{results: results}
}

// NewFailingRunner creates a runner whose Run always returns err,
// simulating a missing binary.
func NewFailingRunner(err error) *ScriptedRunner {
	return &ScriptedRunner{err: err}
}

func (s *ScriptedRunner) Run(name string, args []string, opts run.Options) (run.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, Call{Name: name, Args: append([]string{}, args...), Opts: opts})
	if s.err != nil {
		return run.Result{ExitCode: -1}, s.err
	}
	if len(s.results) == 0 {
		return run.Result{ExitCode: 0}, nil
	}
	result := s.results[0]
	if len(s.results) > 1 {
		s.results = s.results[1:]
	}
	return result, nil
}

// Calls returns every recorded invocation.
func (s *ScriptedRunner) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CommandLines renders the recorded calls as "name arg arg" strings,
// convenient for assertions.
func (s *ScriptedRunner) CommandLines() []string {
	calls := s.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = strings.TrimSpace(fmt.Sprintf("%s %s", c.Name, strings.Join(c.Args, " ")))
	}
	return lines
}
