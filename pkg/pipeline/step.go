package pipeline

import (
	"errors"
	"time"
)

// Policy decides what a step failure does to the rest of the run.
type Policy int

const (
	// PolicyFatal aborts the pipeline on failure.
	PolicyFatal Policy = iota
	// PolicyWarnAndContinue records the failure and moves on.
	PolicyWarnAndContinue
)

func (p Policy) String() string {
	switch p {
	case PolicyFatal:
		return "fatal"
	case PolicyWarnAndContinue:
		return "warn"
	default:
		return "unknown"
	}
}

// Status is the per-step state machine:
// Pending -> Running -> {Succeeded, Warned, Failed}.
type Status int

const (
	StatusPending Status = iota
	StatusRunning
	StatusSucceeded
	StatusWarned
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusSucceeded:
		return "succeeded"
	case StatusWarned:
		return "warned"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Step is one named, idempotent unit of provisioning work. Steps are
// built once at pipeline-definition time and executed in declared
// order, exactly once per run.
type Step struct {
	Name   string
	Desc   string
	Policy Policy
	Run    func(ctx *Context) error
}

// StepResult records the outcome of one executed step.
type StepResult struct {
	Name     string
	Status   Status
	Skipped  bool
	Message  string
	Err      error
	Duration time.Duration
}

// warnError marks an error as a warning outcome: the step finished in
// a degraded but acceptable state.
type warnError struct{ err error }

func (w *warnError) Error() string { return w.err.Error() }
func (w *warnError) Unwrap() error { return w.err }

// Warning wraps an error so the runner records the step as Warned
// instead of Failed.
func Warning(err error) error {
	if err == nil {
		return nil
	}
	return &warnError{err: err}
}

// AsWarning reports whether err carries the warning marker and returns
// the underlying error.
func AsWarning(err error) (error, bool) {
	var w *warnError
	if errors.As(err, &w) {
		return w.err, true
	}
	return nil, false
}

// skipError marks a step as satisfied before it did any work.
type skipError struct{ reason string }

func (s *skipError) Error() string { return s.reason }

// Skip signals that the step's goal is already met (the idempotency
// short-circuit). The step succeeds with a Skipped result.
func Skip(reason string) error {
	return &skipError{reason: reason}
}

// AsSkip reports whether err carries the skip marker.
func AsSkip(err error) (string, bool) {
	var s *skipError
	if errors.As(err, &s) {
		return s.reason, true
	}
	return "", false
}
