// Package pipeline is the step-sequencing engine: a fixed, ordered
// list of idempotent steps, each independently fallible, with a
// per-step failure policy. Execution is strictly sequential; steps
// mutate shared host resources that have no safe concurrent story.
package pipeline

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/rigup/pkg/errors"
	"github.com/arthur-debert/rigup/pkg/logging"
)

// Confirmer is the prompt surface for the continue-anyway dialog on
// fatal failures in attended mode. ui.Console satisfies it.
type Confirmer interface {
	Confirm(prompt string, def bool) bool
}

// RunResult is the outcome of a whole pipeline run.
type RunResult struct {
	Steps    []StepResult
	Aborted  bool
	Warnings []string
	Started  time.Time
	Finished time.Time
}

// Completed reports whether every step reached Succeeded or Warned.
func (r RunResult) Completed() bool {
	return !r.Aborted
}

// Runner executes steps in declared order.
type Runner struct {
	steps     []Step
	confirmer Confirmer
	logger    zerolog.Logger
	now       func() time.Time
}

// NewRunner creates a Runner. confirmer may be nil, in which case
// fatal failures abort without the continue-anyway prompt even when
// attended.
func NewRunner(steps []Step, confirmer Confirmer) *Runner {
	return &Runner{
		steps:     steps,
		confirmer: confirmer,
		logger:    logging.GetLogger("pipeline"),
		now:       time.Now,
	}
}

// Run executes the pipeline. A Fatal-policy failure aborts: remaining
// steps are never entered. WarnAndContinue failures and Warned
// outcomes accumulate on the context and the run proceeds.
func (r *Runner) Run(ctx *Context) RunResult {
	result := RunResult{Started: r.now()}

	for _, step := range r.steps {
		r.logger.Info().Str("step", step.Name).Msg("Step started")
		start := r.now()

		err := step.Run(ctx)
		sr := StepResult{
			Name:     step.Name,
			Duration: r.now().Sub(start),
		}

		switch {
		case err == nil:
			sr.Status = StatusSucceeded
		default:
			if reason, ok := AsSkip(err); ok {
				sr.Status = StatusSucceeded
				sr.Skipped = true
				sr.Message = reason
				break
			}
			if warn, ok := AsWarning(err); ok {
				sr.Status = StatusWarned
				sr.Err = warn
				sr.Message = warn.Error()
				ctx.AddWarning(fmt.Sprintf("%s: %v", step.Name, warn))
				break
			}
			sr.Status = StatusFailed
			sr.Err = err
			sr.Message = err.Error()
		}

		r.logger.Info().
			Str("step", step.Name).
			Str("status", sr.Status.String()).
			Bool("skipped", sr.Skipped).
			Dur("duration", sr.Duration).
			Msg("Step finished")

		if sr.Status == StatusFailed {
			if step.Policy == PolicyWarnAndContinue {
				ctx.AddWarning(fmt.Sprintf("%s: %v", step.Name, sr.Err))
				result.Steps = append(result.Steps, sr)
				continue
			}
			// Fatal. Attended mode gets one chance to continue anyway;
			// unattended aborts immediately.
			if r.continueAnyway(ctx, step, sr.Err) {
				ctx.AddWarning(fmt.Sprintf("%s: %v (continued on request)", step.Name, sr.Err))
				sr.Status = StatusWarned
				result.Steps = append(result.Steps, sr)
				continue
			}
			result.Steps = append(result.Steps, sr)
			result.Aborted = true
			break
		}

		result.Steps = append(result.Steps, sr)
	}

	result.Warnings = ctx.Warnings()
	result.Finished = r.now()

	if result.Aborted {
		r.logger.Error().Int("steps", len(result.Steps)).Msg("Pipeline aborted")
	} else {
		r.logger.Info().
			Int("steps", len(result.Steps)).
			Int("warnings", len(result.Warnings)).
			Msg("Pipeline completed")
	}
	return result
}

func (r *Runner) continueAnyway(ctx *Context, step Step, stepErr error) bool {
	if !ctx.Attended() || r.confirmer == nil {
		return false
	}
	prompt := fmt.Sprintf("Step %q failed: %v. Continue anyway?", step.Name, stepErr)
	return r.confirmer.Confirm(prompt, false)
}

// Err returns the error a caller should surface for an aborted run.
func (r RunResult) Err() error {
	if !r.Aborted {
		return nil
	}
	for i := len(r.Steps) - 1; i >= 0; i-- {
		if r.Steps[i].Status == StatusFailed {
			return errors.Wrapf(r.Steps[i].Err, errors.ErrPipelineAborted,
				"step %q failed", r.Steps[i].Name)
		}
	}
	return errors.New(errors.ErrPipelineAborted, "pipeline aborted")
}
