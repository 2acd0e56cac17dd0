package domain

import (
	"time"

	"github.com/google/uuid"
)

// StepPolicy decides what a step failure does to the rest of the workflow.
type StepPolicy string

const (
	// PolicyBestEffort failures are logged and the workflow continues.
	PolicyBestEffort StepPolicy = "BEST_EFFORT"
	// PolicyFatal failures stop the workflow; remaining steps are skipped.
	PolicyFatal StepPolicy = "FATAL"
)

// StepStatus is the recorded outcome of a single orchestration step.
type StepStatus string

const (
	StepSucceeded StepStatus = "SUCCEEDED"
	StepSkipped   StepStatus = "SKIPPED"
	StepRecovered StepStatus = "RECOVERED"
	StepFailed    StepStatus = "FAILED"
)

// StepOutcome is what a step body reports back to the orchestrator.
// A non-nil Err means the step failed; the policy decides the final status.
type StepOutcome struct {
	Skipped bool
	Detail  string
	Err     error
}

// Done reports a completed step.
func Done(detail string) StepOutcome {
	return StepOutcome{Detail: detail}
}

// Skip reports a step that had nothing to do.
func Skip(detail string) StepOutcome {
	return StepOutcome{Skipped: true, Detail: detail}
}

// Fail reports a failed step.
func Fail(err error) StepOutcome {
	return StepOutcome{Err: err}
}

// StepResult is one entry of a run report.
type StepResult struct {
	Name     string        `json:"name"`
	Policy   StepPolicy    `json:"policy"`
	Status   StepStatus    `json:"status"`
	Detail   string        `json:"detail,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`

	// Err is the step's failure, kept so callers can match it with errors.Is.
	Err error `json:"-"`
}

// RunReport summarizes one provision or teardown run.
type RunReport struct {
	RunID      uuid.UUID    `json:"run_id"`
	Workflow   string       `json:"workflow"`
	Bucket     string       `json:"bucket"`
	Steps      []StepResult `json:"steps"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Error      string       `json:"error,omitempty"`

	// Err is the fatal error that stopped the run, if any.
	Err error `json:"-"`
}

// NewRunReport starts a report for workflow.
func NewRunReport(workflow, bucket string) *RunReport {
	return &RunReport{
		RunID:     uuid.New(),
		Workflow:  workflow,
		Bucket:    bucket,
		StartedAt: time.Now().UTC(),
	}
}

// Failed returns true if a fatal error stopped the run.
func (r *RunReport) Failed() bool {
	return r.Err != nil
}

// Count returns how many steps ended with status.
func (r *RunReport) Count(status StepStatus) int {
	n := 0
	for _, s := range r.Steps {
		if s.Status == status {
			n++
		}
	}
	return n
}

// Step returns the result recorded for name.
func (r *RunReport) Step(name string) (StepResult, bool) {
	for _, s := range r.Steps {
		if s.Name == name {
			return s, true
		}
	}
	return StepResult{}, false
}

// Status is the overall run status used by run history and events.
func (r *RunReport) Status() string {
	switch {
	case r.Failed():
		return "FAILED"
	case r.Count(StepRecovered) > 0:
		return "COMPLETED_WITH_ERRORS"
	}
	return "COMPLETED"
}
