package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Harsh-BH/datalake/internal/domain"
	"github.com/Harsh-BH/datalake/internal/metrics"
	"github.com/Harsh-BH/datalake/internal/repository"
)

// Step is one entry of a workflow plan.
type Step struct {
	Name   string
	Policy domain.StepPolicy
	Run    func(ctx context.Context) domain.StepOutcome
}

// Plan is an ordered list of steps executed sequentially.
type Plan struct {
	Workflow string
	// LockKey names the resource the run is serialized on.
	LockKey string
	Steps   []Step
}

// Orchestrator executes plans and records their outcome.
// The lock, recorder and publisher are optional and may be nil.
type Orchestrator struct {
	lock      repository.RunLock
	recorder  repository.RunRecorder
	publisher repository.EventPublisher
	logger    *zap.Logger
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(
	lock repository.RunLock,
	recorder repository.RunRecorder,
	publisher repository.EventPublisher,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		lock:      lock,
		recorder:  recorder,
		publisher: publisher,
		logger:    logger,
	}
}

// Execute runs every step of plan in order. A failed BEST_EFFORT step is recorded
// as RECOVERED and the plan continues; a failed FATAL step stops the plan, the
// remaining steps are recorded as SKIPPED and the report carries the error.
func (o *Orchestrator) Execute(ctx context.Context, plan Plan) *domain.RunReport {
	report := domain.NewRunReport(plan.Workflow, plan.LockKey)
	logger := o.logger.With(
		zap.String("run_id", report.RunID.String()),
		zap.String("workflow", plan.Workflow),
	)

	if o.lock != nil && plan.LockKey != "" {
		token := report.RunID.String()
		acquired, err := o.lock.Acquire(ctx, plan.LockKey, token)
		if err != nil {
			report.Err = fmt.Errorf("usecase: acquire run lock: %w", err)
			return o.finish(ctx, logger, report, false)
		}
		if !acquired {
			logger.Warn("Another run holds the lock, refusing to start", zap.String("lock_key", plan.LockKey))
			report.Err = domain.ErrRunLocked
			return o.finish(ctx, logger, report, false)
		}
		defer func() {
			// The run context may be cancelled by now; releasing still has to happen.
			if err := o.lock.Release(context.WithoutCancel(ctx), plan.LockKey, token); err != nil {
				logger.Warn("Failed to release run lock", zap.Error(err))
			}
		}()
	}

	if o.recorder != nil {
		if err := o.recorder.StartRun(ctx, report); err != nil {
			logger.Warn("Failed to record run start", zap.Error(err))
		}
	}

	logger.Info("Workflow started", zap.Int("steps", len(plan.Steps)))

	for _, step := range plan.Steps {
		var result domain.StepResult
		switch {
		case report.Err != nil:
			result = domain.StepResult{
				Name:   step.Name,
				Policy: step.Policy,
				Status: domain.StepSkipped,
				Detail: "skipped after fatal failure",
			}
		case ctx.Err() != nil:
			report.Err = ctx.Err()
			result = domain.StepResult{
				Name:   step.Name,
				Policy: step.Policy,
				Status: domain.StepSkipped,
				Detail: "run cancelled",
			}
		default:
			result = o.runStep(ctx, logger, plan.Workflow, step)
			if result.Status == domain.StepFailed {
				report.Err = fmt.Errorf("step %s: %w", step.Name, result.Err)
			}
		}

		report.Steps = append(report.Steps, result)
		metrics.StepsTotal.WithLabelValues(plan.Workflow, step.Name, string(result.Status)).Inc()

		if o.recorder != nil {
			if err := o.recorder.RecordStep(ctx, report.RunID, result); err != nil {
				logger.Warn("Failed to record step", zap.String("step", step.Name), zap.Error(err))
			}
		}
	}

	return o.finish(ctx, logger, report, true)
}

func (o *Orchestrator) runStep(ctx context.Context, logger *zap.Logger, workflow string, step Step) domain.StepResult {
	logger = logger.With(zap.String("step", step.Name), zap.String("policy", string(step.Policy)))
	logger.Info("Step started")

	start := time.Now()
	outcome := step.Run(ctx)
	elapsed := time.Since(start)
	metrics.StepDuration.WithLabelValues(workflow, step.Name).Observe(elapsed.Seconds())

	result := domain.StepResult{
		Name:     step.Name,
		Policy:   step.Policy,
		Detail:   outcome.Detail,
		Duration: elapsed,
	}

	switch {
	case outcome.Err != nil && step.Policy == domain.PolicyFatal:
		result.Status = domain.StepFailed
		result.Err = outcome.Err
		result.Error = outcome.Err.Error()
		logger.Error("Step failed", zap.Error(outcome.Err), zap.Duration("elapsed", elapsed))
	case outcome.Err != nil:
		result.Status = domain.StepRecovered
		result.Err = outcome.Err
		result.Error = outcome.Err.Error()
		logger.Warn("Step failed, continuing", zap.Error(outcome.Err), zap.Duration("elapsed", elapsed))
	case outcome.Skipped:
		result.Status = domain.StepSkipped
		logger.Info("Step skipped", zap.String("detail", outcome.Detail))
	default:
		result.Status = domain.StepSucceeded
		logger.Info("Step completed", zap.String("detail", outcome.Detail), zap.Duration("elapsed", elapsed))
	}
	return result
}

func (o *Orchestrator) finish(ctx context.Context, logger *zap.Logger, report *domain.RunReport, started bool) *domain.RunReport {
	report.FinishedAt = time.Now().UTC()
	if report.Err != nil {
		report.Error = report.Err.Error()
	}

	// Bookkeeping must not be lost because the run itself was cancelled.
	bookCtx := context.WithoutCancel(ctx)

	if o.recorder != nil && started {
		if err := o.recorder.FinishRun(bookCtx, report); err != nil {
			logger.Warn("Failed to record run finish", zap.Error(err))
		}
	}
	if o.publisher != nil {
		if err := o.publisher.PublishRun(bookCtx, report); err != nil {
			logger.Warn("Failed to publish run event", zap.Error(err))
		}
	}

	fields := []zap.Field{
		zap.String("status", report.Status()),
		zap.Int("succeeded", report.Count(domain.StepSucceeded)),
		zap.Int("recovered", report.Count(domain.StepRecovered)),
		zap.Int("skipped", report.Count(domain.StepSkipped)),
		zap.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)),
	}
	if report.Err != nil {
		logger.Error("Workflow failed", append(fields, zap.Error(report.Err))...)
	} else {
		logger.Info("Workflow finished", fields...)
	}
	return report
}
