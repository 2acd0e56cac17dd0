package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Harsh-BH/datalake/internal/domain"
	"github.com/Harsh-BH/datalake/internal/metrics"
	"github.com/Harsh-BH/datalake/internal/repository"
)

const defaultPollInterval = 2 * time.Second

// QueryRunnerConfig controls polling.
type QueryRunnerConfig struct {
	PollInterval time.Duration
	// MaxWait bounds AwaitCompletion. Zero waits until the service reports a
	// terminal state or the context is cancelled.
	MaxWait time.Duration
}

// QueryRunner submits queries and drives them to a terminal state by polling.
type QueryRunner struct {
	engine repository.QueryEngine
	cfg    QueryRunnerConfig
	logger *zap.Logger
}

// NewQueryRunner creates a new QueryRunner.
func NewQueryRunner(engine repository.QueryEngine, cfg QueryRunnerConfig, logger *zap.Logger) *QueryRunner {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	return &QueryRunner{
		engine: engine,
		cfg:    cfg,
		logger: logger,
	}
}

// Submit starts query against database, writing results under outputLocation.
// Errors propagate: there is no job to poll.
func (r *QueryRunner) Submit(ctx context.Context, query, database, outputLocation string) (*domain.QueryJob, error) {
	req := &domain.QueryRequest{
		Query:          query,
		Database:       database,
		OutputLocation: outputLocation,
		ClientToken:    uuid.NewString(),
	}
	id, err := r.engine.StartQuery(ctx, req)
	if err != nil {
		r.logger.Error("Failed to submit query", zap.String("database", database), zap.Error(err))
		return nil, fmt.Errorf("usecase: submit query: %w", err)
	}
	if id == "" {
		return nil, fmt.Errorf("usecase: submit query: %w", domain.ErrNoSubmission)
	}

	r.logger.Info("Query started", zap.String("execution_id", id), zap.String("database", database))
	return &domain.QueryJob{
		ExecutionID: id,
		Query:       query,
		Database:    database,
		State:       domain.StateSubmitted,
		SubmittedAt: time.Now(),
	}, nil
}

// AwaitCompletion polls the job until the service reports SUCCEEDED, FAILED or
// CANCELLED and returns that state. It also returns early with StateTimedOut and
// domain.ErrQueryTimeout when MaxWait elapses, with the context error when ctx
// is done, and with StateFailed and the cause when a status call fails.
func (r *QueryRunner) AwaitCompletion(ctx context.Context, job *domain.QueryJob) (domain.QueryState, error) {
	if job == nil || job.ExecutionID == "" {
		return "", domain.ErrNoSubmission
	}

	var deadline <-chan time.Time
	if r.cfg.MaxWait > 0 {
		timer := time.NewTimer(r.cfg.MaxWait)
		defer timer.Stop()
		deadline = timer.C
	}

	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for {
		status, err := r.engine.GetQueryStatus(ctx, job.ExecutionID)
		metrics.QueryPollsTotal.Inc()
		if err != nil {
			r.logger.Error("Failed to poll query status", zap.String("execution_id", job.ExecutionID), zap.Error(err))
			job.State = domain.StateFailed
			job.Reason = err.Error()
			r.observe(job)
			return domain.StateFailed, fmt.Errorf("usecase: poll query %s: %w", job.ExecutionID, err)
		}

		job.State = status.State
		if status.State.IsTerminal() {
			if status.State == domain.StateFailed {
				job.Reason = status.Reason
				r.logger.Error("Query execution failed",
					zap.String("execution_id", job.ExecutionID),
					zap.String("reason", status.Reason),
				)
			} else {
				r.logger.Info("Query finished",
					zap.String("execution_id", job.ExecutionID),
					zap.String("state", string(status.State)),
				)
			}
			r.observe(job)
			return status.State, nil
		}

		r.logger.Debug("Query still running",
			zap.String("execution_id", job.ExecutionID),
			zap.String("state", string(status.State)),
		)

		select {
		case <-ctx.Done():
			return job.State, ctx.Err()
		case <-deadline:
			job.State = domain.StateTimedOut
			r.observe(job)
			r.logger.Error("Query did not finish in time",
				zap.String("execution_id", job.ExecutionID),
				zap.Duration("max_wait", r.cfg.MaxWait),
			)
			return domain.StateTimedOut, fmt.Errorf("usecase: query %s after %s: %w",
				job.ExecutionID, r.cfg.MaxWait, domain.ErrQueryTimeout)
		case <-ticker.C:
		}
	}
}

func (r *QueryRunner) observe(job *domain.QueryJob) {
	if job.SubmittedAt.IsZero() {
		return
	}
	metrics.QueryDuration.WithLabelValues(string(job.State)).Observe(time.Since(job.SubmittedAt).Seconds())
}

// FetchResults returns the rows of a succeeded job. Null cells render as "".
func (r *QueryRunner) FetchResults(ctx context.Context, job *domain.QueryJob) (domain.QueryResult, error) {
	if job == nil || job.ExecutionID == "" {
		return domain.QueryResult{}, domain.ErrNoSubmission
	}
	if job.State != domain.StateSucceeded {
		return domain.QueryResult{}, fmt.Errorf("usecase: fetch results for %s in state %s: %w",
			job.ExecutionID, job.State, domain.ErrQueryNotSucceeded)
	}

	raw, err := r.engine.GetQueryResults(ctx, job.ExecutionID)
	if err != nil {
		r.logger.Error("Failed to fetch query results", zap.String("execution_id", job.ExecutionID), zap.Error(err))
		return domain.QueryResult{}, fmt.Errorf("usecase: fetch results for %s: %w", job.ExecutionID, err)
	}

	rows := make([][]string, 0, len(raw))
	for _, cells := range raw {
		row := make([]string, len(cells))
		for n, cell := range cells {
			if cell != nil {
				row[n] = *cell
			}
		}
		rows = append(rows, row)
	}
	return domain.QueryResult{Rows: rows}, nil
}

// Run submits query, waits for it and fetches its rows when it succeeds.
// A non-succeeded terminal state is not an error; the returned job carries it.
func (r *QueryRunner) Run(ctx context.Context, query, database, outputLocation string) (*domain.QueryJob, domain.QueryResult, error) {
	job, err := r.Submit(ctx, query, database, outputLocation)
	if err != nil {
		return nil, domain.QueryResult{}, err
	}

	state, err := r.AwaitCompletion(ctx, job)
	if err != nil {
		return job, domain.QueryResult{}, err
	}
	if state != domain.StateSucceeded {
		return job, domain.QueryResult{}, nil
	}

	result, err := r.FetchResults(ctx, job)
	return job, result, err
}

// RenderResults writes rows as tab-aligned columns.
func RenderResults(w io.Writer, result domain.QueryResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, row := range result.Rows {
		if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}
