package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Harsh-BH/datalake/internal/domain"
	"github.com/Harsh-BH/datalake/internal/repository"
)

var _ repository.RunRecorder = (*RunRecorder)(nil)

const runningStatus = "RUNNING"

const schemaDDL = `
CREATE TABLE IF NOT EXISTS lake_runs (
	run_id      UUID PRIMARY KEY,
	workflow    TEXT NOT NULL,
	bucket      TEXT NOT NULL,
	status      TEXT NOT NULL,
	error       TEXT NOT NULL DEFAULT '',
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS lake_run_steps (
	run_id      UUID NOT NULL REFERENCES lake_runs (run_id) ON DELETE CASCADE,
	position    SERIAL,
	name        TEXT NOT NULL,
	policy      TEXT NOT NULL,
	status      TEXT NOT NULL,
	detail      TEXT NOT NULL DEFAULT '',
	error       TEXT NOT NULL DEFAULT '',
	duration_ms BIGINT NOT NULL,
	PRIMARY KEY (run_id, position)
);`

// dbtx is the subset of *pgxpool.Pool used by the recorder.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// RunRecorder stores run reports and their steps in PostgreSQL.
type RunRecorder struct {
	db dbtx
}

// NewPostgresRunRecorder creates a PostgreSQL-backed run history.
func NewPostgresRunRecorder(pool *pgxpool.Pool) *RunRecorder {
	return &RunRecorder{db: pool}
}

// EnsureSchema creates the run history tables if they do not exist.
func (r *RunRecorder) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("postgres: ensure schema: %w", err)
	}
	return nil
}

func (r *RunRecorder) StartRun(ctx context.Context, report *domain.RunReport) error {
	query := `
		INSERT INTO lake_runs (run_id, workflow, bucket, status, started_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, query,
		report.RunID, report.Workflow, report.Bucket, runningStatus, report.StartedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("postgres: start run: %w", err)
	}
	return nil
}

func (r *RunRecorder) RecordStep(ctx context.Context, runID uuid.UUID, result domain.StepResult) error {
	query := `
		INSERT INTO lake_run_steps (run_id, name, policy, status, detail, error, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		runID, result.Name, string(result.Policy), string(result.Status),
		result.Detail, result.Error, result.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("postgres: record step: %w", err)
	}
	return nil
}

func (r *RunRecorder) FinishRun(ctx context.Context, report *domain.RunReport) error {
	query := `
		UPDATE lake_runs
		SET status = $1, error = $2, finished_at = $3
		WHERE run_id = $4`

	tag, err := r.db.Exec(ctx, query,
		report.Status(), report.Error, report.FinishedAt.UTC(), report.RunID,
	)
	if err != nil {
		return fmt.Errorf("postgres: finish run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("postgres: run not found: %s", report.RunID)
	}
	return nil
}
