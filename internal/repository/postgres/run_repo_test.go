package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harsh-BH/datalake/internal/domain"
)

type execCall struct {
	sql  string
	args []any
}

type fakeDB struct {
	calls []execCall
	tag   string
	err   error
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.calls = append(f.calls, execCall{sql: sql, args: args})
	if f.err != nil {
		return pgconn.CommandTag{}, f.err
	}
	return pgconn.NewCommandTag(f.tag), nil
}

func TestRunRecorder_Lifecycle(t *testing.T) {
	db := &fakeDB{tag: "UPDATE 1"}
	rec := &RunRecorder{db: db}
	ctx := context.Background()

	report := domain.NewRunReport("provision", "lake")
	require.NoError(t, rec.StartRun(ctx, report))

	step := domain.StepResult{
		Name:     "create-bucket",
		Policy:   domain.PolicyBestEffort,
		Status:   domain.StepRecovered,
		Error:    "access denied",
		Duration: 1500 * time.Millisecond,
	}
	require.NoError(t, rec.RecordStep(ctx, report.RunID, step))

	report.FinishedAt = time.Now()
	require.NoError(t, rec.FinishRun(ctx, report))

	require.Len(t, db.calls, 3)
	assert.True(t, strings.Contains(db.calls[0].sql, "INSERT INTO lake_runs"))
	assert.Equal(t, report.RunID, db.calls[0].args[0])
	assert.Equal(t, "RUNNING", db.calls[0].args[3])

	assert.True(t, strings.Contains(db.calls[1].sql, "INSERT INTO lake_run_steps"))
	assert.Equal(t, "RECOVERED", db.calls[1].args[3])
	assert.Equal(t, int64(1500), db.calls[1].args[6])

	assert.True(t, strings.Contains(db.calls[2].sql, "UPDATE lake_runs"))
	assert.Equal(t, "COMPLETED", db.calls[2].args[0])
	assert.Equal(t, report.RunID, db.calls[2].args[3])
}

func TestRunRecorder_FinishUnknownRun(t *testing.T) {
	rec := &RunRecorder{db: &fakeDB{tag: "UPDATE 0"}}

	report := domain.NewRunReport("teardown", "lake")
	err := rec.FinishRun(context.Background(), report)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found")
}

func TestRunRecorder_ExecError(t *testing.T) {
	cause := errors.New("connection refused")
	rec := &RunRecorder{db: &fakeDB{err: cause}}

	err := rec.RecordStep(context.Background(), uuid.New(), domain.StepResult{Name: "settle"})
	assert.ErrorIs(t, err, cause)

	assert.ErrorIs(t, rec.EnsureSchema(context.Background()), cause)
}
