package domain

import (
	"fmt"
	"time"
)

// QueryState represents the lifecycle state of a remote query execution.
type QueryState string

const (
	StateSubmitted QueryState = "SUBMITTED"
	StateRunning   QueryState = "RUNNING"
	StateSucceeded QueryState = "SUCCEEDED"
	StateFailed    QueryState = "FAILED"
	StateCancelled QueryState = "CANCELLED"

	// StateTimedOut is never reported by the query service. It is the outcome
	// of a local poll deadline expiring before the job reached a terminal state.
	StateTimedOut QueryState = "TIMED_OUT"
)

// IsTerminal returns true if the state is a final state reported by the query service.
func (s QueryState) IsTerminal() bool {
	switch s {
	case StateSucceeded, StateFailed, StateCancelled:
		return true
	}
	return false
}

// QueryRequest is passed to the query engine on submission.
type QueryRequest struct {
	Query          string
	Database       string
	OutputLocation string
	// ClientToken makes a retried submission idempotent on the service side.
	ClientToken string
}

// QueryStatus is a single observation of a running query.
type QueryStatus struct {
	State  QueryState
	Reason string
}

// QueryJob represents one submitted query execution.
type QueryJob struct {
	ExecutionID string     `json:"execution_id"`
	Query       string     `json:"query"`
	Database    string     `json:"database"`
	State       QueryState `json:"state"`
	Reason      string     `json:"reason,omitempty"`
	SubmittedAt time.Time  `json:"submitted_at"`
}

// QueryResult holds the rendered rows of a succeeded query. When the engine
// returns a header row it is kept as the first row.
type QueryResult struct {
	Rows [][]string
}

// AnalyticsQuery returns the per-team player count and salary aggregate.
func AnalyticsQuery(database, table string) string {
	return fmt.Sprintf(`SELECT
    Team,
    COUNT(PlayerID) AS PlayerCount,
    SUM(Salary) AS TotalSalary
FROM %s.%s
GROUP BY Team
LIMIT 20;`, database, table)
}

// OutputDatabaseStatement is submitted once during provisioning to exercise
// the configured query output location.
func OutputDatabaseStatement(database string) string {
	return fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database)
}
