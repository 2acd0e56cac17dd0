package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/Harsh-BH/datalake/internal/domain"
)

// ObjectStore defines bucket and object operations against object storage.
// Implementations return errors wrapping domain.ErrNotFound, domain.ErrAlreadyExists
// or domain.ErrNotEmpty where the service reports those conditions.
type ObjectStore interface {
	CreateBucket(ctx context.Context, bucket string) error

	// HeadBucket returns nil if the bucket exists and is reachable.
	HeadBucket(ctx context.Context, bucket string) error

	DeleteBucket(ctx context.Context, bucket string) error

	// PutObject overwrites any existing object at key.
	PutObject(ctx context.Context, bucket, key string, body []byte) error

	// ListObjects returns the keys starting with prefix. Only the first page is read.
	ListObjects(ctx context.Context, bucket, prefix string) ([]string, error)

	DeleteObject(ctx context.Context, bucket, key string) error
}

// Catalog defines database and table operations against the metadata catalog.
type Catalog interface {
	CreateDatabase(ctx context.Context, name, description string) error
	CreateTable(ctx context.Context, database string, schema domain.TableSchema) error
	ListTables(ctx context.Context, database string) ([]string, error)
	DeleteTable(ctx context.Context, database, table string) error
	DeleteDatabase(ctx context.Context, name string) error
}

// QueryEngine defines the asynchronous query service.
type QueryEngine interface {
	// StartQuery submits a query and returns its execution id.
	StartQuery(ctx context.Context, req *domain.QueryRequest) (string, error)

	GetQueryStatus(ctx context.Context, executionID string) (domain.QueryStatus, error)

	// GetQueryResults returns the first page of rows. A nil cell is a SQL NULL.
	GetQueryResults(ctx context.Context, executionID string) ([][]*string, error)
}

// PlayerFeed fetches player records from the external data source.
type PlayerFeed interface {
	FetchPlayers(ctx context.Context) (domain.PlayerBatch, error)
}

// RunRecorder persists run history.
type RunRecorder interface {
	StartRun(ctx context.Context, report *domain.RunReport) error
	RecordStep(ctx context.Context, runID uuid.UUID, result domain.StepResult) error
	FinishRun(ctx context.Context, report *domain.RunReport) error
}

// RunLock serializes runs that target the same resources. The token identifies
// the holder; only the holder's token releases the lock.
type RunLock interface {
	// Acquire returns true if the lock was acquired, false if another run holds it.
	Acquire(ctx context.Context, key, token string) (bool, error)

	// Release is a no-op when the lock has expired or is held under another token.
	Release(ctx context.Context, key, token string) error
}

// EventPublisher announces finished runs.
type EventPublisher interface {
	PublishRun(ctx context.Context, report *domain.RunReport) error
}
