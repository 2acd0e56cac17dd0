package usecase

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/Harsh-BH/datalake/internal/domain"
)

const (
	WorkflowProvision = "provision"
	WorkflowTeardown  = "teardown"

	databaseDescription = "Glue database for NBA sports analytics."
)

// LakeSettings names the resources a workflow operates on.
type LakeSettings struct {
	Bucket        string
	Database      string
	Table         string
	RawPrefix     string
	RawKey        string
	ResultsPrefix string
	// SettleDelay is waited after bucket creation so later calls observe the bucket.
	SettleDelay time.Duration
	// StrictIngest stops provisioning when the feed produced nothing.
	StrictIngest bool
}

// OutputLocation is where the query engine writes result files.
func (s LakeSettings) OutputLocation() string {
	return domain.S3Location(s.Bucket, s.ResultsPrefix)
}

// RawLocation is the table location holding the ingested JSON lines.
func (s LakeSettings) RawLocation() string {
	return domain.S3Location(s.Bucket, s.RawPrefix)
}

// Workflows builds the provision and teardown plans from the provisioning components.
type Workflows struct {
	storage  *StorageProvisioner
	catalog  *CatalogProvisioner
	ingestor *Ingestor
	queries  *QueryRunner
	settings LakeSettings
	out      io.Writer
	logger   *zap.Logger
}

// NewWorkflows creates a new Workflows. Query results are rendered to out.
func NewWorkflows(
	storage *StorageProvisioner,
	catalog *CatalogProvisioner,
	ingestor *Ingestor,
	queries *QueryRunner,
	settings LakeSettings,
	out io.Writer,
	logger *zap.Logger,
) *Workflows {
	return &Workflows{
		storage:  storage,
		catalog:  catalog,
		ingestor: ingestor,
		queries:  queries,
		settings: settings,
		out:      out,
		logger:   logger,
	}
}

// ProvisionPlan creates the bucket, catalog database, raw data, table and runs
// the analytics query. Only the query step is fatal.
func (w *Workflows) ProvisionPlan() Plan {
	s := w.settings

	// Shared between fetch-feed and upload-raw-data.
	var fetched domain.FetchResult

	fetchPolicy := domain.PolicyBestEffort
	if s.StrictIngest {
		fetchPolicy = domain.PolicyFatal
	}

	return Plan{
		Workflow: WorkflowProvision,
		LockKey:  s.Bucket,
		Steps: []Step{
			{
				Name:   "create-bucket",
				Policy: domain.PolicyBestEffort,
				Run: func(ctx context.Context) domain.StepOutcome {
					created, err := w.storage.Create(ctx, s.Bucket)
					if err != nil {
						return domain.Fail(err)
					}
					if !created {
						return domain.Done("bucket already exists")
					}
					return domain.Done("bucket created")
				},
			},
			{
				Name:   "settle",
				Policy: domain.PolicyBestEffort,
				Run: func(ctx context.Context) domain.StepOutcome {
					if s.SettleDelay <= 0 {
						return domain.Skip("no settle delay configured")
					}
					if err := sleep(ctx, s.SettleDelay); err != nil {
						return domain.Fail(err)
					}
					return domain.Done(fmt.Sprintf("waited %s", s.SettleDelay))
				},
			},
			{
				Name:   "create-database",
				Policy: domain.PolicyBestEffort,
				Run: func(ctx context.Context) domain.StepOutcome {
					created, err := w.catalog.CreateDatabase(ctx, s.Database, databaseDescription)
					if err != nil {
						return domain.Fail(err)
					}
					if !created {
						return domain.Done("database already exists")
					}
					return domain.Done("database created")
				},
			},
			{
				Name:   "fetch-feed",
				Policy: fetchPolicy,
				Run: func(ctx context.Context) domain.StepOutcome {
					fetched = w.ingestor.Fetch(ctx)
					switch fetched.Status {
					case domain.FetchFailed:
						return domain.Fail(fmt.Errorf("fetch player feed: %w", fetched.Err))
					case domain.FetchEmpty:
						if s.StrictIngest {
							return domain.Fail(fmt.Errorf("fetch player feed: no records"))
						}
						return domain.Done("feed returned no records")
					}
					return domain.Done(fmt.Sprintf("fetched %d records", len(fetched.Batch)))
				},
			},
			{
				Name:   "upload-raw-data",
				Policy: domain.PolicyBestEffort,
				Run: func(ctx context.Context) domain.StepOutcome {
					if !fetched.HasData() {
						return domain.Skip("no data to upload")
					}
					if err := w.ingestor.Upload(ctx, s.Bucket, s.RawKey, fetched.Batch); err != nil {
						return domain.Fail(err)
					}
					return domain.Done(fmt.Sprintf("uploaded %d records to %s", len(fetched.Batch), s.RawKey))
				},
			},
			{
				Name:   "create-table",
				Policy: domain.PolicyBestEffort,
				Run: func(ctx context.Context) domain.StepOutcome {
					schema := domain.PlayerTableSchema(s.Table, s.RawLocation())
					created, err := w.catalog.CreateTable(ctx, s.Database, schema)
					if err != nil {
						return domain.Fail(err)
					}
					if !created {
						return domain.Done("table already exists")
					}
					return domain.Done("table created")
				},
			},
			{
				Name:   "configure-query-output",
				Policy: domain.PolicyBestEffort,
				Run: func(ctx context.Context) domain.StepOutcome {
					job, err := w.queries.Submit(ctx, domain.OutputDatabaseStatement(s.Database), s.Database, s.OutputLocation())
					if err != nil {
						return domain.Fail(err)
					}
					return domain.Done(fmt.Sprintf("output location %s (execution %s)", s.OutputLocation(), job.ExecutionID))
				},
			},
			{
				Name:   "run-analytics-query",
				Policy: domain.PolicyFatal,
				Run: func(ctx context.Context) domain.StepOutcome {
					return w.runAnalytics(ctx)
				},
			},
		},
	}
}

func (w *Workflows) runAnalytics(ctx context.Context) domain.StepOutcome {
	s := w.settings
	query := domain.AnalyticsQuery(s.Database, s.Table)

	job, result, err := w.queries.Run(ctx, query, s.Database, s.OutputLocation())
	if err != nil {
		return domain.Fail(err)
	}
	if job.State != domain.StateSucceeded {
		w.logger.Warn("Analytics query did not succeed",
			zap.String("execution_id", job.ExecutionID),
			zap.String("state", string(job.State)),
			zap.String("reason", job.Reason),
		)
		return domain.Fail(fmt.Errorf("query %s ended %s: %s", job.ExecutionID, job.State, job.Reason))
	}

	if err := RenderResults(w.out, result); err != nil {
		return domain.Fail(fmt.Errorf("render results: %w", err))
	}
	return domain.Done(fmt.Sprintf("query %s returned %d rows", job.ExecutionID, len(result.Rows)))
}

// TeardownPlan deletes query results, all remaining objects, the bucket and the
// catalog database with its tables. Every step is best effort.
func (w *Workflows) TeardownPlan() Plan {
	s := w.settings

	return Plan{
		Workflow: WorkflowTeardown,
		LockKey:  s.Bucket,
		Steps: []Step{
			{
				Name:   "delete-query-results",
				Policy: domain.PolicyBestEffort,
				Run: func(ctx context.Context) domain.StepOutcome {
					return w.deleteObjects(ctx, s.ResultsPrefix)
				},
			},
			{
				Name:   "delete-objects",
				Policy: domain.PolicyBestEffort,
				Run: func(ctx context.Context) domain.StepOutcome {
					return w.deleteObjects(ctx, "")
				},
			},
			{
				Name:   "delete-bucket",
				Policy: domain.PolicyBestEffort,
				Run: func(ctx context.Context) domain.StepOutcome {
					presence, err := w.storage.Check(ctx, s.Bucket)
					if err != nil {
						return domain.Fail(err)
					}
					if presence == domain.PresenceAbsent {
						return domain.Skip("bucket does not exist")
					}
					if err := w.storage.DeleteContainer(ctx, s.Bucket); err != nil {
						return domain.Fail(err)
					}
					return domain.Done("bucket deleted")
				},
			},
			{
				Name:   "delete-database",
				Policy: domain.PolicyBestEffort,
				Run: func(ctx context.Context) domain.StepOutcome {
					if err := w.catalog.DeleteDatabase(ctx, s.Database); err != nil {
						return domain.Fail(err)
					}
					return domain.Done("database and tables deleted")
				},
			},
		},
	}
}

func (w *Workflows) deleteObjects(ctx context.Context, prefix string) domain.StepOutcome {
	presence, err := w.storage.Check(ctx, w.settings.Bucket)
	if err != nil {
		return domain.Fail(err)
	}
	if presence == domain.PresenceAbsent {
		return domain.Skip("bucket does not exist")
	}
	n, err := w.storage.DeleteAll(ctx, w.settings.Bucket, prefix)
	if err != nil {
		return domain.Fail(err)
	}
	if n == 0 {
		return domain.Done("no objects found")
	}
	return domain.Done(fmt.Sprintf("deleted %d objects", n))
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
