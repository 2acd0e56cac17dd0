package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Harsh-BH/datalake/internal/config"
	amqpdelivery "github.com/Harsh-BH/datalake/internal/delivery/amqp"
	"github.com/Harsh-BH/datalake/internal/domain"
	"github.com/Harsh-BH/datalake/internal/metrics"
	"github.com/Harsh-BH/datalake/internal/repository"
	awsrepo "github.com/Harsh-BH/datalake/internal/repository/aws"
	"github.com/Harsh-BH/datalake/internal/repository/feed"
	"github.com/Harsh-BH/datalake/internal/repository/postgres"
	redisrepo "github.com/Harsh-BH/datalake/internal/repository/redis"
	"github.com/Harsh-BH/datalake/internal/usecase"
)

const (
	connectTimeout = 10 * time.Second
	pushTimeout    = 5 * time.Second
)

// app holds the wired components for one command invocation.
type app struct {
	cfg    *config.Config
	logger *zap.Logger

	settings     usecase.LakeSettings
	queries      *usecase.QueryRunner
	workflows    *usecase.Workflows
	orchestrator *usecase.Orchestrator

	closers []func()
}

// newApp loads and validates configuration for workflow, then wires the AWS
// adapters and any optional infrastructure that is configured.
func newApp(ctx context.Context, opts *rootOptions, workflow config.Workflow, out io.Writer) (*app, error) {
	logger, err := newLogger(opts.logFormat)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if err := cfg.Validate(workflow); err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger}
	a.closers = append(a.closers, func() { _ = logger.Sync() })

	awsCfg, err := awsrepo.LoadConfig(ctx, awsrepo.ClientConfig{
		Region:          cfg.AWS.Region,
		EndpointURL:     cfg.AWS.EndpointURL,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		SessionToken:    cfg.AWS.SessionToken,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	a.settings = usecase.LakeSettings{
		Bucket:        cfg.Lake.Bucket,
		Database:      cfg.Lake.Database,
		Table:         cfg.Lake.Table,
		RawPrefix:     cfg.Lake.RawPrefix,
		RawKey:        cfg.Lake.RawKey,
		ResultsPrefix: cfg.Lake.ResultsPrefix,
		SettleDelay:   cfg.Lake.SettleDelay,
		StrictIngest:  cfg.Lake.StrictIngest,
	}

	storage := usecase.NewStorageProvisioner(awsrepo.NewObjectStore(awsCfg), logger)
	catalog := usecase.NewCatalogProvisioner(awsrepo.NewCatalog(awsCfg), logger)
	ingestor := usecase.NewIngestor(feed.NewHTTPFeed(cfg.Feed.Endpoint, cfg.Feed.APIKey, cfg.Feed.Timeout), storage, logger)
	a.queries = usecase.NewQueryRunner(awsrepo.NewQueryEngine(awsCfg), usecase.QueryRunnerConfig{
		PollInterval: cfg.Query.PollInterval,
		MaxWait:      cfg.Query.MaxWait,
	}, logger)
	a.workflows = usecase.NewWorkflows(storage, catalog, ingestor, a.queries, a.settings, out, logger)

	lock, recorder, publisher, err := a.connectOptional(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.orchestrator = usecase.NewOrchestrator(lock, recorder, publisher, logger)

	return a, nil
}

// connectOptional connects the run lock, run history and event publisher.
// Each is left nil when its URL is not configured.
func (a *app) connectOptional(ctx context.Context) (repository.RunLock, repository.RunRecorder, repository.EventPublisher, error) {
	var (
		lock      repository.RunLock
		recorder  repository.RunRecorder
		publisher repository.EventPublisher
	)

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if url := a.cfg.Redis.URL; url != "" {
		opts, err := goredis.ParseURL(url)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("invalid Redis URL: %w", err)
		}
		client := goredis.NewClient(opts)
		a.closers = append(a.closers, func() { _ = client.Close() })
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, nil, fmt.Errorf("connect to Redis: %w", err)
		}
		lock = redisrepo.NewRedisRunLock(client, redisrepo.DefaultLockTTL)
		a.logger.Info("Connected to Redis")
	}

	if url := a.cfg.Database.URL; url != "" {
		pool, err := pgxpool.New(ctx, url)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect to PostgreSQL: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		if err := pool.Ping(ctx); err != nil {
			return nil, nil, nil, fmt.Errorf("ping PostgreSQL: %w", err)
		}
		runs := postgres.NewPostgresRunRecorder(pool)
		if err := runs.EnsureSchema(ctx); err != nil {
			return nil, nil, nil, err
		}
		recorder = runs
		a.logger.Info("Connected to PostgreSQL")
	}

	if url := a.cfg.RabbitMQ.URL; url != "" {
		p, err := amqpdelivery.NewPublisher(url, a.logger)
		if err != nil {
			return nil, nil, nil, err
		}
		a.closers = append(a.closers, func() { _ = p.Close() })
		publisher = p
		a.logger.Info("Connected to RabbitMQ")
	}

	return lock, recorder, publisher, nil
}

// pushMetrics sends the run's metrics to the Pushgateway when one is configured.
func (a *app) pushMetrics(ctx context.Context, workflow string) {
	url := a.cfg.Metrics.PushgatewayURL
	if url == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pushTimeout)
	defer cancel()
	if err := metrics.Push(ctx, url, workflow); err != nil {
		a.logger.Warn("Failed to push metrics", zap.Error(err))
	}
}

// runPlan executes plan and maps a failed report to errRunFailed.
func (a *app) runPlan(ctx context.Context, plan usecase.Plan) error {
	report := a.orchestrator.Execute(ctx, plan)
	a.pushMetrics(ctx, plan.Workflow)
	if report.Failed() {
		return errRunFailed
	}
	return nil
}

// Close releases connections in reverse order of creation.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func queryFailure(job *domain.QueryJob) error {
	if job.Reason != "" {
		return fmt.Errorf("query %s ended %s: %s", job.ExecutionID, job.State, job.Reason)
	}
	return fmt.Errorf("query %s ended %s", job.ExecutionID, job.State)
}
