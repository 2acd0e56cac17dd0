package mock

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/Harsh-BH/datalake/internal/domain"
	"github.com/Harsh-BH/datalake/internal/repository"
)

// ---- ObjectStore mock ----

var _ repository.ObjectStore = (*ObjectStore)(nil)

// ObjectStore is an in-memory test double for repository.ObjectStore.
// Fn fields, when set, replace the in-memory behaviour for that call.
type ObjectStore struct {
	mu      sync.Mutex
	buckets map[string]map[string][]byte

	CreateBucketFn func(ctx context.Context, bucket string) error
	HeadBucketFn   func(ctx context.Context, bucket string) error
	DeleteBucketFn func(ctx context.Context, bucket string) error
	PutObjectFn    func(ctx context.Context, bucket, key string, body []byte) error
	ListObjectsFn  func(ctx context.Context, bucket, prefix string) ([]string, error)
	DeleteObjectFn func(ctx context.Context, bucket, key string) error

	// Recorded calls for assertions.
	Calls       []string
	DeletedKeys []string
}

// NewObjectStore returns an empty store.
func NewObjectStore() *ObjectStore {
	return &ObjectStore{buckets: make(map[string]map[string][]byte)}
}

func (m *ObjectStore) record(call string) {
	m.Calls = append(m.Calls, call)
}

func (m *ObjectStore) CreateBucket(ctx context.Context, bucket string) error {
	m.mu.Lock()
	m.record("CreateBucket:" + bucket)
	m.mu.Unlock()
	if m.CreateBucketFn != nil {
		return m.CreateBucketFn(ctx, bucket)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.buckets[bucket]; ok {
		return fmt.Errorf("mock: create bucket %s: %w", bucket, domain.ErrAlreadyExists)
	}
	m.buckets[bucket] = make(map[string][]byte)
	return nil
}

func (m *ObjectStore) HeadBucket(ctx context.Context, bucket string) error {
	m.mu.Lock()
	m.record("HeadBucket:" + bucket)
	m.mu.Unlock()
	if m.HeadBucketFn != nil {
		return m.HeadBucketFn(ctx, bucket)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.buckets[bucket]; !ok {
		return fmt.Errorf("mock: head bucket %s: %w", bucket, domain.ErrNotFound)
	}
	return nil
}

func (m *ObjectStore) DeleteBucket(ctx context.Context, bucket string) error {
	m.mu.Lock()
	m.record("DeleteBucket:" + bucket)
	m.mu.Unlock()
	if m.DeleteBucketFn != nil {
		return m.DeleteBucketFn(ctx, bucket)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	objects, ok := m.buckets[bucket]
	if !ok {
		return fmt.Errorf("mock: delete bucket %s: %w", bucket, domain.ErrNotFound)
	}
	if len(objects) > 0 {
		return fmt.Errorf("mock: delete bucket %s: %w", bucket, domain.ErrNotEmpty)
	}
	delete(m.buckets, bucket)
	return nil
}

func (m *ObjectStore) PutObject(ctx context.Context, bucket, key string, body []byte) error {
	m.mu.Lock()
	m.record("PutObject:" + bucket + "/" + key)
	m.mu.Unlock()
	if m.PutObjectFn != nil {
		return m.PutObjectFn(ctx, bucket, key, body)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	objects, ok := m.buckets[bucket]
	if !ok {
		return fmt.Errorf("mock: put object %s/%s: %w", bucket, key, domain.ErrNotFound)
	}
	objects[key] = append([]byte(nil), body...)
	return nil
}

func (m *ObjectStore) ListObjects(ctx context.Context, bucket, prefix string) ([]string, error) {
	m.mu.Lock()
	m.record("ListObjects:" + bucket + "/" + prefix)
	m.mu.Unlock()
	if m.ListObjectsFn != nil {
		return m.ListObjectsFn(ctx, bucket, prefix)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	objects, ok := m.buckets[bucket]
	if !ok {
		return nil, fmt.Errorf("mock: list objects %s: %w", bucket, domain.ErrNotFound)
	}
	var keys []string
	for k := range objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *ObjectStore) DeleteObject(ctx context.Context, bucket, key string) error {
	m.mu.Lock()
	m.record("DeleteObject:" + bucket + "/" + key)
	m.mu.Unlock()
	if m.DeleteObjectFn != nil {
		return m.DeleteObjectFn(ctx, bucket, key)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	objects, ok := m.buckets[bucket]
	if !ok {
		return fmt.Errorf("mock: delete object %s/%s: %w", bucket, key, domain.ErrNotFound)
	}
	delete(objects, key)
	m.DeletedKeys = append(m.DeletedKeys, key)
	return nil
}

// Object returns the stored body at key.
func (m *ObjectStore) Object(bucket, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	body, ok := m.buckets[bucket][key]
	return body, ok
}

// Seed creates bucket (if needed) and stores the given objects in it.
func (m *ObjectStore) Seed(bucket string, objects map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.buckets[bucket]; !ok {
		m.buckets[bucket] = make(map[string][]byte)
	}
	for k, v := range objects {
		m.buckets[bucket][k] = []byte(v)
	}
}

// ---- Catalog mock ----

var _ repository.Catalog = (*Catalog)(nil)

// Catalog is an in-memory test double for repository.Catalog.
type Catalog struct {
	mu        sync.Mutex
	databases map[string]map[string]domain.TableSchema

	CreateDatabaseFn func(ctx context.Context, name, description string) error
	CreateTableFn    func(ctx context.Context, database string, schema domain.TableSchema) error
	ListTablesFn     func(ctx context.Context, database string) ([]string, error)
	DeleteTableFn    func(ctx context.Context, database, table string) error
	DeleteDatabaseFn func(ctx context.Context, name string) error

	Calls []string
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{databases: make(map[string]map[string]domain.TableSchema)}
}

func (m *Catalog) CreateDatabase(ctx context.Context, name, description string) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, "CreateDatabase:"+name)
	m.mu.Unlock()
	if m.CreateDatabaseFn != nil {
		return m.CreateDatabaseFn(ctx, name, description)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.databases[name]; ok {
		return fmt.Errorf("mock: create database %s: %w", name, domain.ErrAlreadyExists)
	}
	m.databases[name] = make(map[string]domain.TableSchema)
	return nil
}

func (m *Catalog) CreateTable(ctx context.Context, database string, schema domain.TableSchema) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, "CreateTable:"+database+"."+schema.Name)
	m.mu.Unlock()
	if m.CreateTableFn != nil {
		return m.CreateTableFn(ctx, database, schema)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	tables, ok := m.databases[database]
	if !ok {
		return fmt.Errorf("mock: create table %s.%s: %w", database, schema.Name, domain.ErrNotFound)
	}
	if _, ok := tables[schema.Name]; ok {
		return fmt.Errorf("mock: create table %s.%s: %w", database, schema.Name, domain.ErrAlreadyExists)
	}
	tables[schema.Name] = schema
	return nil
}

func (m *Catalog) ListTables(ctx context.Context, database string) ([]string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, "ListTables:"+database)
	m.mu.Unlock()
	if m.ListTablesFn != nil {
		return m.ListTablesFn(ctx, database)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	tables, ok := m.databases[database]
	if !ok {
		return nil, fmt.Errorf("mock: list tables %s: %w", database, domain.ErrNotFound)
	}
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *Catalog) DeleteTable(ctx context.Context, database, table string) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, "DeleteTable:"+database+"."+table)
	m.mu.Unlock()
	if m.DeleteTableFn != nil {
		return m.DeleteTableFn(ctx, database, table)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	tables, ok := m.databases[database]
	if !ok {
		return fmt.Errorf("mock: delete table %s.%s: %w", database, table, domain.ErrNotFound)
	}
	delete(tables, table)
	return nil
}

func (m *Catalog) DeleteDatabase(ctx context.Context, name string) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, "DeleteDatabase:"+name)
	m.mu.Unlock()
	if m.DeleteDatabaseFn != nil {
		return m.DeleteDatabaseFn(ctx, name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.databases[name]; !ok {
		return fmt.Errorf("mock: delete database %s: %w", name, domain.ErrNotFound)
	}
	delete(m.databases, name)
	return nil
}

// Table returns the schema registered for database.table.
func (m *Catalog) Table(database, table string) (domain.TableSchema, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	schema, ok := m.databases[database][table]
	return schema, ok
}

// HasDatabase reports whether name exists.
func (m *Catalog) HasDatabase(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.databases[name]
	return ok
}

// ---- QueryEngine mock ----

var _ repository.QueryEngine = (*QueryEngine)(nil)

// QueryEngine is a scripted test double for repository.QueryEngine.
// Each GetQueryStatus call consumes the next entry of States; the last entry
// repeats once the script is exhausted.
type QueryEngine struct {
	mu sync.Mutex

	States []domain.QueryStatus
	Rows   [][]*string

	StartQueryFn      func(ctx context.Context, req *domain.QueryRequest) (string, error)
	GetQueryStatusFn  func(ctx context.Context, executionID string) (domain.QueryStatus, error)
	GetQueryResultsFn func(ctx context.Context, executionID string) ([][]*string, error)

	Submitted   []*domain.QueryRequest
	StatusCalls int
	ResultCalls int
}

func (m *QueryEngine) StartQuery(ctx context.Context, req *domain.QueryRequest) (string, error) {
	m.mu.Lock()
	m.Submitted = append(m.Submitted, req)
	n := len(m.Submitted)
	m.mu.Unlock()
	if m.StartQueryFn != nil {
		return m.StartQueryFn(ctx, req)
	}
	return fmt.Sprintf("exec-%d", n), nil
}

func (m *QueryEngine) GetQueryStatus(ctx context.Context, executionID string) (domain.QueryStatus, error) {
	m.mu.Lock()
	idx := m.StatusCalls
	m.StatusCalls++
	m.mu.Unlock()
	if m.GetQueryStatusFn != nil {
		return m.GetQueryStatusFn(ctx, executionID)
	}
	if len(m.States) == 0 {
		return domain.QueryStatus{State: domain.StateSucceeded}, nil // default: done on first poll
	}
	if idx >= len(m.States) {
		idx = len(m.States) - 1
	}
	return m.States[idx], nil
}

func (m *QueryEngine) GetQueryResults(ctx context.Context, executionID string) ([][]*string, error) {
	m.mu.Lock()
	m.ResultCalls++
	m.mu.Unlock()
	if m.GetQueryResultsFn != nil {
		return m.GetQueryResultsFn(ctx, executionID)
	}
	return m.Rows, nil
}

// ---- PlayerFeed mock ----

var _ repository.PlayerFeed = (*PlayerFeed)(nil)

// PlayerFeed is a test double for repository.PlayerFeed.
type PlayerFeed struct {
	Batch domain.PlayerBatch
	Err   error

	Calls int
}

func (m *PlayerFeed) FetchPlayers(ctx context.Context) (domain.PlayerBatch, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Batch, nil
}

// ---- RunRecorder mock ----

var _ repository.RunRecorder = (*RunRecorder)(nil)

// RunRecorder is a test double for repository.RunRecorder.
type RunRecorder struct {
	mu sync.Mutex

	RecordStepFn func(ctx context.Context, runID uuid.UUID, result domain.StepResult) error

	Started  []uuid.UUID
	Steps    []domain.StepResult
	Finished []*domain.RunReport
}

func (m *RunRecorder) StartRun(ctx context.Context, report *domain.RunReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Started = append(m.Started, report.RunID)
	return nil
}

func (m *RunRecorder) RecordStep(ctx context.Context, runID uuid.UUID, result domain.StepResult) error {
	m.mu.Lock()
	m.Steps = append(m.Steps, result)
	m.mu.Unlock()
	if m.RecordStepFn != nil {
		return m.RecordStepFn(ctx, runID, result)
	}
	return nil
}

func (m *RunRecorder) FinishRun(ctx context.Context, report *domain.RunReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Finished = append(m.Finished, report)
	return nil
}

// ---- RunLock mock ----

var _ repository.RunLock = (*RunLock)(nil)

// RunLock is a test double for repository.RunLock.
type RunLock struct {
	mu sync.Mutex

	AcquireFn func(ctx context.Context, key, token string) (bool, error)

	AcquireCalls []string
	ReleaseCalls []string
	// Tokens holds the token of every Acquire call, in order.
	Tokens []string
}

func (m *RunLock) Acquire(ctx context.Context, key, token string) (bool, error) {
	m.mu.Lock()
	m.AcquireCalls = append(m.AcquireCalls, key)
	m.Tokens = append(m.Tokens, token)
	m.mu.Unlock()
	if m.AcquireFn != nil {
		return m.AcquireFn(ctx, key, token)
	}
	return true, nil // default: lock acquired
}

func (m *RunLock) Release(ctx context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReleaseCalls = append(m.ReleaseCalls, key+":"+token)
	return nil
}

// ---- EventPublisher mock ----

var _ repository.EventPublisher = (*EventPublisher)(nil)

// EventPublisher is a test double for repository.EventPublisher.
type EventPublisher struct {
	mu sync.Mutex

	Err       error
	Published []*domain.RunReport
}

func (m *EventPublisher) PublishRun(ctx context.Context, report *domain.RunReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Published = append(m.Published, report)
	return m.Err
}
