package usecase_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/Harsh-BH/datalake/internal/domain"
	"github.com/Harsh-BH/datalake/internal/repository/mock"
	"github.com/Harsh-BH/datalake/internal/usecase"
)

func newTestStorage(store *mock.ObjectStore) *usecase.StorageProvisioner {
	return usecase.NewStorageProvisioner(store, zap.NewNop())
}

// Test: full bucket lifecycle against an in-memory store.
func TestStorage_BucketLifecycle(t *testing.T) {
	ctx := context.Background()
	store := mock.NewObjectStore()
	sp := newTestStorage(store)

	if sp.Exists(ctx, "x") {
		t.Fatal("expected bucket x to be absent initially")
	}

	created, err := sp.Create(ctx, "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Fatal("expected bucket to be created")
	}
	if !sp.Exists(ctx, "x") {
		t.Fatal("expected bucket x to exist after create")
	}

	if err := sp.Put(ctx, "x", "k", []byte("v")); err != nil {
		t.Fatalf("unexpected put error: %v", err)
	}

	n, err := sp.DeleteAll(ctx, "x", "")
	if err != nil {
		t.Fatalf("unexpected delete error: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 deleted object, got %d", n)
	}
	if _, ok := store.Object("x", "k"); ok {
		t.Error("expected object k to be gone")
	}

	if err := sp.DeleteContainer(ctx, "x"); err != nil {
		t.Fatalf("unexpected delete bucket error: %v", err)
	}
	if sp.Exists(ctx, "x") {
		t.Fatal("expected bucket x to be absent after delete")
	}
}

// Test: creating an existing bucket is not an error.
func TestStorage_CreateExisting(t *testing.T) {
	store := mock.NewObjectStore()
	store.Seed("x", nil)
	sp := newTestStorage(store)

	created, err := sp.Create(context.Background(), "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Error("expected created=false for existing bucket")
	}
}

// Test: create failures other than already-exists propagate.
func TestStorage_CreateError(t *testing.T) {
	store := mock.NewObjectStore()
	store.CreateBucketFn = func(ctx context.Context, bucket string) error {
		return errors.New("access denied")
	}
	sp := newTestStorage(store)

	if _, err := sp.Create(context.Background(), "x"); err == nil {
		t.Fatal("expected error")
	}
}

// Test: existence check separates absence from failure.
func TestStorage_CheckThreeWay(t *testing.T) {
	ctx := context.Background()
	store := mock.NewObjectStore()
	sp := newTestStorage(store)

	presence, err := sp.Check(ctx, "missing")
	if err != nil || presence != domain.PresenceAbsent {
		t.Errorf("expected absent/nil, got %s/%v", presence, err)
	}

	store.Seed("here", nil)
	presence, err = sp.Check(ctx, "here")
	if err != nil || presence != domain.PresenceExists {
		t.Errorf("expected exists/nil, got %s/%v", presence, err)
	}

	store.HeadBucketFn = func(ctx context.Context, bucket string) error {
		return errors.New("403 forbidden")
	}
	presence, err = sp.Check(ctx, "here")
	if err == nil {
		t.Fatal("expected error for forbidden bucket")
	}
	if presence != domain.PresenceUnknown {
		t.Errorf("expected unknown, got %s", presence)
	}
	if sp.Exists(ctx, "here") {
		t.Error("Exists must be false when presence is unknown")
	}
}

// Test: deleting with a prefix leaves other objects alone.
func TestStorage_DeleteAllPrefix(t *testing.T) {
	store := mock.NewObjectStore()
	store.Seed("lake", map[string]string{
		"athena-results/a.csv":          "a",
		"athena-results/a.csv.metadata": "m",
		"raw-data/players.jsonl":        "{}",
	})
	sp := newTestStorage(store)

	n, err := sp.DeleteAll(context.Background(), "lake", "athena-results/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 deleted, got %d", n)
	}
	if _, ok := store.Object("lake", "raw-data/players.jsonl"); !ok {
		t.Error("expected raw data to survive prefix delete")
	}
}

// Test: zero matching objects is a no-op.
func TestStorage_DeleteAllNoMatches(t *testing.T) {
	store := mock.NewObjectStore()
	store.Seed("lake", map[string]string{"raw-data/p.jsonl": "{}"})
	sp := newTestStorage(store)

	n, err := sp.DeleteAll(context.Background(), "lake", "athena-results/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 deleted, got %d", n)
	}
	if len(store.DeletedKeys) != 0 {
		t.Errorf("expected no delete calls, got %v", store.DeletedKeys)
	}
}

// Test: an absent bucket skips deletion without listing.
func TestStorage_DeleteAllAbsentBucket(t *testing.T) {
	store := mock.NewObjectStore()
	sp := newTestStorage(store)

	n, err := sp.DeleteAll(context.Background(), "gone", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 deleted, got %d", n)
	}
	for _, call := range store.Calls {
		if call == "ListObjects:gone/" {
			t.Error("did not expect a list call for an absent bucket")
		}
	}
}

// Test: an object delete failure stops the loop and reports progress.
func TestStorage_DeleteAllStopsOnError(t *testing.T) {
	store := mock.NewObjectStore()
	store.Seed("lake", map[string]string{"a": "1", "b": "2", "c": "3"})
	store.DeleteObjectFn = func(ctx context.Context, bucket, key string) error {
		if key == "b" {
			return errors.New("throttled")
		}
		return nil
	}
	sp := newTestStorage(store)

	n, err := sp.DeleteAll(context.Background(), "lake", "")
	if err == nil {
		t.Fatal("expected error")
	}
	if n != 1 {
		t.Errorf("expected 1 deleted before failure, got %d", n)
	}
}

// Test: deleting an absent bucket is treated as already gone.
func TestStorage_DeleteContainerAbsent(t *testing.T) {
	store := mock.NewObjectStore()
	sp := newTestStorage(store)

	if err := sp.DeleteContainer(context.Background(), "gone"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, call := range store.Calls {
		if call == "DeleteBucket:gone" {
			t.Error("did not expect DeleteBucket for an absent bucket")
		}
	}
}

// Test: deleting a non-empty bucket fails loudly.
func TestStorage_DeleteContainerNotEmpty(t *testing.T) {
	store := mock.NewObjectStore()
	store.Seed("lake", map[string]string{"k": "v"})
	sp := newTestStorage(store)

	err := sp.DeleteContainer(context.Background(), "lake")
	if !errors.Is(err, domain.ErrNotEmpty) {
		t.Fatalf("expected ErrNotEmpty, got %v", err)
	}
}

// Test: put overwrites existing content.
func TestStorage_PutOverwrites(t *testing.T) {
	store := mock.NewObjectStore()
	store.Seed("lake", map[string]string{"k": "old"})
	sp := newTestStorage(store)

	if err := sp.Put(context.Background(), "lake", "k", []byte("new")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body, _ := store.Object("lake", "k")
	if string(body) != "new" {
		t.Errorf("expected new, got %q", body)
	}
}
