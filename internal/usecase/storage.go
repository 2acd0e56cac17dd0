package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Harsh-BH/datalake/internal/domain"
	"github.com/Harsh-BH/datalake/internal/metrics"
	"github.com/Harsh-BH/datalake/internal/repository"
)

// StorageProvisioner creates and removes the bucket and its objects.
type StorageProvisioner struct {
	store  repository.ObjectStore
	logger *zap.Logger
}

// NewStorageProvisioner creates a new StorageProvisioner.
func NewStorageProvisioner(store repository.ObjectStore, logger *zap.Logger) *StorageProvisioner {
	return &StorageProvisioner{
		store:  store,
		logger: logger,
	}
}

// Check reports whether bucket exists. A missing bucket is PresenceAbsent with a
// nil error; any other failure is PresenceUnknown together with the cause.
func (p *StorageProvisioner) Check(ctx context.Context, bucket string) (domain.Presence, error) {
	err := p.store.HeadBucket(ctx, bucket)
	switch {
	case err == nil:
		return domain.PresenceExists, nil
	case errors.Is(err, domain.ErrNotFound):
		return domain.PresenceAbsent, nil
	default:
		return domain.PresenceUnknown, err
	}
}

// Exists is true only when the bucket was positively observed.
func (p *StorageProvisioner) Exists(ctx context.Context, bucket string) bool {
	presence, err := p.Check(ctx, bucket)
	if err != nil {
		p.logger.Warn("Bucket existence check failed", zap.String("bucket", bucket), zap.Error(err))
	}
	return presence == domain.PresenceExists
}

// Create creates bucket. It returns created=false with a nil error when the bucket
// already exists.
func (p *StorageProvisioner) Create(ctx context.Context, bucket string) (bool, error) {
	err := p.store.CreateBucket(ctx, bucket)
	if errors.Is(err, domain.ErrAlreadyExists) {
		p.logger.Info("Bucket already exists", zap.String("bucket", bucket))
		return false, nil
	}
	if err != nil {
		p.logger.Error("Failed to create bucket", zap.String("bucket", bucket), zap.Error(err))
		return false, fmt.Errorf("usecase: create bucket %s: %w", bucket, err)
	}
	p.logger.Info("Bucket created", zap.String("bucket", bucket))
	return true, nil
}

// DeleteAll removes every object whose key starts with prefix and returns how many
// were deleted. An absent bucket is skipped without error.
func (p *StorageProvisioner) DeleteAll(ctx context.Context, bucket, prefix string) (int, error) {
	presence, err := p.Check(ctx, bucket)
	if err != nil {
		return 0, fmt.Errorf("usecase: check bucket %s: %w", bucket, err)
	}
	if presence == domain.PresenceAbsent {
		p.logger.Info("Bucket does not exist, skipping object deletion",
			zap.String("bucket", bucket),
			zap.String("prefix", prefix),
		)
		return 0, nil
	}

	keys, err := p.store.ListObjects(ctx, bucket, prefix)
	if err != nil {
		return 0, fmt.Errorf("usecase: list objects in %s: %w", bucket, err)
	}
	if len(keys) == 0 {
		p.logger.Info("No objects found", zap.String("bucket", bucket), zap.String("prefix", prefix))
		return 0, nil
	}

	deleted := 0
	for _, key := range keys {
		if err := p.store.DeleteObject(ctx, bucket, key); err != nil {
			metrics.ObjectsDeleted.Add(float64(deleted))
			return deleted, fmt.Errorf("usecase: delete object %s/%s: %w", bucket, key, err)
		}
		deleted++
		p.logger.Info("Deleted object", zap.String("bucket", bucket), zap.String("key", key))
	}
	metrics.ObjectsDeleted.Add(float64(deleted))
	return deleted, nil
}

// DeleteContainer deletes an empty bucket. An absent bucket is treated as already gone.
func (p *StorageProvisioner) DeleteContainer(ctx context.Context, bucket string) error {
	presence, err := p.Check(ctx, bucket)
	if err != nil {
		return fmt.Errorf("usecase: check bucket %s: %w", bucket, err)
	}
	if presence == domain.PresenceAbsent {
		p.logger.Info("Bucket does not exist, skipping deletion", zap.String("bucket", bucket))
		return nil
	}

	if err := p.store.DeleteBucket(ctx, bucket); err != nil {
		p.logger.Error("Failed to delete bucket", zap.String("bucket", bucket), zap.Error(err))
		return fmt.Errorf("usecase: delete bucket %s: %w", bucket, err)
	}
	p.logger.Info("Deleted bucket", zap.String("bucket", bucket))
	return nil
}

// Put writes payload at key, replacing whatever was there.
func (p *StorageProvisioner) Put(ctx context.Context, bucket, key string, payload []byte) error {
	if err := p.store.PutObject(ctx, bucket, key, payload); err != nil {
		return fmt.Errorf("usecase: put object %s/%s: %w", bucket, key, err)
	}
	p.logger.Info("Uploaded object",
		zap.String("bucket", bucket),
		zap.String("key", key),
		zap.Int("bytes", len(payload)),
	)
	return nil
}
