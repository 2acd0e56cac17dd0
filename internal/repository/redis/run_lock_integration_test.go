//go:build integration

package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run with: REDIS_URL=redis://localhost:6379/0 go test -tags integration ./internal/repository/redis/

func newIntegrationClient(t *testing.T) *goredis.Client {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set, skipping integration test")
	}
	opts, err := goredis.ParseURL(url)
	require.NoError(t, err)

	client := goredis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}
	return client
}

func TestRunLock_AcquireRelease(t *testing.T) {
	client := newIntegrationClient(t)
	lock := NewRedisRunLock(client, time.Minute)
	ctx := context.Background()
	key := "test-" + uuid.NewString()

	ok, err := lock.Acquire(ctx, key, "run-a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = lock.Acquire(ctx, key, "run-b")
	require.NoError(t, err)
	assert.False(t, ok, "second acquire must fail while held")

	require.NoError(t, lock.Release(ctx, key, "run-b"))
	exists, err := client.Exists(ctx, lockKeyPrefix+key).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists, "a foreign token must not release the lock")

	require.NoError(t, lock.Release(ctx, key, "run-a"))

	ok, err = lock.Acquire(ctx, key, "run-b")
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, lock.Release(ctx, key, "run-b"))
}

func TestRunLock_TTL(t *testing.T) {
	client := newIntegrationClient(t)
	lock := NewRedisRunLock(client, 5*time.Second)
	key := "test-" + uuid.NewString()

	ok, err := lock.Acquire(context.Background(), key, "run-a")
	require.NoError(t, err)
	require.True(t, ok)
	defer lock.Release(context.Background(), key, "run-a")

	ttl, err := client.TTL(context.Background(), lockKeyPrefix+key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, 5*time.Second)
}
