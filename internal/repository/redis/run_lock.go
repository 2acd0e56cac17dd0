package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Harsh-BH/datalake/internal/repository"
)

var _ repository.RunLock = (*RunLock)(nil)

const (
	lockKeyPrefix  = "datalake:lock:"
	DefaultLockTTL = 30 * time.Minute
)

// releaseScript deletes the lock only while it still holds the caller's token,
// so a run that outlived its TTL cannot release a lock taken over by another run.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RunLock is a Redis-backed lock that keeps two workflows from operating on
// the same bucket at once.
type RunLock struct {
	client goredis.Cmdable
	ttl    time.Duration
}

// NewRedisRunLock creates a run lock. The TTL bounds how long a crashed run
// can hold the lock; zero uses DefaultLockTTL.
func NewRedisRunLock(client goredis.Cmdable, ttl time.Duration) *RunLock {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	return &RunLock{client: client, ttl: ttl}
}

// Acquire uses SETNX to atomically take the lock for key, storing token as the holder.
func (l *RunLock) Acquire(ctx context.Context, key, token string) (bool, error) {
	ok, err := l.client.SetNX(ctx, lockKeyPrefix+key, token, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis: acquire lock: %w", err)
	}
	return ok, nil
}

// Release deletes the lock key if it is still held under token.
func (l *RunLock) Release(ctx context.Context, key, token string) error {
	if err := releaseScript.Run(ctx, l.client, []string{lockKeyPrefix + key}, token).Err(); err != nil {
		return fmt.Errorf("redis: release lock: %w", err)
	}
	return nil
}
