package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLocker is a best-effort advisory lock over Redis SET NX. The insight
// pipeline takes one lock per user so that two concurrent extractions cannot
// both pass the novelty check and write the same fact twice.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLocker{
		client: client,
		ttl:    ttl,
	}
}

func userKey(userId string) string {
	return fmt.Sprintf("insight:lock:%s", userId)
}

// AcquireUser tries to take the per-user insight lock. Returns false when
// another worker holds it.
func (l *RedisLocker) AcquireUser(ctx context.Context, userId string) (bool, error) {
	return l.client.SetNX(ctx, userKey(userId), "1", l.ttl).Result()
}

// AcquireUserWait polls for the per-user lock until it is acquired or the
// deadline passes.
func (l *RedisLocker) AcquireUserWait(ctx context.Context, userId string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		ok, err := l.AcquireUser(ctx, userId)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out waiting for insight lock, user %s", userId)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// ReleaseUser drops the per-user lock. The TTL covers a crashed holder.
func (l *RedisLocker) ReleaseUser(ctx context.Context, userId string) error {
	return l.client.Del(ctx, userKey(userId)).Err()
}
