package lock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultLockTTL bounds how long a crashed process can hold a user's lock.
const DefaultLockTTL = 30 * time.Second

// RedisUserLock implements UserLock with a Redis SETNX lease. It is used
// when multiple processes may schedule for the same user.
type RedisUserLock struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisUserLock creates a Redis-backed user lock.
func NewRedisUserLock(client *redis.Client, logger *slog.Logger) *RedisUserLock {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisUserLock{client: client, ttl: DefaultLockTTL, logger: logger}
}

func (l *RedisUserLock) key(userID uuid.UUID) string {
	return fmt.Sprintf("tempora:lock:user:%s", userID.String())
}

// Acquire takes the user's lock lease. The release function deletes the
// lease only if this holder still owns it.
func (l *RedisUserLock) Acquire(ctx context.Context, userID uuid.UUID) (func(), error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key(userID), token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire user lock: %w", err)
	}
	if !ok {
		return nil, ErrLockHeld
	}

	release := func() {
		// Compare-and-delete so an expired lease taken over by another
		// holder is never released by us.
		const script = `if redis.call("get", KEYS[1]) == ARGV[1] then return redis.call("del", KEYS[1]) else return 0 end`
		if err := l.client.Eval(context.Background(), script, []string{l.key(userID)}, token).Err(); err != nil {
			l.logger.Warn("failed to release user lock", "user_id", userID.String(), "error", err)
		}
	}
	return release, nil
}
