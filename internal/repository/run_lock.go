package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// lockTTL caps how long a crashed cycle can hold an account's lock.
const lockTTL = 10 * time.Minute

// RedisRunLock implements per-account single-flight with SETNX + TTL.
type RedisRunLock struct {
	rdb *redis.Client
}

func NewRedisRunLock(rdb *redis.Client) *RedisRunLock {
	return &RedisRunLock{rdb: rdb}
}

var _ RunLock = (*RedisRunLock)(nil)

func lockKey(account string) string {
	return "stationwatch:cycle:" + strings.ToLower(account)
}

// Acquire returns false when another cycle already holds the account.
func (l *RedisRunLock) Acquire(ctx context.Context, account string) (bool, error) {
	ok, err := l.rdb.SetNX(ctx, lockKey(account), time.Now().UTC().Format(time.RFC3339), lockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("acquire cycle lock for %q: %w", account, err)
	}
	return ok, nil
}

func (l *RedisRunLock) Release(ctx context.Context, account string) error {
	if err := l.rdb.Del(ctx, lockKey(account)).Err(); err != nil {
		return fmt.Errorf("release cycle lock for %q: %w", account, err)
	}
	return nil
}
