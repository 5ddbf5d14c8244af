package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCounterStore backs the limiter with a shared Redis instance so
// every API replica counts against the same windows.  INCR provides the
// lost-update-free increment; the expiry is attached on the first hit of a
// window, which is allowed to race per the limiter's contract.
type RedisCounterStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisCounterStore wraps rdb.  Keys are namespaced under prefix
// (default "rl").
func NewRedisCounterStore(rdb *redis.Client, prefix string) *RedisCounterStore {
	if prefix == "" {
		prefix = "rl"
	}
	return &RedisCounterStore{rdb: rdb, prefix: prefix}
}

func (s *RedisCounterStore) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	k := s.prefix + ":" + key
	count, err := s.rdb.Incr(ctx, k).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("ratelimit incr %s: %w", k, err)
	}
	if count == 1 {
		// First hit starts the window.
		if err := s.rdb.Expire(ctx, k, window).Err(); err != nil {
			return count, window, fmt.Errorf("ratelimit expire %s: %w", k, err)
		}
		return count, window, nil
	}
	ttl, err := s.rdb.TTL(ctx, k).Result()
	if err != nil || ttl < 0 {
		// Unknown TTL degrades to zero rather than failing the request.
		return count, 0, nil
	}
	return count, ttl, nil
}

var _ CounterStore = (*RedisCounterStore)(nil)
