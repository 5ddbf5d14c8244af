// Package ratelimit implements a fixed-window request limiter over a
// shared counter store.  The counter is the single shared mutable resource:
// as long as increments are never lost, concurrent callers cannot slip past
// the limit, even though setting the window's expiry is allowed to race.
package ratelimit

import (
	"context"
	"time"
)

// Key strategies recognized when deriving a counter key from a request.
const (
	StrategyIP      = "ip"
	StrategyUser    = "user"
	StrategyIPRoute = "ip_route"
)

// Policy is the explicit limiting configuration attached to a route at
// registration time.
type Policy struct {
	Requests    int
	Window      time.Duration
	KeyStrategy string
}

// Enabled reports whether the policy actually limits anything.
func (p Policy) Enabled() bool { return p.Requests > 0 && p.Window > 0 }

// Decision is the outcome of one CheckAndConsume call.  RetryAfter and
// Reset derive from the counter key's remaining TTL and default to zero
// when the store cannot report one.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
	Reset      time.Duration
}

// CounterStore is the atomic-increment port shared by all request-handling
// workers.  Incr increments the counter for key, starting the window (and
// its expiry) on the first increment, and returns the post-increment count
// plus the time left until the window resets.  Implementations must never
// lose increments under concurrency; the expiry write itself may race.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)
}

// Limiter applies fixed-window limits using a CounterStore.
type Limiter struct {
	counters CounterStore
}

// NewLimiter wraps the given counter store.
func NewLimiter(counters CounterStore) *Limiter {
	if counters == nil {
		panic("nil counter store passed to NewLimiter")
	}
	return &Limiter{counters: counters}
}

// CheckAndConsume consumes one unit from key's window and decides whether
// the request may proceed.  The call that takes the count past limit is
// rejected; earlier calls in the same window are allowed.  A store error is
// returned as-is so the caller can choose its failure mode.
func (l *Limiter) CheckAndConsume(ctx context.Context, key string, limit int, window time.Duration) (Decision, error) {
	count, ttl, err := l.counters.Incr(ctx, key, window)
	if err != nil {
		return Decision{}, err
	}
	if ttl < 0 {
		ttl = 0
	}
	d := Decision{
		Allowed: count <= int64(limit),
		Limit:   limit,
		Reset:   ttl,
	}
	if remaining := int64(limit) - count; remaining > 0 {
		d.Remaining = int(remaining)
	}
	if !d.Allowed {
		d.RetryAfter = ttl
	}
	return d, nil
}
