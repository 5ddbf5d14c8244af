package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckAndConsume(t *testing.T) {
	ctx := context.Background()

	t.Run("the call past the limit is rejected", func(t *testing.T) {
		l := NewLimiter(NewMemoryCounterStore())
		for i := 1; i <= 5; i++ {
			d, err := l.CheckAndConsume(ctx, "k", 5, time.Minute)
			require.NoError(t, err)
			assert.True(t, d.Allowed, "call %d within the limit", i)
			assert.Equal(t, 5-i, d.Remaining)
		}
		d, err := l.CheckAndConsume(ctx, "k", 5, time.Minute)
		require.NoError(t, err)
		assert.False(t, d.Allowed, "sixth call must be rejected")
		assert.Equal(t, 0, d.Remaining)
		assert.Greater(t, d.RetryAfter, time.Duration(0))
		assert.LessOrEqual(t, d.RetryAfter, time.Minute)
	})

	t.Run("window expiry resets the counter", func(t *testing.T) {
		l := NewLimiter(NewMemoryCounterStore())
		window := 20 * time.Millisecond
		for i := 0; i < 3; i++ {
			d, err := l.CheckAndConsume(ctx, "k", 2, window)
			require.NoError(t, err)
			if i == 2 {
				assert.False(t, d.Allowed)
			}
		}
		time.Sleep(window + 5*time.Millisecond)
		d, err := l.CheckAndConsume(ctx, "k", 2, window)
		require.NoError(t, err)
		assert.True(t, d.Allowed, "first call of a fresh window succeeds")
		assert.Equal(t, 1, d.Remaining)
	})

	t.Run("keys are independent", func(t *testing.T) {
		l := NewLimiter(NewMemoryCounterStore())
		_, err := l.CheckAndConsume(ctx, "a", 1, time.Minute)
		require.NoError(t, err)
		d, err := l.CheckAndConsume(ctx, "b", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	})
}

func TestCounterNeverLosesIncrements(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryCounterStore()
	l := NewLimiter(store)

	const workers = 40
	const limit = 10
	var wg sync.WaitGroup
	allowed := make(chan struct{}, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := l.CheckAndConsume(ctx, "shared", limit, time.Minute)
			require.NoError(t, err)
			if d.Allowed {
				allowed <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(allowed)
	count := 0
	for range allowed {
		count++
	}
	assert.Equal(t, limit, count, "a lost update would let extra calls through")
}

func TestPolicyEnabled(t *testing.T) {
	assert.True(t, Policy{Requests: 1, Window: time.Second}.Enabled())
	assert.False(t, Policy{Requests: 0, Window: time.Second}.Enabled())
	assert.False(t, Policy{Requests: 5}.Enabled())
}
