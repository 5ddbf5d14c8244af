package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinechain/seat-reservation-engine/internal/model"
)

func newTestStore(t *testing.T, showtimeID uint64, seatIDs ...uint64) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	require.NoError(t, s.Materialize(context.Background(), showtimeID, seatIDs))
	return s
}

func TestMemoryStoreAcquire(t *testing.T) {
	ctx := context.Background()
	key := SeatKey{ShowtimeID: 1, SeatID: 10}

	t.Run("acquire on available seat succeeds", func(t *testing.T) {
		s := newTestStore(t, 1, 10)
		require.NoError(t, s.Acquire(ctx, key, "alice", "tok", time.Now().Add(time.Minute)))
		snap, err := s.State(ctx, key, time.Now())
		require.NoError(t, err)
		assert.Equal(t, model.SeatHeld, snap.State)
		assert.Equal(t, "alice", snap.Holder)
	})

	t.Run("second acquire loses", func(t *testing.T) {
		s := newTestStore(t, 1, 10)
		require.NoError(t, s.Acquire(ctx, key, "alice", "tok", time.Now().Add(time.Minute)))
		err := s.Acquire(ctx, key, "bob", "tok2", time.Now().Add(time.Minute))
		assert.ErrorIs(t, err, ErrSeatTaken)
	})

	t.Run("unknown seat is rejected", func(t *testing.T) {
		s := newTestStore(t, 1, 10)
		err := s.Acquire(ctx, SeatKey{ShowtimeID: 1, SeatID: 99}, "alice", "tok", time.Now().Add(time.Minute))
		assert.ErrorIs(t, err, ErrSeatUnknown)
	})

	t.Run("expired hold reads as available and can be re-acquired", func(t *testing.T) {
		s := newTestStore(t, 1, 10)
		require.NoError(t, s.Acquire(ctx, key, "alice", "tok", time.Now().Add(-time.Second)))
		snap, err := s.State(ctx, key, time.Now())
		require.NoError(t, err)
		assert.Equal(t, model.SeatAvailable, snap.State)
		assert.NoError(t, s.Acquire(ctx, key, "bob", "tok2", time.Now().Add(time.Minute)))
	})
}

func TestMemoryStoreConfirm(t *testing.T) {
	ctx := context.Background()
	key := SeatKey{ShowtimeID: 1, SeatID: 10}

	t.Run("confirm promotes a live hold", func(t *testing.T) {
		s := newTestStore(t, 1, 10)
		require.NoError(t, s.Acquire(ctx, key, "alice", "tok", time.Now().Add(time.Minute)))
		require.NoError(t, s.Confirm(ctx, key, "alice", time.Now()))
		snap, err := s.State(ctx, key, time.Now())
		require.NoError(t, err)
		assert.Equal(t, model.SeatReserved, snap.State)
	})

	t.Run("confirm by the wrong holder fails", func(t *testing.T) {
		s := newTestStore(t, 1, 10)
		require.NoError(t, s.Acquire(ctx, key, "alice", "tok", time.Now().Add(time.Minute)))
		assert.ErrorIs(t, s.Confirm(ctx, key, "bob", time.Now()), ErrHoldNotFound)
	})

	t.Run("confirm after expiry fails", func(t *testing.T) {
		s := newTestStore(t, 1, 10)
		deadline := time.Now().Add(10 * time.Millisecond)
		require.NoError(t, s.Acquire(ctx, key, "alice", "tok", deadline))
		assert.ErrorIs(t, s.Confirm(ctx, key, "alice", deadline.Add(time.Millisecond)), ErrHoldExpired)
	})

	t.Run("unconfirm reverts a reservation to held", func(t *testing.T) {
		s := newTestStore(t, 1, 10)
		deadline := time.Now().Add(time.Minute)
		require.NoError(t, s.Acquire(ctx, key, "alice", "tok", deadline))
		require.NoError(t, s.Confirm(ctx, key, "alice", time.Now()))
		require.NoError(t, s.Unconfirm(ctx, key, "alice", deadline))
		snap, err := s.State(ctx, key, time.Now())
		require.NoError(t, err)
		assert.Equal(t, model.SeatHeld, snap.State)
	})
}

func TestMemoryStoreRelease(t *testing.T) {
	ctx := context.Background()
	key := SeatKey{ShowtimeID: 1, SeatID: 10}

	t.Run("release is idempotent", func(t *testing.T) {
		s := newTestStore(t, 1, 10)
		require.NoError(t, s.Acquire(ctx, key, "alice", "tok", time.Now().Add(time.Minute)))
		released, err := s.Release(ctx, key, "alice")
		require.NoError(t, err)
		assert.True(t, released)
		released, err = s.Release(ctx, key, "alice")
		require.NoError(t, err)
		assert.False(t, released)
	})

	t.Run("release by a non-holder is a no-op", func(t *testing.T) {
		s := newTestStore(t, 1, 10)
		require.NoError(t, s.Acquire(ctx, key, "alice", "tok", time.Now().Add(time.Minute)))
		released, err := s.Release(ctx, key, "bob")
		require.NoError(t, err)
		assert.False(t, released)
		snap, _ := s.State(ctx, key, time.Now())
		assert.Equal(t, model.SeatHeld, snap.State)
	})

	t.Run("force release displaces a reservation", func(t *testing.T) {
		s := newTestStore(t, 1, 10)
		require.NoError(t, s.Acquire(ctx, key, "alice", "tok", time.Now().Add(time.Minute)))
		require.NoError(t, s.Confirm(ctx, key, "alice", time.Now()))
		prev, released, err := s.ForceRelease(ctx, key)
		require.NoError(t, err)
		assert.True(t, released)
		assert.Equal(t, model.SeatReserved, prev.State)
		assert.Equal(t, "alice", prev.Holder)
	})
}

func TestMemoryStoreExpireDue(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, 1, 10, 11, 12)
	now := time.Now()
	require.NoError(t, s.Acquire(ctx, SeatKey{1, 10}, "alice", "t1", now.Add(-time.Second)))
	require.NoError(t, s.Acquire(ctx, SeatKey{1, 11}, "bob", "t2", now.Add(time.Minute)))

	expired, err := s.ExpireDue(ctx, now)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, SeatKey{1, 10}, expired[0].Key)
	assert.Equal(t, "alice", expired[0].Holder)

	snap, err := s.State(ctx, SeatKey{1, 11}, now)
	require.NoError(t, err)
	assert.Equal(t, model.SeatHeld, snap.State)
}

func TestMemoryStoreConcurrentAcquire(t *testing.T) {
	ctx := context.Background()
	key := SeatKey{ShowtimeID: 7, SeatID: 3}
	s := newTestStore(t, 7, 3)

	const workers = 64
	var wg sync.WaitGroup
	wins := make(chan int, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if err := s.Acquire(ctx, key, "w", "tok", time.Now().Add(time.Minute)); err == nil {
				wins <- n
			}
		}(i)
	}
	wg.Wait()
	close(wins)
	count := 0
	for range wins {
		count++
	}
	assert.Equal(t, 1, count, "exactly one concurrent acquirer may win")
}
