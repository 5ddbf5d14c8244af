package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count    int64
	resetsAt time.Time
}

// MemoryCounterStore is an in-process CounterStore for tests and
// single-node deployments.  A mutex serializes increments so none are lost
// under concurrency.
type MemoryCounterStore struct {
	mu      sync.Mutex
	windows map[string]*window
}

// NewMemoryCounterStore returns an empty in-process counter store.
func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{windows: make(map[string]*window)}
}

func (s *MemoryCounterStore) Incr(_ context.Context, key string, windowSize time.Duration) (int64, time.Duration, error) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.windows[key]
	if !ok || !now.Before(w.resetsAt) {
		w = &window{resetsAt: now.Add(windowSize)}
		s.windows[key] = w
	}
	w.count++
	return w.count, w.resetsAt.Sub(now), nil
}

var _ CounterStore = (*MemoryCounterStore)(nil)
