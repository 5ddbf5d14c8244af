package store

import (
	"context"
	"sync"
	"time"

	"github.com/cinechain/seat-reservation-engine/internal/model"
)

// seatEntry is the mutable record behind one SeatKey.  state is never
// SeatAvailable with a non-empty holder; expiry is interpreted lazily so a
// HELD entry whose deadline passed reads as AVAILABLE without waiting for
// the sweep.
type seatEntry struct {
	state     model.SeatState
	holder    string
	token     string
	expiresAt time.Time
}

// MemoryStore is an in-process SeatStateStore.  A single mutex guards the
// map; every primitive is a short critical section with no I/O inside, so
// per-seat transitions are linearizable in commit order.
type MemoryStore struct {
	mu    sync.Mutex
	seats map[SeatKey]*seatEntry
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{seats: make(map[SeatKey]*seatEntry)}
}

func (m *MemoryStore) Materialize(ctx context.Context, showtimeID uint64, seatIDs []uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sid := range seatIDs {
		key := SeatKey{ShowtimeID: showtimeID, SeatID: sid}
		if _, ok := m.seats[key]; !ok {
			m.seats[key] = &seatEntry{state: model.SeatAvailable}
		}
	}
	return nil
}

// live reports whether the entry currently blocks an Acquire: RESERVED
// always does, HELD only until its deadline.
func (e *seatEntry) live(now time.Time) bool {
	if e.state == model.SeatReserved {
		return true
	}
	return e.state == model.SeatHeld && now.Before(e.expiresAt)
}

func (m *MemoryStore) Acquire(ctx context.Context, key SeatKey, holder, token string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.seats[key]
	if !ok {
		return ErrSeatUnknown
	}
	if e.live(time.Now()) {
		return ErrSeatTaken
	}
	e.state = model.SeatHeld
	e.holder = holder
	e.token = token
	e.expiresAt = expiresAt
	return nil
}

func (m *MemoryStore) Confirm(ctx context.Context, key SeatKey, holder string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.seats[key]
	if !ok {
		return ErrSeatUnknown
	}
	if e.state != model.SeatHeld || e.holder != holder {
		return ErrHoldNotFound
	}
	if !now.Before(e.expiresAt) {
		return ErrHoldExpired
	}
	e.state = model.SeatReserved
	return nil
}

func (m *MemoryStore) Unconfirm(ctx context.Context, key SeatKey, holder string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.seats[key]
	if !ok {
		return ErrSeatUnknown
	}
	if e.state != model.SeatReserved || e.holder != holder {
		return ErrHoldNotFound
	}
	e.state = model.SeatHeld
	e.expiresAt = expiresAt
	return nil
}

func (m *MemoryStore) Release(ctx context.Context, key SeatKey, holder string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.seats[key]
	if !ok {
		return false, ErrSeatUnknown
	}
	if e.state == model.SeatAvailable || e.holder != holder {
		return false, nil
	}
	e.clear()
	return true, nil
}

func (m *MemoryStore) ForceRelease(ctx context.Context, key SeatKey) (Snapshot, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.seats[key]
	if !ok {
		return Snapshot{}, false, ErrSeatUnknown
	}
	if e.state == model.SeatAvailable {
		return Snapshot{State: model.SeatAvailable}, false, nil
	}
	prev := e.snapshot(time.Now())
	e.clear()
	return prev, prev.State != model.SeatAvailable, nil
}

func (m *MemoryStore) State(ctx context.Context, key SeatKey, now time.Time) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.seats[key]
	if !ok {
		return Snapshot{}, ErrSeatUnknown
	}
	return e.snapshot(now), nil
}

func (m *MemoryStore) SnapshotShowtime(ctx context.Context, showtimeID uint64, now time.Time) (map[uint64]Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[uint64]Snapshot)
	for key, e := range m.seats {
		if key.ShowtimeID == showtimeID {
			out[key.SeatID] = e.snapshot(now)
		}
	}
	return out, nil
}

func (m *MemoryStore) ActiveKeys(ctx context.Context, showtimeID uint64) ([]SeatKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []SeatKey
	now := time.Now()
	for key, e := range m.seats {
		if key.ShowtimeID == showtimeID && e.live(now) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (m *MemoryStore) ExpireDue(ctx context.Context, now time.Time) ([]ExpiredHold, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var expired []ExpiredHold
	for key, e := range m.seats {
		if e.state == model.SeatHeld && !now.Before(e.expiresAt) {
			expired = append(expired, ExpiredHold{Key: key, Holder: e.holder})
			e.clear()
		}
	}
	return expired, nil
}

func (e *seatEntry) clear() {
	e.state = model.SeatAvailable
	e.holder = ""
	e.token = ""
	e.expiresAt = time.Time{}
}

func (e *seatEntry) snapshot(now time.Time) Snapshot {
	if e.state == model.SeatHeld && !now.Before(e.expiresAt) {
		return Snapshot{State: model.SeatAvailable}
	}
	if e.state == model.SeatAvailable {
		return Snapshot{State: model.SeatAvailable}
	}
	return Snapshot{State: e.state, Holder: e.holder, ExpiresAt: e.expiresAt}
}

var _ SeatStateStore = (*MemoryStore)(nil)
