// Package store defines the seat-state port: the narrow set of atomic
// primitives the reservation core requires from whatever backend holds
// per-(showtime,seat) availability.  All mutation of seat state goes
// through these primitives; no other component writes holds directly.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cinechain/seat-reservation-engine/internal/model"
)

// SeatKey identifies one seat's state for one showtime.
type SeatKey struct {
	ShowtimeID uint64
	SeatID     uint64
}

func (k SeatKey) String() string {
	return fmt.Sprintf("showtime=%d seat=%d", k.ShowtimeID, k.SeatID)
}

// Snapshot is the committed state of one seat as last observed.  Holder and
// ExpiresAt are zero-valued when the seat is AVAILABLE.
type Snapshot struct {
	State     model.SeatState
	Holder    string
	ExpiresAt time.Time
}

// ExpiredHold identifies a hold removed by ExpireDue.
type ExpiredHold struct {
	Key    SeatKey
	Holder string
}

// Sentinel errors returned by the atomic primitives.  Backends wrap their
// own transport failures separately so callers can tell a logical conflict
// from a storage outage (errors.Is on these reports the former).
var (
	// ErrSeatUnknown means the seat was never materialized for the showtime.
	ErrSeatUnknown = errors.New("seat not part of showtime")
	// ErrSeatTaken means the CAS found the seat HELD or RESERVED.
	ErrSeatTaken = errors.New("seat is not available")
	// ErrHoldNotFound means no live hold by that holder exists on the seat.
	ErrHoldNotFound = errors.New("hold not found")
	// ErrHoldExpired means the hold's TTL elapsed before the operation.
	ErrHoldExpired = errors.New("hold expired")
)

// SeatStateStore owns all concurrency-sensitive seat mutation.  Every
// method is atomic with respect to a single seat; batch semantics are
// composed above the store.  Implementations must be safe for concurrent
// use and must never lose a committed transition, and an expired HELD seat
// must behave as AVAILABLE to Acquire and to reads.
type SeatStateStore interface {
	// Materialize creates AVAILABLE state entries for every seat of a
	// newly scheduled showtime.
	Materialize(ctx context.Context, showtimeID uint64, seatIDs []uint64) error

	// Acquire atomically transitions AVAILABLE -> HELD(holder) with the
	// given deadline.  Returns ErrSeatTaken when the seat is live-held or
	// reserved, ErrSeatUnknown when it was never materialized.
	Acquire(ctx context.Context, key SeatKey, holder, token string, expiresAt time.Time) error

	// Confirm atomically transitions HELD(holder, unexpired) -> RESERVED.
	Confirm(ctx context.Context, key SeatKey, holder string, now time.Time) error

	// Unconfirm reverts RESERVED(holder) back to HELD with the given
	// deadline.  Used to undo a partially applied confirm batch.
	Unconfirm(ctx context.Context, key SeatKey, holder string, expiresAt time.Time) error

	// Release transitions HELD(holder) or RESERVED(holder) -> AVAILABLE.
	// Idempotent: released reports whether a transition happened; an
	// already-AVAILABLE seat is a no-op, not an error.
	Release(ctx context.Context, key SeatKey, holder string) (released bool, err error)

	// ForceRelease transitions any state -> AVAILABLE regardless of holder,
	// reporting the state it displaced.  Used by the cancellation sweep.
	ForceRelease(ctx context.Context, key SeatKey) (prev Snapshot, released bool, err error)

	// State reads one seat's committed state.
	State(ctx context.Context, key SeatKey, now time.Time) (Snapshot, error)

	// SnapshotShowtime reads every seat's committed state for a showtime.
	// The view is per-seat consistent; it is not a cross-seat transaction.
	SnapshotShowtime(ctx context.Context, showtimeID uint64, now time.Time) (map[uint64]Snapshot, error)

	// ActiveKeys lists seats currently HELD or RESERVED for a showtime.
	ActiveKeys(ctx context.Context, showtimeID uint64) ([]SeatKey, error)

	// ExpireDue releases every hold whose deadline passed and reports them.
	ExpireDue(ctx context.Context, now time.Time) ([]ExpiredHold, error)
}
