package reservation

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/cinechain/seat-reservation-engine/internal/event"
	"github.com/cinechain/seat-reservation-engine/internal/model"
	"github.com/cinechain/seat-reservation-engine/internal/store"
)

// Coordinator composes the store's per-seat CAS primitives into atomic
// batch operations.  State is mutated first and events published after, so
// no seat lock is ever held across event delivery.
type Coordinator struct {
	seats store.SeatStateStore
	bus   event.Bus
}

// NewCoordinator wires a coordinator to its seat store and event bus.
func NewCoordinator(seats store.SeatStateStore, bus event.Bus) *Coordinator {
	if seats == nil {
		panic("nil seat store passed to NewCoordinator")
	}
	if bus == nil {
		bus = event.NopBus{}
	}
	return &Coordinator{seats: seats, bus: bus}
}

// HoldSeats attempts to take every listed seat for the holder as a single
// all-or-nothing operation.  Phase 1 acquires each seat via CAS; if any
// acquisition fails, phase 2 rolls back every seat taken so far and the
// whole call fails with SeatUnavailableError naming the conflicts.  Seat
// IDs are deduplicated; ttl must be positive.
func (co *Coordinator) HoldSeats(ctx context.Context, showtimeID uint64, seatIDs []uint64, holder string, ttl time.Duration) (*model.SeatHoldBatch, error) {
	unique := dedup(seatIDs)
	if len(unique) == 0 {
		return nil, ErrNoSeats
	}
	if ttl <= 0 {
		return nil, errors.New("hold ttl must be positive")
	}
	token, err := randomToken(16)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	expiresAt := now.Add(ttl)

	acquired := make([]uint64, 0, len(unique))
	var conflicting []uint64
	for _, sid := range unique {
		key := store.SeatKey{ShowtimeID: showtimeID, SeatID: sid}
		err := co.seats.Acquire(ctx, key, holder, token, expiresAt)
		switch {
		case err == nil:
			acquired = append(acquired, sid)
		case errors.Is(err, store.ErrSeatTaken), errors.Is(err, store.ErrSeatUnknown):
			conflicting = append(conflicting, sid)
		default:
			// Storage failure: undo what we took, surface the transient error.
			co.rollbackAcquired(ctx, showtimeID, holder, acquired)
			return nil, err
		}
	}
	if len(conflicting) > 0 {
		co.rollbackAcquired(ctx, showtimeID, holder, acquired)
		sort.Slice(conflicting, func(i, j int) bool { return conflicting[i] < conflicting[j] })
		return nil, &SeatUnavailableError{ShowtimeID: showtimeID, Conflicting: conflicting}
	}

	batch := &model.SeatHoldBatch{
		ID:         uuid.NewString(),
		ShowtimeID: showtimeID,
		Holder:     holder,
		SeatIDs:    acquired,
		ExpiresAt:  expiresAt,
		CreatedAt:  now,
	}
	co.bus.Publish(ctx, event.SeatHeld{
		ShowtimeID: showtimeID,
		Holder:     holder,
		SeatIDs:    acquired,
		ExpiresAt:  expiresAt,
	})
	return batch, nil
}

// ConfirmHold promotes the holder's held seats to RESERVED.  Every seat
// must be HELD by that exact holder and unexpired; a single stale seat
// fails the whole batch.  Validation runs first, then the CAS writes; a
// write that still loses to concurrent expiry triggers rollback of the
// seats already confirmed so a subset is never left RESERVED.
func (co *Coordinator) ConfirmHold(ctx context.Context, showtimeID uint64, holder string, seatIDs []uint64) error {
	unique := dedup(seatIDs)
	if len(unique) == 0 {
		return ErrNoSeats
	}
	now := time.Now().UTC()
	// Validate the full batch before writing anything.
	var deadline time.Time
	for _, sid := range unique {
		key := store.SeatKey{ShowtimeID: showtimeID, SeatID: sid}
		snap, err := co.seats.State(ctx, key, now)
		if err != nil {
			if errors.Is(err, store.ErrSeatUnknown) {
				return ErrHoldNotFound
			}
			return err
		}
		if snap.State != model.SeatHeld || snap.Holder != holder {
			return ErrHoldNotFound
		}
		if !now.Before(snap.ExpiresAt) {
			return ErrHoldExpired
		}
		deadline = snap.ExpiresAt
	}
	confirmed := make([]uint64, 0, len(unique))
	for _, sid := range unique {
		key := store.SeatKey{ShowtimeID: showtimeID, SeatID: sid}
		if err := co.seats.Confirm(ctx, key, holder, now); err != nil {
			for _, done := range confirmed {
				k := store.SeatKey{ShowtimeID: showtimeID, SeatID: done}
				if uerr := co.seats.Unconfirm(ctx, k, holder, deadline); uerr != nil {
					log.Printf("reservation: unconfirm showtime=%d seat=%d failed: %v", showtimeID, done, uerr)
				}
			}
			return err
		}
		confirmed = append(confirmed, sid)
	}
	co.bus.Publish(ctx, event.SeatConfirmed{
		ShowtimeID: showtimeID,
		Holder:     holder,
		SeatIDs:    confirmed,
	})
	return nil
}

// ReleaseSeats returns the holder's held or reserved seats to AVAILABLE.
// Idempotent: seats already AVAILABLE (or owned by someone else) are
// skipped without error, and no event is emitted for them.
func (co *Coordinator) ReleaseSeats(ctx context.Context, showtimeID uint64, holder string, seatIDs []uint64) error {
	unique := dedup(seatIDs)
	if len(unique) == 0 {
		return ErrNoSeats
	}
	var released []uint64
	for _, sid := range unique {
		key := store.SeatKey{ShowtimeID: showtimeID, SeatID: sid}
		ok, err := co.seats.Release(ctx, key, holder)
		if err != nil && !errors.Is(err, store.ErrSeatUnknown) {
			return err
		}
		if ok {
			released = append(released, sid)
		}
	}
	if len(released) > 0 {
		co.bus.Publish(ctx, event.SeatReleased{
			ShowtimeID: showtimeID,
			Holder:     holder,
			SeatIDs:    released,
			Reason:     event.ReleaseReasonReleased,
		})
	}
	return nil
}

// Availability returns a read-only snapshot of every seat's state for the
// showtime.  The view may be briefly stale against in-flight holds but is
// never inconsistent with a seat's last committed transition.
func (co *Coordinator) Availability(ctx context.Context, showtimeID uint64) (map[uint64]model.SeatState, error) {
	snaps, err := co.seats.SnapshotShowtime(ctx, showtimeID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	out := make(map[uint64]model.SeatState, len(snaps))
	for sid, snap := range snaps {
		out[sid] = snap.State
	}
	return out, nil
}

// ReleaseShowtime force-releases every active hold and reservation for a
// cancelled showtime.  Best effort per seat: one seat's failure is logged
// and does not block the others.
func (co *Coordinator) ReleaseShowtime(ctx context.Context, showtimeID uint64) {
	keys, err := co.seats.ActiveKeys(ctx, showtimeID)
	if err != nil {
		log.Printf("reservation: listing active seats for showtime %d failed: %v", showtimeID, err)
		return
	}
	for _, key := range keys {
		prev, released, err := co.seats.ForceRelease(ctx, key)
		if err != nil {
			log.Printf("reservation: force release %s failed: %v", key, err)
			continue
		}
		if released {
			co.bus.Publish(ctx, event.SeatReleased{
				ShowtimeID: showtimeID,
				Holder:     prev.Holder,
				SeatIDs:    []uint64{key.SeatID},
				Reason:     event.ReleaseReasonCancelled,
			})
		}
	}
}

// rollbackAcquired undoes phase-1 acquisitions after a failed batch.  The
// holder just took these seats, so Release is a no-op only if something
// already expired them.
func (co *Coordinator) rollbackAcquired(ctx context.Context, showtimeID uint64, holder string, seatIDs []uint64) {
	for _, sid := range seatIDs {
		key := store.SeatKey{ShowtimeID: showtimeID, SeatID: sid}
		if _, err := co.seats.Release(ctx, key, holder); err != nil {
			log.Printf("reservation: rollback release %s failed: %v", key, err)
		}
	}
}

func dedup(ids []uint64) []uint64 {
	unique := make([]uint64, 0, len(ids))
	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			unique = append(unique, id)
		}
	}
	return unique
}

// randomToken returns a hex string of n random bytes, used to correlate a
// hold acquisition with its batch receipt.
func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
