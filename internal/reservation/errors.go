// Package reservation orchestrates the hold -> confirm -> release/expire
// lifecycle for batches of seats.  Batch semantics are all-or-nothing; the
// per-seat atomicity itself lives in the store.
package reservation

import (
	"errors"
	"fmt"

	"github.com/cinechain/seat-reservation-engine/internal/store"
)

// SeatUnavailableError is the expected, recoverable outcome of losing a
// race for at least one seat in a batch.  No seat in the failed batch
// remains mutated.
type SeatUnavailableError struct {
	ShowtimeID  uint64
	Conflicting []uint64
}

func (e *SeatUnavailableError) Error() string {
	return fmt.Sprintf("seats unavailable for showtime %d: %v", e.ShowtimeID, e.Conflicting)
}

// Hold-state errors mirror the store sentinels so callers can errors.Is
// against either layer.
var (
	ErrHoldNotFound = store.ErrHoldNotFound
	ErrHoldExpired  = store.ErrHoldExpired
	ErrNoSeats      = errors.New("no seat ids provided")
)
