// Package event defines the lifecycle notifications published on every
// committed state transition and the bus that fans them out to external
// collaborators (sales, audit, notifications).
package event

import "time"

// Release reasons carried by SeatReleased.
const (
	ReleaseReasonReleased  = "released"
	ReleaseReasonCancelled = "showtime_cancelled"
)

// Event is any lifecycle notification.  Name returns a stable routing name
// such as "seat.held".
type Event interface {
	Name() string
}

// ShowtimeScheduled is published when a showtime is created.
type ShowtimeScheduled struct {
	ShowtimeID uint64    `json:"showtime_id"`
	RoomID     uint64    `json:"room_id"`
	MovieID    uint64    `json:"movie_id"`
	Title      string    `json:"title"`
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
}

func (ShowtimeScheduled) Name() string { return "showtime.scheduled" }

// ShowtimeCancelled is published when a showtime is cancelled; the bulk
// seat release that follows produces its own SeatReleased events.
type ShowtimeCancelled struct {
	ShowtimeID uint64 `json:"showtime_id"`
	RoomID     uint64 `json:"room_id"`
}

func (ShowtimeCancelled) Name() string { return "showtime.cancelled" }

// SeatHeld is published after a batch hold commits.
type SeatHeld struct {
	ShowtimeID uint64    `json:"showtime_id"`
	Holder     string    `json:"holder"`
	SeatIDs    []uint64  `json:"seat_ids"`
	ExpiresAt  time.Time `json:"expires_at"`
}

func (SeatHeld) Name() string { return "seat.held" }

// SeatConfirmed is published after a hold batch is promoted to RESERVED.
type SeatConfirmed struct {
	ShowtimeID uint64   `json:"showtime_id"`
	Holder     string   `json:"holder"`
	SeatIDs    []uint64 `json:"seat_ids"`
}

func (SeatConfirmed) Name() string { return "seat.confirmed" }

// SeatReleased is published when held or reserved seats return to
// AVAILABLE through an explicit release or a cancellation sweep.
type SeatReleased struct {
	ShowtimeID uint64   `json:"showtime_id"`
	Holder     string   `json:"holder"`
	SeatIDs    []uint64 `json:"seat_ids"`
	Reason     string   `json:"reason"`
}

func (SeatReleased) Name() string { return "seat.released" }

// SeatExpired is published by the expiry sweep for each hold whose TTL
// elapsed without confirmation.
type SeatExpired struct {
	ShowtimeID uint64 `json:"showtime_id"`
	Holder     string `json:"holder"`
	SeatID     uint64 `json:"seat_id"`
}

func (SeatExpired) Name() string { return "seat.expired" }
