package model

import "time"

// SeatState is the availability state of one seat for one showtime.
// AVAILABLE is the initial state; no record needs to exist for it.
type SeatState string

const (
	SeatAvailable SeatState = "AVAILABLE"
	SeatHeld      SeatState = "HELD"
	SeatReserved  SeatState = "RESERVED"
)

// SeatHoldBatch is the receipt returned by a successful batch hold.  The
// whole batch shares one deadline; individual seats revert to AVAILABLE
// when it passes unless confirmed first.
//
// Fields:
//  ID        – opaque batch identifier returned to the client.
//  ShowtimeID – showtime the seats belong to.
//  Holder    – opaque reference to the sale/session claiming the seats.
//  SeatIDs   – seats acquired, all-or-nothing.
//  ExpiresAt – deadline after which the holds expire.
//  CreatedAt – when the batch was acquired.
type SeatHoldBatch struct {
	ID         string    `json:"id"`
	ShowtimeID uint64    `json:"showtime_id"`
	Holder     string    `json:"holder"`
	SeatIDs    []uint64  `json:"seat_ids"`
	ExpiresAt  time.Time `json:"expires_at"`
	CreatedAt  time.Time `json:"created_at"`
}
