package model

import "time"

// ShowtimeStatus is the lifecycle state of a scheduled showtime.
type ShowtimeStatus string

const (
	ShowtimeScheduled  ShowtimeStatus = "SCHEDULED"
	ShowtimeInProgress ShowtimeStatus = "IN_PROGRESS"
	ShowtimeCompleted  ShowtimeStatus = "COMPLETED"
	ShowtimeCancelled  ShowtimeStatus = "CANCELLED"
)

// Showtime binds a movie to a room and a [StartsAt, EndsAt) time window.
// Two non-cancelled showtimes in the same room must never overlap; the
// scheduler enforces this at creation.  EndsAt is derived from the movie
// runtime plus a configured cleanup buffer.
//
// Fields:
//  ID        – primary key identifier.
//  RoomID    – room in which the showtime runs.
//  MovieID   – movie being shown.
//  Title     – movie title, denormalized for event payloads.
//  StartsAt  – inclusive start of the window.
//  EndsAt    – exclusive end of the window.
//  Status    – lifecycle status.
//  CreatedAt – creation timestamp.
type Showtime struct {
	ID        uint64         `json:"id"`
	RoomID    uint64         `json:"room_id"`
	MovieID   uint64         `json:"movie_id"`
	Title     string         `json:"title"`
	StartsAt  time.Time      `json:"starts_at"`
	EndsAt    time.Time      `json:"ends_at"`
	Status    ShowtimeStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
}

// Overlaps reports whether the showtime's window overlaps [start, end).
// Closed-open semantics: a showtime ending exactly when another starts does
// not overlap it.
func (s Showtime) Overlaps(start, end time.Time) bool {
	return s.StartsAt.Before(end) && start.Before(s.EndsAt)
}
