package model

import "time"

// Movie is the minimal slice of the catalog the scheduler needs: a stable
// reference and a runtime used to derive a showtime's end.  The full catalog
// lives in an external module.
type Movie struct {
	ID      uint64        `json:"id"`
	Title   string        `json:"title"`
	Runtime time.Duration `json:"runtime"`
}
