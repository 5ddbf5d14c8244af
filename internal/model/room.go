package model

import "time"

// NamingPattern selects how row labels are derived from row indices when a
// room's seat grid is generated.  Index 0 is the row nearest the screen.
type NamingPattern string

const (
	// PatternNumeric labels rows 1, 2, 3, ...
	PatternNumeric NamingPattern = "NUMERIC"
	// PatternAlphabetic labels rows A, B, C, ...; beyond 26 rows the raw
	// zero-based index is used as a decimal string.
	PatternAlphabetic NamingPattern = "ALPHABETIC"
	// PatternReverseAlphabetic labels row i with the letter at position
	// n-1-i, placing the last letter nearest the screen.  Same overflow
	// fallback as PatternAlphabetic.
	PatternReverseAlphabetic NamingPattern = "REVERSE_ALPHABETIC"
)

// Valid reports whether p is one of the recognized naming patterns.
func (p NamingPattern) Valid() bool {
	switch p {
	case PatternNumeric, PatternAlphabetic, PatternReverseAlphabetic:
		return true
	}
	return false
}

// Room describes a cinema room whose seat inventory has been (or will be)
// generated from a declarative grid specification.  Rooms are immutable
// after their grid is materialized.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – display name, unique within a site.
//  Rows      – number of seat rows.
//  Capacity  – total seat count across all rows.
//  Pattern   – naming pattern used when the grid was generated.
//  GridReady – whether the seat grid has been materialized.
//  CreatedAt – creation timestamp.
type Room struct {
	ID        uint64        `json:"id"`
	Name      string        `json:"name"`
	Rows      uint32        `json:"rows"`
	Capacity  uint32        `json:"capacity"`
	Pattern   NamingPattern `json:"pattern"`
	GridReady bool          `json:"grid_ready"`
	CreatedAt time.Time     `json:"created_at"`
}
