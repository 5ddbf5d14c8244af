package model

import "fmt"

// Seat is an immutable identity record for one seat in a room.  A seat is
// uniquely identified by (room, row label, column number); it carries no
// showtime-specific state.
//
// Fields:
//  ID       – primary key identifier (0 until persisted).
//  RoomID   – room to which this seat belongs.
//  RowLabel – label of the row, derived from the room's naming pattern.
//  Column   – 1-based column number within the row.
type Seat struct {
	ID       uint64 `json:"id"`
	RoomID   uint64 `json:"room_id"`
	RowLabel string `json:"row_label"`
	Column   uint32 `json:"column"`
}

// Label returns the human-readable seat label, e.g. "A1".
func (s Seat) Label() string {
	return fmt.Sprintf("%s%d", s.RowLabel, s.Column)
}
