// Package grid generates a room's seat inventory from a small declarative
// specification.  Building a grid is a pure computation; persisting the
// result is the caller's responsibility.
package grid

import (
	"fmt"
	"strconv"

	"github.com/cinechain/seat-reservation-engine/internal/model"
)

// RoomSpec describes the shape of a room's seat grid.  Columns applies to
// every row unless ColumnsByRow overrides it for a specific zero-based row
// index.  Row index 0 is the row nearest the screen.
type RoomSpec struct {
	Rows         int
	Columns      int
	ColumnsByRow map[int]int
	Pattern      model.NamingPattern
}

// InvalidRoomSpecError reports a grid specification that cannot produce a
// valid seat inventory.
type InvalidRoomSpecError struct {
	Reason string
}

func (e *InvalidRoomSpecError) Error() string {
	return "invalid room specification: " + e.Reason
}

// BuildGrid materializes every seat identity for the given specification,
// ordered row by row, columns ascending.  It fails when the row count or
// any row's column count is not positive, or the naming pattern is unknown.
func BuildGrid(spec RoomSpec) ([]model.Seat, error) {
	if spec.Rows < 1 {
		return nil, &InvalidRoomSpecError{Reason: fmt.Sprintf("row count must be >= 1, got %d", spec.Rows)}
	}
	if !spec.Pattern.Valid() {
		return nil, &InvalidRoomSpecError{Reason: fmt.Sprintf("unknown naming pattern %q", spec.Pattern)}
	}
	// Validate every row's width before emitting anything so a bad spec
	// never yields a partial grid.
	widths := make([]int, spec.Rows)
	for i := 0; i < spec.Rows; i++ {
		cols := spec.Columns
		if c, ok := spec.ColumnsByRow[i]; ok {
			cols = c
		}
		if cols < 1 {
			return nil, &InvalidRoomSpecError{Reason: fmt.Sprintf("row %d has column count %d, must be >= 1", i, cols)}
		}
		widths[i] = cols
	}
	total := 0
	for _, w := range widths {
		total += w
	}
	seats := make([]model.Seat, 0, total)
	for i := 0; i < spec.Rows; i++ {
		label := RowLabel(spec.Pattern, i, spec.Rows)
		for col := 1; col <= widths[i]; col++ {
			seats = append(seats, model.Seat{
				RowLabel: label,
				Column:   uint32(col),
			})
		}
	}
	return seats, nil
}

// RowLabel derives the label of the row at zero-based index i in a room of
// n rows.  ALPHABETIC assigns A to index 0; REVERSE_ALPHABETIC assigns A to
// the back row (index n-1).  Both alphabetic patterns fall back to the raw
// alphabet position as a decimal string once it passes Z; the fallback is
// intentional and must not be "fixed" into a multi-letter scheme.
func RowLabel(pattern model.NamingPattern, i, n int) string {
	switch pattern {
	case model.PatternAlphabetic:
		return alphaLabel(i)
	case model.PatternReverseAlphabetic:
		return alphaLabel(n - 1 - i)
	default:
		return strconv.Itoa(i + 1)
	}
}

func alphaLabel(pos int) string {
	if pos < 0 || pos > 25 {
		return strconv.Itoa(pos)
	}
	return string(rune('A' + pos))
}
