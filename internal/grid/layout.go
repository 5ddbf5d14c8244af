package grid

import (
	"sort"
	"strconv"
	"strings"

	"github.com/cinechain/seat-reservation-engine/internal/model"
)

// Row is one row of the grouped layout view: the row label and its column
// numbers in ascending order.
type Row struct {
	RowLabel string   `json:"row_label"`
	Columns  []uint32 `json:"columns"`
}

// Layout groups a flat seat list by row for display.  Rows are ordered by
// their label's alphabet position when the label is a single letter, and
// numerically otherwise, so REVERSE_ALPHABETIC rooms render back-to-front
// the way the labels were assigned.
func Layout(seats []model.Seat) []Row {
	byRow := make(map[string][]uint32)
	for _, s := range seats {
		lbl := strings.ToUpper(strings.TrimSpace(s.RowLabel))
		byRow[lbl] = append(byRow[lbl], s.Column)
	}
	labels := make([]string, 0, len(byRow))
	for lbl := range byRow {
		labels = append(labels, lbl)
	}
	sort.Slice(labels, func(i, j int) bool {
		a, okA := labelOrder(labels[i])
		b, okB := labelOrder(labels[j])
		if !okA || !okB {
			return labels[i] < labels[j]
		}
		return a < b
	})
	rows := make([]Row, 0, len(labels))
	for _, lbl := range labels {
		cols := byRow[lbl]
		sort.Slice(cols, func(i, j int) bool { return cols[i] < cols[j] })
		rows = append(rows, Row{RowLabel: lbl, Columns: cols})
	}
	return rows
}

// labelOrder maps a row label onto a sortable rank: letters onto their
// alphabet position, numeric fallbacks onto their value.
func labelOrder(label string) (int, bool) {
	if len(label) == 1 && label[0] >= 'A' && label[0] <= 'Z' {
		return int(label[0] - 'A'), true
	}
	if n, err := strconv.Atoi(label); err == nil {
		return n, true
	}
	return 0, false
}
