package board

import (
	"slices"
	"strings"
)

const (
	// Width is the fixed number of columns.
	Width = 10

	// FullRow is the mask of a row with every column occupied.
	FullRow Row = 1<<Width - 1
)

// Row is a column-occupancy mask for one board row.
type Row uint16

// Full reports whether every column is occupied.
func (r Row) Full() bool { return r == FullRow }

// Empty reports whether no column is occupied.
func (r Row) Empty() bool { return r == 0 }

// Board is a stack of rows, index 0 at the floor.
type Board struct {
	rows []Row
}

// New returns an empty board.
func New() *Board {
	return &Board{}
}

// FromRows builds a board from rows listed bottom first.
func FromRows(rows ...Row) *Board {
	return &Board{rows: slices.Clone(rows)}
}

// Rows returns a copy of the stored rows, bottom first.
func (b *Board) Rows() []Row {
	return slices.Clone(b.rows)
}

// Len returns the number of stored rows. It is not the height.
func (b *Board) Len() int {
	return len(b.rows)
}

// Drop lets s fall at column col and fixes it where it comes to rest. It
// returns the board index of the shape's bottom row.
//
// The caller must ensure s.Fits(col); the engine does not validate placements.
func (b *Board) Drop(s Shape, col int) int {
	shifted := make([]Row, len(s.Rows))
	for i, r := range s.Rows {
		shifted[i] = r << col
	}

	y := len(b.rows) + len(shifted)
	for !b.blocked(shifted, y-1) {
		y--
	}

	for dy, bits := range shifted {
		at := y + dy
		if at >= len(b.rows) {
			b.rows = append(b.rows, make([]Row, at+1-len(b.rows))...)
		}
		b.rows[at] |= bits
	}
	return y
}

// blocked reports whether shape rows placed with their bottom at y would go
// through the floor or overlap existing cells.
func (b *Board) blocked(shape []Row, y int) bool {
	for dy, bits := range shape {
		at := y + dy
		if at < 0 {
			return true
		}
		if at < len(b.rows) && b.rows[at]&bits != 0 {
			return true
		}
	}
	return false
}

// Clear removes every full row and trims empty rows from the top. It returns
// the number of full rows removed.
func (b *Board) Clear() int {
	before := 0
	for _, r := range b.rows {
		if r.Full() {
			before++
		}
	}
	b.rows = ClearRows(b.rows)
	return before
}

// ClearRows returns rows without its full rows and without trailing empty rows.
// Surviving rows keep their relative order, so everything above a cleared row
// drops by the number of rows cleared beneath it. rows is not modified.
func ClearRows(rows []Row) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if !r.Full() {
			out = append(out, r)
		}
	}
	for len(out) > 0 && out[len(out)-1].Empty() {
		out = out[:len(out)-1]
	}
	return out
}

// Height returns the 1-based index of the highest occupied row, or 0 for an
// empty board. Stored rows are rescanned on each call.
func (b *Board) Height() int {
	for y := len(b.rows) - 1; y >= 0; y-- {
		if !b.rows[y].Empty() {
			return y + 1
		}
	}
	return 0
}

// Lines renders rows top first, '#' for occupied and '.' for empty cells.
func (b *Board) Lines() []string {
	lines := make([]string, 0, len(b.rows))
	for y := len(b.rows) - 1; y >= 0; y-- {
		var sb strings.Builder
		for c := 0; c < Width; c++ {
			if b.rows[y]&(1<<c) != 0 {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		lines = append(lines, sb.String())
	}
	return lines
}

// String implements fmt.Stringer using Lines.
func (b *Board) String() string {
	return strings.Join(b.Lines(), "\n")
}
