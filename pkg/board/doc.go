// Package board implements the row-encoded stacking board and the fixed
// tetromino shape table.
//
// A [Board] is an ordered slice of [Row] masks indexed from the floor upward.
// Each row is a 10-bit mask where bit c marks column c as occupied. Pieces are
// placed with [Board.Drop], completed rows are removed with [Board.Clear] (or the
// pure [ClearRows]), and [Board.Height] reports the 1-based index of the highest
// occupied row.
//
// # Shapes
//
// Shapes are looked up by their single-letter identifier:
//
//	s, ok := board.Lookup('T')
//
// Each [Shape] stores its rows bottom first: Rows[0] is the row that lands
// lowest. Bit 0 of a template row is the shape's leftmost column, so dropping at
// column c shifts every row left by c bits.
//
// # Usage
//
//	b := board.New()
//	b.Drop(board.MustLookup('Q'), 0)
//	b.Drop(board.MustLookup('I'), 2)
//	b.Clear()
//	fmt.Println(b.Height())
//
// Boards are not safe for concurrent use. Each scenario owns its own board.
package board
