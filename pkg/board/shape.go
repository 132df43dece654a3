package board

import (
	"fmt"
	"math/bits"
	"slices"
)

// Shape is an immutable piece template in its single canonical orientation.
type Shape struct {
	ID    byte  // piece letter, e.g. 'T'
	Rows  []Row // template rows, bottom row first
	Width int   // number of columns spanned
}

// Height returns the number of rows the shape spans.
func (s Shape) Height() int { return len(s.Rows) }

// String returns the piece letter.
func (s Shape) String() string { return string(s.ID) }

// newShape derives the width from the widest template row.
func newShape(id byte, rows ...Row) Shape {
	w := 0
	for _, r := range rows {
		w = max(w, bits.Len16(uint16(r)))
	}
	return Shape{ID: id, Rows: rows, Width: w}
}

// clone copies the template rows so callers never share the table's storage.
func (s Shape) clone() Shape {
	s.Rows = slices.Clone(s.Rows)
	return s
}

// shapeOrder is the canonical table order.
var shapeOrder = []byte{'Q', 'I', 'T', 'L', 'J', 'Z', 'S'}

var shapes = map[byte]Shape{
	'Q': newShape('Q', 0b11, 0b11),
	'I': newShape('I', 0b1111),
	'T': newShape('T', 0b111, 0b010),
	'L': newShape('L', 0b111, 0b100),
	'J': newShape('J', 0b111, 0b001),
	'Z': newShape('Z', 0b110, 0b011),
	'S': newShape('S', 0b011, 0b110),
}

// Lookup returns the shape for a piece letter. Letters are case-sensitive.
func Lookup(id byte) (Shape, bool) {
	s, ok := shapes[id]
	return s.clone(), ok
}

// MustLookup is like Lookup but panics for an unknown letter.
func MustLookup(id byte) Shape {
	s, ok := shapes[id]
	if !ok {
		panic(fmt.Sprintf("board: unknown shape %q", id))
	}
	return s.clone()
}

// Shapes returns every shape in table order.
func Shapes() []Shape {
	out := make([]Shape, len(shapeOrder))
	for i, id := range shapeOrder {
		out[i] = shapes[id].clone()
	}
	return out
}

// Fits reports whether s dropped at col stays inside the board width.
func (s Shape) Fits(col int) bool {
	return col >= 0 && col+s.Width <= Width
}

// Drop is one placement instruction: a shape and the leftmost column it
// occupies.
type Drop struct {
	Shape  Shape
	Column int
}

// String formats the drop as its input token, e.g. "T4".
func (d Drop) String() string {
	return fmt.Sprintf("%c%d", d.Shape.ID, d.Column)
}

// Apply drops d onto b and clears completed rows. It returns the number of
// rows cleared.
func (d Drop) Apply(b *Board) int {
	b.Drop(d.Shape, d.Column)
	return b.Clear()
}
