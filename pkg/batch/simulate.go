package batch

import (
	"github.com/matzehuels/blockdrop/pkg/board"
	"github.com/matzehuels/blockdrop/pkg/scenario"
)

// Outcome summarizes one simulated scenario.
type Outcome struct {
	Height      int `json:"height"`
	Drops       int `json:"drops"`
	RowsCleared int `json:"rows_cleared"`
}

// Simulate drops every piece of sc onto a fresh board, clearing full rows
// after each drop, and returns the final height.
func Simulate(sc scenario.Scenario) Outcome {
	if sc.Blank {
		return Outcome{}
	}
	b := board.New()
	out := Outcome{Drops: len(sc.Drops)}
	for _, d := range sc.Drops {
		out.RowsCleared += d.Apply(b)
	}
	out.Height = b.Height()
	return out
}

// Step records the board after one drop of a traced scenario.
type Step struct {
	Drop    board.Drop
	Landed  int // board row of the piece's bottom row
	Cleared int // rows cleared by this drop
	Height  int // height after clearing
}

// Trace simulates sc like Simulate but records every step and returns the
// final board.
func Trace(sc scenario.Scenario) ([]Step, *board.Board) {
	b := board.New()
	steps := make([]Step, 0, len(sc.Drops))
	for _, d := range sc.Drops {
		y := b.Drop(d.Shape, d.Column)
		n := b.Clear()
		steps = append(steps, Step{Drop: d, Landed: y, Cleared: n, Height: b.Height()})
	}
	return steps, b
}
