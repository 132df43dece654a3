package batch

import (
	"testing"

	"github.com/matzehuels/blockdrop/pkg/scenario"
)

func mustParse(t *testing.T, line string) scenario.Scenario {
	t.Helper()
	sc, err := scenario.Parse(line, scenario.PolicyFail)
	if err != nil {
		t.Fatalf("Parse(%q): %v", line, err)
	}
	return sc
}

func TestSimulate(t *testing.T) {
	tests := []struct {
		line    string
		height  int
		cleared int
	}{
		{"", 0, 0},
		{"Q0", 2, 0},
		{"Q0,Q2,Q4", 2, 0},
		{"Q0,Q2,Q4,Q6,Q8", 0, 2},
		{"I0,I4,Q8", 1, 1},
		{"T1,Z3,I4", 3, 0},
		{"L0,J3", 2, 0},
		{"I0,I0,I0,I0", 4, 0},
		{"I0,I4,Q8,I0,I4", 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			out := Simulate(mustParse(t, tt.line))
			if out.Height != tt.height {
				t.Errorf("Height = %d, want %d", out.Height, tt.height)
			}
			if out.RowsCleared != tt.cleared {
				t.Errorf("RowsCleared = %d, want %d", out.RowsCleared, tt.cleared)
			}
		})
	}
}

func TestTrace(t *testing.T) {
	steps, b := Trace(mustParse(t, "I0,I4,Q8"))
	if len(steps) != 3 {
		t.Fatalf("steps = %d, want 3", len(steps))
	}
	last := steps[2]
	if last.Landed != 0 || last.Cleared != 1 || last.Height != 1 {
		t.Errorf("last step = %+v", last)
	}
	if b.Height() != 1 {
		t.Errorf("final height = %d, want 1", b.Height())
	}
	if got := b.String(); got != "........##" {
		t.Errorf("final board = %q", got)
	}
}
