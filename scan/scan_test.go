package scan

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/chazu/bfopt/ir"
)

func TestScan(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  ir.Program
	}{
		{"empty", "", ir.Program{ir.Start{}}},
		{"folds increments", "+++--+", ir.Program{ir.Start{}, ir.Inc(2)}},
		{"folds moves", ">>><", ir.Program{ir.Start{}, ir.Move(2)}},
		{"balanced run", "+-", ir.Program{ir.Start{}, ir.Inc(0)}},
		{"io", ".,", ir.Program{ir.Start{}, ir.Out(), ir.In()}},
		{"boundary", "+#+", ir.Program{ir.Start{}, ir.Inc(1), ir.Boundary{}, ir.Inc(1)}},
		{"comments", "add one: + done", ir.Program{ir.Start{}, ir.Inc(1)}},
		{"loop", "[->+<]", ir.Program{ir.Start{}, ir.Loop(ir.Inc(-1), ir.Move(1), ir.Inc(1), ir.Move(-1))}},
		{"nested", "[[-]>]", ir.Program{ir.Start{}, ir.Loop(ir.Loop(ir.Inc(-1)), ir.Move(1))}},
		{"empty loop", "[]", ir.Program{ir.Start{}, ir.DynamicLoop{}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Scan(tc.input)
			if err != nil {
				t.Fatalf("Scan(%q) failed: %v", tc.input, err)
			}
			if diff := cmp.Diff(tc.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Scan(%q) mismatch (-want +got):\n%s", tc.input, diff)
			}
		})
	}
}

func TestScanWrapsIncrements(t *testing.T) {
	src := ""
	for i := 0; i < 300; i++ {
		src += "+"
	}
	got, err := Scan(src)
	if err != nil {
		t.Fatal(err)
	}
	if want := ir.Inc(44); !ir.Equal(got[1], want) {
		t.Errorf("300 increments = %v, want %v", ir.Mnemonic(got[1]), ir.Mnemonic(want))
	}
}

func TestScanErrors(t *testing.T) {
	tests := []struct {
		input string
		pos   Position
		msg   string
	}{
		{"+]", Position{Offset: 1, Line: 1, Column: 2}, "unmatched ']'"},
		{"+\n[[-]", Position{Offset: 2, Line: 2, Column: 1}, "unmatched '['"},
		{"[\n  [", Position{Offset: 4, Line: 2, Column: 3}, "unmatched '['"},
	}

	for _, tc := range tests {
		_, err := Scan(tc.input)
		var se *SyntaxError
		if !errors.As(err, &se) {
			t.Errorf("Scan(%q) error = %v, want *SyntaxError", tc.input, err)
			continue
		}
		if se.Pos != tc.pos {
			t.Errorf("Scan(%q) position = %+v, want %+v", tc.input, se.Pos, tc.pos)
		}
		if se.Msg != tc.msg {
			t.Errorf("Scan(%q) message = %q, want %q", tc.input, se.Msg, tc.msg)
		}
	}
}

func TestSyntaxErrorString(t *testing.T) {
	err := &SyntaxError{Pos: Position{Line: 3, Column: 7}, Msg: "unmatched ']'"}
	if got, want := err.Error(), "3:7: unmatched ']'"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
