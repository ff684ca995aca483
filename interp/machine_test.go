package interp

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/chazu/bfopt/ir"
)

func run(t *testing.T, prog ir.Program, input string) (*Machine, string) {
	t.Helper()
	var out bytes.Buffer
	m := New(64, strings.NewReader(input), &out)
	m.SetStepLimit(1_000_000)
	if err := m.Run(prog); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return m, out.String()
}

func TestMachineBasics(t *testing.T) {
	prog := ir.Program{
		ir.Start{},
		ir.Inc(65),
		ir.Out(),
		ir.Move(2),
		ir.SetAt(7, 1),
		ir.IncAt(-1, 1),
		ir.OutAt(2, 1),
	}
	m, out := run(t, prog, "")
	if out != "A\x06\x06" {
		t.Errorf("output = %q, want %q", out, "A\x06\x06")
	}
	if m.Pointer() != 2 {
		t.Errorf("pointer = %d, want 2", m.Pointer())
	}
	if m.Tape()[0] != 65 || m.Tape()[3] != 6 {
		t.Errorf("tape = %v", m.Tape()[:4])
	}
}

func TestMachineWraps(t *testing.T) {
	m, _ := run(t, ir.Program{ir.Inc(-1), ir.IncAt(127, 1), ir.IncAt(127, 1), ir.IncAt(2, 1)}, "")
	if m.Tape()[0] != 255 || m.Tape()[1] != 0 {
		t.Errorf("tape = %v, want [255 0]", m.Tape()[:2])
	}
}

func TestMachineRead(t *testing.T) {
	m, out := run(t, ir.Program{ir.In(), ir.Out(), ir.Move(1), ir.In(), ir.Move(1), ir.Inc(3), ir.In()}, "x")
	if out != "x" {
		t.Errorf("output = %q, want x", out)
	}
	if m.Tape()[1] != 0 || m.Tape()[2] != 0 {
		t.Errorf("reads at EOF = %v, want zeros", m.Tape()[1:3])
	}
}

func TestMachineBlocks(t *testing.T) {
	// 3 * 4 via a nested loop, then an IfNz that moves and clears.
	prog := ir.Program{
		ir.Inc(3),
		ir.Loop(ir.Move(1), ir.Inc(4), ir.Loop(ir.Inc(-1), ir.Move(1), ir.Inc(1), ir.Move(-1)), ir.Move(-1), ir.Inc(-1)),
		ir.Move(2),
		ir.If(ir.IncAt(1, 1), ir.Move(1)),
	}
	m, _ := run(t, prog, "")
	if got := m.Tape()[2]; got != 12 {
		t.Errorf("product = %d, want 12", got)
	}
	if m.Pointer() != 3 || m.Tape()[3] != 0 {
		t.Errorf("IfNz left pointer %d cell %d, want 3 and 0", m.Pointer(), m.Tape()[3])
	}
}

func TestMachineFindZero(t *testing.T) {
	prog := ir.Program{ir.Sets(1, 0, 1, 2), ir.Find(1), ir.Inc(9), ir.Find(1)}
	m, _ := run(t, prog, "")
	if m.Pointer() != 4 || m.Tape()[3] != 9 {
		t.Errorf("pointer %d tape %v", m.Pointer(), m.Tape()[:4])
	}
}

func TestMachineScaleAnd(t *testing.T) {
	tests := []struct {
		name string
		ins  ir.Instruction
		tape []byte
		ptr  int
	}{
		{"move", ir.Scale(ir.ActionMove, 1, 2), []byte{0, 11, 0}, 0},
		{"take", ir.Scale(ir.ActionTake, 2, 1), []byte{0, 1, 5}, 2},
		{"set", ir.Scale(ir.ActionSet, 1, 3), []byte{0, 15, 0}, 0},
		{"fetch", ir.Scale(ir.ActionFetch, 1, 2), []byte{7, 0, 0}, 0},
		{"copy", ir.Scale(ir.ActionCopy, 2, -1), []byte{5, 1, 251}, 0},
		{"sub-cell", ir.SubCell(1), []byte{0, 252, 0}, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, _ := run(t, ir.Program{ir.Inc(5), ir.IncAt(1, 1), tc.ins}, "")
			if !bytes.Equal(m.Tape()[:3], tc.tape) {
				t.Errorf("tape = %v, want %v", m.Tape()[:3], tc.tape)
			}
			if m.Pointer() != tc.ptr {
				t.Errorf("pointer = %d, want %d", m.Pointer(), tc.ptr)
			}
		})
	}
}

func TestMachineSimdAndSpans(t *testing.T) {
	prog := ir.Program{
		ir.Incs(2, 0, 2),
		ir.IncSpan(1, 3, 1),
		ir.SetSpan(4, 5, 9),
		ir.Sets(4, 6),
		ir.Known(1, 0),
		ir.Boundary{},
	}
	m, _ := run(t, prog, "")
	want := []byte{2, 1, 3, 1, 9, 9, 4}
	if !bytes.Equal(m.Tape()[:7], want) {
		t.Errorf("tape = %v, want %v", m.Tape()[:7], want)
	}
}

func TestMachinePointerOutOfRange(t *testing.T) {
	tests := []ir.Program{
		{ir.Move(-1)},
		{ir.IncAt(1, 64)},
		{ir.Find(-1), ir.Inc(1), ir.Find(-1)},
		{ir.Inc(1), ir.Scale(ir.ActionMove, -2, 1)},
	}
	for i, prog := range tests {
		m := New(64, nil, nil)
		if err := m.Run(prog); !errors.Is(err, ErrPointerOutOfRange) {
			t.Errorf("program %d: err = %v, want ErrPointerOutOfRange", i, err)
		}
	}
}

func TestMachineStepLimit(t *testing.T) {
	m := New(8, nil, nil)
	m.SetStepLimit(100)
	err := m.Run(ir.Program{ir.Inc(1), ir.Loop(ir.Boundary{})})
	if !errors.Is(err, ErrStepLimit) {
		t.Errorf("err = %v, want ErrStepLimit", err)
	}
}

func TestMachineDefaultSize(t *testing.T) {
	if got := len(New(0, nil, nil).Tape()); got != DefaultTapeSize {
		t.Errorf("tape size = %d, want %d", got, DefaultTapeSize)
	}
}
