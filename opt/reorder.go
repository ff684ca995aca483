package opt

import "github.com/chazu/bfopt/ir"

// OffsetRoundTrip folds MovePtr(x), op, MovePtr(y) into op at offset x
// followed by MovePtr(x+y), removing one pointer move.
type OffsetRoundTrip struct{}

func (OffsetRoundTrip) Name() string { return "offset-round-trip" }
func (OffsetRoundTrip) Size() int    { return 3 }

func (OffsetRoundTrip) ShouldRun(w []ir.Instruction) bool {
	_, ok1 := w[0].(ir.MovePtr)
	_, ok2 := w[2].(ir.MovePtr)
	if !ok1 || !ok2 {
		return false
	}
	_, ok := ir.Shift(w[1], 0)
	return ok
}

func (OffsetRoundTrip) Apply(w []ir.Instruction) (ir.Change, bool) {
	x := w[0].(ir.MovePtr).Offset
	y := w[2].(ir.MovePtr).Offset
	shifted, _ := ir.Shift(w[1], x)
	return ir.Swap(shifted, ir.Move(x+y)), true
}

// SinkMove commutes a pointer move rightwards past an offset-parameterised
// instruction so moves meet and merge.
type SinkMove struct{}

func (SinkMove) Name() string { return "sink-move" }
func (SinkMove) Size() int    { return 2 }

func (SinkMove) ShouldRun(w []ir.Instruction) bool {
	m, ok := w[0].(ir.MovePtr)
	if !ok || m.Offset == 0 {
		return false
	}
	_, ok = ir.Shift(w[1], 0)
	return ok
}

func (SinkMove) Apply(w []ir.Instruction) (ir.Change, bool) {
	m := w[0].(ir.MovePtr)
	shifted, _ := ir.Shift(w[1], m.Offset)
	return ir.Swap(shifted, m), true
}

// SortWrites orders adjacent single-cell writes to different cells by
// offset, with the current cell last so it stays next to a following loop.
// The writes are independent, and the canonical order brings writes to the
// same cell together.
type SortWrites struct{}

func (SortWrites) Name() string { return "sort-writes" }
func (SortWrites) Size() int    { return 2 }

func (SortWrites) ShouldRun(w []ir.Instruction) bool {
	a, ok1 := singleWrite(w[0])
	b, ok2 := singleWrite(w[1])
	return ok1 && ok2 && writeAfter(a, b)
}

func (SortWrites) Apply(w []ir.Instruction) (ir.Change, bool) {
	return ir.Swap(w[1], w[0]), true
}

// writeAfter reports whether a write to a sorts after a write to b.
func writeAfter(a, b ir.Offset) bool {
	switch {
	case a == b:
		return false
	case a == 0:
		return true
	case b == 0:
		return false
	}
	return a > b
}
