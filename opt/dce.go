package opt

import "github.com/chazu/bfopt/ir"

// ---------------------------------------------------------------------------
// Dead code elimination
// ---------------------------------------------------------------------------

// RemoveZeroMove drops pointer moves of zero cells.
type RemoveZeroMove struct{}

func (RemoveZeroMove) Name() string { return "remove-zero-move" }
func (RemoveZeroMove) Size() int    { return 1 }

func (RemoveZeroMove) ShouldRun(w []ir.Instruction) bool {
	m, ok := w[0].(ir.MovePtr)
	return ok && m.Offset == 0
}

func (RemoveZeroMove) Apply(w []ir.Instruction) (ir.Change, bool) {
	return ir.Remove(), true
}

// RemoveNoop drops instructions that cannot change the tape or output:
// zero increments, empty SIMD sets and zero-count writes.
type RemoveNoop struct{}

func (RemoveNoop) Name() string { return "remove-noop" }
func (RemoveNoop) Size() int    { return 1 }

func (RemoveNoop) ShouldRun(w []ir.Instruction) bool {
	switch v := w[0].(type) {
	case ir.IncVal:
		return v.Value == 0
	case ir.IncVals:
		return v.Value == 0 || len(v.Offsets) == 0
	case ir.SetVals:
		return len(v.Offsets) == 0
	case ir.IncRange:
		return v.Value == 0
	case ir.Write:
		return v.Count <= 0
	case ir.ScaleAnd:
		return v.Factor == 0 && v.Action == ir.ActionCopy
	}
	return false
}

func (RemoveNoop) Apply(w []ir.Instruction) (ir.Change, bool) {
	return ir.Remove(), true
}

// RemoveEmptyLoop drops loops with an empty body and turns empty IfNz
// blocks into a clear. An empty DynamicLoop over a non-zero cell never
// terminates, so dropping it only changes programs without a final state.
type RemoveEmptyLoop struct{}

func (RemoveEmptyLoop) Name() string { return "remove-empty-loop" }
func (RemoveEmptyLoop) Size() int    { return 1 }

func (RemoveEmptyLoop) ShouldRun(w []ir.Instruction) bool {
	switch v := w[0].(type) {
	case ir.DynamicLoop:
		return len(v.Body) == 0
	case ir.IfNz:
		return len(v.Body) == 0
	}
	return false
}

func (RemoveEmptyLoop) Apply(w []ir.Instruction) (ir.Change, bool) {
	if _, ok := w[0].(ir.IfNz); ok {
		return ir.Replace(ir.Clear()), true
	}
	return ir.Remove(), true
}

// RemoveDeadLoop drops a loop, IfNz or FindZero whose cell is known to be
// zero: right after a zeroing instruction, a SetVal of zero, or a zero hint.
type RemoveDeadLoop struct{}

func (RemoveDeadLoop) Name() string        { return "remove-dead-loop" }
func (RemoveDeadLoop) Range() (lo, hi int) { return 2, 3 }

func (RemoveDeadLoop) ShouldRun(w []ir.Instruction) bool {
	if !isTest(w[len(w)-1]) {
		return false
	}
	v, ok := knownBeforeBlock(w)
	return ok && v == 0
}

func (RemoveDeadLoop) Apply(w []ir.Instruction) (ir.Change, bool) {
	return ir.RemoveOffset(len(w) - 1), true
}

// RemoveDeadStore drops a store or increment whose every cell the next
// instruction overwrites. A Read overwrites the current cell.
type RemoveDeadStore struct{}

func (RemoveDeadStore) Name() string { return "remove-dead-store" }
func (RemoveDeadStore) Size() int    { return 2 }

func (RemoveDeadStore) ShouldRun(w []ir.Instruction) bool {
	switch w[0].(type) {
	case ir.IncVal, ir.SetVal, ir.IncVals, ir.SetVals, ir.IncRange, ir.SetRange:
	default:
		return false
	}
	cells, _ := ir.Cells(w[0])
	if len(cells) == 0 {
		return false
	}
	for _, c := range cells {
		if !overwrites(w[1], c) {
			return false
		}
	}
	return true
}

func (RemoveDeadStore) Apply(w []ir.Instruction) (ir.Change, bool) {
	return ir.RemoveOffset(0), true
}

// overwrites reports whether ins replaces the cell at off without reading it.
func overwrites(ins ir.Instruction, off ir.Offset) bool {
	switch v := ins.(type) {
	case ir.SetVal:
		return v.Offset == off
	case ir.SetVals:
		return hasOffset(v.Offsets, off)
	case ir.SetRange:
		return v.Start <= off && off <= v.End
	case ir.Read:
		return off == 0
	}
	return false
}

// RemoveInfiniteLoop drops a loop without I/O that can never clear its own
// cell when the next instruction overwrites that cell. Entered, the loop
// never terminates; skipped, it does nothing.
type RemoveInfiniteLoop struct{}

func (RemoveInfiniteLoop) Name() string { return "remove-infinite-loop" }
func (RemoveInfiniteLoop) Size() int    { return 2 }

func (RemoveInfiniteLoop) ShouldRun(w []ir.Instruction) bool {
	l, ok := w[0].(ir.DynamicLoop)
	return ok && overwrites(w[1], 0) && keepsCell(l.Body)
}

func (RemoveInfiniteLoop) Apply(w []ir.Instruction) (ir.Change, bool) {
	return ir.RemoveOffset(0), true
}

// keepsCell reports whether body returns the pointer to where it started
// without touching that cell or performing I/O.
func keepsCell(body ir.Program) bool {
	var ptr ir.Offset
	for _, ins := range body {
		if ir.HasIO(ins) {
			return false
		}
		cells, ok := ir.Cells(ins)
		if !ok {
			return false
		}
		for _, c := range cells {
			if ptr+c == 0 {
				return false
			}
		}
		m, ok := ir.PtrMovement(ins)
		if !ok {
			return false
		}
		ptr += m
	}
	return ptr == 0
}

// RemoveRedundantClear drops a clear of a cell that is already zero.
type RemoveRedundantClear struct{}

func (RemoveRedundantClear) Name() string { return "remove-redundant-clear" }
func (RemoveRedundantClear) Size() int    { return 2 }

func (RemoveRedundantClear) ShouldRun(w []ir.Instruction) bool {
	s, ok := w[1].(ir.SetVal)
	if !ok || s.Value != 0 {
		return false
	}
	v, known := knownAt(w[0], s.Offset, true)
	return known && v == 0
}

func (RemoveRedundantClear) Apply(w []ir.Instruction) (ir.Change, bool) {
	return ir.RemoveOffset(1), true
}

// RemoveRedundantHint drops a hint that a later hint or store at the same
// offset supersedes.
type RemoveRedundantHint struct{}

func (RemoveRedundantHint) Name() string { return "remove-redundant-hint" }
func (RemoveRedundantHint) Size() int    { return 2 }

func (RemoveRedundantHint) ShouldRun(w []ir.Instruction) bool {
	h, ok := w[0].(ir.KnownValue)
	if !ok {
		return false
	}
	switch v := w[1].(type) {
	case ir.KnownValue:
		return v.Offset == h.Offset
	case ir.SetVal:
		return v.Offset == h.Offset
	case ir.SetVals:
		return hasOffset(v.Offsets, h.Offset)
	case ir.SetRange:
		return v.Start <= h.Offset && h.Offset <= v.End
	}
	return false
}

func (RemoveRedundantHint) Apply(w []ir.Instruction) (ir.Change, bool) {
	return ir.RemoveOffset(0), true
}

// RemoveDoubleBoundary collapses consecutive boundaries.
type RemoveDoubleBoundary struct{}

func (RemoveDoubleBoundary) Name() string { return "remove-double-boundary" }
func (RemoveDoubleBoundary) Size() int    { return 2 }

func (RemoveDoubleBoundary) ShouldRun(w []ir.Instruction) bool {
	_, a := w[0].(ir.Boundary)
	_, b := w[1].(ir.Boundary)
	return a && b
}

func (RemoveDoubleBoundary) Apply(w []ir.Instruction) (ir.Change, bool) {
	return ir.RemoveOffset(1), true
}

// ---------------------------------------------------------------------------
// Start-of-program folding
// ---------------------------------------------------------------------------

// SetUntouchedCells walks forward from the Start marker while the pointer
// is statically known. Every cell is zero at Start, so the first increment
// of a cell becomes a store and a block over an untouched cell is dead.
// It runs on the top level only.
type SetUntouchedCells struct{}

func (SetUntouchedCells) Name() string     { return "set-untouched-cells" }
func (SetUntouchedCells) RunOnLoops() bool { return false }
func (SetUntouchedCells) RunOnIfs() bool   { return false }

func (SetUntouchedCells) Run(prog *ir.Program) bool {
	p := *prog
	if len(p) == 0 {
		return false
	}
	if _, ok := p[0].(ir.Start); !ok {
		return false
	}

	touched := make(map[ir.Offset]bool)
	untouched := func(ptr ir.Offset, offs []ir.Offset) bool {
		for _, o := range offs {
			if touched[ptr+o] {
				return false
			}
		}
		return true
	}
	mark := func(ptr ir.Offset, offs []ir.Offset) {
		for _, o := range offs {
			touched[ptr+o] = true
		}
	}

	var ptr ir.Offset
	changed := false
	out := make(ir.Program, 0, len(p))
	out = append(out, p[0])
	i := 1

scan:
	for ; i < len(p); i++ {
		ins := p[i]
		switch v := ins.(type) {
		case ir.IncVal:
			if !touched[ptr+v.Offset] {
				ins = ir.SetAt(uint8(v.Value), v.Offset)
				changed = true
			}
			touched[ptr+v.Offset] = true
		case ir.IncVals:
			if untouched(ptr, v.Offsets) {
				ins = ir.Sets(uint8(v.Value), v.Offsets...)
				changed = true
			}
			mark(ptr, v.Offsets)
		case ir.IncRange:
			offs, _ := ir.Cells(v)
			if untouched(ptr, offs) {
				ins = ir.SetSpan(v.Start, v.End, uint8(v.Value))
				changed = true
			}
			mark(ptr, offs)
		case ir.SetVal, ir.SetVals, ir.SetRange, ir.Read:
			offs, _ := ir.Cells(v)
			mark(ptr, offs)
		case ir.MovePtr:
			ptr += v.Offset
		case ir.Write, ir.KnownValue, ir.Boundary:
		case ir.DynamicLoop, ir.IfNz, ir.FindZero:
			if !touched[ptr] {
				changed = true
				continue
			}
			break scan
		default:
			break scan
		}
		out = append(out, ins)
	}

	if !changed {
		return false
	}
	*prog = append(out, p[i:]...)
	return true
}
