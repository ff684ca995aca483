package opt

import "github.com/chazu/bfopt/ir"

// ---------------------------------------------------------------------------
// Loop body rules
// ---------------------------------------------------------------------------

// ClearLoop turns [-], [+] and any odd step loop into a clear.
type ClearLoop struct{}

func (ClearLoop) Name() string           { return "clear-loop" }
func (ClearLoop) SizeHint() (lo, hi int) { return 1, 1 }

func (ClearLoop) ShouldRun(body ir.Program) bool {
	v, ok := body[0].(ir.IncVal)
	return ok && v.Offset == 0 && v.Value%2 != 0
}

func (ClearLoop) Apply(body ir.Program) (ir.Change, bool) {
	return ir.Replace(ir.Clear()), true
}

// ClearIf turns an IfNz that only writes the current cell into a clear,
// since the block clears the cell on exit.
type ClearIf struct{}

func (ClearIf) Name() string           { return "clear-if" }
func (ClearIf) SizeHint() (lo, hi int) { return 1, -1 }

func (ClearIf) ShouldRun(body ir.Program) bool {
	for _, ins := range body {
		off, ok := singleWrite(ins)
		if !ok || off != 0 {
			return false
		}
	}
	return true
}

func (ClearIf) Apply(body ir.Program) (ir.Change, bool) {
	return ir.Replace(ir.Clear()), true
}

// FindZeroLoop turns [>] and [<<<] style scans into a FindZero.
type FindZeroLoop struct{}

func (FindZeroLoop) Name() string           { return "find-zero" }
func (FindZeroLoop) SizeHint() (lo, hi int) { return 1, 1 }

func (FindZeroLoop) ShouldRun(body ir.Program) bool {
	m, ok := body[0].(ir.MovePtr)
	return ok && m.Offset != 0
}

func (FindZeroLoop) Apply(body ir.Program) (ir.Change, bool) {
	return ir.Replace(ir.Find(body[0].(ir.MovePtr).Offset)), true
}

// SubCellLoop turns a loop that decrements the current cell together with
// one other cell into a subtraction.
type SubCellLoop struct{}

func (SubCellLoop) Name() string           { return "sub-cell" }
func (SubCellLoop) SizeHint() (lo, hi int) { return 1, 1 }

func (SubCellLoop) ShouldRun(body ir.Program) bool {
	_, ok := subTarget(body[0])
	return ok
}

func (SubCellLoop) Apply(body ir.Program) (ir.Change, bool) {
	k, ok := subTarget(body[0])
	if !ok {
		return ir.Change{}, false
	}
	return ir.Replace(ir.SubCell(k)), true
}

func subTarget(ins ir.Instruction) (ir.Offset, bool) {
	v, ok := ins.(ir.IncVals)
	if !ok || v.Value != -1 || len(v.Offsets) != 2 {
		return 0, false
	}
	switch {
	case v.Offsets[0] == 0 && v.Offsets[1] != 0:
		return v.Offsets[1], true
	case v.Offsets[1] == 0 && v.Offsets[0] != 0:
		return v.Offsets[0], true
	}
	return 0, false
}

// MoveLoop turns a pointer-neutral loop of additions that steps the current
// cell by an odd amount into Copy superinstructions followed by a Move. The
// loop runs c * inverse(-d0) times for a starting value c, so every other
// cell gains a fixed multiple of c.
type MoveLoop struct{}

func (MoveLoop) Name() string           { return "move-loop" }
func (MoveLoop) SizeHint() (lo, hi int) { return 1, -1 }

func (MoveLoop) ShouldRun(body ir.Program) bool {
	_, ok := moveTargets(body)
	return ok
}

func (MoveLoop) Apply(body ir.Program) (ir.Change, bool) {
	targets, ok := moveTargets(body)
	if !ok {
		return ir.Change{}, false
	}
	if len(targets) == 0 {
		return ir.Replace(ir.Clear()), true
	}
	out := make([]ir.Instruction, 0, len(targets))
	for i, t := range targets {
		action := ir.ActionCopy
		if i == len(targets)-1 {
			action = ir.ActionMove
		}
		out = append(out, ir.Scale(action, t.offset, t.factor))
	}
	return ir.Swap(out...), true
}

type moveTarget struct {
	offset ir.Offset
	factor int8
}

// moveTargets returns the cells a move loop adds into, sorted by offset.
func moveTargets(body ir.Program) ([]moveTarget, bool) {
	deltas := make(map[ir.Offset]uint8)
	var ptr ir.Offset
	add := func(off ir.Offset, v int8) { deltas[ptr+off] += uint8(v) }

	for _, ins := range body {
		switch v := ins.(type) {
		case ir.IncVal:
			add(v.Offset, v.Value)
		case ir.IncVals:
			for _, o := range v.Offsets {
				add(o, v.Value)
			}
		case ir.IncRange:
			for o := v.Start; o <= v.End; o++ {
				add(o, v.Value)
			}
		case ir.MovePtr:
			ptr += v.Offset
		default:
			return nil, false
		}
	}
	d0 := deltas[0]
	if ptr != 0 || d0%2 == 0 {
		return nil, false
	}

	step := -inverse(d0)
	offs := make([]ir.Offset, 0, len(deltas))
	for o, d := range deltas {
		if o != 0 && d != 0 {
			offs = append(offs, o)
		}
	}
	offs = ir.SortOffsets(offs)
	targets := make([]moveTarget, len(offs))
	for i, o := range offs {
		targets[i] = moveTarget{offset: o, factor: int8(step * deltas[o])}
	}
	return targets, true
}

// LoopToIf turns a loop whose body always leaves the current cell zero into
// an IfNz, since it runs at most once. A trailing clear becomes implicit.
type LoopToIf struct{}

func (LoopToIf) Name() string           { return "loop-to-if" }
func (LoopToIf) SizeHint() (lo, hi int) { return 1, -1 }

func (LoopToIf) ShouldRun(body ir.Program) bool {
	return ir.IsZeroingCell(body[len(body)-1])
}

func (LoopToIf) Apply(body ir.Program) (ir.Change, bool) {
	if s, ok := body[len(body)-1].(ir.SetVal); ok && s == (ir.SetVal{}) {
		body = body[:len(body)-1]
	}
	return ir.Replace(ir.IfNz{Body: body}), true
}

// ---------------------------------------------------------------------------
// Superinstruction fusion
// ---------------------------------------------------------------------------

// ScaleSet turns a clear of the target followed by a Move into a Set.
type ScaleSet struct{}

func (ScaleSet) Name() string { return "scale-set" }
func (ScaleSet) Size() int    { return 2 }

func (ScaleSet) ShouldRun(w []ir.Instruction) bool {
	s, ok1 := w[0].(ir.SetVal)
	m, ok2 := w[1].(ir.ScaleAnd)
	return ok1 && ok2 && s.Value == 0 && m.Action == ir.ActionMove &&
		m.Offset != 0 && s.Offset == m.Offset
}

func (ScaleSet) Apply(w []ir.Instruction) (ir.Change, bool) {
	m := w[1].(ir.ScaleAnd)
	return ir.Replace(ir.Scale(ir.ActionSet, m.Offset, m.Factor)), true
}

// ScaleTake folds a Move and a pointer move to its target into a Take.
type ScaleTake struct{}

func (ScaleTake) Name() string { return "scale-take" }
func (ScaleTake) Size() int    { return 2 }

func (ScaleTake) ShouldRun(w []ir.Instruction) bool {
	s, ok1 := w[0].(ir.ScaleAnd)
	m, ok2 := w[1].(ir.MovePtr)
	return ok1 && ok2 && s.Action == ir.ActionMove && s.Offset == m.Offset && m.Offset != 0
}

func (ScaleTake) Apply(w []ir.Instruction) (ir.Change, bool) {
	s := w[0].(ir.ScaleAnd)
	return ir.Replace(ir.Scale(ir.ActionTake, s.Offset, s.Factor)), true
}

// ScaleFetch turns a round trip that moves a remote cell home into a Fetch.
type ScaleFetch struct{}

func (ScaleFetch) Name() string { return "scale-fetch" }
func (ScaleFetch) Size() int    { return 3 }

func (ScaleFetch) ShouldRun(w []ir.Instruction) bool {
	a, ok1 := w[0].(ir.MovePtr)
	s, ok2 := w[1].(ir.ScaleAnd)
	b, ok3 := w[2].(ir.MovePtr)
	return ok1 && ok2 && ok3 && a.Offset != 0 && s.Action == ir.ActionMove &&
		s.Offset == -a.Offset && b.Offset == -a.Offset
}

func (ScaleFetch) Apply(w []ir.Instruction) (ir.Change, bool) {
	x := w[0].(ir.MovePtr).Offset
	s := w[1].(ir.ScaleAnd)
	return ir.Replace(ir.Scale(ir.ActionFetch, x, s.Factor)), true
}

// ScaleFetchTake turns a move out followed by a Take back into a Fetch.
type ScaleFetchTake struct{}

func (ScaleFetchTake) Name() string { return "scale-fetch-take" }
func (ScaleFetchTake) Size() int    { return 2 }

func (ScaleFetchTake) ShouldRun(w []ir.Instruction) bool {
	m, ok1 := w[0].(ir.MovePtr)
	s, ok2 := w[1].(ir.ScaleAnd)
	return ok1 && ok2 && m.Offset != 0 && s.Action == ir.ActionTake && s.Offset == -m.Offset
}

func (ScaleFetchTake) Apply(w []ir.Instruction) (ir.Change, bool) {
	x := w[0].(ir.MovePtr).Offset
	s := w[1].(ir.ScaleAnd)
	return ir.Replace(ir.Scale(ir.ActionFetch, x, s.Factor)), true
}
