package opt

import "github.com/chazu/bfopt/ir"

// MergeInc folds two increments of the same cell.
type MergeInc struct{}

func (MergeInc) Name() string { return "merge-inc" }
func (MergeInc) Size() int    { return 2 }

func (MergeInc) ShouldRun(w []ir.Instruction) bool {
	a, ok1 := w[0].(ir.IncVal)
	b, ok2 := w[1].(ir.IncVal)
	return ok1 && ok2 && a.Offset == b.Offset
}

func (MergeInc) Apply(w []ir.Instruction) (ir.Change, bool) {
	a := w[0].(ir.IncVal)
	b := w[1].(ir.IncVal)
	return ir.Replace(ir.IncAt(a.Value+b.Value, a.Offset)), true
}

// MergeMove folds two pointer moves.
type MergeMove struct{}

func (MergeMove) Name() string { return "merge-move" }
func (MergeMove) Size() int    { return 2 }

func (MergeMove) ShouldRun(w []ir.Instruction) bool {
	_, ok1 := w[0].(ir.MovePtr)
	_, ok2 := w[1].(ir.MovePtr)
	return ok1 && ok2
}

func (MergeMove) Apply(w []ir.Instruction) (ir.Change, bool) {
	a := w[0].(ir.MovePtr)
	b := w[1].(ir.MovePtr)
	return ir.Replace(ir.Move(a.Offset + b.Offset)), true
}

// SetInc folds an increment into the store before it.
type SetInc struct{}

func (SetInc) Name() string { return "set-inc" }
func (SetInc) Size() int    { return 2 }

func (SetInc) ShouldRun(w []ir.Instruction) bool {
	s, ok1 := w[0].(ir.SetVal)
	i, ok2 := w[1].(ir.IncVal)
	return ok1 && ok2 && s.Offset == i.Offset
}

func (SetInc) Apply(w []ir.Instruction) (ir.Change, bool) {
	s := w[0].(ir.SetVal)
	i := w[1].(ir.IncVal)
	return ir.Replace(ir.SetAt(s.Value+uint8(i.Value), s.Offset)), true
}

// MergeWrite folds repeated output of the same cell.
type MergeWrite struct{}

func (MergeWrite) Name() string { return "merge-write" }
func (MergeWrite) Size() int    { return 2 }

func (MergeWrite) ShouldRun(w []ir.Instruction) bool {
	a, ok1 := w[0].(ir.Write)
	b, ok2 := w[1].(ir.Write)
	return ok1 && ok2 && a.Offset == b.Offset
}

func (MergeWrite) Apply(w []ir.Instruction) (ir.Change, bool) {
	a := w[0].(ir.Write)
	b := w[1].(ir.Write)
	return ir.Replace(ir.OutAt(a.Count+b.Count, a.Offset)), true
}
