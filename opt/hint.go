package opt

import "github.com/chazu/bfopt/ir"

// HintAfterWrite records the value of a stored cell after it is written
// out, when the next instruction can make use of it. The Write keeps the
// store from being fused with what follows, the hint carries the value past it.
type HintAfterWrite struct{}

func (HintAfterWrite) Name() string { return "hint-after-write" }
func (HintAfterWrite) Size() int    { return 3 }

func (HintAfterWrite) ShouldRun(w []ir.Instruction) bool {
	s, ok1 := w[0].(ir.SetVal)
	out, ok2 := w[1].(ir.Write)
	if !ok1 || !ok2 || out.Offset != s.Offset {
		return false
	}
	if inc, ok := w[2].(ir.IncVal); ok {
		return inc.Offset == s.Offset
	}
	return s.Offset == 0 && isTest(w[2])
}

func (HintAfterWrite) Apply(w []ir.Instruction) (ir.Change, bool) {
	s := w[0].(ir.SetVal)
	return ir.Swap(w[0], w[1], ir.Known(s.Value, s.Offset), w[2]), true
}

// HintFoldInc folds an increment of a cell with a known value into a store.
type HintFoldInc struct{}

func (HintFoldInc) Name() string { return "hint-fold-inc" }
func (HintFoldInc) Size() int    { return 2 }

func (HintFoldInc) ShouldRun(w []ir.Instruction) bool {
	h, ok1 := w[0].(ir.KnownValue)
	inc, ok2 := w[1].(ir.IncVal)
	return ok1 && ok2 && h.Known && h.Offset == inc.Offset
}

func (HintFoldInc) Apply(w []ir.Instruction) (ir.Change, bool) {
	h := w[0].(ir.KnownValue)
	inc := w[1].(ir.IncVal)
	return ir.Replace(ir.SetAt(h.Value+uint8(inc.Value), h.Offset)), true
}

// HintInlineIf inlines an IfNz whose cell is known to be non-zero. The
// block's exit clear is kept as an explicit Clear after the body.
type HintInlineIf struct{}

func (HintInlineIf) Name() string        { return "hint-inline-if" }
func (HintInlineIf) Range() (lo, hi int) { return 2, 3 }

func (HintInlineIf) ShouldRun(w []ir.Instruction) bool {
	if _, ok := w[len(w)-1].(ir.IfNz); !ok {
		return false
	}
	v, ok := knownBeforeBlock(w)
	return ok && v != 0
}

func (HintInlineIf) Apply(w []ir.Instruction) (ir.Change, bool) {
	block := w[len(w)-1].(ir.IfNz)
	out := make([]ir.Instruction, 0, len(w)+len(block.Body))
	out = append(out, w[:len(w)-1]...)
	out = append(out, block.Body...)
	out = append(out, ir.Clear())
	return ir.Swap(out...), true
}

// RemoveTrailingHints drops hints at the end of a program or block body,
// where nothing can consume them.
type RemoveTrailingHints struct{}

func (RemoveTrailingHints) Name() string     { return "remove-trailing-hints" }
func (RemoveTrailingHints) RunOnLoops() bool { return true }
func (RemoveTrailingHints) RunOnIfs() bool   { return true }

func (RemoveTrailingHints) Run(prog *ir.Program) bool {
	p := *prog
	n := len(p)
	for n > 0 {
		if _, ok := p[n-1].(ir.KnownValue); !ok {
			break
		}
		n--
	}
	if n == len(p) {
		return false
	}
	*prog = p[:n]
	return true
}
