package opt

import "github.com/chazu/bfopt/ir"

// UnrollConstantLoop replaces a loop that runs a statically known number of
// times with that many copies of its body. The loop must be pointer
// neutral, free of I/O and nested blocks, and touch its own cell only
// through a single decrement.
type UnrollConstantLoop struct{}

func (UnrollConstantLoop) Name() string        { return "unroll-constant-loop" }
func (UnrollConstantLoop) Range() (lo, hi int) { return 2, 3 }

func (UnrollConstantLoop) ShouldRun(w []ir.Instruction) bool {
	_, ok := unrolled(w)
	return ok
}

func (UnrollConstantLoop) Apply(w []ir.Instruction) (ir.Change, bool) {
	out, ok := unrolled(w)
	if !ok {
		return ir.Change{}, false
	}
	return ir.Swap(out...), true
}

func unrolled(w []ir.Instruction) ([]ir.Instruction, bool) {
	loop, ok := w[len(w)-1].(ir.DynamicLoop)
	if !ok {
		return nil, false
	}
	n, ok := knownBeforeBlock(w)
	if !ok || n == 0 || int(n) > ir.MaxLoopUnrolling {
		return nil, false
	}
	rest, ok := countedBody(loop.Body)
	if !ok {
		return nil, false
	}

	size := int(n)*len(rest) + len(w)
	if size > ir.MaxUnrolledLength {
		return nil, false
	}
	out := make([]ir.Instruction, 0, size)
	switch w[0].(type) {
	case ir.SetVal, ir.KnownValue:
	default:
		out = append(out, w[0])
	}
	if len(w) == 3 {
		out = append(out, w[1])
	}
	for i := 0; i < int(n); i++ {
		out = append(out, rest.Clone()...)
	}
	out = append(out, ir.Clear())
	return out, true
}

// countedBody returns body without its single decrement of the loop cell.
func countedBody(body ir.Program) (ir.Program, bool) {
	var ptr ir.Offset
	dec := -1
	for i, ins := range body {
		switch v := ins.(type) {
		case ir.MovePtr:
			ptr += v.Offset
			continue
		case ir.IncVal:
			if ptr+v.Offset == 0 {
				if v.Value != -1 || dec >= 0 {
					return nil, false
				}
				dec = i
				continue
			}
		case ir.SetVal, ir.IncVals, ir.SetVals, ir.IncRange, ir.SetRange:
		default:
			return nil, false
		}
		cells, _ := ir.Cells(ins)
		for _, c := range cells {
			if ptr+c == 0 {
				return nil, false
			}
		}
	}
	if dec < 0 || ptr != 0 {
		return nil, false
	}
	rest := make(ir.Program, 0, len(body)-1)
	rest = append(rest, body[:dec]...)
	return append(rest, body[dec+1:]...), true
}
