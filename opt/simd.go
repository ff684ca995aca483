package opt

import "github.com/chazu/bfopt/ir"

// SimdInc combines two equal increments of cells that are not neighbours.
// Neighbouring cells are left to SpanInc.
type SimdInc struct{}

func (SimdInc) Name() string { return "simd-inc" }
func (SimdInc) Size() int    { return 2 }

func (SimdInc) ShouldRun(w []ir.Instruction) bool {
	a, ok1 := w[0].(ir.IncVal)
	b, ok2 := w[1].(ir.IncVal)
	return ok1 && ok2 && a.Value != 0 && a.Value == b.Value &&
		a.Offset != b.Offset && !adjacent(a.Offset, b.Offset)
}

func (SimdInc) Apply(w []ir.Instruction) (ir.Change, bool) {
	a := w[0].(ir.IncVal)
	b := w[1].(ir.IncVal)
	return ir.Replace(ir.Incs(a.Value, a.Offset, b.Offset)), true
}

// SimdSet combines two equal stores to cells that are not neighbours.
type SimdSet struct{}

func (SimdSet) Name() string { return "simd-set" }
func (SimdSet) Size() int    { return 2 }

func (SimdSet) ShouldRun(w []ir.Instruction) bool {
	a, ok1 := w[0].(ir.SetVal)
	b, ok2 := w[1].(ir.SetVal)
	return ok1 && ok2 && a.Value == b.Value &&
		a.Offset != b.Offset && !adjacent(a.Offset, b.Offset)
}

func (SimdSet) Apply(w []ir.Instruction) (ir.Change, bool) {
	a := w[0].(ir.SetVal)
	b := w[1].(ir.SetVal)
	return ir.Replace(ir.Sets(a.Value, a.Offset, b.Offset)), true
}

// SimdAbsorb pulls a scalar op with the same value into a neighbouring
// SIMD op. A store the SIMD op already covers is dropped instead.
type SimdAbsorb struct{}

func (SimdAbsorb) Name() string { return "simd-absorb" }
func (SimdAbsorb) Size() int    { return 2 }

func (SimdAbsorb) ShouldRun(w []ir.Instruction) bool {
	_, ok := absorb(w)
	return ok
}

func (SimdAbsorb) Apply(w []ir.Instruction) (ir.Change, bool) {
	return absorb(w)
}

func absorb(w []ir.Instruction) (ir.Change, bool) {
	switch a := w[0].(type) {
	case ir.IncVal:
		if b, ok := w[1].(ir.IncVals); ok && a.Value == b.Value && a.Value != 0 && !hasOffset(b.Offsets, a.Offset) {
			return ir.Replace(ir.IncVals{Value: a.Value, Offsets: withOffset(b.Offsets, a.Offset)}), true
		}
	case ir.IncVals:
		if b, ok := w[1].(ir.IncVal); ok && a.Value == b.Value && a.Value != 0 && !hasOffset(a.Offsets, b.Offset) {
			return ir.Replace(ir.IncVals{Value: a.Value, Offsets: withOffset(a.Offsets, b.Offset)}), true
		}
	case ir.SetVal:
		if b, ok := w[1].(ir.SetVals); ok && a.Value == b.Value {
			if hasOffset(b.Offsets, a.Offset) {
				return ir.RemoveOffset(0), true
			}
			return ir.Replace(ir.SetVals{Value: a.Value, Offsets: withOffset(b.Offsets, a.Offset)}), true
		}
	case ir.SetVals:
		if b, ok := w[1].(ir.SetVal); ok && a.Value == b.Value {
			if hasOffset(a.Offsets, b.Offset) {
				return ir.RemoveOffset(1), true
			}
			return ir.Replace(ir.SetVals{Value: a.Value, Offsets: withOffset(a.Offsets, b.Offset)}), true
		}
	}
	return ir.Change{}, false
}

// SimdMerge joins two adjacent SIMD ops carrying the same value. Increments
// only merge when their cells are disjoint.
type SimdMerge struct{}

func (SimdMerge) Name() string { return "simd-merge" }
func (SimdMerge) Size() int    { return 2 }

func (SimdMerge) ShouldRun(w []ir.Instruction) bool {
	switch a := w[0].(type) {
	case ir.IncVals:
		b, ok := w[1].(ir.IncVals)
		return ok && a.Value == b.Value && disjoint(a.Offsets, b.Offsets)
	case ir.SetVals:
		b, ok := w[1].(ir.SetVals)
		return ok && a.Value == b.Value
	}
	return false
}

func (SimdMerge) Apply(w []ir.Instruction) (ir.Change, bool) {
	switch a := w[0].(type) {
	case ir.IncVals:
		b := w[1].(ir.IncVals)
		return ir.Replace(ir.IncVals{Value: a.Value, Offsets: union(a.Offsets, b.Offsets)}), true
	case ir.SetVals:
		b := w[1].(ir.SetVals)
		return ir.Replace(ir.SetVals{Value: a.Value, Offsets: union(a.Offsets, b.Offsets)}), true
	}
	return ir.Change{}, false
}

// SimdSingle lowers a one-cell SIMD op back to its scalar form.
type SimdSingle struct{}

func (SimdSingle) Name() string { return "simd-single" }
func (SimdSingle) Size() int    { return 1 }

func (SimdSingle) ShouldRun(w []ir.Instruction) bool {
	switch v := w[0].(type) {
	case ir.IncVals:
		return len(v.Offsets) == 1
	case ir.SetVals:
		return len(v.Offsets) == 1
	}
	return false
}

func (SimdSingle) Apply(w []ir.Instruction) (ir.Change, bool) {
	switch v := w[0].(type) {
	case ir.IncVals:
		return ir.Replace(ir.IncAt(v.Value, v.Offsets[0])), true
	case ir.SetVals:
		return ir.Replace(ir.SetAt(v.Value, v.Offsets[0])), true
	}
	return ir.Change{}, false
}

// SimdToSpan turns a SIMD op over a contiguous block of cells into a span.
type SimdToSpan struct{}

func (SimdToSpan) Name() string { return "simd-to-span" }
func (SimdToSpan) Size() int    { return 1 }

func (SimdToSpan) ShouldRun(w []ir.Instruction) bool {
	switch v := w[0].(type) {
	case ir.IncVals:
		return isContiguous(v.Offsets)
	case ir.SetVals:
		return isContiguous(v.Offsets)
	}
	return false
}

func (SimdToSpan) Apply(w []ir.Instruction) (ir.Change, bool) {
	switch v := w[0].(type) {
	case ir.IncVals:
		offs := ir.SortOffsets(v.Offsets)
		return ir.Replace(ir.IncSpan(offs[0], offs[len(offs)-1], v.Value)), true
	case ir.SetVals:
		offs := ir.SortOffsets(v.Offsets)
		return ir.Replace(ir.SetSpan(offs[0], offs[len(offs)-1], v.Value)), true
	}
	return ir.Change{}, false
}
