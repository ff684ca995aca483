package opt

import "github.com/chazu/bfopt/ir"

// SpanInc turns equal increments of neighbouring cells into a span.
type SpanInc struct{}

func (SpanInc) Name() string { return "span-inc" }
func (SpanInc) Size() int    { return 2 }

func (SpanInc) ShouldRun(w []ir.Instruction) bool {
	a, ok1 := w[0].(ir.IncVal)
	b, ok2 := w[1].(ir.IncVal)
	return ok1 && ok2 && a.Value != 0 && a.Value == b.Value && adjacent(a.Offset, b.Offset)
}

func (SpanInc) Apply(w []ir.Instruction) (ir.Change, bool) {
	a := w[0].(ir.IncVal)
	b := w[1].(ir.IncVal)
	return ir.Replace(ir.IncSpan(a.Offset, b.Offset, a.Value)), true
}

// SpanSet turns equal stores to neighbouring cells into a span.
type SpanSet struct{}

func (SpanSet) Name() string { return "span-set" }
func (SpanSet) Size() int    { return 2 }

func (SpanSet) ShouldRun(w []ir.Instruction) bool {
	a, ok1 := w[0].(ir.SetVal)
	b, ok2 := w[1].(ir.SetVal)
	return ok1 && ok2 && a.Value == b.Value && adjacent(a.Offset, b.Offset)
}

func (SpanSet) Apply(w []ir.Instruction) (ir.Change, bool) {
	a := w[0].(ir.SetVal)
	b := w[1].(ir.SetVal)
	return ir.Replace(ir.SetSpan(a.Offset, b.Offset, a.Value)), true
}

// SpanExtend grows a span by a scalar op with the same value on either
// side of it, whichever order the two appear in.
type SpanExtend struct{}

func (SpanExtend) Name() string { return "span-extend" }
func (SpanExtend) Size() int    { return 2 }

func (SpanExtend) ShouldRun(w []ir.Instruction) bool {
	_, ok := extend(w[0], w[1])
	if !ok {
		_, ok = extend(w[1], w[0])
	}
	return ok
}

func (SpanExtend) Apply(w []ir.Instruction) (ir.Change, bool) {
	if ins, ok := extend(w[0], w[1]); ok {
		return ir.Replace(ins), true
	}
	if ins, ok := extend(w[1], w[0]); ok {
		return ir.Replace(ins), true
	}
	return ir.Change{}, false
}

func extend(span, scalar ir.Instruction) (ir.Instruction, bool) {
	switch r := span.(type) {
	case ir.IncRange:
		v, ok := scalar.(ir.IncVal)
		if !ok || v.Value != r.Value || r.Value == 0 {
			return nil, false
		}
		switch v.Offset {
		case r.Start - 1:
			return ir.IncSpan(v.Offset, r.End, r.Value), true
		case r.End + 1:
			return ir.IncSpan(r.Start, v.Offset, r.Value), true
		}
	case ir.SetRange:
		v, ok := scalar.(ir.SetVal)
		if !ok || v.Value != r.Value {
			return nil, false
		}
		switch v.Offset {
		case r.Start - 1:
			return ir.SetSpan(v.Offset, r.End, r.Value), true
		case r.End + 1:
			return ir.SetSpan(r.Start, v.Offset, r.Value), true
		}
	}
	return nil, false
}

// SpanMerge joins two spans with the same value. Increment spans must
// touch end to end; store spans may also overlap.
type SpanMerge struct{}

func (SpanMerge) Name() string { return "span-merge" }
func (SpanMerge) Size() int    { return 2 }

func (SpanMerge) ShouldRun(w []ir.Instruction) bool {
	_, ok := mergeSpans(w[0], w[1])
	return ok
}

func (SpanMerge) Apply(w []ir.Instruction) (ir.Change, bool) {
	ins, ok := mergeSpans(w[0], w[1])
	if !ok {
		return ir.Change{}, false
	}
	return ir.Replace(ins), true
}

func mergeSpans(x, y ir.Instruction) (ir.Instruction, bool) {
	switch a := x.(type) {
	case ir.IncRange:
		b, ok := y.(ir.IncRange)
		if !ok || a.Value != b.Value {
			return nil, false
		}
		switch {
		case a.End+1 == b.Start:
			return ir.IncSpan(a.Start, b.End, a.Value), true
		case b.End+1 == a.Start:
			return ir.IncSpan(b.Start, a.End, a.Value), true
		}
	case ir.SetRange:
		b, ok := y.(ir.SetRange)
		if !ok || a.Value != b.Value {
			return nil, false
		}
		if a.End+1 >= b.Start && b.End+1 >= a.Start {
			return ir.SetSpan(min(a.Start, b.Start), max(a.End, b.End), a.Value), true
		}
	}
	return nil, false
}

// SpanSingle lowers a one-cell span back to its scalar form.
type SpanSingle struct{}

func (SpanSingle) Name() string { return "span-single" }
func (SpanSingle) Size() int    { return 1 }

func (SpanSingle) ShouldRun(w []ir.Instruction) bool {
	switch v := w[0].(type) {
	case ir.IncRange:
		return v.Start == v.End
	case ir.SetRange:
		return v.Start == v.End
	}
	return false
}

func (SpanSingle) Apply(w []ir.Instruction) (ir.Change, bool) {
	switch v := w[0].(type) {
	case ir.IncRange:
		return ir.Replace(ir.IncAt(v.Value, v.Start)), true
	case ir.SetRange:
		return ir.Replace(ir.SetAt(v.Value, v.Start)), true
	}
	return ir.Change{}, false
}
