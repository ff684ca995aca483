package ir

// PtrMovement returns the net pointer shift of ins. The second result is
// false when the shift is not statically known, as for FindZero or a loop
// whose body moves the pointer.
func PtrMovement(ins Instruction) (Offset, bool) {
	switch v := ins.(type) {
	case MovePtr:
		return v.Offset, true
	case FindZero:
		return 0, false
	case ScaleAnd:
		if v.Action == ActionTake {
			return v.Offset, true
		}
		return 0, true
	case DynamicLoop:
		return blockMovement(v.Body)
	case IfNz:
		return blockMovement(v.Body)
	default:
		return 0, true
	}
}

func blockMovement(body Program) (Offset, bool) {
	m, ok := body.PtrMovement()
	if !ok || m != 0 {
		return 0, false
	}
	return 0, true
}

// PtrMovement returns the summed pointer shift of every instruction in p.
func (p Program) PtrMovement() (Offset, bool) {
	var total Offset
	for _, ins := range p {
		m, ok := PtrMovement(ins)
		if !ok {
			return 0, false
		}
		total += m
	}
	return total, true
}

// IsZeroingCell reports whether the cell under the pointer is guaranteed to
// be zero once ins has run.
func IsZeroingCell(ins Instruction) bool {
	switch v := ins.(type) {
	case SetVal:
		return v.Offset == 0 && v.Value == 0
	case SetVals:
		return v.Value == 0 && containsOffset(v.Offsets, 0)
	case SetRange:
		return v.Value == 0 && v.Start <= 0 && v.End >= 0
	case FindZero, DynamicLoop, IfNz:
		return true
	case ScaleAnd:
		return (v.Action == ActionMove || v.Action == ActionSet) && v.Offset != 0
	default:
		return false
	}
}

// HasIO reports whether ins, or anything nested in it, reads or writes.
func HasIO(ins Instruction) bool {
	switch v := ins.(type) {
	case Write, Read:
		return true
	case DynamicLoop:
		return v.Body.HasIO()
	case IfNz:
		return v.Body.HasIO()
	default:
		return false
	}
}

// HasIO reports whether any instruction in p performs I/O.
func (p Program) HasIO() bool {
	for _, ins := range p {
		if HasIO(ins) {
			return true
		}
	}
	return false
}

// IsBlock reports whether ins owns a nested program.
func IsBlock(ins Instruction) bool {
	_, ok := ins.(Block)
	return ok
}

// IsAnnotation reports whether ins has no runtime effect.
func IsAnnotation(ins Instruction) bool {
	switch ins.(type) {
	case KnownValue, Boundary, Start:
		return true
	}
	return false
}

// OffsetOf returns the single cell ins targets.
func OffsetOf(ins Instruction) (Offset, bool) {
	switch v := ins.(type) {
	case IncVal:
		return v.Offset, true
	case SetVal:
		return v.Offset, true
	case Write:
		return v.Offset, true
	case KnownValue:
		return v.Offset, true
	}
	return 0, false
}

// Shift rebases an offset-parameterised instruction by by cells. It returns
// false for instructions whose meaning depends on the pointer itself.
func Shift(ins Instruction, by Offset) (Instruction, bool) {
	switch v := ins.(type) {
	case IncVal:
		v.Offset += by
		return v, true
	case SetVal:
		v.Offset += by
		return v, true
	case Write:
		v.Offset += by
		return v, true
	case KnownValue:
		v.Offset += by
		return v, true
	case IncVals:
		return IncVals{Value: v.Value, Offsets: shiftOffsets(v.Offsets, by)}, true
	case SetVals:
		return SetVals{Value: v.Value, Offsets: shiftOffsets(v.Offsets, by)}, true
	case IncRange:
		v.Start += by
		v.End += by
		return v, true
	case SetRange:
		v.Start += by
		v.End += by
		return v, true
	}
	return ins, false
}

func shiftOffsets(offs []Offset, by Offset) []Offset {
	out := make([]Offset, len(offs))
	for i, o := range offs {
		out[i] = o + by
	}
	return out
}

// Cells returns the cells ins reads or writes, relative to the pointer
// before it runs. The second result is false when the footprint is not
// statically bounded.
func Cells(ins Instruction) ([]Offset, bool) {
	switch v := ins.(type) {
	case IncVal:
		return []Offset{v.Offset}, true
	case SetVal:
		return []Offset{v.Offset}, true
	case Write:
		return []Offset{v.Offset}, true
	case Read:
		return []Offset{0}, true
	case KnownValue:
		return []Offset{v.Offset}, true
	case MovePtr, Boundary, Start:
		return nil, true
	case IncVals:
		return v.Offsets, true
	case SetVals:
		return v.Offsets, true
	case IncRange:
		return rangeOffsets(v.Start, v.End), true
	case SetRange:
		return rangeOffsets(v.Start, v.End), true
	case ScaleAnd:
		return []Offset{0, v.Offset}, true
	}
	return nil, false
}

func rangeOffsets(start, end Offset) []Offset {
	out := make([]Offset, 0, end-start+1)
	for o := start; o <= end; o++ {
		out = append(out, o)
	}
	return out
}

func containsOffset(offs []Offset, o Offset) bool {
	for _, x := range offs {
		if x == o {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of p.
func (p Program) Clone() Program {
	if p == nil {
		return nil
	}
	out := make(Program, len(p))
	for i, ins := range p {
		out[i] = CloneInstruction(ins)
	}
	return out
}

// CloneInstruction returns a copy of ins sharing no slices with it.
func CloneInstruction(ins Instruction) Instruction {
	switch v := ins.(type) {
	case DynamicLoop:
		return DynamicLoop{Body: v.Body.Clone()}
	case IfNz:
		return IfNz{Body: v.Body.Clone()}
	case IncVals:
		return IncVals{Value: v.Value, Offsets: append([]Offset(nil), v.Offsets...)}
	case SetVals:
		return SetVals{Value: v.Value, Offsets: append([]Offset(nil), v.Offsets...)}
	}
	return ins
}

// Len counts every instruction in p, including nested ones.
func (p Program) Len() int {
	n := 0
	for _, ins := range p {
		n++
		if b, ok := ins.(Block); ok {
			n += b.Children().Len()
		}
	}
	return n
}

// Depth returns the deepest block nesting in p. A flat program has depth 0.
func (p Program) Depth() int {
	deepest := 0
	for _, ins := range p {
		if b, ok := ins.(Block); ok {
			if d := b.Children().Depth() + 1; d > deepest {
				deepest = d
			}
		}
	}
	return deepest
}

// Equal reports whether a and b are the same instruction tree. Nil and empty
// slices compare equal.
func Equal(a, b Instruction) bool {
	switch x := a.(type) {
	case DynamicLoop:
		y, ok := b.(DynamicLoop)
		return ok && x.Body.Equal(y.Body)
	case IfNz:
		y, ok := b.(IfNz)
		return ok && x.Body.Equal(y.Body)
	case IncVals:
		y, ok := b.(IncVals)
		return ok && x.Value == y.Value && equalOffsets(x.Offsets, y.Offsets)
	case SetVals:
		y, ok := b.(SetVals)
		return ok && x.Value == y.Value && equalOffsets(x.Offsets, y.Offsets)
	}
	return a == b
}

// Equal reports whether p and q hold equal instructions in the same order.
func (p Program) Equal(q Program) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if !Equal(p[i], q[i]) {
			return false
		}
	}
	return true
}

func equalOffsets(a, b []Offset) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
