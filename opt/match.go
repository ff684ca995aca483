package opt

import "github.com/chazu/bfopt/ir"

// knownBeforeBlock reports the value the block ending the window will test,
// when the preceding instructions pin it down. The window is either
// [source, block] or [source, MovePtr(o), block].
func knownBeforeBlock(w []ir.Instruction) (uint8, bool) {
	switch len(w) {
	case 2:
		return knownAt(w[0], 0, true)
	case 3:
		m, ok := w[1].(ir.MovePtr)
		if !ok {
			return 0, false
		}
		return knownAt(w[0], m.Offset, m.Offset == 0)
	}
	return 0, false
}

// knownAt returns the value ins leaves in the cell at off.
func knownAt(ins ir.Instruction, off ir.Offset, allowZeroing bool) (uint8, bool) {
	switch v := ins.(type) {
	case ir.SetVal:
		if v.Offset == off {
			return v.Value, true
		}
	case ir.KnownValue:
		if v.Known && v.Offset == off {
			return v.Value, true
		}
	case ir.SetVals:
		if hasOffset(v.Offsets, off) {
			return v.Value, true
		}
	case ir.SetRange:
		if v.Start <= off && off <= v.End {
			return v.Value, true
		}
	}
	if allowZeroing && off == 0 && ir.IsZeroingCell(ins) {
		return 0, true
	}
	return 0, false
}

// isTest reports whether ins branches on the current cell.
func isTest(ins ir.Instruction) bool {
	switch ins.(type) {
	case ir.DynamicLoop, ir.IfNz, ir.FindZero:
		return true
	}
	return false
}

func hasOffset(offs []ir.Offset, o ir.Offset) bool {
	for _, x := range offs {
		if x == o {
			return true
		}
	}
	return false
}

func isContiguous(offs []ir.Offset) bool {
	if len(offs) < 2 {
		return false
	}
	sorted := ir.SortOffsets(offs)
	if len(sorted) != len(offs) {
		return false
	}
	return sorted[len(sorted)-1]-sorted[0] == ir.Offset(len(sorted)-1)
}

func adjacent(a, b ir.Offset) bool {
	return a-b == 1 || b-a == 1
}

func disjoint(a, b []ir.Offset) bool {
	for _, x := range a {
		if hasOffset(b, x) {
			return false
		}
	}
	return true
}

func withOffset(offs []ir.Offset, o ir.Offset) []ir.Offset {
	out := make([]ir.Offset, 0, len(offs)+1)
	out = append(out, offs...)
	return ir.SortOffsets(append(out, o))
}

func union(a, b []ir.Offset) []ir.Offset {
	out := make([]ir.Offset, 0, len(a)+len(b))
	out = append(out, a...)
	return ir.SortOffsets(append(out, b...))
}

// singleWrite returns the offset of an IncVal or SetVal.
func singleWrite(ins ir.Instruction) (ir.Offset, bool) {
	switch v := ins.(type) {
	case ir.IncVal:
		return v.Offset, true
	case ir.SetVal:
		return v.Offset, true
	}
	return 0, false
}

// inverse returns the multiplicative inverse of an odd byte modulo 256.
func inverse(d uint8) uint8 {
	x := d
	for i := 0; i < 3; i++ {
		x *= 2 - d*x
	}
	return x
}
