// Package ir defines the instruction tree the optimizer rewrites: a closed set
// of tape operations, block instructions that own nested programs, and the
// Change values rules use to describe rewrites.
package ir

import "sort"

// MaxLoopUnrolling is the largest iteration count a constant loop is unrolled to.
const MaxLoopUnrolling = 32

// MaxUnrolledLength caps the number of instructions a single unrolling may emit.
const MaxUnrolledLength = 256

// Offset is a cell position relative to the data pointer. The zero value is
// the current cell.
type Offset int

// Instruction is one IR operation. The set of implementations is closed.
type Instruction interface {
	String() string
	isInstruction()
}

// Program is an ordered instruction sequence. Blocks own their child Program.
type Program []Instruction

// ---------------------------------------------------------------------------
// Scalar operations
// ---------------------------------------------------------------------------

// IncVal adds Value to the cell at Offset.
type IncVal struct {
	Value  int8
	Offset Offset
}

// SetVal stores Value in the cell at Offset. A zero Value clears the cell.
type SetVal struct {
	Value  uint8
	Offset Offset
}

// MovePtr shifts the data pointer.
type MovePtr struct {
	Offset Offset
}

// FindZero shifts the pointer by Offset until the current cell is zero.
type FindZero struct {
	Offset Offset
}

// Write outputs the cell at Offset Count times.
type Write struct {
	Count  int
	Offset Offset
}

// Read stores the next input byte in the current cell.
type Read struct{}

// ---------------------------------------------------------------------------
// Blocks
// ---------------------------------------------------------------------------

// Block is implemented by instructions owning a nested program.
type Block interface {
	Instruction
	Children() Program
	// WithChildren returns a copy of the block holding body.
	WithChildren(body Program) Block
}

// DynamicLoop runs Body while the current cell is non-zero.
type DynamicLoop struct {
	Body Program
}

// IfNz runs Body once when the current cell is non-zero, then clears the cell
// the pointer rests on.
type IfNz struct {
	Body Program
}

func (l DynamicLoop) Children() Program { return l.Body }
func (l IfNz) Children() Program        { return l.Body }

func (l DynamicLoop) WithChildren(body Program) Block { return DynamicLoop{Body: body} }
func (l IfNz) WithChildren(body Program) Block        { return IfNz{Body: body} }

// ---------------------------------------------------------------------------
// SIMD, superinstructions, spans
// ---------------------------------------------------------------------------

// IncVals adds Value at every offset in Offsets.
type IncVals struct {
	Value   int8
	Offsets []Offset
}

// SetVals stores Value at every offset in Offsets.
type SetVals struct {
	Value   uint8
	Offsets []Offset
}

// Action selects what a ScaleAnd does with the scaled current cell.
type Action uint8

const (
	// ActionMove adds the scaled cell to the target and clears the current cell.
	ActionMove Action = iota
	// ActionTake is ActionMove followed by moving the pointer to the target.
	ActionTake
	// ActionSet stores the scaled cell in the target and clears the current cell.
	ActionSet
	// ActionFetch pulls the scaled target into the current cell and clears the target.
	ActionFetch
	// ActionCopy adds the scaled cell to the target and keeps the current cell.
	ActionCopy
)

var actionNames = [...]string{"move", "take", "set", "fetch", "copy"}

// String returns the lowercase action name.
func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return "action?"
}

// ScaleAnd multiplies the current cell by Factor and applies Action at Offset.
// For ActionFetch the scaled cell is the one at Offset.
type ScaleAnd struct {
	Action Action
	Offset Offset
	Factor int8
}

// IncRange adds Value to every cell in [Start, End].
type IncRange struct {
	Start, End Offset
	Value      int8
}

// SetRange stores Value in every cell in [Start, End].
type SetRange struct {
	Start, End Offset
	Value      uint8
}

// ---------------------------------------------------------------------------
// Annotations and markers
// ---------------------------------------------------------------------------

// KnownValue records that the cell at Offset statically holds Value. When
// Known is false the cell is explicitly unknown. It has no runtime effect.
type KnownValue struct {
	Value  uint8
	Known  bool
	Offset Offset
}

// Boundary is a point instructions must not be reordered across.
type Boundary struct{}

// Start marks the start of the program, where every cell is zero.
type Start struct{}

func (IncVal) isInstruction()      {}
func (SetVal) isInstruction()      {}
func (MovePtr) isInstruction()     {}
func (FindZero) isInstruction()    {}
func (Write) isInstruction()       {}
func (Read) isInstruction()        {}
func (DynamicLoop) isInstruction() {}
func (IfNz) isInstruction()        {}
func (IncVals) isInstruction()     {}
func (SetVals) isInstruction()     {}
func (ScaleAnd) isInstruction()    {}
func (IncRange) isInstruction()    {}
func (SetRange) isInstruction()    {}
func (KnownValue) isInstruction()  {}
func (Boundary) isInstruction()    {}
func (Start) isInstruction()       {}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

// Inc returns an increment of the current cell. Inc(0) is valid dead code.
func Inc(v int8) Instruction { return IncVal{Value: v} }

// IncAt returns an increment of the cell at off.
func IncAt(v int8, off Offset) Instruction { return IncVal{Value: v, Offset: off} }

// Set returns a store into the current cell.
func Set(v uint8) Instruction { return SetVal{Value: v} }

// SetAt returns a store into the cell at off.
func SetAt(v uint8, off Offset) Instruction { return SetVal{Value: v, Offset: off} }

// Clear zeroes the current cell.
func Clear() Instruction { return SetVal{} }

// ClearAt zeroes the cell at off.
func ClearAt(off Offset) Instruction { return SetVal{Offset: off} }

// Move returns a pointer shift.
func Move(off Offset) Instruction { return MovePtr{Offset: off} }

// Find returns a scan for the next zero cell in steps of off.
func Find(off Offset) Instruction { return FindZero{Offset: off} }

// Out writes the current cell once.
func Out() Instruction { return Write{Count: 1} }

// OutAt writes the cell at off count times.
func OutAt(count int, off Offset) Instruction { return Write{Count: count, Offset: off} }

// In reads one byte into the current cell.
func In() Instruction { return Read{} }

// Loop builds a DynamicLoop from body.
func Loop(body ...Instruction) Instruction { return DynamicLoop{Body: Program(body)} }

// If builds an IfNz from body.
func If(body ...Instruction) Instruction { return IfNz{Body: Program(body)} }

// Incs builds an IncVals with sorted, deduplicated offsets.
func Incs(v int8, offs ...Offset) Instruction {
	return IncVals{Value: v, Offsets: SortOffsets(offs)}
}

// Sets builds a SetVals with sorted, deduplicated offsets.
func Sets(v uint8, offs ...Offset) Instruction {
	return SetVals{Value: v, Offsets: SortOffsets(offs)}
}

// Scale builds a ScaleAnd superinstruction.
func Scale(a Action, off Offset, factor int8) Instruction {
	return ScaleAnd{Action: a, Offset: off, Factor: factor}
}

// SubCell subtracts the current cell from the cell at off and clears it.
func SubCell(off Offset) Instruction {
	return ScaleAnd{Action: ActionMove, Offset: off, Factor: -1}
}

// IncSpan builds an IncRange, ordering the bounds.
func IncSpan(start, end Offset, v int8) Instruction {
	if start > end {
		start, end = end, start
	}
	return IncRange{Start: start, End: end, Value: v}
}

// SetSpan builds a SetRange, ordering the bounds.
func SetSpan(start, end Offset, v uint8) Instruction {
	if start > end {
		start, end = end, start
	}
	return SetRange{Start: start, End: end, Value: v}
}

// Known builds a hint that the cell at off holds v.
func Known(v uint8, off Offset) Instruction {
	return KnownValue{Value: v, Known: true, Offset: off}
}

// Unknown builds a hint that the cell at off is not statically known.
func Unknown(off Offset) Instruction { return KnownValue{Offset: off} }

// SortOffsets returns a sorted copy of offs without duplicates.
func SortOffsets(offs []Offset) []Offset {
	out := make([]Offset, 0, len(offs))
	seen := make(map[Offset]bool, len(offs))
	for _, o := range offs {
		if !seen[o] {
			seen[o] = true
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
