package ir

import "fmt"

// ChangeKind identifies how a Change rewrites its window.
type ChangeKind uint8

const (
	// ChangeRemove deletes the whole window.
	ChangeRemove ChangeKind = iota
	// ChangeRemoveOffset deletes one element at a window-relative offset.
	ChangeRemoveOffset
	// ChangeReplace turns the window into a single instruction.
	ChangeReplace
	// ChangeSwap turns the window into any number of instructions.
	ChangeSwap
)

// String returns a human-readable name for the kind.
func (k ChangeKind) String() string {
	switch k {
	case ChangeRemove:
		return "remove"
	case ChangeRemoveOffset:
		return "remove-offset"
	case ChangeReplace:
		return "replace"
	case ChangeSwap:
		return "swap"
	default:
		return fmt.Sprintf("ChangeKind(%d)", k)
	}
}

// Change describes the rewrite a rule wants for one matched window. It is
// consumed once by Apply.
type Change struct {
	Kind         ChangeKind
	Offset       int
	Instructions Program
}

// Remove deletes the window.
func Remove() Change { return Change{Kind: ChangeRemove} }

// RemoveOffset deletes the element off positions from the window start.
// A negative off reaches left of the window.
func RemoveOffset(off int) Change { return Change{Kind: ChangeRemoveOffset, Offset: off} }

// Replace turns the window into ins.
func Replace(ins Instruction) Change {
	return Change{Kind: ChangeReplace, Instructions: Program{ins}}
}

// Swap turns the window into ins, keeping their order.
func Swap(ins ...Instruction) Change {
	return Change{Kind: ChangeSwap, Instructions: Program(ins)}
}

// String describes the change for logs.
func (c Change) String() string {
	switch c.Kind {
	case ChangeRemoveOffset:
		return fmt.Sprintf("remove-offset(%d)", c.Offset)
	case ChangeReplace, ChangeSwap:
		return fmt.Sprintf("%s(%q)", c.Kind, c.Instructions.String())
	default:
		return c.Kind.String()
	}
}

// Apply rewrites the size elements of prog starting at at. It returns
// whether prog changed and how many positions a scanner positioned at at
// must step back because elements before it were removed.
//
// Apply panics when the window, or a RemoveOffset target, lies outside prog.
func (c Change) Apply(prog *Program, at, size int) (bool, int) {
	p := *prog
	if at < 0 || size < 0 || at+size > len(p) {
		panic(fmt.Sprintf("ir: change window [%d:%d] out of range for program of length %d", at, at+size, len(p)))
	}

	switch c.Kind {
	case ChangeRemove:
		*prog = splice(p, at, size, nil)
		return size > 0, 0

	case ChangeRemoveOffset:
		idx := at + c.Offset
		if idx < 0 || idx >= len(p) {
			panic(fmt.Sprintf("ir: remove offset %d from %d out of range for program of length %d", c.Offset, at, len(p)))
		}
		*prog = splice(p, idx, 1, nil)
		if idx < at {
			return true, 1
		}
		return true, 0

	case ChangeReplace, ChangeSwap:
		*prog = splice(p, at, size, c.Instructions)
		return true, 0

	default:
		panic(fmt.Sprintf("ir: unknown change kind %d", c.Kind))
	}
}

// splice replaces p[at:at+n] with repl, returning the resulting program.
func splice(p Program, at, n int, repl Program) Program {
	out := make(Program, 0, len(p)-n+len(repl))
	out = append(out, p[:at]...)
	out = append(out, repl...)
	return append(out, p[at+n:]...)
}
