package ir

import (
	"fmt"
	"strings"
)

// The String methods render instructions as equivalent Brainfuck where one
// exists. Instructions with no Brainfuck form render as a braced mnemonic.
// The output is diagnostic only.

func (i IncVal) String() string   { return around(i.Offset, incs(int(i.Value))) }
func (i SetVal) String() string   { return around(i.Offset, "[-]"+incs(int(i.Value))) }
func (i MovePtr) String() string  { return moves(i.Offset) }
func (i FindZero) String() string { return "[" + moves(i.Offset) + "]" }
func (i Write) String() string    { return around(i.Offset, strings.Repeat(".", i.Count)) }
func (Read) String() string       { return "," }

func (l DynamicLoop) String() string { return "[" + l.Body.String() + "]" }
func (l IfNz) String() string        { return "[" + l.Body.String() + "[-]]" }

func (i IncVals) String() string {
	var sb strings.Builder
	for _, o := range i.Offsets {
		sb.WriteString(IncVal{Value: i.Value, Offset: o}.String())
	}
	return sb.String()
}

func (i SetVals) String() string {
	var sb strings.Builder
	for _, o := range i.Offsets {
		sb.WriteString(SetVal{Value: i.Value, Offset: o}.String())
	}
	return sb.String()
}

func (r IncRange) String() string {
	var sb strings.Builder
	for o := r.Start; o <= r.End; o++ {
		sb.WriteString(IncVal{Value: r.Value, Offset: o}.String())
	}
	return sb.String()
}

func (r SetRange) String() string {
	var sb strings.Builder
	for o := r.Start; o <= r.End; o++ {
		sb.WriteString(SetVal{Value: r.Value, Offset: o}.String())
	}
	return sb.String()
}

func (s ScaleAnd) String() string {
	move := "[-" + moves(s.Offset) + incs(int(s.Factor)) + moves(-s.Offset) + "]"
	switch s.Action {
	case ActionMove:
		return move
	case ActionTake:
		return move + moves(s.Offset)
	case ActionSet:
		return around(s.Offset, "[-]") + move
	case ActionFetch:
		return moves(s.Offset) + "[-" + moves(-s.Offset) + incs(int(s.Factor)) + moves(s.Offset) + "]" + moves(-s.Offset)
	default:
		return fmt.Sprintf("{%s %d*%d}", s.Action, s.Offset, s.Factor)
	}
}

func (k KnownValue) String() string {
	if !k.Known {
		return fmt.Sprintf("{unknown @%d}", k.Offset)
	}
	return fmt.Sprintf("{known %d @%d}", k.Value, k.Offset)
}

func (Boundary) String() string { return "#" }
func (Start) String() string    { return "" }

// String concatenates the rendering of every instruction.
func (p Program) String() string {
	var sb strings.Builder
	for _, ins := range p {
		sb.WriteString(ins.String())
	}
	return sb.String()
}

func incs(v int) string {
	if v < 0 {
		return strings.Repeat("-", -v)
	}
	return strings.Repeat("+", v)
}

func moves(off Offset) string {
	if off < 0 {
		return strings.Repeat("<", int(-off))
	}
	return strings.Repeat(">", int(off))
}

func around(off Offset, body string) string {
	return moves(off) + body + moves(-off)
}

// Mnemonic returns a compact one-line description of ins. Blocks are
// described by their kind and length only.
func Mnemonic(ins Instruction) string {
	switch v := ins.(type) {
	case IncVal:
		return fmt.Sprintf("inc %d @%d", v.Value, v.Offset)
	case SetVal:
		return fmt.Sprintf("set %d @%d", v.Value, v.Offset)
	case MovePtr:
		return fmt.Sprintf("move %d", v.Offset)
	case FindZero:
		return fmt.Sprintf("findzero %d", v.Offset)
	case Write:
		return fmt.Sprintf("write x%d @%d", v.Count, v.Offset)
	case Read:
		return "read"
	case DynamicLoop:
		return fmt.Sprintf("loop (%d)", len(v.Body))
	case IfNz:
		return fmt.Sprintf("ifnz (%d)", len(v.Body))
	case IncVals:
		return fmt.Sprintf("incs %d @%v", v.Value, v.Offsets)
	case SetVals:
		return fmt.Sprintf("sets %d @%v", v.Value, v.Offsets)
	case ScaleAnd:
		return fmt.Sprintf("scale-%s @%d *%d", v.Action, v.Offset, v.Factor)
	case IncRange:
		return fmt.Sprintf("incspan %d @%d..%d", v.Value, v.Start, v.End)
	case SetRange:
		return fmt.Sprintf("setspan %d @%d..%d", v.Value, v.Start, v.End)
	case KnownValue:
		if !v.Known {
			return fmt.Sprintf("hint ? @%d", v.Offset)
		}
		return fmt.Sprintf("hint %d @%d", v.Value, v.Offset)
	case Boundary:
		return "boundary"
	case Start:
		return "start"
	}
	return fmt.Sprintf("%T", ins)
}

// Listing returns an indented, numbered listing of p, one instruction per line.
func (p Program) Listing() string {
	var sb strings.Builder
	p.listing(&sb, 0)
	return sb.String()
}

func (p Program) listing(sb *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	for i, ins := range p {
		sb.WriteString(fmt.Sprintf("%s%04d  %s\n", indent, i, Mnemonic(ins)))
		if b, ok := ins.(Block); ok {
			b.Children().listing(sb, depth+1)
		}
	}
}
