// Package interp executes ir programs on a byte tape.
package interp

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/chazu/bfopt/ir"
)

// DefaultTapeSize is the classic Brainfuck tape length.
const DefaultTapeSize = 30000

var (
	// ErrPointerOutOfRange is returned when an instruction touches a cell
	// outside the tape.
	ErrPointerOutOfRange = errors.New("pointer out of range")

	// ErrStepLimit is returned when a run exceeds its step limit.
	ErrStepLimit = errors.New("step limit exceeded")
)

// Machine is a tape, a data pointer and the I/O streams a program runs
// against. Reads past the end of input store zero.
type Machine struct {
	tape  []byte
	ptr   int
	in    *bufio.Reader
	out   *bufio.Writer
	steps int
	limit int
}

// New creates a machine with size cells. A size of zero or less uses
// DefaultTapeSize. Either stream may be nil.
func New(size int, in io.Reader, out io.Writer) *Machine {
	if size <= 0 {
		size = DefaultTapeSize
	}
	m := &Machine{tape: make([]byte, size)}
	if in != nil {
		m.in = bufio.NewReader(in)
	}
	if out != nil {
		m.out = bufio.NewWriter(out)
	}
	return m
}

// SetStepLimit bounds the number of instructions and loop tests a run may
// execute. Zero removes the bound.
func (m *Machine) SetStepLimit(n int) { m.limit = n }

// Tape returns the tape contents.
func (m *Machine) Tape() []byte { return m.tape }

// Pointer returns the data pointer.
func (m *Machine) Pointer() int { return m.ptr }

// Run executes prog from the current machine state. Output is flushed
// before Run returns, including on error.
func (m *Machine) Run(prog ir.Program) error {
	err := m.exec(prog)
	if m.out != nil {
		if ferr := m.out.Flush(); ferr != nil && err == nil {
			err = fmt.Errorf("flushing output: %w", ferr)
		}
	}
	return err
}

func (m *Machine) exec(prog ir.Program) error {
	for _, ins := range prog {
		if err := m.step(ins); err != nil {
			return err
		}
	}
	return nil
}

// cell returns the tape index of the cell at off.
func (m *Machine) cell(off ir.Offset) (int, error) {
	i := m.ptr + int(off)
	if i < 0 || i >= len(m.tape) {
		return 0, fmt.Errorf("%w: cell %d", ErrPointerOutOfRange, i)
	}
	return i, nil
}

func (m *Machine) tick() error {
	m.steps++
	if m.limit > 0 && m.steps > m.limit {
		return ErrStepLimit
	}
	return nil
}

func (m *Machine) step(ins ir.Instruction) error {
	if err := m.tick(); err != nil {
		return err
	}

	switch v := ins.(type) {
	case ir.IncVal:
		return m.add(v.Offset, uint8(v.Value))

	case ir.SetVal:
		return m.store(v.Offset, v.Value)

	case ir.MovePtr:
		return m.move(v.Offset)

	case ir.FindZero:
		for {
			c, err := m.cell(0)
			if err != nil {
				return err
			}
			if m.tape[c] == 0 {
				return nil
			}
			if err := m.tick(); err != nil {
				return err
			}
			if err := m.move(v.Offset); err != nil {
				return err
			}
		}

	case ir.Write:
		c, err := m.cell(v.Offset)
		if err != nil {
			return err
		}
		if m.out == nil {
			return nil
		}
		for i := 0; i < v.Count; i++ {
			if err := m.out.WriteByte(m.tape[c]); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
		}
		return nil

	case ir.Read:
		c, err := m.cell(0)
		if err != nil {
			return err
		}
		m.tape[c] = 0
		if m.in == nil {
			return nil
		}
		b, err := m.in.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}
		m.tape[c] = b
		return nil

	case ir.DynamicLoop:
		for {
			nz, err := m.nonZero()
			if err != nil || !nz {
				return err
			}
			if err := m.exec(v.Body); err != nil {
				return err
			}
			if err := m.tick(); err != nil {
				return err
			}
		}

	case ir.IfNz:
		nz, err := m.nonZero()
		if err != nil || !nz {
			return err
		}
		if err := m.exec(v.Body); err != nil {
			return err
		}
		return m.store(0, 0)

	case ir.IncVals:
		for _, o := range v.Offsets {
			if err := m.add(o, uint8(v.Value)); err != nil {
				return err
			}
		}
		return nil

	case ir.SetVals:
		for _, o := range v.Offsets {
			if err := m.store(o, v.Value); err != nil {
				return err
			}
		}
		return nil

	case ir.IncRange:
		for o := v.Start; o <= v.End; o++ {
			if err := m.add(o, uint8(v.Value)); err != nil {
				return err
			}
		}
		return nil

	case ir.SetRange:
		for o := v.Start; o <= v.End; o++ {
			if err := m.store(o, v.Value); err != nil {
				return err
			}
		}
		return nil

	case ir.ScaleAnd:
		return m.scale(v)

	case ir.KnownValue, ir.Boundary, ir.Start:
		return nil
	}
	return fmt.Errorf("unknown instruction %T", ins)
}

func (m *Machine) scale(s ir.ScaleAnd) error {
	src, err := m.cell(0)
	if err != nil {
		return err
	}
	dst, err := m.cell(s.Offset)
	if err != nil {
		return err
	}
	f := uint8(s.Factor)

	switch s.Action {
	case ir.ActionMove:
		v := m.tape[src] * f
		m.tape[src] = 0
		m.tape[dst] += v
	case ir.ActionTake:
		v := m.tape[src] * f
		m.tape[src] = 0
		m.tape[dst] += v
		m.ptr = dst
	case ir.ActionSet:
		v := m.tape[src] * f
		m.tape[src] = 0
		m.tape[dst] = v
	case ir.ActionFetch:
		v := m.tape[dst] * f
		m.tape[dst] = 0
		m.tape[src] += v
	case ir.ActionCopy:
		m.tape[dst] += m.tape[src] * f
	default:
		return fmt.Errorf("unknown scale action %d", s.Action)
	}
	return nil
}

func (m *Machine) nonZero() (bool, error) {
	c, err := m.cell(0)
	if err != nil {
		return false, err
	}
	return m.tape[c] != 0, nil
}

func (m *Machine) add(off ir.Offset, v uint8) error {
	c, err := m.cell(off)
	if err != nil {
		return err
	}
	m.tape[c] += v
	return nil
}

func (m *Machine) store(off ir.Offset, v uint8) error {
	c, err := m.cell(off)
	if err != nil {
		return err
	}
	m.tape[c] = v
	return nil
}

func (m *Machine) move(off ir.Offset) error {
	p := m.ptr + int(off)
	if p < 0 || p >= len(m.tape) {
		return fmt.Errorf("%w: moving to %d", ErrPointerOutOfRange, p)
	}
	m.ptr = p
	return nil
}
