// Package scan turns Brainfuck source into a raw ir.Program.
package scan

import (
	"fmt"

	"github.com/chazu/bfopt/ir"
)

// Position represents a source location.
type Position struct {
	Offset int // byte offset
	Line   int // 1-based line number
	Column int // 1-based column number
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// SyntaxError reports an unbalanced bracket.
type SyntaxError struct {
	Pos Position
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// ---------------------------------------------------------------------------
// Scanner
// ---------------------------------------------------------------------------

// Scanner walks Brainfuck source one byte at a time. Bytes other than the
// eight commands and '#' are comments.
type Scanner struct {
	input string
	pos   int // offset of the current byte
	line  int // current line (1-based)
	col   int // current column (1-based)
}

// NewScanner creates a scanner for src.
func NewScanner(src string) *Scanner {
	return &Scanner{input: src, line: 1, col: 1}
}

func (s *Scanner) position() Position {
	return Position{Offset: s.pos, Line: s.line, Column: s.col}
}

func (s *Scanner) peek() byte {
	if s.pos >= len(s.input) {
		return 0
	}
	return s.input[s.pos]
}

func (s *Scanner) advance() {
	if s.input[s.pos] == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	s.pos++
}

// Scan returns the program for src, led by a Start marker. Runs of +- and
// <> are folded into single instructions.
func Scan(src string) (ir.Program, error) {
	return NewScanner(src).Scan()
}

type frame struct {
	open Position
	body ir.Program
}

// Scan reads the whole input.
func (s *Scanner) Scan() (ir.Program, error) {
	stack := []frame{{body: ir.Program{ir.Start{}}}}
	emit := func(ins ir.Instruction) {
		top := &stack[len(stack)-1]
		top.body = append(top.body, ins)
	}

	for s.pos < len(s.input) {
		switch ch := s.peek(); ch {
		case '+', '-':
			var v int8
			for c := s.peek(); c == '+' || c == '-'; c = s.peek() {
				if c == '+' {
					v++
				} else {
					v--
				}
				s.advance()
			}
			emit(ir.Inc(v))
			continue
		case '>', '<':
			var off ir.Offset
			for c := s.peek(); c == '>' || c == '<'; c = s.peek() {
				if c == '>' {
					off++
				} else {
					off--
				}
				s.advance()
			}
			emit(ir.Move(off))
			continue
		case '.':
			emit(ir.Out())
		case ',':
			emit(ir.In())
		case '#':
			emit(ir.Boundary{})
		case '[':
			stack = append(stack, frame{open: s.position()})
		case ']':
			if len(stack) == 1 {
				return nil, &SyntaxError{Pos: s.position(), Msg: "unmatched ']'"}
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			emit(ir.DynamicLoop{Body: top.body})
		}
		s.advance()
	}

	if len(stack) > 1 {
		return nil, &SyntaxError{Pos: stack[len(stack)-1].open, Msg: "unmatched '['"}
	}
	return stack[0].body, nil
}
