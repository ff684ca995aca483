// Package opt rewrites ir programs to a fixpoint. Rules implement one of
// four pass interfaces; runners adapt the window and loop rules into whole
// program passes, and the Optimizer sweeps them until nothing changes.
package opt

import (
	"github.com/tliron/commonlog"

	"github.com/chazu/bfopt/ir"
)

var log = commonlog.GetLogger("bfopt.opt")

// Pass rewrites a whole program level.
type Pass interface {
	Name() string

	// Run rewrites prog in place and reports whether anything changed.
	Run(prog *ir.Program) bool

	// RunOnLoops and RunOnIfs report whether the pass should also be run
	// on the bodies of DynamicLoop and IfNz blocks.
	RunOnLoops() bool
	RunOnIfs() bool
}

// PeepholePass rewrites fixed-size windows of instructions.
type PeepholePass interface {
	Name() string
	Size() int

	// ShouldRun is a cheap filter. When it returns true Apply must return
	// a change.
	ShouldRun(window []ir.Instruction) bool
	Apply(window []ir.Instruction) (ir.Change, bool)
}

// RangePeepholePass rewrites windows of any length in [lo, hi].
type RangePeepholePass interface {
	Name() string
	Range() (lo, hi int)
	ShouldRun(window []ir.Instruction) bool
	Apply(window []ir.Instruction) (ir.Change, bool)
}

// LoopPass rewrites a block given only its body. The returned change
// applies to the block instruction itself.
type LoopPass interface {
	Name() string

	// SizeHint bounds the body lengths the pass can match. A negative hi
	// means unbounded.
	SizeHint() (lo, hi int)
	ShouldRun(body ir.Program) bool
	Apply(body ir.Program) (ir.Change, bool)
}

// profiled is implemented by runners that report into a Profiler.
type profiled interface {
	attach(p *Profiler)
}

// RunRecursive runs p over prog, then over the bodies of every block p opts
// into, at any depth.
func RunRecursive(p Pass, prog *ir.Program) bool {
	changed := p.Run(prog)
	for i, ins := range *prog {
		var descend bool
		switch ins.(type) {
		case ir.DynamicLoop:
			descend = p.RunOnLoops()
		case ir.IfNz:
			descend = p.RunOnIfs()
		}
		if !descend {
			continue
		}
		b := ins.(ir.Block)
		body := append(ir.Program(nil), b.Children()...)
		if RunRecursive(p, &body) {
			(*prog)[i] = b.WithChildren(body)
			changed = true
		}
	}
	return changed
}
