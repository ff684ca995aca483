package opt

import (
	"github.com/chazu/bfopt/ir"
)

// ---------------------------------------------------------------------------
// Peephole runner
// ---------------------------------------------------------------------------

// PeepholeRunner adapts a PeepholePass into a Pass by sliding a window of
// the pass's size over the program.
type PeepholeRunner[P PeepholePass] struct {
	pass     P
	profiler *Profiler
}

// Peephole wraps p in a runner.
func Peephole[P PeepholePass](p P) *PeepholeRunner[P] {
	return &PeepholeRunner[P]{pass: p}
}

func (r *PeepholeRunner[P]) Name() string       { return r.pass.Name() }
func (r *PeepholeRunner[P]) RunOnLoops() bool   { return true }
func (r *PeepholeRunner[P]) RunOnIfs() bool     { return true }
func (r *PeepholeRunner[P]) attach(p *Profiler) { r.profiler = p }

// Run scans prog once, applying every change the pass produces.
func (r *PeepholeRunner[P]) Run(prog *ir.Program) bool {
	size := r.pass.Size()
	if size <= 0 {
		return false
	}

	changed := false
	for i := 0; i+size <= len(*prog); {
		window := cloneWindow(*prog, i, size)
		if !r.pass.ShouldRun(window) {
			i++
			continue
		}

		c, ok := r.pass.Apply(window)
		if !ok {
			reportNoChange(r.profiler, r.pass.Name(), i, window)
			i++
			continue
		}
		if applyChange(r.profiler, r.pass.Name(), c, prog, &i, window) {
			changed = true
			continue
		}
		i++
	}
	return changed
}

// ---------------------------------------------------------------------------
// Range peephole runner
// ---------------------------------------------------------------------------

// RangePeepholeRunner adapts a RangePeepholePass into a Pass. At each
// position it tries every window length from the smallest to the largest.
type RangePeepholeRunner[P RangePeepholePass] struct {
	pass     P
	profiler *Profiler
}

// RangePeephole wraps p in a runner.
func RangePeephole[P RangePeepholePass](p P) *RangePeepholeRunner[P] {
	return &RangePeepholeRunner[P]{pass: p}
}

func (r *RangePeepholeRunner[P]) Name() string       { return r.pass.Name() }
func (r *RangePeepholeRunner[P]) RunOnLoops() bool   { return true }
func (r *RangePeepholeRunner[P]) RunOnIfs() bool     { return true }
func (r *RangePeepholeRunner[P]) attach(p *Profiler) { r.profiler = p }

// Run scans prog once, applying every change the pass produces.
func (r *RangePeepholeRunner[P]) Run(prog *ir.Program) bool {
	lo, hi := r.pass.Range()
	if lo <= 0 || hi < lo {
		return false
	}

	changed := false
	for i := 0; i+lo <= len(*prog); {
		applied := false
		for limit := lo; limit <= hi && i+limit <= len(*prog); limit++ {
			window := cloneWindow(*prog, i, limit)
			if !r.pass.ShouldRun(window) {
				continue
			}
			c, ok := r.pass.Apply(window)
			if !ok {
				reportNoChange(r.profiler, r.pass.Name(), i, window)
				continue
			}
			if applyChange(r.profiler, r.pass.Name(), c, prog, &i, window) {
				applied = true
				break
			}
		}
		if applied {
			changed = true
			continue
		}
		i++
	}
	return changed
}

// ---------------------------------------------------------------------------
// Loop runners
// ---------------------------------------------------------------------------

// DynamicLoopRunner runs a LoopPass on the body of every DynamicLoop.
type DynamicLoopRunner[P LoopPass] struct {
	pass     P
	profiler *Profiler
}

// OnLoops wraps p in a runner over DynamicLoop bodies.
func OnLoops[P LoopPass](p P) *DynamicLoopRunner[P] {
	return &DynamicLoopRunner[P]{pass: p}
}

func (r *DynamicLoopRunner[P]) Name() string       { return r.pass.Name() }
func (r *DynamicLoopRunner[P]) RunOnLoops() bool   { return true }
func (r *DynamicLoopRunner[P]) RunOnIfs() bool     { return true }
func (r *DynamicLoopRunner[P]) attach(p *Profiler) { r.profiler = p }

func (r *DynamicLoopRunner[P]) Run(prog *ir.Program) bool {
	return runLoopPass(r.pass, r.profiler, prog, func(ins ir.Instruction) (ir.Program, bool) {
		l, ok := ins.(ir.DynamicLoop)
		return l.Body, ok
	})
}

// IfNzRunner runs a LoopPass on the body of every IfNz.
type IfNzRunner[P LoopPass] struct {
	pass     P
	profiler *Profiler
}

// OnIfs wraps p in a runner over IfNz bodies.
func OnIfs[P LoopPass](p P) *IfNzRunner[P] {
	return &IfNzRunner[P]{pass: p}
}

func (r *IfNzRunner[P]) Name() string       { return r.pass.Name() }
func (r *IfNzRunner[P]) RunOnLoops() bool   { return true }
func (r *IfNzRunner[P]) RunOnIfs() bool     { return true }
func (r *IfNzRunner[P]) attach(p *Profiler) { r.profiler = p }

func (r *IfNzRunner[P]) Run(prog *ir.Program) bool {
	return runLoopPass(r.pass, r.profiler, prog, func(ins ir.Instruction) (ir.Program, bool) {
		l, ok := ins.(ir.IfNz)
		return l.Body, ok
	})
}

func runLoopPass[P LoopPass](pass P, prof *Profiler, prog *ir.Program, body func(ir.Instruction) (ir.Program, bool)) bool {
	lo, hi := pass.SizeHint()
	changed := false
	for i := 0; i < len(*prog); {
		b, ok := body((*prog)[i])
		if !ok || len(b) < lo || (hi >= 0 && len(b) > hi) {
			i++
			continue
		}
		b = append(ir.Program(nil), b...)
		if !pass.ShouldRun(b) {
			i++
			continue
		}

		window := cloneWindow(*prog, i, 1)
		c, ok := pass.Apply(b)
		if !ok {
			reportNoChange(prof, pass.Name(), i, window)
			i++
			continue
		}
		if applyChange(prof, pass.Name(), c, prog, &i, window) {
			changed = true
			continue
		}
		i++
	}
	return changed
}

// ---------------------------------------------------------------------------
// Shared helpers
// ---------------------------------------------------------------------------

func cloneWindow(p ir.Program, at, size int) []ir.Instruction {
	w := make([]ir.Instruction, size)
	copy(w, p[at:at+size])
	return w
}

// applyChange applies c to the window at *i and moves the cursor back by
// the rewind Apply reports. A change that leaves the window as it was is
// reported and treated as no change so the scan still advances.
func applyChange(prof *Profiler, name string, c ir.Change, prog *ir.Program, i *int, window []ir.Instruction) bool {
	if (c.Kind == ir.ChangeReplace || c.Kind == ir.ChangeSwap) && c.Instructions.Equal(ir.Program(window)) {
		log.Warning("pass produced a change identical to its window",
			"pass", name, "position", *i, "window", ir.Program(window).String())
		prof.recordWarning(name)
		return false
	}

	changed, rewind := c.Apply(prog, *i, len(window))
	if !changed {
		return false
	}
	prof.recordRewrite(name)
	*i -= rewind
	if *i < 0 {
		*i = 0
	}
	return true
}

func reportNoChange(prof *Profiler, name string, at int, window []ir.Instruction) {
	log.Warning("pass matched a window but produced no change",
		"pass", name, "position", at, "window", ir.Program(window).String())
	prof.recordWarning(name)
}
