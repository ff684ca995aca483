package opt

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/chazu/bfopt/ir"
	"github.com/chazu/bfopt/metadata"
)

// DefaultMaxSweeps bounds the number of sweeps Optimize runs. Zero means no
// bound.
const DefaultMaxSweeps = 10000

// DefaultPasses returns the full rule catalog in sweep order.
func DefaultPasses() []Pass {
	return []Pass{
		// Dead code
		SetUntouchedCells{},
		Peephole(RemoveZeroMove{}),
		Peephole(RemoveNoop{}),
		Peephole(RemoveEmptyLoop{}),
		RangePeephole(RemoveDeadLoop{}),
		Peephole(RemoveDeadStore{}),
		Peephole(RemoveInfiniteLoop{}),
		Peephole(RemoveRedundantClear{}),
		Peephole(RemoveRedundantHint{}),
		Peephole(RemoveDoubleBoundary{}),
		RemoveTrailingHints{},

		// Fusion
		Peephole(MergeInc{}),
		Peephole(MergeMove{}),
		Peephole(SetInc{}),
		Peephole(MergeWrite{}),

		// Reordering
		Peephole(OffsetRoundTrip{}),
		Peephole(SinkMove{}),
		Peephole(SortWrites{}),

		// Loops and superinstructions
		OnLoops(ClearLoop{}),
		OnIfs(ClearIf{}),
		OnLoops(FindZeroLoop{}),
		OnLoops(SubCellLoop{}),
		OnLoops(MoveLoop{}),
		OnLoops(LoopToIf{}),
		Peephole(ScaleSet{}),
		Peephole(ScaleTake{}),
		Peephole(ScaleFetch{}),
		Peephole(ScaleFetchTake{}),
		RangePeephole(UnrollConstantLoop{}),

		// Hints
		Peephole(HintAfterWrite{}),
		Peephole(HintFoldInc{}),
		RangePeephole(HintInlineIf{}),

		// SIMD and spans
		Peephole(SimdInc{}),
		Peephole(SimdSet{}),
		Peephole(SimdAbsorb{}),
		Peephole(SimdMerge{}),
		Peephole(SimdSingle{}),
		Peephole(SimdToSpan{}),
		Peephole(SpanInc{}),
		Peephole(SpanSet{}),
		Peephole(SpanExtend{}),
		Peephole(SpanMerge{}),
		Peephole(SpanSingle{}),
	}
}

// PassNames returns the names of passes in order.
func PassNames(passes []Pass) []string {
	names := make([]string, len(passes))
	for i, p := range passes {
		names[i] = p.Name()
	}
	return names
}

type state int

const (
	stateNotStarted state = iota
	stateOptimizing
	stateDone
)

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithPasses replaces the default pass list.
func WithPasses(passes ...Pass) Option {
	return func(o *Optimizer) { o.passes = passes }
}

// WithMaxSweeps bounds the number of sweeps. Zero removes the bound.
func WithMaxSweeps(n int) Option {
	return func(o *Optimizer) { o.maxSweeps = n }
}

// WithDisabled drops the named passes from the pass list.
func WithDisabled(names ...string) Option {
	return func(o *Optimizer) {
		for _, n := range names {
			o.disabled[n] = true
		}
	}
}

// WithRunID sets the run id recorded in snapshots.
func WithRunID(id string) Option {
	return func(o *Optimizer) { o.runID = id }
}

// Optimizer sweeps a program with every pass until none of them changes it.
type Optimizer struct {
	prog      ir.Program
	passes    []Pass
	disabled  map[string]bool
	maxSweeps int
	runID     string
	state     state
	profiler  *Profiler
}

// New creates an optimizer over a copy of prog.
func New(prog ir.Program, opts ...Option) *Optimizer {
	o := &Optimizer{
		prog:      prog.Clone(),
		passes:    DefaultPasses(),
		disabled:  make(map[string]bool),
		maxSweeps: DefaultMaxSweeps,
		profiler:  NewProfiler(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.runID == "" {
		o.runID = uuid.NewString()
	}

	enabled := make([]Pass, 0, len(o.passes))
	for _, p := range o.passes {
		if o.disabled[p.Name()] {
			continue
		}
		if pp, ok := p.(profiled); ok {
			pp.attach(o.profiler)
		}
		enabled = append(enabled, p)
	}
	o.passes = enabled
	return o
}

// Profiler returns the optimizer's pass profiler.
func (o *Optimizer) Profiler() *Profiler { return o.profiler }

// RunID returns the id recorded in snapshots.
func (o *Optimizer) RunID() string { return o.runID }

// Optimize runs passes to a fixpoint and returns the result. Later calls
// return the same program without running again.
func (o *Optimizer) Optimize() ir.Program {
	prog, _ := o.run(nil)
	return prog
}

// OptimizeAndRecord is Optimize, storing a Snapshot after every sweep. A
// failed insert stops further recording but not the optimization; the
// error is returned with the optimized program.
func (o *Optimizer) OptimizeAndRecord(store metadata.Store) (ir.Program, error) {
	return o.run(store)
}

func (o *Optimizer) run(store metadata.Store) (ir.Program, error) {
	if o.state == stateDone {
		return o.prog.Clone(), nil
	}
	o.state = stateOptimizing

	var recordErr error
	for sweep := 1; ; sweep++ {
		if o.maxSweeps > 0 && sweep > o.maxSweeps {
			log.Warningf("stopping after %d sweeps without reaching a fixpoint", o.maxSweeps)
			break
		}

		progress := false
		for _, p := range o.passes {
			changed := RunRecursive(p, &o.prog)
			o.profiler.RecordRun(p.Name(), changed)
			if !changed {
				continue
			}
			progress = true
			// Runners count their own rewrites. A whole-program pass
			// counts as one rewrite per sweep it changes the program in.
			if _, ok := p.(profiled); !ok {
				o.profiler.recordRewrite(p.Name())
			}
		}
		o.profiler.RecordSweep()
		log.Debugf("sweep %d: %d instructions", sweep, o.prog.Len())

		if store != nil && recordErr == nil {
			if err := store.Insert(sweep, o.snapshot(sweep)); err != nil {
				recordErr = fmt.Errorf("recording sweep %d: %w", sweep, err)
				log.Errorf("snapshot recording stopped: %s", err)
			}
		}

		if !progress {
			break
		}
	}

	o.state = stateDone
	return o.prog.Clone(), recordErr
}

// Snapshot is the state recorded after a sweep.
type Snapshot struct {
	RunID        string      `cbor:"run_id"`
	Iteration    int         `cbor:"iteration"`
	Instructions int         `cbor:"instructions"`
	Program      string      `cbor:"program"`
	Passes       []PassStats `cbor:"passes"`
}

func (o *Optimizer) snapshot(sweep int) Snapshot {
	return Snapshot{
		RunID:        o.runID,
		Iteration:    sweep,
		Instructions: o.prog.Len(),
		Program:      o.prog.String(),
		Passes:       o.profiler.Passes(),
	}
}
