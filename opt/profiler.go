package opt

// Profiler counts, per pass, how often it ran, how many rewrites it applied
// and how often it broke the window contract. The optimizer is single
// threaded so the counters are plain fields.

// PassProfile holds the counters for a single pass.
type PassProfile struct {
	Runs     uint64 // Number of sweeps the pass ran in
	Changed  uint64 // Number of sweeps in which the pass changed the program
	Rewrites uint64 // Number of changes applied
	Warnings uint64 // Number of contract violations reported
}

// Profiler tracks profiles for every pass in the order they were first seen.
// A nil *Profiler records nothing and reads as empty.
type Profiler struct {
	profiles map[string]*PassProfile
	order    []string
	sweeps   int
}

// NewProfiler creates an empty profiler.
func NewProfiler() *Profiler {
	return &Profiler{profiles: make(map[string]*PassProfile)}
}

func (p *Profiler) profile(name string) *PassProfile {
	prof, ok := p.profiles[name]
	if !ok {
		prof = &PassProfile{}
		p.profiles[name] = prof
		p.order = append(p.order, name)
	}
	return prof
}

// RecordRun notes one run of the named pass.
func (p *Profiler) RecordRun(name string, changed bool) {
	if p == nil {
		return
	}
	prof := p.profile(name)
	prof.Runs++
	if changed {
		prof.Changed++
	}
}

// RecordSweep notes a completed sweep over all passes.
func (p *Profiler) RecordSweep() {
	if p != nil {
		p.sweeps++
	}
}

func (p *Profiler) recordRewrite(name string) {
	if p != nil {
		p.profile(name).Rewrites++
	}
}

func (p *Profiler) recordWarning(name string) {
	if p != nil {
		p.profile(name).Warnings++
	}
}

// GetProfile returns the profile for a pass, or nil if it never ran.
func (p *Profiler) GetProfile(name string) *PassProfile {
	if p == nil {
		return nil
	}
	return p.profiles[name]
}

// Sweeps returns the number of completed sweeps.
func (p *Profiler) Sweeps() int {
	if p == nil {
		return 0
	}
	return p.sweeps
}

// ProfilerStats holds aggregate statistics.
type ProfilerStats struct {
	Passes       int    // Number of passes profiled
	ActivePasses int    // Passes that changed the program at least once
	Sweeps       int    // Completed sweeps
	Rewrites     uint64 // Total changes applied
	Warnings     uint64 // Total contract violations
}

// Stats returns aggregate statistics.
func (p *Profiler) Stats() ProfilerStats {
	if p == nil {
		return ProfilerStats{}
	}
	stats := ProfilerStats{Passes: len(p.profiles), Sweeps: p.sweeps}
	for _, prof := range p.profiles {
		stats.Rewrites += prof.Rewrites
		stats.Warnings += prof.Warnings
		if prof.Changed > 0 {
			stats.ActivePasses++
		}
	}
	return stats
}

// PassStats is the serialisable form of one pass profile.
type PassStats struct {
	Name     string `cbor:"name"`
	Runs     uint64 `cbor:"runs"`
	Changed  uint64 `cbor:"changed"`
	Rewrites uint64 `cbor:"rewrites"`
	Warnings uint64 `cbor:"warnings"`
}

// Passes returns every profile in first-seen order.
func (p *Profiler) Passes() []PassStats {
	if p == nil {
		return nil
	}
	out := make([]PassStats, 0, len(p.order))
	for _, name := range p.order {
		prof := p.profiles[name]
		out = append(out, PassStats{
			Name:     name,
			Runs:     prof.Runs,
			Changed:  prof.Changed,
			Rewrites: prof.Rewrites,
			Warnings: prof.Warnings,
		})
	}
	return out
}

// TopPasses returns the names of the n passes with the most rewrites.
func (p *Profiler) TopPasses(n int) []string {
	all := p.Passes()

	// Simple selection sort for top N (fine for small N)
	for i := 0; i < n && i < len(all); i++ {
		maxIdx := i
		for j := i + 1; j < len(all); j++ {
			if all[j].Rewrites > all[maxIdx].Rewrites {
				maxIdx = j
			}
		}
		all[i], all[maxIdx] = all[maxIdx], all[i]
	}

	result := make([]string, 0, n)
	for i := 0; i < n && i < len(all); i++ {
		result = append(result, all[i].Name)
	}
	return result
}

// Reset clears all profiling data.
func (p *Profiler) Reset() {
	if p == nil {
		return
	}
	p.profiles = make(map[string]*PassProfile)
	p.order = nil
	p.sweeps = 0
}
