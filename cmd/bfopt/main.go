// bfopt CLI - scans, optimizes and runs Brainfuck programs
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/bfopt/interp"
	"github.com/chazu/bfopt/ir"
	"github.com/chazu/bfopt/manifest"
	"github.com/chazu/bfopt/metadata"
	"github.com/chazu/bfopt/opt"
	"github.com/chazu/bfopt/scan"
)

var log = commonlog.GetLogger("bfopt.cli")

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run is the whole CLI. It returns the process exit code: 2 for usage
// errors, 1 for anything else that fails.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("bfopt", flag.ContinueOnError)
	fs.SetOutput(stderr)

	optimize := fs.Bool("optimize", true, "Run the optimizer before executing")
	verbose := fs.Int("v", 0, "Log verbosity (0 quiet, 1 info, 2 debug)")
	dump := fs.Bool("dump", false, "Print the program instead of running it")
	listing := fs.Bool("listing", false, "With -dump, print one instruction per line")
	configDir := fs.String("config", "", "Directory to search for bfopt.toml (default: the program's directory)")
	snapshots := fs.String("snapshots", "", "SQLite file to record optimizer sweeps into")
	tapeSize := fs.Int("tape", 0, "Tape size in cells")
	maxSweeps := fs.Int("max-sweeps", -1, "Sweep limit, 0 for none")
	stats := fs.Bool("stats", false, "Print per-pass statistics to stderr")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: bfopt [options] file.bf\n\n")
		fmt.Fprintf(stderr, "Scans a Brainfuck program, optimizes it and runs it on stdin/stdout.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  bfopt hello.bf                      # Optimize and run\n")
		fmt.Fprintf(stderr, "  bfopt -dump hello.bf                # Print the optimized program\n")
		fmt.Fprintf(stderr, "  bfopt -optimize=false hello.bf      # Run without optimizing\n")
		fmt.Fprintf(stderr, "  bfopt -snapshots runs.db hello.bf   # Record every sweep\n")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	commonlog.Configure(*verbose, nil)

	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	path := fs.Arg(0)

	dir := *configDir
	if dir == "" {
		dir = filepath.Dir(path)
	}
	cfg, err := manifest.FindAndLoad(dir)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	// Flags override the configuration file
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "optimize":
			cfg.Optimizer.Enabled = *optimize
		case "snapshots":
			cfg.Snapshots.Path = *snapshots
		case "tape":
			cfg.Tape.Size = *tapeSize
		case "max-sweeps":
			cfg.Optimizer.MaxSweeps = *maxSweeps
		}
	})

	if cfg.Optimizer.MaxSweeps < 0 {
		fmt.Fprintf(stderr, "Error: -max-sweeps must not be negative, got %d\n", cfg.Optimizer.MaxSweeps)
		return 2
	}
	if cfg.Tape.Size <= 0 {
		fmt.Fprintf(stderr, "Error: -tape must be positive, got %d\n", cfg.Tape.Size)
		return 2
	}
	if err := checkPassNames(cfg.Optimizer.Disable); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	prog, err := scan.Scan(string(src))
	if err != nil {
		fmt.Fprintf(stderr, "%s:%v\n", path, err)
		return 1
	}
	log.Infof("scanned %s: %d instructions", path, prog.Len())

	if cfg.Optimizer.Enabled {
		var profiler *opt.Profiler
		prog, profiler, err = runOptimizer(prog, cfg)
		if err != nil {
			// The optimized program is still usable
			fmt.Fprintf(stderr, "Warning: %v\n", err)
		}
		if *stats {
			printStats(stderr, profiler)
		}
	}

	if *dump {
		if *listing {
			fmt.Fprint(stdout, prog.Listing())
		} else {
			fmt.Fprintln(stdout, prog.String())
		}
		return 0
	}

	m := interp.New(cfg.Tape.Size, stdin, stdout)
	if err := m.Run(prog); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// runOptimizer optimizes prog with the configured passes, recording
// snapshots when a snapshot path is set.
func runOptimizer(prog ir.Program, cfg *manifest.Manifest) (ir.Program, *opt.Profiler, error) {
	opts := []opt.Option{
		opt.WithMaxSweeps(cfg.Optimizer.MaxSweeps),
		opt.WithDisabled(cfg.Optimizer.Disable...),
	}
	var (
		result ir.Program
		err    error
		o      *opt.Optimizer
	)
	if dbPath := cfg.SnapshotPath(); dbPath != "" {
		store, openErr := metadata.OpenSQLite(dbPath, cfg.Snapshots.RunID)
		if openErr != nil {
			return prog, nil, fmt.Errorf("opening snapshot store: %w", openErr)
		}
		defer store.Close()

		o = opt.New(prog, append(opts, opt.WithRunID(store.RunID()))...)
		result, err = o.OptimizeAndRecord(store)
		log.Infof("recorded run %s in %s", o.RunID(), dbPath)
	} else {
		o = opt.New(prog, opts...)
		result = o.Optimize()
	}

	s := o.Profiler().Stats()
	log.Infof("optimized to %d instructions in %d sweeps (%d rewrites)", result.Len(), s.Sweeps, s.Rewrites)
	if s.Warnings > 0 {
		log.Warningf("%d rule contract violations", s.Warnings)
	}
	return result, o.Profiler(), err
}

// checkPassNames rejects disable entries that name no pass.
func checkPassNames(names []string) error {
	known := make(map[string]bool)
	for _, n := range opt.PassNames(opt.DefaultPasses()) {
		known[n] = true
	}
	for _, n := range names {
		if !known[n] {
			return fmt.Errorf("unknown pass %q in disable list", n)
		}
	}
	return nil
}

func printStats(w io.Writer, p *opt.Profiler) {
	fmt.Fprintf(w, "%-28s %8s %8s %8s %8s\n", "pass", "runs", "changed", "rewrites", "warnings")
	for _, s := range p.Passes() {
		if s.Rewrites == 0 && s.Warnings == 0 {
			continue
		}
		fmt.Fprintf(w, "%-28s %8d %8d %8d %8d\n", s.Name, s.Runs, s.Changed, s.Rewrites, s.Warnings)
	}
	fmt.Fprintf(w, "sweeps: %d\n", p.Sweeps())
	fmt.Fprintf(w, "top passes: %v\n", p.TopPasses(5))
}
