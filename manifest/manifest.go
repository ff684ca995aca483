// Package manifest handles bfopt.toml configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the name of the configuration file.
const FileName = "bfopt.toml"

// Defaults applied to keys the file leaves out.
const (
	DefaultMaxSweeps = 10000
	DefaultTapeSize  = 30000
)

// Manifest represents a bfopt.toml configuration.
type Manifest struct {
	Optimizer Optimizer `toml:"optimizer"`
	Tape      Tape      `toml:"tape"`
	Snapshots Snapshots `toml:"snapshots"`

	// Dir is the directory containing the bfopt.toml file (set at load time).
	// It is empty for a default manifest.
	Dir string `toml:"-"`
}

// Optimizer configures the optimizer.
type Optimizer struct {
	Enabled   bool     `toml:"enabled"`
	MaxSweeps int      `toml:"max-sweeps"`
	Disable   []string `toml:"disable"`
}

// Tape configures the interpreter.
type Tape struct {
	Size int `toml:"size"`
}

// Snapshots configures per-sweep recording.
type Snapshots struct {
	Path  string `toml:"path"`
	RunID string `toml:"run-id"`
}

// Default returns the configuration used when no bfopt.toml exists.
func Default() *Manifest {
	return &Manifest{
		Optimizer: Optimizer{Enabled: true, MaxSweeps: DefaultMaxSweeps},
		Tape:      Tape{Size: DefaultTapeSize},
	}
}

// Load parses a bfopt.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	m := Default()
	md, err := toml.Decode(string(data), m)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return nil, fmt.Errorf("unknown key %q in %s", keys[0].String(), path)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return m, nil
}

func (m *Manifest) validate() error {
	if m.Optimizer.MaxSweeps < 0 {
		return fmt.Errorf("optimizer.max-sweeps must not be negative, got %d", m.Optimizer.MaxSweeps)
	}
	if m.Tape.Size <= 0 {
		return fmt.Errorf("tape.size must be positive, got %d", m.Tape.Size)
	}
	return nil
}

// FindAndLoad walks up from startDir to find a bfopt.toml file, then loads
// and returns the manifest. Returns Default() if no file is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return Default(), nil
		}
		dir = parent
	}
}

// SnapshotPath returns the snapshot database path resolved against Dir, or
// "" when recording is disabled.
func (m *Manifest) SnapshotPath() string {
	p := m.Snapshots.Path
	if p == "" || filepath.IsAbs(p) || m.Dir == "" {
		return p
	}
	return filepath.Join(m.Dir, p)
}

// Disabled reports whether the named pass is switched off.
func (m *Manifest) Disabled(name string) bool {
	for _, d := range m.Optimizer.Disable {
		if d == name {
			return true
		}
	}
	return false
}
