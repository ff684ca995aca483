package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[optimizer]
enabled = false
max-sweeps = 50
disable = ["sink-move", "span-inc"]

[tape]
size = 4096

[snapshots]
path = "runs.db"
run-id = "nightly"
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Optimizer.Enabled {
		t.Error("optimizer enabled = true, want false")
	}
	if m.Optimizer.MaxSweeps != 50 {
		t.Errorf("max-sweeps = %d, want 50", m.Optimizer.MaxSweeps)
	}
	if diff := cmp.Diff([]string{"sink-move", "span-inc"}, m.Optimizer.Disable); diff != "" {
		t.Errorf("disable mismatch (-want +got):\n%s", diff)
	}
	if m.Tape.Size != 4096 {
		t.Errorf("tape size = %d, want 4096", m.Tape.Size)
	}
	if m.Snapshots.RunID != "nightly" {
		t.Errorf("run-id = %q, want nightly", m.Snapshots.RunID)
	}
	if got, want := m.SnapshotPath(), filepath.Join(m.Dir, "runs.db"); got != want {
		t.Errorf("snapshot path = %q, want %q", got, want)
	}
	if !m.Disabled("sink-move") || m.Disabled("merge-inc") {
		t.Error("Disabled does not follow the disable list")
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[snapshots]
path = "/tmp/runs.db"
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !m.Optimizer.Enabled {
		t.Error("default optimizer enabled = false, want true")
	}
	if m.Optimizer.MaxSweeps != DefaultMaxSweeps {
		t.Errorf("default max-sweeps = %d, want %d", m.Optimizer.MaxSweeps, DefaultMaxSweeps)
	}
	if m.Tape.Size != DefaultTapeSize {
		t.Errorf("default tape size = %d, want %d", m.Tape.Size, DefaultTapeSize)
	}
	if m.SnapshotPath() != "/tmp/runs.db" {
		t.Errorf("absolute snapshot path = %q, want /tmp/runs.db", m.SnapshotPath())
	}
}

func TestLoadManifestErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", "[optimizer\n", "parse error"},
		{"unknown key", "[optimizer]\nturbo = true\n", "unknown key"},
		{"negative sweeps", "[optimizer]\nmax-sweeps = -1\n", "max-sweeps"},
		{"empty tape", "[tape]\nsize = 0\n", "tape.size"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			writeManifest(t, dir, tc.content)
			_, err := Load(dir)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("Load error = %v, want one mentioning %q", err, tc.want)
			}
		})
	}
}

func TestFindAndLoad(t *testing.T) {
	// Create nested directory structure
	dir := t.TempDir()
	subDir := filepath.Join(dir, "a", "b", "c")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatal(err)
	}
	writeManifest(t, dir, "[tape]\nsize = 100\n")

	// Should find manifest when starting from a deep subdirectory
	m, err := FindAndLoad(subDir)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if m.Tape.Size != 100 {
		t.Errorf("tape size = %d, want 100", m.Tape.Size)
	}
	abs, _ := filepath.Abs(dir)
	if m.Dir != abs {
		t.Errorf("dir = %q, want %q", m.Dir, abs)
	}
}

func TestFindAndLoadNotFound(t *testing.T) {
	dir := t.TempDir()
	m, err := FindAndLoad(dir)
	if err != nil {
		t.Fatalf("FindAndLoad error: %v", err)
	}
	if diff := cmp.Diff(Default(), m); diff != "" {
		t.Errorf("expected defaults when no bfopt.toml exists (-want +got):\n%s", diff)
	}
	if m.SnapshotPath() != "" {
		t.Errorf("snapshot path = %q, want recording disabled", m.SnapshotPath())
	}
}
