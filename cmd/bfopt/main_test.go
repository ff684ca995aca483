package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/bfopt/manifest"
)

const helloWorld = "++++++++[>++++[>++>+++>+++>+<<<<-]>+>+>->>+[<]<-]>>.>---.+++++++..+++.>>.<-.<.+++.------.--------.>>+.>++."

// setup writes a program and an optional bfopt.toml into a fresh directory
// and returns the program's path.
func setup(t *testing.T, src, config string) string {
	t.Helper()
	dir := t.TempDir()
	if config != "" {
		if err := os.WriteFile(filepath.Join(dir, manifest.FileName), []byte(config), 0644); err != nil {
			t.Fatal(err)
		}
	}
	path := filepath.Join(dir, "prog.bf")
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, stdin string, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(args, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRunOutput(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		stdin string
		args  []string
		want  string
	}{
		{"hello world", helloWorld, "", nil, "Hello World!\n"},
		{"multiply", "++++++++[>++++++++<-]>+.", "", nil, "A"},
		{"unoptimized", "++++++++[>++++++++<-]>+.", "", []string{"-optimize=false"}, "A"},
		{"echo", ",[.,]", "abc", nil, "abc"},
		{"dump", "+++++", "", []string{"-dump"}, "[-]+++++\n"},
		{"dump unoptimized", "+++++", "", []string{"-optimize=false", "-dump"}, "+++++\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := setup(t, tc.src, "")
			args := append(append([]string{}, tc.args...), path)
			code, stdout, stderr := runCLI(t, tc.stdin, args...)
			if code != 0 {
				t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
			}
			if stdout != tc.want {
				t.Errorf("stdout = %q, want %q", stdout, tc.want)
			}
		})
	}
}

func TestRunConfigOptimizerDisabled(t *testing.T) {
	path := setup(t, "+++++", "[optimizer]\nenabled = false\n")

	code, stdout, _ := runCLI(t, "", "-dump", path)
	if code != 0 || stdout != "+++++\n" {
		t.Errorf("config disabling the optimizer: code %d, stdout %q", code, stdout)
	}

	// The flag wins over the file
	code, stdout, _ = runCLI(t, "", "-optimize", "-dump", path)
	if code != 0 || stdout != "[-]+++++\n" {
		t.Errorf("-optimize over config: code %d, stdout %q", code, stdout)
	}
}

func TestRunMaxSweeps(t *testing.T) {
	path := setup(t, helloWorld, "[optimizer]\nmax-sweeps = 1\n")

	code, _, stderr := runCLI(t, "", "-stats", "-dump", path)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}
	if !strings.Contains(stderr, "sweeps: 1\n") {
		t.Errorf("max-sweeps from bfopt.toml not applied, stats:\n%s", stderr)
	}

	// Zero lifts the bound, so the optimizer sweeps until nothing changes
	code, _, stderr = runCLI(t, "", "-stats", "-dump", "-max-sweeps", "0", path)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}
	if strings.Contains(stderr, "sweeps: 1\n") || !strings.Contains(stderr, "sweeps: ") {
		t.Errorf("-max-sweeps did not override bfopt.toml, stats:\n%s", stderr)
	}
}

func TestRunConfigDir(t *testing.T) {
	path := setup(t, "+++++", "")
	cfgDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(cfgDir, manifest.FileName), []byte("[optimizer]\nenabled = false\n"), 0644); err != nil {
		t.Fatal(err)
	}

	code, stdout, _ := runCLI(t, "", "-config", cfgDir, "-dump", path)
	if code != 0 || stdout != "+++++\n" {
		t.Errorf("-config dir not used: code %d, stdout %q", code, stdout)
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		config string
		args   []string
		code   int
		stderr string
	}{
		{"unknown disabled pass", "+", "[optimizer]\ndisable = [\"no-such-pass\"]\n", nil, 1, "unknown pass \"no-such-pass\""},
		{"bad config", "+", "[optimizer]\nturbo = true\n", nil, 1, "unknown key"},
		{"unbalanced", "+]", "", nil, 1, "1:2: unmatched ']'"},
		{"negative sweeps", "+", "", []string{"-max-sweeps", "-3"}, 2, "must not be negative"},
		{"zero tape", "+", "", []string{"-tape", "0"}, 2, "must be positive"},
		{"bad flag", "+", "", []string{"-turbo"}, 2, "flag provided but not defined"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := setup(t, tc.src, tc.config)
			args := append(append([]string{}, tc.args...), path)
			code, _, stderr := runCLI(t, "", args...)
			if code != tc.code {
				t.Errorf("exit code = %d, want %d", code, tc.code)
			}
			if !strings.Contains(stderr, tc.stderr) {
				t.Errorf("stderr = %q, want it to mention %q", stderr, tc.stderr)
			}
		})
	}
}

func TestRunUsage(t *testing.T) {
	code, _, stderr := runCLI(t, "")
	if code != 2 {
		t.Errorf("exit code without a program = %d, want 2", code)
	}
	if !strings.Contains(stderr, "Usage: bfopt") {
		t.Errorf("usage not printed, stderr:\n%s", stderr)
	}

	if code, _, _ := runCLI(t, "", "-h"); code != 0 {
		t.Errorf("exit code for -h = %d, want 0", code)
	}
}

func TestRunMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.bf")
	code, _, stderr := runCLI(t, "", missing)
	if code != 1 || !strings.Contains(stderr, "Error:") {
		t.Errorf("missing file: code %d, stderr %q", code, stderr)
	}
}
