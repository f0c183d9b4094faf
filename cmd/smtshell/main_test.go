package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestRunScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "basic.smt2")
	writeFile(t, path, `
(set-logic QF_LIA)
(declare-const x Int)
(assert (= x x))
(check-sat)
(get-value (x))
`)

	var out, errOut bytes.Buffer
	if code := run([]string{"run", path}, &out, &errOut); code != 0 {
		t.Fatalf("exit %d, stderr %q", code, errOut.String())
	}
	if got := out.String(); got != "sat\n((x 0))\n" {
		t.Fatalf("output %q", got)
	}
}

func TestRunScriptFailsFast(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.smt2")
	writeFile(t, path, `
(set-logic QF_LIA)
(assert (frobnicate 1 2))
(check-sat)
`)

	var out, errOut bytes.Buffer
	if code := run([]string{"run", path}, &out, &errOut); code != 1 {
		t.Fatalf("exit %d, want 1", code)
	}
	if out.String() != "" {
		t.Fatalf("output after failing command: %q", out.String())
	}
	if !strings.Contains(errOut.String(), "frobnicate") {
		t.Fatalf("stderr %q", errOut.String())
	}
}

func TestBareScriptPathRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bare.smt2")
	writeFile(t, path, "(set-logic QF_LIA)\n(check-sat)\n")

	var out, errOut bytes.Buffer
	if code := run([]string{path}, &out, &errOut); code != 0 {
		t.Fatalf("exit %d, stderr %q", code, errOut.String())
	}
	if out.String() != "sat\n" {
		t.Fatalf("output %q", out.String())
	}
}

func TestVersionAndUsage(t *testing.T) {
	var out, errOut bytes.Buffer
	if code := run([]string{"--version"}, &out, &errOut); code != 0 {
		t.Fatalf("version exit %d", code)
	}
	if !strings.Contains(out.String(), cliVersion) {
		t.Fatalf("version output %q", out.String())
	}

	out.Reset()
	if code := run(nil, &out, &errOut); code != 2 {
		t.Fatalf("no-args exit %d, want 2", code)
	}

	errOut.Reset()
	if code := run([]string{"bogus-subcommand"}, &out, &errOut); code != 2 {
		t.Fatalf("unknown command exit %d, want 2", code)
	}
	if !strings.Contains(errOut.String(), "unknown command") {
		t.Fatalf("stderr %q", errOut.String())
	}
}

func TestUnknownBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.smt2")
	writeFile(t, path, "(check-sat)\n")

	var out, errOut bytes.Buffer
	if code := run([]string{"run", "--backend=phantom", path}, &out, &errOut); code != 1 {
		t.Fatalf("exit %d, want 1", code)
	}
	if !strings.Contains(errOut.String(), "phantom") {
		t.Fatalf("stderr %q", errOut.String())
	}
}

func TestSuiteCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "ok.smt2"), "(set-logic QF_LIA)\n(assert (= 1 1))\n(check-sat)\n")
	writeFile(t, filepath.Join(dir, "suite.yml"), `
name: cli
benchmarks:
  - name: ok
    file: ok.smt2
    expect: sat
`)

	var out, errOut bytes.Buffer
	code := run([]string{"suite", "--cache", t.TempDir(), filepath.Join(dir, "suite.yml")}, &out, &errOut)
	if code != 0 {
		t.Fatalf("exit %d, stderr %q", code, errOut.String())
	}
	if !strings.Contains(out.String(), "1/1 passed") {
		t.Fatalf("output %q", out.String())
	}
}
