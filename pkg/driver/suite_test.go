package driver

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadSuite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "suite.yml")
	writeFile(t, path, `
name: smoke
description: basic regression scripts
options:
  produce-models: "true"
sources:
  upstream:
    git: https://example.com/benchmarks.git
    tag: v1.2.0
benchmarks:
  - scripts/trivial.smt2
  - name: arith
    file: scripts/arith.smt2
    expect: sat
  - name: remote
    file: lia/one.smt2
    source: upstream
    expect: unsat
`)

	suite, err := LoadSuite(path)
	if err != nil {
		t.Fatalf("LoadSuite: %v", err)
	}
	if suite.Name != "smoke" {
		t.Fatalf("name = %q", suite.Name)
	}
	if suite.Options["produce-models"] != "true" {
		t.Fatalf("options = %v", suite.Options)
	}
	if len(suite.Benchmarks) != 3 {
		t.Fatalf("benchmarks = %d, want 3", len(suite.Benchmarks))
	}
	// A bare path entry gets its name from the file stem.
	if suite.Benchmarks[0].Name != "trivial" || suite.Benchmarks[0].File != "scripts/trivial.smt2" {
		t.Fatalf("first benchmark = %+v", suite.Benchmarks[0])
	}
	if suite.Benchmarks[2].Source != "upstream" || suite.Benchmarks[2].Expect != "unsat" {
		t.Fatalf("third benchmark = %+v", suite.Benchmarks[2])
	}
	if src := suite.Sources["upstream"]; src == nil || src.Tag != "v1.2.0" {
		t.Fatalf("sources = %+v", suite.Sources)
	}
	if suite.Dir() != dir {
		t.Fatalf("Dir() = %q, want %q", suite.Dir(), dir)
	}
}

func TestLoadSuiteRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suite.yml")
	writeFile(t, path, `
name: typo
benchmarks:
  - a.smt2
bnechmarks:
  - b.smt2
`)
	if _, err := LoadSuite(path); err == nil {
		t.Fatalf("unknown field accepted")
	}
}

func TestLoadSuiteValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suite.yml")
	writeFile(t, path, `
name: ""
sources:
  bad: {}
benchmarks:
  - name: broken
    file: ""
    source: missing
    expect: maybe
`)
	_, err := LoadSuite(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	joined := verr.Error()
	for _, want := range []string{
		"name must be provided",
		"sources.bad: git URL must be provided",
		"sources.bad: rev, tag, or branch must be provided",
		"broken: file must be provided",
		`broken: unknown source "missing"`,
		"broken: expect must be sat, unsat, unknown, or any",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing issue %q in:\n%s", want, joined)
		}
	}
}

func TestLoadSuiteEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suite.yml")
	writeFile(t, path, "")
	if _, err := LoadSuite(path); err == nil || !strings.Contains(err.Error(), "empty") {
		t.Fatalf("empty manifest: got %v", err)
	}
}
