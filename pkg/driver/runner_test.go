package driver

import (
	"bytes"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"smtshell/frontend-go/pkg/ground"
	"smtshell/frontend-go/pkg/solver"
)

func groundFactory() (solver.Backend, error) {
	return ground.New(), nil
}

func initGitRepo(t *testing.T, dir string) string {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	if err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == filepath.Join(dir, ".git") {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if _, err := worktree.Add(rel); err != nil {
			return err
		}
		return nil
	}); err != nil {
		t.Fatalf("stage files: %v", err)
	}
	hash, err := worktree.Commit("init", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "suite",
			Email: "suite@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return hash.String()
}

func TestRunSuiteLocalBenchmarks(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "scripts", "good.smt2"), `
(set-logic QF_LIA)
(assert (= 1 1))
(check-sat)
`)
	writeFile(t, filepath.Join(dir, "scripts", "bad.smt2"), `
(set-logic QF_LIA)
(assert (< 2 1))
(check-sat)
`)
	writeFile(t, filepath.Join(dir, "suite.yml"), `
name: local
benchmarks:
  - name: good
    file: scripts/good.smt2
    expect: sat
  - name: bad
    file: scripts/bad.smt2
    expect: sat
  - name: missing
    file: scripts/nope.smt2
`)

	suite, err := LoadSuite(filepath.Join(dir, "suite.yml"))
	if err != nil {
		t.Fatalf("LoadSuite: %v", err)
	}

	var out bytes.Buffer
	runner := &Runner{NewBackend: groundFactory, Fetcher: NewFetcher(t.TempDir()), Out: &out}
	results, err := runner.RunSuite(suite)
	if err != nil {
		t.Fatalf("RunSuite: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}

	if !results[0].Passed || results[0].Status != "sat" {
		t.Fatalf("good: %+v", results[0])
	}
	if results[1].Passed || results[1].Status != "unsat" {
		t.Fatalf("bad: %+v", results[1])
	}
	if results[2].Err == nil {
		t.Fatalf("missing benchmark did not error")
	}
	if Failed(results) != 2 {
		t.Fatalf("Failed = %d, want 2", Failed(results))
	}
	if !strings.Contains(out.String(), "good: sat ok") {
		t.Fatalf("report output %q", out.String())
	}
}

func TestRunSuiteAppliesOptions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "opt.smt2"), `
(set-logic QF_LIA)
(get-option :produce-models)
(check-sat)
`)
	writeFile(t, filepath.Join(dir, "suite.yml"), `
name: opts
options:
  produce-models: "true"
benchmarks:
  - opt.smt2
`)
	suite, err := LoadSuite(filepath.Join(dir, "suite.yml"))
	if err != nil {
		t.Fatalf("LoadSuite: %v", err)
	}
	runner := &Runner{NewBackend: groundFactory, Fetcher: NewFetcher(t.TempDir())}
	results, err := runner.RunSuite(suite)
	if err != nil {
		t.Fatalf("RunSuite: %v", err)
	}
	if !strings.HasPrefix(results[0].Output, "true\n") {
		t.Fatalf("option not applied before the script: %q", results[0].Output)
	}
}

func TestFetchPinsSourceByRevision(t *testing.T) {
	repoDir := t.TempDir()
	writeFile(t, filepath.Join(repoDir, "lia", "one.smt2"), `
(set-logic QF_LIA)
(assert (< 2 1))
(check-sat)
`)
	commit := initGitRepo(t, repoDir)

	cache := t.TempDir()
	fetcher := NewFetcher(cache)
	spec := &SourceSpec{Git: repoDir, Rev: commit}

	dir, err := fetcher.Fetch("upstream", spec)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(dir), commit[:8]) {
		t.Fatalf("checkout dir %q not pinned to %s", dir, commit)
	}

	// A second fetch of the same rev reuses the checkout without cloning.
	again, err := fetcher.Fetch("upstream", spec)
	if err != nil {
		t.Fatalf("refetch: %v", err)
	}
	if again != dir {
		t.Fatalf("refetch dir %q, want %q", again, dir)
	}

	suiteDir := t.TempDir()
	writeFile(t, filepath.Join(suiteDir, "suite.yml"), `
name: remote
sources:
  upstream:
    git: `+repoDir+`
    rev: `+commit+`
benchmarks:
  - name: one
    file: lia/one.smt2
    source: upstream
    expect: unsat
`)
	suite, err := LoadSuite(filepath.Join(suiteDir, "suite.yml"))
	if err != nil {
		t.Fatalf("LoadSuite: %v", err)
	}
	runner := &Runner{NewBackend: groundFactory, Fetcher: fetcher}
	results, err := runner.RunSuite(suite)
	if err != nil {
		t.Fatalf("RunSuite: %v", err)
	}
	if !results[0].Passed || results[0].Status != "unsat" {
		t.Fatalf("remote benchmark: %+v", results[0])
	}
}
