package driver

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"smtshell/frontend-go/pkg/interpreter"
	"smtshell/frontend-go/pkg/solver"
)

// BackendFactory creates a fresh backend for each benchmark so scripts
// cannot observe each other's state.
type BackendFactory func() (solver.Backend, error)

// Result records the outcome of one benchmark run.
type Result struct {
	Name    string
	Status  string
	Expect  string
	Passed  bool
	Err     error
	Elapsed time.Duration
	Output  string
}

// Runner executes every benchmark of a suite and reports results.
type Runner struct {
	NewBackend BackendFactory
	Fetcher    *Fetcher
	Out        io.Writer
}

// RunSuite runs all benchmarks in manifest order. A benchmark error is
// recorded in its result; it does not stop the remaining benchmarks. The
// returned error covers suite-level failures only (an unfetchable source).
func (r *Runner) RunSuite(suite *Suite) ([]Result, error) {
	checkouts := make(map[string]string)
	for name, spec := range suite.Sources {
		dir, err := r.Fetcher.Fetch(name, spec)
		if err != nil {
			return nil, err
		}
		checkouts[name] = dir
	}

	results := make([]Result, 0, len(suite.Benchmarks))
	for _, b := range suite.Benchmarks {
		base := suite.Dir()
		if b.Source != "" {
			base = checkouts[b.Source]
		}
		res := r.runBenchmark(suite, b, filepath.Join(base, b.File))
		r.report(res)
		results = append(results, res)
	}
	return results, nil
}

func (r *Runner) runBenchmark(suite *Suite, b *BenchmarkSpec, path string) Result {
	res := Result{Name: b.Name, Expect: b.Expect}
	start := time.Now()
	defer func() { res.Elapsed = time.Since(start) }()

	src, err := os.ReadFile(path)
	if err != nil {
		res.Err = fmt.Errorf("read %s: %w", path, err)
		return res
	}

	backend, err := r.NewBackend()
	if err != nil {
		res.Err = err
		return res
	}

	var out bytes.Buffer
	session := interpreter.NewSession(backend, &out)
	defer session.Close()

	for key, value := range suite.Options {
		if err := session.ExecuteScript(fmt.Sprintf("(set-option :%s %s)", key, value)); err != nil {
			res.Err = err
			return res
		}
	}

	err = session.ExecuteScript(string(src))
	res.Output = out.String()
	res.Status = lastStatusLine(res.Output)
	if err != nil {
		res.Err = err
		return res
	}

	switch b.Expect {
	case "", "any":
		res.Passed = res.Status != ""
	default:
		res.Passed = res.Status == b.Expect
	}
	return res
}

// lastStatusLine extracts the final sat/unsat/unknown answer from a
// benchmark's output.
func lastStatusLine(output string) string {
	status := ""
	for _, line := range strings.Split(output, "\n") {
		switch strings.TrimSpace(line) {
		case "sat", "unsat", "unknown":
			status = strings.TrimSpace(line)
		}
	}
	return status
}

func (r *Runner) report(res Result) {
	if r.Out == nil {
		return
	}
	switch {
	case res.Err != nil:
		fmt.Fprintf(r.Out, "%s: error: %v\n", res.Name, res.Err)
	case res.Passed:
		fmt.Fprintf(r.Out, "%s: %s ok (%s)\n", res.Name, res.Status, res.Elapsed.Round(time.Millisecond))
	default:
		fmt.Fprintf(r.Out, "%s: %s, expected %s (%s)\n", res.Name, res.Status, res.Expect, res.Elapsed.Round(time.Millisecond))
	}
}

// Failed counts results that did not pass.
func Failed(results []Result) int {
	n := 0
	for _, res := range results {
		if !res.Passed {
			n++
		}
	}
	return n
}
