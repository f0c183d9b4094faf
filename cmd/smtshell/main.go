package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"smtshell/frontend-go/pkg/driver"
	"smtshell/frontend-go/pkg/ground"
	"smtshell/frontend-go/pkg/interpreter"
	"smtshell/frontend-go/pkg/solver"
	"smtshell/frontend-go/pkg/z3"
)

const cliVersion = "smtshell 0.1.0-dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return 2
	}

	switch args[0] {
	case "--help", "-h", "help":
		printUsage(stdout)
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(stdout, cliVersion)
		return 0
	case "run":
		return cmdRun(args[1:], stdout, stderr)
	case "repl":
		return cmdRepl(args[1:], stdout, stderr)
	case "suite":
		return cmdSuite(args[1:], stdout, stderr)
	default:
		// A bare script path runs it, matching `smtshell run <file>`.
		if fileExists(args[0]) {
			return cmdRun(args, stdout, stderr)
		}
		fmt.Fprintf(stderr, "smtshell: unknown command %q\n", args[0])
		printUsage(stderr)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `%s

Usage:
  smtshell run [--backend=<name>] <file.smt2>   Run a script (use - for stdin).
  smtshell repl [--backend=<name>]              Start an interactive session.
  smtshell suite [--backend=<name>] [--cache=<dir>] <suite.yml>
                                                Run a benchmark suite.
  smtshell version                              Print the version.

Backends: ground (default), z3 (needs cgo and libz3).
`, cliVersion)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func newBackend(name string) (solver.Backend, error) {
	switch name {
	case "", "ground":
		return ground.New(), nil
	case "z3":
		return z3.New()
	default:
		return nil, fmt.Errorf("unknown backend %q", name)
	}
}

func cmdRun(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(stderr)
	backendName := fs.String("backend", "ground", "solver backend (ground or z3)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "smtshell run requires exactly one script file")
		return 2
	}

	path := fs.Arg(0)
	var src []byte
	var err error
	if path == "-" {
		src, err = io.ReadAll(os.Stdin)
	} else {
		src, err = os.ReadFile(path)
	}
	if err != nil {
		fmt.Fprintf(stderr, "smtshell: %v\n", err)
		return 1
	}

	backend, err := newBackend(*backendName)
	if err != nil {
		fmt.Fprintf(stderr, "smtshell: %v\n", err)
		return 1
	}

	session := interpreter.NewSession(backend, stdout)
	defer session.Close()
	if err := session.ExecuteScript(string(src)); err != nil {
		fmt.Fprintf(stderr, "smtshell: %s: %v\n", filepath.Base(path), err)
		return 1
	}
	return 0
}

func cmdSuite(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("suite", flag.ContinueOnError)
	fs.SetOutput(stderr)
	backendName := fs.String("backend", "ground", "solver backend (ground or z3)")
	cacheDir := fs.String("cache", "", "source checkout cache directory")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "smtshell suite requires a suite manifest")
		return 2
	}

	suite, err := driver.LoadSuite(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "smtshell: %v\n", err)
		return 1
	}

	cache := *cacheDir
	if cache == "" {
		if userCache, err := os.UserCacheDir(); err == nil {
			cache = filepath.Join(userCache, "smtshell")
		} else {
			cache = filepath.Join(os.TempDir(), "smtshell-cache")
		}
	}

	runner := &driver.Runner{
		NewBackend: func() (solver.Backend, error) { return newBackend(*backendName) },
		Fetcher:    driver.NewFetcher(cache),
		Out:        stdout,
	}
	results, err := runner.RunSuite(suite)
	if err != nil {
		fmt.Fprintf(stderr, "smtshell: %v\n", err)
		return 1
	}

	failed := driver.Failed(results)
	fmt.Fprintf(stdout, "%d/%d passed\n", len(results)-failed, len(results))
	if failed > 0 {
		return 1
	}
	return 0
}
