package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"smtshell/frontend-go/pkg/interpreter"
	"smtshell/frontend-go/pkg/sexpr"
)

const (
	historyFile = ".smtshell_history"
	promptMain  = "smt> "
	promptCont  = "...> "
)

func cmdRepl(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("repl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	backendName := fs.String("backend", "ground", "solver backend (ground or z3)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	backend, err := newBackend(*backendName)
	if err != nil {
		fmt.Fprintf(stderr, "smtshell: %v\n", err)
		return 1
	}
	session := interpreter.NewSession(backend, stdout)
	defer session.Close()

	fmt.Fprintf(stdout, "%s (%s backend)\nCtrl+D or (exit) to quit.\n", cliVersion, *backendName)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		src, ok := readForms(ln)
		if !ok {
			fmt.Fprintln(stdout)
			return 0
		}
		if strings.TrimSpace(src) == "" {
			continue
		}

		forms, err := sexpr.ReadAll(src)
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			continue
		}
		for _, form := range forms {
			if err := session.Execute(form); err != nil {
				fmt.Fprintf(stderr, "error: %v\n", err)
				break
			}
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))

		if session.State() == interpreter.Closed {
			return 0
		}
	}
}

// readForms collects input lines until the text parses as complete
// S-expressions, prompting with a continuation marker inside open forms.
func readForms(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if _, err := sexpr.ReadAll(src); err != nil && sexpr.IsIncomplete(err) {
			continue
		}
		return src, true
	}
}
