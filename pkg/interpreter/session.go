package interpreter

import (
	"fmt"
	"io"

	"smtshell/frontend-go/pkg/solver"
)

// State is the session lifecycle phase.
type State int

const (
	// Uninitialized means no logic has been selected yet.
	Uninitialized State = iota
	// Active means set-logic has configured the backend context.
	Active
	// Closed means exit has released backend resources.
	Closed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Active:
		return "active"
	default:
		return "closed"
	}
}

// Session aggregates everything one SMT-LIB run owns: the backend, the
// selected logic, declared sorts and names, the assertion stack, the cached
// model, and the info/option tables. Commands are processed strictly in
// sequence; an error aborts the current command and leaves the session in
// whatever partial state preceded it.
type Session struct {
	state   State
	logic   string
	backend solver.Backend

	permanent map[string]solver.Term
	env       *Environment
	sorts     map[string]solver.Sort

	stack *AssertionStack
	model solver.Model // cached; nil when invalidated

	info    map[string]string
	options map[string]string

	out io.Writer
}

// NewSession creates an uninitialized session over the given backend,
// writing command results to out.
func NewSession(backend solver.Backend, out io.Writer) *Session {
	permanent := make(map[string]solver.Term)
	return &Session{
		state:     Uninitialized,
		backend:   backend,
		permanent: permanent,
		env:       NewEnvironment(permanent),
		sorts:     make(map[string]solver.Sort),
		stack:     NewAssertionStack(),
		info:      make(map[string]string),
		options:   make(map[string]string),
		out:       out,
	}
}

// State returns the current lifecycle phase.
func (s *Session) State() State { return s.state }

// Logic returns the selected logic, empty before set-logic.
func (s *Session) Logic() string { return s.logic }

// StackDepth returns the assertion-stack depth, base level included.
func (s *Session) StackDepth() int { return s.stack.Depth() }

// Environment exposes the root environment (permanent declarations only).
func (s *Session) Environment() *Environment { return s.env }

func (s *Session) requireOpen() error {
	if s.state == Closed {
		return ErrSessionClosed
	}
	return nil
}

func (s *Session) requireActive(command string) error {
	if s.state == Closed {
		return ErrSessionClosed
	}
	if s.state != Active {
		return fmt.Errorf("%s: %w", command, ErrLogicNotSet)
	}
	return nil
}

// invalidateModel discards the cached model. The cache holds the only
// reference, so closing here structurally prevents use-after-free.
func (s *Session) invalidateModel() {
	if s.model != nil {
		s.model.Close()
		s.model = nil
	}
}

// currentModel returns the cached model, deriving one from the backend on
// first use after an invalidation.
func (s *Session) currentModel() (solver.Model, error) {
	if s.model != nil {
		return s.model, nil
	}
	m, err := s.backend.Model()
	if err != nil {
		return nil, err
	}
	s.model = m
	return m, nil
}

// HasCachedModel reports whether a model is currently cached (test hook for
// the invalidation discipline).
func (s *Session) HasCachedModel() bool { return s.model != nil }

// Close releases the model, the backend context, and marks the session
// closed. Further commands fail with ErrSessionClosed.
func (s *Session) Close() error {
	if s.state == Closed {
		return nil
	}
	s.invalidateModel()
	err := s.backend.Close()
	s.state = Closed
	return err
}

func (s *Session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *Session) println(line string) {
	fmt.Fprintln(s.out, line)
}
