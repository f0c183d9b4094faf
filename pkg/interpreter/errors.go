package interpreter

import (
	"errors"
	"fmt"
)

// Sentinel protocol errors raised by the session state machine.
var (
	ErrLogicAlreadySet    = errors.New("logic already set")
	ErrLogicNotSet        = errors.New("set-logic is required before this command")
	ErrSessionClosed      = errors.New("session is closed")
	ErrCannotPopBaseLevel = errors.New("cannot pop the base assertion level")
)

// SyntaxError reports an S-expression that matches no sort, term, or command
// grammar rule. Form carries the offending expression's text.
type SyntaxError struct {
	Form   string
	Detail string
}

func (e *SyntaxError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("syntax error: %s", e.Form)
	}
	return fmt.Sprintf("syntax error: %s: %s", e.Detail, e.Form)
}

func syntaxErrorf(form fmt.Stringer, format string, args ...any) *SyntaxError {
	return &SyntaxError{Form: form.String(), Detail: fmt.Sprintf(format, args...)}
}

// UnboundNameError reports a name absent from both environment tiers.
type UnboundNameError struct {
	Name string
}

func (e *UnboundNameError) Error() string {
	return fmt.Sprintf("unbound name %q", e.Name)
}

// UnsupportedError reports a recognized but deliberately rejected feature
// (datatypes, recursive functions, proofs, match, annotations).
type UnsupportedError struct {
	Feature string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported: %s", e.Feature)
}

// TypeError reports a term whose sort rules out the requested operation,
// e.g. div on a Bool operand.
type TypeError struct {
	Op   string
	Term string
	Sort string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("type error: %s cannot apply to %s of sort %s", e.Op, e.Term, e.Sort)
}
