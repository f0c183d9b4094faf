package solver

import (
	"fmt"
	"strings"
)

// BackendError carries a failure surfaced by a concrete backend. Not every
// backend populates every field; Message is always set.
type BackendError struct {
	// Backend names the implementation ("z3", "ground").
	Backend string
	// Code is the backend's native error code, 0 when it has none.
	Code int
	// Message is the backend's textual diagnostic.
	Message string
	// BadValue holds an offending input value when the backend reports one.
	BadValue string
	// Terms lists the textual form of implicated terms or sorts, if any.
	Terms []string
}

func (e *BackendError) Error() string {
	var b strings.Builder
	if e.Backend != "" {
		b.WriteString(e.Backend)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Code != 0 {
		fmt.Fprintf(&b, " (code %d)", e.Code)
	}
	if e.BadValue != "" {
		fmt.Fprintf(&b, " (value %s)", e.BadValue)
	}
	if len(e.Terms) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(e.Terms, ", "))
	}
	return b.String()
}

// Errorf builds a BackendError with a formatted message.
func Errorf(backend string, format string, args ...any) *BackendError {
	return &BackendError{Backend: backend, Message: fmt.Sprintf(format, args...)}
}
