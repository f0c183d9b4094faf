package interpreter

import "smtshell/frontend-go/pkg/solver"

// AssertionStack records the terms asserted at each push depth. It always
// holds at least the base level; its depth mirrors the backend context's
// scope depth exactly.
type AssertionStack struct {
	levels [][]solver.Term
}

// NewAssertionStack starts with a single empty base level.
func NewAssertionStack() *AssertionStack {
	return &AssertionStack{levels: [][]solver.Term{{}}}
}

// Depth returns the number of levels, base level included.
func (s *AssertionStack) Depth() int { return len(s.levels) }

// Push opens a new empty level.
func (s *AssertionStack) Push() {
	s.levels = append(s.levels, nil)
}

// Pop removes the top level, discarding its terms. Popping the base level is
// an error.
func (s *AssertionStack) Pop() error {
	if len(s.levels) == 1 {
		return ErrCannotPopBaseLevel
	}
	s.levels = s.levels[:len(s.levels)-1]
	return nil
}

// Add appends a term to the current top level.
func (s *AssertionStack) Add(t solver.Term) {
	top := len(s.levels) - 1
	s.levels[top] = append(s.levels[top], t)
}

// Reset clears everything back to a single empty base level.
func (s *AssertionStack) Reset() {
	s.levels = [][]solver.Term{{}}
}

// All returns every asserted term, base level first, in assertion order.
func (s *AssertionStack) All() []solver.Term {
	var out []solver.Term
	for _, level := range s.levels {
		out = append(out, level...)
	}
	return out
}
