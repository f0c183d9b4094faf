package interpreter

import "smtshell/frontend-go/pkg/solver"

// Binding pairs a name with its term; binders keep declaration order.
type Binding struct {
	Name string
	Term solver.Term
}

// Environment resolves names against two tiers: a session-owned permanent
// table of declared constants and functions, and a chain of lexically scoped
// frames introduced by let/forall/exists. Scoped bindings shadow permanent
// ones; inner frames shadow outer frames. Extension never mutates the
// receiver, so a parent environment stays valid after a child scope is
// built from it.
type Environment struct {
	permanent map[string]solver.Term
	scoped    map[string]solver.Term
	parent    *Environment
}

// NewEnvironment creates a root environment over the given permanent table.
// The table is shared, not copied: permanent declarations made later are
// visible through every environment derived from this one.
func NewEnvironment(permanent map[string]solver.Term) *Environment {
	return &Environment{permanent: permanent}
}

// Extend returns a child environment with the bindings added as a new
// innermost frame. The receiver is unchanged. Duplicate names inside one
// extension silently keep the last occurrence, matching the permissive
// shadowing the rest of the engine uses.
func (e *Environment) Extend(bindings []Binding) *Environment {
	frame := make(map[string]solver.Term, len(bindings))
	for _, b := range bindings {
		frame[b.Name] = b.Term
	}
	return &Environment{permanent: e.permanent, scoped: frame, parent: e}
}

// Resolve looks a name up, innermost scoped frame first, then outward, then
// the permanent tier.
func (e *Environment) Resolve(name string) (solver.Term, error) {
	for env := e; env != nil; env = env.parent {
		if env.scoped != nil {
			if t, ok := env.scoped[name]; ok {
				return t, nil
			}
		}
	}
	if t, ok := e.permanent[name]; ok {
		return t, nil
	}
	return nil, &UnboundNameError{Name: name}
}

// Bind registers a permanent declaration. Re-declaration silently
// overwrites; the source language never guarded this and the engine keeps
// that permissiveness.
func (e *Environment) Bind(name string, term solver.Term) {
	e.permanent[name] = term
}
