//go:build cgo
// +build cgo

package z3

/*
#include "z3.h"
int model_eval_wrap(Z3_context c, Z3_model m, Z3_ast a, int model_completion, Z3_ast* out);
*/
import "C"

import (
	"runtime"

	"smtshell/frontend-go/pkg/solver"
)

// Model wraps a reference-counted Z3_model handle.
type Model struct {
	b      *Backend
	m      C.Z3_model
	closed bool
}

// Model derives a model from the solver's last sat answer. Each call hands
// out a fresh handle; the caller owns it and must Close it.
func (b *Backend) Model() (solver.Model, error) {
	if err := b.live(); err != nil {
		return nil, err
	}
	m := C.Z3_solver_get_model(b.ctx, b.solver)
	if m == nil {
		if err := b.lastError(); err != nil {
			return nil, err
		}
		return nil, solver.Errorf("z3", "no model available")
	}
	C.Z3_model_inc_ref(b.ctx, m)
	mod := &Model{b: b, m: m}
	runtime.SetFinalizer(mod, func(x *Model) { x.Close() })
	return mod, nil
}

// Eval evaluates a term under the model with completion, so unconstrained
// names get default values. The result keeps the input term's sort.
func (m *Model) Eval(t solver.Term) (solver.Term, error) {
	if m.closed {
		return nil, solver.Errorf("z3", "model is closed")
	}
	zt := t.(*z3Term)
	var out C.Z3_ast
	ok := C.model_eval_wrap(m.b.ctx, m.m, zt.a, 1, &out)
	if ok == 0 || out == nil {
		if err := m.b.lastError(t); err != nil {
			return nil, err
		}
		return nil, &solver.BackendError{Backend: "z3", Message: "term has no value in model", Terms: []string{t.String()}}
	}
	return m.b.wrap(out, zt.sort)
}

// String returns Z3's textual rendering of the model.
func (m *Model) String() string {
	if m.closed {
		return "()"
	}
	s := C.Z3_model_to_string(m.b.ctx, m.m)
	if s == nil {
		return "()"
	}
	return C.GoString(s)
}

// Close releases the handle. It is idempotent.
func (m *Model) Close() {
	if m.closed {
		return
	}
	m.closed = true
	if m.m != nil && !m.b.closed {
		C.Z3_model_dec_ref(m.b.ctx, m.m)
	}
	m.m = nil
}
