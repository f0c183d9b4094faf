//go:build cgo
// +build cgo

package z3

/*
#include <stdlib.h>
#include "z3.h"
*/
import "C"

import (
	"unsafe"

	"smtshell/frontend-go/pkg/solver"
)

// SetLogic swaps the general-purpose solver for a logic-specialized one.
// The session calls this before anything has been asserted, so no state is
// lost in the swap.
func (b *Backend) SetLogic(logic string) error {
	if err := b.live(); err != nil {
		return err
	}
	s := C.Z3_mk_solver_for_logic(b.ctx, b.symbol(logic))
	if err := b.lastError(); err != nil {
		return err
	}
	C.Z3_solver_inc_ref(b.ctx, s)
	C.Z3_solver_dec_ref(b.ctx, b.solver)
	b.solver = s
	return nil
}

// SetOption forwards a solver option through Z3's global parameter table.
// Unknown keys raise a Z3 error, which is surfaced; the session treats that
// as the command failing, matching how z3 itself reacts to bad options.
func (b *Backend) SetOption(key, value string) error {
	if err := b.live(); err != nil {
		return err
	}
	k := C.CString(key)
	v := C.CString(value)
	C.Z3_global_param_set(k, v)
	C.free(unsafe.Pointer(k))
	C.free(unsafe.Pointer(v))
	return b.lastError()
}

func (b *Backend) Assert(t solver.Term) error {
	if err := b.live(); err != nil {
		return err
	}
	C.Z3_solver_assert(b.ctx, b.solver, t.(*z3Term).a)
	return b.lastError(t)
}

func (b *Backend) Push() error {
	if err := b.live(); err != nil {
		return err
	}
	C.Z3_solver_push(b.ctx, b.solver)
	return b.lastError()
}

func (b *Backend) Pop() error {
	if err := b.live(); err != nil {
		return err
	}
	C.Z3_solver_pop(b.ctx, b.solver, 1)
	return b.lastError()
}

// ResetAssertions drops every assertion and scope while keeping
// declarations usable, since those live in the context, not the solver.
func (b *Backend) ResetAssertions() error {
	if err := b.live(); err != nil {
		return err
	}
	C.Z3_solver_reset(b.ctx, b.solver)
	return b.lastError()
}

func (b *Backend) Check() (solver.Status, error) {
	if err := b.live(); err != nil {
		return solver.StatusUnknown, err
	}
	return b.status(C.Z3_solver_check(b.ctx, b.solver))
}

func (b *Backend) CheckAssuming(assumptions []solver.Term) (solver.Status, error) {
	if err := b.live(); err != nil {
		return solver.StatusUnknown, err
	}
	if len(assumptions) == 0 {
		return b.Check()
	}
	as := asts(assumptions)
	return b.status(C.Z3_solver_check_assumptions(b.ctx, b.solver, C.uint(len(as)), &as[0]))
}

func (b *Backend) status(r C.Z3_lbool) (solver.Status, error) {
	switch r {
	case C.Z3_L_TRUE:
		return solver.StatusSat, nil
	case C.Z3_L_FALSE:
		return solver.StatusUnsat, nil
	default:
		if err := b.lastError(); err != nil {
			return solver.StatusUnknown, err
		}
		return solver.StatusUnknown, nil
	}
}

// UnsatCore returns the assumptions responsible for the last unsat answer.
func (b *Backend) UnsatCore() ([]solver.Term, error) {
	if err := b.live(); err != nil {
		return nil, err
	}
	vec := C.Z3_solver_get_unsat_core(b.ctx, b.solver)
	if err := b.lastError(); err != nil {
		return nil, err
	}
	C.Z3_ast_vector_inc_ref(b.ctx, vec)
	defer C.Z3_ast_vector_dec_ref(b.ctx, vec)

	n := int(C.Z3_ast_vector_size(b.ctx, vec))
	out := make([]solver.Term, 0, n)
	boolS := b.BoolSort().(*z3Sort)
	for i := 0; i < n; i++ {
		a := C.Z3_ast_vector_get(b.ctx, vec, C.uint(i))
		t, err := b.wrap(a, boolS)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
