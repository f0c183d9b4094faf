//go:build !cgo
// +build !cgo

// Without cgo there is no Z3 binding; New reports the backend as
// unavailable so callers can fall back to the ground backend.
package z3

import (
	"smtshell/frontend-go/pkg/solver"
)

// New always fails: the binding needs cgo and libz3.
func New() (solver.Backend, error) {
	return nil, solver.Errorf("z3", "backend unavailable: built without cgo")
}
