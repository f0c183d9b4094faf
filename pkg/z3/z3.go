//go:build cgo
// +build cgo

// Package z3 implements the solver backend over Z3's C API. The binding is
// deliberately narrow: it covers exactly the sort and term constructors the
// command engine emits, plus the incremental solver surface.
package z3

/*
#cgo LDFLAGS: -lz3
#include <stdlib.h>
#include "z3.h"

int model_eval_wrap(Z3_context c, Z3_model m, Z3_ast a, int model_completion, Z3_ast* out) {
	return Z3_model_eval(c, m, a, model_completion, out);
}

// No-op error handler so Z3 reports errors through error codes instead of
// aborting the process.
void go_z3_error_handler(Z3_context c, Z3_error_code e) {
}
static void z3_set_noop_error_handler(Z3_context c) {
	Z3_set_error_handler(c, go_z3_error_handler);
}
*/
import "C"

import (
	"fmt"
	"math/big"
	"runtime"
	"strings"
	"unsafe"

	"smtshell/frontend-go/pkg/solver"
)

// Backend owns one Z3 context and one solver attached to it. All sorts and
// terms it hands out are tied to that context and die with it.
type Backend struct {
	ctx    C.Z3_context
	solver C.Z3_solver
	closed bool
}

// New creates a backend with a fresh context and a general-purpose solver.
// SetLogic later replaces the solver with a logic-specialized one.
func New() (solver.Backend, error) {
	cfg := C.Z3_mk_config()
	k := C.CString("model")
	v := C.CString("true")
	C.Z3_set_param_value(cfg, k, v)
	C.free(unsafe.Pointer(k))
	C.free(unsafe.Pointer(v))

	ctx := C.Z3_mk_context(cfg)
	C.Z3_del_config(cfg)
	C.z3_set_noop_error_handler(ctx)

	s := C.Z3_mk_solver(ctx)
	C.Z3_solver_inc_ref(ctx, s)

	b := &Backend{ctx: ctx, solver: s}
	runtime.SetFinalizer(b, func(x *Backend) { x.Close() })
	return b, nil
}

// Close releases the solver and the context. It is idempotent.
func (b *Backend) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	if b.solver != nil {
		C.Z3_solver_dec_ref(b.ctx, b.solver)
		b.solver = nil
	}
	if b.ctx != nil {
		C.Z3_del_context(b.ctx)
		b.ctx = nil
	}
	return nil
}

func (b *Backend) live() error {
	if b.closed {
		return solver.Errorf("z3", "backend is closed")
	}
	return nil
}

// lastError converts a pending Z3 error code into a BackendError, or returns
// nil when the last call succeeded.
func (b *Backend) lastError(terms ...solver.Term) error {
	code := C.Z3_get_error_code(b.ctx)
	if code == C.Z3_OK {
		return nil
	}
	be := &solver.BackendError{Backend: "z3", Code: int(code)}
	if msg := C.Z3_get_error_msg(b.ctx, code); msg != nil {
		be.Message = C.GoString(msg)
	}
	for _, t := range terms {
		be.Terms = append(be.Terms, t.String())
	}
	return be
}

func (b *Backend) symbol(name string) C.Z3_symbol {
	cstr := C.CString(name)
	defer C.free(unsafe.Pointer(cstr))
	return C.Z3_mk_string_symbol(b.ctx, cstr)
}

// z3Sort carries the kind/shape metadata alongside the Z3 handle. Function
// sorts of arity above one have no Z3_sort handle at all: they exist only as
// declaration shapes and their terms hold func_decls.
type z3Sort struct {
	b        *Backend
	s        C.Z3_sort
	kind     solver.SortKind
	width    uint
	domain   []solver.Sort
	codomain solver.Sort
	name     string
}

func (s *z3Sort) Kind() solver.SortKind { return s.kind }
func (s *z3Sort) Width() uint           { return s.width }
func (s *z3Sort) Domain() []solver.Sort { return s.domain }
func (s *z3Sort) Codomain() solver.Sort { return s.codomain }

func (s *z3Sort) String() string {
	switch s.kind {
	case solver.KindFunction:
		parts := make([]string, len(s.domain))
		for i, d := range s.domain {
			parts[i] = d.String()
		}
		return fmt.Sprintf("(-> %s %s)", strings.Join(parts, " "), s.codomain.String())
	case solver.KindUninterpreted:
		return s.name
	default:
		if s.s == nil {
			return "?"
		}
		return C.GoString(C.Z3_sort_to_string(s.b.ctx, s.s))
	}
}

// z3Term is a reference-counted AST handle. Terms for function declarations
// (arity above one) carry a func_decl instead of an ast.
type z3Term struct {
	b    *Backend
	a    C.Z3_ast
	decl C.Z3_func_decl
	sort *z3Sort
}

func (t *z3Term) Sort() solver.Sort { return t.sort }

func (t *z3Term) String() string {
	if t.a == nil {
		if t.decl != nil {
			sym := C.Z3_get_decl_name(t.b.ctx, t.decl)
			return C.GoString(C.Z3_get_symbol_string(t.b.ctx, sym))
		}
		return "?"
	}
	return C.GoString(C.Z3_ast_to_string(t.b.ctx, t.a))
}

func (b *Backend) wrap(a C.Z3_ast, s *z3Sort) (*z3Term, error) {
	if err := b.lastError(); err != nil {
		return nil, err
	}
	C.Z3_inc_ref(b.ctx, a)
	t := &z3Term{b: b, a: a, sort: s}
	runtime.SetFinalizer(t, func(x *z3Term) {
		if x.a != nil && !x.b.closed {
			C.Z3_dec_ref(x.b.ctx, x.a)
			x.a = nil
		}
	})
	return t, nil
}

func (b *Backend) BoolSort() solver.Sort {
	return &z3Sort{b: b, s: C.Z3_mk_bool_sort(b.ctx), kind: solver.KindBool}
}

func (b *Backend) IntSort() solver.Sort {
	return &z3Sort{b: b, s: C.Z3_mk_int_sort(b.ctx), kind: solver.KindInt}
}

func (b *Backend) RealSort() solver.Sort {
	return &z3Sort{b: b, s: C.Z3_mk_real_sort(b.ctx), kind: solver.KindReal}
}

func (b *Backend) BitVecSort(width uint) (solver.Sort, error) {
	if err := b.live(); err != nil {
		return nil, err
	}
	if width == 0 {
		return nil, solver.Errorf("z3", "bit-vector width must be positive")
	}
	return &z3Sort{b: b, s: C.Z3_mk_bv_sort(b.ctx, C.uint(width)), kind: solver.KindBitVec, width: width}, nil
}

func (b *Backend) UninterpretedSort(name string) (solver.Sort, error) {
	if err := b.live(); err != nil {
		return nil, err
	}
	s := C.Z3_mk_uninterpreted_sort(b.ctx, b.symbol(name))
	if err := b.lastError(); err != nil {
		return nil, err
	}
	return &z3Sort{b: b, s: s, kind: solver.KindUninterpreted, name: name}, nil
}

// FunctionSort builds a function sort. A single-argument function maps to a
// Z3 array sort, so applications become selects and updates become stores;
// higher arities keep only the shape and materialize as func_decls in Const.
func (b *Backend) FunctionSort(domain []solver.Sort, codomain solver.Sort) (solver.Sort, error) {
	if err := b.live(); err != nil {
		return nil, err
	}
	if len(domain) == 0 {
		return nil, solver.Errorf("z3", "function sort needs a domain")
	}
	out := &z3Sort{b: b, kind: solver.KindFunction, domain: domain, codomain: codomain}
	if len(domain) == 1 {
		out.s = C.Z3_mk_array_sort(b.ctx, domain[0].(*z3Sort).s, codomain.(*z3Sort).s)
		if err := b.lastError(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (b *Backend) Const(name string, s solver.Sort) (solver.Term, error) {
	if err := b.live(); err != nil {
		return nil, err
	}
	zs := s.(*z3Sort)
	if zs.kind == solver.KindFunction && zs.s == nil {
		dom := make([]C.Z3_sort, len(zs.domain))
		for i, d := range zs.domain {
			dom[i] = d.(*z3Sort).s
		}
		d := C.Z3_mk_func_decl(b.ctx, b.symbol(name), C.uint(len(dom)), &dom[0], zs.codomain.(*z3Sort).s)
		if err := b.lastError(); err != nil {
			return nil, err
		}
		return &z3Term{b: b, decl: d, sort: zs}, nil
	}
	return b.wrap(C.Z3_mk_const(b.ctx, b.symbol(name), zs.s), zs)
}

// FreshVar creates a bound-variable constant with a context-unique name.
func (b *Backend) FreshVar(name string, s solver.Sort) (solver.Term, error) {
	if err := b.live(); err != nil {
		return nil, err
	}
	prefix := C.CString(name)
	defer C.free(unsafe.Pointer(prefix))
	return b.wrap(C.Z3_mk_fresh_const(b.ctx, prefix, s.(*z3Sort).s), s.(*z3Sort))
}

func (b *Backend) BoolLit(v bool) solver.Term {
	var a C.Z3_ast
	if v {
		a = C.Z3_mk_true(b.ctx)
	} else {
		a = C.Z3_mk_false(b.ctx)
	}
	t, _ := b.wrap(a, b.BoolSort().(*z3Sort))
	return t
}

// NumeralLit builds a numeral from text. Real-sorted text is normalized to
// Z3's fraction syntax first, since Z3_mk_numeral does not read every
// decimal form the front end accepts.
func (b *Backend) NumeralLit(text string, s solver.Sort) (solver.Term, error) {
	if err := b.live(); err != nil {
		return nil, err
	}
	zs := s.(*z3Sort)
	if zs.kind == solver.KindReal {
		q, ok := new(big.Rat).SetString(text)
		if !ok {
			return nil, solver.Errorf("z3", "malformed numeral %q", text)
		}
		text = q.RatString()
	}
	cstr := C.CString(text)
	defer C.free(unsafe.Pointer(cstr))
	return b.wrap(C.Z3_mk_numeral(b.ctx, cstr, zs.s), zs)
}

func (b *Backend) BitVecLit(value *big.Int, width uint) (solver.Term, error) {
	s, err := b.BitVecSort(width)
	if err != nil {
		return nil, err
	}
	masked := new(big.Int).And(value, new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), width), big.NewInt(1)))
	cstr := C.CString(masked.String())
	defer C.free(unsafe.Pointer(cstr))
	return b.wrap(C.Z3_mk_numeral(b.ctx, cstr, s.(*z3Sort).s), s.(*z3Sort))
}

// Apply applies a function term: a select for array-backed sorts, a
// func_decl application otherwise.
func (b *Backend) Apply(fn solver.Term, args []solver.Term) (solver.Term, error) {
	if err := b.live(); err != nil {
		return nil, err
	}
	zf := fn.(*z3Term)
	if zf.sort.kind != solver.KindFunction {
		return nil, solver.Errorf("z3", "cannot apply non-function term %s", fn.String())
	}
	if len(args) != len(zf.sort.domain) {
		return nil, solver.Errorf("z3", "wrong argument count for %s", fn.String())
	}
	cod := zf.sort.codomain.(*z3Sort)
	if zf.decl != nil {
		asts := make([]C.Z3_ast, len(args))
		for i, a := range args {
			asts[i] = a.(*z3Term).a
		}
		return b.wrap(C.Z3_mk_app(b.ctx, zf.decl, C.uint(len(asts)), &asts[0]), cod)
	}
	return b.wrap(C.Z3_mk_select(b.ctx, zf.a, args[0].(*z3Term).a), cod)
}

// Update is array store: the function value with one point changed.
func (b *Backend) Update(fn solver.Term, args []solver.Term, value solver.Term) (solver.Term, error) {
	if err := b.live(); err != nil {
		return nil, err
	}
	zf := fn.(*z3Term)
	if zf.sort.kind != solver.KindFunction || zf.a == nil || len(args) != 1 {
		return nil, solver.Errorf("z3", "store needs an array term and one index")
	}
	return b.wrap(C.Z3_mk_store(b.ctx, zf.a, args[0].(*z3Term).a, value.(*z3Term).a), zf.sort)
}

// Quantifier builds a forall/exists over the given fresh constants.
func (b *Backend) Quantifier(universal bool, bound []solver.Term, body solver.Term) (solver.Term, error) {
	if err := b.live(); err != nil {
		return nil, err
	}
	apps := make([]C.Z3_app, len(bound))
	for i, v := range bound {
		apps[i] = C.Z3_to_app(b.ctx, v.(*z3Term).a)
	}
	var a C.Z3_ast
	if universal {
		a = C.Z3_mk_forall_const(b.ctx, 0, C.uint(len(apps)), &apps[0], 0, nil, body.(*z3Term).a)
	} else {
		a = C.Z3_mk_exists_const(b.ctx, 0, C.uint(len(apps)), &apps[0], 0, nil, body.(*z3Term).a)
	}
	return b.wrap(a, b.BoolSort().(*z3Sort))
}
