// Package solver defines the capability surface the command engine expects
// from an SMT backend: sort and term construction, incremental assertion
// with push/pop scoping, satisfiability checks, and model queries. Concrete
// backends live in sibling packages (pkg/z3, pkg/ground).
package solver

import "math/big"

// Status is the outcome of a satisfiability check.
type Status int

const (
	StatusUnknown Status = iota
	StatusSat
	StatusUnsat
)

func (s Status) String() string {
	switch s {
	case StatusSat:
		return "sat"
	case StatusUnsat:
		return "unsat"
	default:
		return "unknown"
	}
}

// SortKind classifies a sort. Function covers both declared function sorts
// and (Array A B), which the engine models as a unary function sort.
type SortKind int

const (
	KindBool SortKind = iota
	KindInt
	KindReal
	KindBitVec
	KindFunction
	KindUninterpreted
)

func (k SortKind) String() string {
	switch k {
	case KindBool:
		return "Bool"
	case KindInt:
		return "Int"
	case KindReal:
		return "Real"
	case KindBitVec:
		return "BitVec"
	case KindFunction:
		return "Function"
	default:
		return "Uninterpreted"
	}
}

// Sort is a backend-owned type handle. The engine never inspects a sort
// beyond this surface.
type Sort interface {
	Kind() SortKind
	// Width returns the bit width for KindBitVec sorts and 0 otherwise.
	Width() uint
	// Domain and Codomain describe KindFunction sorts; Domain is nil for
	// every other kind.
	Domain() []Sort
	Codomain() Sort
	String() string
}

// Term is a backend-owned term handle tagged with its sort.
type Term interface {
	Sort() Sort
	String() string
}

// Model is a satisfying assignment derived from a backend context. Eval
// evaluates a term under the model (with completion for unconstrained
// names). Close releases backend resources and is idempotent; an evaluated
// model must not have been closed.
type Model interface {
	Eval(t Term) (Term, error)
	String() string
	Close()
}

// Backend is the abstract solver capability consumed by the engine. A
// backend owns exactly one context; Assert/Push/Pop/Check operate on it.
// Term and sort construction is legal as soon as the backend exists;
// SetLogic configures the context once and is called at most once between
// resets.
type Backend interface {
	// Sorts.
	BoolSort() Sort
	IntSort() Sort
	RealSort() Sort
	BitVecSort(width uint) (Sort, error)
	UninterpretedSort(name string) (Sort, error)
	FunctionSort(domain []Sort, codomain Sort) (Sort, error)

	// Declarations. Const introduces an uninterpreted constant (or, with a
	// function sort, an uninterpreted function). FreshVar creates a bound
	// variable for a quantifier binder; every call yields a distinct
	// variable even for repeated names.
	Const(name string, s Sort) (Term, error)
	FreshVar(name string, s Sort) (Term, error)

	// Literals. NumeralLit accepts integer, decimal, and rational text
	// ("7", "2.5", "1/3") targeted at an Int or Real sort.
	BoolLit(v bool) Term
	NumeralLit(text string, s Sort) (Term, error)
	BitVecLit(value *big.Int, width uint) (Term, error)

	// Term construction. Apply performs function application (array
	// select included); Update is functional update at one index (array
	// store). Build covers every fixed-arity and n-ary operator;
	// BuildIndexed covers the indexed bit-vector operators. Quantifier
	// wraps body in forall/exists over the bound variables, in binder
	// order.
	Apply(fn Term, args []Term) (Term, error)
	Update(fn Term, args []Term, value Term) (Term, error)
	Build(op Op, args []Term) (Term, error)
	BuildIndexed(op IndexedOp, indices []uint, arg Term) (Term, error)
	Quantifier(universal bool, bound []Term, body Term) (Term, error)

	// Context operations. The context scope depth always equals the number
	// of un-popped Push calls; ResetAssertions drops every scope and every
	// assertion while keeping declarations usable.
	SetLogic(logic string) error
	SetOption(key, value string) error
	Assert(t Term) error
	Push() error
	Pop() error
	ResetAssertions() error
	Check() (Status, error)
	CheckAssuming(assumptions []Term) (Status, error)
	Model() (Model, error)
	UnsatCore() ([]Term, error)

	// Close releases the context and every backend resource. The backend
	// must not be used afterwards.
	Close() error
}
