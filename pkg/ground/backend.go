package ground

import (
	"math/big"

	"smtshell/frontend-go/pkg/solver"
)

// Backend implements solver.Backend over the in-memory term graph.
type Backend struct {
	logic   string
	options map[string]string
	levels  [][]*termNode
	decls   []*termNode // declared constants, in declaration order
	nextVar int
	closed  bool

	boolSort *sortNode
	intSort  *sortNode
	realSort *sortNode
}

// New creates an empty backend with a single base assertion scope.
func New() *Backend {
	return &Backend{
		options:  make(map[string]string),
		levels:   [][]*termNode{{}},
		boolSort: &sortNode{kind: solver.KindBool},
		intSort:  &sortNode{kind: solver.KindInt},
		realSort: &sortNode{kind: solver.KindReal},
	}
}

func (b *Backend) errf(format string, args ...any) *solver.BackendError {
	return solver.Errorf("ground", format, args...)
}

func (b *Backend) live() error {
	if b.closed {
		return b.errf("backend is closed")
	}
	return nil
}

// BoolSort returns the boolean sort.
func (b *Backend) BoolSort() solver.Sort { return b.boolSort }

// IntSort returns the integer sort.
func (b *Backend) IntSort() solver.Sort { return b.intSort }

// RealSort returns the real sort.
func (b *Backend) RealSort() solver.Sort { return b.realSort }

// BitVecSort returns the bit-vector sort of the given positive width.
func (b *Backend) BitVecSort(width uint) (solver.Sort, error) {
	if width == 0 {
		return nil, b.errf("bit-vector width must be positive")
	}
	return &sortNode{kind: solver.KindBitVec, width: width}, nil
}

// UninterpretedSort creates a fresh uninterpreted sort with the given name.
func (b *Backend) UninterpretedSort(name string) (solver.Sort, error) {
	if name == "" {
		return nil, b.errf("uninterpreted sort needs a name")
	}
	return &sortNode{kind: solver.KindUninterpreted, name: name}, nil
}

// FunctionSort creates a function sort from domain to codomain.
func (b *Backend) FunctionSort(domain []solver.Sort, codomain solver.Sort) (solver.Sort, error) {
	if len(domain) == 0 {
		return nil, b.errf("function sort needs at least one domain sort")
	}
	return &sortNode{kind: solver.KindFunction, dom: domain, cod: codomain}, nil
}

// Const introduces an uninterpreted constant or function of the given sort.
func (b *Backend) Const(name string, s solver.Sort) (solver.Term, error) {
	if err := b.live(); err != nil {
		return nil, err
	}
	t := &termNode{sort: s, kind: tkConst, name: name}
	b.decls = append(b.decls, t)
	return t, nil
}

// FreshVar creates a distinct bound variable for a quantifier binder.
func (b *Backend) FreshVar(name string, s solver.Sort) (solver.Term, error) {
	if err := b.live(); err != nil {
		return nil, err
	}
	b.nextVar++
	return &termNode{sort: s, kind: tkVar, name: name, id: b.nextVar}, nil
}

// BoolLit returns a boolean literal.
func (b *Backend) BoolLit(v bool) solver.Term {
	return &termNode{sort: b.boolSort, kind: tkBool, b: v}
}

// NumeralLit parses integer, decimal, or rational text into a numeral of the
// target sort.
func (b *Backend) NumeralLit(text string, s solver.Sort) (solver.Term, error) {
	q, ok := new(big.Rat).SetString(text)
	if !ok {
		return nil, &solver.BackendError{Backend: "ground", Message: "malformed numeral", BadValue: text}
	}
	switch s.Kind() {
	case solver.KindInt:
		if !q.IsInt() {
			return nil, &solver.BackendError{Backend: "ground", Message: "non-integer numeral for Int sort", BadValue: text}
		}
		return &termNode{sort: b.intSort, kind: tkNum, q: q}, nil
	case solver.KindReal:
		return &termNode{sort: b.realSort, kind: tkNum, q: q}, nil
	default:
		return nil, &solver.BackendError{Backend: "ground", Message: "numeral sort must be Int or Real", BadValue: s.String()}
	}
}

// BitVecLit builds a bit-vector constant of the given width; the value is
// truncated to the width like the SMT-LIB (_ bvN w) form.
func (b *Backend) BitVecLit(value *big.Int, width uint) (solver.Term, error) {
	if width == 0 {
		return nil, b.errf("bit-vector width must be positive")
	}
	s, err := b.BitVecSort(width)
	if err != nil {
		return nil, err
	}
	masked := new(big.Int).And(value, maskBits(width))
	return &termNode{sort: s, kind: tkBv, i: masked}, nil
}

// Apply performs function application.
func (b *Backend) Apply(fn solver.Term, args []solver.Term) (solver.Term, error) {
	f := fn.(*termNode)
	fs := f.sort
	if fs.Kind() != solver.KindFunction {
		return nil, &solver.BackendError{Backend: "ground", Message: "application head is not a function", Terms: []string{fn.String()}}
	}
	if len(args) != len(fs.Domain()) {
		return nil, b.errf("function %s expects %d arguments, got %d", fn, len(fs.Domain()), len(args))
	}
	return &termNode{sort: fs.Codomain(), kind: tkApply, fn: f, args: toNodes(args)}, nil
}

// Update is functional update at one index (array store).
func (b *Backend) Update(fn solver.Term, args []solver.Term, value solver.Term) (solver.Term, error) {
	f := fn.(*termNode)
	if f.sort.Kind() != solver.KindFunction {
		return nil, &solver.BackendError{Backend: "ground", Message: "store target is not a function", Terms: []string{fn.String()}}
	}
	if len(args) != len(f.sort.Domain()) {
		return nil, b.errf("store on %s expects %d indices, got %d", fn, len(f.sort.Domain()), len(args))
	}
	return &termNode{sort: f.sort, kind: tkUpdate, fn: f, args: toNodes(args), body: value.(*termNode)}, nil
}

// Build constructs an operator application; the result sort is derived from
// the operator and its arguments.
func (b *Backend) Build(op solver.Op, args []solver.Term) (solver.Term, error) {
	if err := b.live(); err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return nil, b.errf("operator %s needs arguments", op.Name())
	}
	nodes := toNodes(args)
	s, err := b.resultSort(op, nodes)
	if err != nil {
		return nil, err
	}
	return &termNode{sort: s, kind: tkOp, op: op, args: nodes}, nil
}

func (b *Backend) resultSort(op solver.Op, args []*termNode) (solver.Sort, error) {
	switch op {
	case solver.OpAnd, solver.OpOr, solver.OpXor, solver.OpDistinct,
		solver.OpNot, solver.OpImplies, solver.OpEq,
		solver.OpLe, solver.OpLt, solver.OpGe, solver.OpGt,
		solver.OpIsInt,
		solver.OpBvUlt, solver.OpBvUle, solver.OpBvUgt, solver.OpBvUge,
		solver.OpBvSlt, solver.OpBvSle, solver.OpBvSgt, solver.OpBvSge:
		return b.boolSort, nil
	case solver.OpIte:
		return args[1].sort, nil
	case solver.OpToReal, solver.OpRealDiv:
		return b.realSort, nil
	case solver.OpToInt, solver.OpIntDiv, solver.OpMod:
		return b.intSort, nil
	case solver.OpConcat:
		width := uint(0)
		for _, a := range args {
			if a.sort.Kind() != solver.KindBitVec {
				return nil, &solver.BackendError{Backend: "ground", Message: "concat needs bit-vector arguments", Terms: []string{a.String()}}
			}
			width += a.sort.Width()
		}
		return b.BitVecSort(width)
	default:
		return args[0].sort, nil
	}
}

// BuildIndexed constructs an indexed bit-vector operation.
func (b *Backend) BuildIndexed(op solver.IndexedOp, indices []uint, arg solver.Term) (solver.Term, error) {
	a := arg.(*termNode)
	if a.sort.Kind() != solver.KindBitVec {
		return nil, &solver.BackendError{Backend: "ground", Message: "indexed operator needs a bit-vector argument", Terms: []string{arg.String()}}
	}
	w := a.sort.Width()
	var outW uint
	switch op {
	case solver.IdxExtract:
		if len(indices) != 2 {
			return nil, b.errf("extract takes two indices")
		}
		hi, lo := indices[0], indices[1]
		if hi < lo || hi >= w {
			return nil, b.errf("extract indices %d %d out of range for width %d", hi, lo, w)
		}
		outW = hi - lo + 1
	case solver.IdxRepeat:
		if len(indices) != 1 || indices[0] == 0 {
			return nil, b.errf("repeat takes one positive index")
		}
		outW = w * indices[0]
	case solver.IdxZeroExtend, solver.IdxSignExtend:
		if len(indices) != 1 {
			return nil, b.errf("%s takes one index", op.Name())
		}
		outW = w + indices[0]
	case solver.IdxRotateLeft, solver.IdxRotateRight:
		if len(indices) != 1 {
			return nil, b.errf("%s takes one index", op.Name())
		}
		outW = w
	default:
		return nil, b.errf("unknown indexed operator")
	}
	s, err := b.BitVecSort(outW)
	if err != nil {
		return nil, err
	}
	return &termNode{sort: s, kind: tkIndexed, iop: op, indices: indices, args: []*termNode{a}}, nil
}

// Quantifier wraps body in a forall/exists over the bound variables.
func (b *Backend) Quantifier(universal bool, bound []solver.Term, body solver.Term) (solver.Term, error) {
	if len(bound) == 0 {
		return nil, b.errf("quantifier needs at least one bound variable")
	}
	vars := make([]*termNode, len(bound))
	for i, v := range bound {
		n := v.(*termNode)
		if n.kind != tkVar {
			return nil, &solver.BackendError{Backend: "ground", Message: "quantifier binder is not a bound variable", Terms: []string{v.String()}}
		}
		vars[i] = n
	}
	return &termNode{sort: b.boolSort, kind: tkQuant, universal: universal, bound: vars, body: body.(*termNode)}, nil
}

// SetLogic records the logic name; the folding engine does not specialize.
func (b *Backend) SetLogic(logic string) error {
	if err := b.live(); err != nil {
		return err
	}
	b.logic = logic
	return nil
}

// SetOption records a backend option; all options are accepted.
func (b *Backend) SetOption(key, value string) error {
	if err := b.live(); err != nil {
		return err
	}
	b.options[key] = value
	return nil
}

// Assert adds a formula to the current scope.
func (b *Backend) Assert(t solver.Term) error {
	if err := b.live(); err != nil {
		return err
	}
	n := t.(*termNode)
	if n.sort.Kind() != solver.KindBool {
		return &solver.BackendError{Backend: "ground", Message: "asserted term is not boolean", Terms: []string{t.String()}}
	}
	top := len(b.levels) - 1
	b.levels[top] = append(b.levels[top], n)
	return nil
}

// Push opens a new assertion scope.
func (b *Backend) Push() error {
	if err := b.live(); err != nil {
		return err
	}
	b.levels = append(b.levels, nil)
	return nil
}

// Pop discards the innermost scope. The base scope cannot be popped.
func (b *Backend) Pop() error {
	if err := b.live(); err != nil {
		return err
	}
	if len(b.levels) == 1 {
		return b.errf("cannot pop the base scope")
	}
	b.levels = b.levels[:len(b.levels)-1]
	return nil
}

// ScopeDepth returns the number of open scopes including the base scope.
func (b *Backend) ScopeDepth() int { return len(b.levels) }

// ResetAssertions drops every scope and every assertion; declarations stay
// usable.
func (b *Backend) ResetAssertions() error {
	if err := b.live(); err != nil {
		return err
	}
	b.levels = [][]*termNode{{}}
	return nil
}

func (b *Backend) asserted() []*termNode {
	var out []*termNode
	for _, level := range b.levels {
		out = append(out, level...)
	}
	return out
}

// Check folds every asserted formula: any false makes the context unsat,
// all true makes it sat, anything else is unknown.
func (b *Backend) Check() (solver.Status, error) {
	return b.CheckAssuming(nil)
}

// CheckAssuming behaves like Check with extra assumed formulas that are not
// retained.
func (b *Backend) CheckAssuming(assumptions []solver.Term) (solver.Status, error) {
	if err := b.live(); err != nil {
		return solver.StatusUnknown, err
	}
	all := b.asserted()
	for _, a := range assumptions {
		all = append(all, a.(*termNode))
	}
	decided := true
	for _, t := range all {
		v, ok := fold(t, nil)
		if !ok {
			decided = false
			continue
		}
		if !v.b {
			return solver.StatusUnsat, nil
		}
	}
	if decided {
		return solver.StatusSat, nil
	}
	return solver.StatusUnknown, nil
}

// UnsatCore returns the asserted formulas that individually fold to false.
func (b *Backend) UnsatCore() ([]solver.Term, error) {
	if err := b.live(); err != nil {
		return nil, err
	}
	var core []solver.Term
	for _, t := range b.asserted() {
		if v, ok := fold(t, nil); ok && !v.b {
			core = append(core, t)
		}
	}
	if len(core) == 0 {
		return nil, b.errf("no unsat core available")
	}
	return core, nil
}

// Close releases the backend; all further operations fail.
func (b *Backend) Close() error {
	b.closed = true
	b.levels = nil
	b.decls = nil
	return nil
}

func toNodes(ts []solver.Term) []*termNode {
	out := make([]*termNode, len(ts))
	for i, t := range ts {
		out[i] = t.(*termNode)
	}
	return out
}

func maskBits(width uint) *big.Int {
	one := big.NewInt(1)
	m := new(big.Int).Lsh(one, width)
	return m.Sub(m, one)
}
