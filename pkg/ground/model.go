package ground

import (
	"math/big"
	"strings"

	"smtshell/frontend-go/pkg/solver"
)

// Model assigns every declared constant of atomic sort its default value
// (false, 0, 0.0, the zero bit-vector) provided no ground assertion forces
// otherwise. It is a completion model, not a search result: the backend only
// guarantees usefulness when Check did not report unsat.
type Model struct {
	backend *Backend
	assign  map[*termNode]value
	closed  bool
}

// Model derives a model from the current context. Each call produces a new
// model object; the caller owns it and must Close it.
func (b *Backend) Model() (solver.Model, error) {
	if err := b.live(); err != nil {
		return nil, err
	}
	m := &Model{backend: b, assign: make(map[*termNode]value)}
	for _, d := range b.decls {
		if v, ok := defaultValue(d.sort); ok {
			m.assign[d] = v
		}
	}
	return m, nil
}

func defaultValue(s solver.Sort) (value, bool) {
	switch s.Kind() {
	case solver.KindBool:
		return boolVal(false), true
	case solver.KindInt, solver.KindReal:
		return numVal(new(big.Rat)), true
	case solver.KindBitVec:
		return bvVal(new(big.Int), s.Width()), true
	default:
		return value{}, false
	}
}

// Eval evaluates a term under the model, completing unconstrained names with
// sort defaults.
func (m *Model) Eval(t solver.Term) (solver.Term, error) {
	if m.closed {
		return nil, solver.Errorf("ground", "model is closed")
	}
	n := t.(*termNode)
	v, ok := fold(n, m.assign)
	if !ok {
		// Completion: fall back to the default of the term's own sort.
		if dv, has := defaultValue(n.sort); has {
			v = dv
		} else {
			return nil, &solver.BackendError{Backend: "ground", Message: "term has no value in model", Terms: []string{t.String()}}
		}
	}
	return m.backend.literal(v)
}

// Close releases the model; further Eval calls fail. Close is idempotent.
func (m *Model) Close() {
	m.closed = true
	m.assign = nil
}

// String renders the model as (name value) pairs in declaration order.
func (m *Model) String() string {
	if m.closed {
		return "()"
	}
	var b strings.Builder
	b.WriteByte('(')
	first := true
	for _, d := range m.backend.decls {
		v, ok := m.assign[d]
		if !ok {
			continue
		}
		if !first {
			b.WriteByte(' ')
		}
		first = false
		lit, err := m.backend.literal(v)
		if err != nil {
			continue
		}
		b.WriteByte('(')
		b.WriteString(d.name)
		b.WriteByte(' ')
		b.WriteString(lit.String())
		b.WriteByte(')')
	}
	b.WriteByte(')')
	return b.String()
}

func (b *Backend) literal(v value) (solver.Term, error) {
	switch v.kind {
	case vBool:
		return b.BoolLit(v.b), nil
	case vNum:
		s := b.intSort
		if !v.q.IsInt() {
			s = b.realSort
		}
		return &termNode{sort: s, kind: tkNum, q: v.q}, nil
	default:
		return b.BitVecLit(v.i, v.width)
	}
}
