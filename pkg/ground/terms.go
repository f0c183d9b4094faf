// Package ground provides a pure-Go solver.Backend that builds an immutable
// term graph and decides only what constant folding can decide. It performs
// no search: an assertion folding to false makes the context unsat, a
// context whose assertions all fold to true is sat, anything else is
// unknown. It is the default backend when the Z3 binding is unavailable and
// the test double for the command engine.
package ground

import (
	"fmt"
	"math/big"
	"strings"

	"smtshell/frontend-go/pkg/solver"
)

type sortNode struct {
	kind  solver.SortKind
	width uint
	dom   []solver.Sort
	cod   solver.Sort
	name  string
}

func (s *sortNode) Kind() solver.SortKind { return s.kind }
func (s *sortNode) Width() uint           { return s.width }
func (s *sortNode) Domain() []solver.Sort { return s.dom }
func (s *sortNode) Codomain() solver.Sort { return s.cod }

func (s *sortNode) String() string {
	switch s.kind {
	case solver.KindBool:
		return "Bool"
	case solver.KindInt:
		return "Int"
	case solver.KindReal:
		return "Real"
	case solver.KindBitVec:
		return fmt.Sprintf("(_ BitVec %d)", s.width)
	case solver.KindFunction:
		var b strings.Builder
		b.WriteString("(->")
		for _, d := range s.dom {
			b.WriteByte(' ')
			b.WriteString(d.String())
		}
		b.WriteByte(' ')
		b.WriteString(s.cod.String())
		b.WriteByte(')')
		return b.String()
	default:
		return s.name
	}
}

type termKind int

const (
	tkConst termKind = iota // declared constant or function
	tkVar                   // quantifier-bound variable
	tkBool
	tkNum // integer or real numeral
	tkBv
	tkOp
	tkIndexed
	tkApply
	tkUpdate
	tkQuant
)

type termNode struct {
	sort solver.Sort
	kind termKind

	name  string   // tkConst, tkVar
	id    int      // tkVar: unique per FreshVar call
	b     bool     // tkBool
	q     *big.Rat // tkNum
	i     *big.Int // tkBv

	op      solver.Op        // tkOp
	iop     solver.IndexedOp // tkIndexed
	indices []uint           // tkIndexed
	args    []*termNode      // tkOp, tkIndexed (one), tkApply, tkUpdate
	fn      *termNode        // tkApply, tkUpdate

	universal bool        // tkQuant
	bound     []*termNode // tkQuant
	body      *termNode   // tkQuant
}

func (t *termNode) Sort() solver.Sort { return t.sort }

func (t *termNode) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t *termNode) write(b *strings.Builder) {
	switch t.kind {
	case tkConst, tkVar:
		b.WriteString(t.name)
	case tkBool:
		if t.b {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case tkNum:
		b.WriteString(numeralText(t.q, t.sort.Kind() == solver.KindReal))
	case tkBv:
		fmt.Fprintf(b, "(_ bv%s %d)", t.i.String(), t.sort.Width())
	case tkOp:
		b.WriteByte('(')
		b.WriteString(t.op.Name())
		for _, a := range t.args {
			b.WriteByte(' ')
			a.write(b)
		}
		b.WriteByte(')')
	case tkIndexed:
		b.WriteString("((_ ")
		b.WriteString(t.iop.Name())
		for _, i := range t.indices {
			fmt.Fprintf(b, " %d", i)
		}
		b.WriteString(") ")
		t.args[0].write(b)
		b.WriteByte(')')
	case tkApply:
		b.WriteByte('(')
		t.fn.write(b)
		for _, a := range t.args {
			b.WriteByte(' ')
			a.write(b)
		}
		b.WriteByte(')')
	case tkUpdate:
		b.WriteString("(store ")
		t.fn.write(b)
		for _, a := range t.args {
			b.WriteByte(' ')
			a.write(b)
		}
		b.WriteByte(' ')
		t.body.write(b)
		b.WriteByte(')')
	case tkQuant:
		if t.universal {
			b.WriteString("(forall (")
		} else {
			b.WriteString("(exists (")
		}
		for i, v := range t.bound {
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(b, "(%s %s)", v.name, v.sort.String())
		}
		b.WriteString(") ")
		t.body.write(b)
		b.WriteByte(')')
	}
}

func numeralText(q *big.Rat, real bool) string {
	if q.IsInt() {
		s := q.Num().String()
		if real {
			return s + ".0"
		}
		return s
	}
	return q.Num().String() + "/" + q.Denom().String()
}
