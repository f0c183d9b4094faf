package ground

import (
	"math/big"

	"smtshell/frontend-go/pkg/solver"
)

type valueKind int

const (
	vBool valueKind = iota
	vNum
	vBv
)

// value is a folded constant: a bool, a rational (covering Int and Real), or
// a masked bit-vector with its width.
type value struct {
	kind  valueKind
	b     bool
	q     *big.Rat
	i     *big.Int
	width uint
}

func boolVal(b bool) value       { return value{kind: vBool, b: b} }
func numVal(q *big.Rat) value    { return value{kind: vNum, q: q} }
func bvVal(i *big.Int, w uint) value {
	return value{kind: vBv, i: new(big.Int).And(i, maskBits(w)), width: w}
}

func (v value) equal(o value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case vBool:
		return v.b == o.b
	case vNum:
		return v.q.Cmp(o.q) == 0
	default:
		return v.width == o.width && v.i.Cmp(o.i) == 0
	}
}

// fold evaluates a term to a constant when possible. assign supplies values
// for declared constants (model evaluation); a nil assign folds only ground
// subterms.
func fold(t *termNode, assign map[*termNode]value) (value, bool) {
	switch t.kind {
	case tkBool:
		return boolVal(t.b), true
	case tkNum:
		return numVal(t.q), true
	case tkBv:
		return bvVal(t.i, t.sort.Width()), true
	case tkConst:
		if assign != nil {
			if v, ok := assign[t]; ok {
				return v, true
			}
		}
		return value{}, false
	case tkOp:
		return foldOp(t, assign)
	case tkIndexed:
		return foldIndexed(t, assign)
	case tkQuant:
		// A quantifier whose body is a ground constant has that constant's
		// value regardless of the binders.
		if v, ok := fold(t.body, assign); ok {
			return v, true
		}
		return value{}, false
	default:
		return value{}, false
	}
}

func foldArgs(args []*termNode, assign map[*termNode]value) ([]value, bool) {
	out := make([]value, len(args))
	for i, a := range args {
		v, ok := fold(a, assign)
		if !ok {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

func foldOp(t *termNode, assign map[*termNode]value) (value, bool) {
	switch t.op {
	case solver.OpAnd:
		// Short-circuit: one false operand decides the conjunction even
		// when siblings do not fold.
		all := true
		for _, a := range t.args {
			v, ok := fold(a, assign)
			if !ok {
				all = false
				continue
			}
			if !v.b {
				return boolVal(false), true
			}
		}
		if all {
			return boolVal(true), true
		}
		return value{}, false
	case solver.OpOr:
		all := true
		for _, a := range t.args {
			v, ok := fold(a, assign)
			if !ok {
				all = false
				continue
			}
			if v.b {
				return boolVal(true), true
			}
		}
		if all {
			return boolVal(false), true
		}
		return value{}, false
	case solver.OpXor:
		vs, ok := foldArgs(t.args, assign)
		if !ok {
			return value{}, false
		}
		acc := false
		for _, v := range vs {
			acc = acc != v.b
		}
		return boolVal(acc), true
	case solver.OpNot:
		v, ok := fold(t.args[0], assign)
		if !ok {
			return value{}, false
		}
		return boolVal(!v.b), true
	case solver.OpImplies:
		l, lok := fold(t.args[0], assign)
		r, rok := fold(t.args[1], assign)
		if lok && !l.b {
			return boolVal(true), true
		}
		if rok && r.b {
			return boolVal(true), true
		}
		if lok && rok {
			return boolVal(!l.b || r.b), true
		}
		return value{}, false
	case solver.OpEq:
		if t.args[0] == t.args[1] {
			return boolVal(true), true
		}
		vs, ok := foldArgs(t.args, assign)
		if !ok {
			return value{}, false
		}
		return boolVal(vs[0].equal(vs[1])), true
	case solver.OpDistinct:
		for i := range t.args {
			for j := i + 1; j < len(t.args); j++ {
				if t.args[i] == t.args[j] {
					return boolVal(false), true
				}
			}
		}
		vs, ok := foldArgs(t.args, assign)
		if !ok {
			return value{}, false
		}
		for i := range vs {
			for j := i + 1; j < len(vs); j++ {
				if vs[i].equal(vs[j]) {
					return boolVal(false), true
				}
			}
		}
		return boolVal(true), true
	case solver.OpIte:
		c, ok := fold(t.args[0], assign)
		if !ok {
			return value{}, false
		}
		if c.b {
			return fold(t.args[1], assign)
		}
		return fold(t.args[2], assign)
	case solver.OpAdd, solver.OpSub, solver.OpMul, solver.OpRealDiv:
		vs, ok := foldArgs(t.args, assign)
		if !ok {
			return value{}, false
		}
		return foldRatBinary(t.op, vs[0], vs[1])
	case solver.OpNeg:
		v, ok := fold(t.args[0], assign)
		if !ok {
			return value{}, false
		}
		return numVal(new(big.Rat).Neg(v.q)), true
	case solver.OpAbs:
		v, ok := fold(t.args[0], assign)
		if !ok {
			return value{}, false
		}
		return numVal(new(big.Rat).Abs(v.q)), true
	case solver.OpIntDiv, solver.OpMod:
		vs, ok := foldArgs(t.args, assign)
		if !ok {
			return value{}, false
		}
		return foldIntDivMod(t.op, vs[0], vs[1])
	case solver.OpToReal:
		v, ok := fold(t.args[0], assign)
		if !ok {
			return value{}, false
		}
		return numVal(new(big.Rat).Set(v.q)), true
	case solver.OpToInt:
		v, ok := fold(t.args[0], assign)
		if !ok {
			return value{}, false
		}
		return numVal(new(big.Rat).SetInt(ratFloor(v.q))), true
	case solver.OpIsInt:
		v, ok := fold(t.args[0], assign)
		if !ok {
			return value{}, false
		}
		return boolVal(v.q.IsInt()), true
	case solver.OpLe, solver.OpLt, solver.OpGe, solver.OpGt:
		vs, ok := foldArgs(t.args, assign)
		if !ok {
			return value{}, false
		}
		c := vs[0].q.Cmp(vs[1].q)
		switch t.op {
		case solver.OpLe:
			return boolVal(c <= 0), true
		case solver.OpLt:
			return boolVal(c < 0), true
		case solver.OpGe:
			return boolVal(c >= 0), true
		default:
			return boolVal(c > 0), true
		}
	case solver.OpConcat:
		vs, ok := foldArgs(t.args, assign)
		if !ok {
			return value{}, false
		}
		acc := new(big.Int)
		width := uint(0)
		for _, v := range vs {
			acc.Lsh(acc, v.width)
			acc.Or(acc, v.i)
			width += v.width
		}
		return bvVal(acc, width), true
	case solver.OpBvNot:
		v, ok := fold(t.args[0], assign)
		if !ok {
			return value{}, false
		}
		return bvVal(new(big.Int).Xor(v.i, maskBits(v.width)), v.width), true
	case solver.OpBvNeg:
		v, ok := fold(t.args[0], assign)
		if !ok {
			return value{}, false
		}
		return bvVal(new(big.Int).Neg(v.i), v.width), true
	default:
		vs, ok := foldArgs(t.args, assign)
		if !ok {
			return value{}, false
		}
		return foldBvOp(t.op, vs)
	}
}

func foldRatBinary(op solver.Op, l, r value) (value, bool) {
	out := new(big.Rat)
	switch op {
	case solver.OpAdd:
		out.Add(l.q, r.q)
	case solver.OpSub:
		out.Sub(l.q, r.q)
	case solver.OpMul:
		out.Mul(l.q, r.q)
	case solver.OpRealDiv:
		if r.q.Sign() == 0 {
			return value{}, false // division by zero stays symbolic
		}
		out.Quo(l.q, r.q)
	}
	return numVal(out), true
}

func foldIntDivMod(op solver.Op, l, r value) (value, bool) {
	if r.q.Sign() == 0 {
		return value{}, false
	}
	q, m := new(big.Int), new(big.Int)
	// Euclidean division, matching SMT-LIB Ints semantics.
	q.DivMod(l.q.Num(), r.q.Num(), m)
	if op == solver.OpIntDiv {
		return numVal(new(big.Rat).SetInt(q)), true
	}
	return numVal(new(big.Rat).SetInt(m)), true
}

func foldBvOp(op solver.Op, vs []value) (value, bool) {
	w := vs[0].width
	bin := func(f func(a, b *big.Int) *big.Int) (value, bool) {
		acc := vs[0].i
		for _, v := range vs[1:] {
			acc = f(acc, v.i)
		}
		return bvVal(acc, w), true
	}
	switch op {
	case solver.OpBvAnd:
		return bin(func(a, b *big.Int) *big.Int { return new(big.Int).And(a, b) })
	case solver.OpBvOr:
		return bin(func(a, b *big.Int) *big.Int { return new(big.Int).Or(a, b) })
	case solver.OpBvXor:
		return bin(func(a, b *big.Int) *big.Int { return new(big.Int).Xor(a, b) })
	case solver.OpBvAdd:
		return bin(func(a, b *big.Int) *big.Int { return new(big.Int).Add(a, b) })
	case solver.OpBvMul:
		return bin(func(a, b *big.Int) *big.Int { return new(big.Int).Mul(a, b) })
	case solver.OpBvSub:
		return bvVal(new(big.Int).Sub(vs[0].i, vs[1].i), w), true
	case solver.OpBvUdiv:
		if vs[1].i.Sign() == 0 {
			return bvVal(maskBits(w), w), true // bvudiv by zero is all ones
		}
		return bvVal(new(big.Int).Div(vs[0].i, vs[1].i), w), true
	case solver.OpBvUrem:
		if vs[1].i.Sign() == 0 {
			return bvVal(vs[0].i, w), true
		}
		return bvVal(new(big.Int).Mod(vs[0].i, vs[1].i), w), true
	case solver.OpBvSdiv:
		a, b := toSigned(vs[0]), toSigned(vs[1])
		if b.Sign() == 0 {
			return value{}, false
		}
		return bvVal(new(big.Int).Quo(a, b), w), true
	case solver.OpBvSrem:
		a, b := toSigned(vs[0]), toSigned(vs[1])
		if b.Sign() == 0 {
			return value{}, false
		}
		return bvVal(new(big.Int).Rem(a, b), w), true
	case solver.OpBvShl:
		n, ok := shiftAmount(vs[1], w)
		if !ok {
			return bvVal(new(big.Int), w), true
		}
		return bvVal(new(big.Int).Lsh(vs[0].i, n), w), true
	case solver.OpBvLshr:
		n, ok := shiftAmount(vs[1], w)
		if !ok {
			return bvVal(new(big.Int), w), true
		}
		return bvVal(new(big.Int).Rsh(vs[0].i, n), w), true
	case solver.OpBvAshr:
		n, ok := shiftAmount(vs[1], w)
		a := toSigned(vs[0])
		if !ok {
			if a.Sign() < 0 {
				return bvVal(maskBits(w), w), true
			}
			return bvVal(new(big.Int), w), true
		}
		return bvVal(new(big.Int).Rsh(a, n), w), true
	case solver.OpBvUlt:
		return boolVal(vs[0].i.Cmp(vs[1].i) < 0), true
	case solver.OpBvUle:
		return boolVal(vs[0].i.Cmp(vs[1].i) <= 0), true
	case solver.OpBvUgt:
		return boolVal(vs[0].i.Cmp(vs[1].i) > 0), true
	case solver.OpBvUge:
		return boolVal(vs[0].i.Cmp(vs[1].i) >= 0), true
	case solver.OpBvSlt:
		return boolVal(toSigned(vs[0]).Cmp(toSigned(vs[1])) < 0), true
	case solver.OpBvSle:
		return boolVal(toSigned(vs[0]).Cmp(toSigned(vs[1])) <= 0), true
	case solver.OpBvSgt:
		return boolVal(toSigned(vs[0]).Cmp(toSigned(vs[1])) > 0), true
	case solver.OpBvSge:
		return boolVal(toSigned(vs[0]).Cmp(toSigned(vs[1])) >= 0), true
	default:
		return value{}, false
	}
}

func foldIndexed(t *termNode, assign map[*termNode]value) (value, bool) {
	v, ok := fold(t.args[0], assign)
	if !ok {
		return value{}, false
	}
	w := v.width
	switch t.iop {
	case solver.IdxExtract:
		hi, lo := t.indices[0], t.indices[1]
		shifted := new(big.Int).Rsh(v.i, lo)
		return bvVal(shifted, hi-lo+1), true
	case solver.IdxRepeat:
		acc := new(big.Int)
		for i := uint(0); i < t.indices[0]; i++ {
			acc.Lsh(acc, w)
			acc.Or(acc, v.i)
		}
		return bvVal(acc, w*t.indices[0]), true
	case solver.IdxZeroExtend:
		return bvVal(v.i, w+t.indices[0]), true
	case solver.IdxSignExtend:
		return bvVal(toSigned(v), w+t.indices[0]), true
	case solver.IdxRotateLeft:
		return rotate(v, t.indices[0], true), true
	case solver.IdxRotateRight:
		return rotate(v, t.indices[0], false), true
	default:
		return value{}, false
	}
}

func rotate(v value, n uint, left bool) value {
	w := v.width
	if w == 0 {
		return v
	}
	n %= w
	if !left {
		n = (w - n) % w
	}
	hi := new(big.Int).Lsh(v.i, n)
	lo := new(big.Int).Rsh(v.i, w-n)
	return bvVal(hi.Or(hi, lo), w)
}

func toSigned(v value) *big.Int {
	half := new(big.Int).Lsh(big.NewInt(1), v.width-1)
	if v.i.Cmp(half) >= 0 {
		full := new(big.Int).Lsh(big.NewInt(1), v.width)
		return new(big.Int).Sub(v.i, full)
	}
	return new(big.Int).Set(v.i)
}

func shiftAmount(v value, w uint) (uint, bool) {
	if !v.i.IsUint64() || v.i.Uint64() >= uint64(w) {
		return 0, false
	}
	return uint(v.i.Uint64()), true
}

func ratFloor(q *big.Rat) *big.Int {
	out := new(big.Int)
	rem := new(big.Int)
	out.DivMod(q.Num(), q.Denom(), rem)
	return out
}
