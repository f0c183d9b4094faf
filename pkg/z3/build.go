//go:build cgo
// +build cgo

package z3

/*
#include "z3.h"
*/
import "C"

import (
	"smtshell/frontend-go/pkg/solver"
)

func asts(args []solver.Term) []C.Z3_ast {
	out := make([]C.Z3_ast, len(args))
	for i, a := range args {
		out[i] = a.(*z3Term).a
	}
	return out
}

// Build constructs an operator application. The engine has already folded
// associativity and chaining, so fixed-arity ops arrive at their natural
// arity; the n-ary ops map onto Z3's variadic constructors directly or, for
// the operators Z3 treats as binary (xor, concat, the bit-vector ops), onto
// a left fold.
func (b *Backend) Build(op solver.Op, args []solver.Term) (solver.Term, error) {
	if err := b.live(); err != nil {
		return nil, err
	}
	as := asts(args)
	boolS := b.BoolSort().(*z3Sort)

	switch op {
	case solver.OpAnd:
		return b.wrap(C.Z3_mk_and(b.ctx, C.uint(len(as)), &as[0]), boolS)
	case solver.OpOr:
		return b.wrap(C.Z3_mk_or(b.ctx, C.uint(len(as)), &as[0]), boolS)
	case solver.OpDistinct:
		return b.wrap(C.Z3_mk_distinct(b.ctx, C.uint(len(as)), &as[0]), boolS)
	case solver.OpXor:
		return b.foldBinary(as, boolS, func(l, r C.Z3_ast) C.Z3_ast {
			return C.Z3_mk_xor(b.ctx, l, r)
		})
	case solver.OpNot:
		return b.wrap(C.Z3_mk_not(b.ctx, as[0]), boolS)
	case solver.OpImplies:
		return b.wrap(C.Z3_mk_implies(b.ctx, as[0], as[1]), boolS)
	case solver.OpEq:
		return b.wrap(C.Z3_mk_eq(b.ctx, as[0], as[1]), boolS)
	case solver.OpIte:
		return b.wrap(C.Z3_mk_ite(b.ctx, as[0], as[1], as[2]), args[1].Sort().(*z3Sort))

	case solver.OpAdd:
		return b.wrap(C.Z3_mk_add(b.ctx, C.uint(len(as)), &as[0]), args[0].Sort().(*z3Sort))
	case solver.OpSub:
		return b.wrap(C.Z3_mk_sub(b.ctx, C.uint(len(as)), &as[0]), args[0].Sort().(*z3Sort))
	case solver.OpMul:
		return b.wrap(C.Z3_mk_mul(b.ctx, C.uint(len(as)), &as[0]), args[0].Sort().(*z3Sort))
	case solver.OpNeg:
		return b.wrap(C.Z3_mk_unary_minus(b.ctx, as[0]), args[0].Sort().(*z3Sort))
	case solver.OpAbs:
		// abs has no Z3 constructor; encode as (ite (>= x 0) x (- x)).
		zero, err := b.NumeralLit("0", args[0].Sort())
		if err != nil {
			return nil, err
		}
		ge := C.Z3_mk_ge(b.ctx, as[0], zero.(*z3Term).a)
		neg := C.Z3_mk_unary_minus(b.ctx, as[0])
		return b.wrap(C.Z3_mk_ite(b.ctx, ge, as[0], neg), args[0].Sort().(*z3Sort))
	case solver.OpIntDiv, solver.OpRealDiv:
		return b.wrap(C.Z3_mk_div(b.ctx, as[0], as[1]), args[0].Sort().(*z3Sort))
	case solver.OpMod:
		return b.wrap(C.Z3_mk_mod(b.ctx, as[0], as[1]), args[0].Sort().(*z3Sort))
	case solver.OpToReal:
		return b.wrap(C.Z3_mk_int2real(b.ctx, as[0]), b.RealSort().(*z3Sort))
	case solver.OpToInt:
		return b.wrap(C.Z3_mk_real2int(b.ctx, as[0]), b.IntSort().(*z3Sort))
	case solver.OpIsInt:
		return b.wrap(C.Z3_mk_is_int(b.ctx, as[0]), boolS)
	case solver.OpLe:
		return b.wrap(C.Z3_mk_le(b.ctx, as[0], as[1]), boolS)
	case solver.OpLt:
		return b.wrap(C.Z3_mk_lt(b.ctx, as[0], as[1]), boolS)
	case solver.OpGe:
		return b.wrap(C.Z3_mk_ge(b.ctx, as[0], as[1]), boolS)
	case solver.OpGt:
		return b.wrap(C.Z3_mk_gt(b.ctx, as[0], as[1]), boolS)

	case solver.OpConcat:
		return b.foldConcat(args, as)
	case solver.OpBvAnd:
		return b.foldBv(args, as, func(l, r C.Z3_ast) C.Z3_ast { return C.Z3_mk_bvand(b.ctx, l, r) })
	case solver.OpBvOr:
		return b.foldBv(args, as, func(l, r C.Z3_ast) C.Z3_ast { return C.Z3_mk_bvor(b.ctx, l, r) })
	case solver.OpBvAdd:
		return b.foldBv(args, as, func(l, r C.Z3_ast) C.Z3_ast { return C.Z3_mk_bvadd(b.ctx, l, r) })
	case solver.OpBvMul:
		return b.foldBv(args, as, func(l, r C.Z3_ast) C.Z3_ast { return C.Z3_mk_bvmul(b.ctx, l, r) })
	case solver.OpBvXor:
		return b.foldBv(args, as, func(l, r C.Z3_ast) C.Z3_ast { return C.Z3_mk_bvxor(b.ctx, l, r) })
	case solver.OpBvNot:
		return b.wrap(C.Z3_mk_bvnot(b.ctx, as[0]), args[0].Sort().(*z3Sort))
	case solver.OpBvNeg:
		return b.wrap(C.Z3_mk_bvneg(b.ctx, as[0]), args[0].Sort().(*z3Sort))
	case solver.OpBvSub:
		return b.wrap(C.Z3_mk_bvsub(b.ctx, as[0], as[1]), args[0].Sort().(*z3Sort))
	case solver.OpBvUdiv:
		return b.wrap(C.Z3_mk_bvudiv(b.ctx, as[0], as[1]), args[0].Sort().(*z3Sort))
	case solver.OpBvSdiv:
		return b.wrap(C.Z3_mk_bvsdiv(b.ctx, as[0], as[1]), args[0].Sort().(*z3Sort))
	case solver.OpBvUrem:
		return b.wrap(C.Z3_mk_bvurem(b.ctx, as[0], as[1]), args[0].Sort().(*z3Sort))
	case solver.OpBvSrem:
		return b.wrap(C.Z3_mk_bvsrem(b.ctx, as[0], as[1]), args[0].Sort().(*z3Sort))
	case solver.OpBvShl:
		return b.wrap(C.Z3_mk_bvshl(b.ctx, as[0], as[1]), args[0].Sort().(*z3Sort))
	case solver.OpBvLshr:
		return b.wrap(C.Z3_mk_bvlshr(b.ctx, as[0], as[1]), args[0].Sort().(*z3Sort))
	case solver.OpBvAshr:
		return b.wrap(C.Z3_mk_bvashr(b.ctx, as[0], as[1]), args[0].Sort().(*z3Sort))
	case solver.OpBvUlt:
		return b.wrap(C.Z3_mk_bvult(b.ctx, as[0], as[1]), boolS)
	case solver.OpBvUle:
		return b.wrap(C.Z3_mk_bvule(b.ctx, as[0], as[1]), boolS)
	case solver.OpBvUgt:
		return b.wrap(C.Z3_mk_bvugt(b.ctx, as[0], as[1]), boolS)
	case solver.OpBvUge:
		return b.wrap(C.Z3_mk_bvuge(b.ctx, as[0], as[1]), boolS)
	case solver.OpBvSlt:
		return b.wrap(C.Z3_mk_bvslt(b.ctx, as[0], as[1]), boolS)
	case solver.OpBvSle:
		return b.wrap(C.Z3_mk_bvsle(b.ctx, as[0], as[1]), boolS)
	case solver.OpBvSgt:
		return b.wrap(C.Z3_mk_bvsgt(b.ctx, as[0], as[1]), boolS)
	case solver.OpBvSge:
		return b.wrap(C.Z3_mk_bvsge(b.ctx, as[0], as[1]), boolS)
	}
	return nil, solver.Errorf("z3", "operator %s not supported", op.Name())
}

func (b *Backend) foldBinary(as []C.Z3_ast, s *z3Sort, mk func(l, r C.Z3_ast) C.Z3_ast) (solver.Term, error) {
	acc := as[0]
	for _, next := range as[1:] {
		acc = mk(acc, next)
		if err := b.lastError(); err != nil {
			return nil, err
		}
	}
	return b.wrap(acc, s)
}

func (b *Backend) foldBv(args []solver.Term, as []C.Z3_ast, mk func(l, r C.Z3_ast) C.Z3_ast) (solver.Term, error) {
	return b.foldBinary(as, args[0].Sort().(*z3Sort), mk)
}

func (b *Backend) foldConcat(args []solver.Term, as []C.Z3_ast) (solver.Term, error) {
	width := uint(0)
	for _, a := range args {
		width += a.Sort().Width()
	}
	s, err := b.BitVecSort(width)
	if err != nil {
		return nil, err
	}
	return b.foldBinary(as, s.(*z3Sort), func(l, r C.Z3_ast) C.Z3_ast {
		return C.Z3_mk_concat(b.ctx, l, r)
	})
}

// BuildIndexed constructs the indexed bit-vector operators. Extract takes
// the high bit then the low bit.
func (b *Backend) BuildIndexed(op solver.IndexedOp, indices []uint, arg solver.Term) (solver.Term, error) {
	if err := b.live(); err != nil {
		return nil, err
	}
	za := arg.(*z3Term)
	if za.sort.kind != solver.KindBitVec {
		return nil, solver.Errorf("z3", "%s needs a bit-vector operand", op.Name())
	}
	w := za.sort.width

	var a C.Z3_ast
	var outWidth uint
	switch op {
	case solver.IdxExtract:
		high, low := indices[0], indices[1]
		if high >= w || low > high {
			return nil, solver.Errorf("z3", "extract %d..%d out of range for width %d", high, low, w)
		}
		a = C.Z3_mk_extract(b.ctx, C.uint(high), C.uint(low), za.a)
		outWidth = high - low + 1
	case solver.IdxRepeat:
		if indices[0] == 0 {
			return nil, solver.Errorf("z3", "repeat count must be positive")
		}
		a = C.Z3_mk_repeat(b.ctx, C.uint(indices[0]), za.a)
		outWidth = w * indices[0]
	case solver.IdxZeroExtend:
		a = C.Z3_mk_zero_ext(b.ctx, C.uint(indices[0]), za.a)
		outWidth = w + indices[0]
	case solver.IdxSignExtend:
		a = C.Z3_mk_sign_ext(b.ctx, C.uint(indices[0]), za.a)
		outWidth = w + indices[0]
	case solver.IdxRotateLeft:
		a = C.Z3_mk_rotate_left(b.ctx, C.uint(indices[0]), za.a)
		outWidth = w
	case solver.IdxRotateRight:
		a = C.Z3_mk_rotate_right(b.ctx, C.uint(indices[0]), za.a)
		outWidth = w
	default:
		return nil, solver.Errorf("z3", "indexed operator %s not supported", op.Name())
	}
	s, err := b.BitVecSort(outWidth)
	if err != nil {
		return nil, err
	}
	return b.wrap(a, s.(*z3Sort))
}
