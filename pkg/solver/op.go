package solver

// Op enumerates the non-indexed operators a backend must construct. The
// engine folds associativity and chaining before calling Build, so backends
// see ops at their natural arity: Binary* ops always receive two arguments,
// unary ops one, OpIte three, and the n-ary ops any positive count.
type Op int

const (
	// Core, n-ary.
	OpAnd Op = iota
	OpOr
	OpXor
	OpDistinct

	// Core, fixed arity.
	OpNot     // unary
	OpImplies // binary
	OpEq      // binary
	OpIte     // ternary

	// Arithmetic.
	OpAdd     // binary
	OpSub     // binary
	OpMul     // binary
	OpNeg     // unary
	OpAbs     // unary
	OpIntDiv  // binary
	OpRealDiv // binary
	OpMod     // binary
	OpToReal  // unary
	OpToInt   // unary
	OpIsInt   // unary
	OpLe      // binary
	OpLt      // binary
	OpGe      // binary
	OpGt      // binary

	// Bit-vector, n-ary.
	OpConcat
	OpBvAnd
	OpBvOr
	OpBvAdd
	OpBvMul
	OpBvXor

	// Bit-vector, unary.
	OpBvNot
	OpBvNeg

	// Bit-vector, binary.
	OpBvSub
	OpBvUdiv
	OpBvSdiv
	OpBvUrem
	OpBvSrem
	OpBvShl
	OpBvLshr
	OpBvAshr
	OpBvUlt
	OpBvUle
	OpBvUgt
	OpBvUge
	OpBvSlt
	OpBvSle
	OpBvSgt
	OpBvSge
)

var opNames = map[Op]string{
	OpAnd:      "and",
	OpOr:       "or",
	OpXor:      "xor",
	OpDistinct: "distinct",
	OpNot:      "not",
	OpImplies:  "=>",
	OpEq:       "=",
	OpIte:      "ite",
	OpAdd:      "+",
	OpSub:      "-",
	OpMul:      "*",
	OpNeg:      "-",
	OpAbs:      "abs",
	OpIntDiv:   "div",
	OpRealDiv:  "/",
	OpMod:      "mod",
	OpToReal:   "to_real",
	OpToInt:    "to_int",
	OpIsInt:    "is_int",
	OpLe:       "<=",
	OpLt:       "<",
	OpGe:       ">=",
	OpGt:       ">",
	OpConcat:   "concat",
	OpBvAnd:    "bvand",
	OpBvOr:     "bvor",
	OpBvAdd:    "bvadd",
	OpBvMul:    "bvmul",
	OpBvXor:    "bvxor",
	OpBvNot:    "bvnot",
	OpBvNeg:    "bvneg",
	OpBvSub:    "bvsub",
	OpBvUdiv:   "bvudiv",
	OpBvSdiv:   "bvsdiv",
	OpBvUrem:   "bvurem",
	OpBvSrem:   "bvsrem",
	OpBvShl:    "bvshl",
	OpBvLshr:   "bvlshr",
	OpBvAshr:   "bvashr",
	OpBvUlt:    "bvult",
	OpBvUle:    "bvule",
	OpBvUgt:    "bvugt",
	OpBvUge:    "bvuge",
	OpBvSlt:    "bvslt",
	OpBvSle:    "bvsle",
	OpBvSgt:    "bvsgt",
	OpBvSge:    "bvsge",
}

// Name returns the SMT-LIB spelling of the operator.
func (o Op) Name() string {
	if n, ok := opNames[o]; ok {
		return n
	}
	return "op?"
}

// IndexedOp enumerates the indexed bit-vector operators, written
// ((_ name i ...) x) in the concrete syntax.
type IndexedOp int

const (
	IdxExtract IndexedOp = iota // two indices: high bit, low bit
	IdxRepeat
	IdxZeroExtend
	IdxSignExtend
	IdxRotateLeft
	IdxRotateRight
)

var indexedOpNames = map[IndexedOp]string{
	IdxExtract:     "extract",
	IdxRepeat:      "repeat",
	IdxZeroExtend:  "zero_extend",
	IdxSignExtend:  "sign_extend",
	IdxRotateLeft:  "rotate_left",
	IdxRotateRight: "rotate_right",
}

// Name returns the SMT-LIB spelling of the indexed operator.
func (o IndexedOp) Name() string {
	if n, ok := indexedOpNames[o]; ok {
		return n
	}
	return "op?"
}
