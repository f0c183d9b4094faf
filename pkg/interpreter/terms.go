package interpreter

import (
	"math/big"
	"strconv"
	"strings"

	"smtshell/frontend-go/pkg/sexpr"
	"smtshell/frontend-go/pkg/solver"
)

// parseTerm translates an S-expression into a backend term, resolving names
// against env (scoped bindings shadow permanent declarations). The
// environment is threaded explicitly: binder forms extend it for their body
// and the parent environment stays untouched.
func (s *Session) parseTerm(env *Environment, e sexpr.Node) (solver.Term, error) {
	if e.IsAtom() {
		return s.parseAtom(env, e)
	}
	if len(e.List) == 0 {
		return nil, syntaxErrorf(e, "empty term")
	}
	head := e.List[0]
	if head.IsList() {
		return s.parseIndexedApplication(env, e)
	}
	return s.parseCompound(env, e)
}

func (s *Session) parseAtom(env *Environment, e sexpr.Node) (solver.Term, error) {
	name := sexpr.SymbolText(e.Atom)

	if t, err := env.Resolve(name); err == nil {
		return t, nil
	}

	switch name {
	case "true":
		return s.backend.BoolLit(true), nil
	case "false":
		return s.backend.BoolLit(false), nil
	}

	if strings.HasPrefix(name, "#b") {
		digits := name[2:]
		v, ok := new(big.Int).SetString(digits, 2)
		if !ok || digits == "" {
			return nil, syntaxErrorf(e, "malformed binary literal")
		}
		return s.backend.BitVecLit(v, uint(len(digits)))
	}
	if strings.HasPrefix(name, "#x") {
		digits := name[2:]
		v, ok := new(big.Int).SetString(digits, 16)
		if !ok || digits == "" {
			return nil, syntaxErrorf(e, "malformed hexadecimal literal")
		}
		return s.backend.BitVecLit(v, uint(len(digits))*4)
	}

	if q, ok := new(big.Rat).SetString(name); ok {
		target := s.backend.IntSort()
		if !q.IsInt() || strings.ContainsAny(name, "./") {
			target = s.backend.RealSort()
		}
		return s.backend.NumeralLit(name, target)
	}
	if f, err := strconv.ParseFloat(name, 64); err == nil {
		q := new(big.Rat).SetFloat64(f)
		if q == nil {
			return nil, syntaxErrorf(e, "non-finite numeral")
		}
		return s.backend.NumeralLit(q.RatString(), s.backend.RealSort())
	}

	return nil, syntaxErrorf(e, "unrecognized atom")
}

func (s *Session) parseCompound(env *Environment, e sexpr.Node) (solver.Term, error) {
	items := e.List
	head := sexpr.SymbolText(items[0].Atom)
	args := items[1:]

	switch head {
	case "let":
		return s.parseLet(env, e)
	case "forall":
		return s.parseQuantifier(env, e, true)
	case "exists":
		return s.parseQuantifier(env, e, false)
	case "match":
		return nil, &UnsupportedError{Feature: "match"}
	case "!":
		return nil, &UnsupportedError{Feature: "term annotations"}
	case "_":
		return s.parseBvConstant(e)
	case "select":
		if len(args) != 2 {
			return nil, syntaxErrorf(e, "select takes an array and an index")
		}
		arr, err := s.parseTerm(env, args[0])
		if err != nil {
			return nil, err
		}
		idx, err := s.parseTerm(env, args[1])
		if err != nil {
			return nil, err
		}
		return s.backend.Apply(arr, []solver.Term{idx})
	case "store":
		if len(args) != 3 {
			return nil, syntaxErrorf(e, "store takes an array, an index, and a value")
		}
		parsed, err := s.parseAll(env, args)
		if err != nil {
			return nil, err
		}
		return s.backend.Update(parsed[0], []solver.Term{parsed[1]}, parsed[2])
	case "div":
		return s.parseDiv(env, e, args)
	}

	// A declared function shadows nothing here: operator names are not
	// legal declaration names in practice, so resolution order only
	// matters for plain identifiers.
	if fn, err := env.Resolve(head); err == nil {
		if fn.Sort().Kind() != solver.KindFunction {
			if len(args) == 0 {
				return fn, nil
			}
			return nil, &TypeError{Op: "apply", Term: head, Sort: fn.Sort().String()}
		}
		parsed, err := s.parseAll(env, args)
		if err != nil {
			return nil, err
		}
		return s.backend.Apply(fn, parsed)
	}

	entry, ok := lookupOperator(head)
	if !ok {
		return nil, syntaxErrorf(e, "unsupported term syntax")
	}
	return s.applyOperator(env, e, entry, args)
}

func (s *Session) parseAll(env *Environment, nodes []sexpr.Node) ([]solver.Term, error) {
	out := make([]solver.Term, len(nodes))
	for i, n := range nodes {
		t, err := s.parseTerm(env, n)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

// parseLet parses (let ((name term) ...) body). Every right-hand side is
// parsed in the pre-let environment, so bindings of the same let are not
// visible to each other; only the body sees them.
func (s *Session) parseLet(env *Environment, e sexpr.Node) (solver.Term, error) {
	if len(e.List) != 3 || !e.List[1].IsList() {
		return nil, syntaxErrorf(e, "let takes a binding list and a body")
	}
	var bindings []Binding
	for _, pair := range e.List[1].List {
		if !pair.IsList() || len(pair.List) != 2 || !pair.List[0].IsAtom() {
			return nil, syntaxErrorf(pair, "let binding must be (name term)")
		}
		value, err := s.parseTerm(env, pair.List[1])
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, Binding{Name: sexpr.SymbolText(pair.List[0].Atom), Term: value})
	}
	return s.parseTerm(env.Extend(bindings), e.List[2])
}

// parseQuantifier parses (forall ((name sort) ...) body) and its exists
// twin. Each binder becomes a fresh backend variable; the variable list is
// attached to the quantifier in declaration order.
func (s *Session) parseQuantifier(env *Environment, e sexpr.Node, universal bool) (solver.Term, error) {
	if len(e.List) != 3 || !e.List[1].IsList() || len(e.List[1].List) == 0 {
		return nil, syntaxErrorf(e, "quantifier takes a binder list and a body")
	}
	var bindings []Binding
	var bound []solver.Term
	for _, pair := range e.List[1].List {
		if !pair.IsList() || len(pair.List) != 2 || !pair.List[0].IsAtom() {
			return nil, syntaxErrorf(pair, "binder must be (name sort)")
		}
		srt, err := s.parseSort(pair.List[1])
		if err != nil {
			return nil, err
		}
		name := sexpr.SymbolText(pair.List[0].Atom)
		v, err := s.backend.FreshVar(name, srt)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, Binding{Name: name, Term: v})
		bound = append(bound, v)
	}
	body, err := s.parseTerm(env.Extend(bindings), e.List[2])
	if err != nil {
		return nil, err
	}
	return s.backend.Quantifier(universal, bound, body)
}

// parseBvConstant parses (_ bvNNN w): a bit-vector constant with decimal
// value NNN and width w.
func (s *Session) parseBvConstant(e sexpr.Node) (solver.Term, error) {
	if len(e.List) != 3 || !e.List[1].IsAtom() {
		return nil, syntaxErrorf(e, "unsupported term syntax")
	}
	name := e.List[1].Atom
	if !strings.HasPrefix(name, "bv") {
		return nil, syntaxErrorf(e, "unsupported term syntax")
	}
	value, ok := new(big.Int).SetString(name[2:], 10)
	if !ok {
		return nil, syntaxErrorf(e, "malformed bit-vector constant")
	}
	width, err := parseIndex(e.List[2])
	if err != nil {
		return nil, syntaxErrorf(e, "malformed bit-vector width")
	}
	return s.backend.BitVecLit(value, width)
}

// parseIndexedApplication parses ((_ name i ...) x) for the indexed
// bit-vector operators.
func (s *Session) parseIndexedApplication(env *Environment, e sexpr.Node) (solver.Term, error) {
	head := e.List[0]
	if len(head.List) < 2 || !head.List[0].IsAtom() || head.List[0].Atom != "_" || !head.List[1].IsAtom() {
		return nil, syntaxErrorf(e, "unsupported term syntax")
	}
	var op solver.IndexedOp
	wantIndices := 1
	switch head.List[1].Atom {
	case "extract":
		op, wantIndices = solver.IdxExtract, 2
	case "repeat":
		op = solver.IdxRepeat
	case "zero_extend":
		op = solver.IdxZeroExtend
	case "sign_extend":
		op = solver.IdxSignExtend
	case "rotate_left":
		op = solver.IdxRotateLeft
	case "rotate_right":
		op = solver.IdxRotateRight
	default:
		return nil, syntaxErrorf(e, "unsupported indexed operator")
	}
	if len(head.List) != 2+wantIndices || len(e.List) != 2 {
		return nil, syntaxErrorf(e, "wrong arity for indexed operator")
	}
	indices := make([]uint, wantIndices)
	for i := 0; i < wantIndices; i++ {
		idx, err := parseIndex(head.List[2+i])
		if err != nil {
			return nil, err
		}
		indices[i] = idx
	}
	arg, err := s.parseTerm(env, e.List[1])
	if err != nil {
		return nil, err
	}
	return s.backend.BuildIndexed(op, indices, arg)
}

// parseDiv inspects the first operand's sort: Int folds with integer
// division, Real with real division, anything else is a type error.
func (s *Session) parseDiv(env *Environment, e sexpr.Node, args []sexpr.Node) (solver.Term, error) {
	if len(args) < 2 {
		return nil, syntaxErrorf(e, "div takes at least two operands")
	}
	first, err := s.parseTerm(env, args[0])
	if err != nil {
		return nil, err
	}
	var op solver.Op
	switch first.Sort().Kind() {
	case solver.KindInt:
		op = solver.OpIntDiv
	case solver.KindReal:
		op = solver.OpRealDiv
	default:
		return nil, &TypeError{Op: "div", Term: args[0].String(), Sort: first.Sort().String()}
	}
	acc := first
	for _, node := range args[1:] {
		next, err := s.parseTerm(env, node)
		if err != nil {
			return nil, err
		}
		acc, err = s.backend.Build(op, []solver.Term{acc, next})
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// applyOperator realizes the combinator patterns: right-associative folding,
// left-associative folding, chaining with conjunction, flat n-ary
// application, and the fixed arities.
func (s *Session) applyOperator(env *Environment, e sexpr.Node, entry opEntry, args []sexpr.Node) (solver.Term, error) {
	switch entry.class {
	case classRightAssoc:
		if len(args) < 2 {
			return nil, syntaxErrorf(e, "%s takes at least two operands", entry.op.Name())
		}
		parsed, err := s.parseAll(env, args)
		if err != nil {
			return nil, err
		}
		acc := parsed[len(parsed)-1]
		for i := len(parsed) - 2; i >= 0; i-- {
			acc, err = s.backend.Build(entry.op, []solver.Term{parsed[i], acc})
			if err != nil {
				return nil, err
			}
		}
		return acc, nil

	case classLeftAssoc:
		if len(args) == 0 {
			return nil, syntaxErrorf(e, "%s takes at least one operand", entry.op.Name())
		}
		parsed, err := s.parseAll(env, args)
		if err != nil {
			return nil, err
		}
		if len(parsed) == 1 {
			// (- x) is negation; (+ x) and (* x) are x itself.
			if entry.op == solver.OpSub {
				return s.backend.Build(solver.OpNeg, parsed[:1])
			}
			return parsed[0], nil
		}
		acc := parsed[0]
		for _, next := range parsed[1:] {
			acc, err = s.backend.Build(entry.op, []solver.Term{acc, next})
			if err != nil {
				return nil, err
			}
		}
		return acc, nil

	case classChain:
		if len(args) < 2 {
			return nil, syntaxErrorf(e, "%s takes at least two operands", entry.op.Name())
		}
		parsed, err := s.parseAll(env, args)
		if err != nil {
			return nil, err
		}
		pairs := make([]solver.Term, 0, len(parsed)-1)
		for i := 0; i+1 < len(parsed); i++ {
			p, err := s.backend.Build(entry.op, []solver.Term{parsed[i], parsed[i+1]})
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, p)
		}
		if len(pairs) == 1 {
			return pairs[0], nil
		}
		return s.backend.Build(solver.OpAnd, pairs)

	case classNary:
		if len(args) == 0 {
			return nil, syntaxErrorf(e, "%s takes at least one operand", entry.op.Name())
		}
		parsed, err := s.parseAll(env, args)
		if err != nil {
			return nil, err
		}
		return s.backend.Build(entry.op, parsed)

	case classUnary, classBinary, classTernary:
		want := 1 + int(entry.class-classUnary)
		if len(args) != want {
			return nil, syntaxErrorf(e, "%s takes exactly %d operand(s)", entry.op.Name(), want)
		}
		parsed, err := s.parseAll(env, args)
		if err != nil {
			return nil, err
		}
		return s.backend.Build(entry.op, parsed)

	default:
		return nil, syntaxErrorf(e, "unsupported term syntax")
	}
}

// opClass selects the combinator pattern an operator uses.
type opClass int

const (
	classRightAssoc opClass = iota
	classLeftAssoc
	classChain
	classNary
	classUnary
	classBinary
	classTernary
)

type opEntry struct {
	class opClass
	op    solver.Op
}

var operatorTable = map[string]opEntry{
	"=>": {classRightAssoc, solver.OpImplies},

	"-": {classLeftAssoc, solver.OpSub},
	"+": {classLeftAssoc, solver.OpAdd},
	"*": {classLeftAssoc, solver.OpMul},
	"/": {classLeftAssoc, solver.OpRealDiv},

	"=":  {classChain, solver.OpEq},
	"<=": {classChain, solver.OpLe},
	"<":  {classChain, solver.OpLt},
	">=": {classChain, solver.OpGe},
	">":  {classChain, solver.OpGt},

	"and":      {classNary, solver.OpAnd},
	"or":       {classNary, solver.OpOr},
	"xor":      {classNary, solver.OpXor},
	"distinct": {classNary, solver.OpDistinct},
	"concat":   {classNary, solver.OpConcat},
	"bvand":    {classNary, solver.OpBvAnd},
	"bvor":     {classNary, solver.OpBvOr},
	"bvadd":    {classNary, solver.OpBvAdd},
	"bvmul":    {classNary, solver.OpBvMul},
	"bvxor":    {classNary, solver.OpBvXor},

	"not":     {classUnary, solver.OpNot},
	"abs":     {classUnary, solver.OpAbs},
	"to_real": {classUnary, solver.OpToReal},
	"to_int":  {classUnary, solver.OpToInt},
	"is_int":  {classUnary, solver.OpIsInt},
	"bvnot":   {classUnary, solver.OpBvNot},
	"bvneg":   {classUnary, solver.OpBvNeg},

	"mod":    {classBinary, solver.OpMod},
	"bvsub":  {classBinary, solver.OpBvSub},
	"bvudiv": {classBinary, solver.OpBvUdiv},
	"bvsdiv": {classBinary, solver.OpBvSdiv},
	"bvurem": {classBinary, solver.OpBvUrem},
	"bvsrem": {classBinary, solver.OpBvSrem},
	"bvshl":  {classBinary, solver.OpBvShl},
	"bvlshr": {classBinary, solver.OpBvLshr},
	"bvashr": {classBinary, solver.OpBvAshr},
	"bvult":  {classBinary, solver.OpBvUlt},
	"bvule":  {classBinary, solver.OpBvUle},
	"bvugt":  {classBinary, solver.OpBvUgt},
	"bvuge":  {classBinary, solver.OpBvUge},
	"bvslt":  {classBinary, solver.OpBvSlt},
	"bvsle":  {classBinary, solver.OpBvSle},
	"bvsgt":  {classBinary, solver.OpBvSgt},
	"bvsge":  {classBinary, solver.OpBvSge},

	"ite": {classTernary, solver.OpIte},
}

func lookupOperator(name string) (opEntry, bool) {
	entry, ok := operatorTable[name]
	return entry, ok
}
