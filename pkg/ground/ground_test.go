package ground

import (
	"math/big"
	"testing"

	"smtshell/frontend-go/pkg/solver"
)

func num(t *testing.T, b *Backend, text string) solver.Term {
	t.Helper()
	n, err := b.NumeralLit(text, b.IntSort())
	if err != nil {
		t.Fatalf("numeral %s: %v", text, err)
	}
	return n
}

func build(t *testing.T, b *Backend, op solver.Op, args ...solver.Term) solver.Term {
	t.Helper()
	out, err := b.Build(op, args)
	if err != nil {
		t.Fatalf("build %s: %v", op.Name(), err)
	}
	return out
}

func TestCheckGroundTrue(t *testing.T) {
	b := New()
	eq := build(t, b, solver.OpEq, num(t, b, "2"), num(t, b, "2"))
	if err := b.Assert(eq); err != nil {
		t.Fatalf("assert: %v", err)
	}
	status, err := b.Check()
	if err != nil || status != solver.StatusSat {
		t.Fatalf("expected sat, got %v %v", status, err)
	}
}

func TestCheckGroundFalse(t *testing.T) {
	b := New()
	eq := build(t, b, solver.OpEq, num(t, b, "1"), num(t, b, "2"))
	if err := b.Assert(eq); err != nil {
		t.Fatalf("assert: %v", err)
	}
	status, err := b.Check()
	if err != nil || status != solver.StatusUnsat {
		t.Fatalf("expected unsat, got %v %v", status, err)
	}
}

func TestCheckSelfEqualityOnFreeConstant(t *testing.T) {
	b := New()
	x, err := b.Const("x", b.IntSort())
	if err != nil {
		t.Fatalf("const: %v", err)
	}
	if err := b.Assert(build(t, b, solver.OpEq, x, x)); err != nil {
		t.Fatalf("assert: %v", err)
	}
	status, err := b.Check()
	if err != nil || status != solver.StatusSat {
		t.Fatalf("expected sat for (= x x), got %v %v", status, err)
	}
}

func TestCheckUndecidedIsUnknown(t *testing.T) {
	b := New()
	x, _ := b.Const("x", b.IntSort())
	gt := build(t, b, solver.OpGt, x, num(t, b, "3"))
	if err := b.Assert(gt); err != nil {
		t.Fatalf("assert: %v", err)
	}
	status, err := b.Check()
	if err != nil || status != solver.StatusUnknown {
		t.Fatalf("expected unknown, got %v %v", status, err)
	}
}

func TestPushPopScopes(t *testing.T) {
	b := New()
	if err := b.Assert(build(t, b, solver.OpEq, num(t, b, "1"), num(t, b, "1"))); err != nil {
		t.Fatalf("assert: %v", err)
	}
	if err := b.Push(); err != nil {
		t.Fatalf("push: %v", err)
	}
	if err := b.Assert(build(t, b, solver.OpEq, num(t, b, "1"), num(t, b, "2"))); err != nil {
		t.Fatalf("assert: %v", err)
	}
	if status, _ := b.Check(); status != solver.StatusUnsat {
		t.Fatalf("expected unsat inside scope, got %v", status)
	}
	if err := b.Pop(); err != nil {
		t.Fatalf("pop: %v", err)
	}
	if status, _ := b.Check(); status != solver.StatusSat {
		t.Fatalf("expected sat after pop, got %v", status)
	}
	if err := b.Pop(); err == nil {
		t.Fatal("expected error popping base scope")
	}
}

func TestCheckAssumingDoesNotPersist(t *testing.T) {
	b := New()
	bad := build(t, b, solver.OpEq, num(t, b, "0"), num(t, b, "1"))
	status, err := b.CheckAssuming([]solver.Term{bad})
	if err != nil || status != solver.StatusUnsat {
		t.Fatalf("expected unsat under assumption, got %v %v", status, err)
	}
	status, err = b.Check()
	if err != nil || status != solver.StatusSat {
		t.Fatalf("assumption leaked into context: %v %v", status, err)
	}
}

func TestArithmeticFolding(t *testing.T) {
	b := New()
	// (- (- 10 3) 2) = 5, the left-assoc expansion of (- 10 3 2).
	inner := build(t, b, solver.OpSub, num(t, b, "10"), num(t, b, "3"))
	outer := build(t, b, solver.OpSub, inner, num(t, b, "2"))
	v, ok := fold(outer.(*termNode), nil)
	if !ok || v.q.Cmp(big.NewRat(5, 1)) != 0 {
		t.Fatalf("expected 5, got %v (ok=%v)", v.q, ok)
	}
}

func TestEuclideanDivMod(t *testing.T) {
	b := New()
	div := build(t, b, solver.OpIntDiv, num(t, b, "-7"), num(t, b, "2"))
	v, ok := fold(div.(*termNode), nil)
	if !ok || v.q.Cmp(big.NewRat(-4, 1)) != 0 {
		t.Fatalf("expected (div -7 2) = -4, got %v", v.q)
	}
	mod := build(t, b, solver.OpMod, num(t, b, "-7"), num(t, b, "2"))
	v, ok = fold(mod.(*termNode), nil)
	if !ok || v.q.Cmp(big.NewRat(1, 1)) != 0 {
		t.Fatalf("expected (mod -7 2) = 1, got %v", v.q)
	}
}

func TestBitVectorFolding(t *testing.T) {
	b := New()
	lit := func(v int64, w uint) solver.Term {
		out, err := b.BitVecLit(big.NewInt(v), w)
		if err != nil {
			t.Fatalf("bv lit: %v", err)
		}
		return out
	}
	sum := build(t, b, solver.OpBvAdd, lit(250, 8), lit(10, 8))
	v, ok := fold(sum.(*termNode), nil)
	if !ok || v.i.Int64() != 4 {
		t.Fatalf("expected wraparound 4, got %v", v.i)
	}
	ext, err := b.BuildIndexed(solver.IdxExtract, []uint{3, 1}, lit(0b1010, 4))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if ext.Sort().Width() != 3 {
		t.Fatalf("expected width 3, got %d", ext.Sort().Width())
	}
	v, ok = fold(ext.(*termNode), nil)
	if !ok || v.i.Int64() != 0b101 {
		t.Fatalf("expected 0b101, got %v", v.i)
	}
	se, err := b.BuildIndexed(solver.IdxSignExtend, []uint{4}, lit(0b1000, 4))
	if err != nil {
		t.Fatalf("sign_extend: %v", err)
	}
	v, ok = fold(se.(*termNode), nil)
	if !ok || v.i.Int64() != 0b11111000 {
		t.Fatalf("expected sign extension, got %v", v.i)
	}
}

func TestModelDefaultsAndClose(t *testing.T) {
	b := New()
	x, _ := b.Const("x", b.IntSort())
	p, _ := b.Const("p", b.BoolSort())
	m, err := b.Model()
	if err != nil {
		t.Fatalf("model: %v", err)
	}
	xv, err := m.Eval(x)
	if err != nil || xv.String() != "0" {
		t.Fatalf("expected default 0 for x, got %v %v", xv, err)
	}
	pv, err := m.Eval(p)
	if err != nil || pv.String() != "false" {
		t.Fatalf("expected default false for p, got %v %v", pv, err)
	}
	m.Close()
	if _, err := m.Eval(x); err == nil {
		t.Fatal("expected error evaluating a closed model")
	}
}

func TestModelObjectsAreFresh(t *testing.T) {
	b := New()
	m1, _ := b.Model()
	m2, _ := b.Model()
	if m1 == m2 {
		t.Fatal("expected distinct model objects per derivation")
	}
}

func TestClosedBackendRejectsUse(t *testing.T) {
	b := New()
	if err := b.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := b.Check(); err == nil {
		t.Fatal("expected error checking a closed backend")
	}
	if err := b.Push(); err == nil {
		t.Fatal("expected error pushing a closed backend")
	}
}
