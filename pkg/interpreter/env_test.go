package interpreter

import (
	"errors"
	"testing"

	"smtshell/frontend-go/pkg/ground"
	"smtshell/frontend-go/pkg/solver"
)

func mkTerm(t *testing.T, b *ground.Backend, name string) solver.Term {
	t.Helper()
	c, err := b.Const(name, b.IntSort())
	if err != nil {
		t.Fatalf("Const(%s): %v", name, err)
	}
	return c
}

func TestEnvironmentResolveTiers(t *testing.T) {
	b := ground.New()
	defer b.Close()

	permanent := make(map[string]solver.Term)
	root := NewEnvironment(permanent)

	x := mkTerm(t, b, "x")
	root.Bind("x", x)

	got, err := root.Resolve("x")
	if err != nil {
		t.Fatalf("resolve x: %v", err)
	}
	if got != x {
		t.Fatalf("resolved wrong term for x")
	}

	shadow := mkTerm(t, b, "x-inner")
	child := root.Extend([]Binding{{Name: "x", Term: shadow}})
	got, err = child.Resolve("x")
	if err != nil {
		t.Fatalf("resolve shadowed x: %v", err)
	}
	if got != shadow {
		t.Fatalf("scoped binding did not shadow permanent one")
	}

	// The parent is untouched by the extension.
	got, _ = root.Resolve("x")
	if got != x {
		t.Fatalf("extension mutated the parent environment")
	}
}

func TestEnvironmentInnerFrameWins(t *testing.T) {
	b := ground.New()
	defer b.Close()

	root := NewEnvironment(make(map[string]solver.Term))
	outer := mkTerm(t, b, "v")
	inner := mkTerm(t, b, "v")

	e1 := root.Extend([]Binding{{Name: "v", Term: outer}})
	e2 := e1.Extend([]Binding{{Name: "v", Term: inner}})

	if got, _ := e2.Resolve("v"); got != inner {
		t.Fatalf("inner frame did not shadow outer frame")
	}
	if got, _ := e1.Resolve("v"); got != outer {
		t.Fatalf("outer frame changed after inner extension")
	}
}

func TestEnvironmentUnbound(t *testing.T) {
	root := NewEnvironment(make(map[string]solver.Term))
	_, err := root.Resolve("ghost")
	var ub *UnboundNameError
	if !errors.As(err, &ub) {
		t.Fatalf("expected UnboundNameError, got %v", err)
	}
	if ub.Name != "ghost" {
		t.Fatalf("error names %q, want ghost", ub.Name)
	}
}

func TestEnvironmentPermanentSharedAcrossScopes(t *testing.T) {
	b := ground.New()
	defer b.Close()

	root := NewEnvironment(make(map[string]solver.Term))
	child := root.Extend(nil)

	// Declarations made after a scope was built are still visible in it.
	late := mkTerm(t, b, "late")
	root.Bind("late", late)
	if got, err := child.Resolve("late"); err != nil || got != late {
		t.Fatalf("late permanent binding not visible through child scope")
	}
}

func TestAssertionStackDiscipline(t *testing.T) {
	b := ground.New()
	defer b.Close()

	st := NewAssertionStack()
	if st.Depth() != 1 {
		t.Fatalf("fresh stack depth = %d, want 1", st.Depth())
	}
	if err := st.Pop(); !errors.Is(err, ErrCannotPopBaseLevel) {
		t.Fatalf("popping base level: got %v", err)
	}

	st.Add(mkTerm(t, b, "a"))
	st.Push()
	st.Add(mkTerm(t, b, "b"))
	if len(st.All()) != 2 {
		t.Fatalf("All() = %d terms, want 2", len(st.All()))
	}

	if err := st.Pop(); err != nil {
		t.Fatalf("pop: %v", err)
	}
	if st.Depth() != 1 || len(st.All()) != 1 {
		t.Fatalf("after pop: depth=%d terms=%d, want 1/1", st.Depth(), len(st.All()))
	}

	st.Reset()
	if st.Depth() != 1 || len(st.All()) != 0 {
		t.Fatalf("after reset: depth=%d terms=%d, want 1/0", st.Depth(), len(st.All()))
	}
}
