package sexpr

import "testing"

func TestReadAtomAndList(t *testing.T) {
	nodes, err := ReadAll("(assert (= x 1)) (check-sat)")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("expected 2 forms, got %d", len(nodes))
	}
	if got := nodes[0].String(); got != "(assert (= x 1))" {
		t.Fatalf("unexpected rendering: %s", got)
	}
	if !nodes[0].IsList() || len(nodes[0].List) != 2 {
		t.Fatalf("expected 2-element list, got %#v", nodes[0])
	}
	if head := nodes[1].List[0]; head.Atom != "check-sat" {
		t.Fatalf("expected check-sat head, got %q", head.Atom)
	}
}

func TestReadSkipsComments(t *testing.T) {
	nodes, err := ReadAll("; a comment\n(exit) ; trailing\n")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(nodes) != 1 || nodes[0].String() != "(exit)" {
		t.Fatalf("unexpected forms: %#v", nodes)
	}
}

func TestReadPositions(t *testing.T) {
	nodes, err := ReadAll("\n  (push 1)")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if nodes[0].Line != 2 || nodes[0].Col != 3 {
		t.Fatalf("expected position 2:3, got %d:%d", nodes[0].Line, nodes[0].Col)
	}
	inner := nodes[0].List[1]
	if inner.Atom != "1" || inner.Line != 2 {
		t.Fatalf("unexpected inner node: %#v", inner)
	}
}

func TestReadStringLiteral(t *testing.T) {
	nodes, err := ReadAll(`(echo "hello ""world""")`)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	lit := nodes[0].List[1].Atom
	if got := StringText(lit); got != `hello "world"` {
		t.Fatalf("unexpected string text: %q", got)
	}
}

func TestReadQuotedSymbol(t *testing.T) {
	nodes, err := ReadAll("(declare-const |odd name| Int)")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	sym := nodes[0].List[1].Atom
	if sym != "|odd name|" {
		t.Fatalf("expected bars preserved, got %q", sym)
	}
	if got := SymbolText(sym); got != "odd name" {
		t.Fatalf("unexpected symbol text: %q", got)
	}
}

func TestReadIncomplete(t *testing.T) {
	cases := []string{"(assert (= x", `(echo "oops`, "(declare-const |x"}
	for _, src := range cases {
		if _, err := ReadAll(src); !IsIncomplete(err) {
			t.Fatalf("expected incomplete error for %q, got %v", src, err)
		}
	}
}

func TestReadUnexpectedClose(t *testing.T) {
	_, err := ReadAll(")")
	if err == nil || IsIncomplete(err) {
		t.Fatalf("expected hard parse error, got %v", err)
	}
}

func TestEmptyInputDrains(t *testing.T) {
	nodes, err := ReadAll("  ; nothing here\n")
	if err != nil || len(nodes) != 0 {
		t.Fatalf("expected clean drain, got %v %v", nodes, err)
	}
}
