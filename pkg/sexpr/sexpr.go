package sexpr

import "strings"

// Node is an S-expression: either an atom or a list of nodes. Nodes are
// immutable once produced by the reader.
type Node struct {
	// Atom holds the token text when the node is an atom. For string
	// literals the surrounding quotes are preserved so consumers can
	// distinguish |x|, "x" and x.
	Atom string
	// List holds the children when the node is a list. A node is a list
	// exactly when IsList reports true; an empty list is still a list.
	List []Node

	isList bool

	// Line and Col locate the first character of the node in the input,
	// 1-based. Zero when the node was built programmatically.
	Line int
	Col  int
}

// Atom builds an atom node without position information.
func MakeAtom(text string) Node { return Node{Atom: text} }

// MakeList builds a list node without position information.
func MakeList(items ...Node) Node { return Node{List: items, isList: true} }

// IsList reports whether the node is a list (as opposed to an atom).
func (n Node) IsList() bool { return n.isList }

// IsAtom reports whether the node is an atom.
func (n Node) IsAtom() bool { return !n.isList }

// String renders the node back into SMT-LIB concrete syntax. The result is
// suitable for diagnostics; it is not guaranteed to be byte-identical to the
// original input (whitespace is normalized).
func (n Node) String() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n Node) write(b *strings.Builder) {
	if !n.isList {
		b.WriteString(n.Atom)
		return
	}
	b.WriteByte('(')
	for i, item := range n.List {
		if i > 0 {
			b.WriteByte(' ')
		}
		item.write(b)
	}
	b.WriteByte(')')
}
