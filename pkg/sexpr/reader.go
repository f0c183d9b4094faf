package sexpr

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrIncomplete is returned (wrapped) when the input ends inside an open list,
// string, or quoted symbol. Interactive callers use it to decide whether to
// prompt for a continuation line.
var ErrIncomplete = errors.New("incomplete s-expression")

// ParseError describes a malformed token or delimiter with its position.
type ParseError struct {
	Line   int
	Col    int
	Detail string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("sexpr: %d:%d: %s", e.Line, e.Col, e.Detail)
}

// Reader scans S-expressions from a string. It tracks line/column positions
// and skips ; comments per SMT-LIB lexical conventions.
type Reader struct {
	src  string
	pos  int
	line int
	col  int
}

// NewReader creates a reader over the given source text.
func NewReader(src string) *Reader {
	return &Reader{src: src, line: 1, col: 1}
}

// ReadAll reads every top-level form until end of input.
func ReadAll(src string) ([]Node, error) {
	r := NewReader(src)
	var nodes []Node
	for {
		n, err := r.Read()
		if err != nil {
			if errors.Is(err, errEOF) {
				return nodes, nil
			}
			return nodes, err
		}
		nodes = append(nodes, n)
	}
}

// IsIncomplete reports whether err indicates input that may be completed by
// reading more text (used by the REPL continuation prompt).
func IsIncomplete(err error) bool { return errors.Is(err, ErrIncomplete) }

var errEOF = errors.New("sexpr: end of input")

// Read returns the next top-level form. At end of input it returns an error
// satisfying errors.Is(err, errEOF) via Drained, or ErrIncomplete when the
// input stops inside an unterminated form.
func (r *Reader) Read() (Node, error) {
	r.skipSpace()
	if r.pos >= len(r.src) {
		return Node{}, errEOF
	}
	return r.readForm()
}

// Drained reports whether err was the reader's end-of-input signal.
func Drained(err error) bool { return errors.Is(err, errEOF) }

func (r *Reader) readForm() (Node, error) {
	line, col := r.line, r.col
	c := r.src[r.pos]
	switch {
	case c == '(':
		r.advance()
		var items []Node
		for {
			r.skipSpace()
			if r.pos >= len(r.src) {
				return Node{}, fmt.Errorf("%w: unclosed list opened at %d:%d", ErrIncomplete, line, col)
			}
			if r.src[r.pos] == ')' {
				r.advance()
				return Node{List: items, isList: true, Line: line, Col: col}, nil
			}
			item, err := r.readForm()
			if err != nil {
				return Node{}, err
			}
			items = append(items, item)
		}
	case c == ')':
		return Node{}, &ParseError{Line: line, Col: col, Detail: "unexpected )"}
	case c == '"':
		return r.readString(line, col)
	case c == '|':
		return r.readQuotedSymbol(line, col)
	default:
		return r.readAtom(line, col), nil
	}
}

func (r *Reader) readString(line, col int) (Node, error) {
	start := r.pos
	r.advance() // opening quote
	for r.pos < len(r.src) {
		if r.src[r.pos] == '"' {
			// SMT-LIB escapes a quote by doubling it.
			if r.pos+1 < len(r.src) && r.src[r.pos+1] == '"' {
				r.advance()
				r.advance()
				continue
			}
			r.advance()
			return Node{Atom: r.src[start:r.pos], Line: line, Col: col}, nil
		}
		r.advance()
	}
	return Node{}, fmt.Errorf("%w: unterminated string at %d:%d", ErrIncomplete, line, col)
}

func (r *Reader) readQuotedSymbol(line, col int) (Node, error) {
	start := r.pos
	r.advance() // opening bar
	for r.pos < len(r.src) {
		if r.src[r.pos] == '|' {
			r.advance()
			return Node{Atom: r.src[start:r.pos], Line: line, Col: col}, nil
		}
		r.advance()
	}
	return Node{}, fmt.Errorf("%w: unterminated |symbol| at %d:%d", ErrIncomplete, line, col)
}

func (r *Reader) readAtom(line, col int) Node {
	start := r.pos
	for r.pos < len(r.src) {
		c := r.src[r.pos]
		if c == '(' || c == ')' || c == ';' || c == '"' || c == '|' || unicode.IsSpace(rune(c)) {
			break
		}
		r.advance()
	}
	return Node{Atom: r.src[start:r.pos], Line: line, Col: col}
}

func (r *Reader) skipSpace() {
	for r.pos < len(r.src) {
		c := r.src[r.pos]
		switch {
		case c == ';':
			for r.pos < len(r.src) && r.src[r.pos] != '\n' {
				r.advance()
			}
		case unicode.IsSpace(rune(c)):
			r.advance()
		default:
			return
		}
	}
}

func (r *Reader) advance() {
	if r.pos >= len(r.src) {
		return
	}
	if r.src[r.pos] == '\n' {
		r.line++
		r.col = 1
	} else {
		r.col++
	}
	r.pos++
}

// StringText strips the surrounding quotes from a string-literal atom and
// collapses doubled quotes. It returns the atom unchanged when it is not a
// string literal.
func StringText(atom string) string {
	if len(atom) >= 2 && strings.HasPrefix(atom, `"`) && strings.HasSuffix(atom, `"`) {
		inner := atom[1 : len(atom)-1]
		return strings.ReplaceAll(inner, `""`, `"`)
	}
	return atom
}

// SymbolText strips the bars from a |quoted symbol| atom, returning plain
// atoms unchanged.
func SymbolText(atom string) string {
	if len(atom) >= 2 && strings.HasPrefix(atom, "|") && strings.HasSuffix(atom, "|") {
		return atom[1 : len(atom)-1]
	}
	return atom
}
