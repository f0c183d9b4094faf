package interpreter

import (
	"strconv"

	"smtshell/frontend-go/pkg/sexpr"
	"smtshell/frontend-go/pkg/solver"
)

// parseSort translates an S-expression into a backend sort. Recognized
// forms: a registered sort name, Bool, Int, Real, (Array A B), and
// (_ BitVec n). Everything else (datatypes, parametric sorts) is a syntax
// error.
func (s *Session) parseSort(e sexpr.Node) (solver.Sort, error) {
	if e.IsAtom() {
		name := sexpr.SymbolText(e.Atom)
		if srt, ok := s.sorts[name]; ok {
			return srt, nil
		}
		switch name {
		case "Bool":
			return s.backend.BoolSort(), nil
		case "Int":
			return s.backend.IntSort(), nil
		case "Real":
			return s.backend.RealSort(), nil
		}
		return nil, syntaxErrorf(e, "unknown sort")
	}

	items := e.List
	if len(items) == 3 && items[0].IsAtom() {
		switch items[0].Atom {
		case "Array":
			dom, err := s.parseSort(items[1])
			if err != nil {
				return nil, err
			}
			cod, err := s.parseSort(items[2])
			if err != nil {
				return nil, err
			}
			return s.backend.FunctionSort([]solver.Sort{dom}, cod)
		case "_":
			if items[1].IsAtom() && items[1].Atom == "BitVec" {
				width, err := parseIndex(items[2])
				if err != nil {
					return nil, syntaxErrorf(e, "bad bit-vector width")
				}
				return s.backend.BitVecSort(width)
			}
		}
	}
	return nil, syntaxErrorf(e, "unsupported sort syntax")
}

// parseIndex reads a non-negative decimal index used by (_ ...) forms.
func parseIndex(e sexpr.Node) (uint, error) {
	if !e.IsAtom() {
		return 0, &SyntaxError{Form: e.String(), Detail: "expected a numeral"}
	}
	n, err := strconv.ParseUint(e.Atom, 10, 32)
	if err != nil {
		return 0, &SyntaxError{Form: e.String(), Detail: "expected a numeral"}
	}
	return uint(n), nil
}
