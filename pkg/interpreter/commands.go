package interpreter

import (
	"fmt"
	"strings"

	"smtshell/frontend-go/pkg/sexpr"
	"smtshell/frontend-go/pkg/solver"
)

// Execute runs one top-level command. Errors abort the command but leave
// the session in whatever partial state preceded it; callers decide whether
// to continue (the script runner does not, the REPL does).
func (s *Session) Execute(e sexpr.Node) error {
	if err := s.requireOpen(); err != nil {
		return err
	}
	if !e.IsList() || len(e.List) == 0 || !e.List[0].IsAtom() {
		return syntaxErrorf(e, "expected a command")
	}
	name := sexpr.SymbolText(e.List[0].Atom)
	args := e.List[1:]

	switch name {
	case "set-logic":
		return s.cmdSetLogic(e, args)
	case "set-option":
		return s.cmdSetOption(e, args)
	case "get-option":
		return s.cmdGetOption(e, args)
	case "set-info":
		return s.cmdSetInfo(e, args)
	case "get-info":
		return s.cmdGetInfo(e, args)
	case "echo":
		return s.cmdEcho(e, args)
	case "declare-sort":
		return s.cmdDeclareSort(e, args)
	case "declare-const":
		return s.cmdDeclareConst(e, args)
	case "declare-fun":
		return s.cmdDeclareFun(e, args)
	case "define-fun":
		return s.cmdDefineFun(e, args)
	case "assert":
		return s.cmdAssert(e, args)
	case "push":
		return s.cmdPush(e, args)
	case "pop":
		return s.cmdPop(e, args)
	case "check-sat":
		return s.cmdCheckSat(e, args)
	case "check-sat-assuming":
		return s.cmdCheckSatAssuming(e, args)
	case "get-value":
		return s.cmdGetValue(e, args)
	case "get-model":
		return s.cmdGetModel(e, args)
	case "get-assertions":
		return s.cmdGetAssertions(e, args)
	case "get-unsat-core":
		return s.cmdGetUnsatCore(e, args)
	case "reset-assertions":
		return s.cmdResetAssertions(e, args)
	case "reset":
		return s.cmdReset(e, args)
	case "exit":
		return s.Close()
	case "declare-datatype", "declare-datatypes":
		return &UnsupportedError{Feature: "datatypes"}
	case "define-fun-rec", "define-funs-rec":
		return &UnsupportedError{Feature: "recursive function definitions"}
	case "get-proof":
		return &UnsupportedError{Feature: "proof production"}
	case "get-assignment":
		return &UnsupportedError{Feature: "get-assignment"}
	case "get-unsat-assumptions":
		return &UnsupportedError{Feature: "get-unsat-assumptions"}
	}
	return syntaxErrorf(e, "unknown command")
}

// ExecuteScript parses src and runs every command in order, stopping at the
// first error.
func (s *Session) ExecuteScript(src string) error {
	forms, err := sexpr.ReadAll(src)
	if err != nil {
		return err
	}
	for _, form := range forms {
		if err := s.Execute(form); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) cmdSetLogic(e sexpr.Node, args []sexpr.Node) error {
	if len(args) != 1 || !args[0].IsAtom() {
		return syntaxErrorf(e, "set-logic takes one symbol")
	}
	if s.state != Uninitialized {
		return ErrLogicAlreadySet
	}
	logic := sexpr.SymbolText(args[0].Atom)
	if err := s.backend.SetLogic(logic); err != nil {
		return err
	}
	s.logic = logic
	s.state = Active
	return nil
}

func (s *Session) cmdSetOption(e sexpr.Node, args []sexpr.Node) error {
	key, value, err := keywordPair(e, args)
	if err != nil {
		return err
	}
	if err := s.backend.SetOption(key, value); err != nil {
		return err
	}
	s.options[key] = value
	return nil
}

func (s *Session) cmdGetOption(e sexpr.Node, args []sexpr.Node) error {
	if len(args) != 1 || !args[0].IsAtom() {
		return syntaxErrorf(e, "get-option takes one keyword")
	}
	if v, ok := s.options[strings.TrimPrefix(args[0].Atom, ":")]; ok {
		s.println(v)
	} else {
		s.println("unsupported")
	}
	return nil
}

// cmdSetInfo never rejects an attribute: unrecognized keys are stored and
// otherwise ignored.
func (s *Session) cmdSetInfo(e sexpr.Node, args []sexpr.Node) error {
	key, value, err := keywordPair(e, args)
	if err != nil {
		return err
	}
	s.info[key] = value
	return nil
}

func (s *Session) cmdGetInfo(e sexpr.Node, args []sexpr.Node) error {
	if len(args) != 1 || !args[0].IsAtom() {
		return syntaxErrorf(e, "get-info takes one keyword")
	}
	key := strings.TrimPrefix(args[0].Atom, ":")
	if v, ok := s.info[key]; ok {
		s.printf("(:%s \"%s\")\n", key, v)
		return nil
	}
	s.println("unsupported")
	return nil
}

func (s *Session) cmdEcho(e sexpr.Node, args []sexpr.Node) error {
	if len(args) != 1 || !args[0].IsAtom() {
		return syntaxErrorf(e, "echo takes one string")
	}
	s.println(sexpr.StringText(args[0].Atom))
	return nil
}

func (s *Session) cmdDeclareSort(e sexpr.Node, args []sexpr.Node) error {
	if len(args) == 0 || len(args) > 2 || !args[0].IsAtom() {
		return syntaxErrorf(e, "declare-sort takes a name and an optional arity")
	}
	if len(args) == 2 {
		arity, err := parseIndex(args[1])
		if err != nil {
			return err
		}
		if arity != 0 {
			return &UnsupportedError{Feature: "parametric sorts"}
		}
	}
	name := sexpr.SymbolText(args[0].Atom)
	srt, err := s.backend.UninterpretedSort(name)
	if err != nil {
		return err
	}
	s.sorts[name] = srt
	return nil
}

func (s *Session) cmdDeclareConst(e sexpr.Node, args []sexpr.Node) error {
	if len(args) != 2 || !args[0].IsAtom() {
		return syntaxErrorf(e, "declare-const takes a name and a sort")
	}
	srt, err := s.parseSort(args[1])
	if err != nil {
		return err
	}
	name := sexpr.SymbolText(args[0].Atom)
	c, err := s.backend.Const(name, srt)
	if err != nil {
		return err
	}
	s.env.Bind(name, c)
	return nil
}

func (s *Session) cmdDeclareFun(e sexpr.Node, args []sexpr.Node) error {
	if len(args) != 3 || !args[0].IsAtom() || !args[1].IsList() {
		return syntaxErrorf(e, "declare-fun takes a name, a domain list, and a sort")
	}
	cod, err := s.parseSort(args[2])
	if err != nil {
		return err
	}
	var srt solver.Sort
	if len(args[1].List) == 0 {
		srt = cod
	} else {
		domain := make([]solver.Sort, len(args[1].List))
		for i, d := range args[1].List {
			if domain[i], err = s.parseSort(d); err != nil {
				return err
			}
		}
		if srt, err = s.backend.FunctionSort(domain, cod); err != nil {
			return err
		}
	}
	name := sexpr.SymbolText(args[0].Atom)
	c, err := s.backend.Const(name, srt)
	if err != nil {
		return err
	}
	s.env.Bind(name, c)
	return nil
}

// cmdDefineFun supports the zero-parameter form only: the name becomes an
// alias for the parsed body term. Parameterized definitions would need
// macro expansion in the backend.
func (s *Session) cmdDefineFun(e sexpr.Node, args []sexpr.Node) error {
	if len(args) != 4 || !args[0].IsAtom() || !args[1].IsList() {
		return syntaxErrorf(e, "define-fun takes a name, parameters, a sort, and a body")
	}
	if len(args[1].List) != 0 {
		return &UnsupportedError{Feature: "define-fun with parameters"}
	}
	if _, err := s.parseSort(args[2]); err != nil {
		return err
	}
	body, err := s.parseTerm(s.env, args[3])
	if err != nil {
		return err
	}
	s.env.Bind(sexpr.SymbolText(args[0].Atom), body)
	return nil
}

func (s *Session) cmdAssert(e sexpr.Node, args []sexpr.Node) error {
	if err := s.requireActive("assert"); err != nil {
		return err
	}
	if len(args) != 1 {
		return syntaxErrorf(e, "assert takes one term")
	}
	t, err := s.parseTerm(s.env, args[0])
	if err != nil {
		return err
	}
	if err := s.backend.Assert(t); err != nil {
		return err
	}
	s.stack.Add(t)
	s.invalidateModel()
	return nil
}

func (s *Session) cmdPush(e sexpr.Node, args []sexpr.Node) error {
	if err := s.requireActive("push"); err != nil {
		return err
	}
	n, err := optionalCount(e, args)
	if err != nil {
		return err
	}
	for i := uint(0); i < n; i++ {
		if err := s.backend.Push(); err != nil {
			return err
		}
		s.stack.Push()
	}
	s.invalidateModel()
	return nil
}

func (s *Session) cmdPop(e sexpr.Node, args []sexpr.Node) error {
	if err := s.requireActive("pop"); err != nil {
		return err
	}
	n, err := optionalCount(e, args)
	if err != nil {
		return err
	}
	for i := uint(0); i < n; i++ {
		if err := s.stack.Pop(); err != nil {
			return err
		}
		if err := s.backend.Pop(); err != nil {
			return err
		}
	}
	s.invalidateModel()
	return nil
}

func (s *Session) cmdCheckSat(e sexpr.Node, args []sexpr.Node) error {
	if err := s.requireActive("check-sat"); err != nil {
		return err
	}
	if len(args) != 0 {
		return syntaxErrorf(e, "check-sat takes no arguments")
	}
	status, err := s.backend.Check()
	if err != nil {
		return err
	}
	s.println(status.String())
	return nil
}

// cmdCheckSatAssuming parses the assumption terms but never persists them:
// they reach the backend for this one check only.
func (s *Session) cmdCheckSatAssuming(e sexpr.Node, args []sexpr.Node) error {
	if err := s.requireActive("check-sat-assuming"); err != nil {
		return err
	}
	if len(args) != 1 || !args[0].IsList() {
		return syntaxErrorf(e, "check-sat-assuming takes a list of terms")
	}
	assumptions, err := s.parseAll(s.env, args[0].List)
	if err != nil {
		return err
	}
	status, err := s.backend.CheckAssuming(assumptions)
	if err != nil {
		return err
	}
	s.println(status.String())
	return nil
}

func (s *Session) cmdGetValue(e sexpr.Node, args []sexpr.Node) error {
	if err := s.requireActive("get-value"); err != nil {
		return err
	}
	if len(args) != 1 || !args[0].IsList() || len(args[0].List) == 0 {
		return syntaxErrorf(e, "get-value takes a non-empty list of terms")
	}
	terms, err := s.parseAll(s.env, args[0].List)
	if err != nil {
		return err
	}
	m, err := s.currentModel()
	if err != nil {
		return err
	}
	var sb strings.Builder
	sb.WriteByte('(')
	for i, t := range terms {
		v, err := m.Eval(t)
		if err != nil {
			return err
		}
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "(%s %s)", args[0].List[i].String(), v.String())
	}
	sb.WriteByte(')')
	s.println(sb.String())
	return nil
}

func (s *Session) cmdGetModel(e sexpr.Node, args []sexpr.Node) error {
	if err := s.requireActive("get-model"); err != nil {
		return err
	}
	if len(args) != 0 {
		return syntaxErrorf(e, "get-model takes no arguments")
	}
	m, err := s.currentModel()
	if err != nil {
		return err
	}
	s.println(m.String())
	return nil
}

func (s *Session) cmdGetAssertions(e sexpr.Node, args []sexpr.Node) error {
	if err := s.requireActive("get-assertions"); err != nil {
		return err
	}
	if len(args) != 0 {
		return syntaxErrorf(e, "get-assertions takes no arguments")
	}
	parts := make([]string, 0, len(s.stack.All()))
	for _, t := range s.stack.All() {
		parts = append(parts, t.String())
	}
	s.println("(" + strings.Join(parts, " ") + ")")
	return nil
}

func (s *Session) cmdGetUnsatCore(e sexpr.Node, args []sexpr.Node) error {
	if err := s.requireActive("get-unsat-core"); err != nil {
		return err
	}
	if len(args) != 0 {
		return syntaxErrorf(e, "get-unsat-core takes no arguments")
	}
	core, err := s.backend.UnsatCore()
	if err != nil {
		return err
	}
	parts := make([]string, len(core))
	for i, t := range core {
		parts[i] = t.String()
	}
	s.println("(" + strings.Join(parts, " ") + ")")
	return nil
}

func (s *Session) cmdResetAssertions(e sexpr.Node, args []sexpr.Node) error {
	if err := s.requireActive("reset-assertions"); err != nil {
		return err
	}
	if len(args) != 0 {
		return syntaxErrorf(e, "reset-assertions takes no arguments")
	}
	if err := s.backend.ResetAssertions(); err != nil {
		return err
	}
	s.stack.Reset()
	s.invalidateModel()
	return nil
}

// cmdReset rebuilds the session as if freshly created: declarations, the
// selected logic, the assertion stack, and both attribute tables are
// dropped, and the state returns to Uninitialized.
func (s *Session) cmdReset(e sexpr.Node, args []sexpr.Node) error {
	if len(args) != 0 {
		return syntaxErrorf(e, "reset takes no arguments")
	}
	if err := s.backend.ResetAssertions(); err != nil {
		return err
	}
	s.invalidateModel()
	for k := range s.permanent {
		delete(s.permanent, k)
	}
	s.sorts = make(map[string]solver.Sort)
	s.stack.Reset()
	s.info = make(map[string]string)
	s.options = make(map[string]string)
	s.logic = ""
	s.state = Uninitialized
	return nil
}

// keywordPair reads (:keyword value) arguments for set-option/set-info. The
// value may be any single S-expression; its text is stored.
func keywordPair(e sexpr.Node, args []sexpr.Node) (string, string, error) {
	if len(args) != 2 || !args[0].IsAtom() || !strings.HasPrefix(args[0].Atom, ":") {
		return "", "", syntaxErrorf(e, "expected a keyword and a value")
	}
	key := strings.TrimPrefix(args[0].Atom, ":")
	value := args[1].String()
	if args[1].IsAtom() {
		value = sexpr.StringText(args[1].Atom)
	}
	return key, value, nil
}

// optionalCount reads the optional numeral of push/pop, defaulting to 1.
func optionalCount(e sexpr.Node, args []sexpr.Node) (uint, error) {
	switch len(args) {
	case 0:
		return 1, nil
	case 1:
		return parseIndex(args[0])
	default:
		return 0, syntaxErrorf(e, "expected at most one numeral")
	}
}
