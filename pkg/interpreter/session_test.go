package interpreter

import (
	"errors"
	"strings"
	"testing"

	"smtshell/frontend-go/pkg/solver"
)

func TestSetLogicExactlyOnce(t *testing.T) {
	s, _ := newTestSession(t)
	defer s.Close()

	if s.State() != Uninitialized {
		t.Fatalf("fresh session state %v", s.State())
	}
	mustRun(t, s, "(set-logic QF_LIA)")
	if s.State() != Active || s.Logic() != "QF_LIA" {
		t.Fatalf("after set-logic: state=%v logic=%q", s.State(), s.Logic())
	}

	err := s.ExecuteScript("(set-logic QF_BV)")
	if !errors.Is(err, ErrLogicAlreadySet) {
		t.Fatalf("second set-logic: got %v", err)
	}
	if s.Logic() != "QF_LIA" {
		t.Fatalf("failed set-logic changed the logic to %q", s.Logic())
	}
}

func TestContextCommandsRequireLogic(t *testing.T) {
	for _, src := range []string{
		"(assert true)",
		"(push)",
		"(pop)",
		"(check-sat)",
		"(reset-assertions)",
		"(get-model)",
	} {
		s, _ := newTestSession(t)
		if err := s.ExecuteScript(src); !errors.Is(err, ErrLogicNotSet) {
			t.Fatalf("%s before set-logic: got %v", src, err)
		}
		s.Close()
	}
}

func TestDeclarationsPermittedBeforeLogic(t *testing.T) {
	s, out := newTestSession(t)
	defer s.Close()
	mustRun(t, s, `
		(declare-sort Color 0)
		(declare-const c Color)
		(declare-fun f (Int) Int)
		(set-info :source "regression")
		(echo "early")
		(set-logic QF_UF)
		(check-sat)`)
	if got := out.String(); got != "early\nsat\n" {
		t.Fatalf("output %q", got)
	}
	if _, err := s.env.Resolve("c"); err != nil {
		t.Fatalf("pre-logic declaration lost: %v", err)
	}
}

func TestPushPopRoundTrip(t *testing.T) {
	s, out := newTestSession(t)
	defer s.Close()
	mustRun(t, s, "(set-logic QF_LIA)")

	pre := s.StackDepth()
	mustRun(t, s, "(push) (assert false) (pop)")
	if s.StackDepth() != pre {
		t.Fatalf("depth %d after push/pop, want %d", s.StackDepth(), pre)
	}

	// The popped assertion is gone.
	mustRun(t, s, "(check-sat)")
	if got := out.String(); got != "sat\n" {
		t.Fatalf("output %q, want sat", got)
	}

	if err := s.ExecuteScript("(pop)"); !errors.Is(err, ErrCannotPopBaseLevel) {
		t.Fatalf("pop at base: got %v", err)
	}
}

func TestPushPopWithCount(t *testing.T) {
	s, _ := newTestSession(t)
	defer s.Close()
	mustRun(t, s, "(set-logic QF_LIA) (push 3)")
	if s.StackDepth() != 4 {
		t.Fatalf("depth %d after (push 3), want 4", s.StackDepth())
	}
	mustRun(t, s, "(pop 2)")
	if s.StackDepth() != 2 {
		t.Fatalf("depth %d after (pop 2), want 2", s.StackDepth())
	}
	if err := s.ExecuteScript("(pop 2)"); !errors.Is(err, ErrCannotPopBaseLevel) {
		t.Fatalf("over-pop: got %v", err)
	}
}

func TestModelCacheReusedUntilInvalidated(t *testing.T) {
	s, _ := newTestSession(t)
	defer s.Close()
	mustRun(t, s, "(set-logic QF_LIA) (declare-const x Int) (check-sat)")

	if s.HasCachedModel() {
		t.Fatalf("model cached before any model query")
	}
	mustRun(t, s, "(get-model)")
	if !s.HasCachedModel() {
		t.Fatalf("get-model did not cache the model")
	}
	mustRun(t, s, "(get-value (x)) (get-value (x))")
	if !s.HasCachedModel() {
		t.Fatalf("get-value dropped the cached model")
	}

	mustRun(t, s, "(assert (= x x))")
	if s.HasCachedModel() {
		t.Fatalf("assert did not invalidate the cached model")
	}

	mustRun(t, s, "(check-sat) (get-model) (push)")
	if s.HasCachedModel() {
		t.Fatalf("push did not invalidate the cached model")
	}
	mustRun(t, s, "(get-model) (pop)")
	if s.HasCachedModel() {
		t.Fatalf("pop did not invalidate the cached model")
	}
	mustRun(t, s, "(get-model) (reset-assertions)")
	if s.HasCachedModel() {
		t.Fatalf("reset-assertions did not invalidate the cached model")
	}
}

func TestGetValueOutput(t *testing.T) {
	s, out := newTestSession(t)
	defer s.Close()
	mustRun(t, s, `
		(set-logic QF_LIA)
		(declare-const x Int)
		(declare-const p Bool)
		(check-sat)
		(get-value (x p))`)
	want := "sat\n((x 0) (p false))\n"
	if got := out.String(); got != want {
		t.Fatalf("output %q, want %q", got, want)
	}
}

func TestGetAssertionsListsInOrder(t *testing.T) {
	s, out := newTestSession(t)
	defer s.Close()
	mustRun(t, s, `
		(set-logic QF_LIA)
		(declare-const x Int)
		(assert (< x 5))
		(push)
		(assert (> x 0))
		(get-assertions)`)
	if got := out.String(); got != "((< x 5) (> x 0))\n" {
		t.Fatalf("output %q", got)
	}
}

func TestCheckSatAssumingDoesNotPersist(t *testing.T) {
	s, out := newTestSession(t)
	defer s.Close()
	mustRun(t, s, `
		(set-logic QF_LIA)
		(check-sat-assuming (false))
		(check-sat)
		(get-assertions)`)
	if got := out.String(); got != "unsat\nsat\n()\n" {
		t.Fatalf("output %q", got)
	}
}

func TestInfoAndOptionTables(t *testing.T) {
	s, out := newTestSession(t)
	defer s.Close()
	mustRun(t, s, `
		(set-info :status sat)
		(set-info :unknown-attribute whatever)
		(get-info :status)
		(get-info :missing)
		(set-option :produce-models true)
		(get-option :produce-models)
		(get-option :missing)`)
	want := "(:status \"sat\")\nunsupported\ntrue\nunsupported\n"
	if got := out.String(); got != want {
		t.Fatalf("output %q, want %q", got, want)
	}
}

func TestResetReturnsToUninitialized(t *testing.T) {
	s, _ := newTestSession(t)
	defer s.Close()
	mustRun(t, s, `
		(set-logic QF_LIA)
		(declare-const x Int)
		(assert (= x x))
		(check-sat)
		(get-model)
		(reset)`)

	if s.State() != Uninitialized || s.Logic() != "" {
		t.Fatalf("after reset: state=%v logic=%q", s.State(), s.Logic())
	}
	if s.StackDepth() != 1 || s.HasCachedModel() {
		t.Fatalf("after reset: depth=%d cached=%v", s.StackDepth(), s.HasCachedModel())
	}
	if _, err := s.env.Resolve("x"); err == nil {
		t.Fatalf("declaration survived reset")
	}

	// The session is reusable.
	mustRun(t, s, "(set-logic QF_BV)")
	if s.Logic() != "QF_BV" {
		t.Fatalf("re-set-logic after reset failed")
	}
}

func TestExitClosesSession(t *testing.T) {
	s, _ := newTestSession(t)
	mustRun(t, s, "(set-logic QF_LIA) (exit)")
	if s.State() != Closed {
		t.Fatalf("state after exit: %v", s.State())
	}
	if err := s.ExecuteScript("(check-sat)"); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("command after exit: got %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestRejectedCommands(t *testing.T) {
	s, _ := newTestSession(t)
	defer s.Close()
	mustRun(t, s, "(set-logic QF_LIA)")

	for _, src := range []string{
		"(declare-datatypes () ())",
		"(define-fun-rec f () Int 0)",
		"(get-proof)",
		"(get-assignment)",
		"(get-unsat-assumptions)",
	} {
		err := s.ExecuteScript(src)
		var ue *UnsupportedError
		if !errors.As(err, &ue) {
			t.Fatalf("%s: got %v, want UnsupportedError", src, err)
		}
	}

	err := s.ExecuteScript("(frobnicate)")
	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("unknown command: got %v", err)
	}
	if !strings.Contains(se.Form, "frobnicate") {
		t.Fatalf("error lost the offending form: %q", se.Form)
	}
}

func TestDefineFunAlias(t *testing.T) {
	s, out := newTestSession(t)
	defer s.Close()
	mustRun(t, s, `
		(set-logic QF_LIA)
		(define-fun five () Int 5)
		(assert (= five 5))
		(check-sat)`)
	if got := out.String(); got != "sat\n" {
		t.Fatalf("output %q", got)
	}

	err := s.ExecuteScript("(define-fun inc ((n Int)) Int (+ n 1))")
	var ue *UnsupportedError
	if !errors.As(err, &ue) {
		t.Fatalf("parameterized define-fun: got %v", err)
	}
}

func TestRedeclarationSilentlyShadows(t *testing.T) {
	s, _ := newTestSession(t)
	defer s.Close()
	mustRun(t, s, "(set-logic QF_LIA) (declare-const x Int)")
	first, _ := s.env.Resolve("x")
	mustRun(t, s, "(declare-const x Bool)")
	second, _ := s.env.Resolve("x")
	if first == second {
		t.Fatalf("re-declaration did not replace the binding")
	}
	if second.Sort().Kind() != solver.KindBool {
		t.Fatalf("shadowing declaration kept the old sort")
	}
}
