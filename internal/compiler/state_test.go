package compiler_test

import (
	"testing"

	"github.com/ProvableHQ/leo-sub007/internal/ast"
	"github.com/ProvableHQ/leo-sub007/internal/compiler"
	"github.com/ProvableHQ/leo-sub007/internal/diag"
	"github.com/ProvableHQ/leo-sub007/internal/session"
)

type recordingPass struct {
	name string
	ran  *[]string
	ok   bool
	emit bool
}

func (p recordingPass) Name() string { return p.name }
func (p recordingPass) Run(st *compiler.CompilerState) bool {
	*p.ran = append(*p.ran, p.name)
	if p.emit {
		st.Handler.Emit(&diag.Report{Code: diag.IntInvariantBroke, Kind: diag.KindInternal, Severity: diag.SeverityError, Message: "boom"})
	}
	return p.ok
}

func newState(t *testing.T) *compiler.CompilerState {
	t.Helper()
	nb := ast.NewNodeBuilder()
	h := diag.NewHandler(diag.ModeBuffered, nil)
	return compiler.NewState(&ast.Program{}, nb, h, nil)
}

func TestDriver_RunsEveryPassInOrder(t *testing.T) {
	session.CreateSessionIfNotSetThen(func() {
		var ran []string
		st := newState(t)
		d := compiler.NewDriver(
			recordingPass{name: "a", ran: &ran, ok: true},
			recordingPass{name: "b", ran: &ran, ok: true},
			recordingPass{name: "c", ran: &ran, ok: true},
		)

		if !d.Run(st) {
			t.Fatalf("expected driver to succeed, errors: %+v", st.Handler.Errors())
		}
		if len(ran) != 3 || ran[0] != "a" || ran[1] != "b" || ran[2] != "c" {
			t.Fatalf("expected passes to run in order a,b,c, got %v", ran)
		}
		for _, name := range []string{"a", "b", "c"} {
			if _, ok := st.PhaseTimings[name]; !ok {
				t.Errorf("expected a recorded timing entry for pass %s", name)
			}
		}
	})
}

func TestDriver_StopsAtFirstPassThatReturnsFalse(t *testing.T) {
	session.CreateSessionIfNotSetThen(func() {
		var ran []string
		st := newState(t)
		d := compiler.NewDriver(
			recordingPass{name: "a", ran: &ran, ok: true},
			recordingPass{name: "b", ran: &ran, ok: false},
			recordingPass{name: "c", ran: &ran, ok: true},
		)

		if d.Run(st) {
			t.Fatal("expected driver to stop once a pass returns false")
		}
		if len(ran) != 2 {
			t.Fatalf("expected the third pass to never run, got %v", ran)
		}
	})
}

func TestDriver_StopsWhenAPassLeavesTheHandlerWithErrors(t *testing.T) {
	session.CreateSessionIfNotSetThen(func() {
		var ran []string
		st := newState(t)
		d := compiler.NewDriver(
			recordingPass{name: "a", ran: &ran, ok: true, emit: true},
			recordingPass{name: "b", ran: &ran, ok: true},
		)

		if d.Run(st) {
			t.Fatal("expected driver to stop once the handler holds an error, even if the pass itself returned true")
		}
		if len(ran) != 1 {
			t.Fatalf("expected the second pass to never run, got %v", ran)
		}
	})
}

func TestSummary_ReportsFunctionCountsPerProgram(t *testing.T) {
	session.CreateSessionIfNotSetThen(func() {
		nb := ast.NewNodeBuilder()
		prog := session.Intern("basic.aleo")
		scope := &ast.ProgramScope{Program: prog, Functions: []*ast.Function{{}, {}}}
		program := &ast.Program{Scopes: []*ast.ProgramScope{scope}}
		h := diag.NewHandler(diag.ModeBuffered, nil)
		st := compiler.NewState(program, nb, h, nil)

		summary := st.Summary()
		if summary == "" {
			t.Fatal("expected a non-empty summary")
		}
	})
}
