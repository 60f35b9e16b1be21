package imports_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/ProvableHQ/leo-sub007/internal/ast"
	"github.com/ProvableHQ/leo-sub007/internal/diag"
	"github.com/ProvableHQ/leo-sub007/internal/imports"
	"github.com/ProvableHQ/leo-sub007/internal/session"
)

type fakeFetcher struct {
	stubs map[session.Symbol]*ast.Stub
	err   map[session.Symbol]error
}

func (f *fakeFetcher) Fetch(program session.Symbol) (*ast.Stub, error) {
	if err, ok := f.err[program]; ok {
		return nil, err
	}
	if s, ok := f.stubs[program]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("no such program")
}

func TestResolve_Property4_TopologicalStubs(t *testing.T) {
	session.CreateSessionIfNotSetThen(func() {
		main := session.Intern("main.aleo")
		a := session.Intern("a.aleo")
		b := session.Intern("b.aleo")
		c := session.Intern("c.aleo")

		f := &fakeFetcher{stubs: map[session.Symbol]*ast.Stub{
			a: {Program: a, Imports: []session.Symbol{b}},
			b: {Program: b, Imports: []session.Symbol{c}},
			c: {Program: c},
		}}

		h := diag.NewHandler(diag.ModeBuffered, nil)
		stubs := imports.Resolve(main, []session.Symbol{a}, f, h)

		if h.HadErrors() {
			t.Fatalf("unexpected errors: %+v", h.Errors())
		}
		if len(stubs) != 3 {
			t.Fatalf("expected 3 stubs, got %d: %+v", len(stubs), stubs)
		}

		index := map[session.Symbol]int{}
		for i, s := range stubs {
			index[s.Program] = i
		}
		if index[c] > index[b] {
			t.Fatalf("c (b's dependency) must precede b")
		}
		if index[b] > index[a] {
			t.Fatalf("b (a's dependency) must precede a")
		}
	})
}

func TestResolve_CyclicImportIsAnError(t *testing.T) {
	session.CreateSessionIfNotSetThen(func() {
		main := session.Intern("main.aleo")
		a := session.Intern("a.aleo")
		b := session.Intern("b.aleo")

		f := &fakeFetcher{stubs: map[session.Symbol]*ast.Stub{
			a: {Program: a, Imports: []session.Symbol{b}},
			b: {Program: b, Imports: []session.Symbol{a}},
		}}

		h := diag.NewHandler(diag.ModeBuffered, nil)
		stubs := imports.Resolve(main, []session.Symbol{a}, f, h)

		if !h.HadErrors() {
			t.Fatal("expected a cycle diagnostic")
		}
		if stubs != nil {
			t.Fatalf("expected no stubs on a cyclic import graph, got %+v", stubs)
		}
		var cycleReport *diag.Report
		for _, e := range h.Errors() {
			if e.Code == diag.ExtImportUnresolved {
				cycleReport = e
			}
		}
		if cycleReport == nil {
			t.Fatalf("expected diag.ExtImportUnresolved, got %+v", h.Errors())
		}
		// The message must say "cycle detected" and list both program
		// names, not their interned symbol ids.
		if !strings.Contains(cycleReport.Message, "cycle detected") {
			t.Fatalf("expected the message to say \"cycle detected\", got %q", cycleReport.Message)
		}
		for _, name := range []string{"a.aleo", "b.aleo"} {
			if !strings.Contains(cycleReport.Message, name) {
				t.Fatalf("expected the cycle path to name %s, got %q", name, cycleReport.Message)
			}
		}
	})
}

func TestResolve_UnresolvedImportEmitsExternalError(t *testing.T) {
	session.CreateSessionIfNotSetThen(func() {
		main := session.Intern("main.aleo")
		missing := session.Intern("missing.aleo")

		f := &fakeFetcher{err: map[session.Symbol]error{missing: fmt.Errorf("network down")}}

		h := diag.NewHandler(diag.ModeBuffered, nil)
		imports.Resolve(main, []session.Symbol{missing}, f, h)

		if !h.HadErrors() {
			t.Fatal("expected an error for an unresolvable import")
		}
	})
}
