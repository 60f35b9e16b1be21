package futurecheck_test

import (
	"strings"
	"testing"

	"github.com/ProvableHQ/leo-sub007/internal/ast"
	"github.com/ProvableHQ/leo-sub007/internal/compiler"
	"github.com/ProvableHQ/leo-sub007/internal/diag"
	"github.com/ProvableHQ/leo-sub007/internal/passes/futurecheck"
	"github.com/ProvableHQ/leo-sub007/internal/session"
	"github.com/ProvableHQ/leo-sub007/internal/types"
)

// buildAsyncFn builds an async transition whose body is a single
// `let f = callAsync();` DefinitionStmt (of Future type), optionally
// followed by `f.await();`.
func buildAsyncFn(nb *ast.NodeBuilder, withAwait bool) (*ast.Function, *compiler.CompilerState) {
	prog := session.Intern("basic.aleo")
	fName := session.Intern("f")
	calleeLoc := ast.Location{Program: prog, Path: []session.Symbol{session.Intern("start")}}

	callExpr := &ast.CallExpr{
		Base:   ast.Base{NID: nb.NextID()},
		Callee: &ast.PathExpr{Base: ast.Base{NID: nb.NextID()}, Global: &calleeLoc},
	}
	defID := nb.NextID()
	defStmt := &ast.DefinitionStmt{Base: ast.Base{NID: defID}, Names: []session.Symbol{fName}, Value: callExpr}

	stmts := []ast.Stmt{defStmt}
	if withAwait {
		awaitReceiver := &ast.PathExpr{Base: ast.Base{NID: nb.NextID()}, Local: &ast.LocalBinding{Name: fName, DeclID: defID}}
		awaitCall := &ast.CallExpr{
			Base:   ast.Base{NID: nb.NextID()},
			Callee: &ast.MemberAccessExpr{Base: ast.Base{NID: nb.NextID()}, Receiver: awaitReceiver, Member: session.Intern("await")},
		}
		stmts = append(stmts, &ast.ExprStmt{Base: ast.Base{NID: nb.NextID()}, Expr: awaitCall})
	}
	body := &ast.BlockStmt{Base: ast.Base{NID: nb.NextID()}, Statements: stmts}
	fn := &ast.Function{Base: ast.Base{NID: nb.NextID()}, Variant: ast.VariantAsyncTransition, Body: body}

	scope := &ast.ProgramScope{Program: prog, Functions: []*ast.Function{fn}}
	program := &ast.Program{Scopes: []*ast.ProgramScope{scope}}
	h := diag.NewHandler(diag.ModeBuffered, nil)
	st := compiler.NewState(program, nb, h, nil)
	st.Types.Set(callExpr.ID(), types.Future())
	return fn, st
}

func TestFutureCheck_AwaitedFutureIsClean(t *testing.T) {
	session.CreateSessionIfNotSetThen(func() {
		nb := ast.NewNodeBuilder()
		_, st := buildAsyncFn(nb, true)

		if !(futurecheck.Pass{}).Run(st) {
			t.Fatalf("expected pass to succeed, errors: %+v", st.Handler.Errors())
		}
	})
}

func TestFutureCheck_NeverAwaitedFutureIsAnError(t *testing.T) {
	session.CreateSessionIfNotSetThen(func() {
		nb := ast.NewNodeBuilder()
		_, st := buildAsyncFn(nb, false)

		if (futurecheck.Pass{}).Run(st) {
			t.Fatal("expected an unawaited future to fail the pass")
		}
		found := false
		for _, e := range st.Handler.Errors() {
			if e.Code == diag.StaFutureNeverAwaited {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected diag.StaFutureNeverAwaited among errors, got %+v", st.Handler.Errors())
		}
	})
}

// TestFutureCheck_OutOfOrderAwaitWarnsButSucceeds covers spec.md §8
// scenario 3: an async transition producing futures fa then fb that
// awaits fb before fa gets a warning whose text mentions
// future_not_awaited_in_order, and the pass still succeeds.
func TestFutureCheck_OutOfOrderAwaitWarnsButSucceeds(t *testing.T) {
	session.CreateSessionIfNotSetThen(func() {
		nb := ast.NewNodeBuilder()
		prog := session.Intern("basic.aleo")
		faName, fbName := session.Intern("fa"), session.Intern("fb")
		calleeLoc := ast.Location{Program: prog, Path: []session.Symbol{session.Intern("start")}}

		mkProduce := func(name session.Symbol) (*ast.DefinitionStmt, *ast.CallExpr) {
			call := &ast.CallExpr{
				Base:   ast.Base{NID: nb.NextID()},
				Callee: &ast.PathExpr{Base: ast.Base{NID: nb.NextID()}, Global: &calleeLoc},
			}
			def := &ast.DefinitionStmt{Base: ast.Base{NID: nb.NextID()}, Names: []session.Symbol{name}, Value: call}
			return def, call
		}
		mkAwait := func(name session.Symbol, declID ast.NodeID) ast.Stmt {
			receiver := &ast.PathExpr{Base: ast.Base{NID: nb.NextID()}, Local: &ast.LocalBinding{Name: name, DeclID: declID}}
			call := &ast.CallExpr{
				Base:   ast.Base{NID: nb.NextID()},
				Callee: &ast.MemberAccessExpr{Base: ast.Base{NID: nb.NextID()}, Receiver: receiver, Member: session.Intern("await")},
			}
			return &ast.ExprStmt{Base: ast.Base{NID: nb.NextID()}, Expr: call}
		}

		faDef, faCall := mkProduce(faName)
		fbDef, fbCall := mkProduce(fbName)
		body := &ast.BlockStmt{Base: ast.Base{NID: nb.NextID()}, Statements: []ast.Stmt{
			faDef, fbDef,
			mkAwait(fbName, fbDef.ID()), // fb awaited first: out of production order
			mkAwait(faName, faDef.ID()),
		}}
		fn := &ast.Function{Base: ast.Base{NID: nb.NextID()}, Variant: ast.VariantAsyncTransition, Body: body}
		scope := &ast.ProgramScope{Program: prog, Functions: []*ast.Function{fn}}
		program := &ast.Program{Scopes: []*ast.ProgramScope{scope}}
		h := diag.NewHandler(diag.ModeBuffered, nil)
		st := compiler.NewState(program, nb, h, nil)
		st.Types.Set(faCall.ID(), types.Future())
		st.Types.Set(fbCall.ID(), types.Future())

		if !(futurecheck.Pass{}).Run(st) {
			t.Fatalf("expected an out-of-order await to warn, not fail, errors: %+v", h.Errors())
		}
		if h.HadErrors() {
			t.Fatalf("expected no errors, got %+v", h.Errors())
		}
		var warn *diag.Report
		for _, w := range h.Warnings() {
			if w.Code == diag.StaFutureUnorderedAwait {
				warn = w
			}
		}
		if warn == nil {
			t.Fatalf("expected a %s warning, got %+v", diag.StaFutureUnorderedAwait, h.Reports())
		}
		if !strings.Contains(warn.Message, "future_not_awaited_in_order") {
			t.Fatalf("expected the warning text to mention future_not_awaited_in_order, got %q", warn.Message)
		}
	})
}

func TestFutureCheck_NonAsyncFunctionsAreSkipped(t *testing.T) {
	session.CreateSessionIfNotSetThen(func() {
		nb := ast.NewNodeBuilder()
		prog := session.Intern("basic.aleo")
		body := &ast.BlockStmt{Base: ast.Base{NID: nb.NextID()}}
		fn := &ast.Function{Base: ast.Base{NID: nb.NextID()}, Variant: ast.VariantTransition, Body: body}
		scope := &ast.ProgramScope{Program: prog, Functions: []*ast.Function{fn}}
		program := &ast.Program{Scopes: []*ast.ProgramScope{scope}}
		h := diag.NewHandler(diag.ModeBuffered, nil)
		st := compiler.NewState(program, nb, h, nil)

		if !(futurecheck.Pass{}).Run(st) {
			t.Fatalf("expected a plain transition to be skipped cleanly, errors: %+v", h.Errors())
		}
	})
}
