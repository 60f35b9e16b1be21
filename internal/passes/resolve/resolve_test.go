package resolve_test

import (
	"testing"

	"github.com/ProvableHQ/leo-sub007/internal/ast"
	"github.com/ProvableHQ/leo-sub007/internal/compiler"
	"github.com/ProvableHQ/leo-sub007/internal/diag"
	"github.com/ProvableHQ/leo-sub007/internal/passes/resolve"
	"github.com/ProvableHQ/leo-sub007/internal/session"
)

// TestResolve_Scenario1_LocalParamsResolve exercises spec.md §8 Scenario 1:
// `transition add(a: u32, b: u32) -> u32 { return a + b; }` — both operands
// of the return expression must resolve to LocalBinding, not Global.
func TestResolve_Scenario1_LocalParamsResolve(t *testing.T) {
	session.CreateSessionIfNotSetThen(func() {
		nb := ast.NewNodeBuilder()
		prog := session.Intern("basic.aleo")
		aName := session.Intern("a")
		bName := session.Intern("b")

		aParam := &ast.Param{Base: ast.Base{NID: nb.NextID()}, Name: aName}
		bParam := &ast.Param{Base: ast.Base{NID: nb.NextID()}, Name: bName}

		aRef := &ast.PathExpr{Base: ast.Base{NID: nb.NextID()}, Segments: []session.Symbol{aName}}
		bRef := &ast.PathExpr{Base: ast.Base{NID: nb.NextID()}, Segments: []session.Symbol{bName}}
		sum := &ast.BinaryExpr{Base: ast.Base{NID: nb.NextID()}, Op: ast.OpAdd, Left: aRef, Right: bRef}
		ret := &ast.ReturnStmt{Base: ast.Base{NID: nb.NextID()}, Value: sum}
		body := &ast.BlockStmt{Base: ast.Base{NID: nb.NextID()}, Statements: []ast.Stmt{ret}}
		fn := &ast.Function{
			Base: ast.Base{NID: nb.NextID()}, Name: session.Intern("add"),
			Variant: ast.VariantTransition, Inputs: []*ast.Param{aParam, bParam}, Body: body,
		}
		scope := &ast.ProgramScope{Program: prog, Functions: []*ast.Function{fn}}
		program := &ast.Program{Scopes: []*ast.ProgramScope{scope}}

		h := diag.NewHandler(diag.ModeBuffered, nil)
		st := compiler.NewState(program, nb, h, nil)

		if !(resolve.Pass{}).Run(st) {
			t.Fatalf("expected pass to succeed, errors: %+v", h.Errors())
		}

		gotSum := ret.Value.(*ast.BinaryExpr)
		left := gotSum.Left.(*ast.PathExpr)
		right := gotSum.Right.(*ast.PathExpr)

		if left.Local == nil || left.Local.Name != aName || left.Global != nil {
			t.Fatalf("expected a to resolve to a LocalBinding, got Local=%v Global=%v", left.Local, left.Global)
		}
		if right.Local == nil || right.Local.Name != bName || right.Global != nil {
			t.Fatalf("expected b to resolve to a LocalBinding, got Local=%v Global=%v", right.Local, right.Global)
		}
	})
}

func TestResolve_UnresolvedPathEmitsSymbolDiagnostic(t *testing.T) {
	session.CreateSessionIfNotSetThen(func() {
		nb := ast.NewNodeBuilder()
		prog := session.Intern("basic.aleo")

		missingRef := &ast.PathExpr{Base: ast.Base{NID: nb.NextID()}, Segments: []session.Symbol{session.Intern("nope")}}
		ret := &ast.ReturnStmt{Base: ast.Base{NID: nb.NextID()}, Value: missingRef}
		body := &ast.BlockStmt{Base: ast.Base{NID: nb.NextID()}, Statements: []ast.Stmt{ret}}
		fn := &ast.Function{Base: ast.Base{NID: nb.NextID()}, Variant: ast.VariantTransition, Body: body}
		scope := &ast.ProgramScope{Program: prog, Functions: []*ast.Function{fn}}
		program := &ast.Program{Scopes: []*ast.ProgramScope{scope}}

		h := diag.NewHandler(diag.ModeBuffered, nil)
		st := compiler.NewState(program, nb, h, nil)

		if (resolve.Pass{}).Run(st) {
			t.Fatal("expected the pass to fail on an unresolvable path")
		}
		found := false
		for _, e := range h.Errors() {
			if e.Code == diag.SymUnknownVariable {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected diag.SymUnknownVariable among errors, got %+v", h.Errors())
		}
	})
}

func TestResolve_PathResolvesToProgramConst(t *testing.T) {
	session.CreateSessionIfNotSetThen(func() {
		nb := ast.NewNodeBuilder()
		prog := session.Intern("basic.aleo")
		constName := session.Intern("MAX")

		constDecl := &ast.ConstDecl{Base: ast.Base{NID: nb.NextID()}, Name: constName}
		ref := &ast.PathExpr{Base: ast.Base{NID: nb.NextID()}, Segments: []session.Symbol{constName}}
		ret := &ast.ReturnStmt{Base: ast.Base{NID: nb.NextID()}, Value: ref}
		body := &ast.BlockStmt{Base: ast.Base{NID: nb.NextID()}, Statements: []ast.Stmt{ret}}
		fn := &ast.Function{Base: ast.Base{NID: nb.NextID()}, Variant: ast.VariantTransition, Body: body}
		scope := &ast.ProgramScope{Program: prog, Consts: []*ast.ConstDecl{constDecl}, Functions: []*ast.Function{fn}}
		program := &ast.Program{Scopes: []*ast.ProgramScope{scope}}

		h := diag.NewHandler(diag.ModeBuffered, nil)
		st := compiler.NewState(program, nb, h, nil)

		if !(resolve.Pass{}).Run(st) {
			t.Fatalf("expected pass to succeed, errors: %+v", h.Errors())
		}
		got := ret.Value.(*ast.PathExpr)
		if got.Global == nil || got.Local != nil {
			t.Fatalf("expected MAX to resolve globally, got Local=%v Global=%v", got.Local, got.Global)
		}
		want := ast.Location{Program: prog, Path: []session.Symbol{constName}}
		if !got.Global.Equal(want) {
			t.Fatalf("got %s, want %s", got.Global, want)
		}
	})
}
