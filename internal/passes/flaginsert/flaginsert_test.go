package flaginsert_test

import (
	"testing"

	"github.com/ProvableHQ/leo-sub007/internal/ast"
	"github.com/ProvableHQ/leo-sub007/internal/compiler"
	"github.com/ProvableHQ/leo-sub007/internal/diag"
	"github.com/ProvableHQ/leo-sub007/internal/passes/flaginsert"
	"github.com/ProvableHQ/leo-sub007/internal/session"
)

// TestFlagInsert_ReassignmentInOneBranchGetsAFlagAndMergeAssign covers:
//
//	let x = 1;
//	if cond { x = 2; }
//
// x is touched only in the Then branch, so a `$flag` boolean bound to cond
// and a ternary-select merge assignment back to x must follow the
// conditional.
func TestFlagInsert_ReassignmentInOneBranchGetsAFlagAndMergeAssign(t *testing.T) {
	session.CreateSessionIfNotSetThen(func() {
		nb := ast.NewNodeBuilder()
		prog := session.Intern("basic.aleo")
		xName := session.Intern("x")

		def := &ast.DefinitionStmt{
			Base: ast.Base{NID: nb.NextID()}, Names: []session.Symbol{xName},
			Value: &ast.Literal{Kind: ast.LitInt, Value: "1", Subtype: "u32"},
		}
		xThenName := session.Intern("x$1")
		thenAssign := &ast.AssignStmt{
			Place: &ast.PathExpr{Local: &ast.LocalBinding{Name: xThenName, DeclID: def.ID()}},
			Value: &ast.Literal{Kind: ast.LitInt, Value: "2", Subtype: "u32"},
		}
		cond := &ast.ConditionalStmt{
			Cond: &ast.Literal{Kind: ast.LitBool, Value: "true"},
			Then: &ast.BlockStmt{Statements: []ast.Stmt{thenAssign}},
		}
		body := &ast.BlockStmt{Statements: []ast.Stmt{def, cond}}
		fn := &ast.Function{Base: ast.Base{NID: nb.NextID()}, Variant: ast.VariantTransition, Body: body}
		scope := &ast.ProgramScope{Program: prog, Functions: []*ast.Function{fn}}
		program := &ast.Program{Scopes: []*ast.ProgramScope{scope}}
		h := diag.NewHandler(diag.ModeBuffered, nil)
		st := compiler.NewState(program, nb, h, nil)

		if !(flaginsert.Pass{}).Run(st) {
			t.Fatalf("expected pass to succeed, errors: %+v", h.Errors())
		}

		if len(body.Statements) != 4 {
			t.Fatalf("expected def, conditional, flag decl, merge assign (4 statements), got %d: %#v", len(body.Statements), body.Statements)
		}
		flagDecl, ok := body.Statements[2].(*ast.DefinitionStmt)
		if !ok {
			t.Fatalf("expected a flag declaration after the conditional, got %T", body.Statements[2])
		}
		if flagDecl.Value != cond.Cond {
			t.Error("expected the flag to be bound to the conditional's own condition expression")
		}
		if _, ok := st.Types.Get(flagDecl.ID()); !ok {
			t.Error("expected the flag declaration to be recorded as bool in the type table")
		}

		merge, ok := body.Statements[3].(*ast.AssignStmt)
		if !ok {
			t.Fatalf("expected a merge assignment after the flag decl, got %T", body.Statements[3])
		}
		tern, ok := merge.Value.(*ast.TernaryExpr)
		if !ok {
			t.Fatalf("expected the merge assignment's value to be a ternary select, got %T", merge.Value)
		}
		place, ok := merge.Place.(*ast.PathExpr)
		if !ok || place.Local == nil || place.Local.DeclID != def.ID() {
			t.Fatalf("expected the merge to write back to the original declaration %v, got %#v", def.ID(), merge.Place)
		}
		thenRef, ok := tern.Then.(*ast.PathExpr)
		if !ok || thenRef.Local.Name != xThenName {
			t.Fatalf("expected the ternary's then-branch to read the then-assigned name, got %#v", tern.Then)
		}
	})
}

func TestFlagInsert_UntouchedVariablesGetNoFlag(t *testing.T) {
	session.CreateSessionIfNotSetThen(func() {
		nb := ast.NewNodeBuilder()
		prog := session.Intern("basic.aleo")

		cond := &ast.ConditionalStmt{
			Cond: &ast.Literal{Kind: ast.LitBool, Value: "true"},
			Then: &ast.BlockStmt{Statements: []ast.Stmt{&ast.ExprStmt{Expr: &ast.Literal{Kind: ast.LitInt, Value: "1", Subtype: "u32"}}}},
		}
		body := &ast.BlockStmt{Statements: []ast.Stmt{cond}}
		fn := &ast.Function{Base: ast.Base{NID: nb.NextID()}, Variant: ast.VariantTransition, Body: body}
		scope := &ast.ProgramScope{Program: prog, Functions: []*ast.Function{fn}}
		program := &ast.Program{Scopes: []*ast.ProgramScope{scope}}
		h := diag.NewHandler(diag.ModeBuffered, nil)
		st := compiler.NewState(program, nb, h, nil)

		if !(flaginsert.Pass{}).Run(st) {
			t.Fatalf("expected pass to succeed, errors: %+v", h.Errors())
		}
		if len(body.Statements) != 1 {
			t.Fatalf("expected no flag/merge statements to be inserted when nothing is reassigned, got %d", len(body.Statements))
		}
	})
}
