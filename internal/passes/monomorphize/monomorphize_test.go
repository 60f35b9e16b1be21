package monomorphize_test

import (
	"testing"

	"github.com/ProvableHQ/leo-sub007/internal/ast"
	"github.com/ProvableHQ/leo-sub007/internal/compiler"
	"github.com/ProvableHQ/leo-sub007/internal/diag"
	"github.com/ProvableHQ/leo-sub007/internal/passes/monomorphize"
	"github.com/ProvableHQ/leo-sub007/internal/session"
	"github.com/ProvableHQ/leo-sub007/internal/symtab"
)

// buildConstGenericCall constructs a program with a const-generic inline
// function `repeat[n: u32]()` and a caller that invokes it with a literal
// const argument already folded, as constfold would have left it.
func buildConstGenericCall(t *testing.T) (*compiler.CompilerState, *ast.Function, *ast.CallExpr) {
	t.Helper()
	nb := ast.NewNodeBuilder()
	prog := session.Intern("basic.aleo")
	calleeName := session.Intern("repeat")
	nParam := session.Intern("n")

	callee := &ast.Function{
		Base: ast.Base{NID: nb.NextID()}, Name: calleeName, Variant: ast.VariantInline,
		ConstParams: []*ast.Param{{Base: ast.Base{NID: nb.NextID()}, Name: nParam}},
		Body:        &ast.BlockStmt{Base: ast.Base{NID: nb.NextID()}},
	}
	calleeLoc := ast.Location{Program: prog, Path: []session.Symbol{calleeName}}

	lit := &ast.Literal{Base: ast.Base{NID: nb.NextID()}, Kind: ast.LitInt, Value: "3", Subtype: "u32"}
	call := &ast.CallExpr{
		Base: ast.Base{NID: nb.NextID()}, Target: &calleeLoc,
		Callee:         &ast.PathExpr{Base: ast.Base{NID: nb.NextID()}, Segments: []session.Symbol{calleeName}, Global: &calleeLoc},
		ConstArguments: []ast.Expr{lit},
	}
	stmt := &ast.ExprStmt{Base: ast.Base{NID: nb.NextID()}, Expr: call}
	body := &ast.BlockStmt{Base: ast.Base{NID: nb.NextID()}, Statements: []ast.Stmt{stmt}}
	caller := &ast.Function{Base: ast.Base{NID: nb.NextID()}, Variant: ast.VariantTransition, Body: body}

	scope := &ast.ProgramScope{Program: prog, Functions: []*ast.Function{callee, caller}}
	program := &ast.Program{Scopes: []*ast.ProgramScope{scope}}
	h := diag.NewHandler(diag.ModeBuffered, nil)
	st := compiler.NewState(program, nb, h, nil)
	if err := st.Symbols.InsertFunction(&symtab.FuncEntry{Location: calleeLoc, Decl: callee}); err != nil {
		t.Fatalf("unexpected error seeding callee entry: %v", err)
	}
	return st, caller, call
}

func TestMonomorphize_SpecializesConstGenericCall(t *testing.T) {
	session.CreateSessionIfNotSetThen(func() {
		st, caller, call := buildConstGenericCall(t)

		if !(monomorphize.Pass{}).Run(st) {
			t.Fatalf("expected pass to succeed, errors: %+v", st.Handler.Errors())
		}

		if call.ConstArguments != nil {
			t.Error("expected the call's const arguments to be cleared after specialization")
		}
		if call.Target == nil || session.Resolve(call.Target.Path[0]) != "repeat::[3u32]" {
			t.Fatalf("expected call target to be rewritten to repeat::[3u32], got %+v", call.Target)
		}

		scope := st.Program.Scopes[0]
		found := false
		for _, fn := range scope.Functions {
			if session.Resolve(fn.Name) == "repeat::[3u32]" {
				found = true
			}
		}
		if !found {
			t.Error("expected a specialized function to be appended to the program scope")
		}
		if _, ok := st.Symbols.LookupFunction(*call.Target); !ok {
			t.Error("expected the specialized function to be registered in the symbol table")
		}
		_ = caller
	})
}

func TestMonomorphize_RepeatedCallsWithSameArgsShareOneSpecialization(t *testing.T) {
	session.CreateSessionIfNotSetThen(func() {
		nb := ast.NewNodeBuilder()
		prog := session.Intern("basic.aleo")
		calleeName := session.Intern("repeat")
		calleeLoc := ast.Location{Program: prog, Path: []session.Symbol{calleeName}}
		callee := &ast.Function{
			Base: ast.Base{NID: nb.NextID()}, Name: calleeName, Variant: ast.VariantInline,
			ConstParams: []*ast.Param{{Base: ast.Base{NID: nb.NextID()}, Name: session.Intern("n")}},
			Body:        &ast.BlockStmt{Base: ast.Base{NID: nb.NextID()}},
		}

		mkCall := func() *ast.CallExpr {
			lit := &ast.Literal{Base: ast.Base{NID: nb.NextID()}, Kind: ast.LitInt, Value: "3", Subtype: "u32"}
			return &ast.CallExpr{
				Base: ast.Base{NID: nb.NextID()}, Target: &calleeLoc,
				Callee:         &ast.PathExpr{Base: ast.Base{NID: nb.NextID()}, Segments: []session.Symbol{calleeName}, Global: &calleeLoc},
				ConstArguments: []ast.Expr{lit},
			}
		}
		call1, call2 := mkCall(), mkCall()
		stmt1 := &ast.ExprStmt{Base: ast.Base{NID: nb.NextID()}, Expr: call1}
		stmt2 := &ast.ExprStmt{Base: ast.Base{NID: nb.NextID()}, Expr: call2}
		body := &ast.BlockStmt{Base: ast.Base{NID: nb.NextID()}, Statements: []ast.Stmt{stmt1, stmt2}}
		caller := &ast.Function{Base: ast.Base{NID: nb.NextID()}, Variant: ast.VariantTransition, Body: body}

		scope := &ast.ProgramScope{Program: prog, Functions: []*ast.Function{callee, caller}}
		program := &ast.Program{Scopes: []*ast.ProgramScope{scope}}
		h := diag.NewHandler(diag.ModeBuffered, nil)
		st := compiler.NewState(program, nb, h, nil)
		if err := st.Symbols.InsertFunction(&symtab.FuncEntry{Location: calleeLoc, Decl: callee}); err != nil {
			t.Fatalf("unexpected error seeding callee entry: %v", err)
		}

		if !(monomorphize.Pass{}).Run(st) {
			t.Fatalf("expected pass to succeed, errors: %+v", h.Errors())
		}

		count := 0
		for _, fn := range scope.Functions {
			if session.Resolve(fn.Name) == "repeat::[3u32]" {
				count++
			}
		}
		if count != 1 {
			t.Errorf("expected exactly one specialization to be memoized across identical call sites, got %d", count)
		}
	})
}
