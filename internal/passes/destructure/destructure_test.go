package destructure_test

import (
	"testing"

	"github.com/ProvableHQ/leo-sub007/internal/ast"
	"github.com/ProvableHQ/leo-sub007/internal/compiler"
	"github.com/ProvableHQ/leo-sub007/internal/diag"
	"github.com/ProvableHQ/leo-sub007/internal/passes/destructure"
	"github.com/ProvableHQ/leo-sub007/internal/session"
	"github.com/ProvableHQ/leo-sub007/internal/types"
)

func buildProgram(t *testing.T, stmts []ast.Stmt) (*compiler.CompilerState, *ast.Function) {
	t.Helper()
	nb := ast.NewNodeBuilder()
	prog := session.Intern("basic.aleo")
	body := &ast.BlockStmt{Base: ast.Base{NID: nb.NextID()}, Statements: stmts}
	fn := &ast.Function{Base: ast.Base{NID: nb.NextID()}, Variant: ast.VariantTransition, Body: body}
	scope := &ast.ProgramScope{Program: prog, Functions: []*ast.Function{fn}}
	program := &ast.Program{Scopes: []*ast.ProgramScope{scope}}
	h := diag.NewHandler(diag.ModeBuffered, nil)
	st := compiler.NewState(program, nb, h, nil)
	return st, fn
}

// TestDestructure_TupleLitRHSSplitsIntoDirectAssigns covers `(x, y) =
// (1, 2)`: since the RHS is itself a tuple literal of matching arity, each
// element assigns directly with no temporary.
func TestDestructure_TupleLitRHSSplitsIntoDirectAssigns(t *testing.T) {
	session.CreateSessionIfNotSetThen(func() {
		nb := ast.NewNodeBuilder()
		xName, yName := session.Intern("x"), session.Intern("y")
		places := &ast.TupleLit{Elements: []ast.Expr{
			&ast.PathExpr{Local: &ast.LocalBinding{Name: xName}},
			&ast.PathExpr{Local: &ast.LocalBinding{Name: yName}},
		}}
		rhs := &ast.TupleLit{Elements: []ast.Expr{
			&ast.Literal{Kind: ast.LitInt, Value: "1", Subtype: "u32"},
			&ast.Literal{Kind: ast.LitInt, Value: "2", Subtype: "u32"},
		}}
		assign := &ast.AssignStmt{Base: ast.Base{NID: nb.NextID()}, Place: places, Value: rhs}

		st, fn := buildProgram(t, []ast.Stmt{assign})
		_ = nb

		if !(destructure.Pass{}).Run(st) {
			t.Fatalf("expected pass to succeed, errors: %+v", st.Handler.Errors())
		}
		if len(fn.Body.Statements) != 2 {
			t.Fatalf("expected the tuple assignment to split into 2 statements, got %d", len(fn.Body.Statements))
		}
		a0 := fn.Body.Statements[0].(*ast.AssignStmt)
		a1 := fn.Body.Statements[1].(*ast.AssignStmt)
		if lit, ok := a0.Value.(*ast.Literal); !ok || lit.Value != "1" {
			t.Errorf("expected first split assignment to bind 1, got %#v", a0.Value)
		}
		if lit, ok := a1.Value.(*ast.Literal); !ok || lit.Value != "2" {
			t.Errorf("expected second split assignment to bind 2, got %#v", a1.Value)
		}
	})
}

// TestDestructure_NonLiteralRHSUsesATemporary covers `(x, y) = f()`: since
// the RHS isn't a tuple literal, it must be bound once to a temporary and
// each place reads its own element off that temporary.
func TestDestructure_NonLiteralRHSUsesATemporary(t *testing.T) {
	session.CreateSessionIfNotSetThen(func() {
		nb := ast.NewNodeBuilder()
		xName, yName := session.Intern("x"), session.Intern("y")
		places := &ast.TupleLit{Elements: []ast.Expr{
			&ast.PathExpr{Local: &ast.LocalBinding{Name: xName}},
			&ast.PathExpr{Local: &ast.LocalBinding{Name: yName}},
		}}
		callExpr := &ast.CallExpr{Callee: &ast.PathExpr{Segments: []session.Symbol{session.Intern("pair")}}}
		assign := &ast.AssignStmt{Base: ast.Base{NID: nb.NextID()}, Place: places, Value: callExpr}

		st, fn := buildProgram(t, []ast.Stmt{assign})
		_ = nb

		if !(destructure.Pass{}).Run(st) {
			t.Fatalf("expected pass to succeed, errors: %+v", st.Handler.Errors())
		}
		if len(fn.Body.Statements) != 3 {
			t.Fatalf("expected a temp definition plus 2 element assigns, got %d", len(fn.Body.Statements))
		}
		def, ok := fn.Body.Statements[0].(*ast.DefinitionStmt)
		if !ok || def.Value != callExpr {
			t.Fatalf("expected the first statement to bind the call's result to a temporary, got %#v", fn.Body.Statements[0])
		}
		for _, s := range fn.Body.Statements[1:] {
			a := s.(*ast.AssignStmt)
			access, ok := a.Value.(*ast.TupleAccessExpr)
			if !ok {
				t.Fatalf("expected each remaining assignment to read a tuple element off the temporary, got %#v", a.Value)
			}
			ref, ok := access.Tuple.(*ast.PathExpr)
			if !ok || ref.Local == nil || ref.Local.DeclID != def.ID() {
				t.Fatalf("expected the temporary reference to resolve back to the definition, got %#v", access.Tuple)
			}
		}
	})
}

// TestDestructure_ElementWriteRebuildsWholeTuple covers `t.1 = v` when t's
// recorded type is a 2-tuple: the write becomes a whole-tuple reassignment
// that rebuilds element 0 from a read and substitutes v at element 1.
func TestDestructure_ElementWriteRebuildsWholeTuple(t *testing.T) {
	session.CreateSessionIfNotSetThen(func() {
		nb := ast.NewNodeBuilder()
		tName := session.Intern("t")
		tupleRef := &ast.PathExpr{Base: ast.Base{NID: nb.NextID()}, Local: &ast.LocalBinding{Name: tName}}
		elem := &ast.TupleAccessExpr{Base: ast.Base{NID: nb.NextID()}, Tuple: tupleRef, Index: 1}
		newVal := &ast.Literal{Kind: ast.LitInt, Value: "9", Subtype: "u32"}
		assign := &ast.AssignStmt{Base: ast.Base{NID: nb.NextID()}, Place: elem, Value: newVal}

		st, fn := buildProgram(t, []ast.Stmt{assign})
		st.Types.Set(tupleRef.ID(), types.Tuple(types.Int(types.U32), types.Int(types.U32)))

		if !(destructure.Pass{}).Run(st) {
			t.Fatalf("expected pass to succeed, errors: %+v", st.Handler.Errors())
		}
		if len(fn.Body.Statements) != 1 {
			t.Fatalf("expected a single whole-tuple reassignment, got %d statements", len(fn.Body.Statements))
		}
		a := fn.Body.Statements[0].(*ast.AssignStmt)
		if a.Place != tupleRef {
			t.Fatalf("expected the rewritten place to be the whole tuple, got %#v", a.Place)
		}
		rebuilt, ok := a.Value.(*ast.TupleLit)
		if !ok || len(rebuilt.Elements) != 2 {
			t.Fatalf("expected a 2-element tuple literal, got %#v", a.Value)
		}
		if rebuilt.Elements[1] != newVal {
			t.Errorf("expected element 1 to be the new value, got %#v", rebuilt.Elements[1])
		}
		if _, ok := rebuilt.Elements[0].(*ast.TupleAccessExpr); !ok {
			t.Errorf("expected element 0 to be rebuilt from a read of the original tuple, got %#v", rebuilt.Elements[0])
		}
	})
}
