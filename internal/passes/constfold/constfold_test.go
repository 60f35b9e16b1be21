package constfold_test

import (
	"testing"

	"github.com/ProvableHQ/leo-sub007/internal/ast"
	"github.com/ProvableHQ/leo-sub007/internal/compiler"
	"github.com/ProvableHQ/leo-sub007/internal/diag"
	"github.com/ProvableHQ/leo-sub007/internal/passes/constfold"
	"github.com/ProvableHQ/leo-sub007/internal/session"
)

// buildReturnProgram wires a single transition `f` whose body is
// `return <expr>;` into a minimal Program/CompilerState pair, the
// smallest fixture constfold.Pass.Run can operate on.
func buildReturnProgram(nb *ast.NodeBuilder, expr ast.Expr) (*compiler.CompilerState, *ast.ReturnStmt) {
	ret := &ast.ReturnStmt{Base: ast.Base{NID: nb.NextID()}, Value: expr}
	body := &ast.BlockStmt{Base: ast.Base{NID: nb.NextID()}, Statements: []ast.Stmt{ret}}
	fn := &ast.Function{
		Base:    ast.Base{NID: nb.NextID()},
		Variant: ast.VariantTransition,
		Body:    body,
	}
	scope := &ast.ProgramScope{Functions: []*ast.Function{fn}}
	program := &ast.Program{Scopes: []*ast.ProgramScope{scope}}
	h := diag.NewHandler(diag.ModeBuffered, nil)
	st := compiler.NewState(program, nb, h, nil)
	return st, ret
}

func intLit(nb *ast.NodeBuilder, value, subtype string) *ast.Literal {
	return &ast.Literal{Base: ast.Base{NID: nb.NextID()}, Kind: ast.LitInt, Value: value, Subtype: subtype}
}

func binary(nb *ast.NodeBuilder, op ast.BinaryOp, l, r ast.Expr) *ast.BinaryExpr {
	return &ast.BinaryExpr{Base: ast.Base{NID: nb.NextID()}, Op: op, Left: l, Right: r}
}

func TestConstFold_Property8_WorkedExamples(t *testing.T) {
	tests := []struct {
		name        string
		op          ast.BinaryOp
		left, right string
		subtype     string
		wantValue   string
		wantError   bool
	}{
		{"250u8 + 10u8 overflows", ast.OpAdd, "250", "10", "u8", "", true},
		{"200u8 * 2u8 overflows", ast.OpMul, "200", "2", "u8", "", true},
		{"100u8 / 3u8 folds to 33u8", ast.OpDiv, "100", "3", "u8", "33", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nb := ast.NewNodeBuilder()
			expr := binary(nb, tt.op, intLit(nb, tt.left, tt.subtype), intLit(nb, tt.right, tt.subtype))
			st, ret := buildReturnProgram(nb, expr)

			ok := (constfold.Pass{}).Run(st)

			if tt.wantError {
				if ok {
					t.Fatalf("expected overflow to fail the pass, got ok=true")
				}
				if !st.Handler.HadErrors() {
					t.Fatalf("expected a FlowOverflow diagnostic, got none")
				}
				found := false
				for _, e := range st.Handler.Errors() {
					if e.Code == diag.FlowOverflow {
						found = true
					}
				}
				if !found {
					t.Fatalf("expected diag.FlowOverflow among errors, got %+v", st.Handler.Errors())
				}
				return
			}

			if !ok {
				t.Fatalf("expected pass to succeed, errors: %+v", st.Handler.Errors())
			}
			lit, isLit := ret.Value.(*ast.Literal)
			if !isLit {
				t.Fatalf("expected folded value to be a literal, got %T", ret.Value)
			}
			if lit.Value != tt.wantValue || lit.Subtype != tt.subtype {
				t.Fatalf("got %s%s, want %s%s", lit.Value, lit.Subtype, tt.wantValue, tt.subtype)
			}
		})
	}
}

func TestConstFold_DivisionByZero(t *testing.T) {
	nb := ast.NewNodeBuilder()
	expr := binary(nb, ast.OpDiv, intLit(nb, "5", "u8"), intLit(nb, "0", "u8"))
	st, _ := buildReturnProgram(nb, expr)

	if (constfold.Pass{}).Run(st) {
		t.Fatalf("expected division by zero to fail the pass")
	}
	if !st.Handler.HadErrors() {
		t.Fatalf("expected a diagnostic for division by zero")
	}
}

func TestConstFold_ConstDeclPropagatesThroughPath(t *testing.T) {
	nb := ast.NewNodeBuilder()
	session.CreateSessionIfNotSetThen(func() {
		nameSym := session.Intern("X")
		progSym := session.Intern("test.aleo")

		constDecl := &ast.ConstDecl{
			Base:  ast.Base{NID: nb.NextID()},
			Name:  nameSym,
			Value: binary(nb, ast.OpAdd, intLit(nb, "1", "u8"), intLit(nb, "2", "u8")),
		}

		pathExpr := &ast.PathExpr{
			Base:     ast.Base{NID: nb.NextID()},
			Segments: []session.Symbol{nameSym},
			Global:   &ast.Location{Program: progSym, Path: []session.Symbol{nameSym}},
		}

		ret := &ast.ReturnStmt{Base: ast.Base{NID: nb.NextID()}, Value: pathExpr}
		body := &ast.BlockStmt{Base: ast.Base{NID: nb.NextID()}, Statements: []ast.Stmt{ret}}
		fn := &ast.Function{Base: ast.Base{NID: nb.NextID()}, Variant: ast.VariantTransition, Body: body}
		scope := &ast.ProgramScope{Program: progSym, Consts: []*ast.ConstDecl{constDecl}, Functions: []*ast.Function{fn}}
		program := &ast.Program{Scopes: []*ast.ProgramScope{scope}}
		h := diag.NewHandler(diag.ModeBuffered, nil)
		st := compiler.NewState(program, nb, h, nil)

		if !(constfold.Pass{}).Run(st) {
			t.Fatalf("expected pass to succeed, errors: %+v", st.Handler.Errors())
		}
		lit, ok := ret.Value.(*ast.Literal)
		if !ok {
			t.Fatalf("expected the path read of X to fold to a literal, got %T", ret.Value)
		}
		if lit.Value != "3" {
			t.Fatalf("got %s, want 3", lit.Value)
		}
	})
}

// TestConstFold_StructEquality exercises SPEC_FULL.md "Supplemented
// features" #4: assertEq/assertNeq on two constant struct literals folds
// by comparing members, not by requiring the whole struct to already be
// one ast.Literal.
func TestConstFold_StructEquality(t *testing.T) {
	session.CreateSessionIfNotSetThen(func() {
		nb := ast.NewNodeBuilder()
		xField := session.Intern("x")
		yField := session.Intern("y")
		structName := session.Intern("Point")

		makePoint := func(x, y string) *ast.StructLit {
			return &ast.StructLit{
				Base: ast.Base{NID: nb.NextID()}, Name: structName,
				Fields: []ast.StructLitField{
					{Name: xField, Value: intLit(nb, x, "u32")},
					{Name: yField, Value: intLit(nb, y, "u32")},
				},
			}
		}

		eq := binary(nb, ast.OpEq, makePoint("1", "2"), makePoint("1", "2"))
		st, ret := buildReturnProgram(nb, eq)
		if !(constfold.Pass{}).Run(st) {
			t.Fatalf("expected pass to succeed, errors: %+v", st.Handler.Errors())
		}
		lit, ok := ret.Value.(*ast.Literal)
		if !ok || lit.Kind != ast.LitBool || lit.Value != "true" {
			t.Fatalf("expected equal struct literals to fold to literal true, got %#v", ret.Value)
		}
	})

	session.CreateSessionIfNotSetThen(func() {
		nb := ast.NewNodeBuilder()
		xField := session.Intern("x")
		yField := session.Intern("y")
		structName := session.Intern("Point")

		makePoint := func(x, y string) *ast.StructLit {
			return &ast.StructLit{
				Base: ast.Base{NID: nb.NextID()}, Name: structName,
				Fields: []ast.StructLitField{
					{Name: xField, Value: intLit(nb, x, "u32")},
					{Name: yField, Value: intLit(nb, y, "u32")},
				},
			}
		}

		neq := binary(nb, ast.OpNeq, makePoint("1", "2"), makePoint("1", "3"))
		st, ret := buildReturnProgram(nb, neq)
		if !(constfold.Pass{}).Run(st) {
			t.Fatalf("expected pass to succeed, errors: %+v", st.Handler.Errors())
		}
		lit, ok := ret.Value.(*ast.Literal)
		if !ok || lit.Kind != ast.LitBool || lit.Value != "true" {
			t.Fatalf("expected struct literals differing in one member to fold assertNeq to true, got %#v", ret.Value)
		}
	})
}
