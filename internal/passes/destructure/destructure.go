// Package destructure is lowering pass 11: tuple assignment statements
// `(x, y) = expr` are split into one plain assignment per element, and a
// write through a tuple-element place (`t.0 = v`) is rewritten into a
// whole-tuple reassignment that reconstructs the untouched elements from
// reads of the original tuple.
package destructure

import (
	"github.com/ProvableHQ/leo-sub007/internal/ast"
	"github.com/ProvableHQ/leo-sub007/internal/compiler"
	"github.com/ProvableHQ/leo-sub007/internal/passes"
	"github.com/ProvableHQ/leo-sub007/internal/session"
	"github.com/ProvableHQ/leo-sub007/internal/types"
)

type Pass struct{}

func (Pass) Name() string { return "destructuring" }

func (p Pass) Run(st *compiler.CompilerState) bool {
	passes.WalkFunctions(st.Program, func(scope *ast.ProgramScope, fn *ast.Function) {
		if fn.Body == nil {
			return
		}
		d := &destructurer{st: st}
		fn.Body = d.rewriteBlock(fn.Body)
	})
	return true
}

type destructurer struct {
	st *compiler.CompilerState
}

func (d *destructurer) rewriteBlock(b *ast.BlockStmt) *ast.BlockStmt {
	if b == nil {
		return nil
	}
	var out []ast.Stmt
	for _, s := range b.Statements {
		out = append(out, d.rewriteStmt(s)...)
	}
	b.Statements = out
	return b
}

func (d *destructurer) rewriteStmt(s ast.Stmt) []ast.Stmt {
	switch n := s.(type) {
	case *ast.BlockStmt:
		return []ast.Stmt{d.rewriteBlock(n)}
	case *ast.ConditionalStmt:
		n.Then = d.rewriteBlock(n.Then)
		if n.Else != nil {
			n.Else = d.rewriteBlock(n.Else)
		}
		return []ast.Stmt{n}
	case *ast.IterationStmt:
		n.Body = d.rewriteBlock(n.Body)
		return []ast.Stmt{n}
	case *ast.AssignStmt:
		return d.rewriteAssign(n)
	default:
		return []ast.Stmt{s}
	}
}

func (d *destructurer) rewriteAssign(n *ast.AssignStmt) []ast.Stmt {
	if places, ok := n.Place.(*ast.TupleLit); ok {
		return d.splitTupleAssign(places, n.Value, n.Sp)
	}
	if elem, ok := n.Place.(*ast.TupleAccessExpr); ok {
		return d.eliminateElementWrite(elem, n.Value, n.Sp)
	}
	return []ast.Stmt{n}
}

// splitTupleAssign rewrites `(x, y) = expr`. When expr is itself a tuple
// literal, each element assigns directly; otherwise expr is bound to a
// fresh temporary once and each place reads its corresponding element.
func (d *destructurer) splitTupleAssign(places *ast.TupleLit, value ast.Expr, sp session.Span) []ast.Stmt {
	if lit, ok := value.(*ast.TupleLit); ok && len(lit.Elements) == len(places.Elements) {
		out := make([]ast.Stmt, len(places.Elements))
		for i, place := range places.Elements {
			out[i] = &ast.AssignStmt{
				Base:  ast.Base{NID: d.st.Nodes.NextID(), Sp: sp},
				Place: place,
				Value: lit.Elements[i],
			}
		}
		return out
	}

	tempName := d.st.Assigner.Unique("tuple_tmp")
	defID := d.st.Nodes.NextID()
	def := &ast.DefinitionStmt{
		Base:  ast.Base{NID: defID, Sp: sp},
		Kind:  ast.DeclLet,
		Names: []session.Symbol{tempName},
		Types: []ast.TypeExpr{nil},
		Value: value,
	}
	out := []ast.Stmt{def}
	for i, place := range places.Elements {
		tempRef := &ast.PathExpr{
			Base:     ast.Base{NID: d.st.Nodes.NextID(), Sp: sp},
			Segments: []session.Symbol{tempName},
			Local:    &ast.LocalBinding{Name: tempName, DeclID: defID},
		}
		out = append(out, &ast.AssignStmt{
			Base:  ast.Base{NID: d.st.Nodes.NextID(), Sp: sp},
			Place: place,
			Value: &ast.TupleAccessExpr{Base: ast.Base{NID: d.st.Nodes.NextID(), Sp: sp}, Tuple: tempRef, Index: i},
		})
	}
	return out
}

// eliminateElementWrite rewrites `t.i = v` into `t = (t.0, ..., v, ...,
// t.n-1)`, reading every untouched element off the tuple's type-table
// arity.
func (d *destructurer) eliminateElementWrite(elem *ast.TupleAccessExpr, value ast.Expr, sp session.Span) []ast.Stmt {
	ty, ok := d.st.Types.Get(elem.Tuple.ID())
	if !ok || ty.Kind != types.KindTuple || len(ty.Elements) == 0 {
		return []ast.Stmt{&ast.AssignStmt{Base: ast.Base{NID: d.st.Nodes.NextID(), Sp: sp}, Place: elem, Value: value}}
	}

	rebuilt := &ast.TupleLit{Base: ast.Base{NID: d.st.Nodes.NextID(), Sp: sp}, Elements: make([]ast.Expr, len(ty.Elements))}
	for i := range ty.Elements {
		if i == elem.Index {
			rebuilt.Elements[i] = value
			continue
		}
		base := passes.CloneExpr(d.st, nil, elem.Tuple)
		rebuilt.Elements[i] = &ast.TupleAccessExpr{Base: ast.Base{NID: d.st.Nodes.NextID(), Sp: sp}, Tuple: base, Index: i}
	}

	return []ast.Stmt{&ast.AssignStmt{
		Base:  ast.Base{NID: d.st.Nodes.NextID(), Sp: sp},
		Place: elem.Tuple,
		Value: rebuilt,
	}}
}
