// Package ssa is lowering pass 9: every assignment target (a `let`
// definition or a reassignment to a plain variable) is renamed to a
// fresh symbol, and every subsequent read in the same lexical region is
// rewritten to the new name. This runs before function inlining
// (internal/passes/inline), which reuses Transform in "rename defs" mode
// to give an inlined callee's local definitions names that cannot
// collide with the caller's.
package ssa

import (
	"github.com/ProvableHQ/leo-sub007/internal/ast"
	"github.com/ProvableHQ/leo-sub007/internal/compiler"
	"github.com/ProvableHQ/leo-sub007/internal/session"
)

type Pass struct{}

func (Pass) Name() string { return "ssa-formation" }

func (p Pass) Run(st *compiler.CompilerState) bool {
	for _, scope := range st.Program.Scopes {
		renumberRecords(scope.Composites)
		for _, fn := range scope.Functions {
			renameFunctionBody(st, fn)
		}
		for _, mod := range scope.Modules {
			renumberModule(st, mod)
		}
	}
	return true
}

func renumberModule(st *compiler.CompilerState, mod *ast.ModuleScope) {
	renumberRecords(mod.Composites)
	for _, fn := range mod.Functions {
		renameFunctionBody(st, fn)
	}
	for _, child := range mod.Modules {
		renumberModule(st, child)
	}
}

func renameFunctionBody(st *compiler.CompilerState, fn *ast.Function) {
	if fn.Body == nil {
		return
	}
	fn.Body = Transform(st, nil, fn.Body, false)
}

// renumberRecords enforces the record-owner-first invariant at the AST
// level, ahead of internal/codegen's own emission-time reordering: a
// record composite's `owner` member always sorts first.
func renumberRecords(composites []*ast.Composite) {
	for _, c := range composites {
		if !c.IsRecord {
			continue
		}
		for i, m := range c.Members {
			if m.Mode == ast.ModeRecord && i != 0 {
				c.Members[0], c.Members[i] = c.Members[i], c.Members[0]
				break
			}
		}
	}
}

// env tracks the live old-name -> current-SSA-name mapping for a renaming
// pass over one function body. A fresh child is pushed per nested block
// so a shadowing definition in an inner block does not leak its rename
// back out to the enclosing one, while reads still see the innermost
// binding.
type env struct {
	parent *env
	vars   map[session.Symbol]session.Symbol
}

func newEnv(parent *env) *env {
	return &env{parent: parent, vars: map[session.Symbol]session.Symbol{}}
}

func (e *env) lookup(name session.Symbol) (session.Symbol, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
	}
	return 0, false
}

func (e *env) bind(old, new session.Symbol) { e.vars[old] = new }

type renamer struct {
	st     *compiler.CompilerState
	suffix string // "$$" in rename-defs mode, "$" otherwise
}

// fresh delegates to the state-wide Assigner so renames minted here can
// never collide with names synthesized by any other pass.
func (r *renamer) fresh(base session.Symbol) session.Symbol {
	return r.st.Assigner.UniqueFrom(base, r.suffix)
}

// Transform renames every assignment target in body to a fresh symbol,
// rewriting in-scope reads to match, and returns the (mutated in place)
// body. When renameDefs is true, inputs is also renamed and bound in the
// root env before the body is walked, and every fresh name uses the "$$"
// suffix instead of "$". internal/passes/inline uses this mode with no
// inputs (it has already substituted the call's arguments for the
// callee's parameters), so an inlined callee's definitions never collide
// with the caller's own locals.
func Transform(st *compiler.CompilerState, inputs []*ast.Param, body *ast.BlockStmt, renameDefs bool) *ast.BlockStmt {
	r := &renamer{st: st, suffix: "$"}
	if renameDefs {
		r.suffix = "$$"
	}
	root := newEnv(nil)
	if renameDefs {
		for _, in := range inputs {
			newName := r.fresh(in.Name)
			root.bind(in.Name, newName)
			in.Name = newName
		}
	}
	r.renameBlock(body, root)
	return body
}

func (r *renamer) renameBlock(b *ast.BlockStmt, parent *env) {
	if b == nil {
		return
	}
	e := newEnv(parent)
	for _, s := range b.Statements {
		r.renameStmt(s, e)
	}
}

func (r *renamer) renameStmt(s ast.Stmt, e *env) {
	switch n := s.(type) {
	case *ast.DefinitionStmt:
		n.Value = r.renameExpr(n.Value, e)
		for i, name := range n.Names {
			newName := r.fresh(name)
			e.bind(name, newName)
			n.Names[i] = newName
		}
	case *ast.AssignStmt:
		n.Value = r.renameExpr(n.Value, e)
		if path, ok := n.Place.(*ast.PathExpr); ok && path.Local != nil {
			newName := r.fresh(path.Local.Name)
			e.bind(path.Local.Name, newName)
			path.Local.Name = newName
		} else {
			n.Place = r.renameExpr(n.Place, e)
		}
	case *ast.BlockStmt:
		r.renameBlock(n, e)
	case *ast.ConditionalStmt:
		n.Cond = r.renameExpr(n.Cond, e)
		r.renameBlock(n.Then, e)
		if n.Else != nil {
			r.renameBlock(n.Else, e)
		}
	case *ast.IterationStmt:
		r.renameBlock(n.Body, e)
	case *ast.ReturnStmt:
		n.Value = r.renameExpr(n.Value, e)
	case *ast.ExprStmt:
		n.Expr = r.renameExpr(n.Expr, e)
	case *ast.ConsoleStmt:
		for i, a := range n.Args {
			n.Args[i] = r.renameExpr(a, e)
		}
	}
}

func (r *renamer) renameExpr(ex ast.Expr, e *env) ast.Expr {
	if ex == nil {
		return nil
	}
	switch n := ex.(type) {
	case *ast.PathExpr:
		if n.Local != nil {
			if newName, ok := e.lookup(n.Local.Name); ok {
				n.Local.Name = newName
			}
		}
		return n
	case *ast.BinaryExpr:
		n.Left, n.Right = r.renameExpr(n.Left, e), r.renameExpr(n.Right, e)
		return n
	case *ast.UnaryExpr:
		n.Expr = r.renameExpr(n.Expr, e)
		return n
	case *ast.TernaryExpr:
		n.Cond, n.Then, n.Else = r.renameExpr(n.Cond, e), r.renameExpr(n.Then, e), r.renameExpr(n.Else, e)
		return n
	case *ast.CallExpr:
		for i, a := range n.Arguments {
			n.Arguments[i] = r.renameExpr(a, e)
		}
		return n
	case *ast.IntrinsicCallExpr:
		for i, a := range n.Arguments {
			n.Arguments[i] = r.renameExpr(a, e)
		}
		return n
	case *ast.CastExpr:
		n.Expr = r.renameExpr(n.Expr, e)
		return n
	case *ast.ArrayAccessExpr:
		n.Array, n.Index = r.renameExpr(n.Array, e), r.renameExpr(n.Index, e)
		return n
	case *ast.TupleAccessExpr:
		n.Tuple = r.renameExpr(n.Tuple, e)
		return n
	case *ast.MemberAccessExpr:
		n.Receiver = r.renameExpr(n.Receiver, e)
		return n
	case *ast.StructLit:
		for i := range n.Fields {
			n.Fields[i].Value = r.renameExpr(n.Fields[i].Value, e)
		}
		return n
	case *ast.TupleLit:
		for i, el := range n.Elements {
			n.Elements[i] = r.renameExpr(el, e)
		}
		return n
	case *ast.ArrayLit:
		for i, el := range n.Elements {
			n.Elements[i] = r.renameExpr(el, e)
		}
		return n
	default:
		return n
	}
}
