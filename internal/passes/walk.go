// Package passes provides the shared tree-walking helpers every
// lowering sub-package (resolve, symcreate, typecheck, ...) builds on:
// ExprVisitor with WalkExpr for expression passes, StmtVisitor with
// WalkBlock for statement-level rewrites, and WalkFunctions for visiting
// every function body. The walkers rewrite the tree in place; they do
// not build a new one. Grounded on the teacher's internal/elaborate package, whose
// Elaborator walks an ast.File into a core.Program node-by-node; the
// shape here is the same "visit every expression/statement kind through
// one exhaustive switch" discipline, generalized from AILANG's surface
// AST to Leo's.
package passes

import "github.com/ProvableHQ/leo-sub007/internal/ast"

// ExprVisitor is implemented by an expression pass. WalkExpr calls
// VisitExpr once per node, post-order; VisitExpr returns the (possibly
// replaced) node that takes this one's place in the tree, so a visitor
// that never rewrites anything just returns its argument.
type ExprVisitor interface {
	VisitExpr(e ast.Expr) ast.Expr
}

// WalkExpr recursively applies v to e and every expression e contains,
// post-order (children visited before the parent), matching the
// teacher's elaborate.go bottom-up expression traversal.
func WalkExpr(v ExprVisitor, e ast.Expr) ast.Expr {
	if e == nil {
		return nil
	}
	switch n := e.(type) {
	case *ast.BinaryExpr:
		n.Left = WalkExpr(v, n.Left)
		n.Right = WalkExpr(v, n.Right)
	case *ast.UnaryExpr:
		n.Expr = WalkExpr(v, n.Expr)
	case *ast.TernaryExpr:
		n.Cond = WalkExpr(v, n.Cond)
		n.Then = WalkExpr(v, n.Then)
		n.Else = WalkExpr(v, n.Else)
	case *ast.CallExpr:
		n.Callee = WalkExpr(v, n.Callee)
		for i, a := range n.Arguments {
			n.Arguments[i] = WalkExpr(v, a)
		}
		for i, a := range n.ConstArguments {
			n.ConstArguments[i] = WalkExpr(v, a)
		}
	case *ast.IntrinsicCallExpr:
		for i, a := range n.Arguments {
			n.Arguments[i] = WalkExpr(v, a)
		}
	case *ast.CastExpr:
		n.Expr = WalkExpr(v, n.Expr)
	case *ast.ArrayAccessExpr:
		n.Array = WalkExpr(v, n.Array)
		n.Index = WalkExpr(v, n.Index)
	case *ast.TupleAccessExpr:
		n.Tuple = WalkExpr(v, n.Tuple)
	case *ast.MemberAccessExpr:
		n.Receiver = WalkExpr(v, n.Receiver)
	case *ast.StructLit:
		for i := range n.Fields {
			n.Fields[i].Value = WalkExpr(v, n.Fields[i].Value)
		}
	case *ast.TupleLit:
		for i, el := range n.Elements {
			n.Elements[i] = WalkExpr(v, el)
		}
	case *ast.ArrayLit:
		for i, el := range n.Elements {
			n.Elements[i] = WalkExpr(v, el)
		}
	}
	return v.VisitExpr(e)
}

// StmtVisitor is implemented by a pass that rewrites statements; it
// receives each statement's already-walked expressions.
type StmtVisitor interface {
	ExprVisitor
	VisitStmt(s ast.Stmt) []ast.Stmt // may expand one statement into many, or elide it (nil/empty)
}

// WalkBlock rewrites every statement in b in place, recursing into nested
// blocks (if/for bodies) first so VisitStmt sees their full effect before
// the parent decides whether to keep, expand, or drop the statement.
func WalkBlock(v StmtVisitor, b *ast.BlockStmt) {
	if b == nil {
		return
	}
	var out []ast.Stmt
	for _, s := range b.Statements {
		walkStmtChildren(v, s)
		out = append(out, v.VisitStmt(s)...)
	}
	b.Statements = out
}

func walkStmtChildren(v StmtVisitor, s ast.Stmt) {
	switch n := s.(type) {
	case *ast.DefinitionStmt:
		n.Value = WalkExpr(v, n.Value)
	case *ast.AssignStmt:
		n.Place = WalkExpr(v, n.Place)
		n.Value = WalkExpr(v, n.Value)
	case *ast.BlockStmt:
		WalkBlock(v, n)
	case *ast.ConditionalStmt:
		n.Cond = WalkExpr(v, n.Cond)
		WalkBlock(v, n.Then)
		if n.Else != nil {
			WalkBlock(v, n.Else)
		}
	case *ast.IterationStmt:
		n.Start = WalkExpr(v, n.Start)
		n.Stop = WalkExpr(v, n.Stop)
		WalkBlock(v, n.Body)
	case *ast.ReturnStmt:
		n.Value = WalkExpr(v, n.Value)
	case *ast.ExprStmt:
		n.Expr = WalkExpr(v, n.Expr)
	case *ast.ConsoleStmt:
		for i, a := range n.Args {
			n.Args[i] = WalkExpr(v, a)
		}
	}
}

// WalkFunctions runs fn against every Function in every ProgramScope of
// program, in declaration order. Passes that only need "touch every
// function body once" (most of them) use this instead of re-deriving the
// program/module traversal.
func WalkFunctions(program *ast.Program, fn func(scope *ast.ProgramScope, f *ast.Function)) {
	for _, scope := range program.Scopes {
		for _, f := range scope.Functions {
			fn(scope, f)
		}
		if scope.Constructor != nil {
			fn(scope, scope.Constructor)
		}
		walkModuleFunctions(scope.Modules, fn, scope)
	}
}

func walkModuleFunctions(mods []*ast.ModuleScope, fn func(*ast.ProgramScope, *ast.Function), owner *ast.ProgramScope) {
	for _, m := range mods {
		for _, f := range m.Functions {
			fn(owner, f)
		}
		walkModuleFunctions(m.Modules, fn, owner)
	}
}
