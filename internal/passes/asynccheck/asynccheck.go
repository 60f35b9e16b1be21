// Package asynccheck is lowering pass 5: once an async transition's body
// has made its first external (cross-program) call, async or not, every
// later external async call must be "simple" — its finalizer
// may not itself take a Future argument — so future-passing plumbing
// never chains more than one hop deep. Grounded on futurecheck's
// path-oriented walk, narrowed to a single linear scan since only call
// order (not branch structure) matters here.
package asynccheck

import (
	"github.com/ProvableHQ/leo-sub007/internal/ast"
	"github.com/ProvableHQ/leo-sub007/internal/compiler"
	"github.com/ProvableHQ/leo-sub007/internal/diag"
	"github.com/ProvableHQ/leo-sub007/internal/passes"
	"github.com/ProvableHQ/leo-sub007/internal/session"
	"github.com/ProvableHQ/leo-sub007/internal/symtab"
)

type Pass struct{}

func (Pass) Name() string { return "async-transition-call-check" }

func (p Pass) Run(st *compiler.CompilerState) bool {
	ok := true
	passes.WalkFunctions(st.Program, func(scope *ast.ProgramScope, f *ast.Function) {
		if f.Variant != ast.VariantAsyncTransition || f.Body == nil {
			return
		}
		c := &checker{st: st, program: scope.Program}
		c.walkBlock(f.Body)
		if c.hadError {
			ok = false
		}
	})
	return ok
}

type checker struct {
	st           *compiler.CompilerState
	program      session.Symbol
	seenExternal bool
	hadError     bool
}

func (c *checker) walkBlock(b *ast.BlockStmt) {
	if b == nil {
		return
	}
	for _, s := range b.Statements {
		c.walkStmt(s)
	}
}

func (c *checker) walkStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.DefinitionStmt:
		c.walkExpr(n.Value)
	case *ast.AssignStmt:
		c.walkExpr(n.Value)
	case *ast.BlockStmt:
		c.walkBlock(n)
	case *ast.ConditionalStmt:
		c.walkExpr(n.Cond)
		c.walkBlock(n.Then)
		if n.Else != nil {
			c.walkBlock(n.Else)
		}
	case *ast.IterationStmt:
		c.walkBlock(n.Body)
	case *ast.ReturnStmt:
		c.walkExpr(n.Value)
	case *ast.ExprStmt:
		c.walkExpr(n.Expr)
	case *ast.ConsoleStmt:
		for _, a := range n.Args {
			c.walkExpr(a)
		}
	}
}

// walkExpr recurses into every call found anywhere in e (a call can
// appear nested inside a definition's value expression, not just as a
// bare expression statement) and checks each one it finds, in the
// left-to-right source order they appear.
func (c *checker) walkExpr(e ast.Expr) {
	if e == nil {
		return
	}
	if call, ok := e.(*ast.CallExpr); ok {
		for _, a := range call.Arguments {
			c.walkExpr(a)
		}
		c.checkCall(call)
		return
	}
	switch n := e.(type) {
	case *ast.BinaryExpr:
		c.walkExpr(n.Left)
		c.walkExpr(n.Right)
	case *ast.UnaryExpr:
		c.walkExpr(n.Expr)
	case *ast.TernaryExpr:
		c.walkExpr(n.Cond)
		c.walkExpr(n.Then)
		c.walkExpr(n.Else)
	case *ast.CastExpr:
		c.walkExpr(n.Expr)
	case *ast.ArrayAccessExpr:
		c.walkExpr(n.Array)
		c.walkExpr(n.Index)
	case *ast.TupleAccessExpr:
		c.walkExpr(n.Tuple)
	case *ast.MemberAccessExpr:
		c.walkExpr(n.Receiver)
	case *ast.TupleLit:
		for _, el := range n.Elements {
			c.walkExpr(el)
		}
	case *ast.ArrayLit:
		for _, el := range n.Elements {
			c.walkExpr(el)
		}
	}
}

// checkCall applies the ordering rule to one call site. Same-program
// calls never count as "external" and never trip the rule.
func (c *checker) checkCall(call *ast.CallExpr) {
	if call.Target == nil || call.Target.Program == c.program {
		return
	}
	entry, found := c.st.Symbols.LookupFunction(*call.Target)
	if !found {
		return
	}
	isAsync := entry.Decl != nil && entry.Decl.Variant.IsAsync()
	if !isAsync {
		c.seenExternal = true
		return
	}
	if !c.seenExternal {
		c.seenExternal = true
		return
	}
	if c.finalizerTakesFuture(entry) {
		c.hadError = true
		c.st.Handler.Emit(&diag.Report{
			Code: diag.StaAsyncCallNotSimple, Kind: diag.KindStaticAnalysis, Severity: diag.SeverityError,
			Message: "after the first external call in a transition, a later external async call's finalizer may not take a future",
		})
	}
}

// finalizerTakesFuture reports whether entry's attached finalizer (async
// function) itself declares a Future-typed input.
func (c *checker) finalizerTakesFuture(entry *symtab.FuncEntry) bool {
	if entry.Finalizer == nil {
		return false
	}
	fin, found := c.st.Symbols.LookupFunction(*entry.Finalizer)
	if !found || fin.Decl == nil {
		return false
	}
	for _, in := range fin.Decl.Inputs {
		if _, isFuture := in.Type.(*ast.FutureType); isFuture {
			return true
		}
	}
	return false
}
