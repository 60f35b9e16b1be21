// Package unreachable is lowering pass 12: within any block, statements
// following an unconditional return are dropped. A conditional counts as
// "returned" only if both its branches do; iteration bodies get their own
// fresh return-analysis context (a loop's return does not make code after
// the loop unreachable, since the loop may run zero times), and each
// function/constructor resets the analysis on entry.
package unreachable

import (
	"github.com/ProvableHQ/leo-sub007/internal/ast"
	"github.com/ProvableHQ/leo-sub007/internal/compiler"
	"github.com/ProvableHQ/leo-sub007/internal/passes"
)

type Pass struct{}

func (Pass) Name() string { return "remove-unreachable" }

func (p Pass) Run(st *compiler.CompilerState) bool {
	passes.WalkFunctions(st.Program, func(scope *ast.ProgramScope, fn *ast.Function) {
		if fn.Body == nil {
			return
		}
		pruneBlock(fn.Body)
	})
	return true
}

// pruneBlock drops every statement after the first one that makes the
// rest of the block unreachable, and reports whether the block itself
// always returns.
func pruneBlock(b *ast.BlockStmt) (returns bool) {
	if b == nil {
		return false
	}
	for i, s := range b.Statements {
		if stmtReturns(s) {
			b.Statements = b.Statements[:i+1]
			return true
		}
	}
	return false
}

func stmtReturns(s ast.Stmt) bool {
	switch n := s.(type) {
	case *ast.ReturnStmt:
		return true
	case *ast.BlockStmt:
		return pruneBlock(n)
	case *ast.ConditionalStmt:
		thenReturns := pruneBlock(n.Then)
		if n.Else == nil {
			return false
		}
		elseReturns := pruneBlock(n.Else)
		return thenReturns && elseReturns
	case *ast.IterationStmt:
		pruneBlock(n.Body)
		return false
	default:
		return false
	}
}
