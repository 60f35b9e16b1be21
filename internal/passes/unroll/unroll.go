// Package unroll is lowering pass 6: every `for` loop's bounds must
// reduce to compile-time-known integer values by this point, and its
// body is duplicated once per iteration with the loop variable bound to a
// fresh constant each time. This runs before general constant folding
// (internal/passes/constfold), so it carries its own small literal
// evaluator rather than depending on that pass's Value lattice.
package unroll

import (
	"math/big"

	"github.com/ProvableHQ/leo-sub007/internal/ast"
	"github.com/ProvableHQ/leo-sub007/internal/compiler"
	"github.com/ProvableHQ/leo-sub007/internal/diag"
	"github.com/ProvableHQ/leo-sub007/internal/passes"
)

type Pass struct{}

func (Pass) Name() string { return "loop-unrolling" }

func (p Pass) Run(st *compiler.CompilerState) bool {
	ok := true
	passes.WalkFunctions(st.Program, func(scope *ast.ProgramScope, f *ast.Function) {
		if f.Body == nil {
			return
		}
		u := &unroller{st: st}
		f.Body = u.rewriteBlock(f.Body)
		if u.hadError {
			ok = false
		}
	})
	return ok
}

type unroller struct {
	st       *compiler.CompilerState
	hadError bool
}

func (u *unroller) rewriteBlock(b *ast.BlockStmt) *ast.BlockStmt {
	if b == nil {
		return nil
	}
	var out []ast.Stmt
	for _, s := range b.Statements {
		out = append(out, u.rewriteStmt(s)...)
	}
	b.Statements = out
	return b
}

func (u *unroller) rewriteStmt(s ast.Stmt) []ast.Stmt {
	switch n := s.(type) {
	case *ast.BlockStmt:
		return []ast.Stmt{u.rewriteBlock(n)}
	case *ast.ConditionalStmt:
		n.Then = u.rewriteBlock(n.Then)
		if n.Else != nil {
			n.Else = u.rewriteBlock(n.Else)
		}
		return []ast.Stmt{n}
	case *ast.IterationStmt:
		return u.unrollLoop(n)
	default:
		return []ast.Stmt{s}
	}
}

// unrollLoop evaluates n's bounds to constants and splices count copies
// of its (already recursively unrolled) body, one per iteration, with
// every read of the loop variable replaced by that iteration's integer
// literal.
func (u *unroller) unrollLoop(n *ast.IterationStmt) []ast.Stmt {
	start, startOK := u.evalConst(n.Start)
	stop, stopOK := u.evalConst(n.Stop)
	if !startOK || !stopOK {
		u.hadError = true
		u.st.Handler.Emit(&diag.Report{
			Code: diag.FlowLoopBoundNotConst, Kind: diag.KindFlow, Severity: diag.SeverityError,
			Message: "loop bounds must reduce to compile-time-known integer constants",
		})
		return []ast.Stmt{n}
	}
	n.Body = u.rewriteBlock(n.Body)

	count := new(big.Int).Sub(stop, start)
	if n.Inclusive {
		count.Add(count, big.NewInt(1))
	}
	if count.Sign() < 0 {
		count.SetInt64(0)
	}
	limit := count.Int64()

	var out []ast.Stmt
	iterVal := new(big.Int).Set(start)
	widthSuffix := loopVarSuffix(n.VarType)
	for i := int64(0); i < limit; i++ {
		litID := u.st.Nodes.NextID()
		lit := &ast.Literal{Base: ast.Base{NID: litID, Sp: n.Sp}, Kind: ast.LitInt, Value: iterVal.String(), Subtype: widthSuffix}
		subst := passes.Subst{n.Variable: lit}
		body := passes.CloneBlock(u.st, subst, n.Body)
		out = append(out, body.Statements...)
		iterVal.Add(iterVal, big.NewInt(1))
	}
	return out
}

func loopVarSuffix(te ast.TypeExpr) string {
	if nt, ok := te.(*ast.NamedType); ok {
		return nt.String()
	}
	return ""
}

// evalConst evaluates e to an integer constant. It understands integer
// literals and +,-,*,/ of nested constant expressions — the forms that
// appear in loop bounds before the general folder runs.
func (u *unroller) evalConst(e ast.Expr) (*big.Int, bool) {
	switch n := e.(type) {
	case *ast.Literal:
		if n.Kind != ast.LitInt {
			return nil, false
		}
		v, ok := new(big.Int).SetString(n.Value, 10)
		return v, ok
	case *ast.UnaryExpr:
		v, ok := u.evalConst(n.Expr)
		if !ok {
			return nil, false
		}
		if n.Op == ast.OpNeg {
			return new(big.Int).Neg(v), true
		}
		return nil, false
	case *ast.BinaryExpr:
		l, lok := u.evalConst(n.Left)
		r, rok := u.evalConst(n.Right)
		if !lok || !rok {
			return nil, false
		}
		switch n.Op {
		case ast.OpAdd:
			return new(big.Int).Add(l, r), true
		case ast.OpSub:
			return new(big.Int).Sub(l, r), true
		case ast.OpMul:
			return new(big.Int).Mul(l, r), true
		case ast.OpDiv:
			if r.Sign() == 0 {
				return nil, false
			}
			return new(big.Int).Quo(l, r), true
		}
		return nil, false
	}
	return nil, false
}
