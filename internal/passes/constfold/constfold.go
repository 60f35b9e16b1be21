// Package constfold is lowering pass 7: evaluates every expression whose
// operands are all compile-time constants, replacing it with a literal.
// Integer arithmetic is checked against the operator's declared width —
// overflow is reported at the operator's span rather than silently
// wrapping, matching the three worked examples this pass is built
// against: `250u8 + 10u8` and `200u8 * 2u8` both overflow, `100u8 / 3u8`
// folds to `33u8`.
package constfold

import (
	"math/big"

	"github.com/ProvableHQ/leo-sub007/internal/ast"
	"github.com/ProvableHQ/leo-sub007/internal/compiler"
	"github.com/ProvableHQ/leo-sub007/internal/diag"
	"github.com/ProvableHQ/leo-sub007/internal/passes"
	"github.com/ProvableHQ/leo-sub007/internal/session"
	"github.com/ProvableHQ/leo-sub007/internal/types"
)

type Pass struct{}

func (Pass) Name() string { return "constant-folding" }

func (p Pass) Run(st *compiler.CompilerState) bool {
	f := &folder{st: st, constLits: map[string]*ast.Literal{}}
	ok := true

	// Program-scope consts are folded first (and memoized) so any
	// function body referencing them folds through to a literal too.
	for _, scope := range st.Program.Scopes {
		for _, c := range scope.Consts {
			loc := ast.Location{Program: scope.Program, Path: []session.Symbol{c.Name}}
			f.foldConstDecl(loc, c)
		}
	}

	passes.WalkFunctions(st.Program, func(scope *ast.ProgramScope, fn *ast.Function) {
		if fn.Body == nil {
			return
		}
		passes.WalkBlock(f, fn.Body)
	})
	if f.hadError {
		ok = false
	}
	return ok
}

type folder struct {
	st        *compiler.CompilerState
	constLits map[string]*ast.Literal
	hadError  bool
}

func (f *folder) foldConstDecl(loc ast.Location, c *ast.ConstDecl) {
	c.Value = passes.WalkExpr(f, c.Value)
	if lit, ok := c.Value.(*ast.Literal); ok {
		f.constLits[loc.String()] = lit
	}
}

// VisitExpr implements passes.ExprVisitor/StmtVisitor: it is called
// post-order, so by the time it sees a node its children have already
// been folded.
func (f *folder) VisitExpr(e ast.Expr) ast.Expr {
	switch n := e.(type) {
	case *ast.PathExpr:
		if n.Global == nil {
			return e
		}
		if lit, ok := f.constLits[n.Global.String()]; ok {
			return f.newLiteral(n.ID(), lit.Kind, lit.Value, lit.Subtype)
		}
		return e
	case *ast.UnaryExpr:
		return f.foldUnary(n)
	case *ast.BinaryExpr:
		return f.foldBinary(n)
	default:
		return e
	}
}

func (f *folder) VisitStmt(s ast.Stmt) []ast.Stmt { return []ast.Stmt{s} }

func (f *folder) newLiteral(oldID ast.NodeID, kind ast.LiteralKind, value, subtype string) ast.Expr {
	id := f.st.Nodes.NextID()
	lit := &ast.Literal{Base: ast.Base{NID: id}, Kind: kind, Value: value, Subtype: subtype}
	if ty, ok := f.st.Types.Get(oldID); ok {
		f.st.Types.Set(id, ty)
	}
	return lit
}

func (f *folder) foldUnary(n *ast.UnaryExpr) ast.Expr {
	lit, ok := n.Expr.(*ast.Literal)
	if !ok {
		return n
	}
	switch n.Op {
	case ast.OpNeg:
		if lit.Kind != ast.LitInt {
			return n
		}
		v, ok := new(big.Int).SetString(lit.Value, 10)
		if !ok {
			return n
		}
		v.Neg(v)
		if w, ok := widthFromSuffix(lit.Subtype); ok && !inRange(v, w) {
			f.overflow(n)
			return n
		}
		return f.newLiteral(n.ID(), ast.LitInt, v.String(), lit.Subtype)
	case ast.OpNot:
		if lit.Kind != ast.LitBool {
			return n
		}
		result := "true"
		if lit.Value == "true" {
			result = "false"
		}
		return f.newLiteral(n.ID(), ast.LitBool, result, "")
	}
	return n
}

func (f *folder) foldBinary(n *ast.BinaryExpr) ast.Expr {
	// Struct/array/tuple equality: the upstream compiler's evaluator
	// compares composite constant values member-wise rather than only
	// folding scalar literals (SPEC_FULL.md "Supplemented features" #4).
	// This only applies once every leaf of both operands is itself a
	// constant literal — the common case for an `assertEq`/`assertNeq`
	// console statement comparing two struct literals built from
	// constants.
	if n.Op == ast.OpEq || n.Op == ast.OpNeq {
		if eq, ok := constEquals(n.Left, n.Right); ok {
			res := eq
			if n.Op == ast.OpNeq {
				res = !eq
			}
			return f.newLiteral(n.ID(), ast.LitBool, boolStr(res), "")
		}
	}

	ll, lok := n.Left.(*ast.Literal)
	rl, rok := n.Right.(*ast.Literal)
	if !lok || !rok {
		return n
	}

	switch n.Op {
	case ast.OpAnd, ast.OpOr:
		if ll.Kind != ast.LitBool || rl.Kind != ast.LitBool {
			return n
		}
		lb, rb := ll.Value == "true", rl.Value == "true"
		var res bool
		if n.Op == ast.OpAnd {
			res = lb && rb
		} else {
			res = lb || rb
		}
		return f.newLiteral(n.ID(), ast.LitBool, boolStr(res), "")
	}

	if ll.Kind != ast.LitInt || rl.Kind != ast.LitInt {
		return n
	}
	lv, lok2 := new(big.Int).SetString(ll.Value, 10)
	rv, rok2 := new(big.Int).SetString(rl.Value, 10)
	if !lok2 || !rok2 {
		return n
	}

	switch n.Op {
	case ast.OpEq, ast.OpNeq, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		cmp := lv.Cmp(rv)
		var res bool
		switch n.Op {
		case ast.OpEq:
			res = cmp == 0
		case ast.OpNeq:
			res = cmp != 0
		case ast.OpLt:
			res = cmp < 0
		case ast.OpLe:
			res = cmp <= 0
		case ast.OpGt:
			res = cmp > 0
		case ast.OpGe:
			res = cmp >= 0
		}
		return f.newLiteral(n.ID(), ast.LitBool, boolStr(res), "")
	}

	suffix := ll.Subtype
	if suffix == "" {
		suffix = rl.Subtype
	}
	w, hasWidth := widthFromSuffix(suffix)

	var result *big.Int
	switch n.Op {
	case ast.OpAdd:
		result = new(big.Int).Add(lv, rv)
	case ast.OpSub:
		result = new(big.Int).Sub(lv, rv)
	case ast.OpMul:
		result = new(big.Int).Mul(lv, rv)
	case ast.OpDiv:
		if rv.Sign() == 0 {
			f.divByZero(n)
			return n
		}
		result = new(big.Int).Quo(lv, rv)
	case ast.OpRem:
		if rv.Sign() == 0 {
			f.divByZero(n)
			return n
		}
		result = new(big.Int).Rem(lv, rv)
	case ast.OpPow:
		if rv.Sign() < 0 {
			return n
		}
		result = new(big.Int).Exp(lv, rv, nil)
	case ast.OpBitAnd:
		result = new(big.Int).And(lv, rv)
	case ast.OpBitOr:
		result = new(big.Int).Or(lv, rv)
	case ast.OpXor:
		result = new(big.Int).Xor(lv, rv)
	case ast.OpShl:
		result = new(big.Int).Lsh(lv, uint(rv.Int64()))
	case ast.OpShr:
		result = new(big.Int).Rsh(lv, uint(rv.Int64()))
	default:
		return n
	}

	if hasWidth && !inRange(result, w) {
		f.overflow(n)
		return n
	}
	return f.newLiteral(n.ID(), ast.LitInt, result.String(), suffix)
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func widthFromSuffix(suffix string) (types.IntWidth, bool) {
	widths := map[string]types.IntWidth{
		"i8": types.I8, "i16": types.I16, "i32": types.I32, "i64": types.I64, "i128": types.I128,
		"u8": types.U8, "u16": types.U16, "u32": types.U32, "u64": types.U64, "u128": types.U128,
	}
	w, ok := widths[suffix]
	return w, ok
}

func inRange(v *big.Int, w types.IntWidth) bool {
	if w.Signed {
		max := new(big.Int).Lsh(big.NewInt(1), uint(w.Bits-1))
		min := new(big.Int).Neg(max)
		max.Sub(max, big.NewInt(1))
		return v.Cmp(min) >= 0 && v.Cmp(max) <= 0
	}
	max := new(big.Int).Lsh(big.NewInt(1), uint(w.Bits))
	max.Sub(max, big.NewInt(1))
	return v.Sign() >= 0 && v.Cmp(max) <= 0
}

func (f *folder) overflow(n ast.Node) {
	f.hadError = true
	f.st.Handler.Emit(&diag.Report{
		Code: diag.FlowOverflow, Kind: diag.KindFlow, Severity: diag.SeverityError,
		Message: "integer operation overflows its declared width",
	})
}

func (f *folder) divByZero(n ast.Node) {
	f.hadError = true
	f.st.Handler.Emit(&diag.Report{
		Code: diag.FlowOverflow, Kind: diag.KindFlow, Severity: diag.SeverityError,
		Message: "division or remainder by zero",
	})
}

// constEquals structurally compares two already-folded constant
// expressions for `assertEq`/`assertNeq` console statements on composite
// operands. It returns ok=false when either side is not (yet) fully
// constant, leaving the caller to fall back to the scalar-literal path
// (or leave the comparison unfolded for a later pass/codegen to reject).
func constEquals(l, r ast.Expr) (eq bool, ok bool) {
	switch lv := l.(type) {
	case *ast.Literal:
		rv, rok := r.(*ast.Literal)
		if !rok {
			return false, false
		}
		return lv.Kind == rv.Kind && lv.Value == rv.Value && lv.Subtype == rv.Subtype, true
	case *ast.StructLit:
		rv, rok := r.(*ast.StructLit)
		if !rok || len(lv.Fields) != len(rv.Fields) {
			return false, false
		}
		for i, lf := range lv.Fields {
			rf := rv.Fields[i]
			if lf.Name != rf.Name {
				return false, false
			}
			fe, fok := constEquals(lf.Value, rf.Value)
			if !fok {
				return false, false
			}
			if !fe {
				return false, true
			}
		}
		return true, true
	case *ast.TupleLit:
		rv, rok := r.(*ast.TupleLit)
		if !rok || len(lv.Elements) != len(rv.Elements) {
			return false, false
		}
		return elementsEqual(lv.Elements, rv.Elements)
	case *ast.ArrayLit:
		rv, rok := r.(*ast.ArrayLit)
		if !rok || len(lv.Elements) != len(rv.Elements) {
			return false, false
		}
		return elementsEqual(lv.Elements, rv.Elements)
	default:
		return false, false
	}
}

func elementsEqual(ls, rs []ast.Expr) (eq bool, ok bool) {
	for i, le := range ls {
		e, eok := constEquals(le, rs[i])
		if !eok {
			return false, false
		}
		if !e {
			return false, true
		}
	}
	return true, true
}
