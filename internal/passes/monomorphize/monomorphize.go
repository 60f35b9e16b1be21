// Package monomorphize is lowering pass 8: every call to an Inline
// function with const arguments that have already folded to literals
// (internal/passes/constfold runs immediately before this pass) gets its
// own specialized copy of the callee, with the const parameters baked in
// as literal substitutions. The specialized function is named
// "<original>::[arg1, arg2, ...]" — a string that can never collide with
// a user identifier because of the brackets, and which
// internal/codegen's name legalizer hashes down to a valid AVM
// identifier before emission.
package monomorphize

import (
	"fmt"
	"strings"

	"github.com/ProvableHQ/leo-sub007/internal/ast"
	"github.com/ProvableHQ/leo-sub007/internal/compiler"
	"github.com/ProvableHQ/leo-sub007/internal/diag"
	"github.com/ProvableHQ/leo-sub007/internal/passes"
	"github.com/ProvableHQ/leo-sub007/internal/session"
	"github.com/ProvableHQ/leo-sub007/internal/symtab"
)

type Pass struct{}

func (Pass) Name() string { return "monomorphization" }

func (p Pass) Run(st *compiler.CompilerState) bool {
	m := &monomorphizer{st: st, specialized: map[string]session.Symbol{}, perOriginal: map[string]int{}}
	ok := true
	for _, scope := range st.Program.Scopes {
		m.scope = scope
		for _, fn := range append([]*ast.Function{}, scope.Functions...) {
			if fn.Body == nil {
				continue
			}
			fn.Body = m.rewriteBlock(fn.Body)
		}
	}
	if m.hadError {
		ok = false
	}
	return ok
}

type monomorphizer struct {
	st          *compiler.CompilerState
	scope       *ast.ProgramScope
	specialized map[string]session.Symbol // memoized "<prog>::<name>::[args]" -> new function name
	perOriginal map[string]int            // original location -> distinct specializations so far
	hadError    bool
}

func (m *monomorphizer) rewriteBlock(b *ast.BlockStmt) *ast.BlockStmt {
	if b == nil {
		return nil
	}
	for _, s := range b.Statements {
		m.rewriteStmt(s)
	}
	return b
}

func (m *monomorphizer) rewriteStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.DefinitionStmt:
		n.Value = m.rewriteExpr(n.Value)
	case *ast.AssignStmt:
		n.Value = m.rewriteExpr(n.Value)
	case *ast.BlockStmt:
		m.rewriteBlock(n)
	case *ast.ConditionalStmt:
		n.Cond = m.rewriteExpr(n.Cond)
		m.rewriteBlock(n.Then)
		if n.Else != nil {
			m.rewriteBlock(n.Else)
		}
	case *ast.IterationStmt:
		m.rewriteBlock(n.Body)
	case *ast.ReturnStmt:
		n.Value = m.rewriteExpr(n.Value)
	case *ast.ExprStmt:
		n.Expr = m.rewriteExpr(n.Expr)
	case *ast.ConsoleStmt:
		for i, a := range n.Args {
			n.Args[i] = m.rewriteExpr(a)
		}
	}
}

// rewriteExpr recurses into every sub-expression first, then specializes
// the top-level call if it qualifies.
func (m *monomorphizer) rewriteExpr(e ast.Expr) ast.Expr {
	if e == nil {
		return nil
	}
	switch n := e.(type) {
	case *ast.BinaryExpr:
		n.Left, n.Right = m.rewriteExpr(n.Left), m.rewriteExpr(n.Right)
	case *ast.UnaryExpr:
		n.Expr = m.rewriteExpr(n.Expr)
	case *ast.TernaryExpr:
		n.Cond, n.Then, n.Else = m.rewriteExpr(n.Cond), m.rewriteExpr(n.Then), m.rewriteExpr(n.Else)
	case *ast.CastExpr:
		n.Expr = m.rewriteExpr(n.Expr)
	case *ast.ArrayAccessExpr:
		n.Array, n.Index = m.rewriteExpr(n.Array), m.rewriteExpr(n.Index)
	case *ast.TupleAccessExpr:
		n.Tuple = m.rewriteExpr(n.Tuple)
	case *ast.MemberAccessExpr:
		n.Receiver = m.rewriteExpr(n.Receiver)
	case *ast.StructLit:
		for i := range n.Fields {
			n.Fields[i].Value = m.rewriteExpr(n.Fields[i].Value)
		}
	case *ast.TupleLit:
		for i, el := range n.Elements {
			n.Elements[i] = m.rewriteExpr(el)
		}
	case *ast.ArrayLit:
		for i, el := range n.Elements {
			n.Elements[i] = m.rewriteExpr(el)
		}
	case *ast.CallExpr:
		for i, a := range n.Arguments {
			n.Arguments[i] = m.rewriteExpr(a)
		}
		return m.maybeSpecialize(n)
	}
	return e
}

func (m *monomorphizer) maybeSpecialize(call *ast.CallExpr) ast.Expr {
	if call.Target == nil || len(call.ConstArguments) == 0 {
		return call
	}
	entry, found := m.st.Symbols.LookupFunction(*call.Target)
	if !found || entry.Decl.Variant != ast.VariantInline {
		return call
	}
	suffix, allLiteral := literalSuffix(call.ConstArguments)
	if !allLiteral {
		m.hadError = true
		m.st.Handler.Emit(&diag.Report{
			Code: diag.FlowLoopBoundNotConst, Kind: diag.KindFlow, Severity: diag.SeverityError,
			Message: "const-generic call arguments did not reduce to literals after folding",
		})
		return call
	}

	specName := session.Resolve(entry.Decl.Name) + suffix
	key := session.Resolve(call.Target.Program) + "::" + specName
	newSym, ok := m.specialized[key]
	if !ok {
		origKey := call.Target.String()
		limit := 0
		if m.st.Config != nil {
			limit = m.st.Config.ConstGenericExpansionLimit
		}
		if limit > 0 && m.perOriginal[origKey] >= limit {
			m.hadError = true
			m.st.Handler.Emit(&diag.Report{
				Code: diag.FlowCallCycle, Kind: diag.KindFlow, Severity: diag.SeverityError,
				Message: fmt.Sprintf("inline function %s exceeds the configured limit of %d const-generic specializations", origKey, limit),
			})
			return call
		}
		m.perOriginal[origKey]++
		newSym = m.instantiate(entry.Decl, specName, call.ConstArguments)
		m.specialized[key] = newSym
	}

	newLoc := ast.Location{Program: call.Target.Program, Path: []session.Symbol{newSym}}
	call.Target = &newLoc
	call.ConstArguments = nil
	return call
}

// instantiate clones fn's body with its const parameters bound to the
// literal values supplied at this call site, registers the new function
// under specName in both the program scope's function list and the
// symbol table, and returns its interned name.
func (m *monomorphizer) instantiate(fn *ast.Function, specName string, constArgs []ast.Expr) session.Symbol {
	newName := session.Intern(specName)
	subst := passes.Subst{}
	for i, cp := range fn.ConstParams {
		if i < len(constArgs) {
			subst[cp.Name] = constArgs[i]
		}
	}
	newFn := &ast.Function{
		Base:        ast.Base{NID: m.st.Nodes.NextID(), Sp: fn.Sp},
		Name:        newName,
		Variant:     fn.Variant,
		Inputs:      fn.Inputs,
		Outputs:     fn.Outputs,
		Annotations: fn.Annotations,
		Body:        passes.CloneBlock(m.st, subst, fn.Body),
	}
	m.scope.Functions = append(m.scope.Functions, newFn)
	loc := ast.Location{Program: m.scope.Program, Path: []session.Symbol{newName}}
	_ = m.st.Symbols.InsertFunction(&symtab.FuncEntry{Location: loc, Decl: newFn})
	return newName
}

func literalSuffix(args []ast.Expr) (string, bool) {
	var parts []string
	for _, a := range args {
		lit, ok := a.(*ast.Literal)
		if !ok {
			return "", false
		}
		parts = append(parts, lit.Value+lit.Subtype)
	}
	return "::[" + strings.Join(parts, ", ") + "]", true
}
