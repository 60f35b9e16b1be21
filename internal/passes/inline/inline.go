// Package inline is lowering pass 10: every call to an Inline function in
// the same program is replaced by its body. Processes the call graph in
// post-order (callees before callers, via internal/callgraph) so that by
// the time a caller's call site is spliced, the callee's own body has
// already had its nested inline calls expanded. Cross-program calls are
// left untouched — the callee program's bytecode links at deploy time.
package inline

import (
	"github.com/ProvableHQ/leo-sub007/internal/ast"
	"github.com/ProvableHQ/leo-sub007/internal/callgraph"
	"github.com/ProvableHQ/leo-sub007/internal/compiler"
	"github.com/ProvableHQ/leo-sub007/internal/diag"
	"github.com/ProvableHQ/leo-sub007/internal/passes"
	"github.com/ProvableHQ/leo-sub007/internal/passes/ssa"
	"github.com/ProvableHQ/leo-sub007/internal/session"
)

type Pass struct{}

func (Pass) Name() string { return "function-inlining" }

func (p Pass) Run(st *compiler.CompilerState) bool {
	locOf := locationIndex(st)
	ok := true
	for _, scope := range st.Program.Scopes {
		if !runScope(st, scope, locOf) {
			ok = false
		}
	}
	return ok
}

// locationIndex maps a *ast.Function pointer to the ast.Location it was
// registered under by internal/passes/symcreate, so inline call edges can
// be named without re-deriving module-path-qualified names here.
func locationIndex(st *compiler.CompilerState) map[*ast.Function]ast.Location {
	idx := make(map[*ast.Function]ast.Location, len(st.Symbols.Functions))
	for _, entry := range st.Symbols.Functions {
		if entry.Decl != nil {
			idx[entry.Decl] = entry.Location
		}
	}
	return idx
}

func runScope(st *compiler.CompilerState, scope *ast.ProgramScope, locOf map[*ast.Function]ast.Location) bool {
	var inlineFns []*ast.Function
	passes.WalkFunctions(&ast.Program{Scopes: []*ast.ProgramScope{scope}}, func(_ *ast.ProgramScope, fn *ast.Function) {
		if fn.Variant == ast.VariantInline {
			inlineFns = append(inlineFns, fn)
		}
	})

	g := callgraph.Build(scope, func(fn *ast.Function) []ast.Location {
		if _, ok := locOf[fn]; !ok || fn.Variant != ast.VariantInline || fn.Body == nil {
			return nil
		}
		return inlineCallees(st, scope.Program, fn.Body)
	})
	if err := g.CheckAcyclic(); err != nil {
		st.Handler.Emit(&diag.Report{
			Code: diag.FlowCallCycle, Kind: diag.KindFlow, Severity: diag.SeverityError,
			Message: "cycle detected among inline function calls: " + err.Error(),
		})
		return false
	}
	order, err := g.CallOrder()
	if err != nil {
		st.Handler.Emit(&diag.Report{
			Code: diag.FlowCallCycle, Kind: diag.KindFlow, Severity: diag.SeverityError,
			Message: "cycle detected among inline function calls: " + err.Error(),
		})
		return false
	}

	byLoc := make(map[string]*ast.Function, len(inlineFns))
	for _, fn := range inlineFns {
		if loc, ok := locOf[fn]; ok {
			byLoc[loc.String()] = fn
		}
	}

	ok := true
	for _, loc := range order {
		fn, found := byLoc[loc.String()]
		if !found || fn.Body == nil {
			continue
		}
		inl := &inliner{st: st, program: scope.Program}
		fn.Body = inl.rewriteBlock(fn.Body)
		if inl.hadError {
			ok = false
		}
	}

	var rewriteRest func(fns []*ast.Function)
	rewriteRest = func(fns []*ast.Function) {
		for _, fn := range fns {
			if fn.Variant == ast.VariantInline || fn.Body == nil {
				continue
			}
			inl := &inliner{st: st, program: scope.Program}
			fn.Body = inl.rewriteBlock(fn.Body)
			if inl.hadError {
				ok = false
			}
		}
	}
	rewriteRest(scope.Functions)
	if scope.Constructor != nil {
		rewriteRest([]*ast.Function{scope.Constructor})
	}
	var walkMods func(mods []*ast.ModuleScope)
	walkMods = func(mods []*ast.ModuleScope) {
		for _, m := range mods {
			rewriteRest(m.Functions)
			walkMods(m.Modules)
		}
	}
	walkMods(scope.Modules)

	return ok
}

// inlineCallees collects the Location of every same-program Inline-callee
// call found anywhere in b, in source order, duplicates included (the
// graph only needs the distinct-edge set but AddEdge is idempotent in
// effect for cycle detection).
func inlineCallees(st *compiler.CompilerState, program session.Symbol, b *ast.BlockStmt) []ast.Location {
	var out []ast.Location
	var walkExpr func(e ast.Expr)
	var walkStmt func(s ast.Stmt)

	walkExpr = func(e ast.Expr) {
		if e == nil {
			return
		}
		switch n := e.(type) {
		case *ast.CallExpr:
			for _, a := range n.Arguments {
				walkExpr(a)
			}
			if n.Target != nil && n.Target.Program == program {
				entry, found := st.Symbols.LookupFunction(*n.Target)
				if found && entry.Decl != nil && entry.Decl.Variant == ast.VariantInline {
					out = append(out, *n.Target)
				}
			}
		case *ast.BinaryExpr:
			walkExpr(n.Left)
			walkExpr(n.Right)
		case *ast.UnaryExpr:
			walkExpr(n.Expr)
		case *ast.TernaryExpr:
			walkExpr(n.Cond)
			walkExpr(n.Then)
			walkExpr(n.Else)
		case *ast.CastExpr:
			walkExpr(n.Expr)
		case *ast.ArrayAccessExpr:
			walkExpr(n.Array)
			walkExpr(n.Index)
		case *ast.TupleAccessExpr:
			walkExpr(n.Tuple)
		case *ast.MemberAccessExpr:
			walkExpr(n.Receiver)
		case *ast.TupleLit:
			for _, el := range n.Elements {
				walkExpr(el)
			}
		case *ast.ArrayLit:
			for _, el := range n.Elements {
				walkExpr(el)
			}
		case *ast.StructLit:
			for _, f := range n.Fields {
				walkExpr(f.Value)
			}
		}
	}
	walkStmt = func(s ast.Stmt) {
		switch n := s.(type) {
		case *ast.DefinitionStmt:
			walkExpr(n.Value)
		case *ast.AssignStmt:
			walkExpr(n.Value)
		case *ast.BlockStmt:
			for _, st2 := range n.Statements {
				walkStmt(st2)
			}
		case *ast.ConditionalStmt:
			walkExpr(n.Cond)
			for _, st2 := range n.Then.Statements {
				walkStmt(st2)
			}
			if n.Else != nil {
				for _, st2 := range n.Else.Statements {
					walkStmt(st2)
				}
			}
		case *ast.IterationStmt:
			for _, st2 := range n.Body.Statements {
				walkStmt(st2)
			}
		case *ast.ReturnStmt:
			walkExpr(n.Value)
		case *ast.ExprStmt:
			walkExpr(n.Expr)
		case *ast.ConsoleStmt:
			for _, a := range n.Args {
				walkExpr(a)
			}
		}
	}
	for _, s := range b.Statements {
		walkStmt(s)
	}
	return out
}

type inliner struct {
	st       *compiler.CompilerState
	program  session.Symbol
	hadError bool
}

func (inl *inliner) rewriteBlock(b *ast.BlockStmt) *ast.BlockStmt {
	if b == nil {
		return nil
	}
	var out []ast.Stmt
	for _, s := range b.Statements {
		out = append(out, inl.rewriteStmt(s)...)
	}
	b.Statements = out
	return b
}

func (inl *inliner) rewriteStmt(s ast.Stmt) []ast.Stmt {
	switch n := s.(type) {
	case *ast.BlockStmt:
		return []ast.Stmt{inl.rewriteBlock(n)}
	case *ast.ConditionalStmt:
		n.Then = inl.rewriteBlock(n.Then)
		if n.Else != nil {
			n.Else = inl.rewriteBlock(n.Else)
		}
		return []ast.Stmt{n}
	case *ast.IterationStmt:
		n.Body = inl.rewriteBlock(n.Body)
		return []ast.Stmt{n}
	case *ast.DefinitionStmt:
		pre, val := inl.rewriteExpr(n.Value)
		n.Value = val
		return append(pre, n)
	case *ast.AssignStmt:
		pre, val := inl.rewriteExpr(n.Value)
		n.Value = val
		return append(pre, n)
	case *ast.ReturnStmt:
		pre, val := inl.rewriteExpr(n.Value)
		n.Value = val
		return append(pre, n)
	case *ast.ExprStmt:
		pre, val := inl.rewriteExpr(n.Expr)
		if _, isUnit := val.(*ast.UnitExpr); isUnit && len(pre) > 0 {
			return pre
		}
		n.Expr = val
		return append(pre, n)
	case *ast.ConsoleStmt:
		var pre []ast.Stmt
		for i, a := range n.Args {
			p, val := inl.rewriteExpr(a)
			pre = append(pre, p...)
			n.Args[i] = val
		}
		return append(pre, n)
	default:
		return []ast.Stmt{s}
	}
}

// rewriteExpr recurses into every sub-expression, splicing any inlined
// call's statements ahead of the expression they're embedded in, and
// returns the (possibly replaced) expression to use in the original
// position.
func (inl *inliner) rewriteExpr(e ast.Expr) ([]ast.Stmt, ast.Expr) {
	if e == nil {
		return nil, nil
	}
	var pre []ast.Stmt
	rewriteChild := func(c ast.Expr) ast.Expr {
		p, v := inl.rewriteExpr(c)
		pre = append(pre, p...)
		return v
	}

	switch n := e.(type) {
	case *ast.BinaryExpr:
		n.Left, n.Right = rewriteChild(n.Left), rewriteChild(n.Right)
		return pre, n
	case *ast.UnaryExpr:
		n.Expr = rewriteChild(n.Expr)
		return pre, n
	case *ast.TernaryExpr:
		n.Cond, n.Then, n.Else = rewriteChild(n.Cond), rewriteChild(n.Then), rewriteChild(n.Else)
		return pre, n
	case *ast.CastExpr:
		n.Expr = rewriteChild(n.Expr)
		return pre, n
	case *ast.ArrayAccessExpr:
		n.Array, n.Index = rewriteChild(n.Array), rewriteChild(n.Index)
		return pre, n
	case *ast.TupleAccessExpr:
		n.Tuple = rewriteChild(n.Tuple)
		return pre, n
	case *ast.MemberAccessExpr:
		n.Receiver = rewriteChild(n.Receiver)
		return pre, n
	case *ast.StructLit:
		for i := range n.Fields {
			n.Fields[i].Value = rewriteChild(n.Fields[i].Value)
		}
		return pre, n
	case *ast.TupleLit:
		for i, el := range n.Elements {
			n.Elements[i] = rewriteChild(el)
		}
		return pre, n
	case *ast.ArrayLit:
		for i, el := range n.Elements {
			n.Elements[i] = rewriteChild(el)
		}
		return pre, n
	case *ast.CallExpr:
		for i, a := range n.Arguments {
			n.Arguments[i] = rewriteChild(a)
		}
		return inl.maybeInline(n, pre)
	default:
		return pre, n
	}
}

func (inl *inliner) maybeInline(call *ast.CallExpr, pre []ast.Stmt) ([]ast.Stmt, ast.Expr) {
	if call.Target == nil || call.Target.Program != inl.program {
		return pre, call
	}
	entry, found := inl.st.Symbols.LookupFunction(*call.Target)
	if !found || entry.Decl == nil || entry.Decl.Variant != ast.VariantInline || entry.Decl.Body == nil {
		return pre, call
	}

	subst := passes.Subst{}
	for i, param := range entry.Decl.Inputs {
		if i < len(call.Arguments) {
			subst[param.Name] = call.Arguments[i]
		}
	}
	cloned := passes.CloneBlock(inl.st, subst, entry.Decl.Body)
	cloned = ssa.Transform(inl.st, nil, cloned, true)

	if len(cloned.Statements) == 0 {
		unitID := inl.st.Nodes.NextID()
		return pre, &ast.UnitExpr{Base: ast.Base{NID: unitID, Sp: call.Sp}}
	}

	last := cloned.Statements[len(cloned.Statements)-1]
	if ret, ok := last.(*ast.ReturnStmt); ok {
		pre = append(pre, cloned.Statements[:len(cloned.Statements)-1]...)
		if ret.Value == nil {
			unitID := inl.st.Nodes.NextID()
			return pre, &ast.UnitExpr{Base: ast.Base{NID: unitID, Sp: call.Sp}}
		}
		return pre, ret.Value
	}

	pre = append(pre, cloned.Statements...)
	unitID := inl.st.Nodes.NextID()
	return pre, &ast.UnitExpr{Base: ast.Base{NID: unitID, Sp: call.Sp}}
}
