// Package resolve is lowering pass 1 (spec.md §4.I.1): resolves every
// PathExpr to exactly one of a LocalBinding (an enclosing lexical
// variable) or a Location (a program-qualified function/const), so that
// every later pass — most importantly CallExpr.ExpectGlobalLocation,
// which panics if this hasn't run — can treat path resolution as already
// decided. Grounded on the teacher's module/resolver.go NormalizePath,
// generalized from AILANG's module-qualified imports to Leo's flat
// program-id namespace.
package resolve

import (
	"fmt"

	"github.com/ProvableHQ/leo-sub007/internal/ast"
	"github.com/ProvableHQ/leo-sub007/internal/compiler"
	"github.com/ProvableHQ/leo-sub007/internal/diag"
	"github.com/ProvableHQ/leo-sub007/internal/passes"
	"github.com/ProvableHQ/leo-sub007/internal/session"
)

type Pass struct{}

func (Pass) Name() string { return "path-resolution" }

func (p Pass) Run(st *compiler.CompilerState) bool {
	ok := true
	indexes := make(map[*ast.ProgramScope]map[string]bool, len(st.Program.Scopes))
	for _, scope := range st.Program.Scopes {
		indexes[scope] = buildDeclIndex(scope)
	}
	passes.WalkFunctions(st.Program, func(scope *ast.ProgramScope, f *ast.Function) {
		r := &resolver{st: st, scope: scope, decls: indexes[scope]}
		st.Symbols.EnterFunction(f.Inputs, nil)
		for _, cp := range f.ConstParams {
			_ = st.Symbols.InsertVariable(cp.Name, nil, cp.NID, cp.Mode)
		}
		if f.Body != nil {
			r.walkBlock(f.Body)
		}
		if r.hadError {
			ok = false
		}
	})
	return ok
}

// resolver walks one function body, tracking lexical scope through the
// symbol table's block-frame stack (internal/symtab) and resolving each
// PathExpr it encounters against the current scope, then the enclosing
// program's declarations.
type resolver struct {
	st       *compiler.CompilerState
	scope    *ast.ProgramScope
	decls    map[string]bool
	hadError bool
}

// buildDeclIndex collects every global name the scope declares, keyed by
// its Location string. This pass runs before symbol-table creation (the
// fixed order puts path resolution first), so global references are
// checked against the AST's own declarations rather than a table no pass
// has filled yet.
func buildDeclIndex(scope *ast.ProgramScope) map[string]bool {
	idx := make(map[string]bool)
	add := func(path []session.Symbol, name session.Symbol) {
		loc := ast.Location{Program: scope.Program, Path: append(append([]session.Symbol{}, path...), name)}
		idx[loc.String()] = true
	}
	for _, f := range scope.Functions {
		add(nil, f.Name)
	}
	if scope.Constructor != nil {
		add(nil, scope.Constructor.Name)
	}
	for _, c := range scope.Composites {
		add(nil, c.Name)
	}
	for _, c := range scope.Consts {
		add(nil, c.Name)
	}
	for _, m := range scope.Mappings {
		add(nil, m.Name)
	}
	var walk func(mods []*ast.ModuleScope)
	walk = func(mods []*ast.ModuleScope) {
		for _, mod := range mods {
			for _, f := range mod.Functions {
				add(mod.Path, f.Name)
			}
			for _, c := range mod.Composites {
				add(mod.Path, c.Name)
			}
			for _, c := range mod.Consts {
				add(mod.Path, c.Name)
			}
			for _, m := range mod.Mappings {
				add(mod.Path, m.Name)
			}
			walk(mod.Modules)
		}
	}
	walk(scope.Modules)
	return idx
}

func (r *resolver) walkBlock(b *ast.BlockStmt) {
	if b == nil {
		return
	}
	r.st.Symbols.EnterBlock(b)
	for _, s := range b.Statements {
		r.walkStmt(s)
	}
	r.st.Symbols.ExitBlock()
}

func (r *resolver) walkStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.DefinitionStmt:
		n.Value = passes.WalkExpr(r, n.Value)
		for _, name := range n.Names {
			if err := r.st.Symbols.InsertVariable(name, nil, n.ID(), ast.ModeNone); err != nil {
				r.emitRedef(err)
			}
		}
	case *ast.AssignStmt:
		n.Place = passes.WalkExpr(r, n.Place)
		n.Value = passes.WalkExpr(r, n.Value)
	case *ast.BlockStmt:
		r.walkBlock(n)
	case *ast.ConditionalStmt:
		n.Cond = passes.WalkExpr(r, n.Cond)
		r.walkBlock(n.Then)
		if n.Else != nil {
			r.walkBlock(n.Else)
		}
	case *ast.IterationStmt:
		n.Start = passes.WalkExpr(r, n.Start)
		n.Stop = passes.WalkExpr(r, n.Stop)
		r.st.Symbols.EnterBlock(n.Body)
		if err := r.st.Symbols.InsertVariable(n.Variable, nil, n.ID(), ast.ModeNone); err != nil {
			r.emitRedef(err)
		}
		for _, child := range n.Body.Statements {
			r.walkStmt(child)
		}
		r.st.Symbols.ExitBlock()
	case *ast.ReturnStmt:
		n.Value = passes.WalkExpr(r, n.Value)
	case *ast.ExprStmt:
		n.Expr = passes.WalkExpr(r, n.Expr)
	case *ast.ConsoleStmt:
		for i, a := range n.Args {
			n.Args[i] = passes.WalkExpr(r, a)
		}
	}
}

// VisitExpr resolves a PathExpr: first against the live lexical scope,
// then against the enclosing program's functions/composites/consts.
// Non-path expressions pass through unchanged (their children were already
// resolved by WalkExpr's post-order recursion).
func (r *resolver) VisitExpr(e ast.Expr) ast.Expr {
	pe, ok := e.(*ast.PathExpr)
	if !ok {
		return e
	}
	if pe.Global != nil || pe.Local != nil {
		// Already resolved at parse time: a LOCATOR expression
		// (`other.aleo/name`) is fully program-qualified in its own
		// surface syntax and never needs the current program's scope.
		return pe
	}
	if len(pe.Segments) == 1 {
		if v, found := r.st.Symbols.LookupVariable(pe.Segments[0]); found {
			pe.Local = &ast.LocalBinding{Name: v.Name, DeclID: v.DeclID}
			return pe
		}
	}
	loc := ast.Location{Program: r.scope.Program, Path: pe.Segments}
	if r.decls[loc.String()] {
		pe.Global = &loc
		return pe
	}
	// Fallback for entries only the symbol table knows about (a pass
	// re-running resolution after monomorphization registered clones).
	if _, found := r.st.Symbols.LookupFunction(loc); found {
		pe.Global = &loc
		return pe
	}
	if _, found := r.st.Symbols.LookupComposite(loc); found {
		pe.Global = &loc
		return pe
	}
	if _, found := r.st.Symbols.LookupConst(loc); found {
		pe.Global = &loc
		return pe
	}
	// An unqualified name not declared by the current program falls back
	// to the imported stubs (spec.md §4.D lookup_function).
	if len(pe.Segments) == 1 {
		for _, stub := range r.st.Program.Stubs {
			for _, fs := range stub.Functions {
				if fs.Name == pe.Segments[0] {
					stubLoc := ast.Location{Program: stub.Program, Path: pe.Segments}
					pe.Global = &stubLoc
					return pe
				}
			}
		}
	}
	r.hadError = true
	r.st.Handler.Emit(&diag.Report{
		Code: diag.SymUnknownVariable, Kind: diag.KindSymbolPath, Severity: diag.SeverityError,
		Message: fmt.Sprintf("cannot resolve %q", pathString(pe.Segments)),
	})
	return pe
}

func (r *resolver) emitRedef(err error) {
	r.hadError = true
	r.st.Handler.Emit(&diag.Report{
		Code: diag.SymDuplicateDef, Kind: diag.KindSymbolPath, Severity: diag.SeverityError,
		Message: fmt.Sprintf("%v", err),
	})
}

func pathString(segs []session.Symbol) string {
	s := ""
	for i, seg := range segs {
		if i > 0 {
			s += "::"
		}
		s += session.Resolve(seg)
	}
	return s
}
