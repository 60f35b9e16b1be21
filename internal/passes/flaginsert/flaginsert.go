// Package flaginsert is lowering pass 13: a circuit cannot let a runtime
// condition skip an instruction, so every variable written inside a
// conditional branch is reconciled, right after the conditional, into a
// single post-conditional value selected by a boolean "flag" variable
// bound to the branch condition. The branch bodies keep computing their
// own candidate values (so a downstream ledger write still only happens
// under the write-transformation pass's predication, not here); this pass
// only establishes the flag and the ternary-select merge that later
// reads of the variable depend on.
package flaginsert

import (
	"github.com/ProvableHQ/leo-sub007/internal/ast"
	"github.com/ProvableHQ/leo-sub007/internal/compiler"
	"github.com/ProvableHQ/leo-sub007/internal/passes"
	"github.com/ProvableHQ/leo-sub007/internal/session"
	"github.com/ProvableHQ/leo-sub007/internal/types"
)

type Pass struct{}

func (Pass) Name() string { return "flag-insertion" }

func (p Pass) Run(st *compiler.CompilerState) bool {
	passes.WalkFunctions(st.Program, func(scope *ast.ProgramScope, fn *ast.Function) {
		if fn.Body == nil {
			return
		}
		fi := &flagInserter{st: st, live: map[ast.NodeID]session.Symbol{}}
		for _, in := range fn.Inputs {
			fi.live[in.ID()] = in.Name
		}
		fn.Body = fi.rewriteBlock(fn.Body)
	})
	return true
}

type flagInserter struct {
	st   *compiler.CompilerState
	live map[ast.NodeID]session.Symbol
}

func cloneLive(m map[ast.NodeID]session.Symbol) map[ast.NodeID]session.Symbol {
	out := make(map[ast.NodeID]session.Symbol, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (fi *flagInserter) rewriteBlock(b *ast.BlockStmt) *ast.BlockStmt {
	if b == nil {
		return nil
	}
	var out []ast.Stmt
	for _, s := range b.Statements {
		out = append(out, fi.rewriteStmt(s)...)
	}
	b.Statements = out
	return b
}

func (fi *flagInserter) rewriteStmt(s ast.Stmt) []ast.Stmt {
	switch n := s.(type) {
	case *ast.DefinitionStmt:
		if len(n.Names) == 1 {
			fi.live[n.ID()] = n.Names[0]
		}
		return []ast.Stmt{n}
	case *ast.AssignStmt:
		if path, ok := n.Place.(*ast.PathExpr); ok && path.Local != nil {
			fi.live[path.Local.DeclID] = path.Local.Name
		}
		return []ast.Stmt{n}
	case *ast.BlockStmt:
		return []ast.Stmt{fi.rewriteBlock(n)}
	case *ast.IterationStmt:
		n.Body = fi.rewriteBlock(n.Body)
		return []ast.Stmt{n}
	case *ast.ConditionalStmt:
		return fi.rewriteConditional(n)
	default:
		return []ast.Stmt{s}
	}
}

// rewriteConditional processes Then/Else independently from the same
// pre-conditional live-variable baseline, then splices a flag declaration
// plus one ternary-select merge assignment per variable either branch
// touched, after the (otherwise untouched) conditional statement.
func (fi *flagInserter) rewriteConditional(n *ast.ConditionalStmt) []ast.Stmt {
	baseline := cloneLive(fi.live)

	fi.live = cloneLive(baseline)
	n.Then = fi.rewriteBlock(n.Then)
	thenLive := fi.live

	elseLive := cloneLive(baseline)
	if n.Else != nil {
		fi.live = cloneLive(baseline)
		n.Else = fi.rewriteBlock(n.Else)
		elseLive = fi.live
	}

	touched := map[ast.NodeID]bool{}
	for id, name := range thenLive {
		if base, ok := baseline[id]; !ok || base != name {
			touched[id] = true
		}
	}
	for id, name := range elseLive {
		if base, ok := baseline[id]; !ok || base != name {
			touched[id] = true
		}
	}

	fi.live = baseline
	out := []ast.Stmt{n}
	if len(touched) == 0 {
		return out
	}

	flagName := fi.st.Assigner.Unique("flag")
	flagDeclID := fi.st.Nodes.NextID()
	flagDecl := &ast.DefinitionStmt{
		Base:  ast.Base{NID: flagDeclID, Sp: n.Sp},
		Kind:  ast.DeclLet,
		Names: []session.Symbol{flagName},
		Types: []ast.TypeExpr{&ast.NamedType{Base: ast.Base{NID: fi.st.Nodes.NextID()}, Name: session.Intern("bool")}},
		Value: n.Cond,
	}
	fi.st.Types.Set(flagDeclID, types.Bool())
	out = append(out, flagDecl)
	fi.live[flagDeclID] = flagName

	for id := range touched {
		thenName, thenOK := thenLive[id]
		elseName, elseOK := elseLive[id]
		baseName, baseOK := baseline[id]

		var thenExpr, elseExpr ast.Expr
		switch {
		case thenOK:
			thenExpr = fi.readVar(id, thenName, n.Sp)
		case baseOK:
			thenExpr = fi.readVar(id, baseName, n.Sp)
		default:
			thenExpr = fi.readVar(id, elseName, n.Sp)
		}
		switch {
		case elseOK:
			elseExpr = fi.readVar(id, elseName, n.Sp)
		case baseOK:
			elseExpr = fi.readVar(id, baseName, n.Sp)
		default:
			elseExpr = fi.readVar(id, thenName, n.Sp)
		}

		mergedName := baseName
		if !baseOK {
			mergedName = fi.st.Assigner.Unique("merged")
		}

		ternID := fi.st.Nodes.NextID()
		ternary := &ast.TernaryExpr{
			Base: ast.Base{NID: ternID, Sp: n.Sp},
			Cond: fi.readVar(flagDeclID, flagName, n.Sp),
			Then: thenExpr,
			Else: elseExpr,
		}
		if ty, ok := fi.valueType(thenExpr); ok {
			fi.st.Types.Set(ternID, ty)
		}

		assignID := fi.st.Nodes.NextID()
		place := &ast.PathExpr{
			Base:     ast.Base{NID: fi.st.Nodes.NextID(), Sp: n.Sp},
			Segments: []session.Symbol{mergedName},
			Local:    &ast.LocalBinding{Name: mergedName, DeclID: id},
		}
		out = append(out, &ast.AssignStmt{
			Base:  ast.Base{NID: assignID, Sp: n.Sp},
			Place: place,
			Value: ternary,
		})
		fi.live[id] = mergedName
	}

	return out
}

func (fi *flagInserter) readVar(declID ast.NodeID, name session.Symbol, sp session.Span) ast.Expr {
	return &ast.PathExpr{
		Base:     ast.Base{NID: fi.st.Nodes.NextID(), Sp: sp},
		Segments: []session.Symbol{name},
		Local:    &ast.LocalBinding{Name: name, DeclID: declID},
	}
}

func (fi *flagInserter) valueType(e ast.Expr) (*types.Type, bool) {
	if e == nil {
		return nil, false
	}
	return fi.st.Types.Get(e.ID())
}
