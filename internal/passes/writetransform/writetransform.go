// Package writetransform is lowering pass 14: every struct/array member
// that is ever written gets its own scalar variable for the rest of the
// function, since AVM registers hold scalars, not aggregates. A
// preliminary walk finds every aggregate appearing as an assignment LHS
// and mints one scalar per member ever written; a second walk turns
// those writes into scalar assignments and turns whole-aggregate reads
// into a reconstruction expression built from the scalar parts (or, for
// a member never written, a plain read through the original aggregate).
// Array indices must already be literal by this point (loop unrolling
// and constant folding both ran earlier in the pipeline).
package writetransform

import (
	"fmt"

	"github.com/ProvableHQ/leo-sub007/internal/ast"
	"github.com/ProvableHQ/leo-sub007/internal/compiler"
	"github.com/ProvableHQ/leo-sub007/internal/diag"
	"github.com/ProvableHQ/leo-sub007/internal/passes"
	"github.com/ProvableHQ/leo-sub007/internal/session"
	"github.com/ProvableHQ/leo-sub007/internal/types"
)

type Pass struct{}

func (Pass) Name() string { return "write-transformation" }

func (p Pass) Run(st *compiler.CompilerState) bool {
	ok := true
	passes.WalkFunctions(st.Program, func(scope *ast.ProgramScope, fn *ast.Function) {
		if fn.Body == nil {
			return
		}
		w := &transformer{
			st:             st,
			program:        scope.Program,
			structMembers:  map[ast.NodeID]map[session.Symbol]session.Symbol{},
			arrayMembers:   map[ast.NodeID]map[int64]session.Symbol{},
			baseExprOfDecl: map[ast.NodeID]ast.Expr{},
		}
		w.collectWrites(fn.Body)
		fn.Body = w.rewriteBlock(fn.Body)
		if w.hadError {
			ok = false
		}
	})
	return ok
}

type transformer struct {
	st      *compiler.CompilerState
	program session.Symbol

	structMembers map[ast.NodeID]map[session.Symbol]session.Symbol // base DeclID -> field -> scalar symbol
	arrayMembers  map[ast.NodeID]map[int64]session.Symbol          // base DeclID -> literal index -> scalar symbol

	// baseExprOfDecl remembers one concrete read expression for each
	// scalarized base, used as the template for reading an un-scalarized
	// member straight through the original aggregate.
	baseExprOfDecl map[ast.NodeID]ast.Expr

	hadError bool
}

func (w *transformer) scalarName(base session.Symbol, tag string) session.Symbol {
	return w.st.Assigner.Unique(session.Resolve(base) + "__" + tag)
}

// collectWrites finds every aggregate write LHS in b (recursively) and
// registers a scalar for each distinct member touched.
func (w *transformer) collectWrites(b *ast.BlockStmt) {
	if b == nil {
		return
	}
	for _, s := range b.Statements {
		w.collectWritesStmt(s)
	}
}

func (w *transformer) collectWritesStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.BlockStmt:
		w.collectWrites(n)
	case *ast.ConditionalStmt:
		w.collectWrites(n.Then)
		w.collectWrites(n.Else)
	case *ast.IterationStmt:
		w.collectWrites(n.Body)
	case *ast.AssignStmt:
		switch place := n.Place.(type) {
		case *ast.MemberAccessExpr:
			base, baseName, declID, ok := localBase(place.Receiver)
			if !ok {
				return
			}
			w.baseExprOfDecl[declID] = base
			fields := w.structMembers[declID]
			if fields == nil {
				fields = map[session.Symbol]session.Symbol{}
				w.structMembers[declID] = fields
			}
			if _, exists := fields[place.Member]; !exists {
				fields[place.Member] = w.scalarName(baseName, session.Resolve(place.Member))
			}
		case *ast.ArrayAccessExpr:
			base, baseName, declID, ok := localBase(place.Array)
			if !ok {
				return
			}
			lit, isLit := place.Index.(*ast.Literal)
			if !isLit || lit.Kind != ast.LitInt {
				w.hadError = true
				w.st.Handler.Emit(&diag.Report{
					Code: diag.FlowIndexNotLiteral, Kind: diag.KindFlow, Severity: diag.SeverityError,
					Message: "array index written in an assignment must be a compile-time literal",
				})
				return
			}
			idx := parseIndex(lit.Value)
			w.baseExprOfDecl[declID] = base
			idxs := w.arrayMembers[declID]
			if idxs == nil {
				idxs = map[int64]session.Symbol{}
				w.arrayMembers[declID] = idxs
			}
			if _, exists := idxs[idx]; !exists {
				idxs[idx] = w.scalarName(baseName, fmt.Sprintf("%d", idx))
			}
		}
	}
}

func localBase(e ast.Expr) (base ast.Expr, name session.Symbol, declID ast.NodeID, ok bool) {
	path, isPath := e.(*ast.PathExpr)
	if !isPath || path.Local == nil {
		return nil, 0, 0, false
	}
	return path, path.Local.Name, path.Local.DeclID, true
}

func parseIndex(v string) int64 {
	var n int64
	for _, c := range v {
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int64(c-'0')
	}
	return n
}

func (w *transformer) rewriteBlock(b *ast.BlockStmt) *ast.BlockStmt {
	if b == nil {
		return nil
	}
	var out []ast.Stmt
	for _, s := range b.Statements {
		out = append(out, w.rewriteStmt(s)...)
	}
	b.Statements = out
	return b
}

func (w *transformer) rewriteStmt(s ast.Stmt) []ast.Stmt {
	switch n := s.(type) {
	case *ast.BlockStmt:
		return []ast.Stmt{w.rewriteBlock(n)}
	case *ast.ConditionalStmt:
		n.Cond = w.rewriteExpr(n.Cond)
		n.Then = w.rewriteBlock(n.Then)
		if n.Else != nil {
			n.Else = w.rewriteBlock(n.Else)
		}
		return []ast.Stmt{n}
	case *ast.IterationStmt:
		n.Body = w.rewriteBlock(n.Body)
		return []ast.Stmt{n}
	case *ast.DefinitionStmt:
		n.Value = w.rewriteExpr(n.Value)
		return []ast.Stmt{n}
	case *ast.AssignStmt:
		return w.rewriteAssign(n)
	case *ast.ReturnStmt:
		n.Value = w.rewriteExpr(n.Value)
		return []ast.Stmt{n}
	case *ast.ExprStmt:
		n.Expr = w.rewriteExpr(n.Expr)
		return []ast.Stmt{n}
	case *ast.ConsoleStmt:
		for i, a := range n.Args {
			n.Args[i] = w.rewriteExpr(a)
		}
		return []ast.Stmt{n}
	default:
		return []ast.Stmt{s}
	}
}

func (w *transformer) rewriteAssign(n *ast.AssignStmt) []ast.Stmt {
	switch place := n.Place.(type) {
	case *ast.MemberAccessExpr:
		_, _, declID, ok := localBase(place.Receiver)
		if !ok {
			n.Value = w.rewriteExpr(n.Value)
			return []ast.Stmt{n}
		}
		scalar := w.structMembers[declID][place.Member]
		n.Place = w.scalarPlace(scalar, place.Sp)
		n.Value = w.rewriteExpr(n.Value)
		return []ast.Stmt{n}
	case *ast.ArrayAccessExpr:
		_, _, declID, ok := localBase(place.Array)
		if !ok {
			n.Value = w.rewriteExpr(n.Value)
			return []ast.Stmt{n}
		}
		lit, isLit := place.Index.(*ast.Literal)
		if !isLit {
			n.Value = w.rewriteExpr(n.Value)
			return []ast.Stmt{n}
		}
		idx := parseIndex(lit.Value)
		scalar := w.arrayMembers[declID][idx]
		n.Place = w.scalarPlace(scalar, place.Sp)
		n.Value = w.rewriteExpr(n.Value)
		return []ast.Stmt{n}
	default:
		n.Place = w.rewriteExpr(n.Place)
		n.Value = w.rewriteExpr(n.Value)
		return []ast.Stmt{n}
	}
}

func (w *transformer) scalarPlace(scalar session.Symbol, sp session.Span) ast.Expr {
	return &ast.PathExpr{
		Base:     ast.Base{NID: w.st.Nodes.NextID(), Sp: sp},
		Segments: []session.Symbol{scalar},
		Local:    &ast.LocalBinding{Name: scalar},
	}
}

func (w *transformer) rewriteExpr(e ast.Expr) ast.Expr {
	if e == nil {
		return nil
	}
	switch n := e.(type) {
	case *ast.PathExpr:
		if n.Local == nil {
			return n
		}
		if w.isScalarized(n.Local.DeclID) {
			return w.reassemble(n.Local.DeclID, n.Sp)
		}
		return n
	case *ast.MemberAccessExpr:
		if _, _, declID, ok := localBase(n.Receiver); ok {
			if scalar, has := w.structMembers[declID][n.Member]; has {
				return w.scalarPlace(scalar, n.Sp)
			}
		}
		n.Receiver = w.rewriteExpr(n.Receiver)
		return n
	case *ast.ArrayAccessExpr:
		if _, _, declID, ok := localBase(n.Array); ok {
			if lit, isLit := n.Index.(*ast.Literal); isLit {
				idx := parseIndex(lit.Value)
				if scalar, has := w.arrayMembers[declID][idx]; has {
					return w.scalarPlace(scalar, n.Sp)
				}
			}
		}
		n.Array, n.Index = w.rewriteExpr(n.Array), w.rewriteExpr(n.Index)
		return n
	case *ast.BinaryExpr:
		n.Left, n.Right = w.rewriteExpr(n.Left), w.rewriteExpr(n.Right)
		return n
	case *ast.UnaryExpr:
		n.Expr = w.rewriteExpr(n.Expr)
		return n
	case *ast.TernaryExpr:
		n.Cond, n.Then, n.Else = w.rewriteExpr(n.Cond), w.rewriteExpr(n.Then), w.rewriteExpr(n.Else)
		return n
	case *ast.CastExpr:
		n.Expr = w.rewriteExpr(n.Expr)
		return n
	case *ast.TupleAccessExpr:
		n.Tuple = w.rewriteExpr(n.Tuple)
		return n
	case *ast.CallExpr:
		for i, a := range n.Arguments {
			n.Arguments[i] = w.rewriteExpr(a)
		}
		return n
	case *ast.IntrinsicCallExpr:
		for i, a := range n.Arguments {
			n.Arguments[i] = w.rewriteExpr(a)
		}
		return n
	case *ast.StructLit:
		for i := range n.Fields {
			n.Fields[i].Value = w.rewriteExpr(n.Fields[i].Value)
		}
		return n
	case *ast.TupleLit:
		for i, el := range n.Elements {
			n.Elements[i] = w.rewriteExpr(el)
		}
		return n
	case *ast.ArrayLit:
		for i, el := range n.Elements {
			n.Elements[i] = w.rewriteExpr(el)
		}
		return n
	default:
		return n
	}
}

func (w *transformer) isScalarized(declID ast.NodeID) bool {
	if _, ok := w.structMembers[declID]; ok {
		return true
	}
	_, ok := w.arrayMembers[declID]
	return ok
}

// reassemble builds a StructLit/ArrayLit reconstructing the full
// aggregate value for declID from its scalar members (and, for members
// never written, a read through the original aggregate expression).
func (w *transformer) reassemble(declID ast.NodeID, sp session.Span) ast.Expr {
	base := w.baseExprOfDecl[declID]
	ty, hasType := w.st.Types.Get(base.ID())

	if fields, ok := w.structMembers[declID]; ok {
		composite := w.lookupComposite(ty, hasType)
		lit := &ast.StructLit{Base: ast.Base{NID: w.st.Nodes.NextID(), Sp: sp}}
		if composite != nil {
			lit.Name = composite.Name
			for _, m := range composite.Members {
				var val ast.Expr
				if scalar, written := fields[m.Name]; written {
					val = w.scalarPlace(scalar, sp)
				} else {
					val = &ast.MemberAccessExpr{Base: ast.Base{NID: w.st.Nodes.NextID(), Sp: sp}, Receiver: base, Member: m.Name}
				}
				lit.Fields = append(lit.Fields, ast.StructLitField{Name: m.Name, Value: val})
			}
			return lit
		}
		for field, scalar := range fields {
			lit.Fields = append(lit.Fields, ast.StructLitField{Name: field, Value: w.scalarPlace(scalar, sp)})
		}
		return lit
	}

	idxs := w.arrayMembers[declID]
	length := int64(len(idxs))
	if hasType && ty.Kind == types.KindArray {
		length = int64(ty.Len)
	}
	arr := &ast.ArrayLit{Base: ast.Base{NID: w.st.Nodes.NextID(), Sp: sp}}
	for i := int64(0); i < length; i++ {
		if scalar, written := idxs[i]; written {
			arr.Elements = append(arr.Elements, w.scalarPlace(scalar, sp))
			continue
		}
		litID := w.st.Nodes.NextID()
		arr.Elements = append(arr.Elements, &ast.ArrayAccessExpr{
			Base:  ast.Base{NID: litID, Sp: sp},
			Array: base,
			Index: &ast.Literal{Base: ast.Base{NID: w.st.Nodes.NextID(), Sp: sp}, Kind: ast.LitInt, Value: fmt.Sprintf("%d", i)},
		})
	}
	return arr
}

func (w *transformer) lookupComposite(ty *types.Type, hasType bool) *ast.Composite {
	if !hasType || (ty.Kind != types.KindStruct && ty.Kind != types.KindRecord) {
		return nil
	}
	entry, found := w.st.Symbols.LookupComposite(ast.Location{Program: w.program, Path: []session.Symbol{ty.Name}})
	if !found {
		return nil
	}
	return entry.Decl
}
