package passes

import (
	"github.com/ProvableHQ/leo-sub007/internal/ast"
	"github.com/ProvableHQ/leo-sub007/internal/compiler"
	"github.com/ProvableHQ/leo-sub007/internal/session"
)

// Subst maps a local variable name to the expression that should replace
// every reference to it. Loop unrolling binds the iteration variable this
// way; monomorphization binds const parameters; inlining binds ordinary
// parameters to argument expressions.
type Subst map[session.Symbol]ast.Expr

// freshBase mints a new NodeID for a cloned node, keeping the original's
// span so diagnostics on the clone still point at the source text that
// produced it.
func freshBase(st *compiler.CompilerState, old ast.Base) ast.Base {
	return ast.Base{NID: st.Nodes.NextID(), Sp: old.Sp}
}

func carryType(st *compiler.CompilerState, oldID, newID ast.NodeID) {
	if t, ok := st.Types.Get(oldID); ok {
		st.Types.Set(newID, t)
	}
}

// CloneExpr deep-copies e, minting a fresh NodeID for every node (and
// copying forward its recorded type, if any) and replacing any
// locally-bound PathExpr whose name is a key of subst with a clone of the
// substituted expression. Pass a nil subst to clone without substitution.
func CloneExpr(st *compiler.CompilerState, subst Subst, e ast.Expr) ast.Expr {
	if e == nil {
		return nil
	}
	switch n := e.(type) {
	case *ast.PathExpr:
		if n.Local != nil && subst != nil {
			if repl, ok := subst[n.Local.Name]; ok {
				return CloneExpr(st, subst, repl)
			}
		}
		var local *ast.LocalBinding
		if n.Local != nil {
			// Copied, not shared: SSA renames bindings through this pointer,
			// and two clones of the same read must stay independently renameable.
			local = &ast.LocalBinding{Name: n.Local.Name, DeclID: n.Local.DeclID}
		}
		clone := &ast.PathExpr{Base: freshBase(st, n.Base), Segments: append([]session.Symbol{}, n.Segments...), Local: local, Global: n.Global}
		carryType(st, n.ID(), clone.ID())
		return clone
	case *ast.Literal:
		clone := &ast.Literal{Base: freshBase(st, n.Base), Kind: n.Kind, Value: n.Value, Subtype: n.Subtype}
		carryType(st, n.ID(), clone.ID())
		return clone
	case *ast.BinaryExpr:
		clone := &ast.BinaryExpr{Base: freshBase(st, n.Base), Op: n.Op, Left: CloneExpr(st, subst, n.Left), Right: CloneExpr(st, subst, n.Right)}
		carryType(st, n.ID(), clone.ID())
		return clone
	case *ast.UnaryExpr:
		clone := &ast.UnaryExpr{Base: freshBase(st, n.Base), Op: n.Op, Expr: CloneExpr(st, subst, n.Expr)}
		carryType(st, n.ID(), clone.ID())
		return clone
	case *ast.TernaryExpr:
		clone := &ast.TernaryExpr{Base: freshBase(st, n.Base), Cond: CloneExpr(st, subst, n.Cond), Then: CloneExpr(st, subst, n.Then), Else: CloneExpr(st, subst, n.Else)}
		carryType(st, n.ID(), clone.ID())
		return clone
	case *ast.CallExpr:
		args := make([]ast.Expr, len(n.Arguments))
		for i, a := range n.Arguments {
			args[i] = CloneExpr(st, subst, a)
		}
		var constArgs []ast.Expr
		if n.ConstArguments != nil {
			constArgs = make([]ast.Expr, len(n.ConstArguments))
			for i, a := range n.ConstArguments {
				constArgs[i] = CloneExpr(st, subst, a)
			}
		}
		clone := &ast.CallExpr{Base: freshBase(st, n.Base), Callee: CloneExpr(st, subst, n.Callee), Arguments: args, ConstArguments: constArgs, Target: n.Target}
		carryType(st, n.ID(), clone.ID())
		return clone
	case *ast.IntrinsicCallExpr:
		args := make([]ast.Expr, len(n.Arguments))
		for i, a := range n.Arguments {
			args[i] = CloneExpr(st, subst, a)
		}
		clone := &ast.IntrinsicCallExpr{Base: freshBase(st, n.Base), Name: n.Name, Arguments: args}
		carryType(st, n.ID(), clone.ID())
		return clone
	case *ast.CastExpr:
		clone := &ast.CastExpr{Base: freshBase(st, n.Base), Expr: CloneExpr(st, subst, n.Expr), Type: n.Type}
		carryType(st, n.ID(), clone.ID())
		return clone
	case *ast.ArrayAccessExpr:
		clone := &ast.ArrayAccessExpr{Base: freshBase(st, n.Base), Array: CloneExpr(st, subst, n.Array), Index: CloneExpr(st, subst, n.Index)}
		carryType(st, n.ID(), clone.ID())
		return clone
	case *ast.TupleAccessExpr:
		clone := &ast.TupleAccessExpr{Base: freshBase(st, n.Base), Tuple: CloneExpr(st, subst, n.Tuple), Index: n.Index}
		carryType(st, n.ID(), clone.ID())
		return clone
	case *ast.MemberAccessExpr:
		clone := &ast.MemberAccessExpr{Base: freshBase(st, n.Base), Receiver: CloneExpr(st, subst, n.Receiver), Member: n.Member}
		carryType(st, n.ID(), clone.ID())
		return clone
	case *ast.StructLit:
		fields := make([]ast.StructLitField, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = ast.StructLitField{Name: f.Name, Value: CloneExpr(st, subst, f.Value)}
		}
		clone := &ast.StructLit{Base: freshBase(st, n.Base), Name: n.Name, Fields: fields, Program: n.Program}
		carryType(st, n.ID(), clone.ID())
		return clone
	case *ast.TupleLit:
		elems := make([]ast.Expr, len(n.Elements))
		for i, el := range n.Elements {
			elems[i] = CloneExpr(st, subst, el)
		}
		clone := &ast.TupleLit{Base: freshBase(st, n.Base), Elements: elems}
		carryType(st, n.ID(), clone.ID())
		return clone
	case *ast.ArrayLit:
		elems := make([]ast.Expr, len(n.Elements))
		for i, el := range n.Elements {
			elems[i] = CloneExpr(st, subst, el)
		}
		clone := &ast.ArrayLit{Base: freshBase(st, n.Base), Elements: elems}
		carryType(st, n.ID(), clone.ID())
		return clone
	case *ast.UnitExpr:
		clone := &ast.UnitExpr{Base: freshBase(st, n.Base)}
		carryType(st, n.ID(), clone.ID())
		return clone
	default:
		return e
	}
}

// CloneBlock deep-copies b, substituting through subst exactly as
// CloneExpr does for every expression position.
func CloneBlock(st *compiler.CompilerState, subst Subst, b *ast.BlockStmt) *ast.BlockStmt {
	if b == nil {
		return nil
	}
	stmts := make([]ast.Stmt, len(b.Statements))
	for i, s := range b.Statements {
		stmts[i] = CloneStmt(st, subst, s)
	}
	return &ast.BlockStmt{Base: freshBase(st, b.Base), Statements: stmts}
}

// CloneStmt deep-copies one statement (and its nested blocks/expressions).
func CloneStmt(st *compiler.CompilerState, subst Subst, s ast.Stmt) ast.Stmt {
	switch n := s.(type) {
	case *ast.DefinitionStmt:
		return &ast.DefinitionStmt{Base: freshBase(st, n.Base), Kind: n.Kind, Names: append([]session.Symbol{}, n.Names...), Types: n.Types, Value: CloneExpr(st, subst, n.Value)}
	case *ast.AssignStmt:
		return &ast.AssignStmt{Base: freshBase(st, n.Base), Place: CloneExpr(st, subst, n.Place), Value: CloneExpr(st, subst, n.Value)}
	case *ast.BlockStmt:
		return CloneBlock(st, subst, n)
	case *ast.ConditionalStmt:
		var els *ast.BlockStmt
		if n.Else != nil {
			els = CloneBlock(st, subst, n.Else)
		}
		return &ast.ConditionalStmt{Base: freshBase(st, n.Base), Cond: CloneExpr(st, subst, n.Cond), Then: CloneBlock(st, subst, n.Then), Else: els}
	case *ast.IterationStmt:
		return &ast.IterationStmt{
			Base: freshBase(st, n.Base), Variable: n.Variable, VarType: n.VarType,
			Start: CloneExpr(st, subst, n.Start), Stop: CloneExpr(st, subst, n.Stop),
			Inclusive: n.Inclusive, Body: CloneBlock(st, subst, n.Body),
		}
	case *ast.ReturnStmt:
		return &ast.ReturnStmt{Base: freshBase(st, n.Base), Value: CloneExpr(st, subst, n.Value)}
	case *ast.ExprStmt:
		return &ast.ExprStmt{Base: freshBase(st, n.Base), Expr: CloneExpr(st, subst, n.Expr)}
	case *ast.ConsoleStmt:
		args := make([]ast.Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = CloneExpr(st, subst, a)
		}
		return &ast.ConsoleStmt{Base: freshBase(st, n.Base), Kind: n.Kind, Args: args}
	case *ast.AssemblyBlockStmt:
		return &ast.AssemblyBlockStmt{Base: freshBase(st, n.Base), Raw: n.Raw}
	default:
		return s
	}
}
