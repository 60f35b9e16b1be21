// Package futurecheck is lowering pass 4 (spec.md §4.I.4): for every async
// transition, checks that each Future a call produces is eventually
// awaited on every path through the function, warns when two futures are
// awaited out of production order, and rejects a Future-typed expression
// appearing anywhere other than the handful of positions spec.md names as
// legal. Grounded on the teacher's internal/elaborate/scc.go-style
// path-sensitive walk (there used for AILANG's effect-row checking), here
// adapted from "which effects happen on which path" to "which futures are
// produced/awaited on which path."
package futurecheck

import (
	"github.com/ProvableHQ/leo-sub007/internal/ast"
	"github.com/ProvableHQ/leo-sub007/internal/compiler"
	"github.com/ProvableHQ/leo-sub007/internal/diag"
	"github.com/ProvableHQ/leo-sub007/internal/passes"
	"github.com/ProvableHQ/leo-sub007/internal/session"
	"github.com/ProvableHQ/leo-sub007/internal/types"
)

type Pass struct{}

func (Pass) Name() string { return "future-await-checker" }

func (p Pass) Run(st *compiler.CompilerState) bool {
	ok := true
	passes.WalkFunctions(st.Program, func(scope *ast.ProgramScope, f *ast.Function) {
		if f.Variant != ast.VariantAsyncTransition || f.Body == nil {
			return
		}
		c := &checker{st: st}
		c.checkLegalPositions(f.Body)
		paths := c.walkStmts(f.Body.Statements)
		for _, path := range paths {
			c.checkPath(path)
		}
		if c.hadFatal {
			ok = false
		}
	})
	return ok
}

// event is one production or await occurrence, in source order along one
// execution path.
type event struct {
	produce bool
	declID  ast.NodeID
}

type checker struct {
	st       *compiler.CompilerState
	hadFatal bool
}

// walkStmts enumerates every execution path through stmts as a flat event
// sequence, branching the path set at each conditional. Loops are treated
// as executing their body exactly once: loop unrolling (spec.md §4.I.6)
// runs after this pass, so no concrete iteration count is known yet, and a
// single pass is the conservative approximation for await-ordering
// purposes.
func (c *checker) walkStmts(stmts []ast.Stmt) [][]event {
	if len(stmts) == 0 {
		return [][]event{nil}
	}
	head, tail := stmts[0], stmts[1:]
	restPaths := c.walkStmts(tail)

	switch n := head.(type) {
	case *ast.ConditionalStmt:
		condEvents := c.exprEvents(n.Cond)
		var branches [][]event
		branches = append(branches, c.walkStmts(n.Then.Statements)...)
		if n.Else != nil {
			branches = append(branches, c.walkStmts(n.Else.Statements)...)
		} else {
			branches = append(branches, nil)
		}
		var out [][]event
		for _, b := range branches {
			for _, rest := range restPaths {
				path := append(append(append([]event{}, condEvents...), b...), rest...)
				out = append(out, path)
			}
		}
		return out
	case *ast.IterationStmt:
		bodyPaths := c.walkStmts(n.Body.Statements)
		var out [][]event
		for _, b := range bodyPaths {
			for _, rest := range restPaths {
				path := append(append([]event{}, b...), rest...)
				out = append(out, path)
			}
		}
		return out
	default:
		own := c.stmtEvents(head)
		var out [][]event
		for _, rest := range restPaths {
			out = append(out, append(append([]event{}, own...), rest...))
		}
		return out
	}
}

func (c *checker) stmtEvents(s ast.Stmt) []event {
	switch n := s.(type) {
	case *ast.DefinitionStmt:
		ev := c.exprEvents(n.Value)
		if ty, ok := c.st.Types.Get(n.Value.ID()); ok && ty.Kind == types.KindFuture && len(n.Names) == 1 {
			ev = append(ev, event{produce: true, declID: n.ID()})
		}
		return ev
	case *ast.AssignStmt:
		return c.exprEvents(n.Value)
	case *ast.BlockStmt:
		var ev []event
		for _, child := range n.Statements {
			ev = append(ev, c.stmtEvents(child)...)
		}
		return ev
	case *ast.ReturnStmt:
		return c.exprEvents(n.Value)
	case *ast.ExprStmt:
		return c.exprEvents(n.Expr)
	case *ast.ConsoleStmt:
		var ev []event
		for _, a := range n.Args {
			ev = append(ev, c.exprEvents(a)...)
		}
		return ev
	}
	return nil
}

// exprEvents recognizes two shapes: a call to `.await()` on a local
// binding (an await event) and leaves everything else to the caller
// (statement-level production is recognized at the DefinitionStmt that
// binds a Future-typed call result, not here, since a raw CallExpr alone
// doesn't yet know its binding's DeclID).
func (c *checker) exprEvents(e ast.Expr) []event {
	call, ok := e.(*ast.CallExpr)
	if !ok {
		return nil
	}
	member, ok := call.Callee.(*ast.MemberAccessExpr)
	if !ok {
		return nil
	}
	path, ok := member.Receiver.(*ast.PathExpr)
	if ok && isAwait(member) && path.Local != nil {
		return []event{{produce: false, declID: path.Local.DeclID}}
	}
	return nil
}

func isAwait(m *ast.MemberAccessExpr) bool {
	return session.Resolve(m.Member) == "await"
}

func (c *checker) checkPath(path []event) {
	produced := map[ast.NodeID]int{}
	var order []ast.NodeID
	awaitedOrder := map[ast.NodeID]int{}
	var awaitOrder []ast.NodeID
	for _, ev := range path {
		if ev.produce {
			produced[ev.declID] = len(order)
			order = append(order, ev.declID)
		} else {
			awaitedOrder[ev.declID] = len(awaitOrder)
			awaitOrder = append(awaitOrder, ev.declID)
		}
	}
	for _, id := range order {
		if _, ok := awaitedOrder[id]; !ok {
			c.hadFatal = true
			c.st.Handler.Emit(&diag.Report{
				Code: diag.StaFutureNeverAwaited, Kind: diag.KindStaticAnalysis, Severity: diag.SeverityError,
				Message: "a future produced on this path is never awaited",
			})
		}
	}
	// Out-of-order warning: compare the relative order of the futures that
	// were both produced and awaited on this path.
	var producedAndAwaited []ast.NodeID
	for _, id := range order {
		if _, ok := awaitedOrder[id]; ok {
			producedAndAwaited = append(producedAndAwaited, id)
		}
	}
	for i := 1; i < len(producedAndAwaited); i++ {
		prev, cur := producedAndAwaited[i-1], producedAndAwaited[i]
		if awaitedOrder[prev] > awaitedOrder[cur] {
			c.st.Handler.Emit(&diag.Report{
				Code: diag.StaFutureUnorderedAwait, Kind: diag.KindStaticAnalysis, Severity: diag.SeverityWarning,
				Message: "futures awaited out of production order (future_not_awaited_in_order)",
			})
		}
	}
}

// checkLegalPositions rejects a Future-typed expression anywhere other
// than: the receiver of .await(), a return expression, a call argument,
// the final element of a tuple literal itself returned or defined, a
// tuple-access expression, or the sole value of a simple definition.
func (c *checker) checkLegalPositions(b *ast.BlockStmt) {
	for _, s := range b.Statements {
		c.checkStmtPositions(s)
	}
}

func (c *checker) checkStmtPositions(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.DefinitionStmt:
		c.allowFuture(n.Value)
	case *ast.AssignStmt:
		c.allowFuture(n.Value)
	case *ast.BlockStmt:
		c.checkLegalPositions(n)
	case *ast.ConditionalStmt:
		c.checkLegalPositions(n.Then)
		if n.Else != nil {
			c.checkLegalPositions(n.Else)
		}
	case *ast.IterationStmt:
		c.checkLegalPositions(n.Body)
	case *ast.ReturnStmt:
		c.allowFuture(n.Value)
	case *ast.ExprStmt:
		c.allowFuture(n.Expr)
	}
}

// allowFuture is called on every expression that sits in one of the
// legal top-level positions; it then scans for Future-typed expressions
// nested somewhere illegal beneath it.
func (c *checker) allowFuture(e ast.Expr) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *ast.CallExpr:
		if member, ok := n.Callee.(*ast.MemberAccessExpr); ok && isAwait(member) {
			return // the receiver of .await() is a legal Future position
		}
		for _, a := range n.Arguments {
			c.allowFuture(a) // call arguments are a legal Future position too
		}
	case *ast.TupleLit:
		for i, el := range n.Elements {
			if i == len(n.Elements)-1 {
				c.allowFuture(el)
			} else {
				c.rejectIfFuture(el)
			}
		}
	case *ast.TupleAccessExpr:
		// a tuple-access expression is itself a legal Future position
	default:
		c.rejectIfFuture(e)
	}
}

func (c *checker) rejectIfFuture(e ast.Expr) {
	if e == nil {
		return
	}
	if ty, ok := c.st.Types.Get(e.ID()); ok && ty.Kind == types.KindFuture {
		c.hadFatal = true
		c.st.Handler.Emit(&diag.Report{
			Code: diag.StaFutureMisplaced, Kind: diag.KindStaticAnalysis, Severity: diag.SeverityError,
			Message: "a future may only be awaited, returned, passed as a call argument, or bound in a simple definition",
		})
	}
}
