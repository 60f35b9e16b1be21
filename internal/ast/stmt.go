package ast

import "github.com/ProvableHQ/leo-sub007/internal/session"

// Stmt is the sum of all statement variants.
type Stmt interface {
	Node
	stmtNode()
}

// DeclKind distinguishes `let` (mutable) from `const` (immutable) bindings
// at definition-statement granularity.
type DeclKind int

const (
	DeclLet DeclKind = iota
	DeclConst
)

// DefinitionStmt is `let x: T = expr;` or `const x: T = expr;`, and also
// covers tuple-destructuring definitions `let (x, y) = expr;` via Names.
type DefinitionStmt struct {
	Base
	Kind  DeclKind
	Names []session.Symbol // length 1 for a simple binding, >1 for a tuple definition
	Types []TypeExpr       // parallel to Names; entries may be nil if elided
	Value Expr
}

func (d *DefinitionStmt) stmtNode() {}

// AssignStmt is `place = expr;` where place is a PathExpr, ArrayAccessExpr,
// TupleAccessExpr, or MemberAccessExpr.
type AssignStmt struct {
	Base
	Place Expr
	Value Expr
}

func (a *AssignStmt) stmtNode() {}

// BlockStmt is `{ stmt; stmt; ... }`.
type BlockStmt struct {
	Base
	Statements []Stmt
}

func (b *BlockStmt) stmtNode() {}

// ConditionalStmt is `if cond { then } else { else }` (Else may be nil, or
// itself a BlockStmt containing a single nested ConditionalStmt for
// `else if`).
type ConditionalStmt struct {
	Base
	Cond Expr
	Then *BlockStmt
	Else *BlockStmt
}

func (c *ConditionalStmt) stmtNode() {}

// IterationStmt is `for i: T in start..stop { body }`. Start/Stop must
// reduce to compile-time-known values of type VarType by the time loop
// unrolling runs (spec.md §4.I.3, §4.I.6).
type IterationStmt struct {
	Base
	Variable  session.Symbol
	VarType   TypeExpr
	Start     Expr
	Stop      Expr
	Inclusive bool // true for `..=`
	Body      *BlockStmt
}

func (i *IterationStmt) stmtNode() {}

// ReturnStmt is `return expr;`.
type ReturnStmt struct {
	Base
	Value Expr // nil for a unit return
}

func (r *ReturnStmt) stmtNode() {}

// ExprStmt wraps an expression used for its side effect (a bare call).
type ExprStmt struct {
	Base
	Expr Expr
}

func (e *ExprStmt) stmtNode() {}

// ConsoleKind enumerates the console statement forms.
type ConsoleKind int

const (
	ConsoleAssert ConsoleKind = iota
	ConsoleAssertEq
	ConsoleAssertNeq
	ConsoleLog
)

// ConsoleStmt is `console.assert(...)`, `assert_eq!(...)`, etc.
type ConsoleStmt struct {
	Base
	Kind Kind
	Args []Expr
}

// Kind is an alias of ConsoleKind (not a distinct type), so ConsoleStmt's
// field reads naturally at call sites (console.Kind == console.ConsoleLog).
type Kind = ConsoleKind

func (c *ConsoleStmt) stmtNode() {}

// AssemblyBlockStmt is a raw inline-assembly escape hatch; its contents
// are opaque to every pass except code generation, which splices the text
// verbatim into the emitted function body.
type AssemblyBlockStmt struct {
	Base
	Raw string
}

func (a *AssemblyBlockStmt) stmtNode() {}
