// Package ast defines Leo's semantic AST: the tree of programs, modules,
// functions, statements, and expressions that every lowering pass
// (internal/passes/*) reads and rewrites, and that internal/codegen
// eventually lowers to AVM assembly.
//
// Every node carries a stable NodeID, assigned once by a NodeBuilder owned
// by the compile state (internal/compiler.CompilerState) and never reused
// within one compilation (spec.md §3.2 "Unique NodeIDs"). Passes that
// synthesize new nodes mint fresh IDs through the same builder; passes
// that only restructure existing subtrees preserve the original ID.
package ast

import (
	"fmt"

	"github.com/ProvableHQ/leo-sub007/internal/session"
)

// NodeID is a monotonically increasing identifier minted by NodeBuilder.
type NodeID uint32

// InvalidNodeID is never issued by NodeBuilder; it marks a node that has
// not yet been assigned an ID (e.g. a node built and immediately discarded
// before being attached to a builder).
const InvalidNodeID NodeID = 0

// Node is the contract every AST node implements.
type Node interface {
	Span() session.Span
	ID() NodeID
	SetID(NodeID)
}

// Base is embedded by every concrete node to satisfy Node without
// repeating the bookkeeping in each variant.
type Base struct {
	NID NodeID
	Sp  session.Span
}

func (b *Base) ID() NodeID         { return b.NID }
func (b *Base) SetID(id NodeID)    { b.NID = id }
func (b *Base) Span() session.Span { return b.Sp }

// NodeBuilder hands out monotone NodeIDs. It is owned by CompilerState and
// cloned (by reference) into every pass, so a cycle detected mid-pipeline
// never reuses an ID: NodeBuilder.next only ever increases.
type NodeBuilder struct {
	next NodeID
}

// NewNodeBuilder starts a fresh builder. InvalidNodeID (0) is reserved, so
// the first real node gets ID 1.
func NewNodeBuilder() *NodeBuilder {
	return &NodeBuilder{next: 1}
}

// NextID returns a never-before-issued NodeID.
func (b *NodeBuilder) NextID() NodeID {
	id := b.next
	b.next++
	return id
}

// NewID assigns a freshly minted ID to n and returns n for chaining.
func NewID[T Node](b *NodeBuilder, n T) T {
	n.SetID(b.NextID())
	return n
}

// Location is a program-qualified, module-path-qualified name, used for
// functions, records, and mappings visible across programs.
type Location struct {
	Program session.Symbol
	Path    []session.Symbol
}

func (l Location) String() string {
	s := session.Resolve(l.Program)
	for _, seg := range l.Path {
		s += "::" + session.Resolve(seg)
	}
	return s
}

func (l Location) Equal(o Location) bool {
	if l.Program != o.Program || len(l.Path) != len(o.Path) {
		return false
	}
	for i := range l.Path {
		if l.Path[i] != o.Path[i] {
			return false
		}
	}
	return true
}

// Mode is the passing discipline of a function input/output or a struct
// member.
type Mode int

const (
	ModeNone Mode = iota
	ModePublic
	ModePrivate
	ModeConstant
	ModeConst
	ModeRecord
)

func (m Mode) String() string {
	switch m {
	case ModePublic:
		return "public"
	case ModePrivate:
		return "private"
	case ModeConstant:
		return "constant"
	case ModeConst:
		return "const"
	case ModeRecord:
		return "record"
	default:
		return ""
	}
}

// ---------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------

// Expr is the sum of all expression variants.
type Expr interface {
	Node
	exprNode()
}

// LiteralKind enumerates the primitive literal forms.
type LiteralKind int

const (
	LitBool LiteralKind = iota
	LitField
	LitGroup
	LitAddress
	LitChar
	LitString
	LitScalar
	LitSignature
	LitInt // integer literal; Subtype names i8..u128 or "" if not yet suffixed
)

// Literal is any scalar literal, e.g. `5u32`, `true`, `aleo1...`.
type Literal struct {
	Base
	Kind    LiteralKind
	Value   string // raw literal text, e.g. "5", "true", "aleo1..."
	Subtype string // integer/scalar suffix, e.g. "u32"; empty if absent/unknown
}

func (l *Literal) exprNode() {}

// PathExpr is a partially-resolved reference: `x`, `a::b::c`, or a bare
// identifier. Path resolution (internal/passes/resolve) fills in exactly
// one of Local or Global, leaving Segments as the original syntax for
// diagnostics.
type PathExpr struct {
	Base
	Segments []session.Symbol

	Local  *LocalBinding // set if resolved to an enclosing-scope variable
	Global *Location     // set if resolved to a program-qualified location
}

func (p *PathExpr) exprNode() {}

// LocalBinding is what a PathExpr resolves to when it names a variable in
// an enclosing lexical scope.
type LocalBinding struct {
	Name session.Symbol
	// DeclID is the NodeID of the Definition/Param that introduced Name.
	DeclID NodeID
}

// BinaryExpr is `left op right`.
type BinaryExpr struct {
	Base
	Op    BinaryOp
	Left  Expr
	Right Expr
}

func (b *BinaryExpr) exprNode() {}

type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpRem
	OpPow
	OpEq
	OpNeq
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
	OpBitAnd
	OpBitOr
	OpXor
	OpShl
	OpShr
)

var binaryOpNames = map[BinaryOp]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpRem: "%", OpPow: "**",
	OpEq: "==", OpNeq: "!=", OpLt: "<", OpLe: "<=", OpGt: ">", OpGe: ">=",
	OpAnd: "&&", OpOr: "||", OpBitAnd: "&", OpBitOr: "|", OpXor: "^",
	OpShl: "<<", OpShr: ">>",
}

func (op BinaryOp) String() string { return binaryOpNames[op] }

// UnaryExpr is `op expr`.
type UnaryExpr struct {
	Base
	Op   UnaryOp
	Expr Expr
}

func (u *UnaryExpr) exprNode() {}

type UnaryOp int

const (
	OpNeg UnaryOp = iota
	OpNot
	OpBitNot
)

// TernaryExpr is `cond ? then : else`.
type TernaryExpr struct {
	Base
	Cond Expr
	Then Expr
	Else Expr
}

func (t *TernaryExpr) exprNode() {}

// CallExpr is a function call. ConstArguments is non-nil only for calls to
// const-generic inline functions (`sum[3u32](xs)`).
type CallExpr struct {
	Base
	Callee         Expr
	Arguments      []Expr
	ConstArguments []Expr // may be nil
	// Target is filled in by path resolution when Callee resolves to a
	// global function; ExpectGlobalLocation depends on this being set.
	Target *Location
}

func (c *CallExpr) exprNode() {}

// ExpectGlobalLocation returns the resolved call target. It panics if path
// resolution has not run or the callee did not resolve globally, matching
// spec.md's "expect_global_location() is infallible" invariant for any
// call reached after that pass.
func (c *CallExpr) ExpectGlobalLocation() Location {
	if c.Target == nil {
		panic("ast: ExpectGlobalLocation called before path resolution resolved this call")
	}
	return *c.Target
}

// IntrinsicCallExpr is a call to a built-in cryptographic/ledger primitive
// (BHP256::hash, Poseidon2::hash, ChaCha::rand_u32, self.caller, ...) that
// is resolved against the seeded intrinsic table rather than user symbols.
// See SPEC_FULL.md "Supplemented features" #2 and #3.
type IntrinsicCallExpr struct {
	Base
	Name      string // fully-qualified intrinsic name, e.g. "BHP256::hash"
	Arguments []Expr
}

func (i *IntrinsicCallExpr) exprNode() {}

// CastExpr is `expr as T`.
type CastExpr struct {
	Base
	Expr Expr
	Type TypeExpr
}

func (c *CastExpr) exprNode() {}

// ArrayAccessExpr is `arr[index]`.
type ArrayAccessExpr struct {
	Base
	Array Expr
	Index Expr
}

func (a *ArrayAccessExpr) exprNode() {}

// TupleAccessExpr is `tup.0`.
type TupleAccessExpr struct {
	Base
	Tuple Expr
	Index int
}

func (t *TupleAccessExpr) exprNode() {}

// MemberAccessExpr is `s.field`.
type MemberAccessExpr struct {
	Base
	Receiver Expr
	Member   session.Symbol
}

func (m *MemberAccessExpr) exprNode() {}

// StructLit is `Point { x: 1field, y: 2field }`.
type StructLit struct {
	Base
	Name    session.Symbol
	Fields  []StructLitField
	Program *session.Symbol // set if an external program's record/struct
}

type StructLitField struct {
	Name  session.Symbol
	Value Expr
}

func (s *StructLit) exprNode() {}

// TupleLit is `(a, b, c)`.
type TupleLit struct {
	Base
	Elements []Expr
}

func (t *TupleLit) exprNode() {}

// ArrayLit is `[a, b, c]`.
type ArrayLit struct {
	Base
	Elements []Expr
}

func (a *ArrayLit) exprNode() {}

// UnitExpr is the empty tuple `()`.
type UnitExpr struct {
	Base
}

func (u *UnitExpr) exprNode() {}

func (l *Literal) String() string { return l.Value + l.Subtype }
func (p *PathExpr) String() string {
	s := ""
	for i, seg := range p.Segments {
		if i > 0 {
			s += "::"
		}
		s += session.Resolve(seg)
	}
	return s
}
func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", nodeStr(b.Left), b.Op, nodeStr(b.Right))
}
func (u *UnaryExpr) String() string { return fmt.Sprintf("(%s%s)", unaryOpStr(u.Op), nodeStr(u.Expr)) }
func (t *TernaryExpr) String() string {
	return fmt.Sprintf("(%s ? %s : %s)", nodeStr(t.Cond), nodeStr(t.Then), nodeStr(t.Else))
}
func (c *CallExpr) String() string          { return fmt.Sprintf("%s(...)", nodeStr(c.Callee)) }
func (i *IntrinsicCallExpr) String() string { return i.Name + "(...)" }
func (c *CastExpr) String() string          { return fmt.Sprintf("(%s as %s)", nodeStr(c.Expr), c.Type) }
func (a *ArrayAccessExpr) String() string   { return fmt.Sprintf("%s[...]", nodeStr(a.Array)) }
func (t *TupleAccessExpr) String() string   { return fmt.Sprintf("%s.%d", nodeStr(t.Tuple), t.Index) }
func (m *MemberAccessExpr) String() string {
	return fmt.Sprintf("%s.%s", nodeStr(m.Receiver), session.Resolve(m.Member))
}
func (s *StructLit) String() string { return session.Resolve(s.Name) + " { ... }" }
func (t *TupleLit) String() string  { return "(...)" }
func (a *ArrayLit) String() string  { return "[...]" }
func (u *UnitExpr) String() string  { return "()" }

func nodeStr(e Expr) string {
	if s, ok := e.(fmt.Stringer); ok {
		return s.String()
	}
	return "<expr>"
}

func unaryOpStr(op UnaryOp) string {
	switch op {
	case OpNeg:
		return "-"
	case OpNot:
		return "!"
	case OpBitNot:
		return "~"
	default:
		return "?"
	}
}
