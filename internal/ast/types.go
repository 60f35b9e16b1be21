package ast

import (
	"fmt"
	"strings"

	"github.com/ProvableHQ/leo-sub007/internal/session"
)

// TypeExpr is the surface syntax for a type annotation, as written by the
// programmer or synthesized by a pass. It is resolved to a semantic
// internal/types.Type by the type checker; TypeExpr itself never changes
// shape after parsing other than the identity-preserving rewrites passes
// perform when duplicating subtrees (loop unrolling, inlining, ...).
type TypeExpr interface {
	Node
	typeExprNode()
	String() string
}

// NamedType covers every primitive and composite-by-name type: Address,
// Boolean, Field, Group, Char, Scalar, Signature, String, the integer
// family i8..u128, and user struct/record names.
type NamedType struct {
	Base
	Name session.Symbol
	// Program is set when the name is qualified to an external program's
	// composite, e.g. `other.aleo/Token`.
	Program *session.Symbol
}

func (n *NamedType) typeExprNode() {}
func (n *NamedType) String() string {
	s := session.Resolve(n.Name)
	if n.Program != nil {
		s = session.Resolve(*n.Program) + "/" + s
	}
	return s
}

// ArrayType is `[T; N]` (fixed size) or `[T]` (ArrayWithoutSize, legal
// only in an external-stub signature position before being matched against
// a concrete caller-supplied length).
type ArrayType struct {
	Base
	Element TypeExpr
	Len     Expr // nil for ArrayWithoutSize
}

func (a *ArrayType) typeExprNode() {}
func (a *ArrayType) String() string {
	if a.Len == nil {
		return fmt.Sprintf("[%s]", a.Element)
	}
	return fmt.Sprintf("[%s; %s]", a.Element, nodeStr(a.Len))
}

// TupleType is `(T1, T2, ...)`.
type TupleType struct {
	Base
	Elements []TypeExpr
}

func (t *TupleType) typeExprNode() {}
func (t *TupleType) String() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// MappingType is `mapping KeyType => ValueType`'s type-position form, used
// by the type checker when typing a mapping's get/set intrinsics.
type MappingType struct {
	Base
	Key   TypeExpr
	Value TypeExpr
}

func (m *MappingType) typeExprNode() {}
func (m *MappingType) String() string {
	return fmt.Sprintf("mapping(%s => %s)", m.Key, m.Value)
}

// FutureType is `Future<T1, T2, ...>`, the return type of an async
// transition; the type parameters are the finalizer's input types.
type FutureType struct {
	Base
	Inputs []TypeExpr
}

func (f *FutureType) typeExprNode() {}
func (f *FutureType) String() string {
	parts := make([]string, len(f.Inputs))
	for i, e := range f.Inputs {
		parts[i] = e.String()
	}
	return "Future<" + strings.Join(parts, ", ") + ">"
}

// UnitType is `()` used as a type.
type UnitType struct {
	Base
}

func (u *UnitType) typeExprNode() {}
func (u *UnitType) String() string { return "()" }
