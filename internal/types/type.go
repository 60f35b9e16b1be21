// Package types is the semantic type lattice the type checker
// (internal/passes/typecheck) resolves every ast.TypeExpr and ast.Expr
// into, filling the compile state's Type Table (NodeID -> Type, spec.md
// §4.D "totality invariant": every expression node has an entry once type
// checking completes without error).
//
// This is a deliberately flat sum type: Leo has no row polymorphism, type
// classes, or higher-kinded generics, so unlike the teacher's
// internal/types package (which carries a unification-based
// Hindley-Milner engine with dictionaries and instances for AILANG's
// overloaded operators) this package is a closed enum plus simple
// structural equality. See DESIGN.md for what was dropped and why.
package types

import (
	"fmt"
	"strings"

	"github.com/ProvableHQ/leo-sub007/internal/session"
)

// Kind enumerates Leo's closed set of type shapes.
type Kind int

const (
	KindBool Kind = iota
	KindField
	KindGroup
	KindScalar
	KindAddress
	KindSignature
	KindChar
	KindString
	KindInt // IntWidth distinguishes i8..u128
	KindArray
	KindTuple
	KindStruct
	KindRecord
	KindMapping
	KindFuture
	KindUnit
	KindExternal // an unresolved external-program reference pending a stub
)

// IntWidth is the bit width and signedness of an integer type.
type IntWidth struct {
	Bits   int
	Signed bool
}

var (
	I8   = IntWidth{8, true}
	I16  = IntWidth{16, true}
	I32  = IntWidth{32, true}
	I64  = IntWidth{64, true}
	I128 = IntWidth{128, true}
	U8   = IntWidth{8, false}
	U16  = IntWidth{16, false}
	U32  = IntWidth{32, false}
	U64  = IntWidth{64, false}
	U128 = IntWidth{128, false}
)

func (w IntWidth) String() string {
	if w.Signed {
		return fmt.Sprintf("i%d", w.Bits)
	}
	return fmt.Sprintf("u%d", w.Bits)
}

// Type is the resolved, ground type of an expression or declaration. It
// is a pure value type: two Types naming the same shape compare equal
// with Equal regardless of allocation identity.
type Type struct {
	Kind Kind

	// KindInt
	Width IntWidth

	// KindArray
	Elem *Type
	Len  uint32 // 0 means "not yet resolved" (ArrayWithoutSize before matching)

	// KindTuple
	Elements []*Type

	// KindStruct / KindRecord / KindExternal
	Name    session.Symbol
	Program session.Symbol // set only when KindExternal or an external-qualified composite

	// KindMapping
	Key   *Type
	Value *Type

	// KindFuture
	Inputs []*Type
}

func Bool() *Type      { return &Type{Kind: KindBool} }
func Field() *Type      { return &Type{Kind: KindField} }
func Group() *Type      { return &Type{Kind: KindGroup} }
func Scalar() *Type     { return &Type{Kind: KindScalar} }
func Address() *Type    { return &Type{Kind: KindAddress} }
func Signature() *Type  { return &Type{Kind: KindSignature} }
func Char() *Type       { return &Type{Kind: KindChar} }
func StringTy() *Type   { return &Type{Kind: KindString} }
func Unit() *Type       { return &Type{Kind: KindUnit} }
func Int(w IntWidth) *Type { return &Type{Kind: KindInt, Width: w} }

func Array(elem *Type, length uint32) *Type {
	return &Type{Kind: KindArray, Elem: elem, Len: length}
}

func Tuple(elems ...*Type) *Type {
	return &Type{Kind: KindTuple, Elements: elems}
}

func Struct(name session.Symbol) *Type {
	return &Type{Kind: KindStruct, Name: name}
}

func Record(name session.Symbol) *Type {
	return &Type{Kind: KindRecord, Name: name}
}

func Mapping(key, value *Type) *Type {
	return &Type{Kind: KindMapping, Key: key, Value: value}
}

func Future(inputs ...*Type) *Type {
	return &Type{Kind: KindFuture, Inputs: inputs}
}

// Equal reports structural equality. Array length 0 ("unresolved") never
// equals a concrete length — callers must resolve ArrayWithoutSize before
// comparing, matching spec.md's external-stub array-length matching rule.
func (t *Type) Equal(o *Type) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KindInt:
		return t.Width == o.Width
	case KindArray:
		return t.Len == o.Len && t.Elem.Equal(o.Elem)
	case KindTuple:
		if len(t.Elements) != len(o.Elements) {
			return false
		}
		for i := range t.Elements {
			if !t.Elements[i].Equal(o.Elements[i]) {
				return false
			}
		}
		return true
	case KindStruct, KindRecord:
		return t.Name == o.Name
	case KindExternal:
		return t.Name == o.Name && t.Program == o.Program
	case KindMapping:
		return t.Key.Equal(o.Key) && t.Value.Equal(o.Value)
	case KindFuture:
		if len(t.Inputs) != len(o.Inputs) {
			return false
		}
		for i := range t.Inputs {
			if !t.Inputs[i].Equal(o.Inputs[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func (t *Type) String() string {
	if t == nil {
		return "<nil type>"
	}
	switch t.Kind {
	case KindBool:
		return "bool"
	case KindField:
		return "field"
	case KindGroup:
		return "group"
	case KindScalar:
		return "scalar"
	case KindAddress:
		return "address"
	case KindSignature:
		return "signature"
	case KindChar:
		return "char"
	case KindString:
		return "string"
	case KindUnit:
		return "()"
	case KindInt:
		return t.Width.String()
	case KindArray:
		if t.Len == 0 {
			return fmt.Sprintf("[%s]", t.Elem)
		}
		return fmt.Sprintf("[%s; %d]", t.Elem, t.Len)
	case KindTuple:
		parts := make([]string, len(t.Elements))
		for i, e := range t.Elements {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KindStruct, KindRecord, KindExternal:
		return session.Resolve(t.Name)
	case KindMapping:
		return fmt.Sprintf("mapping(%s => %s)", t.Key, t.Value)
	case KindFuture:
		parts := make([]string, len(t.Inputs))
		for i, e := range t.Inputs {
			parts[i] = e.String()
		}
		return "Future<" + strings.Join(parts, ", ") + ">"
	default:
		return "<unknown type>"
	}
}

// IsNumeric reports whether arithmetic operators apply to t.
func (t *Type) IsNumeric() bool {
	return t.Kind == KindInt || t.Kind == KindField || t.Kind == KindGroup || t.Kind == KindScalar
}
