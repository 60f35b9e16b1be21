package types

// PartialType is an expectation pushed down during bidirectional
// inference: a shape the checked expression must fit, with holes where
// the context doesn't pin a subcomponent yet. The checker matches a
// synthesized Type against a PartialType instead of another Type
// whenever the context is only partially known — an unsuffixed integer
// literal against a declared integer type, an array literal against a
// declared element type with the length still open, a tuple pattern in
// an indexing position that tolerates extra elements.
type PartialType struct {
	Kind PartialKind

	// PartialInteger: Contextual names the width to fix an unsuffixed
	// literal to; nil leaves the width to the expression itself.
	Contextual *IntWidth

	// PartialArray: Elem is the expected element shape (may itself be
	// partial); Len 0 leaves the length open.
	Elem *PartialType
	Len  uint32

	// PartialTuple: expected element shapes. AllowExtra permits the
	// checked tuple to have more elements than the pattern, the rule
	// tuple-indexing contexts need.
	Elements   []*PartialType
	AllowExtra bool

	// PartialExact: the context is fully known after all.
	Exact *Type
}

type PartialKind int

const (
	PartialInteger PartialKind = iota
	PartialArray
	PartialTuple
	PartialExact
)

// ExpectInteger builds the expectation for "some integer, preferring w
// when the expression doesn't say". Pass nil for "any integer".
func ExpectInteger(w *IntWidth) *PartialType {
	return &PartialType{Kind: PartialInteger, Contextual: w}
}

// ExpectExact wraps a fully known Type as a PartialType so one code path
// can handle both.
func ExpectExact(t *Type) *PartialType {
	return &PartialType{Kind: PartialExact, Exact: t}
}

// ExpectArray builds an array expectation with an optionally-open length.
func ExpectArray(elem *PartialType, length uint32) *PartialType {
	return &PartialType{Kind: PartialArray, Elem: elem, Len: length}
}

// ExpectTuple builds a tuple expectation; allowExtra tolerates a longer
// checked tuple, as tuple-access contexts require.
func ExpectTuple(elems []*PartialType, allowExtra bool) *PartialType {
	return &PartialType{Kind: PartialTuple, Elements: elems, AllowExtra: allowExtra}
}

// Partialize turns a resolved Type into the loosest PartialType that
// still pins every component the Type names, so a declared annotation
// can be pushed down into subexpressions.
func Partialize(t *Type) *PartialType {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case KindInt:
		w := t.Width
		return ExpectInteger(&w)
	case KindArray:
		return ExpectArray(Partialize(t.Elem), t.Len)
	case KindTuple:
		elems := make([]*PartialType, len(t.Elements))
		for i, e := range t.Elements {
			elems[i] = Partialize(e)
		}
		return ExpectTuple(elems, false)
	default:
		return ExpectExact(t)
	}
}

// Match reports whether a synthesized type fits the expectation, and
// returns the resolved type with any hole the expectation can fill
// filled — the one inference rule Leo needs: an unspecified integer
// width is fixed to the contextual width.
func (p *PartialType) Match(got *Type) (*Type, bool) {
	if p == nil {
		return got, true
	}
	if got == nil {
		return nil, false
	}
	switch p.Kind {
	case PartialExact:
		if Assignable(p.Exact, got) {
			return got, true
		}
		return nil, false
	case PartialInteger:
		if got.Kind != KindInt {
			return nil, false
		}
		if p.Contextual != nil && got.Width == (IntWidth{}) {
			return Int(*p.Contextual), true
		}
		if p.Contextual != nil && got.Width != *p.Contextual {
			return nil, false
		}
		return got, true
	case PartialArray:
		if got.Kind != KindArray {
			return nil, false
		}
		if p.Len != 0 && got.Len != 0 && p.Len != got.Len {
			return nil, false
		}
		elem, ok := p.Elem.Match(got.Elem)
		if !ok {
			return nil, false
		}
		length := got.Len
		if length == 0 {
			length = p.Len
		}
		return Array(elem, length), true
	case PartialTuple:
		if got.Kind != KindTuple {
			return nil, false
		}
		if len(got.Elements) < len(p.Elements) {
			return nil, false
		}
		if !p.AllowExtra && len(got.Elements) > len(p.Elements) {
			return nil, false
		}
		out := make([]*Type, len(got.Elements))
		copy(out, got.Elements)
		for i, pe := range p.Elements {
			e, ok := pe.Match(got.Elements[i])
			if !ok {
				return nil, false
			}
			out[i] = e
		}
		return Tuple(out...), true
	default:
		return nil, false
	}
}
