package types

// Assignable reports whether a value of type src may be used where dst is
// expected: Leo has no implicit numeric widening, so this is exact
// structural equality except for one rule — an ArrayWithoutSize (Len==0)
// external-stub parameter accepts any concrete length; Assignable records
// no length (spec.md §4.D "array length
// matching against an external stub").
func Assignable(dst, src *Type) bool {
	if dst == nil || src == nil {
		return false
	}
	if dst.Kind == KindArray && src.Kind == KindArray && dst.Len == 0 {
		return Assignable(dst.Elem, src.Elem)
	}
	return dst.Equal(src)
}

// ResolveArrayWithoutSize returns a concrete copy of dst with its length
// taken from src when dst is an ArrayWithoutSize (Len 0); any other dst
// is returned unchanged.
func ResolveArrayWithoutSize(dst, src *Type) *Type {
	if dst.Kind != KindArray || dst.Len != 0 {
		return dst
	}
	return Array(dst.Elem, src.Len)
}
