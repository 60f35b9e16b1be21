package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ProvableHQ/leo-sub007/internal/ast"
	"github.com/ProvableHQ/leo-sub007/internal/session"
	"github.com/ProvableHQ/leo-sub007/internal/types"
)

func TestEqual_Primitives(t *testing.T) {
	assert.True(t, types.Int(types.U32).Equal(types.Int(types.U32)), "u32 should equal u32")
	assert.False(t, types.Int(types.U32).Equal(types.Int(types.I32)), "u32 should not equal i32: same width, different signedness")
	assert.False(t, types.Bool().Equal(types.Field()), "bool should not equal field")
}

func TestEqual_Array(t *testing.T) {
	a := types.Array(types.Int(types.U8), 3)
	b := types.Array(types.Int(types.U8), 3)
	c := types.Array(types.Int(types.U8), 4)
	assert.True(t, a.Equal(b), "arrays of same element and length should be equal")
	assert.False(t, a.Equal(c), "arrays of different lengths should not be equal")
}

func TestEqual_ArrayWithoutSizeNeverEqualsConcrete(t *testing.T) {
	unresolved := types.Array(types.Int(types.U8), 0)
	concrete := types.Array(types.Int(types.U8), 5)
	assert.False(t, unresolved.Equal(concrete), "an unresolved array length (0) must never Equal a concrete length")
}

func TestEqual_Tuple(t *testing.T) {
	a := types.Tuple(types.Bool(), types.Int(types.U32))
	b := types.Tuple(types.Bool(), types.Int(types.U32))
	c := types.Tuple(types.Bool(), types.Int(types.U64))
	assert.True(t, a.Equal(b), "identical tuples should be equal")
	assert.False(t, a.Equal(c), "tuples with differing element types should not be equal")
}

func TestEqual_StructByName(t *testing.T) {
	session.CreateSessionIfNotSetThen(func() {
		foo := session.Intern("Foo")
		bar := session.Intern("Bar")
		assert.True(t, types.Struct(foo).Equal(types.Struct(foo)), "structs with the same name should be equal")
		assert.False(t, types.Struct(foo).Equal(types.Struct(bar)), "structs with different names should not be equal")
		assert.False(t, types.Struct(foo).Equal(types.Record(foo)), "a struct and record sharing a name are different kinds")
	})
}

func TestString_RoundTripsReadably(t *testing.T) {
	tests := []struct {
		ty   *types.Type
		want string
	}{
		{types.Int(types.U32), "u32"},
		{types.Int(types.I8), "i8"},
		{types.Bool(), "bool"},
		{types.Array(types.Int(types.U8), 3), "[u8; 3]"},
		{types.Tuple(types.Bool(), types.Field()), "(bool, field)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.ty.String())
	}
}

func TestIsNumeric(t *testing.T) {
	numeric := []*types.Type{types.Int(types.U32), types.Field(), types.Group(), types.Scalar()}
	for _, ty := range numeric {
		assert.True(t, ty.IsNumeric(), "%s should be numeric", ty)
	}
	nonNumeric := []*types.Type{types.Bool(), types.Address(), types.StringTy()}
	for _, ty := range nonNumeric {
		assert.False(t, ty.IsNumeric(), "%s should not be numeric", ty)
	}
}

func TestAssignable_ExactMatch(t *testing.T) {
	assert.True(t, types.Assignable(types.Int(types.U32), types.Int(types.U32)), "a type should be assignable to itself")
	assert.False(t, types.Assignable(types.Int(types.U32), types.Int(types.U64)), "u64 should not be assignable to u32: Leo has no implicit widening")
}

func TestAssignable_ArrayWithoutSizeAcceptsAnyLength(t *testing.T) {
	dst := types.Array(types.Int(types.U8), 0)
	src := types.Array(types.Int(types.U8), 7)
	assert.True(t, types.Assignable(dst, src), "an ArrayWithoutSize parameter should accept any concrete length")
}

func TestAssignable_NilIsNeverAssignable(t *testing.T) {
	assert.False(t, types.Assignable(nil, types.Bool()), "nil types should never be assignable")
	assert.False(t, types.Assignable(types.Bool(), nil), "nil types should never be assignable")
}

func TestResolveArrayWithoutSize_BindsConcreteLength(t *testing.T) {
	dst := types.Array(types.Int(types.U8), 0)
	src := types.Array(types.Int(types.U8), 9)
	resolved := types.ResolveArrayWithoutSize(dst, src)
	require.Equal(t, uint32(9), resolved.Len)
	assert.True(t, resolved.Elem.Equal(types.Int(types.U8)), "resolved array should keep its element type")
}

func TestResolveArrayWithoutSize_NoOpWhenAlreadyConcrete(t *testing.T) {
	dst := types.Array(types.Int(types.U8), 3)
	src := types.Array(types.Int(types.U8), 9)
	got := types.ResolveArrayWithoutSize(dst, src)
	require.Equal(t, uint32(3), got.Len)
}

func TestTable_SetGetMustGet(t *testing.T) {
	tbl := types.NewTable()
	nb := ast.NewNodeBuilder()
	id := nb.NextID()

	_, ok := tbl.Get(id)
	require.False(t, ok, "expected a miss on an empty table")

	tbl.Set(id, types.Bool())
	got, ok := tbl.Get(id)
	require.True(t, ok)
	assert.True(t, got.Equal(types.Bool()))
	assert.Equal(t, 1, tbl.Len())

	assert.True(t, tbl.MustGet(id).Equal(types.Bool()))
}

func TestTable_MustGetPanicsOnMiss(t *testing.T) {
	defer func() {
		assert.NotNil(t, recover(), "expected MustGet to panic on a miss, matching the totality invariant")
	}()
	tbl := types.NewTable()
	nb := ast.NewNodeBuilder()
	tbl.MustGet(nb.NextID())
}
