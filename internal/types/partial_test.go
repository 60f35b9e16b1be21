package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ProvableHQ/leo-sub007/internal/types"
)

func TestMatch_ContextualIntegerFixesOpenWidth(t *testing.T) {
	open := &types.Type{Kind: types.KindInt} // unsuffixed literal, width not known yet
	w := types.U8

	got, ok := types.ExpectInteger(&w).Match(open)
	require.True(t, ok, "an open-width integer should match any integer expectation")
	assert.True(t, got.Equal(types.Int(types.U8)), "expected the contextual width to be filled in, got %s", got)
}

func TestMatch_ContextualIntegerRejectsWrongWidth(t *testing.T) {
	w := types.U8
	_, ok := types.ExpectInteger(&w).Match(types.Int(types.U32))
	assert.False(t, ok, "a concrete u32 should not match a u8 expectation")
}

func TestMatch_IntegerRejectsNonInteger(t *testing.T) {
	_, ok := types.ExpectInteger(nil).Match(types.Bool())
	assert.False(t, ok, "bool should never match an integer expectation")
}

func TestMatch_TupleAllowExtraToleratesLongerTuple(t *testing.T) {
	pattern := types.ExpectTuple([]*types.PartialType{types.ExpectExact(types.Bool())}, true)
	got3 := types.Tuple(types.Bool(), types.Field(), types.Group())

	resolved, ok := pattern.Match(got3)
	require.True(t, ok, "a tuple-indexing pattern should tolerate extra elements")
	assert.Len(t, resolved.Elements, 3, "the resolved tuple keeps every checked element")

	strict := types.ExpectTuple([]*types.PartialType{types.ExpectExact(types.Bool())}, false)
	_, ok = strict.Match(got3)
	assert.False(t, ok, "without AllowExtra a longer tuple must not match")
}

func TestMatch_ArrayOpenLengthBindsFromChecked(t *testing.T) {
	pattern := types.ExpectArray(types.ExpectExact(types.Field()), 0)
	resolved, ok := pattern.Match(types.Array(types.Field(), 4))
	require.True(t, ok)
	assert.Equal(t, uint32(4), resolved.Len, "the checked array's concrete length should survive the match")
}

func TestPartialize_RoundTripsDeclaredAnnotations(t *testing.T) {
	declared := types.Tuple(types.Int(types.U32), types.Bool())
	synthesized := types.Tuple(types.Int(types.U32), types.Bool())

	resolved, ok := types.Partialize(declared).Match(synthesized)
	require.True(t, ok, "a synthesized type identical to its declaration should always match")
	assert.True(t, resolved.Equal(declared))

	_, ok = types.Partialize(declared).Match(types.Tuple(types.Bool(), types.Bool()))
	assert.False(t, ok, "element mismatch must be rejected")
}
