package types_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/types"
)

func customBorrowed(names ...string) types.BorrowPredicate {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(name string) bool { return set[name] }
}

func TestToRust_Ground(t *testing.T) {
	cases := []struct {
		in   types.VeltranoType
		want types.RustType
	}{
		{types.TI64, types.RTI64},
		{types.TBool, types.RTBool},
		{types.TUnit, types.RTUnit},
		{types.TNothing, types.RTNever},
		{types.TStr, types.RTRef("", types.RTStr)},
		{types.TString, types.RTRef("", types.RTString)},
	}
	for _, c := range cases {
		got, err := types.ToRust(c.in, types.NoCustomBorrows)
		require.NoError(t, err)
		assert.True(t, got.Equal(c.want), "ToRust(%s) = %s, want %s", c.in, got, c.want)
	}
}

func TestToRust_BareBuiltinWrapsInReference(t *testing.T) {
	// Bare Vec<I64> (no outer Own) is a reference to an owned Vec.
	got, err := types.ToRust(types.TVec(types.TI64), types.NoCustomBorrows)
	require.NoError(t, err)
	want := types.RTRef("", types.RTVec(types.RTI64))
	assert.True(t, got.Equal(want), "got %s want %s", got, want)
}

func TestToRust_OwnForcesOwnedForm(t *testing.T) {
	got, err := types.ToRust(types.TOwn(types.TVec(types.TI64)), types.NoCustomBorrows)
	require.NoError(t, err)
	want := types.RTVec(types.RTI64)
	assert.True(t, got.Equal(want), "got %s want %s", got, want)
}

func TestToRust_OwnOwnIsError(t *testing.T) {
	_, err := types.ToRust(types.TOwn(types.TOwn(types.TString)), types.NoCustomBorrows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redundant Own")
}

func TestToRust_OwnMutRefIsError(t *testing.T) {
	_, err := types.ToRust(types.TOwn(types.TMutRef(types.TI64)), types.NoCustomBorrows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be additionally owned")
}

func TestToRust_OwnOfNonBorrowedIsError(t *testing.T) {
	_, err := types.ToRust(types.TOwn(types.TI64), types.NoCustomBorrows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not naturally borrowed")
}

func TestToRust_RefCancellation(t *testing.T) {
	// Ref<String> must not double-reference: String already lowers to &String.
	got, err := types.ToRust(types.TRef(types.TString), types.NoCustomBorrows)
	require.NoError(t, err)
	want := types.RTRef("", types.RTString)
	assert.True(t, got.Equal(want), "got %s want %s", got, want)
	assert.Equal(t, 1, refDepth(got), "Ref<String> produced more than one reference layer")
}

func refDepth(r types.RustType) int {
	if !r.IsReference() {
		return 0
	}
	return 1 + refDepth(*r.Inner)
}

func TestToRust_RefOverValueTypeAddsOneReference(t *testing.T) {
	got, err := types.ToRust(types.TRef(types.TI64), types.NoCustomBorrows)
	require.NoError(t, err)
	want := types.RTRef("", types.RTI64)
	assert.True(t, got.Equal(want), "got %s want %s", got, want)
}

func TestToRust_CustomNaturallyBorrowed(t *testing.T) {
	borrowed := customBorrowed("Token")
	got, err := types.ToRust(types.TCustom("Token"), borrowed)
	require.NoError(t, err)
	want := types.RTRef("", types.RTCustom("Token"))
	assert.True(t, got.Equal(want), "got %s want %s", got, want)
}

func TestToRust_CustomNotBorrowed(t *testing.T) {
	got, err := types.ToRust(types.TCustom("Point"), types.NoCustomBorrows)
	require.NoError(t, err)
	want := types.RTCustom("Point")
	assert.True(t, got.Equal(want), "got %s want %s", got, want)
}

func TestToRust_Array(t *testing.T) {
	got, err := types.ToRust(types.TArray(types.TI32, 4), types.NoCustomBorrows)
	require.NoError(t, err)
	want := types.RTArray(types.RTI32, 4)
	assert.True(t, got.Equal(want), "got %s want %s", got, want)
	assert.Equal(t, "[i32; 4]", got.String())
}

func TestToRust_Slice_NoImplicitReference(t *testing.T) {
	got, err := types.ToRust(types.TSlice(types.TI64), types.NoCustomBorrows)
	require.NoError(t, err)
	want := types.RTSlice(types.RTI64)
	assert.True(t, got.Equal(want), "got %s want %s", got, want)
}

// Round trip: every VeltranoType in this table should recover its original
// shape (or its canonical bare/Own spelling) after ToRust then FromRust.
func TestRoundTrip(t *testing.T) {
	borrowed := customBorrowed("Token")
	cases := []types.VeltranoType{
		types.TI64,
		types.TBool,
		types.TUnit,
		types.TNothing,
		types.TString,
		types.TStr,
		types.TVec(types.TI64),
		types.TOwn(types.TVec(types.TI64)),
		types.TOption(types.TI32),
		types.TResult(types.TI64, types.TString),
		types.TSlice(types.TI64),
		types.TArray(types.TI32, 3),
		types.TRef(types.TI64),
		types.TMutRef(types.TI64),
		types.TCustom("Token"),
		types.TCustom("Point"),
	}
	for _, v := range cases {
		r, err := types.ToRust(v, borrowed)
		require.NoError(t, err, "ToRust(%s)", v)
		back, err := types.FromRust(r, borrowed)
		require.NoError(t, err, "FromRust(%s)", r)
		if diff := cmp.Diff(v.String(), back.String()); diff != "" {
			t.Errorf("round trip mismatch for %s (-want +got):\n%s", v, diff)
		}
	}
}

func TestFromRust_RefOverCustomBorrowedCancels(t *testing.T) {
	borrowed := customBorrowed("Token")
	got, err := types.FromRust(types.RTRef("", types.RTCustom("Token")), borrowed)
	require.NoError(t, err)
	assert.True(t, got.Equal(types.TCustom("Token")), "got %s", got)
}

func TestFromRust_RefOverCustomNotBorrowedIsRef(t *testing.T) {
	got, err := types.FromRust(types.RTRef("", types.RTCustom("Point")), types.NoCustomBorrows)
	require.NoError(t, err)
	assert.True(t, got.Equal(types.TRef(types.TCustom("Point"))), "got %s", got)
}

func TestFromRust_Generic(t *testing.T) {
	got, err := types.FromRust(types.RTGeneric("T"), types.NoCustomBorrows)
	require.NoError(t, err)
	assert.True(t, got.Equal(types.TCustom("$T")), "got %s", got)
}
