package interop_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/interop"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/types"
)

func TestToSnakeCase(t *testing.T) {
	cases := map[string]string{
		"toString": "to_string",
		"bump_ref": "bump__ref",
		"len":      "len",
		"isEmpty":  "is_empty",
	}
	for in, want := range cases {
		assert.Equal(t, want, interop.ToSnakeCase(in), "ToSnakeCase(%s)", in)
	}
}

func TestRegistry_PriorityOrder(t *testing.T) {
	reg := interop.NewRegistry()
	reg.Register(interop.NewBuiltinQuerier())
	qs := reg.Queriers()
	require.Len(t, qs, 1)
	assert.Equal(t, "builtin", qs[0].Name())
}

func TestResolve_BuiltinPrimitiveAbs(t *testing.T) {
	reg := interop.NewRegistry()
	reg.Register(interop.NewBuiltinQuerier())

	sig, err := reg.Resolve(context.Background(), "std", types.RTI64, "abs")
	require.NoError(t, err)
	assert.Equal(t, interop.RustTypePath("i64"), sig.ReturnType)
}

func TestResolve_CloneOnRefReturnsValueType(t *testing.T) {
	reg := interop.NewRegistry()
	reg.Register(interop.NewBuiltinQuerier())

	receiver := types.RTRef("", types.RTString)
	sig, err := reg.Resolve(context.Background(), "std", receiver, "clone")
	require.NoError(t, err)
	assert.Equal(t, interop.RustTypePath("String"), sig.ReturnType, "Clone on &T must return T, not &T")
}

func TestResolve_MethodNotFound(t *testing.T) {
	reg := interop.NewRegistry()
	reg.Register(interop.NewBuiltinQuerier())

	_, err := reg.Resolve(context.Background(), "std", types.RTBool, "frobnicate")
	require.Error(t, err)
	assert.ErrorIs(t, err, interop.ErrMethodNotFound)
}

func TestRegistry_FallsThroughOnError(t *testing.T) {
	reg := interop.NewRegistry()
	reg.Register(&failingQuerier{name: "flaky", priority: 200})
	reg.Register(interop.NewBuiltinQuerier())

	info, err := reg.CrateInfo(context.Background(), "std")
	require.NoError(t, err)
	assert.Equal(t, "std", info.Crate)
}

type failingQuerier struct {
	name     string
	priority int
}

func (f *failingQuerier) Name() string                      { return f.name }
func (f *failingQuerier) Priority() int                     { return f.priority }
func (f *failingQuerier) SupportsCrate(name string) bool    { return true }
func (f *failingQuerier) QueryCrate(ctx context.Context, name string) (*interop.CrateInfo, error) {
	return nil, assertErr
}

var assertErr = assertError("querier unavailable")

type assertError string

func (e assertError) Error() string { return string(e) }
