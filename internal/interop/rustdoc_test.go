package interop_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/interop"
)

const sampleRustdocJSON = `{
  "index": {
    "0:1": {"name": "Widget", "kind": "struct"},
    "0:2": {"name": "new", "kind": "function", "parent": "Widget"}
  }
}`

func TestRustdocQuerier_CachesAcrossCalls(t *testing.T) {
	q, err := interop.NewRustdocQuerier(t.TempDir(), time.Hour)
	require.NoError(t, err)

	calls := 0
	q.RunRustdoc = func(ctx context.Context, crate string) ([]byte, error) {
		calls++
		return []byte(sampleRustdocJSON), nil
	}

	info1, err := q.QueryCrate(context.Background(), "widgets")
	require.NoError(t, err)
	require.Contains(t, info1.Types, interop.RustTypePath("Widget"))

	info2, err := q.QueryCrate(context.Background(), "widgets")
	require.NoError(t, err)
	require.Contains(t, info2.Types, interop.RustTypePath("Widget"))

	require.Equal(t, 1, calls, "second call within the TTL must be served from the on-disk cache without re-invoking rustdoc")
}

func TestRustdocQuerier_RejectsInvalidSchema(t *testing.T) {
	q, err := interop.NewRustdocQuerier(t.TempDir(), time.Hour)
	require.NoError(t, err)
	q.RunRustdoc = func(ctx context.Context, crate string) ([]byte, error) {
		return []byte(`{"not_index": true}`), nil
	}
	_, err = q.QueryCrate(context.Background(), "widgets")
	require.Error(t, err)
}
