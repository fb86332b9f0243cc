package codegen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/fixture"
)

// TestFibonacciCompilesAndRuns exercises spec.md §8 scenario S1 end to end:
// generated Rust for a bump-free recursive function actually compiles and
// produces the expected result. Skipped when rustc isn't on PATH, since
// this is the one test in the module that shells out to a real toolchain.
func TestFibonacciCompilesAndRuns(t *testing.T) {
	if !fixture.Available() {
		t.Skip("rustc not available on PATH")
	}

	src := `fun fibonacci(n: I64): I64 {
    if n <= 1 { return n }
    return fibonacci(n - 1) + fibonacci(n - 2)
}
fun main() { val result: I64 = fibonacci(10); println(result) }
`
	rust := generate(t, src, false)

	ctx := context.Background()
	result, err := fixture.Compile(ctx, rust)
	require.NoError(t, err)

	out, err := fixture.Run(ctx, result.BinaryPath)
	require.NoError(t, err)
	require.Equal(t, "55\n", out)
}
