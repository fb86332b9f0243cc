package checker_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/checker"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/errors"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/interop"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/lexer"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/parser"
)

// check lexes, parses, and type-checks src against a registry seeded with
// the built-in std descriptors, returning the checker's result and
// diagnostics without failing the test — callers assert on diags directly,
// since several scenarios here are specifically about expected errors.
func check(t *testing.T, src string) (*checker.Result, *errors.Collection) {
	t.Helper()
	toks, lexDiags := lexer.New(src, "test.velt", false, nil).Lex()
	require.Zero(t, lexDiags.Len(), "lex diagnostics: %s", lexDiags.Compact())

	prog, parseDiags := parser.New(toks, false, nil).Parse()
	require.Zero(t, parseDiags.Len(), "parse diagnostics: %s", parseDiags.Compact())

	registry := interop.NewRegistry()
	registry.Register(interop.NewBuiltinQuerier())
	c := checker.New(registry, nil)
	return c.Check(prog)
}

func requireNoDiags(t *testing.T, diags *errors.Collection) {
	t.Helper()
	require.Zero(t, diags.Len(), "unexpected diagnostics: %s", diags.Compact())
}

func TestVariableShadowingInNestedScope(t *testing.T) {
	src := `fun main() {
    val x = 1
    if true {
        val x = true
        println(x)
    }
    println(x)
}
`
	_, diags := check(t, src)
	requireNoDiags(t, diags)
}

func TestRustMacroBuiltinsSkipArityChecking(t *testing.T) {
	// builtins/functions.rs registers print/panic/assert/debug_assert as
	// BuiltinFunctionKind::RustMacro alongside println, all excluded from
	// get_function_signatures: none of them carry a checkable signature.
	src := `fun main() {
    val x = 5
    print(x)
    panic("boom")
    assert(x > 0)
    assert(x > 0, "x must be positive")
    debug_assert(x > 0)
}
`
	_, diags := check(t, src)
	requireNoDiags(t, diags)
}

func TestUndefinedVariableOutsideItsScope(t *testing.T) {
	src := `fun main() {
    if true {
        val x = 1
    }
    println(x)
}
`
	_, diags := check(t, src)
	require.NotZero(t, diags.Len())
	require.Equal(t, errors.KindUndefinedVariable, diags.Items()[0].Kind)
}

func TestExplicitConversionRequiredOnMismatchedAssignment(t *testing.T) {
	// spec.md §8 scenario S3: no implicit numeric conversions.
	src := `fun main() {
    val x: I32 = 5
}
`
	_, diags := check(t, src)
	require.NotZero(t, diags.Len())
	require.Equal(t, errors.KindTypeMismatch, diags.Items()[0].Kind)
}

func TestFunctionCallReturnTypeMatchesDeclaredAnnotation(t *testing.T) {
	src := `fun takesI64(n: I64): I64 {
    return n
}
fun main() {
    val x: I64 = takesI64(5)
}
`
	_, diags := check(t, src)
	requireNoDiags(t, diags)
}

func TestCloneOnRefReturnsUnwrappedType(t *testing.T) {
	// spec.md §8 scenario S4: Clone on &T returns T, not &T.
	src := `fun cloneIt(r: Ref<I64>): I64 {
    return r.clone()
}
`
	_, diags := check(t, src)
	requireNoDiags(t, diags)
}

func TestImportErrorReportedAtImportSite(t *testing.T) {
	// spec.md §8 scenario S6: an import error is reported at the import's
	// own span, not deferred to a later call site.
	src := `import I64.noSuchMethod
fun main() {
}
`
	_, diags := check(t, src)
	require.NotZero(t, diags.Len())
	d := diags.Items()[0]
	require.Equal(t, errors.KindInvalidMethodCall, d.Kind)
	require.Equal(t, 1, d.Span.Start.Line)
}

func TestLaterImportShadowsEarlierBoundName(t *testing.T) {
	// spec.md §4.5: later import registration at the same bound name simply
	// overwrites, with no fallback chain consulted.
	src := `import I64.abs as convert
import I64.clone as convert
fun main() {
}
`
	result, diags := check(t, src)
	requireNoDiags(t, diags)
	require.Equal(t, "clone", result.Imports["convert"].Method)
}

func TestImportedCallUsesFirstArgumentAsReceiver(t *testing.T) {
	src := `import I64.abs as absOf
fun main() {
    val x = absOf(-5)
}
`
	_, diags := check(t, src)
	requireNoDiags(t, diags)
}

func TestDataClassConstructionPositionalNamedShorthand(t *testing.T) {
	src := `data class Point(val x: I64, val y: I64)
fun main() {
    val a = Point(1, 2)
    val b = Point(y = 2, x = 1)
    val x = 1
    val y = 2
    val c = Point(.x, .y)
}
`
	_, diags := check(t, src)
	requireNoDiags(t, diags)
}

func TestDataClassConstructionMissingFieldIsError(t *testing.T) {
	src := `data class Point(val x: I64, val y: I64)
fun main() {
    val a = Point(1)
}
`
	_, diags := check(t, src)
	require.NotZero(t, diags.Len())
	require.Equal(t, errors.KindTypeMismatch, diags.Items()[0].Kind)
}

func TestRefOperatorProducesRefType(t *testing.T) {
	src := `fun takeRef(r: Ref<I64>): Ref<I64> {
    return r
}
fun main() {
    val n = 5
    val r = n.ref()
    takeRef(r)
}
`
	_, diags := check(t, src)
	requireNoDiags(t, diags)
}

func TestOwnArgumentRejectedWhereBorrowedParamExpected(t *testing.T) {
	// spec.md §8 scenario S3: Own<String> is not interchangeable with
	// String without an explicit .ref().
	src := `fun takeString(s: String) {
}
fun wrapper(owned: Own<String>) {
    takeString(owned)
}
fun main() {
}
`
	_, diags := check(t, src)
	require.NotZero(t, diags.Len())
	require.Equal(t, errors.KindTypeMismatch, diags.Items()[0].Kind)
}

func TestMutRefOperatorRejectsAlreadyBorrowedReceiver(t *testing.T) {
	src := `fun main() {
    val n = 5
    val r = n.ref()
    val m = r.mutRef()
}
`
	_, diags := check(t, src)
	require.NotZero(t, diags.Len())
	require.Equal(t, errors.KindTypeMismatch, diags.Items()[0].Kind)
}

func TestBumpRefMarksEnclosingFunctionHasBump(t *testing.T) {
	src := `fun allocate(n: I64): Ref<I64> {
    return n.bumpRef()
}
fun main() {
}
`
	result, diags := check(t, src)
	requireNoDiags(t, diags)
	require.True(t, result.BumpFunctions["allocate"])
	require.False(t, result.BumpFunctions["main"])
}

func TestBumpFlagPropagatesThroughCallGraph(t *testing.T) {
	src := `fun allocate(n: I64): Ref<I64> {
    return n.bumpRef()
}
fun wrapper(n: I64): Ref<I64> {
    return allocate(n)
}
fun unrelated(n: I64): I64 {
    return n
}
fun main() {
}
`
	result, diags := check(t, src)
	requireNoDiags(t, diags)
	require.True(t, result.BumpFunctions["allocate"])
	require.True(t, result.BumpFunctions["wrapper"])
	require.False(t, result.BumpFunctions["unrelated"])
}

func TestUndefinedFunctionSuggestsFuzzyMatch(t *testing.T) {
	src := `fun fibonacci(n: I64): I64 {
    return n
}
fun main() {
    fibonaci(1)
}
`
	_, diags := check(t, src)
	require.NotZero(t, diags.Len())
	d := diags.Items()[0]
	require.Equal(t, errors.KindUndefinedFunction, d.Kind)
	require.NotEmpty(t, d.Help)
}
