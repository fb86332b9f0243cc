package codegen

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/ast"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/checker"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/interop"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/lexer"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/parser"
)

// generate lexes, parses, checks, and generates src, failing the test on
// any diagnostic so callers can assert purely on the emitted Rust.
func generate(t *testing.T, src string, preserveComments bool) string {
	t.Helper()
	toks, lexDiags := lexer.New(src, "test.velt", preserveComments, nil).Lex()
	require.Zero(t, lexDiags.Len(), "lex diagnostics: %s", lexDiags.Compact())

	prog, parseDiags := parser.New(toks, preserveComments, nil).Parse()
	require.Zero(t, parseDiags.Len(), "parse diagnostics: %s", parseDiags.Compact())

	c := checker.New(interop.NewRegistry(), nil)
	result, checkDiags := c.Check(prog)
	require.Zero(t, checkDiags.Len(), "check diagnostics: %s", checkDiags.Compact())

	return New(result, preserveComments).Generate(prog)
}

func TestFibonacciNoBumpParam(t *testing.T) {
	// spec.md §8 scenario S1.
	src := `fun fibonacci(n: I64): I64 {
    if n <= 1 {
        return n
    }
    return fibonacci(n - 1) + fibonacci(n - 2)
}
fun main() {
    val result: I64 = fibonacci(10)
    println(result)
}
`
	out := generate(t, src, false)
	require.Contains(t, out, "fn fibonacci(n: i64) -> i64 {")
	require.NotContains(t, out, "bumpalo")
	require.Contains(t, out, "fibonacci(n - 1) + fibonacci(n - 2)")
	require.Contains(t, out, "fn main() {")
	require.Contains(t, out, "println!(\"{}\", result);")
}

func TestBumpAllocationPropagation(t *testing.T) {
	// spec.md §8 scenario S2.
	src := `fun directBump(x: I64): Ref<I64> {
    return x.bumpRef()
}
fun indirectBump(x: I64): Ref<I64> {
    return directBump(x)
}
fun calculateBonus(age: I64): I64 {
    return age
}
fun main() {
    val y: Ref<I64> = indirectBump(5)
    println(y)
}
`
	out := generate(t, src, false)

	require.Contains(t, out, "fn direct_bump<'a>(bump: &'a bumpalo::Bump, x: i64) -> &'a i64 {")
	require.Contains(t, out, "bump.alloc(x)")
	require.Contains(t, out, "fn indirect_bump<'a>(bump: &'a bumpalo::Bump, x: i64) -> &'a i64 {")
	require.Contains(t, out, "direct_bump(bump, x)")

	require.Contains(t, out, "fn calculate_bonus(age: i64) -> i64 {")
	require.NotContains(t, out, "calculate_bonus(bump")
	calcIdx := strings.Index(out, "fn calculate_bonus")
	require.NotContains(t, out[calcIdx:calcIdx+60], "<'a>")

	require.Contains(t, out, "fn main() {")
	require.Contains(t, out, "let bump = &bumpalo::Bump::new();")
	require.Contains(t, out, "indirect_bump(bump, 5)")
}

func TestCommentInsideCallRoundTrips(t *testing.T) {
	// spec.md §8 scenario S5.
	src := "fun add(a: I64, b: I64): I64 {\n    return a + b\n}\nfun main() {\n    add(/* before first */ 30, 40)\n}\n"
	out := generate(t, src, true)
	require.Contains(t, out, "add(/* before first */ 30, 40);")
}

func TestMultilineCallKeepsOneArgumentPerLine(t *testing.T) {
	src := "fun add(a: I64, b: I64): I64 {\n    return a + b\n}\nfun main() {\n    add(\n        30,\n        40,\n    )\n}\n"
	out := generate(t, src, true)
	require.Contains(t, out, "add(\n        30,\n        40,\n    );")
}

func TestPrecedencePreservedInEmission(t *testing.T) {
	src := "fun main() {\n    val x = 1 + 2 * 3\n    val y = (1 + 2) * 3\n}\n"
	out := generate(t, src, false)
	require.Contains(t, out, "let x = 1 + 2 * 3;")
	require.Contains(t, out, "let y = (1 + 2) * 3;")
}

// TestPrecedenceMatchesOriginalGoldenFixture reads the original
// implementation's own checked-in golden output,
// original_source/examples/parentheses_edge_cases.tuf.expected.rs, and
// checks our emitter's parenthesization calls agree with it on the two
// cases it exercises back to back: addition nested inside multiplication
// keeps its parens ("(2 + 3) * 4"), multiplication nested inside addition
// sheds them ("2 + 3 * 4"). Both transpilers parenthesize purely by
// precedence, so the same source expression must come out the same way.
func TestPrecedenceMatchesOriginalGoldenFixture(t *testing.T) {
	golden, err := os.ReadFile("../../_examples/original_source/examples/parentheses_edge_cases.tuf.expected.rs")
	require.NoError(t, err, "golden fixture must be readable from the retrieval pack")
	fixture := string(golden)
	require.Contains(t, fixture, "let a1 = 2 + 3 * 4;")
	require.Contains(t, fixture, "let a2 = (2 + 3) * 4;")

	src := "fun main() {\n    val a1 = 2 + 3 * 4\n    val a2 = (2 + 3) * 4\n}\n"
	out := generate(t, src, false)
	require.Contains(t, out, "let a1 = 2 + 3 * 4;")
	require.Contains(t, out, "let a2 = (2 + 3) * 4;")
}

func TestRustMacroBuiltinsLowerToTheirRustForm(t *testing.T) {
	// builtins/functions.rs registers print/panic/assert/debug_assert as
	// Rust macros alongside println; println/print synthesize a "{}"
	// format string, the rest pass their arguments through unchanged.
	src := `fun main() {
    val x = 5
    print(x)
    panic("boom")
    assert(x > 0)
    assert(x > 0, "x must be positive")
    debug_assert(x > 0)
}
`
	out := generate(t, src, false)
	require.Contains(t, out, `print!("{}", x);`)
	require.Contains(t, out, `panic!("boom");`)
	require.Contains(t, out, `assert!(x > 0);`)
	require.Contains(t, out, `assert!(x > 0, "x must be positive");`)
	require.Contains(t, out, `debug_assert!(x > 0);`)
}

func TestDataClassWithBorrowedFieldGetsLifetime(t *testing.T) {
	src := "data class Pair(val first: Ref<I64>, val second: I64)\nfun main() {\n}\n"
	out := generate(t, src, false)
	require.Contains(t, out, "struct Pair<'a> {")
	require.Contains(t, out, "first: &'a i64,")
	require.Contains(t, out, "second: i64,")
}

func TestDataClassConstructionShorthandAndNamed(t *testing.T) {
	src := "data class Point(val x: I64, val y: I64)\nfun main() {\n    val x = 1\n    val y = 2\n    val p = Point(.x, .y)\n    val q = Point(y = 2, x = 1)\n}\n"
	out := generate(t, src, false)
	require.Contains(t, out, "Point { x: x, y: y }")
	require.Contains(t, out, "Point { y: 2, x: 1 }")
}

func TestNameTranslationCamelToSnake(t *testing.T) {
	src := "fun computeTotalScore(n: I64): I64 {\n    return n\n}\nfun main() {\n    computeTotalScore(1)\n}\n"
	out := generate(t, src, false)
	require.Contains(t, out, "fn compute_total_score(n: i64) -> i64 {")
	require.Contains(t, out, "compute_total_score(1)")
}

func TestNameTranslationDoublesLiteralUnderscore(t *testing.T) {
	// original_source/examples/bump_allocation.tuf.expected.rs is the
	// golden oracle for this: a `Company` struct's `employee_count` field
	// (a name that already contains a literal underscore) lowers to
	// `employee__count`, not `employee_count` — the original implementation's
	// camel_to_snake_case (mirrored by interop.ToSnakeCase)
	// doubles a literal "_" before translating camelCase boundaries, keeping
	// the translation injective.
	src := "data class Company(val employee_count: I64)\nfun main() {\n}\n"
	out := generate(t, src, false)
	require.Contains(t, out, "employee__count: i64,")
}

func TestRefAndMutRefOperators(t *testing.T) {
	src := "data class Box2(val v: Own<String>)\nfun useRef(v: Own<String>): Ref<Own<String>> {\n    return v.ref()\n}\nfun useMutRef(v: Own<String>): MutRef<Own<String>> {\n    return v.mutRef()\n}\n"
	out := generate(t, src, false)
	require.Contains(t, out, "return &v;")
	require.Contains(t, out, "return &mut v;")
}

func TestElseIfChainEmission(t *testing.T) {
	src := `fun classify(n: I64): I64 {
    if n < 0 {
        return 0
    } else if n == 0 {
        return 1
    } else {
        return 2
    }
}
`
	out := generate(t, src, false)
	require.Contains(t, out, "if n < 0 {")
	require.Contains(t, out, "} else if n == 0 {")
	require.Contains(t, out, "} else {")
}

var _ ast.Node // keep the ast import honest if assertions above change
