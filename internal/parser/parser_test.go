package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/ast"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/lexer"
)

// parse lexes and parses src with comments preserved, failing the test on
// any diagnostic so callers can assert purely on the resulting tree.
func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	toks, lexDiags := lexer.New(src, "test.velt", true, nil).Lex()
	require.Zero(t, lexDiags.Len(), "lex diagnostics: %s", lexDiags.Compact())
	prog, diags := New(toks, true, nil).Parse()
	require.Zero(t, diags.Len(), "parse diagnostics: %s", diags.Compact())
	return prog
}

func TestParseFibonacci(t *testing.T) {
	src := `fun fib(n: I64): I64 {
    if n < 2 {
        return n
    }
    return fib(n - 1) + fib(n - 2)
}
`
	prog := parse(t, src)
	require.Len(t, prog.Stmts, 1)
	fn, ok := prog.Stmts[0].(*ast.FunDecl)
	require.True(t, ok)
	require.Equal(t, "fib", fn.Name)
	require.Len(t, fn.Params, 1)
	require.Equal(t, "n", fn.Params[0].Name)
	require.Equal(t, "I64", fn.Params[0].TypeAnn.String())
	require.Equal(t, "I64", fn.ReturnType.String())
	require.Len(t, fn.Body.Stmts, 2)

	ifStmt, ok := fn.Body.Stmts[0].(*ast.If)
	require.True(t, ok)
	cond, ok := ifStmt.Condition.(*ast.Binary)
	require.True(t, ok)
	require.Equal(t, ast.Lt, cond.Op)

	ret, ok := fn.Body.Stmts[1].(*ast.Return)
	require.True(t, ok)
	add, ok := ret.Value.(*ast.Binary)
	require.True(t, ok)
	require.Equal(t, ast.Add, add.Op)
	leftCall, ok := add.Left.(*ast.Call)
	require.True(t, ok)
	callee, ok := leftCall.Callee.(*ast.Identifier)
	require.True(t, ok)
	require.Equal(t, "fib", callee.Name)
}

func TestOperatorPrecedence(t *testing.T) {
	// "1 + 2 * 3" must parse as "1 + (2 * 3)": Mul binds tighter than Add.
	prog := parse(t, "val x = 1 + 2 * 3\n")
	decl := prog.Stmts[0].(*ast.VarDecl)
	top, ok := decl.Initializer.(*ast.Binary)
	require.True(t, ok)
	require.Equal(t, ast.Add, top.Op)
	_, leftIsLiteral := top.Left.(*ast.Literal)
	require.True(t, leftIsLiteral)
	right, ok := top.Right.(*ast.Binary)
	require.True(t, ok)
	require.Equal(t, ast.Mul, right.Op)
}

func TestPostfixBindsTighterThanUnary(t *testing.T) {
	// "-x.ref()" must parse as "-(x.ref())", not "(-x).ref()" (spec.md §4.2:
	// postfix call/method/field access is the tightest-binding level).
	prog := parse(t, "val y = -x.ref()\n")
	decl := prog.Stmts[0].(*ast.VarDecl)
	un, ok := decl.Initializer.(*ast.Unary)
	require.True(t, ok)
	require.Equal(t, ast.Neg, un.Op)
	require.False(t, un.Parenthesized)
	mc, ok := un.Operand.(*ast.MethodCall)
	require.True(t, ok)
	require.Equal(t, "ref", mc.Method)
}

func TestParenthesizedUnaryOperand(t *testing.T) {
	prog := parse(t, "val z = -(a + b)\n")
	decl := prog.Stmts[0].(*ast.VarDecl)
	un, ok := decl.Initializer.(*ast.Unary)
	require.True(t, ok)
	require.True(t, un.Parenthesized)
	_, ok = un.Operand.(*ast.Binary)
	require.True(t, ok)
}

func TestDoubleMinusRejected(t *testing.T) {
	toks, _ := lexer.New("val x = - -1\n", "test.velt", false, nil).Lex()
	_, diags := New(toks, false, nil).Parse()
	require.NotZero(t, diags.Len())
	found := false
	for _, d := range diags.Items() {
		if d.Message == "Double minus not allowed" {
			found = true
		}
	}
	require.True(t, found, "expected a \"Double minus not allowed\" diagnostic, got: %s", diags.Compact())
}

func TestArrayTypeWithSize(t *testing.T) {
	prog := parse(t, "fun f(xs: Array<I32, 4>) {\n}\n")
	fn := prog.Stmts[0].(*ast.FunDecl)
	tr := fn.Params[0].TypeAnn
	require.Equal(t, "Array", tr.Name)
	require.Len(t, tr.Args, 1)
	require.Equal(t, "I32", tr.Args[0].Name)
	require.NotNil(t, tr.ArraySize)
	require.Equal(t, int64(4), *tr.ArraySize)
}

func TestImportWithAlias(t *testing.T) {
	prog := parse(t, "import String.length as len\n")
	im := prog.Stmts[0].(*ast.Import)
	require.Equal(t, "String", im.TypeName)
	require.Equal(t, "length", im.Method)
	require.Equal(t, "len", im.Alias)
}

func TestImportWithoutAlias(t *testing.T) {
	prog := parse(t, "import String.length\n")
	im := prog.Stmts[0].(*ast.Import)
	require.Equal(t, "", im.Alias)
}

func TestDataClassAndConstruction(t *testing.T) {
	prog := parse(t, "data class Point(val x: I64, val y: I64)\nval p = Point(x = 1, y = 2)\n")
	require.Len(t, prog.Stmts, 2)
	dc := prog.Stmts[0].(*ast.DataClass)
	require.Equal(t, "Point", dc.Name)
	require.Len(t, dc.Fields, 2)

	decl := prog.Stmts[1].(*ast.VarDecl)
	call := decl.Initializer.(*ast.Call)
	require.Len(t, call.Args, 2)
	require.Equal(t, ast.NamedArg, call.Args[0].Kind)
	require.Equal(t, "x", call.Args[0].Name)
}

func TestShorthandArgument(t *testing.T) {
	prog := parse(t, "val p2 = Point(.x, .y)\n")
	decl := prog.Stmts[0].(*ast.VarDecl)
	call := decl.Initializer.(*ast.Call)
	require.Len(t, call.Args, 2)
	require.Equal(t, ast.ShorthandArg, call.Args[0].Kind)
	require.Equal(t, "x", call.Args[0].Name)
}

func TestMultilineCallDetection(t *testing.T) {
	prog := parse(t, "val v = f(\n    1,\n    2,\n)\n")
	decl := prog.Stmts[0].(*ast.VarDecl)
	call := decl.Initializer.(*ast.Call)
	require.True(t, call.IsMultiline)
}

func TestSingleLineCallNotMultiline(t *testing.T) {
	prog := parse(t, "val v = f(1, 2)\n")
	decl := prog.Stmts[0].(*ast.VarDecl)
	call := decl.Initializer.(*ast.Call)
	require.False(t, call.IsMultiline)
}

func TestCallExpressionIDsAreUnique(t *testing.T) {
	prog := parse(t, "val a = f(1)\nval b = g(2)\n")
	first := prog.Stmts[0].(*ast.VarDecl).Initializer.(*ast.Call)
	second := prog.Stmts[1].(*ast.VarDecl).Initializer.(*ast.Call)
	require.NotZero(t, first.ID)
	require.NotZero(t, second.ID)
	require.NotEqual(t, first.ID, second.ID)
}

func TestElseIfChain(t *testing.T) {
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
	fn := parse(t, src).Stmts[0].(*ast.FunDecl)
	top := fn.Body.Stmts[0].(*ast.If)
	require.NotNil(t, top.Else)
	require.Len(t, top.Else.Stmts, 1)
	nested, ok := top.Else.Stmts[0].(*ast.If)
	require.True(t, ok)
	require.NotNil(t, nested.Else)
}

func TestUnitAndNullLiterals(t *testing.T) {
	prog := parse(t, "val u = Unit\nval n = null\n")
	u := prog.Stmts[0].(*ast.VarDecl).Initializer.(*ast.Literal)
	require.Equal(t, ast.UnitLiteral, u.Kind)
	n := prog.Stmts[1].(*ast.VarDecl).Initializer.(*ast.Literal)
	require.Equal(t, ast.NullLiteral, n.Kind)
}

func TestUnitAsFunctionNameIsStillACall(t *testing.T) {
	// A function literally named "Unit" must still parse as a Call, not be
	// swallowed as the Unit literal, since the literal form never has
	// trailing parens.
	prog := parse(t, "val v = Unit()\n")
	_, ok := prog.Stmts[0].(*ast.VarDecl).Initializer.(*ast.Call)
	require.True(t, ok)
}

func TestBumpFlagPropagatesThroughCalls(t *testing.T) {
	src := `fun leaf(): I64 {
    return direct()
}
fun direct(): I64 {
    return x.bumpRef()
}
`
	prog := parse(t, src)
	var leaf, direct *ast.FunDecl
	for _, s := range prog.Stmts {
		fn := s.(*ast.FunDecl)
		switch fn.Name {
		case "leaf":
			leaf = fn
		case "direct":
			direct = fn
		}
	}
	require.True(t, direct.HasHiddenBump, "direct() calls .bumpRef() itself")
	require.True(t, leaf.HasHiddenBump, "leaf() calls direct(), which bump-allocates")
}

func TestSyntaxErrorRecoveryContinuesParsing(t *testing.T) {
	// A malformed first statement should not prevent the parser from
	// reporting the second statement's own tree (spec.md §8 testable
	// property 6: recovery always makes progress).
	toks, _ := lexer.New("val = 1\nval ok = 2\n", "test.velt", false, nil).Lex()
	prog, diags := New(toks, false, nil).Parse()
	require.NotZero(t, diags.Len())
	found := false
	for _, s := range prog.Stmts {
		if vd, ok := s.(*ast.VarDecl); ok && vd.Name == "ok" {
			found = true
		}
	}
	require.True(t, found, "expected recovery to still parse the 'ok' declaration")
}

func TestArgumentTrailingCommentAttaches(t *testing.T) {
	prog := parse(t, "val v = f(1 // after one\n, 2)\n")
	decl := prog.Stmts[0].(*ast.VarDecl)
	call := decl.Initializer.(*ast.Call)
	require.Len(t, call.Args, 2)
	require.NotNil(t, call.Args[0].Comments.After)
	require.Contains(t, call.Args[0].Comments.After.Content, "after one")
}

func TestStandaloneCommentStatement(t *testing.T) {
	src := "val a = 1\n// a lone comment\nval b = 2\n"
	prog := parse(t, src)
	require.Len(t, prog.Stmts, 3)
	cs, ok := prog.Stmts[1].(*ast.CommentStmt)
	require.True(t, ok)
	require.Contains(t, cs.Comment.Content, "a lone comment")
}

func TestWhileLoop(t *testing.T) {
	src := `fun countdown(n: I64) {
    while n > 0 {
        println(n)
    }
}
`
	fn := parse(t, src).Stmts[0].(*ast.FunDecl)
	w, ok := fn.Body.Stmts[0].(*ast.While)
	require.True(t, ok)
	cond, ok := w.Condition.(*ast.Binary)
	require.True(t, ok)
	require.Equal(t, ast.Gt, cond.Op)
}
