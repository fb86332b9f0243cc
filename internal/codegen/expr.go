package codegen

import (
	"fmt"

	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/ast"
)

func (g *Generator) emitExpr(e ast.Expression) string {
	switch n := e.(type) {
	case *ast.Literal:
		return emitLiteral(n)
	case *ast.Identifier:
		return rustName(n.Name)
	case *ast.Unary:
		return g.emitUnary(n)
	case *ast.Binary:
		return g.emitBinary(n)
	case *ast.Call:
		return g.emitCall(n)
	case *ast.MethodCall:
		return g.emitMethodCall(n)
	case *ast.FieldAccess:
		return fmt.Sprintf("%s.%s", g.emitExpr(n.Object), rustName(n.Field))
	default:
		panic(fmt.Sprintf("codegen: unsupported expression %T", e))
	}
}

func emitLiteral(l *ast.Literal) string {
	switch l.Kind {
	case ast.IntLiteral:
		return fmt.Sprintf("%d", l.Int)
	case ast.StringLiteral:
		return fmt.Sprintf("%q", l.Str)
	case ast.BoolLiteral:
		return fmt.Sprintf("%t", l.Bool)
	case ast.UnitLiteral:
		return "()"
	case ast.NullLiteral:
		return "None"
	default:
		return "()"
	}
}

// emitUnary emits "-operand", reproducing explicit parenthesization
// exactly as parsed (spec.md §4.6: "Unary '-' on a parenthesized operand
// emits as -(...)"); the operand of a non-parenthesized unary minus is
// always a postfix-level expression (spec.md §4.2's tightest-binding
// level), so it never needs parens of its own to stay correct.
func (g *Generator) emitUnary(u *ast.Unary) string {
	inner := g.emitExpr(u.Operand)
	if u.Parenthesized {
		return "-(" + inner + ")"
	}
	return "-" + inner
}

// emitBinary emits "left op right", parenthesizing an operand whenever its
// own precedence is lower than the parent's, or equal on the right side of
// a left-associative operator (spec.md §4.6: "must never add parentheses
// that change precedence and must preserve existing groupings exactly as
// parsed"). LeftParenthesized/RightParenthesized force parentheses when
// set, but the parser never sets them, so redundant source parentheses
// around an operand are not reproduced.
func (g *Generator) emitBinary(b *ast.Binary) string {
	prec := precedence(b.Op)
	left := g.emitOperand(prec, b.Left, b.LeftParenthesized, false)
	if g.preserveComments && b.CommentAfterLeft != nil {
		left += " " + b.CommentAfterLeft.Content
	}
	opText := b.Op.String()
	if g.preserveComments && b.CommentAfterOperator != nil {
		opText += " " + b.CommentAfterOperator.Content
	}
	right := g.emitOperand(prec, b.Right, b.RightParenthesized, true)
	return left + " " + opText + " " + right
}

func (g *Generator) emitOperand(parentPrec int, operand ast.Expression, forcedParen bool, rightSide bool) string {
	s := g.emitExpr(operand)
	if forcedParen {
		return "(" + s + ")"
	}
	if b, ok := operand.(*ast.Binary); ok {
		childPrec := precedence(b.Op)
		if childPrec < parentPrec || (childPrec == parentPrec && rightSide) {
			return "(" + s + ")"
		}
	}
	return s
}

// precedence mirrors the level order spec.md §4.2 parses at, from lowest
// to highest: logical-or, logical-and, equality, relational, additive,
// multiplicative — the same order Rust itself uses for these operators, so
// no cross-language reordering is needed.
func precedence(op ast.BinaryOp) int {
	switch op {
	case ast.Mul, ast.Div, ast.Mod:
		return 5
	case ast.Add, ast.Sub:
		return 4
	case ast.Lt, ast.LtEq, ast.Gt, ast.GtEq:
		return 3
	case ast.Eq, ast.NotEq:
		return 2
	case ast.LogicalAnd:
		return 1
	default: // ast.LogicalOr
		return 0
	}
}
