package checker

import (
	"fmt"

	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/ast"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/errors"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/types"
)

var groundNumeric = map[types.Constructor]bool{
	types.I32: true, types.I64: true, types.ISize: true,
	types.U32: true, types.U64: true, types.USize: true,
}

// checkExpr type-checks e and returns its Veltrano type. On any error it
// records a diagnostic and returns its best-effort fallback type so that
// checking of the rest of the program can continue (spec.md §4.5: a pass
// never short-circuits on the first error).
func (c *Checker) checkExpr(e ast.Expression) types.VeltranoType {
	switch n := e.(type) {
	case *ast.Literal:
		return c.checkLiteral(n)
	case *ast.Identifier:
		return c.checkIdentifier(n)
	case *ast.Unary:
		return c.checkUnary(n)
	case *ast.Binary:
		return c.checkBinary(n)
	case *ast.Call:
		return c.checkCall(n)
	case *ast.MethodCall:
		return c.checkMethodCall(n)
	case *ast.FieldAccess:
		return c.checkFieldAccess(n)
	default:
		return types.TUnit
	}
}

func (c *Checker) checkLiteral(l *ast.Literal) types.VeltranoType {
	switch l.Kind {
	case ast.IntLiteral:
		// Open question 3: integer literals are always I64, never promoted.
		return types.TI64
	case ast.StringLiteral:
		// A source string literal is Rust's &'static str: already a
		// reference, hence the bare (non-Own) constructor.
		return types.TStr
	case ast.BoolLiteral:
		return types.TBool
	case ast.UnitLiteral:
		return types.TUnit
	case ast.NullLiteral:
		// Untyped None; reconciled against a declared Option<T> at the use
		// site (checkVarDecl), otherwise flagged ambiguous.
		return types.TOption(types.TNothing)
	default:
		return types.TUnit
	}
}

func (c *Checker) checkIdentifier(id *ast.Identifier) types.VeltranoType {
	if t, ok := c.Env.Lookup(id.Name); ok {
		return t
	}
	c.errAt(errors.KindUndefinedVariable, id.Span(), "undefined variable %q", id.Name)
	return types.TUnit
}

func (c *Checker) checkUnary(u *ast.Unary) types.VeltranoType {
	operandType := c.checkExpr(u.Operand)
	if !groundNumeric[operandType.Constructor] {
		c.errAt(errors.KindTypeMismatch, u.Span(), "unary '-' requires a numeric type, got %s", operandType)
		return operandType
	}
	return operandType
}

func (c *Checker) checkBinary(b *ast.Binary) types.VeltranoType {
	left := c.checkExpr(b.Left)
	right := c.checkExpr(b.Right)

	switch b.Op {
	case ast.Add, ast.Sub, ast.Mul, ast.Div, ast.Mod:
		if !groundNumeric[left.Constructor] || !left.Equal(right) {
			c.errAt(errors.KindTypeMismatch, b.Span(), "operator %s requires two operands of the same numeric type, got %s and %s", b.Op, left, right)
			return left
		}
		return left
	case ast.Eq, ast.NotEq, ast.Lt, ast.LtEq, ast.Gt, ast.GtEq:
		if !left.Equal(right) {
			c.errAt(errors.KindTypeMismatch, b.Span(), "operator %s requires operands of the same type, got %s and %s", b.Op, left, right)
		}
		return types.TBool
	case ast.LogicalAnd, ast.LogicalOr:
		if !left.Equal(types.TBool) || !right.Equal(types.TBool) {
			c.errAt(errors.KindTypeMismatch, b.Span(), "operator %s requires Bool operands, got %s and %s", b.Op, left, right)
		}
		return types.TBool
	default:
		return types.TUnit
	}
}

func (c *Checker) checkFieldAccess(f *ast.FieldAccess) types.VeltranoType {
	objType := c.checkExpr(f.Object)
	custom, ok := unwrapCustom(objType)
	if !ok {
		c.errAt(errors.KindTypeMismatch, f.Span(), "%s has no fields (not a data class)", objType)
		return types.TUnit
	}
	def, ok := c.DataClasses[custom]
	if !ok {
		c.errAt(errors.KindUndefinedType, f.Span(), "undefined data class %q", custom)
		return types.TUnit
	}
	ft, ok := def.FieldType(f.Field)
	if !ok {
		d := c.diags.Addf(errors.KindFieldNotFound, f.Span(), "data class %s has no field %q", def.Name, f.Field)
		if suggestion, ok := fuzzyMatch(f.Field, def.FieldNames); ok {
			d.WithHelp(fmt.Sprintf("did you mean %q?", suggestion))
		}
		return types.TUnit
	}
	return ft
}

// unwrapCustom strips Own/Ref/MutRef wrappers to find a Custom type's
// name, the way field access sees through ownership annotations.
func unwrapCustom(t types.VeltranoType) (string, bool) {
	for {
		switch t.Constructor {
		case types.Custom:
			return t.Name, true
		case types.Own, types.Ref, types.MutRef:
			t = t.Arg0()
		default:
			return "", false
		}
	}
}
