package checker

import (
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/ast"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/errors"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/types"
)

func (c *Checker) checkBlock(b *ast.Block) {
	if b == nil {
		return
	}
	c.Env.Push()
	defer c.Env.Pop()
	for _, s := range b.Stmts {
		c.checkStmt(s)
	}
}

func (c *Checker) checkStmt(s ast.Statement) {
	switch n := s.(type) {
	case *ast.ExpressionStmt:
		c.checkExpr(n.Expr)
	case *ast.VarDecl:
		c.checkVarDecl(n)
	case *ast.If:
		c.checkIf(n)
	case *ast.While:
		c.checkWhile(n)
	case *ast.Return:
		c.checkReturn(n)
	case *ast.Block:
		c.checkBlock(n)
	case *ast.CommentStmt:
		// nothing to type-check
	case *ast.Import, *ast.DataClass, *ast.FunDecl:
		// handled in pre-scan; nested declarations of these kinds are not
		// part of the grammar (spec.md §4.2 statements are top-level or
		// block-scoped expression/control-flow forms).
	}
}

func (c *Checker) checkVarDecl(v *ast.VarDecl) {
	initType := c.checkExpr(v.Initializer)
	lit, _ := v.Initializer.(*ast.Literal)
	isNull := lit != nil && lit.Kind == ast.NullLiteral
	declared := initType
	if v.TypeAnn != nil {
		t, err := c.resolveTypeRef(v.TypeAnn)
		if err != nil {
			c.errAt(errors.KindUndefinedType, v.Span(), "val %s: %s", v.Name, err)
			return
		}
		if !t.Equal(initType) && !(isNull && t.Constructor == types.Option) {
			c.errAt(errors.KindTypeMismatch, v.Span(), "val %s: declared %s but initializer has type %s", v.Name, t, initType)
		}
		declared = t
	} else if isNull {
		c.errAt(errors.KindAmbiguousType, v.Span(), "val %s: the type of null cannot be inferred; declare an Option<T> type", v.Name)
	}
	c.Env.Declare(v.Name, declared)
}

func (c *Checker) checkIf(i *ast.If) {
	condType := c.checkExpr(i.Condition)
	if !condType.Equal(types.TBool) {
		c.errAt(errors.KindTypeMismatch, i.Condition.Span(), "if condition must be Bool, got %s", condType)
	}
	c.checkBlock(i.Then)
	c.checkBlock(i.Else)
}

func (c *Checker) checkWhile(w *ast.While) {
	condType := c.checkExpr(w.Condition)
	if !condType.Equal(types.TBool) {
		c.errAt(errors.KindTypeMismatch, w.Condition.Span(), "while condition must be Bool, got %s", condType)
	}
	c.checkBlock(w.Body)
}

func (c *Checker) checkReturn(r *ast.Return) {
	var actual types.VeltranoType = types.TUnit
	if r.Value != nil {
		actual = c.checkExpr(r.Value)
	}
	if c.currentFunc == nil {
		return
	}
	if !actual.Equal(c.currentFunc.ReturnType) {
		c.errAt(errors.KindTypeMismatch, r.Span(), "function %s: return type %s does not match declared %s",
			c.currentFunc.Name, actual, c.currentFunc.ReturnType)
	}
}
