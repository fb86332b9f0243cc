package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/ast"
)

func ident(name string) *ast.Identifier { return &ast.Identifier{Name: name} }

func callStmt(calleeName string) ast.Statement {
	return &ast.ExpressionStmt{Expr: &ast.Call{Callee: ident(calleeName)}}
}

func methodCallStmt(receiver, method string) ast.Statement {
	return &ast.ExpressionStmt{Expr: &ast.MethodCall{Receiver: ident(receiver), Method: method}}
}

// TestComputeBumpFlags_TransitiveClosure mirrors scenario S2 in spec.md
// §8: a direct bump allocator, a caller of it, and an unrelated pure
// function, wired with a cycle thrown in to exercise the worklist.
func TestComputeBumpFlags_TransitiveClosure(t *testing.T) {
	direct := &ast.FunDecl{Name: "allocateThing", Body: &ast.Block{Stmts: []ast.Statement{
		methodCallStmt("arena", "bumpRef"),
	}}}
	indirect := &ast.FunDecl{Name: "buildThing", Body: &ast.Block{Stmts: []ast.Statement{
		callStmt("allocateThing"),
	}}}
	pure := &ast.FunDecl{Name: "calculateBonus", Body: &ast.Block{Stmts: []ast.Statement{
		callStmt("pureHelper"),
	}}}
	pureHelper := &ast.FunDecl{Name: "pureHelper", Body: &ast.Block{}}

	// cyclic pair: neither touches bump allocation
	cycleA := &ast.FunDecl{Name: "cycleA", Body: &ast.Block{Stmts: []ast.Statement{callStmt("cycleB")}}}
	cycleB := &ast.FunDecl{Name: "cycleB", Body: &ast.Block{Stmts: []ast.Statement{callStmt("cycleA")}}}

	prog := &ast.Program{Stmts: []ast.Statement{direct, indirect, pure, pureHelper, cycleA, cycleB}}

	ast.ComputeBumpFlags(prog)

	assert.True(t, direct.HasHiddenBump)
	assert.True(t, indirect.HasHiddenBump)
	assert.False(t, pure.HasHiddenBump)
	assert.False(t, pureHelper.HasHiddenBump)
	assert.False(t, cycleA.HasHiddenBump)
	assert.False(t, cycleB.HasHiddenBump)

	// Running it a second time must be a no-op (testable property 3).
	ast.ComputeBumpFlags(prog)
	assert.True(t, direct.HasHiddenBump)
	assert.True(t, indirect.HasHiddenBump)
	assert.False(t, pure.HasHiddenBump)
}
