package codegen

import "github.com/Portfoligno/veltrano-transpiler-sub001/internal/ast"

func (g *Generator) emitBlockStmts(b *ast.Block) {
	if b == nil {
		return
	}
	for _, s := range b.Stmts {
		g.emitStmt(s)
	}
}

func (g *Generator) emitStmt(s ast.Statement) {
	switch n := s.(type) {
	case *ast.ExpressionStmt:
		g.writeLine("%s;", g.emitExpr(n.Expr))
	case *ast.VarDecl:
		g.emitVarDecl(n)
	case *ast.If:
		g.emitIfChain(n, false)
	case *ast.While:
		g.emitWhile(n)
	case *ast.Return:
		g.emitReturn(n)
	case *ast.Block:
		g.writeLine("{")
		g.indent()
		g.emitBlockStmts(n)
		g.dedent()
		g.writeLine("}")
	case *ast.CommentStmt:
		if g.preserveComments {
			g.writeLine("%s", n.Comment.Content)
		}
	}
}

// emitVarDecl emits "val name[: Type] = init" as "let name[: Type] = init;"
// (spec.md §3 VarDecl). The language has no reassignment statement, so
// every binding is immutable, matching Rust's default "let".
func (g *Generator) emitVarDecl(v *ast.VarDecl) {
	init := g.emitExpr(v.Initializer)
	if v.TypeAnn == nil {
		g.writeLine("let %s = %s;", rustName(v.Name), init)
		return
	}
	rt := g.withCurrentLifetime(g.typeRefRust(v.TypeAnn))
	g.writeLine("let %s: %s = %s;", rustName(v.Name), rt.String(), init)
}

func (g *Generator) emitWhile(w *ast.While) {
	g.writeLine("while %s {", g.emitExpr(w.Condition))
	g.indent()
	g.emitBlockStmts(w.Body)
	g.dedent()
	g.writeLine("}")
}

func (g *Generator) emitReturn(r *ast.Return) {
	if r.Value == nil {
		g.writeLine("return;")
		return
	}
	g.writeLine("return %s;", g.emitExpr(r.Value))
}

// emitIfChain emits "if cond { ... } else if cond2 { ... } else { ... }".
// An else-if is parsed as a single-statement Block wrapping another *If
// (ast.If.Else doc comment), so a chain is detected by unwrapping that
// shape rather than needing a dedicated AST node.
func (g *Generator) emitIfChain(i *ast.If, continuation bool) {
	if continuation {
		g.out.WriteString("if " + g.emitExpr(i.Condition) + " {\n")
	} else {
		g.writeLine("if %s {", g.emitExpr(i.Condition))
	}
	g.indent()
	g.emitBlockStmts(i.Then)
	g.dedent()

	if i.Else == nil {
		g.writeLine("}")
		return
	}
	if len(i.Else.Stmts) == 1 {
		if nested, ok := i.Else.Stmts[0].(*ast.If); ok {
			g.writeIndent()
			g.out.WriteString("} else ")
			g.emitIfChain(nested, true)
			return
		}
	}
	g.writeLine("} else {")
	g.indent()
	g.emitBlockStmts(i.Else)
	g.dedent()
	g.writeLine("}")
}
