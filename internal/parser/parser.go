// Package parser implements Veltrano's recursive-descent parser with
// precedence-climbing expression parsing and multi-error recovery (spec.md
// §4.2). The {tokens, pos, errors, current/previous/peek/match/consume/
// synchronize} shape is grounded on the teacher's pkgs/parser/parser.go,
// generalized from its single shell-command grammar to Veltrano's
// statement/expression grammar, with the teacher's plain-string errors
// widened to internal/errors.Collection diagnostics carrying spans.
package parser

import (
	"log/slog"
	"strconv"

	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/ast"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/comment"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/debug"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/errors"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/span"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/token"
)

// Parser turns a token stream into a Program, recovering from syntax errors
// at statement boundaries so a single parse reports every error it finds
// (spec.md §4.2 "recovery mode").
type Parser struct {
	toks             []token.Token
	pos              int
	preserveComments bool
	logger           *slog.Logger

	diags *errors.Collection
	idgen ast.IDGen
}

// New builds a parser over toks (as produced by internal/lexer.Lex). A nil
// logger falls back to the package default.
func New(toks []token.Token, preserveComments bool, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = debug.Logger()
	}
	if len(toks) == 0 {
		toks = []token.Token{{Type: token.EOF}}
	}
	return &Parser{toks: toks, preserveComments: preserveComments, logger: logger, diags: &errors.Collection{}}
}

// Parse runs the parser to completion, returning a (possibly partial)
// Program and the diagnostics collected along the way (spec.md §4.2
// contract). On a clean parse it also runs ast.ComputeBumpFlags over the
// result; a parse with errors skips it, since HasHiddenBump propagation
// over a partially-recovered call graph isn't meaningful.

func (p *Parser) Parse() (*ast.Program, *errors.Collection) {
	prog := &ast.Program{}
	start := p.cur().Span
	p.skipNewlines()
	for !p.atEnd() {
		if p.preserveComments && p.check(token.COMMENT) {
			c := p.cur()
			prog.Stmts = append(prog.Stmts, &ast.CommentStmt{Comment: *c.Comment, Sp: c.Span})
			p.advance()
			p.skipNewlines()
			continue
		}
		stmt := p.parseTopLevelStatement()
		if stmt != nil {
			prog.Stmts = append(prog.Stmts, stmt)
		}
		p.endStatement()
	}
	prog.Sp = span.Union(start, p.prevEnd())
	if !p.diags.HasErrors() {
		ast.ComputeBumpFlags(prog)
	}
	p.logger.Debug("parse complete", "statements", len(prog.Stmts), "errors", p.diags.Len())
	return prog, p.diags
}

// ---- token cursor ----

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos]
}

func (p *Parser) at(offset int) token.Token {
	i := p.pos + offset
	if i < 0 {
		i = 0
	}
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *Parser) prevEnd() span.Span {
	if p.pos == 0 {
		return p.cur().Span
	}
	return p.toks[p.pos-1].Span
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if t.Type != token.EOF {
		p.pos++
	}
	return t
}

func (p *Parser) check(tt token.Type) bool { return p.cur().Type == tt }

func (p *Parser) atEnd() bool { return p.check(token.EOF) }

func (p *Parser) match(tt token.Type) bool {
	if p.check(tt) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(tt token.Type, what string) (token.Token, bool) {
	if p.check(tt) {
		return p.advance(), true
	}
	p.errAt(errors.KindUnexpectedToken, p.cur().Span, "expected %s, got %s", what, p.cur().Type)
	return token.Token{}, false
}

func (p *Parser) expectIdent(what string) (string, span.Span, bool) {
	if p.check(token.IDENT) {
		t := p.advance()
		return t.Lexeme, t.Span, true
	}
	p.errAt(errors.KindUnexpectedToken, p.cur().Span, "expected %s, got %s", what, p.cur().Type)
	return "", p.cur().Span, false
}

func (p *Parser) errAt(kind errors.Kind, at span.Span, format string, args ...any) {
	p.diags.Addf(kind, at, format, args...)
}

// skipNewlines consumes NEWLINE tokens (and, when comments are not
// preserved, nothing else — COMMENT tokens never appear in the stream
// unless preservation is on).
func (p *Parser) skipNewlines() {
	for p.check(token.NEWLINE) {
		p.advance()
	}
}

// endStatement consumes the statement terminator spec.md §4.2 requires
// (newline or ';'), tolerating RBRACE/EOF as an implicit terminator for the
// last statement in a block/program.
func (p *Parser) endStatement() {
	switch {
	case p.check(token.NEWLINE), p.check(token.SEMICOLON):
		p.advance()
		p.skipNewlines()
	case p.check(token.RBRACE), p.atEnd():
		// last statement in a block/program; nothing to consume
	default:
		p.errAt(errors.KindSyntaxError, p.cur().Span, "expected end of statement, got %s", p.cur().Type)
		p.synchronize()
	}
}

// synchronize implements spec.md §4.2's recovery rule: drop tokens until a
// statement boundary (a leading keyword, a closing brace, or a newline at
// statement scope), always consuming at least one token first so recovery
// mode provably terminates (spec.md §8 invariant 6).
func (p *Parser) synchronize() {
	p.advance()
	for !p.atEnd() {
		switch p.cur().Type {
		case token.VAL, token.FUN, token.IF, token.WHILE, token.RETURN, token.IMPORT, token.DATA, token.RBRACE:
			return
		case token.NEWLINE, token.SEMICOLON:
			p.advance()
			return
		}
		p.advance()
	}
}

// ---- statements ----

func (p *Parser) parseTopLevelStatement() ast.Statement {
	return p.parseStatement()
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur().Type {
	case token.VAL:
		return p.parseVarDecl()
	case token.FUN:
		return p.parseFunDecl()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.RETURN:
		return p.parseReturn()
	case token.IMPORT:
		return p.parseImport()
	case token.DATA:
		return p.parseDataClass()
	case token.LBRACE:
		return p.parseBlock()
	default:
		start := p.cur().Span
		expr := p.parseExpression()
		return &ast.ExpressionStmt{Expr: expr, Sp: span.Union(start, expr.Span())}
	}
}

func (p *Parser) parseBlock() *ast.Block {
	open, _ := p.expect(token.LBRACE, "'{'")
	b := &ast.Block{Sp: open.Span}
	p.skipNewlines()
	for !p.check(token.RBRACE) && !p.atEnd() {
		if p.preserveComments && p.check(token.COMMENT) {
			c := p.cur()
			b.Stmts = append(b.Stmts, &ast.CommentStmt{Comment: *c.Comment, Sp: c.Span})
			p.advance()
			p.skipNewlines()
			continue
		}
		stmt := p.parseStatement()
		if stmt != nil {
			b.Stmts = append(b.Stmts, stmt)
		}
		p.endStatement()
	}
	close, _ := p.expect(token.RBRACE, "'}'")
	b.Sp = span.Union(open.Span, close.Span)
	return b
}

func (p *Parser) parseVarDecl() *ast.VarDecl {
	start, _ := p.expect(token.VAL, "'val'")
	name, _, _ := p.expectIdent("variable name")
	var typeAnn *ast.TypeRef
	if p.match(token.COLON) {
		typeAnn = p.parseTypeRef()
	}
	p.expect(token.EQUALS, "'='")
	init := p.parseExpression()
	return &ast.VarDecl{Name: name, TypeAnn: typeAnn, Initializer: init, Sp: span.Union(start.Span, init.Span())}
}

func (p *Parser) parseFunDecl() *ast.FunDecl {
	start, _ := p.expect(token.FUN, "'fun'")
	name, _, _ := p.expectIdent("function name")
	p.expect(token.LPAREN, "'('")
	var params []ast.Param
	for !p.check(token.RPAREN) && !p.atEnd() {
		pname, pspan, ok := p.expectIdent("parameter name")
		p.expect(token.COLON, "':'")
		ptype := p.parseTypeRef()
		if ok {
			params = append(params, ast.Param{Name: pname, TypeAnn: ptype, Sp: span.Union(pspan, ptype.Span())})
		}
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RPAREN, "')'")
	var ret *ast.TypeRef
	if p.match(token.COLON) {
		ret = p.parseTypeRef()
	}
	body := p.parseBlock()
	return &ast.FunDecl{Name: name, Params: params, ReturnType: ret, Body: body, Sp: span.Union(start.Span, body.Span())}
}

func (p *Parser) parseIf() *ast.If {
	start, _ := p.expect(token.IF, "'if'")
	cond := p.parseExpression()
	then := p.parseBlock()
	node := &ast.If{Condition: cond, Then: then, Sp: span.Union(start.Span, then.Span())}

	save := p.pos
	p.skipNewlines()
	if p.check(token.ELSE) {
		p.advance()
		if p.check(token.IF) {
			nested := p.parseIf()
			node.Else = &ast.Block{Stmts: []ast.Statement{nested}, Sp: nested.Span()}
		} else {
			node.Else = p.parseBlock()
		}
		node.Sp = span.Union(node.Sp, node.Else.Span())
	} else {
		p.pos = save
	}
	return node
}

func (p *Parser) parseWhile() *ast.While {
	start, _ := p.expect(token.WHILE, "'while'")
	cond := p.parseExpression()
	body := p.parseBlock()
	return &ast.While{Condition: cond, Body: body, Sp: span.Union(start.Span, body.Span())}
}

func (p *Parser) parseReturn() *ast.Return {
	start, _ := p.expect(token.RETURN, "'return'")
	if p.check(token.NEWLINE) || p.check(token.SEMICOLON) || p.check(token.RBRACE) || p.atEnd() {
		return &ast.Return{Sp: start.Span}
	}
	val := p.parseExpression()
	return &ast.Return{Value: val, Sp: span.Union(start.Span, val.Span())}
}

func (p *Parser) parseImport() *ast.Import {
	start, _ := p.expect(token.IMPORT, "'import'")
	typeName, _, _ := p.expectIdent("type name")
	p.expect(token.DOT, "'.'")
	method, methodSpan, _ := p.expectIdent("method name")
	im := &ast.Import{TypeName: typeName, Method: method, Sp: span.Union(start.Span, methodSpan)}
	if p.check(token.IDENT) && p.cur().Lexeme == "as" {
		p.advance()
		alias, aliasSpan, _ := p.expectIdent("alias name")
		im.Alias = alias
		im.Sp = span.Union(im.Sp, aliasSpan)
	}
	return im
}

func (p *Parser) parseDataClass() *ast.DataClass {
	start, _ := p.expect(token.DATA, "'data'")
	p.expect(token.CLASS, "'class'")
	name, _, _ := p.expectIdent("data class name")
	p.expect(token.LPAREN, "'('")
	var fields []ast.Field
	for !p.check(token.RPAREN) && !p.atEnd() {
		p.expect(token.VAL, "'val'")
		fname, fspan, _ := p.expectIdent("field name")
		p.expect(token.COLON, "':'")
		ftype := p.parseTypeRef()
		fields = append(fields, ast.Field{Name: fname, TypeAnn: ftype, Sp: span.Union(fspan, ftype.Span())})
		if !p.match(token.COMMA) {
			break
		}
	}
	close, _ := p.expect(token.RPAREN, "')'")
	return &ast.DataClass{Name: name, Fields: fields, Sp: span.Union(start.Span, close.Span)}
}

// ---- type references ----

func (p *Parser) parseTypeRef() *ast.TypeRef {
	name, nameSpan, _ := p.expectIdent("type name")
	tr := &ast.TypeRef{Name: name, Sp: nameSpan}
	if !p.match(token.LT) {
		return tr
	}
	if name == "Array" {
		elem := p.parseTypeRef()
		p.expect(token.COMMA, "','")
		sizeTok, _ := p.expect(token.INT, "array size")
		size, _ := strconv.ParseInt(sizeTok.Lexeme, 10, 64)
		tr.Args = []*ast.TypeRef{elem}
		tr.ArraySize = &size
	} else {
		tr.Args = append(tr.Args, p.parseTypeRef())
		for p.match(token.COMMA) {
			tr.Args = append(tr.Args, p.parseTypeRef())
		}
	}
	close, _ := p.expect(token.GT, "'>'")
	tr.Sp = span.Union(nameSpan, close.Span)
	return tr
}

// ---- expressions ----

func (p *Parser) parseExpression() ast.Expression {
	return p.parseLogicalOr()
}

func (p *Parser) parseLevel(next func() ast.Expression, ops map[token.Type]ast.BinaryOp) ast.Expression {
	left := next()
	for {
		opIdx := p.pos
		var commentAfterLeft *comment.Comment
		if p.preserveComments && p.at(0).Type == token.COMMENT {
			commentAfterLeft = p.at(0).Comment
			opIdx = p.pos + 1
		}
		op, ok := ops[p.toks[minInt(opIdx, len(p.toks)-1)].Type]
		if !ok {
			break
		}
		p.pos = opIdx
		p.advance()
		var commentAfterOperator *comment.Comment
		if p.preserveComments && p.check(token.COMMENT) {
			commentAfterOperator = p.cur().Comment
			p.advance()
		}
		right := next()
		left = &ast.Binary{
			Left: left, CommentAfterLeft: commentAfterLeft,
			Op: op, CommentAfterOperator: commentAfterOperator,
			Right: right, Sp: span.Union(left.Span(), right.Span()),
		}
	}
	return left
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

var orOps = map[token.Type]ast.BinaryOp{token.OR_OR: ast.LogicalOr}
var andOps = map[token.Type]ast.BinaryOp{token.AND_AND: ast.LogicalAnd}
var eqOps = map[token.Type]ast.BinaryOp{token.EQ_EQ: ast.Eq, token.NOT_EQ: ast.NotEq}
var relOps = map[token.Type]ast.BinaryOp{token.LT: ast.Lt, token.LT_EQ: ast.LtEq, token.GT: ast.Gt, token.GT_EQ: ast.GtEq}
var addOps = map[token.Type]ast.BinaryOp{token.PLUS: ast.Add, token.MINUS: ast.Sub}
var mulOps = map[token.Type]ast.BinaryOp{token.STAR: ast.Mul, token.SLASH: ast.Div, token.PERCENT: ast.Mod}

func (p *Parser) parseLogicalOr() ast.Expression  { return p.parseLevel(p.parseLogicalAnd, orOps) }
func (p *Parser) parseLogicalAnd() ast.Expression { return p.parseLevel(p.parseEquality, andOps) }
func (p *Parser) parseEquality() ast.Expression    { return p.parseLevel(p.parseRelational, eqOps) }
func (p *Parser) parseRelational() ast.Expression  { return p.parseLevel(p.parseAdditive, relOps) }
func (p *Parser) parseAdditive() ast.Expression    { return p.parseLevel(p.parseMultiplicative, addOps) }
func (p *Parser) parseMultiplicative() ast.Expression { return p.parseLevel(p.parseUnary, mulOps) }

// parseUnary binds looser than postfix call/method/field access (spec.md
// §4.2's precedence list has unary below call/method/field), so "-x.foo()"
// parses as "-(x.foo())".
func (p *Parser) parseUnary() ast.Expression {
	if p.check(token.MINUS) {
		start := p.cur().Span
		p.advance()
		if p.check(token.MINUS) {
			p.errAt(errors.KindSyntaxError, p.cur().Span, "Double minus not allowed")
		}
		operand, parenthesized := p.parseNegatableOperand()
		return &ast.Unary{Op: ast.Neg, Operand: operand, Parenthesized: parenthesized, Sp: span.Union(start, operand.Span())}
	}
	return p.parsePostfix()
}

// parseNegatableOperand reports whether the operand of a unary minus is a
// bare parenthesized group, e.g. "-(a + b)" (spec.md §4.6: reproduced as
// "-(...)"). A parenthesized group immediately followed by further postfix
// access ("-(a+b).abs()") is treated as not purely parenthesized, since the
// operand as a whole is then the postfix chain, not the group alone.
func (p *Parser) parseNegatableOperand() (ast.Expression, bool) {
	if p.check(token.LPAREN) {
		p.advance()
		inner := p.parseExpression()
		p.expect(token.RPAREN, "')'")
		if p.check(token.DOT) {
			return p.parsePostfixLoop(inner), false
		}
		return inner, true
	}
	return p.parsePostfix(), false
}

func (p *Parser) parsePostfix() ast.Expression {
	return p.parsePostfixLoop(p.parsePrimary())
}

func (p *Parser) parsePostfixLoop(base ast.Expression) ast.Expression {
	for p.check(token.DOT) {
		p.advance()
		name, nameSpan, _ := p.expectIdent("field or method name")
		if p.check(token.LPAREN) {
			args, multiline, closeSpan := p.parseArgList()
			base = &ast.MethodCall{
				Receiver: base, Method: name, Args: args, IsMultiline: multiline,
				ID: p.idgen.Next(), Sp: span.Union(base.Span(), closeSpan),
			}
		} else {
			base = &ast.FieldAccess{Object: base, Field: name, Sp: span.Union(base.Span(), nameSpan)}
		}
	}
	return base
}

func (p *Parser) parsePrimary() ast.Expression {
	t := p.cur()
	switch t.Type {
	case token.INT:
		p.advance()
		n, _ := strconv.ParseInt(t.Lexeme, 10, 64)
		return &ast.Literal{Kind: ast.IntLiteral, Int: n, Sp: t.Span}
	case token.STRING:
		p.advance()
		return &ast.Literal{Kind: ast.StringLiteral, Str: t.Lexeme, Sp: t.Span}
	case token.TRUE:
		p.advance()
		return &ast.Literal{Kind: ast.BoolLiteral, Bool: true, Sp: t.Span}
	case token.FALSE:
		p.advance()
		return &ast.Literal{Kind: ast.BoolLiteral, Bool: false, Sp: t.Span}
	case token.IDENT:
		switch t.Lexeme {
		case "Unit":
			if p.at(1).Type != token.LPAREN {
				p.advance()
				return &ast.Literal{Kind: ast.UnitLiteral, Sp: t.Span}
			}
		case "null":
			if p.at(1).Type != token.LPAREN {
				p.advance()
				return &ast.Literal{Kind: ast.NullLiteral, Sp: t.Span}
			}
		}
		p.advance()
		if p.check(token.LPAREN) {
			args, multiline, closeSpan := p.parseArgList()
			return &ast.Call{
				Callee: &ast.Identifier{Name: t.Lexeme, Sp: t.Span}, Args: args, IsMultiline: multiline,
				ID: p.idgen.Next(), Sp: span.Union(t.Span, closeSpan),
			}
		}
		return &ast.Identifier{Name: t.Lexeme, Sp: t.Span}
	case token.LPAREN:
		p.advance()
		inner := p.parseExpression()
		p.expect(token.RPAREN, "')'")
		return inner
	default:
		p.errAt(errors.KindUnexpectedToken, t.Span, "unexpected token %s in expression", t.Type)
		p.advance()
		return &ast.Literal{Kind: ast.UnitLiteral, Sp: t.Span}
	}
}

// parseArgList parses a parenthesized argument list, implementing the
// comment-attachment rules for arguments (spec.md §4.2 rule 3) and
// recording is_multiline from whether the closing paren lands on a
// different line than the opening one (rule 4).
func (p *Parser) parseArgList() ([]ast.Argument, bool, span.Span) {
	open, _ := p.expect(token.LPAREN, "'('")
	var args []ast.Argument
	for {
		p.skipNewlines()
		if p.check(token.RPAREN) || p.atEnd() {
			break
		}
		var before *comment.Comment
		if p.preserveComments && p.check(token.COMMENT) {
			before = p.cur().Comment
			p.advance()
			p.skipNewlines()
		}
		if p.check(token.RPAREN) {
			if before != nil {
				args = append(args, ast.Argument{Kind: ast.StandaloneCommentArg, Standalone: before, Sp: p.cur().Span})
			}
			break
		}

		var arg ast.Argument
		start := p.cur().Span
		switch {
		case p.check(token.DOT):
			p.advance()
			name, nameSpan, _ := p.expectIdent("field name")
			arg = ast.Argument{Kind: ast.ShorthandArg, Name: name, Comments: comment.Pair{Before: before}, Sp: span.Union(start, nameSpan)}
		case p.check(token.IDENT) && p.at(1).Type == token.EQUALS:
			name, _, _ := p.expectIdent("argument name")
			p.expect(token.EQUALS, "'='")
			expr := p.parseExpression()
			arg = ast.Argument{Kind: ast.NamedArg, Name: name, Expr: expr, Comments: comment.Pair{Before: before}, Sp: span.Union(start, expr.Span())}
		default:
			expr := p.parseExpression()
			arg = ast.Argument{Kind: ast.BareArg, Expr: expr, Comments: comment.Pair{Before: before}, Sp: span.Union(start, expr.Span())}
		}
		if p.preserveComments && p.check(token.COMMENT) && p.cur().Span.Start.Line == arg.Sp.End.Line {
			arg.Comments.After = p.cur().Comment
			p.advance()
		}
		args = append(args, arg)
		p.skipNewlines()
		if !p.match(token.COMMA) {
			break
		}
	}
	close, _ := p.expect(token.RPAREN, "')'")
	multiline := close.Span.Start.Line != open.Span.Start.Line
	return args, multiline, close.Span
}
