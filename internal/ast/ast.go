// Package ast defines Veltrano's located abstract syntax tree (spec.md
// §3/§4.2). Every node knows its own span and, where the grammar allows a
// comment to attach, carries an explicit comment slot rather than relying
// on comment re-discovery from raw tokens at emit time (spec.md §9's
// "comment attachment vs. whitespace-insensitive grammar" note).
//
// The Node interface and the "every node knows its own position" shape are
// grounded on the teacher's core/ast/ast.go (Node{String, Position,
// TokenRange}), trimmed to what this spec actually needs: a span and a
// debug string, since Veltrano's AST is consumed by a type checker and
// code generator rather than an LSP.
package ast

import (
	"fmt"
	"strings"

	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/comment"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/span"
)

// Node is implemented by every AST node.
type Node interface {
	Span() span.Span
	String() string
}

// Expression is implemented by every expression node (spec.md §3).
type Expression interface {
	Node
	exprNode()
}

// Statement is implemented by every statement node (spec.md §3).
type Statement interface {
	Node
	stmtNode()
}

// IDGen assigns monotonically increasing, globally unique IDs to Call and
// MethodCall nodes at parse time (spec.md §3 invariant 3, §9 "Expression
// IDs"). The type checker keys its resolved-signature side table by this
// ID instead of mutating the AST.
type IDGen struct{ next int64 }

// Next returns the next unique ID, starting from 1.
func (g *IDGen) Next() int64 {
	g.next++
	return g.next
}

// ---- Program ----

// Program is the root node: an ordered sequence of statements.
type Program struct {
	Stmts []Statement
	Sp    span.Span
}

func (p *Program) Span() span.Span { return p.Sp }
func (p *Program) String() string {
	parts := make([]string, len(p.Stmts))
	for i, s := range p.Stmts {
		parts[i] = s.String()
	}
	return strings.Join(parts, "\n")
}

// ---- Type annotations (as written in source; not yet resolved) ----

// TypeRef is a syntactic type annotation, e.g. "I64", "Ref<String>",
// "Array<I32, 4>". The checker (internal/checker) resolves this into a
// types.VeltranoType; ast itself stays free of the type algebra so parsing
// never depends on type-checking.
type TypeRef struct {
	Name      string
	Args      []*TypeRef
	ArraySize *int64 // non-nil only for Name == "Array"
	Sp        span.Span
}

func (t *TypeRef) Span() span.Span { return t.Sp }
func (t *TypeRef) String() string {
	if t == nil {
		return ""
	}
	if len(t.Args) == 0 {
		return t.Name
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s<%s>", t.Name, strings.Join(parts, ", "))
}

// ---- Expressions ----

// LiteralKind distinguishes the literal forms spec.md §3 lists.
type LiteralKind int

const (
	IntLiteral LiteralKind = iota
	StringLiteral
	BoolLiteral
	UnitLiteral
	NullLiteral
)

// Literal is a constant value expression.
type Literal struct {
	Kind    LiteralKind
	Int     int64
	Str     string
	Bool    bool
	Sp      span.Span
}

func (*Literal) exprNode()       {}
func (l *Literal) Span() span.Span { return l.Sp }
func (l *Literal) String() string {
	switch l.Kind {
	case IntLiteral:
		return fmt.Sprintf("%d", l.Int)
	case StringLiteral:
		return fmt.Sprintf("%q", l.Str)
	case BoolLiteral:
		return fmt.Sprintf("%t", l.Bool)
	case UnitLiteral:
		return "Unit"
	case NullLiteral:
		return "null"
	default:
		return "<literal>"
	}
}

// Identifier is a name reference.
type Identifier struct {
	Name string
	Sp   span.Span
}

func (*Identifier) exprNode()         {}
func (i *Identifier) Span() span.Span { return i.Sp }
func (i *Identifier) String() string  { return i.Name }

// UnaryOp enumerates unary operators. Only Minus exists per spec.md §4.1.
type UnaryOp int

const (
	Neg UnaryOp = iota
)

// Unary is a prefix-operator expression.
type Unary struct {
	Op      UnaryOp
	Operand Expression
	// Parenthesized records that Operand was written in parens, e.g.
	// "-(a + b)", so the code generator reproduces the grouping exactly
	// (spec.md §4.6: "Unary '-' on a parenthesized operand emits as
	// -(...)").
	Parenthesized bool
	Sp            span.Span
}

func (*Unary) exprNode()         {}
func (u *Unary) Span() span.Span { return u.Sp }
func (u *Unary) String() string {
	if u.Parenthesized {
		return fmt.Sprintf("-(%s)", u.Operand.String())
	}
	return fmt.Sprintf("-%s", u.Operand.String())
}

// BinaryOp enumerates the arithmetic/comparison/logical operators.
type BinaryOp int

const (
	Add BinaryOp = iota
	Sub
	Mul
	Div
	Mod
	Eq
	NotEq
	Lt
	LtEq
	Gt
	GtEq
	LogicalAnd
	LogicalOr
)

var binaryOpSymbols = map[BinaryOp]string{
	Add: "+", Sub: "-", Mul: "*", Div: "/", Mod: "%",
	Eq: "==", NotEq: "!=", Lt: "<", LtEq: "<=", Gt: ">", GtEq: ">=",
	LogicalAnd: "&&", LogicalOr: "||",
}

func (op BinaryOp) String() string { return binaryOpSymbols[op] }

// Binary is a two-operand expression. CommentAfterLeft/CommentAfterOperator
// hold comments trailing the left operand and the operator respectively
// (spec.md §3/§4.2 comment-attachment rule 5).
type Binary struct {
	Left              Expression
	CommentAfterLeft  *comment.Comment
	Op                BinaryOp
	CommentAfterOperator *comment.Comment
	Right             Expression
	// LeftParenthesized/RightParenthesized make the generator parenthesize
	// that operand. The parser never sets them: source parentheses are
	// reflected only in the tree shape.
	LeftParenthesized  bool
	RightParenthesized bool
	Sp                 span.Span
}

func (*Binary) exprNode()         {}
func (b *Binary) Span() span.Span { return b.Sp }
func (b *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left.String(), b.Op.String(), b.Right.String())
}

// ArgKind distinguishes the four Argument forms spec.md §3 defines.
type ArgKind int

const (
	BareArg ArgKind = iota
	NamedArg
	ShorthandArg
	StandaloneCommentArg
)

// Argument is one element of a call's argument list.
type Argument struct {
	Kind     ArgKind
	Name     string          // NamedArg / ShorthandArg field name
	Expr     Expression      // BareArg / NamedArg
	Comments comment.Pair    // before/after comments on this argument slot
	Standalone *comment.Comment // StandaloneCommentArg's own comment, set when Kind == StandaloneCommentArg
	Whitespace string        // StandaloneCommentArg's leading whitespace
	Sp       span.Span
}

func (a Argument) Span() span.Span { return a.Sp }
func (a Argument) String() string {
	switch a.Kind {
	case BareArg:
		return a.Expr.String()
	case NamedArg:
		return fmt.Sprintf("%s = %s", a.Name, a.Expr.String())
	case ShorthandArg:
		return "." + a.Name
	case StandaloneCommentArg:
		if a.Standalone != nil {
			return a.Standalone.Content
		}
		return ""
	default:
		return "<arg>"
	}
}

// Call is a free-function call expression.
type Call struct {
	Callee      Expression
	Args        []Argument
	IsMultiline bool
	ID          int64
	Sp          span.Span
}

func (*Call) exprNode()         {}
func (c *Call) Span() span.Span { return c.Sp }
func (c *Call) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Callee.String(), strings.Join(parts, ", "))
}

// MethodCall is a "receiver.method(args)" expression.
type MethodCall struct {
	Receiver       Expression
	Method         string
	Args           []Argument
	InlineComment  *comment.Comment
	IsMultiline    bool
	ID             int64
	Sp             span.Span
}

func (*MethodCall) exprNode()         {}
func (m *MethodCall) Span() span.Span { return m.Sp }
func (m *MethodCall) String() string {
	parts := make([]string, len(m.Args))
	for i, a := range m.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s.%s(%s)", m.Receiver.String(), m.Method, strings.Join(parts, ", "))
}

// FieldAccess is a "object.field" expression (no call parens).
type FieldAccess struct {
	Object Expression
	Field  string
	Sp     span.Span
}

func (*FieldAccess) exprNode()         {}
func (f *FieldAccess) Span() span.Span { return f.Sp }
func (f *FieldAccess) String() string  { return fmt.Sprintf("%s.%s", f.Object.String(), f.Field) }

// ---- Statements ----

// ExpressionStmt wraps a bare expression used as a statement.
type ExpressionStmt struct {
	Expr Expression
	Sp   span.Span
}

func (*ExpressionStmt) stmtNode()         {}
func (s *ExpressionStmt) Span() span.Span { return s.Sp }
func (s *ExpressionStmt) String() string  { return s.Expr.String() }

// VarDecl is "val name[: Type] = initializer".
type VarDecl struct {
	Name        string
	TypeAnn     *TypeRef // nil if omitted
	Initializer Expression
	Sp          span.Span
}

func (*VarDecl) stmtNode()         {}
func (v *VarDecl) Span() span.Span { return v.Sp }
func (v *VarDecl) String() string {
	if v.TypeAnn != nil {
		return fmt.Sprintf("val %s: %s = %s", v.Name, v.TypeAnn.String(), v.Initializer.String())
	}
	return fmt.Sprintf("val %s = %s", v.Name, v.Initializer.String())
}

// Param is one function parameter.
type Param struct {
	Name    string
	TypeAnn *TypeRef
	Sp      span.Span
}

// FunDecl is a function declaration. HasHiddenBump is computed after
// parsing by ComputeBumpFlags (spec.md §4.2 "Bump flag computation",
// invariant 3/4).
type FunDecl struct {
	Name          string
	Params        []Param
	ReturnType    *TypeRef // nil means Unit
	Body          *Block
	HasHiddenBump bool
	Sp            span.Span
}

func (*FunDecl) stmtNode()         {}
func (f *FunDecl) Span() span.Span { return f.Sp }
func (f *FunDecl) String() string {
	names := make([]string, len(f.Params))
	for i, p := range f.Params {
		names[i] = p.Name
	}
	return fmt.Sprintf("fun %s(%s)", f.Name, strings.Join(names, ", "))
}

// If is "if cond { then } [else { else }]".
type If struct {
	Condition Expression
	Then      *Block
	Else      *Block // nil if absent; an "else if" is represented as a
	// single-statement Block containing another *If, so chains don't need
	// a separate node kind.
	Sp span.Span
}

func (*If) stmtNode()         {}
func (i *If) Span() span.Span { return i.Sp }
func (i *If) String() string  { return fmt.Sprintf("if %s { ... }", i.Condition.String()) }

// While is "while cond { body }".
type While struct {
	Condition Expression
	Body      *Block
	Sp        span.Span
}

func (*While) stmtNode()         {}
func (w *While) Span() span.Span { return w.Sp }
func (w *While) String() string  { return fmt.Sprintf("while %s { ... }", w.Condition.String()) }

// Return is "return [expr]".
type Return struct {
	Value Expression // nil for a bare "return"
	Sp    span.Span
}

func (*Return) stmtNode()         {}
func (r *Return) Span() span.Span { return r.Sp }
func (r *Return) String() string {
	if r.Value == nil {
		return "return"
	}
	return fmt.Sprintf("return %s", r.Value.String())
}

// Block is a brace-delimited statement list.
type Block struct {
	Stmts []Statement
	Sp    span.Span
}

func (*Block) stmtNode()         {}
func (b *Block) Span() span.Span { return b.Sp }
func (b *Block) String() string {
	parts := make([]string, len(b.Stmts))
	for i, s := range b.Stmts {
		parts[i] = s.String()
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

// CommentStmt is a comment occupying its own line between statements
// (spec.md §4.2 comment-attachment rule 2).
type CommentStmt struct {
	Comment comment.Comment
	Sp      span.Span
}

func (*CommentStmt) stmtNode()         {}
func (c *CommentStmt) Span() span.Span { return c.Sp }
func (c *CommentStmt) String() string  { return c.Comment.Content }

// Import is "import TypeName.method [as alias]".
type Import struct {
	TypeName string
	Method   string
	Alias    string // "" if absent
	Sp       span.Span
}

func (*Import) stmtNode()         {}
func (i *Import) Span() span.Span { return i.Sp }
func (i *Import) String() string {
	if i.Alias != "" {
		return fmt.Sprintf("import %s.%s as %s", i.TypeName, i.Method, i.Alias)
	}
	return fmt.Sprintf("import %s.%s", i.TypeName, i.Method)
}

// Field is one data class field.
type Field struct {
	Name    string
	TypeAnn *TypeRef
	Sp      span.Span
}

// DataClass is "data class Name(val f1: T1, ...)".
type DataClass struct {
	Name   string
	Fields []Field
	Sp     span.Span
}

func (*DataClass) stmtNode()         {}
func (d *DataClass) Span() span.Span { return d.Sp }
func (d *DataClass) String() string {
	names := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		names[i] = f.Name
	}
	return fmt.Sprintf("data class %s(%s)", d.Name, strings.Join(names, ", "))
}
