package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/lexer"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/token"
)

func typesOf(toks []token.Token) []token.Type {
	out := make([]token.Type, len(toks))
	for i, t := range toks {
		out[i] = t.Type
	}
	return out
}

func TestLexer_Keywords(t *testing.T) {
	toks, diags := lexer.New("val fun if else while return import data class true false", "t.vl", false, nil).Lex()
	require.Zero(t, diags.Len())
	got := typesOf(toks)
	expected := []token.Type{
		token.VAL, token.FUN, token.IF, token.ELSE, token.WHILE, token.RETURN,
		token.IMPORT, token.DATA, token.CLASS, token.TRUE, token.FALSE, token.EOF,
	}
	assert.Equal(t, expected, got)
}

func TestLexer_Identifiers(t *testing.T) {
	toks, diags := lexer.New("fibonacci n2 _private", "t.vl", false, nil).Lex()
	require.Zero(t, diags.Len())
	require.Len(t, toks, 4)
	for i, want := range []string{"fibonacci", "n2", "_private"} {
		assert.Equal(t, token.IDENT, toks[i].Type)
		assert.Equal(t, want, toks[i].Lexeme)
	}
}

func TestLexer_Operators(t *testing.T) {
	src := "+ - * / % == != < <= > >= && || ! . , : ; ( ) { } [ ] = -> =>"
	toks, diags := lexer.New(src, "t.vl", false, nil).Lex()
	require.Zero(t, diags.Len())
	expected := []token.Type{
		token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT,
		token.EQ_EQ, token.NOT_EQ, token.LT, token.LT_EQ, token.GT, token.GT_EQ,
		token.AND_AND, token.OR_OR, token.BANG, token.DOT, token.COMMA,
		token.COLON, token.SEMICOLON, token.LPAREN, token.RPAREN,
		token.LBRACE, token.RBRACE, token.LBRACKET, token.RBRACKET,
		token.EQUALS, token.ARROW, token.FAT_ARROW, token.EOF,
	}
	assert.Equal(t, expected, typesOf(toks))
}

func TestLexer_StringEscapes(t *testing.T) {
	toks, diags := lexer.New(`"a\nb\t\"c\\"`, "t.vl", false, nil).Lex()
	require.Zero(t, diags.Len())
	require.Len(t, toks, 2)
	assert.Equal(t, token.STRING, toks[0].Type)
	assert.Equal(t, "a\nb\t\"c\\", toks[0].Lexeme)
}

func TestLexer_UnterminatedString(t *testing.T) {
	_, diags := lexer.New(`"abc`, "t.vl", false, nil).Lex()
	require.Equal(t, 1, diags.Len())
	assert.Contains(t, diags.Items()[0].Compact(), "UnterminatedString")
}

func TestLexer_InvalidNumber(t *testing.T) {
	_, diags := lexer.New("123abc", "t.vl", false, nil).Lex()
	require.Equal(t, 1, diags.Len())
	assert.Contains(t, diags.Items()[0].Compact(), "InvalidNumber")
}

func TestLexer_InvalidCharacter(t *testing.T) {
	_, diags := lexer.New("val x = 1 ~ 2", "t.vl", false, nil).Lex()
	require.Equal(t, 1, diags.Len())
	assert.Contains(t, diags.Items()[0].Compact(), "InvalidCharacter")
}

func TestLexer_LineComment_Preserved(t *testing.T) {
	toks, diags := lexer.New("val x = 1 // hello\n", "t.vl", true, nil).Lex()
	require.Zero(t, diags.Len())
	var found bool
	for _, tok := range toks {
		if tok.Type == token.COMMENT {
			found = true
			require.NotNil(t, tok.Comment)
			assert.Equal(t, "// hello", tok.Comment.Content)
			assert.Equal(t, " ", tok.Comment.Leading)
		}
	}
	assert.True(t, found, "expected a COMMENT token")
}

func TestLexer_LineComment_Discarded(t *testing.T) {
	toks, diags := lexer.New("val x = 1 // hello\n", "t.vl", false, nil).Lex()
	require.Zero(t, diags.Len())
	for _, tok := range toks {
		assert.NotEqual(t, token.COMMENT, tok.Type)
	}
}

func TestLexer_BlockComment(t *testing.T) {
	toks, diags := lexer.New("/* before */ add(1, 2)", "t.vl", true, nil).Lex()
	require.Zero(t, diags.Len())
	require.Equal(t, token.COMMENT, toks[0].Type)
	assert.Equal(t, "/* before */", toks[0].Comment.Content)
}

func TestLexer_Newlines(t *testing.T) {
	toks, diags := lexer.New("val x = 1\nval y = 2", "t.vl", false, nil).Lex()
	require.Zero(t, diags.Len())
	var newlines int
	for _, tok := range toks {
		if tok.Type == token.NEWLINE {
			newlines++
		}
	}
	assert.Equal(t, 1, newlines)
}

func TestLexer_SpansAreMonotonic(t *testing.T) {
	toks, _ := lexer.New("val abc = 123", "t.vl", false, nil).Lex()
	for i := 1; i < len(toks); i++ {
		assert.False(t, toks[i].Span.Start.Less(toks[i-1].Span.Start),
			"token %d span should not precede token %d", i, i-1)
	}
}
