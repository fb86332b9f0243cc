// Package token defines the lexical tokens recognised by the Veltrano
// lexer. The Type enum and its String() lookup table follow the style of
// the teacher's own token enumeration (TokenType + a precomputed name
// array keyed by the same constants).
package token

import (
	"fmt"

	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/comment"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/span"
)

// Type identifies the lexical class of a token.
type Type int

const (
	EOF Type = iota
	ILLEGAL

	// Literals and identifiers
	IDENT
	INT
	STRING

	// Keywords
	VAL
	FUN
	IF
	ELSE
	WHILE
	RETURN
	IMPORT
	DATA
	CLASS
	TRUE
	FALSE

	// Arithmetic
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT

	// Comparison
	EQ_EQ
	NOT_EQ
	LT
	LT_EQ
	GT
	GT_EQ

	// Logical
	AND_AND
	OR_OR
	BANG

	// Assignment / grouping / punctuation
	EQUALS
	DOT
	COMMA
	COLON
	SEMICOLON
	ARROW    // ->
	FAT_ARROW // =>
	LPAREN
	RPAREN
	LBRACE
	RBRACE
	LBRACKET
	RBRACKET

	// Comments, carried as tokens only when preservation is enabled.
	COMMENT

	// Implicit statement terminator inserted by the lexer at end of line.
	NEWLINE
)

var names = [...]string{
	EOF:       "EOF",
	ILLEGAL:   "ILLEGAL",
	IDENT:     "IDENT",
	INT:       "INT",
	STRING:    "STRING",
	VAL:       "VAL",
	FUN:       "FUN",
	IF:        "IF",
	ELSE:      "ELSE",
	WHILE:     "WHILE",
	RETURN:    "RETURN",
	IMPORT:    "IMPORT",
	DATA:      "DATA",
	CLASS:     "CLASS",
	TRUE:      "TRUE",
	FALSE:     "FALSE",
	PLUS:      "PLUS",
	MINUS:     "MINUS",
	STAR:      "STAR",
	SLASH:     "SLASH",
	PERCENT:   "PERCENT",
	EQ_EQ:     "EQ_EQ",
	NOT_EQ:    "NOT_EQ",
	LT:        "LT",
	LT_EQ:     "LT_EQ",
	GT:        "GT",
	GT_EQ:     "GT_EQ",
	AND_AND:   "AND_AND",
	OR_OR:     "OR_OR",
	BANG:      "BANG",
	EQUALS:    "EQUALS",
	DOT:       "DOT",
	COMMA:     "COMMA",
	COLON:     "COLON",
	SEMICOLON: "SEMICOLON",
	ARROW:     "ARROW",
	FAT_ARROW: "FAT_ARROW",
	LPAREN:    "LPAREN",
	RPAREN:    "RPAREN",
	LBRACE:    "LBRACE",
	RBRACE:    "RBRACE",
	LBRACKET:  "LBRACKET",
	RBRACKET:  "RBRACKET",
	COMMENT:   "COMMENT",
	NEWLINE:   "NEWLINE",
}

// String implements fmt.Stringer, falling back to a numeric form for any
// type outside the precomputed table (keeps this safe under table drift).
func (t Type) String() string {
	if int(t) >= 0 && int(t) < len(names) && names[t] != "" {
		return names[t]
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Keywords maps reserved words to their token type. The lexer consults this
// after scanning a full identifier.
var Keywords = map[string]Type{
	"val":    VAL,
	"fun":    FUN,
	"if":     IF,
	"else":   ELSE,
	"while":  WHILE,
	"return": RETURN,
	"import": IMPORT,
	"data":   DATA,
	"class":  CLASS,
	"true":   TRUE,
	"false":  FALSE,
}

// Token is one lexical unit: its class, its exact source text, its span,
// and - only when comment preservation is configured - an attached comment
// cluster riding along as an interleaved token (spec.md §3).
type Token struct {
	Type    Type
	Lexeme  string
	Span    span.Span
	Comment *comment.Comment // non-nil only for Type == COMMENT
}

// String is a debug rendering, "TYPE(lexeme)@span".
func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%s", t.Type, t.Lexeme, t.Span)
}

// IsKeyword reports whether t is one of the reserved words.
func (t Token) IsKeyword() bool {
	switch t.Type {
	case VAL, FUN, IF, ELSE, WHILE, RETURN, IMPORT, DATA, CLASS, TRUE, FALSE:
		return true
	default:
		return false
	}
}
