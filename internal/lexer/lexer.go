// Package lexer turns Veltrano source text into a token stream (spec.md
// §4.1). The scanning loop, its ASCII classification tables populated in
// init(), and its line/column bookkeeping are grounded on the teacher's
// runtime/lexer/lexer.go; unlike the teacher's multi-mode shell lexer,
// Veltrano's grammar is mode-free, so this is a single scanning loop.
package lexer

import (
	"log/slog"
	"unicode/utf8"

	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/comment"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/debug"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/errors"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/span"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/token"
)

// ASCII classification tables, populated once in init(), mirroring the
// teacher's [128]bool fast-path lookup approach.
var (
	isWhitespace [128]bool
	isIdentStart [128]bool
	isIdentPart  [128]bool
	isDigit      [128]bool
)

func init() {
	for i := 0; i < 128; i++ {
		ch := byte(i)
		isWhitespace[i] = ch == ' ' || ch == '\t' || ch == '\r'
		isDigit[i] = ch >= '0' && ch <= '9'
		isIdentStart[i] = (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
		isIdentPart[i] = isIdentStart[i] || isDigit[i]
	}
}

// Lexer scans one source file into a token stream. It is used once and
// discarded; Lex() drives the whole scan.
type Lexer struct {
	file   string
	input  string
	pos    int // byte offset of ch
	rdPos  int // byte offset of next rune
	ch     rune
	line   int
	column int

	preserveComments bool
	logger           *slog.Logger

	diags *errors.Collection
}

// New creates a Lexer over source, attributed to file for span reporting.
// A nil logger falls back to the package-wide debug logger.
func New(source, file string, preserveComments bool, logger *slog.Logger) *Lexer {
	if logger == nil {
		logger = debug.Logger()
	}
	l := &Lexer{
		file:             file,
		input:            source,
		line:             1,
		column:           0,
		preserveComments: preserveComments,
		logger:           logger,
		diags:            &errors.Collection{},
	}
	l.advance()
	return l
}

// Lex scans the entire input and returns the token stream (always ending
// with a synthetic EOF token) plus any diagnostics collected along the
// way, per spec.md §4.1's contract.
func (l *Lexer) Lex() ([]token.Token, *errors.Collection) {
	var out []token.Token
	for {
		tok, ok := l.next()
		if ok {
			out = append(out, tok)
		}
		if tok.Type == token.EOF {
			break
		}
	}
	l.logger.Debug("lex complete", "tokens", len(out), "errors", l.diags.Len())
	return out, l.diags
}

func (l *Lexer) here() span.Position {
	return span.Position{Line: l.line, Column: l.column}
}

func (l *Lexer) spanFrom(start span.Position) span.Span {
	return span.Span{File: l.file, Start: start, End: l.here()}
}

// advance consumes the current rune and loads the next one, updating
// line/column. Called once up front and after every consumed rune.
func (l *Lexer) advance() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.rdPos >= len(l.input) {
		l.pos = l.rdPos
		l.ch = 0
		return
	}
	r, w := rune(l.input[l.rdPos]), 1
	if r >= utf8.RuneSelf {
		r, w = utf8.DecodeRuneInString(l.input[l.rdPos:])
	}
	l.pos = l.rdPos
	l.rdPos += w
	l.ch = r
	l.column++
}

func (l *Lexer) peek() rune {
	if l.rdPos >= len(l.input) {
		return 0
	}
	r := rune(l.input[l.rdPos])
	if r >= utf8.RuneSelf {
		r, _ = utf8.DecodeRuneInString(l.input[l.rdPos:])
	}
	return r
}

func asciiByte(r rune) (byte, bool) {
	if r >= 0 && r < 128 {
		return byte(r), true
	}
	return 0, false
}

// next scans and returns a single token. ok is false only for a comment
// discarded because comment preservation is off (callers of next always
// loop until ok or EOF; Lex handles this directly by only appending when ok).
func (l *Lexer) next() (token.Token, bool) {
	leading := l.skipWhitespaceCapturingRun()

	start := l.here()

	if l.ch == 0 {
		return token.Token{Type: token.EOF, Span: l.spanFrom(start)}, true
	}

	if l.ch == '\n' {
		l.advance()
		return token.Token{Type: token.NEWLINE, Lexeme: "\n", Span: l.spanFrom(start)}, true
	}

	if b, ok := asciiByte(l.ch); ok && isIdentStart[b] {
		return l.scanIdentifier(start), true
	}
	if b, ok := asciiByte(l.ch); ok && isDigit[b] {
		return l.scanNumber(start), true
	}
	if l.ch == '"' {
		return l.scanString(start)
	}
	if l.ch == '/' && l.peek() == '/' {
		return l.scanLineComment(start, leading)
	}
	if l.ch == '/' && l.peek() == '*' {
		return l.scanBlockComment(start, leading)
	}

	return l.scanSymbol(start)
}

// skipWhitespaceCapturingRun consumes a run of spaces/tabs/CR (not
// newlines) and returns it verbatim, so a following comment can record it
// as its Leading whitespace (spec.md §4.1/§4.6).
func (l *Lexer) skipWhitespaceCapturingRun() string {
	startPos := l.pos
	for {
		b, ok := asciiByte(l.ch)
		if !ok || !isWhitespace[b] {
			break
		}
		l.advance()
	}
	return l.input[startPos:l.pos]
}

func (l *Lexer) scanIdentifier(start span.Position) token.Token {
	begin := l.pos
	for {
		b, ok := asciiByte(l.ch)
		if !ok || !isIdentPart[b] {
			break
		}
		l.advance()
	}
	text := l.input[begin:l.pos]
	typ := token.IDENT
	if kw, isKeyword := token.Keywords[text]; isKeyword {
		typ = kw
	}
	return token.Token{Type: typ, Lexeme: text, Span: l.spanFrom(start)}
}

func (l *Lexer) scanNumber(start span.Position) token.Token {
	begin := l.pos
	for {
		b, ok := asciiByte(l.ch)
		if !ok || !isDigit[b] {
			break
		}
		l.advance()
	}
	text := l.input[begin:l.pos]
	if b, ok := asciiByte(l.ch); ok && isIdentStart[b] {
		// A letter glued directly onto a digit run, e.g. "123abc", is not a
		// valid number and not a valid identifier either.
		for {
			b, ok := asciiByte(l.ch)
			if !ok || !isIdentPart[b] {
				break
			}
			l.advance()
		}
		full := l.input[begin:l.pos]
		sp := l.spanFrom(start)
		l.diags.Addf(errors.KindInvalidNumber, sp, "invalid number literal %q", full)
		return token.Token{Type: token.ILLEGAL, Lexeme: full, Span: sp}
	}
	return token.Token{Type: token.INT, Lexeme: text, Span: l.spanFrom(start)}
}

func (l *Lexer) scanString(start span.Position) (token.Token, bool) {
	l.advance() // consume opening quote
	var out []byte
	for {
		if l.ch == 0 || l.ch == '\n' {
			sp := l.spanFrom(start)
			l.diags.Addf(errors.KindUnterminatedString, sp, "unterminated string literal")
			return token.Token{Type: token.ILLEGAL, Lexeme: string(out), Span: sp}, true
		}
		if l.ch == '"' {
			l.advance()
			break
		}
		if l.ch == '\\' {
			l.advance()
			switch l.ch {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case 'r':
				out = append(out, '\r')
			case '\\':
				out = append(out, '\\')
			case '"':
				out = append(out, '"')
			case '0':
				out = append(out, 0)
			default:
				sp := l.spanFrom(start)
				l.diags.Addf(errors.KindUnterminatedString, sp, "invalid escape sequence \\%c", l.ch)
				out = append(out, '\\', byte(l.ch))
			}
			l.advance()
			continue
		}
		out = appendRune(out, l.ch)
		l.advance()
	}
	return token.Token{Type: token.STRING, Lexeme: string(out), Span: l.spanFrom(start)}, true
}

func appendRune(buf []byte, r rune) []byte {
	var tmp [utf8.UTFMax]byte
	n := utf8.EncodeRune(tmp[:], r)
	return append(buf, tmp[:n]...)
}

func (l *Lexer) scanLineComment(start span.Position, leading string) (token.Token, bool) {
	begin := l.pos
	for l.ch != '\n' && l.ch != 0 {
		l.advance()
	}
	text := l.input[begin:l.pos]
	if !l.preserveComments {
		return token.Token{}, false
	}
	c := &comment.Comment{Content: text, Leading: leading, Style: comment.Line}
	return token.Token{Type: token.COMMENT, Lexeme: text, Span: l.spanFrom(start), Comment: c}, true
}

func (l *Lexer) scanBlockComment(start span.Position, leading string) (token.Token, bool) {
	begin := l.pos
	l.advance() // consume '/'
	l.advance() // consume '*'
	for {
		if l.ch == 0 {
			sp := l.spanFrom(start)
			l.diags.Addf(errors.KindUnterminatedString, sp, "unterminated block comment")
			break
		}
		if l.ch == '*' && l.peek() == '/' {
			l.advance()
			l.advance()
			break
		}
		l.advance()
	}
	text := l.input[begin:l.pos]
	if !l.preserveComments {
		return token.Token{}, false
	}
	c := &comment.Comment{Content: text, Leading: leading, Style: comment.Block}
	return token.Token{Type: token.COMMENT, Lexeme: text, Span: l.spanFrom(start), Comment: c}, true
}

// scanSymbol scans one operator/punctuation token, preferring the longest
// match (e.g. "==" over "=").
func (l *Lexer) scanSymbol(start span.Position) (token.Token, bool) {
	ch := l.ch
	two := func(next rune, typ token.Type, lex string) (token.Token, bool) {
		if l.peek() == next {
			l.advance()
			l.advance()
			return token.Token{Type: typ, Lexeme: lex, Span: l.spanFrom(start)}, true
		}
		return token.Token{}, false
	}

	switch ch {
	case '=':
		if t, ok := two('=', token.EQ_EQ, "=="); ok {
			return t, true
		}
		if t, ok := two('>', token.FAT_ARROW, "=>"); ok {
			return t, true
		}
		l.advance()
		return token.Token{Type: token.EQUALS, Lexeme: "=", Span: l.spanFrom(start)}, true
	case '!':
		if t, ok := two('=', token.NOT_EQ, "!="); ok {
			return t, true
		}
		l.advance()
		return token.Token{Type: token.BANG, Lexeme: "!", Span: l.spanFrom(start)}, true
	case '<':
		if t, ok := two('=', token.LT_EQ, "<="); ok {
			return t, true
		}
		l.advance()
		return token.Token{Type: token.LT, Lexeme: "<", Span: l.spanFrom(start)}, true
	case '>':
		if t, ok := two('=', token.GT_EQ, ">="); ok {
			return t, true
		}
		l.advance()
		return token.Token{Type: token.GT, Lexeme: ">", Span: l.spanFrom(start)}, true
	case '&':
		if t, ok := two('&', token.AND_AND, "&&"); ok {
			return t, true
		}
		return l.illegal(start)
	case '|':
		if t, ok := two('|', token.OR_OR, "||"); ok {
			return t, true
		}
		return l.illegal(start)
	case '-':
		if t, ok := two('>', token.ARROW, "->"); ok {
			return t, true
		}
		l.advance()
		return token.Token{Type: token.MINUS, Lexeme: "-", Span: l.spanFrom(start)}, true
	case '+':
		l.advance()
		return token.Token{Type: token.PLUS, Lexeme: "+", Span: l.spanFrom(start)}, true
	case '*':
		l.advance()
		return token.Token{Type: token.STAR, Lexeme: "*", Span: l.spanFrom(start)}, true
	case '/':
		l.advance()
		return token.Token{Type: token.SLASH, Lexeme: "/", Span: l.spanFrom(start)}, true
	case '%':
		l.advance()
		return token.Token{Type: token.PERCENT, Lexeme: "%", Span: l.spanFrom(start)}, true
	case '.':
		l.advance()
		return token.Token{Type: token.DOT, Lexeme: ".", Span: l.spanFrom(start)}, true
	case ',':
		l.advance()
		return token.Token{Type: token.COMMA, Lexeme: ",", Span: l.spanFrom(start)}, true
	case ':':
		l.advance()
		return token.Token{Type: token.COLON, Lexeme: ":", Span: l.spanFrom(start)}, true
	case ';':
		l.advance()
		return token.Token{Type: token.SEMICOLON, Lexeme: ";", Span: l.spanFrom(start)}, true
	case '(':
		l.advance()
		return token.Token{Type: token.LPAREN, Lexeme: "(", Span: l.spanFrom(start)}, true
	case ')':
		l.advance()
		return token.Token{Type: token.RPAREN, Lexeme: ")", Span: l.spanFrom(start)}, true
	case '{':
		l.advance()
		return token.Token{Type: token.LBRACE, Lexeme: "{", Span: l.spanFrom(start)}, true
	case '}':
		l.advance()
		return token.Token{Type: token.RBRACE, Lexeme: "}", Span: l.spanFrom(start)}, true
	case '[':
		l.advance()
		return token.Token{Type: token.LBRACKET, Lexeme: "[", Span: l.spanFrom(start)}, true
	case ']':
		l.advance()
		return token.Token{Type: token.RBRACKET, Lexeme: "]", Span: l.spanFrom(start)}, true
	default:
		return l.illegal(start)
	}
}

func (l *Lexer) illegal(start span.Position) (token.Token, bool) {
	ch := l.ch
	l.advance()
	sp := l.spanFrom(start)
	l.diags.Addf(errors.KindInvalidCharacter, sp, "invalid character %q", ch)
	return token.Token{Type: token.ILLEGAL, Lexeme: string(ch), Span: sp}, true
}
