package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/leapstack-labs/leapcheck/pkg/token"
	"golang.org/x/text/unicode/norm"
)

var numberRe = regexp.MustCompile(`^[+-]?(\d[\d.,]*|[.,]\d[\d.,]*)([eE][+-]?\d+)?$`)

// Lexer tokenizes a rules file.
type Lexer struct {
	input       string
	file        string
	pos         int // current byte offset in input
	line        int // current line number (1-based)
	col         int // current column number (1-based)
	start       token.Position
	depth       int // open brackets on the current line
	atLineStart bool
	comments    []token.Comment
}

// byteOrderMark is dropped from the start of the input.
const byteOrderMark = "\ufeff"

// NewLexer creates a new lexer for the given input. A leading byte order
// mark is stripped and the input is normalized to NFC.
func NewLexer(input, file string) *Lexer {
	return &Lexer{
		input:       norm.NFC.String(strings.TrimPrefix(input, byteOrderMark)),
		file:        file,
		line:        1,
		col:         1,
		atLineStart: true,
	}
}

// Comments returns the comment lines skipped so far.
func (l *Lexer) Comments() []token.Comment {
	return l.comments
}

// Tokenize converts the input into a slice of tokens ending with EOF.
func (l *Lexer) Tokenize() ([]token.Token, error) {
	var tokens []token.Token

	for {
		tok, err := l.nextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}

	return tokens, nil
}

func (l *Lexer) nextToken() (token.Token, error) {
	if l.atLineStart {
		l.skipWhitespace()
		if l.matchString("//") {
			l.scanComment()
		}
	}
	l.skipWhitespace()

	l.markStart()
	if l.pos >= len(l.input) {
		return l.emit(token.EOF, ""), nil
	}

	r := l.peek()
	if r == '\n' {
		l.advance()
		l.atLineStart = true
		l.depth = 0
		return l.emit(token.NEWLINE, "\n"), nil
	}
	l.atLineStart = false

	switch r {
	case '\'', '"':
		return l.scanString(r)
	case '/':
		return l.scanPattern()
	case '[':
		l.advance()
		l.depth++
		return l.emit(token.LBRACKET, "["), nil
	case ']':
		l.advance()
		if l.depth > 0 {
			l.depth--
		}
		return l.emit(token.RBRACKET, "]"), nil
	case ',':
		l.advance()
		return l.emit(token.COMMA, ","), nil
	case ':':
		l.advance()
		return l.emit(token.COLON, ":"), nil
	case '=':
		l.advance()
		if l.peek() == '=' {
			l.advance()
		}
		return l.emit(token.EQ, "=="), nil
	case '!':
		l.advance()
		if l.peek() != '=' {
			return token.Token{}, NewLexError(l.start, "unexpected '!', expected '!='")
		}
		l.advance()
		return l.emit(token.NE, "!="), nil
	case '>':
		l.advance()
		if l.peek() == '=' {
			l.advance()
			return l.emit(token.GE, ">="), nil
		}
		return l.emit(token.GT, ">"), nil
	case '<':
		l.advance()
		if l.peek() == '=' {
			l.advance()
			return l.emit(token.LE, "<="), nil
		}
		return l.emit(token.LT, "<"), nil
	}

	return l.scanWord(), nil
}

// scanComment consumes a `//` line up to, not including, the newline.
func (l *Lexer) scanComment() {
	l.markStart()
	begin := l.pos
	for l.pos < len(l.input) && l.peek() != '\n' {
		l.advance()
	}
	l.comments = append(l.comments, token.Comment{
		Text: strings.TrimRight(l.input[begin:l.pos], "\r"),
		Span: token.Span{Start: l.start, End: l.position()},
	})
}

// scanString scans a quoted string. A backslash escapes the quote
// character or another backslash and is kept verbatim otherwise.
func (l *Lexer) scanString(quote rune) (token.Token, error) {
	l.advance()

	var sb strings.Builder
	for {
		if l.pos >= len(l.input) || l.peek() == '\n' {
			return token.Token{}, NewLexError(l.start, "unterminated string")
		}
		r := l.peek()
		if r == '\\' {
			l.advance()
			next := l.peek()
			if next == quote || next == '\\' {
				sb.WriteRune(next)
				l.advance()
				continue
			}
			sb.WriteRune('\\')
			continue
		}
		l.advance()
		if r == quote {
			return l.emit(token.STRING, sb.String()), nil
		}
		sb.WriteRune(r)
	}
}

// scanPattern scans /regex/. `\/` yields a slash; other escapes are left
// for the regexp compiler.
func (l *Lexer) scanPattern() (token.Token, error) {
	l.advance()

	var sb strings.Builder
	for {
		if l.pos >= len(l.input) || l.peek() == '\n' {
			return token.Token{}, NewLexError(l.start, "unterminated pattern")
		}
		r := l.peek()
		l.advance()
		switch {
		case r == '/':
			return l.emit(token.PATTERN, sb.String()), nil
		case r == '\\' && l.peek() == '/':
			sb.WriteRune('/')
			l.advance()
		case r == '\\' && l.pos < len(l.input) && l.peek() != '\n':
			sb.WriteRune(r)
			sb.WriteRune(l.peek())
			l.advance()
		default:
			sb.WriteRune(r)
		}
	}
}

// scanWord scans a run of non-delimiter characters and classifies it as a
// NUMBER or a WORD. Outside brackets a comma between digits stays in the
// run so that `1.000,5` is one number.
func (l *Lexer) scanWord() token.Token {
	begin := l.pos
	for l.pos < len(l.input) {
		r := l.peek()
		if r == ',' && l.depth == 0 && numberLike(l.input[begin:l.pos]) && isDigit(l.peekAt(1)) {
			l.advance()
			continue
		}
		if isDelimiter(r) {
			break
		}
		l.advance()
	}

	lit := l.input[begin:l.pos]
	if numberRe.MatchString(lit) {
		return l.emit(token.NUMBER, lit)
	}
	return l.emit(token.WORD, lit)
}

func isDelimiter(r rune) bool {
	switch r {
	case ' ', '\t', '\r', '\n', '\'', '"', '[', ']', ',', ':', '/', '=', '!', '<', '>':
		return true
	}
	return false
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func numberLike(s string) bool {
	digits := false
	for i, r := range s {
		switch {
		case isDigit(r):
			digits = true
		case r == '.' || r == ',':
		case (r == '+' || r == '-') && i == 0:
		default:
			return false
		}
	}
	return digits
}

// Helper methods

func (l *Lexer) peek() rune {
	if l.pos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return r
}

// peekAt returns the rune n runes ahead of the current one.
func (l *Lexer) peekAt(n int) rune {
	p := l.pos
	for ; n > 0 && p < len(l.input); n-- {
		_, size := utf8.DecodeRuneInString(l.input[p:])
		p += size
	}
	if p >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[p:])
	return r
}

func (l *Lexer) advance() {
	if l.pos >= len(l.input) {
		return
	}

	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += size

	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
}

func (l *Lexer) matchString(s string) bool {
	return strings.HasPrefix(l.input[l.pos:], s)
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		r := l.peek()
		if r != ' ' && r != '\t' && r != '\r' {
			break
		}
		l.advance()
	}
}

// markStart records the start position for the current token.
func (l *Lexer) markStart() {
	l.start = l.position()
}

func (l *Lexer) position() token.Position {
	return token.Position{File: l.file, Line: l.line, Column: l.col, Offset: l.pos}
}

func (l *Lexer) emit(typ token.TokenType, lit string) token.Token {
	return token.Token{Type: typ, Literal: lit, Pos: l.start}
}
