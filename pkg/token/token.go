// Package token defines the lexical tokens of the leapcheck rules language.
//
// The rules language is line oriented, so NEWLINE is a real token. Keywords
// are not distinguished at the lexical level: every bare word is a WORD and
// the parser matches keyword phrases case-insensitively.
package token

import (
	"fmt"
	"strings"
)

// TokenType represents the type of a lexical token.
//
//nolint:revive // Accept stutter as token.TokenType is clear and widely used
type TokenType int

//nolint:revive // ALL_CAPS names mirror the token spelling
const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL
	NEWLINE

	// Literals
	WORD    // bare word: keyword, type name or unquoted column name
	STRING  // 'text' or "text"
	NUMBER  // 12, -3.5, 1.000,25, 6.02e23
	PATTERN // /regex/

	// Punctuation
	LBRACKET // [
	RBRACKET // ]
	COMMA    // ,
	COLON    // :

	// Comparison operators
	EQ // ==
	NE // !=
	GT // >
	LT // <
	GE // >=
	LE // <=
)

var tokenNames = map[TokenType]string{
	EOF:      "EOF",
	ILLEGAL:  "ILLEGAL",
	NEWLINE:  "NEWLINE",
	WORD:     "WORD",
	STRING:   "STRING",
	NUMBER:   "NUMBER",
	PATTERN:  "PATTERN",
	LBRACKET: "[",
	RBRACKET: "]",
	COMMA:    ",",
	COLON:    ":",
	EQ:       "==",
	NE:       "!=",
	GT:       ">",
	LT:       "<",
	GE:       ">=",
	LE:       "<=",
}

// String returns the string representation of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", int(t))
}

// IsOperator returns true if the token type is a comparison operator.
func IsOperator(t TokenType) bool {
	return t >= EQ && t <= LE
}

// IsLiteral returns true if the token carries a literal value.
func IsLiteral(t TokenType) bool {
	return t == STRING || t == NUMBER || t == PATTERN
}

// Token represents a lexical token with position information.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}

// Is reports whether the token is the bare word w, compared case-insensitively.
func (t Token) Is(w string) bool {
	return t.Type == WORD && strings.EqualFold(t.Literal, w)
}

// String renders the token for error messages.
func (t Token) String() string {
	switch t.Type {
	case EOF:
		return "end of input"
	case NEWLINE:
		return "end of line"
	case STRING:
		return fmt.Sprintf("%q", t.Literal)
	case PATTERN:
		return "/" + t.Literal + "/"
	case WORD, NUMBER:
		return t.Literal
	default:
		return t.Type.String()
	}
}
