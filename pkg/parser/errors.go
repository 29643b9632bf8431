package parser

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapcheck/pkg/token"
)

// Error is the base interface for all rules-file errors.
type Error interface {
	error
	Position() token.Position
}

// baseError provides common error functionality.
type baseError struct {
	pos token.Position
	msg string
}

func (e *baseError) Position() token.Position { return e.pos }

// Message returns the human-readable reason without the position prefix.
func (e *baseError) Message() string { return e.msg }

// Line returns the 1-based line number of the error.
func (e *baseError) Line() int { return e.pos.Line }

func (e *baseError) Error() string {
	return fmt.Sprintf("%s: %s", e.pos, e.msg)
}

// LexError represents an error during lexical analysis.
type LexError struct {
	baseError
}

// NewLexError creates a new lexer error.
func NewLexError(pos token.Position, msg string) *LexError {
	return &LexError{baseError: baseError{pos: pos, msg: msg}}
}

// ParseError represents a malformed rules file. Every parse failure,
// including lexical ones, surfaces to callers as a *ParseError.
type ParseError struct {
	baseError
}

// NewParseError creates a new parser error.
func NewParseError(pos token.Position, msg string) *ParseError {
	return &ParseError{baseError: baseError{pos: pos, msg: msg}}
}

// NewParseErrorf creates a new parser error with formatting.
func NewParseErrorf(pos token.Position, format string, args ...any) *ParseError {
	return &ParseError{baseError: baseError{pos: pos, msg: fmt.Sprintf(format, args...)}}
}

// Excerpt returns the lines of src around line, numbered, with the error
// line marked by "->". It returns "" when line is outside src.
func Excerpt(src string, line, contextLines int) string {
	lines := strings.Split(src, "\n")
	if line < 1 || line > len(lines) {
		return ""
	}

	errorLine := line - 1
	start := max(errorLine-contextLines, 0)
	end := min(errorLine+contextLines, len(lines)-1)
	width := len(fmt.Sprintf("%d", end+1))

	var sb strings.Builder
	for i := start; i <= end; i++ {
		prefix := "  "
		if i == errorLine {
			prefix = "->"
		}
		fmt.Fprintf(&sb, "%s %*d | %s\n", prefix, width, i+1, strings.TrimRight(lines[i], "\r"))
	}
	return sb.String()
}
