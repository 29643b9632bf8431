package parser

import (
	"strings"

	"github.com/leapstack-labs/leapcheck/pkg/token"
)

// cursor walks the tokens of a single source line.
type cursor struct {
	toks []token.Token
	i    int
	text string         // trimmed source text of the line
	end  token.Position // position just past the last token
}

func (p *Parser) newCursor(toks []token.Token, end token.Position) *cursor {
	c := &cursor{toks: toks, end: end}
	if line := toks[0].Pos.Line; line >= 1 && line <= len(p.src) {
		c.text = strings.TrimSpace(p.src[line-1])
	}
	return c
}

func (c *cursor) len() int { return len(c.toks) }

func (c *cursor) line() int { return c.toks[0].Pos.Line }

func (c *cursor) done() bool { return c.i >= len(c.toks) }

// peek returns the current token, or an end-of-line token.
func (c *cursor) peek() token.Token {
	return c.peekN(0)
}

func (c *cursor) peekN(n int) token.Token {
	if c.i+n >= len(c.toks) {
		return token.Token{Type: token.NEWLINE, Pos: c.end}
	}
	return c.toks[c.i+n]
}

func (c *cursor) next() token.Token {
	tok := c.peek()
	if !c.done() {
		c.i++
	}
	return tok
}

// peekWords reports whether the next tokens are the given words.
func (c *cursor) peekWords(words ...string) bool {
	for n, w := range words {
		if !c.peekN(n).Is(w) {
			return false
		}
	}
	return true
}

// acceptWords consumes the given words if they come next.
func (c *cursor) acceptWords(words ...string) bool {
	if !c.peekWords(words...) {
		return false
	}
	c.i += len(words)
	return true
}

// peekColumnLine reports whether the line continues with `column :`.
func (c *cursor) peekColumnLine() bool {
	return c.peekN(0).Is("column") && c.peekN(1).Type == token.COLON
}

func (c *cursor) expect(typ token.TokenType, what string) (token.Token, error) {
	tok := c.peek()
	if tok.Type != typ {
		return tok, NewParseErrorf(tok.Pos, "expected %s, got %s in %q", what, tok, c.text)
	}
	c.i++
	return tok, nil
}

// expectEnd fails if tokens remain on the line.
func (c *cursor) expectEnd() error {
	if c.done() {
		return nil
	}
	tok := c.peek()
	return NewParseErrorf(tok.Pos, "unexpected %s in %q", tok, c.text)
}

// errorf reports an error at the start of the line.
func (c *cursor) errorf(format string, args ...any) *ParseError {
	return NewParseErrorf(c.toks[0].Pos, format, args...)
}
