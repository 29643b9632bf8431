// Package parser turns a rules file into a *ruleset.Ruleset.
//
// The rules language is line oriented and keywords are case-insensitive:
//
//	// comment (only as the first thing on a line)
//	allowed null values are ['', '-', 'NA']
//	thousands separator is '.'
//	numeric precision is 0.0001
//	column names in ['id', 'country', 'zipcode']
//	all columns required
//	no extra columns allowed
//	check column order
//
//	column: 'id'
//	    has value type integer
//	    is unique
//
//	conditional rule: 'wales_zip'
//	    if
//	        column: country is "WAL"
//	    then
//	        column: 'zipcode' starts with "NP"
//
// Top-level statements end the current column block or conditional rule.
// Any other line inside a column block is a value rule. Numeric literals
// are read with the settings declared above them, so a thousands separator
// must be declared before the numbers that use it.
//
// Parse either returns a complete Ruleset or a *ParseError; there is no
// partial result.
package parser

import (
	"errors"
	"strings"

	"github.com/leapstack-labs/leapcheck/pkg/ruleset"
	"github.com/leapstack-labs/leapcheck/pkg/token"
	"golang.org/x/text/unicode/norm"
)

// Parser builds a Ruleset from the lines of a rules file.
type Parser struct {
	file  string
	src   []string // source lines for error messages
	lines []*cursor
	rs    *ruleset.Ruleset

	seen     map[string]int // global statement -> line
	block    *ruleset.ColumnRuleBlock
	cond     *condState
	comments []token.Comment
}

// condState tracks the conditional rule currently being parsed.
type condState struct {
	rule    ruleset.ConditionalRule
	pos     token.Position
	section string // "", "if" or "then"
	ifSet   bool
	thenSet bool
}

// Parse parses src into a Ruleset. file is used in positions and may be empty.
func Parse(src, file string) (*ruleset.Ruleset, error) {
	p, err := newParser(src, file)
	if err != nil {
		return nil, err
	}
	return p.parse()
}

func newParser(src, file string) (*Parser, error) {
	src = norm.NFC.String(strings.TrimPrefix(src, byteOrderMark))
	lx := NewLexer(src, file)
	toks, err := lx.Tokenize()
	if err != nil {
		return nil, asParseError(err)
	}

	p := &Parser{
		file:     file,
		src:      strings.Split(src, "\n"),
		rs:       ruleset.New(),
		seen:     make(map[string]int),
		comments: lx.Comments(),
	}
	p.rs.Source = file

	var cur []token.Token
	for _, tok := range toks {
		switch tok.Type {
		case token.NEWLINE, token.EOF:
			if len(cur) > 0 {
				p.lines = append(p.lines, p.newCursor(cur, tok.Pos))
			}
			cur = nil
		default:
			cur = append(cur, tok)
		}
	}
	return p, nil
}

// Comments returns the comment lines of the parsed file.
func (p *Parser) Comments() []token.Comment {
	return p.comments
}

func (p *Parser) parse() (*ruleset.Ruleset, error) {
	for _, c := range p.lines {
		if err := p.parseLine(c); err != nil {
			return nil, err
		}
	}
	if err := p.closeCurrent(); err != nil {
		return nil, err
	}
	if _, ok := p.seen["column names"]; !ok {
		return nil, NewParseError(token.Position{File: p.file, Line: 1, Column: 1},
			"missing `column names in [...]` statement")
	}
	return p.rs, nil
}

func (p *Parser) parseLine(c *cursor) error {
	switch {
	case c.peekWords("allowed", "null", "values", "are"):
		return p.parseNullValues(c)
	case c.peekWords("thousands", "separator", "is"):
		return p.parseSeparator(c)
	case c.peekWords("numeric", "precision", "is"):
		return p.parsePrecision(c)
	case c.peekWords("column", "names", "in"):
		return p.parseColumnNames(c)
	case c.peekWords("all", "columns", "required"):
		return p.parseFlag(c, &p.rs.Columns.AllColumnsRequired, "all", "columns", "required")
	case c.peekWords("no", "extra", "columns", "allowed"):
		return p.parseFlag(c, &p.rs.Columns.NoExtraColumnsAllowed, "no", "extra", "columns", "allowed")
	case c.peekWords("check", "column", "order"):
		return p.parseFlag(c, &p.rs.Columns.CheckColumnOrder, "check", "column", "order")
	case c.peekWords("conditional", "rule"):
		return p.parseConditionalHeader(c)
	case c.peekColumnLine():
		if p.cond != nil && (c.len() > 3 || p.cond.pendingSide()) {
			return p.parseSideLine(c)
		}
		return p.parseColumnHeader(c)
	case c.peekWords("if"), c.peekWords("then"):
		return p.parseSection(c)
	}

	switch {
	case p.block != nil:
		rule, err := parseValueRule(c, p.rs.Settings)
		if err != nil {
			return err
		}
		p.block.Rules = append(p.block.Rules, rule)
		return nil
	case p.cond != nil:
		return c.errorf("expected `column: <name> <rule>` in conditional rule %q, got %q",
			p.cond.rule.Name, c.text)
	default:
		return c.errorf("unknown statement %q", c.text)
	}
}

// closeCurrent ends the open column block or conditional rule.
func (p *Parser) closeCurrent() error {
	p.block = nil
	if p.cond == nil {
		return nil
	}
	cs := p.cond
	p.cond = nil
	if !cs.ifSet {
		return NewParseErrorf(cs.pos, "conditional rule %q: missing `if` condition", cs.rule.Name)
	}
	if !cs.thenSet {
		return NewParseErrorf(cs.pos, "conditional rule %q: missing `then` consequent", cs.rule.Name)
	}
	p.rs.Conditionals = append(p.rs.Conditionals, cs.rule)
	return nil
}

// once records a global statement and rejects repeats.
func (p *Parser) once(c *cursor, name string) error {
	if line, ok := p.seen[name]; ok {
		return c.errorf("duplicate %s statement (first declared on line %d)", name, line)
	}
	p.seen[name] = c.line()
	return nil
}

// pendingSide reports whether the active section still waits for its
// column line.
func (cs *condState) pendingSide() bool {
	switch cs.section {
	case "if":
		return !cs.ifSet
	case "then":
		return !cs.thenSet
	}
	return false
}

// asParseError converts lexer errors into parse errors.
func asParseError(err error) error {
	var lexErr *LexError
	if errors.As(err, &lexErr) {
		return NewParseError(lexErr.Position(), lexErr.Message())
	}
	return err
}
