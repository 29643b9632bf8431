package parser

import (
	"unicode"
	"unicode/utf8"

	"github.com/leapstack-labs/leapcheck/pkg/coerce"
	"github.com/leapstack-labs/leapcheck/pkg/core"
	"github.com/leapstack-labs/leapcheck/pkg/ruleset"
	"github.com/leapstack-labs/leapcheck/pkg/token"
)

// =============================================================================
// Global settings and column spec
// =============================================================================

func (p *Parser) parseNullValues(c *cursor) error {
	if err := p.closeCurrent(); err != nil {
		return err
	}
	if err := p.once(c, "allowed null values"); err != nil {
		return err
	}
	c.acceptWords("allowed", "null", "values", "are")

	lits, err := parseList(c, p.rs.Settings, false)
	if err != nil {
		return err
	}
	nulls := make([]string, len(lits))
	for i, lit := range lits {
		nulls[i] = lit.Text
	}
	p.rs.Settings.NullLiterals = nulls
	return c.expectEnd()
}

func (p *Parser) parseSeparator(c *cursor) error {
	if err := p.closeCurrent(); err != nil {
		return err
	}
	if err := p.once(c, "thousands separator"); err != nil {
		return err
	}
	c.acceptWords("thousands", "separator", "is")

	tok, err := c.expect(token.STRING, "a quoted separator")
	if err != nil {
		return err
	}
	switch utf8.RuneCountInString(tok.Literal) {
	case 0:
		p.rs.Settings.ThousandsSeparator = 0
	case 1:
		r, _ := utf8.DecodeRuneInString(tok.Literal)
		if unicode.IsDigit(r) || r == '+' || r == '-' {
			return NewParseErrorf(tok.Pos, "invalid thousands separator %q", tok.Literal)
		}
		p.rs.Settings.ThousandsSeparator = r
	default:
		return NewParseErrorf(tok.Pos, "thousands separator must be a single character, got %q", tok.Literal)
	}
	return c.expectEnd()
}

func (p *Parser) parsePrecision(c *cursor) error {
	if err := p.closeCurrent(); err != nil {
		return err
	}
	if err := p.once(c, "numeric precision"); err != nil {
		return err
	}
	c.acceptWords("numeric", "precision", "is")

	lit, err := parseNumber(c, p.rs.Settings)
	if err != nil {
		return err
	}
	if lit.Number <= 0 {
		return c.errorf("numeric precision must be positive, got %s", lit.Text)
	}
	p.rs.Settings.Precision = lit.Number
	return c.expectEnd()
}

func (p *Parser) parseColumnNames(c *cursor) error {
	if err := p.closeCurrent(); err != nil {
		return err
	}
	if err := p.once(c, "column names"); err != nil {
		return err
	}
	c.acceptWords("column", "names", "in")

	lits, err := parseList(c, p.rs.Settings, true)
	if err != nil {
		return err
	}
	if len(lits) == 0 {
		return c.errorf("`column names in` must list at least one column")
	}
	names := make([]string, len(lits))
	for i, lit := range lits {
		names[i] = core.NormalizeName(lit.Text)
	}
	p.rs.Columns.Names = names
	p.rs.Columns.Line = c.line()
	return c.expectEnd()
}

// parseFlag sets a structural flag. Repeating a flag is harmless.
func (p *Parser) parseFlag(c *cursor, flag *bool, words ...string) error {
	if err := p.closeCurrent(); err != nil {
		return err
	}
	c.acceptWords(words...)
	*flag = true
	return c.expectEnd()
}

// parseName reads a column or rule name: a string, a bare word or a number.
func parseName(c *cursor, what string) (string, error) {
	tok := c.peek()
	switch tok.Type {
	case token.STRING, token.WORD, token.NUMBER:
		c.next()
		name := core.NormalizeName(tok.Literal)
		if name == "" {
			return "", NewParseErrorf(tok.Pos, "empty %s", what)
		}
		return name, nil
	default:
		return "", NewParseErrorf(tok.Pos, "expected %s, got %s in %q", what, tok, c.text)
	}
}

// =============================================================================
// Column blocks
// =============================================================================

// parseColumnHeader opens a `column: <name>` block. Blocks repeated for the
// same column are merged.
func (p *Parser) parseColumnHeader(c *cursor) error {
	if err := p.closeCurrent(); err != nil {
		return err
	}
	c.acceptWords("column")
	c.next() // :

	name, err := parseName(c, "column name")
	if err != nil {
		return err
	}
	if err := c.expectEnd(); err != nil {
		return err
	}

	if b, ok := p.rs.Blocks[name]; ok {
		p.block = b
		return nil
	}
	p.block = &ruleset.ColumnRuleBlock{Column: name, Line: c.line()}
	p.rs.Blocks[name] = p.block
	p.rs.BlockOrder = append(p.rs.BlockOrder, name)
	return nil
}

// =============================================================================
// Conditional rules
// =============================================================================

func (p *Parser) parseConditionalHeader(c *cursor) error {
	if err := p.closeCurrent(); err != nil {
		return err
	}
	c.acceptWords("conditional", "rule")
	if _, err := c.expect(token.COLON, "':' after `conditional rule`"); err != nil {
		return err
	}

	name, err := parseName(c, "conditional rule name")
	if err != nil {
		return err
	}
	if err := c.expectEnd(); err != nil {
		return err
	}
	if prev, ok := p.rs.Conditional(name); ok {
		return c.errorf("duplicate conditional rule name %q (first declared on line %d)", name, prev.Line)
	}

	p.cond = &condState{
		rule: ruleset.ConditionalRule{Name: name, Line: c.line()},
		pos:  c.toks[0].Pos,
	}
	return nil
}

// parseSection handles `if` and `then`, optionally followed by the column
// line on the same line.
func (p *Parser) parseSection(c *cursor) error {
	kw := c.next()
	if p.cond == nil {
		return c.errorf("`%s` outside a conditional rule", kw.Literal)
	}
	cs := p.cond

	if kw.Is("if") {
		if cs.section != "" {
			return c.errorf("conditional rule %q has more than one `if`", cs.rule.Name)
		}
		cs.section = "if"
	} else {
		switch {
		case cs.section == "":
			return c.errorf("conditional rule %q: `then` without a preceding `if`", cs.rule.Name)
		case cs.section == "then":
			return c.errorf("conditional rule %q has more than one `then`", cs.rule.Name)
		case !cs.ifSet:
			return c.errorf("conditional rule %q: `if` has no condition", cs.rule.Name)
		}
		cs.section = "then"
	}

	if c.done() {
		return nil
	}
	if !c.peekColumnLine() {
		tok := c.peek()
		return NewParseErrorf(tok.Pos, "expected `column: <name> <rule>` after `%s`, got %s", kw.Literal, tok)
	}
	return p.parseSideLine(c)
}

// parseSideLine parses `column: <name> <rule>` into the active section.
func (p *Parser) parseSideLine(c *cursor) error {
	cs := p.cond
	if cs.section == "" {
		return c.errorf("conditional rule %q: column line before `if`", cs.rule.Name)
	}
	if !cs.pendingSide() {
		return c.errorf("`%s` section of conditional rule %q holds more than one line", cs.section, cs.rule.Name)
	}

	c.acceptWords("column")
	c.next() // :
	name, err := parseName(c, "column name")
	if err != nil {
		return err
	}
	if c.done() {
		return c.errorf("expected a rule after column %q in conditional rule %q", name, cs.rule.Name)
	}
	rule, err := parseValueRule(c, p.rs.Settings)
	if err != nil {
		return err
	}

	side := ruleset.Side{Column: name, Rule: rule}
	if cs.section == "if" {
		cs.rule.If = side
		cs.ifSet = true
	} else {
		cs.rule.Then = side
		cs.thenSet = true
	}
	return nil
}

// =============================================================================
// Literals
// =============================================================================

// parseList parses `[literal, ...]`. Bare words are accepted as text only
// when words is set.
func parseList(c *cursor, s ruleset.Settings, words bool) ([]ruleset.Literal, error) {
	if _, err := c.expect(token.LBRACKET, "'['"); err != nil {
		return nil, err
	}

	lits := []ruleset.Literal{}
	if c.peek().Type == token.RBRACKET {
		c.next()
		return lits, nil
	}

	for {
		tok := c.peek()
		switch {
		case tok.Type == token.STRING, words && (tok.Type == token.WORD || tok.Type == token.NUMBER):
			c.next()
			lits = append(lits, ruleset.Literal{Text: tok.Literal})
		case tok.Type == token.NUMBER:
			lit, err := parseNumber(c, s)
			if err != nil {
				return nil, err
			}
			lits = append(lits, lit)
		case tok.Type == token.NEWLINE:
			return nil, NewParseErrorf(tok.Pos, "unterminated list in %q", c.text)
		default:
			return nil, NewParseErrorf(tok.Pos, "expected string or number in list, got %s", tok)
		}

		sep := c.next()
		switch sep.Type {
		case token.COMMA:
			continue
		case token.RBRACKET:
			return lits, nil
		case token.NEWLINE:
			return nil, NewParseErrorf(sep.Pos, "unterminated list in %q", c.text)
		default:
			return nil, NewParseErrorf(sep.Pos, "expected ',' or ']' in list, got %s", sep)
		}
	}
}

// parseNumber reads a NUMBER token using the settings declared so far.
func parseNumber(c *cursor, s ruleset.Settings) (ruleset.Literal, error) {
	tok, err := c.expect(token.NUMBER, "a number")
	if err != nil {
		return ruleset.Literal{}, err
	}
	f, err := coerce.ParseNumber(tok.Literal, s)
	if err != nil {
		return ruleset.Literal{}, NewParseErrorf(tok.Pos, "invalid number %s: %v", tok.Literal, err)
	}
	return ruleset.Literal{Text: tok.Literal, Number: f, IsNumber: true}, nil
}
