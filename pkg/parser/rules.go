package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapcheck/pkg/dateformat"
	"github.com/leapstack-labs/leapcheck/pkg/ruleset"
	"github.com/leapstack-labs/leapcheck/pkg/token"
)

var comparisonKinds = map[token.TokenType]ruleset.Kind{
	token.EQ: ruleset.KindEqualsNumber,
	token.NE: ruleset.KindNotEqualsNumber,
	token.GT: ruleset.KindGreaterThan,
	token.LT: ruleset.KindLessThan,
	token.GE: ruleset.KindGreaterOrEqual,
	token.LE: ruleset.KindLessOrEqual,
}

// ParseRule parses a single value rule such as `is >= 18`, using s for
// numeric literals.
func ParseRule(src string, s ruleset.Settings) (ruleset.ValueRule, error) {
	p, err := newParser(src, "")
	if err != nil {
		return ruleset.ValueRule{}, err
	}
	switch len(p.lines) {
	case 0:
		return ruleset.ValueRule{}, NewParseError(token.Position{Line: 1, Column: 1}, "empty rule")
	case 1:
		return parseValueRule(p.lines[0], s)
	default:
		return ruleset.ValueRule{}, p.lines[1].errorf("expected a single rule, got %d lines", len(p.lines))
	}
}

// parseValueRule parses the rest of the line as exactly one value rule.
func parseValueRule(c *cursor, s ruleset.Settings) (ruleset.ValueRule, error) {
	start := c.peek()
	rule, ok, err := matchRule(c, s)
	if err != nil {
		return ruleset.ValueRule{}, err
	}
	if !ok {
		return ruleset.ValueRule{}, NewParseErrorf(start.Pos, "unrecognized rule %q", c.text)
	}
	if err := c.expectEnd(); err != nil {
		return ruleset.ValueRule{}, err
	}
	rule.Line = start.Pos.Line
	return rule, nil
}

func matchRule(c *cursor, s ruleset.Settings) (ruleset.ValueRule, bool, error) {
	switch {
	case c.acceptWords("has", "value", "type"):
		return parseTypeRule(c)
	case c.acceptWords("has", "format"):
		tok, err := c.expect(token.STRING, "a quoted date format")
		if err != nil {
			return ruleset.ValueRule{}, true, err
		}
		f, err := dateformat.Compile(tok.Literal)
		if err != nil {
			return ruleset.ValueRule{}, true, NewParseErrorf(tok.Pos, "invalid date format %q: %v", tok.Literal, err)
		}
		return ruleset.ValueRule{Kind: ruleset.KindFormatIs, Format: f}, true, nil
	case c.acceptWords("has", "length"):
		return countRule(c, ruleset.KindHasLength)
	case c.acceptWords("has", "min", "length"):
		return countRule(c, ruleset.KindMinLength)
	case c.acceptWords("has", "max", "length"):
		return countRule(c, ruleset.KindMaxLength)
	case c.acceptWords("has", "significant", "digits"):
		return countRule(c, ruleset.KindSignificantDigits)
	case c.acceptWords("has", "decimal", "places"):
		return countRule(c, ruleset.KindDecimalPlaces)
	case c.acceptWords("is"):
		return parseIsRule(c, s)
	case c.acceptWords("matches"):
		tok, err := c.expect(token.PATTERN, "a /pattern/")
		if err != nil {
			return ruleset.ValueRule{}, true, err
		}
		re, err := regexp.Compile(tok.Literal)
		if err != nil {
			return ruleset.ValueRule{}, true, NewParseErrorf(tok.Pos, "invalid pattern /%s/: %v", tok.Literal, err)
		}
		return ruleset.ValueRule{Kind: ruleset.KindMatchesPattern, Pattern: re}, true, nil
	case c.acceptWords("starts", "with"):
		return textRule(c, ruleset.KindStartsWith)
	case c.acceptWords("ends", "with"):
		return textRule(c, ruleset.KindEndsWith)
	case c.acceptWords("includes"):
		return textRule(c, ruleset.KindIncludes)
	case c.acceptWords("excludes"):
		return textRule(c, ruleset.KindExcludesSubstring)
	}
	return ruleset.ValueRule{}, false, nil
}

func parseIsRule(c *cursor, s ruleset.Settings) (ruleset.ValueRule, bool, error) {
	switch {
	case c.acceptWords("not", "in"):
		lits, err := parseList(c, s, false)
		return ruleset.ValueRule{Kind: ruleset.KindNotInSet, List: lits}, true, err
	case c.acceptWords("not", "null"):
		return ruleset.ValueRule{Kind: ruleset.KindIsNotNull}, true, nil
	case c.acceptWords("not"):
		return textRule(c, ruleset.KindNotEqualsText)
	case c.acceptWords("in"):
		lits, err := parseList(c, s, false)
		return ruleset.ValueRule{Kind: ruleset.KindInSet, List: lits}, true, err
	case c.acceptWords("required"):
		return ruleset.ValueRule{Kind: ruleset.KindRequired}, true, nil
	case c.acceptWords("unique"):
		return ruleset.ValueRule{Kind: ruleset.KindUnique}, true, nil
	case c.acceptWords("null"):
		return ruleset.ValueRule{Kind: ruleset.KindIsNull}, true, nil
	case token.IsOperator(c.peek().Type):
		op := c.next()
		lit, err := parseNumber(c, s)
		if err != nil {
			return ruleset.ValueRule{}, true, err
		}
		return ruleset.ValueRule{Kind: comparisonKinds[op.Type], Number: lit}, true, nil
	case c.peek().Type == token.STRING:
		return textRule(c, ruleset.KindEqualsText)
	}
	return ruleset.ValueRule{}, false, nil
}

// parseTypeRule reads the remaining words as a value type name, so that
// `floating point` spans two words.
func parseTypeRule(c *cursor) (ruleset.ValueRule, bool, error) {
	if c.done() {
		return ruleset.ValueRule{}, true, c.errorf("expected a value type in %q", c.text)
	}
	start := c.peek()
	var words []string
	for !c.done() {
		tok := c.next()
		if tok.Type != token.WORD {
			return ruleset.ValueRule{}, true, NewParseErrorf(tok.Pos, "unexpected %s in value type", tok)
		}
		words = append(words, tok.Literal)
	}
	name := strings.Join(words, " ")
	typ, ok := ruleset.ParseValueType(name)
	if !ok {
		return ruleset.ValueRule{}, true, NewParseErrorf(start.Pos, "unknown value type %q", name)
	}
	return ruleset.ValueRule{Kind: ruleset.KindTypeIs, Type: typ}, true, nil
}

func textRule(c *cursor, kind ruleset.Kind) (ruleset.ValueRule, bool, error) {
	tok, err := c.expect(token.STRING, "a quoted string")
	if err != nil {
		return ruleset.ValueRule{}, true, err
	}
	return ruleset.ValueRule{Kind: kind, Text: tok.Literal}, true, nil
}

func countRule(c *cursor, kind ruleset.Kind) (ruleset.ValueRule, bool, error) {
	tok, err := c.expect(token.NUMBER, "a non-negative integer")
	if err != nil {
		return ruleset.ValueRule{}, true, err
	}
	n, err := strconv.Atoi(tok.Literal)
	if err != nil || n < 0 {
		return ruleset.ValueRule{}, true, NewParseErrorf(tok.Pos, "expected a non-negative integer, got %s", tok.Literal)
	}
	return ruleset.ValueRule{Kind: kind, Count: n}, true, nil
}
