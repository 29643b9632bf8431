package coerce

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapcheck/pkg/ruleset"
)

// Numeric grammars, applied after the thousands separator is stripped and
// the decimal mark is rewritten to '.'.
var (
	integerRe    = regexp.MustCompile(`^[+-]?\d+$`)
	floatRe      = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)$`)
	scientificRe = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)
	complexRe    = regexp.MustCompile(
		`^([+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?)?([+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?[jJ])?$`)
)

// ErrNotNumber is returned for text that matches no numeric grammar.
var ErrNotNumber = errors.New("not a number")

// normalizeNumber strips the thousands separator and rewrites the decimal
// mark to '.'. A comma left over when the decimal mark is '.' is kept and
// rejected by the grammars.
func normalizeNumber(text string, s ruleset.Settings) string {
	t := strings.TrimSpace(text)
	if s.ThousandsSeparator != 0 {
		t = strings.ReplaceAll(t, string(s.ThousandsSeparator), "")
	}
	if s.DecimalMark() == ',' {
		t = strings.ReplaceAll(t, ",", ".")
	}
	return t
}

// ParseNumber parses text as a real number in the scientific grammar
// (optional fraction and exponent) using the separator and decimal mark
// implied by s. It is shared by the parser for rule literals.
func ParseNumber(text string, s ruleset.Settings) (float64, error) {
	n := normalizeNumber(text, s)
	if !scientificRe.MatchString(n) {
		return 0, fmt.Errorf("%q: %w", text, ErrNotNumber)
	}
	f, err := strconv.ParseFloat(n, 64)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", text, err)
	}
	return f, nil
}

func parseReal(text string, re *regexp.Regexp, s ruleset.Settings) (float64, bool) {
	n := normalizeNumber(text, s)
	if !re.MatchString(n) {
		return 0, false
	}
	f, err := strconv.ParseFloat(n, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// parseComplex accepts a+bj, bj and a.
func parseComplex(text string, s ruleset.Settings) (complex128, bool) {
	n := normalizeNumber(text, s)
	if n == "" || !complexRe.MatchString(n) {
		return 0, false
	}
	n = strings.NewReplacer("j", "i", "J", "i").Replace(n)
	c, err := strconv.ParseComplex(n, 128)
	if err != nil {
		return 0, false
	}
	return c, true
}

// CountDigits returns the significant digits and decimal places of a
// numeric text, measured on its mantissa. Leading zeros are never
// significant; trailing zeros are significant only when a decimal mark is
// present. Zero has one significant digit.
func CountDigits(text string, s ruleset.Settings) (significant, decimals int, err error) {
	n := normalizeNumber(text, s)
	if !scientificRe.MatchString(n) {
		return 0, 0, fmt.Errorf("%q: %w", text, ErrNotNumber)
	}

	mantissa := strings.TrimLeft(n, "+-")
	if i := strings.IndexAny(mantissa, "eE"); i >= 0 {
		mantissa = mantissa[:i]
	}

	intPart, frac, hasMark := strings.Cut(mantissa, ".")
	decimals = len(frac)

	digits := strings.TrimLeft(intPart+frac, "0")
	if !hasMark {
		digits = strings.TrimRight(digits, "0")
	}
	if digits == "" {
		return 1, decimals, nil
	}
	return len(digits), decimals, nil
}
