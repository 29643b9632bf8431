package ruleset

import "strings"

// DefaultPrecision is the numeric comparison tolerance used when a rules
// file does not declare `numeric precision is`.
const DefaultPrecision = 0.001

// Settings holds the global settings of a rules file.
// It is immutable once the parser returns it and is passed explicitly to
// coercion and evaluation.
type Settings struct {
	// NullLiterals are the raw strings treated as null, matched exactly
	// against the trimmed cell value.
	NullLiterals []string
	// ThousandsSeparator is stripped from numeric values; 0 means none.
	ThousandsSeparator rune
	// Precision is the ε used for numeric equality.
	Precision float64
}

// DefaultSettings returns the settings of a rules file with no global statements.
func DefaultSettings() Settings {
	return Settings{Precision: DefaultPrecision}
}

// IsNullLiteral reports whether the trimmed value equals a declared null literal.
func (s Settings) IsNullLiteral(raw string) bool {
	v := strings.TrimSpace(raw)
	for _, lit := range s.NullLiterals {
		if v == lit {
			return true
		}
	}
	return false
}

// DecimalMark returns the decimal mark implied by the thousands separator:
// a comma when the separator is a period, a period otherwise.
func (s Settings) DecimalMark() rune {
	if s.ThousandsSeparator == '.' {
		return ','
	}
	return '.'
}

// Epsilon returns the configured precision, falling back to the default for
// a zero value so that Settings{} behaves like DefaultSettings().
func (s Settings) Epsilon() float64 {
	if s.Precision <= 0 {
		return DefaultPrecision
	}
	return s.Precision
}
