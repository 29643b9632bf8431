// Package coerce converts raw cell values into typed values.
//
// Coercion is a pure function of the cell, the target type and the ruleset
// settings. A cell is null when it carries the native null marker or when
// its trimmed text equals one of the declared null literals; null coerces
// successfully to every type. Everything else either yields a Value or a
// *Failure.
package coerce

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapcheck/pkg/core"
	"github.com/leapstack-labs/leapcheck/pkg/dateformat"
	"github.com/leapstack-labs/leapcheck/pkg/ruleset"
)

// Failure is returned when a non-null cell does not match the target type.
type Failure struct {
	Value  string
	Type   ruleset.ValueType
	Format string // set when a specific date format was requested
}

func (f *Failure) Error() string {
	if f.Format != "" {
		return fmt.Sprintf("cannot read %q as date-time in format %s", f.Value, f.Format)
	}
	return fmt.Sprintf("cannot read %q as %s", f.Value, f.Type)
}

// IsNull reports whether the cell is null under the given settings. A
// native null, an empty or blank value and a declared null literal are all
// null.
func IsNull(cell core.Cell, s ruleset.Settings) bool {
	return cell.Null || strings.TrimSpace(cell.Value) == "" || s.IsNullLiteral(cell.Value)
}

// Coerce converts cell to typ.
func Coerce(cell core.Cell, typ ruleset.ValueType, s ruleset.Settings) (Value, error) {
	if IsNull(cell, s) {
		return Value{Type: typ, Null: true, Raw: cell.Value}, nil
	}

	raw := cell.Value
	text := strings.TrimSpace(raw)
	v := Value{Type: typ, Raw: raw}

	switch typ {
	case ruleset.TypeInteger:
		f, ok := parseReal(text, integerRe, s)
		if !ok {
			return Value{}, &Failure{Value: raw, Type: typ}
		}
		v.Num = f
	case ruleset.TypeFloat:
		f, ok := parseReal(text, floatRe, s)
		if !ok {
			return Value{}, &Failure{Value: raw, Type: typ}
		}
		v.Num = f
	case ruleset.TypeScientific:
		f, ok := parseReal(text, scientificRe, s)
		if !ok {
			return Value{}, &Failure{Value: raw, Type: typ}
		}
		v.Num = f
	case ruleset.TypeComplex:
		c, ok := parseComplex(text, s)
		if !ok {
			return Value{}, &Failure{Value: raw, Type: typ}
		}
		v.Complex = c
		v.Num = real(c)
	case ruleset.TypeBoolean:
		switch strings.ToLower(text) {
		case "true":
			v.Bool = true
		case "false":
			v.Bool = false
		default:
			return Value{}, &Failure{Value: raw, Type: typ}
		}
	case ruleset.TypeDateTime:
		f, t, ok := dateformat.Match(text)
		if !ok {
			return Value{}, &Failure{Value: raw, Type: typ}
		}
		v.Time = t
		v.Format = f
	case ruleset.TypeString, ruleset.TypeUnknown:
		v.Type = ruleset.TypeString
	default:
		return Value{}, &Failure{Value: raw, Type: typ}
	}
	return v, nil
}

// CoerceFormat reads cell as a date-time in exactly format f.
func CoerceFormat(cell core.Cell, f dateformat.Format, s ruleset.Settings) (Value, error) {
	if IsNull(cell, s) {
		return Value{Type: ruleset.TypeDateTime, Null: true, Raw: cell.Value, Format: f}, nil
	}
	t, ok := f.Parse(strings.TrimSpace(cell.Value))
	if !ok {
		return Value{}, &Failure{Value: cell.Value, Type: ruleset.TypeDateTime, Format: f.Name}
	}
	return Value{Type: ruleset.TypeDateTime, Raw: cell.Value, Time: t, Format: f}, nil
}
