package coerce

import (
	"fmt"
	"math"
	"math/cmplx"
	"strconv"
	"strings"
	"time"

	"github.com/leapstack-labs/leapcheck/pkg/dateformat"
	"github.com/leapstack-labs/leapcheck/pkg/ruleset"
)

// Value is a coerced cell value. Only the field matching Type is set.
type Value struct {
	Type ruleset.ValueType
	Null bool
	Raw  string // cell text as read from the dataset

	Num     float64    // integer, floating point, scientific; real part of complex
	Complex complex128 // complex
	Bool    bool
	Time    time.Time
	Format  dateformat.Format // format a date-time value matched
}

// Render returns a canonical text form of v. Coercing the rendered text
// with the same type and settings yields an equal value.
func (v Value) Render(s ruleset.Settings) string {
	if v.Null {
		if len(s.NullLiterals) > 0 {
			return s.NullLiterals[0]
		}
		return ""
	}

	switch v.Type {
	case ruleset.TypeInteger, ruleset.TypeFloat:
		return withDecimalMark(strconv.FormatFloat(v.Num, 'f', -1, 64), s)
	case ruleset.TypeScientific:
		return withDecimalMark(strconv.FormatFloat(v.Num, 'g', -1, 64), s)
	case ruleset.TypeComplex:
		c := strconv.FormatComplex(v.Complex, 'g', -1, 128)
		c = strings.TrimSuffix(strings.TrimPrefix(c, "("), ")")
		return withDecimalMark(strings.Replace(c, "i", "j", 1), s)
	case ruleset.TypeBoolean:
		return strconv.FormatBool(v.Bool)
	case ruleset.TypeDateTime:
		return v.Format.Render(v.Time)
	default:
		return v.Raw
	}
}

// Equal reports whether two values of the same type are identical.
func (v Value) Equal(o Value) bool {
	if v.Type != o.Type || v.Null != o.Null {
		return false
	}
	if v.Null {
		return true
	}
	switch v.Type {
	case ruleset.TypeInteger, ruleset.TypeFloat, ruleset.TypeScientific:
		return v.Num == o.Num
	case ruleset.TypeComplex:
		return v.Complex == o.Complex
	case ruleset.TypeBoolean:
		return v.Bool == o.Bool
	case ruleset.TypeDateTime:
		return v.Time.Equal(o.Time)
	default:
		return v.Raw == o.Raw
	}
}

// Key returns a string that is equal for equal values, used for
// uniqueness checks.
func (v Value) Key() string {
	switch v.Type {
	case ruleset.TypeInteger, ruleset.TypeFloat, ruleset.TypeScientific:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case ruleset.TypeComplex:
		return strconv.FormatComplex(v.Complex, 'g', -1, 128)
	case ruleset.TypeBoolean:
		return strconv.FormatBool(v.Bool)
	case ruleset.TypeDateTime:
		return v.Time.UTC().Format(time.RFC3339Nano)
	default:
		return v.Raw
	}
}

func withDecimalMark(num string, s ruleset.Settings) string {
	if s.DecimalMark() == ',' {
		return strings.ReplaceAll(num, ".", ",")
	}
	return num
}

// NumbersEqual reports |a-b| < eps.
func NumbersEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

// Compare applies a numeric comparison rule kind to v and lit. Equality
// is within eps; strict ordering is exact; the inclusive orderings accept
// values within eps. Complex values support only equality.
func Compare(kind ruleset.Kind, v Value, lit, eps float64) (bool, error) {
	if v.Type == ruleset.TypeComplex {
		eq := cmplx.Abs(v.Complex-complex(lit, 0)) < eps
		switch kind {
		case ruleset.KindEqualsNumber:
			return eq, nil
		case ruleset.KindNotEqualsNumber:
			return !eq, nil
		default:
			return false, fmt.Errorf("%s is not defined for complex values", kind)
		}
	}
	if !v.Type.IsOrdered() {
		return false, fmt.Errorf("%s requires a numeric type, column type is %s", kind, v.Type)
	}

	a := v.Num
	switch kind {
	case ruleset.KindEqualsNumber:
		return NumbersEqual(a, lit, eps), nil
	case ruleset.KindNotEqualsNumber:
		return !NumbersEqual(a, lit, eps), nil
	case ruleset.KindGreaterThan:
		return a > lit, nil
	case ruleset.KindLessThan:
		return a < lit, nil
	case ruleset.KindGreaterOrEqual:
		return a > lit || NumbersEqual(a, lit, eps), nil
	case ruleset.KindLessOrEqual:
		return a < lit || NumbersEqual(a, lit, eps), nil
	default:
		return false, fmt.Errorf("%s is not a numeric comparison", kind)
	}
}
