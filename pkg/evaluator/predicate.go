package evaluator

import (
	"fmt"
	"math/cmplx"
	"strings"
	"unicode/utf8"

	"github.com/leapstack-labs/leapcheck/pkg/coerce"
	"github.com/leapstack-labs/leapcheck/pkg/core"
	"github.com/leapstack-labs/leapcheck/pkg/report"
	"github.com/leapstack-labs/leapcheck/pkg/ruleset"
)

// column is the evaluation context of one column: its declared type and
// the ruleset settings.
type column struct {
	name     string
	typ      ruleset.ValueType
	typed    bool
	settings ruleset.Settings
}

func columnFor(rs *ruleset.Ruleset, name string) column {
	typ, typed := rs.DeclaredType(name)
	return column{name: name, typ: typ, typed: typed, settings: rs.Settings}
}

// cellAt is a cell with its null flag and, for typed columns, its value
// coerced to the declared type.
type cellAt struct {
	row   int // 0-based data row
	cell  core.Cell
	null  bool
	value coerce.Value
	err   error // coercion failure under the declared type
}

func (c column) cells(table *core.Table, rows []int) []cellAt {
	out := make([]cellAt, len(rows))
	for i, r := range rows {
		cell := table.Cell(r, c.name)
		ca := cellAt{row: r, cell: cell, null: coerce.IsNull(cell, c.settings)}
		if c.typed && !ca.null {
			ca.value, ca.err = coerce.Coerce(cell, c.typ, c.settings)
		}
		out[i] = ca
	}
	return out
}

type verdict struct {
	ok     bool
	reason string
}

// evaluate applies rule to every cell. maxSamples caps stored samples;
// failing row numbers are always complete.
func (c column) evaluate(rule ruleset.ValueRule, cells []cellAt, maxSamples int) report.RuleOutcome {
	out := report.RuleOutcome{Rule: rule.String(), Kind: rule.Kind.String(), Line: rule.Line}
	if rule.NeedsType() && !c.typed {
		out.Error = "no type declared"
		return out
	}

	var verdicts []verdict
	if rule.Kind == ruleset.KindUnique {
		verdicts = c.unique(cells)
	} else {
		verdicts = make([]verdict, len(cells))
		for i, ca := range cells {
			verdicts[i] = c.check(rule, ca)
		}
	}

	for i, v := range verdicts {
		if v.ok {
			out.Passed++
			continue
		}
		ca := cells[i]
		out.Failed++
		out.FailedRows = append(out.FailedRows, ca.row+1)
		if len(out.Samples) < maxSamples {
			out.Samples = append(out.Samples, report.Sample{
				Row:    ca.row + 1,
				Value:  ca.cell.Value,
				Null:   ca.null,
				Reason: v.reason,
			})
		}
	}
	return out
}

// check evaluates a single-cell rule.
func (c column) check(rule ruleset.ValueRule, ca cellAt) verdict {
	if ca.null {
		switch rule.Kind {
		case ruleset.KindIsNull, ruleset.KindTypeIs, ruleset.KindFormatIs:
			return verdict{ok: true}
		default:
			return verdict{reason: "value is null"}
		}
	}

	raw := ca.cell.Value
	s := c.settings

	switch rule.Kind {
	case ruleset.KindTypeIs:
		if _, err := coerce.Coerce(ca.cell, rule.Type, s); err != nil {
			return verdict{reason: err.Error()}
		}
		return verdict{ok: true}
	case ruleset.KindFormatIs:
		if _, err := coerce.CoerceFormat(ca.cell, rule.Format, s); err != nil {
			return verdict{reason: err.Error()}
		}
		return verdict{ok: true}
	case ruleset.KindRequired, ruleset.KindIsNotNull:
		return verdict{ok: true}
	case ruleset.KindIsNull:
		return verdict{reason: "value is not null"}
	case ruleset.KindMatchesPattern:
		return expect(rule.Pattern.MatchString(raw), "does not match pattern")
	case ruleset.KindInSet:
		in, v := c.member(rule.List, ca)
		if v != nil {
			return *v
		}
		return expect(in, "not in list")
	case ruleset.KindNotInSet:
		in, v := c.member(rule.List, ca)
		if v != nil {
			return *v
		}
		return expect(!in, "value is in list")
	case ruleset.KindEqualsText:
		return expect(raw == rule.Text, fmt.Sprintf("value is not %q", rule.Text))
	case ruleset.KindNotEqualsText:
		return expect(raw != rule.Text, fmt.Sprintf("value is %q", rule.Text))
	case ruleset.KindEqualsNumber, ruleset.KindNotEqualsNumber,
		ruleset.KindGreaterThan, ruleset.KindLessThan,
		ruleset.KindGreaterOrEqual, ruleset.KindLessOrEqual:
		if ca.err != nil {
			return verdict{reason: ca.err.Error()}
		}
		ok, err := coerce.Compare(rule.Kind, ca.value, rule.Number.Number, s.Epsilon())
		if err != nil {
			return verdict{reason: err.Error()}
		}
		return expect(ok, "fails `"+rule.String()+"`")
	case ruleset.KindHasLength:
		n := utf8.RuneCountInString(raw)
		return expect(n == rule.Count, fmt.Sprintf("length is %d", n))
	case ruleset.KindMinLength:
		n := utf8.RuneCountInString(raw)
		return expect(n >= rule.Count, fmt.Sprintf("length is %d", n))
	case ruleset.KindMaxLength:
		n := utf8.RuneCountInString(raw)
		return expect(n <= rule.Count, fmt.Sprintf("length is %d", n))
	case ruleset.KindStartsWith:
		return expect(strings.HasPrefix(raw, rule.Text), fmt.Sprintf("does not start with %q", rule.Text))
	case ruleset.KindEndsWith:
		return expect(strings.HasSuffix(raw, rule.Text), fmt.Sprintf("does not end with %q", rule.Text))
	case ruleset.KindIncludes:
		return expect(strings.Contains(raw, rule.Text), fmt.Sprintf("does not include %q", rule.Text))
	case ruleset.KindExcludesSubstring:
		return expect(!strings.Contains(raw, rule.Text), fmt.Sprintf("includes %q", rule.Text))
	case ruleset.KindSignificantDigits, ruleset.KindDecimalPlaces:
		return c.digits(rule, ca)
	default:
		return verdict{reason: fmt.Sprintf("unsupported rule kind %d", int(rule.Kind))}
	}
}

func (c column) digits(rule ruleset.ValueRule, ca cellAt) verdict {
	if ca.err != nil {
		return verdict{reason: ca.err.Error()}
	}
	if !c.typ.IsOrdered() {
		return verdict{reason: fmt.Sprintf("%s requires a real numeric type, column type is %s", rule.Kind, c.typ)}
	}
	sig, dec, err := coerce.CountDigits(ca.cell.Value, c.settings)
	if err != nil {
		return verdict{reason: err.Error()}
	}
	if rule.Kind == ruleset.KindSignificantDigits {
		return expect(sig == rule.Count, fmt.Sprintf("has %d significant digits", sig))
	}
	return expect(dec == rule.Count, fmt.Sprintf("has %d decimal places", dec))
}

// member reports whether the cell equals any literal. Numeric literals
// compare numerically within ε on numeric columns; everything else
// compares the raw text. A non-nil verdict reports a coercion failure.
func (c column) member(list []ruleset.Literal, ca cellAt) (bool, *verdict) {
	numeric := c.typed && c.typ.IsNumeric()
	eps := c.settings.Epsilon()
	for _, lit := range list {
		if lit.IsNumber && numeric {
			if ca.err != nil {
				return false, &verdict{reason: ca.err.Error()}
			}
			if c.typ == ruleset.TypeComplex {
				if cmplx.Abs(ca.value.Complex-complex(lit.Number, 0)) < eps {
					return true, nil
				}
				continue
			}
			if coerce.NumbersEqual(ca.value.Num, lit.Number, eps) {
				return true, nil
			}
			continue
		}
		if ca.cell.Value == lit.Text {
			return true, nil
		}
	}
	return false, nil
}

// unique fails every occurrence of a value that appears more than once.
// Nulls are ignored. Typed columns compare coerced values, so 1.0 and 1
// collide in a floating point column.
func (c column) unique(cells []cellAt) []verdict {
	keys := make([]string, len(cells))
	counts := make(map[string]int)
	for i, ca := range cells {
		if ca.null {
			continue
		}
		key := "raw:" + ca.cell.Value
		if c.typed && ca.err == nil {
			key = "val:" + ca.value.Key()
		}
		keys[i] = key
		counts[key]++
	}

	out := make([]verdict, len(cells))
	for i, ca := range cells {
		if ca.null || counts[keys[i]] < 2 {
			out[i] = verdict{ok: true}
			continue
		}
		out[i] = verdict{reason: fmt.Sprintf("duplicate value (%d occurrences)", counts[keys[i]])}
	}
	return out
}

func expect(ok bool, reason string) verdict {
	if ok {
		return verdict{ok: true}
	}
	return verdict{reason: reason}
}
