package ruleset

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapcheck/pkg/dateformat"
)

// =============================================================================
// Kinds
// =============================================================================

// Kind identifies the variant of a ValueRule.
// The set is closed: the evaluator switches over every kind.
type Kind int

// ValueRule kinds.
const (
	KindInvalid Kind = iota
	KindTypeIs
	KindFormatIs
	KindRequired
	KindUnique
	KindIsNull
	KindIsNotNull
	KindMatchesPattern
	KindInSet
	KindNotInSet
	KindEqualsText
	KindNotEqualsText
	KindEqualsNumber
	KindNotEqualsNumber
	KindGreaterThan
	KindLessThan
	KindGreaterOrEqual
	KindLessOrEqual
	KindHasLength
	KindMinLength
	KindMaxLength
	KindStartsWith
	KindEndsWith
	KindIncludes
	KindExcludesSubstring
	KindSignificantDigits
	KindDecimalPlaces

	kindCount
)

// KindInfo documents a rule kind for tooling and `leapcheck rules`.
type KindInfo struct {
	Kind        Kind   `json:"-" yaml:"-"`
	Name        string `json:"name" yaml:"name"`
	Syntax      string `json:"syntax" yaml:"syntax"`
	Description string `json:"description" yaml:"description"`
	Example     string `json:"example" yaml:"example"`
	// NeedsType is true when the rule compares typed values and fails
	// with "no type declared" if the column has no `has value type`.
	NeedsType bool `json:"needs_type" yaml:"needs_type"`
}

var kindInfos = [kindCount]KindInfo{
	KindTypeIs:            {Name: "type", Syntax: "has value type <type>", Description: "Value coerces to the declared type", Example: "has value type integer"},
	KindFormatIs:          {Name: "format", Syntax: `has format "<format>"`, Description: "Value matches one specific date-time format", Example: `has format "YYYY-MM-DD"`},
	KindRequired:          {Name: "required", Syntax: "is required", Description: "Value is present (not null)", Example: "is required"},
	KindUnique:            {Name: "unique", Syntax: "is unique", Description: "No two non-null values are equal", Example: "is unique"},
	KindIsNull:            {Name: "null", Syntax: "is null", Description: "Value is null", Example: "is null"},
	KindIsNotNull:         {Name: "not-null", Syntax: "is not null", Description: "Value is not null", Example: "is not null"},
	KindMatchesPattern:    {Name: "pattern", Syntax: "matches /<regex>/", Description: "Value matches a regular expression", Example: `matches /^[A-Z]{3}$/`},
	KindInSet:             {Name: "in", Syntax: "is in [<literal>, ...]", Description: "Value is one of the listed literals", Example: `is in ['EGY', 'FRA']`},
	KindNotInSet:          {Name: "not-in", Syntax: "is not in [<literal>, ...]", Description: "Value is none of the listed literals", Example: `is not in ['N/A']`},
	KindEqualsText:        {Name: "equals", Syntax: `is "<text>"`, Description: "Value equals the text exactly", Example: `is "WAL"`},
	KindNotEqualsText:     {Name: "not-equals", Syntax: `is not "<text>"`, Description: "Value differs from the text", Example: `is not "UNKNOWN"`},
	KindEqualsNumber:      {Name: "eq", Syntax: "is == <number>", Description: "Number equals within the configured precision", Example: "is == 100", NeedsType: true},
	KindNotEqualsNumber:   {Name: "ne", Syntax: "is != <number>", Description: "Number differs beyond the configured precision", Example: "is != 0", NeedsType: true},
	KindGreaterThan:       {Name: "gt", Syntax: "is > <number>", Description: "Number is strictly greater", Example: "is > 0", NeedsType: true},
	KindLessThan:          {Name: "lt", Syntax: "is < <number>", Description: "Number is strictly less", Example: "is < 100", NeedsType: true},
	KindGreaterOrEqual:    {Name: "ge", Syntax: "is >= <number>", Description: "Number is greater or equal within precision", Example: "is >= 18", NeedsType: true},
	KindLessOrEqual:       {Name: "le", Syntax: "is <= <number>", Description: "Number is less or equal within precision", Example: "is <= 65", NeedsType: true},
	KindHasLength:         {Name: "length", Syntax: "has length <n>", Description: "Value has exactly n characters", Example: "has length 3"},
	KindMinLength:         {Name: "min-length", Syntax: "has min length <n>", Description: "Value has at least n characters", Example: "has min length 1"},
	KindMaxLength:         {Name: "max-length", Syntax: "has max length <n>", Description: "Value has at most n characters", Example: "has max length 40"},
	KindStartsWith:        {Name: "starts-with", Syntax: `starts with "<text>"`, Description: "Value starts with the text", Example: `starts with "NP"`},
	KindEndsWith:          {Name: "ends-with", Syntax: `ends with "<text>"`, Description: "Value ends with the text", Example: `ends with ".com"`},
	KindIncludes:          {Name: "includes", Syntax: `includes "<text>"`, Description: "Value contains the text", Example: `includes "@"`},
	KindExcludesSubstring: {Name: "excludes", Syntax: `excludes "<text>"`, Description: "Value does not contain the text", Example: `excludes " "`},
	KindSignificantDigits: {Name: "significant-digits", Syntax: "has significant digits <n>", Description: "Number has exactly n significant digits", Example: "has significant digits 3", NeedsType: true},
	KindDecimalPlaces:     {Name: "decimal-places", Syntax: "has decimal places <n>", Description: "Number has exactly n digits after the decimal mark", Example: "has decimal places 2", NeedsType: true},
}

func init() {
	for k := KindTypeIs; k < kindCount; k++ {
		kindInfos[k].Kind = k
	}
}

// Info returns the documentation of the kind.
func (k Kind) Info() KindInfo {
	if k <= KindInvalid || k >= kindCount {
		return KindInfo{Kind: k, Name: "invalid"}
	}
	return kindInfos[k]
}

// String returns the short kind name, e.g. "starts-with".
func (k Kind) String() string {
	return k.Info().Name
}

// Kinds returns documentation for every rule kind in declaration order.
func Kinds() []KindInfo {
	out := make([]KindInfo, 0, int(kindCount)-1)
	for k := KindTypeIs; k < kindCount; k++ {
		out = append(out, kindInfos[k])
	}
	return out
}

// =============================================================================
// Literals and rules
// =============================================================================

// Literal is a string or number literal from a rules file.
type Literal struct {
	Text     string  // source text (quoted strings unquoted)
	Number   float64 // numeric value when IsNumber
	IsNumber bool
}

// String renders the literal as it would appear in a rules file.
func (l Literal) String() string {
	if l.IsNumber {
		return l.Text
	}
	return quote(l.Text)
}

// ValueRule is a single atomic per-column constraint.
// Only the payload fields relevant to Kind are set.
type ValueRule struct {
	Kind Kind
	Line int // source line, 0 when built in code

	Type    ValueType         // KindTypeIs
	Format  dateformat.Format // KindFormatIs
	Pattern *regexp.Regexp    // KindMatchesPattern
	List    []Literal         // KindInSet, KindNotInSet
	Text    string            // text equality and substring kinds
	Number  Literal           // numeric comparison kinds
	Count   int               // length and digit kinds
}

// NeedsType reports whether the rule requires a typed value.
func (r ValueRule) NeedsType() bool {
	if r.Kind.Info().NeedsType {
		return true
	}
	// Numeric list members are compared as numbers.
	if r.Kind == KindInSet || r.Kind == KindNotInSet {
		for _, lit := range r.List {
			if lit.IsNumber {
				return true
			}
		}
	}
	return false
}

// String renders the rule in rules-file syntax.
func (r ValueRule) String() string {
	switch r.Kind {
	case KindTypeIs:
		return "has value type " + r.Type.String()
	case KindFormatIs:
		return "has format " + quote(r.Format.Name)
	case KindRequired:
		return "is required"
	case KindUnique:
		return "is unique"
	case KindIsNull:
		return "is null"
	case KindIsNotNull:
		return "is not null"
	case KindMatchesPattern:
		if r.Pattern == nil {
			return "matches //"
		}
		return "matches /" + strings.ReplaceAll(r.Pattern.String(), "/", `\/`) + "/"
	case KindInSet:
		return "is in " + renderList(r.List)
	case KindNotInSet:
		return "is not in " + renderList(r.List)
	case KindEqualsText:
		return "is " + quote(r.Text)
	case KindNotEqualsText:
		return "is not " + quote(r.Text)
	case KindEqualsNumber:
		return "is == " + r.Number.Text
	case KindNotEqualsNumber:
		return "is != " + r.Number.Text
	case KindGreaterThan:
		return "is > " + r.Number.Text
	case KindLessThan:
		return "is < " + r.Number.Text
	case KindGreaterOrEqual:
		return "is >= " + r.Number.Text
	case KindLessOrEqual:
		return "is <= " + r.Number.Text
	case KindHasLength:
		return "has length " + strconv.Itoa(r.Count)
	case KindMinLength:
		return "has min length " + strconv.Itoa(r.Count)
	case KindMaxLength:
		return "has max length " + strconv.Itoa(r.Count)
	case KindStartsWith:
		return "starts with " + quote(r.Text)
	case KindEndsWith:
		return "ends with " + quote(r.Text)
	case KindIncludes:
		return "includes " + quote(r.Text)
	case KindExcludesSubstring:
		return "excludes " + quote(r.Text)
	case KindSignificantDigits:
		return "has significant digits " + strconv.Itoa(r.Count)
	case KindDecimalPlaces:
		return "has decimal places " + strconv.Itoa(r.Count)
	default:
		return fmt.Sprintf("<invalid rule %d>", int(r.Kind))
	}
}

func renderList(list []Literal) string {
	parts := make([]string, len(list))
	for i, lit := range list {
		parts[i] = lit.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func quote(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
