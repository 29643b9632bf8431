package coerce

import (
	"testing"

	"github.com/leapstack-labs/leapcheck/pkg/core"
	"github.com/leapstack-labs/leapcheck/pkg/dateformat"
	"github.com/leapstack-labs/leapcheck/pkg/ruleset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerce(t *testing.T) {
	plain := ruleset.DefaultSettings()
	european := ruleset.Settings{ThousandsSeparator: '.', Precision: 0.001}

	tests := []struct {
		name     string
		raw      string
		typ      ruleset.ValueType
		settings ruleset.Settings
		wantErr  bool
		check    func(t *testing.T, v Value)
	}{
		{name: "integer", raw: "42", typ: ruleset.TypeInteger, settings: plain,
			check: func(t *testing.T, v Value) { assert.InDelta(t, 42.0, v.Num, 0) }},
		{name: "signed integer", raw: " -7 ", typ: ruleset.TypeInteger, settings: plain,
			check: func(t *testing.T, v Value) { assert.InDelta(t, -7.0, v.Num, 0) }},
		{name: "integer rejects fraction", raw: "4.2", typ: ruleset.TypeInteger, settings: plain, wantErr: true},
		{name: "integer with separator", raw: "1.000", typ: ruleset.TypeInteger, settings: european,
			check: func(t *testing.T, v Value) { assert.InDelta(t, 1000.0, v.Num, 0) }},
		{name: "float", raw: "3.25", typ: ruleset.TypeFloat, settings: plain,
			check: func(t *testing.T, v Value) { assert.InDelta(t, 3.25, v.Num, 0) }},
		{name: "float decimal comma", raw: "1.000,5", typ: ruleset.TypeFloat, settings: european,
			check: func(t *testing.T, v Value) { assert.InDelta(t, 1000.5, v.Num, 0) }},
		{name: "float rejects exponent", raw: "1e3", typ: ruleset.TypeFloat, settings: plain, wantErr: true},
		{name: "float rejects comma without separator", raw: "1,5", typ: ruleset.TypeFloat, settings: plain, wantErr: true},
		{name: "scientific", raw: "6.02e23", typ: ruleset.TypeScientific, settings: plain,
			check: func(t *testing.T, v Value) { assert.InEpsilon(t, 6.02e23, v.Num, 1e-9) }},
		{name: "scientific without exponent", raw: "12.5", typ: ruleset.TypeScientific, settings: plain,
			check: func(t *testing.T, v Value) { assert.InDelta(t, 12.5, v.Num, 0) }},
		{name: "not a number", raw: "abc", typ: ruleset.TypeScientific, settings: plain, wantErr: true},
		{name: "nan rejected", raw: "NaN", typ: ruleset.TypeFloat, settings: plain, wantErr: true},
		{name: "complex", raw: "3+4j", typ: ruleset.TypeComplex, settings: plain,
			check: func(t *testing.T, v Value) { assert.Equal(t, complex(3, 4), v.Complex) }},
		{name: "complex imaginary only", raw: "-2j", typ: ruleset.TypeComplex, settings: plain,
			check: func(t *testing.T, v Value) { assert.Equal(t, complex(0, -2), v.Complex) }},
		{name: "complex real only", raw: "5", typ: ruleset.TypeComplex, settings: plain,
			check: func(t *testing.T, v Value) { assert.Equal(t, complex(5, 0), v.Complex) }},
		{name: "boolean", raw: "TRUE", typ: ruleset.TypeBoolean, settings: plain,
			check: func(t *testing.T, v Value) { assert.True(t, v.Bool) }},
		{name: "boolean rejects yes", raw: "yes", typ: ruleset.TypeBoolean, settings: plain, wantErr: true},
		{name: "date-time", raw: "2001-02-03", typ: ruleset.TypeDateTime, settings: plain,
			check: func(t *testing.T, v Value) { assert.Equal(t, "YYYY-MM-DD", v.Format.Name) }},
		{name: "date-time invalid month", raw: "2001-13-03", typ: ruleset.TypeDateTime, settings: plain, wantErr: true},
		{name: "string keeps raw", raw: " as is ", typ: ruleset.TypeString, settings: plain,
			check: func(t *testing.T, v Value) { assert.Equal(t, " as is ", v.Raw) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Coerce(core.TextCell(tt.raw), tt.typ, tt.settings)
			if tt.wantErr {
				var failure *Failure
				require.ErrorAs(t, err, &failure)
				assert.Equal(t, tt.raw, failure.Value)
				return
			}
			require.NoError(t, err)
			assert.False(t, v.Null)
			tt.check(t, v)
		})
	}
}

func TestCoerce_Null(t *testing.T) {
	s := ruleset.Settings{NullLiterals: []string{"-"}}

	v, err := Coerce(core.NullCell(), ruleset.TypeInteger, s)
	require.NoError(t, err)
	assert.True(t, v.Null)

	v, err = Coerce(core.TextCell(" - "), ruleset.TypeDateTime, s)
	require.NoError(t, err)
	assert.True(t, v.Null, "trimmed value equal to a null literal is null")

	_, err = Coerce(core.TextCell("--"), ruleset.TypeInteger, s)
	require.Error(t, err, "null literals match exactly")

	v, err = Coerce(core.TextCell("--"), ruleset.TypeString, s)
	require.NoError(t, err)
	assert.False(t, v.Null)
}

func TestRender_Idempotent(t *testing.T) {
	settings := []ruleset.Settings{
		ruleset.DefaultSettings(),
		{ThousandsSeparator: '.', Precision: 0.001},
		{ThousandsSeparator: ',', Precision: 0.001},
	}
	inputs := map[ruleset.ValueType][]string{
		ruleset.TypeInteger:    {"0", "-15", "123456"},
		ruleset.TypeFloat:      {"0.5", "-2", "1234.125"},
		ruleset.TypeScientific: {"1e10", "-3.5e-4", "7"},
		ruleset.TypeComplex:    {"1+2j", "-3j", "4"},
		ruleset.TypeBoolean:    {"true", "False"},
		ruleset.TypeDateTime:   {"2020-01-31", "31/01/2020", "2020-01-31T10:20:30+00:00", "12:30"},
		ruleset.TypeString:     {"hello", "  spaced  "},
	}

	for _, s := range settings {
		for typ, raws := range inputs {
			for _, raw := range raws {
				if s.DecimalMark() == ',' {
					raw = withDecimalMark(raw, s)
				}
				first, err := Coerce(core.TextCell(raw), typ, s)
				require.NoError(t, err, "%s %q", typ, raw)
				second, err := Coerce(core.TextCell(first.Render(s)), typ, s)
				require.NoError(t, err, "%s %q rendered as %q", typ, raw, first.Render(s))
				assert.True(t, first.Equal(second), "%s %q not idempotent", typ, raw)
			}
		}
	}
}

func TestRender_IdempotentNull(t *testing.T) {
	settings := []ruleset.Settings{
		ruleset.DefaultSettings(),
		{NullLiterals: []string{"NA", ""}},
	}
	cells := []core.Cell{core.NullCell(), core.TextCell(""), core.TextCell("   ")}

	for _, s := range settings {
		for _, typ := range ruleset.ValueTypes() {
			for _, cell := range cells {
				first, err := Coerce(cell, typ, s)
				require.NoError(t, err, "%s %+v", typ, cell)
				require.True(t, first.Null)

				second, err := Coerce(core.TextCell(first.Render(s)), typ, s)
				require.NoError(t, err, "%s null rendered as %q", typ, first.Render(s))
				assert.True(t, first.Equal(second), "%s null not idempotent", typ)
			}
		}
	}
}

func TestIsNull_Blank(t *testing.T) {
	s := ruleset.DefaultSettings()
	assert.True(t, IsNull(core.TextCell(""), s))
	assert.True(t, IsNull(core.TextCell(" \t"), s))
	assert.False(t, IsNull(core.TextCell("0"), s))
	assert.False(t, IsNull(core.TextCell("--"), s))
}

func TestCoerceFormat(t *testing.T) {
	f := dateformat.MustCompile("DD.MM.YYYY")
	s := ruleset.DefaultSettings()

	v, err := CoerceFormat(core.TextCell("03.02.2001"), f, s)
	require.NoError(t, err)
	assert.Equal(t, 2001, v.Time.Year())

	_, err = CoerceFormat(core.TextCell("2001-02-03"), f, s)
	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Contains(t, failure.Error(), "DD.MM.YYYY")
}

func TestCompare(t *testing.T) {
	num := func(f float64) Value { return Value{Type: ruleset.TypeFloat, Num: f} }

	tests := []struct {
		name string
		kind ruleset.Kind
		v    Value
		lit  float64
		eps  float64
		want bool
	}{
		{"eq within coarse precision", ruleset.KindEqualsNumber, num(100.0009), 100, 0.001, true},
		{"eq outside fine precision", ruleset.KindEqualsNumber, num(100.0009), 100, 0.0001, false},
		{"ne is negation", ruleset.KindNotEqualsNumber, num(100.0009), 100, 0.001, false},
		{"gt is exact", ruleset.KindGreaterThan, num(100.0009), 100, 0.001, true},
		{"gt rejects equal", ruleset.KindGreaterThan, num(100), 100, 0.001, false},
		{"lt", ruleset.KindLessThan, num(99), 100, 0.001, true},
		{"ge within epsilon", ruleset.KindGreaterOrEqual, num(99.9995), 100, 0.001, true},
		{"ge below", ruleset.KindGreaterOrEqual, num(99.9), 100, 0.001, false},
		{"le within epsilon", ruleset.KindLessOrEqual, num(100.0005), 100, 0.001, true},
		{"complex eq", ruleset.KindEqualsNumber, Value{Type: ruleset.TypeComplex, Complex: complex(5, 0)}, 5, 0.001, true},
		{"complex ne", ruleset.KindNotEqualsNumber, Value{Type: ruleset.TypeComplex, Complex: complex(5, 1)}, 5, 0.001, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compare(tt.kind, tt.v, tt.lit, tt.eps)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Compare(ruleset.KindGreaterThan, Value{Type: ruleset.TypeComplex}, 1, 0.001)
	require.Error(t, err)

	_, err = Compare(ruleset.KindGreaterThan, Value{Type: ruleset.TypeString, Raw: "x"}, 1, 0.001)
	require.Error(t, err)
}

func TestParseNumber(t *testing.T) {
	f, err := ParseNumber("1.000", ruleset.Settings{ThousandsSeparator: '.'})
	require.NoError(t, err)
	assert.InDelta(t, 1000.0, f, 0)

	f, err = ParseNumber("1,000.5", ruleset.Settings{ThousandsSeparator: ','})
	require.NoError(t, err)
	assert.InDelta(t, 1000.5, f, 0)

	f, err = ParseNumber("1.000", ruleset.DefaultSettings())
	require.NoError(t, err)
	assert.InDelta(t, 1.0, f, 0)

	_, err = ParseNumber("twelve", ruleset.DefaultSettings())
	require.ErrorIs(t, err, ErrNotNumber)
}

func TestCountDigits(t *testing.T) {
	tests := []struct {
		in          string
		significant int
		decimals    int
	}{
		{"123.45", 5, 2},
		{"0.0012", 2, 4},
		{"1200", 2, 0},
		{"1200.", 4, 0},
		{"100.0", 4, 1},
		{"-0.50", 2, 2},
		{"0", 1, 0},
		{"1.20e3", 3, 2},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			sig, dec, err := CountDigits(tt.in, ruleset.DefaultSettings())
			require.NoError(t, err)
			assert.Equal(t, tt.significant, sig, "significant")
			assert.Equal(t, tt.decimals, dec, "decimals")
		})
	}

	_, _, err := CountDigits("x1", ruleset.DefaultSettings())
	require.Error(t, err)
}
