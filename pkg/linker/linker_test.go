package linker

import (
	"testing"

	"github.com/leapstack-labs/leapcheck/pkg/core"
	"github.com/leapstack-labs/leapcheck/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(diags []Diagnostic) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = d.CheckID
	}
	return out
}

func TestRegistry(t *testing.T) {
	all := GetAll()
	require.Len(t, all, 4)
	assert.Equal(t, "LK01", all[0].ID)
	assert.Equal(t, "LK04", all[3].ID)

	def, ok := GetByID("LK02")
	require.True(t, ok)
	assert.Equal(t, "undeclared-column", def.Name)

	_, ok = GetByID("LK99")
	assert.False(t, ok)
}

func TestLink(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		want    []string
		columns []string
	}{
		{
			name: "clean ruleset",
			src: `column names in ['a', 'b']
column: 'a'
    is unique
column: 'b'
    is required
`,
			want: nil,
		},
		{
			name: "column without rules",
			src: `column names in ['a', 'b']
column: 'a'
    is unique
`,
			want:    []string{"LK01"},
			columns: []string{"b"},
		},
		{
			name: "undeclared block and conditional sides",
			src: `column names in ['a']
column: 'a'
    is unique
column: 'x'
    is unique
conditional rule: 'c'
    if column: a is null
    then column: y is null
`,
			want:    []string{"LK02", "LK02"},
			columns: []string{"x", "y"},
		},
		{
			name: "no value rules",
			src:     "column names in ['a']\n",
			want:    []string{"LK01", "LK03"},
			columns: []string{"a", ""},
		},
		{
			name: "duplicate declaration",
			src: `column names in ['a', 'a', 'a']
column: 'a'
    is unique
`,
			want:    []string{"LK04"},
			columns: []string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs, err := parser.Parse(tt.src, "r.rules")
			require.NoError(t, err)

			diags := Link(rs)
			if tt.want == nil {
				assert.Empty(t, diags)
				return
			}
			assert.Equal(t, tt.want, ids(diags))
			for i, col := range tt.columns {
				assert.Equal(t, col, diags[i].Column)
			}
			for _, d := range diags {
				assert.Equal(t, core.SeverityWarning, d.Severity)
				assert.Equal(t, "r.rules", d.Pos.File)
			}
		})
	}
}

func TestLink_EmptyRulesetWarnsTwice(t *testing.T) {
	rs, err := parser.Parse("column names in ['a']\n", "")
	require.NoError(t, err)

	diags := Link(rs)
	assert.Equal(t, []string{"LK01", "LK03"}, ids(diags))
	assert.Contains(t, diags[0].Message, "no associated value rules")
	assert.Equal(t, "no value rules present", diags[1].Message)
}
