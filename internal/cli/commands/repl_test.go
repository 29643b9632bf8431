package commands

import (
	"testing"

	"github.com/leapstack-labs/leapcheck/internal/cli/testutil"
	"github.com/leapstack-labs/leapcheck/pkg/parser"
	"github.com/leapstack-labs/leapcheck/pkg/ruleset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T) (*replSession, *testutil.TestRenderer) {
	t.Helper()
	rs, err := parser.Parse(testutil.PeopleRules, "people.rules")
	require.NoError(t, err)
	tr := testutil.NewTestRendererMarkdown()
	return newReplSession(rs, tr.Renderer), tr
}

func TestReplSession_Prompt(t *testing.T) {
	s, _ := newTestSession(t)
	assert.Equal(t, "leapcheck> ", s.prompt())

	s.handle(".column age")
	assert.Equal(t, "leapcheck[age]> ", s.prompt())

	s.handle(".column 'name'")
	assert.Equal(t, "leapcheck[name]> ", s.prompt())
}

func TestReplSession_CheckValues(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "valid",
			input: "34",
			want:  []string{"- has value type integer\n", "- is >= 18\n"},
		},
		{
			name:  "too young",
			input: "12",
			want:  []string{"- has value type integer\n", "- is >= 18  "},
		},
		{
			name:  "not a number",
			input: "abc",
			want:  []string{"- has value type integer  ", "- is >= 18  "},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, tr := newTestSession(t)
			s.handle(".column age")
			tr.Reset()

			assert.False(t, s.handle(tt.input))
			for _, w := range tt.want {
				assert.Contains(t, tr.Output(), w)
			}
		})
	}
}

func TestReplSession_NoColumn(t *testing.T) {
	s, tr := newTestSession(t)

	s.handle("34")
	assert.Contains(t, tr.ErrorOutput(), "no column selected")
	assert.Empty(t, tr.Output())
}

func TestReplSession_AdHocRules(t *testing.T) {
	s, tr := newTestSession(t)
	s.handle(".column nickname")
	assert.Contains(t, tr.ErrorOutput(), `column "nickname" has no rule block`)

	s.handle("Al")
	assert.Contains(t, tr.Output(), "No rules for this column")

	tr.Reset()
	s.handle(".rule has min length 3")
	assert.Contains(t, tr.Output(), "Added: has min length 3")
	require.Len(t, s.extra, 1)
	assert.Equal(t, ruleset.KindMinLength, s.extra[0].Kind)

	tr.Reset()
	s.handle("Al")
	assert.Contains(t, tr.Output(), "- has min length 3  ")

	tr.Reset()
	s.handle("Alice")
	assert.Contains(t, tr.Output(), "- has min length 3\n")

	s.handle(".reset")
	assert.Empty(t, s.extra)
}

func TestReplSession_BadRule(t *testing.T) {
	s, tr := newTestSession(t)

	s.handle(".rule is between 1 and 3")
	assert.Contains(t, tr.ErrorOutput(), "error: ")
	assert.Empty(t, s.extra)

	tr.Reset()
	s.handle(".rule")
	assert.Contains(t, tr.ErrorOutput(), "usage: .rule <rule>")
}

func TestReplSession_Null(t *testing.T) {
	s, tr := newTestSession(t)
	s.handle(".column name")
	tr.Reset()

	s.handle(".null")
	assert.Contains(t, tr.Output(), "- is required  ")
}

func TestReplSession_Commands(t *testing.T) {
	s, tr := newTestSession(t)

	s.handle(".columns")
	out := tr.Output()
	assert.Contains(t, out, "| Column | Type | Rules |")
	assert.Contains(t, out, "| age | integer | 2 |")
	assert.Contains(t, out, "| name | - | 1 |")

	tr.Reset()
	s.handle(".help")
	assert.Contains(t, tr.Output(), ".column <name>")

	tr.Reset()
	s.handle(".bogus")
	assert.Contains(t, tr.ErrorOutput(), "unknown command: .bogus")

	assert.False(t, s.handle("   "))
	assert.True(t, s.handle(".quit"))
	assert.True(t, s.handle(".EXIT"))
}

func TestNewReplCompleter(t *testing.T) {
	rs, err := parser.Parse(testutil.PeopleRules, "people.rules")
	require.NoError(t, err)

	c := newReplCompleter(rs)
	var names []string
	for _, child := range c.GetChildren() {
		names = append(names, string(child.GetName()))
	}
	assert.Contains(t, names, ".column ")
	assert.Contains(t, names, ".quit ")
}
