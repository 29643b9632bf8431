package commands

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/leapstack-labs/leapcheck/internal/cli/output"
	"github.com/leapstack-labs/leapcheck/internal/cli/testutil"
	"github.com/leapstack-labs/leapcheck/pkg/ruleset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRulesCommand_ListAll(t *testing.T) {
	cmd := NewRulesCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "Value rules")
	assert.Contains(t, out, "starts-with")
	assert.Contains(t, out, `starts with "<text>"`)
	assert.NotContains(t, out, "Date-time formats")
	testutil.AssertValidMarkdown(t, out)
}

func TestRulesCommand_Sections(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{
			name:    "types",
			args:    []string{"--types"},
			want:    []string{"Value types", "integer"},
			notWant: []string{"Value rules"},
		},
		{
			name:    "formats",
			args:    []string{"--formats"},
			want:    []string{"Date-time formats", "YYYY-MM-DD", "2024-03-09"},
			notWant: []string{"Value rules"},
		},
		{
			name:    "checks",
			args:    []string{"--checks"},
			want:    []string{"Rules file checks", "LK01", "column-without-rules"},
			notWant: []string{"Value types"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewRulesCommand()
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetArgs(tt.args)

			require.NoError(t, cmd.Execute())
			for _, s := range tt.want {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tt.notWant {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}

func TestRulesCommand_ShowRule(t *testing.T) {
	for _, name := range []string{"starts-with", "Starts With"} {
		t.Run(name, func(t *testing.T) {
			cmd := NewRulesCommand()
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetArgs([]string{name})

			require.NoError(t, cmd.Execute())
			assert.Contains(t, buf.String(), "# starts-with")
			assert.Contains(t, buf.String(), `starts with "NP"`)
		})
	}
}

func TestRulesCommand_NotFound(t *testing.T) {
	cmd := NewRulesCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"nope"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `rule "nope" not found`)
}

func TestListRules_JSON(t *testing.T) {
	tr := testutil.NewTestRendererJSON()

	require.NoError(t, listRules(tr.Renderer, &RulesOptions{}))

	var c rulesCatalog
	require.NoError(t, json.Unmarshal(tr.Out.Bytes(), &c))
	assert.Len(t, c.Rules, len(ruleset.Kinds()))
	assert.Nil(t, c.Formats)
}

func TestShowRule_Text(t *testing.T) {
	tr := testutil.NewTestRenderer(output.ModeText, false)

	require.NoError(t, showRule(tr.Renderer, "ge"))
	out := tr.Output()
	assert.Contains(t, out, "is >= <number>")
	assert.Contains(t, out, "Needs a declared column type")
	testutil.AssertNoANSI(t, out)
}

func TestFindKind(t *testing.T) {
	k, ok := findKind("  Min Length ")
	require.True(t, ok)
	assert.Equal(t, ruleset.KindMinLength, k.Kind)

	_, ok = findKind("")
	assert.False(t, ok)
}
