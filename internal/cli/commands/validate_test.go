package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/leapcheck/internal/cli/testutil"
	"github.com/leapstack-labs/leapcheck/internal/state"
	"github.com/leapstack-labs/leapcheck/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passingRules() string {
	return strings.Replace(testutil.PeopleRules, "is >= 18", "is >= 10", 1)
}

func TestValidateOnce_Failed(t *testing.T) {
	p := testutil.SetupTestProject(t)
	cc, tr := newTestContext(t)

	rep, err := validateOnce(context.Background(), cc, &ValidateOptions{Rules: p.Rules, Data: p.Data})

	var failed *ValidationFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, core.SeverityError, failed.Threshold)
	assert.Equal(t, 1, failed.Errors)
	assert.Contains(t, err.Error(), "validation failed at error level: 1 errors")

	require.NotNil(t, rep)
	assert.Equal(t, 3, rep.Rows)
	assert.Equal(t, 3, rep.Columns)
	age, ok := rep.Column("age")
	require.True(t, ok)
	assert.False(t, age.AllOK())

	out := tr.Output()
	assert.Contains(t, out, "FAILED: 3 rows, 3 columns, 1 errors")
	assert.Contains(t, out, "rule 'is >= 18' failed on 1 of 3 rows (rows 3)")
	testutil.AssertValidMarkdown(t, out)
}

func TestValidateOnce_Passed(t *testing.T) {
	p := testutil.SetupProject(t, passingRules(), testutil.PeopleCSV)
	cc, tr := newTestContext(t)

	rep, err := validateOnce(context.Background(), cc, &ValidateOptions{Rules: p.Rules, Data: p.Data})
	require.NoError(t, err)
	assert.True(t, rep.OK())
	assert.Contains(t, tr.Output(), "PASSED: 3 rows, 3 columns, 0 errors")

	cond, ok := rep.Conditional("ann is adult")
	require.True(t, ok)
	assert.Equal(t, 1, cond.Matched)
	assert.True(t, cond.OK())
}

func TestValidateOnce_FailOn(t *testing.T) {
	tests := []struct {
		name    string
		failOn  string
		wantErr bool
	}{
		{name: "never", failOn: "never"},
		{name: "error", failOn: "error", wantErr: true},
		{name: "info fails on passing rules too", failOn: "info", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testutil.SetupTestProject(t)
			cc, _ := newTestContext(t)
			cc.Cfg.FailOn = tt.failOn

			_, err := validateOnce(context.Background(), cc, &ValidateOptions{Rules: p.Rules, Data: p.Data})
			if tt.wantErr {
				var failed *ValidationFailedError
				require.ErrorAs(t, err, &failed)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestValidateOnce_JSON(t *testing.T) {
	p := testutil.SetupTestProject(t)
	cc, _ := newTestContext(t)
	tr := testutil.NewTestRendererJSON()
	cc.Renderer = tr.Renderer

	_, err := validateOnce(context.Background(), cc, &ValidateOptions{Rules: p.Rules, Data: p.Data})
	require.Error(t, err)

	out := tr.Output()
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "{"), "output should be a JSON object: %s", out)
	assert.Contains(t, out, `"column_results"`)
	assert.Contains(t, out, `"failed_rows": [`)
}

func TestValidateOnce_WritesLogFile(t *testing.T) {
	p := testutil.SetupTestProject(t)
	cc, tr := newTestContext(t)
	cc.Cfg.LogDir = filepath.Join(t.TempDir(), "logs")

	_, err := validateOnce(context.Background(), cc, &ValidateOptions{Rules: p.Rules, Data: p.Data})
	require.Error(t, err)

	logs, err := filepath.Glob(filepath.Join(cc.Cfg.LogDir, "leapcheck_*.log"))
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Contains(t, tr.ErrorOutput(), "Log written to "+logs[0])

	data, err := os.ReadFile(logs[0])
	require.NoError(t, err)
	content := string(data)
	assert.True(t, strings.HasPrefix(content, "Info: rules file "+p.Rules+"\n"))
	assert.Contains(t, content, "Info: data file "+p.Data+"\n")
	assert.Contains(t, content, "Info: rules file OK\n")
	assert.Contains(t, content, "Info: data has 3 rows and 3 columns\n")
	assert.Contains(t, content, `Error: column "age": rule 'is >= 18' failed on 1 of 3 rows (rows 3)`)
	assert.Contains(t, content, `Info: conditional rule "ann is adult": all OK (1 matching rows)`)
}

func TestValidateOnce_ParseError(t *testing.T) {
	rules := "column names in ['id', 'name', 'age']\nthis is not a statement\n"
	p := testutil.SetupProject(t, rules, testutil.PeopleCSV)
	cc, tr := newTestContext(t)
	cc.Cfg.LogDir = filepath.Join(t.TempDir(), "logs")

	rep, err := validateOnce(context.Background(), cc, &ValidateOptions{Rules: p.Rules, Data: p.Data})
	require.Error(t, err)
	assert.Nil(t, rep)
	assert.Equal(t, "rules file "+p.Rules+" is invalid", err.Error())

	errOut := tr.ErrorOutput()
	assert.Contains(t, errOut, "error: ")
	assert.Contains(t, errOut, "this is not a statement")
	assert.Empty(t, tr.Output(), "no report is rendered for an invalid rules file")

	logs, _ := filepath.Glob(filepath.Join(cc.Cfg.LogDir, "*.log"))
	require.Len(t, logs, 1)
	data, err := os.ReadFile(logs[0])
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Error: "))
}

func TestValidateOnce_MissingInputs(t *testing.T) {
	p := testutil.SetupTestProject(t)
	missing := filepath.Join(p.Dir, "missing")

	tests := []struct {
		name    string
		opts    ValidateOptions
		wantErr string
	}{
		{
			name:    "rules",
			opts:    ValidateOptions{Rules: missing, Data: p.Data},
			wantErr: "failed to read rules file",
		},
		{
			name:    "grammar",
			opts:    ValidateOptions{Rules: p.Rules, Data: p.Data, Grammar: missing},
			wantErr: "failed to read grammar file",
		},
		{
			name:    "data",
			opts:    ValidateOptions{Rules: p.Rules, Data: missing + ".csv"},
			wantErr: "failed to read data file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cc, _ := newTestContext(t)
			_, err := validateOnce(context.Background(), cc, &tt.opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			var failed *ValidationFailedError
			assert.False(t, errors.As(err, &failed))
		})
	}
}

func TestValidateOnce_RecordsHistory(t *testing.T) {
	p := testutil.SetupTestProject(t)
	cc, _ := newTestContext(t)
	ctx := context.Background()

	_, err := validateOnce(ctx, cc, &ValidateOptions{Rules: p.Rules, Data: p.Data})
	require.Error(t, err)
	_, err = validateOnce(ctx, cc, &ValidateOptions{Rules: p.Rules, Data: filepath.Join(p.Dir, "nope.csv")})
	require.Error(t, err)

	store, err := cc.OpenStore()
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	runs, err := store.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	byStatus := map[state.RunStatus]*state.Run{}
	for _, r := range runs {
		byStatus[r.Status] = r
	}
	failed := byStatus[state.RunStatusFailed]
	require.NotNil(t, failed)
	assert.Equal(t, 3, failed.Rows)
	assert.Equal(t, 1, failed.Errors)
	assert.Equal(t, p.Rules, failed.RulesFile)

	errored := byStatus[state.RunStatusError]
	require.NotNil(t, errored)
	assert.Contains(t, errored.Error, "failed to read data file")
}

func TestValidateOnce_HistoryDisabled(t *testing.T) {
	p := testutil.SetupTestProject(t)
	cc, _ := newTestContext(t)
	cc.Cfg.History = false

	_, err := validateOnce(context.Background(), cc, &ValidateOptions{Rules: p.Rules, Data: p.Data})
	require.Error(t, err)

	_, statErr := os.Stat(cc.Cfg.StatePath)
	assert.True(t, os.IsNotExist(statErr), "state database should not be created")
}

func TestValidateOnce_HistoryUnavailable(t *testing.T) {
	p := testutil.SetupProject(t, passingRules(), testutil.PeopleCSV)
	cc, tr := newTestContext(t)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))
	cc.Cfg.StatePath = filepath.Join(blocker, "state.db")

	_, err := validateOnce(context.Background(), cc, &ValidateOptions{Rules: p.Rules, Data: p.Data})
	require.NoError(t, err)
	assert.Contains(t, tr.ErrorOutput(), "warning: run history disabled")
}

func TestValidateCommand_RequiresFlags(t *testing.T) {
	cmd := NewValidateCommand()
	cmd.SetOut(new(strings.Builder))
	cmd.SetErr(new(strings.Builder))
	cmd.SetArgs([]string{"--rules", "x.rules"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "data" not set`)
}
