package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/leapcheck/internal/cli/commands"
	"github.com/leapstack-labs/leapcheck/internal/cli/config"
	"github.com/leapstack-labs/leapcheck/internal/cli/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args in dir.
func execute(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)
	t.Chdir(dir)

	cmd := NewRootCmd()
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRoot_Version(t *testing.T) {
	out, _, err := execute(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "leapcheck v"+Version)
}

func TestRoot_ValidateFails(t *testing.T) {
	p := testutil.SetupTestProject(t)

	out, _, err := execute(t, p.Dir, "validate", "-r", p.Rules, "-d", p.Data, "-o", "markdown")

	var failed *commands.ValidationFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, 1, failed.Errors)
	assert.Contains(t, out, "FAILED: 3 rows, 3 columns, 1 errors")

	_, statErr := os.Stat(filepath.Join(p.Dir, ".leapcheck", "state.db"))
	assert.NoError(t, statErr, "history is recorded next to the working directory by default")
}

func TestRoot_ValidateFlagsReachConfig(t *testing.T) {
	p := testutil.SetupTestProject(t)
	logDir := filepath.Join(p.Dir, "logs")

	_, errOut, err := execute(t, p.Dir,
		"validate", "-r", p.Rules, "-d", p.Data,
		"--fail-on", "never", "--log-dir", "logs", "--no-history")
	require.NoError(t, err)
	assert.Contains(t, errOut, "Log written to "+logDir)

	logs, _ := filepath.Glob(filepath.Join(logDir, "leapcheck_*.log"))
	assert.Len(t, logs, 1)

	_, statErr := os.Stat(filepath.Join(p.Dir, ".leapcheck"))
	assert.True(t, os.IsNotExist(statErr), "--no-history skips the state database")
}

func TestRoot_ConfigFileOutput(t *testing.T) {
	p := testutil.SetupTestProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(p.Dir, "leapcheck.yaml"),
		[]byte("output: json\nfail_on: never\nhistory: false\n"), 0o600))

	out, _, err := execute(t, p.Dir, "validate", "-r", p.Rules, "-d", p.Data)
	require.NoError(t, err)

	var rep map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.InDelta(t, 3, rep["rows"], 0)
}

func TestRoot_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "leapcheck.yaml"), []byte("output: html\n"), 0o600))

	_, _, err := execute(t, dir, "rules")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestRoot_History(t *testing.T) {
	p := testutil.SetupTestProject(t)
	state := filepath.Join(t.TempDir(), "state.db")

	_, _, err := execute(t, p.Dir, "validate", "-r", p.Rules, "-d", p.Data, "--state", state)
	require.Error(t, err)

	out, _, err := execute(t, p.Dir, "history", "--state", state, "-o", "json")
	require.NoError(t, err)

	var runs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "failed", runs[0]["status"])
	assert.InDelta(t, 1, runs[0]["errors"], 0)
}

func TestRoot_Verbose(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "leapcheck.yaml"), []byte("history: false\n"), 0o600))

	_, errOut, err := execute(t, dir, "rules", "-v")
	require.NoError(t, err)
	assert.Contains(t, errOut, "Using config file: ")
}

func TestRoot_Completion(t *testing.T) {
	out, _, err := execute(t, t.TempDir(), "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "leapcheck")
}

func TestRoot_Commands(t *testing.T) {
	cmd := NewRootCmd()
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"validate", "check", "rules", "repl", "history", "init", "version", "completion"} {
		assert.Contains(t, names, want)
	}
}
