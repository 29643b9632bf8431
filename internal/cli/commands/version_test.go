package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVersionCommand(t *testing.T) {
	tests := []struct {
		version string
		want    string
	}{
		{"0.1.0", "leapcheck v0.1.0\n"},
		{"1.2.3", "leapcheck v1.2.3\n"},
		{"dev", "leapcheck vdev\n"},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			cmd := NewVersionCommand(tt.version)
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetArgs([]string{})

			require.NoError(t, cmd.Execute())
			assert.Contains(t, buf.String(), tt.want)
			assert.Contains(t, buf.String(), "go: go")
		})
	}
}

func TestVersionCommand_ListsSources(t *testing.T) {
	cmd := NewVersionCommand("test")
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, buf.String(), "sources: ")
	for _, kind := range []string{"csv", "duckdb", "postgres", "tsv", "xlsx"} {
		assert.Contains(t, buf.String(), kind)
	}
}

func TestVersionCommand_RejectsArgs(t *testing.T) {
	cmd := NewVersionCommand("test")
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"extra"})
	require.Error(t, cmd.Execute())
}
