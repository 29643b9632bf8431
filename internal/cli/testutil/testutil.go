// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/leapcheck/internal/cli/output"
)

// PeopleRules is a rules file matching PeopleCSV. Row 3 of PeopleCSV fails
// the age rule.
const PeopleRules = `// people
column names in ['id', 'name', 'age']
all columns required
no extra columns allowed

column: 'id'
    has value type integer
    is unique

column: 'name'
    is required

column: 'age'
    has value type integer
    is >= 18

conditional rule: 'ann is adult'
    if
        column: 'name' is 'Ann'
    then
        column: 'age' is >= 30
`

// PeopleCSV is a small dataset for PeopleRules.
const PeopleCSV = `id,name,age
1,Ann,34
2,Bob,41
3,Cid,12
`

// Project is a temporary directory holding a rules file and a data file.
type Project struct {
	Dir   string
	Rules string
	Data  string
}

// SetupTestProject writes PeopleRules and PeopleCSV into a temp directory.
func SetupTestProject(t *testing.T) *Project {
	t.Helper()
	return SetupProject(t, PeopleRules, PeopleCSV)
}

// SetupProject writes the given rules and CSV data into a temp directory.
func SetupProject(t *testing.T, rules, csv string) *Project {
	t.Helper()

	dir := t.TempDir()
	p := &Project{
		Dir:   dir,
		Rules: filepath.Join(dir, "people.rules"),
		Data:  filepath.Join(dir, "people.csv"),
	}
	if err := os.WriteFile(p.Rules, []byte(rules), 0o600); err != nil {
		t.Fatalf("failed to create rules file: %v", err)
	}
	if err := os.WriteFile(p.Data, []byte(csv), 0o600); err != nil {
		t.Fatalf("failed to create data file: %v", err)
	}
	return p
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.OutputMode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// NewTestRendererAuto creates a new test renderer with auto mode detection.
// In tests, non-TTY defaults to markdown output.
func NewTestRendererAuto() *TestRenderer {
	return NewTestRenderer(output.ModeAuto, false)
}

// NewTestRendererText creates a new test renderer in text mode (simulated TTY).
func NewTestRendererText() *TestRenderer {
	return NewTestRenderer(output.ModeText, true)
}

// NewTestRendererMarkdown creates a new test renderer in markdown mode.
func NewTestRendererMarkdown() *TestRenderer {
	return NewTestRenderer(output.ModeMarkdown, false)
}

// NewTestRendererJSON creates a new test renderer in JSON mode.
func NewTestRendererJSON() *TestRenderer {
	return NewTestRenderer(output.ModeJSON, false)
}

// Output returns the combined stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// Reset clears both output buffers.
func (tr *TestRenderer) Reset() {
	tr.Out.Reset()
	tr.ErrOut.Reset()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and basic structure.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	// Check for balanced code fences
	fenceCount := strings.Count(md, "```")
	if fenceCount%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fenceCount)
	}

	// Check that headers have content
	lines := strings.Split(md, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
