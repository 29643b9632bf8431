package commands

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/leapcheck/pkg/linker"
	"github.com/leapstack-labs/leapcheck/pkg/parser"
	"github.com/spf13/cobra"
)

// CheckResult is the outcome of checking one rules file.
type CheckResult struct {
	File         string              `json:"file" yaml:"file"`
	OK           bool                `json:"ok" yaml:"ok"`
	Error        *CheckError         `json:"error,omitempty" yaml:"error,omitempty"`
	Columns      int                 `json:"columns" yaml:"columns"`
	ValueRules   int                 `json:"value_rules" yaml:"value_rules"`
	Conditionals int                 `json:"conditionals" yaml:"conditionals"`
	Warnings     []linker.Diagnostic `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	err error
	src string
}

// CheckError locates a parse error.
type CheckError struct {
	Line    int    `json:"line,omitempty" yaml:"line,omitempty"`
	Column  int    `json:"column,omitempty" yaml:"column,omitempty"`
	Message string `json:"message" yaml:"message"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <rules-file>...",
		Short: "Parse and link rules files without reading data",
		Long: `Parse and link one or more rules files without reading any data.

A valid file prints "rules file OK" together with the warnings the linker
found (columns without rules, rules on undeclared columns, ...). A
malformed file prints the error with the surrounding source lines.`,
		Example: `  # Check a rules file
  leapcheck check people.rules

  # Check several files, machine readable
  leapcheck check rules/*.rules -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args)
		},
	}
	return cmd
}

func runCheck(cmd *cobra.Command, files []string) error {
	cc := NewCommandContext(cmd)
	r := cc.Renderer

	results := make([]CheckResult, 0, len(files))
	invalid := 0
	for _, file := range files {
		res := checkFile(file)
		if !res.OK {
			invalid++
		}
		results = append(results, res)
	}

	if ok, err := r.Encode(results); ok {
		if err != nil {
			return err
		}
		return checkFailure(invalid, len(files))
	}

	styles := r.Styles()
	for _, res := range results {
		if !res.OK {
			r.StatusLine(res.File, "error", "")
			printParseError(r, res.src, res.err)
			continue
		}
		status := "success"
		if len(res.Warnings) > 0 {
			status = "warning"
		}
		r.StatusLine(res.File, status, fmt.Sprintf("rules file OK: %d columns, %d value rules, %d conditional rules",
			res.Columns, res.ValueRules, res.Conditionals))
		for _, d := range res.Warnings {
			r.Printf("    %s %s\n", styles.Warning.Render("["+d.CheckID+"]"), d.Message)
		}
	}
	return checkFailure(invalid, len(files))
}

// checkFile parses and links one file.
func checkFile(file string) CheckResult {
	res := CheckResult{File: file}
	rs, src, err := loadRules(file)
	if err != nil {
		res.err, res.src = err, src
		res.Error = &CheckError{Message: err.Error()}
		var perr *parser.ParseError
		if errors.As(err, &perr) {
			pos := perr.Position()
			res.Error = &CheckError{Line: pos.Line, Column: pos.Column, Message: perr.Message()}
		}
		return res
	}

	res.OK = true
	res.Columns = len(rs.Columns.Names)
	res.Conditionals = len(rs.Conditionals)
	res.ValueRules = rs.ValueRuleCount()
	res.Warnings = linker.Link(rs)
	return res
}

func checkFailure(invalid, total int) error {
	if invalid == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d rules files are invalid", invalid, total)
}
