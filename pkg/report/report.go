// Package report holds the structured result of a validation run.
//
// A Report is write-once: the evaluator builds it and callers render it
// with WriteLog or encode it as JSON/YAML. Every entry carries a
// core.Severity so callers can apply their own exit policy.
package report

import (
	"github.com/leapstack-labs/leapcheck/pkg/core"
	"github.com/leapstack-labs/leapcheck/pkg/linker"
)

// Finding kinds produced by the structural phase.
const (
	FindingMissingColumn   = "missing-column"
	FindingExtraColumn     = "extra-column"
	FindingColumnOrder     = "column-order"
	FindingDuplicateHeader = "duplicate-header"
)

// Finding is a structural observation about the dataset header.
type Finding struct {
	Kind     string        `json:"kind" yaml:"kind"`
	Severity core.Severity `json:"severity" yaml:"severity"`
	Column   string        `json:"column,omitempty" yaml:"column,omitempty"`
	Message  string        `json:"message" yaml:"message"`
}

// Sample is one failing cell kept for display.
type Sample struct {
	Row    int    `json:"row" yaml:"row"`
	Value  string `json:"value" yaml:"value"`
	Null   bool   `json:"null,omitempty" yaml:"null,omitempty"`
	Reason string `json:"reason" yaml:"reason"`
}

// RuleOutcome is the result of one value rule over a set of rows.
// Row numbers are 1-based data row indexes; the header is not counted.
type RuleOutcome struct {
	Rule       string   `json:"rule" yaml:"rule"`
	Kind       string   `json:"kind" yaml:"kind"`
	Line       int      `json:"line,omitempty" yaml:"line,omitempty"`
	Passed     int      `json:"passed" yaml:"passed"`
	Failed     int      `json:"failed" yaml:"failed"`
	FailedRows []int    `json:"failed_rows,omitempty" yaml:"failed_rows,omitempty"`
	Samples    []Sample `json:"samples,omitempty" yaml:"samples,omitempty"`
	// Error is set when the rule could not be applied at all, e.g. a
	// numeric comparison on a column without a declared type.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// OK reports whether the rule held on every row.
func (o RuleOutcome) OK() bool {
	return o.Failed == 0 && o.Error == ""
}

// Severity is Info for a passing rule and Error otherwise.
func (o RuleOutcome) Severity() core.Severity {
	if o.OK() {
		return core.SeverityInfo
	}
	return core.SeverityError
}

// ColumnResult groups the outcomes of one column's rule block.
type ColumnResult struct {
	Column        string        `json:"column" yaml:"column"`
	Type          string        `json:"type,omitempty" yaml:"type,omitempty"`
	MissingValues int           `json:"missing_values" yaml:"missing_values"`
	Rules         []RuleOutcome `json:"rules" yaml:"rules"`
}

// AllOK reports whether every rule passed on every row.
func (c ColumnResult) AllOK() bool {
	for _, r := range c.Rules {
		if !r.OK() {
			return false
		}
	}
	return true
}

// ConditionalResult is the outcome of one conditional rule.
type ConditionalResult struct {
	Name    string `json:"name" yaml:"name"`
	Line    int    `json:"line,omitempty" yaml:"line,omitempty"`
	If      string `json:"if" yaml:"if"`
	Then    string `json:"then" yaml:"then"`
	Matched int    `json:"matched" yaml:"matched"`
	// Vacuous is set when no row satisfied the condition.
	Vacuous bool `json:"vacuous,omitempty" yaml:"vacuous,omitempty"`
	// Unresolved is set when a referenced column is absent from the data.
	Unresolved bool   `json:"unresolved,omitempty" yaml:"unresolved,omitempty"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
	Note       string `json:"note,omitempty" yaml:"note,omitempty"`
	// Outcome is the consequent evaluated on the matched rows.
	Outcome RuleOutcome `json:"outcome" yaml:"outcome"`
}

// OK reports whether no matched row violated the consequent. Vacuous
// rules are OK; unresolved ones are not.
func (c ConditionalResult) OK() bool {
	if c.Unresolved || c.Error != "" {
		return false
	}
	return c.Vacuous || c.Outcome.OK()
}

// Severity returns Info when OK, Warning when unresolved and Error otherwise.
func (c ConditionalResult) Severity() core.Severity {
	switch {
	case c.Unresolved:
		return core.SeverityWarning
	case c.OK():
		return core.SeverityInfo
	default:
		return core.SeverityError
	}
}

// Report is the complete, exhaustive result of one validation run.
type Report struct {
	RulesFile     string              `json:"rules_file,omitempty" yaml:"rules_file,omitempty"`
	DataFile      string              `json:"data_file,omitempty" yaml:"data_file,omitempty"`
	Rows          int                 `json:"rows" yaml:"rows"`
	Columns       int                 `json:"columns" yaml:"columns"`
	LinkWarnings  []linker.Diagnostic `json:"link_warnings,omitempty" yaml:"link_warnings,omitempty"`
	Findings      []Finding           `json:"findings,omitempty" yaml:"findings,omitempty"`
	ColumnResults []ColumnResult      `json:"column_results" yaml:"column_results"`
	Conditionals  []ConditionalResult `json:"conditionals,omitempty" yaml:"conditionals,omitempty"`
}

// Counts tallies entries by severity. Passing rules and conditionals count
// as infos.
func (r *Report) Counts() (errors, warnings, infos int) {
	add := func(s core.Severity) {
		switch s {
		case core.SeverityError:
			errors++
		case core.SeverityWarning:
			warnings++
		default:
			infos++
		}
	}
	for _, d := range r.LinkWarnings {
		add(d.Severity)
	}
	for _, f := range r.Findings {
		add(f.Severity)
	}
	for _, c := range r.ColumnResults {
		for _, o := range c.Rules {
			add(o.Severity())
		}
	}
	for _, c := range r.Conditionals {
		add(c.Severity())
	}
	return errors, warnings, infos
}

// HasAtLeast reports whether any entry is at least as severe as s.
func (r *Report) HasAtLeast(s core.Severity) bool {
	errs, warns, infos := r.Counts()
	switch s {
	case core.SeverityError:
		return errs > 0
	case core.SeverityWarning:
		return errs+warns > 0
	default:
		return errs+warns+infos > 0
	}
}

// OK reports whether the report holds no errors.
func (r *Report) OK() bool {
	return !r.HasAtLeast(core.SeverityError)
}

// Column returns the result for a column, if the column was evaluated.
func (r *Report) Column(name string) (ColumnResult, bool) {
	for _, c := range r.ColumnResults {
		if c.Column == name {
			return c, true
		}
	}
	return ColumnResult{}, false
}

// Conditional returns the result of a named conditional rule.
func (r *Report) Conditional(name string) (ConditionalResult, bool) {
	for _, c := range r.Conditionals {
		if c.Name == name {
			return c, true
		}
	}
	return ConditionalResult{}, false
}
