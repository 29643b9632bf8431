package evaluator

import (
	"fmt"
	"slices"
	"strings"

	"github.com/leapstack-labs/leapcheck/pkg/core"
	"github.com/leapstack-labs/leapcheck/pkg/report"
	"github.com/leapstack-labs/leapcheck/pkg/ruleset"
)

// checkStructure compares the data header with the column spec.
func checkStructure(rs *ruleset.Ruleset, table *core.Table) []report.Finding {
	spec := rs.Columns
	var findings []report.Finding

	present := make(map[string]int)
	var header []string
	for _, h := range table.Header {
		present[h]++
		if present[h] == 1 {
			header = append(header, h)
		} else if present[h] == 2 {
			findings = append(findings, report.Finding{
				Kind:     report.FindingDuplicateHeader,
				Severity: core.SeverityWarning,
				Column:   h,
				Message:  fmt.Sprintf("column %q appears more than once in the data, the first occurrence is used", h),
			})
		}
	}

	declared := dedupe(spec.Names)
	declaredSet := make(map[string]bool, len(declared))
	for _, name := range declared {
		declaredSet[name] = true
		if present[name] > 0 {
			continue
		}
		f := report.Finding{Kind: report.FindingMissingColumn, Column: name}
		if spec.AllColumnsRequired {
			f.Severity = core.SeverityError
			f.Message = fmt.Sprintf("required column %q is missing", name)
		} else {
			f.Severity = core.SeverityInfo
			f.Message = fmt.Sprintf("declared column %q is not in the data", name)
		}
		findings = append(findings, f)
	}

	for _, name := range header {
		if declaredSet[name] {
			continue
		}
		f := report.Finding{Kind: report.FindingExtraColumn, Column: name}
		if spec.NoExtraColumnsAllowed {
			f.Severity = core.SeverityError
			f.Message = fmt.Sprintf("extra column %q is not allowed", name)
		} else {
			f.Severity = core.SeverityInfo
			f.Message = fmt.Sprintf("column %q is not declared", name)
		}
		findings = append(findings, f)
	}

	if spec.CheckColumnOrder {
		var want, got []string
		for _, name := range declared {
			if present[name] > 0 {
				want = append(want, name)
			}
		}
		for _, name := range header {
			if declaredSet[name] {
				got = append(got, name)
			}
		}
		if !slices.Equal(want, got) {
			findings = append(findings, report.Finding{
				Kind:     report.FindingColumnOrder,
				Severity: core.SeverityWarning,
				Message: fmt.Sprintf("column order differs: expected [%s], found [%s]",
					strings.Join(want, ", "), strings.Join(got, ", ")),
			})
		}
	}

	return findings
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
