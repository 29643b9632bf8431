package evaluator

import (
	"fmt"

	"github.com/leapstack-labs/leapcheck/pkg/core"
	"github.com/leapstack-labs/leapcheck/pkg/report"
	"github.com/leapstack-labs/leapcheck/pkg/ruleset"
)

// NoMatchNote is attached to conditional rules whose antecedent held on no row.
const NoMatchNote = "no rows matched condition"

// evaluateConditional runs the two-pass protocol for one conditional rule.
// Pass one evaluates the antecedent on every row; rows where it fails,
// including null cells and coercion failures, are skipped. Pass two
// evaluates the consequent on the remaining rows only.
func evaluateConditional(rs *ruleset.Ruleset, table *core.Table, cond ruleset.ConditionalRule, maxSamples int) report.ConditionalResult {
	res := report.ConditionalResult{
		Name: cond.Name,
		Line: cond.Line,
		If:   describeSide(cond.If),
		Then: describeSide(cond.Then),
	}

	for _, side := range []ruleset.Side{cond.If, cond.Then} {
		if !table.HasColumn(side.Column) {
			res.Unresolved = true
			res.Note = fmt.Sprintf("column %q not in data", side.Column)
			return res
		}
	}

	ifCol := columnFor(rs, cond.If.Column)
	antecedent := ifCol.evaluate(cond.If.Rule, ifCol.cells(table, allRows(table)), 0)
	if antecedent.Error != "" {
		res.Error = fmt.Sprintf("condition `%s` not applied: %s", res.If, antecedent.Error)
		return res
	}

	skipped := make(map[int]bool, len(antecedent.FailedRows))
	for _, r := range antecedent.FailedRows {
		skipped[r-1] = true
	}
	matched := make([]int, 0, table.Len()-len(skipped))
	for r := range table.Len() {
		if !skipped[r] {
			matched = append(matched, r)
		}
	}

	res.Matched = len(matched)
	if len(matched) == 0 {
		res.Vacuous = true
		res.Note = NoMatchNote
		return res
	}

	thenCol := columnFor(rs, cond.Then.Column)
	res.Outcome = thenCol.evaluate(cond.Then.Rule, thenCol.cells(table, matched), maxSamples)
	return res
}

func describeSide(s ruleset.Side) string {
	return fmt.Sprintf("column: %s %s", s.Column, s.Rule)
}
