package evaluator

import (
	"github.com/leapstack-labs/leapcheck/pkg/core"
	"github.com/leapstack-labs/leapcheck/pkg/report"
	"github.com/leapstack-labs/leapcheck/pkg/ruleset"
)

// CheckValue evaluates rules against a single cell of column, using the
// column's declared type and the ruleset settings. Row numbers in the
// outcomes are always 1.
func CheckValue(rs *ruleset.Ruleset, column string, rules []ruleset.ValueRule, cell core.Cell) []report.RuleOutcome {
	table := core.NewTable([]string{column}, [][]core.Cell{{cell}})
	col := columnFor(rs, column)
	cells := col.cells(table, []int{0})

	out := make([]report.RuleOutcome, 0, len(rules))
	for _, rule := range rules {
		out = append(out, col.evaluate(rule, cells, 1))
	}
	return out
}
