package linker

import (
	"fmt"

	"github.com/leapstack-labs/leapcheck/pkg/core"
	"github.com/leapstack-labs/leapcheck/pkg/ruleset"
	"github.com/leapstack-labs/leapcheck/pkg/token"
)

func init() {
	Register(CheckDef{
		ID:          "LK01",
		Name:        "column-without-rules",
		Description: "A declared column has no value-rule block",
		Severity:    core.SeverityWarning,
		Check:       checkColumnWithoutRules,
	})
	Register(CheckDef{
		ID:          "LK02",
		Name:        "undeclared-column",
		Description: "A rule block or conditional rule references a column missing from `column names in`",
		Severity:    core.SeverityWarning,
		Check:       checkUndeclaredColumn,
	})
	Register(CheckDef{
		ID:          "LK03",
		Name:        "no-value-rules",
		Description: "The ruleset contains no value rules at all",
		Severity:    core.SeverityWarning,
		Check:       checkNoValueRules,
	})
	Register(CheckDef{
		ID:          "LK04",
		Name:        "duplicate-column-name",
		Description: "A column name is declared more than once",
		Severity:    core.SeverityWarning,
		Check:       checkDuplicateDeclaration,
	})
}

func pos(rs *ruleset.Ruleset, line int) token.Position {
	return token.Position{File: rs.Source, Line: line}
}

func checkColumnWithoutRules(rs *ruleset.Ruleset) []Diagnostic {
	var out []Diagnostic
	seen := make(map[string]bool)
	for _, name := range rs.Columns.Names {
		if seen[name] {
			continue
		}
		seen[name] = true
		if rs.Block(name) == nil {
			out = append(out, Diagnostic{
				Message: fmt.Sprintf("column %q has no associated value rules", name),
				Column:  name,
				Pos:     pos(rs, rs.Columns.Line),
			})
		}
	}
	return out
}

func checkUndeclaredColumn(rs *ruleset.Ruleset) []Diagnostic {
	var out []Diagnostic
	for _, b := range rs.OrderedBlocks() {
		if !rs.Columns.Contains(b.Column) {
			out = append(out, Diagnostic{
				Message: fmt.Sprintf("rules for undeclared column %q", b.Column),
				Column:  b.Column,
				Pos:     pos(rs, b.Line),
			})
		}
	}
	for _, c := range rs.Conditionals {
		for _, side := range []struct {
			label string
			s     ruleset.Side
		}{{"if", c.If}, {"then", c.Then}} {
			if !rs.Columns.Contains(side.s.Column) {
				out = append(out, Diagnostic{
					Message: fmt.Sprintf("conditional rule %q: rules for undeclared column %q in `%s`",
						c.Name, side.s.Column, side.label),
					Column: side.s.Column,
					Pos:    pos(rs, side.s.Rule.Line),
				})
			}
		}
	}
	return out
}

func checkNoValueRules(rs *ruleset.Ruleset) []Diagnostic {
	if rs.ValueRuleCount() > 0 {
		return nil
	}
	return []Diagnostic{{Message: "no value rules present", Pos: pos(rs, rs.Columns.Line)}}
}

func checkDuplicateDeclaration(rs *ruleset.Ruleset) []Diagnostic {
	var out []Diagnostic
	counts := make(map[string]int)
	for _, name := range rs.Columns.Names {
		counts[name]++
		if counts[name] == 2 {
			out = append(out, Diagnostic{
				Message: fmt.Sprintf("column %q is declared more than once", name),
				Column:  name,
				Pos:     pos(rs, rs.Columns.Line),
			})
		}
	}
	return out
}
