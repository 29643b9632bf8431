package testutil

import (
	"strings"
	"testing"

	"github.com/leapstack-labs/leapcheck/pkg/core"
	"github.com/leapstack-labs/leapcheck/pkg/parser"
	"github.com/leapstack-labs/leapcheck/pkg/ruleset"
	"github.com/stretchr/testify/require"
)

// Null marks a native null cell in Table rows.
const Null = "<null>"

// Table builds a dataset from a pipe-separated header and rows, e.g.
//
//	testutil.Table("id|country", "1|EGY", "2|<null>")
//
// Cells are not trimmed. The literal <null> becomes a native null cell.
func Table(header string, rows ...string) *core.Table {
	records := make([][]core.Cell, len(rows))
	for i, row := range rows {
		fields := strings.Split(row, "|")
		rec := make([]core.Cell, len(fields))
		for j, f := range fields {
			if f == Null {
				rec[j] = core.NullCell()
			} else {
				rec[j] = core.TextCell(f)
			}
		}
		records[i] = rec
	}
	return core.NewTable(strings.Split(header, "|"), records)
}

// MustParse parses a rules file or fails the test.
func MustParse(t testing.TB, src string) *ruleset.Ruleset {
	t.Helper()
	rs, err := parser.Parse(src, "test.rules")
	require.NoError(t, err)
	return rs
}
