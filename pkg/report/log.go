package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapcheck/pkg/core"
)

// maxLoggedRows caps the row numbers printed per failing rule.
const maxLoggedRows = 20

// WriteLog renders rep as `Info:`/`Warning:`/`Error:` prefixed lines.
func WriteLog(w io.Writer, rep *Report) error {
	lw := &logWriter{w: w}

	lw.line(core.SeverityInfo, "rules file OK")
	for _, d := range rep.LinkWarnings {
		lw.line(d.Severity, "[%s] %s", d.CheckID, d.Message)
	}
	lw.line(core.SeverityInfo, "data has %d rows and %d columns", rep.Rows, rep.Columns)

	for _, f := range rep.Findings {
		lw.line(f.Severity, "%s", f.Message)
	}

	for _, c := range rep.ColumnResults {
		if c.MissingValues > 0 {
			lw.line(core.SeverityInfo, "column %q: %d missing values", c.Column, c.MissingValues)
		}
		if c.AllOK() {
			lw.line(core.SeverityInfo, "column %q: all OK", c.Column)
			continue
		}
		for _, o := range c.Rules {
			if o.OK() {
				continue
			}
			lw.line(core.SeverityError, "column %q: %s", c.Column, describeFailure(o, "rows"))
		}
	}

	for _, c := range rep.Conditionals {
		switch {
		case c.Unresolved:
			lw.line(core.SeverityWarning, "conditional rule %q: unresolved, %s", c.Name, c.Note)
		case c.Error != "":
			lw.line(core.SeverityError, "conditional rule %q: %s", c.Name, c.Error)
		case c.Vacuous:
			lw.line(core.SeverityInfo, "conditional rule %q: vacuous OK, %s", c.Name, c.Note)
		case c.OK():
			lw.line(core.SeverityInfo, "conditional rule %q: all OK (%d matching rows)", c.Name, c.Matched)
		default:
			lw.line(core.SeverityError, "conditional rule %q: %s", c.Name, describeFailure(c.Outcome, "matching rows"))
		}
	}

	return lw.err
}

// describeFailure renders a failed outcome, e.g.
// `rule 'is unique' failed on 2 of 10 rows (rows 3, 7)`.
func describeFailure(o RuleOutcome, unit string) string {
	if o.Error != "" {
		return fmt.Sprintf("rule '%s' not applied: %s", o.Rule, o.Error)
	}
	return fmt.Sprintf("rule '%s' failed on %d of %d %s (rows %s)",
		o.Rule, o.Failed, o.Passed+o.Failed, unit, FormatRows(o.FailedRows, maxLoggedRows))
}

// FormatRows joins row numbers, eliding the tail beyond limit.
func FormatRows(rows []int, limit int) string {
	n := len(rows)
	if limit > 0 && n > limit {
		rows = rows[:limit]
	}
	parts := make([]string, len(rows))
	for i, r := range rows {
		parts[i] = strconv.Itoa(r)
	}
	s := strings.Join(parts, ", ")
	if len(rows) < n {
		s += fmt.Sprintf(", ... %d more", n-len(rows))
	}
	return s
}

type logWriter struct {
	w   io.Writer
	err error
}

func (lw *logWriter) line(sev core.Severity, format string, args ...any) {
	if lw.err != nil {
		return
	}
	_, lw.err = fmt.Fprintf(lw.w, "%s: %s\n", sev.Label(), fmt.Sprintf(format, args...))
}
