package output

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapcheck/pkg/report"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// numbers formats counts with digit grouping, e.g. 12,345.
var numbers = message.NewPrinter(language.English)

// Report renders a validation report in the effective mode.
func (r *Renderer) Report(rep *report.Report) error {
	if ok, err := r.Encode(rep); ok {
		return err
	}

	var log bytes.Buffer
	if err := report.WriteLog(&log, rep); err != nil {
		return err
	}

	if r.EffectiveMode() == ModeMarkdown {
		return r.reportMarkdown(rep, log.String())
	}
	return r.reportText(rep, log.String())
}

func (r *Renderer) reportText(rep *report.Report, log string) error {
	r.Header(1, reportTitle(rep))
	for _, line := range strings.Split(strings.TrimRight(log, "\n"), "\n") {
		r.Println(r.styleLogLine(line))
	}

	if len(rep.ColumnResults) > 0 {
		r.Println()
		r.Table(columnHeader, columnRows(rep))
	}
	if len(rep.Conditionals) > 0 {
		r.Println()
		r.Table(conditionalHeader, conditionalRows(rep))
	}

	r.Println()
	status := "success"
	if !rep.OK() {
		status = "error"
	}
	r.StatusLine(SummaryLine(rep), status, "")
	return nil
}

func (r *Renderer) reportMarkdown(rep *report.Report, log string) error {
	r.Header(1, reportTitle(rep))
	if rep.RulesFile != "" {
		r.Println(FormatKeyValue("Rules", "`"+rep.RulesFile+"`"))
	}
	if rep.DataFile != "" {
		r.Println(FormatKeyValue("Data", "`"+rep.DataFile+"`"))
	}
	r.Println(FormatKeyValue("Result", SummaryLine(rep)))
	r.Println()

	r.Header(2, "Log")
	r.Println(FormatCodeBlock("text", log))
	r.Println()

	if len(rep.ColumnResults) > 0 {
		r.Header(2, "Columns")
		r.Table(columnHeader, columnRows(rep))
		r.Println()
	}
	if len(rep.Conditionals) > 0 {
		r.Header(2, "Conditional rules")
		r.Table(conditionalHeader, conditionalRows(rep))
		r.Println()
	}
	return nil
}

func (r *Renderer) styleLogLine(line string) string {
	s := r.styles
	switch {
	case strings.HasPrefix(line, "Error:"):
		return s.Error.Render("Error:") + line[len("Error:"):]
	case strings.HasPrefix(line, "Warning:"):
		return s.Warning.Render("Warning:") + line[len("Warning:"):]
	case strings.HasPrefix(line, "Info:"):
		return s.Info.Render("Info:") + line[len("Info:"):]
	default:
		return line
	}
}

func reportTitle(rep *report.Report) string {
	if rep.DataFile == "" {
		return "Validation report"
	}
	return "Validation report: " + rep.DataFile
}

// SummaryLine returns a one-line digest such as
// "FAILED: 1,024 rows, 4 columns, 2 errors, 0 warnings, 9 infos".
func SummaryLine(rep *report.Report) string {
	errs, warns, infos := rep.Counts()
	verdict := "PASSED"
	if errs > 0 {
		verdict = "FAILED"
	}
	return numbers.Sprintf("%s: %d rows, %d columns, %d errors, %d warnings, %d infos",
		verdict, rep.Rows, rep.Columns, errs, warns, infos)
}

var columnHeader = []string{"Column", "Type", "Rules", "Failed rules", "Missing values"}

func columnRows(rep *report.Report) [][]string {
	rows := make([][]string, 0, len(rep.ColumnResults))
	for _, c := range rep.ColumnResults {
		failed := 0
		for _, o := range c.Rules {
			if !o.OK() {
				failed++
			}
		}
		typ := c.Type
		if typ == "" {
			typ = "-"
		}
		rows = append(rows, []string{
			c.Column,
			typ,
			strconv.Itoa(len(c.Rules)),
			strconv.Itoa(failed),
			numbers.Sprintf("%d", c.MissingValues),
		})
	}
	return rows
}

var conditionalHeader = []string{"Conditional", "Matched rows", "Result"}

func conditionalRows(rep *report.Report) [][]string {
	rows := make([][]string, 0, len(rep.Conditionals))
	for _, c := range rep.Conditionals {
		var result string
		switch {
		case c.Unresolved:
			result = "unresolved"
		case c.Error != "":
			result = "error"
		case c.Vacuous:
			result = "vacuous"
		case c.OK():
			result = "ok"
		default:
			result = fmt.Sprintf("failed on %s rows", numbers.Sprintf("%d", c.Outcome.Failed))
		}
		rows = append(rows, []string{c.Name, numbers.Sprintf("%d", c.Matched), result})
	}
	return rows
}
