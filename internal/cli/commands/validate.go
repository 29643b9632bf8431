package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/leapstack-labs/leapcheck/internal/logfile"
	"github.com/leapstack-labs/leapcheck/internal/source"
	"github.com/leapstack-labs/leapcheck/internal/state"
	"github.com/leapstack-labs/leapcheck/pkg/core"
	"github.com/leapstack-labs/leapcheck/pkg/evaluator"
	"github.com/leapstack-labs/leapcheck/pkg/parser"
	"github.com/leapstack-labs/leapcheck/pkg/report"
	"github.com/spf13/cobra"
)

// ValidateOptions holds options for the validate command.
type ValidateOptions struct {
	Rules   string
	Data    string
	Grammar string
	Watch   bool
}

// ValidationFailedError is returned when a report holds findings at or
// above the fail_on threshold.
type ValidationFailedError struct {
	Threshold core.Severity
	Errors    int
	Warnings  int
	Infos     int
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("validation failed at %s level: %d errors, %d warnings, %d infos",
		e.Threshold, e.Errors, e.Warnings, e.Infos)
}

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	opts := &ValidateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a dataset against a rules file",
		Long: `Validate a dataset against a rules file.

The rules file is parsed and linked first; a malformed rules file stops the
run before any data is read. The dataset is then checked in three phases:
the header against the declared columns, every value rule of every column
block, and finally the conditional rules. Every finding is reported; the
run never stops at the first failure.

Data sources are detected from the location:
  - .csv (or anything else): comma separated text with a header row
  - .tsv, .tab: tab separated text
  - .xlsx, .xlsm: first sheet of a workbook (--sheet to choose)
  - .duckdb, .ddb: a table in a DuckDB database (--table)
  - postgres://...: a table in PostgreSQL (--table)

When --log-dir is set, the log lines are also written to
<log-dir>/leapcheck_<YYYYMMDD_HHMMSS>.log.

The exit status is non-zero when the report holds a finding at or above
--fail-on (error by default; "never" always exits zero).`,
		Example: `  # Validate a CSV file
  leapcheck validate --rules people.rules --data people.csv

  # Keep a log file per run
  leapcheck validate -r people.rules -d people.csv --log-dir logs

  # Validate a sheet of a workbook, failing on warnings too
  leapcheck validate -r people.rules -d people.xlsx --sheet Staff --fail-on warning

  # Validate a PostgreSQL table
  leapcheck validate -r people.rules -d postgres://localhost/hr --table public.people

  # Re-run whenever the rules or the data change
  leapcheck validate -r people.rules -d people.csv --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Rules, "rules", "r", "", "Path to the rules file (required)")
	cmd.Flags().StringVarP(&opts.Data, "data", "d", "", "Path or DSN of the dataset (required)")
	cmd.Flags().StringVarP(&opts.Grammar, "grammar", "g", "", "Path to the reference grammar file")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-run when the rules or data file changes")
	cmd.Flags().String("log-dir", "", "Directory for the run log file")
	cmd.Flags().String("fail-on", "", "Lowest severity that fails the run (error|warning|info|never)")
	cmd.Flags().Int("max-samples", 0, "Failing values kept per rule (-1 for none)")
	cmd.Flags().Int("workers", 0, "Concurrent column evaluations (0 = number of CPUs)")
	cmd.Flags().Duration("debounce", 0, "Delay before re-running in watch mode")
	cmd.Flags().Bool("no-history", false, "Do not record the run in the state database")
	cmd.Flags().String("source-kind", "", "Force the data source kind (csv|tsv|xlsx|duckdb|postgres)")
	cmd.Flags().String("sheet", "", "Workbook sheet to read")
	cmd.Flags().String("delimiter", "", "Field delimiter for delimited text")
	cmd.Flags().String("table", "", "Table to read from a database source")

	_ = cmd.MarkFlagRequired("rules")
	_ = cmd.MarkFlagRequired("data")
	_ = cmd.RegisterFlagCompletionFunc("fail-on", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"error", "warning", "info", "never"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("source-kind", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return source.Kinds(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runValidate(cmd *cobra.Command, opts *ValidateOptions) error {
	cc := NewCommandContext(cmd)
	if opts.Watch {
		return watchValidate(cmd.Context(), cc, opts)
	}
	_, err := validateOnce(cmd.Context(), cc, opts)
	return err
}

// validateOnce runs a single validation: read inputs, parse, load data,
// evaluate, then render the report and write the log file. It returns a
// *ValidationFailedError when the fail_on threshold is reached.
func validateOnce(ctx context.Context, cc *CommandContext, opts *ValidateOptions) (*report.Report, error) {
	started := time.Now()
	cfg := cc.Cfg
	r := cc.Renderer
	logger := cc.Logger.With(slog.String("rules", opts.Rules), slog.String("data", source.Redact(opts.Data)))

	run := startRun(ctx, cc, opts)

	if opts.Grammar != "" {
		if _, err := readInput("grammar", opts.Grammar); err != nil {
			run.fail(err)
			return nil, err
		}
	}

	rs, src, err := loadRules(opts.Rules)
	if err != nil {
		var perr *parser.ParseError
		if errors.As(err, &perr) {
			printParseError(r, src, err)
			writeLogFile(cc, started, func(w io.Writer) error {
				_, werr := fmt.Fprintf(w, "%s: %s\n", core.SeverityError.Label(), perr.Error())
				return werr
			})
			err = fmt.Errorf("rules file %s is invalid", opts.Rules)
		}
		run.fail(err)
		return nil, err
	}
	logger.Debug("rules parsed",
		slog.Int("columns", len(rs.Columns.Names)),
		slog.Int("value_rules", rs.ValueRuleCount()))

	table, err := source.Load(ctx, opts.Data, source.Options{
		Kind:      cfg.Source.Kind,
		Sheet:     cfg.Source.Sheet,
		Delimiter: cfg.Source.Delimiter,
		Table:     cfg.Source.Table,
		Logger:    logger,
	})
	if err != nil {
		err = fmt.Errorf("failed to read data file: %w", err)
		run.fail(err)
		return nil, err
	}

	rep, err := evaluator.Evaluate(ctx, rs, table, evaluator.Options{
		Workers:    cfg.Workers,
		MaxSamples: cfg.MaxSamples,
		Logger:     logger,
	})
	if err != nil {
		run.fail(err)
		return nil, err
	}
	rep.DataFile = source.Redact(opts.Data)
	logger.Debug("validation complete", slog.Duration("elapsed", time.Since(started)))

	writeLogFile(cc, started, func(w io.Writer) error {
		lines := []string{"rules file " + opts.Rules, "data file " + rep.DataFile}
		if opts.Grammar != "" {
			lines = append(lines, "grammar file "+opts.Grammar)
		}
		for _, l := range lines {
			if _, err := fmt.Fprintf(w, "%s: %s\n", core.SeverityInfo.Label(), l); err != nil {
				return err
			}
		}
		return report.WriteLog(w, rep)
	})

	if err := r.Report(rep); err != nil {
		run.fail(err)
		return rep, err
	}

	errs, warns, infos := rep.Counts()
	threshold, enabled, err := cfg.FailThreshold()
	if err != nil {
		run.fail(err)
		return rep, err
	}
	if enabled && rep.HasAtLeast(threshold) {
		run.complete(state.RunStatusFailed, rep)
		return rep, &ValidationFailedError{Threshold: threshold, Errors: errs, Warnings: warns, Infos: infos}
	}
	run.complete(state.RunStatusPassed, rep)
	return rep, nil
}

// writeLogFile creates the run log in the configured log directory and
// fills it with write. Failures are reported as warnings: the log is a
// copy of what the report already shows.
func writeLogFile(cc *CommandContext, started time.Time, write func(io.Writer) error) {
	if cc.Cfg.LogDir == "" {
		return
	}
	f, err := logfile.Create(cc.Cfg.LogDir, started)
	if err != nil {
		cc.Renderer.Warning(err.Error())
		return
	}
	werr := write(f)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		cc.Renderer.Warning(fmt.Sprintf("failed to write log file %s: %v", f.Name(), werr))
		return
	}
	cc.Logger.Debug("log file written", slog.String("path", f.Name()))
	_, _ = fmt.Fprintf(cc.Renderer.ErrWriter(), "Log written to %s\n", f.Name())
}

// runRecord tracks a validation run in the state database. Every method
// is a no-op when history is disabled or the store could not be opened.
type runRecord struct {
	ctx    context.Context
	store  *state.SQLiteStore
	run    *state.Run
	logger *slog.Logger
}

func startRun(ctx context.Context, cc *CommandContext, opts *ValidateOptions) *runRecord {
	rec := &runRecord{ctx: ctx, logger: cc.Logger}
	if !cc.Cfg.History {
		return rec
	}
	store, err := cc.OpenStore()
	if err != nil {
		cc.Renderer.Warning(fmt.Sprintf("run history disabled: %v", err))
		return rec
	}
	run, err := store.CreateRun(ctx, opts.Rules, source.Redact(opts.Data))
	if err != nil {
		cc.Renderer.Warning(fmt.Sprintf("run history disabled: %v", err))
		_ = store.Close()
		return rec
	}
	rec.store, rec.run = store, run
	return rec
}

func (rr *runRecord) complete(status state.RunStatus, rep *report.Report) {
	if rr.store == nil {
		return
	}
	errs, warns, infos := rep.Counts()
	rr.finish(status, state.Summary{
		Rows: rep.Rows, Columns: rep.Columns,
		Errors: errs, Warnings: warns, Infos: infos,
	}, "")
}

func (rr *runRecord) fail(err error) {
	if rr.store == nil {
		return
	}
	rr.finish(state.RunStatusError, state.Summary{}, err.Error())
}

func (rr *runRecord) finish(status state.RunStatus, summary state.Summary, errMsg string) {
	// The run is recorded even when ctx was cancelled mid-run.
	ctx := context.WithoutCancel(rr.ctx)
	if err := rr.store.CompleteRun(ctx, rr.run.ID, status, summary, errMsg); err != nil {
		rr.logger.Warn("failed to record run", slog.String("id", rr.run.ID), slog.Any("error", err))
	}
	if err := rr.store.Close(); err != nil {
		rr.logger.Warn("failed to close state store", slog.Any("error", err))
	}
	rr.store = nil
}

// exists reports whether path names an existing file.
func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
