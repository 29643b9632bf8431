// Package evaluator applies a ruleset to a dataset.
//
// Evaluation runs in three phases:
//
//  1. Structural: the data header is compared with the declared columns.
//  2. Value rules: every rule of every block whose column is present is
//     evaluated on every row.
//  3. Conditionals: for each conditional rule the antecedent selects the
//     matching rows (pass one) and the consequent is evaluated on those
//     rows only (pass two).
//
// Nothing short-circuits: each phase records every finding and evaluation
// always runs to completion. Columns and conditional rules are evaluated
// concurrently; results are merged in declaration order so reports are
// deterministic. Neither the ruleset nor the table is modified.
package evaluator

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/leapstack-labs/leapcheck/pkg/core"
	"github.com/leapstack-labs/leapcheck/pkg/linker"
	"github.com/leapstack-labs/leapcheck/pkg/report"
	"github.com/leapstack-labs/leapcheck/pkg/ruleset"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxSamples is the number of failing values kept per rule.
const DefaultMaxSamples = 5

// Options configures an evaluation run.
type Options struct {
	// Workers bounds concurrent column and conditional evaluation.
	// Zero means runtime.NumCPU().
	Workers int
	// MaxSamples caps the failing values stored per rule. Failing row
	// numbers are always complete. Negative keeps no samples.
	MaxSamples int
	Logger     *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.MaxSamples == 0 {
		o.MaxSamples = DefaultMaxSamples
	}
	if o.MaxSamples < 0 {
		o.MaxSamples = 0
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// Evaluate validates table against rs. The only error is cancellation of
// ctx before all workers were scheduled.
func Evaluate(ctx context.Context, rs *ruleset.Ruleset, table *core.Table, opts Options) (*report.Report, error) {
	opts = opts.withDefaults()
	log := opts.Logger

	rep := &report.Report{
		RulesFile:    rs.Source,
		Rows:         table.Len(),
		Columns:      len(table.Header),
		LinkWarnings: linker.Link(rs),
		Findings:     checkStructure(rs, table),
	}
	log.Debug("structural phase complete",
		slog.Int("findings", len(rep.Findings)),
		slog.Int("link_warnings", len(rep.LinkWarnings)))

	columns, err := evaluateBlocks(ctx, rs, table, opts)
	if err != nil {
		return nil, err
	}
	rep.ColumnResults = columns
	log.Debug("value-rule phase complete", slog.Int("columns", len(columns)))

	conds, err := evaluateConditionals(ctx, rs, table, opts)
	if err != nil {
		return nil, err
	}
	rep.Conditionals = conds
	log.Debug("conditional phase complete", slog.Int("conditionals", len(conds)))

	return rep, nil
}

func evaluateBlocks(ctx context.Context, rs *ruleset.Ruleset, table *core.Table, opts Options) ([]report.ColumnResult, error) {
	var blocks []*ruleset.ColumnRuleBlock
	for _, b := range rs.OrderedBlocks() {
		if table.HasColumn(b.Column) {
			blocks = append(blocks, b)
		} else {
			opts.Logger.Debug("skipping block for column absent from data", slog.String("column", b.Column))
		}
	}

	results := make([]report.ColumnResult, len(blocks))
	rows := allRows(table)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, b := range blocks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = evaluateBlock(rs.Settings, table, b, rows, opts.MaxSamples)
			opts.Logger.Debug("evaluated column",
				slog.String("column", b.Column),
				slog.Bool("all_ok", results[i].AllOK()))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func evaluateConditionals(ctx context.Context, rs *ruleset.Ruleset, table *core.Table, opts Options) ([]report.ConditionalResult, error) {
	results := make([]report.ConditionalResult, len(rs.Conditionals))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, c := range rs.Conditionals {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = evaluateConditional(rs, table, c, opts.MaxSamples)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// evaluateBlock runs every rule of b over rows.
func evaluateBlock(s ruleset.Settings, table *core.Table, b *ruleset.ColumnRuleBlock, rows []int, maxSamples int) report.ColumnResult {
	typ, typed := b.DeclaredType()
	col := column{name: b.Column, typ: typ, typed: typed, settings: s}
	cells := col.cells(table, rows)

	res := report.ColumnResult{Column: b.Column}
	if typed {
		res.Type = typ.String()
	}
	for _, c := range cells {
		if c.null {
			res.MissingValues++
		}
	}
	res.Rules = make([]report.RuleOutcome, len(b.Rules))
	for i, rule := range b.Rules {
		res.Rules[i] = col.evaluate(rule, cells, maxSamples)
	}
	return res
}

func allRows(table *core.Table) []int {
	rows := make([]int, table.Len())
	for i := range rows {
		rows[i] = i
	}
	return rows
}
