package commands

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/leapcheck/internal/cli/output"
	"github.com/leapstack-labs/leapcheck/pkg/core"
	"github.com/leapstack-labs/leapcheck/pkg/evaluator"
	"github.com/leapstack-labs/leapcheck/pkg/parser"
	"github.com/leapstack-labs/leapcheck/pkg/ruleset"
	"github.com/spf13/cobra"
)

// ReplOptions holds options for the repl command.
type ReplOptions struct {
	Rules  string
	Column string
}

// NewReplCommand creates the repl command.
func NewReplCommand() *cobra.Command {
	opts := &ReplOptions{}
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Try values against the rules of a column interactively",
		Long: `Start an interactive session for trying single values against rules.

Select a column with .column and type a value: every rule of that column's
block is applied to it, together with rules added with .rule. Without a
rules file the session starts with default settings and no columns.

Commands:
  .help               Show this help
  .columns            List the columns that have rule blocks
  .column <name>      Select a column
  .rule <rule>        Add an ad-hoc rule, e.g. .rule is >= 18
  .reset              Remove ad-hoc rules
  .null               Test a null value
  .quit, .exit        Exit`,
		Example: `  # Try values against people.rules
  leapcheck repl --rules people.rules --column age`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRepl(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Rules, "rules", "r", "", "Rules file to load")
	cmd.Flags().StringVarP(&opts.Column, "column", "c", "", "Column selected at start")

	return cmd
}

func runRepl(cmd *cobra.Command, opts *ReplOptions) error {
	cc := NewCommandContext(cmd)
	r := cc.Renderer

	rs := ruleset.New()
	if opts.Rules != "" {
		loaded, src, err := loadRules(opts.Rules)
		if err != nil {
			printParseError(r, src, err)
			return fmt.Errorf("rules file %s is invalid", opts.Rules)
		}
		rs = loaded
	}

	s := newReplSession(rs, r)
	if opts.Column != "" {
		s.handle(".column " + opts.Column)
	}

	historyFile := ""
	if cc.Cfg.StatePath != "" && cc.Cfg.StatePath != ":memory:" {
		historyFile = filepath.Join(filepath.Dir(cc.Cfg.StatePath), "repl_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          s.prompt(),
		HistoryFile:     historyFile,
		AutoComplete:    newReplCompleter(rs),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize readline: %w", err)
	}
	defer func() { _ = rl.Close() }()

	r.Println("leapcheck interactive mode")
	r.Muted("Type .help for commands, .quit to exit")
	r.Println("")

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if s.handle(line) {
			return nil
		}
		rl.SetPrompt(s.prompt())
	}
}

// replSession holds the state of an interactive session. It is separate
// from the readline loop so commands can be driven line by line.
type replSession struct {
	rs     *ruleset.Ruleset
	column string
	extra  []ruleset.ValueRule
	r      *output.Renderer
}

func newReplSession(rs *ruleset.Ruleset, r *output.Renderer) *replSession {
	return &replSession{rs: rs, r: r}
}

func (s *replSession) prompt() string {
	if s.column == "" {
		return "leapcheck> "
	}
	return fmt.Sprintf("leapcheck[%s]> ", s.column)
}

// handle processes one input line and reports whether the session ends.
func (s *replSession) handle(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	if !strings.HasPrefix(trimmed, ".") {
		s.check(core.TextCell(line))
		return false
	}

	name, arg, _ := strings.Cut(trimmed, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case ".quit", ".exit":
		return true
	case ".help":
		s.printHelp()
	case ".columns":
		s.listColumns()
	case ".column":
		s.selectColumn(arg)
	case ".rule":
		s.addRule(arg)
	case ".reset":
		s.extra = nil
		s.r.Println("Ad-hoc rules removed")
	case ".null":
		s.check(core.NullCell())
	default:
		s.r.Error(fmt.Sprintf("unknown command: %s (type .help)", name))
	}
	return false
}

func (s *replSession) printHelp() {
	s.r.Println(`Commands:
  .columns            List the columns that have rule blocks
  .column <name>      Select a column
  .rule <rule>        Add an ad-hoc rule, e.g. .rule is >= 18
  .reset              Remove ad-hoc rules
  .null               Test a null value
  .quit, .exit        Exit

Any other input is tested as a value of the selected column.`)
}

func (s *replSession) listColumns() {
	blocks := s.rs.OrderedBlocks()
	if len(blocks) == 0 {
		s.r.Println("No column rule blocks")
		return
	}
	rows := make([][]string, 0, len(blocks))
	for _, b := range blocks {
		typ := "-"
		if t, ok := b.DeclaredType(); ok {
			typ = t.String()
		}
		rows = append(rows, []string{b.Column, typ, fmt.Sprintf("%d", len(b.Rules))})
	}
	s.r.Table([]string{"Column", "Type", "Rules"}, rows)
}

func (s *replSession) selectColumn(name string) {
	name = strings.Trim(name, `'"`)
	if name == "" {
		s.r.Error("usage: .column <name>")
		return
	}
	s.column = core.NormalizeName(name)
	if s.rs.Block(s.column) == nil {
		s.r.Warning(fmt.Sprintf("column %q has no rule block; only ad-hoc rules apply", s.column))
	}
}

func (s *replSession) addRule(src string) {
	if src == "" {
		s.r.Error("usage: .rule <rule>")
		return
	}
	rule, err := parser.ParseRule(src, s.rs.Settings)
	if err != nil {
		s.r.Error(err.Error())
		return
	}
	s.extra = append(s.extra, rule)
	s.r.Println("Added: " + rule.String())
}

func (s *replSession) rules() []ruleset.ValueRule {
	var rules []ruleset.ValueRule
	if b := s.rs.Block(s.column); b != nil {
		rules = append(rules, b.Rules...)
	}
	return append(rules, s.extra...)
}

func (s *replSession) check(cell core.Cell) {
	if s.column == "" {
		s.r.Error("no column selected (use .column <name>)")
		return
	}
	rules := s.rules()
	if len(rules) == 0 {
		s.r.Println("No rules for this column (add one with .rule)")
		return
	}

	for _, o := range evaluator.CheckValue(s.rs, s.column, rules, cell) {
		switch {
		case o.Error != "":
			s.r.StatusLine(o.Rule, "warning", "not applied: "+o.Error)
		case o.OK():
			s.r.StatusLine(o.Rule, "success", "")
		default:
			reason := ""
			if len(o.Samples) > 0 {
				reason = o.Samples[0].Reason
			}
			s.r.StatusLine(o.Rule, "error", reason)
		}
	}
}

// newReplCompleter completes dot-commands and column names.
func newReplCompleter(rs *ruleset.Ruleset) *readline.PrefixCompleter {
	var columns []readline.PrefixCompleterInterface
	for _, b := range rs.OrderedBlocks() {
		columns = append(columns, readline.PcItem(b.Column))
	}

	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".columns"),
		readline.PcItem(".column", columns...),
		readline.PcItem(".rule"),
		readline.PcItem(".reset"),
		readline.PcItem(".null"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}
