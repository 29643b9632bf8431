package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/leapstack-labs/leapcheck/internal/cli/output"
	"github.com/leapstack-labs/leapcheck/pkg/dateformat"
	"github.com/leapstack-labs/leapcheck/pkg/linker"
	"github.com/leapstack-labs/leapcheck/pkg/ruleset"
	"github.com/spf13/cobra"
)

// sampleTime renders the date-time format examples.
var sampleTime = time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

// RulesOptions holds options for the rules command.
type RulesOptions struct {
	Types   bool // list value types
	Formats bool // list date-time formats
	Checks  bool // list link checks
}

// rulesCatalog is the machine-readable form of the rules listing.
type rulesCatalog struct {
	Rules   []ruleset.KindInfo `json:"rules,omitempty" yaml:"rules,omitempty"`
	Types   []string           `json:"types,omitempty" yaml:"types,omitempty"`
	Formats []formatInfo       `json:"date_formats,omitempty" yaml:"date_formats,omitempty"`
	Checks  []checkInfo        `json:"checks,omitempty" yaml:"checks,omitempty"`
}

type formatInfo struct {
	Notation string `json:"notation" yaml:"notation"`
	Example  string `json:"example" yaml:"example"`
}

type checkInfo struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Severity    string `json:"severity" yaml:"severity"`
	Description string `json:"description" yaml:"description"`
}

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	opts := &RulesOptions{}
	cmd := &cobra.Command{
		Use:   "rules [name]",
		Short: "List the value rules a rules file can use",
		Long: `List every value-rule keyword with its syntax and an example.

Rules marked "typed" compare typed values: the column block must declare
a type with 'has value type <type>', otherwise the rule is reported as
not applied.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON/YAML: Machine-readable format`,
		Example: `  # List all value rules
  leapcheck rules

  # Show one rule
  leapcheck rules starts-with

  # List value types and date-time formats
  leapcheck rules --types --formats

  # List the checks run on every rules file
  leapcheck rules --checks -o json`,
		Args: cobra.MaximumNArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			var names []string
			for _, k := range ruleset.Kinds() {
				names = append(names, k.Name)
			}
			return names, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			r := NewCommandContext(cmd).Renderer
			if len(args) > 0 {
				return showRule(r, args[0])
			}
			return listRules(r, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Types, "types", false, "List value types")
	cmd.Flags().BoolVar(&opts.Formats, "formats", false, "List date-time formats")
	cmd.Flags().BoolVar(&opts.Checks, "checks", false, "List the checks run on every rules file")

	return cmd
}

func buildCatalog(opts *RulesOptions) rulesCatalog {
	var c rulesCatalog
	onlyRules := !opts.Types && !opts.Formats && !opts.Checks
	if onlyRules {
		c.Rules = ruleset.Kinds()
	}
	if opts.Types {
		for _, t := range ruleset.ValueTypes() {
			c.Types = append(c.Types, t.String())
		}
	}
	if opts.Formats {
		for _, f := range dateformat.Catalog() {
			c.Formats = append(c.Formats, formatInfo{Notation: f.Name, Example: f.Render(sampleTime)})
		}
	}
	if opts.Checks {
		for _, def := range linker.GetAll() {
			c.Checks = append(c.Checks, checkInfo{
				ID: def.ID, Name: def.Name, Severity: def.Severity.String(), Description: def.Description,
			})
		}
	}
	return c
}

func listRules(r *output.Renderer, opts *RulesOptions) error {
	c := buildCatalog(opts)
	if ok, err := r.Encode(c); ok {
		return err
	}

	if c.Rules != nil {
		r.Header(1, fmt.Sprintf("Value rules (%d)", len(c.Rules)))
		rows := make([][]string, 0, len(c.Rules))
		for _, k := range c.Rules {
			typed := ""
			if k.NeedsType {
				typed = "typed"
			}
			rows = append(rows, []string{k.Name, k.Syntax, k.Example, typed})
		}
		r.Table([]string{"Name", "Syntax", "Example", "Needs type"}, rows)
	}
	if c.Types != nil {
		r.Header(1, "Value types")
		rows := make([][]string, 0, len(c.Types))
		for _, t := range c.Types {
			rows = append(rows, []string{t})
		}
		r.Table([]string{"Type"}, rows)
	}
	if c.Formats != nil {
		r.Header(1, "Date-time formats")
		rows := make([][]string, 0, len(c.Formats))
		for _, f := range c.Formats {
			rows = append(rows, []string{f.Notation, f.Example})
		}
		r.Table([]string{"Format", "Example"}, rows)
	}
	if c.Checks != nil {
		r.Header(1, "Rules file checks")
		rows := make([][]string, 0, len(c.Checks))
		for _, ch := range c.Checks {
			rows = append(rows, []string{ch.ID, ch.Name, ch.Severity, ch.Description})
		}
		r.Table([]string{"ID", "Name", "Severity", "Description"}, rows)
	}

	if r.EffectiveMode() == output.ModeText && c.Rules != nil {
		r.Println("")
		r.Muted("Use 'leapcheck rules <name>' for details")
	}
	return nil
}

func showRule(r *output.Renderer, name string) error {
	info, ok := findKind(name)
	if !ok {
		return fmt.Errorf("rule %q not found (run 'leapcheck rules' for the list)", name)
	}
	if ok, err := r.Encode(info); ok {
		return err
	}

	if r.EffectiveMode() == output.ModeMarkdown {
		r.Header(1, info.Name)
		r.Println(info.Description)
		r.Println("")
		r.Println(output.FormatKeyValue("Syntax", "`"+info.Syntax+"`"))
		r.Println(output.FormatKeyValue("Needs type", fmt.Sprintf("%v", info.NeedsType)))
		r.Println("")
		r.Header(2, "Example")
		r.Println(output.FormatCodeBlock("", "column: 'value'\n    "+info.Example))
		return nil
	}

	styles := r.Styles()
	r.Println(styles.Header.Render(info.Name))
	r.Println(info.Description)
	r.Println("")
	r.Printf("  %s %s\n", styles.Bold.Render("Syntax: "), info.Syntax)
	r.Printf("  %s %s\n", styles.Bold.Render("Example:"), info.Example)
	if info.NeedsType {
		r.Println("")
		r.Println(styles.Warning.Render("  Needs a declared column type (has value type ...)"))
	}
	return nil
}

// findKind matches a rule by name, e.g. "starts-with" or "starts with".
func findKind(name string) (ruleset.KindInfo, bool) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
	for _, k := range ruleset.Kinds() {
		if k.Name == key {
			return k, true
		}
	}
	return ruleset.KindInfo{}, false
}
