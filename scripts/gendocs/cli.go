package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/leapcheck/internal/cli"
	"github.com/leapstack-labs/leapcheck/internal/cli/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Links between generated pages.
const (
	rulesPage  = "/rules"
	checksPage = "/rules/checks"
	configPage = "/configuration"
)

// seeAlso lists related reference pages per command.
var seeAlso = map[string][]string{
	"validate": {link("Rules reference", rulesPage), link("Configuration", configPage), link("check", "/cli/check")},
	"check":    {link("Rules file checks", checksPage), link("Rules reference", rulesPage)},
	"rules":    {link("Rules reference", rulesPage)},
	"repl":     {link("Rules reference", rulesPage)},
	"history":  {link("History settings", configPage+"#history")},
	"init":     {link("Configuration", configPage), link("validate", "/cli/validate")},
}

// failOnLevels are documented in exit status order.
var failOnLevels = []string{"error", "warning", "info", "never"}

func link(text, target string) string {
	return fmt.Sprintf("[%s](%s)", text, target)
}

// documented reports whether cmd gets its own page.
func documented(cmd *cobra.Command) bool {
	return !cmd.Hidden && cmd.Name() != "help" && cmd.Name() != "__complete"
}

// generateCLIDocs writes an index page and one page per command.
func generateCLIDocs(outDir string) error {
	log.Printf("Generating CLI docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	root := cli.NewRootCmd()
	pages := map[string][]byte{"index.md": cliIndex(root)}
	for _, cmd := range root.Commands() {
		if documented(cmd) {
			pages[cmd.Name()+".md"] = commandPage(cmd)
		}
	}

	for name, content := range pages {
		if err := os.WriteFile(filepath.Join(outDir, name), content, 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		log.Printf("  Generated %s", name)
	}
	return nil
}

func cliIndex(root *cobra.Command) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter("CLI Reference", "Command-line interface reference for leapcheck")
	w.GeneratedMarker()

	w.Header(1, "CLI Reference")
	w.Paragraph(root.Long)

	w.Header(2, "Quick Start")
	w.CodeBlock("bash", `go install github.com/leapstack-labs/leapcheck/cmd/leapcheck@latest

leapcheck init demo --example
cd demo
leapcheck check rules/people.rules
leapcheck validate --rules rules/people.rules --data data/people.csv`)

	w.Header(2, "Commands")
	var rows [][]string
	for _, cmd := range root.Commands() {
		if documented(cmd) {
			rows = append(rows, []string{link(InlineCode(cmd.Name()), "/cli/"+cmd.Name()), cleanDescription(cmd.Short)})
		}
	}
	w.Table([]string{"Command", "Description"}, rows)

	w.Header(2, "Global Options")
	writeFlagsTable(w, root.PersistentFlags())

	w.Header(2, "Exit Status")
	w.Paragraph(InlineCode("validate") + " exits 1 when the report holds a finding at or above " +
		InlineCode("fail_on") + ". Any command exits 1 when it cannot run, for example on an unreadable file or an invalid rules file.")
	w.Table([]string{InlineCode("fail_on"), "validate exits 1 on"}, exitPolicyRows())

	w.Paragraph("Every option backed by a configuration key can also be set in " + InlineCode("leapcheck.yaml") +
		" or through its " + InlineCode("LEAPCHECK_") + " variable. See " + link("Configuration", configPage) + ".")

	return w.Bytes()
}

// exitPolicyRows describes each fail_on level using the same threshold
// logic validate applies.
func exitPolicyRows() [][]string {
	var rows [][]string
	for _, level := range failOnLevels {
		cfg := &config.Config{FailOn: level}
		sev, enabled, err := cfg.FailThreshold()
		if err != nil {
			continue
		}
		when := "command errors only"
		if enabled {
			when = fmt.Sprintf("any %s finding or worse", sev)
		}
		if level == config.DefaultFailOn {
			level += " (default)"
		}
		rows = append(rows, []string{InlineCode(level), when})
	}
	return rows
}

func commandPage(cmd *cobra.Command) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter(cmd.Name(), cmd.Short)
	w.GeneratedMarker()

	w.Header(1, cmd.Name())
	desc := cmd.Long
	if desc == "" {
		desc = cmd.Short
	}
	w.Paragraph(desc)

	w.Header(2, "Usage")
	w.CodeBlock("bash", cmd.UseLine())

	if cmd.HasLocalFlags() {
		w.Header(2, "Options")
		writeFlagsTable(w, cmd.LocalFlags())
	}

	if cmd.Example != "" {
		w.Header(2, "Examples")
		w.CodeBlock("bash", dedent(cmd.Example))
	}

	if links := seeAlso[cmd.Name()]; len(links) > 0 {
		w.Header(2, "See Also")
		w.BulletList(links)
	}

	return w.Bytes()
}

// writeFlagsTable lists flags with the configuration key each overrides.
func writeFlagsTable(w *MarkdownWriter, flags *pflag.FlagSet) {
	var rows [][]string
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		name := "--" + f.Name
		if f.Shorthand != "" {
			name = "-" + f.Shorthand + ", " + name
		}
		def := f.DefValue
		if def != "" && f.Value.Type() != "bool" {
			def = InlineCode(def)
		}
		key := ""
		if field, ok := fieldForFlag(f.Name); ok {
			key = link(InlineCode(field.Name), configPage)
		}
		rows = append(rows, []string{InlineCode(name), def, key, cleanDescription(f.Usage)})
	})
	w.Table([]string{"Option", "Default", "Config key", "Description"}, rows)
}

// dedent strips the indentation cobra examples share.
func dedent(text string) string {
	lines := strings.Split(strings.Trim(text, "\n"), "\n")
	indent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	for i, line := range lines {
		if len(line) >= indent && indent > 0 {
			lines[i] = line[indent:]
		} else {
			lines[i] = strings.TrimSpace(line)
		}
	}
	return strings.Join(lines, "\n")
}
