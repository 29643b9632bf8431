package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/leapcheck/internal/cli/config"
)

// ConfigField describes one leapcheck.yaml key and the flag that
// overrides it.
type ConfigField struct {
	Name        string
	Type        string
	Default     string
	Description string
	Category    string
	Flag        string
}

// fieldForFlag returns the config field a flag overrides.
func fieldForFlag(flag string) (ConfigField, bool) {
	for _, f := range configFields {
		if f.Flag == flag {
			return f, true
		}
	}
	return ConfigField{}, false
}

// Env returns the environment variable that sets the field.
func (f ConfigField) Env() string {
	return "LEAPCHECK_" + strings.ToUpper(strings.ReplaceAll(f.Name, ".", "_"))
}

var configFields = []ConfigField{
	{"output", "string", config.DefaultOutput, "Output format: auto, text, markdown, json or yaml. auto renders text on a terminal and markdown otherwise.", "Output", "output"},
	{"verbose", "bool", "false", "Print debug diagnostics to stderr.", "Output", "verbose"},
	{"max_samples", "int", fmt.Sprint(config.DefaultMaxSamples), "Failing values kept per rule in the report.", "Output", "max-samples"},
	{"log_dir", "string", "", "Directory for timestamped validation logs. Empty disables log files.", "Output", "log-dir"},
	{"fail_on", "string", config.DefaultFailOn, "Lowest severity that makes validate exit non-zero: error, warning, info or never.", "Validation", "fail-on"},
	{"workers", "int", "0", "Columns evaluated in parallel. 0 uses one worker per CPU.", "Validation", "workers"},
	{"watch_debounce", "duration", config.DefaultWatchDebounce.String(), "Quiet period before watch mode re-runs validation.", "Validation", "debounce"},
	{"history", "bool", "true", "Record every validation run in the state database.", "History", "no-history"},
	{"state_path", "string", config.DefaultStateFile, "Run history database, relative to the config file.", "History", "state"},
	{"source.kind", "string", "", "Data source kind: csv, tsv, xlsx, duckdb or postgres. Empty infers it from the data location.", "Source", "source-kind"},
	{"source.sheet", "string", "", "Worksheet read from xlsx files. Empty reads the first sheet.", "Source", "sheet"},
	{"source.delimiter", "string", "", "Single-character field delimiter for delimited text.", "Source", "delimiter"},
	{"source.table", "string", "", "Table read from duckdb and postgres sources.", "Source", "table"},
}

// generateConfigDocs writes the configuration reference.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating config docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	w := NewMarkdownWriter()
	w.Frontmatter("Configuration", "leapcheck.yaml reference")
	w.GeneratedMarker()

	w.Header(1, "Configuration")
	w.Paragraph("leapcheck looks for " + InlineCode("leapcheck.yaml") + " in the working directory and its parents. " +
		"Values are layered: built-in defaults, the config file, " + InlineCode("LEAPCHECK_") + " environment variables, then command-line flags.")

	var categories []string
	byCategory := map[string][]ConfigField{}
	for _, f := range configFields {
		if _, ok := byCategory[f.Category]; !ok {
			categories = append(categories, f.Category)
		}
		byCategory[f.Category] = append(byCategory[f.Category], f)
	}

	for _, cat := range categories {
		w.Header(2, cat)
		var rows [][]string
		for _, f := range byCategory[cat] {
			def := f.Default
			if def != "" {
				def = InlineCode(def)
			}
			rows = append(rows, []string{InlineCode(f.Name), f.Type, def, InlineCode(f.Env()), InlineCode("--" + f.Flag), cleanDescription(f.Description)})
		}
		w.Table([]string{"Key", "Type", "Default", "Environment", "Flag", "Description"}, rows)
	}

	w.Header(2, "Example")
	w.CodeBlock("yaml", `output: auto
fail_on: error
max_samples: 5
log_dir: logs
history: true
state_path: .leapcheck/state.db
source:
  kind: csv
  delimiter: ","`)

	return os.WriteFile(filepath.Join(outDir, "configuration.md"), w.Bytes(), 0600)
}
