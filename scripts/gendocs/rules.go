package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/leapstack-labs/leapcheck/pkg/dateformat"
	"github.com/leapstack-labs/leapcheck/pkg/linker"
	"github.com/leapstack-labs/leapcheck/pkg/ruleset"
)

// sampleTime is rendered through every catalog format as an example.
var sampleTime = time.Date(2024, time.March, 9, 14, 5, 30, 0, time.UTC)

// generateRulesDocs writes the rules language reference and the
// linker check reference.
func generateRulesDocs(outDir string) error {
	log.Printf("Generating rules docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := generateRulesReference(outDir); err != nil {
		return fmt.Errorf("failed to generate rules reference: %w", err)
	}
	log.Printf("  Generated index.md")

	if err := generateCheckReference(outDir); err != nil {
		return fmt.Errorf("failed to generate check reference: %w", err)
	}
	log.Printf("  Generated checks.md")

	return nil
}

func generateRulesReference(outDir string) error {
	w := NewMarkdownWriter()
	w.Frontmatter("Rules Reference", "Statements, value rules, types and formats of the leapcheck rules language")
	w.GeneratedMarker()

	w.Header(1, "Rules Reference")
	w.Paragraph("A rules file declares global settings, structural checks, per-column rule blocks and conditional rules. Lines starting with " + InlineCode("//") + " are comments.")
	w.CodeBlock("text", `allowed null values are ['', 'NA']
column names in ['id', 'age']
all columns required

column: 'age'
has value type integer
is >= 18

conditional rule: 'seniors have joined'
if
column: 'age' is >= 65
then
column: 'joined' is not null`)

	w.Header(2, "Value Rules")
	var rows [][]string
	for _, k := range ruleset.Kinds() {
		typed := ""
		if k.NeedsType {
			typed = Bold("yes")
		}
		rows = append(rows, []string{InlineCode(k.Name), InlineCode(k.Syntax), cleanDescription(k.Description), InlineCode(k.Example), typed})
	}
	w.Table([]string{"Rule", "Syntax", "Description", "Example", "Needs type"}, rows)
	w.Paragraph("Rules marked " + Bold("needs type") + " compare typed values and require a " + InlineCode("has value type") + " rule in the same block.")

	w.Header(2, "Value Types")
	var types []string
	for _, t := range ruleset.ValueTypes() {
		types = append(types, InlineCode(t.String()))
	}
	w.BulletList(types)

	w.Header(2, "Date-Time Formats")
	w.Paragraph("A bare " + InlineCode("has value type date-time") + " accepts any of these formats. The first matching format wins.")
	var fmtRows [][]string
	for _, f := range dateformat.Catalog() {
		fmtRows = append(fmtRows, []string{InlineCode(f.Name), InlineCode(f.Render(sampleTime))})
	}
	w.Table([]string{"Format", "Example"}, fmtRows)

	return os.WriteFile(filepath.Join(outDir, "index.md"), w.Bytes(), 0600)
}

func generateCheckReference(outDir string) error {
	w := NewMarkdownWriter()
	w.Frontmatter("Rules File Checks", "Checks run by leapcheck check on every rules file")
	w.GeneratedMarker()

	w.Header(1, "Rules File Checks")
	w.Paragraph(InlineCode("leapcheck check") + " parses a rules file and then runs these checks on the result. Findings never stop validation.")

	var rows [][]string
	for _, def := range linker.GetAll() {
		rows = append(rows, []string{InlineCode(def.ID), def.Name, def.Severity.String(), cleanDescription(def.Description)})
	}
	w.Table([]string{"ID", "Name", "Severity", "Description"}, rows)

	return os.WriteFile(filepath.Join(outDir, "checks.md"), w.Bytes(), 0600)
}
