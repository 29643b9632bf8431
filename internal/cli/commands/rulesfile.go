package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/leapstack-labs/leapcheck/internal/cli/output"
	"github.com/leapstack-labs/leapcheck/pkg/parser"
	"github.com/leapstack-labs/leapcheck/pkg/ruleset"
)

// excerptContext is the number of lines shown around a failing line.
const excerptContext = 2

// readInput reads a rules, data or grammar file. Failures are fatal before
// any evaluation starts.
func readInput(kind, path string) (string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-supplied path
	if err != nil {
		return "", fmt.Errorf("failed to read %s file: %w", kind, err)
	}
	return string(data), nil
}

// loadRules reads and parses a rules file. The source text is returned
// alongside so callers can print excerpts for parse errors.
func loadRules(path string) (*ruleset.Ruleset, string, error) {
	src, err := readInput("rules", path)
	if err != nil {
		return nil, "", err
	}
	rs, err := parser.Parse(src, path)
	if err != nil {
		return nil, src, err
	}
	return rs, src, nil
}

// printParseError writes the error and the surrounding source lines to
// stderr. Non-parse errors are printed as-is.
func printParseError(r *output.Renderer, src string, err error) {
	var perr *parser.ParseError
	if !errors.As(err, &perr) {
		r.Error(err.Error())
		return
	}
	r.Error(perr.Error())
	if excerpt := parser.Excerpt(src, perr.Line(), excerptContext); excerpt != "" {
		_, _ = fmt.Fprint(r.ErrWriter(), excerpt)
	}
}
