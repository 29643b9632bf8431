package config

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapcheck/pkg/core"
)

// FailOnNever disables the severity-based exit status.
const FailOnNever = "never"

var outputModes = []string{"auto", "text", "markdown", "json", "yaml"}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.OutputFormat != "" && !contains(outputModes, strings.ToLower(c.OutputFormat)) {
		return fmt.Errorf("invalid output format %q (expected one of: %s)",
			c.OutputFormat, strings.Join(outputModes, ", "))
	}
	if _, _, err := c.FailThreshold(); err != nil {
		return err
	}
	if c.WatchDebounce < 0 {
		return fmt.Errorf("watch_debounce must not be negative, got %s", c.WatchDebounce)
	}
	if d := c.Source.Delimiter; d != "" && d != `\t` && d != "tab" && len([]rune(d)) != 1 {
		return fmt.Errorf("source.delimiter must be a single character, got %q", d)
	}
	return nil
}

// FailThreshold returns the least severe finding that makes a run fail.
// ok is false when fail_on is "never".
func (c *Config) FailThreshold() (sev core.Severity, ok bool, err error) {
	v := strings.ToLower(strings.TrimSpace(c.FailOn))
	switch v {
	case "":
		return core.SeverityError, true, nil
	case FailOnNever:
		return core.SeverityError, false, nil
	}
	sev, valid := core.ParseSeverity(v)
	if !valid {
		return core.SeverityError, false,
			fmt.Errorf("invalid fail_on %q (expected error, warning, info or never)", c.FailOn)
	}
	return sev, true, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
