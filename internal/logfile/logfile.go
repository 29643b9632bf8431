// Package logfile creates the per-run log file written by validate.
package logfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Prefix is the base name of every log file.
const Prefix = "leapcheck"

// Name returns the file name for a run started at t.
func Name(t time.Time) string {
	return fmt.Sprintf("%s_%s.log", Prefix, t.Format("20060102_150405"))
}

// Create makes dir if needed and creates a new log file for a run started
// at t. Existing files are never overwritten: a second run in the same
// second gets a numeric suffix.
func Create(dir string, t time.Time) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	base := Name(t)
	path := filepath.Join(dir, base)
	for i := 1; ; i++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600) //nolint:gosec // dir is user configuration
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, fs.ErrExist) || i > 99 {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		path = filepath.Join(dir, fmt.Sprintf("%s_%d.log", base[:len(base)-len(".log")], i))
	}
}
