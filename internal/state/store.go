// Package state records validation runs in a local SQLite database.
package state

import (
	"context"
	"time"
)

// RunStatus is the lifecycle state of a run.
type RunStatus string

// Run statuses.
const (
	RunStatusRunning RunStatus = "running"
	// RunStatusPassed means the report held no errors.
	RunStatusPassed RunStatus = "passed"
	// RunStatusFailed means the report held at least one error.
	RunStatusFailed RunStatus = "failed"
	// RunStatusError means the run aborted before a report was produced.
	RunStatusError RunStatus = "error"
)

// Run is one invocation of validate.
type Run struct {
	ID          string     `json:"id" yaml:"id"`
	RulesFile   string     `json:"rules_file" yaml:"rules_file"`
	DataFile    string     `json:"data_file" yaml:"data_file"`
	Status      RunStatus  `json:"status" yaml:"status"`
	StartedAt   time.Time  `json:"started_at" yaml:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	Summary     `yaml:",inline"`
	Error       string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Summary holds the counts recorded when a run completes.
type Summary struct {
	Rows     int `json:"rows" yaml:"rows"`
	Columns  int `json:"columns" yaml:"columns"`
	Errors   int `json:"errors" yaml:"errors"`
	Warnings int `json:"warnings" yaml:"warnings"`
	Infos    int `json:"infos" yaml:"infos"`
}

// Store persists run history.
type Store interface {
	CreateRun(ctx context.Context, rulesFile, dataFile string) (*Run, error)
	CompleteRun(ctx context.Context, id string, status RunStatus, summary Summary, errMsg string) error
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
	Close() error
}

var _ Store = (*SQLiteStore)(nil)
