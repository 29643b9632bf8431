// Package linker cross-references the column names used by a ruleset.
//
// Every check is registered under an ID (LK01, LK02, ...) and produces
// warnings only. Link never fails: the diagnostics are attached to the
// validation report and evaluation proceeds with whatever associations exist.
package linker

import (
	"sort"
	"sync"

	"github.com/leapstack-labs/leapcheck/pkg/core"
	"github.com/leapstack-labs/leapcheck/pkg/ruleset"
	"github.com/leapstack-labs/leapcheck/pkg/token"
)

// Diagnostic is a single linker finding.
type Diagnostic struct {
	CheckID  string         `json:"check_id" yaml:"check_id"`
	Severity core.Severity  `json:"severity" yaml:"severity"`
	Message  string         `json:"message" yaml:"message"`
	Column   string         `json:"column,omitempty" yaml:"column,omitempty"`
	Pos      token.Position `json:"-" yaml:"-"`
}

// CheckFunc inspects a ruleset and returns findings.
type CheckFunc func(rs *ruleset.Ruleset) []Diagnostic

// CheckDef is a registered link check.
type CheckDef struct {
	ID          string        // e.g. "LK01"
	Name        string        // e.g. "column-without-rules"
	Description string        // human-readable description
	Severity    core.Severity // severity stamped on every finding
	Check       CheckFunc
}

var registry = struct {
	mu     sync.RWMutex
	checks map[string]CheckDef
}{checks: make(map[string]CheckDef)}

// Register adds a check to the registry, replacing one with the same ID.
// Call this from init() functions.
func Register(def CheckDef) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.checks[def.ID] = def
}

// GetAll returns all registered checks ordered by ID.
func GetAll() []CheckDef {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	defs := make([]CheckDef, 0, len(registry.checks))
	for _, def := range registry.checks {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	return defs
}

// GetByID returns a check by its ID.
func GetByID(id string) (CheckDef, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	def, ok := registry.checks[id]
	return def, ok
}

// Link runs every registered check against rs. Findings are ordered by
// check ID, then by the order each check reports them.
func Link(rs *ruleset.Ruleset) []Diagnostic {
	var out []Diagnostic
	for _, def := range GetAll() {
		for _, d := range def.Check(rs) {
			d.CheckID = def.ID
			d.Severity = def.Severity
			out = append(out, d)
		}
	}
	return out
}
