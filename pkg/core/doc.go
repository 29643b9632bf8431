// Package core defines the shared language of the leapcheck system.
//
// This package contains:
//   - Severity levels used by the linker, evaluator and report
//   - The in-memory dataset model (Table, Row, Cell) that data sources
//     produce and the evaluator consumes
//
// The Golden Rule: pkg/core imports ONLY stdlib and golang.org/x/text.
// All other packages depend on core, not the reverse.
package core
