package core

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// =============================================================================
// Dataset
// =============================================================================

// Cell is a single raw value as read from a data source.
// Null is set when the source reported its native empty/NULL marker.
type Cell struct {
	Value string
	Null  bool
}

// NullCell returns a cell carrying the source's native null marker.
func NullCell() Cell {
	return Cell{Null: true}
}

// TextCell returns a non-null cell holding s.
func TextCell(s string) Cell {
	return Cell{Value: s}
}

// Row maps header names to cells.
type Row map[string]Cell

// Table is the abstract tabular input consumed by the evaluator.
// It is read-only once built; the evaluator never mutates it.
type Table struct {
	// Header is the ordered list of column names as they physically appear.
	Header []string
	// Rows holds the data rows in source order.
	Rows []Row
}

// NormalizeName canonicalizes a column name for comparison: surrounding
// whitespace is removed and the text is put in Unicode NFC form.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// NewTable builds a table from a header and positional records.
// Records shorter than the header are padded with null cells; extra values
// beyond the header are dropped. When a header name repeats, the first
// occurrence wins for row lookups.
func NewTable(header []string, records [][]Cell) *Table {
	names := make([]string, len(header))
	for i, h := range header {
		names[i] = NormalizeName(h)
	}

	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		row := make(Row, len(names))
		for i, name := range names {
			if _, seen := row[name]; seen {
				continue
			}
			if i < len(rec) {
				row[name] = rec[i]
			} else {
				row[name] = NullCell()
			}
		}
		rows = append(rows, row)
	}

	return &Table{Header: names, Rows: rows}
}

// HasColumn returns true if name appears in the header.
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// ColumnIndex returns the header position of name, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Cell returns the cell at (row, column). Missing entries are null.
func (t *Table) Cell(row int, column string) Cell {
	if row < 0 || row >= len(t.Rows) {
		return NullCell()
	}
	c, ok := t.Rows[row][column]
	if !ok {
		return NullCell()
	}
	return c
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}
