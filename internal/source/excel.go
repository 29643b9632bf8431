package source

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapcheck/pkg/core"
	"github.com/xuri/excelize/v2"
)

func init() {
	Register(KindXLSX, func(location string, opts Options) Source {
		return &ExcelSource{Path: location, Sheet: opts.Sheet, logger: opts.logger()}
	})
}

// ExcelSource reads one worksheet of an .xlsx workbook. The first row is
// the header. Cells are read as their formatted text; empty cells are null.
type ExcelSource struct {
	Path   string
	Sheet  string
	logger *slog.Logger
}

// Kind returns xlsx.
func (s *ExcelSource) Kind() string { return KindXLSX }

// Load reads the worksheet into a table.
func (s *ExcelSource) Load(ctx context.Context) (*core.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := s.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", s.Path)
		}
		sheet = sheets[0]
	}
	s.logger.Debug("reading worksheet", slog.String("path", s.Path), slog.String("sheet", sheet))

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return core.NewTable(nil, nil), nil
	}

	records := make([][]core.Cell, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make([]core.Cell, len(row))
		for i, v := range row {
			if v == "" {
				rec[i] = core.NullCell()
			} else {
				rec[i] = core.TextCell(v)
			}
		}
		records = append(records, rec)
	}
	return core.NewTable(rows[0], records), nil
}
