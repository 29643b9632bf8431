package source

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/leapstack-labs/leapcheck/pkg/core"
)

// ScanTable drains rows into a table. SQL NULL becomes a null cell and
// every other value is rendered as text. rows is closed.
func ScanTable(rows *sql.Rows) (*core.Table, error) {
	defer func() { _ = rows.Close() }()

	header, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var records [][]core.Cell
	values := make([]any, len(header))
	ptrs := make([]any, len(header))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row %d: %w", len(records)+1, err)
		}
		rec := make([]core.Cell, len(values))
		for i, v := range values {
			rec[i] = cellOf(v)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return core.NewTable(header, records), nil
}

func cellOf(v any) core.Cell {
	switch x := v.(type) {
	case nil:
		return core.NullCell()
	case string:
		return core.TextCell(x)
	case []byte:
		return core.TextCell(string(x))
	case int64:
		return core.TextCell(strconv.FormatInt(x, 10))
	case int32:
		return core.TextCell(strconv.FormatInt(int64(x), 10))
	case float64:
		return core.TextCell(strconv.FormatFloat(x, 'f', -1, 64))
	case float32:
		return core.TextCell(strconv.FormatFloat(float64(x), 'f', -1, 32))
	case bool:
		if x {
			return core.TextCell("True")
		}
		return core.TextCell("False")
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return core.TextCell(x.Format(time.DateOnly))
		}
		return core.TextCell(x.Format("2006-01-02T15:04:05"))
	case fmt.Stringer:
		return core.TextCell(x.String())
	default:
		return core.TextCell(fmt.Sprint(x))
	}
}
