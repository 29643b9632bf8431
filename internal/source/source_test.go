package source

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/leapstack-labs/leapcheck/internal/testutil"
	"github.com/leapstack-labs/leapcheck/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		location string
		want     string
	}{
		{"data.csv", KindCSV},
		{"DATA.CSV", KindCSV},
		{"data.txt", KindCSV},
		{"data.tsv", KindTSV},
		{"data.tab", KindTSV},
		{"book.xlsx", KindXLSX},
		{"warehouse.duckdb", KindDuckDB},
		{"postgres://user@localhost/db", KindPostgres},
		{"postgresql://localhost/db", KindPostgres},
	}
	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.location))
		})
	}
}

func TestRegistry(t *testing.T) {
	kinds := Kinds()
	for _, k := range []string{KindCSV, KindTSV, KindXLSX, KindDuckDB, KindPostgres} {
		assert.Contains(t, kinds, k)
	}

	src, err := Open("people.tsv", Options{})
	require.NoError(t, err)
	assert.Equal(t, KindTSV, src.Kind())
	assert.Equal(t, "\t", src.(*DelimitedSource).Delimiter)

	src, err = Open("people.data", Options{Kind: KindCSV, Delimiter: ";"})
	require.NoError(t, err)
	assert.Equal(t, ";", src.(*DelimitedSource).Delimiter)

	_, err = Open("people.parquet", Options{Kind: "parquet"})
	var unknown *UnknownKindError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "parquet", unknown.Kind)
	assert.Contains(t, err.Error(), "Available kinds")
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "postgres://app:xxxxx@db:5432/prod", Redact("postgres://app:s3cret@db:5432/prod"))
	assert.Equal(t, "postgres://app@db/prod", Redact("postgres://app@db/prod"))
	assert.Equal(t, "data.csv", Redact("data.csv"))
}

func TestScanTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	born := time.Date(1990, 4, 1, 0, 0, 0, 0, time.UTC)
	seen := time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", " name ", "score", "active", "born", "seen"}).
		AddRow(int64(1), "alice", 9.5, true, born, seen).
		AddRow(int64(2), []byte("bob"), nil, false, nil, nil)
	mock.ExpectQuery("SELECT").WillReturnRows(rows)

	//nolint:rowserrcheck // ScanTable checks rows.Err()
	sqlRows, err := db.QueryContext(context.Background(), "SELECT * FROM people")
	require.NoError(t, err)

	table, err := ScanTable(sqlRows)
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name", "score", "active", "born", "seen"}, table.Header)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, core.TextCell("1"), table.Cell(0, "id"))
	assert.Equal(t, core.TextCell("9.5"), table.Cell(0, "score"))
	assert.Equal(t, core.TextCell("True"), table.Cell(0, "active"))
	assert.Equal(t, core.TextCell("1990-04-01"), table.Cell(0, "born"))
	assert.Equal(t, core.TextCell("2024-01-02T15:04:05"), table.Cell(0, "seen"))
	assert.Equal(t, core.TextCell("bob"), table.Cell(1, "name"))
	assert.True(t, table.Cell(1, "score").Null)
	assert.Equal(t, core.TextCell("False"), table.Cell(1, "active"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScanTable_RowError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	rows := sqlmock.NewRows([]string{"id"}).
		AddRow(int64(1)).
		RowError(0, assert.AnError)
	mock.ExpectQuery("SELECT").WillReturnRows(rows)

	//nolint:rowserrcheck // ScanTable checks rows.Err()
	sqlRows, err := db.QueryContext(context.Background(), "SELECT id FROM t")
	require.NoError(t, err)

	_, err = ScanTable(sqlRows)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestQueryTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "public"."people"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("7"))

	table, err := queryTable(context.Background(), db, "public.people")
	require.NoError(t, err)
	assert.Equal(t, core.TextCell("7"), table.Cell(0, "id"))

	mock.ExpectQuery("SELECT").WillReturnError(assert.AnError)
	_, err = queryTable(context.Background(), db, "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to query table missing")
}

func TestPostgresSource_RequiresTable(t *testing.T) {
	src, err := Open("postgres://localhost/db", Options{})
	require.NoError(t, err)
	_, err = src.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no table specified")
}

func TestDelimitedSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "people.csv")
	require.NoError(t, os.WriteFile(path, []byte("id,country,zipcode\n1,WAL,NP108\n2,EGY,\n3,\"FRA, Paris\",75001\n"), 0o600))

	table, err := Load(context.Background(), path, Options{Logger: testutil.NewTestLogger(t)})
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "country", "zipcode"}, table.Header)
	require.Equal(t, 3, table.Len())
	assert.Equal(t, core.TextCell("1"), table.Cell(0, "id"))
	assert.True(t, table.Cell(1, "zipcode").Null)
	assert.Equal(t, core.TextCell("FRA, Paris"), table.Cell(2, "country"))
	assert.Equal(t, core.TextCell("75001"), table.Cell(2, "zipcode"))
}

func TestDelimitedSource_TSVKeepsText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "amounts.tsv")
	require.NoError(t, os.WriteFile(path, []byte("amount\tcode\n1.000,5\t007\n2\t010\n"), 0o600))

	table, err := Load(context.Background(), path, Options{})
	require.NoError(t, err)

	assert.Equal(t, core.TextCell("1.000,5"), table.Cell(0, "amount"))
	assert.Equal(t, core.TextCell("007"), table.Cell(0, "code"), "leading zeros survive")
}

func TestDelimitedSource_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExcelSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"id", "country"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"1", "WAL"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{"2"}))
	_, err := f.NewSheet("Other")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Other", "A1", &[]any{"x"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := Load(context.Background(), path, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "country"}, table.Header)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, core.TextCell("WAL"), table.Cell(0, "country"))
	assert.True(t, table.Cell(1, "country").Null)

	table, err = Load(context.Background(), path, Options{Sheet: "Other"})
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, table.Header)
	assert.Equal(t, 0, table.Len())

	_, err = Load(context.Background(), path, Options{Sheet: "Missing"})
	require.Error(t, err)
}
