package source

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/leapstack-labs/leapcheck/pkg/core"
	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

func init() {
	Register(KindCSV, func(location string, opts Options) Source {
		return &DelimitedSource{Path: location, Delimiter: delimiterOr(opts.Delimiter, ","), kind: KindCSV, logger: opts.logger()}
	})
	Register(KindTSV, func(location string, opts Options) Source {
		return &DelimitedSource{Path: location, Delimiter: delimiterOr(opts.Delimiter, "\t"), kind: KindTSV, logger: opts.logger()}
	})
	Register(KindDuckDB, func(location string, opts Options) Source {
		return &DuckDBSource{Path: location, Table: opts.Table, logger: opts.logger()}
	})
}

func delimiterOr(d, def string) string {
	switch d {
	case "":
		return def
	case `\t`, "tab":
		return "\t"
	default:
		return d
	}
}

// DelimitedSource reads CSV or TSV text through DuckDB's read_csv with every
// column kept as VARCHAR. Empty fields are null.
type DelimitedSource struct {
	Path      string
	Delimiter string
	kind      string
	logger    *slog.Logger
}

// Kind returns csv or tsv.
func (s *DelimitedSource) Kind() string { return s.kind }

// Load reads the file into a table.
func (s *DelimitedSource) Load(ctx context.Context) (*core.Table, error) {
	absPath, err := filepath.Abs(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}

	db, err := openDuckDB(ctx, "")
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	query := fmt.Sprintf(
		"SELECT * FROM read_csv(%s, header=true, all_varchar=true, delim=%s)",
		quoteLiteral(absPath),
		quoteLiteral(s.Delimiter),
	)
	s.logger.Debug("reading delimited file", slog.String("path", absPath), slog.String("kind", s.kind))

	//nolint:rowserrcheck // ScanTable checks rows.Err()
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.Path, err)
	}
	table, err := ScanTable(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.Path, err)
	}
	return table, nil
}

// DuckDBSource reads one table of a DuckDB database file, opened read-only.
type DuckDBSource struct {
	Path   string
	Table  string
	logger *slog.Logger
}

// Kind returns duckdb.
func (s *DuckDBSource) Kind() string { return KindDuckDB }

// Load reads the configured table.
func (s *DuckDBSource) Load(ctx context.Context) (*core.Table, error) {
	if s.Table == "" {
		return nil, fmt.Errorf("duckdb source %s: no table specified (set source.table)", s.Path)
	}
	if _, err := os.Stat(s.Path); err != nil {
		return nil, fmt.Errorf("failed to read database file: %w", err)
	}

	db, err := openDuckDB(ctx, s.Path+"?access_mode=read_only")
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	s.logger.Debug("reading duckdb table", slog.String("path", s.Path), slog.String("table", s.Table))

	//nolint:rowserrcheck // ScanTable checks rows.Err()
	rows, err := db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(s.Table))
	if err != nil {
		return nil, fmt.Errorf("failed to query table %s: %w", s.Table, err)
	}
	return ScanTable(rows)
}

func openDuckDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping duckdb: %w", err)
	}
	return db, nil
}

// quoteIdent quotes a possibly schema-qualified table name.
func quoteIdent(name string) string {
	return pgx.Identifier(strings.Split(name, ".")).Sanitize()
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
