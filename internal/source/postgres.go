package source

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
	"github.com/leapstack-labs/leapcheck/pkg/core"
)

func init() {
	Register(KindPostgres, func(location string, opts Options) Source {
		return &PostgresSource{DSN: location, Table: opts.Table, logger: opts.logger()}
	})
}

// PostgresSource reads one table from PostgreSQL.
type PostgresSource struct {
	DSN    string
	Table  string
	logger *slog.Logger
}

// Kind returns postgres.
func (s *PostgresSource) Kind() string { return KindPostgres }

// Load reads the configured table in physical order.
func (s *PostgresSource) Load(ctx context.Context) (*core.Table, error) {
	if s.Table == "" {
		return nil, fmt.Errorf("postgres source: no table specified (set source.table)")
	}

	s.logger.Debug("connecting to postgres", slog.String("dsn", Redact(s.DSN)), slog.String("table", s.Table))

	db, err := sql.Open("pgx", s.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return queryTable(ctx, db, s.Table)
}

// queryTable selects every row of table with text rendering left to ScanTable.
func queryTable(ctx context.Context, db *sql.DB, table string) (*core.Table, error) {
	//nolint:rowserrcheck // ScanTable checks rows.Err()
	rows, err := db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(table))
	if err != nil {
		return nil, fmt.Errorf("failed to query table %s: %w", table, err)
	}
	return ScanTable(rows)
}
