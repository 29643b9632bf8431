// Package source loads tabular data into a core.Table.
//
// Sources register themselves by kind in their init functions. Open picks
// a kind from the location: a postgres:// DSN selects the database source,
// otherwise the file extension decides. Every source hands the evaluator
// raw text cells; values are never typed at load time.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/leapstack-labs/leapcheck/pkg/core"
)

// Options configures how a source reads its location.
type Options struct {
	// Kind forces a source kind instead of detecting it from the location.
	Kind string
	// Sheet selects the worksheet of a spreadsheet. Empty means the first.
	Sheet string
	// Delimiter overrides the field delimiter of delimited text.
	Delimiter string
	// Table names the table to read from a database source, optionally
	// schema-qualified.
	Table  string
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// Source produces a dataset.
type Source interface {
	// Load reads the whole dataset. Failures are access failures and are
	// wrapped with the location.
	Load(ctx context.Context) (*core.Table, error)
	// Kind returns the registered kind of the source.
	Kind() string
}

// Factory builds a source for a location.
type Factory func(location string, opts Options) Source

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register adds a source factory to the registry.
// Called by source implementations in their init() functions.
func Register(kind string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[kind] = factory
}

// Get retrieves a source factory by kind.
func Get(kind string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[kind]
	return f, ok
}

// Kinds returns all registered source kinds (sorted).
func Kinds() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	kinds := make([]string, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// UnknownKindError is returned when no source is registered for a kind.
type UnknownKindError struct {
	Kind      string
	Available []string
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown data source kind %q\nAvailable kinds: %v\nHint: pass --source-kind or use a known file extension", e.Kind, e.Available)
}

// Detect infers the source kind of a location.
func Detect(location string) string {
	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return KindPostgres
	}
	switch filepath.Ext(lower) {
	case ".tsv", ".tab":
		return KindTSV
	case ".xlsx", ".xlsm":
		return KindXLSX
	case ".duckdb", ".ddb":
		return KindDuckDB
	default:
		return KindCSV
	}
}

// Source kinds.
const (
	KindCSV      = "csv"
	KindTSV      = "tsv"
	KindXLSX     = "xlsx"
	KindDuckDB   = "duckdb"
	KindPostgres = "postgres"
)

// Open returns the source for location, using opts.Kind when set.
func Open(location string, opts Options) (Source, error) {
	kind := opts.Kind
	if kind == "" {
		kind = Detect(location)
	}
	factory, ok := Get(kind)
	if !ok {
		return nil, &UnknownKindError{Kind: kind, Available: Kinds()}
	}
	opts.logger().Debug("opening data source", slog.String("kind", kind), slog.String("location", Redact(location)))
	return factory(location, opts), nil
}

// Load opens location and reads it in one step.
func Load(ctx context.Context, location string, opts Options) (*core.Table, error) {
	src, err := Open(location, opts)
	if err != nil {
		return nil, err
	}
	return src.Load(ctx)
}

// Redact hides the password of a DSN for logging.
func Redact(location string) string {
	scheme, rest, ok := strings.Cut(location, "://")
	if !ok {
		return location
	}
	userinfo, host, ok := strings.Cut(rest, "@")
	if !ok {
		return location
	}
	user, _, hasPass := strings.Cut(userinfo, ":")
	if !hasPass {
		return location
	}
	return scheme + "://" + user + ":xxxxx@" + host
}
