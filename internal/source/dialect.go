package source

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"time"
)

// Dialect bundles everything that differs between database engines: the
// database/sql driver, identifier quoting, placeholders, the catalog queries
// and the mapping of driver errors onto error kinds.
type Dialect interface {
	// Name is the value used in config (source.type) and on the --driver flag.
	Name() string

	// DriverName is the database/sql driver the dialect opens connections with.
	DriverName() string

	// DefaultSchema is used when the caller does not name a schema. It may be
	// empty when the engine resolves the current schema itself.
	DefaultSchema() string

	// QuoteIdentifier turns an arbitrary string into a single quoted
	// identifier that cannot terminate the surrounding statement.
	QuoteIdentifier(name string) string

	// Placeholder returns the bind marker for the n-th (1-based) argument.
	Placeholder(n int) string

	// TablesQuery lists base table names of a schema ordered by name.
	// Argument 1 is the schema.
	TablesQuery() string

	// ColumnsQuery lists (column name, ordinal position) of one table ordered
	// by position. Argument 1 is the schema, argument 2 the table name.
	ColumnsQuery() string

	// NowQuery returns the server's current timestamp as a single value.
	NowQuery() string

	// ClassifyError maps a driver error onto ErrTableNotFound, ErrQuery or
	// ErrConnection.
	ClassifyError(err error) error
}

// Queryer is the subset of *sql.DB and *sql.Conn the inspector and sampler need.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DefaultTimeout bounds every statement when no timeout is configured.
const DefaultTimeout = 5 * time.Second

// Options are shared by the inspector and the sampler.
type Options struct {
	// Timeout bounds each statement. Zero means DefaultTimeout, a negative
	// value disables the bound.
	Timeout time.Duration
	Logger  *slog.Logger
}

func (o Options) StatementTimeout() time.Duration {
	if o.Timeout == 0 {
		return DefaultTimeout
	}
	return o.Timeout
}

func (o Options) LoggerOrDiscard() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
}

// WithTimeout derives a statement context. A non-positive timeout only adds
// cancellation.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// QualifiedName quotes table, prefixed by the quoted schema when schema is
// not empty. A dot inside table is part of the name, not a separator.
func QualifiedName(d Dialect, schema, table string) string {
	if schema == "" {
		return d.QuoteIdentifier(table)
	}
	return d.QuoteIdentifier(schema) + "." + d.QuoteIdentifier(table)
}
