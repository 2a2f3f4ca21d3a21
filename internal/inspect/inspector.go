// Package inspect reads the database catalog: which base tables a schema
// holds and which columns each table has, in display order.
package inspect

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alexanderjulianmartinez/dataprobe/internal/source"
)

// Inspector queries catalog metadata. It holds no state between calls.
type Inspector struct {
	db      source.Queryer
	dialect source.Dialect
	timeout time.Duration
	logger  *slog.Logger
}

func NewInspector(db source.Queryer, d source.Dialect, opts source.Options) *Inspector {
	return &Inspector{
		db:      db,
		dialect: d,
		timeout: opts.StatementTimeout(),
		logger:  opts.LoggerOrDiscard(),
	}
}

// Schema resolves an empty schema to the dialect default.
func (i *Inspector) Schema(schema string) string {
	if schema == "" {
		return i.dialect.DefaultSchema()
	}
	return schema
}

// CheckConnection asks the server for its current time.
func (i *Inspector) CheckConnection(ctx context.Context) (string, error) {
	ctx, cancel := source.WithTimeout(ctx, i.timeout)
	defer cancel()

	var now string
	if err := i.db.QueryRowContext(ctx, i.dialect.NowQuery()).Scan(&now); err != nil {
		return "", fmt.Errorf("connectivity check: %w", source.Classify(i.dialect, err))
	}
	return now, nil
}

// ListTables returns the base tables of schema ordered by name. A schema
// without tables yields an empty, non-nil slice.
func (i *Inspector) ListTables(ctx context.Context, schema string) ([]string, error) {
	ctx, cancel := source.WithTimeout(ctx, i.timeout)
	defer cancel()

	schema = i.Schema(schema)
	rows, err := i.db.QueryContext(ctx, i.dialect.TablesQuery(), schema)
	if err != nil {
		return nil, fmt.Errorf("list tables in schema %q: %w", schema, source.Classify(i.dialect, err))
	}
	defer func() { _ = rows.Close() }()

	tables := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: scan table name: %w", source.ErrQuery, err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tables in schema %q: %w", schema, source.Classify(i.dialect, err))
	}

	i.logger.Debug("listed tables", slog.String("schema", schema), slog.Int("count", len(tables)))
	return tables, nil
}

// ListColumns returns the columns of table ordered by ordinal position. The
// table name is bound as a parameter. An unknown table yields an empty slice,
// not an error: the catalog simply has no rows for it.
func (i *Inspector) ListColumns(ctx context.Context, schema, table string) ([]source.ColumnDescriptor, error) {
	// no catalog can hold a name with a NUL, and PostgreSQL rejects it as a text argument
	if strings.ContainsRune(table, 0) {
		return []source.ColumnDescriptor{}, nil
	}

	ctx, cancel := source.WithTimeout(ctx, i.timeout)
	defer cancel()

	schema = i.Schema(schema)
	rows, err := i.db.QueryContext(ctx, i.dialect.ColumnsQuery(), schema, table)
	if err != nil {
		return nil, fmt.Errorf("list columns of %q: %w", table, source.Classify(i.dialect, err))
	}
	defer func() { _ = rows.Close() }()

	cols := []source.ColumnDescriptor{}
	for rows.Next() {
		var col source.ColumnDescriptor
		if err := rows.Scan(&col.Name, &col.Position); err != nil {
			return nil, fmt.Errorf("%w: scan column of %q: %w", source.ErrQuery, table, err)
		}
		cols = append(cols, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list columns of %q: %w", table, source.Classify(i.dialect, err))
	}
	return cols, nil
}
