// Package sample reads the leading rows of a table named by an untrusted
// string.
//
// The table name is only ever placed in a statement through the dialect's
// identifier quoting, and the row limit is always a bound argument. The
// statement builders are pure functions so they can be tested without a
// database.
package sample

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alexanderjulianmartinez/dataprobe/internal/source"
)

// DefaultLimit is the number of rows sampled when none is requested.
const DefaultLimit = 5

// BuildSampleQuery returns `SELECT * FROM <relation> LIMIT <placeholder 1>`.
func BuildSampleQuery(d source.Dialect, schema, table string) string {
	return "SELECT * FROM " + source.QualifiedName(d, schema, table) + " LIMIT " + d.Placeholder(1)
}

// BuildCountQuery returns `SELECT COUNT(*) FROM <relation>`.
func BuildCountQuery(d source.Dialect, schema, table string) string {
	return "SELECT COUNT(*) FROM " + source.QualifiedName(d, schema, table)
}

// Sampler runs sample and count statements. An empty schema leaves the
// relation unqualified so the server's search path applies.
type Sampler struct {
	db      source.Queryer
	dialect source.Dialect
	schema  string
	timeout time.Duration
	logger  *slog.Logger
}

func NewSampler(db source.Queryer, d source.Dialect, schema string, opts source.Options) *Sampler {
	return &Sampler{
		db:      db,
		dialect: d,
		schema:  schema,
		timeout: opts.StatementTimeout(),
		logger:  opts.LoggerOrDiscard(),
	}
}

// Schema is the schema relations are qualified with, or "" for none.
func (s *Sampler) Schema() string { return s.schema }

// checkTableName rejects names no supported engine can hold. Quoting cannot
// carry a NUL: PostgreSQL truncates the identifier at it and SQLite and
// MySQL refuse the statement.
func checkTableName(table string) error {
	if strings.ContainsRune(table, 0) {
		return fmt.Errorf("%w: %q", source.ErrTableNotFound, table)
	}
	return nil
}

// SampleRows returns the column names of table and at most limit rows.
// A non-positive limit fails with ErrInvalidLimit before anything is sent.
func (s *Sampler) SampleRows(ctx context.Context, table string, limit int) (*source.RowSample, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", source.ErrInvalidLimit, limit)
	}
	if err := checkTableName(table); err != nil {
		return nil, err
	}

	ctx, cancel := source.WithTimeout(ctx, s.timeout)
	defer cancel()

	query := BuildSampleQuery(s.dialect, s.schema, table)
	s.logger.Debug("sampling table", slog.String("table", table), slog.Int("limit", limit))

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("sample %q: %w", table, source.Classify(s.dialect, err))
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns of %q: %w", table, source.Classify(s.dialect, err))
	}

	result := &source.RowSample{
		Table:   table,
		Columns: columns,
		Rows:    [][]any{},
	}
	for len(result.Rows) < limit && rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("%w: scan row of %q: %w", source.ErrQuery, table, err)
		}
		for i, v := range values {
			// text and blob columns arrive as []byte
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sample %q: %w", table, source.Classify(s.dialect, err))
	}

	s.logger.Debug("sampled table", slog.String("table", table), slog.Int("rows", len(result.Rows)))
	return result, nil
}

// CountRows returns the number of rows in table.
func (s *Sampler) CountRows(ctx context.Context, table string) (int64, error) {
	if err := checkTableName(table); err != nil {
		return 0, err
	}

	ctx, cancel := source.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, BuildCountQuery(s.dialect, s.schema, table))
	if err != nil {
		return 0, fmt.Errorf("count %q: %w", table, source.Classify(s.dialect, err))
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, fmt.Errorf("count %q: %w", table, source.Classify(s.dialect, err))
		}
		return 0, fmt.Errorf("%w: count %q returned no rows", source.ErrQuery, table)
	}
	var count int64
	if err := rows.Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: scan count of %q: %w", source.ErrQuery, table, err)
	}
	return count, nil
}
