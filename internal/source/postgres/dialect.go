// Package postgres provides the PostgreSQL dialects.
//
// Two dialects are registered: "postgres", backed by pgx through its
// database/sql driver, and "pq", backed by lib/pq. Both quote identifiers with
// the quoting helper their driver ships and recognise SQLSTATE 42P01
// (undefined_table) as a missing relation.
package postgres

import (
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	// database/sql driver "pgx"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/alexanderjulianmartinez/dataprobe/internal/source"
)

// undefinedTable is the SQLSTATE for a relation that does not exist.
const undefinedTable = "42P01"

const (
	tablesQuery = `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	columnsQuery = `
		SELECT column_name, ordinal_position
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`
)

type Dialect struct {
	name   string
	driver string
	quote  func(string) string
}

var (
	// PGX is the default PostgreSQL dialect.
	PGX = &Dialect{
		name:   "postgres",
		driver: "pgx",
		quote: func(name string) string {
			return pgx.Identifier{name}.Sanitize()
		},
	}

	// PQ talks to PostgreSQL through lib/pq.
	PQ = &Dialect{
		name:   "pq",
		driver: "postgres",
		quote:  pq.QuoteIdentifier,
	}
)

func init() {
	source.Register(PGX)
	source.Register(PQ)
}

func (d *Dialect) Name() string                       { return d.name }
func (d *Dialect) DriverName() string                 { return d.driver }
func (d *Dialect) DefaultSchema() string              { return "public" }
func (d *Dialect) QuoteIdentifier(name string) string { return d.quote(name) }
func (d *Dialect) Placeholder(n int) string           { return "$" + strconv.Itoa(n) }
func (d *Dialect) TablesQuery() string                { return tablesQuery }
func (d *Dialect) ColumnsQuery() string               { return columnsQuery }
func (d *Dialect) NowQuery() string                   { return "SELECT now()" }

// ClassifyError recognises server errors from both drivers. Anything the
// server did not report (dial failures, dropped sockets) is a connection error.
func (d *Dialect) ClassifyError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return kindForCode(pgErr.Code)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return kindForCode(string(pqErr.Code))
	}
	return source.ErrConnection
}

func kindForCode(code string) error {
	switch {
	case code == undefinedTable:
		return source.ErrTableNotFound
	case len(code) == 5 && code[:2] == "08":
		// class 08: connection exception
		return source.ErrConnection
	default:
		return source.ErrQuery
	}
}

var _ source.Dialect = (*Dialect)(nil)
