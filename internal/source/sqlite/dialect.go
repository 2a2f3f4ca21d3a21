// Package sqlite provides the SQLite dialect, backed by the pure-Go
// modernc.org/sqlite driver. The DSN is a file path or ":memory:".
package sqlite

import (
	"errors"
	"strings"

	"modernc.org/sqlite"

	"github.com/alexanderjulianmartinez/dataprobe/internal/source"
)

const (
	tablesQuery = `
		SELECT name
		FROM pragma_table_list
		WHERE schema = ? AND type = 'table' AND name NOT LIKE 'sqlite\_%' ESCAPE '\'
		ORDER BY name
	`

	columnsQuery = `
		SELECT c.name, c.cid + 1
		FROM pragma_table_list AS t
		JOIN pragma_table_info(t.name, t.schema) AS c
		WHERE t.schema = ? AND t.name = ?
		ORDER BY c.cid
	`
)

type Dialect struct{}

func init() {
	source.Register(Dialect{})
}

func (Dialect) Name() string           { return "sqlite" }
func (Dialect) DriverName() string     { return "sqlite" }
func (Dialect) DefaultSchema() string  { return "main" }
func (Dialect) Placeholder(int) string { return "?" }
func (Dialect) TablesQuery() string    { return tablesQuery }
func (Dialect) ColumnsQuery() string   { return columnsQuery }
func (Dialect) NowQuery() string       { return "SELECT datetime('now')" }

// QuoteIdentifier uses standard double-quote quoting; the driver exports no
// helper for it.
func (Dialect) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// ClassifyError maps SQLite errors. SQLite reports a missing relation as a
// generic SQLITE_ERROR, so the message is the only discriminator.
func (Dialect) ClassifyError(err error) error {
	var sqlErr *sqlite.Error
	if errors.As(err, &sqlErr) {
		if strings.Contains(sqlErr.Error(), "no such table") {
			return source.ErrTableNotFound
		}
		return source.ErrQuery
	}
	return source.ErrConnection
}

var _ source.Dialect = Dialect{}
