package mysql

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/alexanderjulianmartinez/dataprobe/internal/source"
)

// erNoSuchTable is ER_NO_SUCH_TABLE.
const erNoSuchTable = 1146

// An empty schema argument falls back to the connection's current database.
const (
	tablesQuery = `
		SELECT TABLE_NAME
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = COALESCE(NULLIF(?, ''), DATABASE()) AND TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME
	`

	columnsQuery = `
		SELECT COLUMN_NAME, ORDINAL_POSITION
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = COALESCE(NULLIF(?, ''), DATABASE()) AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION
	`
)

type Dialect struct{}

func init() {
	source.Register(Dialect{})
}

func (Dialect) Name() string          { return "mysql" }
func (Dialect) DriverName() string    { return "mysql" }
func (Dialect) DefaultSchema() string { return "" }
func (Dialect) Placeholder(int) string {
	return "?"
}
func (Dialect) TablesQuery() string  { return tablesQuery }
func (Dialect) ColumnsQuery() string { return columnsQuery }
func (Dialect) NowQuery() string     { return "SELECT NOW()" }

// QuoteIdentifier wraps name in backticks, doubling embedded backticks.
// The driver has no exported helper for this.
func (Dialect) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (Dialect) ClassifyError(err error) error {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		if myErr.Number == erNoSuchTable {
			return source.ErrTableNotFound
		}
		return source.ErrQuery
	}
	return source.ErrConnection
}

var _ source.Dialect = Dialect{}
