package inspect

import (
	"context"
	"log/slog"

	"github.com/alexanderjulianmartinez/dataprobe/internal/source"
)

// Inspect builds a fresh catalog of schema. The first failing query aborts
// the walk; no partial catalog is returned.
func (i *Inspector) Inspect(ctx context.Context, schema string) (*source.Catalog, error) {
	schema = i.Schema(schema)

	tables, err := i.ListTables(ctx, schema)
	if err != nil {
		return nil, err
	}

	entries := make([]source.TableEntry, 0, len(tables))
	for _, tableName := range tables {
		cols, err := i.ListColumns(ctx, schema, tableName)
		if err != nil {
			return nil, err
		}
		entries = append(entries, source.TableEntry{
			Name:    tableName,
			Columns: cols,
		})
	}

	i.logger.Info("inspected schema", slog.String("schema", schema), slog.Int("tables", len(entries)))
	return &source.Catalog{
		Schema: schema,
		Tables: entries,
	}, nil
}
