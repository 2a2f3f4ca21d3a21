package source

// ColumnDescriptor is a column name and its 1-based ordinal position.
type ColumnDescriptor struct {
	Name     string `json:"name"`
	Position int    `json:"position"`
}

type TableEntry struct {
	Name    string             `json:"name"`
	Columns []ColumnDescriptor `json:"columns"`
}

// ColumnNames returns the column names in ordinal order.
func (t TableEntry) ColumnNames() []string {
	names := make([]string, 0, len(t.Columns))
	for _, col := range t.Columns {
		names = append(names, col.Name)
	}
	return names
}

// Catalog is a snapshot of the base tables of one schema, ordered by table
// name, with each table's columns ordered by position.
type Catalog struct {
	Schema string       `json:"schema"`
	Tables []TableEntry `json:"tables"`
}

func (c *Catalog) TableNames() []string {
	names := make([]string, 0, len(c.Tables))
	for _, t := range c.Tables {
		names = append(names, t.Name)
	}
	return names
}

// Lookup finds a table by its exact catalog name.
func (c *Catalog) Lookup(name string) (TableEntry, bool) {
	for _, t := range c.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return TableEntry{}, false
}

// RowSample holds the leading rows of a table. Every row has exactly
// len(Columns) values.
type RowSample struct {
	Table   string   `json:"table"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}
