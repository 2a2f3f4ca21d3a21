// Package types holds the JSON documents dataprobe prints with --format json.
package types

// CheckResult summarises the expectations for one table.
type CheckResult struct {
	Table             string   `json:"table"`
	Exists            bool     `json:"exists"`
	MissingColumns    []string `json:"missing_columns,omitempty"`
	UnexpectedColumns []string `json:"unexpected_columns,omitempty"`
	Status            string   `json:"status"`
}

// Table is one entry of a schema dump, columns in ordinal order.
type Table struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
}

type Sample struct {
	Table   string   `json:"table"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// DiagnosticResult is the outcome of a full run: connectivity, schema dump
// and a row preview. Sample is nil when the schema has no tables.
type DiagnosticResult struct {
	RunID      string  `json:"run_id"`
	Driver     string  `json:"driver"`
	Schema     string  `json:"schema"`
	ServerTime string  `json:"server_time"`
	Tables     []Table `json:"tables"`
	Sample     *Sample `json:"sample,omitempty"`
}
