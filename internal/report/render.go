// Package report prints probe results as human-readable tables or as JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/alexanderjulianmartinez/dataprobe/internal/drift"
	"github.com/alexanderjulianmartinez/dataprobe/internal/source"
	"github.com/alexanderjulianmartinez/dataprobe/pkg/types"
)

const (
	FormatTable = "table"
	FormatJSON  = "json"
)

var Formats = []string{FormatTable, FormatJSON}

type Renderer struct {
	w      io.Writer
	format string
}

func NewRenderer(w io.Writer, format string) (*Renderer, error) {
	if format == "" {
		format = FormatTable
	}
	if !slices.Contains(Formats, format) {
		return nil, fmt.Errorf("%w: unknown output format %q (available: table, json)", source.ErrConfiguration, format)
	}
	return &Renderer{w: w, format: format}, nil
}

func (r *Renderer) isJSON() bool { return r.format == FormatJSON }

func (r *Renderer) encode(v any) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (r *Renderer) newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(r.w)
	t.SetStyle(table.StyleLight)
	// headers are column names and must print exactly as the database spells them
	t.Style().Format.Header = text.FormatDefault
	return t
}

// plural renders a count with its noun: "1 row", "3 rows".
func plural(n int64, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

type connectionOutput struct {
	Driver     string `json:"driver"`
	ServerTime string `json:"server_time"`
}

// Connection prints the result of a connectivity check.
func (r *Renderer) Connection(driver, serverTime string) error {
	if r.isJSON() {
		return r.encode(connectionOutput{Driver: driver, ServerTime: serverTime})
	}
	_, _ = fmt.Fprintf(r.w, "Connected successfully (%s)\n", driver)
	_, _ = fmt.Fprintf(r.w, "Current time: %s\n", serverTime)
	return nil
}

type tablesOutput struct {
	Schema string   `json:"schema"`
	Tables []string `json:"tables"`
}

func (r *Renderer) Tables(schema string, tables []string) error {
	if r.isJSON() {
		return r.encode(tablesOutput{Schema: schema, Tables: tables})
	}
	if len(tables) == 0 {
		_, _ = fmt.Fprintf(r.w, "No tables found in schema '%s'.\n", schema)
		return nil
	}

	t := r.newTable()
	t.AppendHeader(table.Row{"Table"})
	for _, name := range tables {
		t.AppendRow(table.Row{name})
	}
	t.Render()
	_, _ = fmt.Fprintf(r.w, "(%s in schema %s)\n", plural(int64(len(tables)), "table"), schema)
	return nil
}

// Catalog prints every table with its columns in ordinal order.
func (r *Renderer) Catalog(catalog *source.Catalog) error {
	if r.isJSON() {
		return r.encode(catalog)
	}
	if len(catalog.Tables) == 0 {
		_, _ = fmt.Fprintf(r.w, "No tables found in schema '%s'.\n", catalog.Schema)
		return nil
	}

	t := r.newTable()
	t.AppendHeader(table.Row{"Table", "#", "Column"})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 1, AutoMerge: true}})
	for _, entry := range catalog.Tables {
		if len(entry.Columns) == 0 {
			t.AppendRow(table.Row{entry.Name, "", ""})
			continue
		}
		for _, col := range entry.Columns {
			t.AppendRow(table.Row{entry.Name, col.Position, col.Name})
		}
		t.AppendSeparator()
	}
	t.Render()
	_, _ = fmt.Fprintf(r.w, "(%s in schema %s)\n", plural(int64(len(catalog.Tables)), "table"), catalog.Schema)
	return nil
}

// Sample prints sampled rows under their column names.
func (r *Renderer) Sample(sample *source.RowSample) error {
	if r.isJSON() {
		return r.encode(sample)
	}
	if len(sample.Rows) == 0 {
		_, _ = fmt.Fprintf(r.w, "Columns: %v\n(0 rows)\n", sample.Columns)
		return nil
	}

	t := r.newTable()
	header := make(table.Row, len(sample.Columns))
	for i, col := range sample.Columns {
		header[i] = col
	}
	t.AppendHeader(header)
	for _, values := range sample.Rows {
		row := make(table.Row, len(values))
		for i, v := range values {
			row[i] = formatValue(v)
		}
		t.AppendRow(row)
	}
	t.Render()
	_, _ = fmt.Fprintf(r.w, "(%s)\n", plural(int64(len(sample.Rows)), "row"))
	return nil
}

type countOutput struct {
	Table string `json:"table"`
	Rows  int64  `json:"rows"`
}

func (r *Renderer) Count(tableName string, n int64) error {
	if r.isJSON() {
		return r.encode(countOutput{Table: tableName, Rows: n})
	}
	_, _ = fmt.Fprintf(r.w, "%s: %s\n", tableName, plural(n, "row"))
	return nil
}

// Check prints the per-table verdicts followed by every issue found.
func (r *Renderer) Check(rep *drift.Report) error {
	if r.isJSON() {
		return r.encode(rep)
	}

	t := r.newTable()
	t.AppendHeader(table.Row{"Table", "Status", "Missing", "Unexpected"})
	for _, res := range rep.Results {
		t.AppendRow(table.Row{res.Table, res.Status, len(res.MissingColumns), len(res.UnexpectedColumns)})
	}
	t.Render()

	if len(rep.Issues) == 0 {
		_, _ = fmt.Fprintf(r.w, "All %d expected tables match schema %s.\n", len(rep.Results), rep.Schema)
		return nil
	}

	issues := r.newTable()
	issues.AppendHeader(table.Row{"Severity", "Table", "Column", "Message"})
	blocking := 0
	for _, iss := range rep.Issues {
		if iss.Severity == drift.SeverityBlock {
			blocking++
		}
		issues.AppendRow(table.Row{iss.Severity, iss.Table, iss.Column, iss.Message})
	}
	issues.Render()
	_, _ = fmt.Fprintf(r.w, "(%s, %d blocking)\n", plural(int64(len(rep.Issues)), "issue"), blocking)
	return nil
}

// Diagnostic prints a full run: connection, schema dump and row preview.
func (r *Renderer) Diagnostic(res *types.DiagnosticResult) error {
	if r.isJSON() {
		return r.encode(res)
	}

	if err := r.Connection(res.Driver, res.ServerTime); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(r.w)

	if len(res.Tables) == 0 {
		_, _ = fmt.Fprintf(r.w, "No tables found in schema '%s'.\n", res.Schema)
	} else {
		t := r.newTable()
		t.AppendHeader(table.Row{"Table", "Columns"})
		for _, tbl := range res.Tables {
			t.AppendRow(table.Row{tbl.Name, strings.Join(tbl.Columns, ", ")})
		}
		t.Render()
		_, _ = fmt.Fprintf(r.w, "(%s in schema %s)\n", plural(int64(len(res.Tables)), "table"), res.Schema)
	}

	if res.Sample == nil {
		return nil
	}
	_, _ = fmt.Fprintf(r.w, "\nPreviewing first rows of '%s':\n", res.Sample.Table)
	return r.Sample(&source.RowSample{
		Table:   res.Sample.Table,
		Columns: res.Sample.Columns,
		Rows:    res.Sample.Rows,
	})
}

func formatValue(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", v)
}
