package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderjulianmartinez/dataprobe/internal/drift"
	"github.com/alexanderjulianmartinez/dataprobe/internal/source"
	"github.com/alexanderjulianmartinez/dataprobe/pkg/types"
)

func newRenderer(t *testing.T, format string) (*Renderer, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	r, err := NewRenderer(&buf, format)
	require.NoError(t, err)
	return r, &buf
}

func TestNewRenderer_UnknownFormat(t *testing.T) {
	_, err := NewRenderer(&bytes.Buffer{}, "yaml")
	assert.ErrorIs(t, err, source.ErrConfiguration)

	r, err := NewRenderer(&bytes.Buffer{}, "")
	require.NoError(t, err)
	assert.False(t, r.isJSON())
}

func TestTables(t *testing.T) {
	r, buf := newRenderer(t, FormatTable)
	require.NoError(t, r.Tables("public", []string{"Market", "Tag"}))
	out := buf.String()
	assert.Contains(t, out, "Market")
	assert.Contains(t, out, "Tag")
	assert.Contains(t, out, "(2 tables in schema public)")

	r, buf = newRenderer(t, FormatTable)
	require.NoError(t, r.Tables("public", []string{}))
	assert.Equal(t, "No tables found in schema 'public'.\n", buf.String())
}

func TestTables_JSON(t *testing.T) {
	r, buf := newRenderer(t, FormatJSON)
	require.NoError(t, r.Tables("main", []string{}))

	var got tablesOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "main", got.Schema)
	assert.NotNil(t, got.Tables, "empty list, not null")
	assert.Contains(t, buf.String(), `"tables": []`)
}

func TestCatalog(t *testing.T) {
	r, buf := newRenderer(t, FormatTable)
	catalog := &source.Catalog{Schema: "public", Tables: []source.TableEntry{
		{Name: "Market", Columns: []source.ColumnDescriptor{{Name: "id", Position: 1}, {Name: "name", Position: 2}}},
		{Name: "Empty"},
	}}

	require.NoError(t, r.Catalog(catalog))
	out := buf.String()
	assert.Contains(t, out, "Market")
	assert.Contains(t, out, "name")
	assert.Contains(t, out, "Empty")
	assert.Contains(t, out, "(2 tables in schema public)")
}

func TestSample(t *testing.T) {
	r, buf := newRenderer(t, FormatTable)
	require.NoError(t, r.Sample(&source.RowSample{
		Table:   "Tag",
		Columns: []string{"id", "label"},
		Rows:    [][]any{{int64(1), "go"}, {int64(2), nil}},
	}))

	out := buf.String()
	assert.Contains(t, out, "label")
	assert.Contains(t, out, "go")
	assert.Contains(t, out, "NULL")
	assert.Contains(t, out, "(2 rows)")
}

func TestSample_HeadersKeepCase(t *testing.T) {
	r, buf := newRenderer(t, FormatTable)
	require.NoError(t, r.Sample(&source.RowSample{
		Table:   "Event",
		Columns: []string{"createdAt", "created_at", "ID"},
		Rows:    [][]any{{"2026-10-19", "2026-10-18", int64(7)}},
	}))

	out := buf.String()
	assert.Contains(t, out, "createdAt")
	assert.Contains(t, out, "created_at")
	assert.NotContains(t, out, "CREATEDAT")
	assert.NotContains(t, out, "CREATED AT")
	assert.Contains(t, out, "(1 row)")
	assert.NotContains(t, out, "(1 rows)")
}

func TestSample_Empty(t *testing.T) {
	r, buf := newRenderer(t, FormatTable)
	require.NoError(t, r.Sample(&source.RowSample{Table: "Tag", Columns: []string{"id"}, Rows: [][]any{}}))
	assert.Equal(t, "Columns: [id]\n(0 rows)\n", buf.String())
}

func TestSample_JSON(t *testing.T) {
	r, buf := newRenderer(t, FormatJSON)
	require.NoError(t, r.Sample(&source.RowSample{
		Table:   "Tag",
		Columns: []string{"id", "label"},
		Rows:    [][]any{{int64(1), "go"}},
	}))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "Tag", got["table"])
	assert.Equal(t, []any{[]any{float64(1), "go"}}, got["rows"])
}

func TestCount(t *testing.T) {
	r, buf := newRenderer(t, FormatTable)
	require.NoError(t, r.Count("Market", 42))
	assert.Equal(t, "Market: 42 rows\n", buf.String())

	r, buf = newRenderer(t, FormatTable)
	require.NoError(t, r.Count("Market", 1))
	assert.Equal(t, "Market: 1 row\n", buf.String())

	r, buf = newRenderer(t, FormatJSON)
	require.NoError(t, r.Count("Market", 42))
	assert.JSONEq(t, `{"table": "Market", "rows": 42}`, buf.String())
}

func TestConnection(t *testing.T) {
	r, buf := newRenderer(t, FormatTable)
	require.NoError(t, r.Connection("postgres", "2026-10-19 12:00:00"))
	assert.Equal(t, "Connected successfully (postgres)\nCurrent time: 2026-10-19 12:00:00\n", buf.String())
}

func TestCheck(t *testing.T) {
	catalog := &source.Catalog{Schema: "public", Tables: []source.TableEntry{
		{Name: "Market", Columns: []source.ColumnDescriptor{{Name: "id", Position: 1}}},
	}}
	rep := drift.Validate(catalog, nil)

	r, buf := newRenderer(t, FormatTable)
	require.NoError(t, r.Check(rep))
	assert.Contains(t, buf.String(), "All 0 expected tables match schema public.")
}

func TestCheck_WithIssues(t *testing.T) {
	rep := &drift.Report{
		Schema: "public",
		Issues: []drift.Issue{
			{Table: "Gone", Kind: drift.KindTableMissing, Severity: drift.SeverityBlock, Message: "table not found in schema public"},
			{Table: "Market", Column: "name", Kind: drift.KindColumnMissing, Severity: drift.SeverityWarn, Message: "expected column is missing"},
		},
		Results: []types.CheckResult{
			{Table: "Gone", Status: drift.SeverityBlock},
			{Table: "Market", Exists: true, MissingColumns: []string{"name"}, Status: drift.SeverityWarn},
		},
	}

	r, buf := newRenderer(t, FormatTable)
	require.NoError(t, r.Check(rep))
	out := buf.String()
	assert.Contains(t, out, "BLOCK")
	assert.Contains(t, out, "expected column is missing")
	assert.Contains(t, out, "(2 issues, 1 blocking)")

	r, buf = newRenderer(t, FormatJSON)
	require.NoError(t, r.Check(rep))
	var got drift.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, *rep, got)
}

func TestDiagnostic(t *testing.T) {
	res := &types.DiagnosticResult{
		RunID:      "run-1",
		Driver:     "sqlite",
		Schema:     "main",
		ServerTime: "2026-10-19 12:00:00",
		Tables:     []types.Table{{Name: "Tag", Columns: []string{"id", "label"}}},
		Sample:     &types.Sample{Table: "Tag", Columns: []string{"id", "label"}, Rows: [][]any{{int64(1), "go"}}},
	}

	r, buf := newRenderer(t, FormatTable)
	require.NoError(t, r.Diagnostic(res))
	out := buf.String()
	assert.Contains(t, out, "Connected successfully (sqlite)")
	assert.Contains(t, out, "id, label")
	assert.Contains(t, out, "Previewing first rows of 'Tag':")
	assert.Contains(t, out, "(1 table in schema main)")
	assert.Contains(t, out, "(1 row)")
	assert.NotContains(t, out, "(1 rows)")
}

func TestDiagnostic_NoTables(t *testing.T) {
	res := &types.DiagnosticResult{Driver: "postgres", Schema: "public", ServerTime: "now", Tables: []types.Table{}}

	r, buf := newRenderer(t, FormatTable)
	require.NoError(t, r.Diagnostic(res))
	assert.Contains(t, buf.String(), "No tables found in schema 'public'.")
	assert.NotContains(t, buf.String(), "Previewing")

	r, buf = newRenderer(t, FormatJSON)
	require.NoError(t, r.Diagnostic(res))
	assert.NotContains(t, buf.String(), `"sample"`)
}
