// Package drift compares a live catalog with the tables a config expects.
package drift

import (
	"github.com/alexanderjulianmartinez/dataprobe/internal/config"
	"github.com/alexanderjulianmartinez/dataprobe/internal/source"
	"github.com/alexanderjulianmartinez/dataprobe/pkg/types"
)

type Issue struct {
	Table    string `json:"table"`
	Column   string `json:"column,omitempty"`
	Kind     string `json:"kind"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

type Report struct {
	Schema  string              `json:"schema"`
	Issues  []Issue             `json:"issues"`
	Results []types.CheckResult `json:"results"`
}

// Validate checks every expected table against catalog. Columns of a table
// without a declared column list are not compared.
func Validate(catalog *source.Catalog, expected []config.TableConfig) *Report {
	report := &Report{
		Schema:  catalog.Schema,
		Issues:  []Issue{},
		Results: make([]types.CheckResult, 0, len(expected)),
	}

	for _, want := range expected {
		result := types.CheckResult{Table: want.Name, Status: statusOK}

		table, ok := catalog.Lookup(want.Name)
		if !ok {
			report.add(&result, Issue{Table: want.Name, Kind: KindTableMissing}, catalog.Schema)
			report.Results = append(report.Results, result)
			continue
		}
		result.Exists = true

		if len(want.Columns) > 0 {
			actual := make(map[string]bool, len(table.Columns))
			for _, col := range table.Columns {
				actual[col.Name] = true
			}
			declared := make(map[string]bool, len(want.Columns))
			for _, col := range want.Columns {
				declared[col] = true
				if !actual[col] {
					result.MissingColumns = append(result.MissingColumns, col)
					report.add(&result, Issue{Table: want.Name, Column: col, Kind: KindColumnMissing}, catalog.Schema)
				}
			}
			// catalog order keeps the output stable
			for _, col := range table.Columns {
				if !declared[col.Name] {
					result.UnexpectedColumns = append(result.UnexpectedColumns, col.Name)
					report.add(&result, Issue{Table: want.Name, Column: col.Name, Kind: KindColumnUnexpected}, catalog.Schema)
				}
			}
		}
		report.Results = append(report.Results, result)
	}
	return report
}

func (r *Report) add(result *types.CheckResult, issue Issue, schema string) {
	issue.Severity = SeverityForChange(issue.Kind)
	issue.Message = MessageForChange(issue.Kind, schema)
	r.Issues = append(r.Issues, issue)

	if result.Status == statusOK || rank(issue.Severity) > rank(result.Status) {
		result.Status = issue.Severity
	}
}

// HasBlocking reports whether any issue has BLOCK severity.
func (r *Report) HasBlocking() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityBlock {
			return true
		}
	}
	return false
}
