package drift

// Severity and message helpers for expectation mismatches.
// Rules:
// - BLOCK when the table the probe was told about is gone
// - WARN when an expected column is missing
// - INFO for columns nobody declared

const (
	SeverityInfo  = "INFO"
	SeverityWarn  = "WARN"
	SeverityBlock = "BLOCK"
)

const (
	KindTableMissing     = "table_missing"
	KindColumnMissing    = "column_missing"
	KindColumnUnexpected = "column_unexpected"
	statusOK             = "OK"
)

func SeverityForChange(kind string) string {
	switch kind {
	case KindTableMissing:
		return SeverityBlock
	case KindColumnMissing:
		return SeverityWarn
	default:
		return SeverityInfo
	}
}

// MessageForChange returns a concise message for the given change kind.
func MessageForChange(kind, schema string) string {
	switch kind {
	case KindTableMissing:
		return "table not found in schema " + schema
	case KindColumnMissing:
		return "expected column is missing"
	case KindColumnUnexpected:
		return "column is not listed in config"
	default:
		return ""
	}
}

// rank orders severities so the worst one of a table can be picked.
func rank(severity string) int {
	switch severity {
	case SeverityBlock:
		return 2
	case SeverityWarn:
		return 1
	default:
		return 0
	}
}
