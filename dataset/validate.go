package dataset

import "strings"

// expectedFields are the HR columns the upload check looks for.
var expectedFields = []string{"EmployeeID", "id", "Age", "Department"}

// idColumns are tried in order for id-based duplicate detection.
var idColumns = []string{"EmployeeID", "id"}

// requiredColumns must be filled on every row when present.
var requiredColumns = []string{"Age", "Department"}

// ValidationSummary describes the quality of an uploaded dataset. It is
// advisory: a dataset with issues can still be analyzed.
type ValidationSummary struct {
	RecordCount           int      `json:"record_count"`
	MissingExpectedFields []string `json:"missing_expected_fields"`
	InvalidRows           int      `json:"invalid_rows_count"`
	DuplicateRows         int      `json:"duplicate_count"`
}

// Validate runs the upload-time quality checks: expected HR fields present,
// required cells filled, duplicate rows (by id column when one exists,
// otherwise by the whole row).
func Validate(t *Table) ValidationSummary {
	summary := ValidationSummary{
		RecordCount:           t.NumRows(),
		MissingExpectedFields: []string{},
	}

	for _, field := range expectedFields {
		if !t.HasColumn(field) {
			summary.MissingExpectedFields = append(summary.MissingExpectedFields, field)
		}
	}

	var required []*Column
	for _, name := range requiredColumns {
		if col, ok := t.Column(name); ok {
			required = append(required, col)
		}
	}
	if len(required) > 0 {
		for i := 0; i < t.NumRows(); i++ {
			for _, col := range required {
				if IsMissing(col.Values[i]) {
					summary.InvalidRows++
					break
				}
			}
		}
	}

	summary.DuplicateRows = countDuplicates(t)
	return summary
}

func countDuplicates(t *Table) int {
	var idCol *Column
	for _, name := range idColumns {
		if col, ok := t.Column(name); ok {
			idCol = col
			break
		}
	}

	seen := make(map[string]bool)
	dups := 0
	for i := 0; i < t.NumRows(); i++ {
		var key string
		if idCol != nil {
			key = idCol.Values[i]
		} else {
			var b strings.Builder
			for _, col := range t.Columns() {
				b.WriteString(col.Values[i])
				b.WriteByte('\x1f')
			}
			key = b.String()
		}
		if seen[key] {
			dups++
		}
		seen[key] = true
	}
	return dups
}
