// Package dataset holds the in-memory tabular representation shared by the
// upload layer and the training pipeline.
package dataset

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the inferred type of a column.
type Kind int

const (
	KindNumeric Kind = iota
	KindCategorical
)

func (k Kind) String() string {
	if k == KindNumeric {
		return "numeric"
	}
	return "categorical"
}

// Column is a named column of raw cell values. Cells are kept as strings;
// numeric columns are parsed on demand.
type Column struct {
	Name   string
	Kind   Kind
	Values []string
}

// Table is an ordered collection of equal-length columns. Row order is
// significant and preserved by every operation.
type Table struct {
	columns []Column
}

// NewTable builds a table from columns, validating shape and name uniqueness.
func NewTable(columns []Column) (*Table, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("table has no columns")
	}
	n := len(columns[0].Values)
	seen := make(map[string]bool, len(columns))
	for _, col := range columns {
		if col.Name == "" {
			return nil, fmt.Errorf("column with empty name")
		}
		if seen[col.Name] {
			return nil, fmt.Errorf("duplicate column %q", col.Name)
		}
		seen[col.Name] = true
		if len(col.Values) != n {
			return nil, fmt.Errorf("column %q has %d rows, want %d", col.Name, len(col.Values), n)
		}
	}
	return &Table{columns: columns}, nil
}

// NumRows returns the row count.
func (t *Table) NumRows() int {
	if len(t.columns) == 0 {
		return 0
	}
	return len(t.columns[0].Values)
}

// Columns returns the columns in their original order.
func (t *Table) Columns() []Column {
	return t.columns
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, col := range t.columns {
		names[i] = col.Name
	}
	return names
}

// Column looks up a column by name.
func (t *Table) Column(name string) (*Column, bool) {
	for i := range t.columns {
		if t.columns[i].Name == name {
			return &t.columns[i], true
		}
	}
	return nil, false
}

// HasColumn reports whether a column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.Column(name)
	return ok
}

// Drop returns a new table without the named column. Column order is kept.
func (t *Table) Drop(name string) *Table {
	columns := make([]Column, 0, len(t.columns))
	for _, col := range t.columns {
		if col.Name != name {
			columns = append(columns, col)
		}
	}
	return &Table{columns: columns}
}

// Select returns a new table containing the given rows, in the given order.
func (t *Table) Select(rows []int) *Table {
	columns := make([]Column, len(t.columns))
	for i, col := range t.columns {
		values := make([]string, len(rows))
		for j, row := range rows {
			values[j] = col.Values[row]
		}
		columns[i] = Column{Name: col.Name, Kind: col.Kind, Values: values}
	}
	return &Table{columns: columns}
}

// Row returns one row as a column-name to raw-cell mapping.
func (t *Table) Row(i int) map[string]string {
	row := make(map[string]string, len(t.columns))
	for _, col := range t.columns {
		row[col.Name] = col.Values[i]
	}
	return row
}

// IsMissing reports whether a raw cell counts as a missing value.
func IsMissing(cell string) bool {
	switch strings.TrimSpace(cell) {
	case "", "NA", "N/A", "NaN", "nan", "null", "NULL":
		return true
	}
	return false
}

// InferKind classifies a column: numeric when every non-missing cell parses
// as a float and at least one such cell exists, categorical otherwise.
func InferKind(values []string) Kind {
	seen := false
	for _, v := range values {
		if IsMissing(v) {
			continue
		}
		if _, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err != nil {
			return KindCategorical
		}
		seen = true
	}
	if !seen {
		return KindCategorical
	}
	return KindNumeric
}

// ParseNumeric parses a cell of a numeric column. The second return is false
// for missing or unparseable cells.
func ParseNumeric(cell string) (float64, bool) {
	if IsMissing(cell) {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
