package dataset

import (
	"strings"
	"testing"
)

func TestReadCSV(t *testing.T) {
	csv := "Age,Department,Attrition\n25,Sales,No\n30,IT,Yes\n,HR,No\n"
	table, err := ReadCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.NumRows() != 3 {
		t.Fatalf("expected 3 rows, got %d", table.NumRows())
	}

	age, ok := table.Column("Age")
	if !ok || age.Kind != KindNumeric {
		t.Fatalf("expected numeric Age column, got %+v", age)
	}
	dept, ok := table.Column("Department")
	if !ok || dept.Kind != KindCategorical {
		t.Fatalf("expected categorical Department column, got %+v", dept)
	}
	if !IsMissing(age.Values[2]) {
		t.Fatalf("expected missing cell, got %q", age.Values[2])
	}
}

func TestReadCSVStripsBOM(t *testing.T) {
	csv := "\uFEFFAge,Attrition\n25,No\n"
	table, err := ReadCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !table.HasColumn("Age") {
		t.Fatalf("BOM not stripped from header: %v", table.ColumnNames())
	}
}

func TestReadCSVRejectsEmptyInput(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestValidate(t *testing.T) {
	csv := "EmployeeID,Age,Department\n1,25,Sales\n2,,IT\n1,35,HR\n"
	table, err := ReadCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	summary := Validate(table)
	if summary.RecordCount != 3 {
		t.Fatalf("expected 3 records, got %d", summary.RecordCount)
	}
	if summary.InvalidRows != 1 {
		t.Fatalf("expected 1 invalid row, got %d", summary.InvalidRows)
	}
	if summary.DuplicateRows != 1 {
		t.Fatalf("expected 1 duplicate by EmployeeID, got %d", summary.DuplicateRows)
	}
	if len(summary.MissingExpectedFields) != 1 || summary.MissingExpectedFields[0] != "id" {
		t.Fatalf("unexpected missing fields: %v", summary.MissingExpectedFields)
	}
}
