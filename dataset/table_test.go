package dataset

import "testing"

func TestInferKind(t *testing.T) {
	cases := []struct {
		name   string
		values []string
		want   Kind
	}{
		{"integers", []string{"1", "2", "3"}, KindNumeric},
		{"floats", []string{"1.5", "2.25"}, KindNumeric},
		{"numeric with missing", []string{"1", "", "3"}, KindNumeric},
		{"text", []string{"Sales", "IT"}, KindCategorical},
		{"boolean as text", []string{"Yes", "No"}, KindCategorical},
		{"mixed", []string{"1", "Sales"}, KindCategorical},
		{"all missing", []string{"", "NA"}, KindCategorical},
	}
	for _, tc := range cases {
		if got := InferKind(tc.values); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIsMissing(t *testing.T) {
	for _, v := range []string{"", " ", "NA", "N/A", "NaN", "null", "NULL"} {
		if !IsMissing(v) {
			t.Errorf("expected %q to be missing", v)
		}
	}
	for _, v := range []string{"0", "No", "none at all"} {
		if IsMissing(v) {
			t.Errorf("expected %q not to be missing", v)
		}
	}
}

func TestTableDropAndSelect(t *testing.T) {
	table, err := NewTable([]Column{
		{Name: "Age", Kind: KindNumeric, Values: []string{"25", "30", "35"}},
		{Name: "Department", Kind: KindCategorical, Values: []string{"Sales", "IT", "HR"}},
		{Name: "Attrition", Kind: KindCategorical, Values: []string{"No", "Yes", "No"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	features := table.Drop("Attrition")
	if features.HasColumn("Attrition") {
		t.Fatal("expected Attrition to be dropped")
	}
	names := features.ColumnNames()
	if len(names) != 2 || names[0] != "Age" || names[1] != "Department" {
		t.Fatalf("unexpected column order: %v", names)
	}

	subset := table.Select([]int{2, 0})
	if subset.NumRows() != 2 {
		t.Fatalf("expected 2 rows, got %d", subset.NumRows())
	}
	col, _ := subset.Column("Age")
	if col.Values[0] != "35" || col.Values[1] != "25" {
		t.Fatalf("row order not preserved: %v", col.Values)
	}
}

func TestNewTableRejectsBadShapes(t *testing.T) {
	if _, err := NewTable(nil); err == nil {
		t.Fatal("expected error for empty table")
	}
	_, err := NewTable([]Column{
		{Name: "A", Values: []string{"1", "2"}},
		{Name: "B", Values: []string{"1"}},
	})
	if err == nil {
		t.Fatal("expected error for ragged columns")
	}
	_, err = NewTable([]Column{
		{Name: "A", Values: []string{"1"}},
		{Name: "A", Values: []string{"2"}},
	})
	if err == nil {
		t.Fatal("expected error for duplicate column name")
	}
}
