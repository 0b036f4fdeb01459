package db

import (
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"
)

func TestMain(m *testing.M) {
	dbPath := "./test.db"
	if err := InitDB(dbPath); err != nil {
		os.Exit(1)
	}

	code := m.Run()

	CloseDB()
	os.Remove(dbPath)
	os.Exit(code)
}

func TestDatasetRoundTrip(t *testing.T) {
	rec := DatasetRecord{
		ID:         "ds-1",
		Filename:   "employees.csv",
		Path:       "/tmp/dataset_ds-1.csv",
		UploadedAt: time.Now().UTC().Truncate(time.Second),
		Columns:    []string{"Age", "Department", "Attrition"},
		Sample:     []map[string]string{{"Age": "25", "Department": "Sales", "Attrition": "No"}},
	}
	if err := InsertDataset(rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := GetDataset("ds-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Filename != rec.Filename || got.Path != rec.Path {
		t.Fatalf("unexpected record: %+v", got)
	}
	if len(got.Columns) != 3 || got.Columns[2] != "Attrition" {
		t.Fatalf("columns not preserved: %v", got.Columns)
	}
	if len(got.Sample) != 1 || got.Sample[0]["Department"] != "Sales" {
		t.Fatalf("sample not preserved: %v", got.Sample)
	}
}

func TestAnalysisRoundTrip(t *testing.T) {
	metrics, _ := json.Marshal(map[string]float64{"accuracy": 0.9})
	rec := AnalysisRecord{
		ID:           "an-1",
		DatasetID:    "ds-1",
		ModelID:      "model-1",
		ModelPath:    "/tmp/model_model-1.json",
		TargetColumn: "Attrition",
		Metrics:      metrics,
		Artifacts:    json.RawMessage(`{"numeric_features":["Age"]}`),
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	if err := InsertAnalysis(rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := GetAnalysis("an-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ModelID != "model-1" || got.TargetColumn != "Attrition" {
		t.Fatalf("unexpected record: %+v", got)
	}

	var parsed map[string]float64
	if err := json.Unmarshal(got.Metrics, &parsed); err != nil || parsed["accuracy"] != 0.9 {
		t.Fatalf("metrics not preserved: %s", got.Metrics)
	}

	analyses, err := ListAnalyses()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(analyses) == 0 {
		t.Fatal("expected at least one analysis")
	}
}

func TestGetUnknownRecord(t *testing.T) {
	if _, err := GetDataset("nope"); !errors.Is(err, ErrNoRecord) {
		t.Fatalf("expected ErrNoRecord, got %v", err)
	}
	if _, err := GetAnalysis("nope"); !errors.Is(err, ErrNoRecord) {
		t.Fatalf("expected ErrNoRecord, got %v", err)
	}
}
