package http

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"attrition/dataset"
	"attrition/db"
	"attrition/ml"
	"github.com/google/uuid"
)

type analyzeRequest struct {
	DatasetID     string   `json:"dataset_id"`
	TargetColumn  string   `json:"target_column"`
	PositiveLabel string   `json:"positive_label"`
	TestFraction  *float64 `json:"test_fraction"`
	Seed          *int64   `json:"seed"`
}

// runAnalysis trains a model on a stored dataset and records the result.
// Request fields left empty fall back to the reloadable training defaults;
// the target column defaults to Attrition as in the HR datasets this service
// was built for.
func (a *App) runAnalysis(ds *db.DatasetRecord, req analyzeRequest) (map[string]any, error) {
	table, err := readDatasetFile(ds.Path)
	if err != nil {
		return nil, err
	}

	defaults := a.TrainingDefaults()
	opts := ml.TrainOptions{
		TargetColumn:  req.TargetColumn,
		PositiveLabel: req.PositiveLabel,
		TestFraction:  defaults.TestFraction,
		Seed:          defaults.Seed,
	}
	if opts.TargetColumn == "" {
		opts.TargetColumn = "Attrition"
	}
	if opts.PositiveLabel == "" {
		opts.PositiveLabel = defaults.PositiveLabel
	}
	if req.TestFraction != nil {
		opts.TestFraction = *req.TestFraction
	}
	if req.Seed != nil {
		opts.Seed = *req.Seed
	}

	metrics, descriptor, err := a.Trainer.Train(table, opts)
	if err != nil {
		return nil, err
	}

	metricsJSON, err := json.Marshal(metrics)
	if err != nil {
		return nil, err
	}
	artifactsJSON, err := json.Marshal(descriptor)
	if err != nil {
		return nil, err
	}

	analysisID := uuid.NewString()
	rec := db.AnalysisRecord{
		ID:           analysisID,
		DatasetID:    ds.ID,
		ModelID:      descriptor.ModelID,
		ModelPath:    descriptor.ModelPath,
		TargetColumn: opts.TargetColumn,
		Metrics:      metricsJSON,
		Artifacts:    artifactsJSON,
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.InsertAnalysis(rec); err != nil {
		return nil, fmt.Errorf("record analysis: %w", err)
	}

	return map[string]any{
		"analysis_id": analysisID,
		"dataset_id":  ds.ID,
		"metrics":     metrics,
		"artifacts":   descriptor,
	}, nil
}

func readDatasetFile(path string) (*dataset.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset file: %w", err)
	}
	defer file.Close()
	return dataset.ReadCSV(file)
}
