package ml

import "time"

// PipelineVersion is embedded in every persisted artifact so a future format
// change can be detected at load time.
const PipelineVersion = 1

// FittedPipeline bundles everything needed for reproducible inference: the
// frozen feature schema, the fitted preprocessor and the trained classifier.
// It is created once per training call, immutable afterwards, and serialized
// as a single self-contained JSON blob.
type FittedPipeline struct {
	Version       int                 `json:"version"`
	TargetColumn  string              `json:"target_column"`
	PositiveLabel string              `json:"positive_label"`
	Preprocessor  *Preprocessor       `json:"preprocessor"`
	Model         *LogisticRegression `json:"model"`
	TrainedAt     time.Time           `json:"trained_at"`
}

// Schema returns the frozen feature schema.
func (fp *FittedPipeline) Schema() FeatureSchema {
	return fp.Preprocessor.Schema
}

// PredictRecord applies preprocessing and the classifier to one record.
func (fp *FittedPipeline) PredictRecord(record map[string]any) (label int, probability float64) {
	return fp.Model.Predict(fp.Preprocessor.TransformRecord(record))
}
