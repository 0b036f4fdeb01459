package ml

// ArtifactLoader retrieves a persisted pipeline by its storage reference.
// Implemented by artifact.Store.
type ArtifactLoader interface {
	Load(ref string) (*FittedPipeline, error)
}

// Prediction is the outcome for one input row. Index is the row's 0-based
// position in the input batch; Probability is the model's estimated
// P(label=1), nil only when the classifier cannot produce probabilities.
type Prediction struct {
	Index          int      `json:"index"`
	PredictedLabel int      `json:"predicted_label"`
	Probability    *float64 `json:"probability"`
}

// Predictor applies persisted pipelines to new records. It is stateless and
// safe for concurrent use: loaded pipelines are read-only.
type Predictor struct {
	Loader ArtifactLoader
}

// Predict loads the referenced pipeline and scores the records, one
// prediction per input row in input order. Records may omit columns seen at
// training time (imputed as missing) and may carry extra columns (ignored).
// An empty batch yields an empty result, not an error.
func (p *Predictor) Predict(ref string, records []map[string]any) ([]Prediction, error) {
	pipeline, err := p.Loader.Load(ref)
	if err != nil {
		return nil, err
	}

	out := make([]Prediction, len(records))
	for i, record := range records {
		label, proba := pipeline.PredictRecord(record)
		prob := proba
		out[i] = Prediction{Index: i, PredictedLabel: label, Probability: &prob}
	}
	return out, nil
}
