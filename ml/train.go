package ml

import (
	"fmt"
	"time"

	"attrition/dataset"
	"go.uber.org/zap"
)

// ArtifactSaver persists a fitted pipeline and returns its generated id and
// storage path. Implemented by artifact.Store.
type ArtifactSaver interface {
	Save(p *FittedPipeline) (id, path string, err error)
}

// TrainOptions parameterize one training call.
type TrainOptions struct {
	TargetColumn string

	// PositiveLabel is the textual target value mapped to 1. Defaults to
	// "Yes" when empty.
	PositiveLabel string

	// TestFraction of rows held out for evaluation. Defaults to 0.2.
	TestFraction float64

	// Seed drives the train/test split. Defaults to 42.
	Seed int64
}

func (o *TrainOptions) fillDefaults() {
	if o.PositiveLabel == "" {
		o.PositiveLabel = "Yes"
	}
	if o.TestFraction <= 0 || o.TestFraction >= 1 {
		o.TestFraction = 0.2
	}
	if o.Seed == 0 {
		o.Seed = 42
	}
}

// ArtifactDescriptor is returned alongside the metrics after training. It is
// the sole channel through which inference and feature-importance extraction
// re-discover the trained pipeline's shape and location.
type ArtifactDescriptor struct {
	ModelID             string          `json:"model_id"`
	ModelPath           string          `json:"model_path"`
	NumericFeatures     []string        `json:"numeric_features"`
	CategoricalFeatures []string        `json:"categorical_features"`
	ConfusionMatrix     ConfusionMatrix `json:"confusion_matrix"`
}

// Trainer runs the training pipeline and persists the result. Each Train
// call builds a fresh pipeline; the trainer itself holds no mutable state.
type Trainer struct {
	Saver ArtifactSaver
	Fit   FitOptions
	Log   *zap.Logger
}

// NewTrainer builds a trainer with the default classifier settings.
func NewTrainer(saver ArtifactSaver, log *zap.Logger) *Trainer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Trainer{Saver: saver, Fit: DefaultFitOptions(), Log: log}
}

// Train runs the full pipeline: target derivation, feature typing,
// stratified split, preprocessing fit, classifier fit, held-out scoring,
// artifact persistence. For identical inputs and seed the returned metrics
// are identical across calls.
func (tr *Trainer) Train(t *dataset.Table, opts TrainOptions) (Metrics, *ArtifactDescriptor, error) {
	opts.fillDefaults()

	if t == nil || t.NumRows() == 0 {
		return Metrics{}, nil, fmt.Errorf("%w: dataset is empty", ErrInvalidInput)
	}
	targetCol, ok := t.Column(opts.TargetColumn)
	if !ok {
		return Metrics{}, nil, fmt.Errorf("%w: target column %q not found in dataset", ErrInvalidInput, opts.TargetColumn)
	}
	if t.NumRows() < 2 {
		return Metrics{}, nil, fmt.Errorf("%w: need at least 2 rows to hold out a test split", ErrInvalidInput)
	}

	labels, err := deriveTarget(targetCol, opts.PositiveLabel)
	if err != nil {
		return Metrics{}, nil, err
	}

	features := t.Drop(opts.TargetColumn)
	schema := DetectSchema(features)

	trainIdx, testIdx := TrainTestSplit(labels, opts.TestFraction, opts.Seed)
	trainTable := features.Select(trainIdx)
	testTable := features.Select(testIdx)
	trainY := selectLabels(labels, trainIdx)
	testY := selectLabels(labels, testIdx)

	pre, err := FitPreprocessor(trainTable, schema)
	if err != nil {
		return Metrics{}, nil, err
	}

	model := &LogisticRegression{}
	if err := model.Fit(pre.TransformTable(trainTable), trainY, tr.Fit); err != nil {
		return Metrics{}, nil, err
	}

	testX := pre.TransformTable(testTable)
	pred := make([]int, len(testX))
	proba := make([]float64, len(testX))
	for i, row := range testX {
		pred[i], proba[i] = model.Predict(row)
	}
	metrics, cm := Evaluate(testY, pred, proba)

	pipeline := &FittedPipeline{
		Version:       PipelineVersion,
		TargetColumn:  opts.TargetColumn,
		PositiveLabel: opts.PositiveLabel,
		Preprocessor:  pre,
		Model:         model,
		TrainedAt:     time.Now().UTC(),
	}
	id, path, err := tr.Saver.Save(pipeline)
	if err != nil {
		return Metrics{}, nil, fmt.Errorf("persist pipeline: %w", err)
	}

	tr.Log.Info("model trained",
		zap.String("model_id", id),
		zap.String("target", opts.TargetColumn),
		zap.Int("train_rows", len(trainIdx)),
		zap.Int("test_rows", len(testIdx)),
		zap.Float64("accuracy", metrics.Accuracy),
		zap.Float64("f1", metrics.F1),
	)

	return metrics, &ArtifactDescriptor{
		ModelID:             id,
		ModelPath:           path,
		NumericFeatures:     schema.NumericFeatures,
		CategoricalFeatures: schema.CategoricalFeatures,
		ConfusionMatrix:     cm,
	}, nil
}

func selectLabels(labels []int, idx []int) []int {
	out := make([]int, len(idx))
	for i, j := range idx {
		out[i] = labels[j]
	}
	return out
}
