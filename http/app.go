// Package http exposes the attrition service over a JSON API.
package http

import (
	"sync"

	"attrition/artifact"
	"attrition/config"
	"attrition/ml"
	"go.uber.org/zap"
)

// App bundles the handler dependencies. Training defaults are guarded by a
// mutex because the config watcher can replace them at runtime.
type App struct {
	Store     *artifact.Store
	Trainer   *ml.Trainer
	Predictor *ml.Predictor
	Hub       *EventHub
	Log       *zap.Logger
	UploadDir string

	mu       sync.RWMutex
	training config.Training
}

// NewApp wires the handler dependencies around an artifact store.
func NewApp(store *artifact.Store, uploadDir string, training config.Training, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	return &App{
		Store:     store,
		Trainer:   ml.NewTrainer(store, log),
		Predictor: &ml.Predictor{Loader: store},
		Hub:       NewEventHub(log),
		Log:       log,
		UploadDir: uploadDir,
		training:  training,
	}
}

// TrainingDefaults returns the current training defaults.
func (a *App) TrainingDefaults() config.Training {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.training
}

// SetTrainingDefaults swaps the training defaults; called by the config
// watcher on reload.
func (a *App) SetTrainingDefaults(t config.Training) {
	a.mu.Lock()
	a.training = t
	a.mu.Unlock()
	a.Log.Info("training defaults reloaded",
		zap.String("positive_label", t.PositiveLabel),
		zap.Float64("test_fraction", t.TestFraction),
		zap.Float64("risk_threshold", t.RiskThreshold),
	)
}
