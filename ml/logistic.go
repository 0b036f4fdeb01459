package ml

import (
	"fmt"
	"math"
)

// LogisticRegression is a binary classifier fit by full-batch gradient
// descent on the log loss. Inputs are standardized internally so the learning
// rate behaves the same whether a feature is an age in years or a one-hot
// indicator; the standardization parameters are part of the model and are
// applied again at prediction time.
type LogisticRegression struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
	Means   []float64 `json:"means"`
	Scales  []float64 `json:"scales"`
}

// FitOptions are the training hyperparameters.
type FitOptions struct {
	LearningRate float64
	MaxIter      int
	Tolerance    float64

	// Balanced weights each sample by n/(2*n_class), compensating for
	// skewed label ratios.
	Balanced bool
}

// DefaultFitOptions mirrors the service defaults: a generous iteration cap
// and class-balanced weighting.
func DefaultFitOptions() FitOptions {
	return FitOptions{
		LearningRate: 0.1,
		MaxIter:      1000,
		Tolerance:    1e-7,
		Balanced:     true,
	}
}

// Fit trains the model. Weights start at zero, so training is deterministic
// for a fixed input.
func (m *LogisticRegression) Fit(features [][]float64, labels []int, opts FitOptions) error {
	if len(features) == 0 || len(labels) == 0 {
		return fmt.Errorf("%w: empty training set", ErrInvalidInput)
	}
	if len(features) != len(labels) {
		return fmt.Errorf("%w: %d feature rows but %d labels", ErrInvalidInput, len(features), len(labels))
	}
	if opts.MaxIter <= 0 {
		opts.MaxIter = 1000
	}
	if opts.LearningRate <= 0 {
		opts.LearningRate = 0.1
	}

	width := len(features[0])
	m.Means, m.Scales = standardization(features, width)
	m.Weights = make([]float64, width)
	m.Bias = 0

	sampleWeights := m.sampleWeights(labels, opts.Balanced)

	x := make([][]float64, len(features))
	for i, row := range features {
		if len(row) != width {
			return fmt.Errorf("%w: ragged feature matrix at row %d", ErrInvalidInput, i)
		}
		scaled := make([]float64, width)
		for j, v := range row {
			scaled[j] = (v - m.Means[j]) / m.Scales[j]
		}
		x[i] = scaled
	}

	n := float64(len(x))
	prevLoss := math.Inf(1)
	for iter := 0; iter < opts.MaxIter; iter++ {
		gradW := make([]float64, width)
		gradB := 0.0
		loss := 0.0

		for i, row := range x {
			z := m.Bias
			for j, v := range row {
				z += m.Weights[j] * v
			}
			p := sigmoid(z)
			y := float64(labels[i])
			w := sampleWeights[i]

			loss += w * logLoss(y, p)
			d := w * (p - y)
			for j, v := range row {
				gradW[j] += d * v
			}
			gradB += d
		}
		loss /= n

		if math.IsNaN(loss) || math.IsInf(loss, 0) {
			return fmt.Errorf("%w: loss diverged at iteration %d", ErrTrainingFailed, iter)
		}

		for j := range m.Weights {
			m.Weights[j] -= opts.LearningRate * gradW[j] / n
		}
		m.Bias -= opts.LearningRate * gradB / n

		if math.Abs(prevLoss-loss) < opts.Tolerance {
			break
		}
		prevLoss = loss
	}

	return nil
}

// PredictProba returns the estimated P(label=1) for one feature row.
func (m *LogisticRegression) PredictProba(features []float64) float64 {
	z := m.Bias
	for j, v := range features {
		if j >= len(m.Weights) {
			break
		}
		z += m.Weights[j] * (v - m.Means[j]) / m.Scales[j]
	}
	return sigmoid(z)
}

// Predict returns the class label under a 0.5 threshold plus the probability.
func (m *LogisticRegression) Predict(features []float64) (int, float64) {
	p := m.PredictProba(features)
	if p >= 0.5 {
		return 1, p
	}
	return 0, p
}

// Coefficients returns the per-feature weights on the original feature
// scale, comparable across features the way raw model coefficients are.
func (m *LogisticRegression) Coefficients() []float64 {
	coefs := make([]float64, len(m.Weights))
	for j, w := range m.Weights {
		coefs[j] = w / m.Scales[j]
	}
	return coefs
}

func (m *LogisticRegression) sampleWeights(labels []int, balanced bool) []float64 {
	weights := make([]float64, len(labels))
	for i := range weights {
		weights[i] = 1
	}
	if !balanced {
		return weights
	}
	var n0, n1 int
	for _, y := range labels {
		if y == 1 {
			n1++
		} else {
			n0++
		}
	}
	if n0 == 0 || n1 == 0 {
		return weights
	}
	n := float64(len(labels))
	w0 := n / (2 * float64(n0))
	w1 := n / (2 * float64(n1))
	for i, y := range labels {
		if y == 1 {
			weights[i] = w1
		} else {
			weights[i] = w0
		}
	}
	return weights
}

func standardization(features [][]float64, width int) (means, scales []float64) {
	means = make([]float64, width)
	scales = make([]float64, width)
	n := float64(len(features))

	for _, row := range features {
		for j, v := range row {
			means[j] += v
		}
	}
	for j := range means {
		means[j] /= n
	}
	for _, row := range features {
		for j, v := range row {
			d := v - means[j]
			scales[j] += d * d
		}
	}
	for j := range scales {
		scales[j] = math.Sqrt(scales[j] / n)
		if scales[j] == 0 {
			// constant feature: leave it centered but unscaled
			scales[j] = 1
		}
	}
	return means, scales
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// logLoss clamps probabilities away from 0 and 1 so a confidently wrong
// prediction yields a large finite loss instead of Inf.
func logLoss(y, p float64) float64 {
	const eps = 1e-15
	p = math.Min(math.Max(p, eps), 1-eps)
	if y == 1 {
		return -math.Log(p)
	}
	return -math.Log(1 - p)
}
