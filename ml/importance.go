package ml

import "sort"

// FeatureImportance is one feature's contribution to the fitted classifier:
// the raw-scale coefficient and its magnitude.
type FeatureImportance struct {
	Feature string  `json:"feature"`
	Coef    float64 `json:"coef"`
	Abs     float64 `json:"abs"`
}

// Importances extracts per-feature coefficients from a fitted pipeline,
// sorted by descending magnitude. One-hot features are named
// column_category after the schema and the encoder's observed categories.
func Importances(fp *FittedPipeline) []FeatureImportance {
	names := fp.Preprocessor.FeatureNames()
	coefs := fp.Model.Coefficients()

	out := make([]FeatureImportance, 0, len(names))
	for i, name := range names {
		c := 0.0
		if i < len(coefs) {
			c = coefs[i]
		}
		abs := c
		if abs < 0 {
			abs = -abs
		}
		out = append(out, FeatureImportance{Feature: name, Coef: c, Abs: abs})
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Abs > out[b].Abs
	})
	return out
}
