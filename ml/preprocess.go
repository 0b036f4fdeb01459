package ml

import (
	"fmt"
	"sort"
	"strconv"

	"attrition/dataset"
)

// Preprocessor is the fit-once transformer in front of the classifier.
// The numeric branch imputes missing values with the training-fold median;
// the categorical branch imputes with the training-fold most frequent value
// and one-hot encodes. All statistics are computed on the training split
// only, so the held-out split and later inference batches never leak into
// the fit.
type Preprocessor struct {
	Schema FeatureSchema `json:"schema"`

	// Medians holds one imputation value per numeric feature, in schema order.
	Medians []float64 `json:"medians"`

	// Fallbacks holds the most frequent value per categorical feature.
	Fallbacks []string `json:"fallbacks"`

	// Categories holds, per categorical feature, the category values in the
	// order they were first observed during fitting. A value outside this
	// list encodes to an all-zero indicator block.
	Categories [][]string `json:"categories"`
}

// FitPreprocessor computes imputation statistics and category vocabularies
// from the training fold.
func FitPreprocessor(train *dataset.Table, schema FeatureSchema) (*Preprocessor, error) {
	p := &Preprocessor{
		Schema:     schema,
		Medians:    make([]float64, len(schema.NumericFeatures)),
		Fallbacks:  make([]string, len(schema.CategoricalFeatures)),
		Categories: make([][]string, len(schema.CategoricalFeatures)),
	}

	for i, name := range schema.NumericFeatures {
		col, ok := train.Column(name)
		if !ok {
			return nil, fmt.Errorf("%w: numeric feature %q missing from training data", ErrInvalidInput, name)
		}
		var values []float64
		for _, cell := range col.Values {
			if v, ok := dataset.ParseNumeric(cell); ok {
				values = append(values, v)
			}
		}
		p.Medians[i] = median(values)
	}

	for i, name := range schema.CategoricalFeatures {
		col, ok := train.Column(name)
		if !ok {
			return nil, fmt.Errorf("%w: categorical feature %q missing from training data", ErrInvalidInput, name)
		}
		p.Fallbacks[i] = mostFrequent(col.Values)

		var cats []string
		seen := make(map[string]bool)
		for _, cell := range col.Values {
			v := cell
			if dataset.IsMissing(v) {
				v = p.Fallbacks[i]
			}
			if !seen[v] {
				seen[v] = true
				cats = append(cats, v)
			}
		}
		p.Categories[i] = cats
	}

	return p, nil
}

// Width returns the number of output features.
func (p *Preprocessor) Width() int {
	w := len(p.Schema.NumericFeatures)
	for _, cats := range p.Categories {
		w += len(cats)
	}
	return w
}

// FeatureNames returns the output feature names: numeric columns first, then
// one indicator name per observed category (column_category).
func (p *Preprocessor) FeatureNames() []string {
	names := make([]string, 0, p.Width())
	names = append(names, p.Schema.NumericFeatures...)
	for i, col := range p.Schema.CategoricalFeatures {
		for _, cat := range p.Categories[i] {
			names = append(names, col+"_"+cat)
		}
	}
	return names
}

// TransformTable encodes a table into the feature matrix, one row per table
// row in table order.
func (p *Preprocessor) TransformTable(t *dataset.Table) [][]float64 {
	n := t.NumRows()
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, 0, p.Width())
	}

	for j, name := range p.Schema.NumericFeatures {
		col, ok := t.Column(name)
		for i := 0; i < n; i++ {
			v := p.Medians[j]
			if ok {
				if parsed, good := dataset.ParseNumeric(col.Values[i]); good {
					v = parsed
				}
			}
			out[i] = append(out[i], v)
		}
	}

	for j, name := range p.Schema.CategoricalFeatures {
		col, ok := t.Column(name)
		for i := 0; i < n; i++ {
			cell := ""
			if ok {
				cell = col.Values[i]
			}
			out[i] = append(out[i], p.encodeCategory(j, cell)...)
		}
	}

	return out
}

// TransformRecord encodes a single row-like record. Columns absent from the
// record are treated as missing; unknown columns are ignored. Never fails:
// unseen categories encode to all zeros.
func (p *Preprocessor) TransformRecord(record map[string]any) []float64 {
	out := make([]float64, 0, p.Width())

	for j, name := range p.Schema.NumericFeatures {
		v := p.Medians[j]
		if raw, ok := record[name]; ok {
			if parsed, good := numericValue(raw); good {
				v = parsed
			}
		}
		out = append(out, v)
	}

	for j, name := range p.Schema.CategoricalFeatures {
		cell := ""
		if raw, ok := record[name]; ok {
			cell = cellString(raw)
		}
		out = append(out, p.encodeCategory(j, cell)...)
	}

	return out
}

func (p *Preprocessor) encodeCategory(idx int, cell string) []float64 {
	if dataset.IsMissing(cell) {
		cell = p.Fallbacks[idx]
	}
	block := make([]float64, len(p.Categories[idx]))
	for k, cat := range p.Categories[idx] {
		if cat == cell {
			block[k] = 1
			break
		}
	}
	return block
}

// numericValue coerces a record value to a float. Unparseable values count
// as missing rather than failing the whole batch.
func numericValue(raw any) (float64, bool) {
	switch v := raw.(type) {
	case nil:
		return 0, false
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		return dataset.ParseNumeric(v)
	default:
		return 0, false
	}
}

// cellString coerces a record value to a raw cell. JSON numbers are printed
// without a trailing exponent so they match CSV-sourced category values.
func cellString(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// mostFrequent returns the modal non-missing value. Ties break toward the
// value observed first, which keeps refits deterministic.
func mostFrequent(values []string) string {
	counts := make(map[string]int)
	var order []string
	for _, v := range values {
		if dataset.IsMissing(v) {
			continue
		}
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	best := ""
	bestCount := 0
	for _, v := range order {
		if counts[v] > bestCount {
			best = v
			bestCount = counts[v]
		}
	}
	return best
}
