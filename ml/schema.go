package ml

import "attrition/dataset"

// FeatureSchema is the partition of feature columns into numeric and
// categorical groups. It is computed once at training time and frozen inside
// the persisted artifact; inference never re-infers column kinds.
type FeatureSchema struct {
	NumericFeatures     []string `json:"numeric_features"`
	CategoricalFeatures []string `json:"categorical_features"`
}

// DetectSchema partitions the columns of a feature table (target already
// removed) by their inferred kind. Every column lands in exactly one group;
// either group may be empty.
func DetectSchema(t *dataset.Table) FeatureSchema {
	schema := FeatureSchema{
		NumericFeatures:     []string{},
		CategoricalFeatures: []string{},
	}
	for _, col := range t.Columns() {
		if col.Kind == dataset.KindNumeric {
			schema.NumericFeatures = append(schema.NumericFeatures, col.Name)
		} else {
			schema.CategoricalFeatures = append(schema.CategoricalFeatures, col.Name)
		}
	}
	return schema
}
