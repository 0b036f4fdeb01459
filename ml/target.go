package ml

import (
	"fmt"

	"attrition/dataset"
)

// deriveTarget maps the target column to {0,1} labels. A categorical column
// maps cells equal to positiveLabel to 1 and everything else to 0; a numeric
// column maps any non-zero value to 1. Missing target cells are an input
// error: a row without an outcome cannot be trained on.
func deriveTarget(col *dataset.Column, positiveLabel string) ([]int, error) {
	labels := make([]int, len(col.Values))
	for i, cell := range col.Values {
		if dataset.IsMissing(cell) {
			return nil, fmt.Errorf("%w: target column %q has a missing value at row %d", ErrInvalidInput, col.Name, i)
		}
		if col.Kind == dataset.KindNumeric {
			v, ok := dataset.ParseNumeric(cell)
			if !ok {
				return nil, fmt.Errorf("%w: target column %q has non-numeric value %q at row %d", ErrInvalidInput, col.Name, cell, i)
			}
			if v != 0 {
				labels[i] = 1
			}
			continue
		}
		if cell == positiveLabel {
			labels[i] = 1
		}
	}
	return labels, nil
}
