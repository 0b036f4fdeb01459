package ml

import (
	"reflect"
	"testing"
)

func separableData() ([][]float64, []int) {
	features := [][]float64{
		{1, 0}, {2, 1}, {1.5, 0}, {2.5, 1},
		{8, 10}, {9, 11}, {8.5, 10}, {9.5, 12},
	}
	labels := []int{0, 0, 0, 0, 1, 1, 1, 1}
	return features, labels
}

func TestLogisticRegressionFitPredict(t *testing.T) {
	features, labels := separableData()

	model := &LogisticRegression{}
	if err := model.Fit(features, labels, DefaultFitOptions()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, row := range features {
		label, proba := model.Predict(row)
		if label != labels[i] {
			t.Fatalf("row %d: expected label %d, got %d (p=%f)", i, labels[i], label, proba)
		}
		if proba < 0 || proba > 1 {
			t.Fatalf("probability out of range: %f", proba)
		}
	}
}

func TestLogisticRegressionDeterministic(t *testing.T) {
	features, labels := separableData()

	a := &LogisticRegression{}
	b := &LogisticRegression{}
	if err := a.Fit(features, labels, DefaultFitOptions()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.Fit(features, labels, DefaultFitOptions()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(a.Weights, b.Weights) || a.Bias != b.Bias {
		t.Fatal("expected identical fits for identical inputs")
	}
}

func TestLogisticRegressionSingleClass(t *testing.T) {
	features := [][]float64{{1}, {2}, {3}}
	labels := []int{0, 0, 0}

	model := &LogisticRegression{}
	if err := model.Fit(features, labels, DefaultFitOptions()); err != nil {
		t.Fatalf("single-class training should not fail: %v", err)
	}
	label, _ := model.Predict([]float64{2})
	if label != 0 {
		t.Fatalf("expected majority label 0, got %d", label)
	}
}

func TestLogisticRegressionRejectsBadInput(t *testing.T) {
	model := &LogisticRegression{}
	if err := model.Fit(nil, nil, DefaultFitOptions()); err == nil {
		t.Fatal("expected error for empty training set")
	}
	if err := model.Fit([][]float64{{1}}, []int{0, 1}, DefaultFitOptions()); err == nil {
		t.Fatal("expected error for size mismatch")
	}
}
