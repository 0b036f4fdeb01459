package ml

import "errors"

var (
	// ErrInvalidInput marks caller mistakes: missing target column, empty
	// dataset, malformed records. Never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTrainingFailed marks a classifier that could not be fit on the
	// given data, e.g. a diverging loss on degenerate input.
	ErrTrainingFailed = errors.New("training failed")
)
