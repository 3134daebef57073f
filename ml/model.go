package ml

import "errors"

var (
	ErrModelNotLoaded = errors.New("model not loaded")
	ErrFeatureIndex   = errors.New("feature index out of range")
)

// Classifier predicts a discrete class for one feature row. Implementations are
// immutable after loading and safe for concurrent use.
type Classifier interface {
	Classify(features []float64) (int, error)
}

// Regressor predicts a continuous value for one feature row.
type Regressor interface {
	Regress(features []float64) (float64, error)
}
