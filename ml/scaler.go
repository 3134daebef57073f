package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// StandardScaler applies a standardisation fitted at training time:
// (x - mean) / scale per column.
type StandardScaler struct {
	Mean         []float64 `json:"mean"`
	Scale        []float64 `json:"scale"`
	FeatureNames []string  `json:"feature_names,omitempty"`
}

func LoadStandardScaler(path string) (*StandardScaler, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var scaler StandardScaler
	if err := json.Unmarshal(payload, &scaler); err != nil {
		return nil, err
	}
	if err := scaler.validate(); err != nil {
		return nil, err
	}
	return &scaler, nil
}

func (s *StandardScaler) validate() error {
	if len(s.Mean) == 0 {
		return errors.New("scaler has no columns")
	}
	if len(s.Mean) != len(s.Scale) {
		return fmt.Errorf("scaler mean has %d columns, scale has %d", len(s.Mean), len(s.Scale))
	}
	if len(s.FeatureNames) != 0 && len(s.FeatureNames) != len(s.Mean) {
		return fmt.Errorf("scaler names %d columns, fitted on %d", len(s.FeatureNames), len(s.Mean))
	}
	return nil
}

// CheckColumns verifies the scaler was fitted on exactly the given columns.
func (s *StandardScaler) CheckColumns(names []string) error {
	if len(names) != len(s.Mean) {
		return fmt.Errorf("scaler fitted on %d columns, row has %d", len(s.Mean), len(names))
	}
	if len(s.FeatureNames) == 0 {
		return nil
	}
	for i, name := range names {
		if s.FeatureNames[i] != name {
			return fmt.Errorf("scaler column %d is %q, row has %q", i, s.FeatureNames[i], name)
		}
	}
	return nil
}

// Transform returns a standardised copy of row. A zero scale leaves the
// centred value unscaled.
func (s *StandardScaler) Transform(row []float64) ([]float64, error) {
	if len(row) != len(s.Mean) {
		return nil, fmt.Errorf("scaler fitted on %d columns, row has %d", len(s.Mean), len(row))
	}
	out := make([]float64, len(row))
	for i, v := range row {
		scale := s.Scale[i]
		if scale == 0 {
			scale = 1
		}
		out[i] = (v - s.Mean[i]) / scale
	}
	return out, nil
}
