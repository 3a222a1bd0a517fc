package ml

import (
	"encoding/json"
	"errors"
	"os"
)

// StandardScaler applies per-column standardization using moments fitted
// offline. It is read-only after load and safe for concurrent use.
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// Transform standardizes every row of matrix as (x - mean) / scale.
// The input matrix is not modified.
func (s *StandardScaler) Transform(matrix [][]float64) ([][]float64, error) {
	if len(s.Mean) == 0 || len(s.Mean) != len(s.Scale) {
		return nil, errors.New("scaler not fitted")
	}

	out := make([][]float64, len(matrix))
	for i, row := range matrix {
		if len(row) != len(s.Mean) {
			return nil, &ScalerShapeError{Expected: len(s.Mean), Received: len(row)}
		}
		scaled := make([]float64, len(row))
		for j, value := range row {
			divisor := s.Scale[j]
			if divisor == 0 {
				divisor = 1
			}
			scaled[j] = (value - s.Mean[j]) / divisor
		}
		out[i] = scaled
	}
	return out, nil
}

// Columns returns the number of features the scaler was fitted on.
func (s *StandardScaler) Columns() int {
	return len(s.Mean)
}

func (s *StandardScaler) Save(path string) error {
	if len(s.Mean) == 0 {
		return errors.New("scaler not fitted")
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func (s *StandardScaler) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var loaded StandardScaler
	if err := json.Unmarshal(payload, &loaded); err != nil {
		return err
	}
	if len(loaded.Mean) != len(loaded.Scale) {
		return errors.New("scaler artifact mean/scale length mismatch")
	}
	*s = loaded
	return nil
}
