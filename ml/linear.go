package ml

import (
	"encoding/json"
	"errors"
	"math"
	"os"
)

// LogisticRegression is a fitted binary logistic model. ClassList holds
// the negative class first, the positive class second, matching the
// column order of PredictProba output.
type LogisticRegression struct {
	Weights   []float64 `json:"weights"`
	Bias      float64   `json:"bias"`
	ClassList []int     `json:"classes"`
}

func (m *LogisticRegression) Predict(matrix [][]float64) ([]int, error) {
	labels := make([]int, len(matrix))
	for i, row := range matrix {
		p, err := m.positiveProbability(row)
		if err != nil {
			return nil, err
		}
		if p >= 0.5 {
			labels[i] = m.ClassList[1]
		} else {
			labels[i] = m.ClassList[0]
		}
	}
	return labels, nil
}

func (m *LogisticRegression) PredictProba(matrix [][]float64) ([][]float64, error) {
	probs := make([][]float64, len(matrix))
	for i, row := range matrix {
		p, err := m.positiveProbability(row)
		if err != nil {
			return nil, err
		}
		probs[i] = []float64{1 - p, p}
	}
	return probs, nil
}

func (m *LogisticRegression) Classes() []int {
	out := make([]int, len(m.ClassList))
	copy(out, m.ClassList)
	return out
}

func (m *LogisticRegression) positiveProbability(features []float64) (float64, error) {
	margin, err := decision(m.Weights, m.Bias, features)
	if err != nil {
		return 0, err
	}
	return 1 / (1 + math.Exp(-margin)), nil
}

func (m *LogisticRegression) Save(path string) error {
	return saveLinear(m, len(m.Weights), path)
}

func (m *LogisticRegression) Load(path string) error {
	var loaded LogisticRegression
	if err := loadLinear(path, &loaded, func() bool {
		return len(loaded.Weights) > 0 && len(loaded.ClassList) == 2
	}); err != nil {
		return err
	}
	*m = loaded
	return nil
}

// LinearSVM is a fitted maximum-margin linear classifier. It reports the
// sign of the margin only; it has no calibrated probability output.
type LinearSVM struct {
	Weights   []float64 `json:"weights"`
	Bias      float64   `json:"bias"`
	ClassList []int     `json:"classes"`
}

func (m *LinearSVM) Predict(matrix [][]float64) ([]int, error) {
	labels := make([]int, len(matrix))
	for i, row := range matrix {
		margin, err := decision(m.Weights, m.Bias, row)
		if err != nil {
			return nil, err
		}
		if margin >= 0 {
			labels[i] = m.ClassList[1]
		} else {
			labels[i] = m.ClassList[0]
		}
	}
	return labels, nil
}

func (m *LinearSVM) Save(path string) error {
	return saveLinear(m, len(m.Weights), path)
}

func (m *LinearSVM) Load(path string) error {
	var loaded LinearSVM
	if err := loadLinear(path, &loaded, func() bool {
		return len(loaded.Weights) > 0 && len(loaded.ClassList) == 2
	}); err != nil {
		return err
	}
	*m = loaded
	return nil
}

func decision(weights []float64, bias float64, features []float64) (float64, error) {
	if len(weights) == 0 {
		return 0, errors.New("model not fitted")
	}
	if len(features) != len(weights) {
		return 0, errors.New("feature count does not match model weights")
	}
	margin := bias
	for i, w := range weights {
		margin += w * features[i]
	}
	return margin, nil
}

func saveLinear(model interface{}, weightCount int, path string) error {
	if weightCount == 0 {
		return errors.New("model not fitted")
	}
	payload, err := json.Marshal(model)
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func loadLinear(path string, target interface{}, valid func() bool) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(payload, target); err != nil {
		return err
	}
	if !valid() {
		return errors.New("linear model artifact is invalid")
	}
	return nil
}
