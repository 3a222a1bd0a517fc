package ml

import (
	"errors"
	"fmt"
	"strconv"
)

// Detail is the uniform per-row prediction record. Confidence and
// Probabilities are present only when the underlying classifier exposes a
// probability distribution.
type Detail struct {
	Label         int                `json:"label"`
	Confidence    *float64           `json:"confidence,omitempty"`
	Probabilities map[string]float64 `json:"probabilities,omitempty"`
}

// Model binds a display name, a fitted classifier, the shared fitted
// scaler and held-out metrics into one inference adapter. It is immutable
// after construction and safe for concurrent use.
type Model struct {
	name          string
	metrics       map[string]float64
	schema        FeatureSchema
	scaler        *StandardScaler
	classifier    Classifier
	probabilistic ProbabilityClassifier
}

// NewModel constructs an adapter. Whether the classifier supports
// probability output is resolved here, once, not per call.
func NewModel(name string, classifier Classifier, scaler *StandardScaler, schema FeatureSchema, metrics map[string]float64) (*Model, error) {
	if name == "" {
		return nil, errors.New("model name is required")
	}
	if classifier == nil {
		return nil, errors.New("classifier is required")
	}
	if scaler == nil {
		return nil, errors.New("scaler is required")
	}
	if len(schema) == 0 {
		return nil, errors.New("feature schema is required")
	}
	if scaler.Columns() != schema.Len() {
		return nil, &ScalerShapeError{Expected: schema.Len(), Received: scaler.Columns()}
	}

	copied := make(map[string]float64, len(metrics))
	for key, value := range metrics {
		copied[key] = value
	}

	model := &Model{
		name:       name,
		metrics:    copied,
		schema:     schema,
		scaler:     scaler,
		classifier: classifier,
	}
	if probabilistic, ok := classifier.(ProbabilityClassifier); ok {
		model.probabilistic = probabilistic
	}
	return model, nil
}

func (m *Model) Name() string {
	return m.name
}

func (m *Model) Schema() FeatureSchema {
	return m.schema
}

func (m *Model) Metrics() map[string]float64 {
	out := make(map[string]float64, len(m.metrics))
	for key, value := range m.metrics {
		out[key] = value
	}
	return out
}

func (m *Model) SupportsProbabilities() bool {
	return m.probabilistic != nil
}

// scale normalizes raw input against the schema and applies the shared
// standardization transform. Validation errors propagate unchanged.
func (m *Model) scale(raw RawInput) ([][]float64, error) {
	matrix, err := raw.Normalize(m.schema)
	if err != nil {
		return nil, err
	}
	return m.scaler.Transform(matrix)
}

// Predict returns one label per input row, in input order.
func (m *Model) Predict(raw RawInput) ([]int, error) {
	scaled, err := m.scale(raw)
	if err != nil {
		return nil, err
	}
	return m.classifier.Predict(scaled)
}

// PredictProba returns one probability vector per input row, or nil when
// the bound classifier has no probability output. Capability absence is
// not an error.
func (m *Model) PredictProba(raw RawInput) ([][]float64, error) {
	if m.probabilistic == nil {
		return nil, nil
	}
	scaled, err := m.scale(raw)
	if err != nil {
		return nil, err
	}
	return m.probabilistic.PredictProba(scaled)
}

// PredictWithDetails is the canonical combined operation: one Detail per
// input row, in input order, with probability fields attached when the
// classifier supports them.
func (m *Model) PredictWithDetails(raw RawInput) ([]Detail, error) {
	scaled, err := m.scale(raw)
	if err != nil {
		return nil, err
	}

	labels, err := m.classifier.Predict(scaled)
	if err != nil {
		return nil, err
	}
	if len(labels) != len(scaled) {
		return nil, fmt.Errorf("classifier returned %d labels for %d rows", len(labels), len(scaled))
	}

	var probs [][]float64
	var classes []int
	if m.probabilistic != nil {
		probs, err = m.probabilistic.PredictProba(scaled)
		if err != nil {
			return nil, err
		}
		if len(probs) != len(scaled) {
			return nil, fmt.Errorf("classifier returned %d probability rows for %d rows", len(probs), len(scaled))
		}
		classes = m.probabilistic.Classes()
	}

	details := make([]Detail, len(labels))
	for i, label := range labels {
		detail := Detail{Label: label}
		if probs != nil {
			row := probs[i]
			if len(row) != len(classes) {
				return nil, fmt.Errorf("probability row has %d entries for %d classes", len(row), len(classes))
			}
			probMap := make(map[string]float64, len(row))
			confidence := 0.0
			for j, p := range row {
				probMap[strconv.Itoa(classes[j])] = p
				if p > confidence {
					confidence = p
				}
			}
			detail.Confidence = &confidence
			detail.Probabilities = probMap
		}
		details[i] = detail
	}
	return details, nil
}
