package ml

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"testing"
)

func testSchema() FeatureSchema {
	return FeatureSchema{"x", "y"}
}

func identityScaler() *StandardScaler {
	return &StandardScaler{Mean: []float64{0, 0}, Scale: []float64{1, 1}}
}

func probabilisticModel(t *testing.T) *Model {
	t.Helper()
	model, err := NewModel("Decision Tree", fittedTree(), identityScaler(), testSchema(), map[string]float64{"accuracy": 0.83})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return model
}

func labelOnlyModel(t *testing.T) *Model {
	t.Helper()
	svm := &LinearSVM{Weights: []float64{1, 1}, Bias: -1, ClassList: []int{0, 1}}
	model, err := NewModel("Linear SVM", svm, identityScaler(), testSchema(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return model
}

func TestModelCapabilityResolvedAtConstruction(t *testing.T) {
	if !probabilisticModel(t).SupportsProbabilities() {
		t.Fatal("decision tree model should support probabilities")
	}
	if labelOnlyModel(t).SupportsProbabilities() {
		t.Fatal("linear svm model should not support probabilities")
	}
}

func TestModelScalerSchemaMismatch(t *testing.T) {
	scaler := &StandardScaler{Mean: []float64{0}, Scale: []float64{1}}
	_, err := NewModel("bad", fittedTree(), scaler, testSchema(), nil)
	var shape *ScalerShapeError
	if !errors.As(err, &shape) {
		t.Fatalf("expected ScalerShapeError, got %v", err)
	}
}

func TestPredictWithDetailsRowCountAndOrder(t *testing.T) {
	model := probabilisticModel(t)
	input := NewMatrixInput([][]float64{{0.2, 0}, {0.8, 0}, {0.1, 0}})

	details, err := model.PredictWithDetails(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(details) != 3 {
		t.Fatalf("expected 3 details, got %d", len(details))
	}
	if details[0].Label != 0 || details[1].Label != 1 || details[2].Label != 0 {
		t.Fatalf("row order not preserved: %+v", details)
	}
}

func TestPredictWithDetailsProbabilityInvariants(t *testing.T) {
	model := probabilisticModel(t)
	details, err := model.PredictWithDetails(NewMatrixInput([][]float64{{0.2, 0}}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	detail := details[0]
	if detail.Confidence == nil || detail.Probabilities == nil {
		t.Fatalf("expected probability fields, got %+v", detail)
	}
	if len(detail.Probabilities) != 2 {
		t.Fatalf("unexpected probability keys: %v", detail.Probabilities)
	}

	sum := 0.0
	max := 0.0
	for _, key := range []string{"0", "1"} {
		p, ok := detail.Probabilities[key]
		if !ok {
			t.Fatalf("missing class key %q: %v", key, detail.Probabilities)
		}
		if p < 0 || p > 1 {
			t.Fatalf("probability out of range: %f", p)
		}
		sum += p
		if p > max {
			max = p
		}
	}
	if math.Abs(sum-1) > 1e-6 {
		t.Fatalf("probabilities sum to %f", sum)
	}
	if *detail.Confidence != max {
		t.Fatalf("confidence %f != max probability %f", *detail.Confidence, max)
	}
}

func TestPredictWithDetailsLabelOnly(t *testing.T) {
	model := labelOnlyModel(t)
	details, err := model.PredictWithDetails(NewMatrixInput([][]float64{{1, 1}, {0, 0}}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, detail := range details {
		if detail.Confidence != nil || detail.Probabilities != nil {
			t.Fatalf("label-only model leaked probability fields: %+v", detail)
		}
	}

	payload, err := json.Marshal(details[0])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if _, ok := decoded["confidence"]; ok {
		t.Fatal("confidence must be omitted for label-only models")
	}
	if _, ok := decoded["probabilities"]; ok {
		t.Fatal("probabilities must be omitted for label-only models")
	}
}

func TestPredictProbaNilForLabelOnly(t *testing.T) {
	model := labelOnlyModel(t)
	probs, err := model.PredictProba(NewMatrixInput([][]float64{{1, 1}}))
	if err != nil {
		t.Fatalf("capability absence must not be an error, got %v", err)
	}
	if probs != nil {
		t.Fatalf("expected nil probabilities, got %v", probs)
	}
}

func TestMatrixAndRecordInputsEquivalent(t *testing.T) {
	model := probabilisticModel(t)
	fromMatrix, err := model.PredictWithDetails(NewMatrixInput([][]float64{{0.2, 0.7}}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fromRecord, err := model.PredictWithDetails(NewRecordInput(map[string]interface{}{"x": 0.2, "y": 0.7}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(fromMatrix, fromRecord) {
		t.Fatalf("matrix and record inputs diverge: %+v vs %+v", fromMatrix, fromRecord)
	}
}

func TestPredictWithDetailsDeterministic(t *testing.T) {
	model := probabilisticModel(t)
	input := NewMatrixInput([][]float64{{0.2, 0}, {0.8, 0}})

	first, err := model.PredictWithDetails(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := model.PredictWithDetails(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	firstJSON, _ := json.Marshal(first)
	secondJSON, _ := json.Marshal(second)
	if string(firstJSON) != string(secondJSON) {
		t.Fatalf("repeated calls differ: %s vs %s", firstJSON, secondJSON)
	}
}

func TestPredictPropagatesValidationErrors(t *testing.T) {
	model := probabilisticModel(t)

	if _, err := model.Predict(NewRecordsInput(nil)); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}

	_, err := model.Predict(NewRecordInput(map[string]interface{}{"x": 1.0}))
	var missing *MissingFeaturesError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingFeaturesError, got %v", err)
	}
	if !IsValidationError(err) {
		t.Fatal("missing features must classify as a validation error")
	}
}

func TestMetricsCopiedNotShared(t *testing.T) {
	metrics := map[string]float64{"accuracy": 0.9}
	model, err := NewModel("KNN", fittedKNN(), identityScaler(), testSchema(), metrics)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	metrics["accuracy"] = 0.1
	if model.Metrics()["accuracy"] != 0.9 {
		t.Fatal("metrics must be captured at construction")
	}
	got := model.Metrics()
	got["accuracy"] = 0.2
	if model.Metrics()["accuracy"] != 0.9 {
		t.Fatal("metrics accessor must return a copy")
	}
}
