package ml

import (
	"math"
	"path/filepath"
	"testing"
)

func fittedKNN() *KNN {
	return &KNN{
		K: 3,
		Points: [][]float64{
			{0.1, 0.2},
			{0.2, 0.1},
			{0.15, 0.25},
			{0.9, 0.8},
			{0.8, 0.9},
			{0.85, 0.95},
		},
		Labels:    []int{0, 0, 0, 1, 1, 1},
		ClassList: []int{0, 1},
	}
}

func TestKNNPredict(t *testing.T) {
	model := fittedKNN()
	labels, err := model.Predict([][]float64{{0.12, 0.18}, {0.88, 0.92}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if labels[0] != 0 || labels[1] != 1 {
		t.Fatalf("unexpected labels: %v", labels)
	}
}

func TestKNNPredictProba(t *testing.T) {
	model := fittedKNN()
	probs, err := model.PredictProba([][]float64{{0.12, 0.18}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(probs) != 1 || len(probs[0]) != 2 {
		t.Fatalf("unexpected proba shape: %v", probs)
	}
	sum := probs[0][0] + probs[0][1]
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("probabilities sum to %f", sum)
	}
	if probs[0][0] != 1 {
		t.Fatalf("expected unanimous vote for class 0, got %v", probs[0])
	}
}

func TestKNNMixedNeighborhoodVoteShares(t *testing.T) {
	model := fittedKNN()
	model.Points = append(model.Points, []float64{0.11, 0.19})
	model.Labels = append(model.Labels, 1)

	probs, err := model.PredictProba([][]float64{{0.12, 0.18}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 1.0 / 3.0
	if math.Abs(probs[0][1]-want) > 1e-9 {
		t.Fatalf("expected vote share %f for class 1, got %f", want, probs[0][1])
	}
}

func TestKNNSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "knn.json")
	model := fittedKNN()
	if err := model.Save(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded := &KNN{}
	if err := loaded.Load(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	labels, err := loaded.Predict([][]float64{{0.9, 0.9}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if labels[0] != 1 {
		t.Fatalf("expected label 1, got %d", labels[0])
	}
}

func TestKNNUnfitted(t *testing.T) {
	model := &KNN{}
	if _, err := model.Predict([][]float64{{0, 0}}); err == nil {
		t.Fatal("expected error for unfitted model")
	}
}
