package ml

import (
	"math"
	"path/filepath"
	"testing"
)

func fittedLogistic() *LogisticRegression {
	return &LogisticRegression{
		Weights:   []float64{2, -1},
		Bias:      0.5,
		ClassList: []int{0, 1},
	}
}

func TestLogisticRegressionPredict(t *testing.T) {
	model := fittedLogistic()
	labels, err := model.Predict([][]float64{{2, 0}, {-2, 0}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if labels[0] != 1 || labels[1] != 0 {
		t.Fatalf("unexpected labels: %v", labels)
	}
}

func TestLogisticRegressionPredictProba(t *testing.T) {
	model := fittedLogistic()
	probs, err := model.PredictProba([][]float64{{0, 0.5}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// margin = 0.5 - 0.5 = 0, so both classes at exactly 0.5
	if math.Abs(probs[0][0]-0.5) > 1e-9 || math.Abs(probs[0][1]-0.5) > 1e-9 {
		t.Fatalf("unexpected probabilities: %v", probs[0])
	}
	sum := probs[0][0] + probs[0][1]
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("probabilities sum to %f", sum)
	}
}

func TestLogisticRegressionFeatureMismatch(t *testing.T) {
	model := fittedLogistic()
	if _, err := model.Predict([][]float64{{1, 2, 3}}); err == nil {
		t.Fatal("expected error for wrong feature count")
	}
}

func TestLinearSVMPredict(t *testing.T) {
	model := &LinearSVM{
		Weights:   []float64{1, 1},
		Bias:      -1,
		ClassList: []int{0, 1},
	}
	labels, err := model.Predict([][]float64{{1, 1}, {0, 0}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if labels[0] != 1 || labels[1] != 0 {
		t.Fatalf("unexpected labels: %v", labels)
	}
}

func TestLinearSVMHasNoProbabilityOutput(t *testing.T) {
	var clf Classifier = &LinearSVM{Weights: []float64{1}, ClassList: []int{0, 1}}
	if _, ok := clf.(ProbabilityClassifier); ok {
		t.Fatal("linear svm must not satisfy ProbabilityClassifier")
	}
}

func TestLinearModelSaveLoad(t *testing.T) {
	dir := t.TempDir()

	logisticPath := filepath.Join(dir, "logistic.json")
	logistic := fittedLogistic()
	if err := logistic.Save(logisticPath); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loadedLogistic := &LogisticRegression{}
	if err := loadedLogistic.Load(logisticPath); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loadedLogistic.Bias != 0.5 || len(loadedLogistic.Weights) != 2 {
		t.Fatalf("loaded logistic mismatch: %+v", loadedLogistic)
	}

	svmPath := filepath.Join(dir, "svm.json")
	svm := &LinearSVM{Weights: []float64{1, 1}, Bias: -1, ClassList: []int{0, 1}}
	if err := svm.Save(svmPath); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loadedSVM := &LinearSVM{}
	if err := loadedSVM.Load(svmPath); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loadedSVM.Bias != -1 {
		t.Fatalf("loaded svm mismatch: %+v", loadedSVM)
	}
}
