package ml

// Classifier predicts one integer label per row of a standardized matrix.
type Classifier interface {
	Predict(matrix [][]float64) ([]int, error)
}

// ProbabilityClassifier is a Classifier that also exposes a per-class
// probability distribution. Classes defines the column order of the
// matrices returned by PredictProba.
type ProbabilityClassifier interface {
	Classifier
	PredictProba(matrix [][]float64) ([][]float64, error)
	Classes() []int
}
