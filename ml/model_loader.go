package ml

import (
	"errors"
)

// LoadClassifier loads a fitted classifier artifact of the given type.
func LoadClassifier(modelType, path string) (Classifier, error) {
	switch modelType {
	case "knn":
		model := &KNN{}
		if err := model.Load(path); err != nil {
			return nil, err
		}
		return model, nil
	case "decision_tree":
		model := &DecisionTree{}
		if err := model.Load(path); err != nil {
			return nil, err
		}
		return model, nil
	case "logistic":
		model := &LogisticRegression{}
		if err := model.Load(path); err != nil {
			return nil, err
		}
		return model, nil
	case "linear_svm":
		model := &LinearSVM{}
		if err := model.Load(path); err != nil {
			return nil, err
		}
		return model, nil
	default:
		return nil, errors.New("unsupported model type")
	}
}

// LoadScaler loads the shared fitted scaler artifact.
func LoadScaler(path string) (*StandardScaler, error) {
	scaler := &StandardScaler{}
	if err := scaler.Load(path); err != nil {
		return nil, err
	}
	return scaler, nil
}
