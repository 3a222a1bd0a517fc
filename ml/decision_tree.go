package ml

import (
	"encoding/json"
	"errors"
	"os"
)

// DecisionTree is a fitted binary decision tree stored as a flat node
// array. Leaves carry per-class sample counts, so the tree can report a
// probability distribution as well as a label.
type DecisionTree struct {
	Nodes     []TreeNode `json:"nodes"`
	ClassList []int      `json:"classes"`
}

type TreeNode struct {
	FeatureIdx  int       `json:"feature_idx"`
	Threshold   float64   `json:"threshold"`
	LeftChild   int       `json:"left_child"`
	RightChild  int       `json:"right_child"`
	ClassCounts []float64 `json:"class_counts"`
	IsLeaf      bool      `json:"is_leaf"`
}

func (dt *DecisionTree) Predict(matrix [][]float64) ([]int, error) {
	labels := make([]int, len(matrix))
	for i, row := range matrix {
		counts, err := dt.leafCounts(row)
		if err != nil {
			return nil, err
		}
		labels[i] = dt.ClassList[argmax(counts)]
	}
	return labels, nil
}

func (dt *DecisionTree) PredictProba(matrix [][]float64) ([][]float64, error) {
	probs := make([][]float64, len(matrix))
	for i, row := range matrix {
		counts, err := dt.leafCounts(row)
		if err != nil {
			return nil, err
		}
		total := 0.0
		for _, c := range counts {
			total += c
		}
		if total == 0 {
			return nil, errors.New("leaf has no class counts")
		}
		dist := make([]float64, len(counts))
		for j, c := range counts {
			dist[j] = c / total
		}
		probs[i] = dist
	}
	return probs, nil
}

func (dt *DecisionTree) Classes() []int {
	out := make([]int, len(dt.ClassList))
	copy(out, dt.ClassList)
	return out
}

func (dt *DecisionTree) leafCounts(features []float64) ([]float64, error) {
	if len(dt.Nodes) == 0 {
		return nil, errors.New("model not fitted")
	}
	idx := 0
	for {
		node := dt.Nodes[idx]
		if node.IsLeaf {
			if len(node.ClassCounts) != len(dt.ClassList) {
				return nil, errors.New("leaf class counts do not match class list")
			}
			return node.ClassCounts, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return nil, errors.New("feature index out of range")
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(dt.Nodes) {
			return nil, errors.New("invalid tree state")
		}
	}
}

func (dt *DecisionTree) Save(path string) error {
	if len(dt.Nodes) == 0 {
		return errors.New("model not fitted")
	}
	payload, err := json.Marshal(dt)
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func (dt *DecisionTree) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var loaded DecisionTree
	if err := json.Unmarshal(payload, &loaded); err != nil {
		return err
	}
	if len(loaded.Nodes) == 0 || len(loaded.ClassList) == 0 {
		return errors.New("decision tree artifact is empty")
	}
	*dt = loaded
	return nil
}

func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
