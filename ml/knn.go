package ml

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"sort"
)

// KNN is a fitted k-nearest-neighbors classifier. The artifact stores the
// standardized training matrix and its labels; prediction is a majority
// vote over the K nearest points, probabilities are the vote shares.
type KNN struct {
	K         int         `json:"k"`
	Points    [][]float64 `json:"points"`
	Labels    []int       `json:"labels"`
	ClassList []int       `json:"classes"`
}

func (m *KNN) Predict(matrix [][]float64) ([]int, error) {
	labels := make([]int, len(matrix))
	for i, row := range matrix {
		votes, err := m.vote(row)
		if err != nil {
			return nil, err
		}
		labels[i] = m.ClassList[argmax(votes)]
	}
	return labels, nil
}

func (m *KNN) PredictProba(matrix [][]float64) ([][]float64, error) {
	probs := make([][]float64, len(matrix))
	for i, row := range matrix {
		votes, err := m.vote(row)
		if err != nil {
			return nil, err
		}
		dist := make([]float64, len(votes))
		for j, v := range votes {
			dist[j] = v / float64(m.K)
		}
		probs[i] = dist
	}
	return probs, nil
}

func (m *KNN) Classes() []int {
	out := make([]int, len(m.ClassList))
	copy(out, m.ClassList)
	return out
}

// vote returns the neighbor vote count per class, aligned to ClassList.
func (m *KNN) vote(features []float64) ([]float64, error) {
	if m.K <= 0 || len(m.Points) == 0 {
		return nil, errors.New("model not fitted")
	}
	if m.K > len(m.Points) {
		return nil, errors.New("k exceeds stored training points")
	}

	distances := make([]float64, len(m.Points))
	for i, point := range m.Points {
		if len(point) != len(features) {
			return nil, errors.New("feature count does not match training data")
		}
		sum := 0.0
		for j := range point {
			d := features[j] - point[j]
			sum += d * d
		}
		distances[i] = math.Sqrt(sum)
	}

	order := make([]int, len(distances))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return distances[order[a]] < distances[order[b]]
	})

	classIdx := make(map[int]int, len(m.ClassList))
	for i, class := range m.ClassList {
		classIdx[class] = i
	}

	votes := make([]float64, len(m.ClassList))
	for _, idx := range order[:m.K] {
		pos, ok := classIdx[m.Labels[idx]]
		if !ok {
			return nil, errors.New("training label missing from class list")
		}
		votes[pos]++
	}
	return votes, nil
}

func (m *KNN) Save(path string) error {
	if len(m.Points) == 0 {
		return errors.New("model not fitted")
	}
	payload, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func (m *KNN) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var loaded KNN
	if err := json.Unmarshal(payload, &loaded); err != nil {
		return err
	}
	if loaded.K <= 0 || len(loaded.Points) == 0 {
		return errors.New("knn artifact is empty")
	}
	if len(loaded.Points) != len(loaded.Labels) {
		return errors.New("knn artifact points/labels length mismatch")
	}
	*m = loaded
	return nil
}
