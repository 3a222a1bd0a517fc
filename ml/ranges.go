package ml

import "fmt"

// FeatureRange bounds a feature value at the service boundary. A nil Max
// means the feature is unbounded above.
type FeatureRange struct {
	Min float64
	Max *float64
}

// OutOfRangeError reports a feature value outside its declared range.
type OutOfRangeError struct {
	Feature string
	Value   float64
	Range   FeatureRange
}

func (e *OutOfRangeError) Error() string {
	if e.Range.Max == nil {
		return fmt.Sprintf("feature %s value %g below minimum %g", e.Feature, e.Value, e.Range.Min)
	}
	return fmt.Sprintf("feature %s value %g outside range [%g, %g]", e.Feature, e.Value, e.Range.Min, *e.Range.Max)
}

func upTo(max float64) *float64 {
	return &max
}

// HeartFeatureRanges returns the declared bounds for the canonical heart
// schema, matching the ranges documented for the Cleveland dataset.
func HeartFeatureRanges() map[string]FeatureRange {
	return map[string]FeatureRange{
		"age":     {Min: 0},
		"sex":     {Min: 0, Max: upTo(1)},
		"cp":      {Min: 0, Max: upTo(4)},
		"thalach": {Min: 0},
		"exang":   {Min: 0, Max: upTo(1)},
		"oldpeak": {Min: 0},
		"slope":   {Min: 0, Max: upTo(3)},
		"ca":      {Min: 0, Max: upTo(4)},
		"thal":    {Min: 0, Max: upTo(7)},
	}
}

// ValidateRanges normalizes raw input and checks every cell against the
// declared bounds. Normalization errors propagate unchanged.
func ValidateRanges(raw RawInput, schema FeatureSchema, ranges map[string]FeatureRange) error {
	matrix, err := raw.Normalize(schema)
	if err != nil {
		return err
	}
	for _, row := range matrix {
		for j, value := range row {
			bounds, ok := ranges[schema[j]]
			if !ok {
				continue
			}
			if value < bounds.Min || (bounds.Max != nil && value > *bounds.Max) {
				return &OutOfRangeError{Feature: schema[j], Value: value, Range: bounds}
			}
		}
	}
	return nil
}
