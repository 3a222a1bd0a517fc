package ml

// FeatureSchema is the ordered list of feature names every classifier expects.
// Column order of every normalized matrix follows this order exactly.
type FeatureSchema []string

// HeartFeatureNames returns the canonical feature order for the Cleveland
// heart-disease dataset subset served by this service.
func HeartFeatureNames() FeatureSchema {
	return FeatureSchema{
		"age",
		"sex",
		"cp",
		"thalach",
		"exang",
		"oldpeak",
		"slope",
		"ca",
		"thal",
	}
}

func (s FeatureSchema) Len() int {
	return len(s)
}

func (s FeatureSchema) Names() []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
