package ml

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyInput is returned when a request carries no rows at all.
var ErrEmptyInput = errors.New("no input records provided")

// MissingFeaturesError lists required feature names absent from a record,
// in schema order.
type MissingFeaturesError struct {
	Missing []string
}

func (e *MissingFeaturesError) Error() string {
	return fmt.Sprintf("missing features: %s", strings.Join(e.Missing, ", "))
}

// ShapeMismatchError reports a raw matrix row whose column count does not
// match the feature schema.
type ShapeMismatchError struct {
	Expected int
	Received int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("shape mismatch: expected %d columns, received %d", e.Expected, e.Received)
}

// NonNumericError reports a feature value that could not be coerced to a
// float. Feature names the column; Value carries the raw text.
type NonNumericError struct {
	Feature string
	Value   string
}

func (e *NonNumericError) Error() string {
	if e.Feature == "" {
		return "all feature values must be numeric"
	}
	return fmt.Sprintf("non-numeric value %q for feature %s", e.Value, e.Feature)
}

// ScalerShapeError means the fitted scaler disagrees with the schema on
// column count. This is a wiring fault, not a client error.
type ScalerShapeError struct {
	Expected int
	Received int
}

func (e *ScalerShapeError) Error() string {
	return fmt.Sprintf("scaler expects %d columns, matrix has %d", e.Expected, e.Received)
}

// IsValidationError reports whether err is recoverable by the caller
// correcting the request. ScalerShapeError is deliberately excluded: it
// indicates a broken deployment and must surface as a server fault.
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrEmptyInput) {
		return true
	}
	var missing *MissingFeaturesError
	var shape *ShapeMismatchError
	var nonNumeric *NonNumericError
	var outOfRange *OutOfRangeError
	return errors.As(err, &missing) || errors.As(err, &shape) ||
		errors.As(err, &nonNumeric) || errors.As(err, &outOfRange)
}
