// Package grading holds the aggregation primitives used by calculation
// functions and reports: averages, weight normalization, and the
// grade-type dispatcher.
package grading

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/shrimpsizemoose/betyg/internal/models"
)

// ErrMismatchedLengths reports co-indexed slices of different lengths.
var ErrMismatchedLengths = errors.New("values and weights differ in length")

// UnknownGradeTypeError reports a grade type outside the closed enum.
type UnknownGradeTypeError struct {
	Type models.GradeType
}

func (e *UnknownGradeTypeError) Error() string {
	return fmt.Sprintf("unknown grade type: %q", string(e.Type))
}

// Result is a type-dispatched aggregate: a letter label for letter-specific
// calculations, a number for everything else.
type Result struct {
	Number float64
	Label  string
}

func (r Result) IsLabel() bool {
	return r.Label != ""
}

// String renders the result for display: the label if present, the number
// otherwise, and empty for NaN (an unavailable value, not a zero).
func (r Result) String() string {
	if r.Label != "" {
		return r.Label
	}
	if math.IsNaN(r.Number) {
		return ""
	}
	return strconv.FormatFloat(r.Number, 'g', -1, 64)
}

func dropNaN(vals []float64) []float64 {
	out := vals[:0:0]
	for _, v := range vals {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// UnweightedAverage is the arithmetic mean. With filterMissing, NaN entries
// are removed first. An empty input (after filtering) yields NaN, never a
// division by zero.
func UnweightedAverage(vals []float64, filterMissing bool) float64 {
	if filterMissing {
		vals = dropNaN(vals)
	}
	if len(vals) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// WeightedAverage is the sum of vals[i]*weights[i]. It does not check that
// weights sum to 1 and does not normalize: calculation functions rely on
// passing raw point values as weights. With filterMissing, pairs whose
// value is NaN are removed first. Empty input yields NaN.
func WeightedAverage(vals, weights []float64, filterMissing bool) (float64, error) {
	if filterMissing {
		fv := vals[:0:0]
		fw := weights[:0:0]
		for i, v := range vals {
			if math.IsNaN(v) {
				continue
			}
			fv = append(fv, v)
			if i < len(weights) {
				fw = append(fw, weights[i])
			}
		}
		vals, weights = fv, fw
	}
	if len(vals) != len(weights) {
		return 0, ErrMismatchedLengths
	}
	if len(vals) == 0 {
		return math.NaN(), nil
	}
	var sum float64
	for i, v := range vals {
		sum += v * weights[i]
	}
	return sum, nil
}

// WeightsFromPoints converts absolute point values to fractions of their
// sum. A zero sum yields NaN in every position rather than infinities.
func WeightsFromPoints(points []float64) []float64 {
	var sum float64
	for _, p := range points {
		sum += p
	}
	out := make([]float64, len(points))
	for i, p := range points {
		if sum == 0 {
			out[i] = math.NaN()
		} else {
			out[i] = p / sum
		}
	}
	return out
}

// Unpack extracts co-indexed values, weights, types and assignment names
// from grade rows, skipping previously calculated (CALC weight) rows.
func Unpack(rows []models.GradeRow) (values []string, weights []models.Weight, types []models.GradeType, names []string) {
	for _, r := range rows {
		if r.Weight.IsCalculated() {
			continue
		}
		values = append(values, r.RawValue())
		weights = append(weights, r.Weight)
		types = append(types, r.GradeType)
		names = append(names, r.AssignmentName)
	}
	return values, weights, types, names
}

// NumericValues parses raw grade values as numbers, NaN where parsing
// fails (letters, blanks).
func NumericValues(values []string) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			out[i] = math.NaN()
		} else {
			out[i] = f
		}
	}
	return out
}
