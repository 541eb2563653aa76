package grading

import (
	"math"

	"github.com/shrimpsizemoose/betyg/internal/models"
	"github.com/shrimpsizemoose/betyg/internal/scale"
)

// ForType routes an aggregation to the right implementation for a grade
// type. Numeric types get numericFn over the parsed raw values. Letter
// grades get letterFn when one is supplied; otherwise every letter is
// converted on sc and numericFn runs on the converted values. This is the
// single policy point for type-aware summaries; min/max/mean below all
// delegate here rather than re-branching on the type.
func ForType(
	values []string,
	t models.GradeType,
	numericFn func([]float64) float64,
	letterFn func([]string) string,
	sc scale.Scale,
	filterMissing bool,
) (Result, error) {
	switch t {
	case models.GradeTypePoints, models.GradeTypeFourPoints, models.GradeTypePercent:
		vals := NumericValues(values)
		if filterMissing {
			vals = dropNaN(vals)
		}
		return Result{Number: numericFn(vals)}, nil
	case models.GradeTypeLetter:
		if letterFn != nil {
			// a label result carries no number
			return Result{Label: letterFn(values), Number: math.NaN()}, nil
		}
		vals := make([]float64, len(values))
		for i, v := range values {
			vals[i] = scale.LetterToNumber(v, sc)
		}
		if filterMissing {
			vals = dropNaN(vals)
		}
		return Result{Number: numericFn(vals)}, nil
	default:
		return Result{}, &UnknownGradeTypeError{Type: t}
	}
}

// MinForType finds the minimum grade. Numeric types compare raw values.
// Letters compare by band rank on the 4.0 scale, best grade first, and the
// original label of the extremal entry is returned; ties keep the first
// occurrence.
func MinForType(values []string, t models.GradeType, filterMissing bool) (Result, error) {
	return ForType(values, t, sliceMin, letterExtreme(true), scale.Points, filterMissing)
}

// MaxForType finds the maximum grade, the rank-wise counterpart of
// MinForType.
func MaxForType(values []string, t models.GradeType, filterMissing bool) (Result, error) {
	return ForType(values, t, sliceMax, letterExtreme(false), scale.Points, filterMissing)
}

// MeanForType averages grades of one type. Letters are converted to the
// 4.0 scale first (never the percentage scale) and the numeric mean is
// returned; callers convert back to a letter when display wants one.
func MeanForType(values []string, t models.GradeType, filterMissing bool) (Result, error) {
	mean := func(vals []float64) float64 {
		return UnweightedAverage(vals, false)
	}
	return ForType(values, t, mean, nil, scale.Points, filterMissing)
}

// LetterAverage is the 4.0-scale average of a set of letter grades,
// weighted when weights is non-nil.
func LetterAverage(letters []string, weights []float64) (float64, error) {
	vals := make([]float64, len(letters))
	for i, l := range letters {
		vals[i] = scale.LetterToPoints(l)
	}
	if weights != nil {
		return WeightedAverage(vals, weights, false)
	}
	return UnweightedAverage(vals, false), nil
}

func sliceMin(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	min := vals[0]
	for _, v := range vals[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

func sliceMax(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	max := vals[0]
	for _, v := range vals[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// letterExtreme picks the label ranked earliest (min) or latest (max) on
// the scale band order.
func letterExtreme(min bool) func([]string) string {
	return func(values []string) string {
		if len(values) == 0 {
			return ""
		}
		best := 0
		bestRank := scale.Rank(values[0], scale.Points)
		for i, v := range values[1:] {
			r := scale.Rank(v, scale.Points)
			if (min && r < bestRank) || (!min && r > bestRank) {
				best, bestRank = i+1, r
			}
		}
		return values[best]
	}
}
