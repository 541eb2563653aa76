// Package scale defines the letter-grade scales and conversions between
// letters and numbers on them.
package scale

import (
	"fmt"
	"math"
)

// Incomplete is the label returned for missing (NaN) grades.
const Incomplete = "I"

// Band maps one letter label to its canonical value and the half-open
// numeric range [Min, Max) that maps back to it.
type Band struct {
	Label string
	Value float64
	Max   float64 // exclusive
	Min   float64 // inclusive
}

// Scale is an ordered list of bands, best grade first. The terminal
// Incomplete band carries inverted infinite bounds so that no finite value
// ever falls into it; it exists only as the target for NaN inputs.
type Scale struct {
	Name  string
	Bands []Band
}

// Points is the 4.0-point scale.
var Points = Scale{
	Name: "points",
	Bands: []Band{
		{"A+", 4.2, 5.0, 4.2},
		{"A", 4.0, 4.2, 3.85},
		{"A-", 3.7, 3.85, 3.5},
		{"B+", 3.3, 3.5, 3.15},
		{"B", 3.0, 3.15, 2.85},
		{"B-", 2.7, 2.85, 2.5},
		{"C+", 2.3, 2.5, 2.15},
		{"C", 2.0, 2.15, 1.85},
		{"C-", 1.7, 1.85, 1.5},
		{"D+", 1.3, 1.5, 1.15},
		{"D", 1.0, 1.15, 0.85},
		{"D-", 0.7, 0.85, 0.3},
		{"F", 0.0, 0.3, -1.0},
		{Incomplete, math.NaN(), math.Inf(-1), math.Inf(1)},
	},
}

// Percent is the percentage scale. The A+ band is deliberately wide so
// that bonus values above 100 still map to A+.
var Percent = Scale{
	Name: "percent",
	Bands: []Band{
		{"A+", 100, 200, 97},
		{"A", 95, 97, 94},
		{"A-", 92, 94, 90},
		{"B+", 88, 90, 87},
		{"B", 85, 87, 84},
		{"B-", 82, 84, 80},
		{"C+", 78, 80, 77},
		{"C", 75, 77, 74},
		{"C-", 72, 74, 70},
		{"D+", 68, 70, 67},
		{"D", 65, 67, 64},
		{"D-", 62, 64, 60},
		{"F", 58, 60, 0},
		{Incomplete, math.NaN(), math.Inf(-1), math.Inf(1)},
	},
}

func init() {
	if err := Points.validate(); err != nil {
		panic(err)
	}
	if err := Percent.validate(); err != nil {
		panic(err)
	}
}

// validate checks the construction invariant: finite bands are contiguous,
// non-overlapping and in descending order, and the scale terminates with
// the Incomplete sentinel.
func (s Scale) validate() error {
	if len(s.Bands) < 2 {
		return fmt.Errorf("scale %s: too few bands", s.Name)
	}
	last := s.Bands[len(s.Bands)-1]
	if last.Label != Incomplete || !math.IsNaN(last.Value) {
		return fmt.Errorf("scale %s: missing Incomplete sentinel band", s.Name)
	}
	finite := s.Bands[:len(s.Bands)-1]
	for i, b := range finite {
		if b.Min >= b.Max {
			return fmt.Errorf("scale %s: band %s has empty range [%v, %v)", s.Name, b.Label, b.Min, b.Max)
		}
		if b.Value < b.Min || b.Value >= b.Max {
			return fmt.Errorf("scale %s: band %s value %v outside its own range", s.Name, b.Label, b.Value)
		}
		if i > 0 && finite[i-1].Min != b.Max {
			return fmt.Errorf("scale %s: gap or overlap between %s and %s", s.Name, finite[i-1].Label, b.Label)
		}
	}
	return nil
}

// MaxValue is the exclusive upper bound of the scale's finite range.
func (s Scale) MaxValue() float64 {
	return s.Bands[0].Max
}

// MinValue is the inclusive lower bound of the scale's finite range.
func (s Scale) MinValue() float64 {
	return s.Bands[len(s.Bands)-2].Min
}

// RangeError reports a finite value that falls outside every band of a
// scale.
type RangeError struct {
	Value float64
	Scale string
	Max   float64
	Min   float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("value %v not on scale %s with max=%v and min=%v", e.Value, e.Scale, e.Max, e.Min)
}

// LetterToNumber converts a letter grade to its canonical value on the
// given scale. Unknown letters yield NaN, never an error.
func LetterToNumber(letter string, s Scale) float64 {
	for _, b := range s.Bands {
		if b.Label == letter {
			return b.Value
		}
	}
	return math.NaN()
}

// NumberToLetter converts a number to the letter of the first band whose
// range contains it. NaN maps to the Incomplete label before any band is
// consulted. A finite value outside every band is a *RangeError.
func NumberToLetter(n float64, s Scale) (string, error) {
	if math.IsNaN(n) {
		return Incomplete, nil
	}
	for _, b := range s.Bands {
		if b.Min <= n && n < b.Max {
			return b.Label, nil
		}
	}
	return "", &RangeError{Value: n, Scale: s.Name, Max: s.MaxValue(), Min: s.MinValue()}
}

// LetterToPoints converts a letter grade to the 4.0 scale.
func LetterToPoints(letter string) float64 {
	return LetterToNumber(letter, Points)
}

// LetterToPercent converts a letter grade to a percentage.
func LetterToPercent(letter string) float64 {
	return LetterToNumber(letter, Percent)
}

// PointsToLetter converts a 4.0-scale value to a letter grade.
func PointsToLetter(p float64) (string, error) {
	return NumberToLetter(p, Points)
}

// PercentToLetter converts a percentage to a letter grade.
func PercentToLetter(p float64) (string, error) {
	return NumberToLetter(p, Percent)
}

// Rank returns the band index of a letter on the scale, with the best
// grade ranked 0. Unknown letters rank below every band.
func Rank(letter string, s Scale) int {
	for i, b := range s.Bands {
		if b.Label == letter {
			return i
		}
	}
	return len(s.Bands)
}
