package models

import (
	"math"
	"strconv"
)

// GradeType is the closed set of value kinds a grade or assignment can carry.
type GradeType string

const (
	GradeTypeLetter     GradeType = "letter"
	GradeTypePoints     GradeType = "points"
	GradeTypeFourPoints GradeType = "4points"
	GradeTypePercent    GradeType = "percentage"
)

func (t GradeType) Valid() bool {
	switch t {
	case GradeTypeLetter, GradeTypePoints, GradeTypeFourPoints, GradeTypePercent:
		return true
	}
	return false
}

// Numeric reports whether values of this type are plain numbers.
func (t GradeType) Numeric() bool {
	return t.Valid() && t != GradeTypeLetter
}

// CalcWeight marks assignments and grades produced by a calculation run.
// Grades under a CALC assignment are never fed back into recalculation.
const CalcWeight = "CALC"

// Weight is an assignment weight as stored: a number in text form, or the
// CALC sentinel.
type Weight string

func (w Weight) IsCalculated() bool {
	return string(w) == CalcWeight
}

// Fraction parses the weight as a number, NaN if it is the sentinel,
// empty, or unparseable.
func (w Weight) Fraction() float64 {
	f, err := strconv.ParseFloat(string(w), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
