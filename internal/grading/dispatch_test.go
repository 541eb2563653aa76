package grading

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/betyg/internal/models"
	"github.com/shrimpsizemoose/betyg/internal/scale"
)

func TestForTypeUnknownType(t *testing.T) {
	_, err := ForType([]string{"1"}, models.GradeType("ects"), sliceMin, nil, scale.Points, false)
	require.Error(t, err)
	var unknownErr *UnknownGradeTypeError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, models.GradeType("ects"), unknownErr.Type)
}

func TestForTypeConvertsLettersWhenNoLetterFn(t *testing.T) {
	// without a letter-specific implementation the dispatcher converts on
	// the given scale and runs the numeric one
	res, err := ForType([]string{"A", "B"}, models.GradeTypeLetter, sliceMin, nil, scale.Points, false)
	require.NoError(t, err)
	assert.Equal(t, 3.0, res.Number)
}

func TestMinMaxForTypeLetter(t *testing.T) {
	min, err := MinForType([]string{"B", "A", "C"}, models.GradeTypeLetter, false)
	require.NoError(t, err)
	assert.Equal(t, "A", min.Label)

	max, err := MaxForType([]string{"B", "A", "C"}, models.GradeTypeLetter, false)
	require.NoError(t, err)
	assert.Equal(t, "C", max.Label)
}

func TestMinMaxForTypeLetterTiesKeepFirst(t *testing.T) {
	min, err := MinForType([]string{"B+", "A", "A"}, models.GradeTypeLetter, false)
	require.NoError(t, err)
	assert.Equal(t, "A", min.Label)

	max, err := MaxForType([]string{"C", "B", "C"}, models.GradeTypeLetter, false)
	require.NoError(t, err)
	assert.Equal(t, "C", max.Label)
}

func TestMinMaxForTypeNumeric(t *testing.T) {
	min, err := MinForType([]string{"88", "72", "95"}, models.GradeTypePercent, false)
	require.NoError(t, err)
	assert.Equal(t, 72.0, min.Number)

	max, err := MaxForType([]string{"88", "72", "95"}, models.GradeTypePercent, false)
	require.NoError(t, err)
	assert.Equal(t, 95.0, max.Number)
}

func TestMeanForType(t *testing.T) {
	// letters average on the 4.0 scale, never on percentages
	mean, err := MeanForType([]string{"A", "B"}, models.GradeTypeLetter, false)
	require.NoError(t, err)
	assert.Equal(t, 3.5, mean.Number)

	mean, err = MeanForType([]string{"80", "90"}, models.GradeTypePercent, false)
	require.NoError(t, err)
	assert.Equal(t, 85.0, mean.Number)

	mean, err = MeanForType(nil, models.GradeTypePoints, true)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(mean.Number))
}

func TestMeanForTypeFiltersMissing(t *testing.T) {
	mean, err := MeanForType([]string{"80", "", "90"}, models.GradeTypePercent, true)
	require.NoError(t, err)
	assert.Equal(t, 85.0, mean.Number)
}

func TestLetterAverage(t *testing.T) {
	avg, err := LetterAverage([]string{"A", "B"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3.5, avg)

	avg, err = LetterAverage([]string{"A", "B"}, []float64{0.75, 0.25})
	require.NoError(t, err)
	assert.Equal(t, 3.75, avg)
}

func TestResultString(t *testing.T) {
	assert.Equal(t, "A-", Result{Label: "A-", Number: math.NaN()}.String())
	assert.Equal(t, "3.5", Result{Number: 3.5}.String())
	assert.Equal(t, "", Result{Number: math.NaN()}.String())
}
