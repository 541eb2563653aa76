// Package calculators is where grade calculation functions live. Each
// function is registered under the key built from its course number,
// semester, and year, and receives one student's entered grades per call.
package calculators

import (
	"github.com/shrimpsizemoose/betyg/internal/calc"
	"github.com/shrimpsizemoose/betyg/internal/grading"
	"github.com/shrimpsizemoose/betyg/internal/models"
	"github.com/shrimpsizemoose/betyg/internal/scale"
)

// Register installs every calculation function. Called once at startup by
// the binaries.
func Register(r *calc.Registry) {
	r.Register(calc.Key("146", "Spring", 2026), paperAverage)
}

// paperAverage is an example: a weighted 4.0-scale average of the entered
// letter grades, written back as a points average and a final letter.
func paperAverage(rows []models.GradeRow) (any, error) {
	values, weights, _, _ := grading.Unpack(rows)

	fractions := make([]float64, len(weights))
	for i, w := range weights {
		fractions[i] = w.Fraction()
	}

	avg, err := grading.LetterAverage(values, fractions)
	if err != nil {
		return nil, err
	}
	final, err := scale.PointsToLetter(avg)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"Paper average": avg,
		"Final grade":   final,
	}, nil
}
