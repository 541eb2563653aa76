// Package reports builds per-assignment grade statistics for a course.
package reports

import (
	"fmt"
	"math"
	"strings"

	"github.com/shrimpsizemoose/betyg/internal/grading"
	"github.com/shrimpsizemoose/betyg/internal/models"
	"github.com/shrimpsizemoose/betyg/internal/scale"
	"github.com/shrimpsizemoose/betyg/internal/store"
)

// Bin is one histogram bucket, in scale band order.
type Bin struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// AssignmentStats summarizes the grades of one assignment. When the
// statistics cannot be computed, Err carries the reason and the rest of
// the record is unset; the report as a whole still renders.
type AssignmentStats struct {
	AssignmentID    int64            `json:"assignment_id"`
	AssignmentName  string           `json:"assignment_name"`
	GradeType       models.GradeType `json:"grade_type"`
	Min             grading.Result   `json:"min"`
	Max             grading.Result   `json:"max"`
	Mean            grading.Result   `json:"mean"`
	MeanLetter      string           `json:"mean_letter,omitempty"`
	Histogram       []Bin            `json:"histogram,omitempty"`
	MissingStudents []int64          `json:"missing_students,omitempty"`
	Err             string           `json:"error,omitempty"`
}

// GradeReport is the basic report on the grades in a course. Run gathers
// the statistics; AsText renders them.
type GradeReport struct {
	store    store.GradeStore
	CourseID int64
	Stats    []AssignmentStats
}

func NewGradeReport(s store.GradeStore, courseID int64) *GradeReport {
	return &GradeReport{store: s, CourseID: courseID}
}

func (r *GradeReport) Run() error {
	assignments, err := r.store.SelectAssignments(r.CourseID, "")
	if err != nil {
		return err
	}
	allGrades, err := r.store.SelectGradesForCourseMembers(r.CourseID, nil)
	if err != nil {
		return err
	}

	r.Stats = make([]AssignmentStats, 0, len(assignments))
	for _, a := range assignments {
		var values []string
		var missing []int64
		for _, g := range allGrades {
			if g.AssignmentID != a.ID {
				continue
			}
			if g.GradeID == nil {
				missing = append(missing, g.StudentID)
				continue
			}
			values = append(values, g.RawValue())
		}

		st := assignmentStats(a, values)
		st.MissingStudents = missing
		r.Stats = append(r.Stats, st)
	}
	return nil
}

// assignmentStats computes one assignment's summary, degrading to an
// unavailable record (Err set) instead of failing the report.
func assignmentStats(a models.Assignment, values []string) AssignmentStats {
	st := AssignmentStats{
		AssignmentID:   a.ID,
		AssignmentName: a.Name,
		GradeType:      a.GradeType,
	}

	mn, err := grading.MinForType(values, a.GradeType, true)
	if err != nil {
		st.Err = err.Error()
		return st
	}
	mx, err := grading.MaxForType(values, a.GradeType, true)
	if err != nil {
		st.Err = err.Error()
		return st
	}
	mean, err := grading.MeanForType(values, a.GradeType, true)
	if err != nil {
		st.Err = err.Error()
		return st
	}

	st.Min, st.Max, st.Mean = mn, mx, mean
	st.MeanLetter = meanLetter(a.GradeType, mean.Number)
	st.Histogram = Histogram(values, a.GradeType)
	return st
}

// meanLetter converts a mean to a letter where the type has a defined
// scale: letter and 4points means live on the 4.0 scale, percentages on
// the percentage scale. Raw points have no scale to convert on.
func meanLetter(t models.GradeType, mean float64) string {
	var letter string
	var err error
	switch t {
	case models.GradeTypeLetter, models.GradeTypeFourPoints:
		letter, err = scale.PointsToLetter(mean)
	case models.GradeTypePercent:
		letter, err = scale.PercentToLetter(mean)
	default:
		return ""
	}
	if err != nil {
		return ""
	}
	return letter
}

// Histogram buckets raw values into the scale's bands, one bin per band in
// declared order (A+ down to F); the Incomplete sentinel gets no bin. For
// letter grades, labels that match no band are tallied into a trailing
// Incomplete bin. Numeric values outside every band are dropped.
func Histogram(values []string, t models.GradeType) []Bin {
	sc := scale.Points
	if t == models.GradeTypePercent {
		sc = scale.Percent
	}

	finite := sc.Bands[:len(sc.Bands)-1]
	bins := make([]Bin, len(finite))
	for i, b := range finite {
		label := b.Label
		if t.Numeric() {
			label = fmt.Sprintf("%g-%g", b.Min, b.Max)
		}
		bins[i] = Bin{Label: label}
	}

	var unknown int
	for _, v := range values {
		if t == models.GradeTypeLetter {
			idx := scale.Rank(v, sc)
			if idx < len(finite) {
				bins[idx].Count++
			} else {
				unknown++
			}
			continue
		}
		n := grading.NumericValues([]string{v})[0]
		if math.IsNaN(n) {
			continue
		}
		for i, b := range finite {
			if b.Min <= n && n < b.Max {
				bins[i].Count++
				break
			}
		}
	}
	if t == models.GradeTypeLetter && unknown > 0 {
		bins = append(bins, Bin{Label: scale.Incomplete, Count: unknown})
	}
	return bins
}

// AsText renders the report. Compact mode is one line per assignment; the
// full report adds histograms and the names of students with no grade.
func (r *GradeReport) AsText(compact bool) (string, error) {
	course, err := r.store.GetCourse(r.CourseID)
	if err != nil {
		return "", err
	}
	if course == nil {
		return "", fmt.Errorf("course %d: %w", r.CourseID, store.ErrNoRecordsFound)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "GRADE REPORT: %s: %s, %s %d\n",
		course.Number, course.Name, course.Semester, course.Year)

	var students []models.Student
	if !compact {
		students, err = r.store.ListCourseStudents(r.CourseID)
		if err != nil {
			return "", err
		}
	}

	for _, st := range r.Stats {
		if st.Err != "" {
			fmt.Fprintf(&b, "%-25s unavailable (%s)\n", st.AssignmentName, st.Err)
			continue
		}
		mean := st.Mean.String()
		if st.MeanLetter != "" {
			mean = st.MeanLetter
		}
		fmt.Fprintf(&b, "%-25s Average: %-8s Minimum: %-8s Maximum: %-8s\n",
			st.AssignmentName, mean, st.Min.String(), st.Max.String())

		if compact {
			continue
		}
		for _, bin := range st.Histogram {
			if bin.Count == 0 {
				continue
			}
			fmt.Fprintf(&b, "  %-10s %s\n", bin.Label, strings.Repeat("*", bin.Count))
		}
		if len(st.MissingStudents) > 0 {
			fmt.Fprintf(&b, "%d students do not have a grade for this assignment:\n",
				len(st.MissingStudents))
			for _, s := range students {
				for _, id := range st.MissingStudents {
					if s.ID == id {
						fmt.Fprintf(&b, "  %s, %s (SID: %s)\n", s.LastName, s.FirstName, s.SID)
					}
				}
			}
		}
	}

	return b.String(), nil
}
