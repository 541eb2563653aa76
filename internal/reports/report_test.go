package reports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/betyg/internal/models"
	"github.com/shrimpsizemoose/betyg/internal/store"
)

// stubStore covers the read paths a report touches. Anything else panics
// through the embedded nil interface.
type stubStore struct {
	store.GradeStore
	course      *models.Course
	students    []models.Student
	assignments []models.Assignment
	rows        []models.GradeRow
}

func (s *stubStore) GetCourse(id int64) (*models.Course, error) {
	return s.course, nil
}

func (s *stubStore) ListCourseStudents(courseID int64) ([]models.Student, error) {
	return s.students, nil
}

func (s *stubStore) SelectAssignments(courseID int64, name string) ([]models.Assignment, error) {
	return s.assignments, nil
}

func (s *stubStore) SelectGradesForCourseMembers(courseID int64, studentID *int64) ([]models.GradeRow, error) {
	return s.rows, nil
}

func ptr(s string) *string { return &s }
func idp(v int64) *int64 { return &v }

func row(gradeID int64, assignmentID, studentID int64, value string) models.GradeRow {
	return models.GradeRow{
		GradeID:      idp(gradeID),
		AssignmentID: assignmentID,
		StudentID:    studentID,
		Value:        ptr(value),
	}
}

func missingRow(assignmentID, studentID int64) models.GradeRow {
	return models.GradeRow{AssignmentID: assignmentID, StudentID: studentID}
}

func TestRunLetterAssignment(t *testing.T) {
	st := &stubStore{
		assignments: []models.Assignment{
			{ID: 1, Name: "Paper 1", GradeType: models.GradeTypeLetter},
		},
		rows: []models.GradeRow{
			row(10, 1, 1, "A"),
			row(11, 1, 2, "B"),
			row(12, 1, 3, "B"),
		},
	}

	r := NewGradeReport(st, 7)
	require.NoError(t, r.Run())
	require.Len(t, r.Stats, 1)

	got := r.Stats[0]
	assert.Empty(t, got.Err)
	assert.Equal(t, "A", got.Min.Label)
	assert.Equal(t, "B", got.Max.Label)
	assert.InDelta(t, 3.3333, got.Mean.Number, 0.001)
	assert.Equal(t, "B+", got.MeanLetter)
	assert.Empty(t, got.MissingStudents)
}

func TestRunPercentAssignment(t *testing.T) {
	st := &stubStore{
		assignments: []models.Assignment{
			{ID: 1, Name: "Midterm", GradeType: models.GradeTypePercent},
		},
		rows: []models.GradeRow{
			row(10, 1, 1, "85"),
			row(11, 1, 2, "92"),
			row(12, 1, 3, "55"),
		},
	}

	r := NewGradeReport(st, 7)
	require.NoError(t, r.Run())
	require.Len(t, r.Stats, 1)

	got := r.Stats[0]
	assert.Equal(t, 55.0, got.Min.Number)
	assert.Equal(t, 92.0, got.Max.Number)
	assert.InDelta(t, 77.3333, got.Mean.Number, 0.001)
	assert.Equal(t, "C+", got.MeanLetter)
}

func TestRunTracksMissingStudents(t *testing.T) {
	st := &stubStore{
		assignments: []models.Assignment{
			{ID: 1, Name: "Paper 1", GradeType: models.GradeTypeLetter},
		},
		rows: []models.GradeRow{
			row(10, 1, 1, "A"),
			missingRow(1, 2),
			missingRow(1, 3),
		},
	}

	r := NewGradeReport(st, 7)
	require.NoError(t, r.Run())
	require.Len(t, r.Stats, 1)
	assert.Equal(t, []int64{2, 3}, r.Stats[0].MissingStudents)
	assert.Equal(t, "A", r.Stats[0].Min.Label)
}

func TestRunBadGradeTypeDegradesToUnavailable(t *testing.T) {
	st := &stubStore{
		assignments: []models.Assignment{
			{ID: 1, Name: "Broken", GradeType: "numbery"},
			{ID: 2, Name: "Paper 1", GradeType: models.GradeTypeLetter},
		},
		rows: []models.GradeRow{
			row(10, 1, 1, "5"),
			row(11, 2, 1, "A"),
		},
	}

	r := NewGradeReport(st, 7)
	require.NoError(t, r.Run())
	require.Len(t, r.Stats, 2)

	assert.NotEmpty(t, r.Stats[0].Err)
	assert.Empty(t, r.Stats[1].Err)
	assert.Equal(t, "A", r.Stats[1].Min.Label)
}

func TestHistogramLetter(t *testing.T) {
	bins := Histogram([]string{"A", "B", "B", "C-", "huh"}, models.GradeTypeLetter)

	counts := map[string]int{}
	for _, b := range bins {
		counts[b.Label] = b.Count
	}
	assert.Equal(t, 1, counts["A"])
	assert.Equal(t, 2, counts["B"])
	assert.Equal(t, 1, counts["C-"])
	assert.Equal(t, 0, counts["A+"])

	// unknown labels land in a trailing Incomplete bin
	assert.Equal(t, "I", bins[len(bins)-1].Label)
	assert.Equal(t, 1, bins[len(bins)-1].Count)
}

func TestHistogramLetterNoUnknowns(t *testing.T) {
	bins := Histogram([]string{"A", "F"}, models.GradeTypeLetter)
	assert.NotEqual(t, "I", bins[len(bins)-1].Label)
}

func TestHistogramPercent(t *testing.T) {
	bins := Histogram([]string{"98", "85", "55", "nonsense"}, models.GradeTypePercent)

	counts := map[string]int{}
	for _, b := range bins {
		counts[b.Label] += b.Count
	}
	assert.Equal(t, 1, counts["97-200"])
	assert.Equal(t, 1, counts["84-87"])
	assert.Equal(t, 1, counts["0-60"])

	total := 0
	for _, b := range bins {
		total += b.Count
	}
	assert.Equal(t, 3, total)
}

func TestAsTextCompact(t *testing.T) {
	st := &stubStore{
		course: &models.Course{ID: 7, Number: "146", Name: "Philosophy of Mind", Semester: "Spring", Year: 2026},
		assignments: []models.Assignment{
			{ID: 1, Name: "Paper 1", GradeType: models.GradeTypeLetter},
		},
		rows: []models.GradeRow{
			row(10, 1, 1, "A"),
			row(11, 1, 2, "B"),
		},
	}

	r := NewGradeReport(st, 7)
	require.NoError(t, r.Run())

	out, err := r.AsText(true)
	require.NoError(t, err)
	assert.Contains(t, out, "GRADE REPORT: 146: Philosophy of Mind, Spring 2026")
	assert.Contains(t, out, "Paper 1")
	assert.Contains(t, out, "Minimum: A")
	assert.Contains(t, out, "Maximum: B")
	assert.NotContains(t, out, "*")
}

func TestAsTextFullListsMissingStudents(t *testing.T) {
	st := &stubStore{
		course: &models.Course{ID: 7, Number: "146", Name: "Philosophy of Mind", Semester: "Spring", Year: 2026},
		students: []models.Student{
			{ID: 1, FirstName: "Jane", LastName: "Doe", SID: "22446688"},
			{ID: 2, FirstName: "Bo", LastName: "Burns", SID: "99887766"},
		},
		assignments: []models.Assignment{
			{ID: 1, Name: "Paper 1", GradeType: models.GradeTypeLetter},
		},
		rows: []models.GradeRow{
			row(10, 1, 1, "A"),
			missingRow(1, 2),
		},
	}

	r := NewGradeReport(st, 7)
	require.NoError(t, r.Run())

	out, err := r.AsText(false)
	require.NoError(t, err)
	assert.Contains(t, out, "1 students do not have a grade for this assignment:")
	assert.Contains(t, out, "Burns, Bo (SID: 99887766)")
	assert.Contains(t, out, "*")
}
