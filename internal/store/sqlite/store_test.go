package sqlite

import (
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/betyg/internal/models"
	"github.com/shrimpsizemoose/betyg/internal/store"
)

// setupTestDB creates an in-memory SQLite database with the translated
// schema applied from the migrations directory.
func setupTestDB(t *testing.T) (*SQLiteStore, func()) {
	s, err := NewSQLiteStore(":memory:", "../../../migrations")
	require.NoError(t, err, "Failed to create store")

	cleanup := func() {
		err := s.Close()
		require.NoError(t, err, "Failed to close database")
	}

	return s, cleanup
}

type testData struct {
	store     *SQLiteStore
	courseID  int64
	studentID int64
}

func setupTestData(t *testing.T) (*testData, func()) {
	s, cleanup := setupTestDB(t)

	courseID, err := s.CreateCourse(&models.Course{
		Name:     "Philosophy of Mind",
		Number:   "146",
		Year:     2026,
		Semester: "Spring",
	})
	require.NoError(t, err, "Failed to create course")

	studentID, err := s.CreateStudent(&models.Student{
		FirstName: "Jane",
		LastName:  "Doe",
		SID:       "22446688",
		Email:     "jane.doe@example.edu",
	})
	require.NoError(t, err, "Failed to create student")

	err = s.AddCourseMember(courseID, studentID)
	require.NoError(t, err, "Failed to add course member")

	return &testData{
		store:     s,
		courseID:  courseID,
		studentID: studentID,
	}, cleanup
}

func TestMain(m *testing.M) {
	log.Println("Starting SQLite store tests...")
	code := m.Run()
	log.Println("Finished SQLite store tests")
	os.Exit(code)
}

func TestCourseOperations(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	t.Run("get course", func(t *testing.T) {
		got, err := td.store.GetCourse(td.courseID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "146", got.Number)
		assert.Equal(t, "Spring", got.Semester)
		assert.Equal(t, 2026, got.Year)
	})

	t.Run("get non-existent course", func(t *testing.T) {
		got, err := td.store.GetCourse(9999)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("find course", func(t *testing.T) {
		got, err := td.store.FindCourse("146", "Spring", 2026)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, td.courseID, got.ID)
	})

	t.Run("find non-existent course", func(t *testing.T) {
		got, err := td.store.FindCourse("146", "Fall", 2026)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("list courses", func(t *testing.T) {
		courses, err := td.store.ListCourses()
		require.NoError(t, err)
		assert.Len(t, courses, 1)
	})
}

func TestStudentAndRosterOperations(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	t.Run("get student by sid", func(t *testing.T) {
		got, err := td.store.GetStudentBySID("22446688")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Jane", got.FirstName)
		assert.Equal(t, "Doe", got.LastName)
	})

	t.Run("get non-existent student", func(t *testing.T) {
		got, err := td.store.GetStudentBySID("00000000")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("adding a member twice is a no-op", func(t *testing.T) {
		err := td.store.AddCourseMember(td.courseID, td.studentID)
		require.NoError(t, err)

		students, err := td.store.ListCourseStudents(td.courseID)
		require.NoError(t, err)
		assert.Len(t, students, 1)
	})

	t.Run("roster is ordered by last name", func(t *testing.T) {
		id, err := td.store.CreateStudent(&models.Student{
			FirstName: "Alan",
			LastName:  "Able",
			SID:       "11335577",
		})
		require.NoError(t, err)
		require.NoError(t, td.store.AddCourseMember(td.courseID, id))

		students, err := td.store.ListCourseStudents(td.courseID)
		require.NoError(t, err)
		require.Len(t, students, 2)
		assert.Equal(t, "Able", students[0].LastName)
		assert.Equal(t, "Doe", students[1].LastName)
	})
}

func TestAssignmentOperations(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	_, err := td.store.CreateAssignment(&models.Assignment{
		CourseID:  td.courseID,
		Name:      "Paper 2",
		DueDate:   "2026-04-15",
		GradeType: models.GradeTypeLetter,
		Weight:    "0.5",
	})
	require.NoError(t, err)

	_, err = td.store.CreateAssignment(&models.Assignment{
		CourseID:  td.courseID,
		Name:      "Paper 1",
		DueDate:   "2026-02-15",
		GradeType: models.GradeTypeLetter,
		Weight:    "0.5",
	})
	require.NoError(t, err)

	t.Run("select all ordered by due date", func(t *testing.T) {
		assignments, err := td.store.SelectAssignments(td.courseID, "")
		require.NoError(t, err)
		require.Len(t, assignments, 2)
		assert.Equal(t, "Paper 1", assignments[0].Name)
		assert.Equal(t, "Paper 2", assignments[1].Name)
	})

	t.Run("select by name", func(t *testing.T) {
		assignments, err := td.store.SelectAssignments(td.courseID, "Paper 2")
		require.NoError(t, err)
		require.Len(t, assignments, 1)
		assert.Equal(t, models.Weight("0.5"), assignments[0].Weight)
	})

	t.Run("select unknown name", func(t *testing.T) {
		assignments, err := td.store.SelectAssignments(td.courseID, "Paper 9")
		require.NoError(t, err)
		assert.Empty(t, assignments)
	})
}

func TestGradeOperations(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	assignmentID, err := td.store.CreateAssignment(&models.Assignment{
		CourseID:  td.courseID,
		Name:      "Paper 1",
		DueDate:   "2026-02-15",
		GradeType: models.GradeTypeLetter,
		Weight:    "1.0",
	})
	require.NoError(t, err)

	t.Run("create grade", func(t *testing.T) {
		gradeID, err := td.store.CreateOrUpdateGrade(nil, assignmentID, td.studentID, "B+")
		require.NoError(t, err)

		grades, err := td.store.SelectGrades(td.studentID, assignmentID)
		require.NoError(t, err)
		require.Len(t, grades, 1)
		assert.Equal(t, gradeID, grades[0].ID)
		assert.Equal(t, "B+", grades[0].Value)
		assert.NotEmpty(t, grades[0].Timestamp)
	})

	t.Run("update through create-or-update", func(t *testing.T) {
		grades, err := td.store.SelectGrades(td.studentID, assignmentID)
		require.NoError(t, err)
		require.Len(t, grades, 1)

		got, err := td.store.CreateOrUpdateGrade(&grades[0].ID, assignmentID, td.studentID, "A-")
		require.NoError(t, err)
		assert.Equal(t, grades[0].ID, got)

		grades, err = td.store.SelectGrades(td.studentID, assignmentID)
		require.NoError(t, err)
		require.Len(t, grades, 1)
		assert.Equal(t, "A-", grades[0].Value)
	})

	t.Run("update grade directly", func(t *testing.T) {
		grades, err := td.store.SelectGrades(td.studentID, assignmentID)
		require.NoError(t, err)
		require.Len(t, grades, 1)

		err = td.store.UpdateGrade(grades[0].ID, "A")
		require.NoError(t, err)

		grades, err = td.store.SelectGrades(td.studentID, assignmentID)
		require.NoError(t, err)
		assert.Equal(t, "A", grades[0].Value)
	})
}

func TestSelectGradesForCourseMembers(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	paper1, err := td.store.CreateAssignment(&models.Assignment{
		CourseID:  td.courseID,
		Name:      "Paper 1",
		DueDate:   "2026-02-15",
		GradeType: models.GradeTypeLetter,
		Weight:    "0.5",
	})
	require.NoError(t, err)

	paper2, err := td.store.CreateAssignment(&models.Assignment{
		CourseID:  td.courseID,
		Name:      "Paper 2",
		DueDate:   "2026-04-15",
		GradeType: models.GradeTypeLetter,
		Weight:    "0.5",
	})
	require.NoError(t, err)

	_, err = td.store.CreateOrUpdateGrade(nil, paper1, td.studentID, "B")
	require.NoError(t, err)

	t.Run("ungraded assignments come back with nil values", func(t *testing.T) {
		rows, err := td.store.SelectGradesForCourseMembers(td.courseID, nil)
		require.NoError(t, err)
		require.Len(t, rows, 2)

		assert.Equal(t, paper1, rows[0].AssignmentID)
		require.NotNil(t, rows[0].GradeID)
		assert.Equal(t, "B", rows[0].RawValue())

		assert.Equal(t, paper2, rows[1].AssignmentID)
		assert.Nil(t, rows[1].GradeID)
		assert.Nil(t, rows[1].Value)
	})

	t.Run("filter to one student", func(t *testing.T) {
		otherID, err := td.store.CreateStudent(&models.Student{
			FirstName: "Bo",
			LastName:  "Burns",
			SID:       "99887766",
		})
		require.NoError(t, err)
		require.NoError(t, td.store.AddCourseMember(td.courseID, otherID))

		rows, err := td.store.SelectGradesForCourseMembers(td.courseID, &otherID)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		for _, r := range rows {
			assert.Equal(t, otherID, r.StudentID)
			assert.Nil(t, r.GradeID)
		}
	})

	t.Run("assignment metadata rides along", func(t *testing.T) {
		rows, err := td.store.SelectGradesForCourseMembers(td.courseID, &td.studentID)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "Paper 1", rows[0].AssignmentName)
		assert.Equal(t, models.GradeTypeLetter, rows[0].GradeType)
		assert.Equal(t, models.Weight("0.5"), rows[0].Weight)
	})
}

func TestEnsureUnique(t *testing.T) {
	_, err := store.EnsureUnique([]models.Grade{})
	assert.ErrorIs(t, err, store.ErrNoRecordsFound)

	g, err := store.EnsureUnique([]models.Grade{{ID: 1}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), g.ID)

	_, err = store.EnsureUnique([]models.Grade{{ID: 1}, {ID: 2}})
	assert.ErrorIs(t, err, store.ErrMultipleRecordsFound)
}
