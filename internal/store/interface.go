package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/shrimpsizemoose/betyg/internal/models"
)

var (
	ErrNoRecordsFound       = errors.New("no records found")
	ErrMultipleRecordsFound = errors.New("multiple records found")
)

// EnsureUnique reduces a result set to its single row, or fails with
// ErrNoRecordsFound / ErrMultipleRecordsFound.
func EnsureUnique[T any](rows []T) (T, error) {
	var zero T
	switch len(rows) {
	case 0:
		return zero, ErrNoRecordsFound
	case 1:
		return rows[0], nil
	default:
		return zero, ErrMultipleRecordsFound
	}
}

type GradeStore interface {
	Close() error
	ApplyMigrations(dir string) error

	CreateCourse(c *models.Course) (int64, error)
	GetCourse(id int64) (*models.Course, error)
	FindCourse(number, semester string, year int) (*models.Course, error)
	ListCourses() ([]models.Course, error)

	CreateStudent(s *models.Student) (int64, error)
	GetStudentBySID(sid string) (*models.Student, error)
	AddCourseMember(courseID, studentID int64) error
	ListCourseStudents(courseID int64) ([]models.Student, error)

	CreateAssignment(a *models.Assignment) (int64, error)
	SelectAssignments(courseID int64, name string) ([]models.Assignment, error)

	SelectGradesForCourseMembers(courseID int64, studentID *int64) ([]models.GradeRow, error)
	SelectGrades(studentID, assignmentID int64) ([]models.Grade, error)
	CreateOrUpdateGrade(gradeID *int64, assignmentID, studentID int64, value string) (int64, error)
	UpdateGrade(gradeID int64, value string) error
}

const timeFormat = "2006-01-02 15:04:05"

// BaseStore provides the queries shared between DB implementations.
// Converter rewrites ? placeholders for the dialect.
type BaseStore struct {
	DB        *sqlx.DB
	Converter func(string) string
}

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// ApplyMigrations applies SQL migrations from a directory, translating
// dialect if needed.
func (s *BaseStore) ApplyMigrations(dir string, translateSQL func(string) string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, file := range files {
		if !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		content, err := os.ReadFile(fmt.Sprintf("%s/%s", dir, file.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file.Name(), err)
		}

		sql := string(content)
		if translateSQL != nil {
			sql = translateSQL(sql)
		}

		if _, err := s.DB.Exec(sql); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file.Name(), err)
		}
	}

	return nil
}

func (s *BaseStore) GetCourse(id int64) (*models.Course, error) {
	var course models.Course
	query := s.Converter(`
		SELECT id, name, number, year, semester
		FROM courses
		WHERE id = ?
	`)

	err := s.DB.Get(&course, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return &course, nil
}

func (s *BaseStore) FindCourse(number, semester string, year int) (*models.Course, error) {
	var course models.Course
	query := s.Converter(`
		SELECT id, name, number, year, semester
		FROM courses
		WHERE number = ? AND semester = ? AND year = ?
	`)

	err := s.DB.Get(&course, query, number, semester, year)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find course: %w", err)
	}
	return &course, nil
}

func (s *BaseStore) ListCourses() ([]models.Course, error) {
	var courses []models.Course
	err := s.DB.Select(&courses, `
		SELECT id, name, number, year, semester
		FROM courses
		ORDER BY year, semester, number
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

func (s *BaseStore) GetStudentBySID(sid string) (*models.Student, error) {
	var student models.Student
	query := s.Converter(`
		SELECT id, first_name, last_name, sid, email
		FROM students
		WHERE sid = ?
	`)

	err := s.DB.Get(&student, query, sid)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return &student, nil
}

func (s *BaseStore) AddCourseMember(courseID, studentID int64) error {
	query := s.Converter(`
		INSERT INTO course_memberships (course_id, student_id)
		VALUES (?, ?)
		ON CONFLICT DO NOTHING
	`)
	if _, err := s.DB.Exec(query, courseID, studentID); err != nil {
		return fmt.Errorf("failed to add course member: %w", err)
	}
	return nil
}

func (s *BaseStore) ListCourseStudents(courseID int64) ([]models.Student, error) {
	var students []models.Student
	query := s.Converter(`
		SELECT s.id, s.first_name, s.last_name, s.sid, s.email
		FROM students s
		JOIN course_memberships m ON m.student_id = s.id
		WHERE m.course_id = ?
		ORDER BY s.last_name, s.first_name, s.sid
	`)

	err := s.DB.Select(&students, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list course students: %w", err)
	}
	return students, nil
}

// SelectAssignments returns a course's assignments ordered by due date,
// optionally restricted to one name.
func (s *BaseStore) SelectAssignments(courseID int64, name string) ([]models.Assignment, error) {
	var assignments []models.Assignment
	query := `
		SELECT id, course_id, name, description, due_date, grade_type, weight
		FROM assignments
		WHERE course_id = ?
	`
	args := []interface{}{courseID}
	if name != "" {
		query += " AND name = ?"
		args = append(args, name)
	}
	query += " ORDER BY due_date, id"

	err := s.DB.Select(&assignments, s.Converter(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select assignments: %w", err)
	}
	return assignments, nil
}

// SelectGradesForCourseMembers crosses the course roster with the course
// assignments. Assignments a student has no grade for come back with a
// NULL grade id and value, which is how reports detect missing grades.
func (s *BaseStore) SelectGradesForCourseMembers(courseID int64, studentID *int64) ([]models.GradeRow, error) {
	var rows []models.GradeRow
	query := `
		SELECT
			g.id AS grade_id,
			a.id AS assignment_id,
			m.student_id AS student_id,
			a.name AS assignment_name,
			a.grade_type AS grade_type,
			a.weight AS weight,
			g.value AS value,
			g.timestamp AS timestamp
		FROM course_memberships m
		JOIN assignments a ON a.course_id = m.course_id
		LEFT JOIN grades g ON g.assignment_id = a.id AND g.student_id = m.student_id
		WHERE m.course_id = ?
	`
	args := []interface{}{courseID}
	if studentID != nil {
		query += " AND m.student_id = ?"
		args = append(args, *studentID)
	}
	query += " ORDER BY m.student_id, a.due_date, a.id"

	err := s.DB.Select(&rows, s.Converter(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select grades for course members: %w", err)
	}
	return rows, nil
}

func (s *BaseStore) SelectGrades(studentID, assignmentID int64) ([]models.Grade, error) {
	var grades []models.Grade
	query := s.Converter(`
		SELECT id, assignment_id, student_id, value, timestamp
		FROM grades
		WHERE student_id = ? AND assignment_id = ?
		ORDER BY id
	`)

	err := s.DB.Select(&grades, query, studentID, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to select grades: %w", err)
	}
	return grades, nil
}

func (s *BaseStore) UpdateGrade(gradeID int64, value string) error {
	query := s.Converter(`
		UPDATE grades
		SET value = ?, timestamp = ?
		WHERE id = ?
	`)
	if _, err := s.DB.Exec(query, value, time.Now().Format(timeFormat), gradeID); err != nil {
		return fmt.Errorf("failed to update grade: %w", err)
	}
	return nil
}

// Stamp is the timestamp written on grade inserts.
func Stamp() string {
	return time.Now().Format(timeFormat)
}
