package models

import (
	"math"
	"strconv"

	"github.com/go-playground/validator/v10"
)

type Student struct {
	ID        int64  `db:"id" json:"id"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	SID       string `db:"sid" json:"sid" validate:"required"`
	Email     string `db:"email" json:"email" validate:"omitempty,email"`
}

type Course struct {
	ID       int64  `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Number   string `db:"number" json:"number" validate:"required"`
	Year     int    `db:"year" json:"year" validate:"required,min=1900"`
	Semester string `db:"semester" json:"semester" validate:"required"`
}

type Assignment struct {
	ID          int64     `db:"id" json:"id"`
	CourseID    int64     `db:"course_id" json:"course_id" validate:"required"`
	Name        string    `db:"name" json:"name" validate:"required"`
	Description string    `db:"description" json:"description"`
	DueDate     string    `db:"due_date" json:"due_date"`
	GradeType   GradeType `db:"grade_type" json:"grade_type"`
	Weight      Weight    `db:"weight" json:"weight"`
}

// Grade is one row of the grades table. Value is text: SQLite's dynamic
// typing in the schema stores letters and numbers in the same column, so
// both dialects keep the column as text here.
type Grade struct {
	ID           int64  `db:"id" json:"id"`
	AssignmentID int64  `db:"assignment_id" json:"assignment_id" validate:"required"`
	StudentID    int64  `db:"student_id" json:"student_id" validate:"required"`
	Value        string `db:"value" json:"value"`
	Timestamp    string `db:"timestamp" json:"timestamp"`
}

// GradeRow is the shape produced by SelectGradesForCourseMembers: a roster
// member crossed with every assignment of the course. GradeID and Value are
// nil when the student has no entered grade for the assignment.
type GradeRow struct {
	GradeID        *int64    `db:"grade_id" json:"grade_id,omitempty"`
	AssignmentID   int64     `db:"assignment_id" json:"assignment_id"`
	StudentID      int64     `db:"student_id" json:"student_id"`
	AssignmentName string    `db:"assignment_name" json:"assignment_name"`
	GradeType      GradeType `db:"grade_type" json:"grade_type"`
	Weight         Weight    `db:"weight" json:"weight"`
	Value          *string   `db:"value" json:"value,omitempty"`
	Timestamp      *string   `db:"timestamp" json:"timestamp,omitempty"`
}

// RawValue returns the stored value, empty string when missing.
func (r GradeRow) RawValue() string {
	if r.Value == nil {
		return ""
	}
	return *r.Value
}

// NumericValue parses the stored value as a number, NaN when missing or
// non-numeric (e.g. a letter grade).
func (r GradeRow) NumericValue() float64 {
	if r.Value == nil {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(*r.Value, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func (s *Student) Validate() error {
	return validator.New().Struct(s)
}

func (c *Course) Validate() error {
	return validator.New().Struct(c)
}

func (a *Assignment) Validate() error {
	return validator.New().Struct(a)
}

func (g *Grade) Validate() error {
	return validator.New().Struct(g)
}
