package postgres

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/shrimpsizemoose/betyg/internal/models"
	"github.com/shrimpsizemoose/betyg/internal/store"
)

type PostgresStore struct {
	store.BaseStore
}

func NewPostgresStore(dsn, migrationsDir string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &PostgresStore{BaseStore: store.BaseStore{
		DB: db,
		Converter: func(query string) string {
			out := query
			for i := 1; strings.Contains(out, "?"); i++ {
				out = strings.Replace(out, "?", fmt.Sprintf("$%d", i), 1)
			}
			return out
		},
	}}

	if migrationsDir != "" {
		if err := s.ApplyMigrations(migrationsDir); err != nil {
			db.Close()
			return nil, err
		}
	}

	return s, nil
}

func (s *PostgresStore) ApplyMigrations(dir string) error {
	return s.BaseStore.ApplyMigrations(dir, nil)
}

func (s *PostgresStore) CreateCourse(c *models.Course) (int64, error) {
	var id int64
	err := s.DB.QueryRow(`
		INSERT INTO courses (name, number, year, semester)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, c.Name, c.Number, c.Year, c.Semester).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create course: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) CreateStudent(st *models.Student) (int64, error) {
	var id int64
	err := s.DB.QueryRow(`
		INSERT INTO students (first_name, last_name, sid, email)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, st.FirstName, st.LastName, st.SID, st.Email).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create student: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) CreateAssignment(a *models.Assignment) (int64, error) {
	var id int64
	err := s.DB.QueryRow(`
		INSERT INTO assignments (course_id, name, description, due_date, grade_type, weight)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, a.CourseID, a.Name, a.Description, a.DueDate, string(a.GradeType), string(a.Weight)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create assignment: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) CreateOrUpdateGrade(gradeID *int64, assignmentID, studentID int64, value string) (int64, error) {
	if gradeID != nil {
		if err := s.UpdateGrade(*gradeID, value); err != nil {
			return 0, err
		}
		return *gradeID, nil
	}

	var id int64
	err := s.DB.QueryRow(`
		INSERT INTO grades (assignment_id, student_id, value, timestamp)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, assignmentID, studentID, value, store.Stamp()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create grade: %w", err)
	}
	return id, nil
}
