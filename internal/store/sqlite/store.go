package sqlite

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/shrimpsizemoose/betyg/internal/models"
	"github.com/shrimpsizemoose/betyg/internal/store"
)

type SQLiteStore struct {
	store.BaseStore
}

func NewSQLiteStore(dsn, migrationsDir string) (*SQLiteStore, error) {
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &SQLiteStore{BaseStore: store.BaseStore{
		DB: db,
		Converter: func(query string) string {
			return query
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

func (s *SQLiteStore) ApplyMigrations(dir string) error {
	return s.BaseStore.ApplyMigrations(dir, translateToSQLite)
}

// translateToSQLite converts Postgres SQL to SQLite dialect
func translateToSQLite(sql string) string {
	replacements := map[string]string{
		"BIGSERIAL PRIMARY KEY": "INTEGER PRIMARY KEY AUTOINCREMENT",
		"BIGINT":                "INTEGER",
		"TRUE":                  "1",
		"FALSE":                 "0",
		"now()":                 "CURRENT_TIMESTAMP",
	}
	result := sql
	for from, to := range replacements {
		result = strings.ReplaceAll(result, from, to)
	}
	return result
}

func (s *SQLiteStore) CreateCourse(c *models.Course) (int64, error) {
	res, err := s.DB.Exec(`
		INSERT INTO courses (name, number, year, semester)
		VALUES (?, ?, ?, ?)
	`, c.Name, c.Number, c.Year, c.Semester)
	if err != nil {
		return 0, fmt.Errorf("failed to create course: %w", err)
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) CreateStudent(st *models.Student) (int64, error) {
	res, err := s.DB.Exec(`
		INSERT INTO students (first_name, last_name, sid, email)
		VALUES (?, ?, ?, ?)
	`, st.FirstName, st.LastName, st.SID, st.Email)
	if err != nil {
		return 0, fmt.Errorf("failed to create student: %w", err)
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) CreateAssignment(a *models.Assignment) (int64, error) {
	res, err := s.DB.Exec(`
		INSERT INTO assignments (course_id, name, description, due_date, grade_type, weight)
		VALUES (?, ?, ?, ?, ?, ?)
	`, a.CourseID, a.Name, a.Description, a.DueDate, string(a.GradeType), string(a.Weight))
	if err != nil {
		return 0, fmt.Errorf("failed to create assignment: %w", err)
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) CreateOrUpdateGrade(gradeID *int64, assignmentID, studentID int64, value string) (int64, error) {
	if gradeID != nil {
		if err := s.UpdateGrade(*gradeID, value); err != nil {
			return 0, err
		}
		return *gradeID, nil
	}

	res, err := s.DB.Exec(`
		INSERT INTO grades (assignment_id, student_id, value, timestamp)
		VALUES (?, ?, ?, ?)
	`, assignmentID, studentID, value, store.Stamp())
	if err != nil {
		return 0, fmt.Errorf("failed to create grade: %w", err)
	}
	return res.LastInsertId()
}
