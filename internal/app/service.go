package app

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/shrimpsizemoose/betyg/internal/calc"
	"github.com/shrimpsizemoose/betyg/internal/models"
	"github.com/shrimpsizemoose/betyg/internal/reports"
	"github.com/shrimpsizemoose/betyg/internal/store"
)

type Service struct {
	Config *Config
	Store  store.GradeStore
	Auth   *Auth
	Engine *calc.Engine
}

func NewService(configPath string, registry *calc.Registry) (*Service, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	gradeStore, err := NewStore(config.Database.DSN, config.Database.MigrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	auth, err := NewAuth(config)
	if err != nil {
		return nil, fmt.Errorf("failed to init auth: %w", err)
	}

	if registry == nil {
		registry = calc.NewRegistry()
	}

	return &Service{
		Config: config,
		Store:  gradeStore,
		Auth:   auth,
		Engine: calc.NewEngine(gradeStore, registry),
	}, nil
}

func (s *Service) ValidateAuthAndStudent(r *http.Request, course, student string) error {
	if !s.Config.Server.EnableAuth {
		return nil
	}

	authHeader := r.Header.Get(s.Auth.tokenHeader)
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return fmt.Errorf("invalid authorization header format")
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")

	return s.Auth.ValidateToken(r.Context(), course, student, token)
}

func (s *Service) ValidateHeaders(headers map[string][]string) bool {
	for _, required := range s.Config.API.RequiredHeaders {
		value := headers[http.CanonicalHeaderKey(required.Name)]
		if len(value) == 0 || !strings.EqualFold(value[0], required.Value) {
			return false
		}
	}
	return true
}

// Report runs the grade report for a course and returns its statistics.
func (s *Service) Report(courseID int64) ([]reports.AssignmentStats, error) {
	r := reports.NewGradeReport(s.Store, courseID)
	if err := r.Run(); err != nil {
		return nil, fmt.Errorf("failed to build grade report: %w", err)
	}
	return r.Stats, nil
}

// StudentGrades returns one student's grade rows for a course, looked up
// by the student's SID.
func (s *Service) StudentGrades(courseID int64, sid string) ([]models.GradeRow, error) {
	student, err := s.Store.GetStudentBySID(sid)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, fmt.Errorf("student %s: %w", sid, store.ErrNoRecordsFound)
	}
	return s.Store.SelectGradesForCourseMembers(courseID, &student.ID)
}

func (s *Service) Close() error {
	var errs []error

	if err := s.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	if err := s.Auth.Close(); err != nil {
		errs = append(errs, fmt.Errorf("auth: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors while closing: %v", errs)
	}
	return nil
}
