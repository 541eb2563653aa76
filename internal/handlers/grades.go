package handlers

import (
	"strconv"
	"time"

	"encoding/json"
	"net/http"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/betyg/internal/app"
	"github.com/shrimpsizemoose/betyg/internal/metrics"
)

// GradeHandler serves the read-only course API: per-assignment statistics
// for the instructor, and each student's own grades.
type GradeHandler struct {
	service *app.Service
}

func NewGradeHandler(service *app.Service) *GradeHandler {
	return &GradeHandler{
		service: service,
	}
}

func (h *GradeHandler) courseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.PathValue("course")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		logger.Error.Printf("Failed to parse course id from path: %s", r.URL.Path)
		http.Error(w, "Invalid course", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (h *GradeHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		duration := time.Since(start).Seconds()
		metrics.APIRequestDuration.WithLabelValues(
			r.URL.Path,
			r.Method,
			"200",
		).Observe(duration)
	}()

	if !h.service.ValidateHeaders(r.Header) {
		http.Error(w, "these are not the droids you are looking for", http.StatusNotFound)
		return
	}

	course, ok := h.courseID(w, r)
	if !ok {
		return
	}

	stats, err := h.service.Report(course)
	if err != nil {
		logger.Error.Printf("Failed to build report for course %d: %v", course, err)
		http.Error(w, "Failed to build report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"stats": stats,
	}); err != nil {
		logger.Error.Printf("Failed to encode report: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

func (h *GradeHandler) HandleStudentGrades(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		duration := time.Since(start).Seconds()
		metrics.APIRequestDuration.WithLabelValues(
			r.URL.Path,
			r.Method,
			"200",
		).Observe(duration)
	}()

	if !h.service.ValidateHeaders(r.Header) {
		http.Error(w, "these are not the droids you are looking for", http.StatusNotFound)
		return
	}

	course, ok := h.courseID(w, r)
	if !ok {
		return
	}

	student := r.Header.Get(h.service.Config.API.StudentIDHeader)
	if student == "" {
		http.Error(w, "Invalid student id specified", http.StatusUnauthorized)
		return
	}

	if err := h.service.ValidateAuthAndStudent(r, r.PathValue("course"), student); err != nil {
		logger.Error.Printf("Auth failed: %v", err)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	rows, err := h.service.StudentGrades(course, student)
	if err != nil {
		logger.Error.Printf("Failed to fetch grades for %s in course %d: %v", student, course, err)
		http.Error(w, "Failed to fetch grades", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"rows": rows,
	}); err != nil {
		logger.Error.Printf("Failed to encode grades: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}
