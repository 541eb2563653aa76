// Package calc runs user-registered grade calculation functions and maps
// their output onto persisted calculated grades.
package calc

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shrimpsizemoose/betyg/internal/models"
)

// Func computes one student's calculated grades from their entered
// (non-calculated) grade rows. The return value is either a
// map[string]any from assignment name to value, or a []Proposal.
// Functions are user-authored and untrusted: the engine isolates both
// returned errors and panics per student.
type Func func(entered []models.GradeRow) (any, error)

// Proposal is one calculated grade to persist. Exactly one of Name,
// GradeID, or AssignmentID identifies where the value goes: Name reuses or
// creates an assignment of that name in the course, GradeID updates an
// existing grade directly, AssignmentID files the grade under an existing
// assignment. Value must be present; zero values like 0 or "F" are valid.
type Proposal struct {
	Name         string
	GradeID      int64
	AssignmentID int64
	Value        any
	Description  string
	DueDate      string
	GradeType    models.GradeType
}

// Key builds the registry key for a course: the course number with
// non-identifier characters replaced by underscores, the semester
// lowercased, and the year. "PHIL 12A", "Spring", 2026 keys as
// "PHIL_12A_spring2026".
func Key(number, semester string, year int) string {
	var b strings.Builder
	for _, r := range number {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return fmt.Sprintf("%s_%s%d", b.String(), strings.ToLower(semester), year)
}

// Registry maps course keys to calculation functions. Registration happens
// at startup; lookups at recalculation time.
type Registry struct {
	funcs map[string]Func
}

func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Func)}
}

func (r *Registry) Register(key string, fn Func) {
	r.funcs[key] = fn
}

func (r *Registry) Lookup(key string) (Func, bool) {
	fn, ok := r.funcs[key]
	return fn, ok
}

func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.funcs))
	for k := range r.funcs {
		keys = append(keys, k)
	}
	return keys
}
