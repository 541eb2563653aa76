package calc

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/shrimpsizemoose/betyg/internal/metrics"
	"github.com/shrimpsizemoose/betyg/internal/models"
	"github.com/shrimpsizemoose/betyg/internal/store"
)

var (
	ErrMissingValue        = errors.New("no value given for calculated grade")
	ErrMissingIdentifier   = errors.New("no assignment name, grade id, or assignment id given for calculated grade")
	ErrAmbiguousAssignment = errors.New("multiple assignments match calculated grade name")
)

const calcAssignmentDescription = "(Assignment for calculated grade)"

// Engine resolves a course's calculation function and applies it to every
// student on the roster.
type Engine struct {
	store    store.GradeStore
	registry *Registry
}

func NewEngine(s store.GradeStore, r *Registry) *Engine {
	return &Engine{store: s, registry: r}
}

// Summary is what a recalculation run reports back to the caller. The
// engine never prints; skip counts and per-student errors are returned
// here for the UI to present.
type Summary struct {
	Key         string
	FuncMissing bool
	Students    int
	Calculated  int
	Skipped     int
	Errors      map[int64]error
}

// Recalculate runs the course's calculation function over each student's
// entered grades and persists the proposals it returns. A missing function
// is reported in the summary, not an error. One student's failure (error
// or panic in the user function, or a bad proposal) skips that student and
// the run continues.
func (e *Engine) Recalculate(courseID int64) (*Summary, error) {
	course, err := e.store.GetCourse(courseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, fmt.Errorf("course %d: %w", courseID, store.ErrNoRecordsFound)
	}

	summary := &Summary{
		Key:    Key(course.Number, course.Semester, course.Year),
		Errors: make(map[int64]error),
	}

	fn, ok := e.registry.Lookup(summary.Key)
	if !ok {
		summary.FuncMissing = true
		metrics.RecalcRunsTotal.WithLabelValues(course.Number, "func_missing").Inc()
		return summary, nil
	}

	students, err := e.store.ListCourseStudents(courseID)
	if err != nil {
		return nil, err
	}
	allGrades, err := e.store.SelectGradesForCourseMembers(courseID, nil)
	if err != nil {
		return nil, err
	}

	summary.Students = len(students)
	for _, s := range students {
		entered := enteredFor(allGrades, s.ID)

		out, err := invoke(fn, entered)
		if err == nil {
			var proposals []Proposal
			proposals, err = normalize(out)
			if err == nil {
				err = e.persist(course, s.ID, proposals, summary)
			}
		}
		if err != nil {
			summary.Skipped++
			summary.Errors[s.ID] = err
			metrics.RecalcStudentsSkippedTotal.WithLabelValues(course.Number).Inc()
		}
	}

	metrics.RecalcRunsTotal.WithLabelValues(course.Number, "ok").Inc()
	return summary, nil
}

// enteredFor filters one student's rows, dropping previously calculated
// (CALC weight) grades so recalculation never feeds on its own output.
func enteredFor(rows []models.GradeRow, studentID int64) []models.GradeRow {
	var out []models.GradeRow
	for _, r := range rows {
		if r.StudentID != studentID || r.Weight.IsCalculated() {
			continue
		}
		out = append(out, r)
	}
	return out
}

// invoke runs a user function behind a panic boundary.
func invoke(fn Func, rows []models.GradeRow) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("calculation function panicked: %v", r)
		}
	}()
	return fn(rows)
}

// normalize accepts the two documented output shapes and transposes the
// map form into proposals. Map keys are sorted so persistence order is
// deterministic.
func normalize(out any) ([]Proposal, error) {
	switch v := out.(type) {
	case nil:
		return nil, nil
	case []Proposal:
		return v, nil
	case Proposal:
		return []Proposal{v}, nil
	case map[string]any:
		names := make([]string, 0, len(v))
		for name := range v {
			names = append(names, name)
		}
		sort.Strings(names)
		proposals := make([]Proposal, 0, len(names))
		for _, name := range names {
			proposals = append(proposals, Proposal{Name: name, Value: v[name]})
		}
		return proposals, nil
	default:
		return nil, fmt.Errorf("unsupported calculation output type %T", out)
	}
}

func (e *Engine) persist(course *models.Course, studentID int64, proposals []Proposal, summary *Summary) error {
	for _, p := range proposals {
		if err := e.saveProposal(course.ID, studentID, p); err != nil {
			return err
		}
		summary.Calculated++
		metrics.GradesWrittenTotal.WithLabelValues(course.Number, "calc").Inc()
	}
	return nil
}

// saveProposal validates one proposal and writes it out, reusing an
// existing grade row when the student already has one for the resolved
// assignment so that reruns never accumulate duplicates.
func (e *Engine) saveProposal(courseID, studentID int64, p Proposal) error {
	if p.Name == "" && p.GradeID == 0 && p.AssignmentID == 0 {
		return ErrMissingIdentifier
	}
	if p.Value == nil {
		return fmt.Errorf("%w (assignment %q)", ErrMissingValue, p.Name)
	}

	value := formatValue(p.Value)

	if p.GradeID != 0 {
		return e.store.UpdateGrade(p.GradeID, value)
	}

	assignmentID := p.AssignmentID
	if assignmentID == 0 {
		existing, err := e.store.SelectAssignments(courseID, p.Name)
		if err != nil {
			return err
		}
		a, err := store.EnsureUnique(existing)
		switch {
		case err == nil:
			assignmentID = a.ID
		case errors.Is(err, store.ErrNoRecordsFound):
			description := p.Description
			if description == "" {
				description = calcAssignmentDescription
			}
			dueDate := p.DueDate
			if dueDate == "" {
				dueDate = time.Now().Format("2006-01-02")
			}
			assignmentID, err = e.store.CreateAssignment(&models.Assignment{
				CourseID:    courseID,
				Name:        p.Name,
				Description: description,
				DueDate:     dueDate,
				GradeType:   p.GradeType,
				Weight:      models.CalcWeight,
			})
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: %q", ErrAmbiguousAssignment, p.Name)
		}
	}

	var gradeID *int64
	grades, err := e.store.SelectGrades(studentID, assignmentID)
	if err != nil {
		return err
	}
	g, err := store.EnsureUnique(grades)
	switch {
	case err == nil:
		gradeID = &g.ID
	case errors.Is(err, store.ErrNoRecordsFound):
		// first calculation for this student and assignment
	default:
		return err
	}

	_, err = e.store.CreateOrUpdateGrade(gradeID, assignmentID, studentID, value)
	return err
}

// formatValue renders a proposal value for the text-typed value column.
func formatValue(v any) string {
	switch g := v.(type) {
	case string:
		return g
	case float64:
		return strconv.FormatFloat(g, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(g), 'g', -1, 32)
	case int:
		return strconv.Itoa(g)
	case int64:
		return strconv.FormatInt(g, 10)
	case bool:
		return strconv.FormatBool(g)
	default:
		return fmt.Sprint(g)
	}
}
