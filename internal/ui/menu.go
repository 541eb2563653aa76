// Package ui is the interactive console for entering grades, running
// calculations, and viewing reports.
package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/betyg/internal/app"
	"github.com/shrimpsizemoose/betyg/internal/export"
	"github.com/shrimpsizemoose/betyg/internal/metrics"
	"github.com/shrimpsizemoose/betyg/internal/models"
	"github.com/shrimpsizemoose/betyg/internal/reports"
)

const help = `Commands:
  courses              List courses
  course <id>          Select the current course
  newcourse            Create a course
  roster               Show the current course roster
  addstudent           Add a student to the current course
  assignments          List assignments for the current course
  enter                Enter grades for an assignment
  calc                 Run the grade calculation for the current course
  report               Show the grade report (compact)
  fullreport           Show the grade report with histograms
  export <path>        Export the course grade table as CSV
  help                 Show this message
  quit                 Exit`

type commandHandler func(args []string) error

// Menu drives the console loop. It owns the current course selection; the
// store and engine come from the service.
type Menu struct {
	service *app.Service
	in      *bufio.Scanner
	out     io.Writer

	courseID     int64
	courseNumber string
}

func NewMenu(service *app.Service) *Menu {
	return &Menu{
		service: service,
		in:      bufio.NewScanner(os.Stdin),
		out:     os.Stdout,
	}
}

func (m *Menu) route(cmd string) (commandHandler, bool) {
	commands := map[string]commandHandler{
		"courses":     m.handleCourses,
		"course":      m.handleSelectCourse,
		"newcourse":   m.handleNewCourse,
		"roster":      m.handleRoster,
		"addstudent":  m.handleAddStudent,
		"assignments": m.handleAssignments,
		"enter":       m.handleEnterGrades,
		"calc":        m.handleCalc,
		"report":      m.handleReport,
		"fullreport":  m.handleFullReport,
		"export":      m.handleExport,
	}
	handler, found := commands[cmd]
	return handler, found
}

// Run loops until quit or EOF.
func (m *Menu) Run() {
	fmt.Fprintln(m.out, help)
	for {
		fmt.Fprint(m.out, "> ")
		if !m.in.Scan() {
			return
		}
		fields := strings.Fields(m.in.Text())
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "quit", "exit":
			return
		case "help":
			fmt.Fprintln(m.out, help)
			continue
		}

		handler, ok := m.route(cmd)
		if !ok {
			fmt.Fprintf(m.out, "Unknown command %q, try help\n", cmd)
			continue
		}
		if err := handler(args); err != nil {
			logger.Error.Printf("Command error: %v", err)
			fmt.Fprintf(m.out, "Error: %v\n", err)
		}
	}
}

func (m *Menu) prompt(question string) string {
	fmt.Fprint(m.out, question)
	if !m.in.Scan() {
		return ""
	}
	return strings.TrimSpace(m.in.Text())
}

func (m *Menu) requireCourse() error {
	if m.courseID == 0 {
		return fmt.Errorf("no course selected, use 'courses' and 'course <id>'")
	}
	return nil
}

func (m *Menu) handleCourses(_ []string) error {
	courses, err := m.service.Store.ListCourses()
	if err != nil {
		return err
	}
	for _, c := range courses {
		fmt.Fprintf(m.out, "  [%d] %s: %s, %s %d\n", c.ID, c.Number, c.Name, c.Semester, c.Year)
	}
	if len(courses) == 0 {
		fmt.Fprintln(m.out, "  (no courses, try newcourse)")
	}
	return nil
}

func (m *Menu) handleSelectCourse(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: course <id>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("bad course id %q", args[0])
	}
	course, err := m.service.Store.GetCourse(id)
	if err != nil {
		return err
	}
	if course == nil {
		return fmt.Errorf("no course with id %d", id)
	}
	m.courseID = course.ID
	m.courseNumber = course.Number
	fmt.Fprintf(m.out, "Selected %s: %s, %s %d\n", course.Number, course.Name, course.Semester, course.Year)
	return nil
}

func (m *Menu) handleNewCourse(_ []string) error {
	course := &models.Course{
		Number:   m.prompt("Course number: "),
		Name:     m.prompt("Course name: "),
		Semester: m.prompt("Semester: "),
	}
	year, err := strconv.Atoi(m.prompt("Year: "))
	if err != nil {
		return fmt.Errorf("bad year")
	}
	course.Year = year
	if err := course.Validate(); err != nil {
		return err
	}
	existing, err := m.service.Store.FindCourse(course.Number, course.Semester, course.Year)
	if err != nil {
		return err
	}
	if existing != nil {
		m.courseID = existing.ID
		m.courseNumber = existing.Number
		fmt.Fprintf(m.out, "Course already exists as %d, selected it\n", existing.ID)
		return nil
	}
	id, err := m.service.Store.CreateCourse(course)
	if err != nil {
		return err
	}
	m.courseID = id
	m.courseNumber = course.Number
	fmt.Fprintf(m.out, "Created course %d, selected it\n", id)
	return nil
}

func (m *Menu) handleRoster(_ []string) error {
	if err := m.requireCourse(); err != nil {
		return err
	}
	students, err := m.service.Store.ListCourseStudents(m.courseID)
	if err != nil {
		return err
	}
	for _, s := range students {
		fmt.Fprintf(m.out, "  %s, %s (SID: %s)\n", s.LastName, s.FirstName, s.SID)
	}
	fmt.Fprintf(m.out, "%d students\n", len(students))
	return nil
}

func (m *Menu) handleAddStudent(_ []string) error {
	if err := m.requireCourse(); err != nil {
		return err
	}
	sid := m.prompt("SID: ")
	student, err := m.service.Store.GetStudentBySID(sid)
	if err != nil {
		return err
	}
	if student == nil {
		s := &models.Student{
			SID:       sid,
			LastName:  m.prompt("Last name: "),
			FirstName: m.prompt("First name: "),
			Email:     m.prompt("Email (optional): "),
		}
		if err := s.Validate(); err != nil {
			return err
		}
		id, err := m.service.Store.CreateStudent(s)
		if err != nil {
			return err
		}
		s.ID = id
		student = s
	}
	return m.service.Store.AddCourseMember(m.courseID, student.ID)
}

func (m *Menu) handleAssignments(_ []string) error {
	if err := m.requireCourse(); err != nil {
		return err
	}
	assignments, err := m.service.Store.SelectAssignments(m.courseID, "")
	if err != nil {
		return err
	}
	for _, a := range assignments {
		fmt.Fprintf(m.out, "  [%d] %-25s due %-12s type %-10s weight %s\n",
			a.ID, a.Name, a.DueDate, a.GradeType, a.Weight)
	}
	return nil
}

// handleEnterGrades walks the roster for one assignment, prompting for a
// value per student. Empty input skips a student; an existing grade is
// shown and updated in place.
func (m *Menu) handleEnterGrades(_ []string) error {
	if err := m.requireCourse(); err != nil {
		return err
	}

	assignment, err := m.pickOrCreateAssignment()
	if err != nil {
		return err
	}

	students, err := m.service.Store.ListCourseStudents(m.courseID)
	if err != nil {
		return err
	}

	for _, s := range students {
		grades, err := m.service.Store.SelectGrades(s.ID, assignment.ID)
		if err != nil {
			return err
		}
		current := ""
		var gradeID *int64
		if len(grades) > 0 {
			current = fmt.Sprintf(" [%s]", grades[0].Value)
			gradeID = &grades[0].ID
		}
		value := m.prompt(fmt.Sprintf("%s, %s%s: ", s.LastName, s.FirstName, current))
		if value == "" {
			continue
		}
		if _, err := m.service.Store.CreateOrUpdateGrade(gradeID, assignment.ID, s.ID, value); err != nil {
			return err
		}
		metrics.GradesWrittenTotal.WithLabelValues(m.courseNumber, "entered").Inc()
		if n, err := strconv.ParseFloat(value, 64); err == nil {
			metrics.GradeValueHistogram.WithLabelValues(m.courseNumber).Observe(n)
		}
	}
	return nil
}

func (m *Menu) pickOrCreateAssignment() (*models.Assignment, error) {
	name := m.prompt("Assignment name: ")
	if name == "" {
		return nil, fmt.Errorf("assignment name required")
	}
	existing, err := m.service.Store.SelectAssignments(m.courseID, name)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return &existing[0], nil
	}

	a := &models.Assignment{
		CourseID:  m.courseID,
		Name:      name,
		DueDate:   m.prompt("Due date (YYYY-MM-DD): "),
		GradeType: models.GradeType(m.prompt("Grade type (letter/points/4points/percentage): ")),
		Weight:    models.Weight(m.prompt("Weight: ")),
	}
	if !a.GradeType.Valid() {
		return nil, fmt.Errorf("unknown grade type %q", a.GradeType)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	id, err := m.service.Store.CreateAssignment(a)
	if err != nil {
		return nil, err
	}
	a.ID = id
	return a, nil
}

func (m *Menu) handleCalc(_ []string) error {
	if err := m.requireCourse(); err != nil {
		return err
	}
	summary, err := m.service.Engine.Recalculate(m.courseID)
	if err != nil {
		return err
	}
	if summary.FuncMissing {
		fmt.Fprintf(m.out, "Could not locate grade calculation function %s. Have you registered it?\n", summary.Key)
		return nil
	}
	fmt.Fprintf(m.out, "Calculated %d grades for %d students, %d skipped\n",
		summary.Calculated, summary.Students, summary.Skipped)

	ids := make([]int64, 0, len(summary.Errors))
	for id := range summary.Errors {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		fmt.Fprintf(m.out, "  student %d skipped: %v\n", id, summary.Errors[id])
	}
	return nil
}

func (m *Menu) handleReport(_ []string) error {
	return m.printReport(true)
}

func (m *Menu) handleFullReport(_ []string) error {
	return m.printReport(false)
}

func (m *Menu) printReport(compact bool) error {
	if err := m.requireCourse(); err != nil {
		return err
	}
	r := reports.NewGradeReport(m.service.Store, m.courseID)
	if err := r.Run(); err != nil {
		return err
	}
	text, err := r.AsText(compact)
	if err != nil {
		return err
	}
	fmt.Fprint(m.out, text)
	return nil
}

func (m *Menu) handleExport(args []string) error {
	if err := m.requireCourse(); err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: export <path>")
	}
	path := args[0]
	if _, err := os.Stat(path); err == nil {
		if m.prompt(fmt.Sprintf("File %s exists, overwrite? (y/n): ", path)) != "y" {
			fmt.Fprintln(m.out, "Abort.")
			return nil
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := export.WriteCourseCSV(m.service.Store, m.courseID, f); err != nil {
		return err
	}
	fmt.Fprintf(m.out, "Grades exported to %s\n", path)
	return nil
}
