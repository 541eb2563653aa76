// Package export writes course grade tables as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/betyg/internal/store"
)

// WriteCourseCSV exports a course grade table: a header of
// Name, SID, and the assignment names ordered by due date, then one row
// per student. Missing grades leave the cell blank. If a student somehow
// has two grades for one assignment, the first is kept and a warning is
// logged.
func WriteCourseCSV(s store.GradeStore, courseID int64, w io.Writer) error {
	assignments, err := s.SelectAssignments(courseID, "")
	if err != nil {
		return err
	}
	students, err := s.ListCourseStudents(courseID)
	if err != nil {
		return err
	}
	allGrades, err := s.SelectGradesForCourseMembers(courseID, nil)
	if err != nil {
		return err
	}

	columns := make(map[int64]int, len(assignments))
	header := []string{"Name", "SID"}
	for i, a := range assignments {
		columns[a.ID] = 2 + i
		header = append(header, a.Name)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, st := range students {
		row := make([]string, len(header))
		row[0] = fmt.Sprintf("%s, %s", st.LastName, st.FirstName)
		row[1] = st.SID

		for _, g := range allGrades {
			if g.StudentID != st.ID || g.GradeID == nil {
				continue
			}
			col, ok := columns[g.AssignmentID]
			if !ok {
				continue
			}
			if row[col] != "" {
				logger.Error.Printf(
					"multiple grades for student %s, assignment %s; keeping the first",
					st.SID, g.AssignmentName,
				)
				continue
			}
			row[col] = g.RawValue()
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row for %s: %w", st.SID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
