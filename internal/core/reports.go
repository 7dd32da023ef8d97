package core

import (
	"context"
	"slices"

	"nutritrack/pkg/domain"
)

func reportFromInput(id int, in domain.ReportInput) domain.Report {
	return domain.Report{
		ID:        id,
		PatientID: integer(in.PatientID),
		Date:      text(in.Date),
		Weight:    number(in.Weight),
		BMI:       number(in.BMI),
		Calories:  integer(in.Calories),
	}
}

// AddReport appends a progress report and re-sorts the collection by date.
func (s *Store) AddReport(ctx context.Context, in domain.ReportInput) (domain.Report, error) {
	var created domain.Report
	err := s.mutate(ctx, "add_report", func(st *domain.Snapshot) *change {
		id := issueID(&st.Sequences.Reports, maxID(st.Reports, func(r domain.Report) int { return r.ID }))
		created = reportFromInput(id, in)
		st.Reports = append(st.Reports, created)
		domain.SortReports(st.Reports)
		return &change{entity: domain.EntityReport, action: domain.ActionCreate, id: id}
	})
	return created, err
}

// UpdateReport replaces the fields of report id and re-sorts by date. Unknown
// ids are ignored.
func (s *Store) UpdateReport(ctx context.Context, id int, in domain.ReportInput) error {
	return s.mutate(ctx, "update_report", func(st *domain.Snapshot) *change {
		i := slices.IndexFunc(st.Reports, func(r domain.Report) bool { return r.ID == id })
		if i < 0 {
			return nil
		}
		st.Reports[i] = reportFromInput(id, in)
		domain.SortReports(st.Reports)
		return &change{entity: domain.EntityReport, action: domain.ActionUpdate, id: id}
	})
}

// RemoveReport deletes report id.
func (s *Store) RemoveReport(ctx context.Context, id int) error {
	return s.mutate(ctx, "remove_report", func(st *domain.Snapshot) *change {
		st.Reports = slices.DeleteFunc(st.Reports, func(r domain.Report) bool { return r.ID == id })
		return &change{entity: domain.EntityReport, action: domain.ActionDelete, id: id}
	})
}
