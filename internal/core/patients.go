package core

import (
	"context"
	"slices"

	"nutritrack/pkg/domain"
)

func patientFromInput(id int, in domain.PatientInput) domain.Patient {
	return domain.Patient{
		ID:     id,
		Name:   text(in.Name),
		Age:    integer(in.Age),
		Weight: number(in.Weight),
		Height: number(in.Height),
		Target: text(in.Target),
		Notes:  text(in.Notes),
	}
}

// AddPatient inserts a new patient at the front of the collection.
func (s *Store) AddPatient(ctx context.Context, in domain.PatientInput) (domain.Patient, error) {
	var created domain.Patient
	err := s.mutate(ctx, "add_patient", func(st *domain.Snapshot) *change {
		id := issueID(&st.Sequences.Patients, maxID(st.Patients, func(p domain.Patient) int { return p.ID }))
		created = patientFromInput(id, in)
		st.Patients = append([]domain.Patient{created}, st.Patients...)
		return &change{entity: domain.EntityPatient, action: domain.ActionCreate, id: id}
	})
	return created, err
}

// UpdatePatient replaces the editable fields of patient id. Unknown ids are ignored.
func (s *Store) UpdatePatient(ctx context.Context, id int, in domain.PatientInput) error {
	return s.mutate(ctx, "update_patient", func(st *domain.Snapshot) *change {
		i := slices.IndexFunc(st.Patients, func(p domain.Patient) bool { return p.ID == id })
		if i < 0 {
			return nil
		}
		st.Patients[i] = patientFromInput(id, in)
		return &change{entity: domain.EntityPatient, action: domain.ActionUpdate, id: id}
	})
}

// RemovePatient deletes the patient together with every appointment, plan and
// report that references it. A patient session bound to it is signed out.
func (s *Store) RemovePatient(ctx context.Context, id int) error {
	return s.mutate(ctx, "remove_patient", func(st *domain.Snapshot) *change {
		st.Patients = slices.DeleteFunc(st.Patients, func(p domain.Patient) bool { return p.ID == id })
		st.Appointments = slices.DeleteFunc(st.Appointments, func(a domain.Appointment) bool { return a.PatientID == id })
		st.Plans = slices.DeleteFunc(st.Plans, func(p domain.Plan) bool { return p.PatientID == id })
		st.Reports = slices.DeleteFunc(st.Reports, func(r domain.Report) bool { return r.PatientID == id })
		if st.Auth.Role == domain.RolePatient && st.Auth.PatientID != nil && *st.Auth.PatientID == id {
			st.Auth = domain.LoggedOutSession()
		}
		return &change{entity: domain.EntityPatient, action: domain.ActionDelete, id: id}
	})
}
