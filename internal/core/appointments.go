package core

import (
	"context"
	"slices"

	"nutritrack/pkg/domain"
)

// Messages returned by CancelAppointmentChecked.
const (
	MsgAlreadyCancelled = "La cita ya esta cancelada."
	MsgCancelled        = "Cita cancelada correctamente."
)

func appointmentFromInput(id int, in domain.AppointmentInput) domain.Appointment {
	status := in.Status
	if status == "" {
		status = domain.StatusPending
	}
	return domain.Appointment{
		ID:        id,
		PatientID: integer(in.PatientID),
		Date:      text(in.Date),
		Time:      text(in.Time),
		Status:    status,
		Notes:     text(in.Notes),
	}
}

// AddAppointment schedules a new appointment and re-sorts the collection.
func (s *Store) AddAppointment(ctx context.Context, in domain.AppointmentInput) (domain.Appointment, error) {
	var created domain.Appointment
	err := s.mutate(ctx, "add_appointment", func(st *domain.Snapshot) *change {
		id := issueID(&st.Sequences.Appointments, maxID(st.Appointments, func(a domain.Appointment) int { return a.ID }))
		created = appointmentFromInput(id, in)
		st.Appointments = append([]domain.Appointment{created}, st.Appointments...)
		domain.SortAppointments(st.Appointments)
		return &change{entity: domain.EntityAppointment, action: domain.ActionCreate, id: id}
	})
	return created, err
}

// UpdateAppointment replaces the editable fields of appointment id and re-sorts.
// Unknown ids are ignored.
func (s *Store) UpdateAppointment(ctx context.Context, id int, in domain.AppointmentInput) error {
	return s.mutate(ctx, "update_appointment", func(st *domain.Snapshot) *change {
		i := slices.IndexFunc(st.Appointments, func(a domain.Appointment) bool { return a.ID == id })
		if i < 0 {
			return nil
		}
		st.Appointments[i] = appointmentFromInput(id, in)
		domain.SortAppointments(st.Appointments)
		return &change{entity: domain.EntityAppointment, action: domain.ActionUpdate, id: id}
	})
}

// RemoveAppointment deletes appointment id. Cancelling keeps the record and is
// the usual way to retire an appointment.
func (s *Store) RemoveAppointment(ctx context.Context, id int) error {
	return s.mutate(ctx, "remove_appointment", func(st *domain.Snapshot) *change {
		st.Appointments = slices.DeleteFunc(st.Appointments, func(a domain.Appointment) bool { return a.ID == id })
		return &change{entity: domain.EntityAppointment, action: domain.ActionDelete, id: id}
	})
}

// CancelAppointment marks appointment id as cancelled, whatever its status.
func (s *Store) CancelAppointment(ctx context.Context, id int) error {
	return s.mutate(ctx, "cancel_appointment", func(st *domain.Snapshot) *change {
		i := slices.IndexFunc(st.Appointments, func(a domain.Appointment) bool { return a.ID == id })
		if i < 0 {
			return nil
		}
		st.Appointments[i].Status = domain.StatusCancelled
		return &change{entity: domain.EntityAppointment, action: domain.ActionUpdate, id: id}
	})
}

// CancelAppointmentChecked cancels appointment id and reports whether it
// already was cancelled.
func (s *Store) CancelAppointmentChecked(ctx context.Context, id int) (domain.Outcome, error) {
	var out domain.Outcome
	err := s.mutate(ctx, "cancel_appointment", func(st *domain.Snapshot) *change {
		i := slices.IndexFunc(st.Appointments, func(a domain.Appointment) bool { return a.ID == id })
		if i < 0 {
			return nil
		}
		if st.Appointments[i].Status == domain.StatusCancelled {
			out = domain.Outcome{Message: MsgAlreadyCancelled}
			return refused
		}
		st.Appointments[i].Status = domain.StatusCancelled
		out = domain.Outcome{OK: true, Message: MsgCancelled}
		return &change{entity: domain.EntityAppointment, action: domain.ActionUpdate, id: id}
	})
	return out, err
}
