package core

import (
	"context"
	"crypto/subtle"
	"strconv"
	"strings"
	"unicode/utf8"

	"nutritrack/pkg/domain"
)

// User-facing messages returned in Outcome.
const (
	MsgWrongPassword    = "Contrasena incorrecta. Prueba con 123456."
	MsgPatientRequired  = "Debes seleccionar un paciente para ingresar como usuario."
	MsgNoSession        = "No hay una sesion activa."
	MsgCurrentMismatch  = "La contrasena actual no coincide."
	MsgPasswordTooShort = "La nueva contrasena debe tener al menos 6 caracteres."
	MsgPasswordChanged  = "Contrasena actualizada correctamente."
)

// MinPasswordLength is counted in characters after trimming.
const MinPasswordLength = 6

func secretsEqual(given, stored string) bool {
	return subtle.ConstantTimeCompare([]byte(given), []byte(stored)) == 1
}

// Login checks the shared secret of the requested role and opens a session.
// A patient login must name an existing patient; any other role signs in as the
// nutritionist. The error is reserved for write-through failures.
func (s *Store) Login(ctx context.Context, req domain.LoginRequest) (domain.Outcome, error) {
	var out domain.Outcome
	err := s.mutate(ctx, "login", func(st *domain.Snapshot) *change {
		secret, ok := st.Security[req.Role]
		if !ok {
			secret = domain.DefaultSecret
		}
		if !secretsEqual(req.Password, secret) {
			out = domain.Outcome{Message: MsgWrongPassword}
			return refused
		}
		if req.Role == domain.RolePatient {
			patient, found := selectedPatient(*st, req.SelectedPatientID)
			if !found {
				out = domain.Outcome{Message: MsgPatientRequired}
				return refused
			}
			id := patient.ID
			st.Auth = domain.Session{
				IsAuthenticated: true,
				Role:            domain.RolePatient,
				Username:        req.Username,
				FullName:        patient.Name,
				PatientID:       &id,
			}
			setProfileName(st, domain.RolePatient, patient.Name)
			out = domain.Outcome{OK: true}
			return &change{entity: domain.EntitySession, action: domain.ActionCreate, id: id}
		}
		fullName := strings.TrimSpace(req.Username)
		if fullName == "" {
			fullName = domain.DefaultNutritionistName
		}
		st.Auth = domain.Session{
			IsAuthenticated: true,
			Role:            domain.RoleNutritionist,
			Username:        req.Username,
			FullName:        fullName,
		}
		setProfileName(st, domain.RoleNutritionist, fullName)
		out = domain.Outcome{OK: true}
		return &change{entity: domain.EntitySession, action: domain.ActionCreate}
	})
	return out, err
}

func selectedPatient(st domain.Snapshot, raw string) (domain.Patient, bool) {
	id, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return domain.Patient{}, false
	}
	for _, p := range st.Patients {
		if float64(p.ID) == id {
			return p, true
		}
	}
	return domain.Patient{}, false
}

func setProfileName(st *domain.Snapshot, role domain.Role, name string) {
	p := st.Profiles[role]
	p.FullName = name
	st.Profiles[role] = p
}

// Logout resets the session to the logged-out default.
func (s *Store) Logout(ctx context.Context) error {
	return s.mutate(ctx, "logout", func(st *domain.Snapshot) *change {
		st.Auth = domain.LoggedOutSession()
		return &change{entity: domain.EntitySession, action: domain.ActionDelete}
	})
}

// ChangePassword replaces the secret of the current role.
func (s *Store) ChangePassword(ctx context.Context, current, next string) (domain.Outcome, error) {
	var out domain.Outcome
	err := s.mutate(ctx, "change_password", func(st *domain.Snapshot) *change {
		role := st.Auth.Role
		if role == domain.RoleNone {
			out = domain.Outcome{Message: MsgNoSession}
			return refused
		}
		saved, ok := st.Security[role]
		if !ok || !secretsEqual(current, saved) {
			out = domain.Outcome{Message: MsgCurrentMismatch}
			return refused
		}
		if utf8.RuneCountInString(strings.TrimSpace(next)) < MinPasswordLength {
			out = domain.Outcome{Message: MsgPasswordTooShort}
			return refused
		}
		st.Security[role] = next
		out = domain.Outcome{OK: true, Message: MsgPasswordChanged}
		return &change{entity: domain.EntityCredentials, action: domain.ActionUpdate}
	})
	return out, err
}

// UpdateProfile merges the set fields into the current role's profile. A new
// full name is mirrored into the session. Without a session nothing happens.
func (s *Store) UpdateProfile(ctx context.Context, in domain.ProfileInput) error {
	return s.mutate(ctx, "update_profile", func(st *domain.Snapshot) *change {
		role := st.Auth.Role
		if role == domain.RoleNone {
			return nil
		}
		p := st.Profiles[role]
		assign := func(dst *string, src *string) {
			if src != nil {
				*dst = text(*src)
			}
		}
		assign(&p.FullName, in.FullName)
		assign(&p.Email, in.Email)
		assign(&p.Phone, in.Phone)
		assign(&p.Specialty, in.Specialty)
		assign(&p.Schedule, in.Schedule)
		assign(&p.Registration, in.Registration)
		st.Profiles[role] = p
		if in.FullName != nil {
			st.Auth.FullName = p.FullName
		}
		return &change{entity: domain.EntityProfile, action: domain.ActionUpdate}
	})
}
