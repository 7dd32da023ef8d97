// Package projection derives role-scoped read models from a snapshot. Every
// function is pure and recomputes its result from the snapshot it is given.
package projection

import (
	"math"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"nutritrack/pkg/domain"
)

// FallbackPatientName is shown for references to patients that no longer exist.
const FallbackPatientName = "Paciente"

// scope reports whether an item owned by patientID is visible to the session.
func scope(auth domain.Session) func(patientID int) bool {
	switch auth.Role {
	case domain.RoleNutritionist:
		return func(int) bool { return true }
	case domain.RolePatient:
		if auth.PatientID == nil {
			return func(int) bool { return false }
		}
		id := *auth.PatientID
		return func(patientID int) bool { return patientID == id }
	default:
		return func(int) bool { return false }
	}
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// VisibleAppointments returns the appointments the session may see: all of them
// for a nutritionist, the patient's own for a patient user, none otherwise.
func VisibleAppointments(s domain.Snapshot) []domain.Appointment {
	visible := scope(s.Auth)
	return filter(s.Appointments, func(a domain.Appointment) bool { return visible(a.PatientID) })
}

// VisiblePlans scopes plans like VisibleAppointments.
func VisiblePlans(s domain.Snapshot) []domain.Plan {
	visible := scope(s.Auth)
	return filter(s.Plans, func(p domain.Plan) bool { return visible(p.PatientID) })
}

// VisibleReports scopes reports like VisibleAppointments.
func VisibleReports(s domain.Snapshot) []domain.Report {
	visible := scope(s.Auth)
	return filter(s.Reports, func(r domain.Report) bool { return visible(r.PatientID) })
}

// SortedAppointments returns the visible appointments ordered by date and time.
func SortedAppointments(s domain.Snapshot) []domain.Appointment {
	out := VisibleAppointments(s)
	domain.SortAppointments(out)
	return out
}

// UpcomingAppointments returns the first n visible appointments in date-time
// order. A negative n is treated as zero.
func UpcomingAppointments(s domain.Snapshot, n int) []domain.Appointment {
	out := SortedAppointments(s)
	return out[:min(max(n, 0), len(out))]
}

// PatientReports returns the reports of one patient ordered by date.
func PatientReports(s domain.Snapshot, patientID int) []domain.Report {
	out := filter(s.Reports, func(r domain.Report) bool { return r.PatientID == patientID })
	domain.SortReports(out)
	return out
}

// ProgressPercent is the dashboard progress figure in [0, 100].
//
// For a patient user it is the weight lost between the first and last report,
// scaled so that a 33% loss reads as 100. For a nutritionist it is the share of
// patients whose last BMI is not above their first, counting only patients with at
// least two reports in the numerator.
func ProgressPercent(s domain.Snapshot) int {
	reports := VisibleReports(s)
	if len(reports) == 0 {
		return 0
	}
	if s.Auth.Role == domain.RolePatient {
		domain.SortReports(reports)
		first, last := reports[0], reports[len(reports)-1]
		start := first.Weight
		if start == 0 {
			start = 1
		}
		lost := math.Max(0, start-last.Weight)
		return int(math.Min(100, math.Round(lost/start*300)))
	}

	byPatient := make(map[int][]domain.Report)
	for _, r := range reports {
		byPatient[r.PatientID] = append(byPatient[r.PatientID], r)
	}
	improving := 0
	for _, p := range s.Patients {
		own := byPatient[p.ID]
		if len(own) < 2 {
			continue
		}
		domain.SortReports(own)
		if own[len(own)-1].BMI <= own[0].BMI {
			improving++
		}
	}
	total := max(len(s.Patients), 1)
	return int(math.Round(float64(improving) / float64(total) * 100))
}

// Progress labels shown next to the percentage.
const (
	ProgressFavorable  = "Favorable"
	ProgressInProgress = "En proceso"
)

// Dashboard is the summary shown on the landing page.
type Dashboard struct {
	Patients            int
	ActiveAppointments  int
	PendingAppointments int
	Plans               int
	Reports             int
	LatestReportDate    string
	ProgressPercent     int
	ProgressLabel       string
	Upcoming            []domain.Appointment
}

// UpcomingOnDashboard is how many appointments the dashboard lists.
const UpcomingOnDashboard = 3

// BuildDashboard computes the dashboard for the session in s.
func BuildDashboard(s domain.Snapshot) Dashboard {
	appointments := VisibleAppointments(s)
	reports := VisibleReports(s)
	d := Dashboard{
		Patients: len(s.Patients),
		Plans:    len(VisiblePlans(s)),
		Reports:  len(reports),
		Upcoming: UpcomingAppointments(s, UpcomingOnDashboard),
	}
	for _, a := range appointments {
		if a.Status != domain.StatusCancelled {
			d.ActiveAppointments++
		}
		if a.Status == domain.StatusPending {
			d.PendingAppointments++
		}
	}
	for _, r := range reports {
		if r.Date > d.LatestReportDate {
			d.LatestReportDate = r.Date
		}
	}
	d.ProgressPercent = ProgressPercent(s)
	d.ProgressLabel = ProgressInProgress
	if d.ProgressPercent >= 50 {
		d.ProgressLabel = ProgressFavorable
	}
	return d
}

// PatientName resolves a patient id to a display name.
func PatientName(s domain.Snapshot, id int) string {
	if p, ok := s.FindPatient(id); ok {
		return p.Name
	}
	return FallbackPatientName
}

// Initials returns the upper-cased first letters of the first two words.
func Initials(fullName string) string {
	words := strings.Fields(fullName)
	var b strings.Builder
	for _, word := range words[:min(2, len(words))] {
		r, _ := utf8.DecodeRuneInString(word)
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// CanAccess reports whether the session may open a page restricted to allowed
// roles. An empty allowed list admits any authenticated session.
func CanAccess(auth domain.Session, allowed ...domain.Role) bool {
	if !auth.IsAuthenticated {
		return false
	}
	return len(allowed) == 0 || slices.Contains(allowed, auth.Role)
}
