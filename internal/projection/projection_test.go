package projection

import (
	"testing"

	"nutritrack/pkg/domain"
)

func asNutritionist() domain.Snapshot {
	s := domain.DefaultSnapshot()
	s.Auth = domain.Session{IsAuthenticated: true, Role: domain.RoleNutritionist, Username: "Ana", FullName: "Ana"}
	return s
}

func asPatient(id int) domain.Snapshot {
	s := domain.DefaultSnapshot()
	s.Auth = domain.Session{IsAuthenticated: true, Role: domain.RolePatient, PatientID: &id}
	return s
}

func TestVisibilityByRole(t *testing.T) {
	nutri := asNutritionist()
	if len(VisibleAppointments(nutri)) != 4 || len(VisiblePlans(nutri)) != 3 || len(VisibleReports(nutri)) != 12 {
		t.Fatalf("nutritionist should see everything")
	}

	patient := asPatient(2)
	for _, a := range VisibleAppointments(patient) {
		if a.PatientID != 2 {
			t.Fatalf("patient saw appointment of %d", a.PatientID)
		}
	}
	if len(VisiblePlans(patient)) != 1 || len(VisibleReports(patient)) != 6 {
		t.Fatalf("unexpected patient scope")
	}

	loggedOut := domain.DefaultSnapshot()
	if len(VisibleAppointments(loggedOut)) != 0 || len(VisiblePlans(loggedOut)) != 0 || len(VisibleReports(loggedOut)) != 0 {
		t.Fatalf("no role should see nothing")
	}

	orphan := domain.DefaultSnapshot()
	orphan.Auth = domain.Session{IsAuthenticated: true, Role: domain.RolePatient}
	if len(VisibleReports(orphan)) != 0 {
		t.Fatalf("patient session without patient id should see nothing")
	}
}

func TestVisibleDoesNotAliasSnapshot(t *testing.T) {
	s := asNutritionist()
	out := VisibleReports(s)
	out[0].Weight = -1
	if s.Reports[0].Weight == -1 {
		t.Fatalf("projection aliased snapshot storage")
	}
}

func TestUpcomingAppointments(t *testing.T) {
	s := asNutritionist()
	s.Appointments[0], s.Appointments[3] = s.Appointments[3], s.Appointments[0]
	up := UpcomingAppointments(s, 3)
	if len(up) != 3 || up[0].ID != 1 || up[1].ID != 2 || up[2].ID != 3 {
		t.Fatalf("unexpected upcoming %+v", up)
	}
	if len(UpcomingAppointments(s, 10)) != 4 || len(UpcomingAppointments(s, -1)) != 0 {
		t.Fatalf("n must be clamped to the collection")
	}
	if s.Appointments[0].ID != 4 {
		t.Fatalf("sorting must not reorder the snapshot")
	}
}

func TestPatientReportsSortedByDate(t *testing.T) {
	s := domain.DefaultSnapshot()
	s.Reports[0], s.Reports[5] = s.Reports[5], s.Reports[0]
	got := PatientReports(s, 2)
	if len(got) != 6 {
		t.Fatalf("expected 6 reports, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Date > got[i].Date {
			t.Fatalf("reports out of order at %d", i)
		}
	}
	if len(PatientReports(s, 4)) != 0 {
		t.Fatalf("patient 4 has no reports")
	}
}

func TestProgressPercent(t *testing.T) {
	cases := []struct {
		name string
		snap domain.Snapshot
		want int
	}{
		{"nutritionist share of improving patients", asNutritionist(), 50},
		{"patient 2 weight loss", asPatient(2), 25},
		{"patient 1 weight loss", asPatient(1), 17},
		{"patient without reports", asPatient(4), 0},
		{"logged out", domain.DefaultSnapshot(), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ProgressPercent(tc.snap); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestProgressPercentEdgeCases(t *testing.T) {
	gain := asPatient(3)
	gain.Reports = []domain.Report{
		{ID: 1, PatientID: 3, Date: "2026-01-01", Weight: 59},
		{ID: 2, PatientID: 3, Date: "2026-02-01", Weight: 61},
	}
	if got := ProgressPercent(gain); got != 0 {
		t.Fatalf("weight gain must clamp to 0, got %d", got)
	}

	big := asPatient(3)
	big.Reports = []domain.Report{
		{ID: 1, PatientID: 3, Date: "2026-02-01", Weight: 50},
		{ID: 2, PatientID: 3, Date: "2026-01-01", Weight: 100},
	}
	if got := ProgressPercent(big); got != 100 {
		t.Fatalf("large loss must clamp to 100, got %d", got)
	}

	zero := asPatient(3)
	zero.Reports = []domain.Report{{ID: 1, PatientID: 3, Date: "2026-01-01", Weight: 0}}
	if got := ProgressPercent(zero); got != 100 {
		t.Fatalf("zero start weight is measured against 1, got %d", got)
	}

	empty := asNutritionist()
	empty.Patients = nil
	if got := ProgressPercent(empty); got != 0 {
		t.Fatalf("no patients should give 0, got %d", got)
	}
}

func TestBuildDashboard(t *testing.T) {
	s := asNutritionist()
	s.Appointments[2].Status = domain.StatusCancelled
	d := BuildDashboard(s)
	if d.Patients != 4 || d.ActiveAppointments != 3 || d.PendingAppointments != 1 || d.Plans != 3 || d.Reports != 12 {
		t.Fatalf("unexpected counts %+v", d)
	}
	if d.LatestReportDate != "2026-02-01" || d.ProgressPercent != 50 || d.ProgressLabel != ProgressFavorable {
		t.Fatalf("unexpected summary %+v", d)
	}
	if len(d.Upcoming) != UpcomingOnDashboard {
		t.Fatalf("expected %d upcoming, got %d", UpcomingOnDashboard, len(d.Upcoming))
	}

	p := BuildDashboard(asPatient(1))
	if p.ActiveAppointments != 1 || p.Plans != 1 || p.Reports != 6 || p.ProgressLabel != ProgressInProgress {
		t.Fatalf("unexpected patient dashboard %+v", p)
	}
}

func TestPatientNameAndInitials(t *testing.T) {
	s := domain.DefaultSnapshot()
	if got := PatientName(s, 3); got != "Sofia Ramos" {
		t.Fatalf("unexpected name %q", got)
	}
	if got := PatientName(s, 99); got != FallbackPatientName {
		t.Fatalf("expected fallback, got %q", got)
	}
	for in, want := range map[string]string{
		"Dra. Maria Torres": "DM",
		"  ana   lopez ":    "AL",
		"ñu":                "Ñ",
		"":                  "",
	} {
		if got := Initials(in); got != want {
			t.Fatalf("Initials(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCanAccess(t *testing.T) {
	nutri := asNutritionist().Auth
	patient := asPatient(1).Auth
	if !CanAccess(nutri) || !CanAccess(patient) {
		t.Fatalf("authenticated sessions may open unrestricted pages")
	}
	if !CanAccess(nutri, domain.RoleNutritionist) || CanAccess(patient, domain.RoleNutritionist) {
		t.Fatalf("role restriction not applied")
	}
	if CanAccess(domain.LoggedOutSession()) {
		t.Fatalf("logged out session must be refused")
	}
}
