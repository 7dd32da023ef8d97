package domain

const (
	// DefaultSecret is the first-run secret of every role and the fallback for
	// unknown roles.
	DefaultSecret = "123456"
	// DefaultNutritionistName is shown when a nutritionist logs in without a name.
	DefaultNutritionistName = "Dra. Maria Torres"
)

// DefaultSnapshot returns the first-run state. Every call returns a fresh copy.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		Auth: LoggedOutSession(),
		Security: map[Role]string{
			RoleNutritionist: DefaultSecret,
			RolePatient:      DefaultSecret,
		},
		Profiles:     seedProfiles(),
		Patients:     seedPatients(),
		Appointments: seedAppointments(),
		Plans:        seedPlans(),
		Reports:      seedReports(),
		Sequences:    Sequences{Patients: 4, Appointments: 4, Plans: 3, Reports: 12},
	}
}

func seedProfiles() map[Role]Profile {
	return map[Role]Profile{
		RoleNutritionist: {
			FullName:     DefaultNutritionistName,
			Email:        "maria.torres@nutritrack.com",
			Phone:        "+57 315 000 0000",
			Specialty:    "Nutricion deportiva",
			Schedule:     "Lunes a viernes 08:00 - 17:00",
			Registration: "COL-NT 4082",
		},
		RolePatient: {
			FullName:     "Paciente NutriTrack",
			Email:        "usuario@nutritrack.com",
			Phone:        "+57 300 000 0000",
			Specialty:    "Plan personalizado",
			Schedule:     "Controles quincenales",
			Registration: "Paciente activo",
		},
	}
}

func seedPatients() []Patient {
	return []Patient{
		{ID: 1, Name: "Ana Mendoza", Age: 32, Weight: 68, Height: 164, Target: "Reducir IMC", Notes: "Evitar lactosa y mantener plan hipocalorico."},
		{ID: 2, Name: "Carlos Ruiz", Age: 41, Weight: 83, Height: 176, Target: "Control calorico", Notes: "Aumentar hidratacion y fibra."},
		{ID: 3, Name: "Sofia Ramos", Age: 27, Weight: 59, Height: 165, Target: "Plan deportivo", Notes: "Distribuir proteina durante el dia."},
		{ID: 4, Name: "Luis Herrera", Age: 35, Weight: 76, Height: 171, Target: "Masa muscular", Notes: "Incrementar superavit calorico controlado."},
	}
}

func seedAppointments() []Appointment {
	return []Appointment{
		{ID: 1, PatientID: 1, Date: "2026-02-23", Time: "08:00", Status: StatusConfirmed, Notes: "Revisar adherencia semanal"},
		{ID: 2, PatientID: 2, Date: "2026-02-23", Time: "11:00", Status: StatusPending, Notes: "Control de composicion corporal"},
		{ID: 3, PatientID: 3, Date: "2026-02-24", Time: "09:30", Status: StatusConfirmed, Notes: "Ajuste plan deportivo"},
		{ID: 4, PatientID: 4, Date: "2026-02-25", Time: "14:00", Status: StatusConfirmed, Notes: "Seguimiento masa muscular"},
	}
}

func seedPlans() []Plan {
	return []Plan{
		{ID: 1, PatientID: 1, Day: Monday, Breakfast: "Avena con frutas y chia", Lunch: "Pollo a la plancha con quinoa", Dinner: "Crema de verduras y pavo", Snack: "Yogurt natural con nueces"},
		{ID: 2, PatientID: 2, Day: Tuesday, Breakfast: "Tostadas integrales con huevo", Lunch: "Pescado al horno con ensalada", Dinner: "Sopa de lentejas", Snack: "Banano y almendras"},
		{ID: 3, PatientID: 3, Day: Wednesday, Breakfast: "Smoothie verde con proteina", Lunch: "Arroz integral y carne magra", Dinner: "Ensalada mediterranea", Snack: "Fruta picada"},
	}
}

// seedReports lists patient 2 first. It is not
// date-sorted; the sort invariant applies from the first AddReport onwards.
func seedReports() []Report {
	return []Report{
		{ID: 1, PatientID: 2, Date: "2025-09-01", Weight: 83, BMI: 29, Calories: 2350},
		{ID: 2, PatientID: 2, Date: "2025-10-01", Weight: 81, BMI: 28, Calories: 2210},
		{ID: 3, PatientID: 2, Date: "2025-11-01", Weight: 80, BMI: 27, Calories: 2160},
		{ID: 4, PatientID: 2, Date: "2025-12-01", Weight: 78, BMI: 26.6, Calories: 2050},
		{ID: 5, PatientID: 2, Date: "2026-01-01", Weight: 77, BMI: 26.2, Calories: 1980},
		{ID: 6, PatientID: 2, Date: "2026-02-01", Weight: 76, BMI: 25.9, Calories: 1920},
		{ID: 7, PatientID: 1, Date: "2025-09-01", Weight: 72, BMI: 26.7, Calories: 2100},
		{ID: 8, PatientID: 1, Date: "2025-10-01", Weight: 71, BMI: 26.4, Calories: 2050},
		{ID: 9, PatientID: 1, Date: "2025-11-01", Weight: 70, BMI: 26, Calories: 2000},
		{ID: 10, PatientID: 1, Date: "2025-12-01", Weight: 69, BMI: 25.6, Calories: 1950},
		{ID: 11, PatientID: 1, Date: "2026-01-01", Weight: 68.6, BMI: 25.3, Calories: 1920},
		{ID: 12, PatientID: 1, Date: "2026-02-01", Weight: 68, BMI: 25, Calories: 1880},
	}
}
