package domain

// Input payloads carry raw form values. The store coerces numeric fields and trims
// free text before anything is stored.

// PatientInput is the create/update payload for a patient.
type PatientInput struct {
	Name   string
	Age    string
	Weight string
	Height string
	Target string
	Notes  string
}

// AppointmentInput is the create/update payload for an appointment.
type AppointmentInput struct {
	PatientID string
	Date      string
	Time      string
	Status    AppointmentStatus
	Notes     string
}

// PlanInput is the create/update payload for a meal plan day.
type PlanInput struct {
	PatientID string
	Day       string
	Breakfast string
	Lunch     string
	Dinner    string
	Snack     string
}

// ReportInput is the create payload for a progress report.
type ReportInput struct {
	PatientID string
	Date      string
	Weight    string
	BMI       string
	Calories  string
}

// ProfileInput is a partial profile update; nil fields are left untouched.
type ProfileInput struct {
	FullName     *string
	Email        *string
	Phone        *string
	Specialty    *string
	Schedule     *string
	Registration *string
}

// LoginRequest carries the login form.
type LoginRequest struct {
	Username          string
	Password          string
	Role              Role
	SelectedPatientID string
}
