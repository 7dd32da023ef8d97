// Package domain defines the persisted NutriTrack snapshot, its entities and the
// small value types shared by the store, the projections and the slot backends.
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EntityType identifies the collection a record belongs to.
type EntityType string

// Supported entity type identifiers used in events and errors.
const (
	EntityPatient     EntityType = "patient"
	EntityAppointment EntityType = "appointment"
	EntityPlan        EntityType = "plan"
	EntityReport      EntityType = "report"
	EntityProfile     EntityType = "profile"
	EntitySession     EntityType = "session"
	EntityCredentials EntityType = "credentials"
)

// Action indicates the type of modification performed.
type Action string

// Change actions emitted to subscribers.
const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Role identifies who holds the session. The persisted values keep the names used
// by the first release of the application so older snapshots still load.
type Role string

const (
	// RoleNone marks a logged-out session; it is persisted as JSON null.
	RoleNone Role = ""
	// RoleNutritionist has full management rights.
	RoleNutritionist Role = "nutriologo"
	// RolePatient is scoped to the records of a single patient.
	RolePatient Role = "usuario"
)

// Roles lists every role that owns credentials and a profile.
func Roles() []Role { return []Role{RoleNutritionist, RolePatient} }

// MarshalJSON encodes RoleNone as null.
func (r Role) MarshalJSON() ([]byte, error) {
	if r == RoleNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(r))
}

// UnmarshalJSON accepts null as RoleNone.
func (r *Role) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = RoleNone
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*r = Role(s)
	return nil
}

// AppointmentStatus enumerates the appointment workflow states.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "Pendiente"
	StatusConfirmed AppointmentStatus = "Confirmada"
	StatusCompleted AppointmentStatus = "Completada"
	StatusCancelled AppointmentStatus = "Cancelada"
)

// Weekday names used by meal plans.
const (
	Monday    = "Lunes"
	Tuesday   = "Martes"
	Wednesday = "Miercoles"
	Thursday  = "Jueves"
	Friday    = "Viernes"
	Saturday  = "Sabado"
	Sunday    = "Domingo"
)

// Weekdays returns the plan day names in calendar order.
func Weekdays() []string {
	return []string{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
}

// Session is the active identity (`auth` in the persisted snapshot).
type Session struct {
	IsAuthenticated bool   `json:"isAuthenticated"`
	Role            Role   `json:"role"`
	Username        string `json:"username"`
	FullName        string `json:"fullName"`
	PatientID       *int   `json:"patientId"`
}

// Patient is a person followed by the nutritionist.
type Patient struct {
	ID     int     `json:"id"`
	Name   string  `json:"name"`
	Age    int     `json:"age"`
	Weight float64 `json:"weight"`
	Height float64 `json:"height"`
	Target string  `json:"target"`
	Notes  string  `json:"notes"`
}

// Appointment is a scheduled consultation for a patient.
type Appointment struct {
	ID        int               `json:"id"`
	PatientID int               `json:"patientId"`
	Date      string            `json:"date"`
	Time      string            `json:"time"`
	Status    AppointmentStatus `json:"status"`
	Notes     string            `json:"notes"`
}

// SortKey is the string the appointment collection is ordered by.
func (a Appointment) SortKey() string { return a.Date + " " + a.Time }

// Plan is one day of a patient's meal plan.
type Plan struct {
	ID        int    `json:"id"`
	PatientID int    `json:"patientId"`
	Day       string `json:"day"`
	Breakfast string `json:"breakfast"`
	Lunch     string `json:"lunch"`
	Dinner    string `json:"dinner"`
	Snack     string `json:"snack"`
}

// Report is a progress measurement.
type Report struct {
	ID        int     `json:"id"`
	PatientID int     `json:"patientId"`
	Date      string  `json:"date"`
	Weight    float64 `json:"weight"`
	BMI       float64 `json:"bmi"`
	Calories  int     `json:"calories"`
}

// Profile is the per-role account card.
type Profile struct {
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Specialty    string `json:"specialty"`
	Schedule     string `json:"schedule"`
	Registration string `json:"registration"`
}

// Sequences holds the highest id ever issued per collection.
type Sequences struct {
	Patients     int `json:"patients"`
	Appointments int `json:"appointments"`
	Plans        int `json:"plans"`
	Reports      int `json:"reports"`
}

// Outcome is the structured result of operations that can be refused.
type Outcome struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// Event is delivered to store subscribers after every committed mutation.
type Event struct {
	ID        uuid.UUID
	Operation string
	Entity    EntityType
	Action    Action
	EntityID  int
	At        time.Time
}
