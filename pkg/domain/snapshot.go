package domain

// Snapshot is the complete persisted application state. Field order matches the
// serialised document.
type Snapshot struct {
	Auth         Session          `json:"auth"`
	Security     map[Role]string  `json:"security"`
	Profiles     map[Role]Profile `json:"profiles"`
	Patients     []Patient        `json:"patients"`
	Appointments []Appointment    `json:"appointments"`
	Plans        []Plan           `json:"plans"`
	Reports      []Report         `json:"reports"`
	Sequences    Sequences        `json:"sequences"`
}

// Clone returns a deep copy that shares no mutable state with s.
func (s Snapshot) Clone() Snapshot {
	cp := s
	cp.Auth = s.Auth.Clone()
	if s.Security != nil {
		cp.Security = make(map[Role]string, len(s.Security))
		for k, v := range s.Security {
			cp.Security[k] = v
		}
	}
	if s.Profiles != nil {
		cp.Profiles = make(map[Role]Profile, len(s.Profiles))
		for k, v := range s.Profiles {
			cp.Profiles[k] = v
		}
	}
	cp.Patients = cloneSlice(s.Patients)
	cp.Appointments = cloneSlice(s.Appointments)
	cp.Plans = cloneSlice(s.Plans)
	cp.Reports = cloneSlice(s.Reports)
	return cp
}

// Clone copies the session including the patient reference.
func (s Session) Clone() Session {
	cp := s
	if s.PatientID != nil {
		id := *s.PatientID
		cp.PatientID = &id
	}
	return cp
}

// LoggedOutSession is the session persisted when nobody is signed in.
func LoggedOutSession() Session {
	return Session{}
}

// FindPatient returns the patient with the given id.
func (s Snapshot) FindPatient(id int) (Patient, bool) {
	for _, p := range s.Patients {
		if p.ID == id {
			return p, true
		}
	}
	return Patient{}, false
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	return append(make([]T, 0, len(in)), in...)
}
