// Package snapshot serialises the whole NutriTrack state into a single durable slot
// and restores it, merging older documents over the current default shape.
package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"

	"nutritrack/pkg/domain"
)

// persisted mirrors the document loosely so that absent and null members can be
// told apart from empty ones.
type persisted struct {
	Auth         json.RawMessage                 `json:"auth"`
	Security     map[domain.Role]*string         `json:"security"`
	Profiles     map[domain.Role]json.RawMessage `json:"profiles"`
	Patients     *[]domain.Patient               `json:"patients"`
	Appointments *[]domain.Appointment           `json:"appointments"`
	Plans        *[]domain.Plan                  `json:"plans"`
	Reports      *[]domain.Report                `json:"reports"`
	Sequences    json.RawMessage                 `json:"sequences"`
}

// Decode parses a persisted document and merges it over DefaultSnapshot.
// auth, security, profiles and sequences merge key by key; collections are taken
// whole when present. Any parse error is returned and nothing is merged.
func Decode(raw []byte) (domain.Snapshot, error) {
	var doc persisted
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	out := domain.DefaultSnapshot()

	if present(doc.Auth) {
		if err := json.Unmarshal(doc.Auth, &out.Auth); err != nil {
			return domain.Snapshot{}, fmt.Errorf("decode auth: %w", err)
		}
	}
	for role, secret := range doc.Security {
		if secret != nil {
			out.Security[role] = *secret
		}
	}
	for role, rawProfile := range doc.Profiles {
		if !present(rawProfile) {
			continue
		}
		profile := out.Profiles[role]
		if err := json.Unmarshal(rawProfile, &profile); err != nil {
			return domain.Snapshot{}, fmt.Errorf("decode profile %s: %w", role, err)
		}
		out.Profiles[role] = profile
	}
	if doc.Patients != nil {
		out.Patients = *doc.Patients
	}
	if doc.Appointments != nil {
		out.Appointments = *doc.Appointments
	}
	if doc.Plans != nil {
		out.Plans = *doc.Plans
	}
	if doc.Reports != nil {
		out.Reports = *doc.Reports
	}

	// Documents written before sequences existed derive them from the ids on disk.
	out.Sequences = domain.Sequences{}
	if present(doc.Sequences) {
		if err := json.Unmarshal(doc.Sequences, &out.Sequences); err != nil {
			return domain.Snapshot{}, fmt.Errorf("decode sequences: %w", err)
		}
	}
	RaiseSequences(&out)
	return Normalize(out), nil
}

// Encode serialises the snapshot without HTML escaping and without a trailing newline.
func Encode(s domain.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(Normalize(s)); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Normalize replaces nil collections and maps with empty ones so that a saved
// snapshot never serialises a collection as null.
func Normalize(s domain.Snapshot) domain.Snapshot {
	if s.Security == nil {
		s.Security = map[domain.Role]string{}
	}
	if s.Profiles == nil {
		s.Profiles = map[domain.Role]domain.Profile{}
	}
	if s.Patients == nil {
		s.Patients = []domain.Patient{}
	}
	if s.Appointments == nil {
		s.Appointments = []domain.Appointment{}
	}
	if s.Plans == nil {
		s.Plans = []domain.Plan{}
	}
	if s.Reports == nil {
		s.Reports = []domain.Report{}
	}
	return s
}

// RaiseSequences lifts every sequence to at least the largest id in its collection.
func RaiseSequences(s *domain.Snapshot) {
	for _, p := range s.Patients {
		s.Sequences.Patients = max(s.Sequences.Patients, p.ID)
	}
	for _, a := range s.Appointments {
		s.Sequences.Appointments = max(s.Sequences.Appointments, a.ID)
	}
	for _, p := range s.Plans {
		s.Sequences.Plans = max(s.Sequences.Plans, p.ID)
	}
	for _, r := range s.Reports {
		s.Sequences.Reports = max(s.Sequences.Reports, r.ID)
	}
}

func present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}
