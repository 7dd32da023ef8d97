package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"nutritrack/internal/blob"
	"nutritrack/internal/projection"
	"nutritrack/pkg/domain"
)

const (
	// KeyPrefix groups exports inside the blob store.
	KeyPrefix = "reportes/"
	// ContentType is attached to every export.
	ContentType = "text/csv;charset=utf-8"
	// MetaPatientID is the blob metadata key holding the patient id.
	MetaPatientID = "patient-id"
)

// ErrNotFound reports a missing entity.
type ErrNotFound struct {
	Entity domain.EntityType
	ID     int
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// Result describes a published export.
type Result struct {
	Info blob.Info
	// URL is a presigned or local link when the driver can produce one.
	URL string
	// Rows is the number of reports written, excluding the header.
	Rows int
}

// Exporter publishes per-patient report exports to a blob store.
type Exporter struct {
	store blob.Store
}

// NewExporter returns an exporter writing to store.
func NewExporter(store blob.Store) *Exporter {
	return &Exporter{store: store}
}

// Key returns the blob key of a patient's export.
func Key(patientName string) string {
	return KeyPrefix + "reporte_" + strings.ReplaceAll(patientName, " ", "_") + ".csv"
}

// Export renders the reports of patientID in date order and stores them,
// replacing a previous export of the same patient.
func (e *Exporter) Export(ctx context.Context, snap domain.Snapshot, patientID int) (Result, error) {
	patient, ok := snap.FindPatient(patientID)
	if !ok {
		return Result{}, ErrNotFound{Entity: domain.EntityPatient, ID: patientID}
	}
	reports := projection.PatientReports(snap, patientID)
	payload, err := ReportsCSV(reports)
	if err != nil {
		return Result{}, err
	}
	key := Key(patient.Name)
	info, err := e.store.Put(ctx, key, bytes.NewReader(payload), blob.PutOptions{
		ContentType: ContentType,
		Metadata:    map[string]string{MetaPatientID: strconv.Itoa(patientID)},
		Overwrite:   true,
	})
	if err != nil {
		return Result{}, fmt.Errorf("put %s: %w", key, err)
	}
	res := Result{Info: info, Rows: len(reports)}
	res.URL, err = e.link(ctx, info)
	return res, err
}

// Lookup returns the stored export of patientID without rendering it again.
// Rows is left zero. A patient without an export yields blob.ErrNotFound.
func (e *Exporter) Lookup(ctx context.Context, snap domain.Snapshot, patientID int) (Result, error) {
	patient, ok := snap.FindPatient(patientID)
	if !ok {
		return Result{}, ErrNotFound{Entity: domain.EntityPatient, ID: patientID}
	}
	info, err := e.store.Head(ctx, Key(patient.Name))
	if err != nil {
		return Result{}, err
	}
	res := Result{Info: info}
	res.URL, err = e.link(ctx, info)
	return res, err
}

// List returns every stored export ordered by key.
func (e *Exporter) List(ctx context.Context) ([]blob.Info, error) {
	infos, err := e.store.List(ctx, KeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", KeyPrefix, err)
	}
	return infos, nil
}

func (e *Exporter) link(ctx context.Context, info blob.Info) (string, error) {
	url, err := e.store.PresignURL(ctx, info.Key, blob.SignedURLOptions{Method: "GET"})
	switch {
	case err == nil:
		return url, nil
	case errors.Is(err, blob.ErrUnsupported):
		return info.URL, nil
	default:
		return info.URL, fmt.Errorf("presign %s: %w", info.Key, err)
	}
}
