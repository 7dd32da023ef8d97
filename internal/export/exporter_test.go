package export

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"nutritrack/internal/blob"
	"nutritrack/pkg/domain"
)

func readBlob(t *testing.T, store blob.Store, key string) (blob.Info, string) {
	t.Helper()
	info, rc, err := store.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("get %s: %v", key, err)
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read %s: %v", key, err)
	}
	return info, string(data)
}

func TestExportToMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := blob.NewMemory()
	snap := domain.DefaultSnapshot()
	snap.Reports[0], snap.Reports[5] = snap.Reports[5], snap.Reports[0]

	res, err := NewExporter(store).Export(ctx, snap, 2)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if res.Info.Key != "reportes/reporte_Carlos_Ruiz.csv" || res.Rows != 6 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.URL != "" {
		t.Fatalf("memory store cannot presign, got %q", res.URL)
	}
	info, body := readBlob(t, store, res.Info.Key)
	if info.ContentType != ContentType || info.Metadata["patient-id"] != "2" {
		t.Fatalf("unexpected blob info %+v", info)
	}
	lines := strings.Split(body, "\n")
	if len(lines) != 7 || lines[0] != "fecha,peso,imc,calorias" || lines[1] != "2025-09-01,83,29,2350" {
		t.Fatalf("unexpected body %q", body)
	}

	snap.Reports = append(snap.Reports, domain.Report{ID: 13, PatientID: 2, Date: "2026-03-01", Weight: 75, BMI: 25.5, Calories: 1900})
	res, err = NewExporter(store).Export(ctx, snap, 2)
	if err != nil {
		t.Fatalf("re-export: %v", err)
	}
	if res.Rows != 7 {
		t.Fatalf("re-export should replace the old file, got %d rows", res.Rows)
	}
	listed, err := store.List(ctx, KeyPrefix)
	if err != nil || len(listed) != 1 {
		t.Fatalf("expected a single export, got %d %v", len(listed), err)
	}
}

func TestExportErrors(t *testing.T) {
	ctx := context.Background()
	exp := NewExporter(blob.NewMemory())
	snap := domain.DefaultSnapshot()

	_, err := exp.Export(ctx, snap, 99)
	var nf ErrNotFound
	if !errors.As(err, &nf) || nf.Entity != domain.EntityPatient || nf.ID != 99 {
		t.Fatalf("expected not found, got %v", err)
	}
	if nf.Error() != "patient 99 not found" {
		t.Fatalf("unexpected message %q", nf.Error())
	}
	if _, err := exp.Export(ctx, snap, 4); !errors.Is(err, ErrNoReports) {
		t.Fatalf("expected ErrNoReports for patient without reports, got %v", err)
	}
}

func TestExportToS3MockPresigns(t *testing.T) {
	ctx := context.Background()
	store := blob.NewMockS3ForTests()
	res, err := NewExporter(store).Export(ctx, domain.DefaultSnapshot(), 1)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(res.URL, "reporte_Ana_Mendoza.csv") || !strings.Contains(res.URL, "X-Amz-Signature") {
		t.Fatalf("expected presigned url, got %q", res.URL)
	}
	_, body := readBlob(t, store, Key("Ana Mendoza"))
	if !strings.HasSuffix(body, "2026-02-01,68,25,1880") {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestExportToFilesystemUsesLocalURL(t *testing.T) {
	store, err := blob.NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("fs store: %v", err)
	}
	res, err := NewExporter(store).Export(context.Background(), domain.DefaultSnapshot(), 1)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if res.URL != "http://local.blob/reportes/reporte_Ana_Mendoza.csv" {
		t.Fatalf("unexpected url %q", res.URL)
	}
}

func TestLookupAndListStoredExports(t *testing.T) {
	ctx := context.Background()
	store := blob.NewMockS3ForTests()
	exp := NewExporter(store)
	snap := domain.DefaultSnapshot()

	if _, err := exp.Lookup(ctx, snap, 1); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("expected blob not found before export, got %v", err)
	}
	var nf ErrNotFound
	if _, err := exp.Lookup(ctx, snap, 99); !errors.As(err, &nf) {
		t.Fatalf("expected unknown patient, got %v", err)
	}
	for _, id := range []int{2, 1} {
		if _, err := exp.Export(ctx, snap, id); err != nil {
			t.Fatalf("export %d: %v", id, err)
		}
	}
	if _, err := store.Put(ctx, "state/other", strings.NewReader("{}"), blob.PutOptions{}); err != nil {
		t.Fatalf("put unrelated: %v", err)
	}

	res, err := exp.Lookup(ctx, snap, 1)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if res.Info.Key != Key("Ana Mendoza") || res.Info.Metadata[MetaPatientID] != "1" || res.Rows != 0 {
		t.Fatalf("unexpected lookup %+v", res)
	}
	if !strings.Contains(res.URL, "X-Amz-Signature") {
		t.Fatalf("expected presigned url, got %q", res.URL)
	}

	listed, err := exp.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 2 || listed[0].Key != Key("Ana Mendoza") || listed[1].Key != Key("Carlos Ruiz") {
		t.Fatalf("unexpected listing %+v", listed)
	}
}
