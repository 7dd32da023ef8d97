package core

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"nutritrack/internal/blob"
	"nutritrack/internal/infra/persistence/memory"
	"nutritrack/internal/infra/persistence/postgres"
	"nutritrack/internal/infra/persistence/postgres/testutil"
	"nutritrack/internal/infra/persistence/sealed"
	"nutritrack/internal/infra/persistence/sqlite"
	"nutritrack/internal/snapshot"
	"nutritrack/pkg/domain"
)

func openAndExercise(t *testing.T, cfg StorageConfig) domain.StateSlot {
	t.Helper()
	ctx := context.Background()
	slot, closeFn, err := OpenSlot(ctx, cfg)
	if err != nil {
		t.Fatalf("open slot: %v", err)
	}
	t.Cleanup(func() { _ = closeFn() })
	s := Open(ctx, snapshot.NewAdapter(slot, ""))
	if _, err := s.AddPatient(ctx, domain.PatientInput{Name: "Persistida"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, ok := reload(t, slot).Snapshot().FindPatient(5); !ok {
		t.Fatalf("patient not persisted through %s", cfg.Driver)
	}
	return slot
}

func TestOpenSlotMemory(t *testing.T) {
	if _, ok := openAndExercise(t, StorageConfig{Driver: StorageMemory}).(*memory.Slot); !ok {
		t.Fatalf("expected memory slot")
	}
}

func TestOpenSlotDefaultsToSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	slot := openAndExercise(t, StorageConfig{SQLitePath: path})
	s, ok := slot.(*sqlite.Slot)
	if !ok || s.Path() != path {
		t.Fatalf("expected sqlite slot at %s, got %T", path, slot)
	}
}

func TestOpenSlotBlob(t *testing.T) {
	openAndExercise(t, StorageConfig{Driver: StorageBlob, Blob: blob.Config{Driver: blob.DriverMemory}})
}

func TestOpenSlotPostgresStub(t *testing.T) {
	db, conn := testutil.NewStubDB()
	restore := postgres.OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()
	openAndExercise(t, StorageConfig{Driver: StoragePostgres, PostgresDSN: "postgres://stub"})
	if len(conn.Buckets) != 1 {
		t.Fatalf("expected one state row, got %d", len(conn.Buckets))
	}
}

func TestOpenSlotSealed(t *testing.T) {
	slot := openAndExercise(t, StorageConfig{
		Driver:     StorageMemory,
		Passphrase: "secreto",
		SealParams: sealed.Params{N: 1 << 10, R: 8, P: 1},
	})
	if _, ok := slot.(*sealed.Slot); !ok {
		t.Fatalf("expected sealed slot, got %T", slot)
	}
	raw, err := slot.(*sealed.Slot).Inner().Read(context.Background(), domain.DefaultStateKey)
	if err != nil {
		t.Fatalf("read inner: %v", err)
	}
	if strings.Contains(string(raw), "Persistida") {
		t.Fatalf("sealed payload leaked plaintext")
	}
}

func TestOpenSlotErrors(t *testing.T) {
	ctx := context.Background()
	if _, closeFn, err := OpenSlot(ctx, StorageConfig{Driver: "floppy"}); err == nil || closeFn == nil {
		t.Fatalf("expected unknown driver error and non-nil close")
	}
	if _, _, err := OpenSlot(ctx, StorageConfig{Driver: StorageMongo}); err == nil {
		t.Fatalf("expected error for mongo without uri")
	}
	if _, _, err := OpenSlot(ctx, StorageConfig{Driver: StorageBlob, Blob: blob.Config{Driver: "tape"}}); err == nil {
		t.Fatalf("expected blob driver error")
	}
}
