package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"nutritrack/pkg/domain"
)

func TestSQLiteSlotPersistAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "state.db")
	slot, err := NewSlot(path)
	if err != nil {
		t.Fatalf("new sqlite slot: %v", err)
	}
	ctx := context.Background()
	if _, err := slot.Read(ctx, domain.DefaultStateKey); !errors.Is(err, domain.ErrSlotEmpty) {
		t.Fatalf("expected empty slot, got %v", err)
	}
	if err := slot.Write(ctx, domain.DefaultStateKey, []byte(`{"v":1}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := slot.Write(ctx, domain.DefaultStateKey, []byte(`{"v":2}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("db file missing: %v", err)
	}
	if err := slot.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reloaded, err := NewSlot(path)
	if err != nil {
		t.Fatalf("reload sqlite slot: %v", err)
	}
	defer func() { _ = reloaded.Close() }()
	got, err := reloaded.Read(ctx, domain.DefaultStateKey)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != `{"v":2}` {
		t.Fatalf("expected latest payload, got %s", got)
	}
	if reloaded.Path() != path {
		t.Fatalf("expected path %s, got %s", path, reloaded.Path())
	}
	if reloaded.DB() == nil {
		t.Fatalf("expected db handle")
	}
}

func TestSQLiteSlotWriteAfterClose(t *testing.T) {
	slot, err := NewSlot(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	_ = slot.DB().Close()
	if err := slot.Write(context.Background(), "k", []byte("x")); err == nil {
		t.Fatalf("expected write error after close")
	}
	if _, err := slot.Read(context.Background(), "k"); err == nil || errors.Is(err, domain.ErrSlotEmpty) {
		t.Fatalf("expected read error after close, got %v", err)
	}
}
