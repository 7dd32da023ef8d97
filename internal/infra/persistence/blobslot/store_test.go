package blobslot

import (
	"context"
	"errors"
	"io"
	"testing"

	"nutritrack/internal/blob"
	"nutritrack/pkg/domain"
)

func TestSlotRoundTripAcrossBlobDrivers(t *testing.T) {
	fsStore, err := blob.NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("fs store: %v", err)
	}
	stores := []blob.Store{blob.NewMemory(), blob.NewMockS3ForTests(), fsStore}
	for _, store := range stores {
		t.Run(string(store.Driver()), func(t *testing.T) {
			ctx := context.Background()
			slot := New(store, "")
			if _, err := slot.Read(ctx, domain.DefaultStateKey); !errors.Is(err, domain.ErrSlotEmpty) {
				t.Fatalf("expected ErrSlotEmpty, got %v", err)
			}
			if err := slot.Write(ctx, domain.DefaultStateKey, []byte(`{"v":1}`)); err != nil {
				t.Fatalf("write: %v", err)
			}
			if err := slot.Write(ctx, domain.DefaultStateKey, []byte(`{"v":2}`)); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			got, err := slot.Read(ctx, domain.DefaultStateKey)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if string(got) != `{"v":2}` {
				t.Fatalf("unexpected payload %s", got)
			}
			info, err := store.Head(ctx, "state/"+domain.DefaultStateKey)
			if err != nil {
				t.Fatalf("head: %v", err)
			}
			if info.ContentType != "application/json" {
				t.Fatalf("unexpected content type %q", info.ContentType)
			}
		})
	}
}

func TestSlotCustomPrefix(t *testing.T) {
	slot := New(blob.NewMemory(), "tenants/a/")
	if got := slot.ObjectKey("k"); got != "tenants/a/k" {
		t.Fatalf("unexpected object key %s", got)
	}
}

var errUploadInterrupted = errors.New("upload interrupted")

// failingPutStore accepts reads but refuses every put once armed.
type failingPutStore struct {
	blob.Store
	fail bool
}

func (f *failingPutStore) Put(ctx context.Context, key string, r io.Reader, opts blob.PutOptions) (blob.Info, error) {
	if f.fail {
		return blob.Info{}, errUploadInterrupted
	}
	return f.Store.Put(ctx, key, r, opts)
}

func TestSlotFailedWriteKeepsPreviousPayload(t *testing.T) {
	ctx := context.Background()
	store := &failingPutStore{Store: blob.NewMemory()}
	slot := New(store, "")
	if err := slot.Write(ctx, domain.DefaultStateKey, []byte(`{"patients":[]}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	store.fail = true
	err := slot.Write(ctx, domain.DefaultStateKey, []byte(`{"patients":[{"id":1}]}`))
	if !errors.Is(err, errUploadInterrupted) {
		t.Fatalf("expected put failure, got %v", err)
	}
	got, err := slot.Read(ctx, domain.DefaultStateKey)
	if err != nil {
		t.Fatalf("read after failed write: %v", err)
	}
	if string(got) != `{"patients":[]}` {
		t.Fatalf("expected previous payload, got %s", got)
	}
}
