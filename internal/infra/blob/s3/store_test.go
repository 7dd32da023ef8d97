package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"nutritrack/internal/blob/core"
)

func TestStore_MockedBasicFlow(t *testing.T) {
	ctx := context.Background()
	store := NewMockForTests(0)
	if store.Driver() != core.DriverS3 || store.Bucket() != mockBucket {
		t.Fatalf("unexpected store identity %s %s", store.Driver(), store.Bucket())
	}
	info, err := store.Put(ctx, "reportes/reporte_Ana.csv", strings.NewReader("fecha,peso"), core.PutOptions{ContentType: "text/csv;charset=utf-8", Metadata: map[string]string{"patient": "1"}})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != 10 || info.ContentType != "text/csv;charset=utf-8" || info.ETag != "etag" {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := store.Put(ctx, "reportes/reporte_Ana.csv", strings.NewReader("x"), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	got, rc, err := store.Get(ctx, "reportes/reporte_Ana.csv")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(data) != "fecha,peso" || got.Metadata["patient"] != "1" {
		t.Fatalf("get mismatch: %q %+v", data, got.Metadata)
	}
	if url, err := store.PresignURL(ctx, "reportes/reporte_Ana.csv", core.SignedURLOptions{Expiry: 30 * time.Second}); err != nil || !strings.Contains(url, "reporte_Ana.csv") {
		t.Fatalf("presign: %v %s", err, url)
	}
	if ok, err := store.Delete(ctx, "reportes/reporte_Ana.csv"); err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	if ok, err := store.Delete(ctx, "reportes/reporte_Ana.csv"); err != nil || ok {
		t.Fatalf("second delete: %v %v", ok, err)
	}
}

func TestStore_MissingKeysMapToErrNotFound(t *testing.T) {
	store := NewMockForTests(0)
	ctx := context.Background()
	if _, err := store.Head(ctx, "nope"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from head, got %v", err)
	}
	if _, _, err := store.Get(ctx, "nope"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from get, got %v", err)
	}
	if _, err := store.PresignURL(ctx, "k", core.SignedURLOptions{Method: "PUT"}); !errors.Is(err, core.ErrUnsupported) {
		t.Fatalf("expected presign unsupported error, got %v", err)
	}
}

func TestStore_ListPaginates(t *testing.T) {
	store := NewMockForTests(1)
	ctx := context.Background()
	for _, key := range []string{"state/b", "state/a", "reportes/c"} {
		if _, err := store.Put(ctx, key, bytes.NewReader([]byte(key)), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	list, err := store.List(ctx, "state/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Key != "state/a" || list[1].Key != "state/b" {
		t.Fatalf("expected two paged items, got %+v", list)
	}
	if empty, err := store.List(ctx, "none/"); err != nil || len(empty) != 0 {
		t.Fatalf("expected empty list: %v %+v", err, empty)
	}
}

func TestStore_New(t *testing.T) {
	s, err := New(context.Background(), Config{Bucket: "bkt", Endpoint: "https://mock.s3.local", PathStyle: true, AccessKeyID: "AKIA", SecretAccessKey: "SECRET"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.Driver() != core.DriverS3 || s.Bucket() != "bkt" {
		t.Fatalf("unexpected store %+v", s)
	}
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatalf("expected error for missing bucket")
	}
}

func TestDecodeChunked(t *testing.T) {
	if _, ok := decodeChunked([]byte("not-chunked")); ok {
		t.Fatalf("expected plain body to be rejected")
	}
	if _, ok := decodeChunked([]byte("5\r\nabc\r\n0\r\n")); ok {
		t.Fatalf("size mismatch should fail")
	}
	if b, ok := decodeChunked([]byte("5\r\nhello\r\n0\r\n")); !ok || string(b) != "hello" {
		t.Fatalf("expected decode hello")
	}
}

func TestMockRoundTripperUnsupportedMethod(t *testing.T) {
	rt := &mockRoundTripper{state: make(map[string]mockObj)}
	req, _ := http.NewRequest(http.MethodPatch, "https://mock.s3.local/bucket/key", nil)
	resp, _ := rt.RoundTrip(req)
	if resp.StatusCode != http.StatusNotImplemented {
		t.Fatalf("expected 501, got %d", resp.StatusCode)
	}
}

func TestStore_PutOverwriteSkipsExistenceCheck(t *testing.T) {
	ctx := context.Background()
	store := NewMockForTests(0)
	if _, err := store.Put(ctx, "state/k", strings.NewReader(`{"v":1}`), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := store.Put(ctx, "state/k", strings.NewReader(`{"v":2}`), core.PutOptions{ContentType: "application/json", Overwrite: true}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	_, rc, err := store.Get(ctx, "state/k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(data) != `{"v":2}` {
		t.Fatalf("expected replaced object, got %s", data)
	}
}
