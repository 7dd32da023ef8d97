// Package blobslot keeps the state slot as an object in a blob store
// (filesystem, S3/MinIO or memory).
package blobslot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"nutritrack/internal/blob"
	"nutritrack/pkg/domain"
)

var _ domain.StateSlot = (*Slot)(nil)

// DefaultPrefix namespaces state objects inside the bucket or root.
const DefaultPrefix = "state/"

// Slot maps slot keys to blob keys under a prefix.
type Slot struct {
	store  blob.Store
	prefix string
}

// New returns a slot writing under prefix (DefaultPrefix when empty).
func New(store blob.Store, prefix string) *Slot {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Slot{store: store, prefix: prefix}
}

// ObjectKey returns the blob key backing a slot key.
func (s *Slot) ObjectKey(key string) string { return s.prefix + key }

// Read returns the object content for key.
func (s *Slot) Read(ctx context.Context, key string) ([]byte, error) {
	_, rc, err := s.store.Get(ctx, s.ObjectKey(key))
	if errors.Is(err, blob.ErrNotFound) {
		return nil, domain.ErrSlotEmpty
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	payload, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.ObjectKey(key), err)
	}
	return payload, nil
}

// Write replaces the object for key in one overwriting put. A failed put leaves
// the previous object in place.
func (s *Slot) Write(ctx context.Context, key string, payload []byte) error {
	objectKey := s.ObjectKey(key)
	opts := blob.PutOptions{ContentType: "application/json", Overwrite: true}
	if _, err := s.store.Put(ctx, objectKey, bytes.NewReader(payload), opts); err != nil {
		return fmt.Errorf("put %s: %w", objectKey, err)
	}
	return nil
}
