package snapshot

import (
	"context"
	"errors"
	"fmt"

	"nutritrack/pkg/domain"
)

// Source reports where a loaded snapshot came from.
type Source string

const (
	SourceDefault   Source = "default"
	SourcePersisted Source = "persisted"
)

// LoadResult is the outcome of Adapter.Load. Snapshot is always usable; Err keeps
// the read or parse failure that forced a fallback to defaults, if any.
type LoadResult struct {
	Snapshot domain.Snapshot
	Source   Source
	Err      error
}

// Adapter reads and writes the whole snapshot through a StateSlot.
type Adapter struct {
	slot domain.StateSlot
	key  string
}

// NewAdapter binds an adapter to a slot. An empty key selects domain.DefaultStateKey.
func NewAdapter(slot domain.StateSlot, key string) *Adapter {
	if key == "" {
		key = domain.DefaultStateKey
	}
	return &Adapter{slot: slot, key: key}
}

// Key returns the slot key used by the adapter.
func (a *Adapter) Key() string { return a.key }

// Load never fails: an empty slot, a read error or a malformed document all yield
// DefaultSnapshot.
func (a *Adapter) Load(ctx context.Context) LoadResult {
	raw, err := a.slot.Read(ctx, a.key)
	if err != nil {
		if errors.Is(err, domain.ErrSlotEmpty) {
			return LoadResult{Snapshot: domain.DefaultSnapshot(), Source: SourceDefault}
		}
		return LoadResult{Snapshot: domain.DefaultSnapshot(), Source: SourceDefault, Err: fmt.Errorf("read %s: %w", a.key, err)}
	}
	if len(raw) == 0 {
		return LoadResult{Snapshot: domain.DefaultSnapshot(), Source: SourceDefault}
	}
	snap, err := Decode(raw)
	if err != nil {
		return LoadResult{Snapshot: domain.DefaultSnapshot(), Source: SourceDefault, Err: err}
	}
	return LoadResult{Snapshot: snap, Source: SourcePersisted}
}

// Save replaces the slot contents with the serialised snapshot.
func (a *Adapter) Save(ctx context.Context, s domain.Snapshot) error {
	payload, err := Encode(s)
	if err != nil {
		return err
	}
	if err := a.slot.Write(ctx, a.key, payload); err != nil {
		return fmt.Errorf("write %s: %w", a.key, err)
	}
	return nil
}
