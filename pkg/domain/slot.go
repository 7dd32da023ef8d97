package domain

import (
	"context"
	"errors"
)

// DefaultStateKey names the durable slot holding the serialised snapshot. Bump the
// suffix on breaking shape changes.
const DefaultStateKey = "nutritrack_state_v3"

// ErrSlotEmpty is returned by StateSlot.Read when nothing has been written yet.
var ErrSlotEmpty = errors.New("state slot empty")

// StateSlot is a single durable key-value slot. Write replaces any previous value.
type StateSlot interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, payload []byte) error
}
