// Package memory provides an in-process state slot used by tests and ephemeral
// environments.
package memory

import (
	"context"
	"sync"

	"nutritrack/pkg/domain"
)

// Compile-time contract assertion.
var _ domain.StateSlot = (*Slot)(nil)

// Slot keeps payloads in a map. Nothing survives the process.
type Slot struct {
	mu     sync.RWMutex
	data   map[string][]byte
	writes int
}

// NewSlot returns an empty in-memory slot.
func NewSlot() *Slot {
	return &Slot{data: make(map[string][]byte)}
}

// Read returns a copy of the payload stored under key.
func (s *Slot) Read(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	payload, ok := s.data[key]
	if !ok {
		return nil, domain.ErrSlotEmpty
	}
	return append([]byte(nil), payload...), nil
}

// Write replaces the payload stored under key.
func (s *Slot) Write(_ context.Context, key string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), payload...)
	s.writes++
	return nil
}

// Writes reports how many writes the slot has accepted.
func (s *Slot) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}
