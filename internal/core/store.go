// Package core holds the NutriTrack state store: the session manager and the
// entity store over one in-memory snapshot, written through to a durable slot
// after every mutation.
package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"nutritrack/internal/snapshot"
	"nutritrack/pkg/domain"
)

// Store owns the current snapshot. Reads return copies; mutations are serialised
// and saved before the call returns.
type Store struct {
	mu      sync.RWMutex
	state   domain.Snapshot
	adapter *snapshot.Adapter
	opts    options

	listenersMu sync.Mutex
	listeners   map[uint64]func(domain.Event)
	nextID      uint64
}

// Open loads the snapshot through adapter and returns a ready store. Loading
// never fails: a missing or malformed slot yields the default snapshot and a
// warning in the log.
func Open(ctx context.Context, adapter *snapshot.Adapter, opts ...Option) *Store {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	res := adapter.Load(ctx)
	if res.Err != nil {
		o.logger.Warn("state load fell back to defaults", "key", adapter.Key(), "error", res.Err)
	} else {
		o.logger.Info("state loaded", "key", adapter.Key(), "source", string(res.Source))
	}
	return &Store{
		state:     res.Snapshot,
		adapter:   adapter,
		opts:      o,
		listeners: make(map[uint64]func(domain.Event)),
	}
}

// change describes a committed mutation. A nil change means nothing was modified.
type change struct {
	entity domain.EntityType
	action domain.Action
	id     int
}

// refused marks a request turned down with an Outcome. Nothing is saved or
// announced, and the operation is counted as unsuccessful.
var refused = &change{}

// mutate applies fn to the live snapshot under the write lock and saves the
// result. The in-memory change stands even when the save fails; the error is
// logged, counted and returned. Subscribers are notified after the lock is
// released.
func (s *Store) mutate(ctx context.Context, op string, fn func(st *domain.Snapshot) *change) error {
	ctx, span := s.opts.tracer.Start(ctx, op)
	started := time.Now()

	s.mu.Lock()
	ch := fn(&s.state)
	var err error
	if ch != nil && ch != refused {
		if err = s.adapter.Save(ctx, s.state); err != nil {
			err = fmt.Errorf("%s: %w", op, err)
		}
	}
	s.mu.Unlock()

	s.opts.metrics.Observe(ctx, op, err == nil && ch != refused, time.Since(started))
	span.End(err)
	switch ch {
	case nil:
		s.opts.logger.Debug("mutation matched nothing", "operation", op)
		return nil
	case refused:
		s.opts.logger.Debug("mutation refused", "operation", op)
		return nil
	}
	if err != nil {
		s.opts.logger.Error("state save failed", "operation", op, "entity", string(ch.entity), "id", ch.id, "error", err)
	} else {
		s.opts.logger.Debug("state saved", "operation", op, "entity", string(ch.entity), "id", ch.id)
	}
	s.notify(domain.Event{
		ID:        uuid.New(),
		Operation: op,
		Entity:    ch.entity,
		Action:    ch.action,
		EntityID:  ch.id,
		At:        s.opts.clock.Now(),
	})
	return err
}

// Subscribe registers fn for every committed mutation and returns a function
// that removes it. Listeners run synchronously on the mutating goroutine. A nil
// fn is ignored.
func (s *Store) Subscribe(fn func(domain.Event)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.nextID++
	id := s.nextID
	s.listeners[id] = fn
	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersMu.Lock()
			delete(s.listeners, id)
			s.listenersMu.Unlock()
		})
	}
}

func (s *Store) notify(ev domain.Event) {
	s.listenersMu.Lock()
	ids := make([]uint64, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	fns := make([]func(domain.Event), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.listeners[id])
	}
	s.listenersMu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Session returns the active session.
func (s *Store) Session() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Auth.Clone()
}

// Patients returns the patient collection in stored order.
func (s *Store) Patients() []domain.Patient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Patient{}, s.state.Patients...)
}

// Appointments returns the appointments ordered by date and time.
func (s *Store) Appointments() []domain.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Appointment{}, s.state.Appointments...)
}

// Plans returns the meal plans, newest first.
func (s *Store) Plans() []domain.Plan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Plan{}, s.state.Plans...)
}

// Reports returns the progress reports ordered by date.
func (s *Store) Reports() []domain.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Report{}, s.state.Reports...)
}

// Profiles returns a copy of the per-role profiles.
func (s *Store) Profiles() map[domain.Role]domain.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[domain.Role]domain.Profile, len(s.state.Profiles))
	for role, p := range s.state.Profiles {
		out[role] = p
	}
	return out
}
