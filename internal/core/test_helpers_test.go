package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"nutritrack/internal/infra/persistence/memory"
	"nutritrack/internal/snapshot"
	"nutritrack/pkg/domain"
)

var fixedNow = time.Date(2026, 2, 20, 9, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T, opts ...Option) (*Store, *memory.Slot) {
	t.Helper()
	slot := memory.NewSlot()
	opts = append([]Option{WithClock(ClockFunc(func() time.Time { return fixedNow }))}, opts...)
	return Open(context.Background(), snapshot.NewAdapter(slot, ""), opts...), slot
}

// reload opens a second store over the same slot, as a restart would.
func reload(t *testing.T, slot domain.StateSlot) *Store {
	t.Helper()
	return Open(context.Background(), snapshot.NewAdapter(slot, ""))
}

var errWriteFailed = errors.New("write failed")

// flakySlot fails writes while failing is set.
type flakySlot struct {
	*memory.Slot
	mu      sync.Mutex
	failing bool
}

func (f *flakySlot) setFailing(v bool) {
	f.mu.Lock()
	f.failing = v
	f.mu.Unlock()
}

func (f *flakySlot) Write(ctx context.Context, key string, payload []byte) error {
	f.mu.Lock()
	failing := f.failing
	f.mu.Unlock()
	if failing {
		return errWriteFailed
	}
	return f.Slot.Write(ctx, key, payload)
}

type logEntry struct {
	level string
	msg   string
	args  []any
}

type captureLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (c *captureLogger) add(level, msg string, args []any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, logEntry{level: level, msg: msg, args: args})
}

func (c *captureLogger) Debug(msg string, args ...any) { c.add("debug", msg, args) }
func (c *captureLogger) Info(msg string, args ...any)  { c.add("info", msg, args) }
func (c *captureLogger) Warn(msg string, args ...any)  { c.add("warn", msg, args) }
func (c *captureLogger) Error(msg string, args ...any) { c.add("error", msg, args) }

func (c *captureLogger) has(level, msg string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.level == level && e.msg == msg {
			return true
		}
	}
	return false
}

func loginNutritionist(t *testing.T, s *Store) {
	t.Helper()
	out, err := s.Login(context.Background(), domain.LoginRequest{Username: "Dra. Paula", Password: domain.DefaultSecret, Role: domain.RoleNutritionist})
	if err != nil || !out.OK {
		t.Fatalf("login nutritionist: %+v %v", out, err)
	}
}

func strPtr(s string) *string { return &s }
