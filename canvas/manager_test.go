package canvas

import (
	"context"
	"sync"
	"testing"
	"time"

	"armario-outfits/apperr"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestManager(t *testing.T) (*Manager, *clock) {
	t.Helper()
	h := newHarness()
	c := &clock{now: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)}
	h.deps.Now = c.Now
	settings := testSettings()
	settings.SessionTTL = 30 * time.Minute
	return NewManager(settings, h.deps), c
}

func TestManagerGet(t *testing.T) {
	m, _ := newTestManager(t)
	s, err := m.Open(context.Background(), "user-1", []string{"A"})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		uid  string
		id   string
		code apperr.Code
	}{
		{"owner", "user-1", s.ID, ""},
		{"another user", "user-2", s.ID, apperr.CodeForbidden},
		{"unknown id", "user-1", "nope", apperr.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Get(tt.uid, tt.id)
			if apperr.GetCode(err) != tt.code {
				t.Fatalf("err = %v, want code %q", err, tt.code)
			}
			if err == nil && got != s {
				t.Error("returned a different session")
			}
		})
	}

	if _, err := m.Open(context.Background(), "", nil); !apperr.Is(err, apperr.CodeUnauthorized) {
		t.Errorf("anonymous open err = %v", err)
	}
}

func TestManagerClose(t *testing.T) {
	m, _ := newTestManager(t)
	s, _ := m.Open(context.Background(), "user-1", []string{"A"})

	if err := m.Close("user-2", s.ID); !apperr.Is(err, apperr.CodeForbidden) {
		t.Fatalf("closing another user's session: %v", err)
	}
	if err := m.Close("user-1", s.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Get("user-1", s.ID); !apperr.Is(err, apperr.CodeNotFound) {
		t.Errorf("closed session still reachable: %v", err)
	}
	if _, err := s.Submit(context.Background(), "Look"); !apperr.Is(err, apperr.CodeSessionClosed) {
		t.Errorf("submit on closed session: %v", err)
	}
}

func TestManagerSweep(t *testing.T) {
	m, c := newTestManager(t)
	idle, _ := m.Open(context.Background(), "user-1", []string{"A"})
	active, _ := m.Open(context.Background(), "user-2", []string{"A"})

	c.Advance(20 * time.Minute)
	active.Snapshot()
	c.Advance(15 * time.Minute)

	if n := m.Sweep(c.Now()); n != 1 {
		t.Fatalf("Sweep closed %d sessions, want 1", n)
	}
	if _, err := m.Get("user-1", idle.ID); !apperr.Is(err, apperr.CodeNotFound) {
		t.Errorf("idle session should expire: %v", err)
	}
	if _, err := m.Get("user-2", active.ID); err != nil {
		t.Errorf("session read 15 minutes ago should survive: %v", err)
	}

	c.Advance(16 * time.Minute)
	if n := m.Sweep(c.Now()); n != 1 || m.Len() != 0 {
		t.Errorf("Sweep closed %d, %d left", n, m.Len())
	}
	if err := idle.touch(); !apperr.Is(err, apperr.CodeSessionClosed) {
		t.Errorf("expired session should be closed: %v", err)
	}
}

func TestManagerCapsSessionsPerUser(t *testing.T) {
	m, c := newTestManager(t)
	var opened []*Session
	for i := 0; i < MaxSessionsPerUser; i++ {
		s, _ := m.Open(context.Background(), "user-1", nil)
		opened = append(opened, s)
		c.Advance(time.Minute)
	}
	other, _ := m.Open(context.Background(), "user-2", nil)
	c.Advance(time.Minute)

	opened[0].Snapshot()
	c.Advance(time.Minute)

	latest, _ := m.Open(context.Background(), "user-1", nil)
	if m.Len() != MaxSessionsPerUser+1 {
		t.Fatalf("Len = %d, want %d", m.Len(), MaxSessionsPerUser+1)
	}
	if _, err := m.Get("user-1", opened[1].ID); !apperr.Is(err, apperr.CodeNotFound) {
		t.Errorf("least recently used session should be evicted: %v", err)
	}
	for _, s := range []*Session{opened[0], opened[2], latest} {
		if _, err := m.Get("user-1", s.ID); err != nil {
			t.Errorf("session %s should remain: %v", s.ID, err)
		}
	}
	if _, err := m.Get("user-2", other.ID); err != nil {
		t.Errorf("other users are not affected: %v", err)
	}
}
