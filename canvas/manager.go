package canvas

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"armario-outfits/apperr"
)

// MaxSessionsPerUser bounds the open sessions of one user. Opening another
// closes that user's least recently used session.
const MaxSessionsPerUser = 3

// Manager keeps the open canvas sessions, one per screen visit.
type Manager struct {
	settings Settings
	deps     Deps

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a session registry.
func NewManager(settings Settings, deps Deps) *Manager {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Manager{
		settings: settings.WithDefaults(),
		deps:     deps,
		sessions: make(map[string]*Session),
	}
}

// Settings returns the effective canvas settings.
func (m *Manager) Settings() Settings { return m.settings }

// Open starts a new session for uid seeded from itemIDs.
func (m *Manager) Open(ctx context.Context, uid string, itemIDs []string) (*Session, error) {
	if uid == "" {
		return nil, apperr.New(apperr.CodeUnauthorized, "sign in to compose outfits")
	}
	s := Open(ctx, uid, itemIDs, m.settings, m.deps)

	m.mu.Lock()
	evicted := m.evictLocked(uid, MaxSessionsPerUser-1)
	m.sessions[s.ID] = s
	m.mu.Unlock()

	for _, old := range evicted {
		old.Close()
		log.Infof("🧹 Canvas %s closed to make room for %s", old.ID, s.ID)
	}
	return s, nil
}

// evictLocked removes the least recently used sessions of uid until at most
// keep remain, and returns them for closing.
func (m *Manager) evictLocked(uid string, keep int) []*Session {
	var own []*Session
	for _, s := range m.sessions {
		if s.UID == uid {
			own = append(own, s)
		}
	}
	if len(own) <= keep {
		return nil
	}
	sort.Slice(own, func(i, j int) bool { return own[i].IdleSince().Before(own[j].IdleSince()) })
	evicted := own[:len(own)-keep]
	for _, s := range evicted {
		delete(m.sessions, s.ID)
	}
	return evicted
}

// Get returns the session with id if uid owns it.
func (m *Manager) Get(uid, id string) (*Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return nil, apperr.New(apperr.CodeNotFound, "canvas session %s not found", id)
	}
	if s.UID != uid {
		return nil, apperr.New(apperr.CodeForbidden, "canvas session %s belongs to another user", id)
	}
	return s, nil
}

// Close abandons and forgets the session.
func (m *Manager) Close(uid, id string) error {
	s, err := m.Get(uid, id)
	if err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	s.Close()
	log.Infof("🧹 Canvas %s closed", id)
	return nil
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep closes sessions idle for longer than the session TTL and returns
// how many were closed.
func (m *Manager) Sweep(now time.Time) int {
	var expired []*Session
	m.mu.Lock()
	for id, s := range m.sessions {
		if now.Sub(s.IdleSince()) > m.settings.SessionTTL {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	if len(expired) > 0 {
		log.Infof("🧹 Expired %d idle canvas sessions", len(expired))
	}
	return len(expired)
}

// Run sweeps idle sessions every interval until ctx is done, then closes
// whatever is left.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			m.closeAll()
			return
		case <-t.C:
			m.Sweep(m.deps.Now())
		}
	}
}

func (m *Manager) closeAll() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
	for _, s := range all {
		s.Close()
	}
}
