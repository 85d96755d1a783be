package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tensortrade/council-dashboard/internal/metrics"
	"github.com/tensortrade/council-dashboard/internal/store"
)

// DefaultTTL is how long an idle session is kept before eviction.
const DefaultTTL = 2 * time.Hour

// Manager owns the live sessions of this process and persists their
// snapshots so a restarted server can pick up where a page left off.
type Manager struct {
	store store.Store
	ttl   time.Duration
	now   func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a session manager. A non-positive ttl uses DefaultTTL.
func NewManager(st store.Store, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		store:    st,
		ttl:      ttl,
		now:      func() time.Time { return time.Now().UTC() },
		sessions: make(map[string]*Session),
	}
}

// Create mints a new session for a page load and persists it.
func (m *Manager) Create(ctx context.Context, baseURL string) (*Session, error) {
	s := New(uuid.New().String(), baseURL, m.now())
	if err := m.store.SaveSession(ctx, s.Snapshot()); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	n := len(m.sessions)
	m.mu.Unlock()

	metrics.ActiveSessions.Set(float64(n))
	return s, nil
}

// Get returns a live session, rehydrating it from the store if this
// process has not seen it. Unknown IDs return ErrNotFound.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if ok {
		s.Touch(m.now())
		return s, nil
	}

	snap, err := m.store.GetSession(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another request may have rehydrated it meanwhile.
	if existing, ok := m.sessions[id]; ok {
		existing.Touch(m.now())
		return existing, nil
	}
	s = FromSnapshot(snap, m.now())
	m.sessions[id] = s
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
	return s, nil
}

// Save persists the session's current snapshot.
func (m *Manager) Save(ctx context.Context, s *Session) error {
	return m.store.SaveSession(ctx, s.Snapshot())
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep evicts sessions idle for longer than the TTL and returns how many
// were removed. Sessions with an analysis in flight are never evicted.
func (m *Manager) Sweep(ctx context.Context) int {
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	var expired []string
	for id, s := range m.sessions {
		if !s.InFlight() && s.LastSeen().Before(cutoff) {
			expired = append(expired, id)
			delete(m.sessions, id)
		}
	}
	n := len(m.sessions)
	m.mu.Unlock()

	metrics.ActiveSessions.Set(float64(n))
	for _, id := range expired {
		if err := m.store.DeleteSession(ctx, id); err != nil {
			slog.Warn("delete expired session failed", "session", id, "err", err)
		}
	}
	if len(expired) > 0 {
		slog.Info("expired sessions evicted", "count", len(expired), "live", n)
	}
	return len(expired)
}

// Run sweeps expired sessions every interval until ctx is cancelled.
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = m.ttl / 4
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}
