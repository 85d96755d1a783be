// Package session holds the per-page dashboard state: the in-flight guard,
// the latest analysis result and the share cache.
//
// A session lives exactly as long as the page that created it. A full
// reload mints a new one, which is the only way state is reset.
package session

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tensortrade/council-dashboard/internal/model"
)

var (
	// ErrInFlight is returned by Begin while an analysis is already running.
	ErrInFlight = errors.New("session: analysis already in flight")

	// ErrNotFound is returned for unknown or expired session IDs.
	ErrNotFound = errors.New("session: not found")
)

// Session is one page's dashboard state. The zero value is not usable;
// construct with New or FromSnapshot.
type Session struct {
	ID        string
	BaseURL   string
	CreatedAt time.Time

	inFlight atomic.Bool
	lastSeen atomic.Int64 // unix nanos

	mu        sync.RWMutex
	result    *model.AnalysisResult
	share     model.ShareCache
	updatedAt time.Time
}

// New creates an idle session with no result.
func New(id, baseURL string, now time.Time) *Session {
	s := &Session{
		ID:        id,
		BaseURL:   baseURL,
		CreatedAt: now,
		updatedAt: now,
	}
	s.lastSeen.Store(now.UnixNano())
	return s
}

// FromSnapshot rebuilds a session from its persisted form. The in-flight
// guard always starts clear.
func FromSnapshot(snap *model.SessionSnapshot, now time.Time) *Session {
	s := New(snap.ID, snap.BaseURL, snap.CreatedAt)
	s.result = snap.Result
	s.share = snap.Share
	s.updatedAt = snap.UpdatedAt
	s.lastSeen.Store(now.UnixNano())
	return s
}

// Begin claims the in-flight guard. It returns ErrInFlight when another
// analysis already holds it; the caller must then do nothing.
func (s *Session) Begin() error {
	if !s.inFlight.CompareAndSwap(false, true) {
		return ErrInFlight
	}
	return nil
}

// End releases the in-flight guard.
func (s *Session) End() {
	s.inFlight.Store(false)
}

// InFlight reports whether an analysis is running.
func (s *Session) InFlight() bool {
	return s.inFlight.Load()
}

// Apply replaces the current result wholesale. When the result carries
// persona_post, both cache entries are overwritten (missing becomes "");
// otherwise the cache is left as it was.
func (s *Session) Apply(r *model.AnalysisResult, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.result = r
	if r != nil && r.PersonaPost != nil {
		s.share = model.ShareCache{
			X:        r.PersonaPost.X,
			LinkedIn: r.PersonaPost.LinkedIn,
		}
	}
	s.updatedAt = now
}

// Result returns the latest successful result, or nil.
func (s *Session) Result() *model.AnalysisResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result
}

// Share returns a copy of the share cache.
func (s *Session) Share() model.ShareCache {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.share
}

// UpdateShare runs fn with exclusive access to the current result and the
// share cache. It is used to backfill cache entries from the result.
func (s *Session) UpdateShare(fn func(result *model.AnalysisResult, share *model.ShareCache)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.result, &s.share)
}

// Touch records activity so the janitor keeps the session alive.
func (s *Session) Touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

// LastSeen returns the time of the most recent activity.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// Snapshot returns the persistable form of the session.
func (s *Session) Snapshot() *model.SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &model.SessionSnapshot{
		ID:        s.ID,
		BaseURL:   s.BaseURL,
		Result:    s.result,
		Share:     s.share,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.updatedAt,
	}
}
