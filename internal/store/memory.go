package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tensortrade/council-dashboard/internal/model"
)

// MemoryStore implements Store with in-memory maps. Used for testing
// and development. Not suitable for production (no persistence).
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*model.SessionSnapshot
	runs     []model.AnalysisRun
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*model.SessionSnapshot),
	}
}

func (s *MemoryStore) SaveSession(_ context.Context, snap *model.SessionSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Store a copy to avoid external mutation. Results are replaced
	// wholesale, never mutated, so sharing the pointer is safe.
	copy := *snap
	s.sessions[snap.ID] = &copy
	return nil
}

func (s *MemoryStore) GetSession(_ context.Context, id string) (*model.SessionSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	copy := *snap
	return &copy, nil
}

func (s *MemoryStore) DeleteSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

func (s *MemoryStore) InsertAnalysisRun(_ context.Context, run *model.AnalysisRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.runs {
		if existing.ID == run.ID {
			return fmt.Errorf("analysis run %s already exists", run.ID)
		}
	}
	s.runs = append(s.runs, *run)
	return nil
}

func (s *MemoryStore) GetAnalysisRun(_ context.Context, id string) (*model.AnalysisRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.runs {
		if r.ID == id {
			copy := r
			return &copy, nil
		}
	}
	return nil, fmt.Errorf("analysis run %s: %w", id, ErrNotFound)
}

func (s *MemoryStore) ListAnalysisRunsByUser(_ context.Context, userID string, limit int) ([]model.AnalysisRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.AnalysisRun
	for _, r := range s.runs {
		if r.UserID == userID {
			result = append(result, r)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
