package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tensortrade/council-dashboard/internal/model"
)

// CachedStore wraps a primary Store (PostgreSQL) with a Redis read-through
// cache. Writes go to the primary store and refresh or invalidate the
// cache; reads check Redis first then fall back to the primary.
type CachedStore struct {
	primary Store
	rdb     *redis.Client
	ttl     time.Duration
}

// NewCachedStore creates a cached wrapper around a primary store.
func NewCachedStore(primary Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{
		primary: primary,
		rdb:     rdb,
		ttl:     ttl,
	}
}

// --- Write-through ---

func (s *CachedStore) SaveSession(ctx context.Context, snap *model.SessionSnapshot) error {
	if err := s.primary.SaveSession(ctx, snap); err != nil {
		return err
	}
	s.cache(ctx, sessionKey(snap.ID), snap)
	return nil
}

func (s *CachedStore) DeleteSession(ctx context.Context, id string) error {
	if err := s.primary.DeleteSession(ctx, id); err != nil {
		return err
	}
	s.rdb.Del(ctx, sessionKey(id))
	return nil
}

func (s *CachedStore) InsertAnalysisRun(ctx context.Context, run *model.AnalysisRun) error {
	if err := s.primary.InsertAnalysisRun(ctx, run); err != nil {
		return err
	}
	s.cache(ctx, runKey(run.ID), run)
	return nil
}

// --- Read-through (check cache first) ---

func (s *CachedStore) GetSession(ctx context.Context, id string) (*model.SessionSnapshot, error) {
	data, err := s.rdb.Get(ctx, sessionKey(id)).Bytes()
	if err == nil {
		var snap model.SessionSnapshot
		if json.Unmarshal(data, &snap) == nil {
			return &snap, nil
		}
	}

	// Cache miss: read from primary.
	snap, err := s.primary.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache(ctx, sessionKey(id), snap)
	return snap, nil
}

func (s *CachedStore) GetAnalysisRun(ctx context.Context, id string) (*model.AnalysisRun, error) {
	data, err := s.rdb.Get(ctx, runKey(id)).Bytes()
	if err == nil {
		var run model.AnalysisRun
		if json.Unmarshal(data, &run) == nil {
			return &run, nil
		}
	}

	run, err := s.primary.GetAnalysisRun(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache(ctx, runKey(id), run)
	return run, nil
}

// --- Passthrough (not cached) ---

func (s *CachedStore) ListAnalysisRunsByUser(ctx context.Context, userID string, limit int) ([]model.AnalysisRun, error) {
	return s.primary.ListAnalysisRunsByUser(ctx, userID, limit)
}

// --- Cache helpers ---

func (s *CachedStore) cache(ctx context.Context, key string, v any) {
	if data, err := json.Marshal(v); err == nil {
		s.rdb.Set(ctx, key, data, s.ttl)
	}
}

func sessionKey(id string) string { return fmt.Sprintf("dashboard:session:%s", id) }
func runKey(id string) string     { return fmt.Sprintf("dashboard:run:%s", id) }
