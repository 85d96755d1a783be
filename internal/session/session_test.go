package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tensortrade/council-dashboard/internal/model"
	"github.com/tensortrade/council-dashboard/internal/store"
)

var t0 = time.Date(2026, 10, 19, 14, 30, 0, 0, time.UTC)

func TestBegin_SecondCallerIsRejected(t *testing.T) {
	s := New("s1", "http://localhost:8000", t0)

	if err := s.Begin(); err != nil {
		t.Fatalf("first Begin: %v", err)
	}
	if err := s.Begin(); !errors.Is(err, ErrInFlight) {
		t.Fatalf("expected ErrInFlight, got %v", err)
	}
	s.End()
	if err := s.Begin(); err != nil {
		t.Fatalf("Begin after End: %v", err)
	}
}

func TestBegin_ConcurrentStartsAdmitOne(t *testing.T) {
	s := New("s1", "", t0)
	var admitted atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Begin() == nil {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := admitted.Load(); got != 1 {
		t.Errorf("expected exactly one admitted start, got %d", got)
	}
}

func TestApply_ShareCacheRules(t *testing.T) {
	s := New("s1", "", t0)

	s.Apply(&model.AnalysisResult{
		Asset:       "AAPL",
		PersonaPost: &model.PersonaPost{X: "x post", LinkedIn: "li post"},
	}, t0)
	if got := s.Share(); got.X != "x post" || got.LinkedIn != "li post" {
		t.Fatalf("unexpected cache after first apply: %+v", got)
	}

	// No persona_post: cache survives, result is replaced.
	s.Apply(&model.AnalysisResult{Asset: "SPY"}, t0)
	if got := s.Share(); got.X != "x post" {
		t.Errorf("cache should outlive result without persona_post, got %+v", got)
	}
	if s.Result().Asset != "SPY" {
		t.Errorf("result should be replaced, got %s", s.Result().Asset)
	}

	// persona_post with a missing platform overwrites it with "".
	s.Apply(&model.AnalysisResult{PersonaPost: &model.PersonaPost{X: "new"}}, t0)
	if got := s.Share(); got.X != "new" || got.LinkedIn != "" {
		t.Errorf("expected both entries overwritten, got %+v", got)
	}
}

func TestSnapshot_RoundTrip(t *testing.T) {
	s := New("s1", "http://api", t0)
	s.Apply(&model.AnalysisResult{Asset: "TSLA", PersonaPost: &model.PersonaPost{X: "p"}}, t0.Add(time.Minute))
	if err := s.Begin(); err != nil {
		t.Fatal(err)
	}

	restored := FromSnapshot(s.Snapshot(), t0)
	if restored.InFlight() {
		t.Error("restored session must start idle")
	}
	if restored.Result().Asset != "TSLA" || restored.Share().X != "p" {
		t.Errorf("unexpected restored state: %+v / %+v", restored.Result(), restored.Share())
	}
	if !restored.Snapshot().UpdatedAt.Equal(t0.Add(time.Minute)) {
		t.Errorf("expected updated_at preserved, got %v", restored.Snapshot().UpdatedAt)
	}
}

func TestManager_CreateGetAndRehydrate(t *testing.T) {
	ctx := context.Background()
	ms := store.NewMemoryStore()
	m := NewManager(ms, time.Hour)

	s, err := m.Create(ctx, "http://localhost:8000")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := m.Get(ctx, s.ID)
	if err != nil || got != s {
		t.Fatalf("expected same live session, got %p err=%v", got, err)
	}

	s.Apply(&model.AnalysisResult{Asset: "AAPL"}, t0)
	if err := m.Save(ctx, s); err != nil {
		t.Fatalf("save: %v", err)
	}

	// A fresh manager over the same store rehydrates from the snapshot.
	m2 := NewManager(ms, time.Hour)
	re, err := m2.Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("rehydrate: %v", err)
	}
	if re.Result().Asset != "AAPL" {
		t.Errorf("expected rehydrated result, got %+v", re.Result())
	}

	if _, err := m2.Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestManager_SweepSkipsInFlight(t *testing.T) {
	ctx := context.Background()
	ms := store.NewMemoryStore()
	m := NewManager(ms, time.Hour)
	now := t0
	m.now = func() time.Time { return now }

	idle, _ := m.Create(ctx, "")
	busy, _ := m.Create(ctx, "")
	if err := busy.Begin(); err != nil {
		t.Fatal(err)
	}

	now = t0.Add(2 * time.Hour)
	if n := m.Sweep(ctx); n != 1 {
		t.Fatalf("expected 1 eviction, got %d", n)
	}
	if m.Len() != 1 {
		t.Errorf("expected busy session to survive, live=%d", m.Len())
	}
	if _, err := ms.GetSession(ctx, idle.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected idle snapshot deleted, got %v", err)
	}
}
