package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tensortrade/council-dashboard/internal/model"
)

func TestMemoryStore_SessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()

	snap := &model.SessionSnapshot{
		ID:      "s1",
		BaseURL: "http://localhost:8000",
		Share:   model.ShareCache{X: "post"},
	}
	if err := ms.SaveSession(ctx, snap); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Mutating the caller's copy must not leak into the store.
	snap.Share.X = "changed"

	got, err := ms.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Share.X != "post" {
		t.Errorf("expected stored copy, got %q", got.Share.X)
	}

	if err := ms.DeleteSession(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := ms.GetSession(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryStore_RunsNewestFirst(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()
	base := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

	for i, asset := range []string{"AAPL", "SPY", "TSLA"} {
		err := ms.InsertAnalysisRun(ctx, &model.AnalysisRun{
			ID:        asset,
			UserID:    "u1",
			Asset:     asset,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("insert %s: %v", asset, err)
		}
	}
	ms.InsertAnalysisRun(ctx, &model.AnalysisRun{ID: "other", UserID: "u2", CreatedAt: base})

	runs, err := ms.ListAnalysisRunsByUser(ctx, "u1", 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Asset != "TSLA" || runs[1].Asset != "SPY" {
		t.Errorf("expected newest first, got %s, %s", runs[0].Asset, runs[1].Asset)
	}

	if err := ms.InsertAnalysisRun(ctx, &model.AnalysisRun{ID: "AAPL", UserID: "u1"}); err == nil {
		t.Error("expected duplicate run ID to be rejected")
	}
	if _, err := ms.GetAnalysisRun(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
