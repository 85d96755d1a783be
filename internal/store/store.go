// Package store defines persistence for dashboard sessions and the
// analysis archive. Implementations include PostgreSQL (source of truth),
// Redis (read-through cache), and in-memory (development and tests).
package store

import (
	"context"
	"errors"

	"github.com/tensortrade/council-dashboard/internal/model"
)

// ErrNotFound is returned when a session or run does not exist.
var ErrNotFound = errors.New("store: not found")

// Store is the persistence interface. PostgreSQL is the source of truth;
// Redis provides a read-through cache layer.
type Store interface {
	// --- Session snapshots ---

	// SaveSession upserts the latest snapshot of a page session.
	SaveSession(ctx context.Context, snap *model.SessionSnapshot) error

	// GetSession retrieves a session snapshot by ID.
	GetSession(ctx context.Context, id string) (*model.SessionSnapshot, error)

	// DeleteSession removes an expired session.
	DeleteSession(ctx context.Context, id string) error

	// --- Append-only analysis archive ---

	// InsertAnalysisRun archives a successful analysis.
	InsertAnalysisRun(ctx context.Context, run *model.AnalysisRun) error

	// GetAnalysisRun retrieves an archived run by ID.
	GetAnalysisRun(ctx context.Context, id string) (*model.AnalysisRun, error)

	// ListAnalysisRunsByUser returns a user's most recent runs, newest first.
	ListAnalysisRunsByUser(ctx context.Context, userID string, limit int) ([]model.AnalysisRun, error)
}
