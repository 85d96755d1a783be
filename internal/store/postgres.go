package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tensortrade/council-dashboard/internal/model"
)

// Schema creates the tables used by PostgresStore. Payloads are stored as
// JSONB exactly as decoded from the backend.
const Schema = `
CREATE TABLE IF NOT EXISTS dashboard_sessions (
	id             TEXT PRIMARY KEY,
	base_url       TEXT NOT NULL,
	result         JSONB,
	share_x        TEXT NOT NULL DEFAULT '',
	share_linkedin TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS analysis_runs (
	id         TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	user_id    TEXT NOT NULL,
	asset      TEXT NOT NULL,
	persona    TEXT NOT NULL DEFAULT '',
	result     JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS analysis_runs_user_created_idx
	ON analysis_runs (user_id, created_at DESC);
`

// PostgresStore implements Store using PostgreSQL as the source of truth.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates missing tables and indexes.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, Schema)
	return err
}

func (s *PostgresStore) SaveSession(ctx context.Context, snap *model.SessionSnapshot) error {
	result, err := encodeResult(snap.Result)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO dashboard_sessions (id, base_url, result, share_x, share_linkedin, created_at, updated_at)
		 VALUES ($1, $2, $3::JSONB, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE
		 SET result = EXCLUDED.result,
		     share_x = EXCLUDED.share_x,
		     share_linkedin = EXCLUDED.share_linkedin,
		     updated_at = EXCLUDED.updated_at`,
		snap.ID, snap.BaseURL, result,
		snap.Share.X, snap.Share.LinkedIn,
		snap.CreatedAt, snap.UpdatedAt,
	)
	return err
}

func (s *PostgresStore) GetSession(ctx context.Context, id string) (*model.SessionSnapshot, error) {
	var snap model.SessionSnapshot
	var result *string

	err := s.pool.QueryRow(ctx,
		`SELECT id, base_url, result::TEXT, share_x, share_linkedin, created_at, updated_at
		 FROM dashboard_sessions WHERE id = $1`, id).
		Scan(&snap.ID, &snap.BaseURL, &result,
			&snap.Share.X, &snap.Share.LinkedIn,
			&snap.CreatedAt, &snap.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}

	if snap.Result, err = decodeResult(result); err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return &snap, nil
}

func (s *PostgresStore) DeleteSession(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM dashboard_sessions WHERE id = $1`, id)
	return err
}

func (s *PostgresStore) InsertAnalysisRun(ctx context.Context, run *model.AnalysisRun) error {
	result, err := encodeResult(run.Result)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO analysis_runs (id, session_id, user_id, asset, persona, result, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6::JSONB, $7)`,
		run.ID, run.SessionID, run.UserID, run.Asset, run.Persona, result, run.CreatedAt,
	)
	return err
}

func (s *PostgresStore) GetAnalysisRun(ctx context.Context, id string) (*model.AnalysisRun, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, session_id, user_id, asset, persona, result::TEXT, created_at
		 FROM analysis_runs WHERE id = $1`, id)

	run, err := scanAnalysisRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("analysis run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis run %s: %w", id, err)
	}
	return run, nil
}

func (s *PostgresStore) ListAnalysisRunsByUser(ctx context.Context, userID string, limit int) ([]model.AnalysisRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, session_id, user_id, asset, persona, result::TEXT, created_at
		 FROM analysis_runs WHERE user_id = $1
		 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []model.AnalysisRun
	for rows.Next() {
		run, err := scanAnalysisRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// pgxRow is satisfied by both pgx.Row and pgx.Rows.
type pgxRow interface {
	Scan(dest ...interface{}) error
}

func scanAnalysisRun(row pgxRow) (*model.AnalysisRun, error) {
	var run model.AnalysisRun
	var result *string

	if err := row.Scan(&run.ID, &run.SessionID, &run.UserID, &run.Asset,
		&run.Persona, &result, &run.CreatedAt); err != nil {
		return nil, err
	}

	var err error
	if run.Result, err = decodeResult(result); err != nil {
		return nil, err
	}
	return &run, nil
}

func encodeResult(r *model.AnalysisResult) (*string, error) {
	if r == nil {
		return nil, nil
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	s := string(data)
	return &s, nil
}

func decodeResult(s *string) (*model.AnalysisResult, error) {
	if s == nil {
		return nil, nil
	}
	var r model.AnalysisResult
	if err := json.Unmarshal([]byte(*s), &r); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return &r, nil
}
