package model

import "time"

// ShareCache holds the most recent share-ready posts. It is updated only
// when a response carries persona_post and is never cleared, so it may
// outlive the result it was sourced from. Empty string means missing.
type ShareCache struct {
	X        string `json:"x"`
	LinkedIn string `json:"linkedin"`
}

// SessionSnapshot is the persisted form of one dashboard page session.
type SessionSnapshot struct {
	ID        string          `json:"id" db:"id"`
	BaseURL   string          `json:"base_url" db:"base_url"`
	Result    *AnalysisResult `json:"result,omitempty" db:"result"`
	Share     ShareCache      `json:"share" db:"share"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// AnalysisRun is an archived successful analysis. Runs are append-only.
type AnalysisRun struct {
	ID        string          `json:"id" db:"id"`
	SessionID string          `json:"session_id" db:"session_id"`
	UserID    string          `json:"user_id" db:"user_id"`
	Asset     string          `json:"asset" db:"asset"`
	Persona   string          `json:"persona" db:"persona"`
	Result    *AnalysisResult `json:"result" db:"result"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}
