// Package dashboard provides the HTTP handlers and request lifecycle for the
// council dashboard: page load, analysis, share and summary export, and the
// analysis archive.
//
// Each page load owns one session. At most one analysis is in flight per
// session; a second start while one is pending is ignored, not queued.
package dashboard

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tensortrade/council-dashboard/internal/asset"
	"github.com/tensortrade/council-dashboard/internal/backend"
	"github.com/tensortrade/council-dashboard/internal/export"
	"github.com/tensortrade/council-dashboard/internal/metrics"
	"github.com/tensortrade/council-dashboard/internal/model"
	"github.com/tensortrade/council-dashboard/internal/render"
	"github.com/tensortrade/council-dashboard/internal/session"
	"github.com/tensortrade/council-dashboard/internal/store"
)

// Defaults for Options.
const (
	DefaultAsset         = "AAPL"
	DefaultUserID        = "dashboard_user"
	DefaultHealthTimeout = 2 * time.Second
	DefaultHistoryLimit  = 20
	MaxHistoryLimit      = 100
)

// Backend is the analysis service as seen by the dashboard.
type Backend interface {
	Analyze(ctx context.Context, baseURL, asset, userID string) (*model.AnalysisResult, error)
	Health(ctx context.Context, baseURL string) error
}

// Options configures a Service. Zero values fall back to the defaults.
type Options struct {
	// BackendURL overrides the per-page base-URL heuristic when set.
	BackendURL     string
	DefaultUserID  string
	AnalyzeTimeout time.Duration
	HealthTimeout  time.Duration
	WSPath         string
}

// Service handles dashboard operations.
type Service struct {
	sessions *session.Manager
	backend  Backend
	renderer *render.Renderer
	store    store.Store
	board    *PressureBoard // optional; nil renders no meters
	opts     Options
	now      func() time.Time
}

// NewService creates a new dashboard service.
func NewService(sessions *session.Manager, be Backend, renderer *render.Renderer, st store.Store, board *PressureBoard, opts Options) *Service {
	if opts.DefaultUserID == "" {
		opts.DefaultUserID = DefaultUserID
	}
	if opts.AnalyzeTimeout <= 0 {
		opts.AnalyzeTimeout = backend.DefaultTimeout
	}
	if opts.HealthTimeout <= 0 {
		opts.HealthTimeout = DefaultHealthTimeout
	}
	if opts.WSPath == "" {
		opts.WSPath = "/ws"
	}
	return &Service{
		sessions: sessions,
		backend:  be,
		renderer: renderer,
		store:    st,
		board:    board,
		opts:     opts,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// --- Request/Response types ---

// AnalysisResponse is the JSON body returned from a successful analysis.
type AnalysisResponse struct {
	State *StateView `json:"state"`
	RunID string     `json:"run_id,omitempty"`
	*render.Update
}

// HistoryEntry is one archived run in GET /api/history.
type HistoryEntry struct {
	ID         string    `json:"id"`
	Asset      string    `json:"asset"`
	Persona    string    `json:"persona"`
	HasCouncil bool      `json:"has_council"`
	SummaryURL string    `json:"summary_url"`
	CreatedAt  time.Time `json:"created_at"`
}

// --- Lifecycle ---

// RunAnalysis performs one analysis for a session. It returns
// session.ErrInFlight without side effects when another analysis is
// pending. The backend call is not tied to the caller's cancellation: a
// request, once sent, runs to completion or ANALYZE_TIMEOUT.
func (s *Service) RunAnalysis(ctx context.Context, sess *session.Session, rawAsset, userID string) (*AnalysisResponse, error) {
	if err := sess.Begin(); err != nil {
		metrics.AnalysesTotal.WithLabelValues("ignored").Inc()
		return nil, err
	}
	defer sess.End()

	sym, err := asset.ParseSymbol(rawAsset)
	if err != nil {
		metrics.AnalysesTotal.WithLabelValues(KindValidation).Inc()
		return nil, err
	}
	if userID == "" {
		userID = s.opts.DefaultUserID
	}
	if sess.BaseURL == "" {
		metrics.AnalysesTotal.WithLabelValues(KindConfiguration).Inc()
		return nil, backend.ErrNoBackend
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.AnalyzeTimeout)
	defer cancel()

	start := time.Now()
	res, err := s.backend.Analyze(ctx, sess.BaseURL, sym.Ticker, userID)
	metrics.AnalysisLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		_, kind := classify(err)
		metrics.AnalysesTotal.WithLabelValues(kind).Inc()
		slog.Warn("analysis failed",
			"session", sess.ID,
			"asset", sym.Ticker,
			"base_url", sess.BaseURL,
			"err", err,
		)
		return nil, err
	}

	now := s.now()
	sess.Apply(res, now)

	update, err := s.renderer.Transform(res)
	if err != nil {
		metrics.AnalysesTotal.WithLabelValues(KindInternal).Inc()
		return nil, err
	}

	if err := s.sessions.Save(ctx, sess); err != nil {
		slog.Warn("save session failed", "session", sess.ID, "err", err)
	}

	run := &model.AnalysisRun{
		ID:        uuid.New().String(),
		SessionID: sess.ID,
		UserID:    userID,
		Asset:     sym.Ticker,
		Persona:   res.PersonaSelected,
		Result:    res,
		CreatedAt: now,
	}
	if err := s.store.InsertAnalysisRun(ctx, run); err != nil {
		slog.Warn("archive analysis failed", "session", sess.ID, "err", err)
		run.ID = ""
	}

	metrics.AnalysesTotal.WithLabelValues("success").Inc()
	slog.Info("analysis completed",
		"session", sess.ID,
		"asset", sym.Ticker,
		"kind", sym.Kind,
		"user", userID,
		"persona", res.PersonaSelected,
		"regions", len(update.Regions),
		"elapsed", time.Since(start),
	)

	return &AnalysisResponse{
		State:  viewOf(StateSucceeded),
		RunID:  run.ID,
		Update: update,
	}, nil
}

// --- HTTP Handlers ---

// Index handles GET /
// Mints a session and renders the page skeleton.
func (s *Service) Index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	baseURL, err := backend.ResolveBaseURL(s.opts.BackendURL, r.Host)
	if err != nil {
		slog.Warn("no backend for page host; set BACKEND_URL", "host", r.Host)
	}

	sess, err := s.sessions.Create(ctx, baseURL)
	if err != nil {
		slog.Error("create session failed", "err", err)
		http.Error(w, "failed to start session", http.StatusInternalServerError)
		return
	}

	data := render.PageData{
		SessionID:     sess.ID,
		DefaultAsset:  DefaultAsset,
		DefaultUserID: s.opts.DefaultUserID,
		WSPath:        s.opts.WSPath,
		BackendReady:  baseURL != "" && s.probe(ctx, baseURL),
		Ready:         StateReady.View(),
		Running:       StateRunning.View(),
	}
	if s.board != nil {
		data.Meters = s.board.Snapshot()
	}

	var buf bytes.Buffer
	if err := s.renderer.Page(&buf, data); err != nil {
		slog.Error("render page failed", "err", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("write page failed", "err", err)
	}
}

// probe is the best-effort health check; failure only keeps the loading
// placeholders.
func (s *Service) probe(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, s.opts.HealthTimeout)
	defer cancel()
	if err := s.backend.Health(ctx, baseURL); err != nil {
		slog.Debug("backend health probe failed", "base_url", baseURL, "err", err)
		return false
	}
	return true
}

// Analyze handles POST /api/sessions/{sessionID}/analyze
// Form or query values: asset, user_id.
func (s *Service) Analyze(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeErr(w, r, err, nil)
		return
	}

	resp, err := s.RunAnalysis(r.Context(), sess, r.FormValue("asset"), r.FormValue("user_id"))
	switch {
	case errors.Is(err, session.ErrInFlight):
		writeJSON(w, http.StatusConflict, map[string]bool{"ignored": true})
	case errors.Is(err, asset.ErrEmpty), errors.Is(err, asset.ErrTooLong), errors.Is(err, asset.ErrInvalid):
		// Rejected before any request was sent; the control goes back to ready.
		writeErr(w, r, err, viewOf(StateReady))
	case err != nil:
		writeErr(w, r, err, viewOf(StateFailed))
	default:
		writeJSON(w, http.StatusOK, resp)
	}
}

// Share handles POST /api/sessions/{sessionID}/share/{platform}
// Returns the clipboard text and compose link; the page does the copy.
func (s *Service) Share(w http.ResponseWriter, r *http.Request) {
	platform, err := export.ParsePlatform(chi.URLParam(r, "platform"))
	if err != nil {
		writeErr(w, r, err, nil)
		return
	}
	kind := "share_" + string(platform)

	sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeErr(w, r, err, nil)
		return
	}

	res, err := export.Share(sess, platform)
	if err != nil {
		_, errKind := classify(err)
		metrics.ExportsTotal.WithLabelValues(kind, errKind).Inc()
		writeErr(w, r, err, nil)
		return
	}

	// Persist a backfilled cache entry.
	if err := s.sessions.Save(r.Context(), sess); err != nil {
		slog.Warn("save session failed", "session", sess.ID, "err", err)
	}
	metrics.ExportsTotal.WithLabelValues(kind, "success").Inc()
	writeJSON(w, http.StatusOK, res)
}

// Summary handles GET /api/sessions/{sessionID}/summary.md
func (s *Service) Summary(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeErr(w, r, err, nil)
		return
	}
	s.writeSummary(w, r, sess.Result(), s.now())
}

// ListHistory handles GET /api/history?user_id=&limit=
func (s *Service) ListHistory(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		userID = s.opts.DefaultUserID
	}
	limit := DefaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, "limit must be a positive integer", KindValidation, http.StatusUnprocessableEntity)
			return
		}
		limit = min(n, MaxHistoryLimit)
	}

	runs, err := s.store.ListAnalysisRunsByUser(r.Context(), userID, limit)
	if err != nil {
		slog.Error("list analysis runs failed", "user", userID, "err", err)
		writeError(w, "failed to list analysis history", KindInternal, http.StatusInternalServerError)
		return
	}

	entries := make([]HistoryEntry, 0, len(runs))
	for _, run := range runs {
		entries = append(entries, HistoryEntry{
			ID:         run.ID,
			Asset:      run.Asset,
			Persona:    run.Persona,
			HasCouncil: run.Result.HasCouncil(),
			SummaryURL: "/api/history/" + run.ID + "/summary.md",
			CreatedAt:  run.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, entries)
}

// HistorySummary handles GET /api/history/{runID}/summary.md
func (s *Service) HistorySummary(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	run, err := s.store.GetAnalysisRun(r.Context(), runID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, "analysis run not found", KindNotFound, http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("get analysis run failed", "run", runID, "err", err)
		writeError(w, "failed to load analysis run", KindInternal, http.StatusInternalServerError)
		return
	}
	s.writeSummary(w, r, run.Result, run.CreatedAt)
}

func (s *Service) writeSummary(w http.ResponseWriter, r *http.Request, res *model.AnalysisResult, at time.Time) {
	md, err := export.Summary(res, at)
	if err != nil {
		metrics.ExportsTotal.WithLabelValues("summary", KindPrecondition).Inc()
		writeErr(w, r, err, nil)
		return
	}

	name := export.Filename(res.DisplaySymbol(), at)
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(md)))
	if _, err := w.Write([]byte(md)); err != nil {
		slog.Warn("write summary failed", "file", name, "err", err)
		return
	}
	metrics.ExportsTotal.WithLabelValues("summary", "success").Inc()
	slog.Info("summary downloaded", "file", name)
}
