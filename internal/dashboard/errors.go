package dashboard

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tensortrade/council-dashboard/internal/asset"
	"github.com/tensortrade/council-dashboard/internal/backend"
	"github.com/tensortrade/council-dashboard/internal/export"
	"github.com/tensortrade/council-dashboard/internal/session"
)

// Error kinds reported to the page.
const (
	KindValidation         = "validation"
	KindUpstreamValidation = "upstream_validation"
	KindUpstreamStatus     = "upstream_status"
	KindTransport          = "transport"
	KindPrecondition       = "precondition"
	KindUpstreamContent    = "upstream_content"
	KindSession            = "session"
	KindNotFound           = "not_found"
	KindThrottled          = "throttled"
	KindConfiguration      = "configuration"
	KindInternal           = "internal"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error string     `json:"error"`
	Kind  string     `json:"kind"`
	State *StateView `json:"state,omitempty"`
}

// classify maps an error to its HTTP status and kind.
func classify(err error) (int, string) {
	var (
		valErr      *backend.ValidationError
		statusErr   *backend.StatusError
		transErr    *backend.TransportError
		throttleErr *backend.ThrottledError
		upstreamErr *export.UpstreamError
	)
	switch {
	case errors.Is(err, asset.ErrEmpty), errors.Is(err, asset.ErrTooLong), errors.Is(err, asset.ErrInvalid),
		errors.Is(err, export.ErrUnknownPlatform):
		return http.StatusUnprocessableEntity, KindValidation
	case errors.As(err, &valErr):
		return http.StatusBadGateway, KindUpstreamValidation
	case errors.As(err, &statusErr):
		return http.StatusBadGateway, KindUpstreamStatus
	case errors.As(err, &transErr):
		return http.StatusBadGateway, KindTransport
	case errors.As(err, &throttleErr):
		return http.StatusTooManyRequests, KindThrottled
	case errors.Is(err, backend.ErrNoBackend):
		return http.StatusServiceUnavailable, KindConfiguration
	case errors.Is(err, backend.ErrDecode):
		return http.StatusBadGateway, KindUpstreamStatus
	case errors.Is(err, export.ErrNoAnalysis), errors.Is(err, export.ErrNoPost):
		return http.StatusConflict, KindPrecondition
	case errors.As(err, &upstreamErr):
		return http.StatusConflict, KindUpstreamContent
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound, KindSession
	}
	return http.StatusInternalServerError, KindInternal
}

// message is the user-facing text for err.
func message(err error) string {
	switch {
	case errors.Is(err, asset.ErrEmpty):
		return "Please enter an asset symbol"
	case errors.Is(err, export.ErrNoAnalysis):
		return export.NoAnalysisMessage
	case errors.Is(err, backend.ErrNoBackend):
		return "No analysis backend is configured for this host. Set BACKEND_URL on the dashboard server."
	case errors.Is(err, session.ErrNotFound):
		return "Session expired. Reload the page to start a new one."
	}
	var valErr *backend.ValidationError
	if errors.As(err, &valErr) {
		return "❌ " + valErr.Error()
	}
	if status, _ := classify(err); status == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}

// writeErr classifies err and writes it. Preconditions are expected user
// mistakes and are logged at Info, not as failures.
func writeErr(w http.ResponseWriter, r *http.Request, err error, state *StateView) {
	status, kind := classify(err)
	switch {
	case status >= 500 && status != http.StatusBadGateway:
		slog.Error("request failed", "path", r.URL.Path, "err", err)
	case kind == KindPrecondition:
		slog.Info("request precondition not met", "path", r.URL.Path, "err", err)
	default:
		slog.Warn("request rejected", "path", r.URL.Path, "kind", kind, "err", err)
	}
	writeJSON(w, status, ErrorResponse{Error: message(err), Kind: kind, State: state})
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message, kind string, status int) {
	writeJSON(w, status, ErrorResponse{Error: message, Kind: kind})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write response failed", "err", err)
	}
}
