// Package metrics provides Prometheus instrumentation for the council dashboard.
package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// AnalysesTotal counts analysis requests by outcome
	// (success, validation, upstream_validation, upstream_status, transport, ignored).
	AnalysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tensortrade_dashboard_analyses_total",
		Help: "Total analysis requests by outcome",
	}, []string{"outcome"})

	// AnalysisLatency tracks how long the backend council takes to answer.
	AnalysisLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tensortrade_dashboard_analysis_latency_seconds",
		Help:    "Backend analysis latency in seconds",
		Buckets: []float64{1, 5, 15, 30, 60, 90, 120, 180},
	})

	// ExportsTotal counts export actions by kind (share_x, share_linkedin, summary) and outcome.
	ExportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tensortrade_dashboard_exports_total",
		Help: "Total export actions",
	}, []string{"kind", "outcome"})

	// ActiveSessions tracks live page sessions held in memory.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tensortrade_dashboard_active_sessions",
		Help: "Number of live dashboard sessions",
	})

	// WebSocketClients tracks connected WebSocket clients.
	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tensortrade_dashboard_websocket_clients",
		Help: "Number of connected WebSocket clients",
	})

	// HTTPRequestsTotal counts HTTP requests by method, route, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tensortrade_dashboard_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tensortrade_dashboard_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.25, 1, 5, 30, 120},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		// Session and run IDs are path parameters; label by route pattern.
		path := routePattern(r)
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack lets the WebSocket upgrader take over the connection.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("metrics: response writer does not support hijacking")
	}
	return h.Hijack()
}
