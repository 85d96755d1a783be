// Package backend is the HTTP client for the multi-agent analysis service.
// It owns the network contract of the dashboard: one POST per analysis,
// a best-effort health probe, and the upstream error taxonomy.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/tensortrade/council-dashboard/internal/model"
)

const (
	// LocalBaseURL is used when the dashboard itself is served from localhost.
	LocalBaseURL = "http://localhost:8000"

	DefaultTimeout    = 180 * time.Second
	DefaultRatePerMin = 30

	// SymbolHint is appended to 400 responses.
	SymbolHint = "Please enter a valid stock symbol (e.g., AAPL, SPY, TSLA)"
)

var (
	// ErrDecode is returned when a 2xx body is not a valid analysis payload.
	ErrDecode = errors.New("backend: invalid analysis payload")

	// ErrNoBackend is returned when no backend URL is configured and the
	// page was not served from localhost.
	ErrNoBackend = errors.New("backend: no analysis backend configured")
)

// ValidationError is a 400 response; Detail is the backend's message.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s\n\n%s", e.Detail, SymbolHint)
}

// StatusError is any other non-2xx response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API Error: %d", e.Code)
}

// TransportError is a network failure before any status was received.
type TransportError struct {
	BaseURL string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%v\n\nMake sure the API server is running on %s", e.Err, e.BaseURL)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ThrottledError means the local rate limit could not admit the request
// before its deadline. Nothing was sent.
type ThrottledError struct {
	Err error
}

func (e *ThrottledError) Error() string {
	return "Too many analysis requests. Please wait a moment and try again."
}

func (e *ThrottledError) Unwrap() error { return e.Err }

// Client calls the analysis backend. The base URL is passed per call
// because each dashboard session resolves its own.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
}

// Option configures the client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(d)
	}
}

// WithRatePerMinute throttles outgoing analysis requests.
func WithRatePerMinute(n int) Option {
	return func(c *Client) {
		if n <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(float64(n)/60), n)
	}
}

// NewClient creates a backend client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:    resty.New().SetTimeout(DefaultTimeout),
		limiter: rate.NewLimiter(rate.Limit(float64(DefaultRatePerMin)/60), DefaultRatePerMin),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Analyze runs POST {base}/analyze-asset?asset=..&user_id=.. and decodes
// the result.
func (c *Client) Analyze(ctx context.Context, baseURL, asset, userID string) (*model.AnalysisResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &ThrottledError{Err: err}
	}

	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetQueryParams(map[string]string{
			"asset":   asset,
			"user_id": userID,
		}).
		Post(strings.TrimRight(baseURL, "/") + "/analyze-asset")
	if err != nil {
		return nil, &TransportError{BaseURL: baseURL, Err: err}
	}

	slog.Debug("analysis response",
		"asset", asset,
		"status", resp.StatusCode(),
		"elapsed", time.Since(start),
	)

	if !resp.IsSuccess() {
		if resp.StatusCode() == 400 {
			return nil, &ValidationError{Detail: detailOf(resp.Body())}
		}
		return nil, &StatusError{Code: resp.StatusCode()}
	}

	var result model.AnalysisResult
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return &result, nil
}

// Health probes GET {base}/health. Callers treat failure as non-fatal.
func (c *Client) Health(ctx context.Context, baseURL string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Get(strings.TrimRight(baseURL, "/") + "/health")
	if err != nil {
		return &TransportError{BaseURL: baseURL, Err: err}
	}
	if !resp.IsSuccess() {
		return &StatusError{Code: resp.StatusCode()}
	}
	return nil
}

// detailOf extracts {"detail": ...} from a 400 body. FastAPI sends a
// string for handled errors and a list for schema errors.
func detailOf(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return "Invalid asset symbol"
	}
	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		if s == "" {
			return "Invalid asset symbol"
		}
		return s
	}
	return string(payload.Detail)
}

// ResolveBaseURL picks the backend base URL for a page served at host.
// An explicit override wins and a localhost page talks to the local backend
// on :8000. Any other host yields ErrNoBackend: the Host header is client
// controlled and never becomes an outbound target.
func ResolveBaseURL(override, host string) (string, error) {
	if override != "" {
		return strings.TrimRight(override, "/"), nil
	}
	hostname := host
	if h, _, err := net.SplitHostPort(host); err == nil {
		hostname = h
	}
	switch hostname {
	case "localhost", "127.0.0.1", "::1":
		return LocalBaseURL, nil
	}
	return "", ErrNoBackend
}
