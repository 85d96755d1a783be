package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newBackend(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestAnalyze_Success(t *testing.T) {
	var gotQuery, gotMethod string
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotQuery = r.URL.RawQuery
		if r.URL.Path != "/analyze-asset" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"asset":"BRK.B","persona_post":{"x":"hello"}}`))
	})

	c := NewClient(WithRatePerMinute(0))
	res, err := c.Analyze(context.Background(), srv.URL, "BRK.B", "trader 1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotMethod != http.MethodPost {
		t.Errorf("expected POST, got %s", gotMethod)
	}
	if !strings.Contains(gotQuery, "user_id=trader+1") && !strings.Contains(gotQuery, "user_id=trader%201") {
		t.Errorf("expected encoded user_id in query, got %s", gotQuery)
	}
	if res.Asset != "BRK.B" || res.PersonaPost.X != "hello" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestAnalyze_ValidationError(t *testing.T) {
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":"Symbol 'ZZZZ' not found or has no data"}`))
	})

	_, err := NewClient(WithRatePerMinute(0)).Analyze(context.Background(), srv.URL, "ZZZZ", "u")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Detail != "Symbol 'ZZZZ' not found or has no data" {
		t.Errorf("detail not relayed verbatim: %q", ve.Detail)
	}
	if !strings.Contains(ve.Error(), SymbolHint) {
		t.Errorf("expected hint in message, got %q", ve.Error())
	}
}

func TestAnalyze_ValidationErrorWithoutDetail(t *testing.T) {
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`not json`))
	})

	_, err := NewClient(WithRatePerMinute(0)).Analyze(context.Background(), srv.URL, "X", "u")
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Detail != "Invalid asset symbol" {
		t.Fatalf("expected default detail, got %v", err)
	}
}

func TestAnalyze_StatusError(t *testing.T) {
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := NewClient(WithRatePerMinute(0)).Analyze(context.Background(), srv.URL, "AAPL", "u")
	var se *StatusError
	if !errors.As(err, &se) || se.Code != 500 {
		t.Fatalf("expected StatusError 500, got %v", err)
	}
	if se.Error() != "API Error: 500" {
		t.Errorf("unexpected message %q", se.Error())
	}
}

func TestAnalyze_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	_, err := NewClient(WithRatePerMinute(0), WithTimeout(2*time.Second)).Analyze(context.Background(), base, "AAPL", "u")
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if !strings.Contains(te.Error(), base) {
		t.Errorf("expected base URL hint, got %q", te.Error())
	}
}

func TestAnalyze_DecodeError(t *testing.T) {
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>`))
	})

	_, err := NewClient(WithRatePerMinute(0)).Analyze(context.Background(), srv.URL, "AAPL", "u")
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestHealth(t *testing.T) {
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"status":"ok"}`))
	})

	c := NewClient()
	if err := c.Health(context.Background(), srv.URL); err != nil {
		t.Errorf("expected healthy, got %v", err)
	}
	if err := c.Health(context.Background(), srv.URL+"/nested"); err == nil {
		t.Error("expected error for 404 health")
	}
}

func TestResolveBaseURL(t *testing.T) {
	tests := []struct {
		override, host, want string
	}{
		{"", "localhost:8080", LocalBaseURL},
		{"", "127.0.0.1", LocalBaseURL},
		{"", "[::1]:8080", LocalBaseURL},
		{"http://api:8000/", "localhost", "http://api:8000"},
		{"http://api:8000", "dash.example.com", "http://api:8000"},
	}
	for _, tt := range tests {
		got, err := ResolveBaseURL(tt.override, tt.host)
		if err != nil || got != tt.want {
			t.Errorf("ResolveBaseURL(%q,%q) = %q, %v; want %q", tt.override, tt.host, got, err, tt.want)
		}
	}
}

func TestResolveBaseURL_ForeignHostIsRefused(t *testing.T) {
	for _, host := range []string{"dash.example.com", "127.0.0.2:9000", "10.0.0.5:8000", ""} {
		got, err := ResolveBaseURL("", host)
		if !errors.Is(err, ErrNoBackend) || got != "" {
			t.Errorf("ResolveBaseURL(%q) = %q, %v; want ErrNoBackend", host, got, err)
		}
	}
}

func TestAnalyze_Throttled(t *testing.T) {
	var calls int
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{}`))
	})

	c := NewClient(WithRatePerMinute(1))
	if _, err := c.Analyze(context.Background(), srv.URL, "AAPL", "u"); err != nil {
		t.Fatalf("first call: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Analyze(ctx, srv.URL, "AAPL", "u")
	var throttled *ThrottledError
	if !errors.As(err, &throttled) {
		t.Fatalf("expected ThrottledError, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 backend call, got %d", calls)
	}
}
