package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	dto "github.com/prometheus/client_model/go"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/api/sessions/{sessionID}/summary.md", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})

	for _, id := range []string{"a", "b"} {
		req := httptest.NewRequest("GET", "/api/sessions/"+id+"/summary.md", nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	var m dto.Metric
	if err := HTTPRequestsTotal.WithLabelValues("GET", "/api/sessions/{sessionID}/summary.md", "409").Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	if got := m.GetCounter().GetValue(); got != 2 {
		t.Errorf("expected 2 requests under the route pattern, got %v", got)
	}
}
