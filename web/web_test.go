package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestStatic_ServesAssets(t *testing.T) {
	h := Static()
	for _, path := range []string{"/static/dashboard.js", "/static/dashboard.css"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, w.Code)
		}
		if w.Body.Len() == 0 {
			t.Errorf("%s: empty body", path)
		}
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static/dashboard.js", nil))
	if !strings.Contains(w.Body.String(), "download-summary-btn") {
		t.Error("script should bind the download button")
	}
}

func TestStatic_ShareCountdownRestarts(t *testing.T) {
	w := httptest.NewRecorder()
	Static().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static/dashboard.js", nil))
	js := w.Body.String()
	start := strings.Index(js, "function showShareModal")
	if start < 0 {
		t.Fatal("share modal handler missing")
	}
	body := js[start:]
	if i, j := strings.Index(body, "clearInterval(shareTimer)"), strings.Index(body, "setInterval("); i < 0 || i > j {
		t.Error("a new share must clear the previous countdown before starting its own")
	}
}

func TestStatic_MissingAsset(t *testing.T) {
	w := httptest.NewRecorder()
	Static().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static/nope.js", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
