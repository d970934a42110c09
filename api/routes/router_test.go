package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lamnguyendev/talentbridge-backend/pkg/config"
)

func TestRouterHealthAndMetrics(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	router := NewRouter(cfg, nil, nil, nil, nil, nil, nil, nil, nil)

	cases := []struct {
		path   string
		status int
	}{
		{"/health/live", http.StatusOK},
		{"/metrics", http.StatusOK},
		{"/nope", http.StatusNotFound},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d", tc.path, tc.status, rec.Code)
		}
	}
}

func TestRouterSetsEnvHeader(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	router := NewRouter(cfg, nil, nil, nil, nil, nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-TalentBridge-Env"); got != "test" {
		t.Fatalf("expected env header, got %q", got)
	}
	if got := rec.Header().Get("X-Request-Id"); got == "" {
		t.Fatal("expected generated request id header")
	}
}
