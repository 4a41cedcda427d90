package httpapi

import (
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gabayhq/gabay-backend/internal/eventlog"
)

func newTestRouter() http.Handler {
	logger := log.New(io.Discard, "", 0)
	return NewRouter(RouterConfig{
		JWTSecret: "test-secret",
		JWTExpiry: time.Hour,
	}, logger, Deps{
		Events: eventlog.New(nil),
	})
}

func TestRouterHealthz(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != "ok" {
		t.Errorf("body = %q, want %q", rec.Body.String(), "ok")
	}
}

func TestRouterCORSPreflight(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodOptions, "/api/voice/command", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestRouterProtectedRoutesRequireAuth(t *testing.T) {
	router := newTestRouter()

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/me"},
		{http.MethodPost, "/api/voice/command"},
		{http.MethodPost, "/api/ocr"},
		{http.MethodGet, "/api/voices"},
		{http.MethodPost, "/api/tts"},
		{http.MethodGet, "/api/voice-profiles"},
		{http.MethodDelete, "/api/voice-profiles/abc"},
		{http.MethodGet, "/api/preferences"},
		{http.MethodPut, "/api/preferences"},
		{http.MethodPost, "/api/push/register"},
		{http.MethodPost, "/api/push/unregister"},
		{http.MethodGet, "/stream"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			req := httptest.NewRequest(rt.method, rt.path, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
			}
		})
	}
}
