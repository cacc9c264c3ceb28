package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

type recordedRequest struct {
	method string
	route  string
	status int
}

type mockHTTPMetricsRecorder struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (m *mockHTTPMetricsRecorder) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, recordedRequest{method: method, route: route, status: statusCode})
}

func TestMetricsMiddleware_RecordsRoutePattern(t *testing.T) {
	recorder := &mockHTTPMetricsRecorder{}

	r := chi.NewRouter()
	r.Use(NewMetricsMiddleware(recorder))
	r.Route("/api", func(r chi.Router) {
		r.Get("/user", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/user", nil))

	if len(recorder.requests) != 1 {
		t.Fatalf("recorded = %d, want 1", len(recorder.requests))
	}
	got := recorder.requests[0]
	if got.method != "GET" || got.route != "/api/user" || got.status != http.StatusForbidden {
		t.Errorf("recorded = %+v, want GET /api/user 403", got)
	}
}

func TestMetricsMiddleware_UnmatchedRoute(t *testing.T) {
	recorder := &mockHTTPMetricsRecorder{}

	r := chi.NewRouter()
	r.Use(NewMetricsMiddleware(recorder))
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/no/such/path/123", nil))

	if len(recorder.requests) != 1 {
		t.Fatalf("recorded = %d, want 1", len(recorder.requests))
	}
	got := recorder.requests[0]
	if got.route != unmatchedRoute {
		t.Errorf("route = %q, want %q", got.route, unmatchedRoute)
	}
	if got.status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", got.status)
	}
}
