package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHTTPMetricsRecordsRequest(t *testing.T) {
	testCases := []struct {
		name       string
		method     string
		path       string
		statusCode int
		wantLabel  string
	}{
		{
			name:       "labels matched route",
			method:     http.MethodPost,
			path:       "/onlinewallet/deposit",
			statusCode: http.StatusBadRequest,
			wantLabel:  "/onlinewallet/deposit",
		},
		{
			name:       "collapses unknown paths",
			method:     http.MethodGet,
			path:       "/does/not/exist/01HXYZ",
			statusCode: http.StatusNotFound,
			wantLabel:  unmatchedRoute,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := NewHTTPMetrics(prometheus.NewRegistry())

			r := chi.NewRouter()
			r.Use(m.Wrap)
			r.Post("/onlinewallet/deposit", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.statusCode)
			})

			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.path, nil))

			if rr.Code != tc.statusCode {
				t.Fatalf("expected status %d, got %d", tc.statusCode, rr.Code)
			}
			if got := testutil.ToFloat64(m.requestsInFlight); got != 0 {
				t.Fatalf("expected in-flight gauge to return to 0, got %v", got)
			}

			if got := testutil.CollectAndCount(m.requestsTotal); got != 1 {
				t.Fatalf("expected one series, got %d", got)
			}
			counter := m.requestsTotal.WithLabelValues(tc.method, tc.wantLabel, strconv.Itoa(tc.statusCode))
			if got := testutil.ToFloat64(counter); got != 1 {
				t.Fatalf("expected counter to be 1, got %v", got)
			}
		})
	}
}

func TestRoutePatternWithoutRouter(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	if got := routePattern(req); got != unmatchedRoute {
		t.Fatalf("expected %q, got %q", unmatchedRoute, got)
	}
}
