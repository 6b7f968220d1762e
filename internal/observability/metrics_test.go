package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	return rr.Body.String()
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/deliveries/{id}")
	req := httptest.NewRequest(http.MethodGet, "/deliveries/d1", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusTeapot, rr.Code)

	body := scrape(t, metrics)
	assert.Contains(t, body, `admin_http_requests_total{code="418",route="/deliveries/{id}"} 1`)
	assert.Contains(t, body, `admin_http_request_duration_seconds_bucket{route="/deliveries/{id}"`)
}

func TestObserveUpstream(t *testing.T) {
	metrics := NewMetrics()
	metrics.ObserveUpstream("accounts", http.MethodPost, http.StatusConflict, 20*time.Millisecond)
	metrics.ObserveUpstream("accounts", http.MethodPost, http.StatusConflict, 30*time.Millisecond)
	metrics.ObserveUpstream("products", http.MethodGet, 0, time.Second)

	body := scrape(t, metrics)
	assert.Contains(t, body, `admin_upstream_requests_total{code="409",method="POST",service="accounts"} 2`)
	assert.Contains(t, body, `admin_upstream_requests_total{code="0",method="GET",service="products"} 1`)
	assert.Contains(t, body, `admin_upstream_request_duration_seconds_count{service="accounts"} 2`)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var metrics *Metrics
	metrics.ObserveUpstream("products", http.MethodGet, 200, time.Millisecond)

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })
	metrics.Middleware(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, called)

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
