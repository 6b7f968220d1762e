package backend

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// Observer receives one observation per upstream round trip. Code is 0 when
// no response was received.
type Observer interface {
	ObserveUpstream(service, method string, code int, elapsed time.Duration)
}

// RoundTripper forwards the request ID to upstream services, logs the
// exchange and reports it to an Observer.
type RoundTripper struct {
	Transport http.RoundTripper
	Service   string
	Observer  Observer
	Logger    *slog.Logger
}

// NewRoundTripper wraps transport, falling back to http.DefaultTransport.
func NewRoundTripper(transport http.RoundTripper, service string, observer Observer, logger *slog.Logger) *RoundTripper {
	if transport == nil {
		transport = http.DefaultTransport
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RoundTripper{Transport: transport, Service: service, Observer: observer, Logger: logger}
}

func (t *RoundTripper) RoundTrip(r *http.Request) (*http.Response, error) {
	ctx := r.Context()

	// RoundTrippers must not modify the caller's request.
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		r = r.Clone(ctx)
		r.Header.Set(middleware.RequestIDHeader, reqID)
	}

	t.Logger.DebugContext(ctx, "outgoing request",
		slog.String("service", t.Service),
		slog.String("method", r.Method),
		slog.String("url", r.URL.Redacted()))

	start := time.Now()
	resp, err := t.Transport.RoundTrip(r)
	elapsed := time.Since(start)
	if err != nil {
		t.observe(r.Method, 0, elapsed)
		t.Logger.WarnContext(ctx, "upstream round trip failed",
			slog.String("service", t.Service),
			slog.String("url", r.URL.Redacted()),
			slog.Any("error", err))
		return nil, err
	}

	t.observe(r.Method, resp.StatusCode, elapsed)
	t.Logger.DebugContext(ctx, "incoming response",
		slog.String("service", t.Service),
		slog.String("method", r.Method),
		slog.String("url", r.URL.Redacted()),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", elapsed))
	return resp, nil
}

func (t *RoundTripper) observe(method string, code int, elapsed time.Duration) {
	if t.Observer != nil {
		t.Observer.ObserveUpstream(t.Service, method, code, elapsed)
	}
}
