// Package webtest wires sessions, CSRF and templates for handler tests.
package webtest

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/inventory-admin/internal/platform/backend"
	"github.com/odyssey-erp/inventory-admin/internal/shared"
	"github.com/odyssey-erp/inventory-admin/internal/view"
	_ "github.com/odyssey-erp/inventory-admin/testing"
)

// Env bundles the collaborators every handler needs.
type Env struct {
	Logger    *slog.Logger
	Sessions  *shared.SessionManager
	CSRF      *shared.CSRFManager
	Templates *view.Engine
	Session   *shared.Session
}

// New starts a miniredis-backed session store and loads one session that
// every request built through Env shares.
func New(t *testing.T) *Env {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sessions := shared.NewSessionManager(client, "admin_session", "test-secret", time.Hour, false)
	sess, err := sessions.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	engine, err := view.NewEngine()
	require.NoError(t, err)

	return &Env{
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Sessions:  sessions,
		CSRF:      shared.NewCSRFManager("test-csrf"),
		Templates: engine,
		Session:   sess,
	}
}

// Request builds a request carrying the shared session. A non-nil form is
// encoded as the POST body.
func (e *Env) Request(method, target string, form url.Values) *http.Request {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	r := httptest.NewRequest(method, target, body)
	if form != nil {
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	return r.WithContext(shared.ContextWithSession(r.Context(), e.Session))
}

// Serve runs the request through h and returns the recorder.
func (e *Env) Serve(h http.Handler, method, target string, form url.Values) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, e.Request(method, target, form))
	return rec
}

// Flash pops the pending flash message, if any.
func (e *Env) Flash() *shared.FlashMessage {
	return e.Session.PopFlash()
}

// Backend starts an httptest server and a client pointed at it.
func Backend(t *testing.T, name string, h http.Handler) *backend.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return backend.NewClient(backend.Options{Name: name, BaseURL: srv.URL, Timeout: 5 * time.Second})
}
