package app

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/odyssey-erp/inventory-admin/internal/accounts"
	"github.com/odyssey-erp/inventory-admin/internal/categories"
	"github.com/odyssey-erp/inventory-admin/internal/deliveries"
	"github.com/odyssey-erp/inventory-admin/internal/observability"
	"github.com/odyssey-erp/inventory-admin/internal/platform/httpx"
	"github.com/odyssey-erp/inventory-admin/internal/products"
	"github.com/odyssey-erp/inventory-admin/internal/sales"
	"github.com/odyssey-erp/inventory-admin/internal/shared"
	"github.com/odyssey-erp/inventory-admin/internal/suppliers"
	"github.com/odyssey-erp/inventory-admin/web"
)

// Pinger is something /readyz can probe.
type Pinger interface {
	Name() string
	Ping(ctx context.Context) error
}

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Metrics        *observability.Metrics

	ProductsHandler   *products.Handler
	CategoriesHandler *categories.Handler
	SuppliersHandler  *suppliers.Handler
	DeliveriesHandler *deliveries.Handler
	SalesHandler      *sales.Handler
	AccountsHandler   *accounts.Handler

	Backends []Pinger
}

// NewRouter constructs the chi.Router with dashboard defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	// Probes, metrics and assets skip sessions and CSRF.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", readinessHandler(params))
	r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	r.Group(func(r chi.Router) {
		for _, mw := range MiddlewareStack(MiddlewareConfig{
			Logger:         params.Logger,
			Config:         params.Config,
			SessionManager: params.SessionManager,
			CSRFManager:    params.CSRFManager,
			Metrics:        params.Metrics,
		}) {
			r.Use(mw)
		}
		r.Use(chimw.Logger)

		r.Get("/", params.ProductsHandler.Dashboard)
		r.Route("/products", params.ProductsHandler.MountRoutes)
		r.Route("/categories", params.CategoriesHandler.MountRoutes)
		r.Route("/suppliers", params.SuppliersHandler.MountRoutes)
		r.Route("/deliveries", params.DeliveriesHandler.MountRoutes)
		r.Route("/sales", params.SalesHandler.MountRoutes)
		r.Route("/accounts", params.AccountsHandler.MountRoutes)
	})

	return r
}

type readiness struct {
	Status   string            `json:"status"`
	Checks   map[string]string `json:"checks"`
	Duration string            `json:"duration"`
}

// readinessHandler pings Redis and every upstream. Redis is required; an
// unreachable upstream is reported but only degrades the status.
func readinessHandler(params RouterParams) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		start := time.Now()

		out := readiness{Status: "ok", Checks: map[string]string{}}
		if err := params.SessionManager.Ping(ctx); err != nil {
			params.Logger.Warn("readiness: redis", slog.Any("error", err))
			out.Checks["redis"] = err.Error()
			out.Status = "unavailable"
		} else {
			out.Checks["redis"] = "ok"
		}
		for _, b := range params.Backends {
			if err := b.Ping(ctx); err != nil {
				out.Checks[b.Name()] = err.Error()
				if out.Status == "ok" {
					out.Status = "degraded"
				}
				continue
			}
			out.Checks[b.Name()] = "ok"
		}
		out.Duration = time.Since(start).Round(time.Millisecond).String()

		status := http.StatusOK
		if out.Status == "unavailable" {
			status = http.StatusServiceUnavailable
		}
		httpx.JSON(w, status, out)
	}
}

// staticCacheHandler lets browsers cache assets for an hour.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
