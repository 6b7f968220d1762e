package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/inventory-admin/internal/accounts"
	"github.com/odyssey-erp/inventory-admin/internal/categories"
	"github.com/odyssey-erp/inventory-admin/internal/deliveries"
	"github.com/odyssey-erp/inventory-admin/internal/observability"
	"github.com/odyssey-erp/inventory-admin/internal/platform/backend"
	"github.com/odyssey-erp/inventory-admin/internal/products"
	"github.com/odyssey-erp/inventory-admin/internal/sales"
	"github.com/odyssey-erp/inventory-admin/internal/shared"
	"github.com/odyssey-erp/inventory-admin/internal/suppliers"
	"github.com/odyssey-erp/inventory-admin/internal/view"
)

const sessionCookie = "admin_session"

// Application is the assembled dashboard.
type Application struct {
	Handler  http.Handler
	Products *products.Store
	Sessions *shared.SessionManager
}

// New wires one backend client per upstream, the services on top of them
// and the router. The product store is shared by every page that needs the
// catalogue.
func New(cfg *Config, logger *slog.Logger, rdb *redis.Client, metrics *observability.Metrics) (*Application, error) {
	templates, err := view.NewEngine()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	sessions := shared.NewSessionManager(rdb, sessionCookie, cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrf := shared.NewCSRFManager(cfg.CSRFSecret)

	client := func(name, baseURL string) *backend.Client {
		return backend.NewClient(backend.Options{
			Name:     name,
			BaseURL:  baseURL,
			Timeout:  cfg.Backends.Timeout,
			RetryMax: cfg.Backends.RetryMax,
			Observer: metrics,
			Logger:   logger,
		})
	}
	productAPI := client("products", cfg.Backends.ProductURL)
	supplierAPI := client("suppliers", cfg.Backends.SupplierURL)
	deliveryAPI := client("deliveries", cfg.Backends.DeliveryURL)
	accountAPI := client("accounts", cfg.Backends.AccountURL)
	categoryAPI := client("categories", cfg.Backends.CategoryURL)

	productRepo := products.NewRepository(productAPI)
	store := products.NewStore(productRepo)
	productService := products.NewService(productRepo, store)
	supplierService := suppliers.NewService(suppliers.NewRepository(supplierAPI))

	router := NewRouter(RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessions,
		CSRFManager:    csrf,
		Metrics:        metrics,

		ProductsHandler:   products.NewHandler(logger, productService, templates, csrf),
		CategoriesHandler: categories.NewHandler(logger, categories.NewService(categories.NewRepository(categoryAPI)), templates, csrf),
		SuppliersHandler:  suppliers.NewHandler(logger, supplierService, store, templates, csrf),
		DeliveriesHandler: deliveries.NewHandler(logger, deliveries.NewService(deliveries.NewRepository(deliveryAPI)), supplierService, store, templates, csrf),
		SalesHandler:      sales.NewHandler(logger, sales.NewService(sales.NewRepository(productAPI), store), templates, csrf),
		AccountsHandler:   accounts.NewHandler(logger, accounts.NewService(accounts.NewRepository(accountAPI)), templates, csrf),

		Backends: []Pinger{productAPI, supplierAPI, deliveryAPI, accountAPI, categoryAPI},
	})

	return &Application{Handler: router, Products: store, Sessions: sessions}, nil
}
