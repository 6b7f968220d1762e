package suppliers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/inventory-admin/internal/products"
	"github.com/odyssey-erp/inventory-admin/internal/testing/webtest"
)

type staticCatalog struct {
	items []products.Item
	err   error
}

func (c staticCatalog) Products(context.Context) ([]products.Item, error) {
	return c.items, c.err
}

type fakeSupplierAPI struct {
	mu       sync.Mutex
	items    []Supplier
	lastBody map[string]any
	methods  []string
}

func (f *fakeSupplierAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.methods = append(f.methods, r.Method)
	id := strings.Trim(r.URL.Path, "/")
	switch r.Method {
	case http.MethodGet:
		if id == "" {
			_ = json.NewEncoder(w).Encode(f.items)
			return
		}
		for _, s := range f.items {
			if s.ID == id {
				_ = json.NewEncoder(w).Encode(map[string]any{"data": s})
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	case http.MethodPost, http.MethodPatch:
		f.lastBody = map[string]any{}
		_ = json.NewDecoder(r.Body).Decode(&f.lastBody)
		name, _ := f.lastBody["name"].(string)
		_ = json.NewEncoder(w).Encode(map[string]any{"data": Supplier{ID: "s-new", Name: name}})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func setup(t *testing.T, api *fakeSupplierAPI, catalog Catalog) (*webtest.Env, http.Handler) {
	t.Helper()
	env := webtest.New(t)
	client := webtest.Backend(t, "suppliers", api)
	h := NewHandler(env.Logger, NewService(NewRepository(client)), catalog, env.Templates, env.CSRF)
	r := chi.NewRouter()
	r.Route("/suppliers", h.MountRoutes)
	return env, r
}

func TestListHidesSoftDeletedSuppliers(t *testing.T) {
	deleted := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	api := &fakeSupplierAPI{items: []Supplier{
		{ID: "s1", Name: "Acme", LeadTime: 3},
		{ID: "s2", Name: "Gone Ltd", DeletedAt: &deleted},
	}}
	env, router := setup(t, api, staticCatalog{})

	rec := env.Serve(router, http.MethodGet, "/suppliers", nil)
	assert.Equal(t, 1, strings.Count(rec.Body.String(), `data-row="supplier"`))
	assert.NotContains(t, rec.Body.String(), "Gone Ltd")

	rec = env.Serve(router, http.MethodGet, "/suppliers?showDeleted=true", nil)
	assert.Equal(t, 2, strings.Count(rec.Body.String(), `data-row="supplier"`))
	assert.Contains(t, rec.Body.String(), "Inactive since")
}

func TestCreateSupplierSendsProductIDs(t *testing.T) {
	api := &fakeSupplierAPI{}
	catalog := staticCatalog{items: []products.Item{{Product: products.Product{ID: "p1", Name: "Cola"}, GroupName: "Drinks"}}}
	env, router := setup(t, api, catalog)

	rec := env.Serve(router, http.MethodPost, "/suppliers", url.Values{
		"name": {"Acme"}, "leadTime": {"5"}, "productIds": {"p1", "p1", ""},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "Acme", api.lastBody["name"])
	assert.EqualValues(t, 5, api.lastBody["leadTime"])
	assert.Equal(t, []any{"p1"}, api.lastBody["productIds"])
}

func TestCreateSupplierValidation(t *testing.T) {
	api := &fakeSupplierAPI{}
	env, router := setup(t, api, staticCatalog{err: errors.New("down")})

	rec := env.Serve(router, http.MethodPost, "/suppliers", url.Values{"name": {"A"}, "leadTime": {"-2"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Name must be at least 2 characters")
	assert.Contains(t, body, "Lead time must be 0 or more")
	assert.Contains(t, body, "Products could not be loaded")
	assert.Empty(t, api.methods)
}

func TestEditFormPreselectsSuppliedProducts(t *testing.T) {
	api := &fakeSupplierAPI{items: []Supplier{{ID: "s1", Name: "Acme", Products: []SupplierProduct{{ID: "p2", Name: "Water"}}}}}
	catalog := staticCatalog{items: []products.Item{
		{Product: products.Product{ID: "p1", Name: "Cola"}},
		{Product: products.Product{ID: "p2", Name: "Water"}},
	}}
	env, router := setup(t, api, catalog)

	rec := env.Serve(router, http.MethodGet, "/suppliers/s1/edit", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `value="p2" checked`)
	assert.NotContains(t, body, `value="p1" checked`)
}
