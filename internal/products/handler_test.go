package products

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/inventory-admin/internal/shared"
	"github.com/odyssey-erp/inventory-admin/internal/testing/webtest"
)

type fakeProductAPI struct {
	mu       sync.Mutex
	groups   []Group
	requests []string
}

func (f *fakeProductAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/":
		_ = json.NewEncoder(w).Encode(map[string]any{"data": f.groups})
	case r.Method == http.MethodGet && len(parts) == 1:
		for _, g := range f.groups {
			if g.ID == parts[0] {
				_ = json.NewEncoder(w).Encode(map[string]any{"data": g})
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	case r.Method == http.MethodPost && len(parts) == 2 && parts[1] == "products":
		var in ProductInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		for i := range f.groups {
			if f.groups[i].ID == parts[0] {
				p := Product{ID: "p-new", GroupID: parts[0], Name: in.Name, Stock: in.Stock, SafetyStock: in.SafetyStock}
				f.groups[i].Products = append(f.groups[i].Products, p)
				_ = json.NewEncoder(w).Encode(map[string]any{"data": p})
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	case r.Method == http.MethodPatch && len(parts) == 3:
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":{"message":"Product name already used"}}`))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func setup(t *testing.T, api *fakeProductAPI) (*webtest.Env, http.Handler) {
	t.Helper()
	env := webtest.New(t)
	repo := NewRepository(webtest.Backend(t, "products", api))
	h := NewHandler(env.Logger, NewService(repo, NewStore(repo)), env.Templates, env.CSRF)
	r := chi.NewRouter()
	r.Get("/", h.Dashboard)
	r.Route("/products", h.MountRoutes)
	return env, r
}

func sampleGroups() []Group {
	return []Group{
		{ID: "g1", Name: "Drinks", Products: []Product{
			{ID: "p1", Name: "Cola", Stock: 2, SafetyStock: 10},
			{ID: "p2", Name: "Water", Stock: 50, SafetyStock: 10},
		}},
		{ID: "g2", Name: "Snacks", Products: []Product{
			{ID: "p3", Name: "Chips", Stock: 0, SafetyStock: 20},
		}},
	}
}

func TestDashboardListsLowStockWorstFirst(t *testing.T) {
	env, router := setup(t, &fakeProductAPI{groups: sampleGroups()})

	rec := env.Serve(router, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Equal(t, 2, strings.Count(body, `data-row="low-stock"`))
	assert.Less(t, strings.Index(body, "Chips"), strings.Index(body, "Cola"))
	assert.NotContains(t, body, "Water")
}

func TestProductListRendersGroupsAndProducts(t *testing.T) {
	env, router := setup(t, &fakeProductAPI{groups: sampleGroups()})

	rec := env.Serve(router, http.MethodGet, "/products", nil)
	body := rec.Body.String()
	assert.Equal(t, 2, strings.Count(body, `data-row="group"`))
	assert.Equal(t, 3, strings.Count(body, `data-row="product"`))
	assert.Contains(t, body, "Low stock")
}

func TestProductListEmptyState(t *testing.T) {
	env, router := setup(t, &fakeProductAPI{})

	rec := env.Serve(router, http.MethodGet, "/products", nil)
	assert.Contains(t, rec.Body.String(), "No product groups yet.")
}

func TestCreateProductPostsToNestedPath(t *testing.T) {
	api := &fakeProductAPI{groups: sampleGroups()}
	env, router := setup(t, api)

	rec := env.Serve(router, http.MethodPost, "/products/groups/g2/products", url.Values{
		"name": {"Pretzels"}, "stock": {"4"}, "safetyStock": {"5"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, api.requests, "POST /g2/products")
	assert.Len(t, api.groups[1].Products, 2)

	flash := env.Flash()
	require.NotNil(t, flash)
	assert.Equal(t, shared.FlashSuccess, flash.Kind)
}

func TestCreateProductRejectsNegativeStock(t *testing.T) {
	api := &fakeProductAPI{groups: sampleGroups()}
	env, router := setup(t, api)

	rec := env.Serve(router, http.MethodPost, "/products/groups/g1/products", url.Values{
		"name": {"Juice"}, "stock": {"-1"}, "safetyStock": {"abc"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Safety stock must be a whole number")
	assert.Empty(t, api.requests)

	rec = env.Serve(router, http.MethodPost, "/products/groups/g1/products", url.Values{
		"name": {"Juice"}, "stock": {"-1"},
	})
	assert.Contains(t, rec.Body.String(), "Stock must be 0 or more")
	assert.Empty(t, api.requests)
}

func TestUpdateProductShowsUpstreamMessage(t *testing.T) {
	env, router := setup(t, &fakeProductAPI{groups: sampleGroups()})

	rec := env.Serve(router, http.MethodPost, "/products/groups/g1/products/p1", url.Values{
		"name": {"Cola"}, "stock": {"3"}, "safetyStock": {"10"}, "groupName": {"Drinks"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Product name already used")
	assert.Contains(t, rec.Body.String(), "Failed to update product.")
}
