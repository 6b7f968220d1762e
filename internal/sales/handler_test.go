package sales

import (
	"context"
	"encoding/json"
	"fmt"
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
	"github.com/odyssey-erp/inventory-admin/internal/shared"
	"github.com/odyssey-erp/inventory-admin/internal/testing/webtest"
)

type stubCatalog []products.Item

func (c stubCatalog) Products(context.Context) ([]products.Item, error) { return c, nil }

type fakeSalesAPI struct {
	mu       sync.Mutex
	sales    map[string][]Sale
	failFor  string
	echo     bool
	requests []string
	body     map[string]any
}

func (f *fakeSalesAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)

	// /{group}/products/{product}/sales[/{id}]
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 4 || parts[1] != "products" || parts[3] != "sales" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	productID := parts[2]
	if productID == f.failFor {
		w.WriteHeader(http.StatusBadGateway)
		return
	}
	switch r.Method {
	case http.MethodGet:
		_ = json.NewEncoder(w).Encode(map[string]any{"data": f.sales[productID]})
	case http.MethodPost, http.MethodPatch:
		f.body = map[string]any{}
		_ = json.NewDecoder(r.Body).Decode(&f.body)
		if f.echo {
			// Echo the stored record the way it was sent, date-only included.
			f.body["id"] = fmt.Sprintf("%s-s%02d", productID, len(f.sales[productID]))
			raw, _ := json.Marshal(f.body)
			var sale Sale
			_ = json.Unmarshal(raw, &sale)
			f.sales[productID] = append(f.sales[productID], sale)
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"data":` + string(raw) + `}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": Sale{ID: "new"}})
	case http.MethodDelete:
		w.WriteHeader(http.StatusNoContent)
	}
}

func catalog() stubCatalog {
	return stubCatalog{
		{Product: products.Product{ID: "p1", GroupID: "g1", Name: "Cola"}, GroupName: "Drinks"},
		{Product: products.Product{ID: "p2", GroupID: "g1", Name: "Water"}, GroupName: "Drinks"},
	}
}

func manySales(product string, n int, status Status) []Sale {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]Sale, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Sale{
			ID:        fmt.Sprintf("%s-s%02d", product, i),
			AccountID: fmt.Sprintf("acct-%d", i%3),
			Quantity:  i + 1,
			Status:    status,
			Date:      shared.NewDate(base.AddDate(0, 0, i)),
		})
	}
	return out
}

func setup(t *testing.T, api *fakeSalesAPI) (*webtest.Env, http.Handler) {
	t.Helper()
	env := webtest.New(t)
	client := webtest.Backend(t, "products", api)
	h := NewHandler(env.Logger, NewService(NewRepository(client), catalog()), env.Templates, env.CSRF)
	r := chi.NewRouter()
	r.Route("/sales", h.MountRoutes)
	return env, r
}

func TestRowsFetchesProductsSequentiallyNewestFirst(t *testing.T) {
	api := &fakeSalesAPI{sales: map[string][]Sale{
		"p1": manySales("p1", 2, StatusPending),
		"p2": manySales("p2", 3, StatusCompleted),
	}}
	client := webtest.Backend(t, "products", api)
	svc := NewService(NewRepository(client), catalog())

	rows, _, err := svc.Rows(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"GET /g1/products/p1/sales", "GET /g1/products/p2/sales"}, api.requests)
	for i := 1; i < len(rows); i++ {
		assert.False(t, rows[i].Date.After(rows[i-1].Date.Time))
	}
	assert.Equal(t, "Water", rows[0].ProductName)
	assert.Equal(t, "p2", rows[0].ProductID)
}

func TestRowsFailsWhenAnyProductFails(t *testing.T) {
	api := &fakeSalesAPI{failFor: "p2", sales: map[string][]Sale{"p1": manySales("p1", 1, StatusPending)}}
	env, router := setup(t, api)

	rec := env.Serve(router, http.MethodGet, "/sales", nil)
	body := rec.Body.String()
	assert.Contains(t, body, "panel-error")
	assert.Zero(t, strings.Count(body, `data-row="sale"`))
}

func TestSalesSearchThenPage(t *testing.T) {
	api := &fakeSalesAPI{sales: map[string][]Sale{
		"p1": manySales("p1", 14, StatusPending),
		"p2": manySales("p2", 9, StatusCancelled),
	}}
	env, router := setup(t, api)

	rec := env.Serve(router, http.MethodGet, "/sales", nil)
	assert.Equal(t, 10, strings.Count(rec.Body.String(), `data-row="sale"`))
	assert.Contains(t, rec.Body.String(), "Page 1 of 3")

	rec = env.Serve(router, http.MethodGet, "/sales?search=CANCELLED", nil)
	assert.Equal(t, 9, strings.Count(rec.Body.String(), `data-row="sale"`))

	rec = env.Serve(router, http.MethodGet, "/sales?search=pending&page=2", nil)
	assert.Equal(t, 4, strings.Count(rec.Body.String(), `data-row="sale"`))

	rec = env.Serve(router, http.MethodGet, "/sales?product=p2", nil)
	assert.Equal(t, 9, strings.Count(rec.Body.String(), `data-row="sale"`))
}

func TestCreateSalePostsUnderProduct(t *testing.T) {
	api := &fakeSalesAPI{sales: map[string][]Sale{}}
	env, router := setup(t, api)

	rec := env.Serve(router, http.MethodPost, "/sales", url.Values{
		"product": {"g1/p2"}, "accountId": {"acct-9"}, "quantity": {"3"}, "status": {"completed"}, "date": {"2024-02-02"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, api.requests, "POST /g1/products/p2/sales")
	assert.Equal(t, "acct-9", api.body["accountId"])
	assert.EqualValues(t, 3, api.body["quantity"])
}

func TestCreateSaleValidation(t *testing.T) {
	api := &fakeSalesAPI{sales: map[string][]Sale{}}
	env, router := setup(t, api)

	rec := env.Serve(router, http.MethodPost, "/sales", url.Values{
		"accountId": {""}, "quantity": {"0"}, "status": {"shipped"}, "date": {"02/02/2024"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Product is required")
	assert.Contains(t, body, "Account id is required")
	assert.Contains(t, body, "Quantity must be 1 or more")
	assert.Contains(t, body, "Status must be one of: pending, completed, cancelled")
	assert.Contains(t, body, "Date must be a valid date")
	assert.Empty(t, api.requests)
}

func TestUpdateSalePatchesNestedPath(t *testing.T) {
	api := &fakeSalesAPI{sales: map[string][]Sale{}}
	env, router := setup(t, api)

	rec := env.Serve(router, http.MethodPost, "/sales/g1/p1/s-7", url.Values{
		"accountId": {"acct-1"}, "quantity": {"2"}, "status": {"Pending"}, "date": {"2024-02-02"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, []string{"PATCH /g1/products/p1/sales/s-7"}, api.requests)
	assert.Equal(t, "pending", api.body["status"])
}

func TestCreateSaleAcceptsDateOnlyEcho(t *testing.T) {
	api := &fakeSalesAPI{echo: true, sales: map[string][]Sale{}}
	env, router := setup(t, api)

	rec := env.Serve(router, http.MethodPost, "/sales", url.Values{
		"product": {"g1/p2"}, "accountId": {"acct-9"}, "quantity": {"3"}, "status": {"completed"}, "date": {"2024-02-02"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	flash := env.Flash()
	require.NotNil(t, flash)
	assert.Equal(t, shared.FlashSuccess, flash.Kind)

	require.Len(t, api.sales["p2"], 1)
	assert.Equal(t, "2024-02-02", api.sales["p2"][0].Date.Format(shared.DateLayout))

	list := env.Serve(router, http.MethodGet, "/sales?product=p2", nil)
	assert.Equal(t, 1, strings.Count(list.Body.String(), `data-row="sale"`))
	assert.Contains(t, list.Body.String(), "2024-02-02")
}

func TestSalesListIsStableWithoutWrites(t *testing.T) {
	api := &fakeSalesAPI{sales: map[string][]Sale{
		"p1": manySales("p1", 4, StatusPending),
		"p2": manySales("p2", 3, StatusCompleted),
	}}
	env, router := setup(t, api)

	first := env.Serve(router, http.MethodGet, "/sales?search=acct&page=1", nil)
	second := env.Serve(router, http.MethodGet, "/sales?search=acct&page=1", nil)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
}
