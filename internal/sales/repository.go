package sales

import (
	"context"

	"github.com/odyssey-erp/inventory-admin/internal/platform/backend"
)

// Repository reads and writes sales nested under a product.
type Repository interface {
	List(ctx context.Context, t Target) ([]Sale, error)
	Create(ctx context.Context, t Target, in Input) (Sale, error)
	Update(ctx context.Context, t Target, id string, in Input) (Sale, error)
	Delete(ctx context.Context, t Target, id string) error
}

type apiRepository struct {
	api *backend.Client
}

// NewRepository returns a Repository backed by the product group service.
func NewRepository(api *backend.Client) Repository {
	return &apiRepository{api: api}
}

func salesPath(t Target, id ...string) string {
	segments := append([]string{t.GroupID, "products", t.ProductID, "sales"}, id...)
	return backend.Path(segments...)
}

func (r *apiRepository) List(ctx context.Context, t Target) ([]Sale, error) {
	return backend.Get[[]Sale](ctx, r.api, salesPath(t))
}

func (r *apiRepository) Create(ctx context.Context, t Target, in Input) (Sale, error) {
	return backend.Post[Sale](ctx, r.api, salesPath(t), in)
}

func (r *apiRepository) Update(ctx context.Context, t Target, id string, in Input) (Sale, error) {
	return backend.Patch[Sale](ctx, r.api, salesPath(t, id), in)
}

func (r *apiRepository) Delete(ctx context.Context, t Target, id string) error {
	return r.api.Delete(ctx, salesPath(t, id))
}
