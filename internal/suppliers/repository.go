package suppliers

import (
	"context"

	"github.com/odyssey-erp/inventory-admin/internal/platform/backend"
)

// Repository reads and writes suppliers.
type Repository interface {
	List(ctx context.Context) ([]Supplier, error)
	Get(ctx context.Context, id string) (Supplier, error)
	Create(ctx context.Context, in Input) (Supplier, error)
	Update(ctx context.Context, id string, in Input) (Supplier, error)
	Delete(ctx context.Context, id string) error
}

type apiRepository struct {
	api *backend.Client
}

// NewRepository returns a Repository backed by the supplier service.
func NewRepository(api *backend.Client) Repository {
	return &apiRepository{api: api}
}

func (r *apiRepository) List(ctx context.Context) ([]Supplier, error) {
	return backend.Get[[]Supplier](ctx, r.api, "")
}

func (r *apiRepository) Get(ctx context.Context, id string) (Supplier, error) {
	return backend.Get[Supplier](ctx, r.api, backend.Path(id))
}

func (r *apiRepository) Create(ctx context.Context, in Input) (Supplier, error) {
	return backend.Post[Supplier](ctx, r.api, "", in)
}

func (r *apiRepository) Update(ctx context.Context, id string, in Input) (Supplier, error) {
	return backend.Patch[Supplier](ctx, r.api, backend.Path(id), in)
}

func (r *apiRepository) Delete(ctx context.Context, id string) error {
	return r.api.Delete(ctx, backend.Path(id))
}
