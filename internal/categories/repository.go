package categories

import (
	"context"

	"github.com/odyssey-erp/inventory-admin/internal/platform/backend"
)

// Repository reads and writes categories.
type Repository interface {
	List(ctx context.Context) ([]Category, error)
	Get(ctx context.Context, id string) (Category, error)
	Create(ctx context.Context, in Input) (Category, error)
	Update(ctx context.Context, id string, in Input) (Category, error)
	Delete(ctx context.Context, id string) error
}

type apiRepository struct {
	api *backend.Client
}

// NewRepository returns a Repository backed by the category service.
func NewRepository(api *backend.Client) Repository {
	return &apiRepository{api: api}
}

func (r *apiRepository) List(ctx context.Context) ([]Category, error) {
	return backend.Get[[]Category](ctx, r.api, "")
}

func (r *apiRepository) Get(ctx context.Context, id string) (Category, error) {
	return backend.Get[Category](ctx, r.api, backend.Path(id))
}

func (r *apiRepository) Create(ctx context.Context, in Input) (Category, error) {
	return backend.Post[Category](ctx, r.api, "", in)
}

// Update replaces the category; the service only accepts PUT here.
func (r *apiRepository) Update(ctx context.Context, id string, in Input) (Category, error) {
	return backend.Put[Category](ctx, r.api, backend.Path(id), in)
}

func (r *apiRepository) Delete(ctx context.Context, id string) error {
	return r.api.Delete(ctx, backend.Path(id))
}
