package products

import (
	"context"

	"github.com/odyssey-erp/inventory-admin/internal/platform/backend"
)

// Repository reads and writes product groups and their products.
type Repository interface {
	ListGroups(ctx context.Context) ([]Group, error)
	GetGroup(ctx context.Context, id string) (Group, error)
	CreateGroup(ctx context.Context, in GroupInput) (Group, error)
	UpdateGroup(ctx context.Context, id string, in GroupInput) (Group, error)
	DeleteGroup(ctx context.Context, id string) error
	CreateProduct(ctx context.Context, groupID string, in ProductInput) (Product, error)
	UpdateProduct(ctx context.Context, groupID, id string, in ProductInput) (Product, error)
	DeleteProduct(ctx context.Context, groupID, id string) error
}

type apiRepository struct {
	api *backend.Client
}

// NewRepository returns a Repository backed by the product group service.
func NewRepository(api *backend.Client) Repository {
	return &apiRepository{api: api}
}

func (r *apiRepository) ListGroups(ctx context.Context) ([]Group, error) {
	return backend.Get[[]Group](ctx, r.api, "")
}

func (r *apiRepository) GetGroup(ctx context.Context, id string) (Group, error) {
	return backend.Get[Group](ctx, r.api, backend.Path(id))
}

func (r *apiRepository) CreateGroup(ctx context.Context, in GroupInput) (Group, error) {
	return backend.Post[Group](ctx, r.api, "", in)
}

func (r *apiRepository) UpdateGroup(ctx context.Context, id string, in GroupInput) (Group, error) {
	return backend.Patch[Group](ctx, r.api, backend.Path(id), in)
}

func (r *apiRepository) DeleteGroup(ctx context.Context, id string) error {
	return r.api.Delete(ctx, backend.Path(id))
}

func (r *apiRepository) CreateProduct(ctx context.Context, groupID string, in ProductInput) (Product, error) {
	return backend.Post[Product](ctx, r.api, backend.Path(groupID, "products"), in)
}

func (r *apiRepository) UpdateProduct(ctx context.Context, groupID, id string, in ProductInput) (Product, error) {
	return backend.Patch[Product](ctx, r.api, backend.Path(groupID, "products", id), in)
}

func (r *apiRepository) DeleteProduct(ctx context.Context, groupID, id string) error {
	return r.api.Delete(ctx, backend.Path(groupID, "products", id))
}
