package accounts

import (
	"context"
	"net/http"

	"github.com/odyssey-erp/inventory-admin/internal/platform/backend"
)

// Repository reads and writes accounts and their permission grants.
type Repository interface {
	List(ctx context.Context) ([]Account, error)
	Get(ctx context.Context, id string) (Account, error)
	Create(ctx context.Context, in CreateInput) (Account, error)
	UpdateRole(ctx context.Context, id string, in RoleInput) (Account, error)
	Delete(ctx context.Context, id string) error
	Permissions(ctx context.Context) ([]Permission, error)
	Grant(ctx context.Context, accountID, permissionID string) error
}

type apiRepository struct {
	api *backend.Client
}

// NewRepository returns a Repository backed by the account service.
func NewRepository(api *backend.Client) Repository {
	return &apiRepository{api: api}
}

func (r *apiRepository) List(ctx context.Context) ([]Account, error) {
	return backend.Get[[]Account](ctx, r.api, "")
}

func (r *apiRepository) Get(ctx context.Context, id string) (Account, error) {
	return backend.Get[Account](ctx, r.api, backend.Path(id))
}

func (r *apiRepository) Create(ctx context.Context, in CreateInput) (Account, error) {
	return backend.Post[Account](ctx, r.api, "", in)
}

func (r *apiRepository) UpdateRole(ctx context.Context, id string, in RoleInput) (Account, error) {
	return backend.Patch[Account](ctx, r.api, backend.Path(id), in)
}

func (r *apiRepository) Delete(ctx context.Context, id string) error {
	return r.api.Delete(ctx, backend.Path(id))
}

func (r *apiRepository) Permissions(ctx context.Context) ([]Permission, error) {
	return backend.Get[[]Permission](ctx, r.api, backend.Path("permissions"))
}

// Grant adds one permission. A 409 answer means it was already granted.
func (r *apiRepository) Grant(ctx context.Context, accountID, permissionID string) error {
	return r.api.Do(ctx, http.MethodPost, backend.Path(accountID, "permissions"), grantRequest{PermissionID: permissionID}, nil)
}
