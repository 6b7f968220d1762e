package deliveries

import (
	"context"

	"github.com/odyssey-erp/inventory-admin/internal/platform/backend"
)

// Repository reads and writes deliveries.
type Repository interface {
	List(ctx context.Context) ([]Delivery, error)
	Get(ctx context.Context, id string) (Delivery, error)
	Create(ctx context.Context, in CreateInput) (Delivery, error)
	Reschedule(ctx context.Context, id string, in ScheduleInput) (Delivery, error)
	SetStatus(ctx context.Context, id string, status Status) (Delivery, error)
	Delete(ctx context.Context, id string) error
}

type apiRepository struct {
	api *backend.Client
}

// NewRepository returns a Repository backed by the delivery service.
func NewRepository(api *backend.Client) Repository {
	return &apiRepository{api: api}
}

func (r *apiRepository) List(ctx context.Context) ([]Delivery, error) {
	return backend.Get[[]Delivery](ctx, r.api, "")
}

func (r *apiRepository) Get(ctx context.Context, id string) (Delivery, error) {
	return backend.Get[Delivery](ctx, r.api, backend.Path(id))
}

func (r *apiRepository) Create(ctx context.Context, in CreateInput) (Delivery, error) {
	return backend.Post[Delivery](ctx, r.api, "", in)
}

func (r *apiRepository) Reschedule(ctx context.Context, id string, in ScheduleInput) (Delivery, error) {
	return backend.Patch[Delivery](ctx, r.api, backend.Path(id), in)
}

func (r *apiRepository) SetStatus(ctx context.Context, id string, status Status) (Delivery, error) {
	return backend.Patch[Delivery](ctx, r.api, backend.Path(id), statusPatch{Status: status})
}

func (r *apiRepository) Delete(ctx context.Context, id string) error {
	return r.api.Delete(ctx, backend.Path(id))
}
