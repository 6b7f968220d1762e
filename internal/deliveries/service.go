package deliveries

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/odyssey-erp/inventory-admin/internal/shared"
)

var errMissingID = errors.New("delivery id is required")

// Service applies delivery rules before calling the repository.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns deliveries, soonest scheduled arrival first.
func (s *Service) List(ctx context.Context, status Status) shared.ListState[Delivery] {
	items, err := s.repo.List(ctx)
	if err != nil {
		return shared.NewListState[Delivery](nil, fmt.Errorf("list deliveries: %w", err))
	}
	if status.Valid() {
		filtered := make([]Delivery, 0, len(items))
		for _, d := range items {
			if d.Status == status {
				filtered = append(filtered, d)
			}
		}
		items = filtered
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].ScheduledArrivalDate.Before(items[j].ScheduledArrivalDate.Time)
	})
	return shared.NewListState(items, nil)
}

func (s *Service) Get(ctx context.Context, id string) (Delivery, error) {
	if strings.TrimSpace(id) == "" {
		return Delivery{}, errMissingID
	}
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return Delivery{}, fmt.Errorf("get delivery %s: %w", id, err)
	}
	return d, nil
}

// Create validates and schedules a delivery. Item lines with the same
// product are merged.
func (s *Service) Create(ctx context.Context, in CreateInput) (Delivery, error) {
	in.SupplierID = strings.TrimSpace(in.SupplierID)
	in.ScheduledArrivalDate = strings.TrimSpace(in.ScheduledArrivalDate)
	in.Items = mergeItems(in.Items)
	if err := validateCreate(in); err != nil {
		return Delivery{}, err
	}
	d, err := s.repo.Create(ctx, in)
	if err != nil {
		return Delivery{}, fmt.Errorf("create delivery: %w", err)
	}
	return d, nil
}

// Reschedule changes the expected arrival of a pending delivery.
func (s *Service) Reschedule(ctx context.Context, id string, in ScheduleInput) (Delivery, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return Delivery{}, err
	}
	if !current.Pending() {
		return Delivery{}, shared.UserErrorf("Only pending deliveries can be rescheduled.")
	}
	in.ScheduledArrivalDate = strings.TrimSpace(in.ScheduledArrivalDate)
	if err := shared.Validate(in); err != nil {
		return Delivery{}, err
	}
	d, err := s.repo.Reschedule(ctx, id, in)
	if err != nil {
		return Delivery{}, fmt.Errorf("reschedule delivery %s: %w", id, err)
	}
	return d, nil
}

// Transition moves a pending delivery to completed or cancelled.
func (s *Service) Transition(ctx context.Context, id string, to Status) (Delivery, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return Delivery{}, err
	}
	if !CanTransition(current.Status, to) {
		return Delivery{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current.Status, to)
	}
	d, err := s.repo.SetStatus(ctx, id, to)
	if err != nil {
		return Delivery{}, fmt.Errorf("set delivery %s status: %w", id, err)
	}
	return d, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return errMissingID
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete delivery %s: %w", id, err)
	}
	return nil
}

func validateCreate(in CreateInput) error {
	errs := shared.ValidateForm(in)
	if len(in.Items) == 0 {
		if errs == nil {
			errs = shared.FormErrors{}
		}
		errs["items"] = "Add at least one item"
	}
	if errs != nil {
		return &shared.FormError{Fields: errs}
	}
	return nil
}

func mergeItems(items []ItemInput) []ItemInput {
	out := make([]ItemInput, 0, len(items))
	index := make(map[string]int, len(items))
	for _, it := range items {
		it.ProductID = strings.TrimSpace(it.ProductID)
		if i, ok := index[it.ProductID]; ok && it.ProductID != "" {
			out[i].Quantity += it.Quantity
			continue
		}
		index[it.ProductID] = len(out)
		out = append(out, it)
	}
	return out
}
