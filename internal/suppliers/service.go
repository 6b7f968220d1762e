package suppliers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/odyssey-erp/inventory-admin/internal/shared"
)

var errMissingID = errors.New("supplier id is required")

// Service applies input rules before calling the repository.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns suppliers; soft-deleted ones only when includeDeleted is set.
func (s *Service) List(ctx context.Context, includeDeleted bool) shared.ListState[Supplier] {
	items, err := s.repo.List(ctx)
	if err != nil {
		return shared.NewListState[Supplier](nil, fmt.Errorf("list suppliers: %w", err))
	}
	if !includeDeleted {
		items = activeOnly(items)
	}
	return shared.NewListState(items, nil)
}

// Active returns suppliers that can take new deliveries.
func (s *Service) Active(ctx context.Context) ([]Supplier, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	return activeOnly(items), nil
}

func activeOnly(items []Supplier) []Supplier {
	out := make([]Supplier, 0, len(items))
	for _, sup := range items {
		if sup.Active() {
			out = append(out, sup)
		}
	}
	return out
}

func (s *Service) Get(ctx context.Context, id string) (Supplier, error) {
	if strings.TrimSpace(id) == "" {
		return Supplier{}, errMissingID
	}
	sup, err := s.repo.Get(ctx, id)
	if err != nil {
		return Supplier{}, fmt.Errorf("get supplier %s: %w", id, err)
	}
	return sup, nil
}

func (s *Service) Create(ctx context.Context, in Input) (Supplier, error) {
	in = normalize(in)
	if err := shared.Validate(in); err != nil {
		return Supplier{}, err
	}
	sup, err := s.repo.Create(ctx, in)
	if err != nil {
		return Supplier{}, fmt.Errorf("create supplier: %w", err)
	}
	return sup, nil
}

func (s *Service) Update(ctx context.Context, id string, in Input) (Supplier, error) {
	if strings.TrimSpace(id) == "" {
		return Supplier{}, errMissingID
	}
	in = normalize(in)
	if err := shared.Validate(in); err != nil {
		return Supplier{}, err
	}
	sup, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return Supplier{}, fmt.Errorf("update supplier %s: %w", id, err)
	}
	return sup, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return errMissingID
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete supplier %s: %w", id, err)
	}
	return nil
}

func normalize(in Input) Input {
	in.Name = strings.TrimSpace(in.Name)
	ids := make([]string, 0, len(in.ProductIDs))
	seen := make(map[string]bool, len(in.ProductIDs))
	for _, id := range in.ProductIDs {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	in.ProductIDs = ids
	return in
}
