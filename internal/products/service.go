package products

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/odyssey-erp/inventory-admin/internal/shared"
)

var errMissingID = errors.New("product group id is required")

// Service validates input, calls the repository and keeps the store fresh
// after every successful write.
type Service struct {
	repo  Repository
	store *Store
}

// NewService constructs a Service.
func NewService(repo Repository, store *Store) *Service {
	return &Service{repo: repo, store: store}
}

// Store exposes the shared product store.
func (s *Service) Store() *Store {
	return s.store
}

// Groups refreshes the store and returns the list state for the groups page.
func (s *Service) Groups(ctx context.Context, search string) shared.ListState[Group] {
	groups, err := s.store.Refresh(ctx)
	if err != nil {
		return shared.NewListState[Group](nil, fmt.Errorf("list product groups: %w", err))
	}
	return shared.NewListState(shared.Filter(groups, search, groupFields), nil)
}

// Group fetches a single group with its products.
func (s *Service) Group(ctx context.Context, id string) (Group, error) {
	if strings.TrimSpace(id) == "" {
		return Group{}, errMissingID
	}
	g, err := s.repo.GetGroup(ctx, id)
	if err != nil {
		return Group{}, fmt.Errorf("get product group %s: %w", id, err)
	}
	return g, nil
}

// Product finds a product inside its group.
func (s *Service) Product(ctx context.Context, groupID, id string) (Group, Product, error) {
	g, err := s.Group(ctx, groupID)
	if err != nil {
		return Group{}, Product{}, err
	}
	for _, p := range g.Products {
		if p.ID == id {
			return g, p, nil
		}
	}
	return g, Product{}, shared.UserErrorf("Product not found in %s.", g.Name)
}

func (s *Service) CreateGroup(ctx context.Context, in GroupInput) (Group, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := shared.Validate(in); err != nil {
		return Group{}, err
	}
	g, err := s.repo.CreateGroup(ctx, in)
	if err != nil {
		return Group{}, fmt.Errorf("create product group: %w", err)
	}
	s.refresh(ctx)
	return g, nil
}

func (s *Service) UpdateGroup(ctx context.Context, id string, in GroupInput) (Group, error) {
	if strings.TrimSpace(id) == "" {
		return Group{}, errMissingID
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := shared.Validate(in); err != nil {
		return Group{}, err
	}
	g, err := s.repo.UpdateGroup(ctx, id, in)
	if err != nil {
		return Group{}, fmt.Errorf("update product group %s: %w", id, err)
	}
	s.refresh(ctx)
	return g, nil
}

func (s *Service) DeleteGroup(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return errMissingID
	}
	if err := s.repo.DeleteGroup(ctx, id); err != nil {
		return fmt.Errorf("delete product group %s: %w", id, err)
	}
	s.refresh(ctx)
	return nil
}

func (s *Service) CreateProduct(ctx context.Context, groupID string, in ProductInput) (Product, error) {
	if strings.TrimSpace(groupID) == "" {
		return Product{}, errMissingID
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := shared.Validate(in); err != nil {
		return Product{}, err
	}
	p, err := s.repo.CreateProduct(ctx, groupID, in)
	if err != nil {
		return Product{}, fmt.Errorf("create product in %s: %w", groupID, err)
	}
	s.refresh(ctx)
	return p, nil
}

func (s *Service) UpdateProduct(ctx context.Context, groupID, id string, in ProductInput) (Product, error) {
	if strings.TrimSpace(groupID) == "" || strings.TrimSpace(id) == "" {
		return Product{}, errMissingID
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := shared.Validate(in); err != nil {
		return Product{}, err
	}
	p, err := s.repo.UpdateProduct(ctx, groupID, id, in)
	if err != nil {
		return Product{}, fmt.Errorf("update product %s: %w", id, err)
	}
	s.refresh(ctx)
	return p, nil
}

func (s *Service) DeleteProduct(ctx context.Context, groupID, id string) error {
	if strings.TrimSpace(groupID) == "" || strings.TrimSpace(id) == "" {
		return errMissingID
	}
	if err := s.repo.DeleteProduct(ctx, groupID, id); err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	s.refresh(ctx)
	return nil
}

// LowStock is the dashboard summary.
type LowStock struct {
	Items      []Item
	PerGroup   map[string]int
	GroupCount int
	Total      int
}

// Dashboard refreshes the store and summarises products under their safety
// stock, worst shortfall first.
func (s *Service) Dashboard(ctx context.Context) (LowStock, error) {
	groups, err := s.store.Refresh(ctx)
	if err != nil {
		return LowStock{}, fmt.Errorf("load dashboard: %w", err)
	}
	summary := LowStock{PerGroup: map[string]int{}, GroupCount: len(groups)}
	for _, item := range Flatten(groups) {
		summary.Total++
		if !item.LowStock() {
			continue
		}
		summary.Items = append(summary.Items, item)
		summary.PerGroup[item.GroupName]++
	}
	sort.SliceStable(summary.Items, func(i, j int) bool {
		a, b := summary.Items[i], summary.Items[j]
		return a.SafetyStock-a.Stock > b.SafetyStock-b.Stock
	})
	return summary, nil
}

// refresh re-reads the groups after a write. A failure is kept on the store
// and shown by the next list render.
func (s *Service) refresh(ctx context.Context) {
	s.store.Invalidate()
	_, _ = s.store.Refresh(ctx)
}
