package categories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/odyssey-erp/inventory-admin/internal/shared"
)

var errMissingID = errors.New("category id is required")

// Service applies input rules before calling the repository.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns every category the service reports.
func (s *Service) List(ctx context.Context) ([]Category, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return items, nil
}

// Page filters by name and description, then pages the result.
func (s *Service) Page(ctx context.Context, search string, page int) (shared.ListState[Category], shared.Pagination) {
	items, err := s.List(ctx)
	if err != nil {
		return shared.NewListState[Category](nil, err), shared.NewPagination(1, shared.PageSize, 0)
	}
	visible, p := shared.FilterAndPage(items, search, page, searchFields)
	return shared.NewListState(visible, nil), p
}

func (s *Service) Get(ctx context.Context, id string) (Category, error) {
	if strings.TrimSpace(id) == "" {
		return Category{}, errMissingID
	}
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return Category{}, fmt.Errorf("get category %s: %w", id, err)
	}
	return c, nil
}

func (s *Service) Create(ctx context.Context, in Input) (Category, error) {
	in = normalize(in)
	if err := shared.Validate(in); err != nil {
		return Category{}, err
	}
	c, err := s.repo.Create(ctx, in)
	if err != nil {
		return Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (s *Service) Update(ctx context.Context, id string, in Input) (Category, error) {
	if strings.TrimSpace(id) == "" {
		return Category{}, errMissingID
	}
	in = normalize(in)
	if err := shared.Validate(in); err != nil {
		return Category{}, err
	}
	c, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return Category{}, fmt.Errorf("update category %s: %w", id, err)
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return errMissingID
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete category %s: %w", id, err)
	}
	return nil
}

func normalize(in Input) Input {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	return in
}
