package sales

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/odyssey-erp/inventory-admin/internal/products"
	"github.com/odyssey-erp/inventory-admin/internal/shared"
)

var errMissingID = errors.New("sale id is required")

// Catalog lists the products whose sales are shown.
type Catalog interface {
	Products(ctx context.Context) ([]products.Item, error)
}

// Service aggregates sales across products and validates writes.
type Service struct {
	repo    Repository
	catalog Catalog
}

// NewService constructs a Service.
func NewService(repo Repository, catalog Catalog) *Service {
	return &Service{repo: repo, catalog: catalog}
}

// Products returns the catalog used for product pickers.
func (s *Service) Products(ctx context.Context) ([]products.Item, error) {
	return s.catalog.Products(ctx)
}

// Rows fetches the sales of every product one after another, newest first,
// and returns the product catalog it walked. productID narrows the fetch to
// a single product when set. The first failing fetch aborts the whole list.
func (s *Service) Rows(ctx context.Context, productID string) ([]Row, []products.Item, error) {
	items, err := s.catalog.Products(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list products for sales: %w", err)
	}
	var rows []Row
	for _, item := range items {
		if productID != "" && item.ID != productID {
			continue
		}
		sales, err := s.repo.List(ctx, Target{GroupID: item.GroupID, ProductID: item.ID})
		if err != nil {
			return nil, items, fmt.Errorf("list sales of product %s: %w", item.ID, err)
		}
		for _, sale := range sales {
			if sale.ProductID == "" {
				sale.ProductID = item.ID
			}
			rows = append(rows, Row{Sale: sale, GroupID: item.GroupID, GroupName: item.GroupName, ProductName: item.Name})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.After(rows[j].Date.Time)
	})
	return rows, items, nil
}

// Listing is one rendered page of sales.
type Listing struct {
	State      shared.ListState[Row]
	Pagination shared.Pagination
	Products   []products.Item
}

// Page filters rows by status, account id and product, then pages them.
func (s *Service) Page(ctx context.Context, productID, search string, page int) Listing {
	rows, items, err := s.Rows(ctx, productID)
	if err != nil {
		return Listing{
			State:      shared.NewListState[Row](nil, err),
			Pagination: shared.NewPagination(1, shared.PageSize, 0),
			Products:   items,
		}
	}
	visible, p := shared.FilterAndPage(rows, search, page, rowFields)
	return Listing{State: shared.NewListState(visible, nil), Pagination: p, Products: items}
}

// Find returns one sale of a product.
func (s *Service) Find(ctx context.Context, t Target, id string) (Sale, error) {
	if err := shared.Validate(t); err != nil {
		return Sale{}, err
	}
	sales, err := s.repo.List(ctx, t)
	if err != nil {
		return Sale{}, fmt.Errorf("list sales of product %s: %w", t.ProductID, err)
	}
	for _, sale := range sales {
		if sale.ID == id {
			return sale, nil
		}
	}
	return Sale{}, shared.UserErrorf("Sale not found.")
}

func (s *Service) Create(ctx context.Context, t Target, in Input) (Sale, error) {
	in = normalize(in)
	if err := validate(t, in); err != nil {
		return Sale{}, err
	}
	sale, err := s.repo.Create(ctx, t, in)
	if err != nil {
		return Sale{}, fmt.Errorf("create sale: %w", err)
	}
	return sale, nil
}

func (s *Service) Update(ctx context.Context, t Target, id string, in Input) (Sale, error) {
	if strings.TrimSpace(id) == "" {
		return Sale{}, errMissingID
	}
	in = normalize(in)
	if err := validate(t, in); err != nil {
		return Sale{}, err
	}
	sale, err := s.repo.Update(ctx, t, id, in)
	if err != nil {
		return Sale{}, fmt.Errorf("update sale %s: %w", id, err)
	}
	return sale, nil
}

func (s *Service) Delete(ctx context.Context, t Target, id string) error {
	if strings.TrimSpace(id) == "" {
		return errMissingID
	}
	if err := shared.Validate(t); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, t, id); err != nil {
		return fmt.Errorf("delete sale %s: %w", id, err)
	}
	return nil
}

func validate(t Target, in Input) error {
	errs := shared.ValidateForm(in)
	if targetErrs := shared.ValidateForm(t); targetErrs != nil {
		if errs == nil {
			errs = shared.FormErrors{}
		}
		errs["product"] = "Product is required"
	}
	if errs != nil {
		return &shared.FormError{Fields: errs}
	}
	return nil
}

func normalize(in Input) Input {
	in.AccountID = strings.TrimSpace(in.AccountID)
	in.Date = strings.TrimSpace(in.Date)
	in.Status = Status(strings.ToLower(strings.TrimSpace(string(in.Status))))
	return in
}
