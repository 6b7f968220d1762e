package suppliers

import "time"

// Supplier delivers products with a lead time in days.
type Supplier struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	LeadTime  int               `json:"leadTime"`
	Products  []SupplierProduct `json:"products"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
	DeletedAt *time.Time        `json:"deletedAt,omitempty"`
}

// SupplierProduct is the product reference embedded in a supplier.
type SupplierProduct struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Active reports whether the supplier has not been soft deleted.
func (s Supplier) Active() bool {
	return s.DeletedAt == nil
}

// ProductIDs returns the ids of the supplied products.
func (s Supplier) ProductIDs() map[string]bool {
	out := make(map[string]bool, len(s.Products))
	for _, p := range s.Products {
		out[p.ID] = true
	}
	return out
}

// Input is the create and update payload.
type Input struct {
	Name       string   `json:"name" form:"name" validate:"required,min=2,max=100"`
	LeadTime   int      `json:"leadTime" form:"leadTime" validate:"gte=0"`
	ProductIDs []string `json:"productIds" form:"productIds"`
}
