package products

import "time"

// Group is a product group with its nested products.
type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Products  []Product `json:"products"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Product is a stock-keeping item inside a group.
type Product struct {
	ID          string    `json:"id"`
	GroupID     string    `json:"groupId"`
	Name        string    `json:"name"`
	Stock       int       `json:"stock"`
	SafetyStock int       `json:"safetyStock"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// LowStock reports whether stock fell under the safety level.
func (p Product) LowStock() bool {
	return p.Stock < p.SafetyStock
}

// LowStockCount counts the group's products under their safety level.
func (g Group) LowStockCount() int {
	n := 0
	for _, p := range g.Products {
		if p.LowStock() {
			n++
		}
	}
	return n
}

// GroupInput creates or renames a group.
type GroupInput struct {
	Name string `json:"name" form:"name" validate:"required,max=100"`
}

// ProductInput creates or updates a product.
type ProductInput struct {
	Name        string `json:"name" form:"name" validate:"required,max=100"`
	Stock       int    `json:"stock" form:"stock" validate:"gte=0"`
	SafetyStock int    `json:"safetyStock" form:"safetyStock" validate:"gte=0"`
}

// Item is a product flattened with the name of its group.
type Item struct {
	Product
	GroupName string
}

// Flatten lists every product of groups in order, tagging each with its
// group. Products missing a group id inherit the enclosing group's.
func Flatten(groups []Group) []Item {
	var out []Item
	for _, g := range groups {
		for _, p := range g.Products {
			if p.GroupID == "" {
				p.GroupID = g.ID
			}
			out = append(out, Item{Product: p, GroupName: g.Name})
		}
	}
	return out
}

func groupFields(g Group) []string {
	fields := []string{g.Name}
	for _, p := range g.Products {
		fields = append(fields, p.Name)
	}
	return fields
}
