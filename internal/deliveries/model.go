package deliveries

import (
	"errors"
	"time"

	"github.com/odyssey-erp/inventory-admin/internal/shared"
)

// Status is the lifecycle state of a delivery.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known delivery status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ErrInvalidTransition rejects status changes other than pending to
// completed or cancelled.
var ErrInvalidTransition = errors.New("invalid delivery status transition")

// CanTransition reports whether a delivery in from may move to to.
func CanTransition(from, to Status) bool {
	return from == StatusPending && (to == StatusCompleted || to == StatusCancelled)
}

// Delivery is an inbound shipment from a supplier.
type Delivery struct {
	ID                   string      `json:"id"`
	Status               Status      `json:"status"`
	Items                []Item      `json:"items"`
	Supplier             SupplierRef `json:"supplier"`
	SupplierID           string      `json:"supplierId"`
	RequestedAt          time.Time   `json:"requestedAt"`
	ScheduledArrivalDate shared.Date `json:"scheduledArrivalDate"`
	CancelledAt          *time.Time  `json:"cancelledAt,omitempty"`
}

// Pending reports whether the delivery can still change status.
func (d Delivery) Pending() bool {
	return d.Status == StatusPending
}

// SupplierName prefers the embedded supplier over the bare id.
func (d Delivery) SupplierName() string {
	if d.Supplier.Name != "" {
		return d.Supplier.Name
	}
	if d.Supplier.ID != "" {
		return d.Supplier.ID
	}
	return d.SupplierID
}

// TotalQuantity sums the quantities of all items.
func (d Delivery) TotalQuantity() int {
	n := 0
	for _, it := range d.Items {
		n += it.Quantity
	}
	return n
}

// Item is one product line of a delivery.
type Item struct {
	ProductID string      `json:"productId"`
	Product   *ProductRef `json:"product,omitempty"`
	Quantity  int         `json:"quantity"`
}

// Label is the product name when embedded, otherwise its id.
func (i Item) Label() string {
	if i.Product != nil && i.Product.Name != "" {
		return i.Product.Name
	}
	return i.ProductID
}

// SupplierRef is the supplier embedded in a delivery.
type SupplierRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProductRef is the product embedded in a delivery item.
type ProductRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CreateInput schedules a new delivery.
type CreateInput struct {
	SupplierID           string      `json:"supplierId" form:"supplierId" validate:"required"`
	ScheduledArrivalDate string      `json:"scheduledArrivalDate" form:"scheduledArrivalDate" validate:"required,datetime=2006-01-02"`
	Items                []ItemInput `json:"items" form:"items" validate:"required,min=1,dive"`
}

// ItemInput is one requested product line.
type ItemInput struct {
	ProductID string `json:"productId" form:"productId" validate:"required"`
	Quantity  int    `json:"quantity" form:"quantity" validate:"gte=1"`
}

// ScheduleInput moves the expected arrival of a pending delivery.
type ScheduleInput struct {
	ScheduledArrivalDate string `json:"scheduledArrivalDate" form:"scheduledArrivalDate" validate:"required,datetime=2006-01-02"`
}

type statusPatch struct {
	Status Status `json:"status"`
}
