package sales

import (
	"time"

	"github.com/odyssey-erp/inventory-admin/internal/shared"
)

// Status is the state of a sale.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Statuses lists every valid sale status in display order.
var Statuses = []Status{StatusPending, StatusCompleted, StatusCancelled}

// Valid reports whether s is one of Statuses.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Sale records units of one product sold to an account.
type Sale struct {
	ID        string      `json:"id"`
	AccountID string      `json:"accountId"`
	ProductID string      `json:"productId"`
	Quantity  int         `json:"quantity"`
	Status    Status      `json:"status"`
	Date      shared.Date `json:"date"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// Row is a sale with the product and group it was recorded under.
type Row struct {
	Sale
	GroupID     string
	GroupName   string
	ProductName string
}

func rowFields(r Row) []string {
	return []string{string(r.Status), r.AccountID, r.ProductID, r.ProductName}
}

// Input creates or updates a sale.
type Input struct {
	AccountID string `json:"accountId" form:"accountId" validate:"required"`
	Quantity  int    `json:"quantity" form:"quantity" validate:"gte=1"`
	Status    Status `json:"status" form:"status" validate:"required,oneof=pending completed cancelled"`
	Date      string `json:"date" form:"date" validate:"required,datetime=2006-01-02"`
}

// Target identifies the product a sale belongs to.
type Target struct {
	GroupID   string `form:"groupId" validate:"required"`
	ProductID string `form:"productId" validate:"required"`
}
