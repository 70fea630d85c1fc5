package orders

import (
	"time"

	"github.com/google/uuid"
)

// Status values an order may hold.
const (
	StatusPending   = "Pending"
	StatusConfirmed = "Confirmed"
	StatusShipped   = "Shipped"
	StatusDelivered = "Delivered"
	StatusCancelled = "Cancelled"
)

// Order is a confirmed sale recorded against a lead, optionally originating
// from an accepted quotation.
type Order struct {
	ID          uuid.UUID  `json:"id"`
	LeadID      uuid.UUID  `json:"lead_id"`
	CompanyID   uuid.UUID  `json:"company_id"`
	QuotationID *uuid.UUID `json:"quotation_id,omitempty"`
	OrderNumber string     `json:"order_number"`
	Amount      float64    `json:"amount"`
	Currency    string     `json:"currency"`
	Status      string     `json:"status"`
	Notes       *string    `json:"notes,omitempty"`
	CreatedBy   uuid.UUID  `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TenantID reports the owning company.
func (o *Order) TenantID() uuid.UUID { return o.CompanyID }

// OwnerIDs reports the users allowed to act on the order besides admins.
func (o *Order) OwnerIDs() []uuid.UUID { return []uuid.UUID{o.CreatedBy} }
