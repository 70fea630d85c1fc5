package orders

import "github.com/google/uuid"

// CreateOrderRequest is the payload for recording an order.
type CreateOrderRequest struct {
	LeadID      uuid.UUID  `json:"lead_id" validate:"required"`
	QuotationID *uuid.UUID `json:"quotation_id,omitempty"`
	OrderNumber string     `json:"order_number" validate:"required,max=50"`
	Amount      float64    `json:"amount" validate:"gte=0"`
	Currency    string     `json:"currency" validate:"required,len=3"`
	Notes       *string    `json:"notes,omitempty"`
}

// UpdateOrderRequest is a partial patch; absent fields stay untouched.
type UpdateOrderRequest struct {
	Amount   *float64 `json:"amount,omitempty" validate:"omitempty,gte=0"`
	Currency *string  `json:"currency,omitempty" validate:"omitempty,len=3"`
	Status   *string  `json:"status,omitempty" validate:"omitempty,oneof=Pending Confirmed Shipped Delivered Cancelled"`
	Notes    *string  `json:"notes,omitempty"`
}

// ListFilter narrows order listings.
type ListFilter struct {
	LeadID *uuid.UUID
	Status *string
}
