package quotations

import (
	"time"

	"github.com/google/uuid"
)

// CreateQuotationRequest is the payload for issuing a quotation.
type CreateQuotationRequest struct {
	LeadID      uuid.UUID  `json:"lead_id" validate:"required"`
	QuoteNumber string     `json:"quote_number" validate:"required,max=50"`
	Amount      float64    `json:"amount" validate:"gte=0"`
	Currency    string     `json:"currency" validate:"required,len=3"`
	ValidUntil  *time.Time `json:"valid_until,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
}

// UpdateQuotationRequest is a partial patch; absent fields stay untouched.
type UpdateQuotationRequest struct {
	Amount     *float64   `json:"amount,omitempty" validate:"omitempty,gte=0"`
	Currency   *string    `json:"currency,omitempty" validate:"omitempty,len=3"`
	Status     *string    `json:"status,omitempty" validate:"omitempty,oneof=Draft Sent Accepted Rejected"`
	ValidUntil *time.Time `json:"valid_until,omitempty"`
	Notes      *string    `json:"notes,omitempty"`
}

// ListFilter narrows quotation listings.
type ListFilter struct {
	LeadID *uuid.UUID
	Status *string
}
