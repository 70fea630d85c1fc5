package quotations

import (
	"time"

	"github.com/google/uuid"
)

// Status values a quotation may hold.
const (
	StatusDraft    = "Draft"
	StatusSent     = "Sent"
	StatusAccepted = "Accepted"
	StatusRejected = "Rejected"
)

// Quotation is a priced offer issued against a lead.
type Quotation struct {
	ID          uuid.UUID  `json:"id"`
	LeadID      uuid.UUID  `json:"lead_id"`
	CompanyID   uuid.UUID  `json:"company_id"`
	QuoteNumber string     `json:"quote_number"`
	Amount      float64    `json:"amount"`
	Currency    string     `json:"currency"`
	Status      string     `json:"status"`
	ValidUntil  *time.Time `json:"valid_until,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
	CreatedBy   uuid.UUID  `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TenantID reports the owning company.
func (q *Quotation) TenantID() uuid.UUID { return q.CompanyID }

// OwnerIDs reports the users allowed to act on the quotation besides admins.
func (q *Quotation) OwnerIDs() []uuid.UUID { return []uuid.UUID{q.CreatedBy} }
