package leads

import (
	"time"

	"github.com/google/uuid"
)

// Lead is a prospective customer record. It owns activities, tasks,
// quotations and orders; deleting a lead cascades to all four at the
// persistence layer.
type Lead struct {
	ID            uuid.UUID  `json:"id"`
	CompanyID     uuid.UUID  `json:"company_id"`
	BusinessName  string     `json:"business_name"`
	ContactPerson *string    `json:"contact_person,omitempty"`
	Email         *string    `json:"email,omitempty"`
	Phone         *string    `json:"phone,omitempty"`
	Country       *string    `json:"country,omitempty"`
	State         *string    `json:"state,omitempty"`
	City          *string    `json:"city,omitempty"`
	Pincode       *string    `json:"pincode,omitempty"`
	Stage         string     `json:"stage"`
	Lat           *float64   `json:"lat,omitempty"`
	Lng           *float64   `json:"lng,omitempty"`
	LeadSource    *string    `json:"lead_source,omitempty"`
	NextAction    *string    `json:"next_action,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
	IsActive      bool       `json:"is_active"`
	CreatedBy     *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TenantID implements shared.Owned.
func (l *Lead) TenantID() uuid.UUID {
	return l.CompanyID
}

// OwnerIDs implements shared.Owned.
func (l *Lead) OwnerIDs() []uuid.UUID {
	if l.CreatedBy == nil {
		return nil
	}
	return []uuid.UUID{*l.CreatedBy}
}

// DefaultStage applies to new leads without an explicit stage.
const DefaultStage = "New"
