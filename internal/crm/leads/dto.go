package leads

// CreateLeadRequest is the payload for registering a new lead.
type CreateLeadRequest struct {
	BusinessName  string   `json:"business_name" validate:"required,max=200"`
	ContactPerson *string  `json:"contact_person,omitempty" validate:"omitempty,max=200"`
	Email         *string  `json:"email,omitempty" validate:"omitempty,email"`
	Phone         *string  `json:"phone,omitempty" validate:"omitempty,max=50"`
	Country       *string  `json:"country,omitempty" validate:"omitempty,max=100"`
	State         *string  `json:"state,omitempty" validate:"omitempty,max=100"`
	City          *string  `json:"city,omitempty" validate:"omitempty,max=100"`
	Pincode       *string  `json:"pincode,omitempty" validate:"omitempty,max=20"`
	Stage         *string  `json:"stage,omitempty" validate:"omitempty,max=50"`
	Lat           *float64 `json:"lat,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Lng           *float64 `json:"lng,omitempty" validate:"omitempty,gte=-180,lte=180"`
	LeadSource    *string  `json:"lead_source,omitempty" validate:"omitempty,max=100"`
	NextAction    *string  `json:"next_action,omitempty"`
	Notes         *string  `json:"notes,omitempty"`
}

// UpdateLeadRequest is a partial patch; absent fields stay untouched.
type UpdateLeadRequest struct {
	BusinessName  *string  `json:"business_name,omitempty" validate:"omitempty,max=200"`
	ContactPerson *string  `json:"contact_person,omitempty" validate:"omitempty,max=200"`
	Email         *string  `json:"email,omitempty" validate:"omitempty,email"`
	Phone         *string  `json:"phone,omitempty" validate:"omitempty,max=50"`
	Country       *string  `json:"country,omitempty"`
	State         *string  `json:"state,omitempty"`
	City          *string  `json:"city,omitempty"`
	Pincode       *string  `json:"pincode,omitempty"`
	Stage         *string  `json:"stage,omitempty" validate:"omitempty,max=50"`
	Lat           *float64 `json:"lat,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Lng           *float64 `json:"lng,omitempty" validate:"omitempty,gte=-180,lte=180"`
	LeadSource    *string  `json:"lead_source,omitempty"`
	NextAction    *string  `json:"next_action,omitempty"`
	Notes         *string  `json:"notes,omitempty"`
	IsActive      *bool    `json:"is_active,omitempty"`
}

// ListFilter narrows lead listings.
type ListFilter struct {
	Stage    *string
	IsActive *bool
	// Search matches business name, contact person and email after
	// diacritic folding.
	Search *string
}
