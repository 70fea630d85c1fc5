package activities

import (
	"time"

	"github.com/google/uuid"
)

// CreateActivityRequest is the payload for logging a new activity.
type CreateActivityRequest struct {
	LeadID      uuid.UUID  `json:"lead_id" validate:"required"`
	Type        string     `json:"type" validate:"required,max=40"`
	Title       string     `json:"title" validate:"max=200"`
	Description *string    `json:"description,omitempty"`
	Status      *Status    `json:"status,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Outcome     *string    `json:"outcome,omitempty" validate:"omitempty,max=60"`
	Priority    *Priority  `json:"priority,omitempty"`
	AssignedTo  *uuid.UUID `json:"assigned_to,omitempty"`

	DeviceID *string  `json:"device_id,omitempty" validate:"omitempty,max=120"`
	GeoLat   *float64 `json:"geo_lat,omitempty" validate:"omitempty,gte=-90,lte=90"`
	GeoLong  *float64 `json:"geo_long,omitempty" validate:"omitempty,gte=-180,lte=180"`

	TrustScoreImpact *int           `json:"trust_score_impact,omitempty"`
	SourceChannel    *string        `json:"source_channel,omitempty" validate:"omitempty,max=60"`
	Meta             map[string]any `json:"meta,omitempty"`
}

// VerifyActivityRequest carries verification metadata. Merge semantics: only
// non-null fields overwrite the stored row.
type VerifyActivityRequest struct {
	ActivityID       uuid.UUID  `json:"activity_id" validate:"required"`
	VerifiedEvent    *bool      `json:"verified_event,omitempty"`
	VerificationType *string    `json:"verification_type,omitempty" validate:"omitempty,oneof=manual call_log gps api smtp"`
	CallDuration     *int       `json:"call_duration,omitempty" validate:"omitempty,gte=0"`
	GPSVerified      *bool      `json:"gps_verified,omitempty"`
	GeoLat           *float64   `json:"geo_lat,omitempty" validate:"omitempty,gte=-90,lte=90"`
	GeoLong          *float64   `json:"geo_long,omitempty" validate:"omitempty,gte=-180,lte=180"`
	DeviceID         *string    `json:"device_id,omitempty" validate:"omitempty,max=120"`
}

// ListFilter narrows activity listings. Zero values mean "no filter".
type ListFilter struct {
	LeadID     *uuid.UUID
	Status     *string
	Type       *string
	Verified   *bool
	AssignedTo *uuid.UUID
	DateFrom   *time.Time
	DateTo     *time.Time
}
