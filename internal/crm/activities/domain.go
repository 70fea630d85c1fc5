package activities

import (
	"time"

	"github.com/google/uuid"
)

// Status is the activity lifecycle state. The column is an open enum: known
// values get typed constants, legacy values pass through untouched.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
	StatusCancelled  Status = "Cancelled"
	// StatusDone is a legacy completed-equivalent value still present in
	// older rows.
	StatusDone Status = "Done"
)

// IsCompleted reports whether the status counts as a completed-equivalent
// state. Only the first transition into such a state stamps completed_at and
// may trigger follow-up automation.
func (s Status) IsCompleted() bool {
	return s == StatusCompleted || s == StatusDone
}

// IsTerminal reports whether no further transitions are expected.
func (s Status) IsTerminal() bool {
	return s.IsCompleted() || s == StatusCancelled
}

// Priority of an activity or auto-spawned task.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// pendingStatuses is the fixed pending-like set counted by the summary.
var pendingStatuses = []string{"Planned", "Pending", "Overdue"}

// Activity represents a logged interaction or an auto-spawned follow-up.
type Activity struct {
	ID          uuid.UUID  `json:"id"`
	LeadID      uuid.UUID  `json:"lead_id"`
	CompanyID   uuid.UUID  `json:"company_id"`
	Type        string     `json:"type"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Status      Status     `json:"status"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Outcome     *string    `json:"outcome,omitempty"`
	NextTask    *string    `json:"next_task,omitempty"`
	NextTaskAt  *time.Time `json:"next_task_date,omitempty"`
	Priority    Priority   `json:"priority"`

	AssignedTo *uuid.UUID `json:"assigned_to,omitempty"`
	CreatedBy  uuid.UUID  `json:"created_by"`
	CreatedAt  time.Time  `json:"created_at"`

	VerifiedEvent    bool     `json:"verified_event"`
	VerificationType *string  `json:"verification_type,omitempty"`
	CallDuration     *int     `json:"call_duration,omitempty"`
	DeviceID         *string  `json:"device_id,omitempty"`
	GeoLat           *float64 `json:"geo_lat,omitempty"`
	GeoLong          *float64 `json:"geo_long,omitempty"`
	GPSVerified      bool     `json:"gps_verified"`

	ParentActivityID *uuid.UUID `json:"parent_activity_id,omitempty"`
	AutoGenerated    bool       `json:"auto_generated"`

	TrustScoreImpact int            `json:"trust_score_impact"`
	SourceChannel    *string        `json:"source_channel,omitempty"`
	Meta             map[string]any `json:"meta,omitempty"`
}

// TenantID implements shared.Owned.
func (a *Activity) TenantID() uuid.UUID {
	return a.CompanyID
}

// OwnerIDs implements shared.Owned. Assignment and creation both grant
// soft ownership.
func (a *Activity) OwnerIDs() []uuid.UUID {
	owners := []uuid.UUID{a.CreatedBy}
	if a.AssignedTo != nil {
		owners = append(owners, *a.AssignedTo)
	}
	return owners
}

// Summary holds the visibility-scoped overview counts.
type Summary struct {
	Total     int `json:"total"`
	Verified  int `json:"verified"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
}
