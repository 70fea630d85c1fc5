package tasks

import (
	"time"

	"github.com/google/uuid"
)

// Status is the task lifecycle state.
type Status string

const (
	StatusPlanned     Status = "Planned"
	StatusInProgress  Status = "In Progress"
	StatusDone        Status = "Done"
	StatusRescheduled Status = "Rescheduled"
)

// Priority of a task.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityNormal Priority = "Normal"
	PriorityHigh   Priority = "High"
)

// Task is a schedulable unit of work tied to a lead.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	LeadID      uuid.UUID  `json:"lead_id"`
	CompanyID   uuid.UUID  `json:"company_id"`
	CreatedBy   uuid.UUID  `json:"created_by"`
	AssignedTo  *uuid.UUID `json:"assigned_to,omitempty"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Lat         *float64   `json:"lat,omitempty"`
	Lng         *float64   `json:"lng,omitempty"`
	// DistanceKm is derived at creation against the previous task of the
	// same lead when both carry coordinates.
	DistanceKm *float64  `json:"distance_km,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TenantID implements shared.Owned.
func (t *Task) TenantID() uuid.UUID {
	return t.CompanyID
}

// OwnerIDs implements shared.Owned.
func (t *Task) OwnerIDs() []uuid.UUID {
	owners := []uuid.UUID{t.CreatedBy}
	if t.AssignedTo != nil {
		owners = append(owners, *t.AssignedTo)
	}
	return owners
}

// Reminder is a due-soon task projection returned by the reminder scan.
type Reminder struct {
	TaskID     uuid.UUID `json:"task_id"`
	Title      string    `json:"title"`
	LeadID     uuid.UUID `json:"lead_id"`
	DueInHours float64   `json:"due_in_hours"`
}
