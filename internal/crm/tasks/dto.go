package tasks

import (
	"time"

	"github.com/google/uuid"
)

// CreateTaskRequest is the payload for scheduling a new task.
type CreateTaskRequest struct {
	LeadID      uuid.UUID  `json:"lead_id" validate:"required"`
	Title       string     `json:"title" validate:"required,max=200"`
	Description *string    `json:"description,omitempty"`
	Status      *Status    `json:"status,omitempty"`
	Priority    *Priority  `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	AssignedTo  *uuid.UUID `json:"assigned_to,omitempty"`
	Lat         *float64   `json:"lat,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Lng         *float64   `json:"lng,omitempty" validate:"omitempty,gte=-180,lte=180"`
}

// ListFilter narrows task listings.
type ListFilter struct {
	LeadID *uuid.UUID
	Status *string
}
