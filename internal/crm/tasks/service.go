package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-crm/meridian/internal/shared"
)

// Service implements the tenant-scoped task entity manager.
type Service struct {
	repo Repository
	now  func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithNow overrides the clock, used by tests.
func WithNow(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService constructs a Service.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create schedules a task for a lead. When the new task and the lead's most
// recently created prior task both carry coordinates, distance_km records the
// haversine distance between them.
func (s *Service) Create(ctx context.Context, identity shared.Identity, req CreateTaskRequest) (*Task, error) {
	if err := shared.Validate(req); err != nil {
		return nil, err
	}
	scope := shared.ScopeFor(identity)

	exists, err := s.repo.LeadExists(ctx, scope, req.LeadID)
	if err != nil {
		return nil, fmt.Errorf("tasks: resolve lead: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: lead", shared.ErrNotFound)
	}

	status := StatusPlanned
	if req.Status != nil {
		status = *req.Status
	}
	priority := PriorityNormal
	if req.Priority != nil {
		priority = *req.Priority
	}
	assignee := req.AssignedTo
	if assignee == nil {
		actor := identity.UserID
		assignee = &actor
	}

	task := &Task{
		LeadID:      req.LeadID,
		CompanyID:   identity.CompanyID,
		CreatedBy:   identity.UserID,
		AssignedTo:  assignee,
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     req.DueDate,
		Lat:         req.Lat,
		Lng:         req.Lng,
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if task.Lat != nil && task.Lng != nil {
			last, err := repo.LastForLead(ctx, scope, task.LeadID)
			if err != nil && !errors.Is(err, shared.ErrNotFound) {
				return err
			}
			if last != nil && last.Lat != nil && last.Lng != nil {
				d := DistanceKm(*last.Lat, *last.Lng, *task.Lat, *task.Lng)
				task.DistanceKm = &d
			}
		}
		return repo.Create(ctx, task)
	})
	if err != nil {
		return nil, fmt.Errorf("tasks: create: %w", err)
	}
	return task, nil
}

// Get fetches a single task honoring the tenant and ownership rule.
func (s *Service) Get(ctx context.Context, identity shared.Identity, id uuid.UUID) (*Task, error) {
	scope := shared.ScopeFor(identity)
	task, err := s.repo.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if err := shared.Authorize(scope, task); err != nil {
		return nil, err
	}
	return task, nil
}

// List returns tasks visible to the actor, most recent first.
func (s *Service) List(ctx context.Context, identity shared.Identity, filter ListFilter, limit, offset int) ([]Task, error) {
	scope := shared.ScopeFor(identity)
	return s.repo.List(ctx, scope, filter, shared.NewPage(limit, offset))
}

// Update applies a partial patch. A first transition into Done stamps
// completed_at once; re-saving Done leaves it untouched.
func (s *Service) Update(ctx context.Context, identity shared.Identity, id uuid.UUID, patch map[string]any) (*Task, error) {
	scope := shared.ScopeFor(identity)
	var updated *Task

	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		existing, err := repo.Get(ctx, scope, id)
		if err != nil {
			return err
		}
		if err := shared.Authorize(scope, existing); err != nil {
			return err
		}

		updates, newStatus, err := buildPatch(patch)
		if err != nil {
			return err
		}
		if newStatus != nil && *newStatus == StatusDone && existing.CompletedAt == nil {
			updates["completed_at"] = s.now().UTC()
		}

		if err := repo.Update(ctx, id, updates); err != nil {
			return err
		}
		updated, err = repo.Get(ctx, scope, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a task after the authorization check.
func (s *Service) Delete(ctx context.Context, identity shared.Identity, id uuid.UUID) error {
	scope := shared.ScopeFor(identity)
	return s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		existing, err := repo.Get(ctx, scope, id)
		if err != nil {
			return err
		}
		if err := shared.Authorize(scope, existing); err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})
}

// Today lists tasks due within the current UTC day, earliest first.
func (s *Service) Today(ctx context.Context, identity shared.Identity) ([]Task, error) {
	scope := shared.ScopeFor(identity)
	start := s.now().UTC().Truncate(24 * time.Hour)
	end := start.Add(24 * time.Hour)
	return s.repo.ListDue(ctx, scope, &start, &end, false)
}

// Upcoming lists tasks due after the current UTC day, earliest first.
func (s *Service) Upcoming(ctx context.Context, identity shared.Identity) ([]Task, error) {
	scope := shared.ScopeFor(identity)
	after := s.now().UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	return s.repo.ListDue(ctx, scope, &after, nil, false)
}

// Reminders returns open tasks due within the next 24 hours together with
// the hours remaining.
func (s *Service) Reminders(ctx context.Context, identity shared.Identity) ([]Reminder, error) {
	scope := shared.ScopeFor(identity)
	now := s.now().UTC()
	soon := now.Add(24 * time.Hour)
	due, err := s.repo.ListDue(ctx, scope, &now, &soon, true)
	if err != nil {
		return nil, err
	}
	reminders := make([]Reminder, 0, len(due))
	for _, t := range due {
		hours := 0.0
		if t.DueDate != nil {
			hours = roundHours(t.DueDate.Sub(now))
		}
		reminders = append(reminders, Reminder{
			TaskID:     t.ID,
			Title:      t.Title,
			LeadID:     t.LeadID,
			DueInHours: hours,
		})
	}
	return reminders, nil
}

func roundHours(d time.Duration) float64 {
	return float64(int(d.Hours()*10+0.5)) / 10
}

var patchableKeys = map[string]string{
	"title":       "string",
	"description": "string",
	"status":      "string",
	"priority":    "string",
	"due_date":    "time",
	"assigned_to": "uuid",
	"lat":         "float",
	"lng":         "float",
}

func buildPatch(patch map[string]any) (map[string]any, *Status, error) {
	updates := make(map[string]any, len(patch))
	var newStatus *Status
	for key, raw := range patch {
		kind, ok := patchableKeys[key]
		if !ok {
			continue
		}
		if raw == nil {
			updates[key] = nil
			continue
		}
		value, err := coerce(key, kind, raw)
		if err != nil {
			return nil, nil, err
		}
		updates[key] = value
		if key == "status" {
			st := Status(value.(string))
			newStatus = &st
		}
	}
	return updates, newStatus, nil
}

func coerce(key, kind string, raw any) (any, error) {
	switch kind {
	case "string":
		if v, ok := raw.(string); ok {
			return v, nil
		}
	case "float":
		if v, ok := raw.(float64); ok {
			return v, nil
		}
	case "time":
		if str, ok := raw.(string); ok {
			if t, err := time.Parse(time.RFC3339, str); err == nil {
				return t, nil
			}
		}
	case "uuid":
		if str, ok := raw.(string); ok {
			if id, err := uuid.Parse(str); err == nil {
				return id, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: invalid value for %s", shared.ErrValidation, key)
}
