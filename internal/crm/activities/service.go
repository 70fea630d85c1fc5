package activities

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/meridian-crm/meridian/internal/shared"
)

// summaryTTL bounds staleness of the cached overview counts.
const summaryTTL = 30 * time.Second

// Service implements the tenant-scoped activity entity manager and drives the
// follow-up automation engine.
type Service struct {
	repo  Repository
	cache *redis.Client
	group singleflight.Group
	now   func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithNow overrides the clock, used by tests.
func WithNow(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService constructs a Service. The cache client may be nil; summary
// queries then hit the store directly.
func NewService(repo Repository, cache *redis.Client, opts ...Option) *Service {
	s := &Service{repo: repo, cache: cache, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create logs a new activity for a lead within the actor's tenant.
func (s *Service) Create(ctx context.Context, identity shared.Identity, req CreateActivityRequest) (*Activity, error) {
	if err := shared.Validate(req); err != nil {
		return nil, err
	}
	scope := shared.ScopeFor(identity)

	exists, err := s.repo.LeadExists(ctx, scope, req.LeadID)
	if err != nil {
		return nil, fmt.Errorf("activities: resolve lead: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: lead", shared.ErrNotFound)
	}

	status := StatusPending
	if req.Status != nil {
		status = *req.Status
	}
	priority := PriorityMedium
	if req.Priority != nil {
		priority = *req.Priority
	}
	assignee := req.AssignedTo
	if assignee == nil {
		actor := identity.UserID
		assignee = &actor
	}
	trust := 0
	if req.TrustScoreImpact != nil {
		trust = *req.TrustScoreImpact
	}

	activity := &Activity{
		LeadID:           req.LeadID,
		CompanyID:        identity.CompanyID,
		Type:             req.Type,
		Title:            req.Title,
		Description:      req.Description,
		Status:           status,
		DueDate:          req.DueDate,
		Outcome:          req.Outcome,
		Priority:         priority,
		AssignedTo:       assignee,
		CreatedBy:        identity.UserID,
		CallDuration:     callDurationFromMeta(req.Type, req.Meta),
		DeviceID:         req.DeviceID,
		GeoLat:           req.GeoLat,
		GeoLong:          req.GeoLong,
		TrustScoreImpact: trust,
		SourceChannel:    req.SourceChannel,
		Meta:             req.Meta,
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		return repo.Create(ctx, activity)
	})
	if err != nil {
		return nil, fmt.Errorf("activities: create: %w", err)
	}
	return activity, nil
}

// Get fetches a single activity honoring the tenant and ownership rule.
func (s *Service) Get(ctx context.Context, identity shared.Identity, id uuid.UUID) (*Activity, error) {
	scope := shared.ScopeFor(identity)
	activity, err := s.repo.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if err := shared.Authorize(scope, activity); err != nil {
		return nil, err
	}
	return activity, nil
}

// List returns activities visible to the actor, most recent first.
func (s *Service) List(ctx context.Context, identity shared.Identity, filter ListFilter, limit, offset int) ([]Activity, error) {
	scope := shared.ScopeFor(identity)
	// The assignee filter is honored only for admins or when an actor
	// filters to their own rows.
	if filter.AssignedTo != nil && !scope.Admin && *filter.AssignedTo != scope.UserID {
		filter.AssignedTo = nil
	}
	return s.repo.List(ctx, scope, filter, shared.NewPage(limit, offset))
}

// Update applies a partial patch. Protected fields are silently dropped. The
// first transition into a completed state stamps completed_at and runs the
// follow-up engine inside the same transaction; idempotent re-saves of an
// already completed activity do neither.
func (s *Service) Update(ctx context.Context, identity shared.Identity, id uuid.UUID, patch map[string]any) (*Activity, error) {
	scope := shared.ScopeFor(identity)
	var updated *Activity

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

		// Terminal states stay terminal. Re-saving a completed-equivalent
		// status over another is tolerated and stays a no-op below.
		if newStatus != nil && existing.Status.IsTerminal() && *newStatus != existing.Status {
			if !(newStatus.IsCompleted() && existing.Status.IsCompleted()) {
				return fmt.Errorf("%w: activity is %s", shared.ErrValidation, existing.Status)
			}
		}

		now := s.now().UTC()
		freshCompletion := newStatus != nil && newStatus.IsCompleted() && !existing.Status.IsCompleted()

		completedAt := existing.CompletedAt
		if newStatus != nil && newStatus.IsCompleted() && existing.CompletedAt == nil {
			updates["completed_at"] = now
			completedAt = &now
		}

		if err := repo.Update(ctx, id, updates); err != nil {
			return err
		}
		updated, err = repo.Get(ctx, scope, id)
		if err != nil {
			return err
		}

		if freshCompletion {
			when := now
			if completedAt != nil {
				when = *completedAt
			}
			if child, ok := PlanNextTask(updated, when); ok {
				if err := repo.Create(ctx, child); err != nil {
					return fmt.Errorf("activities: spawn follow-up: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Verify merges verification metadata into an activity. Unlike Update's
// patch semantics, null fields are skipped rather than clearing columns.
func (s *Service) Verify(ctx context.Context, identity shared.Identity, req VerifyActivityRequest) (*Activity, error) {
	if err := shared.Validate(req); err != nil {
		return nil, err
	}
	scope := shared.ScopeFor(identity)
	var updated *Activity

	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		existing, err := repo.Get(ctx, scope, req.ActivityID)
		if err != nil {
			return err
		}
		if err := shared.Authorize(scope, existing); err != nil {
			return err
		}

		updates := map[string]any{}
		if req.VerifiedEvent != nil {
			updates["verified_event"] = *req.VerifiedEvent
		}
		if req.VerificationType != nil {
			updates["verification_type"] = *req.VerificationType
		}
		if req.CallDuration != nil {
			updates["call_duration"] = *req.CallDuration
		}
		if req.GPSVerified != nil {
			updates["gps_verified"] = *req.GPSVerified
		}
		if req.GeoLat != nil {
			updates["geo_lat"] = *req.GeoLat
		}
		if req.GeoLong != nil {
			updates["geo_long"] = *req.GeoLong
		}
		if req.DeviceID != nil {
			updates["device_id"] = *req.DeviceID
		}

		if err := repo.Update(ctx, req.ActivityID, updates); err != nil {
			return err
		}
		updated, err = repo.Get(ctx, scope, req.ActivityID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes an activity; dependent child activities cascade at the
// persistence layer.
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

// SummaryOverview returns the visibility-scoped counts, served from a short
// lived cache with singleflight fan-in so bursts hit the store once.
func (s *Service) SummaryOverview(ctx context.Context, identity shared.Identity) (Summary, error) {
	scope := shared.ScopeFor(identity)
	if s.cache == nil {
		return s.repo.Summary(ctx, scope)
	}

	key := summaryCacheKey(scope)
	if cached, err := s.cache.Get(ctx, key).Bytes(); err == nil {
		var summary Summary
		if err := json.Unmarshal(cached, &summary); err == nil {
			return summary, nil
		}
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		summary, err := s.repo.Summary(ctx, scope)
		if err != nil {
			return Summary{}, err
		}
		if data, err := json.Marshal(summary); err == nil {
			_ = s.cache.Set(ctx, key, data, summaryTTL).Err()
		}
		return summary, nil
	})
	if err != nil {
		return Summary{}, err
	}
	return v.(Summary), nil
}

func summaryCacheKey(scope shared.Scope) string {
	if scope.Admin {
		return fmt.Sprintf("activities:summary:%s:admin", scope.CompanyID)
	}
	return fmt.Sprintf("activities:summary:%s:%s", scope.CompanyID, scope.UserID)
}

// callDurationFromMeta derives whole-second call duration from
// meta.call_start/meta.call_end on Call activities. Best-effort enrichment:
// malformed timestamps leave the duration unset instead of failing the create.
func callDurationFromMeta(activityType string, meta map[string]any) *int {
	if !strings.EqualFold(activityType, "call") || meta == nil {
		return nil
	}
	start, ok1 := meta["call_start"].(string)
	end, ok2 := meta["call_end"].(string)
	if !ok1 || !ok2 || start == "" || end == "" {
		return nil
	}
	t1, err1 := parseTimestamp(start)
	t2, err2 := parseTimestamp(end)
	if err1 != nil || err2 != nil {
		return nil
	}
	duration := int(t2.Sub(t1).Seconds())
	return &duration
}

func parseTimestamp(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05", raw)
}

// patchableKeys maps accepted patch keys to their coercion kind. Protected
// fields and lineage flags are simply not listed and therefore ignored.
var patchableKeys = map[string]string{
	"type":               "string",
	"title":              "string",
	"description":        "string",
	"status":             "string",
	"due_date":           "time",
	"outcome":            "string",
	"next_task":          "string",
	"next_task_date":     "time",
	"priority":           "string",
	"assigned_to":        "uuid",
	"verified_event":     "bool",
	"verification_type":  "string",
	"call_duration":      "int",
	"device_id":          "string",
	"geo_lat":            "float",
	"geo_long":           "float",
	"gps_verified":       "bool",
	"trust_score_impact": "int",
	"source_channel":     "string",
	"meta":               "meta",
}

// buildPatch turns a raw JSON object into typed column updates. Keys outside
// the patchable set are dropped silently; explicit nulls clear the column.
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
		v, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be a string", shared.ErrValidation, key)
		}
		return v, nil
	case "bool":
		v, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be a boolean", shared.ErrValidation, key)
		}
		return v, nil
	case "int":
		v, ok := raw.(float64)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be a number", shared.ErrValidation, key)
		}
		return int(v), nil
	case "float":
		v, ok := raw.(float64)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be a number", shared.ErrValidation, key)
		}
		return v, nil
	case "time":
		str, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be a timestamp string", shared.ErrValidation, key)
		}
		t, err := parseTimestamp(str)
		if err != nil {
			return nil, fmt.Errorf("%w: %s is not a valid timestamp", shared.ErrValidation, key)
		}
		return t, nil
	case "uuid":
		str, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be a uuid string", shared.ErrValidation, key)
		}
		id, err := uuid.Parse(str)
		if err != nil {
			return nil, fmt.Errorf("%w: %s is not a valid uuid", shared.ErrValidation, key)
		}
		return id, nil
	case "meta":
		v, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: meta must be an object", shared.ErrValidation)
		}
		return v, nil
	}
	return nil, fmt.Errorf("%w: unsupported field %s", shared.ErrValidation, key)
}
