package activities

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-crm/meridian/internal/shared"
)

type mockRepository struct {
	activities map[uuid.UUID]*Activity
	leads      map[uuid.UUID]uuid.UUID // lead id -> company id
	created    []*Activity

	summary      Summary
	summaryCalls int

	txError     error
	createError error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		activities: make(map[uuid.UUID]*Activity),
		leads:      make(map[uuid.UUID]uuid.UUID),
	}
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	if m.txError != nil {
		return m.txError
	}
	return fn(ctx, m)
}

func (m *mockRepository) LeadExists(ctx context.Context, scope shared.Scope, leadID uuid.UUID) (bool, error) {
	company, ok := m.leads[leadID]
	return ok && company == scope.CompanyID, nil
}

func (m *mockRepository) Create(ctx context.Context, activity *Activity) error {
	if m.createError != nil {
		return m.createError
	}
	if activity.ID == uuid.Nil {
		activity.ID = uuid.New()
	}
	activity.CreatedAt = time.Now().UTC()
	stored := *activity
	m.activities[activity.ID] = &stored
	m.created = append(m.created, &stored)
	return nil
}

func (m *mockRepository) Get(ctx context.Context, scope shared.Scope, id uuid.UUID) (*Activity, error) {
	a, ok := m.activities[id]
	if !ok || a.CompanyID != scope.CompanyID {
		return nil, shared.ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (m *mockRepository) List(ctx context.Context, scope shared.Scope, filter ListFilter, page shared.Page) ([]Activity, error) {
	result := []Activity{}
	for _, a := range m.activities {
		if a.CompanyID != scope.CompanyID {
			continue
		}
		if !scope.Admin {
			owned := a.CreatedBy == scope.UserID || (a.AssignedTo != nil && *a.AssignedTo == scope.UserID)
			if !owned {
				continue
			}
		}
		if filter.AssignedTo != nil && (a.AssignedTo == nil || *a.AssignedTo != *filter.AssignedTo) {
			continue
		}
		result = append(result, *a)
	}
	return result, nil
}

func (m *mockRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	a, ok := m.activities[id]
	if !ok {
		return shared.ErrNotFound
	}
	for key, raw := range updates {
		switch key {
		case "title":
			a.Title = raw.(string)
		case "status":
			a.Status = Status(raw.(string))
		case "outcome":
			if raw == nil {
				a.Outcome = nil
			} else {
				v := raw.(string)
				a.Outcome = &v
			}
		case "completed_at":
			v := raw.(time.Time)
			a.CompletedAt = &v
		case "verified_event":
			a.VerifiedEvent = raw.(bool)
		case "verification_type":
			v := raw.(string)
			a.VerificationType = &v
		case "call_duration":
			v := raw.(int)
			a.CallDuration = &v
		case "gps_verified":
			a.GPSVerified = raw.(bool)
		case "geo_lat":
			v := raw.(float64)
			a.GeoLat = &v
		case "geo_long":
			v := raw.(float64)
			a.GeoLong = &v
		case "device_id":
			v := raw.(string)
			a.DeviceID = &v
		}
	}
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.activities[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.activities, id)
	return nil
}

func (m *mockRepository) Summary(ctx context.Context, scope shared.Scope) (Summary, error) {
	m.summaryCalls++
	return m.summary, nil
}

func adminIdentity() shared.Identity {
	return shared.Identity{UserID: uuid.New(), CompanyID: uuid.New(), Role: shared.RoleAdmin, IsActive: true}
}

func memberIdentity(companyID uuid.UUID) shared.Identity {
	return shared.Identity{UserID: uuid.New(), CompanyID: companyID, Role: "sales", IsActive: true}
}

func TestCreateRequiresKnownLead(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	identity := adminIdentity()

	_, err := svc.Create(context.Background(), identity, CreateActivityRequest{
		LeadID: uuid.New(),
		Type:   "Call",
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCreateRejectsCrossTenantLead(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	identity := adminIdentity()

	leadID := uuid.New()
	repo.leads[leadID] = uuid.New() // different company

	_, err := svc.Create(context.Background(), identity, CreateActivityRequest{
		LeadID: leadID,
		Type:   "Call",
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCreateAppliesDefaults(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	identity := adminIdentity()

	leadID := uuid.New()
	repo.leads[leadID] = identity.CompanyID

	activity, err := svc.Create(context.Background(), identity, CreateActivityRequest{
		LeadID: leadID,
		Type:   "Visit",
		Title:  "Site visit",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusPending, activity.Status)
	assert.Equal(t, PriorityMedium, activity.Priority)
	require.NotNil(t, activity.AssignedTo)
	assert.Equal(t, identity.UserID, *activity.AssignedTo)
	assert.Equal(t, identity.UserID, activity.CreatedBy)
	assert.Equal(t, identity.CompanyID, activity.CompanyID)
	assert.False(t, activity.AutoGenerated)
}

func TestCreateDerivesCallDuration(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	identity := adminIdentity()

	leadID := uuid.New()
	repo.leads[leadID] = identity.CompanyID

	activity, err := svc.Create(context.Background(), identity, CreateActivityRequest{
		LeadID: leadID,
		Type:   "Call",
		Meta: map[string]any{
			"call_start": "2026-03-10T09:00:00Z",
			"call_end":   "2026-03-10T09:02:30Z",
		},
	})
	require.NoError(t, err)
	require.NotNil(t, activity.CallDuration)
	assert.Equal(t, 150, *activity.CallDuration)
}

func TestCreateIgnoresMalformedCallTimestamps(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	identity := adminIdentity()

	leadID := uuid.New()
	repo.leads[leadID] = identity.CompanyID

	activity, err := svc.Create(context.Background(), identity, CreateActivityRequest{
		LeadID: leadID,
		Type:   "Call",
		Meta: map[string]any{
			"call_start": "not-a-timestamp",
			"call_end":   "2026-03-10T09:02:30Z",
		},
	})
	require.NoError(t, err)
	assert.Nil(t, activity.CallDuration)
}

func TestCreateSkipsCallDurationForNonCalls(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	identity := adminIdentity()

	leadID := uuid.New()
	repo.leads[leadID] = identity.CompanyID

	activity, err := svc.Create(context.Background(), identity, CreateActivityRequest{
		LeadID: leadID,
		Type:   "Visit",
		Meta: map[string]any{
			"call_start": "2026-03-10T09:00:00Z",
			"call_end":   "2026-03-10T09:02:30Z",
		},
	})
	require.NoError(t, err)
	assert.Nil(t, activity.CallDuration)
}

func seedActivity(repo *mockRepository, identity shared.Identity) *Activity {
	a := &Activity{
		ID:        uuid.New(),
		LeadID:    uuid.New(),
		CompanyID: identity.CompanyID,
		Type:      "Call",
		Title:     "Intro call",
		Status:    StatusPending,
		Priority:  PriorityMedium,
		CreatedBy: identity.UserID,
		CreatedAt: time.Now().UTC(),
	}
	repo.activities[a.ID] = a
	return a
}

func TestUpdateCompletionSpawnsFollowUp(t *testing.T) {
	repo := newMockRepository()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := NewService(repo, nil, WithNow(func() time.Time { return now }))
	identity := adminIdentity()
	parent := seedActivity(repo, identity)

	updated, err := svc.Update(context.Background(), identity, parent.ID, map[string]any{
		"status":  "Completed",
		"outcome": "Follow-Up Needed",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, updated.Status)
	require.NotNil(t, updated.CompletedAt)
	assert.Equal(t, now, *updated.CompletedAt)

	require.Len(t, repo.created, 1)
	child := repo.created[0]
	assert.Equal(t, "Follow-Up Call — Intro call", child.Title)
	assert.True(t, child.AutoGenerated)
	require.NotNil(t, child.ParentActivityID)
	assert.Equal(t, parent.ID, *child.ParentActivityID)
	require.NotNil(t, child.DueDate)
	assert.Equal(t, now.Add(24*time.Hour), *child.DueDate)
}

func TestUpdateRecompletionDoesNotRespawn(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	identity := adminIdentity()
	parent := seedActivity(repo, identity)

	_, err := svc.Update(context.Background(), identity, parent.ID, map[string]any{
		"status":  "Completed",
		"outcome": "Follow-Up Needed",
	})
	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	firstCompleted := *repo.activities[parent.ID].CompletedAt

	// Re-saving the already completed activity neither respawns nor moves
	// the completion timestamp.
	updated, err := svc.Update(context.Background(), identity, parent.ID, map[string]any{
		"status": "Completed",
		"title":  "Intro call (edited)",
	})
	require.NoError(t, err)
	assert.Len(t, repo.created, 1)
	require.NotNil(t, updated.CompletedAt)
	assert.Equal(t, firstCompleted, *updated.CompletedAt)
}

func TestUpdateCancelledActivityStaysTerminal(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	identity := adminIdentity()
	parent := seedActivity(repo, identity)

	_, err := svc.Update(context.Background(), identity, parent.ID, map[string]any{
		"status": "Cancelled",
	})
	require.NoError(t, err)

	// A cancelled activity cannot be reopened or flipped to completed, and
	// the follow-up engine never fires for it.
	_, err = svc.Update(context.Background(), identity, parent.ID, map[string]any{
		"status":  "Completed",
		"outcome": "Follow-Up Needed",
	})
	assert.ErrorIs(t, err, shared.ErrValidation)
	assert.Empty(t, repo.created)

	_, err = svc.Update(context.Background(), identity, parent.ID, map[string]any{
		"status": "In Progress",
	})
	assert.ErrorIs(t, err, shared.ErrValidation)

	// Patching other fields on the cancelled row still works.
	updated, err := svc.Update(context.Background(), identity, parent.ID, map[string]any{
		"title": "Intro call (archived)",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, updated.Status)
	assert.Nil(t, updated.CompletedAt)
}

func TestUpdateClosedOutcomeDoesNotSpawn(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	identity := adminIdentity()
	parent := seedActivity(repo, identity)

	_, err := svc.Update(context.Background(), identity, parent.ID, map[string]any{
		"status":  "Completed",
		"outcome": "Closed Won",
	})
	require.NoError(t, err)
	assert.Empty(t, repo.created)
}

func TestUpdateDropsProtectedFields(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	identity := adminIdentity()
	parent := seedActivity(repo, identity)

	updated, err := svc.Update(context.Background(), identity, parent.ID, map[string]any{
		"company_id": uuid.New().String(),
		"created_by": uuid.New().String(),
		"id":         uuid.New().String(),
		"title":      "Renamed",
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, identity.CompanyID, updated.CompanyID)
	assert.Equal(t, identity.UserID, updated.CreatedBy)
	assert.Equal(t, parent.ID, updated.ID)
}

func TestUpdateRejectsBadPatchTypes(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	identity := adminIdentity()
	parent := seedActivity(repo, identity)

	_, err := svc.Update(context.Background(), identity, parent.ID, map[string]any{
		"call_duration": "ninety",
	})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestGetEnforcesOwnership(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	admin := adminIdentity()
	owner := seedActivity(repo, admin)

	// A different member of the same company is neither creator nor
	// assignee.
	stranger := memberIdentity(admin.CompanyID)
	_, err := svc.Get(context.Background(), stranger, owner.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	// A member of another company sees nothing at all.
	outsider := adminIdentity()
	_, err = svc.Get(context.Background(), outsider, owner.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListDropsForeignAssigneeFilter(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	company := uuid.New()
	member := memberIdentity(company)

	mine := &Activity{
		ID: uuid.New(), LeadID: uuid.New(), CompanyID: company,
		Type: "Call", Status: StatusPending, CreatedBy: member.UserID,
	}
	repo.activities[mine.ID] = mine

	other := uuid.New()
	result, err := svc.List(context.Background(), member, ListFilter{AssignedTo: &other}, 0, 0)
	require.NoError(t, err)
	// The foreign assignee filter is ignored, so the member still sees
	// their own rows.
	assert.Len(t, result, 1)
}

func TestVerifyMergesOnlyProvidedFields(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	identity := adminIdentity()
	activity := seedActivity(repo, identity)

	lat := 13.7563
	dur := 95
	verified := true
	vtype := "gps"
	updated, err := svc.Verify(context.Background(), identity, VerifyActivityRequest{
		ActivityID:       activity.ID,
		VerifiedEvent:    &verified,
		VerificationType: &vtype,
		CallDuration:     &dur,
		GeoLat:           &lat,
	})
	require.NoError(t, err)

	assert.True(t, updated.VerifiedEvent)
	require.NotNil(t, updated.VerificationType)
	assert.Equal(t, "gps", *updated.VerificationType)
	require.NotNil(t, updated.CallDuration)
	assert.Equal(t, 95, *updated.CallDuration)
	require.NotNil(t, updated.GeoLat)
	assert.Equal(t, lat, *updated.GeoLat)
	// Omitted fields stay untouched.
	assert.Nil(t, updated.GeoLong)
	assert.Nil(t, updated.DeviceID)
	assert.False(t, updated.GPSVerified)
}

func TestVerifyRejectsUnknownVerificationType(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	identity := adminIdentity()
	activity := seedActivity(repo, identity)

	vtype := "carrier_pigeon"
	_, err := svc.Verify(context.Background(), identity, VerifyActivityRequest{
		ActivityID:       activity.ID,
		VerificationType: &vtype,
	})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestDeleteEnforcesOwnership(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	admin := adminIdentity()
	activity := seedActivity(repo, admin)

	stranger := memberIdentity(admin.CompanyID)
	err := svc.Delete(context.Background(), stranger, activity.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	require.NoError(t, svc.Delete(context.Background(), admin, activity.ID))
	_, err = svc.Get(context.Background(), admin, activity.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSummaryOverviewCaches(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newMockRepository()
	repo.summary = Summary{Total: 7, Verified: 2, Pending: 3, Completed: 2}
	svc := NewService(repo, client)
	identity := adminIdentity()

	first, err := svc.SummaryOverview(context.Background(), identity)
	require.NoError(t, err)
	assert.Equal(t, repo.summary, first)
	assert.Equal(t, 1, repo.summaryCalls)

	second, err := svc.SummaryOverview(context.Background(), identity)
	require.NoError(t, err)
	assert.Equal(t, repo.summary, second)
	// Served from the cache, the store is not hit again.
	assert.Equal(t, 1, repo.summaryCalls)
}

func TestSummaryOverviewScopesCachePerActor(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newMockRepository()
	svc := NewService(repo, client)

	company := uuid.New()
	admin := shared.Identity{UserID: uuid.New(), CompanyID: company, Role: shared.RoleAdmin, IsActive: true}
	member := memberIdentity(company)

	_, err := svc.SummaryOverview(context.Background(), admin)
	require.NoError(t, err)
	_, err = svc.SummaryOverview(context.Background(), member)
	require.NoError(t, err)
	// Admin and member views must not share a cache entry.
	assert.Equal(t, 2, repo.summaryCalls)
}

func TestUpdatePropagatesTxError(t *testing.T) {
	repo := newMockRepository()
	repo.txError = errors.New("connection lost")
	svc := NewService(repo, nil)
	identity := adminIdentity()

	_, err := svc.Update(context.Background(), identity, uuid.New(), map[string]any{"title": "x"})
	assert.ErrorContains(t, err, "connection lost")
}
