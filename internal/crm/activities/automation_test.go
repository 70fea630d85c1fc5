package activities

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

func TestClassifyOutcome(t *testing.T) {
	cases := []struct {
		outcome string
		want    OutcomeClass
	}{
		{"Follow-Up Needed", OutcomeFollowUp},
		{"No Answer", OutcomeFollowUp},
		{"Busy", OutcomeFollowUp},
		{"Interested", OutcomeInterested},
		{"Closed Won", OutcomeClosed},
		{"Closed Lost", OutcomeClosed},
		{"", OutcomeNone},
		{"Voicemail", OutcomeNone},
		{"interested", OutcomeNone}, // outcomes are case sensitive
	}
	for _, tc := range cases {
		t.Run(tc.outcome, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyOutcome(tc.outcome))
		})
	}
}

func TestPlanNextTaskFollowUp(t *testing.T) {
	completedAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	assignee := uuid.New()
	parent := &Activity{
		ID:         uuid.New(),
		LeadID:     uuid.New(),
		CompanyID:  uuid.New(),
		Type:       "Call",
		Title:      "Intro call",
		Outcome:    strptr("No Answer"),
		AssignedTo: &assignee,
		CreatedBy:  uuid.New(),
	}

	child, ok := PlanNextTask(parent, completedAt)
	require.True(t, ok)
	require.NotNil(t, child)

	assert.Equal(t, "Task", child.Type)
	assert.Equal(t, "Follow-Up Call — Intro call", child.Title)
	assert.Equal(t, StatusPending, child.Status)
	assert.Equal(t, PriorityHigh, child.Priority)
	assert.Equal(t, parent.LeadID, child.LeadID)
	assert.Equal(t, parent.CompanyID, child.CompanyID)
	assert.Equal(t, assignee, *child.AssignedTo)
	assert.Equal(t, parent.CreatedBy, child.CreatedBy)
	assert.True(t, child.AutoGenerated)
	require.NotNil(t, child.ParentActivityID)
	assert.Equal(t, parent.ID, *child.ParentActivityID)
	require.NotNil(t, child.DueDate)
	assert.Equal(t, completedAt.Add(24*time.Hour), *child.DueDate)
	require.NotNil(t, child.SourceChannel)
	assert.Equal(t, "AutoTask", *child.SourceChannel)
	assert.Equal(t, "System generated next task", child.Meta["auto_note"])
}

func TestPlanNextTaskInterested(t *testing.T) {
	completedAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	for _, typ := range []string{"Call", "WhatsApp", "Email", "Visit"} {
		parent := &Activity{
			ID:        uuid.New(),
			LeadID:    uuid.New(),
			CompanyID: uuid.New(),
			Type:      typ,
			Title:     "Demo",
			Outcome:   strptr("Interested"),
			CreatedBy: uuid.New(),
		}
		child, ok := PlanNextTask(parent, completedAt)
		require.True(t, ok, typ)
		assert.Equal(t, "Send Proposal — Demo", child.Title)
		assert.Equal(t, PriorityMedium, child.Priority)
		require.NotNil(t, child.DueDate)
		assert.Equal(t, completedAt.Add(4*time.Hour), *child.DueDate)
		// No assignee on the parent falls back to the creator.
		require.NotNil(t, child.AssignedTo)
		assert.Equal(t, parent.CreatedBy, *child.AssignedTo)
	}
}

func TestPlanNextTaskInterestedUnlistedType(t *testing.T) {
	parent := &Activity{
		ID:        uuid.New(),
		Type:      "Meeting",
		Title:     "Demo",
		Outcome:   strptr("Interested"),
		CreatedBy: uuid.New(),
	}
	child, ok := PlanNextTask(parent, time.Now())
	assert.False(t, ok)
	assert.Nil(t, child)
}

func TestPlanNextTaskNoSpawn(t *testing.T) {
	cases := []*string{
		nil,
		strptr("Closed Won"),
		strptr("Closed Lost"),
		strptr("Something Else"),
		strptr(""),
	}
	for _, outcome := range cases {
		parent := &Activity{ID: uuid.New(), Type: "Call", Outcome: outcome, CreatedBy: uuid.New()}
		child, ok := PlanNextTask(parent, time.Now())
		assert.False(t, ok)
		assert.Nil(t, child)
	}
}
