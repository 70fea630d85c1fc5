package activities

import (
	"fmt"
	"time"
)

// OutcomeClass partitions recorded outcomes for follow-up automation.
type OutcomeClass int

const (
	// OutcomeNone covers unrecognized outcomes; the engine is conservative
	// and never spawns for them.
	OutcomeNone OutcomeClass = iota
	// OutcomeFollowUp schedules a next-day follow-up call.
	OutcomeFollowUp
	// OutcomeInterested schedules a proposal within hours, gated on the
	// parent activity type.
	OutcomeInterested
	// OutcomeClosed ends the chain.
	OutcomeClosed
)

const (
	followUpTitle  = "Follow-Up Call"
	proposalTitle  = "Send Proposal"
	autoTaskSource = "AutoTask"

	followUpDue = 24 * time.Hour
	proposalDue = 4 * time.Hour
)

// interestedTypes are the activity types for which an "Interested" outcome
// warrants a proposal task.
var interestedTypes = map[string]struct{}{
	"Call":     {},
	"WhatsApp": {},
	"Email":    {},
	"Visit":    {},
}

// ClassifyOutcome maps a recorded outcome onto its automation class.
func ClassifyOutcome(outcome string) OutcomeClass {
	switch outcome {
	case "Follow-Up Needed", "No Answer", "Busy":
		return OutcomeFollowUp
	case "Interested":
		return OutcomeInterested
	case "Closed Won", "Closed Lost":
		return OutcomeClosed
	default:
		return OutcomeNone
	}
}

// PlanNextTask decides whether completing parent spawns a successor activity.
// It is a pure function: the caller persists the returned activity inside the
// same transaction as the completion update. Returns false when no successor
// is warranted.
func PlanNextTask(parent *Activity, completedAt time.Time) (*Activity, bool) {
	if parent.Outcome == nil {
		return nil, false
	}
	switch ClassifyOutcome(*parent.Outcome) {
	case OutcomeFollowUp:
		return spawn(parent, followUpTitle, completedAt.Add(followUpDue), PriorityHigh), true
	case OutcomeInterested:
		if _, ok := interestedTypes[parent.Type]; !ok {
			return nil, false
		}
		return spawn(parent, proposalTitle, completedAt.Add(proposalDue), PriorityMedium), true
	case OutcomeClosed, OutcomeNone:
		return nil, false
	}
	return nil, false
}

func spawn(parent *Activity, title string, due time.Time, priority Priority) *Activity {
	assignee := parent.AssignedTo
	if assignee == nil {
		creator := parent.CreatedBy
		assignee = &creator
	}
	description := fmt.Sprintf("Auto-created from activity %s with outcome '%s'.", parent.ID, *parent.Outcome)
	source := autoTaskSource
	return &Activity{
		LeadID:           parent.LeadID,
		CompanyID:        parent.CompanyID,
		Type:             "Task",
		Title:            fmt.Sprintf("%s — %s", title, parent.Title),
		Description:      &description,
		Status:           StatusPending,
		DueDate:          &due,
		Priority:         priority,
		AssignedTo:       assignee,
		CreatedBy:        parent.CreatedBy,
		AutoGenerated:    true,
		ParentActivityID: &parent.ID,
		SourceChannel:    &source,
		Meta:             map[string]any{"auto_note": "System generated next task"},
	}
}
