package audit

import "time"

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	ActorID   int64     `json:"actor_id"`
	ActorRole string    `json:"actor_role"`
	Action    string    `json:"action"`
	Record    string    `json:"record"`
	RecordID  int64     `json:"record_id"`
	Detail    string    `json:"detail,omitempty"`
}

// Actions recorded for proposal and activity records.
const (
	ActionProposalCreated   = "proposal.created"
	ActionProposalUpdated   = "proposal.updated"
	ActionProposalSubmitted = "proposal.submitted"
	ActionProposalReviewed  = "proposal.reviewed"
	ActionProposalDeleted   = "proposal.deleted"
	ActionActivityCreated   = "activity.created"
	ActionActivityUpdated   = "activity.updated"
	ActionActivityApproved  = "activity.approved"
	ActionActivityDeleted   = "activity.deleted"
)
