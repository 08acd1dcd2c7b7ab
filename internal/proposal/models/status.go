package models

import (
	dErrors "sams/pkg/domain-errors"
)

// Status is the closed set of proposal lifecycle states.
//
// Usage: construct via ParseStatus at trust boundaries to enforce the
// allowlist; direct casting bypasses validation.
type Status string

const (
	StatusDraft            Status = "draft"
	StatusSubmitted        Status = "submitted"
	StatusUnderReview      Status = "under_review"
	StatusApproved         Status = "approved"
	StatusRejected         Status = "rejected"
	StatusRevisionRequired Status = "revision_required"
)

// validStatuses is the single source of truth for valid proposal statuses.
var validStatuses = map[Status]bool{
	StatusDraft:            true,
	StatusSubmitted:        true,
	StatusUnderReview:      true,
	StatusApproved:         true,
	StatusRejected:         true,
	StatusRevisionRequired: true,
}

// reviewOutcomes are the statuses an admin review may assign.
var reviewOutcomes = map[Status]bool{
	StatusApproved:         true,
	StatusRejected:         true,
	StatusRevisionRequired: true,
}

// ParseStatus constructs a Status from external input.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", dErrors.New(dErrors.CodeBadRequest, "invalid proposal status")
	}
	return st, nil
}

// ParseReviewOutcome constructs a Status from external input, restricted to
// the states a review is allowed to assign.
func ParseReviewOutcome(s string) (Status, error) {
	st := Status(s)
	if !reviewOutcomes[st] {
		return "", dErrors.New(dErrors.CodeBadRequest, "review status must be approved, rejected or revision_required")
	}
	return st, nil
}

// IsValid checks if the status is one of the supported enum values.
func (s Status) IsValid() bool {
	return validStatuses[s]
}

// IsReviewOutcome reports whether the status can be assigned by a review.
func (s Status) IsReviewOutcome() bool {
	return reviewOutcomes[s]
}

func (s Status) String() string { return string(s) }
