// Package activity implements the student activity record module. It is the
// simpler sibling of the proposal module: activities carry a single boolean
// approval gate instead of a multi-stage review.
package activity

import (
	"strings"
	"time"

	dErrors "sams/pkg/domain-errors"
)

// Status is the closed set of activity states.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
)

// Activity is a student-submitted activity record.
type Activity struct {
	ID           int64      `json:"id"`
	OwnerID      int64      `json:"user_id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Category     string     `json:"category,omitempty"`
	Location     string     `json:"location,omitempty"`
	ActivityDate *time.Time `json:"activity_date,omitempty"`
	Status       Status     `json:"status"`
	ApprovedBy   *int64     `json:"approved_by,omitempty"`
	ApprovedAt   *time.Time `json:"approved_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Draft carries the caller-supplied content of a new activity.
type Draft struct {
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Category     string     `json:"category,omitempty"`
	Location     string     `json:"location,omitempty"`
	ActivityDate *time.Time `json:"activity_date,omitempty"`
}

// Patch is the content-only update. Approval state changes only through
// Approve.
type Patch struct {
	Name         *string    `json:"name,omitempty"`
	Description  *string    `json:"description,omitempty"`
	Category     *string    `json:"category,omitempty"`
	Location     *string    `json:"location,omitempty"`
	ActivityDate *time.Time `json:"activity_date,omitempty"`
}

// NewActivity constructs a pending activity owned by ownerID.
func NewActivity(ownerID int64, draft Draft, now time.Time) (*Activity, error) {
	if strings.TrimSpace(draft.Name) == "" || strings.TrimSpace(draft.Description) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "name and description are required")
	}
	return &Activity{
		OwnerID:      ownerID,
		Name:         draft.Name,
		Description:  draft.Description,
		Category:     draft.Category,
		Location:     draft.Location,
		ActivityDate: draft.ActivityDate,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ApplyApproval marks the activity approved. Approving an already approved
// activity just refreshes the approver and timestamp.
func (a *Activity) ApplyApproval(approverID int64, now time.Time) {
	a.Status = StatusApproved
	a.ApprovedBy = &approverID
	a.ApprovedAt = &now
	a.UpdatedAt = now
}

// ApplyPatch copies the set fields of patch onto the activity.
func (a *Activity) ApplyPatch(patch Patch, now time.Time) {
	if patch.Name != nil {
		a.Name = *patch.Name
	}
	if patch.Description != nil {
		a.Description = *patch.Description
	}
	if patch.Category != nil {
		a.Category = *patch.Category
	}
	if patch.Location != nil {
		a.Location = *patch.Location
	}
	if patch.ActivityDate != nil {
		a.ActivityDate = patch.ActivityDate
	}
	a.UpdatedAt = now
}
