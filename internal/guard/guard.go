// Package guard holds the pure authorization decision for proposal and
// activity records. It answers "may this caller perform this action on a
// record owned by that subject" and nothing else; whether the action makes
// sense for the record's current state is the lifecycle's concern.
package guard

import (
	"sams/internal/identity"
	dErrors "sams/pkg/domain-errors"
)

// Action is an operation subject to authorization.
type Action string

const (
	ActionRead    Action = "read"
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionSubmit  Action = "submit"
	ActionReview  Action = "review"
	ActionApprove Action = "approve"
	ActionListAll Action = "list_all"
	ActionStats   Action = "stats"
)

// adminOnly actions are never granted to the user role, ownership aside.
var adminOnly = map[Action]bool{
	ActionReview:  true,
	ActionApprove: true,
	ActionListAll: true,
	ActionStats:   true,
}

// Authorize decides whether the caller may perform action on a record owned
// by ownerID. Pass ownerID = 0 for actions without a target record (create).
// The decision is pure; denial is a tagged forbidden error.
//
// Admins are permitted everything. Users are permitted create, and
// record-scoped actions only on their own records. Review, approval and the
// administrative list/stats views always require the admin role, even for
// record owners.
func Authorize(id identity.Identity, action Action, ownerID int64) error {
	if id.IsAdmin() {
		return nil
	}
	if adminOnly[action] {
		return dErrors.New(dErrors.CodeForbidden, "requires admin privileges")
	}
	if action == ActionCreate {
		return nil
	}
	if ownerID != id.SubjectID {
		return dErrors.New(dErrors.CodeForbidden, "not authorized to "+string(action)+" this record")
	}
	return nil
}
