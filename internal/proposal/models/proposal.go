package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	dErrors "sams/pkg/domain-errors"
)

// Proposal is the aggregate root for a student proposal.
//
// Invariants:
//   - Status starts at draft and changes only through ApplySubmit/ApplyReview
//   - ProposalNumber is assigned exactly once, before the first store write,
//     and is never regenerated
//   - SubmittedAt is set iff the draft→submitted transition succeeded
//   - ReviewedAt/ReviewedBy/ReviewerComments are set iff a review succeeded
//   - OwnerID is stamped from the creating identity and never reassigned
type Proposal struct {
	ID             int64  `json:"id"`
	ProposalNumber string `json:"proposal_number"`
	OwnerID        int64  `json:"user_id"`

	Title              string          `json:"title"`
	Background         string          `json:"background"`
	Objectives         string          `json:"objectives"`
	TargetAudience     string          `json:"target_audience"`
	ImplementationPlan string          `json:"implementation_plan"`
	Timeline           json.RawMessage `json:"timeline,omitempty"`
	BudgetBreakdown    json.RawMessage `json:"budget_breakdown,omitempty"`
	ExpectedOutcomes   string          `json:"expected_outcomes"`
	RiskAssessment     string          `json:"risk_assessment,omitempty"`
	EvaluationMethod   string          `json:"evaluation_method,omitempty"`

	Status           Status     `json:"status"`
	ReviewerComments string     `json:"reviewer_comments,omitempty"`
	ReviewedBy       *int64     `json:"reviewed_by,omitempty"`
	ReviewedAt       *time.Time `json:"reviewed_at,omitempty"`
	SubmittedAt      *time.Time `json:"submitted_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Draft carries the caller-supplied content of a new proposal. Only presence
// of the required fields is validated; the payload itself is free-form.
type Draft struct {
	Title              string          `json:"title"`
	Background         string          `json:"background"`
	Objectives         string          `json:"objectives"`
	TargetAudience     string          `json:"target_audience"`
	ImplementationPlan string          `json:"implementation_plan"`
	Timeline           json.RawMessage `json:"timeline,omitempty"`
	BudgetBreakdown    json.RawMessage `json:"budget_breakdown,omitempty"`
	ExpectedOutcomes   string          `json:"expected_outcomes"`
	RiskAssessment     string          `json:"risk_assessment,omitempty"`
	EvaluationMethod   string          `json:"evaluation_method,omitempty"`
}

// Patch is the content-only update applied through the generic edit path.
// Lifecycle fields (status, reviewer data, timestamps) are deliberately not
// representable here; they change only through Submit and Review.
type Patch struct {
	Title              *string         `json:"title,omitempty"`
	Background         *string         `json:"background,omitempty"`
	Objectives         *string         `json:"objectives,omitempty"`
	TargetAudience     *string         `json:"target_audience,omitempty"`
	ImplementationPlan *string         `json:"implementation_plan,omitempty"`
	Timeline           json.RawMessage `json:"timeline,omitempty"`
	BudgetBreakdown    json.RawMessage `json:"budget_breakdown,omitempty"`
	ExpectedOutcomes   *string         `json:"expected_outcomes,omitempty"`
	RiskAssessment     *string         `json:"risk_assessment,omitempty"`
	EvaluationMethod   *string         `json:"evaluation_method,omitempty"`
}

// NewProposal constructs a draft proposal owned by ownerID. The proposal
// number is generated here, once, from the request clock.
func NewProposal(ownerID int64, draft Draft, now time.Time) (*Proposal, error) {
	required := map[string]string{
		"title":               draft.Title,
		"background":          draft.Background,
		"objectives":          draft.Objectives,
		"target_audience":     draft.TargetAudience,
		"implementation_plan": draft.ImplementationPlan,
		"expected_outcomes":   draft.ExpectedOutcomes,
	}
	var missing []string
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "missing required fields: "+strings.Join(missing, ", "))
	}

	return &Proposal{
		ProposalNumber:     GenerateProposalNumber(now),
		OwnerID:            ownerID,
		Title:              draft.Title,
		Background:         draft.Background,
		Objectives:         draft.Objectives,
		TargetAudience:     draft.TargetAudience,
		ImplementationPlan: draft.ImplementationPlan,
		Timeline:           draft.Timeline,
		BudgetBreakdown:    draft.BudgetBreakdown,
		ExpectedOutcomes:   draft.ExpectedOutcomes,
		RiskAssessment:     draft.RiskAssessment,
		EvaluationMethod:   draft.EvaluationMethod,
		Status:             StatusDraft,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// GenerateProposalNumber builds a PROP-{year}{month}-{suffix} number. The
// suffix is the trailing six digits of the unix-millisecond clock, which is
// recent-monotonic enough to keep numbers unique in practice; the store's
// unique constraint backstops the remote collision case.
func GenerateProposalNumber(now time.Time) string {
	millis := now.UnixMilli() % 1_000_000
	return fmt.Sprintf("PROP-%d%02d-%06d", now.Year(), int(now.Month()), millis)
}

// CanSubmit checks the draft→submitted transition. Only drafts may be
// submitted; anything else is an invalid transition.
func (p *Proposal) CanSubmit() error {
	if p.Status != StatusDraft {
		return dErrors.New(dErrors.CodeInvalidTransition, "only draft proposals can be submitted")
	}
	return nil
}

// ApplySubmit transitions the proposal to submitted. Call CanSubmit first.
func (p *Proposal) ApplySubmit(now time.Time) {
	p.Status = StatusSubmitted
	p.SubmittedAt = &now
	p.UpdatedAt = now
}

// Submit validates and applies the submission in one call.
func (p *Proposal) Submit(now time.Time) error {
	if err := p.CanSubmit(); err != nil {
		return err
	}
	p.ApplySubmit(now)
	return nil
}

// ApplyReview records a review outcome. Reviews carry no precondition on the
// current status: an admin may re-review an already reviewed proposal.
func (p *Proposal) ApplyReview(outcome Status, comments string, reviewerID int64, now time.Time) error {
	if !outcome.IsReviewOutcome() {
		return dErrors.New(dErrors.CodeBadRequest, "review status must be approved, rejected or revision_required")
	}
	p.Status = outcome
	p.ReviewerComments = comments
	p.ReviewedBy = &reviewerID
	p.ReviewedAt = &now
	p.UpdatedAt = now
	return nil
}

// CanEdit checks whether content edits are allowed. Submitted and
// under-review proposals are frozen until reviewed. Approved and rejected
// proposals stay editable through this path; owners may revise after a
// decision.
func (p *Proposal) CanEdit() error {
	if p.Status == StatusSubmitted || p.Status == StatusUnderReview {
		return dErrors.New(dErrors.CodeEditNotAllowed, "cannot edit a proposal that is submitted or under review")
	}
	return nil
}

// ApplyPatch copies the set fields of patch onto the proposal. Identity,
// ownership and lifecycle fields are untouched by construction.
func (p *Proposal) ApplyPatch(patch Patch, now time.Time) {
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Background != nil {
		p.Background = *patch.Background
	}
	if patch.Objectives != nil {
		p.Objectives = *patch.Objectives
	}
	if patch.TargetAudience != nil {
		p.TargetAudience = *patch.TargetAudience
	}
	if patch.ImplementationPlan != nil {
		p.ImplementationPlan = *patch.ImplementationPlan
	}
	if patch.Timeline != nil {
		p.Timeline = patch.Timeline
	}
	if patch.BudgetBreakdown != nil {
		p.BudgetBreakdown = patch.BudgetBreakdown
	}
	if patch.ExpectedOutcomes != nil {
		p.ExpectedOutcomes = *patch.ExpectedOutcomes
	}
	if patch.RiskAssessment != nil {
		p.RiskAssessment = *patch.RiskAssessment
	}
	if patch.EvaluationMethod != nil {
		p.EvaluationMethod = *patch.EvaluationMethod
	}
	p.UpdatedAt = now
}
