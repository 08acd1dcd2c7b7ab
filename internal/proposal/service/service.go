// Package service orchestrates proposal operations: it loads records through
// the store, authorizes the caller, runs the lifecycle transition, persists
// the result and emits audit events. All errors leave the service tagged with
// a domain error code.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"sams/internal/audit"
	"sams/internal/guard"
	"sams/internal/identity"
	"sams/internal/platform/metrics"
	"sams/internal/proposal/models"
	"sams/internal/proposal/store"
	dErrors "sams/pkg/domain-errors"
	"sams/pkg/requestcontext"
)

// ListFilter is the caller-facing subset of the store filter. Ownership
// scoping is decided here, never by the caller.
type ListFilter struct {
	Status string
	Search string
	Limit  int
	Offset int
}

// Stats aggregates proposal counts per status. Rejected and
// revision_required have no buckets of their own; they count toward Total
// only.
type Stats struct {
	Total       int64 `json:"total"`
	Draft       int64 `json:"draft"`
	Submitted   int64 `json:"submitted"`
	UnderReview int64 `json:"under_review"`
	Approved    int64 `json:"approved"`
}

type Service struct {
	store   store.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	audit   *audit.Publisher
	tracer  trace.Tracer
}

func New(st store.Store, logger *slog.Logger, m *metrics.Metrics, auditPub *audit.Publisher) (*Service, error) {
	if st == nil {
		return nil, fmt.Errorf("proposal store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:   st,
		logger:  logger,
		metrics: m,
		audit:   auditPub,
		tracer:  otel.Tracer("sams/proposal"),
	}, nil
}

// List returns a page of proposals ordered by creation time, descending.
// Non-admin callers are forcibly narrowed to their own records regardless of
// the supplied filter.
func (s *Service) List(ctx context.Context, caller identity.Identity, filter ListFilter) ([]*models.Proposal, error) {
	ctx, span := s.tracer.Start(ctx, "proposal.List")
	defer span.End()

	sf := store.Filter{
		Search: filter.Search,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}
	if filter.Status != "" {
		status, err := models.ParseStatus(filter.Status)
		if err != nil {
			return nil, err
		}
		sf.Status = status
	}
	if !caller.IsAdmin() {
		sf.OwnerID = caller.SubjectID
	}

	proposals, err := s.store.FindMany(ctx, sf)
	if err != nil {
		return nil, storeFailure(err, "list proposals")
	}
	return proposals, nil
}

// GetByID loads one proposal. Absence surfaces before authorization, so a
// caller can distinguish a missing id from a foreign one; a known trade-off,
// see DESIGN.md.
func (s *Service) GetByID(ctx context.Context, caller identity.Identity, id int64) (*models.Proposal, error) {
	ctx, span := s.tracer.Start(ctx, "proposal.GetByID")
	defer span.End()

	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := guard.Authorize(caller, guard.ActionRead, p.OwnerID); err != nil {
		return nil, err
	}
	return p, nil
}

// GetByNumber is GetByID keyed by the unique proposal number.
func (s *Service) GetByNumber(ctx context.Context, caller identity.Identity, number string) (*models.Proposal, error) {
	ctx, span := s.tracer.Start(ctx, "proposal.GetByNumber")
	defer span.End()

	p, err := s.store.FindByNumber(ctx, number)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, err
		}
		return nil, storeFailure(err, "find proposal by number")
	}
	if err := guard.Authorize(caller, guard.ActionRead, p.OwnerID); err != nil {
		return nil, err
	}
	return p, nil
}

// Create stamps ownership and the proposal number, initializes the draft
// state and persists. The caller can never choose the owner id.
func (s *Service) Create(ctx context.Context, caller identity.Identity, draft models.Draft) (*models.Proposal, error) {
	ctx, span := s.tracer.Start(ctx, "proposal.Create")
	defer span.End()

	if err := guard.Authorize(caller, guard.ActionCreate, 0); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	p, err := models.NewProposal(caller.SubjectID, draft, now)
	if err != nil {
		return nil, err
	}

	created, err := s.store.Create(ctx, p)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeValidation) {
			return nil, err
		}
		return nil, storeFailure(err, "create proposal")
	}

	s.metrics.IncProposalsCreated()
	s.emit(ctx, caller, audit.ActionProposalCreated, created.ID, created.ProposalNumber)
	s.logger.InfoContext(ctx, "proposal created",
		"request_id", requestcontext.RequestID(ctx),
		"proposal_id", created.ID,
		"proposal_number", created.ProposalNumber,
		"owner_id", created.OwnerID,
	)
	return created, nil
}

// Update applies a content-only patch. Submitted and under-review proposals
// are frozen; the lifecycle check decides, the guard only answers ownership.
func (s *Service) Update(ctx context.Context, caller identity.Identity, id int64, patch models.Patch) (*models.Proposal, error) {
	ctx, span := s.tracer.Start(ctx, "proposal.Update")
	defer span.End()

	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := guard.Authorize(caller, guard.ActionUpdate, p.OwnerID); err != nil {
		return nil, err
	}
	if err := p.CanEdit(); err != nil {
		return nil, err
	}

	p.ApplyPatch(patch, requestcontext.Now(ctx))
	updated, err := s.store.Update(ctx, p)
	if err != nil {
		return nil, storeFailure(err, "update proposal")
	}

	s.emit(ctx, caller, audit.ActionProposalUpdated, updated.ID, "")
	return updated, nil
}

// Delete removes a proposal. The lifecycle imposes no precondition here;
// ownership (or the admin role) is the only gate.
func (s *Service) Delete(ctx context.Context, caller identity.Identity, id int64) error {
	ctx, span := s.tracer.Start(ctx, "proposal.Delete")
	defer span.End()

	p, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := guard.Authorize(caller, guard.ActionDelete, p.OwnerID); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return err
		}
		return storeFailure(err, "delete proposal")
	}

	s.emit(ctx, caller, audit.ActionProposalDeleted, id, p.ProposalNumber)
	s.logger.InfoContext(ctx, "proposal deleted",
		"request_id", requestcontext.RequestID(ctx),
		"proposal_id", id,
	)
	return nil
}

// Submit runs the draft→submitted transition.
func (s *Service) Submit(ctx context.Context, caller identity.Identity, id int64) (*models.Proposal, error) {
	ctx, span := s.tracer.Start(ctx, "proposal.Submit")
	defer span.End()

	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := guard.Authorize(caller, guard.ActionSubmit, p.OwnerID); err != nil {
		return nil, err
	}
	if err := p.Submit(requestcontext.Now(ctx)); err != nil {
		return nil, err
	}

	updated, err := s.store.Update(ctx, p)
	if err != nil {
		return nil, storeFailure(err, "submit proposal")
	}

	s.metrics.IncProposalsSubmitted()
	s.emit(ctx, caller, audit.ActionProposalSubmitted, updated.ID, "")
	return updated, nil
}

// Review records an admin review outcome. The role gate fires before the
// record is loaded, so non-admins learn nothing about the id they probed.
func (s *Service) Review(ctx context.Context, caller identity.Identity, id int64, outcome string, comments string) (*models.Proposal, error) {
	ctx, span := s.tracer.Start(ctx, "proposal.Review")
	defer span.End()

	if err := guard.Authorize(caller, guard.ActionReview, 0); err != nil {
		return nil, err
	}
	target, err := models.ParseReviewOutcome(outcome)
	if err != nil {
		return nil, err
	}

	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.ApplyReview(target, comments, caller.SubjectID, requestcontext.Now(ctx)); err != nil {
		return nil, err
	}

	updated, err := s.store.Update(ctx, p)
	if err != nil {
		return nil, storeFailure(err, "review proposal")
	}

	s.metrics.IncProposalsReviewed(string(target))
	s.emit(ctx, caller, audit.ActionProposalReviewed, updated.ID, string(target))
	s.logger.InfoContext(ctx, "proposal reviewed",
		"request_id", requestcontext.RequestID(ctx),
		"proposal_id", updated.ID,
		"outcome", string(target),
		"reviewer_id", caller.SubjectID,
	)
	return updated, nil
}

// GetStats counts proposals per status. Admin gating happens at the route; the
// counts are independent queries, not a snapshot-consistent read.
func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	ctx, span := s.tracer.Start(ctx, "proposal.GetStats")
	defer span.End()

	var stats Stats
	g, gctx := errgroup.WithContext(ctx)
	count := func(dst *int64, status models.Status) {
		g.Go(func() error {
			n, err := s.store.Count(gctx, store.Filter{Status: status})
			if err != nil {
				return err
			}
			*dst = n
			return nil
		})
	}

	g.Go(func() error {
		n, err := s.store.Count(gctx, store.Filter{})
		if err != nil {
			return err
		}
		stats.Total = n
		return nil
	})
	count(&stats.Draft, models.StatusDraft)
	count(&stats.Submitted, models.StatusSubmitted)
	count(&stats.UnderReview, models.StatusUnderReview)
	count(&stats.Approved, models.StatusApproved)

	if err := g.Wait(); err != nil {
		return nil, storeFailure(err, "count proposals")
	}
	return &stats, nil
}

func (s *Service) load(ctx context.Context, id int64) (*models.Proposal, error) {
	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, err
		}
		return nil, storeFailure(err, "find proposal")
	}
	return p, nil
}

func (s *Service) emit(ctx context.Context, caller identity.Identity, action string, recordID int64, detail string) {
	if s.audit == nil {
		return
	}
	s.audit.Emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		ActorID:   caller.SubjectID,
		ActorRole: string(caller.Role),
		Action:    action,
		Record:    "student_proposal",
		RecordID:  recordID,
		Detail:    detail,
	})
}

func storeFailure(err error, op string) error {
	var de *dErrors.Error
	if errors.As(err, &de) && de.Code != dErrors.CodeInternal {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeStoreFailure, op+" failed")
}
