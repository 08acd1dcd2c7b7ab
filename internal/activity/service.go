package activity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"sams/internal/audit"
	"sams/internal/guard"
	"sams/internal/identity"
	"sams/internal/platform/metrics"
	dErrors "sams/pkg/domain-errors"
	"sams/pkg/requestcontext"
)

// ListFilter is the caller-facing subset of the store filter.
type ListFilter struct {
	Status string
	Search string
	Limit  int
	Offset int
}

// Stats aggregates activity counts.
type Stats struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
}

// Service orchestrates activity operations. Same shape as the proposal
// service, minus the multi-stage review: approval is a single admin action.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	audit   *audit.Publisher
}

func NewService(st Store, logger *slog.Logger, m *metrics.Metrics, auditPub *audit.Publisher) (*Service, error) {
	if st == nil {
		return nil, fmt.Errorf("activity store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, logger: logger, metrics: m, audit: auditPub}, nil
}

// List returns a page of activities; non-admins only ever see their own.
func (s *Service) List(ctx context.Context, caller identity.Identity, filter ListFilter) ([]*Activity, error) {
	sf := Filter{
		Search: filter.Search,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}
	if filter.Status != "" {
		status := Status(filter.Status)
		if status != StatusPending && status != StatusApproved {
			return nil, dErrors.New(dErrors.CodeBadRequest, "invalid activity status")
		}
		sf.Status = status
	}
	if !caller.IsAdmin() {
		sf.OwnerID = caller.SubjectID
	}

	activities, err := s.store.FindMany(ctx, sf)
	if err != nil {
		return nil, wrapStore(err, "list activities")
	}
	return activities, nil
}

func (s *Service) GetByID(ctx context.Context, caller identity.Identity, id int64) (*Activity, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := guard.Authorize(caller, guard.ActionRead, a.OwnerID); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Create(ctx context.Context, caller identity.Identity, draft Draft) (*Activity, error) {
	if err := guard.Authorize(caller, guard.ActionCreate, 0); err != nil {
		return nil, err
	}

	a, err := NewActivity(caller.SubjectID, draft, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	created, err := s.store.Create(ctx, a)
	if err != nil {
		return nil, wrapStore(err, "create activity")
	}

	s.emit(ctx, caller, audit.ActionActivityCreated, created.ID)
	return created, nil
}

func (s *Service) Update(ctx context.Context, caller identity.Identity, id int64, patch Patch) (*Activity, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := guard.Authorize(caller, guard.ActionUpdate, a.OwnerID); err != nil {
		return nil, err
	}

	a.ApplyPatch(patch, requestcontext.Now(ctx))
	updated, err := s.store.Update(ctx, a)
	if err != nil {
		return nil, wrapStore(err, "update activity")
	}

	s.emit(ctx, caller, audit.ActionActivityUpdated, updated.ID)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, caller identity.Identity, id int64) error {
	a, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := guard.Authorize(caller, guard.ActionDelete, a.OwnerID); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return err
		}
		return wrapStore(err, "delete activity")
	}

	s.emit(ctx, caller, audit.ActionActivityDeleted, id)
	return nil
}

// Approve marks the activity approved. Admin-only; the role gate fires
// before the record is loaded.
func (s *Service) Approve(ctx context.Context, caller identity.Identity, id int64) (*Activity, error) {
	if err := guard.Authorize(caller, guard.ActionApprove, 0); err != nil {
		return nil, err
	}

	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	a.ApplyApproval(caller.SubjectID, requestcontext.Now(ctx))

	updated, err := s.store.Update(ctx, a)
	if err != nil {
		return nil, wrapStore(err, "approve activity")
	}

	s.metrics.IncActivitiesApproved()
	s.emit(ctx, caller, audit.ActionActivityApproved, updated.ID)
	s.logger.InfoContext(ctx, "activity approved",
		"request_id", requestcontext.RequestID(ctx),
		"activity_id", updated.ID,
		"approver_id", caller.SubjectID,
	)
	return updated, nil
}

// GetStats counts activities per status; independent queries, not a
// snapshot-consistent read.
func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	var stats Stats
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.store.Count(gctx, Filter{})
		stats.Total = n
		return err
	})
	g.Go(func() error {
		n, err := s.store.Count(gctx, Filter{Status: StatusPending})
		stats.Pending = n
		return err
	})
	g.Go(func() error {
		n, err := s.store.Count(gctx, Filter{Status: StatusApproved})
		stats.Approved = n
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, wrapStore(err, "count activities")
	}
	return &stats, nil
}

func (s *Service) load(ctx context.Context, id int64) (*Activity, error) {
	a, err := s.store.FindByID(ctx, id)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, err
		}
		return nil, wrapStore(err, "find activity")
	}
	return a, nil
}

func (s *Service) emit(ctx context.Context, caller identity.Identity, action string, recordID int64) {
	if s.audit == nil {
		return
	}
	s.audit.Emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		ActorID:   caller.SubjectID,
		ActorRole: string(caller.Role),
		Action:    action,
		Record:    "student_activity",
		RecordID:  recordID,
	})
}

func wrapStore(err error, op string) error {
	var de *dErrors.Error
	if errors.As(err, &de) && de.Code != dErrors.CodeInternal {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeStoreFailure, op+" failed")
}
