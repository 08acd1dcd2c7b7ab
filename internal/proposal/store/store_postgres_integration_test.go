//go:build integration

package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"sams/internal/proposal/models"
	dErrors "sams/pkg/domain-errors"
	"sams/pkg/testutil/containers"
)

// =============================================================================
// PostgreSQL Proposal Store Integration Suite
// =============================================================================
// Runs against a throwaway container; exercises the SQL paths the in-memory
// store cannot stand in for: null handling, unique constraints, ILIKE search
// and ordering.

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *PostgresStore
	ctx   context.Context
	seq   int
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = NewPostgres(s.pg.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateTables(s.ctx, "student_proposals"))
}

func (s *PostgresStoreSuite) seed(ownerID int64, title string, createdAt time.Time) *models.Proposal {
	s.seq++
	p := &models.Proposal{
		ProposalNumber:     fmt.Sprintf("PROP-202603-%06d", s.seq),
		OwnerID:            ownerID,
		Title:              title,
		Background:         "background",
		Objectives:         "objectives",
		TargetAudience:     "students",
		ImplementationPlan: "plan",
		ExpectedOutcomes:   "outcomes",
		Status:             models.StatusDraft,
		CreatedAt:          createdAt,
		UpdatedAt:          createdAt,
	}
	created, err := s.store.Create(s.ctx, p)
	s.Require().NoError(err)
	return created
}

func (s *PostgresStoreSuite) TestCreateAndFind() {
	base := time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)

	s.Run("round trip preserves content and nulls", func() {
		p := &models.Proposal{
			ProposalNumber:     "PROP-202603-111111",
			OwnerID:            7,
			Title:              "Round trip",
			Background:         "background",
			Objectives:         "objectives",
			TargetAudience:     "students",
			ImplementationPlan: "plan",
			Timeline:           []byte(`{"phase1":"week 1"}`),
			ExpectedOutcomes:   "outcomes",
			Status:             models.StatusDraft,
			CreatedAt:          base,
			UpdatedAt:          base,
		}
		created, err := s.store.Create(s.ctx, p)
		s.Require().NoError(err)
		s.NotZero(created.ID)

		got, err := s.store.FindByID(s.ctx, created.ID)
		s.Require().NoError(err)
		s.Equal("Round trip", got.Title)
		s.JSONEq(`{"phase1":"week 1"}`, string(got.Timeline))
		s.Nil(got.BudgetBreakdown)
		s.Empty(got.RiskAssessment)
		s.Nil(got.ReviewedBy)
		s.Nil(got.SubmittedAt)

		byNumber, err := s.store.FindByNumber(s.ctx, "PROP-202603-111111")
		s.Require().NoError(err)
		s.Equal(created.ID, byNumber.ID)
	})

	s.Run("duplicate number hits the unique constraint", func() {
		p := s.seed(1, "Original", base)
		dup := *p
		dup.ID = 0
		_, err := s.store.Create(s.ctx, &dup)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("missing rows map to not found", func() {
		_, err := s.store.FindByID(s.ctx, 99999)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		_, err = s.store.FindByNumber(s.ctx, "PROP-000000-000000")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *PostgresStoreSuite) TestFindMany() {
	base := time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)
	oldest := s.seed(1, "Robotics Club Funding", base)
	middle := s.seed(2, "Chess Tournament", base.Add(time.Minute))
	newest := s.seed(1, "Coding Workshop", base.Add(2*time.Minute))

	s.Run("orders newest first", func() {
		got, err := s.store.FindMany(s.ctx, Filter{})
		s.Require().NoError(err)
		s.Require().Len(got, 3)
		s.Equal(newest.ID, got[0].ID)
		s.Equal(oldest.ID, got[2].ID)
	})

	s.Run("owner filter", func() {
		got, err := s.store.FindMany(s.ctx, Filter{OwnerID: 2})
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal(middle.ID, got[0].ID)
	})

	s.Run("search is case-insensitive", func() {
		got, err := s.store.FindMany(s.ctx, Filter{Search: "CODING"})
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal(newest.ID, got[0].ID)
	})

	s.Run("status and owner filters compose", func() {
		loaded, err := s.store.FindByID(s.ctx, oldest.ID)
		s.Require().NoError(err)
		s.Require().NoError(loaded.Submit(base.Add(time.Hour)))
		_, err = s.store.Update(s.ctx, loaded)
		s.Require().NoError(err)

		got, err := s.store.FindMany(s.ctx, Filter{Status: models.StatusSubmitted, OwnerID: 1})
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal(oldest.ID, got[0].ID)

		got, err = s.store.FindMany(s.ctx, Filter{Status: models.StatusSubmitted, OwnerID: 2})
		s.Require().NoError(err)
		s.Empty(got)
	})

	s.Run("pagination", func() {
		got, err := s.store.FindMany(s.ctx, Filter{Limit: 2})
		s.Require().NoError(err)
		s.Len(got, 2)

		got, err = s.store.FindMany(s.ctx, Filter{Limit: 2, Offset: 2})
		s.Require().NoError(err)
		s.Len(got, 1)
	})
}

func (s *PostgresStoreSuite) TestUpdate() {
	base := time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)

	s.Run("persists a review", func() {
		p := s.seed(1, "Reviewed", base)
		reviewedAt := base.Add(time.Hour)
		s.Require().NoError(p.ApplyReview(models.StatusApproved, "well scoped", 3, reviewedAt))

		updated, err := s.store.Update(s.ctx, p)
		s.Require().NoError(err)
		s.Equal(models.StatusApproved, updated.Status)
		s.Equal("well scoped", updated.ReviewerComments)
		s.Require().NotNil(updated.ReviewedBy)
		s.Equal(int64(3), *updated.ReviewedBy)
		s.Require().NotNil(updated.ReviewedAt)
		s.WithinDuration(reviewedAt, *updated.ReviewedAt, time.Second)
	})

	s.Run("missing row is not found", func() {
		_, err := s.store.Update(s.ctx, &models.Proposal{ID: 99999, Status: models.StatusDraft})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *PostgresStoreSuite) TestDeleteAndCount() {
	base := time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)
	p := s.seed(1, "Counted", base)
	s.seed(2, "Kept", base.Add(time.Second))

	n, err := s.store.Count(s.ctx, Filter{})
	s.Require().NoError(err)
	s.Equal(int64(2), n)

	s.Require().NoError(s.store.Delete(s.ctx, p.ID))
	s.True(dErrors.HasCode(s.store.Delete(s.ctx, p.ID), dErrors.CodeNotFound))

	n, err = s.store.Count(s.ctx, Filter{})
	s.Require().NoError(err)
	s.Equal(int64(1), n)

	n, err = s.store.Count(s.ctx, Filter{OwnerID: 2})
	s.Require().NoError(err)
	s.Equal(int64(1), n)
}
