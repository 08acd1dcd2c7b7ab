package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"sams/internal/proposal/models"
)

// PostgresStore persists proposals in PostgreSQL. The store is pure I/O;
// lifecycle and authorization decisions belong in the service.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const proposalColumns = `
	id, proposal_number, user_id, title, background, objectives,
	target_audience, implementation_plan, timeline, budget_breakdown,
	expected_outcomes, risk_assessment, evaluation_method, status,
	reviewer_comments, reviewed_by, reviewed_at, submitted_at,
	created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, p *models.Proposal) (*models.Proposal, error) {
	query := `
		INSERT INTO student_proposals (
			proposal_number, user_id, title, background, objectives,
			target_audience, implementation_plan, timeline, budget_breakdown,
			expected_outcomes, risk_assessment, evaluation_method, status,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING ` + proposalColumns
	row := s.db.QueryRowContext(ctx, query,
		p.ProposalNumber, p.OwnerID, p.Title, p.Background, p.Objectives,
		p.TargetAudience, p.ImplementationPlan, nullJSON(p.Timeline), nullJSON(p.BudgetBreakdown),
		p.ExpectedOutcomes, nullString(p.RiskAssessment), nullString(p.EvaluationMethod), string(p.Status),
		p.CreatedAt, p.UpdatedAt,
	)
	created, err := scanProposal(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrDuplicateNumber
		}
		return nil, fmt.Errorf("create proposal: %w", err)
	}
	return created, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*models.Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM student_proposals WHERE id = $1`
	p, err := scanProposal(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find proposal by id: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) FindByNumber(ctx context.Context, number string) (*models.Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM student_proposals WHERE proposal_number = $1`
	p, err := scanProposal(s.db.QueryRowContext(ctx, query, number))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find proposal by number: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) FindMany(ctx context.Context, filter Filter) ([]*models.Proposal, error) {
	where, args := buildWhere(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)

	query := `SELECT ` + proposalColumns + ` FROM student_proposals` + where +
		` ORDER BY created_at DESC, id DESC` +
		` LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	defer rows.Close()

	proposals := make([]*models.Proposal, 0)
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan proposal: %w", err)
		}
		proposals = append(proposals, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	return proposals, nil
}

func (s *PostgresStore) Update(ctx context.Context, p *models.Proposal) (*models.Proposal, error) {
	// Whole-record write, last write wins. The service validates against the
	// copy it loaded; there is no expected-status precondition here. Known
	// limitation, see DESIGN.md.
	query := `
		UPDATE student_proposals SET
			title = $2, background = $3, objectives = $4, target_audience = $5,
			implementation_plan = $6, timeline = $7, budget_breakdown = $8,
			expected_outcomes = $9, risk_assessment = $10, evaluation_method = $11,
			status = $12, reviewer_comments = $13, reviewed_by = $14,
			reviewed_at = $15, submitted_at = $16, updated_at = $17
		WHERE id = $1
		RETURNING ` + proposalColumns
	row := s.db.QueryRowContext(ctx, query,
		p.ID, p.Title, p.Background, p.Objectives, p.TargetAudience,
		p.ImplementationPlan, nullJSON(p.Timeline), nullJSON(p.BudgetBreakdown),
		p.ExpectedOutcomes, nullString(p.RiskAssessment), nullString(p.EvaluationMethod),
		string(p.Status), nullString(p.ReviewerComments), p.ReviewedBy,
		p.ReviewedAt, p.SubmittedAt, p.UpdatedAt,
	)
	updated, err := scanProposal(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update proposal: %w", err)
	}
	return updated, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM student_proposals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete proposal: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete proposal rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context, filter Filter) (int64, error) {
	where, args := buildWhere(filter)
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM student_proposals`+where, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count proposals: %w", err)
	}
	return n, nil
}

func buildWhere(filter Filter) (string, []any) {
	var clauses []string
	var args []any

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		clauses = append(clauses, "status = $"+strconv.Itoa(len(args)))
	}
	if filter.OwnerID != 0 {
		args = append(args, filter.OwnerID)
		clauses = append(clauses, "user_id = $"+strconv.Itoa(len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := strconv.Itoa(len(args))
		clauses = append(clauses, "(title ILIKE $"+n+" OR background ILIKE $"+n+" OR proposal_number ILIKE $"+n+")")
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProposal(row rowScanner) (*models.Proposal, error) {
	var (
		timeline         []byte
		budget           []byte
		riskAssessment   sql.NullString
		evaluationMethod sql.NullString
		reviewerComments sql.NullString
		reviewedBy       sql.NullInt64
		reviewedAt       sql.NullTime
		submittedAt      sql.NullTime
		out              models.Proposal
		status           string
	)
	err := row.Scan(
		&out.ID, &out.ProposalNumber, &out.OwnerID, &out.Title, &out.Background,
		&out.Objectives, &out.TargetAudience, &out.ImplementationPlan,
		&timeline, &budget, &out.ExpectedOutcomes, &riskAssessment,
		&evaluationMethod, &status, &reviewerComments, &reviewedBy,
		&reviewedAt, &submittedAt, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	out.Timeline = timeline
	out.BudgetBreakdown = budget
	out.RiskAssessment = riskAssessment.String
	out.EvaluationMethod = evaluationMethod.String
	out.ReviewerComments = reviewerComments.String
	out.Status = models.Status(status)
	if reviewedBy.Valid {
		out.ReviewedBy = &reviewedBy.Int64
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		out.ReviewedAt = &t
	}
	if submittedAt.Valid {
		t := submittedAt.Time
		out.SubmittedAt = &t
	}
	return &out, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return raw
}
