package activity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// PostgresStore persists activities in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const activityColumns = `
	id, user_id, name, description, category, location, activity_date,
	status, approved_by, approved_at, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, a *Activity) (*Activity, error) {
	query := `
		INSERT INTO student_activities (
			user_id, name, description, category, location, activity_date,
			status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + activityColumns
	row := s.db.QueryRowContext(ctx, query,
		a.OwnerID, a.Name, a.Description, nullStr(a.Category), nullStr(a.Location),
		a.ActivityDate, string(a.Status), a.CreatedAt, a.UpdatedAt,
	)
	created, err := scanActivity(row)
	if err != nil {
		return nil, fmt.Errorf("create activity: %w", err)
	}
	return created, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM student_activities WHERE id = $1`
	a, err := scanActivity(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find activity by id: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) FindMany(ctx context.Context, filter Filter) ([]*Activity, error) {
	where, args := buildActivityWhere(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)

	query := `SELECT ` + activityColumns + ` FROM student_activities` + where +
		` ORDER BY created_at DESC, id DESC` +
		` LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	activities := make([]*Activity, 0)
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return activities, nil
}

func (s *PostgresStore) Update(ctx context.Context, a *Activity) (*Activity, error) {
	query := `
		UPDATE student_activities SET
			name = $2, description = $3, category = $4, location = $5,
			activity_date = $6, status = $7, approved_by = $8, approved_at = $9,
			updated_at = $10
		WHERE id = $1
		RETURNING ` + activityColumns
	row := s.db.QueryRowContext(ctx, query,
		a.ID, a.Name, a.Description, nullStr(a.Category), nullStr(a.Location),
		a.ActivityDate, string(a.Status), a.ApprovedBy, a.ApprovedAt, a.UpdatedAt,
	)
	updated, err := scanActivity(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update activity: %w", err)
	}
	return updated, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM student_activities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete activity rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context, filter Filter) (int64, error) {
	where, args := buildActivityWhere(filter)
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM student_activities`+where, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count activities: %w", err)
	}
	return n, nil
}

func buildActivityWhere(filter Filter) (string, []any) {
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
		clauses = append(clauses, "(name ILIKE $"+n+" OR description ILIKE $"+n+")")
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanActivity(row rowScanner) (*Activity, error) {
	var (
		out          Activity
		category     sql.NullString
		location     sql.NullString
		activityDate sql.NullTime
		status       string
		approvedBy   sql.NullInt64
		approvedAt   sql.NullTime
	)
	err := row.Scan(
		&out.ID, &out.OwnerID, &out.Name, &out.Description, &category,
		&location, &activityDate, &status, &approvedBy, &approvedAt,
		&out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	out.Category = category.String
	out.Location = location.String
	out.Status = Status(status)
	if activityDate.Valid {
		t := activityDate.Time
		out.ActivityDate = &t
	}
	if approvedBy.Valid {
		out.ApprovedBy = &approvedBy.Int64
	}
	if approvedAt.Valid {
		t := approvedAt.Time
		out.ApprovedAt = &t
	}
	return &out, nil
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
