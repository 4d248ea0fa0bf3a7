package class

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	ErrClassNotFound   = errors.New("class session not found")
	ErrClassFull       = errors.New("class session is full")
	ErrAlreadyEnrolled = errors.New("user already enrolled in this class")
	ErrNotEnrolled     = errors.New("user is not enrolled in this class")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateSession(ctx context.Context, name string, date time.Time, capacity int) (*ClassSession, error) {
	query := `
		INSERT INTO class_sessions (name, date, capacity)
		VALUES ($1, $2, $3)
		RETURNING id, name, date, capacity, created_at
	`

	var session ClassSession
	err := r.db.GetContext(ctx, &session, query, name, date, capacity)
	if err != nil {
		return nil, err
	}

	return &session, nil
}

func (r *repository) GetSessionByID(ctx context.Context, id int) (*ClassSession, error) {
	query := `
		SELECT id, name, date, capacity, created_at
		FROM class_sessions
		WHERE id = $1
	`

	var session ClassSession
	err := r.db.GetContext(ctx, &session, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}

	return &session, nil
}

func (r *repository) DeleteSession(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM class_sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrClassNotFound
	}

	return nil
}

// ListUpcoming returns future sessions with roster counts plus the
// requesting user's enrollment flag.
func (r *repository) ListUpcoming(ctx context.Context, userID int, after time.Time) ([]SessionWithAvailability, error) {
	query := `
		SELECT
			cs.id,
			cs.name,
			cs.date,
			cs.capacity,
			cs.created_at,
			COUNT(e.id) AS participant_count,
			COUNT(e.id) >= cs.capacity AS is_full,
			BOOL_OR(e.user_id = $1) IS TRUE AS enrolled
		FROM class_sessions cs
		LEFT JOIN enrollments e ON e.class_session_id = cs.id
		WHERE cs.date >= $2
		GROUP BY cs.id
		ORDER BY cs.date, cs.id
	`

	var sessions []SessionWithAvailability
	err := r.db.SelectContext(ctx, &sessions, query, userID, after)
	if err != nil {
		return nil, err
	}

	return sessions, nil
}

func (r *repository) CountEnrollments(ctx context.Context, classSessionID int) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM enrollments WHERE class_session_id = $1`,
		classSessionID,
	)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// CreateEnrollment re-runs every signup rule inside one transaction
// with the session row locked, so two concurrent signups cannot both
// squeeze past capacity. The unique (user_id, class_session_id) index
// backstops the duplicate check.
func (r *repository) CreateEnrollment(ctx context.Context, userID, classSessionID int, signupDate time.Time) (*Enrollment, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var capacity int
	err = tx.GetContext(ctx, &capacity,
		`SELECT capacity FROM class_sessions WHERE id = $1 FOR UPDATE`,
		classSessionID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}

	var count int
	err = tx.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM enrollments WHERE class_session_id = $1`,
		classSessionID,
	)
	if err != nil {
		return nil, err
	}
	if count >= capacity {
		return nil, ErrClassFull
	}

	var enrolled bool
	err = tx.GetContext(ctx, &enrolled,
		`SELECT EXISTS(SELECT 1 FROM enrollments WHERE user_id = $1 AND class_session_id = $2)`,
		userID, classSessionID,
	)
	if err != nil {
		return nil, err
	}
	if enrolled {
		return nil, ErrAlreadyEnrolled
	}

	var enrollment Enrollment
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO enrollments (user_id, class_session_id, signup_date)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, class_session_id, signup_date
	`, userID, classSessionID, signupDate).StructScan(&enrollment)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &enrollment, nil
}

func (r *repository) DeleteEnrollment(ctx context.Context, userID, classSessionID int) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM enrollments WHERE user_id = $1 AND class_session_id = $2`,
		userID, classSessionID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotEnrolled
	}

	return nil
}
