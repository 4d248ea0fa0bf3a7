package visit

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	ErrAlreadyOpen         = errors.New("visit already open")
	ErrNoOpenVisit         = errors.New("no open visit")
	ErrWeeklyLimitExceeded = errors.New("weekly entry limit exceeded")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// OpenVisit performs the whole check-in as one transaction: lock the
// user row to serialize concurrent toggles, force-close stale visits,
// verify no visit is open, verify the weekly quota, insert. The sweep
// runs before the insert so a forgotten check-out from yesterday never
// blocks today's entry.
func (r *repository) OpenVisit(ctx context.Context, userID int, entryTime time.Time, cutoff time.Duration, weeklyLimit *int, weekStart time.Time) (*Visit, int, int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, 0, 0, err
	}
	defer tx.Rollback()

	var lockedID int
	if err := tx.GetContext(ctx, &lockedID, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID); err != nil {
		return nil, 0, 0, err
	}

	staleClosed, err := sweepStaleTx(ctx, tx, entryTime, cutoff)
	if err != nil {
		return nil, 0, 0, err
	}

	var openExists bool
	err = tx.GetContext(ctx, &openExists,
		`SELECT EXISTS(SELECT 1 FROM visits WHERE user_id = $1 AND exit_time IS NULL)`,
		userID,
	)
	if err != nil {
		return nil, 0, 0, err
	}
	if openExists {
		return nil, 0, staleClosed, ErrAlreadyOpen
	}

	var used int
	err = tx.GetContext(ctx, &used,
		`SELECT COUNT(*) FROM visits WHERE user_id = $1 AND entry_time >= $2`,
		userID, weekStart,
	)
	if err != nil {
		return nil, 0, 0, err
	}
	if weeklyLimit != nil && used >= *weeklyLimit {
		return nil, used, staleClosed, ErrWeeklyLimitExceeded
	}

	var visit Visit
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO visits (user_id, entry_time)
		VALUES ($1, $2)
		RETURNING id, user_id, entry_time, exit_time
	`, userID, entryTime).StructScan(&visit)
	if err != nil {
		return nil, 0, 0, err
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, 0, err
	}

	return &visit, used + 1, staleClosed, nil
}

// CloseOpenVisit closes the most recent open visit for the user.
func (r *repository) CloseOpenVisit(ctx context.Context, userID int, exitTime time.Time) (*Visit, error) {
	var visit Visit
	err := r.db.QueryRowxContext(ctx, `
		UPDATE visits
		SET exit_time = $2
		WHERE id = (
			SELECT id FROM visits
			WHERE user_id = $1 AND exit_time IS NULL
			ORDER BY entry_time DESC, id DESC
			LIMIT 1
			FOR UPDATE
		)
		RETURNING id, user_id, entry_time, exit_time
	`, userID, exitTime).StructScan(&visit)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoOpenVisit
		}
		return nil, err
	}

	return &visit, nil
}

func (r *repository) GetOpenVisit(ctx context.Context, userID int) (*Visit, error) {
	var visit Visit
	err := r.db.GetContext(ctx, &visit, `
		SELECT id, user_id, entry_time, exit_time
		FROM visits
		WHERE user_id = $1 AND exit_time IS NULL
		ORDER BY entry_time DESC, id DESC
		LIMIT 1
	`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoOpenVisit
		}
		return nil, err
	}

	return &visit, nil
}

func (r *repository) CountSince(ctx context.Context, userID int, since time.Time) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM visits WHERE user_id = $1 AND entry_time >= $2`,
		userID, since,
	)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// SweepStale force-closes every open visit older than the cutoff with
// exit_time = entry_time + cutoff. The partial index on open visits
// keeps this cheap on the check-in hot path.
func (r *repository) SweepStale(ctx context.Context, now time.Time, cutoff time.Duration) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	closed, err := sweepStaleTx(ctx, tx, now, cutoff)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return closed, nil
}

func sweepStaleTx(ctx context.Context, tx *sqlx.Tx, now time.Time, cutoff time.Duration) (int, error) {
	result, err := tx.ExecContext(ctx, `
		UPDATE visits
		SET exit_time = entry_time + $2::interval
		WHERE exit_time IS NULL AND entry_time < $1
	`, now.Add(-cutoff), cutoff.String())
	if err != nil {
		return 0, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	return int(affected), nil
}

func (r *repository) ListRecentByUser(ctx context.Context, userID, limit int) ([]Visit, error) {
	if limit <= 0 {
		limit = 5
	}

	var visits []Visit
	err := r.db.SelectContext(ctx, &visits, `
		SELECT id, user_id, entry_time, exit_time
		FROM visits
		WHERE user_id = $1
		ORDER BY entry_time DESC, id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}

	return visits, nil
}
