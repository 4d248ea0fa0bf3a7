package membership

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateType(ctx context.Context, name string, price decimal.Decimal, durationDays int, entriesPerWeek *int, description string) (*MembershipType, error) {
	query := `
		INSERT INTO membership_types (name, price, duration_days, entries_per_week, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, price, duration_days, entries_per_week, description, created_at
	`

	var mt MembershipType
	err := r.db.GetContext(ctx, &mt, query, name, price, durationDays, entriesPerWeek, description)
	if err != nil {
		return nil, err
	}

	return &mt, nil
}

func (r *repository) GetTypeByID(ctx context.Context, id int) (*MembershipType, error) {
	query := `
		SELECT id, name, price, duration_days, entries_per_week, description, created_at
		FROM membership_types
		WHERE id = $1
	`

	var mt MembershipType
	err := r.db.GetContext(ctx, &mt, query, id)
	if err != nil {
		return nil, err
	}

	return &mt, nil
}

func (r *repository) ListTypes(ctx context.Context) ([]MembershipType, error) {
	query := `
		SELECT id, name, price, duration_days, entries_per_week, description, created_at
		FROM membership_types
		ORDER BY price, id
	`

	var types []MembershipType
	err := r.db.SelectContext(ctx, &types, query)
	if err != nil {
		return nil, err
	}

	return types, nil
}

func (r *repository) CreateMembership(ctx context.Context, userID, typeID int, purchaseDate, expirationDate time.Time) (*UserMembership, error) {
	query := `
		INSERT INTO user_memberships (user_id, membership_type_id, purchase_date, expiration_date, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING id, user_id, membership_type_id, purchase_date, expiration_date, is_active
	`

	var um UserMembership
	err := r.db.GetContext(ctx, &um, query, userID, typeID, purchaseDate, expirationDate)
	if err != nil {
		return nil, err
	}

	return &um, nil
}

// GetActiveForUser answers "does this user hold an active membership on
// onDate". When several are active at once the most distant expiration
// wins; id breaks any remaining tie.
func (r *repository) GetActiveForUser(ctx context.Context, userID int, onDate time.Time) (*ActiveMembership, error) {
	query := `
		SELECT
			um.id,
			um.user_id,
			um.membership_type_id,
			um.purchase_date,
			um.expiration_date,
			um.is_active,
			COALESCE(mt.name, '') AS type_name,
			mt.entries_per_week
		FROM user_memberships um
		LEFT JOIN membership_types mt ON mt.id = um.membership_type_id
		WHERE um.user_id = $1
		  AND um.is_active = TRUE
		  AND um.expiration_date >= $2
		ORDER BY um.expiration_date DESC, um.id DESC
		LIMIT 1
	`

	var am ActiveMembership
	err := r.db.GetContext(ctx, &am, query, userID, onDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoActiveMembership
	}
	if err != nil {
		return nil, err
	}

	return &am, nil
}

func (r *repository) ListByUser(ctx context.Context, userID int) ([]UserMembership, error) {
	query := `
		SELECT id, user_id, membership_type_id, purchase_date, expiration_date, is_active
		FROM user_memberships
		WHERE user_id = $1
		ORDER BY purchase_date DESC, id DESC
	`

	var memberships []UserMembership
	err := r.db.SelectContext(ctx, &memberships, query, userID)
	if err != nil {
		return nil, err
	}

	return memberships, nil
}
