package stats

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type MonthlyRevenue struct {
	Month   time.Time       `db:"month" json:"month"`
	Revenue decimal.Decimal `db:"revenue" json:"revenue"`
}

type PopularClass struct {
	Name        string `db:"name" json:"name"`
	Enrollments int    `db:"enrollments" json:"enrollments"`
}

type ActiveMember struct {
	UserID         int       `db:"user_id" json:"user_id"`
	Name           string    `db:"name" json:"name"`
	Email          string    `db:"email" json:"email"`
	TypeName       string    `db:"type_name" json:"type_name"`
	ExpirationDate time.Time `db:"expiration_date" json:"expiration_date"`
}

type Repository interface {
	RevenueBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	RevenueByMonth(ctx context.Context, months int) ([]MonthlyRevenue, error)
	PopularClasses(ctx context.Context, limit int) ([]PopularClass, error)
	ActiveMembers(ctx context.Context, onDate time.Time) ([]ActiveMember, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// RevenueBetween sums the catalog price of every membership purchased
// in [from, to). Prices live on the type, not the ledger row, so
// deleted types drop out of revenue the same way they did upstream.
func (r *repository) RevenueBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(mt.price), 0) AS revenue
		FROM user_memberships um
		JOIN membership_types mt ON mt.id = um.membership_type_id
		WHERE um.purchase_date >= $1 AND um.purchase_date < $2
	`

	var revenue decimal.Decimal
	err := r.db.GetContext(ctx, &revenue, query, from, to)
	if err != nil {
		return decimal.Zero, err
	}

	return revenue, nil
}

func (r *repository) RevenueByMonth(ctx context.Context, months int) ([]MonthlyRevenue, error) {
	if months <= 0 {
		months = 12
	}

	query := `
		SELECT
			DATE_TRUNC('month', um.purchase_date) AS month,
			COALESCE(SUM(mt.price), 0) AS revenue
		FROM user_memberships um
		JOIN membership_types mt ON mt.id = um.membership_type_id
		GROUP BY DATE_TRUNC('month', um.purchase_date)
		ORDER BY month DESC
		LIMIT $1
	`

	var rows []MonthlyRevenue
	err := r.db.SelectContext(ctx, &rows, query, months)
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *repository) PopularClasses(ctx context.Context, limit int) ([]PopularClass, error) {
	if limit <= 0 {
		limit = 5
	}

	query := `
		SELECT cs.name, COUNT(e.id) AS enrollments
		FROM class_sessions cs
		LEFT JOIN enrollments e ON e.class_session_id = cs.id
		GROUP BY cs.name
		ORDER BY enrollments DESC, cs.name
		LIMIT $1
	`

	var rows []PopularClass
	err := r.db.SelectContext(ctx, &rows, query, limit)
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *repository) ActiveMembers(ctx context.Context, onDate time.Time) ([]ActiveMember, error) {
	query := `
		SELECT DISTINCT ON (u.id)
			u.id AS user_id,
			u.name,
			u.email,
			COALESCE(mt.name, '') AS type_name,
			um.expiration_date
		FROM users u
		JOIN user_memberships um ON um.user_id = u.id
		LEFT JOIN membership_types mt ON mt.id = um.membership_type_id
		WHERE um.is_active = TRUE AND um.expiration_date >= $1
		ORDER BY u.id, um.expiration_date DESC
	`

	var rows []ActiveMember
	err := r.db.SelectContext(ctx, &rows, query, onDate)
	if err != nil {
		return nil, err
	}

	return rows, nil
}
