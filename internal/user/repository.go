package user

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrUserNotFound = errors.New("user not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// CreateWithProfile inserts the account and its profile in one
// transaction; a failed profile insert rolls the account back too.
func (r *repository) CreateWithProfile(ctx context.Context, name, email, passwordHash, role string, pesel *string) (*User, error) {
	cardNumber, err := newCardNumber()
	if err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var user User
	err = tx.GetContext(ctx, &user, `
		INSERT INTO users (name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, email, password_hash, role, created_at
	`, name, email, passwordHash, role)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO profiles (user_id, pesel, card_number)
		VALUES ($1, $2, $3)
	`, user.ID, pesel, cardNumber)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, name, email, password_hash, role, created_at
		FROM users
		WHERE email = $1
	`

	var user User
	err := r.db.GetContext(ctx, &user, query, email)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *repository) FindByID(ctx context.Context, id int) (*User, error) {
	query := `
		SELECT id, name, email, password_hash, role, created_at
		FROM users
		WHERE id = $1
	`

	var user User
	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *repository) EmailExists(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, email)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (r *repository) ListMembers(ctx context.Context) ([]User, error) {
	query := `
		SELECT id, name, email, password_hash, role, created_at
		FROM users
		WHERE role = 'member'
		ORDER BY name, id
	`

	var users []User
	err := r.db.SelectContext(ctx, &users, query)
	if err != nil {
		return nil, err
	}

	return users, nil
}

func (r *repository) FindProfileByUserID(ctx context.Context, userID int) (*Profile, error) {
	query := `
		SELECT id, user_id, pesel, card_number, created_at
		FROM profiles
		WHERE user_id = $1
	`

	var profile Profile
	err := r.db.GetContext(ctx, &profile, query, userID)
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

func (r *repository) FindByCardNumber(ctx context.Context, cardNumber string) (*User, error) {
	query := `
		SELECT u.id, u.name, u.email, u.password_hash, u.role, u.created_at
		FROM users u
		JOIN profiles p ON p.user_id = u.id
		WHERE p.card_number = $1
	`

	var user User
	err := r.db.GetContext(ctx, &user, query, cardNumber)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// newCardNumber mints a 64-hex-char member card identifier.
func newCardNumber() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
