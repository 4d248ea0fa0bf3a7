package user

import "context"

type Repository interface {
	CreateWithProfile(ctx context.Context, name, email, passwordHash, role string, pesel *string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	ListMembers(ctx context.Context) ([]User, error)
	FindProfileByUserID(ctx context.Context, userID int) (*Profile, error)
	FindByCardNumber(ctx context.Context, cardNumber string) (*User, error)
}
