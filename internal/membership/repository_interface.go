package membership

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Repository interface {
	CreateType(ctx context.Context, name string, price decimal.Decimal, durationDays int, entriesPerWeek *int, description string) (*MembershipType, error)
	GetTypeByID(ctx context.Context, id int) (*MembershipType, error)
	ListTypes(ctx context.Context) ([]MembershipType, error)
	CreateMembership(ctx context.Context, userID, typeID int, purchaseDate, expirationDate time.Time) (*UserMembership, error)
	GetActiveForUser(ctx context.Context, userID int, onDate time.Time) (*ActiveMembership, error)
	ListByUser(ctx context.Context, userID int) ([]UserMembership, error)
}
