package membership

import (
	"context"
	"errors"
	"time"

	"github.com/aleksishere/wsb-GymManager/internal/metrics"
	"github.com/shopspring/decimal"
)

var (
	ErrTypeNotFound       = errors.New("membership type not found")
	ErrNoActiveMembership = errors.New("no active membership")
	ErrInvalidDateRange   = errors.New("expiration date must be after purchase date")
	ErrInvalidPrice       = errors.New("invalid price")
	ErrInvalidDuration    = errors.New("duration must be at least one day")
)

type Service interface {
	CreateType(ctx context.Context, req CreateMembershipTypeRequest) (*MembershipType, error)
	ListTypes(ctx context.Context) ([]MembershipType, error)
	Purchase(ctx context.Context, userID, typeID int) (*UserMembership, *MembershipType, error)
	Grant(ctx context.Context, userID, typeID int, purchaseDate, expirationDate time.Time) (*UserMembership, error)
	GetActiveForUser(ctx context.Context, userID int, onDate time.Time) (*ActiveMembership, error)
	ListByUser(ctx context.Context, userID int) ([]UserMembership, error)
}

type service struct {
	repo  Repository
	nowFn func() time.Time
}

func NewService(repo Repository) Service {
	return &service{
		repo:  repo,
		nowFn: time.Now,
	}
}

func (s *service) CreateType(ctx context.Context, req CreateMembershipTypeRequest) (*MembershipType, error) {
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		return nil, ErrInvalidPrice
	}
	price = price.Round(2)

	if req.DurationDays < 1 {
		return nil, ErrInvalidDuration
	}
	if req.EntriesPerWeek != nil && *req.EntriesPerWeek < 1 {
		return nil, errors.New("entries per week must be positive")
	}

	return s.repo.CreateType(ctx, req.Name, price, req.DurationDays, req.EntriesPerWeek, req.Description)
}

func (s *service) ListTypes(ctx context.Context) ([]MembershipType, error) {
	return s.repo.ListTypes(ctx)
}

// Purchase creates a ledger row for the member. Expiration defaults to
// purchase date plus the type's duration.
func (s *service) Purchase(ctx context.Context, userID, typeID int) (*UserMembership, *MembershipType, error) {
	mt, err := s.repo.GetTypeByID(ctx, typeID)
	if err != nil {
		return nil, nil, ErrTypeNotFound
	}

	purchaseDate := dateOf(s.nowFn())
	expirationDate := purchaseDate.AddDate(0, 0, mt.DurationDays)

	um, err := s.repo.CreateMembership(ctx, userID, typeID, purchaseDate, expirationDate)
	if err != nil {
		return nil, nil, err
	}

	metrics.RecordMembershipPurchase(mt.Name)
	return um, mt, nil
}

// Grant is the staff path with explicit dates (back-dated or comped
// memberships). The date-range invariant is enforced here, not at the
// storage layer.
func (s *service) Grant(ctx context.Context, userID, typeID int, purchaseDate, expirationDate time.Time) (*UserMembership, error) {
	if _, err := s.repo.GetTypeByID(ctx, typeID); err != nil {
		return nil, ErrTypeNotFound
	}

	purchaseDate = dateOf(purchaseDate)
	expirationDate = dateOf(expirationDate)
	if !expirationDate.After(purchaseDate) {
		return nil, ErrInvalidDateRange
	}

	return s.repo.CreateMembership(ctx, userID, typeID, purchaseDate, expirationDate)
}

func (s *service) GetActiveForUser(ctx context.Context, userID int, onDate time.Time) (*ActiveMembership, error) {
	return s.repo.GetActiveForUser(ctx, userID, dateOf(onDate))
}

func (s *service) ListByUser(ctx context.Context, userID int) ([]UserMembership, error) {
	return s.repo.ListByUser(ctx, userID)
}

// dateOf truncates a timestamp to local midnight; the ledger works in
// whole days.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
