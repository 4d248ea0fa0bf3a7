package membership

import (
	"time"

	"github.com/shopspring/decimal"
)

// MembershipType is staff-curated reference data. A nil EntriesPerWeek
// means an "open" membership with no weekly entry cap.
type MembershipType struct {
	ID             int             `db:"id" json:"id"`
	Name           string          `db:"name" json:"name"`
	Price          decimal.Decimal `db:"price" json:"price"`
	DurationDays   int             `db:"duration_days" json:"duration_days"`
	EntriesPerWeek *int            `db:"entries_per_week" json:"entries_per_week,omitempty"`
	Description    string          `db:"description" json:"description"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

// UserMembership is a purchased membership. MembershipTypeID goes nil
// when the type is deleted from the catalog; the row itself survives.
type UserMembership struct {
	ID               int       `db:"id" json:"id"`
	UserID           int       `db:"user_id" json:"user_id"`
	MembershipTypeID *int      `db:"membership_type_id" json:"membership_type_id,omitempty"`
	PurchaseDate     time.Time `db:"purchase_date" json:"purchase_date"`
	ExpirationDate   time.Time `db:"expiration_date" json:"expiration_date"`
	IsActive         bool      `db:"is_active" json:"is_active"`
}

// ActiveMembership joins a ledger row with the weekly limit of its type.
type ActiveMembership struct {
	UserMembership
	TypeName       string `db:"type_name" json:"type_name"`
	EntriesPerWeek *int   `db:"entries_per_week" json:"entries_per_week,omitempty"`
}

// WeeklyLimit returns the entry cap carried by the membership's type;
// nil means unlimited.
func (m *ActiveMembership) WeeklyLimit() *int {
	return m.EntriesPerWeek
}

type CreateMembershipTypeRequest struct {
	Name           string `json:"name" binding:"required"`
	Price          string `json:"price" binding:"required"`
	DurationDays   int    `json:"duration_days" binding:"required,min=1"`
	EntriesPerWeek *int   `json:"entries_per_week,omitempty" binding:"omitempty,min=1"`
	Description    string `json:"description"`
}

type GrantMembershipRequest struct {
	UserID         int       `json:"user_id" binding:"required"`
	TypeID         int       `json:"type_id" binding:"required"`
	PurchaseDate   time.Time `json:"purchase_date" binding:"required"`
	ExpirationDate time.Time `json:"expiration_date" binding:"required"`
}

type PurchaseResponse struct {
	Membership *UserMembership `json:"membership"`
	TypeName   string          `json:"type_name"`
}
