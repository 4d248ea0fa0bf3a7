package visit

import (
	"time"

	"github.com/aleksishere/wsb-GymManager/internal/membership"
	"github.com/aleksishere/wsb-GymManager/internal/user"
)

// Visit is one check-in interval. An open visit (ExitTime nil) means
// the member is currently inside the facility.
type Visit struct {
	ID        int        `db:"id" json:"id"`
	UserID    int        `db:"user_id" json:"user_id"`
	EntryTime time.Time  `db:"entry_time" json:"entry_time"`
	ExitTime  *time.Time `db:"exit_time" json:"exit_time,omitempty"`
}

func (v *Visit) IsOpen() bool {
	return v.ExitTime == nil
}

// ToggleResult is what reception sees after pressing the check-in
// toggle for a member.
type ToggleResult struct {
	Action    string `json:"action"` // "checked_in" or "checked_out"
	Visit     *Visit `json:"visit"`
	// Remaining entries this week after the action; nil for open
	// memberships. May go negative when staff override history left
	// more visits than the limit.
	Remaining *int `json:"remaining,omitempty"`
}

// PanelEntry is one reception-panel row: a member plus their live
// status.
type PanelEntry struct {
	User             user.User                    `json:"user"`
	InGym            bool                         `json:"in_gym"`
	OpenVisitID      *int                         `json:"open_visit_id,omitempty"`
	ActiveMembership *membership.ActiveMembership `json:"active_membership,omitempty"`
	WeeklyLimit      *int                         `json:"weekly_limit,omitempty"`
	VisitsThisWeek   int                          `json:"visits_this_week"`
}
