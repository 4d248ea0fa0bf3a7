package visit

import (
	"context"
	"errors"
	"time"

	"github.com/aleksishere/wsb-GymManager/internal/membership"
	"github.com/aleksishere/wsb-GymManager/internal/metrics"
	"github.com/aleksishere/wsb-GymManager/internal/user"
)

// StaleVisitCutoff is how long a visit may stay open before the sweep
// force-closes it.
const StaleVisitCutoff = 24 * time.Hour

var ErrNoActiveMembership = errors.New("user has no active membership")

type Service interface {
	CheckIn(ctx context.Context, userID int) (*ToggleResult, error)
	CheckOut(ctx context.Context, userID int) (*Visit, error)
	Toggle(ctx context.Context, userID int) (*ToggleResult, error)
	SweepStale(ctx context.Context) (int, error)
	ReceptionPanel(ctx context.Context) ([]PanelEntry, error)
	RecentVisits(ctx context.Context, userID int) ([]Visit, error)
}

type service struct {
	repo           Repository
	membershipRepo membership.Repository
	userRepo       user.Repository
	nowFn          func() time.Time
}

func NewService(repo Repository, membershipRepo membership.Repository, userRepo user.Repository) Service {
	return &service{
		repo:           repo,
		membershipRepo: membershipRepo,
		userRepo:       userRepo,
		nowFn:          time.Now,
	}
}

// CheckIn opens a visit for the member. Membership and weekly-quota
// gates run first; the repository re-checks the quota and the
// single-open-visit rule inside its transaction.
func (s *service) CheckIn(ctx context.Context, userID int) (*ToggleResult, error) {
	now := s.nowFn()

	active, err := s.membershipRepo.GetActiveForUser(ctx, userID, dateOf(now))
	if errors.Is(err, membership.ErrNoActiveMembership) {
		metrics.RecordCheckIn("no_membership")
		return nil, ErrNoActiveMembership
	}
	if err != nil {
		return nil, err
	}

	limit := active.WeeklyLimit()
	weekStart := WeekStart(now)

	visit, used, staleClosed, err := s.repo.OpenVisit(ctx, userID, now, StaleVisitCutoff, limit, weekStart)
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyOpen):
			metrics.RecordCheckIn("already_open")
		case errors.Is(err, ErrWeeklyLimitExceeded):
			metrics.RecordCheckIn("limit_exceeded")
		}
		return nil, err
	}

	// The sweep only sticks when the transaction commits.
	if staleClosed > 0 {
		metrics.RecordStaleVisitsClosed(staleClosed)
	}
	metrics.RecordCheckIn("ok")

	result := &ToggleResult{Action: "checked_in", Visit: visit}
	if limit != nil {
		remaining := *limit - used
		result.Remaining = &remaining
	}

	return result, nil
}

func (s *service) CheckOut(ctx context.Context, userID int) (*Visit, error) {
	visit, err := s.repo.CloseOpenVisit(ctx, userID, s.nowFn())
	if err != nil {
		return nil, err
	}

	metrics.RecordCheckOut()
	return visit, nil
}

// Toggle is the reception desk action: close the open visit if one
// exists, otherwise run the full check-in gauntlet.
func (s *service) Toggle(ctx context.Context, userID int) (*ToggleResult, error) {
	if _, err := s.repo.GetOpenVisit(ctx, userID); err == nil {
		visit, err := s.CheckOut(ctx, userID)
		if err != nil {
			return nil, err
		}
		return &ToggleResult{Action: "checked_out", Visit: visit}, nil
	} else if !errors.Is(err, ErrNoOpenVisit) {
		return nil, err
	}

	return s.CheckIn(ctx, userID)
}

func (s *service) SweepStale(ctx context.Context) (int, error) {
	closed, err := s.repo.SweepStale(ctx, s.nowFn(), StaleVisitCutoff)
	if err != nil {
		return 0, err
	}

	if closed > 0 {
		metrics.RecordStaleVisitsClosed(closed)
	}

	return closed, nil
}

// ReceptionPanel lists every member with in-gym status, active
// membership and weekly-quota usage.
func (s *service) ReceptionPanel(ctx context.Context) ([]PanelEntry, error) {
	members, err := s.userRepo.ListMembers(ctx)
	if err != nil {
		return nil, err
	}

	now := s.nowFn()
	weekStart := WeekStart(now)

	entries := make([]PanelEntry, 0, len(members))
	for _, m := range members {
		entry := PanelEntry{User: m}

		open, err := s.repo.GetOpenVisit(ctx, m.ID)
		if err != nil && !errors.Is(err, ErrNoOpenVisit) {
			return nil, err
		}
		if err == nil {
			entry.InGym = true
			entry.OpenVisitID = &open.ID
		}

		active, err := s.membershipRepo.GetActiveForUser(ctx, m.ID, dateOf(now))
		if err != nil && !errors.Is(err, membership.ErrNoActiveMembership) {
			return nil, err
		}
		if err == nil {
			entry.ActiveMembership = active
			if limit := active.WeeklyLimit(); limit != nil {
				entry.WeeklyLimit = limit
				used, err := s.repo.CountSince(ctx, m.ID, weekStart)
				if err != nil {
					return nil, err
				}
				entry.VisitsThisWeek = used
			}
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

func (s *service) RecentVisits(ctx context.Context, userID int) ([]Visit, error) {
	return s.repo.ListRecentByUser(ctx, userID, 5)
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
