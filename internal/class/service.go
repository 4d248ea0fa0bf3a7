package class

import (
	"context"
	"errors"
	"time"

	"github.com/aleksishere/wsb-GymManager/internal/membership"
	"github.com/aleksishere/wsb-GymManager/internal/metrics"
)

var (
	ErrClassInPast        = errors.New("class date cannot be in the past")
	ErrInvalidClassDate   = errors.New("invalid class date")
	ErrNoActiveMembership = errors.New("user has no active membership")
	ErrTooLateToCancel    = errors.New("cannot cancel after the class has taken place")
)

type Service interface {
	CreateSession(ctx context.Context, req CreateClassRequest) (*ClassSession, error)
	DeleteSession(ctx context.Context, classID int) error
	ListUpcoming(ctx context.Context, userID int) ([]SessionWithAvailability, error)
	Signup(ctx context.Context, userID, classID int) (*Enrollment, *ClassSession, error)
	Cancel(ctx context.Context, userID, classID int) error
}

type service struct {
	repo           Repository
	membershipRepo membership.Repository
	nowFn          func() time.Time
}

func NewService(repo Repository, membershipRepo membership.Repository) Service {
	return &service{
		repo:           repo,
		membershipRepo: membershipRepo,
		nowFn:          time.Now,
	}
}

func (s *service) CreateSession(ctx context.Context, req CreateClassRequest) (*ClassSession, error) {
	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		return nil, ErrInvalidClassDate
	}

	if date.Before(s.nowFn()) {
		return nil, ErrClassInPast
	}

	return s.repo.CreateSession(ctx, req.Name, date, req.Capacity)
}

func (s *service) DeleteSession(ctx context.Context, classID int) error {
	return s.repo.DeleteSession(ctx, classID)
}

func (s *service) ListUpcoming(ctx context.Context, userID int) ([]SessionWithAvailability, error) {
	return s.repo.ListUpcoming(ctx, userID, s.nowFn())
}

// Signup enrolls the member: capacity, membership and uniqueness gates
// in that order. The repository re-runs the capacity and uniqueness
// checks under a row lock at persistence time.
func (s *service) Signup(ctx context.Context, userID, classID int) (*Enrollment, *ClassSession, error) {
	now := s.nowFn()

	session, err := s.repo.GetSessionByID(ctx, classID)
	if err != nil {
		return nil, nil, err
	}

	count, err := s.repo.CountEnrollments(ctx, classID)
	if err != nil {
		return nil, nil, err
	}
	if count >= session.Capacity {
		metrics.RecordEnrollment("full")
		return nil, nil, ErrClassFull
	}

	if _, err := s.membershipRepo.GetActiveForUser(ctx, userID, dateOf(now)); err != nil {
		if errors.Is(err, membership.ErrNoActiveMembership) {
			metrics.RecordEnrollment("no_membership")
			return nil, nil, ErrNoActiveMembership
		}
		return nil, nil, err
	}

	enrollment, err := s.repo.CreateEnrollment(ctx, userID, classID, now)
	if err != nil {
		if errors.Is(err, ErrAlreadyEnrolled) {
			metrics.RecordEnrollment("duplicate")
		}
		if errors.Is(err, ErrClassFull) {
			metrics.RecordEnrollment("full")
		}
		return nil, nil, err
	}

	metrics.RecordEnrollment("ok")
	return enrollment, session, nil
}

// Cancel withdraws the member. Classes that already took place cannot
// be cancelled.
func (s *service) Cancel(ctx context.Context, userID, classID int) error {
	session, err := s.repo.GetSessionByID(ctx, classID)
	if err != nil {
		return err
	}

	if session.Date.Before(s.nowFn()) {
		return ErrTooLateToCancel
	}

	if err := s.repo.DeleteEnrollment(ctx, userID, classID); err != nil {
		return err
	}

	metrics.RecordEnrollmentCancellation()
	return nil
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
