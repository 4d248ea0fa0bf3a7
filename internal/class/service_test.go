package class

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aleksishere/wsb-GymManager/internal/membership"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockClassRepo struct{ mock.Mock }
type MockMembershipRepo struct{ mock.Mock }

func (m *MockClassRepo) CreateSession(ctx context.Context, name string, date time.Time, capacity int) (*ClassSession, error) {
	args := m.Called(ctx, name, date, capacity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ClassSession), args.Error(1)
}

func (m *MockClassRepo) GetSessionByID(ctx context.Context, id int) (*ClassSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ClassSession), args.Error(1)
}

func (m *MockClassRepo) DeleteSession(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockClassRepo) ListUpcoming(ctx context.Context, userID int, after time.Time) ([]SessionWithAvailability, error) {
	args := m.Called(ctx, userID, after)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]SessionWithAvailability), args.Error(1)
}

func (m *MockClassRepo) CountEnrollments(ctx context.Context, classSessionID int) (int, error) {
	args := m.Called(ctx, classSessionID)
	return args.Int(0), args.Error(1)
}

func (m *MockClassRepo) CreateEnrollment(ctx context.Context, userID, classSessionID int, signupDate time.Time) (*Enrollment, error) {
	args := m.Called(ctx, userID, classSessionID, signupDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Enrollment), args.Error(1)
}

func (m *MockClassRepo) DeleteEnrollment(ctx context.Context, userID, classSessionID int) error {
	args := m.Called(ctx, userID, classSessionID)
	return args.Error(0)
}

func (m *MockMembershipRepo) CreateType(ctx context.Context, name string, price decimal.Decimal, durationDays int, entriesPerWeek *int, description string) (*membership.MembershipType, error) {
	args := m.Called(ctx, name, price, durationDays, entriesPerWeek, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membership.MembershipType), args.Error(1)
}

func (m *MockMembershipRepo) GetTypeByID(ctx context.Context, id int) (*membership.MembershipType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membership.MembershipType), args.Error(1)
}

func (m *MockMembershipRepo) ListTypes(ctx context.Context) ([]membership.MembershipType, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]membership.MembershipType), args.Error(1)
}

func (m *MockMembershipRepo) CreateMembership(ctx context.Context, userID, typeID int, purchaseDate, expirationDate time.Time) (*membership.UserMembership, error) {
	args := m.Called(ctx, userID, typeID, purchaseDate, expirationDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membership.UserMembership), args.Error(1)
}

func (m *MockMembershipRepo) GetActiveForUser(ctx context.Context, userID int, onDate time.Time) (*membership.ActiveMembership, error) {
	args := m.Called(ctx, userID, onDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membership.ActiveMembership), args.Error(1)
}

func (m *MockMembershipRepo) ListByUser(ctx context.Context, userID int) ([]membership.UserMembership, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]membership.UserMembership), args.Error(1)
}

func newTestService(cr *MockClassRepo, mr *MockMembershipRepo, now time.Time) *service {
	return &service{
		repo:           cr,
		membershipRepo: mr,
		nowFn:          func() time.Time { return now },
	}
}

func activeMembership() *membership.ActiveMembership {
	return &membership.ActiveMembership{
		UserMembership: membership.UserMembership{ID: 1, UserID: 1, IsActive: true},
		TypeName:       "Open",
	}
}

func TestService_CreateSession(t *testing.T) {
	cr := new(MockClassRepo)
	now := time.Date(2024, 1, 17, 10, 0, 0, 0, time.UTC)
	date := time.Date(2024, 1, 20, 18, 0, 0, 0, time.UTC)

	cr.On("CreateSession", mock.Anything, "Yoga", date, 15).
		Return(&ClassSession{ID: 1, Name: "Yoga", Date: date, Capacity: 15}, nil)

	svc := newTestService(cr, new(MockMembershipRepo), now)
	session, err := svc.CreateSession(context.Background(), CreateClassRequest{
		Name:     "Yoga",
		Date:     date.Format(time.RFC3339),
		Capacity: 15,
	})

	assert.NoError(t, err)
	assert.Equal(t, "Yoga", session.Name)
	cr.AssertExpectations(t)
}

func TestService_CreateSession_PastDate(t *testing.T) {
	cr := new(MockClassRepo)
	now := time.Date(2024, 1, 17, 10, 0, 0, 0, time.UTC)

	svc := newTestService(cr, new(MockMembershipRepo), now)
	_, err := svc.CreateSession(context.Background(), CreateClassRequest{
		Name:     "Yoga",
		Date:     "2024-01-10T18:00:00Z",
		Capacity: 15,
	})

	assert.ErrorIs(t, err, ErrClassInPast)
	cr.AssertNotCalled(t, "CreateSession")
}

func TestService_CreateSession_BadDate(t *testing.T) {
	svc := newTestService(new(MockClassRepo), new(MockMembershipRepo), time.Now())
	_, err := svc.CreateSession(context.Background(), CreateClassRequest{
		Name:     "Yoga",
		Date:     "next tuesday",
		Capacity: 15,
	})

	assert.ErrorIs(t, err, ErrInvalidClassDate)
}

func TestService_Signup_Success(t *testing.T) {
	cr := new(MockClassRepo)
	mr := new(MockMembershipRepo)
	now := time.Date(2024, 1, 17, 10, 0, 0, 0, time.UTC)
	date := time.Date(2024, 1, 20, 18, 0, 0, 0, time.UTC)

	session := &ClassSession{ID: 3, Name: "Spinning", Date: date, Capacity: 10}

	cr.On("GetSessionByID", mock.Anything, 3).Return(session, nil)
	cr.On("CountEnrollments", mock.Anything, 3).Return(4, nil)
	mr.On("GetActiveForUser", mock.Anything, 1, mock.Anything).Return(activeMembership(), nil)
	cr.On("CreateEnrollment", mock.Anything, 1, 3, now).
		Return(&Enrollment{ID: 20, UserID: 1, ClassSessionID: 3, SignupDate: now}, nil)

	svc := newTestService(cr, mr, now)
	enrollment, got, err := svc.Signup(context.Background(), 1, 3)

	assert.NoError(t, err)
	assert.Equal(t, 20, enrollment.ID)
	assert.Equal(t, session, got)
	cr.AssertExpectations(t)
}

func TestService_Signup_ClassFull(t *testing.T) {
	cr := new(MockClassRepo)
	mr := new(MockMembershipRepo)
	now := time.Date(2024, 1, 17, 10, 0, 0, 0, time.UTC)
	date := time.Date(2024, 1, 20, 18, 0, 0, 0, time.UTC)

	cr.On("GetSessionByID", mock.Anything, 3).
		Return(&ClassSession{ID: 3, Date: date, Capacity: 10}, nil)
	cr.On("CountEnrollments", mock.Anything, 3).Return(10, nil)

	svc := newTestService(cr, mr, now)
	_, _, err := svc.Signup(context.Background(), 1, 3)

	// Capacity is checked before the membership, matching the roster
	// rules' precedence.
	assert.ErrorIs(t, err, ErrClassFull)
	mr.AssertNotCalled(t, "GetActiveForUser")
	cr.AssertNotCalled(t, "CreateEnrollment")
}

func TestService_Signup_NoMembership(t *testing.T) {
	cr := new(MockClassRepo)
	mr := new(MockMembershipRepo)
	now := time.Date(2024, 1, 17, 10, 0, 0, 0, time.UTC)
	date := time.Date(2024, 1, 20, 18, 0, 0, 0, time.UTC)

	cr.On("GetSessionByID", mock.Anything, 3).
		Return(&ClassSession{ID: 3, Date: date, Capacity: 10}, nil)
	cr.On("CountEnrollments", mock.Anything, 3).Return(2, nil)
	mr.On("GetActiveForUser", mock.Anything, 1, mock.Anything).
		Return(nil, membership.ErrNoActiveMembership)

	svc := newTestService(cr, mr, now)
	_, _, err := svc.Signup(context.Background(), 1, 3)

	assert.ErrorIs(t, err, ErrNoActiveMembership)
	cr.AssertNotCalled(t, "CreateEnrollment")
}

func TestService_Signup_MembershipLookupFault(t *testing.T) {
	cr := new(MockClassRepo)
	mr := new(MockMembershipRepo)
	now := time.Date(2024, 1, 17, 10, 0, 0, 0, time.UTC)
	date := time.Date(2024, 1, 20, 18, 0, 0, 0, time.UTC)
	dbErr := errors.New("connection refused")

	cr.On("GetSessionByID", mock.Anything, 3).
		Return(&ClassSession{ID: 3, Date: date, Capacity: 10}, nil)
	cr.On("CountEnrollments", mock.Anything, 3).Return(2, nil)
	mr.On("GetActiveForUser", mock.Anything, 1, mock.Anything).
		Return(nil, dbErr)

	svc := newTestService(cr, mr, now)
	_, _, err := svc.Signup(context.Background(), 1, 3)

	// A ledger fault is not a missing membership.
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, ErrNoActiveMembership)
	cr.AssertNotCalled(t, "CreateEnrollment")
}

func TestService_Signup_AlreadyEnrolled(t *testing.T) {
	cr := new(MockClassRepo)
	mr := new(MockMembershipRepo)
	now := time.Date(2024, 1, 17, 10, 0, 0, 0, time.UTC)
	date := time.Date(2024, 1, 20, 18, 0, 0, 0, time.UTC)

	cr.On("GetSessionByID", mock.Anything, 3).
		Return(&ClassSession{ID: 3, Date: date, Capacity: 10}, nil)
	cr.On("CountEnrollments", mock.Anything, 3).Return(2, nil)
	mr.On("GetActiveForUser", mock.Anything, 1, mock.Anything).Return(activeMembership(), nil)
	cr.On("CreateEnrollment", mock.Anything, 1, 3, now).Return(nil, ErrAlreadyEnrolled)

	svc := newTestService(cr, mr, now)
	_, _, err := svc.Signup(context.Background(), 1, 3)

	assert.ErrorIs(t, err, ErrAlreadyEnrolled)
}

func TestService_Signup_ClassNotFound(t *testing.T) {
	cr := new(MockClassRepo)

	cr.On("GetSessionByID", mock.Anything, 99).Return(nil, ErrClassNotFound)

	svc := newTestService(cr, new(MockMembershipRepo), time.Now())
	_, _, err := svc.Signup(context.Background(), 1, 99)

	assert.ErrorIs(t, err, ErrClassNotFound)
}

func TestService_Cancel(t *testing.T) {
	cr := new(MockClassRepo)
	now := time.Date(2024, 1, 17, 10, 0, 0, 0, time.UTC)
	date := time.Date(2024, 1, 20, 18, 0, 0, 0, time.UTC)

	cr.On("GetSessionByID", mock.Anything, 3).
		Return(&ClassSession{ID: 3, Date: date, Capacity: 10}, nil)
	cr.On("DeleteEnrollment", mock.Anything, 1, 3).Return(nil)

	svc := newTestService(cr, new(MockMembershipRepo), now)
	err := svc.Cancel(context.Background(), 1, 3)

	assert.NoError(t, err)
	cr.AssertExpectations(t)
}

func TestService_Cancel_TooLate(t *testing.T) {
	cr := new(MockClassRepo)
	now := time.Date(2024, 1, 21, 10, 0, 0, 0, time.UTC)
	date := time.Date(2024, 1, 20, 18, 0, 0, 0, time.UTC)

	cr.On("GetSessionByID", mock.Anything, 3).
		Return(&ClassSession{ID: 3, Date: date, Capacity: 10}, nil)

	svc := newTestService(cr, new(MockMembershipRepo), now)
	err := svc.Cancel(context.Background(), 1, 3)

	// The past-class check outranks enrollment lookup, so not even an
	// enrolled member gets a NotEnrolled answer here.
	assert.ErrorIs(t, err, ErrTooLateToCancel)
	cr.AssertNotCalled(t, "DeleteEnrollment")
}

func TestService_Cancel_NotEnrolled(t *testing.T) {
	cr := new(MockClassRepo)
	now := time.Date(2024, 1, 17, 10, 0, 0, 0, time.UTC)
	date := time.Date(2024, 1, 20, 18, 0, 0, 0, time.UTC)

	cr.On("GetSessionByID", mock.Anything, 3).
		Return(&ClassSession{ID: 3, Date: date, Capacity: 10}, nil)
	cr.On("DeleteEnrollment", mock.Anything, 1, 3).Return(ErrNotEnrolled)

	svc := newTestService(cr, new(MockMembershipRepo), now)
	err := svc.Cancel(context.Background(), 1, 3)

	assert.ErrorIs(t, err, ErrNotEnrolled)
}
