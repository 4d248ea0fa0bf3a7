package class

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aleksishere/wsb-GymManager/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockClassService struct{ mock.Mock }

func (m *MockClassService) CreateSession(ctx context.Context, req CreateClassRequest) (*ClassSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ClassSession), args.Error(1)
}

func (m *MockClassService) DeleteSession(ctx context.Context, classID int) error {
	args := m.Called(ctx, classID)
	return args.Error(0)
}

func (m *MockClassService) ListUpcoming(ctx context.Context, userID int) ([]SessionWithAvailability, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]SessionWithAvailability), args.Error(1)
}

func (m *MockClassService) Signup(ctx context.Context, userID, classID int) (*Enrollment, *ClassSession, error) {
	args := m.Called(ctx, userID, classID)
	var e *Enrollment
	var s *ClassSession
	if args.Get(0) != nil {
		e = args.Get(0).(*Enrollment)
	}
	if args.Get(1) != nil {
		s = args.Get(1).(*ClassSession)
	}
	return e, s, args.Error(2)
}

func (m *MockClassService) Cancel(ctx context.Context, userID, classID int) error {
	args := m.Called(ctx, userID, classID)
	return args.Error(0)
}

// stubUserRepo satisfies user.Repository; only FindByID matters here.
type stubUserRepo struct{ u *user.User }

func (s *stubUserRepo) CreateWithProfile(ctx context.Context, name, email, passwordHash, role string, pesel *string) (*user.User, error) {
	return nil, errors.New("not implemented")
}
func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return nil, errors.New("not implemented")
}
func (s *stubUserRepo) FindByID(ctx context.Context, id int) (*user.User, error) {
	if s.u == nil {
		return nil, errors.New("not found")
	}
	return s.u, nil
}
func (s *stubUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	return false, nil
}
func (s *stubUserRepo) ListMembers(ctx context.Context) ([]user.User, error) {
	return nil, nil
}
func (s *stubUserRepo) FindProfileByUserID(ctx context.Context, userID int) (*user.Profile, error) {
	return nil, errors.New("not implemented")
}
func (s *stubUserRepo) FindByCardNumber(ctx context.Context, cardNumber string) (*user.User, error) {
	return nil, errors.New("not implemented")
}

type stubSender struct {
	enrollmentEmails int
}

func (s *stubSender) Send(ctx context.Context, to, name, subject, body, emailType string) error {
	return nil
}
func (s *stubSender) SendMembershipConfirmation(ctx context.Context, to, name, typeName string, expiration time.Time) error {
	return nil
}
func (s *stubSender) SendEnrollmentConfirmation(ctx context.Context, to, name, className string, classDate time.Time) error {
	s.enrollmentEmails++
	return nil
}

func setupClassRouter(svc Service, sender *stubSender) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	// Inject an authenticated member the way the auth middleware would.
	router.Use(func(c *gin.Context) {
		c.Set("user_id", 1)
		c.Set("user_role", "member")
	})

	h := NewHandler(svc, &stubUserRepo{u: &user.User{ID: 1, Name: "Anna", Email: "anna@example.com"}}, sender)
	router.GET("/classes", h.Schedule)
	router.POST("/classes", h.Create)
	router.POST("/classes/:classID/signup", h.Signup)
	router.DELETE("/classes/:classID/signup", h.Cancel)
	return router
}

func TestHandler_Signup_Created(t *testing.T) {
	svc := new(MockClassService)
	sender := &stubSender{}
	date := time.Now().Add(48 * time.Hour)

	svc.On("Signup", mock.Anything, 1, 3).Return(
		&Enrollment{ID: 20, UserID: 1, ClassSessionID: 3},
		&ClassSession{ID: 3, Name: "Yoga", Date: date, Capacity: 10},
		nil,
	)

	router := setupClassRouter(svc, sender)
	req := httptest.NewRequest("POST", "/classes/3/signup", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "Yoga")
	assert.Equal(t, 1, sender.enrollmentEmails)
}

func TestHandler_Signup_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", ErrClassNotFound, http.StatusNotFound},
		{"full", ErrClassFull, http.StatusConflict},
		{"duplicate", ErrAlreadyEnrolled, http.StatusConflict},
		{"no membership", ErrNoActiveMembership, http.StatusUnprocessableEntity},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockClassService)
			sender := &stubSender{}
			svc.On("Signup", mock.Anything, 1, 3).Return(nil, nil, tt.err)

			router := setupClassRouter(svc, sender)
			req := httptest.NewRequest("POST", "/classes/3/signup", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, 0, sender.enrollmentEmails)
		})
	}
}

func TestHandler_Cancel_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"success", nil, http.StatusOK},
		{"not found", ErrClassNotFound, http.StatusNotFound},
		{"too late", ErrTooLateToCancel, http.StatusConflict},
		{"not enrolled", ErrNotEnrolled, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockClassService)
			svc.On("Cancel", mock.Anything, 1, 3).Return(tt.err)

			router := setupClassRouter(svc, &stubSender{})
			req := httptest.NewRequest("DELETE", "/classes/3/signup", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestHandler_Create_PastDate(t *testing.T) {
	svc := new(MockClassService)
	svc.On("CreateSession", mock.Anything, mock.Anything).Return(nil, ErrClassInPast)

	router := setupClassRouter(svc, &stubSender{})
	body := `{"name": "Yoga", "date": "2020-01-01T10:00:00Z", "capacity": 10}`
	req := httptest.NewRequest("POST", "/classes", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_Schedule(t *testing.T) {
	svc := new(MockClassService)
	svc.On("ListUpcoming", mock.Anything, 1).Return([]SessionWithAvailability{}, nil)

	router := setupClassRouter(svc, &stubSender{})
	req := httptest.NewRequest("GET", "/classes", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
