package class

import (
	"context"
	"time"
)

type Repository interface {
	CreateSession(ctx context.Context, name string, date time.Time, capacity int) (*ClassSession, error)
	GetSessionByID(ctx context.Context, id int) (*ClassSession, error)
	DeleteSession(ctx context.Context, id int) error
	ListUpcoming(ctx context.Context, userID int, after time.Time) ([]SessionWithAvailability, error)
	CountEnrollments(ctx context.Context, classSessionID int) (int, error)
	CreateEnrollment(ctx context.Context, userID, classSessionID int, signupDate time.Time) (*Enrollment, error)
	DeleteEnrollment(ctx context.Context, userID, classSessionID int) error
}
