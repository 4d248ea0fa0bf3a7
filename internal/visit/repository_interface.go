package visit

import (
	"context"
	"time"
)

type Repository interface {
	OpenVisit(ctx context.Context, userID int, entryTime time.Time, cutoff time.Duration, weeklyLimit *int, weekStart time.Time) (*Visit, int, int, error)
	CloseOpenVisit(ctx context.Context, userID int, exitTime time.Time) (*Visit, error)
	GetOpenVisit(ctx context.Context, userID int) (*Visit, error)
	CountSince(ctx context.Context, userID int, since time.Time) (int, error)
	SweepStale(ctx context.Context, now time.Time, cutoff time.Duration) (int, error)
	ListRecentByUser(ctx context.Context, userID, limit int) ([]Visit, error)
}
