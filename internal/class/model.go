package class

import "time"

type ClassSession struct {
	ID        int       `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Date      time.Time `db:"date" json:"date"`
	Capacity  int       `db:"capacity" json:"capacity"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Enrollment struct {
	ID             int       `db:"id" json:"id"`
	UserID         int       `db:"user_id" json:"user_id"`
	ClassSessionID int       `db:"class_session_id" json:"class_session_id"`
	SignupDate     time.Time `db:"signup_date" json:"signup_date"`
}

// SessionWithAvailability decorates a session with its roster counts
// and whether the requesting user is already on it.
type SessionWithAvailability struct {
	ClassSession
	ParticipantCount int  `db:"participant_count" json:"participant_count"`
	IsFull           bool `db:"is_full" json:"is_full"`
	Enrolled         bool `db:"enrolled" json:"enrolled"`
}

type CreateClassRequest struct {
	Name     string `json:"name" binding:"required"`
	Date     string `json:"date" binding:"required"`
	Capacity int    `json:"capacity" binding:"required,min=1"`
}

type SignupResponse struct {
	Enrollment *Enrollment `json:"enrollment"`
	ClassName  string      `json:"class_name"`
}
