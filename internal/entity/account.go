package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/attendance-tracker/constants"
)

// User is a dashboard account.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	FullName     string     `json:"full_name"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

// Holiday is a user-declared day without classes.
type Holiday struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// AttendanceRecord is one logged class outcome.
type AttendanceRecord struct {
	ID        uuid.UUID                  `json:"id"`
	UserID    uuid.UUID                  `json:"user_id"`
	Date      string                     `json:"date"` // YYYY-MM-DD
	Subject   string                     `json:"subject,omitempty"`
	Status    constants.AttendanceStatus `json:"status"`
	Notes     string                     `json:"notes,omitempty"`
	CreatedAt time.Time                  `json:"created_at"`
}
