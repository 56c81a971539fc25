package model

import "time"

// Session binds an opaque bearer token to a user until ExpiresAt.
type Session struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	UserID    string    `json:"user_id" gorm:"size:36;not null;index"`
	Token     string    `json:"-" gorm:"size:64;not null;uniqueIndex"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`
}

// Active reports whether the session is still valid at now.
// A session whose expiry equals now is already expired.
func (s *Session) Active(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}
