package domain

import "time"

// Session is the result of a successful sign-in.
type Session struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
	User      *User
}
