package models

import "time"

// User is a registered account. PasswordHash is a bcrypt digest; the
// plaintext password is never stored.
type User struct {
	ID               string
	Name             string
	Email            string
	PasswordHash     string
	IsVerified       bool
	VerificationCode *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
