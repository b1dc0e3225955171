package models

import "time"

// Session is the server-side record behind the session cookie. It only
// backs logout; protected routes authenticate with bearer tokens.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
