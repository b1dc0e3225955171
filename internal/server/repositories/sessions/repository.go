// Package sessions declares the repository contract for the server-side
// session records that back the session cookie.
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/blogapi/internal/server/models"
)

// Repository defines operations for starting, looking up and ending sessions.
type Repository interface {
	// Create stores a new session for userID that expires after validity.
	Create(ctx context.Context, userID string, validity time.Duration) (*models.Session, error)

	// Find returns an unexpired session by id, or a not-found error.
	Find(ctx context.Context, id string) (*models.Session, error)

	// Delete removes a session by id. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteExpired removes every session past its expiry and reports how many.
	DeleteExpired(ctx context.Context) (int64, error)
}
