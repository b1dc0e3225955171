// Package broadcast publishes real-time events to subscribers through a
// push service: NATS or Pusher, selected by configuration.
package broadcast

import (
	"context"

	"github.com/dmitrijs2005/blogapi/internal/server/models"
)

// Publisher delivers one event on a channel. Implementations must honour
// ctx cancellation so callers can bound the wait.
type Publisher interface {
	Publish(ctx context.Context, channel, event string, payload any) error
	Close() error
}

// NewBlogMessage is the human-readable part of the new-blog event.
const NewBlogMessage = "A new blog has been created!"

// NewBlogPayload is the body of the new-blog event.
type NewBlogPayload struct {
	Message string       `json:"message"`
	Blog    *models.Blog `json:"blog"`
}

// Nop drops every event. It is used when no broadcast driver is configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, string, any) error { return nil }
func (Nop) Close() error                                       { return nil }
