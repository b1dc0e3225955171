package broadcast

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pusher/pusher-http-go/v5"
)

// PusherConfig holds the Pusher Channels application credentials.
type PusherConfig struct {
	AppID   string
	Key     string
	Secret  string
	Cluster string
	Timeout time.Duration
}

// PusherPublisher triggers events through the Pusher Channels HTTP API.
type PusherPublisher struct {
	client *pusher.Client
}

func NewPusherPublisher(cfg PusherConfig) *PusherPublisher {
	client := &pusher.Client{
		AppID:   cfg.AppID,
		Key:     cfg.Key,
		Secret:  cfg.Secret,
		Cluster: cfg.Cluster,
		Secure:  true,
	}
	if cfg.Timeout > 0 {
		client.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &PusherPublisher{client: client}
}

// Publish triggers the event. The Pusher client has no context support, so
// the call runs in its own goroutine and Publish returns when either the
// trigger finishes or ctx is done.
func (p *PusherPublisher) Publish(ctx context.Context, channel, event string, payload any) error {
	done := make(chan error, 1)
	go func() {
		done <- p.client.Trigger(channel, event, payload)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("pusher trigger: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("pusher trigger: %w", ctx.Err())
	}
}

func (p *PusherPublisher) Close() error { return nil }
