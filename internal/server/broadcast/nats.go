package broadcast

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes JSON events on the subject "<channel>.<event>".
type NATSPublisher struct {
	nc *nats.Conn
}

// NewNATSPublisher connects to url. Extra options are passed to nats.Connect.
func NewNATSPublisher(url string, opts ...nats.Option) (*NATSPublisher, error) {
	opts = append([]nats.Option{nats.Name("blogapi")}, opts...)
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &NATSPublisher{nc: nc}, nil
}

// Subject returns the NATS subject for an event on channel.
func Subject(channel, event string) string {
	return channel + "." + event
}

// Publish sends the event and waits for the server to acknowledge the
// flush, so a dead connection surfaces as an error within ctx.
func (p *NATSPublisher) Publish(ctx context.Context, channel, event string, payload any) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before publish: %w", err)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := p.nc.Publish(Subject(channel, event), data); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	if err := p.nc.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

func (p *NATSPublisher) Close() error {
	if err := p.nc.Drain(); err != nil {
		p.nc.Close()
		return err
	}
	return nil
}
