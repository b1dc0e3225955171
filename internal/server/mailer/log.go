package mailer

import (
	"context"

	"github.com/dmitrijs2005/blogapi/internal/logging"
)

// LogMailer writes messages to the log instead of sending them. It is used
// when no SMTP host is configured.
type LogMailer struct {
	log logging.Logger
}

func NewLogMailer(log logging.Logger) *LogMailer {
	return &LogMailer{log: log}
}

// Send logs the recipient and subject at Info. The body may carry a live
// verification link, so it is only logged at Debug.
func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.log.Info(ctx, "mail not sent, no SMTP host configured", "to", msg.To, "subject", msg.Subject)
	m.log.Debug(ctx, "unsent mail body", "to", msg.To, "body", msg.Body)
	return nil
}
