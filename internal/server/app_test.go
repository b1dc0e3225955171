package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/blogapi/internal/logging"
	"github.com/dmitrijs2005/blogapi/internal/server/broadcast"
	"github.com/dmitrijs2005/blogapi/internal/server/config"
	"github.com/dmitrijs2005/blogapi/internal/server/mailer"
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.SecretKey = "secret"
	return c
}

func TestNewMailer_FallsBackToLog(t *testing.T) {
	m, err := newMailer(testConfig(), logging.Nop{})
	require.NoError(t, err)
	assert.IsType(t, &mailer.LogMailer{}, m)
}

func TestNewMailer_SMTP(t *testing.T) {
	c := testConfig()
	c.MailHost = "smtp.example.com"
	c.MailUser = "noreply@example.com"
	c.MailTimeout = time.Second

	m, err := newMailer(c, logging.Nop{})
	require.NoError(t, err)
	assert.IsType(t, &mailer.SMTPMailer{}, m)
}

func TestNewPublisher(t *testing.T) {
	c := testConfig()

	p, err := newPublisher(c)
	require.NoError(t, err)
	assert.IsType(t, broadcast.Nop{}, p)

	c.BroadcastDriver = config.BroadcastPusher
	c.PusherAppID, c.PusherKey, c.PusherSecret = "1", "key", "secret"
	p, err = newPublisher(c)
	require.NoError(t, err)
	assert.IsType(t, &broadcast.PusherPublisher{}, p)

	c.BroadcastDriver = "smoke-signals"
	_, err = newPublisher(c)
	require.Error(t, err)
}

func TestNewPublisher_NATSUnreachable(t *testing.T) {
	c := testConfig()
	c.BroadcastDriver = config.BroadcastNATS
	c.NATSURL = "nats://127.0.0.1:1"

	_, err := newPublisher(c)
	require.Error(t, err)
}
