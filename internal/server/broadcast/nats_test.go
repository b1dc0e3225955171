package broadcast

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/dmitrijs2005/blogapi/internal/common"
	"github.com/dmitrijs2005/blogapi/internal/server/models"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runServer(t *testing.T) *server.Server {
	t.Helper()
	ns, err := server.NewServer(&server.Options{
		Host:   "127.0.0.1",
		Port:   -1,
		NoLog:  true,
		NoSigs: true,
	})
	require.NoError(t, err)

	go ns.Start()
	if !ns.ReadyForConnections(5 * time.Second) {
		ns.Shutdown()
		t.Fatal("embedded NATS server failed to start")
	}
	t.Cleanup(func() {
		ns.Shutdown()
		ns.WaitForShutdown()
	})
	return ns
}

func TestNATSPublisher_PublishesJSONOnSubject(t *testing.T) {
	ns := runServer(t)

	sub, err := nats.Connect(ns.ClientURL())
	require.NoError(t, err)
	defer sub.Close()

	msgs := make(chan *nats.Msg, 4)
	s, err := sub.ChanSubscribe(Subject(common.BlogsChannel, common.NewBlogEvent), msgs)
	require.NoError(t, err)
	defer s.Unsubscribe()
	require.NoError(t, sub.Flush())

	p, err := NewNATSPublisher(ns.ClientURL())
	require.NoError(t, err)
	defer p.Close()

	blog := &models.Blog{ID: "b-1", Title: "T", Snippet: "S", Body: "B"}
	err = p.Publish(context.Background(), common.BlogsChannel, common.NewBlogEvent,
		NewBlogPayload{Message: NewBlogMessage, Blog: blog})
	require.NoError(t, err)

	select {
	case msg := <-msgs:
		assert.Equal(t, "blogs-channel.new-blog", msg.Subject)
		var got NewBlogPayload
		require.NoError(t, json.Unmarshal(msg.Data, &got))
		assert.Equal(t, NewBlogMessage, got.Message)
		assert.Equal(t, "T", got.Blog.Title)
		assert.Equal(t, "b-1", got.Blog.ID)
	case <-time.After(3 * time.Second):
		t.Fatal("no message received")
	}

	select {
	case extra := <-msgs:
		t.Fatalf("unexpected second message: %s", extra.Data)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestNATSPublisher_CancelledContext(t *testing.T) {
	ns := runServer(t)

	p, err := NewNATSPublisher(ns.ClientURL())
	require.NoError(t, err)
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = p.Publish(ctx, "c", "e", map[string]string{"k": "v"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestNATSPublisher_MarshalError(t *testing.T) {
	ns := runServer(t)

	p, err := NewNATSPublisher(ns.ClientURL())
	require.NoError(t, err)
	defer p.Close()

	err = p.Publish(context.Background(), "c", "e", make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "marshal message")
}

func TestNewNATSPublisher_ConnectError(t *testing.T) {
	_, err := NewNATSPublisher("nats://127.0.0.1:1", nats.Timeout(200*time.Millisecond))
	require.Error(t, err)
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), "c", "e", nil))
	assert.NoError(t, p.Close())
}
