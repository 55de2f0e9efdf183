package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/teamchat/internal/models"
)

func dial(t *testing.T, hub *Hub, channelID uint) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Serve(r.Context(), conn, channelID, 1)
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return hub.Subscribers(channelID) == 1 }, time.Second, 10*time.Millisecond)
	return conn
}

func TestHub_DeliversToChannelSubscribers(t *testing.T) {
	hub := NewHub()
	conn := dial(t, hub, 5)

	hub.NotifyMessage(context.Background(), models.Message{ID: 1, Text: "other channel", ChannelID: 6})
	hub.NotifyMessage(context.Background(), models.Message{ID: 2, Text: "hello", ChannelID: 5, UserID: 1})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, "message", env.Type)
	require.NotNil(t, env.Message)
	assert.Equal(t, uint(2), env.Message.ID)
	assert.Equal(t, "hello", env.Message.Text)
}

func TestHub_UnregistersOnClose(t *testing.T) {
	hub := NewHub()
	conn := dial(t, hub, 9)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Subscribers(9) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_DropsSlowClients(t *testing.T) {
	hub := NewHub()
	c := &Client{hub: hub, send: make(chan []byte, 1), ChannelID: 3}
	hub.register(c)

	hub.Broadcast(3, []byte("one"))
	hub.Broadcast(3, []byte("two"))

	assert.Equal(t, 0, hub.Subscribers(3))
	first, ok := <-c.send
	assert.True(t, ok)
	assert.Equal(t, []byte("one"), first)
	_, ok = <-c.send
	assert.False(t, ok)
}
