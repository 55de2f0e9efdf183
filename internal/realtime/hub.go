package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Skotchmaster/teamchat/internal/logging"
	"github.com/Skotchmaster/teamchat/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 256
)

// Hub fans out new channel messages to the websocket clients watching that
// channel.
type Hub struct {
	mu       sync.RWMutex
	channels map[uint]map[*Client]struct{}
}

type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	ChannelID uint
	UserID    uint
}

type Envelope struct {
	Type    string          `json:"type"`
	Message *models.Message `json:"message,omitempty"`
}

func NewHub() *Hub {
	return &Hub{channels: make(map[uint]map[*Client]struct{})}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.channels[c.ChannelID]
	if !ok {
		subs = make(map[*Client]struct{})
		h.channels[c.ChannelID] = subs
	}
	subs[c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *Client) {
	subs, ok := h.channels[c.ChannelID]
	if !ok {
		return
	}
	if _, ok := subs[c]; !ok {
		return
	}
	delete(subs, c)
	close(c.send)
	if len(subs) == 0 {
		delete(h.channels, c.ChannelID)
	}
}

// Subscribers returns how many clients watch the channel.
func (h *Hub) Subscribers(channelID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channelID])
}

// Broadcast queues payload for every client of the channel. Clients whose
// buffer is full are dropped.
func (h *Hub) Broadcast(channelID uint, payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.channels[channelID] {
		select {
		case c.send <- payload:
		default:
			h.removeLocked(c)
		}
	}
}

func (h *Hub) NotifyMessage(ctx context.Context, msg models.Message) {
	payload, err := json.Marshal(Envelope{Type: "message", Message: &msg})
	if err != nil {
		logging.FromContext(ctx).Error("realtime_encode_failed", "channel_id", msg.ChannelID, "error", err)
		return
	}
	h.Broadcast(msg.ChannelID, payload)
}

// Serve registers conn for the channel and blocks until the connection
// closes.
func (h *Hub) Serve(ctx context.Context, conn *websocket.Conn, channelID, userID uint) {
	c := &Client{hub: h, conn: conn, send: make(chan []byte, sendBuffer), ChannelID: channelID, UserID: userID}
	h.register(c)

	l := logging.FromContext(ctx).With("channel_id", channelID, "user_id", userID)
	l.Info("realtime_client_connected")

	go c.writePump()
	c.readPump(l)
	l.Info("realtime_client_disconnected")
}

// readPump discards inbound frames; it only keeps the deadline moving and
// notices when the peer goes away.
func (c *Client) readPump(l *logging.Logger) {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				l.Warn("realtime_read_failed", "error", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
