package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	// Time allowed to write a frame to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the peer
	pongWait = 60 * time.Second

	// Ping interval; must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound frame size. Code buffers travel in full, so this
	// is generous.
	maxMessageSize = 1 << 20

	// Outbound frame buffer per connection
	sendBufferSize = 256
)

// Client is one authenticated realtime connection. The identity decoded
// from the connection credential is pinned here for the connection's
// lifetime.
type Client struct {
	UserID uuid.UUID
	Name   string
	Color  string

	conn   *websocket.Conn
	broker *Broker
	send   chan []byte

	mu    sync.Mutex
	rooms map[string]struct{}
}

// NewClient wraps an upgraded connection with its authenticated identity
func NewClient(broker *Broker, conn *websocket.Conn, userID uuid.UUID, name string) *Client {
	return &Client{
		UserID: userID,
		Name:   name,
		Color:  ColorFor(userID.String()),
		conn:   conn,
		broker: broker,
		send:   make(chan []byte, sendBufferSize),
		rooms:  make(map[string]struct{}),
	}
}

// Run starts the read and write pumps and blocks until the connection
// closes.
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

func (c *Client) addRoom(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rooms[sessionID] = struct{}{}
}

func (c *Client) removeRoom(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rooms, sessionID)
}

func (c *Client) roomList() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	sessions := make([]string, 0, len(c.rooms))
	for id := range c.rooms {
		sessions = append(sessions, id)
	}
	return sessions
}

// trySend queues a frame without blocking. A full buffer means the
// recipient is too slow or transiently gone; the frame is dropped.
func (c *Client) trySend(frame []byte) {
	select {
	case c.send <- frame:
	default:
		log.Warn().
			Str("user_id", c.UserID.String()).
			Msg("Dropping frame for slow realtime client")
	}
}

// sendEvent marshals and queues a frame for this client only
func (c *Client) sendEvent(event string, data any) {
	frame, err := Encode(event, data)
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("Failed to encode frame")
		return
	}
	c.trySend(frame)
}

// sendError emits a scoped error to this connection only
func (c *Client) sendError(message string) {
	c.sendEvent(MsgError, ErrorNotice{Message: message})
}

func (c *Client) readPump() {
	defer func() {
		c.broker.disconnect(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("user_id", c.UserID.String()).Msg("Realtime read error")
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.sendError("invalid message frame")
			continue
		}

		c.broker.dispatch(c, env)
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
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
