package websocket

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"lostfound/internal/domain/entity"
	"lostfound/pkg/logger"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// Event types pushed to connected clients.
const (
	EventTypeNewMessage = "new_message"
)

// Event is the JSON envelope written to websocket peers.
type Event struct {
	Type      string          `json:"type"`
	Data      *entity.Message `json:"data"`
	Timestamp string          `json:"timestamp"`
}

// Client bridges one conversation subscription to one websocket connection.
// When either side drops, the other is torn down with it.
type Client struct {
	Conn *websocket.Conn
	Sub  *Subscription

	// Delivered is invoked after an event is written to the peer; the handler
	// uses it to mark inbound messages read while the thread is open.
	Delivered func(message *entity.Message)
}

// ReadPump consumes the connection until the peer goes away, then closes the
// subscription. Inbound frames carry no protocol; the read side exists to
// detect disconnects and answer pings.
func (c *Client) ReadPump() {
	defer func() {
		c.Sub.Close()
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("Websocket read error for user %s: %v", c.Sub.UserID(), err)
			}
			break
		}
	}
}

// WritePump streams subscription events to the peer with keepalive pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Sub.Close()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Sub.Events():
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			payload, err := json.Marshal(Event{
				Type:      EventTypeNewMessage,
				Data:      message,
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			})
			if err != nil {
				logger.Error("Failed to marshal websocket event: %v", err)
				continue
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				logger.Warn("Websocket write error for user %s: %v", c.Sub.UserID(), err)
				return
			}

			if c.Delivered != nil {
				c.Delivered(message)
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
