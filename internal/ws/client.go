package ws

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Sender is the delivery-side view of a live connection
type Sender interface {
	Send(event Event) error
}

// Client wraps one live websocket connection. Writes are serialized with a
// mutex because pushes come from other users' delivery pipelines while the
// ack path writes from the connection's own read loop.
type Client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// NewClient wraps an upgraded websocket connection
func NewClient(conn *websocket.Conn) *Client {
	return &Client{conn: conn}
}

// Send writes one event as a JSON text frame
func (c *Client) Send(event Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(event)
}

// Close closes the underlying connection
func (c *Client) Close() error {
	return c.conn.Close()
}
