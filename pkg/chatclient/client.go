package chatclient

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/apetrov/socialhub/backend/internal/models"
	"github.com/apetrov/socialhub/backend/internal/ws"
	"github.com/apetrov/socialhub/backend/pkg/logger"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ErrNotConnected is returned by Send while the channel is down
var ErrNotConnected = errors.New("chatclient: not connected")

const reconnectInterval = 5 * time.Second

// Options tune a Client beyond the required url and user id
type Options struct {
	// Store receives merged chat messages; a nil Store gets replaced with
	// a fresh one.
	Store *ConversationStore
	// OnUpdate fires after the store changed and the view should re-render.
	OnUpdate func()
	// OnNotification fires on pushed notifications. Notifications are not
	// merged locally; the callback is expected to refetch the unread
	// counts and notification list.
	OnNotification func(models.EnrichedNotification)
	// RetryInterval overrides the fixed wait between redials. Zero means
	// the default five seconds.
	RetryInterval time.Duration
}

// Client maintains the live channel to the server: it dials, registers the
// user, feeds pushed messages into the ConversationStore and reopens the
// connection on a fixed interval after any close.
type Client struct {
	url    string
	userID uint
	opts   Options

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewClient creates a client for the given websocket URL and user
func NewClient(url string, userID uint, opts Options) *Client {
	if opts.Store == nil {
		opts.Store = NewConversationStore()
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = reconnectInterval
	}
	return &Client{url: url, userID: userID, opts: opts}
}

// Store returns the conversation store the client merges into
func (c *Client) Store() *ConversationStore {
	return c.opts.Store
}

// Run dials and serves the channel until ctx is cancelled. Every close,
// clean or not, is followed by a redial after the retry interval; the
// loop never gives up on its own.
func (c *Client) Run(ctx context.Context) {
	for {
		if err := c.connectAndServe(ctx); err != nil {
			logger.Warn("chat channel closed", zap.Uint("userId", c.userID), zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(c.opts.RetryInterval):
		}
	}
}

func (c *Client) connectAndServe(ctx context.Context) error {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, c.url, nil)
	cancel()
	if err != nil {
		return err
	}

	// Re-register on every open so the server rebinds the new channel.
	// The connection is published only after this write, so Send can never
	// interleave with the register frame.
	if err := conn.WriteJSON(ws.Inbound{UserID: c.userID}); err != nil {
		conn.Close()
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		conn.Close()
	}()

	logger.Info("chat channel open", zap.Uint("userId", c.userID))

	// Drop the connection when ctx is cancelled so ReadJSON unblocks
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var event ws.Event
		if err := conn.ReadJSON(&event); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		c.dispatch(event)
	}
}

func (c *Client) dispatch(event ws.Event) {
	switch event.Type {
	case ws.EventMessageSent, ws.EventMessageReceived:
		if event.Message == nil {
			return
		}
		if c.opts.Store.Merge(*event.Message) && c.opts.OnUpdate != nil {
			c.opts.OnUpdate()
		}
	case ws.EventNotification:
		if event.Notification != nil && c.opts.OnNotification != nil {
			c.opts.OnNotification(*event.Notification)
		}
	default:
		logger.Debug("unknown channel event", zap.String("type", event.Type))
	}
}

// Send writes a chat send frame over the live channel. The server's ack
// comes back asynchronously as a message_sent event. The mutex is held
// across the write: gorilla connections allow one writer at a time.
func (c *Client) Send(receiverID uint, content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return ErrNotConnected
	}
	return c.conn.WriteJSON(ws.Inbound{
		Type:       "message",
		UserID:     c.userID,
		ReceiverID: receiverID,
		Content:    content,
	})
}
