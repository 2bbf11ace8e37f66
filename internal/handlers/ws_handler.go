package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/apetrov/socialhub/backend/internal/delivery"
	"github.com/apetrov/socialhub/backend/internal/ws"
	"github.com/apetrov/socialhub/backend/pkg/logger"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WSHandler upgrades HTTP requests to websocket connections and runs the
// per-connection receive loop.
type WSHandler struct {
	registry *ws.Registry
	router   *delivery.Router
}

// NewWSHandler creates a new WSHandler
func NewWSHandler(registry *ws.Registry, router *delivery.Router) *WSHandler {
	return &WSHandler{registry: registry, router: router}
}

// RegisterWSRoutes registers the websocket endpoint
func (h *WSHandler) RegisterWSRoutes(e *echo.Echo) {
	e.GET("/ws", h.HandleWS)
}

// HandleWS upgrades the connection and serves it until the peer goes away.
// Each connection gets its own loop; inbound frames are processed in order
// for that sender, while different connections interleave freely.
func (h *WSHandler) HandleWS(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", zap.Error(err))
		return nil
	}

	client := ws.NewClient(conn)
	defer func() {
		h.registry.Unregister(client)
		client.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Debug("websocket closed by peer", zap.Error(err))
			} else {
				logger.Warn("websocket read error", zap.Error(err))
			}
			return nil
		}

		var frame ws.Inbound
		if err := json.Unmarshal(data, &frame); err != nil {
			logger.Warn("malformed websocket frame", zap.Error(err))
			continue
		}

		// Any frame carrying a userId (re)binds this connection to that
		// user; the register payload is such a frame with no type.
		if frame.UserID != 0 {
			h.registry.Register(frame.UserID, client)
		}

		if frame.Type != "message" {
			continue
		}

		// The router acks the sender over this same registered connection
		// once the message is persisted, before the receiver push.
		if _, err := h.router.SendMessage(frame.UserID, frame.ReceiverID, frame.Content); err != nil {
			// Malformed or unpersistable sends are dropped without an ack;
			// the client treats the silence as transient and may retry.
			logger.Warn("websocket send rejected",
				zap.Uint("senderId", frame.UserID),
				zap.Uint("receiverId", frame.ReceiverID),
				zap.Error(err))
		}
	}
}
