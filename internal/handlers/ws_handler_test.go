package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/apetrov/socialhub/backend/internal/ws"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

func dialWS(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) ws.Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var event ws.Event
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read event: %v", err)
	}
	return event
}

func TestWSHandler_SendAndPush(t *testing.T) {
	d := setupHandlerDeps(t)
	h := NewWSHandler(d.registry, d.deliveryRouter)

	e := echo.New()
	h.RegisterWSRoutes(e)
	server := httptest.NewServer(e)
	defer server.Close()

	// Bob connects and registers; a self-send doubles as the barrier that
	// proves the registration frame was processed.
	bob := dialWS(t, server)
	defer bob.Close()
	if err := bob.WriteJSON(ws.Inbound{UserID: 2}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := bob.WriteJSON(ws.Inbound{Type: "message", UserID: 2, ReceiverID: 2, Content: "warmup"}); err != nil {
		t.Fatalf("warmup send: %v", err)
	}
	for {
		event := readEvent(t, bob)
		if event.Type == ws.EventMessageSent && event.Message.Content == "warmup" {
			break
		}
	}

	// Alice sends through the same pipeline the REST path uses
	if _, err := d.deliveryRouter.SendMessage(1, 2, "hello over the wire"); err != nil {
		t.Fatalf("send: %v", err)
	}

	var gotMessage, gotNotification bool
	for !gotMessage || !gotNotification {
		event := readEvent(t, bob)
		switch event.Type {
		case ws.EventMessageReceived:
			if event.Message.SenderID == 2 {
				continue // warmup echo
			}
			if event.Message.Content != "hello over the wire" || event.Message.SenderID != 1 {
				t.Fatalf("unexpected pushed message %+v", event.Message)
			}
			if event.Message.Sender.Username != "alice" {
				t.Fatalf("expected enriched sender, got %+v", event.Message.Sender)
			}
			gotMessage = true
		case ws.EventNotification:
			if event.Notification.ActorID == 1 {
				gotNotification = true
			}
		}
	}
}

func TestWSHandler_AckPrecedesPush(t *testing.T) {
	d := setupHandlerDeps(t)
	h := NewWSHandler(d.registry, d.deliveryRouter)

	e := echo.New()
	h.RegisterWSRoutes(e)
	server := httptest.NewServer(e)
	defer server.Close()

	// On a self-send both the ack and the push arrive on the same
	// connection; the ack must come first.
	conn := dialWS(t, server)
	defer conn.Close()
	if err := conn.WriteJSON(ws.Inbound{UserID: 2}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := conn.WriteJSON(ws.Inbound{Type: "message", UserID: 2, ReceiverID: 2, Content: "note"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	first := readEvent(t, conn)
	if first.Type != ws.EventMessageSent {
		t.Fatalf("expected message_sent first, got %q", first.Type)
	}
	second := readEvent(t, conn)
	if second.Type != ws.EventMessageReceived {
		t.Fatalf("expected message_received after the ack, got %q", second.Type)
	}
	if first.Message.ID != second.Message.ID {
		t.Fatalf("ack id %d does not match push id %d", first.Message.ID, second.Message.ID)
	}
}

func TestWSHandler_SendBetweenTwoConnections(t *testing.T) {
	d := setupHandlerDeps(t)
	h := NewWSHandler(d.registry, d.deliveryRouter)

	e := echo.New()
	h.RegisterWSRoutes(e)
	server := httptest.NewServer(e)
	defer server.Close()

	bob := dialWS(t, server)
	defer bob.Close()
	if err := bob.WriteJSON(ws.Inbound{UserID: 2}); err != nil {
		t.Fatalf("register bob: %v", err)
	}
	// Wait until the server has bound bob's connection
	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, online := d.registry.Lookup(2); online {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("bob never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	alice := dialWS(t, server)
	defer alice.Close()
	if err := alice.WriteJSON(ws.Inbound{Type: "message", UserID: 1, ReceiverID: 2, Content: "hi bob"}); err != nil {
		t.Fatalf("alice send: %v", err)
	}

	// Alice gets the ack, bob gets the push; both carry the same message id
	ack := readEvent(t, alice)
	if ack.Type != ws.EventMessageSent || ack.Message.Content != "hi bob" {
		t.Fatalf("unexpected ack %+v", ack)
	}

	push := readEvent(t, bob)
	if push.Type != ws.EventMessageReceived {
		t.Fatalf("expected message_received, got %+v", push)
	}
	if push.Message.ID != ack.Message.ID {
		t.Fatalf("push id %d does not match ack id %d", push.Message.ID, ack.Message.ID)
	}
}

func TestWSHandler_MalformedSendGetsNoAck(t *testing.T) {
	d := setupHandlerDeps(t)
	h := NewWSHandler(d.registry, d.deliveryRouter)

	e := echo.New()
	h.RegisterWSRoutes(e)
	server := httptest.NewServer(e)
	defer server.Close()

	conn := dialWS(t, server)
	defer conn.Close()

	// Empty content is dropped with no ack
	if err := conn.WriteJSON(ws.Inbound{Type: "message", UserID: 1, ReceiverID: 2, Content: "   "}); err != nil {
		t.Fatalf("send: %v", err)
	}
	// A valid follow-up send is the probe: its ack must be the first and
	// only event we receive.
	if err := conn.WriteJSON(ws.Inbound{Type: "message", UserID: 1, ReceiverID: 2, Content: "valid"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	event := readEvent(t, conn)
	if event.Type != ws.EventMessageSent || event.Message.Content != "valid" {
		t.Fatalf("expected ack only for the valid send, got %+v", event)
	}

	messages, _ := d.messageRepo.GetMessagesForPair(1, 2)
	if len(messages) != 1 {
		t.Fatalf("malformed send must not persist, got %d messages", len(messages))
	}
}

func TestWSHandler_UnregistersOnClose(t *testing.T) {
	d := setupHandlerDeps(t)
	h := NewWSHandler(d.registry, d.deliveryRouter)

	e := echo.New()
	h.RegisterWSRoutes(e)
	server := httptest.NewServer(e)
	defer server.Close()

	conn := dialWS(t, server)
	if err := conn.WriteJSON(ws.Inbound{UserID: 2}); err != nil {
		t.Fatalf("register: %v", err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, online := d.registry.Lookup(2); online {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("connection never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	conn.Close()
	deadline = time.Now().Add(5 * time.Second)
	for {
		if _, online := d.registry.Lookup(2); !online {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("connection never unregistered after close")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
