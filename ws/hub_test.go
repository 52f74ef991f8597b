package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func startHub(t *testing.T) (*Hub, *httptest.Server, context.CancelFunc) {
	t.Helper()
	hub := NewHub("*")
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(func() {
		cancel()
		server.Close()
	})
	return hub, server, cancel
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMsg(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read message: %v", err)
	}
	var msg map[string]any
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("failed to parse message: %v", err)
	}
	return msg
}

func subscribe(t *testing.T, conn *websocket.Conn, views ...string) {
	t.Helper()
	if views == nil {
		views = []string{}
	}
	if err := conn.WriteJSON(SubscribeMsg{Type: "subscribe", Views: views}); err != nil {
		t.Fatalf("failed to send subscribe: %v", err)
	}
	if msg := readMsg(t, conn); msg["type"] != "subscribed" {
		t.Fatalf("expected subscribed ack, got %v", msg)
	}
}

func views(msg map[string]any) []string {
	raw, _ := msg["views"].([]any)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		s, _ := v.(string)
		out = append(out, s)
	}
	return out
}

func TestHub_BroadcastsToAllByDefault(t *testing.T) {
	hub, server, _ := startHub(t)
	conn := dial(t, server)
	subscribe(t, conn)

	hub.Invalidate("home", "roster")

	msg := readMsg(t, conn)
	if msg["type"] != "invalidate" || !slices.Equal(views(msg), []string{"home", "roster"}) {
		t.Errorf("unexpected message %v", msg)
	}
}

func TestHub_FiltersBySubscription(t *testing.T) {
	hub, server, _ := startHub(t)
	conn := dial(t, server)
	subscribe(t, conn, "player:42")

	hub.Invalidate("home")
	hub.Invalidate("home", "player:42")

	msg := readMsg(t, conn)
	if got := views(msg); !slices.Contains(got, "player:42") {
		t.Errorf("expected the player invalidation first, got %v", got)
	}
}

func TestHub_UnknownMessageType(t *testing.T) {
	_, server, _ := startHub(t)
	conn := dial(t, server)

	conn.WriteJSON(map[string]string{"type": "flip_card"})
	msg := readMsg(t, conn)
	if msg["type"] != "error" || !strings.Contains(msg["message"].(string), "flip_card") {
		t.Errorf("expected error for unknown type, got %v", msg)
	}
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	_, server, cancel := startHub(t)
	conn := dial(t, server)
	subscribe(t, conn)

	cancel()

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				t.Fatalf("connection still open after shutdown: %v", err)
			}
			return
		}
	}
}

func TestHub_InvalidateAfterStopDoesNotBlock(t *testing.T) {
	hub, _, cancel := startHub(t)
	cancel()
	<-hub.done

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.Invalidate("home")
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Invalidate blocked after the hub stopped")
	}
}
