// Package ws pushes view invalidations to connected browsers so pages refetch
// their statistics after a match is recorded or removed.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"striker-stats-server/wsutil"
)

type subscription struct {
	client *Client
	views  []string
}

// Hub maintains the set of active clients and fans out invalidations.
// All client bookkeeping happens on the Run goroutine.
type Hub struct {
	Clients    map[*Client]bool
	Register   chan *Client
	Unregister chan *Client

	subscribe chan subscription
	broadcast chan []byte
	done      chan struct{}
	upgrader  websocket.Upgrader
}

// NewHub creates a new Hub. allowedOrigin "*" (or empty) accepts any origin.
func NewHub(allowedOrigin string) *Hub {
	return &Hub{
		Clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		subscribe:  make(chan subscription),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" || allowedOrigin == "*" {
					return true
				}
				origin := r.Header.Get("Origin")
				return origin == "" || origin == allowedOrigin
			},
		},
	}
}

// Run starts the hub's main loop. Should be run as a goroutine.
// When ctx is cancelled (e.g. on server shutdown), Run closes every client and returns.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			slog.Info("shutdown signal received, stopping", "tag", "ws")
			for client := range h.Clients {
				delete(h.Clients, client)
				close(client.Send)
			}
			return

		case client := <-h.Register:
			h.Clients[client] = true
			slog.Debug("client connected", "tag", "ws", "clients", len(h.Clients))

		case client := <-h.Unregister:
			if _, ok := h.Clients[client]; ok {
				delete(h.Clients, client)
				close(client.Send)
				slog.Debug("client disconnected", "tag", "ws", "clients", len(h.Clients))
			}

		case sub := <-h.subscribe:
			if _, ok := h.Clients[sub.client]; ok {
				sub.client.setViews(sub.views)
				ack, _ := json.Marshal(SubscribedMsg{Type: "subscribed", Views: sub.views})
				wsutil.SafeSend(sub.client.Send, ack)
			}

		case data := <-h.broadcast:
			var msg InvalidateMsg
			if err := json.Unmarshal(data, &msg); err != nil {
				continue
			}
			for client := range h.Clients {
				if client.wants(msg.Views) {
					wsutil.SafeSend(client.Send, data)
				}
			}
		}
	}
}

// Invalidate notifies subscribed clients that views changed. It never blocks;
// when the hub is stopped or backlogged the notification is dropped.
func (h *Hub) Invalidate(views ...string) {
	if len(views) == 0 {
		return
	}
	data, err := json.Marshal(InvalidateMsg{Type: "invalidate", Views: views})
	if err != nil {
		return
	}
	select {
	case h.broadcast <- data:
	case <-h.done:
	default:
		slog.Warn("invalidation dropped", "tag", "ws", "views", len(views))
	}
}

// ServeWS handles WebSocket upgrade requests and creates a new Client.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "tag", "ws", "err", err)
		return
	}

	client := &Client{
		Hub:  h,
		Conn: conn,
		Send: make(chan []byte, 256),
	}

	select {
	case h.Register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}
