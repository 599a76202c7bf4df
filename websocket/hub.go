package websocket

import (
	"context"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/teamsales/salesportal/logger"
)

// Notification types.
const (
	NotificationTypeConnected        = "connected"
	NotificationTypeDashboardChanged = "dashboard_changed"
)

// sendBuffer is how many notifications may queue for a slow client before
// further ones are dropped.
const sendBuffer = 16

// Notification represents a message sent over WebSocket
type Notification struct {
	Type    string      `json:"type"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	UserID  string      `json:"userId,omitempty"`
}

// Client is one open connection. A user may have several (one per tab).
type Client struct {
	UserID string
	conn   *websocket.Conn
	send   chan Notification
}

// Hub tracks the open connections per uid and pushes refresh notices to them.
type Hub struct {
	clients    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run owns registration until ctx is done, then closes every connection.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for uid, set := range h.clients {
				for client := range set {
					close(client.send)
				}
				delete(h.clients, uid)
			}
			h.mu.Unlock()
			return
		case client := <-h.register:
			h.mu.Lock()
			set, ok := h.clients[client.UserID]
			if !ok {
				set = make(map[*Client]bool)
				h.clients[client.UserID] = set
			}
			set[client] = true
			h.mu.Unlock()
			client.send <- Notification{
				Type:    NotificationTypeConnected,
				Message: "WebSocket connection established",
				UserID:  client.UserID,
			}
		case client := <-h.unregister:
			h.mu.Lock()
			if set, ok := h.clients[client.UserID]; ok && set[client] {
				delete(set, client)
				close(client.send)
				if len(set) == 0 {
					delete(h.clients, client.UserID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Connected reports how many connections uid has open.
func (h *Hub) Connected(uid string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[uid])
}

// SendToUser queues n on every connection of uid.
func (h *Hub) SendToUser(uid string, n Notification) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	set, ok := h.clients[uid]
	if !ok || len(set) == 0 {
		return fmt.Errorf("user %s not connected", uid)
	}
	for client := range set {
		select {
		case client.send <- n:
		default:
			logger.Get("app").WithField("uid", uid).Warn("websocket send buffer full, notification dropped")
		}
	}
	return nil
}

// NotifyDashboardChanged tells the listed users to refetch their dashboard.
// Users without an open connection are skipped.
func (h *Hub) NotifyDashboardChanged(uids ...string) {
	seen := make(map[string]bool, len(uids))
	for _, uid := range uids {
		if uid == "" || seen[uid] {
			continue
		}
		seen[uid] = true
		_ = h.SendToUser(uid, Notification{Type: NotificationTypeDashboardChanged, UserID: uid})
	}
}

func (h *Hub) add(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) remove(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}
