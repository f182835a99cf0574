package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/dvfens/ags/pkg/logger"
)

const (
	// Inbound messages allowed per client per second.
	maxMessagesPerSecond = 10

	snapshotTimeout = 5 * time.Second
)

// Event is pushed to every connection of a session.
type Event struct {
	Type string      `json:"type"` // cart, location
	Data interface{} `json:"data"`
}

// ClientMessage is sent by the storefront. "sync" asks for a full snapshot.
type ClientMessage struct {
	Type string `json:"type"`
}

// SnapshotFunc returns the current state events for a session.
type SnapshotFunc func(ctx context.Context, sessionID string) ([]Event, error)

// Client is one websocket connection bound to a guest session.
type Client struct {
	Hub           *Hub
	Conn          *Conn
	SessionID     string
	Send          chan []byte
	MessageCount  int
	LastResetTime time.Time
	RateMu        sync.Mutex
}

// Hub fans state changes out to the connections of each session. A session may
// have several tabs open.
type Hub struct {
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage

	snapshot SnapshotFunc

	mu sync.RWMutex
}

type BroadcastMessage struct {
	SessionID string
	Message   []byte
}

func NewHub(snapshot SnapshotFunc) *Hub {
	return &Hub{
		clients:    make(map[string][]*Client),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan *BroadcastMessage, 1024),
		snapshot:   snapshot,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
			total := len(h.clients[client.SessionID])
			h.mu.Unlock()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"session_id":  client.SessionID,
				"connections": total,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			remaining := 0
			if clientList, ok := h.clients[client.SessionID]; ok {
				newList := make([]*Client, 0, len(clientList))
				found := false
				for _, c := range clientList {
					if c == client {
						found = true
						continue
					}
					newList = append(newList, c)
				}
				if len(newList) == 0 {
					delete(h.clients, client.SessionID)
				} else {
					h.clients[client.SessionID] = newList
				}
				remaining = len(newList)
				if found {
					close(client.Send)
				}
			}
			h.mu.Unlock()
			logger.Info("WebSocket client unregistered", map[string]interface{}{
				"session_id":  client.SessionID,
				"connections": remaining,
			})

		case message := <-h.broadcast:
			h.mu.RLock()
			for _, client := range h.clients[message.SessionID] {
				select {
				case client.Send <- message.Message:
				default:
					go h.Unregister(client)
					logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
						"session_id": message.SessionID,
					})
				}
			}
			h.mu.RUnlock()
		}
	}
}

// SendToSession queues an event for every connection of sessionID. A full
// broadcast queue drops the event.
func (h *Hub) SendToSession(sessionID string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal event", err, map[string]interface{}{
			"type": event.Type,
		})
		return err
	}

	select {
	case h.broadcast <- &BroadcastMessage{SessionID: sessionID, Message: data}:
	default:
		logger.Warn("Broadcast channel full, event dropped", map[string]interface{}{
			"session_id": sessionID,
			"type":       event.Type,
		})
	}
	return nil
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// IsSessionOnline reports whether any connection is open for sessionID.
func (h *Hub) IsSessionOnline(sessionID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[sessionID]
	return ok
}

// SendSnapshot writes the current state straight to one client.
func (h *Hub) SendSnapshot(client *Client) {
	if h.snapshot == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	events, err := h.snapshot(ctx, client.SessionID)
	if err != nil {
		logger.Error("Failed to build session snapshot", err, map[string]interface{}{
			"session_id": client.SessionID,
		})
		return
	}
	for _, ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			logger.Error("Failed to marshal event", err, map[string]interface{}{
				"type": ev.Type,
			})
			continue
		}
		select {
		case client.Send <- data:
		default:
			logger.Warn("Client send buffer full, snapshot truncated", map[string]interface{}{
				"session_id": client.SessionID,
			})
			return
		}
	}
}

func (h *Hub) HandleClientMessage(client *Client, message []byte) {
	client.RateMu.Lock()
	now := time.Now()
	if now.Sub(client.LastResetTime) >= time.Second {
		client.MessageCount = 0
		client.LastResetTime = now
	}
	client.MessageCount++
	count := client.MessageCount
	client.RateMu.Unlock()

	if count > maxMessagesPerSecond {
		logger.Warn("WebSocket rate limit exceeded", map[string]interface{}{
			"session_id": client.SessionID,
			"count":      count,
		})
		return
	}

	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Warn("Failed to parse client message", map[string]interface{}{
			"session_id": client.SessionID,
			"error":      err.Error(),
		})
		return
	}

	switch msg.Type {
	case "sync":
		h.SendSnapshot(client)
	default:
		logger.Debug("Ignoring client message", map[string]interface{}{
			"session_id": client.SessionID,
			"type":       msg.Type,
		})
	}
}
