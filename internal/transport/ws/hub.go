package ws

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"

	"callmood/internal/model"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MsgAnalysisStatus MessageType = "analysis_status"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans call status events out to dashboard connections
type Hub struct {
	conns map[*Connection]struct{}
	mu    sync.RWMutex

	// Channels for coordination
	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
	done       chan struct{}

	log *logrus.Entry
}

// Connection represents a WebSocket connection. An empty CallID subscribes
// to every call.
type Connection struct {
	Username string
	CallID   string
	Send     chan []byte
	Hub      *Hub
}

// BroadcastMessage is a message to broadcast
type BroadcastMessage struct {
	CallID  string
	Message *Message
}

// NewHub creates a new WebSocket hub
func NewHub(logger *logrus.Logger) *Hub {
	h := &Hub{
		conns:      make(map[*Connection]struct{}),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
		done:       make(chan struct{}),
		log:        logger.WithField("component", "ws"),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for conn := range h.conns {
				delete(h.conns, conn)
				close(conn.Send)
			}
			h.mu.Unlock()
			return

		case conn := <-h.register:
			h.mu.Lock()
			h.conns[conn] = struct{}{}
			h.mu.Unlock()
			h.log.WithFields(logrus.Fields{"user": conn.Username, "call_id": conn.CallID}).Info("Dashboard connected")

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.conns[conn]; ok {
				delete(h.conns, conn)
				close(conn.Send)
				h.log.WithField("user", conn.Username).Info("Dashboard disconnected")
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			data, err := json.Marshal(msg.Message)
			if err != nil {
				h.log.WithError(err).Error("Failed to encode broadcast")
				continue
			}
			h.mu.RLock()
			for conn := range h.conns {
				if conn.CallID != "" && conn.CallID != msg.CallID {
					continue
				}
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
		close(conn.Send)
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Close disconnects every connection and stops the hub.
func (h *Hub) Close() {
	close(h.done)
}

// Count returns the number of open connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// BroadcastCallStatus pushes a status event to subscribers of the call
// (implements service.Broadcaster)
func (h *Hub) BroadcastCallStatus(event model.StatusEvent) {
	data, _ := json.Marshal(event)
	msg := &BroadcastMessage{
		CallID: event.CallID,
		Message: &Message{
			Type:    MsgAnalysisStatus,
			Payload: data,
		},
	}
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}
