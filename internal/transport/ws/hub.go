package ws

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MsgPaperUpdated MessageType = "paper_updated"
	MsgError        MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans paper changes out to every connected preview
type Hub struct {
	viewers map[*Connection]struct{}
	logger  *zap.Logger

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan []byte
	done       chan struct{}
	closeOnce  sync.Once
}

// Connection represents a WebSocket connection
type Connection struct {
	AuthorID string
	Send     chan []byte
	Hub      *Hub

	// Snapshot, when set, produces the first frame. It runs inside the hub
	// loop, so no broadcast can slip in between it and registration.
	Snapshot func() ([]byte, error)
}

// NewHub creates a new WebSocket hub
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		viewers:    make(map[*Connection]struct{}),
		logger:     logger,
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for conn := range h.viewers {
				delete(h.viewers, conn)
				close(conn.Send)
			}
			h.mu.Unlock()
			return

		case conn := <-h.register:
			if conn.Snapshot != nil {
				data, err := conn.Snapshot()
				if err != nil {
					h.logger.Error("failed to encode snapshot", zap.Error(err))
				} else {
					select {
					case conn.Send <- data:
					default:
					}
				}
			}
			h.mu.Lock()
			h.viewers[conn] = struct{}{}
			h.mu.Unlock()
			h.logger.Info("preview connected", zap.String("author_id", conn.AuthorID))

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.viewers[conn]; ok {
				delete(h.viewers, conn)
				close(conn.Send)
				h.logger.Info("preview disconnected", zap.String("author_id", conn.AuthorID))
			}
			h.mu.Unlock()

		case data := <-h.broadcast:
			h.mu.RLock()
			for conn := range h.viewers {
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

// Viewers returns the number of connected previews
func (h *Hub) Viewers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.viewers)
}

// BroadcastPaper sends a message to every preview (implements service.Broadcaster)
func (h *Hub) BroadcastPaper(msgType string, payload interface{}) {
	data, err := encodeMessage(MessageType(msgType), payload)
	if err != nil {
		h.logger.Error("failed to encode broadcast", zap.String("type", msgType), zap.Error(err))
		return
	}
	select {
	case h.broadcast <- data:
	case <-h.done:
	default:
		h.logger.Warn("broadcast queue full, dropping update", zap.String("type", msgType))
	}
}

// Close disconnects every preview and stops the hub
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

func encodeMessage(msgType MessageType, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&Message{Type: msgType, Payload: body})
}
