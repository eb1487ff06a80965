// Package hub tracks display subscribers per content channel.
package hub

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/xiaot623/ledcontent/internal/domain"
)

const sendBufferSize = 16

// Connection is one subscribed display socket.
type Connection struct {
	ID      string
	Channel domain.Channel
	Conn    *websocket.Conn
	Send    chan []byte
	mu      sync.Mutex
}

type channelMessage struct {
	channel domain.Channel
	data    []byte
}

// Hub fans definition updates out to every connection on a channel.
type Hub struct {
	connections map[string]*Connection
	channels    map[domain.Channel]map[string]bool

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *channelMessage
	done       chan struct{}

	logger *slog.Logger
	mu     sync.RWMutex
}

func New(logger *slog.Logger) *Hub {
	return &Hub{
		connections: make(map[string]*Connection),
		channels:    make(map[domain.Channel]map[string]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		broadcast:   make(chan *channelMessage, 64),
		done:        make(chan struct{}),
		logger:      logger,
	}
}

// Run processes registrations and broadcasts until ctx is cancelled. Every
// remaining connection has its Send channel closed on exit.
func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()
	for {
		select {
		case <-ctx.Done():
			return

		case conn := <-h.register:
			h.mu.Lock()
			h.connections[conn.ID] = conn
			if h.channels[conn.Channel] == nil {
				h.channels[conn.Channel] = make(map[string]bool)
			}
			h.channels[conn.Channel][conn.ID] = true
			h.mu.Unlock()
			h.logger.Info("subscriber registered", "connection_id", conn.ID, "channel", conn.Channel)

		case conn := <-h.unregister:
			h.remove(conn)

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

func (h *Hub) deliver(msg *channelMessage) {
	var slow []*Connection
	h.mu.RLock()
	for connID := range h.channels[msg.channel] {
		conn, ok := h.connections[connID]
		if !ok {
			continue
		}
		select {
		case conn.Send <- msg.data:
		default:
			slow = append(slow, conn)
		}
	}
	h.mu.RUnlock()

	for _, conn := range slow {
		h.logger.Warn("subscriber buffer full, dropping", "connection_id", conn.ID)
		h.remove(conn)
	}
}

func (h *Hub) remove(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.connections[conn.ID]; !ok {
		return
	}
	delete(h.connections, conn.ID)
	if ids := h.channels[conn.Channel]; ids != nil {
		delete(ids, conn.ID)
		if len(ids) == 0 {
			delete(h.channels, conn.Channel)
		}
	}
	close(conn.Send)
	h.logger.Info("subscriber unregistered", "connection_id", conn.ID)
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	for id, conn := range h.connections {
		close(conn.Send)
		delete(h.connections, id)
	}
	h.channels = make(map[domain.Channel]map[string]bool)
	h.mu.Unlock()
	close(h.done)
}

// NewConnection wraps ws for channel ch. It is not registered yet.
func (h *Hub) NewConnection(ws *websocket.Conn, ch domain.Channel) *Connection {
	return &Connection{
		ID:      uuid.New().String(),
		Channel: ch,
		Conn:    ws,
		Send:    make(chan []byte, sendBufferSize),
	}
}

// Register returns false when the hub has stopped.
func (h *Hub) Register(conn *Connection) bool {
	select {
	case h.register <- conn:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Broadcast queues data for every subscriber of ch.
func (h *Hub) Broadcast(ch domain.Channel, data []byte) {
	select {
	case h.broadcast <- &channelMessage{channel: ch, data: data}:
	case <-h.done:
	}
}

func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// SubscriberCount returns the number of connections on ch.
func (h *Hub) SubscriberCount(ch domain.Channel) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[ch])
}

// WriteMessage writes to the socket with the connection lock held.
func (c *Connection) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteMessage(messageType, data)
}

func (c *Connection) SetWriteDeadline(t time.Time) error {
	return c.Conn.SetWriteDeadline(t)
}

func (c *Connection) SetReadDeadline(t time.Time) error {
	return c.Conn.SetReadDeadline(t)
}

func (c *Connection) Close() error {
	return c.Conn.Close()
}
