package channel

import (
	"context"
	"io"
	"sync"

	"github.com/nerrad567/homeguardian-core/internal/infrastructure/logging"
)

// defaultSendBuffer is the per-client outbound queue length.
const defaultSendBuffer = 256

// Client is one connected peer on either transport.
type Client struct {
	actor  string
	remote string
	send   chan string
	conn   io.Closer
}

// NewClient creates a client acting as actor. conn is closed when the hub
// shuts down; it may be nil.
func NewClient(actor, remote string, buffer int, conn io.Closer) *Client {
	if buffer <= 0 {
		buffer = defaultSendBuffer
	}
	return &Client{
		actor:  actor,
		remote: remote,
		send:   make(chan string, buffer),
		conn:   conn,
	}
}

// Actor returns the identity commands from this client run as.
func (c *Client) Actor() string { return c.actor }

// Messages returns the client's outbound queue. It is closed when the client
// is unregistered.
func (c *Client) Messages() <-chan string { return c.send }

// trySend queues msg without blocking. It reports false when the queue is
// full or already closed.
func (c *Client) trySend(msg string) (sent bool) {
	defer func() {
		if recover() != nil {
			sent = false
		}
	}()

	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// Hub tracks connected clients and fans out broadcasts.
type Hub struct {
	logger  *logging.Logger
	clients map[*Client]struct{}
	mu      sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub(logger *logging.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[*Client]struct{}),
	}
}

// Run blocks until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAll()
}

// Register adds a client.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("channel client connected", "actor", c.actor, "remote", c.remote, "clients", n)
}

// Unregister removes a client and closes its queue. Only the caller that
// removes the client from the map closes the queue.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	_, existed := h.clients[c]
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()

	if existed {
		close(c.send)
		h.logger.Debug("channel client disconnected", "remote", c.remote, "clients", n)
	}
}

// Send queues msg for one client.
func (h *Hub) Send(c *Client, msg string) bool {
	if !c.trySend(msg) {
		h.logger.Warn("channel send skipped", "remote", c.remote, "reason", "queue full or closed")
		return false
	}
	return true
}

// Broadcast queues msg for every connected client and returns how many
// accepted it. Slow or departed clients are skipped.
func (h *Hub) Broadcast(msg string) int {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	sent := 0
	for _, c := range clients {
		if h.Send(c, msg) {
			sent++
		}
	}
	h.logger.Debug("broadcast sent", "message", msg, "recipients", sent)
	return sent
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// closeAll disconnects every client so transport goroutines exit.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		close(c.send)
		if c.conn != nil {
			c.conn.Close() //nolint:errcheck // best-effort shutdown
		}
		delete(h.clients, c)
	}
}
