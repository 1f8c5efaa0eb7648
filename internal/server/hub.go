// Package server coordinates subscriber registration, match_update fan-out,
// and connection cleanup for the push channel via the Hub type.
package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/Tyrowin/scoreline/internal/match"
	"github.com/Tyrowin/scoreline/internal/metrics"
)

const broadcastQueueSize = 256

// SnapshotSource provides the state a new subscriber is synced with.
type SnapshotSource interface {
	Snapshot() match.Snapshot
}

// Hub is the registry of connected subscribers and the broadcaster that
// pushes match state to them. A single goroutine (Run) owns registration,
// unregistration and fan-out, so frames reach every subscriber in the order
// they were published.
type Hub struct {
	clients    map[uuid.UUID]*Client
	broadcast  chan BroadcastMessage
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
	source     SnapshotSource
	metrics    *metrics.Metrics
	clock      clockwork.Clock
}

// NewHub creates and initializes a new Hub instance. New subscribers are
// synced from source; m receives connection and delivery metrics.
func NewHub(source SnapshotSource, m *metrics.Metrics, clock clockwork.Clock) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[uuid.UUID]*Client),
		broadcast:  make(chan BroadcastMessage, broadcastQueueSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
		source:     source,
		metrics:    m,
		clock:      clock,
	}
}

// Register hands a freshly upgraded subscriber to the hub. If the hub is
// shutting down the connection is closed instead.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
		client.closeConnection()
	}
}

// Unregister removes a subscriber. It is safe to call more than once and
// after shutdown.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

// PushToAll queues snapshot for every registered subscriber. It never
// waits on subscriber I/O.
func (h *Hub) PushToAll(snapshot match.Snapshot) {
	msg, err := encodeMatchUpdate(snapshot)
	if err != nil {
		slog.Error("Failed to encode match update", "revision", snapshot.Revision, "error", err)
		return
	}

	select {
	case h.broadcast <- msg:
	case <-h.ctx.Done():
	}
}

// PushToOne queues snapshot for a single subscriber and reports whether it
// was accepted.
func (h *Hub) PushToOne(id uuid.UUID, snapshot match.Snapshot) bool {
	h.mutex.RLock()
	client, ok := h.clients[id]
	h.mutex.RUnlock()
	if !ok {
		return false
	}
	return h.pushSnapshot(client, snapshot)
}

// ClientCount returns the number of registered subscribers.
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

func (h *Hub) pushSnapshot(client *Client, snapshot match.Snapshot) bool {
	msg, err := encodeMatchUpdate(snapshot)
	if err != nil {
		slog.Error("Failed to encode match update", "revision", snapshot.Revision, "error", err)
		return false
	}
	if !h.safeSend(client, msg.Payload) {
		return false
	}
	h.metrics.MessagesPublished.Inc()
	return true
}

func (h *Hub) safeSend(client *Client, message []byte) bool {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Recovered from panic in safeSend", "panic", r)
		}
	}()

	// Hold the lock during the entire send operation to prevent race conditions
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	// Check if client is still registered and not closed
	_, exists := h.clients[client.id]
	if !exists || client.closed {
		return false
	}

	select {
	case client.send <- message:
		return true
	default:
		return false
	}
}

// Run starts the hub's main event loop, handling subscriber registration,
// unregistration and broadcasting. It blocks until Shutdown is called.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.shutdownClients()
			return

		case client := <-h.register:
			if client == nil {
				slog.Warn("Received nil client registration; skipping")
				continue
			}
			h.handleRegister(client)

		case client := <-h.unregister:
			h.handleUnregister(client)

		case msg := <-h.broadcast:
			h.handleBroadcast(msg)
		}
	}
}

// handleRegister adds the subscriber and syncs it with the current state
// before any later broadcast can reach it.
func (h *Hub) handleRegister(client *Client) {
	snapshot := h.source.Snapshot()

	h.mutex.Lock()
	client.closed = false
	client.joinedRevision = snapshot.Revision
	h.clients[client.id] = client
	clientCount := len(h.clients)
	h.mutex.Unlock()

	h.metrics.ActiveSubscribers.Set(float64(clientCount))
	slog.Info("Subscriber registered",
		"subscriber_id", client.id.String(),
		"addr", client.addr,
		"total_clients", clientCount,
	)

	if client.conn != nil {
		h.wg.Add(2)
		go func() {
			defer h.wg.Done()
			client.writePump()
		}()
		go func() {
			defer h.wg.Done()
			client.readPump()
		}()
	}

	if !h.pushSnapshot(client, snapshot) {
		slog.Warn("Failed to queue initial snapshot", "subscriber_id", client.id.String())
	}
}

func (h *Hub) handleUnregister(client *Client) {
	if client == nil {
		return
	}

	h.mutex.Lock()
	current, ok := h.clients[client.id]
	if !ok || current != client {
		h.mutex.Unlock()
		return
	}
	delete(h.clients, client.id)
	client.closed = true
	clientCount := len(h.clients)
	h.mutex.Unlock()

	// Close the channel after releasing the lock
	close(client.send)
	h.metrics.ActiveSubscribers.Set(float64(clientCount))
	slog.Info("Subscriber unregistered",
		"subscriber_id", client.id.String(),
		"addr", client.addr,
		"total_clients", clientCount,
	)
}

// handleBroadcast delivers msg to every subscriber that joined before the
// revision it carries. Subscribers that cannot keep up are dropped.
func (h *Hub) handleBroadcast(msg BroadcastMessage) {
	clients := h.getClientSnapshot()

	var clientsToRemove []*Client
	delivered := 0
	for _, client := range clients {
		if client.joinedRevision >= msg.Revision {
			continue
		}
		if !h.safeSend(client, msg.Payload) {
			clientsToRemove = append(clientsToRemove, client)
			continue
		}
		delivered++
	}

	h.metrics.MessagesPublished.Add(float64(delivered))
	slog.Debug("Broadcast match update", "revision", msg.Revision, "delivered", delivered)
	h.removeFailedClients(clientsToRemove)
}

// getClientSnapshot returns a thread-safe snapshot of all current clients
func (h *Hub) getClientSnapshot() []*Client {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	return clients
}

// removeFailedClients removes clients that failed to receive messages and closes their channels
func (h *Hub) removeFailedClients(clientsToRemove []*Client) {
	if len(clientsToRemove) == 0 {
		return
	}

	h.mutex.Lock()
	var channelsToClose []chan []byte
	for _, client := range clientsToRemove {
		if _, exists := h.clients[client.id]; exists {
			delete(h.clients, client.id)
			client.closed = true
			channelsToClose = append(channelsToClose, client.send)
			slog.Warn("Subscriber dropped due to full send buffer",
				"subscriber_id", client.id.String(),
				"addr", client.addr,
			)
		}
	}
	clientCount := len(h.clients)
	h.mutex.Unlock()

	// Close channels after releasing the lock
	for _, ch := range channelsToClose {
		close(ch)
	}
	h.metrics.DroppedDeliveries.Add(float64(len(channelsToClose)))
	h.metrics.ActiveSubscribers.Set(float64(clientCount))
}

// shutdownClients closes every send channel; each write pump then sends a
// close frame and closes its connection, which ends the read pump.
func (h *Hub) shutdownClients() {
	h.mutex.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for id, client := range h.clients {
		clients = append(clients, client)
		client.closed = true
		delete(h.clients, id)
	}
	h.mutex.Unlock()

	for _, client := range clients {
		close(client.send)
	}

	h.metrics.ActiveSubscribers.Set(0)
	slog.Info("Closed subscriber connections", "count", len(clients))
}

// Shutdown initiates graceful shutdown of the hub and waits for all goroutines to complete.
// It returns after all client connections are closed and goroutines have finished,
// or when the timeout is reached.
func (h *Hub) Shutdown(timeout time.Duration) error {
	slog.Info("Initiating hub shutdown")

	h.cancel()

	done := make(chan struct{})
	go func() {
		<-h.done
		h.wg.Wait()
		close(done)
	}()

	timer := h.clock.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		slog.Info("Hub shutdown completed successfully")
		return nil
	case <-timer.Chan():
		slog.Warn("Hub shutdown timeout reached, some goroutines may still be running", "timeout", timeout)
		return context.DeadlineExceeded
	}
}
