package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"workshop-app-be/internal/pkg/logger"
	"workshop-app-be/internal/pkg/metrics"
	"workshop-app-be/internal/presence"
	"workshop-app-be/internal/service"

	"github.com/redis/go-redis/v9"
)

// Ingestor puts raw presence payloads on the bus.
type Ingestor interface {
	Ingest(ctx context.Context, source service.Source, payload []byte) error
}

// Feed is the part of the presence feed the hub listens to.
type Feed interface {
	Subscribe(id string, s presence.Sink) func()
	Live() []presence.Event
}

// outbound is the frame sent to sockets.
type outbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// clusterEnvelope is what instances exchange over Redis.
type clusterEnvelope struct {
	Origin  string          `json:"origin"`
	Message json.RawMessage `json:"message"`
}

type Hub struct {
	// Registered clients by connection id
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	mu sync.RWMutex

	// Redis connection for cross-instance fan-out, nil on a single instance
	rdb        *redis.Client
	channel    string
	instanceID string

	ingest  Ingestor
	logger  logger.ILogger
	metrics *metrics.Metrics
}

func NewHub(rdb *redis.Client, channel, instanceID string, ingest Ingestor, log logger.ILogger, m *metrics.Metrics) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		rdb:        rdb,
		channel:    channel,
		instanceID: instanceID,
		ingest:     ingest,
		logger:     log,
		metrics:    m,
	}
}

// Run serves register/unregister requests and forwards feed events to the
// sockets until ctx is done.
func (h *Hub) Run(ctx context.Context, feed Feed) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}
	unsubscribe := feed.Subscribe("websocket-hub", h)
	defer unsubscribe()
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				close(client.Send)
				delete(h.clients, id)
				h.metrics.SocketClosed()
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			// Seeded under the write lock so no live event reaches the
			// client ahead of its snapshot.
			h.mu.Lock()
			h.seed(client, feed.Live())
			h.clients[client.ID] = client
			h.mu.Unlock()
			h.metrics.SocketOpened()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"connection_id": client.ID, "user_id": client.userID()})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.Send)
				h.metrics.SocketClosed()
				h.logger.Info("Hub", "Client unregistered", map[string]interface{}{"connection_id": client.ID})
			}
			h.mu.Unlock()
		}
	}
}

// seed must be called with h.mu held.
func (h *Hub) seed(client *Client, live []presence.Event) {
	for _, ev := range live {
		if data, ok := h.encode(ev); ok {
			h.deliver(client, data)
		}
	}
}

func (h *Hub) encode(ev presence.Event) ([]byte, bool) {
	wire, err := presence.EncodeEvent(ev)
	if err != nil {
		h.logger.Error("Hub", "Failed to encode presence event", map[string]interface{}{"error": err.Error()})
		return nil, false
	}
	data, err := json.Marshal(outbound{Type: "presence", Data: wire})
	if err != nil {
		h.logger.Error("Hub", "Failed to encode presence frame", map[string]interface{}{"error": err.Error()})
		return nil, false
	}
	return data, true
}

// deliver must be called with h.mu held. A client whose buffer is full is
// disconnected.
func (h *Hub) deliver(client *Client, data []byte) {
	select {
	case client.Send <- data:
	default:
		h.logger.Warn("Hub", "Client Send buffer full, dropping client", map[string]interface{}{"connection_id": client.ID})
		go h.Unregister(client)
	}
}

// Register adds a client. It reports false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish sends a feed event to every local socket.
func (h *Hub) Publish(ev presence.Event) {
	data, ok := h.encode(ev)
	if !ok {
		return
	}
	h.mu.RLock()
	for _, client := range h.clients {
		h.deliver(client, data)
	}
	h.mu.RUnlock()
}

// Clients returns the number of registered sockets.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Relay publishes a locally accepted payload for the other instances.
func (h *Hub) Relay(ctx context.Context, payload []byte) error {
	if h.rdb == nil {
		return nil
	}
	envelope, err := json.Marshal(clusterEnvelope{Origin: h.instanceID, Message: payload})
	if err != nil {
		return err
	}
	return h.rdb.Publish(ctx, h.channel, envelope).Err()
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, h.channel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.handleClusterMessage(ctx, msg.Payload)
		}
	}
}

// handleClusterMessage ingests a payload relayed by another instance.
func (h *Hub) handleClusterMessage(ctx context.Context, raw string) {
	var envelope clusterEnvelope
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		h.logger.Debug("Hub", "Redis msg parse error", map[string]interface{}{"error": err.Error()})
		return
	}
	if envelope.Origin == h.instanceID || len(envelope.Message) == 0 {
		return
	}
	if err := h.ingest.Ingest(ctx, service.SourceCluster, envelope.Message); err != nil {
		h.logger.Warn("Hub", "Failed to ingest cluster event", map[string]interface{}{"error": err.Error(), "origin": envelope.Origin})
	}
}

// handleInbound ingests a location update sent by a socket.
func (h *Hub) handleInbound(ctx context.Context, client *Client, payload []byte) {
	stamped, err := stampIdentity(payload, client.User, client.ID)
	if err != nil {
		h.logger.Debug("Hub", "Dropping malformed socket message", map[string]interface{}{"connection_id": client.ID, "error": err.Error()})
		return
	}
	if err := h.ingest.Ingest(ctx, service.SourceSocket, stamped); err != nil {
		h.logger.Warn("Hub", "Failed to ingest socket event", map[string]interface{}{"connection_id": client.ID, "error": err.Error()})
	}
}
