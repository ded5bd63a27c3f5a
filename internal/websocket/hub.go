package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"ai-storywriting-be/internal/dto"
	"ai-storywriting-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// feedChannel is the Redis pub/sub channel used to relay feed entries
// between instances.
const feedChannel = "activity_feed"

// Hub fans activity feed entries out to connected clients. A user can be
// connected from several devices at once, so the map holds client lists.
// With Redis configured, entries are relayed across instances so it does
// not matter which instance holds a user's socket.
type Hub struct {
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	rdb *redis.Client

	// instanceID lets the relay skip entries this instance published itself.
	instanceID string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		instanceID: uuid.NewString(),
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.relayFromRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.UserID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.UserID]) == 0 {
					delete(h.clients, client.UserID)
					h.logger.Info("Hub", "Last client gone", map[string]interface{}{"user_id": client.UserID})
				}
			}
			h.mu.Unlock()
		}
	}
}

type relayEnvelope struct {
	Origin       string          `json:"origin"`
	TargetUserID string          `json:"target_user_id"`
	Message      json.RawMessage `json:"message"`
}

// Send delivers one feed entry to every connection the user has here, then
// relays it so other instances can do the same.
func (h *Hub) Send(userID uuid.UUID, activity dto.ActivityResponse) {
	data, err := json.Marshal(map[string]interface{}{
		"type": "activity",
		"data": activity,
	})
	if err != nil {
		return
	}

	h.deliverLocal(userID, data)

	if h.rdb != nil {
		payload, _ := json.Marshal(relayEnvelope{
			Origin:       h.instanceID,
			TargetUserID: userID.String(),
			Message:      data,
		})
		if err := h.rdb.Publish(context.Background(), feedChannel, payload).Err(); err != nil {
			h.logger.Warn("Hub", "Redis relay publish failed", map[string]interface{}{"error": err.Error()})
		}
	}
}

// deliverLocal pushes data to the user's local connections. Channel sends
// happen under the read lock; Send channels are only closed under the write
// lock, so a send here can never hit a closed channel. Clients that cannot
// keep up are unregistered after the lock is released.
func (h *Hub) deliverLocal(userID uuid.UUID, data []byte) {
	var dropped []*Client

	h.mu.RLock()
	for _, client := range h.clients[userID] {
		select {
		case client.Send <- data:
		default:
			dropped = append(dropped, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range dropped {
		h.logger.Warn("Hub", "Client buffer full, dropping connection", map[string]interface{}{"user_id": userID})
		h.unregister <- client
	}
}

// relayFromRedis feeds entries published by other instances to local
// connections.
func (h *Hub) relayFromRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, feedChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var env relayEnvelope
		if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
			h.logger.Warn("Hub", "Bad relay payload", map[string]interface{}{"error": err.Error()})
			continue
		}
		// Our own publishes were already delivered locally.
		if env.Origin == h.instanceID {
			continue
		}

		uid, err := uuid.Parse(env.TargetUserID)
		if err != nil {
			continue
		}
		h.deliverLocal(uid, env.Message)
	}
}
