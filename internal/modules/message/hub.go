package message

import (
	"encoding/json"
	"sync"

	"chatapi/internal/domain"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const sendBuffer = 32

type client struct {
	userID string
	conn   *websocket.Conn
	send   chan []byte
}

// Hub fans message events out to every connection whose user can see the
// message. A user may hold several connections.
type Hub struct {
	clients map[string]map[*client]struct{}
	mutex   sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*client]struct{}),
	}
}

func (h *Hub) Register(c *client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
}

// Unregister drops c and closes its send channel. Safe to call twice.
func (h *Hub) Unregister(c *client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	set, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
}

func (h *Hub) IsOnline(userID string) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	_, exists := h.clients[userID]
	return exists
}

func (h *Hub) GetOnlineCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.clients)
}

func (h *Hub) MessageCreated(msg domain.Message) {
	h.broadcast(NewMessageEvent(msg), msg.VisibleTo)
}

func (h *Hub) MessageDeleted(msg domain.Message) {
	h.broadcast(NewDeletedEvent(msg.ID), msg.VisibleTo)
}

// broadcast queues ev for every connection of every user accepted by
// audience. A connection whose buffer is full misses the event.
func (h *Hub) broadcast(ev Event, audience func(userID string) bool) {
	data, err := json.Marshal(ev)
	if err != nil {
		logrus.WithError(err).Error("encode feed event")
		return
	}

	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for userID, set := range h.clients {
		if !audience(userID) {
			continue
		}
		for c := range set {
			select {
			case c.send <- data:
			default:
				logrus.WithField("user_id", userID).Warn("feed client too slow, event dropped")
			}
		}
	}
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for userID, set := range h.clients {
		for c := range set {
			close(c.send)
			_ = c.conn.Close()
		}
		delete(h.clients, userID)
	}
}
