package feed

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/slabmarket/matching-engine/internal/api/models"
	"github.com/slabmarket/matching-engine/internal/logger"
	"github.com/slabmarket/matching-engine/internal/types"
)

// Message is the envelope for everything written to a feed socket
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type subscription struct {
	ch chan Message
}

// Hub fans executed trades out to websocket subscribers. Slow subscribers
// drop messages rather than block the engine.
type Hub struct {
	mu       sync.RWMutex
	subs     map[*subscription]struct{}
	buffer   int
	upgrader websocket.Upgrader
}

// NewHub creates a hub whose subscriber channels hold up to buffer messages
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 32
	}
	return &Hub{
		subs:     make(map[*subscription]struct{}),
		buffer:   buffer,
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
	}
}

func (h *Hub) subscribe() *subscription {
	sub := &subscription{ch: make(chan Message, h.buffer)}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

func (h *Hub) unsubscribe(sub *subscription) {
	h.mu.Lock()
	delete(h.subs, sub)
	h.mu.Unlock()
	close(sub.ch)
}

func (h *Hub) broadcast(msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		select {
		case sub.ch <- msg:
		default:
		}
	}
}

// PublishTrades broadcasts each executed trade to all subscribers
func (h *Hub) PublishTrades(trades []*types.Trade) {
	for _, trade := range trades {
		h.broadcast(Message{Type: "trade", Data: models.NewTradeDTO(trade)})
	}
}

// SubscriberCount returns the number of connected subscribers
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// ServeWS upgrades the request and streams trade messages until the client
// disconnects
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("Websocket upgrade failed", map[string]interface{}{
			"remote_addr": r.RemoteAddr,
			"error":       err.Error(),
		})
		return
	}
	defer conn.Close()

	sub := h.subscribe()
	defer h.unsubscribe(sub)

	logger.Info("Trade feed subscriber connected", map[string]interface{}{
		"remote_addr": r.RemoteAddr,
	})

	for msg := range sub.ch {
		if err := conn.WriteJSON(msg); err != nil {
			return
		}
	}
}
