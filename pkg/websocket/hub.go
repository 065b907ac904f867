package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Hub fans dispatch events out to connected admin dashboard sockets. It is a
// read-only surface: clients receive events, their inbound frames are ignored
// beyond keepalive handling.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
}

type Event struct {
	Type      string                 `json:"type"`
	OrderID   string                 `json:"order_id"`
	Timestamp int64                  `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

const (
	EventOfferBroadcast     = "offer_broadcast"
	EventDriverAssigned     = "driver_assigned"
	EventDriverRemoved      = "driver_removed"
	EventDriverRejected     = "driver_rejected"
	EventAutoCancelSchedule = "auto_cancel_scheduled"
)

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mutex.Unlock()

		case message := <-h.broadcast:
			h.mutex.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer; drop the socket rather than block dispatch.
					go func(c *Client) { h.unregister <- c }(client)
				}
			}
			h.mutex.RUnlock()
		}
	}
}

// Publish broadcasts an event to every connected dashboard. Never blocks the
// caller: if the broadcast buffer is full the event is dropped and logged.
func (h *Hub) Publish(eventType, orderID string, data map[string]interface{}) {
	event := Event{
		Type:      eventType,
		OrderID:   orderID,
		Timestamp: time.Now().Unix(),
		Data:      data,
	}

	raw, err := json.Marshal(event)
	if err != nil {
		log.Printf("websocket: failed to marshal event: %v", err)
		return
	}

	select {
	case h.broadcast <- raw:
	default:
		log.Printf("websocket: broadcast buffer full, dropping %s for order %s", eventType, orderID)
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
