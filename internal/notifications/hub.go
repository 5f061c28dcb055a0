package notifications

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/prafullkumar/chronos/pkg/logger"
)

// Event represents a payload delivered to subscribers.
type Event struct {
	Event        string      `json:"event"`
	Notification interface{} `json:"notification,omitempty"`
	ReminderID   string      `json:"reminder_id,omitempty"`
}

// Subscription is an explicit handle on a user's event stream. Close must be
// called when the consumer goes away; there is no implicit teardown.
type Subscription struct {
	C <-chan Event

	hub    *Hub
	userID string
	ch     chan Event
	once   sync.Once
}

// Close releases the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		s.hub.remove(s.userID, s)
		close(s.ch)
	})
}

// Hub fans out reminder events to the active subscriptions of each user.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*Subscription]struct{}
	log  *zap.Logger
}

// NewHub constructs an empty hub.
func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[*Subscription]struct{}),
		log:  logger.WithModule("notifications"),
	}
}

// Subscribe opens a long-lived event stream for the user and returns its
// handle.
func (h *Hub) Subscribe(userID string) *Subscription {
	sub := &Subscription{
		hub:    h,
		userID: userID,
		ch:     make(chan Event, 16),
	}
	sub.C = sub.ch

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*Subscription]struct{})
	}
	h.subs[userID][sub] = struct{}{}
	return sub
}

func (h *Hub) remove(userID string, sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if set, ok := h.subs[userID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subs, userID)
		}
	}
}

// SubscriberCount reports the number of open subscriptions for a user.
func (h *Hub) SubscriberCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}

// Publish delivers the event to every subscription of the user and reports
// how many received it. Slow consumers are skipped rather than blocked on.
func (h *Hub) Publish(userID string, event Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for sub := range h.subs[userID] {
		select {
		case sub.ch <- event:
			delivered++
		default:
			h.log.Warn("dropping event for slow subscriber", zap.String("user_id", userID))
		}
	}
	return delivered
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 45 * time.Second
)

// Serve upgrades the HTTP connection to a WebSocket and bridges it to a
// subscription. The subscription is released when the socket closes.
func (h *Hub) Serve(userID string, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	sub := h.Subscribe(userID)
	defer sub.Close()
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-sub.C:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
