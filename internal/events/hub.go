package events

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/sofia-praxis/dental-calendar/internal/appointments"
	"github.com/sofia-praxis/dental-calendar/internal/observability/metrics"
	"github.com/sofia-praxis/dental-calendar/pkg/logging"
)

const subscriberBuffer = 16

// Hub fans calendar events out to all connected WebSocket viewers. A slow
// or dead subscriber is dropped rather than ever blocking a mutation.
type Hub struct {
	logger  *logging.Logger
	metrics *metrics.BookingMetrics

	mu   sync.RWMutex
	subs map[string]*subscriber
}

type subscriber struct {
	id   string
	conn *websocket.Conn
	send chan any
	once sync.Once
	done chan struct{}
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.done) })
}

// NewHub creates an event hub.
func NewHub(m *metrics.BookingMetrics, logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Default()
	}
	return &Hub{
		logger:  logger,
		metrics: m,
		subs:    make(map[string]*subscriber),
	}
}

// HandleWebSocket upgrades to WebSocket and streams calendar events until
// the client disconnects.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn)
	}).ServeHTTP(w, r)
}

func (h *Hub) serveWS(conn *websocket.Conn) {
	sub := &subscriber{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan any, subscriberBuffer),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	h.subs[sub.id] = sub
	h.mu.Unlock()
	h.logger.Info("calendar viewer connected", "subscriber_id", sub.id)

	defer func() {
		h.remove(sub)
		h.logger.Info("calendar viewer disconnected", "subscriber_id", sub.id)
	}()

	// Writer: drain the send queue onto the socket.
	go func() {
		for {
			select {
			case msg := <-sub.send:
				if err := websocket.JSON.Send(conn, msg); err != nil {
					sub.close()
					return
				}
			case <-sub.done:
				return
			}
		}
	}()

	// Reader: the client sends nothing meaningful; receive until the
	// connection drops so the deferred cleanup runs.
	for {
		var raw map[string]any
		if err := websocket.JSON.Receive(conn, &raw); err != nil {
			sub.close()
			return
		}
		if t, ok := raw["type"].(string); ok && t == "ping" {
			h.enqueue(sub, map[string]string{"type": "pong"})
		}
	}
}

func (h *Hub) remove(sub *subscriber) {
	h.mu.Lock()
	if h.subs[sub.id] == sub {
		delete(h.subs, sub.id)
	}
	h.mu.Unlock()
	sub.close()
}

// SubscriberCount returns the number of connected viewers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) enqueue(sub *subscriber, msg any) {
	select {
	case sub.send <- msg:
	default:
		// Queue full: the viewer stopped reading. Drop it; it will
		// reconnect and refetch.
		h.logger.Warn("dropping slow calendar viewer", "subscriber_id", sub.id)
		h.remove(sub)
	}
}

// Broadcast queues msg for every connected viewer.
func (h *Hub) Broadcast(eventType string, msg any) {
	h.mu.RLock()
	snapshot := make([]*subscriber, 0, len(h.subs))
	for _, sub := range h.subs {
		snapshot = append(snapshot, sub)
	}
	h.mu.RUnlock()

	for _, sub := range snapshot {
		h.enqueue(sub, msg)
	}
	h.metrics.ObserveEventPublished(eventType)
}

// AppointmentCreated implements appointments.EventPublisher.
func (h *Hub) AppointmentCreated(a appointments.Appointment) {
	h.Broadcast(TypeAppointmentCreated, AppointmentCreatedV1{Type: TypeAppointmentCreated, Appointment: a})
}

// AppointmentUpdated implements appointments.EventPublisher.
func (h *Hub) AppointmentUpdated(a appointments.Appointment) {
	h.Broadcast(TypeAppointmentUpdated, AppointmentUpdatedV1{Type: TypeAppointmentUpdated, Appointment: a})
}

// AppointmentDeleted implements appointments.EventPublisher.
func (h *Hub) AppointmentDeleted(id int64) {
	h.Broadcast(TypeAppointmentDeleted, AppointmentDeletedV1{Type: TypeAppointmentDeleted, ID: id})
}
