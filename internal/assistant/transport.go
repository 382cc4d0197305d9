package assistant

import (
	"context"
	"fmt"

	"github.com/sofia-praxis/dental-calendar/internal/appointments"
	"github.com/sofia-praxis/dental-calendar/pkg/logging"
)

// Reply is the assistant-facing outcome of a booking attempt.
type Reply struct {
	Success     bool                      `json:"success"`
	Message     string                    `json:"message"`
	Appointment *appointments.Appointment `json:"appointment,omitempty"`
	Alternative *ReplySlot                `json:"alternative,omitempty"`
}

// ReplySlot is an alternative (date, time) offered after a collision.
type ReplySlot struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// Transport delivers assistant replies to whatever channel the voice stack
// is listening on. Implementations are selected by configuration, never by
// probing at runtime which client integration happens to be loaded.
type Transport interface {
	Name() string
	Deliver(ctx context.Context, reply Reply) error
}

// NewTransport builds the configured transport. "webhook" answers over the
// synchronous HTTP response only; "websocket" additionally relays the reply
// over the live event channel for browser-embedded assistants.
func NewTransport(kind string, broadcaster Broadcaster, logger *logging.Logger) (Transport, error) {
	switch kind {
	case "", "webhook":
		return &webhookTransport{}, nil
	case "websocket":
		if broadcaster == nil {
			return nil, fmt.Errorf("assistant: websocket transport requires the event hub")
		}
		return &websocketTransport{broadcaster: broadcaster, logger: logger}, nil
	default:
		return nil, fmt.Errorf("assistant: unknown transport %q", kind)
	}
}

// Broadcaster pushes a payload to all connected viewers. Implemented by the
// events hub.
type Broadcaster interface {
	Broadcast(eventType string, msg any)
}

// webhookTransport relies on the HTTP response body alone.
type webhookTransport struct{}

func (t *webhookTransport) Name() string { return "webhook" }

func (t *webhookTransport) Deliver(context.Context, Reply) error { return nil }

// websocketTransport mirrors replies onto the event channel.
type websocketTransport struct {
	broadcaster Broadcaster
	logger      *logging.Logger
}

func (t *websocketTransport) Name() string { return "websocket" }

func (t *websocketTransport) Deliver(_ context.Context, reply Reply) error {
	t.broadcaster.Broadcast("assistantReply", struct {
		Type string `json:"type"`
		Reply
	}{Type: "assistantReply", Reply: reply})
	return nil
}
