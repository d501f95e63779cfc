package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Event is a session-scoped domain event. Sequence increases with every
// change of one session; a snapshot carrying sequence n already reflects
// every event up to n.
type Event struct {
	ID         uuid.UUID       `json:"id"`
	Topic      string          `json:"topic"`
	SessionID  uuid.UUID       `json:"sessionId"`
	Sequence   uint64          `json:"sequence"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurredAt"`
}

// Draft is an event before the bus stamps its id and time.
type Draft struct {
	Topic     string
	SessionID uuid.UUID
	Sequence  uint64
	Payload   any
}

// Notifier reacts to emitted events (display stream, logs, etc.).
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, event Event) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus fans events out to every configured notifier.
type Bus struct {
	Notifiers []Notifier
	Now       func() time.Time
}

// Emit publishes an unsequenced event.
func (b *Bus) Emit(ctx context.Context, topic string, sessionID uuid.UUID, payload any) (Event, error) {
	return b.Publish(ctx, Draft{Topic: topic, SessionID: sessionID, Payload: payload})
}

// Publish builds the event and dispatches it. Notifier failures are joined and
// returned alongside the event; they do not stop delivery to later notifiers.
func (b *Bus) Publish(ctx context.Context, d Draft) (Event, error) {
	topic := strings.TrimSpace(d.Topic)
	if topic == "" {
		return Event{}, errors.New("events: topic is required")
	}
	if d.SessionID == uuid.Nil {
		return Event{}, errors.New("events: session id is required")
	}
	encoded, err := encodePayload(d.Payload)
	if err != nil {
		return Event{}, fmt.Errorf("events: encode payload: %w", err)
	}
	if b == nil {
		return Event{}, nil
	}
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	ev := Event{
		ID:         uuid.New(),
		Topic:      topic,
		SessionID:  d.SessionID,
		Sequence:   d.Sequence,
		Payload:    encoded,
		OccurredAt: now().UTC(),
	}
	var joined error
	for _, notifier := range b.Notifiers {
		if notifier == nil {
			continue
		}
		if notifyErr := notifier.Notify(ctx, ev); notifyErr != nil {
			joined = errors.Join(joined, fmt.Errorf("events: notifier: %w", notifyErr))
		}
	}
	return ev, joined
}

func encodePayload(payload any) (json.RawMessage, error) {
	if payload == nil {
		return json.RawMessage("{}"), nil
	}
	switch v := payload.(type) {
	case json.RawMessage:
		if len(v) == 0 {
			return json.RawMessage("{}"), nil
		}
		if !json.Valid(v) {
			return nil, errors.New("payload is not valid json")
		}
		return append(json.RawMessage(nil), v...), nil
	case []byte:
		if len(v) == 0 {
			return json.RawMessage("{}"), nil
		}
		if !json.Valid(v) {
			return nil, errors.New("payload is not valid json")
		}
		return append(json.RawMessage(nil), v...), nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return data, nil
	}
}
