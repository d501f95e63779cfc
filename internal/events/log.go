package events

import (
	"context"

	"github.com/rs/zerolog"
)

// LogNotifier writes every event to a structured logger at debug level.
type LogNotifier struct {
	Logger *zerolog.Logger
}

// Notify implements Notifier.
func (n LogNotifier) Notify(_ context.Context, event Event) error {
	if n.Logger == nil {
		return nil
	}
	n.Logger.Debug().
		Str("event_id", event.ID.String()).
		Str("topic", event.Topic).
		Str("session_id", event.SessionID.String()).
		RawJSON("payload", event.Payload).
		Msg("session event")
	return nil
}
