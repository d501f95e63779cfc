package events_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kasir-scan/internal/events"
)

type captureNotifier struct {
	events []events.Event
	err    error
}

func (c *captureNotifier) Notify(_ context.Context, event events.Event) error {
	c.events = append(c.events, event)
	return c.err
}

func TestEmitDispatchesEvent(t *testing.T) {
	first := &captureNotifier{}
	second := &captureNotifier{}
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	bus := events.Bus{
		Notifiers: []events.Notifier{first, nil, second},
		Now:       func() time.Time { return at },
	}

	session := uuid.New()
	event, err := bus.Emit(context.Background(), events.TopicCartItemAdded, session, map[string]any{"code": "425"})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, event.ID)
	require.Equal(t, session, event.SessionID)
	require.Equal(t, at, event.OccurredAt)
	require.Len(t, first.events, 1)
	require.Len(t, second.events, 1)
	require.Equal(t, event.ID, second.events[0].ID)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(event.Payload, &decoded))
	require.Equal(t, "425", decoded["code"])
}

func TestPublishCarriesSequence(t *testing.T) {
	capture := &captureNotifier{}
	bus := events.Bus{Notifiers: []events.Notifier{capture}}

	event, err := bus.Publish(context.Background(), events.Draft{
		Topic:     events.TopicCartLineIncremented,
		SessionID: uuid.New(),
		Sequence:  7,
		Payload:   map[string]int{"index": 0},
	})
	require.NoError(t, err)
	require.Equal(t, uint64(7), event.Sequence)
	require.Equal(t, uint64(7), capture.events[0].Sequence)

	data, err := json.Marshal(event)
	require.NoError(t, err)
	require.Contains(t, string(data), `"sequence":7`)
}

func TestEmitJoinsNotifierErrors(t *testing.T) {
	boom := errors.New("boom")
	failing := &captureNotifier{err: boom}
	after := &captureNotifier{}
	bus := events.Bus{Notifiers: []events.Notifier{failing, after}}

	_, err := bus.Emit(context.Background(), events.TopicSessionStarted, uuid.New(), nil)
	require.ErrorIs(t, err, boom)
	require.Len(t, after.events, 1)
	require.JSONEq(t, `{}`, string(after.events[0].Payload))
}

func TestEmitValidatesInput(t *testing.T) {
	bus := events.Bus{}
	_, err := bus.Emit(context.Background(), " ", uuid.New(), nil)
	require.Error(t, err)
	_, err = bus.Emit(context.Background(), events.TopicSessionStarted, uuid.Nil, nil)
	require.Error(t, err)
	_, err = bus.Emit(context.Background(), events.TopicSessionStarted, uuid.New(), []byte("{oops"))
	require.Error(t, err)
}

func TestLogNotifierWritesTopic(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	bus := events.Bus{Notifiers: []events.Notifier{events.LogNotifier{Logger: &logger}}}

	_, err := bus.Emit(context.Background(), events.TopicCartLookupFailed, uuid.New(), map[string]string{"code": "000000"})
	require.NoError(t, err)
	require.Contains(t, buf.String(), `"topic":"cart.lookup_failed"`)
	require.Contains(t, buf.String(), `"code":"000000"`)
}
