package display

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kasir-scan/internal/events"
)

func TestHubBroadcastReachesClients(t *testing.T) {
	hub := NewHub(nil)
	a := hub.Register("a")
	b := hub.Register("b")
	require.Equal(t, 2, hub.ClientCount())

	hub.Broadcast(Message{Name: "ping", Data: []byte(`{}`)})
	require.Equal(t, "ping", (<-a.Messages).Name)
	require.Equal(t, "ping", (<-b.Messages).Name)

	hub.Unregister("a")
	require.Equal(t, 1, hub.ClientCount())
	_, open := <-a.Messages
	require.False(t, open)
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(nil)
	c := hub.Register("slow")
	for i := 0; i < clientBuffer+5; i++ {
		hub.Broadcast(Message{Name: "tick"})
	}
	require.Len(t, c.Messages, clientBuffer)
}

func TestHubReRegisterClosesPrevious(t *testing.T) {
	hub := NewHub(nil)
	first := hub.Register("same")
	hub.Register("same")
	_, open := <-first.Messages
	require.False(t, open)
	require.Equal(t, 1, hub.ClientCount())
}

func TestHubNotifyUsesTopicAsEventName(t *testing.T) {
	hub := NewHub(nil)
	c := hub.Register("screen")
	session := uuid.New()
	bus := events.Bus{Notifiers: []events.Notifier{hub}}

	_, err := bus.Emit(context.Background(), events.TopicCartItemAdded, session, map[string]string{"code": "425"})
	require.NoError(t, err)

	msg := <-c.Messages
	require.Equal(t, events.TopicCartItemAdded, msg.Name)
	var decoded events.Event
	require.NoError(t, json.Unmarshal(msg.Data, &decoded))
	require.Equal(t, session, decoded.SessionID)
	require.JSONEq(t, `{"code":"425"}`, string(decoded.Payload))
}
