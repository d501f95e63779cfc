package display

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/kasir-scan/internal/common"
)

const defaultPingInterval = 30 * time.Second

// SnapshotFunc returns the current view sent when a display connects.
type SnapshotFunc func(ctx context.Context) (any, error)

// Handler serves the display event stream.
type Handler struct {
	hub          *Hub
	snapshot     SnapshotFunc
	pingInterval time.Duration
}

// HandlerConfig configures a Handler.
type HandlerConfig struct {
	Hub          *Hub
	Snapshot     SnapshotFunc
	PingInterval time.Duration
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	interval := cfg.PingInterval
	if interval <= 0 {
		interval = defaultPingInterval
	}
	return &Handler{hub: cfg.Hub, snapshot: cfg.Snapshot, pingInterval: interval}
}

// Stream handles GET /api/v1/display/stream.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok || h.hub == nil {
		common.JSONError(w, http.StatusNotImplemented, "STREAM_UNSUPPORTED", "streaming is not supported", nil)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	id := "display-" + uuid.NewString()
	client := h.hub.Register(id)
	defer h.hub.Unregister(id)

	w.WriteHeader(http.StatusOK)
	if h.snapshot != nil {
		view, err := h.snapshot(r.Context())
		if err == nil {
			if data, mErr := json.Marshal(view); mErr == nil {
				writeEvent(w, Message{Name: "snapshot", Data: data})
			}
		}
	}
	flusher.Flush()

	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-client.Messages:
			if !ok {
				return
			}
			writeEvent(w, msg)
			flusher.Flush()
		case t := <-ticker.C:
			writeEvent(w, Message{Name: "ping", Data: []byte(fmt.Sprintf(`{"timestamp":%q}`, t.UTC().Format(time.RFC3339)))})
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, msg Message) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Name, msg.Data)
}
