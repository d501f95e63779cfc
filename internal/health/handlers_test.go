package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kasir-scan/internal/health"
)

func ok(context.Context) error { return nil }

func readyStatus(t *testing.T, h health.Handler) (int, map[string]string) {
	t.Helper()
	rr := httptest.NewRecorder()
	h.Ready(rr, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	var status map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	return rr.Code, status
}

func TestLive(t *testing.T) {
	handler := health.Handler{}
	rr := httptest.NewRecorder()
	handler.Live(rr, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}
	if body := rr.Body.String(); body != "ok" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestReadyDisabledDependencyPasses(t *testing.T) {
	handler := health.Handler{Probes: map[string]health.Probe{
		"catalog": ok,
		"redis":   func(context.Context) error { return health.ErrDisabled },
	}}
	code, status := readyStatus(t, handler)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, map[string]string{"catalog": "ok", "redis": "disabled"}, status)
}

func TestReadyFailure(t *testing.T) {
	handler := health.Handler{Probes: map[string]health.Probe{
		"catalog": func(context.Context) error { return errors.New("db down") },
	}}
	code, status := readyStatus(t, handler)
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.Equal(t, "db down", status["catalog"])
}

func TestReadyProbeTimeout(t *testing.T) {
	handler := health.Handler{
		Timeout: 10 * time.Millisecond,
		Probes: map[string]health.Probe{
			"redis": func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			},
		},
	}
	code, _ := readyStatus(t, handler)
	require.Equal(t, http.StatusServiceUnavailable, code)
}

func TestReadinessAfterShutdown(t *testing.T) {
	handler := health.Handler{Probes: map[string]health.Probe{"catalog": ok}}

	health.SetReady(false)
	code, status := readyStatus(t, handler)
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.Equal(t, "shutting down", status["server"])

	health.SetReady(true)
	code, _ = readyStatus(t, handler)
	require.Equal(t, http.StatusOK, code)
}
