package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestTelemetryRecorderKeepsHijackAndFlush(t *testing.T) {
	var hijackable, flushable bool
	handler := Telemetry(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Websocket upgrades type-assert both of these on the writer.
		_, hijackable = w.(http.Hijacker)
		_, flushable = w.(http.Flusher)
		w.WriteHeader(http.StatusOK)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ws/orders/ord-1", nil))

	assert.True(t, hijackable)
	assert.True(t, flushable)
}

func TestQuantile(t *testing.T) {
	sorted := []int64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}

	assert.Equal(t, int64(50), quantile(sorted, 0.5))
	assert.Equal(t, int64(100), quantile(sorted, 0.95))
	assert.Equal(t, int64(10), quantile(sorted, 0.0))
	assert.Equal(t, int64(0), quantile(nil, 0.5))
}

func TestLatencyTrackerSingleSample(t *testing.T) {
	tracker := newLatencyTracker()

	p50, p95 := tracker.record("GET /orders", 42)

	assert.Equal(t, int64(42), p50)
	assert.Equal(t, int64(42), p95)
}

func TestLatencyTrackerRoutesAreIndependent(t *testing.T) {
	tracker := newLatencyTracker()

	tracker.record("GET /orders", 1000)
	p50, _ := tracker.record("GET /restaurants", 5)

	assert.Equal(t, int64(5), p50)
}

func TestLatencyTrackerEvictsOldestPastWindow(t *testing.T) {
	tracker := newLatencyTracker()

	// Fill the window with a slow outlier followed by fast samples.
	tracker.record("GET /orders", 9000)
	for i := 0; i < latencyWindowSize-1; i++ {
		tracker.record("GET /orders", 10)
	}

	// One more sample overwrites the outlier.
	_, p95 := tracker.record("GET /orders", 10)

	assert.Equal(t, int64(10), p95)
}
