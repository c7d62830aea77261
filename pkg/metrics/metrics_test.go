package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncrementCounter(t *testing.T) {
	c := NewCollector()

	c.IncrementCounter("verify.results", map[string]string{"status": "valid"})
	c.IncrementCounter("verify.results", map[string]string{"status": "valid"})
	c.IncrementCounter("verify.results", map[string]string{"status": "revoked"})
	c.IncrementCounter("certificates.issued", nil)

	counters := c.GetCounters()
	assert.Equal(t, int64(2), counters["verify.results"]["status:valid"])
	assert.Equal(t, int64(1), counters["verify.results"]["status:revoked"])
	assert.Equal(t, int64(1), counters["certificates.issued"]["default"])
}

func TestObserveLatency(t *testing.T) {
	c := NewCollector()

	c.ObserveLatency("verify.duration", 10*time.Millisecond)
	c.ObserveLatency("verify.duration", 30*time.Millisecond)

	latencies := c.GetLatencies()
	require.Contains(t, latencies, "verify.duration")
	assert.InDelta(t, 20.0, latencies["verify.duration"]["avg_ms"], 0.001)
	assert.InDelta(t, 30.0, latencies["verify.duration"]["max_ms"], 0.001)
}

func TestObserveLatency_WindowBounded(t *testing.T) {
	c := NewCollector()

	for i := 0; i < latencyWindow*2; i++ {
		c.ObserveLatency("op", time.Millisecond)
	}

	c.mutex.RLock()
	defer c.mutex.RUnlock()
	assert.Len(t, c.latencies["op"], latencyWindow)
}

func TestGetCounters_ReturnsCopy(t *testing.T) {
	c := NewCollector()
	c.IncrementCounter("a", nil)

	snapshot := c.GetCounters()
	snapshot["a"]["default"] = 99

	assert.Equal(t, int64(1), c.GetCounters()["a"]["default"])
}
