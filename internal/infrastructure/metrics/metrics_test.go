package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.CacheResult("hit")
	m.SyncResult("saved")
	m.RetryResult("retry")
	m.ReadFailure("notes")
	m.ObserveLoad(time.Millisecond)
	m.ObserveHTTP("GET", "/health", "200", time.Millisecond)
}

func TestCounters(t *testing.T) {
	m := New()
	m.CacheResult("hit")
	m.CacheResult("hit")
	m.CacheResult("miss")
	m.SyncResult("error")

	if got := testutil.ToFloat64(m.CacheRequests.WithLabelValues("hit")); got != 2 {
		t.Errorf("cache hits = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.CacheRequests.WithLabelValues("miss")); got != 1 {
		t.Errorf("cache misses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.SyncOperations.WithLabelValues("error")); got != 1 {
		t.Errorf("sync errors = %v, want 1", got)
	}
}
