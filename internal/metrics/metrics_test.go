package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRPC(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRPC("getHealth", 50*time.Millisecond, nil)
	m.ObserveRPC("getHealth", 20*time.Millisecond, nil)
	m.ObserveRPC("getConfirmedTransaction", time.Second, errors.New("boom"))

	ok := testutil.ToFloat64(m.rpcRequests.WithLabelValues("getHealth", "ok"))
	if ok != 2 {
		t.Errorf("expected 2 ok getHealth requests, got %f", ok)
	}
	failed := testutil.ToFloat64(m.rpcRequests.WithLabelValues("getConfirmedTransaction", "error"))
	if failed != 1 {
		t.Errorf("expected 1 failed getConfirmedTransaction request, got %f", failed)
	}
	if count := testutil.CollectAndCount(m.rpcDuration); count == 0 {
		t.Error("expected rpc duration observations to be collected")
	}
}

func TestObserveTrace(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveTrace(2*time.Second, nil)
	m.ObserveTrace(time.Second, errors.New("boom"))

	if ok := testutil.ToFloat64(m.tracesTotal.WithLabelValues("ok")); ok != 1 {
		t.Errorf("expected 1 ok trace, got %f", ok)
	}
	if failed := testutil.ToFloat64(m.tracesTotal.WithLabelValues("error")); failed != 1 {
		t.Errorf("expected 1 failed trace, got %f", failed)
	}
}

func TestCacheCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.CacheHit()
	m.CacheHit()
	m.CacheMiss()

	if hits := testutil.ToFloat64(m.cacheHits); hits != 2 {
		t.Errorf("expected 2 cache hits, got %f", hits)
	}
	if misses := testutil.ToFloat64(m.cacheMisses); misses != 1 {
		t.Errorf("expected 1 cache miss, got %f", misses)
	}
}

func TestNilMetricsRecordNothing(t *testing.T) {
	var m *Metrics

	m.ObserveRPC("getHealth", time.Millisecond, nil)
	m.ObserveTrace(time.Second, nil)
	m.CacheHit()
	m.CacheMiss()
}
