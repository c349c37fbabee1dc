package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "soltrace"

// Metrics bundles the tracer's Prometheus collectors. A nil *Metrics is
// valid and records nothing, so instrumentation can stay wired in even
// when metrics are disabled.
type Metrics struct {
	tracesTotal   *prometheus.CounterVec
	traceDuration prometheus.Histogram
	rpcRequests   *prometheus.CounterVec
	rpcDuration   *prometheus.HistogramVec
	cacheHits     prometheus.Counter
	cacheMisses   prometheus.Counter
}

// New builds the collectors and registers them with reg. A nil registerer
// leaves them unregistered, which tests use for isolation.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		tracesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "traces_total",
			Help:      "Completed trace requests by outcome.",
		}, []string{"outcome"}),
		traceDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "trace_duration_seconds",
			Help:      "End to end trace duration in seconds.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		rpcRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "Solana RPC round trips by method and outcome.",
		}, []string{"method", "outcome"}),
		rpcDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_request_duration_seconds",
			Help:      "Solana RPC round trip latency in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"method"}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Transaction lookups served from the local cache.",
		}),
		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Transaction lookups that fell through to the RPC node.",
		}),
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveRPC implements the RPC client's observer hook.
func (m *Metrics) ObserveRPC(method string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.rpcRequests.WithLabelValues(method, outcome(err)).Inc()
	m.rpcDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// ObserveTrace records one finished trace request.
func (m *Metrics) ObserveTrace(duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.tracesTotal.WithLabelValues(outcome(err)).Inc()
	m.traceDuration.Observe(duration.Seconds())
}

// CacheHit counts a transaction lookup answered locally.
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

// CacheMiss counts a transaction lookup that went to the node.
func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.cacheMisses.Inc()
}
