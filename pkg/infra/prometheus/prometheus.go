package prometheus

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

var (
	// Latency buckets in milliseconds.
	latencyBuckets = []float64{
		5, 10, 25,
		50, 100, 250,
		500, 1000, 2500,
		5000, 10000, 30000,
	}

	RequestTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "consensus_sentry_requests_total",
			Help: "Total number of API requests processed",
		},
		[]string{"method", "route", "status"},
	)

	RequestLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "consensus_sentry_latency_ms",
			Help:    "API request latency in milliseconds",
			Buckets: latencyBuckets,
		},
		[]string{"route"},
	)

	ModerationRequests = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "consensus_sentry_moderation_requests_total",
			Help: "Moderation service calls by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	RegistryOperations = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "consensus_sentry_registry_operations_total",
			Help: "Registry operations by result",
		},
		[]string{"operation", "result"},
	)
)

type MetricsConfig struct {
	Enabled bool
}

var (
	Config       MetricsConfig
	registerOnce sync.Once
)

// Initialize may be called more than once; runtime collectors are registered
// on the first call only.
func Initialize(cfg MetricsConfig) {
	Config = cfg
	registerOnce.Do(func() {
		registry.MustRegister(
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewGoCollector(),
		)
		prometheus.DefaultRegisterer = registry
		prometheus.DefaultGatherer = registry
	})
}

// Gatherer exposes the registry for the /metrics endpoint.
func Gatherer() prometheus.Gatherer {
	return registry
}

func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if !Config.Enabled {
		return
	}
	RequestTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	RequestLatency.WithLabelValues(route).Observe(float64(elapsed.Microseconds()) / 1000)
}

func ObserveModeration(operation, outcome string) {
	if !Config.Enabled {
		return
	}
	ModerationRequests.WithLabelValues(operation, outcome).Inc()
}

// ObserveRegistry records a registry operation; result is "ok" or "err".
func ObserveRegistry(operation string, err error) {
	if !Config.Enabled {
		return
	}
	result := "ok"
	if err != nil {
		result = "err"
	}
	RegistryOperations.WithLabelValues(operation, result).Inc()
}
