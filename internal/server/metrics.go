package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the serve mode. Registered on the default registry
// and exposed at /metrics.
var (
	regenerationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "holgraph_regenerations_total",
		Help: "Number of completed graph regenerations.",
	})

	regenerationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "holgraph_regeneration_failures_total",
		Help: "Number of failed graph regenerations.",
	})

	regenerationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "holgraph_regeneration_duration_seconds",
		Help:    "Wall time of a full scan, build, and render cycle.",
		Buckets: prometheus.DefBuckets,
	})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "holgraph_http_requests_total",
		Help: "HTTP requests served, by path.",
	}, []string{"path"})
)
