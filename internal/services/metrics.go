package services

import "github.com/prometheus/client_golang/prometheus"

var (
	generatorRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "erd",
			Subsystem: "generator",
			Name:      "requests_total",
			Help:      "Calls to the schema generator by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)
	generatorDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "erd",
			Subsystem: "generator",
			Name:      "request_duration_seconds",
			Help:      "Latency of schema generator calls.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
	schemaCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "erd",
			Subsystem: "schema_cache",
			Name:      "lookups_total",
			Help:      "Schema cache lookups by result (hit, miss, error).",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(generatorRequests, generatorDuration, schemaCacheLookups)
}
