package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Store and query engine metrics.
var (
	StoreCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "retailerdir",
			Subsystem: "store",
			Name:      "calls_total",
			Help:      "Retailer store calls by backend, operation and outcome",
		},
		[]string{"backend", "op", "status"},
	)

	StoreCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "retailerdir",
			Subsystem: "store",
			Name:      "call_duration_seconds",
			Help:      "Retailer store call duration",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"backend", "op"},
	)

	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "retailerdir",
			Name:      "searches_total",
			Help:      "Retailer searches by strategy and outcome",
		},
		[]string{"strategy", "status"},
	)
)

var registerOnce sync.Once

// Register adds every collector of this package to the default registry.
// Calling it again is a no-op.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequestDuration,
			httpRequestsTotal,
			httpInFlight,
			StoreCallsTotal,
			StoreCallDuration,
			SearchesTotal,
		)
	})
}
