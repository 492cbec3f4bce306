package authz

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	checkRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "authz",
		Name:      "checks_total",
		Help:      "Total number of policy checks broken down by result.",
	}, []string{"result"})

	resolveLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "authz",
		Name:      "resolve_latency_seconds",
		Help:      "Latency distribution for resolving a subject's permission set.",
		Buckets: []float64{
			0.0005, 0.001, 0.002, 0.005,
			0.01, 0.02, 0.05, 0.1,
			0.2, 0.5, 1, 2,
		},
	})
)

func recordCheck(allowed bool) {
	result := "denied"
	if allowed {
		result = "allowed"
	}
	checkRequests.WithLabelValues(result).Inc()
}

func recordResolve(latency time.Duration) {
	resolveLatency.Observe(latency.Seconds())
}
