package listing

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "listing",
		Name:      "queries_total",
		Help:      "Listing queries broken down by resource and result.",
	}, []string{"resource", "result"})

	queryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "listing",
		Name:      "query_duration_seconds",
		Help:      "Time spent loading one listing page.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"resource"})
)
