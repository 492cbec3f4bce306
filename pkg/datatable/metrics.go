package datatable

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	navigationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "datatable",
		Subsystem: "controller",
		Name:      "navigations_total",
		Help:      "Navigations issued by table controllers, by operation.",
	}, []string{"operation"})

	searchSupersededTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "datatable",
		Subsystem: "controller",
		Name:      "search_superseded_total",
		Help:      "Debounced search navigations replaced or cancelled before firing.",
	})
)

const (
	opSearch      = "search"
	opClearSearch = "clear_search"
	opFilter      = "filter"
	opReset       = "reset"
	opPage        = "page"
	opPageSize    = "page_size"
)
