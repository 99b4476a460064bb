package service

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	verdictTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_serviceability_verdicts_total",
			Help: "Serviceability evaluations by outcome",
		},
		[]string{"can_serve"},
	)
	requestsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "marketplace_requests_created_total",
		Help: "Service requests created",
	})
	resolveTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_resolve_total",
			Help: "Resolve attempts by outcome",
		},
		[]string{"outcome"},
	)
	directoryLoads = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "marketplace_directory_loads_total",
		Help: "Provider directory loads that hit the database",
	})
)

func init() {
	prometheus.MustRegister(verdictTotal, requestsCreated, resolveTotal, directoryLoads)
}

func observeVerdict(canServe bool) {
	verdictTotal.WithLabelValues(strconv.FormatBool(canServe)).Inc()
}
