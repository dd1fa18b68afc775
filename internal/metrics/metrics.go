package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_requests_latency_seconds",
			Help:    "Latency of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	LoansIssued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "loans_issued_total",
			Help: "Total loans issued",
		},
	)
	LoansReturned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "loans_returned_total",
			Help: "Total loans returned",
		},
	)
	LendingFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lending_failures_total",
			Help: "Total rejected lending attempts",
		},
	)
)

// Handler serves the /metrics endpoint.
var Handler = promhttp.Handler

func Init() {
	prometheus.MustRegister(HTTPLatency)
	prometheus.MustRegister(LoansIssued)
	prometheus.MustRegister(LoansReturned)
	prometheus.MustRegister(LendingFailures)
}
