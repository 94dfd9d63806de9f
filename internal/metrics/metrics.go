package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mess_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mess_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	FeesIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mess_fees_issued_total",
		Help: "Monthly fee definitions issued.",
	})

	FeesRetracted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mess_fees_retracted_total",
		Help: "Monthly fee definitions deleted.",
	})

	PaymentsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mess_payments_recorded_total",
			Help: "Fee payments marked paid, by payment method.",
		},
		[]string{"method"},
	)

	ReportsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mess_reports_generated_total",
			Help: "Downloaded reports by kind.",
		},
		[]string{"kind"},
	)

	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mess_login_attempts_total",
			Help: "Login attempts by role and outcome.",
		},
		[]string{"role", "outcome"},
	)
)
