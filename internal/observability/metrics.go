package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RidesRequestedTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "ridebooking", Name: "rides_requested_total", Help: "Total ride requests accepted for dispatch"})
	RidesCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "ridebooking", Name: "rides_completed_total", Help: "Total rides completed"})
	RidesCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "ridebooking", Name: "rides_cancelled_total", Help: "Total rides cancelled"})
	AcceptConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "ridebooking", Name: "accept_conflicts_total", Help: "Accept attempts that lost the race for a ride or driver"})
	NoDriversTotal      = promauto.NewCounter(prometheus.CounterOpts{Namespace: "ridebooking", Name: "dispatch_no_drivers_total", Help: "Ride requests rejected because no driver was in range"})
	NotificationsSent   = promauto.NewCounter(prometheus.CounterOpts{Namespace: "ridebooking", Name: "notifications_sent_total", Help: "Driver notifications sent"})
	NotificationsFailed = promauto.NewCounter(prometheus.CounterOpts{Namespace: "ridebooking", Name: "notifications_failed_total", Help: "Driver notifications that failed to send"})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ridebooking", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ridebooking",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
