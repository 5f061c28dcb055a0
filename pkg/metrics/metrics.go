package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records sign-in attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chronos_auth_attempts_total",
			Help: "Total number of sign-in attempts",
		},
		[]string{"result"},
	)

	// AlarmsScheduled counts alarm registrations, labelled by whether the
	// requested fire time had to be clamped forward.
	AlarmsScheduled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chronos_alarms_scheduled_total",
			Help: "Total number of alarms registered",
		},
		[]string{"clamped"},
	)

	// AlarmsFired counts alarms that reached their fire time and were
	// handed to the notification dispatcher.
	AlarmsFired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chronos_alarms_fired_total",
			Help: "Total number of alarms fired",
		},
	)

	// NotificationsDelivered counts notifications pushed to at least one
	// connected subscriber.
	NotificationsDelivered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chronos_notifications_delivered_total",
			Help: "Total number of notifications delivered to subscribers",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chronos_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
