// Package observability builds the process logger, the prometheus collectors and the
// tracer provider.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecolocker_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "code", "method"},
	)

	OrderTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecolocker_order_transitions_total",
			Help: "Committed order status changes",
		},
		[]string{"from", "to"},
	)

	SweepProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecolocker_sweep_processed_total",
			Help: "Rows changed by background sweeps",
		},
		[]string{"sweep"},
	)

	SweepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ecolocker_sweep_duration_seconds",
			Help:    "Duration of background sweeps",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"sweep"},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecolocker_notifications_total",
			Help: "Notification requests by kind and outcome",
		},
		[]string{"kind", "result"},
	)

	EventPublishFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecolocker_event_publish_failures_total",
			Help: "Status change deliveries that failed per sink",
		},
		[]string{"sink"},
	)

	// RewardsBreakerState is 0 closed, 1 open, 2 half-open.
	RewardsBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ecolocker_rewards_breaker_state",
			Help: "Rewards client circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
	)
)
