// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "printpress",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "status"})

	RealtimeConnections = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "printpress",
		Name:      "realtime_connections",
		Help:      "Open websocket connections by role.",
	}, []string{"role"})

	RealtimeMessagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "printpress",
		Name:      "realtime_messages_sent_total",
		Help:      "Websocket messages written, by outcome.",
	}, []string{"outcome"})

	NotificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "printpress",
		Name:      "notifications_created_total",
		Help:      "Notification rows created, by type.",
	}, []string{"type"})

	OutboxEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "printpress",
		Name:      "outbox_events_total",
		Help:      "Events passing through the notification outbox, by outcome.",
	}, []string{"outcome"})

	EmailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "printpress",
		Name:      "emails_sent_total",
		Help:      "Outbound emails, by outcome.",
	}, []string{"outcome"})
)
