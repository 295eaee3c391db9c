// Package observability declares the process Prometheus metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MatchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ride_dispatch", Name: "matches_total",
		Help: "Successful nearest-driver matches",
	})
	RequestsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ride_dispatch", Name: "requests_created_total",
		Help: "Ride requests created",
	})
	RequestsRemoved = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ride_dispatch", Name: "requests_removed_total",
		Help: "Ride requests removed from live state, by reason",
	}, []string{"reason"})
	DriversOnline = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "ride_dispatch", Name: "drivers_online",
		Help: "Drivers currently present across all rooms",
	})
	Subscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "ride_dispatch", Name: "subscribers",
		Help: "Open push subscriptions across all rooms",
	})
	EventsPushed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ride_dispatch", Name: "events_pushed_total",
		Help: "Events delivered to subscribers, by event type",
	}, []string{"event"})
	StoreErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ride_dispatch", Name: "store_errors_total",
		Help: "Best-effort persistent store failures",
	})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ride_dispatch", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ride_dispatch",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
