// Package metrics holds the Prometheus collectors for the swipe feed.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	ratings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "swipeline",
			Subsystem: "ratings",
			Name:      "writes_total",
			Help:      "Rating writes by kind and outcome (ok, duplicate, failed).",
		},
		[]string{"kind", "outcome"},
	)

	feedLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "swipeline",
			Subsystem: "feed",
			Name:      "loads_total",
			Help:      "Feed loads by outcome.",
		},
		[]string{"outcome"},
	)

	liveInserts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "swipeline",
			Subsystem: "realtime",
			Name:      "events_total",
			Help:      "Live insert events received from the change feed.",
		},
		[]string{"table"},
	)

	sessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "swipeline",
			Subsystem: "feed",
			Name:      "active_sessions",
			Help:      "Swipe sessions currently active.",
		},
	)
)

func init() {
	Registry.MustRegister(ratings, feedLoads, liveInserts, sessions)
}

// Handler exposes the registry for scraping
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordRating counts a rating write
func RecordRating(kind, outcome string) {
	ratings.WithLabelValues(kind, outcome).Inc()
}

// RecordFeedLoad counts a feed load
func RecordFeedLoad(outcome string) {
	feedLoads.WithLabelValues(outcome).Inc()
}

// RecordLiveInsert counts a change-feed insert for table
func RecordLiveInsert(table string) {
	liveInserts.WithLabelValues(table).Inc()
}

// SessionStarted increments the active session gauge
func SessionStarted() {
	sessions.Inc()
}

// SessionEnded decrements the active session gauge
func SessionEnded() {
	sessions.Dec()
}
