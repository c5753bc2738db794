package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics with bounded cardinality (no per-player or per-IP labels)
var (
	submissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spacerunner_submissions_total",
		Help: "Score submissions by result",
	}, []string{"result"}) // "accepted", "invalid", "unauthorized", "error"

	signInsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spacerunner_anonymous_signins_total",
		Help: "Anonymous identities issued",
	})

	rejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spacerunner_rejected_total",
		Help: "Requests rejected before reaching a handler",
	}, []string{"reason"}) // "rate_limit", "origin", "ws_limit"

	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "spacerunner_websocket_connections_active",
		Help: "Currently connected leaderboard feeds",
	})

	wsSnapshotsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spacerunner_websocket_snapshots_total",
		Help: "Leaderboard snapshots pushed to feeds",
	})
)

// RecordRejected increments the rejection counter.
func RecordRejected(reason string) {
	rejectedTotal.WithLabelValues(reason).Inc()
}
