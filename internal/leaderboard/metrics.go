package leaderboard

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spacerunner_client_submissions_total",
		Help: "Score submissions by outcome",
	}, []string{"outcome"})

	syncRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spacerunner_client_sync_records_total",
		Help: "Pending scores replayed during sync by result",
	}, []string{"result"})
)
